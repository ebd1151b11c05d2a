package dto

// BrowseResponse is the organization listing. Stage names the fallback
// step that produced the page.
type BrowseResponse struct {
	PaginatedResponse
	Stage string `json:"stage"`
}
