package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/dto"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/search"
)

type SearchHandler struct {
	search *search.Service
	logger *slog.Logger
}

func NewSearchHandler(searchService *search.Service, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{search: searchService, logger: logger}
}

// Sizes handles GET /api/organizations/sizes
func (h *SearchHandler) Sizes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, search.SizeBuckets())
}

// Organizations handles GET /api/organizations. Malformed parameters are a
// 400; anything that goes wrong while searching degrades to a fallback list
// and still answers 200.
func (h *SearchHandler) Organizations(w http.ResponseWriter, r *http.Request) {
	q, err := organizationQuery(r)
	if err == nil {
		err = q.Validate()
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	p := pagination(r)
	result := h.search.Browse(r.Context(), q, p.Offset(), p.PerPage)
	writeJSON(w, http.StatusOK, dto.BrowseResponse{
		PaginatedResponse: dto.NewPaginatedResponse(result.Organizations, result.Total, p),
		Stage:             string(result.Stage),
	})
}

func organizationQuery(r *http.Request) (search.OrganizationQuery, error) {
	v := r.URL.Query()
	name := v.Get("q")
	if name == "" {
		name = v.Get("name")
	}
	q := search.OrganizationQuery{
		Name:     name,
		Category: v.Get("category"),
		Type:     models.OrganizationType(v.Get("type")),
		Size:     v.Get("size"),
		Country:  v.Get("country"),
		Location: v.Get("location"),
		Sort:     search.OrganizationSort(v.Get("sort")),
	}

	fields := map[string]string{}
	var err error
	if q.Verified, err = parseBool(r, "verified"); err != nil {
		fields["verified"] = "must be true or false"
	}
	ints := []struct {
		name string
		dst  *int
	}{
		{"founded_from", &q.FoundedFrom},
		{"founded_to", &q.FoundedTo},
		{"created_within_days", &q.CreatedWithinDays},
		{"updated_within_days", &q.UpdatedWithinDays},
	}
	for _, f := range ints {
		if *f.dst, err = parseInt(r, f.name); err != nil {
			fields[f.name] = "must be a whole number"
		}
	}
	if len(fields) > 0 {
		return q, &apperr.ValidationError{Fields: fields}
	}
	return q, nil
}

// Volunteers handles GET /api/profiles/volunteers
func (h *SearchHandler) Volunteers(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := search.VolunteerQuery{
		Skill:        v.Get("skill"),
		Location:     v.Get("location"),
		Availability: models.Availability(v.Get("availability")),
	}
	if raw := v.Get("min_hours"); raw != "" {
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil || hours < 0 {
			writeError(w, r, h.logger, apperr.Invalid("min_hours", "must be a non-negative number"))
			return
		}
		q.MinHours = hours
	}

	p := pagination(r)
	volunteers, total, err := h.search.Volunteers(r.Context(), q, p.Offset(), p.PerPage)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(volunteers, total, p))
}
