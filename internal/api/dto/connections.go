package dto

type ConnectionRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,uuid"`
	Message     string `json:"message" validate:"max=1000"`
}
