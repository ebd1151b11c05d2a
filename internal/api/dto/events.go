package dto

import "time"

type CreateEventRequest struct {
	Title          string    `json:"title" validate:"required,max=200"`
	Description    string    `json:"description" validate:"max=5000"`
	Category       string    `json:"category" validate:"max=100"`
	Location       string    `json:"location" validate:"max=200"`
	StartsAt       time.Time `json:"starts_at" validate:"required"`
	EndsAt         time.Time `json:"ends_at" validate:"required"`
	MaxVolunteers  int       `json:"max_volunteers" validate:"gte=1,lte=10000"`
	RequiredSkills []string  `json:"required_skills" validate:"max=20,dive,max=100"`
	AutoAccept     bool      `json:"auto_accept"`
	Publish        bool      `json:"publish"`
}

type UpdateEventRequest struct {
	Title          *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description    *string    `json:"description" validate:"omitempty,max=5000"`
	Category       *string    `json:"category" validate:"omitempty,max=100"`
	Location       *string    `json:"location" validate:"omitempty,max=200"`
	StartsAt       *time.Time `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at"`
	MaxVolunteers  *int       `json:"max_volunteers" validate:"omitempty,gte=1,lte=10000"`
	RequiredSkills []string   `json:"required_skills" validate:"omitempty,max=20,dive,max=100"`
	AutoAccept     *bool      `json:"auto_accept"`
}
