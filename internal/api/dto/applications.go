package dto

import (
	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
)

type SubmitApplicationRequest struct {
	EventID string `json:"event_id" validate:"required,uuid"`
	Message string `json:"message" validate:"max=2000"`
}

type ReviewApplicationRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type AttendanceRequest struct {
	Hours float64 `json:"hours" validate:"gte=0,lte=24"`
}

type AttendanceResponse struct {
	Application  *models.Application `json:"application"`
	BadgesEarned []badges.BadgeType  `json:"badges_earned"`
}
