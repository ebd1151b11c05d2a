package models

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "PENDING"
	ApplicationAccepted  ApplicationStatus = "ACCEPTED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
	ApplicationWithdrawn ApplicationStatus = "WITHDRAWN"
	ApplicationAttended  ApplicationStatus = "ATTENDED"
	ApplicationNoShow    ApplicationStatus = "NO_SHOW"
)

// Application is a volunteer's request to work one event.
type Application struct {
	Base
	VolunteerID    uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_application_pair" json:"volunteer_id"`
	EventID        uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_application_pair;index" json:"event_id"`
	Status         ApplicationStatus `gorm:"not null;default:'PENDING';index" json:"status"`
	Message        string            `gorm:"type:text" json:"message,omitempty"`
	OrganizerNotes string            `gorm:"type:text" json:"organizer_notes,omitempty"`

	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	HoursCompleted float64    `gorm:"default:0" json:"hours_completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	WithdrawnAt    *time.Time `json:"withdrawn_at,omitempty"`

	Event     *Event   `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Volunteer *Profile `gorm:"foreignKey:VolunteerID" json:"volunteer,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}
