package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EventStatus string

const (
	EventDraft     EventStatus = "DRAFT"
	EventPublished EventStatus = "PUBLISHED"
	EventCompleted EventStatus = "COMPLETED"
	EventCancelled EventStatus = "CANCELLED"
)

type Event struct {
	Base
	OrganizationID uuid.UUID   `gorm:"type:uuid;not null;index" json:"organization_id"`
	Title          string      `gorm:"not null" json:"title"`
	Description    string      `gorm:"type:text" json:"description,omitempty"`
	Category       string      `gorm:"index" json:"category,omitempty"`
	Location       string      `json:"location,omitempty"`
	StartsAt       time.Time   `gorm:"not null;index" json:"starts_at"`
	EndsAt         time.Time   `gorm:"not null" json:"ends_at"`
	Status         EventStatus `gorm:"not null;default:'DRAFT';index" json:"status"`
	AutoAccept     bool        `gorm:"default:false" json:"auto_accept"`

	// 0 <= CurrentVolunteers <= MaxVolunteers, kept by conditional updates.
	MaxVolunteers     int `gorm:"not null" json:"max_volunteers"`
	CurrentVolunteers int `gorm:"default:0" json:"current_volunteers"`

	RequiredSkills datatypes.JSONSlice[string] `json:"required_skills"`

	Organization *Profile `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) IsFull() bool {
	return e.CurrentVolunteers >= e.MaxVolunteers
}

func (e *Event) SpotsLeft() int {
	if n := e.MaxVolunteers - e.CurrentVolunteers; n > 0 {
		return n
	}
	return 0
}
