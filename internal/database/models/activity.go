package models

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityEventAttended ActivityType = "EVENT_ATTENDED"
	ActivityHoursLogged   ActivityType = "HOURS_LOGGED"
	ActivityTraining      ActivityType = "TRAINING"
	ActivityOther         ActivityType = "OTHER"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityEventAttended, ActivityHoursLogged, ActivityTraining, ActivityOther:
		return true
	}
	return false
}

type VolunteerActivity struct {
	Base
	ProfileID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"profile_id"`
	Type           ActivityType `gorm:"not null" json:"type"`
	Hours          float64      `gorm:"default:0" json:"hours"`
	Description    string       `gorm:"type:text" json:"description,omitempty"`
	OrganizationID *uuid.UUID   `gorm:"type:uuid;index" json:"organization_id,omitempty"`
	MembershipID   *uuid.UUID   `gorm:"type:uuid" json:"membership_id,omitempty"`
	EventID        *uuid.UUID   `gorm:"type:uuid" json:"event_id,omitempty"`
	OccurredAt     time.Time    `gorm:"not null;index" json:"occurred_at"`
}

func (VolunteerActivity) TableName() string {
	return "volunteer_activities"
}
