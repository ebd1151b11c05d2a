package models

import (
	"time"

	"github.com/google/uuid"
)

// ProfileBadge tracks progress toward one badge type. Completion is derived
// from Progress and the catalog threshold, never stored.
type ProfileBadge struct {
	Base
	ProfileID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_profile_badge" json:"profile_id"`
	BadgeType string     `gorm:"not null;uniqueIndex:idx_profile_badge" json:"badge_type"`
	Progress  float64    `gorm:"default:0" json:"progress"`
	EarnedAt  *time.Time `json:"earned_at,omitempty"`
}

func (ProfileBadge) TableName() string {
	return "profile_badges"
}
