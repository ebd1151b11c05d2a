package models

import (
	"strings"

	"github.com/google/uuid"
)

type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "BEGINNER"
	ProficiencyIntermediate Proficiency = "INTERMEDIATE"
	ProficiencyAdvanced     Proficiency = "ADVANCED"
	ProficiencyExpert       Proficiency = "EXPERT"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// NormalizeName folds a skill or interest name for uniqueness checks.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

type ProfileSkill struct {
	Base
	ProfileID       uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_profile_skill" json:"profile_id"`
	Name            string      `gorm:"not null" json:"name"`
	NormalizedName  string      `gorm:"not null;uniqueIndex:idx_profile_skill" json:"-"`
	Proficiency     Proficiency `gorm:"default:'BEGINNER'" json:"proficiency"`
	YearsExperience int         `gorm:"default:0" json:"years_experience"`
	Verified        bool        `gorm:"default:false" json:"verified"`
	Endorsements    int         `gorm:"default:0" json:"endorsements"`
}

func (ProfileSkill) TableName() string {
	return "profile_skills"
}

type ProfileInterest struct {
	Base
	ProfileID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_profile_interest" json:"profile_id"`
	Name           string    `gorm:"not null" json:"name"`
	NormalizedName string    `gorm:"not null;uniqueIndex:idx_profile_interest" json:"-"`
	Priority       Priority  `gorm:"default:'MEDIUM'" json:"priority"`
}

func (ProfileInterest) TableName() string {
	return "profile_interests"
}
