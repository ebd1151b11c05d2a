package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProfileKind tags which detail record a profile carries. It always equals
// the owning user's UserType.
type ProfileKind string

const (
	ProfileKindVolunteer    ProfileKind = "VOLUNTEER"
	ProfileKindOrganization ProfileKind = "ORGANIZATION"
)

// KindFor returns the profile kind a user of the given type owns.
func KindFor(t UserType) ProfileKind {
	if t == UserTypeOrganization {
		return ProfileKindOrganization
	}
	return ProfileKindVolunteer
}

type Profile struct {
	Base
	UserID      uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Kind        ProfileKind `gorm:"not null;index" json:"kind"`
	DisplayName string      `gorm:"not null" json:"display_name"`
	Bio         string      `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL   string      `json:"avatar_url,omitempty"`

	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `gorm:"index" json:"country,omitempty"`

	// Visibility
	IsPublic     bool `gorm:"default:true" json:"is_public"`
	ShowEmail    bool `gorm:"default:false" json:"show_email"`
	ShowPhone    bool `gorm:"default:false" json:"show_phone"`
	ShowLocation bool `gorm:"default:true" json:"show_location"`

	Verified   bool       `gorm:"default:false;index" json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	// Exactly one of these is set, selected by Kind.
	Volunteer    *VolunteerDetails    `gorm:"foreignKey:ProfileID" json:"volunteer,omitempty"`
	Organization *OrganizationDetails `gorm:"foreignKey:ProfileID" json:"organization,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

type Availability string

const (
	AvailabilityWeekdays Availability = "WEEKDAYS"
	AvailabilityWeekends Availability = "WEEKENDS"
	AvailabilityEvenings Availability = "EVENINGS"
	AvailabilityFlexible Availability = "FLEXIBLE"
)

type VolunteerDetails struct {
	Base
	ProfileID    uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null" json:"profile_id"`
	FirstName    string       `json:"first_name,omitempty"`
	LastName     string       `json:"last_name,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	Availability Availability `gorm:"default:'FLEXIBLE'" json:"availability"`

	// age encrypted, see pkg/crypto
	EmergencyContact []byte `gorm:"type:bytea" json:"-"`

	// Counters, only ever changed with atomic updates.
	TotalVolunteerHours float64 `gorm:"default:0" json:"total_volunteer_hours"`
	EventsAttended      int     `gorm:"default:0" json:"events_attended"`
	EventsNoShow        int     `gorm:"default:0" json:"events_no_show"`
}

func (VolunteerDetails) TableName() string {
	return "volunteer_details"
}

type OrganizationType string

const (
	OrgTypeNonprofit   OrganizationType = "NONPROFIT"
	OrgTypeCharity     OrganizationType = "CHARITY"
	OrgTypeCommunity   OrganizationType = "COMMUNITY"
	OrgTypeEducational OrganizationType = "EDUCATIONAL"
	OrgTypeReligious   OrganizationType = "RELIGIOUS"
	OrgTypeGovernment  OrganizationType = "GOVERNMENT"
	OrgTypeOther       OrganizationType = "OTHER"
)

type OrganizationDetails struct {
	Base
	ProfileID        uuid.UUID                   `gorm:"type:uuid;uniqueIndex;not null" json:"profile_id"`
	OrganizationName string                      `gorm:"not null;index" json:"organization_name"`
	Type             OrganizationType            `gorm:"default:'NONPROFIT';index" json:"type"`
	Categories       datatypes.JSONSlice[string] `json:"categories"`
	Mission          string                      `gorm:"type:text" json:"mission,omitempty"`
	Website          string                      `json:"website,omitempty"`
	EmployeeCount    int                         `gorm:"default:0" json:"employee_count"`
	FoundedYear      int                         `json:"founded_year,omitempty"`

	EventsHosted     int `gorm:"default:0" json:"events_hosted"`
	VolunteersServed int `gorm:"default:0" json:"volunteers_served"`
}

func (OrganizationDetails) TableName() string {
	return "organization_details"
}
