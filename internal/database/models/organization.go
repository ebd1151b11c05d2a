package models

import (
	"time"

	"github.com/google/uuid"
)

type MembershipRole string

const (
	RoleMember      MembershipRole = "MEMBER"
	RoleCoordinator MembershipRole = "COORDINATOR"
	RoleLeader      MembershipRole = "LEADER"
	RoleAdmin       MembershipRole = "ADMIN"
)

func (r MembershipRole) Valid() bool {
	switch r {
	case RoleMember, RoleCoordinator, RoleLeader, RoleAdmin:
		return true
	}
	return false
}

type MembershipStatus string

const (
	MembershipPending    MembershipStatus = "PENDING"
	MembershipActive     MembershipStatus = "ACTIVE"
	MembershipInactive   MembershipStatus = "INACTIVE"
	MembershipSuspended  MembershipStatus = "SUSPENDED"
	MembershipTerminated MembershipStatus = "TERMINATED"
	MembershipAlumni     MembershipStatus = "ALUMNI"
)

// OrganizationMembership links a volunteer profile to an organization profile.
type OrganizationMembership struct {
	Base
	VolunteerID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_membership_pair" json:"volunteer_id"`
	OrganizationID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_membership_pair;index" json:"organization_id"`
	Role           MembershipRole   `gorm:"not null;default:'MEMBER'" json:"role"`
	Status         MembershipStatus `gorm:"not null;default:'PENDING';index" json:"status"`

	HoursContributed    float64 `gorm:"default:0" json:"hours_contributed"`
	ActivitiesCompleted int     `gorm:"default:0" json:"activities_completed"`
	AverageRating       float64 `gorm:"default:0" json:"average_rating"`
	RatingsReceived     int     `gorm:"default:0" json:"ratings_received"`
	LeadershipRolesHeld int     `gorm:"default:0" json:"leadership_roles_held"`
	TrainingsCompleted  int     `gorm:"default:0" json:"trainings_completed"`

	// Permissions
	CanManageEvents       bool `gorm:"default:false" json:"can_manage_events"`
	CanReviewApplications bool `gorm:"default:false" json:"can_review_applications"`
	CanMessageMembers     bool `gorm:"default:false" json:"can_message_members"`

	JoinedAt *time.Time `json:"joined_at,omitempty"`
	LeftAt   *time.Time `json:"left_at,omitempty"`
	Notes    string     `gorm:"type:text" json:"notes,omitempty"`

	Volunteer    *Profile `gorm:"foreignKey:VolunteerID" json:"volunteer,omitempty"`
	Organization *Profile `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (OrganizationMembership) TableName() string {
	return "organization_memberships"
}

// OrganizationFollow records a volunteer following an organization.
type OrganizationFollow struct {
	Base
	VolunteerID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair" json:"volunteer_id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair;index" json:"organization_id"`

	Organization *Profile `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (OrganizationFollow) TableName() string {
	return "organization_follows"
}
