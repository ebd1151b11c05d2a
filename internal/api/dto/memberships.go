package dto

type JoinRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
	Notes          string `json:"notes" validate:"max=2000"`
}

type InviteRequest struct {
	VolunteerID string `json:"volunteer_id" validate:"required,uuid"`
	Role        string `json:"role" validate:"omitempty,oneof=MEMBER COORDINATOR LEADER ADMIN"`
}

type MembershipStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING ACTIVE INACTIVE SUSPENDED TERMINATED ALUMNI"`
	Notes  string `json:"notes" validate:"max=2000"`
}

type MembershipRoleRequest struct {
	Role                  string `json:"role" validate:"omitempty,oneof=MEMBER COORDINATOR LEADER ADMIN"`
	CanManageEvents       *bool  `json:"can_manage_events"`
	CanReviewApplications *bool  `json:"can_review_applications"`
	CanMessageMembers     *bool  `json:"can_message_members"`
}

type RatingRequest struct {
	Rating float64 `json:"rating" validate:"gte=1,lte=5"`
}

type LogActivityRequest struct {
	Hours       float64 `json:"hours" validate:"gte=0,lte=24"`
	Type        string  `json:"type" validate:"omitempty,oneof=EVENT_ATTENDED HOURS_LOGGED TRAINING OTHER"`
	Description string  `json:"description" validate:"max=2000"`
}
