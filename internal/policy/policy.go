// Package policy maps user types to the capabilities they hold.
package policy

import "github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"

type Capability string

const (
	ManageEvents        Capability = "manage_events"
	ReviewApplications  Capability = "review_applications"
	ManageMembers       Capability = "manage_members"
	ApplyToEvents       Capability = "apply_to_events"
	JoinOrganizations   Capability = "join_organizations"
	FollowOrganizations Capability = "follow_organizations"
	LogActivity         Capability = "log_activity"
	Connect             Capability = "connect"
)

var grants = map[models.UserType]map[Capability]bool{
	models.UserTypeVolunteer: {
		ApplyToEvents:       true,
		JoinOrganizations:   true,
		FollowOrganizations: true,
		Connect:             true,
	},
	models.UserTypeOrganization: {
		ManageEvents:       true,
		ReviewApplications: true,
		ManageMembers:      true,
		LogActivity:        true,
		Connect:            true,
	},
}

// Allows reports whether a user of type t holds capability c. Unknown types
// hold nothing.
func Allows(t models.UserType, c Capability) bool {
	return grants[t][c]
}
