package policy

import (
	"testing"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/stretchr/testify/assert"
)

func TestAllows(t *testing.T) {
	tests := []struct {
		capability   Capability
		volunteer    bool
		organization bool
	}{
		{ManageEvents, false, true},
		{ReviewApplications, false, true},
		{ManageMembers, false, true},
		{ApplyToEvents, true, false},
		{JoinOrganizations, true, false},
		{FollowOrganizations, true, false},
		{LogActivity, false, true},
		{Connect, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.capability), func(t *testing.T) {
			assert.Equal(t, tt.volunteer, Allows(models.UserTypeVolunteer, tt.capability))
			assert.Equal(t, tt.organization, Allows(models.UserTypeOrganization, tt.capability))
		})
	}
}

func TestAllows_UnknownType(t *testing.T) {
	assert.False(t, Allows("ADMIN", Connect))
	assert.False(t, Allows("", ApplyToEvents))
}
