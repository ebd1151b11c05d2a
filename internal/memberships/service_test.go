package memberships_test

import (
	"context"
	"sync"
	"testing"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/memberships"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/testutil"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/util"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu    sync.Mutex
	calls []badges.Trigger
}

func (d *recordingDispatcher) Dispatch(_ context.Context, _ uuid.UUID, t badges.Trigger) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, t)
	return nil
}

func setup(t *testing.T) (*testutil.TestSetup, *memberships.Service, *recordingDispatcher) {
	tc := testutil.NewTestContext(t)
	t.Cleanup(tc.Cleanup)
	d := &recordingDispatcher{}
	return tc, memberships.NewService(tc.DB, d, util.DiscardLogger()), d
}

func TestService_RequestAndApprove(t *testing.T) {
	tc, svc, d := setup(t)
	ctx := testutil.TestContext(t)

	m, err := svc.RequestToJoin(ctx, tc.VolunteerProfileID(), tc.OrganizationProfileID(), "I love trees")
	require.NoError(t, err)
	assert.Equal(t, models.MembershipPending, m.Status)
	assert.Nil(t, m.JoinedAt)

	_, err = svc.RequestToJoin(ctx, tc.VolunteerProfileID(), tc.OrganizationProfileID(), "")
	assert.ErrorIs(t, err, memberships.ErrAlreadyMember)

	v, err := svc.ChangeStatus(ctx, tc.OrganizationProfileID(), m.ID, models.MembershipActive, "")
	require.NoError(t, err)
	assert.Equal(t, models.MembershipActive, v.Status)
	require.NotNil(t, v.JoinedAt)
	assert.Equal(t, []badges.Trigger{badges.TriggerMembershipJoined}, d.calls)

	// Reactivating later does not count as joining again.
	_, err = svc.ChangeStatus(ctx, tc.OrganizationProfileID(), m.ID, models.MembershipInactive, "")
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, tc.OrganizationProfileID(), m.ID, models.MembershipActive, "")
	require.NoError(t, err)
	assert.Len(t, d.calls, 1)
}

func TestService_RequestToJoin_Validation(t *testing.T) {
	tc, svc, _ := setup(t)
	ctx := testutil.TestContext(t)

	_, err := svc.RequestToJoin(ctx, tc.VolunteerProfileID(), tc.VolunteerProfileID(), "")
	assert.ErrorIs(t, err, memberships.ErrOrganizationNotFound)

	_, err = svc.RequestToJoin(ctx, tc.OrganizationProfileID(), tc.OrganizationProfileID(), "")
	assert.ErrorIs(t, err, memberships.ErrVolunteerNotFound)
}

func TestService_EndedMembershipCannotRerequest(t *testing.T) {
	tc, svc, _ := setup(t)
	ctx := testutil.TestContext(t)

	m, err := svc.Invite(ctx, tc.OrganizationProfileID(), tc.VolunteerProfileID(), models.RoleMember)
	require.NoError(t, err)

	v, err := svc.Leave(ctx, tc.VolunteerProfileID(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipAlumni, v.Status)
	assert.NotNil(t, v.LeftAt)

	_, err = svc.RequestToJoin(ctx, tc.VolunteerProfileID(), tc.OrganizationProfileID(), "")
	assert.ErrorIs(t, err, memberships.ErrMembershipEnded)

	_, err = svc.ChangeStatus(ctx, tc.OrganizationProfileID(), m.ID, models.MembershipActive, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)
}

func TestService_ChangeStatus_Authorization(t *testing.T) {
	tc, svc, _ := setup(t)
	ctx := testutil.TestContext(t)

	m, err := svc.RequestToJoin(ctx, tc.VolunteerProfileID(), tc.OrganizationProfileID(), "")
	require.NoError(t, err)

	other := testutil.CreateTestOrganization(t, tc.DB)
	_, err = svc.ChangeStatus(ctx, other.Profile.ID, m.ID, models.MembershipActive, "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.ChangeStatus(ctx, tc.OrganizationProfileID(), m.ID, models.MembershipSuspended, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)
}

func TestService_UpdateRole(t *testing.T) {
	tc, svc, _ := setup(t)
	ctx := testutil.TestContext(t)

	m, err := svc.Invite(ctx, tc.OrganizationProfileID(), tc.VolunteerProfileID(), models.RoleMember)
	require.NoError(t, err)

	yes := true
	v, err := svc.UpdateRole(ctx, tc.OrganizationProfileID(), m.ID, models.RoleLeader, memberships.Permissions{CanManageEvents: &yes})
	require.NoError(t, err)
	assert.Equal(t, models.RoleLeader, v.Role)
	assert.Equal(t, 1, v.LeadershipRolesHeld)
	assert.True(t, v.CanManageEvents)

	v, err = svc.UpdateRole(ctx, tc.OrganizationProfileID(), m.ID, models.RoleAdmin, memberships.Permissions{})
	require.NoError(t, err)
	assert.Equal(t, 1, v.LeadershipRolesHeld)

	_, err = svc.UpdateRole(ctx, tc.OrganizationProfileID(), m.ID, "OWNER", memberships.Permissions{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_AddRating(t *testing.T) {
	tc, svc, _ := setup(t)
	ctx := testutil.TestContext(t)

	m, err := svc.Invite(ctx, tc.OrganizationProfileID(), tc.VolunteerProfileID(), "")
	require.NoError(t, err)

	v, err := svc.AddRating(ctx, tc.OrganizationProfileID(), m.ID, 4)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v.AverageRating, 1e-9)
	assert.Equal(t, 1, v.RatingsReceived)

	v, err = svc.AddRating(ctx, tc.OrganizationProfileID(), m.ID, 2)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, v.AverageRating, 1e-9)
	assert.Equal(t, 2, v.RatingsReceived)

	_, err = svc.AddRating(ctx, tc.OrganizationProfileID(), m.ID, 5.5)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	got, err := svc.Get(ctx, tc.VolunteerProfileID(), m.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got.AverageRating, 1e-9)
	assert.Equal(t, 2, got.RatingsReceived)
}

func TestService_LogActivity(t *testing.T) {
	tc, svc, d := setup(t)
	ctx := testutil.TestContext(t)

	pending, err := svc.RequestToJoin(ctx, tc.VolunteerProfileID(), tc.OrganizationProfileID(), "")
	require.NoError(t, err)
	_, err = svc.LogActivity(ctx, tc.OrganizationProfileID(), pending.ID, memberships.LogInput{Hours: 2})
	assert.ErrorIs(t, err, memberships.ErrNotActive)

	_, err = svc.ChangeStatus(ctx, tc.OrganizationProfileID(), pending.ID, models.MembershipActive, "")
	require.NoError(t, err)

	_, err = svc.LogActivity(ctx, tc.OrganizationProfileID(), pending.ID, memberships.LogInput{Hours: 3, Type: models.ActivityHoursLogged})
	require.NoError(t, err)
	act, err := svc.LogActivity(ctx, tc.OrganizationProfileID(), pending.ID, memberships.LogInput{Hours: 1.5, Type: models.ActivityTraining, Description: "CPR"})
	require.NoError(t, err)
	assert.Equal(t, models.ActivityTraining, act.Type)

	v, err := svc.Get(ctx, tc.OrganizationProfileID(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, v.HoursContributed)
	assert.Equal(t, 2, v.ActivitiesCompleted)
	assert.Equal(t, 1, v.TrainingsCompleted)
	assert.InDelta(t, 0.45+4+0.5, v.EngagementScore, 1e-9)
	assert.Equal(t, memberships.LevelInactive, v.EngagementLevel)

	var vd models.VolunteerDetails
	require.NoError(t, tc.DB.First(&vd, "profile_id = ?", tc.VolunteerProfileID()).Error)
	assert.Equal(t, 4.5, vd.TotalVolunteerHours)

	assert.Contains(t, d.calls, badges.TriggerHoursLogged)

	_, err = svc.LogActivity(ctx, tc.OrganizationProfileID(), pending.ID, memberships.LogInput{Hours: 30})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Roster(t *testing.T) {
	tc, svc, _ := setup(t)
	ctx := testutil.TestContext(t)
	org := tc.OrganizationProfileID()

	quiet, err := svc.Invite(ctx, org, tc.VolunteerProfileID(), "")
	require.NoError(t, err)
	busyVolunteer := testutil.CreateTestVolunteer(t, tc.DB)
	busy, err := svc.Invite(ctx, org, busyVolunteer.Profile.ID, "")
	require.NoError(t, err)
	_, err = svc.LogActivity(ctx, org, busy.ID, memberships.LogInput{Hours: 8})
	require.NoError(t, err)
	pendingVolunteer := testutil.CreateTestVolunteer(t, tc.DB)
	_, err = svc.RequestToJoin(ctx, pendingVolunteer.Profile.ID, org, "")
	require.NoError(t, err)

	roster, total, err := svc.Roster(ctx, org, models.MembershipActive, memberships.SortEngagement, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, roster, 2)
	assert.Equal(t, busy.ID, roster[0].ID)
	assert.Equal(t, quiet.ID, roster[1].ID)

	all, total, err := svc.Roster(ctx, org, "", memberships.SortJoined, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 1)

	clamped, _, err := svc.Roster(ctx, org, "", memberships.SortJoined, -100, 10)
	require.NoError(t, err)
	assert.Len(t, clamped, 3)

	mine, err := svc.ForVolunteer(ctx, tc.VolunteerProfileID())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Organization)
}
