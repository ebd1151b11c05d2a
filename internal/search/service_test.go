package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/search"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/testutil"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type stubSource struct {
	public      []models.Profile
	publicErr   error
	verified    []models.Profile
	verifiedErr error
}

func (s *stubSource) PublicOrganizations(context.Context) ([]models.Profile, error) {
	return s.public, s.publicErr
}

func (s *stubSource) VerifiedOrganizations(context.Context) ([]models.Profile, error) {
	return s.verified, s.verifiedErr
}

func profile(name string) models.Profile {
	return models.Profile{
		DisplayName:  name,
		Kind:         models.ProfileKindOrganization,
		Organization: &models.OrganizationDetails{OrganizationName: name},
	}
}

func TestBrowse_PrimarySearch(t *testing.T) {
	src := &stubSource{public: []models.Profile{profile("B"), profile("A"), profile("C")}}
	svc := search.NewService(nil, src, util.DiscardLogger())

	res := svc.Browse(context.Background(), search.OrganizationQuery{}, 1, 1)
	assert.Equal(t, search.StageSearch, res.Stage)
	assert.Equal(t, int64(3), res.Total)
	require.Len(t, res.Organizations, 1)
	assert.Equal(t, "B", res.Organizations[0].DisplayName)
}

func TestBrowse_OutOfRangeOffset(t *testing.T) {
	src := &stubSource{public: []models.Profile{profile("A"), profile("B")}}
	svc := search.NewService(nil, src, util.DiscardLogger())

	res := svc.Browse(context.Background(), search.OrganizationQuery{}, -9000, 100)
	assert.Equal(t, search.StageSearch, res.Stage)
	assert.Len(t, res.Organizations, 2)

	res = svc.Browse(context.Background(), search.OrganizationQuery{}, 1<<40, 100)
	assert.Equal(t, int64(2), res.Total)
	assert.Empty(t, res.Organizations)

	res = svc.Browse(context.Background(), search.OrganizationQuery{}, 1, int(^uint(0)>>1))
	require.Len(t, res.Organizations, 1)
}

func TestBrowse_FallsBackToVerified(t *testing.T) {
	src := &stubSource{
		publicErr: errors.New("connection refused"),
		verified:  []models.Profile{profile("Trusted")},
	}
	svc := search.NewService(nil, src, util.DiscardLogger())

	res := svc.Browse(context.Background(), search.OrganizationQuery{Name: "anything"}, 0, 20)
	assert.Equal(t, search.StageVerified, res.Stage)
	require.Len(t, res.Organizations, 1)
	assert.Equal(t, "Trusted", res.Organizations[0].DisplayName)
}

func TestBrowse_EmptyWhenEverythingFails(t *testing.T) {
	src := &stubSource{publicErr: errors.New("down"), verifiedErr: errors.New("still down")}
	svc := search.NewService(nil, src, util.DiscardLogger())

	res := svc.Browse(context.Background(), search.OrganizationQuery{}, 0, 20)
	assert.Equal(t, search.StageEmpty, res.Stage)
	assert.NotNil(t, res.Organizations)
	assert.Empty(t, res.Organizations)
	assert.Zero(t, res.Total)
}

func TestOrganizations_PropagatesErrors(t *testing.T) {
	svc := search.NewService(nil, &stubSource{publicErr: errors.New("down")}, util.DiscardLogger())
	_, err := svc.Organizations(context.Background(), search.OrganizationQuery{})
	assert.Error(t, err)
}

func TestGormSource(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	ctx := testutil.TestContext(t)

	verified := testutil.CreateTestOrganization(t, tc.DB)
	require.NoError(t, tc.DB.Model(&models.Profile{}).Where("id = ?", verified.Profile.ID).Update("verified", true).Error)
	require.NoError(t, tc.DB.Model(&models.OrganizationDetails{}).
		Where("profile_id = ?", verified.Profile.ID).
		Updates(map[string]interface{}{
			"organization_name": "Green Earth",
			"categories":        datatypes.JSONSlice[string]{"Environment", "Education"},
			"employee_count":    120,
		}).Error)

	hidden := testutil.CreateTestOrganization(t, tc.DB)
	require.NoError(t, tc.DB.Model(&models.Profile{}).Where("id = ?", hidden.Profile.ID).Update("is_public", false).Error)

	src := search.NewGormSource(tc.DB)
	public, err := src.PublicOrganizations(ctx)
	require.NoError(t, err)
	assert.Len(t, public, 2)
	for _, p := range public {
		require.NotNil(t, p.Organization)
		assert.NotEqual(t, hidden.Profile.ID, p.ID)
	}

	onlyVerified, err := src.VerifiedOrganizations(ctx)
	require.NoError(t, err)
	require.Len(t, onlyVerified, 1)
	assert.Equal(t, verified.Profile.ID, onlyVerified[0].ID)

	svc := search.NewService(tc.DB, src, util.DiscardLogger())
	orgs, err := svc.Organizations(ctx, search.OrganizationQuery{Category: "education", Size: "medium"})
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "Green Earth", orgs[0].Organization.OrganizationName)
}

func TestVolunteers(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	ctx := testutil.TestContext(t)

	other := testutil.CreateTestVolunteer(t, tc.DB)
	require.NoError(t, tc.DB.Create(&models.ProfileSkill{
		ProfileID: tc.VolunteerProfileID(), Name: "First Aid", NormalizedName: models.NormalizeName("First Aid"),
	}).Error)
	require.NoError(t, tc.DB.Model(&models.VolunteerDetails{}).
		Where("profile_id = ?", tc.VolunteerProfileID()).
		Updates(map[string]interface{}{"total_volunteer_hours": 12.5, "availability": models.AvailabilityWeekends}).Error)
	require.NoError(t, tc.DB.Model(&models.Profile{}).Where("id = ?", other.Profile.ID).
		Updates(map[string]interface{}{"city": "Seattle", "state": "WA"}).Error)

	svc := search.NewService(tc.DB, search.NewGormSource(tc.DB), util.DiscardLogger())

	tests := []struct {
		name string
		q    search.VolunteerQuery
		want int64
	}{
		{"no filters", search.VolunteerQuery{}, 2},
		{"skill", search.VolunteerQuery{Skill: "  first  AID "}, 1},
		{"unknown skill", search.VolunteerQuery{Skill: "welding"}, 0},
		{"location", search.VolunteerQuery{Location: "seatt"}, 1},
		{"availability", search.VolunteerQuery{Availability: models.AvailabilityWeekends}, 1},
		{"min hours", search.VolunteerQuery{MinHours: 10}, 1},
		{"combined", search.VolunteerQuery{Skill: "first aid", Location: "seattle"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := svc.Volunteers(ctx, tt.q, 0, 20)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
			assert.Len(t, got, int(tt.want))
			for _, p := range got {
				assert.NotNil(t, p.Volunteer)
			}
		})
	}
}
