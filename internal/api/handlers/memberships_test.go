package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/dto"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/handlers"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/middleware"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/memberships"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/policy"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/testutil"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/util"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMembershipTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	dispatcher := badges.NewInlineDispatcher(badges.NewService(tc.DB, util.DiscardLogger()))
	handler := handlers.NewMembershipHandler(memberships.NewService(tc.DB, dispatcher, util.DiscardLogger()), util.DiscardLogger())

	r := chi.NewRouter()
	r.Route("/api/volunteer-management", func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService))
		r.Get("/{id}", handler.Get)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(policy.JoinOrganizations))
			r.Post("/join", handler.Join)
			r.Get("/mine", handler.Mine)
			r.Post("/{id}/leave", handler.Leave)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(policy.ManageMembers))
			r.Post("/invite", handler.Invite)
			r.Get("/roster", handler.Roster)
			r.Put("/{id}/status", handler.UpdateStatus)
			r.Put("/{id}/role", handler.UpdateRole)
			r.Post("/{id}/rating", handler.Rate)
		})
		r.With(middleware.RequireCapability(policy.LogActivity)).Post("/{id}/activities", handler.LogActivity)
	})

	return r, tc
}

func TestMembershipHandler_JoinFlow(t *testing.T) {
	router, tc := setupMembershipTestRouter(t)
	defer tc.Cleanup()

	var joined memberships.View

	t.Run("volunteer requests to join", func(t *testing.T) {
		body := map[string]string{"organization_id": tc.OrganizationProfileID().String(), "notes": "Saw the flyer"}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", "/api/volunteer-management/join", body, tc.VolunteerToken))

		testutil.AssertStatus(t, rr, http.StatusCreated)
		testutil.ParseJSONResponse(t, rr, &joined)
		assert.Equal(t, models.MembershipPending, joined.Status)
		assert.Equal(t, models.RoleMember, joined.Role)
		assert.Nil(t, joined.JoinedAt)
	})

	t.Run("second request conflicts", func(t *testing.T) {
		body := map[string]string{"organization_id": tc.OrganizationProfileID().String()}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", "/api/volunteer-management/join", body, tc.VolunteerToken))
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("cannot join a volunteer", func(t *testing.T) {
		other := testutil.CreateTestVolunteer(t, tc.DB)
		body := map[string]string{"organization_id": other.Profile.ID.String()}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", "/api/volunteer-management/join", body, tc.VolunteerToken))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	path := func() string { return "/api/volunteer-management/" + joined.ID.String() }

	t.Run("organization approves", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "PUT", path()+"/status", map[string]string{"status": "ACTIVE"}, tc.OrganizationToken))

		testutil.AssertStatus(t, rr, http.StatusOK)
		var view memberships.View
		testutil.ParseJSONResponse(t, rr, &view)
		assert.Equal(t, models.MembershipActive, view.Status)
		assert.NotNil(t, view.JoinedAt)
	})

	t.Run("invalid transition", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "PUT", path()+"/status", map[string]string{"status": "PENDING"}, tc.OrganizationToken))
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("volunteers cannot change status", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "PUT", path()+"/status", map[string]string{"status": "SUSPENDED"}, tc.VolunteerToken))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("log activity", func(t *testing.T) {
		body := map[string]interface{}{"hours": 3.5, "type": "TRAINING", "description": "Safety briefing"}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", path()+"/activities", body, tc.OrganizationToken))

		testutil.AssertStatus(t, rr, http.StatusCreated)
		var activity models.VolunteerActivity
		testutil.ParseJSONResponse(t, rr, &activity)
		assert.Equal(t, models.ActivityTraining, activity.Type)
		assert.Equal(t, 3.5, activity.Hours)

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "GET", path(), nil, tc.VolunteerToken))
		testutil.AssertStatus(t, rr, http.StatusOK)
		var view memberships.View
		testutil.ParseJSONResponse(t, rr, &view)
		assert.Equal(t, 3.5, view.HoursContributed)
		assert.Equal(t, 1, view.TrainingsCompleted)
		assert.Greater(t, view.EngagementScore, 0.0)
	})

	t.Run("rating", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", path()+"/rating", map[string]float64{"rating": 4}, tc.OrganizationToken))
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", path()+"/rating", map[string]float64{"rating": 5}, tc.OrganizationToken))
		testutil.AssertStatus(t, rr, http.StatusOK)
		var view memberships.View
		testutil.ParseJSONResponse(t, rr, &view)
		assert.InDelta(t, 4.5, view.AverageRating, 0.001)
		assert.Equal(t, 2, view.RatingsReceived)

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", path()+"/rating", map[string]float64{"rating": 6}, tc.OrganizationToken))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("promote to leader", func(t *testing.T) {
		body := map[string]interface{}{"role": "LEADER", "can_manage_events": true}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "PUT", path()+"/role", body, tc.OrganizationToken))

		testutil.AssertStatus(t, rr, http.StatusOK)
		var view memberships.View
		testutil.ParseJSONResponse(t, rr, &view)
		assert.Equal(t, models.RoleLeader, view.Role)
		assert.True(t, view.CanManageEvents)
		assert.Equal(t, 1, view.LeadershipRolesHeld)
	})

	t.Run("roster", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "GET", "/api/volunteer-management/roster?status=ACTIVE&sort=engagement", nil, tc.OrganizationToken))
		testutil.AssertStatus(t, rr, http.StatusOK)
		var resp dto.PaginatedResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, int64(1), resp.Total)

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "GET", "/api/volunteer-management/roster?sort=alphabetical", nil, tc.OrganizationToken))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("volunteer leaves as alumni", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", path()+"/leave", nil, tc.VolunteerToken))

		testutil.AssertStatus(t, rr, http.StatusOK)
		var view memberships.View
		testutil.ParseJSONResponse(t, rr, &view)
		assert.Equal(t, models.MembershipAlumni, view.Status)
		assert.NotNil(t, view.LeftAt)
	})

	t.Run("ended memberships cannot be requested again", func(t *testing.T) {
		body := map[string]string{"organization_id": tc.OrganizationProfileID().String()}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", "/api/volunteer-management/join", body, tc.VolunteerToken))
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "has ended")
	})
}

func TestMembershipHandler_Invite(t *testing.T) {
	router, tc := setupMembershipTestRouter(t)
	defer tc.Cleanup()

	body := map[string]string{"volunteer_id": tc.VolunteerProfileID().String(), "role": "COORDINATOR"}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", "/api/volunteer-management/invite", body, tc.OrganizationToken))

	testutil.AssertStatus(t, rr, http.StatusCreated)
	var view memberships.View
	testutil.ParseJSONResponse(t, rr, &view)
	assert.Equal(t, models.MembershipActive, view.Status)
	assert.Equal(t, models.RoleCoordinator, view.Role)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "GET", "/api/volunteer-management/mine", nil, tc.VolunteerToken))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var mine []memberships.View
	testutil.ParseJSONResponse(t, rr, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, view.ID, mine[0].ID)

	t.Run("strangers cannot read it", func(t *testing.T) {
		other := testutil.CreateTestVolunteer(t, tc.DB)
		token := testutil.GenerateTestToken(t, tc.JWTService, other)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "GET", "/api/volunteer-management/"+view.ID.String(), nil, token))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("bad role", func(t *testing.T) {
		other := testutil.CreateTestVolunteer(t, tc.DB)
		body := map[string]string{"volunteer_id": other.Profile.ID.String(), "role": "OWNER"}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", "/api/volunteer-management/invite", body, tc.OrganizationToken))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestMembershipHandler_JoinAfterProfileDeleted(t *testing.T) {
	router, tc := setupMembershipTestRouter(t)
	defer tc.Cleanup()

	require.NoError(t, tc.DB.Delete(&models.Profile{}, "id = ?", tc.VolunteerProfileID()).Error)

	body := map[string]string{"organization_id": tc.OrganizationProfileID().String()}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", "/api/volunteer-management/join", body, tc.VolunteerToken))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
