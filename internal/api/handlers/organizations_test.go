package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/dto"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/handlers"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/middleware"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/search"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/testutil"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/util"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubSource struct {
	public    []models.Profile
	publicErr error
	verified  []models.Profile
	verErr    error
}

func (s *stubSource) PublicOrganizations(ctx context.Context) ([]models.Profile, error) {
	return s.public, s.publicErr
}

func (s *stubSource) VerifiedOrganizations(ctx context.Context) ([]models.Profile, error) {
	return s.verified, s.verErr
}

func setupSearchTestRouter(t *testing.T, db *gorm.DB, source search.Source, tc *testutil.TestSetup) *chi.Mux {
	handler := handlers.NewSearchHandler(search.NewService(db, source, util.DiscardLogger()), util.DiscardLogger())

	r := chi.NewRouter()
	r.Get("/api/organizations", handler.Organizations)
	r.Get("/api/organizations/sizes", handler.Sizes)
	if tc != nil {
		r.With(middleware.Auth(tc.JWTService)).Get("/api/profiles/volunteers", handler.Volunteers)
	}
	return r
}

func browse(t *testing.T, router http.Handler, query string) (*httptest.ResponseRecorder, dto.BrowseResponse) {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.UnauthenticatedRequest(t, "GET", "/api/organizations"+query, nil))
	var resp dto.BrowseResponse
	if rr.Code == http.StatusOK {
		testutil.ParseJSONResponse(t, rr, &resp)
	}
	return rr, resp
}

func TestSearchHandler_Organizations(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()

	second := testutil.CreateTestOrganization(t, tc.DB)
	require.NoError(t, tc.DB.Model(&models.OrganizationDetails{}).
		Where("profile_id = ?", second.Profile.ID).
		Updates(map[string]interface{}{"organization_name": "Animal Rescue League", "employee_count": 300}).Error)

	router := setupSearchTestRouter(t, tc.DB, search.NewGormSource(tc.DB), nil)

	t.Run("lists public organizations anonymously", func(t *testing.T) {
		rr, resp := browse(t, router, "")
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "search", resp.Stage)
		assert.Equal(t, int64(2), resp.Total)
	})

	t.Run("filters by name and size", func(t *testing.T) {
		_, resp := browse(t, router, "?q=rescue")
		assert.Equal(t, int64(1), resp.Total)

		_, resp = browse(t, router, "?size=large")
		assert.Equal(t, int64(1), resp.Total)
	})

	t.Run("malformed parameters", func(t *testing.T) {
		for _, q := range []string{"?size=huge", "?sort=random", "?verified=perhaps", "?founded_from=abc", "?founded_from=2010&founded_to=2000"} {
			rr, _ := browse(t, router, q)
			assert.Equal(t, http.StatusBadRequest, rr.Code, q)
		}
	})
}

func TestSearchHandler_OrganizationsFallback(t *testing.T) {
	verified := models.Profile{
		Kind:         models.ProfileKindOrganization,
		DisplayName:  "Trusted Org",
		IsPublic:     true,
		Verified:     true,
		Organization: &models.OrganizationDetails{OrganizationName: "Trusted Org"},
	}

	t.Run("search failure falls back to verified", func(t *testing.T) {
		source := &stubSource{publicErr: errors.New("connection reset"), verified: []models.Profile{verified}}
		router := setupSearchTestRouter(t, nil, source, nil)

		rr, resp := browse(t, router, "?name=anything")
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "verified", resp.Stage)
		assert.Equal(t, int64(1), resp.Total)
	})

	t.Run("everything failing is an empty list", func(t *testing.T) {
		source := &stubSource{publicErr: errors.New("down"), verErr: errors.New("down")}
		router := setupSearchTestRouter(t, nil, source, nil)

		rr, resp := browse(t, router, "")
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "empty", resp.Stage)
		assert.Equal(t, int64(0), resp.Total)
		assert.Contains(t, rr.Body.String(), `"data":[]`)
	})
}

func TestSearchHandler_OrganizationsHugePage(t *testing.T) {
	source := &stubSource{public: []models.Profile{{
		Kind:         models.ProfileKindOrganization,
		DisplayName:  "Only Org",
		IsPublic:     true,
		Organization: &models.OrganizationDetails{OrganizationName: "Only Org"},
	}}}
	router := setupSearchTestRouter(t, nil, source, nil)

	for _, q := range []string{"?page=100000000000000001&per_page=100", "?page=99999999999999999999", "?page=-5"} {
		rr, resp := browse(t, router, q)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, int64(1), resp.Total, q)
		assert.LessOrEqual(t, resp.Page, dto.MaxPage, q)
	}

	_, resp := browse(t, router, "?page=100000000000000001")
	assert.Equal(t, dto.MaxPage, resp.Page)
	assert.Empty(t, resp.Data)
}

func TestSearchHandler_Volunteers(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()

	router := setupSearchTestRouter(t, tc.DB, search.NewGormSource(tc.DB), tc)

	require.NoError(t, tc.DB.Create(&models.ProfileSkill{
		ProfileID:      tc.VolunteerProfileID(),
		Name:           "First Aid",
		NormalizedName: models.NormalizeName("First Aid"),
		Proficiency:    models.ProficiencyExpert,
	}).Error)

	query := func(t *testing.T, q string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "GET", "/api/profiles/volunteers"+q, nil, tc.OrganizationToken))
		return rr
	}
	total := func(t *testing.T, q string) int64 {
		rr := query(t, q)
		testutil.AssertStatus(t, rr, http.StatusOK)
		var resp dto.PaginatedResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		return resp.Total
	}

	assert.Equal(t, int64(1), total(t, ""))
	assert.Equal(t, int64(1), total(t, "?skill=first%20aid"))
	assert.Equal(t, int64(0), total(t, "?skill=carpentry"))
	assert.Equal(t, int64(1), total(t, "?location=portland&availability=FLEXIBLE"))
	assert.Equal(t, int64(0), total(t, "?min_hours=10"))
	assert.Equal(t, http.StatusBadRequest, query(t, "?min_hours=-1").Code)
}

func TestSearchHandler_Sizes(t *testing.T) {
	router := setupSearchTestRouter(t, nil, &stubSource{}, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.UnauthenticatedRequest(t, "GET", "/api/organizations/sizes", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var buckets []search.SizeBucket
	testutil.ParseJSONResponse(t, rr, &buckets)
	require.Len(t, buckets, 4)
	assert.Equal(t, "small", buckets[0].Key)
	assert.Equal(t, 50, buckets[0].Max)
	assert.Zero(t, buckets[3].Max)
}
