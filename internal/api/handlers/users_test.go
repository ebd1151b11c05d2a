package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/dto"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/handlers"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/middleware"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/auth"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/testutil"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/util"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup, *auth.Service) {
	tc := testutil.NewTestContext(t)
	authService := auth.NewService(tc.DB, tc.JWTService)
	handler := handlers.NewUserHandler(authService, util.DiscardLogger())

	r := chi.NewRouter()
	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService))
		r.Put("/me", handler.UpdateMe)
		r.Put("/me/password", handler.ChangePassword)
	})
	return r, tc, authService
}

func TestUserHandler_UpdateMe(t *testing.T) {
	router, tc, _ := setupUserTestRouter(t)
	defer tc.Cleanup()

	t.Run("renames", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "PUT", "/api/users/me", map[string]string{"name": " <b>Robin</b> Lee "}, tc.VolunteerToken))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var user dto.UserDTO
		testutil.ParseJSONResponse(t, rr, &user)
		assert.Equal(t, "Robin Lee", user.Name)
		assert.Equal(t, tc.Volunteer.Email, user.Email)
	})

	t.Run("markup only is empty", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "PUT", "/api/users/me", map[string]string{"name": "<i></i>"}, tc.VolunteerToken))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("requires token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.UnauthenticatedRequest(t, "PUT", "/api/users/me", map[string]string{"name": "Robin"}))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestUserHandler_ChangePassword(t *testing.T) {
	router, tc, authService := setupUserTestRouter(t)
	defer tc.Cleanup()

	change := func(t *testing.T, current, next string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "PUT", "/api/users/me/password", map[string]string{
			"current_password": current,
			"new_password":     next,
		}, tc.OrganizationToken))
		return rr
	}

	assert.Equal(t, http.StatusUnauthorized, change(t, "wrongpassword1", "brandnew123").Code)
	assert.Equal(t, http.StatusBadRequest, change(t, testutil.TestPassword, "short").Code)
	assert.Equal(t, http.StatusBadRequest, change(t, testutil.TestPassword, testutil.TestPassword).Code)

	rr := change(t, testutil.TestPassword, "brandnew123")
	testutil.AssertStatus(t, rr, http.StatusOK)

	_, err := authService.Login(testutil.TestContext(t), auth.LoginInput{Email: tc.Organization.Email, Password: "brandnew123"})
	require.NoError(t, err)
	_, err = authService.Login(testutil.TestContext(t), auth.LoginInput{Email: tc.Organization.Email, Password: testutil.TestPassword})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
