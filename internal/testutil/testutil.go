package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/auth"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestPassword = "testpassword123"

// SetupTestDB creates an in-memory SQLite database for testing. The pool is
// pinned to one connection so every query sees the same in-memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// CreateTestVolunteer creates a volunteer user with profile and details.
func CreateTestVolunteer(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createTestUser(t, db, models.UserTypeVolunteer, "Test Volunteer")
}

// CreateTestOrganization creates an organization user with profile and details.
func CreateTestOrganization(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createTestUser(t, db, models.UserTypeOrganization, "Test Organization")
}

func createTestUser(t *testing.T, db *gorm.DB, userType models.UserType, name string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base:         models.Base{ID: uuid.New()},
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Name:         name,
		UserType:     userType,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	profile := &models.Profile{
		UserID:      user.ID,
		Kind:        models.KindFor(userType),
		DisplayName: name,
		IsPublic:    true,
		City:        "Portland",
		State:       "OR",
		Country:     "US",
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}

	switch profile.Kind {
	case models.ProfileKindOrganization:
		details := &models.OrganizationDetails{
			ProfileID:        profile.ID,
			OrganizationName: name,
			Type:             models.OrgTypeNonprofit,
		}
		if err := db.Create(details).Error; err != nil {
			t.Fatalf("failed to create organization details: %v", err)
		}
		profile.Organization = details
	case models.ProfileKindVolunteer:
		details := &models.VolunteerDetails{
			ProfileID:    profile.ID,
			Availability: models.AvailabilityFlexible,
		}
		if err := db.Create(details).Error; err != nil {
			t.Fatalf("failed to create volunteer details: %v", err)
		}
		profile.Volunteer = details
	}

	user.Profile = profile
	return user
}

// CreateTestEvent creates a published event starting in three days with ten
// seats. Options run before insert.
func CreateTestEvent(t *testing.T, db *gorm.DB, organizationID uuid.UUID, opts ...func(*models.Event)) *models.Event {
	t.Helper()

	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	event := &models.Event{
		OrganizationID: organizationID,
		Title:          "Park Cleanup",
		Description:    "Help clean the riverside park",
		Category:       "Environment",
		Location:       "Portland, OR",
		StartsAt:       start,
		EndsAt:         start.Add(4 * time.Hour),
		Status:         models.EventPublished,
		MaxVolunteers:  10,
	}
	for _, opt := range opts {
		opt(event)
	}

	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to create test event: %v", err)
	}
	return event
}

// CreateTestApplication inserts an application in the given status without
// touching event counters.
func CreateTestApplication(t *testing.T, db *gorm.DB, volunteerID, eventID uuid.UUID, status models.ApplicationStatus) *models.Application {
	t.Helper()

	app := &models.Application{
		VolunteerID: volunteerID,
		EventID:     eventID,
		Status:      status,
		Message:     "I'd like to help",
	}
	if err := db.Create(app).Error; err != nil {
		t.Fatalf("failed to create test application: %v", err)
	}
	return app
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.Profile.ID, user.Email, user.UserType)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB                *gorm.DB
	JWTService        *auth.JWTService
	Volunteer         *models.User
	Organization      *models.User
	VolunteerToken    string
	OrganizationToken string
}

// NewTestContext creates a complete test setup with DB, one volunteer, one
// organization and their tokens.
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	volunteer := CreateTestVolunteer(t, db)
	org := CreateTestOrganization(t, db)

	return &TestSetup{
		DB:                db,
		JWTService:        jwtService,
		Volunteer:         volunteer,
		Organization:      org,
		VolunteerToken:    GenerateTestToken(t, jwtService, volunteer),
		OrganizationToken: GenerateTestToken(t, jwtService, org),
	}
}

// VolunteerProfileID is the profile id of the default volunteer.
func (ts *TestSetup) VolunteerProfileID() uuid.UUID {
	return ts.Volunteer.Profile.ID
}

// OrganizationProfileID is the profile id of the default organization.
func (ts *TestSetup) OrganizationProfileID() uuid.UUID {
	return ts.Organization.Profile.ID
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
