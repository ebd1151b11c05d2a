package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = fmt.Errorf("%w: user", apperr.ErrNotFound)
	ErrUserExists         = fmt.Errorf("%w: user already exists", apperr.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)
	ErrInactiveUser       = fmt.Errorf("%w: user is inactive", apperr.ErrForbidden)
)

type Service struct {
	db  *gorm.DB
	jwt *JWTService
}

func NewService(db *gorm.DB, jwt *JWTService) *Service {
	return &Service{db: db, jwt: jwt}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	UserType models.UserType

	// Organization accounts only
	OrganizationName string
	OrganizationType models.OrganizationType
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := normalizeEmail(input.Email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         input.Name,
		UserType:     input.UserType,
		IsActive:     true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createAccount(tx, &user, input.OrganizationName, input.OrganizationType)
	})
	if err != nil {
		return nil, err
	}

	return s.respond(&user)
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Profile").
		Where("email = ?", normalizeEmail(input.Email)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	s.touchLogin(ctx, &user)
	return s.respond(&user)
}

// LoginOAuth signs in a user from a provider identity. A known subject logs
// in directly; a known email is linked to the provider; otherwise a new
// account of userType is created.
func (s *Service) LoginOAuth(ctx context.Context, id Identity, userType models.UserType) (*AuthResponse, error) {
	if id.Subject == "" || id.Email == "" {
		return nil, ErrInvalidCredentials
	}
	email := normalizeEmail(id.Email)

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Profile").
			Where("oauth_provider = ? AND oauth_subject = ?", id.Provider, id.Subject).
			First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Preload("Profile").Where("email = ?", email).First(&user).Error
		if err == nil {
			// Only link when the provider vouches for the address.
			if !id.EmailVerified {
				return ErrUserExists
			}
			return tx.Model(&user).Updates(map[string]interface{}{
				"oauth_provider": id.Provider,
				"oauth_subject":  id.Subject,
			}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if !userType.Valid() {
			userType = models.UserTypeVolunteer
		}
		name := id.Name
		if name == "" {
			name = strings.Split(email, "@")[0]
		}
		user = models.User{
			Email:         email,
			Name:          name,
			UserType:      userType,
			IsActive:      true,
			OAuthProvider: id.Provider,
			OAuthSubject:  id.Subject,
		}
		return createAccount(tx, &user, name, models.OrgTypeNonprofit)
	})
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	s.touchLogin(ctx, &user)
	return s.respond(&user)
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Profile").
		First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateName changes the account display name.
func (s *Service) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return s.GetUserByID(ctx, id)
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user.PasswordHash != "" && !CheckPassword(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash).Error
}

// Token issues a fresh token for an existing user.
func (s *Service) Token(user *models.User) (string, error) {
	if user.Profile == nil {
		return "", fmt.Errorf("user %s has no profile", user.ID)
	}
	return s.jwt.GenerateToken(user.ID, user.Profile.ID, user.Email, user.UserType)
}

func (s *Service) respond(user *models.User) (*AuthResponse, error) {
	token, err := s.Token(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: user}, nil
}

func (s *Service) touchLogin(ctx context.Context, user *models.User) {
	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("last_login_at", now).Error; err == nil {
		user.LastLoginAt = &now
	}
}

// createAccount inserts the user with its profile and the detail record
// matching the user type.
func createAccount(tx *gorm.DB, user *models.User, orgName string, orgType models.OrganizationType) error {
	if err := tx.Create(user).Error; err != nil {
		if database.IsDuplicate(err) {
			return ErrUserExists
		}
		return err
	}

	profile := models.Profile{
		UserID:      user.ID,
		Kind:        models.KindFor(user.UserType),
		DisplayName: user.Name,
		IsPublic:    true,
	}
	if err := tx.Create(&profile).Error; err != nil {
		return err
	}

	switch profile.Kind {
	case models.ProfileKindOrganization:
		if orgName == "" {
			orgName = user.Name
		}
		if orgType == "" {
			orgType = models.OrgTypeNonprofit
		}
		details := models.OrganizationDetails{
			ProfileID:        profile.ID,
			OrganizationName: orgName,
			Type:             orgType,
		}
		if err := tx.Create(&details).Error; err != nil {
			return err
		}
		profile.Organization = &details
	case models.ProfileKindVolunteer:
		details := models.VolunteerDetails{
			ProfileID:    profile.ID,
			Availability: models.AvailabilityFlexible,
		}
		if err := tx.Create(&details).Error; err != nil {
			return err
		}
		profile.Volunteer = &details
	}

	user.Profile = &profile
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
