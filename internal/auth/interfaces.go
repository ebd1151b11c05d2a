package auth

import (
	"context"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/google/uuid"
)

// Authenticator defines the interface for user authentication operations.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	LoginOAuth(ctx context.Context, id Identity, userType models.UserType) (*AuthResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateToken(userID, profileID uuid.UUID, email string, userType models.UserType) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// IdentityProvider is an external OAuth sign-in provider.
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator    = (*Service)(nil)
	_ TokenService     = (*JWTService)(nil)
	_ IdentityProvider = (*GoogleProvider)(nil)
)
