package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/dto"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/auth"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/policy"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	ProfileIDKey contextKey = "profile_id"
	UserTypeKey  contextKey = "user_type"
	UserEmailKey contextKey = "user_email"
)

// TokenCookie is the cookie set on login for browser clients.
const TokenCookie = "token"

func Auth(tokens auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				msg := "Invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "Token has expired"
				}
				writeError(w, http.StatusUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// tokenFromRequest checks the Authorization header, then the cookie, then
// X-Auth-Token.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.Header.Get("X-Auth-Token")
}

// WithClaims stores the caller identity on ctx.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, ProfileIDKey, claims.ProfileID)
	ctx = context.WithValue(ctx, UserTypeKey, claims.UserType)
	ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
	if id := identityFrom(ctx); id != nil {
		id.userID = claims.UserID
	}
	return ctx
}

// Helper functions to extract values from context
func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func GetProfileID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ProfileIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func GetUserType(ctx context.Context) models.UserType {
	if t, ok := ctx.Value(UserTypeKey).(models.UserType); ok {
		return t
	}
	return ""
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

// RequireCapability rejects callers whose user type does not hold c.
func RequireCapability(c policy.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !policy.Allows(GetUserType(r.Context()), c) {
				writeError(w, http.StatusForbidden, "Your account type cannot perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: msg, Timestamp: time.Now().UTC()})
}
