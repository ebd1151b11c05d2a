package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/dto"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/middleware"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/validation"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/auth"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/google/uuid"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthUserTypeCookie = "oauth_user_type"
	oauthCookieTTL      = 10 * time.Minute
)

type AuthHandler struct {
	authService   *auth.Service
	google        auth.IdentityProvider
	secureCookies bool
	tokenTTL      time.Duration
	logger        *slog.Logger
}

type AuthHandlerOptions struct {
	// Google is nil when Google sign-in is not configured.
	Google        auth.IdentityProvider
	SecureCookies bool
	TokenTTL      time.Duration
}

func NewAuthHandler(authService *auth.Service, opts AuthHandlerOptions, logger *slog.Logger) *AuthHandler {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &AuthHandler{
		authService:   authService,
		google:        opts.Google,
		secureCookies: opts.SecureCookies,
		tokenTTL:      opts.TokenTTL,
		logger:        logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		Name:             validation.CleanText(req.Name),
		UserType:         models.UserType(req.UserType),
		OrganizationName: validation.CleanText(req.OrganizationName),
		OrganizationType: models.OrganizationType(req.OrganizationType),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.setTokenCookie(w, resp.Token)
	writeJSON(w, http.StatusCreated, dto.AuthResponse{Token: resp.Token, User: dto.NewUserDTO(resp.User)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.setTokenCookie(w, resp.Token)
	writeJSON(w, http.StatusOK, dto.AuthResponse{Token: resp.Token, User: dto.NewUserDTO(resp.User)})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserDTO(user))
}

// GoogleStart handles GET /api/auth/google. The optional user_type query
// parameter picks the account type created on first sign-in.
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeMessage(w, http.StatusNotFound, "Google sign-in is not configured", nil)
		return
	}

	userType := models.UserType(r.URL.Query().Get("user_type"))
	if userType == "" {
		userType = models.UserTypeVolunteer
	}
	if !userType.Valid() {
		writeMessage(w, http.StatusBadRequest, "Validation failed", map[string]string{"user_type": "must be one of: VOLUNTEER ORGANIZATION"})
		return
	}

	state := uuid.NewString()
	h.setShortCookie(w, oauthStateCookie, state)
	h.setShortCookie(w, oauthUserTypeCookie, string(userType))
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback handles GET /api/auth/google/callback
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeMessage(w, http.StatusNotFound, "Google sign-in is not configured", nil)
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeMessage(w, http.StatusBadRequest, "Invalid OAuth state", nil)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeMessage(w, http.StatusBadRequest, "Missing authorization code", nil)
		return
	}

	userType := models.UserTypeVolunteer
	if c, err := r.Cookie(oauthUserTypeCookie); err == nil {
		userType = models.UserType(c.Value)
	}

	identity, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Warn("oauth exchange failed", "provider", h.google.Name(), "error", err)
		writeMessage(w, http.StatusUnauthorized, "Sign-in with "+h.google.Name()+" failed", nil)
		return
	}

	resp, err := h.authService.LoginOAuth(r.Context(), *identity, userType)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.clearCookie(w, oauthStateCookie)
	h.clearCookie(w, oauthUserTypeCookie)
	h.setTokenCookie(w, resp.Token)
	writeJSON(w, http.StatusOK, dto.AuthResponse{Token: resp.Token, User: dto.NewUserDTO(resp.User)})
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.tokenTTL.Seconds()),
	})
}

func (h *AuthHandler) setShortCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthCookieTTL.Seconds()),
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/api/auth", HttpOnly: true, MaxAge: -1})
}
