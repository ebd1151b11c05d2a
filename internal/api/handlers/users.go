package handlers

import (
	"log/slog"
	"net/http"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/dto"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/middleware"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/validation"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/auth"
)

type UserHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

func NewUserHandler(authService *auth.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{authService: authService, logger: logger}
}

// UpdateMe handles PUT /api/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}

	name := validation.CleanText(req.Name)
	if name == "" {
		writeMessage(w, http.StatusBadRequest, "Validation failed", map[string]string{"name": "is required"})
		return
	}

	user, err := h.authService.UpdateName(r.Context(), middleware.GetUserID(r.Context()), name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserDTO(user))
}

// ChangePassword handles PUT /api/users/me/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.authService.ChangePassword(r.Context(), middleware.GetUserID(r.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Password updated"})
}
