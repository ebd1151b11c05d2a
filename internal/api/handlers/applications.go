package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/dto"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/middleware"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/validation"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/applications"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/google/uuid"
)

type ApplicationHandler struct {
	applications *applications.Service
	logger       *slog.Logger
}

func NewApplicationHandler(applicationService *applications.Service, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applicationService, logger: logger}
}

// Submit handles POST /api/applications
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitApplicationRequest
	if !decode(w, r, &req) {
		return
	}
	eventID := uuid.MustParse(req.EventID)

	app, err := h.applications.Submit(r.Context(), middleware.GetProfileID(r.Context()), eventID, validation.CleanText(req.Message))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// Mine handles GET /api/applications/mine
func (h *ApplicationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	p := pagination(r)
	status := models.ApplicationStatus(r.URL.Query().Get("status"))
	list, total, err := h.applications.ListForVolunteer(r.Context(), middleware.GetProfileID(r.Context()), status, p.Offset(), p.PerPage)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(list, total, p))
}

// ForEvent handles GET /api/events/{id}/applications
func (h *ApplicationHandler) ForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	p := pagination(r)
	status := models.ApplicationStatus(r.URL.Query().Get("status"))
	list, total, err := h.applications.ListForEvent(r.Context(), middleware.GetProfileID(r.Context()), eventID, status, p.Offset(), p.PerPage)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(list, total, p))
}

// Get handles GET /api/applications/{id}
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	app, err := h.applications.Get(r.Context(), middleware.GetProfileID(r.Context()), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// Approve handles POST /api/applications/{id}/approve
func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.applications.Approve)
}

// Reject handles POST /api/applications/{id}/reject
func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.applications.Reject)
}

func (h *ApplicationHandler) review(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, organizationID, applicationID uuid.UUID, notes string) (*models.Application, error)) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req dto.ReviewApplicationRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	app, err := fn(r.Context(), middleware.GetProfileID(r.Context()), id, validation.CleanText(req.Notes))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// Attended handles POST /api/applications/{id}/attended
func (h *ApplicationHandler) Attended(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req dto.AttendanceRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.applications.MarkAttended(r.Context(), middleware.GetProfileID(r.Context()), id, req.Hours)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	earned := result.BadgesEarned
	if earned == nil {
		earned = []badges.BadgeType{}
	}
	writeJSON(w, http.StatusOK, dto.AttendanceResponse{Application: result.Application, BadgesEarned: earned})
}

// NoShow handles POST /api/applications/{id}/no-show
func (h *ApplicationHandler) NoShow(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	app, err := h.applications.MarkNoShow(r.Context(), middleware.GetProfileID(r.Context()), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// Withdraw handles POST /api/applications/{id}/withdraw
func (h *ApplicationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	app, err := h.applications.Withdraw(r.Context(), middleware.GetProfileID(r.Context()), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
