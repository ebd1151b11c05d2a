package handlers

import (
	"log/slog"
	"net/http"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/middleware"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/google/uuid"
)

type BadgeHandler struct {
	badges *badges.Service
	logger *slog.Logger
}

func NewBadgeHandler(badgeService *badges.Service, logger *slog.Logger) *BadgeHandler {
	return &BadgeHandler{badges: badgeService, logger: logger}
}

type badgeSummary struct {
	Badges      []badges.View `json:"badges"`
	TotalPoints int           `json:"total_points"`
}

// Catalog handles GET /api/badges
func (h *BadgeHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, badges.Catalog())
}

// Mine handles GET /api/badges/mine. Progress on unfinished badges is
// included unless completed=true.
func (h *BadgeHandler) Mine(w http.ResponseWriter, r *http.Request) {
	completed, err := parseBool(r, "completed")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.summary(w, r, middleware.GetProfileID(r.Context()), completed != nil && *completed)
}

// ForProfile handles GET /api/badges/profiles/{id}. Other profiles only
// show earned badges.
func (h *BadgeHandler) ForProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	h.summary(w, r, id, id != middleware.GetProfileID(r.Context()))
}

func (h *BadgeHandler) summary(w http.ResponseWriter, r *http.Request, profileID uuid.UUID, completedOnly bool) {
	views, err := h.badges.ForProfile(r.Context(), profileID, completedOnly)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, badgeSummary{Badges: views, TotalPoints: badges.TotalPoints(views)})
}

// Points handles GET /api/badges/profiles/{id}/points
func (h *BadgeHandler) Points(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	points, err := h.badges.Points(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total_points": points})
}
