package handlers

import (
	"log/slog"
	"net/http"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/dto"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/middleware"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/validation"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/memberships"
	"github.com/google/uuid"
)

// MembershipHandler serves /api/volunteer-management.
type MembershipHandler struct {
	memberships *memberships.Service
	logger      *slog.Logger
}

func NewMembershipHandler(membershipService *memberships.Service, logger *slog.Logger) *MembershipHandler {
	return &MembershipHandler{memberships: membershipService, logger: logger}
}

// Join handles POST /api/volunteer-management/join
func (h *MembershipHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req dto.JoinRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := h.memberships.RequestToJoin(r.Context(), middleware.GetProfileID(r.Context()), uuid.MustParse(req.OrganizationID), validation.CleanText(req.Notes))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, memberships.NewView(*m))
}

// Invite handles POST /api/volunteer-management/invite
func (h *MembershipHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req dto.InviteRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := h.memberships.Invite(r.Context(), middleware.GetProfileID(r.Context()), uuid.MustParse(req.VolunteerID), models.MembershipRole(req.Role))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, memberships.NewView(*m))
}

// Mine handles GET /api/volunteer-management/mine
func (h *MembershipHandler) Mine(w http.ResponseWriter, r *http.Request) {
	list, err := h.memberships.ForVolunteer(r.Context(), middleware.GetProfileID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Roster handles GET /api/volunteer-management/roster
func (h *MembershipHandler) Roster(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	sortBy := memberships.RosterSort(v.Get("sort"))
	switch sortBy {
	case "", memberships.SortJoined, memberships.SortEngagement:
	default:
		writeError(w, r, h.logger, apperr.Invalid("sort", "must be one of joined, engagement"))
		return
	}

	p := pagination(r)
	list, total, err := h.memberships.Roster(r.Context(), middleware.GetProfileID(r.Context()), models.MembershipStatus(v.Get("status")), sortBy, p.Offset(), p.PerPage)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(list, total, p))
}

// Get handles GET /api/volunteer-management/{id}
func (h *MembershipHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	view, err := h.memberships.Get(r.Context(), middleware.GetProfileID(r.Context()), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Leave handles POST /api/volunteer-management/{id}/leave
func (h *MembershipHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	view, err := h.memberships.Leave(r.Context(), middleware.GetProfileID(r.Context()), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateStatus handles PUT /api/volunteer-management/{id}/status
func (h *MembershipHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req dto.MembershipStatusRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.memberships.ChangeStatus(r.Context(), middleware.GetProfileID(r.Context()), id, models.MembershipStatus(req.Status), validation.CleanText(req.Notes))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateRole handles PUT /api/volunteer-management/{id}/role
func (h *MembershipHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req dto.MembershipRoleRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.memberships.UpdateRole(r.Context(), middleware.GetProfileID(r.Context()), id, models.MembershipRole(req.Role), memberships.Permissions{
		CanManageEvents:       req.CanManageEvents,
		CanReviewApplications: req.CanReviewApplications,
		CanMessageMembers:     req.CanMessageMembers,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Rate handles POST /api/volunteer-management/{id}/rating
func (h *MembershipHandler) Rate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req dto.RatingRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.memberships.AddRating(r.Context(), middleware.GetProfileID(r.Context()), id, req.Rating)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// LogActivity handles POST /api/volunteer-management/{id}/activities
func (h *MembershipHandler) LogActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req dto.LogActivityRequest
	if !decode(w, r, &req) {
		return
	}
	activity, err := h.memberships.LogActivity(r.Context(), middleware.GetProfileID(r.Context()), id, memberships.LogInput{
		Hours:       req.Hours,
		Type:        models.ActivityType(req.Type),
		Description: validation.CleanText(req.Description),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, activity)
}
