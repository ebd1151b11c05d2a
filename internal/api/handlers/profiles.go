package handlers

import (
	"log/slog"
	"net/http"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/dto"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/middleware"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/profiles"
)

type ProfileHandler struct {
	profiles *profiles.Service
	logger   *slog.Logger
}

func NewProfileHandler(profileService *profiles.Service, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profileService, logger: logger}
}

// Me handles GET /api/profiles/me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	view, err := h.profiles.Own(r.Context(), middleware.GetProfileID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Get handles GET /api/profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	view, err := h.profiles.Get(r.Context(), middleware.GetProfileID(r.Context()), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Update handles PUT /api/profiles/me
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}

	in := profiles.UpdateInput{
		DisplayName:      req.DisplayName,
		Bio:              req.Bio,
		AvatarURL:        req.AvatarURL,
		City:             req.City,
		State:            req.State,
		Country:          req.Country,
		IsPublic:         req.IsPublic,
		ShowEmail:        req.ShowEmail,
		ShowLocation:     req.ShowLocation,
		ShowPhone:        req.ShowPhone,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Phone:            req.Phone,
		EmergencyContact: req.EmergencyContact,
		OrganizationName: req.OrganizationName,
		Categories:       req.Categories,
		Mission:          req.Mission,
		Website:          req.Website,
		EmployeeCount:    req.EmployeeCount,
		FoundedYear:      req.FoundedYear,
	}
	if req.Availability != nil {
		a := models.Availability(*req.Availability)
		in.Availability = &a
	}
	if req.OrganizationType != nil {
		t := models.OrganizationType(*req.OrganizationType)
		in.OrganizationType = &t
	}

	view, err := h.profiles.Update(r.Context(), middleware.GetProfileID(r.Context()), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Delete handles DELETE /api/profiles/me. The account is deactivated with it.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Delete(r.Context(), middleware.GetProfileID(r.Context())); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: middleware.TokenCookie, Value: "", Path: "/", HttpOnly: true, MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

// Skills handles GET /api/profiles/{id}/skills
func (h *ProfileHandler) Skills(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	// Visibility follows the profile itself.
	if _, err := h.profiles.Get(r.Context(), middleware.GetProfileID(r.Context()), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	skills, err := h.profiles.Skills(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, skills)
}

// AddSkill handles POST /api/profiles/me/skills
func (h *ProfileHandler) AddSkill(w http.ResponseWriter, r *http.Request) {
	var req dto.SkillRequest
	if !decode(w, r, &req) {
		return
	}
	skill, err := h.profiles.AddSkill(r.Context(), middleware.GetProfileID(r.Context()), profiles.SkillInput{
		Name:            req.Name,
		Proficiency:     models.Proficiency(req.Proficiency),
		YearsExperience: req.YearsExperience,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, skill)
}

// RemoveSkill handles DELETE /api/profiles/me/skills/{skillID}
func (h *ProfileHandler) RemoveSkill(w http.ResponseWriter, r *http.Request) {
	skillID, ok := urlID(w, r, "skillID")
	if !ok {
		return
	}
	if err := h.profiles.RemoveSkill(r.Context(), middleware.GetProfileID(r.Context()), skillID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EndorseSkill handles POST /api/profiles/skills/{skillID}/endorse
func (h *ProfileHandler) EndorseSkill(w http.ResponseWriter, r *http.Request) {
	skillID, ok := urlID(w, r, "skillID")
	if !ok {
		return
	}
	skill, err := h.profiles.EndorseSkill(r.Context(), middleware.GetProfileID(r.Context()), skillID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, skill)
}

// Interests handles GET /api/profiles/{id}/interests
func (h *ProfileHandler) Interests(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.profiles.Get(r.Context(), middleware.GetProfileID(r.Context()), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	interests, err := h.profiles.Interests(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, interests)
}

// AddInterest handles POST /api/profiles/me/interests
func (h *ProfileHandler) AddInterest(w http.ResponseWriter, r *http.Request) {
	var req dto.InterestRequest
	if !decode(w, r, &req) {
		return
	}
	interest, err := h.profiles.AddInterest(r.Context(), middleware.GetProfileID(r.Context()), profiles.InterestInput{
		Name:     req.Name,
		Priority: models.Priority(req.Priority),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, interest)
}

// RemoveInterest handles DELETE /api/profiles/me/interests/{interestID}
func (h *ProfileHandler) RemoveInterest(w http.ResponseWriter, r *http.Request) {
	interestID, ok := urlID(w, r, "interestID")
	if !ok {
		return
	}
	if err := h.profiles.RemoveInterest(r.Context(), middleware.GetProfileID(r.Context()), interestID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Activities handles GET /api/profiles/me/activities
func (h *ProfileHandler) Activities(w http.ResponseWriter, r *http.Request) {
	p := pagination(r)
	activities, total, err := h.profiles.Activities(r.Context(), middleware.GetProfileID(r.Context()), p.Offset(), p.PerPage)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(activities, total, p))
}

// Following handles GET /api/profiles/me/following
func (h *ProfileHandler) Following(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.profiles.Following(r.Context(), middleware.GetProfileID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orgs)
}

// Follow handles POST /api/organizations/{id}/follow
func (h *ProfileHandler) Follow(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	follow, err := h.profiles.Follow(r.Context(), middleware.GetProfileID(r.Context()), orgID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, follow)
}

// Unfollow handles DELETE /api/organizations/{id}/follow
func (h *ProfileHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.profiles.Unfollow(r.Context(), middleware.GetProfileID(r.Context()), orgID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Followers handles GET /api/organizations/{id}/followers
func (h *ProfileHandler) Followers(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	n, err := h.profiles.FollowerCount(r.Context(), orgID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"followers": n})
}
