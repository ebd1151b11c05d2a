package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/dto"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/middleware"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/validation"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/events"
	"github.com/google/uuid"
)

type EventHandler struct {
	events *events.Service
	logger *slog.Logger
}

func NewEventHandler(eventService *events.Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: eventService, logger: logger}
}

// List handles GET /api/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	f := events.Filter{
		Query:    v.Get("q"),
		Category: v.Get("category"),
		Location: v.Get("location"),
	}
	if raw := v.Get("organization_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, h.logger, apperr.Invalid("organization_id", "must be a valid UUID"))
			return
		}
		f.OrganizationID = &id
	}
	upcoming, err := parseBool(r, "upcoming")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	f.UpcomingOnly = upcoming != nil && *upcoming
	capacity, err := parseBool(r, "has_capacity")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	f.HasCapacity = capacity != nil && *capacity

	p := pagination(r)
	list, total, err := h.events.List(r.Context(), f, p.Offset(), p.PerPage)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(list, total, p))
}

// Mine handles GET /api/events/mine for the calling organization.
func (h *EventHandler) Mine(w http.ResponseWriter, r *http.Request) {
	p := pagination(r)
	status := models.EventStatus(r.URL.Query().Get("status"))
	list, total, err := h.events.ListForOrganization(r.Context(), middleware.GetProfileID(r.Context()), status, p.Offset(), p.PerPage)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(list, total, p))
}

// Get handles GET /api/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	event, err := h.events.Get(r.Context(), middleware.GetProfileID(r.Context()), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Create handles POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEventRequest
	if !decode(w, r, &req) {
		return
	}

	event, err := h.events.Create(r.Context(), middleware.GetProfileID(r.Context()), events.CreateInput{
		Title:          validation.CleanText(req.Title),
		Description:    validation.CleanRichText(req.Description),
		Category:       validation.CleanText(req.Category),
		Location:       validation.CleanText(req.Location),
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		MaxVolunteers:  req.MaxVolunteers,
		RequiredSkills: req.RequiredSkills,
		AutoAccept:     req.AutoAccept,
		Publish:        req.Publish,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// Update handles PUT /api/events/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateEventRequest
	if !decode(w, r, &req) {
		return
	}

	event, err := h.events.Update(r.Context(), middleware.GetProfileID(r.Context()), id, events.UpdateInput{
		Title:          cleanPtr(req.Title),
		Description:    cleanRichPtr(req.Description),
		Category:       cleanPtr(req.Category),
		Location:       cleanPtr(req.Location),
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		MaxVolunteers:  req.MaxVolunteers,
		RequiredSkills: req.RequiredSkills,
		AutoAccept:     req.AutoAccept,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.events.Publish)
}

func (h *EventHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.events.Cancel)
}

func (h *EventHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.events.Complete)
}

type eventMove func(ctx context.Context, organizationID, eventID uuid.UUID) (*models.Event, error)

func (h *EventHandler) move(w http.ResponseWriter, r *http.Request, fn eventMove) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	event, err := fn(r.Context(), middleware.GetProfileID(r.Context()), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /api/events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.events.Delete(r.Context(), middleware.GetProfileID(r.Context()), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func cleanPtr(s *string) *string {
	if s == nil {
		return nil
	}
	c := validation.CleanText(*s)
	return &c
}

func cleanRichPtr(s *string) *string {
	if s == nil {
		return nil
	}
	c := validation.CleanRichText(*s)
	return &c
}
