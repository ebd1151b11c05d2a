package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/dto"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/middleware"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/validation"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/connections"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/google/uuid"
)

type ConnectionHandler struct {
	connections *connections.Service
	logger      *slog.Logger
}

func NewConnectionHandler(connectionService *connections.Service, logger *slog.Logger) *ConnectionHandler {
	return &ConnectionHandler{connections: connectionService, logger: logger}
}

// Request handles POST /api/connections
func (h *ConnectionHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req dto.ConnectionRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.connections.Request(r.Context(), middleware.GetProfileID(r.Context()), uuid.MustParse(req.RecipientID), validation.CleanText(req.Message))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// List handles GET /api/connections
func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	p := pagination(r)
	status := models.ConnectionStatus(r.URL.Query().Get("status"))
	list, total, err := h.connections.List(r.Context(), middleware.GetProfileID(r.Context()), status, p.Offset(), p.PerPage)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(list, total, p))
}

// Pending handles GET /api/connections/pending
func (h *ConnectionHandler) Pending(w http.ResponseWriter, r *http.Request) {
	list, err := h.connections.Pending(r.Context(), middleware.GetProfileID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/connections/{id}
func (h *ConnectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.connections.Get)
}

func (h *ConnectionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.connections.Accept)
}

func (h *ConnectionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.connections.Reject)
}

func (h *ConnectionHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.connections.Block)
}

func (h *ConnectionHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.connections.Archive)
}

func (h *ConnectionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.connections.Restore)
}

// Interact handles POST /api/connections/{id}/interactions
func (h *ConnectionHandler) Interact(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.connections.RecordInteraction)
}

func (h *ConnectionHandler) act(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, callerID, connectionID uuid.UUID) (*connections.View, error)) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	view, err := fn(r.Context(), middleware.GetProfileID(r.Context()), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
