package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/dto"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/validation"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string, details map[string]string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg, Details: details, Timestamp: time.Now().UTC()})
}

// statusFor maps an error kind to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrInvalidStateTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError translates a service error. Internal errors are logged and
// answered without detail.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
		)
		writeMessage(w, status, "Internal server error", nil)
		return
	}
	if status == http.StatusBadRequest {
		writeMessage(w, status, "Validation failed", apperr.Fields(err))
		return
	}
	writeMessage(w, status, err.Error(), nil)
}

// decode reads a JSON body into v and checks its validate tags. It writes the
// 400 itself and reports false on failure.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if details := validation.Struct(v); details != nil {
		writeMessage(w, http.StatusBadRequest, "Validation failed", details)
		return false
	}
	return true
}

// urlID parses the named chi URL parameter as a UUID, writing a 400 on failure.
func urlID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

func pagination(r *http.Request) dto.PaginationParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	p := dto.PaginationParams{Page: page, PerPage: perPage}
	p.Normalize()
	return p
}

// parseBool reads an optional boolean query parameter.
func parseBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Invalid(name, "must be true or false")
	}
	return &b, nil
}

// parseInt reads an optional integer query parameter; absent means 0.
func parseInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid(name, "must be a whole number")
	}
	return n, nil
}

// NotFound answers unknown routes in the API error shape.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "Route not found", nil)
}
