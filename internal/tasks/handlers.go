package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/events"
	"github.com/hibiken/asynq"
)

type Handler struct {
	logger *slog.Logger
	badges *badges.Service
	events *events.Service
}

func NewHandler(logger *slog.Logger, badgeService *badges.Service, eventService *events.Service) *Handler {
	return &Handler{
		logger: logger,
		badges: badgeService,
		events: eventService,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeBadgeEvaluate, h.HandleBadgeEvaluate)
	mux.HandleFunc(TypeEventsCloseout, h.HandleEventsCloseout)
}

func (h *Handler) HandleBadgeEvaluate(ctx context.Context, t *asynq.Task) error {
	var payload BadgeEvaluatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}
	if !payload.Trigger.Valid() {
		return fmt.Errorf("unknown trigger %q: %w", payload.Trigger, asynq.SkipRetry)
	}

	earned, err := h.badges.CheckAndAward(ctx, payload.ProfileID, payload.Trigger)
	if err != nil {
		h.logger.Error("badge evaluation failed",
			"profile_id", payload.ProfileID,
			"trigger", payload.Trigger,
			"error", err,
		)
		return err
	}

	h.logger.Debug("evaluated badges",
		"profile_id", payload.ProfileID,
		"trigger", payload.Trigger,
		"earned", len(earned),
	)
	return nil
}

func (h *Handler) HandleEventsCloseout(ctx context.Context, _ *asynq.Task) error {
	closed, err := h.events.CloseoutEnded(ctx)
	if err != nil {
		h.logger.Error("event closeout failed", "closed", closed, "error", err)
		return err
	}
	h.logger.Info("event closeout finished", "closed", closed)
	return nil
}
