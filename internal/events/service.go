// Package events manages organization events and their seat counters.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound   = apperr.NotFound("event")
	ErrNotOwner        = fmt.Errorf("%w: event belongs to another organization", apperr.ErrForbidden)
	ErrCapacityTooLow  = apperr.Invalid("max_volunteers", "cannot be lower than the number of accepted volunteers")
	ErrInvalidSchedule = apperr.Invalid("ends_at", "must be after starts_at")
	ErrEventClosed     = fmt.Errorf("%w: event is closed", apperr.ErrConflict)
)

var edges = map[models.EventStatus][]models.EventStatus{
	models.EventDraft:     {models.EventPublished, models.EventCancelled},
	models.EventPublished: {models.EventCompleted, models.EventCancelled},
}

func CanTransition(from, to models.EventStatus) bool {
	for _, s := range edges[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

type CreateInput struct {
	Title          string
	Description    string
	Category       string
	Location       string
	StartsAt       time.Time
	EndsAt         time.Time
	MaxVolunteers  int
	RequiredSkills []string
	AutoAccept     bool
	Publish        bool
}

// UpdateInput fields left nil are unchanged.
type UpdateInput struct {
	Title          *string
	Description    *string
	Category       *string
	Location       *string
	StartsAt       *time.Time
	EndsAt         *time.Time
	MaxVolunteers  *int
	RequiredSkills []string
	AutoAccept     *bool
}

func (s *Service) Create(ctx context.Context, organizationID uuid.UUID, in CreateInput) (*models.Event, error) {
	if !in.EndsAt.After(in.StartsAt) {
		return nil, ErrInvalidSchedule
	}
	if in.MaxVolunteers < 1 {
		return nil, apperr.Invalid("max_volunteers", "must be at least 1")
	}

	status := models.EventDraft
	if in.Publish {
		status = models.EventPublished
	}
	event := models.Event{
		OrganizationID: organizationID,
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		Location:       in.Location,
		StartsAt:       in.StartsAt.UTC(),
		EndsAt:         in.EndsAt.UTC(),
		Status:         status,
		AutoAccept:     in.AutoAccept,
		MaxVolunteers:  in.MaxVolunteers,
		RequiredSkills: datatypes.JSONSlice[string](cleanList(in.RequiredSkills)),
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}

	s.logger.Info("event created", "event_id", event.ID, "organization_id", organizationID, "status", status)
	return &event, nil
}

func (s *Service) Update(ctx context.Context, organizationID, eventID uuid.UUID, in UpdateInput) (*models.Event, error) {
	var event *models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		event, err = loadOwned(tx, organizationID, eventID)
		if err != nil {
			return err
		}
		if event.Status == models.EventCompleted || event.Status == models.EventCancelled {
			return ErrEventClosed
		}

		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Category != nil {
			updates["category"] = *in.Category
		}
		if in.Location != nil {
			updates["location"] = *in.Location
		}
		if in.AutoAccept != nil {
			updates["auto_accept"] = *in.AutoAccept
		}
		if in.RequiredSkills != nil {
			updates["required_skills"] = datatypes.JSONSlice[string](cleanList(in.RequiredSkills))
		}

		starts, ends := event.StartsAt, event.EndsAt
		if in.StartsAt != nil {
			starts = in.StartsAt.UTC()
			updates["starts_at"] = starts
		}
		if in.EndsAt != nil {
			ends = in.EndsAt.UTC()
			updates["ends_at"] = ends
		}
		if !ends.After(starts) {
			return ErrInvalidSchedule
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.Event{}).Where("id = ?", eventID).Updates(updates).Error; err != nil {
				return err
			}
		}

		if in.MaxVolunteers != nil {
			if *in.MaxVolunteers < 1 {
				return apperr.Invalid("max_volunteers", "must be at least 1")
			}
			// Conditional so a concurrent approval cannot be stranded above capacity.
			res := tx.Model(&models.Event{}).
				Where("id = ? AND current_volunteers <= ?", eventID, *in.MaxVolunteers).
				Update("max_volunteers", *in.MaxVolunteers)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrCapacityTooLow
			}
		}

		return tx.First(event, "id = ?", eventID).Error
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *Service) Publish(ctx context.Context, organizationID, eventID uuid.UUID) (*models.Event, error) {
	return s.move(ctx, organizationID, eventID, models.EventPublished)
}

func (s *Service) Cancel(ctx context.Context, organizationID, eventID uuid.UUID) (*models.Event, error) {
	return s.move(ctx, organizationID, eventID, models.EventCancelled)
}

// Complete closes a published event and credits the organization.
func (s *Service) Complete(ctx context.Context, organizationID, eventID uuid.UUID) (*models.Event, error) {
	return s.move(ctx, organizationID, eventID, models.EventCompleted)
}

func (s *Service) move(ctx context.Context, organizationID, eventID uuid.UUID, to models.EventStatus) (*models.Event, error) {
	var event *models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		event, err = loadOwned(tx, organizationID, eventID)
		if err != nil {
			return err
		}
		if err := transitionTx(tx, event, to); err != nil {
			return err
		}
		event.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("event status changed", "event_id", eventID, "status", to)
	return event, nil
}

func transitionTx(tx *gorm.DB, event *models.Event, to models.EventStatus) error {
	if !CanTransition(event.Status, to) {
		return apperr.Transition("event", string(event.Status), string(to))
	}
	res := tx.Model(&models.Event{}).
		Where("id = ? AND status = ?", event.ID, event.Status).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Transition("event", string(event.Status), string(to))
	}
	if to == models.EventCompleted {
		if err := tx.Model(&models.OrganizationDetails{}).
			Where("profile_id = ?", event.OrganizationID).
			UpdateColumn("events_hosted", gorm.Expr("events_hosted + 1")).Error; err != nil {
			return fmt.Errorf("crediting organization: %w", err)
		}
	}
	return nil
}

// Delete soft-deletes a draft or cancelled event.
func (s *Service) Delete(ctx context.Context, organizationID, eventID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := loadOwned(tx, organizationID, eventID)
		if err != nil {
			return err
		}
		if event.Status != models.EventDraft && event.Status != models.EventCancelled {
			return fmt.Errorf("%w: only draft or cancelled events can be deleted", apperr.ErrConflict)
		}
		return tx.Delete(&models.Event{}, "id = ?", eventID).Error
	})
}

// Get returns a published event, or any event to its owner.
func (s *Service) Get(ctx context.Context, viewerID, eventID uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).Preload("Organization.Organization").First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.Status == models.EventDraft && event.OrganizationID != viewerID {
		return nil, ErrEventNotFound
	}
	return &event, nil
}

type Filter struct {
	Query          string
	Category       string
	Location       string
	OrganizationID *uuid.UUID
	UpcomingOnly   bool
	HasCapacity    bool
}

// List pages through published events matching f, soonest first.
func (s *Service) List(ctx context.Context, f Filter, offset, limit int) ([]models.Event, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Event{}).Where("status = ?", models.EventPublished)

	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	if f.Category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(f.Category))
	}
	if f.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(f.Location)+"%")
	}
	if f.OrganizationID != nil {
		query = query.Where("organization_id = ?", *f.OrganizationID)
	}
	if f.UpcomingOnly {
		query = query.Where("starts_at > ?", s.now())
	}
	if f.HasCapacity {
		query = query.Where("current_volunteers < max_volunteers")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.Event
	if err := query.Order("starts_at ASC").Offset(offset).Limit(limit).Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListForOrganization returns every event the organization owns, drafts
// included, newest first.
func (s *Service) ListForOrganization(ctx context.Context, organizationID uuid.UUID, status models.EventStatus, offset, limit int) ([]models.Event, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Event{}).Where("organization_id = ?", organizationID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var events []models.Event
	if err := query.Order("starts_at DESC").Offset(offset).Limit(limit).Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// CloseoutEnded completes every published event whose end time has passed
// and returns how many were closed.
func (s *Service) CloseoutEnded(ctx context.Context) (int, error) {
	var due []models.Event
	if err := s.db.WithContext(ctx).
		Where("status = ? AND ends_at < ?", models.EventPublished, s.now()).
		Find(&due).Error; err != nil {
		return 0, fmt.Errorf("finding ended events: %w", err)
	}

	closed := 0
	for i := range due {
		event := &due[i]
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return transitionTx(tx, event, models.EventCompleted)
		})
		if errors.Is(err, apperr.ErrInvalidStateTransition) {
			// Someone else moved it first.
			continue
		}
		if err != nil {
			return closed, err
		}
		closed++
	}

	if closed > 0 {
		s.logger.Info("closed out ended events", "count", closed)
	}
	return closed, nil
}

func loadOwned(tx *gorm.DB, organizationID, eventID uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := tx.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.OrganizationID != organizationID {
		return nil, ErrNotOwner
	}
	return &event, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, v := range in {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
