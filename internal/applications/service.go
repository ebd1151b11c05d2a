package applications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MaxHoursPerEvent = 24
	WithdrawLeadTime = 24 * time.Hour
)

var (
	ErrApplicationNotFound = apperr.NotFound("application")
	ErrEventNotFound       = apperr.NotFound("event")
	ErrVolunteerNotFound   = apperr.NotFound("volunteer")
	ErrEventFull           = fmt.Errorf("%w: event is full", apperr.ErrConflict)
	ErrEventNotOpen        = fmt.Errorf("%w: event is not accepting applications", apperr.ErrConflict)
	ErrEventStarted        = fmt.Errorf("%w: event has already started", apperr.ErrConflict)
	ErrDuplicate           = fmt.Errorf("%w: already applied to this event", apperr.ErrConflict)
	ErrWithdrawTooLate     = fmt.Errorf("%w: accepted applications can only be withdrawn more than 24 hours before the event", apperr.ErrConflict)
	ErrNotEventOwner       = fmt.Errorf("%w: event belongs to another organization", apperr.ErrForbidden)
	ErrNotApplicant        = fmt.Errorf("%w: application belongs to another volunteer", apperr.ErrForbidden)
)

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// AttendanceResult is returned by MarkAttended.
type AttendanceResult struct {
	Application  *models.Application
	BadgesEarned []badges.BadgeType
}

// Submit creates a PENDING application, approving it in the same transaction
// when the event auto-accepts.
func (s *Service) Submit(ctx context.Context, volunteerID, eventID uuid.UUID, message string) (*models.Application, error) {
	var app models.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Deleted profiles keep working tokens until they expire.
		var volunteers int64
		if err := tx.Model(&models.Profile{}).
			Where("id = ? AND kind = ?", volunteerID, models.ProfileKindVolunteer).
			Count(&volunteers).Error; err != nil {
			return err
		}
		if volunteers == 0 {
			return ErrVolunteerNotFound
		}

		var event models.Event
		if err := tx.First(&event, "id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		now := s.now()
		switch {
		case event.Status != models.EventPublished:
			return ErrEventNotOpen
		case !event.StartsAt.After(now):
			return ErrEventStarted
		case event.IsFull():
			return ErrEventFull
		}

		var existing int64
		if err := tx.Model(&models.Application{}).
			Where("volunteer_id = ? AND event_id = ?", volunteerID, eventID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicate
		}

		app = models.Application{
			VolunteerID: volunteerID,
			EventID:     eventID,
			Status:      models.ApplicationPending,
			Message:     message,
		}
		if err := tx.Create(&app).Error; err != nil {
			if database.IsDuplicate(err) {
				return ErrDuplicate
			}
			return err
		}

		if event.AutoAccept {
			if err := s.approveTx(tx, &app, "", now); err != nil {
				return err
			}
		}
		app.Event = &event
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("application submitted", "application_id", app.ID, "event_id", eventID, "status", app.Status)
	return &app, nil
}

// Approve accepts a pending application and reserves a seat.
func (s *Service) Approve(ctx context.Context, organizationID, applicationID uuid.UUID, notes string) (*models.Application, error) {
	var app *models.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = loadOwned(tx, organizationID, applicationID)
		if err != nil {
			return err
		}
		return s.approveTx(tx, app, notes, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("application approved", "application_id", applicationID)
	return app, nil
}

func (s *Service) approveTx(tx *gorm.DB, app *models.Application, notes string, now time.Time) error {
	next := *app
	if err := Approve(&next, notes, now); err != nil {
		return err
	}

	if err := casStatus(tx, app, map[string]interface{}{
		"organizer_notes": next.OrganizerNotes,
		"responded_at":    next.RespondedAt,
	}, next.Status); err != nil {
		return err
	}

	res := tx.Model(&models.Event{}).
		Where("id = ? AND current_volunteers < max_volunteers", app.EventID).
		UpdateColumn("current_volunteers", gorm.Expr("current_volunteers + 1"))
	if res.Error != nil {
		return fmt.Errorf("reserving seat: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrEventFull
	}
	if app.Event != nil {
		next.Event.CurrentVolunteers++
	}

	*app = next
	return nil
}

// Reject declines a pending application.
func (s *Service) Reject(ctx context.Context, organizationID, applicationID uuid.UUID, notes string) (*models.Application, error) {
	var app *models.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = loadOwned(tx, organizationID, applicationID)
		if err != nil {
			return err
		}
		next := *app
		if err := Reject(&next, notes, s.now()); err != nil {
			return err
		}
		if err := casStatus(tx, app, map[string]interface{}{
			"organizer_notes": next.OrganizerNotes,
			"responded_at":    next.RespondedAt,
		}, next.Status); err != nil {
			return err
		}
		*app = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// MarkAttended completes an accepted application, credits the volunteer,
// membership and organization counters, logs the activity and evaluates
// attendance badges, all in one transaction.
func (s *Service) MarkAttended(ctx context.Context, organizationID, applicationID uuid.UUID, hours float64) (*AttendanceResult, error) {
	if hours < 0 || hours > MaxHoursPerEvent {
		return nil, apperr.Invalid("hours", "must be between 0 and 24")
	}

	result := &AttendanceResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := loadOwned(tx, organizationID, applicationID)
		if err != nil {
			return err
		}

		now := s.now()
		next := *app
		if err := MarkAttended(&next, hours, now); err != nil {
			return err
		}
		if err := casStatus(tx, app, map[string]interface{}{
			"hours_completed": next.HoursCompleted,
			"completed_at":    next.CompletedAt,
		}, next.Status); err != nil {
			return err
		}

		if err := tx.Model(&models.VolunteerDetails{}).
			Where("profile_id = ?", app.VolunteerID).
			UpdateColumns(map[string]interface{}{
				"total_volunteer_hours": gorm.Expr("total_volunteer_hours + ?", hours),
				"events_attended":       gorm.Expr("events_attended + 1"),
			}).Error; err != nil {
			return fmt.Errorf("crediting volunteer: %w", err)
		}

		if err := tx.Model(&models.OrganizationDetails{}).
			Where("profile_id = ?", app.Event.OrganizationID).
			UpdateColumn("volunteers_served", gorm.Expr("volunteers_served + 1")).Error; err != nil {
			return fmt.Errorf("crediting organization: %w", err)
		}

		var membership models.OrganizationMembership
		res := tx.Where("volunteer_id = ? AND organization_id = ? AND status = ?",
			app.VolunteerID, app.Event.OrganizationID, models.MembershipActive).
			Limit(1).Find(&membership)
		if res.Error != nil {
			return res.Error
		}
		var membershipID *uuid.UUID
		if res.RowsAffected == 1 {
			membershipID = &membership.ID
			if err := tx.Model(&models.OrganizationMembership{}).
				Where("id = ?", membership.ID).
				UpdateColumns(map[string]interface{}{
					"hours_contributed":    gorm.Expr("hours_contributed + ?", hours),
					"activities_completed": gorm.Expr("activities_completed + 1"),
				}).Error; err != nil {
				return fmt.Errorf("crediting membership: %w", err)
			}
		}

		orgID, eventID := app.Event.OrganizationID, app.EventID
		activity := models.VolunteerActivity{
			ProfileID:      app.VolunteerID,
			Type:           models.ActivityEventAttended,
			Hours:          hours,
			Description:    "Attended " + app.Event.Title,
			OrganizationID: &orgID,
			MembershipID:   membershipID,
			EventID:        &eventID,
			OccurredAt:     now,
		}
		if err := tx.Create(&activity).Error; err != nil {
			return fmt.Errorf("logging activity: %w", err)
		}

		for _, trigger := range []badges.Trigger{badges.TriggerEventAttended, badges.TriggerHoursLogged} {
			earned, err := badges.CheckAndAwardTx(tx, app.VolunteerID, trigger)
			if err != nil {
				return err
			}
			result.BadgesEarned = append(result.BadgesEarned, earned...)
		}

		*app = next
		result.Application = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, b := range result.BadgesEarned {
		s.logger.Info("badge earned", "profile_id", result.Application.VolunteerID, "badge", b.Key)
	}
	return result, nil
}

// MarkNoShow records that an accepted volunteer did not attend.
func (s *Service) MarkNoShow(ctx context.Context, organizationID, applicationID uuid.UUID) (*models.Application, error) {
	var app *models.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = loadOwned(tx, organizationID, applicationID)
		if err != nil {
			return err
		}
		next := *app
		if err := MarkNoShow(&next, s.now()); err != nil {
			return err
		}
		if err := casStatus(tx, app, map[string]interface{}{
			"hours_completed": 0,
			"completed_at":    next.CompletedAt,
		}, next.Status); err != nil {
			return err
		}
		if err := tx.Model(&models.VolunteerDetails{}).
			Where("profile_id = ?", app.VolunteerID).
			UpdateColumn("events_no_show", gorm.Expr("events_no_show + 1")).Error; err != nil {
			return fmt.Errorf("recording no-show: %w", err)
		}
		*app = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Withdraw is the applicant pulling out. An accepted application frees its
// seat and must be withdrawn more than WithdrawLeadTime before the start.
func (s *Service) Withdraw(ctx context.Context, volunteerID, applicationID uuid.UUID) (*models.Application, error) {
	var app *models.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = load(tx, applicationID)
		if err != nil {
			return err
		}
		if app.VolunteerID != volunteerID {
			return ErrNotApplicant
		}

		now := s.now()
		wasAccepted := app.Status == models.ApplicationAccepted
		next := *app
		if err := Withdraw(&next, now); err != nil {
			return err
		}
		if wasAccepted && app.Event.StartsAt.Sub(now) <= WithdrawLeadTime {
			return ErrWithdrawTooLate
		}

		if err := casStatus(tx, app, map[string]interface{}{
			"withdrawn_at": next.WithdrawnAt,
		}, next.Status); err != nil {
			return err
		}

		if wasAccepted {
			if err := tx.Model(&models.Event{}).
				Where("id = ? AND current_volunteers > 0", app.EventID).
				UpdateColumn("current_volunteers", gorm.Expr("current_volunteers - 1")).Error; err != nil {
				return fmt.Errorf("releasing seat: %w", err)
			}
			if next.Event.CurrentVolunteers > 0 {
				next.Event.CurrentVolunteers--
			}
		}
		*app = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("application withdrawn", "application_id", applicationID)
	return app, nil
}

// Get returns an application visible to the applicant or the event's
// organization.
func (s *Service) Get(ctx context.Context, callerID, applicationID uuid.UUID) (*models.Application, error) {
	app, err := load(s.db.WithContext(ctx), applicationID)
	if err != nil {
		return nil, err
	}
	if app.VolunteerID != callerID && app.Event.OrganizationID != callerID {
		return nil, fmt.Errorf("%w: not your application", apperr.ErrForbidden)
	}
	return app, nil
}

// ListForVolunteer pages through a volunteer's applications, newest first.
func (s *Service) ListForVolunteer(ctx context.Context, volunteerID uuid.UUID, status models.ApplicationStatus, offset, limit int) ([]models.Application, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Application{}).Where("volunteer_id = ?", volunteerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return page(query, offset, limit)
}

// ListForEvent pages through an event's applications for its organization.
func (s *Service) ListForEvent(ctx context.Context, organizationID, eventID uuid.UUID, status models.ApplicationStatus, offset, limit int) ([]models.Application, int64, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrEventNotFound
		}
		return nil, 0, err
	}
	if event.OrganizationID != organizationID {
		return nil, 0, ErrNotEventOwner
	}

	query := s.db.WithContext(ctx).Model(&models.Application{}).Where("event_id = ?", eventID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return page(query, offset, limit)
}

func page(query *gorm.DB, offset, limit int) ([]models.Application, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var apps []models.Application
	if err := query.Preload("Event").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func load(tx *gorm.DB, applicationID uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := tx.Preload("Event").First(&app, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if app.Event == nil {
		return nil, ErrEventNotFound
	}
	return &app, nil
}

func loadOwned(tx *gorm.DB, organizationID, applicationID uuid.UUID) (*models.Application, error) {
	app, err := load(tx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Event.OrganizationID != organizationID {
		return nil, ErrNotEventOwner
	}
	return app, nil
}

// casStatus moves app from its loaded status to next only if no one else
// changed it first.
func casStatus(tx *gorm.DB, app *models.Application, fields map[string]interface{}, next models.ApplicationStatus) error {
	fields["status"] = next
	res := tx.Model(&models.Application{}).
		Where("id = ? AND status = ?", app.ID, app.Status).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("updating application: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Transition("application", string(app.Status), string(next))
	}
	return nil
}
