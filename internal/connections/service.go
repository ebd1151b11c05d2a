package connections

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

var (
	ErrConnectionNotFound = apperr.NotFound("connection")
	ErrProfileNotFound    = apperr.NotFound("profile")
	ErrSelfConnection     = apperr.Invalid("recipient_id", "cannot connect to yourself")
	ErrAlreadyConnected   = fmt.Errorf("%w: a connection between these profiles already exists", apperr.ErrConflict)
	ErrNotRecipient       = fmt.Errorf("%w: only the recipient can respond", apperr.ErrForbidden)
	ErrNotParty           = fmt.Errorf("%w: not a party to this connection", apperr.ErrForbidden)
	ErrNotAccepted        = fmt.Errorf("%w: connection is not accepted", apperr.ErrConflict)
)

// View is a connection with its derived strength.
type View struct {
	models.UserConnection
	Strength float64 `json:"strength"`
}

type Service struct {
	db         *gorm.DB
	dispatcher badges.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(db *gorm.DB, dispatcher badges.Dispatcher, logger *slog.Logger) *Service {
	return &Service{db: db, dispatcher: dispatcher, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) view(c models.UserConnection) View {
	return View{UserConnection: c, Strength: Strength(&c, s.now())}
}

// Request asks recipientID to connect. Only one connection exists per pair,
// whichever side asked first.
func (s *Service) Request(ctx context.Context, requesterID, recipientID uuid.UUID, message string) (*View, error) {
	if requesterID == recipientID {
		return nil, ErrSelfConnection
	}

	c := models.UserConnection{
		RequesterID: requesterID,
		RecipientID: recipientID,
		PairKey:     models.PairKey(requesterID, recipientID),
		Status:      models.ConnectionPending,
		Message:     message,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Profile{}).Where("id = ?", recipientID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrProfileNotFound
		}
		if err := tx.Model(&models.UserConnection{}).Where("pair_key = ?", c.PairKey).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyConnected
		}
		if err := tx.Create(&c).Error; err != nil {
			if database.IsDuplicate(err) {
				return ErrAlreadyConnected
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	v := s.view(c)
	return &v, nil
}

// Accept is the recipient agreeing. Both sides get a connection badge check.
func (s *Service) Accept(ctx context.Context, recipientID, connectionID uuid.UUID) (*View, error) {
	v, err := s.transition(ctx, connectionID, models.ConnectionAccepted, func(c *models.UserConnection) error {
		if c.RecipientID != recipientID {
			return ErrNotRecipient
		}
		if c.Status != models.ConnectionPending {
			return apperr.Transition("connection", string(c.Status), string(models.ConnectionAccepted))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, v.RequesterID)
	s.dispatch(ctx, v.RecipientID)
	return v, nil
}

func (s *Service) Reject(ctx context.Context, recipientID, connectionID uuid.UUID) (*View, error) {
	return s.transition(ctx, connectionID, models.ConnectionRejected, func(c *models.UserConnection) error {
		if c.RecipientID != recipientID {
			return ErrNotRecipient
		}
		return nil
	})
}

func (s *Service) Block(ctx context.Context, callerID, connectionID uuid.UUID) (*View, error) {
	return s.transition(ctx, connectionID, models.ConnectionBlocked, party(callerID))
}

func (s *Service) Archive(ctx context.Context, callerID, connectionID uuid.UUID) (*View, error) {
	return s.transition(ctx, connectionID, models.ConnectionArchived, party(callerID))
}

// Restore brings an archived connection back to accepted.
func (s *Service) Restore(ctx context.Context, callerID, connectionID uuid.UUID) (*View, error) {
	v, err := s.transition(ctx, connectionID, models.ConnectionAccepted, func(c *models.UserConnection) error {
		if err := party(callerID)(c); err != nil {
			return err
		}
		if c.Status != models.ConnectionArchived {
			return apperr.Transition("connection", string(c.Status), "restored")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, v.RequesterID)
	s.dispatch(ctx, v.RecipientID)
	return v, nil
}

func party(callerID uuid.UUID) func(*models.UserConnection) error {
	return func(c *models.UserConnection) error {
		if !c.Involves(callerID) {
			return ErrNotParty
		}
		return nil
	}
}

func (s *Service) transition(ctx context.Context, connectionID uuid.UUID, to models.ConnectionStatus, authorize func(*models.UserConnection) error) (*View, error) {
	var c models.UserConnection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", connectionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConnectionNotFound
			}
			return err
		}
		if err := authorize(&c); err != nil {
			return err
		}
		if !CanTransition(c.Status, to) {
			return apperr.Transition("connection", string(c.Status), string(to))
		}

		updates := map[string]interface{}{"status": to}
		if to == models.ConnectionAccepted && c.AcceptedAt == nil {
			now := s.now()
			updates["accepted_at"] = now
			c.AcceptedAt = &now
		}
		res := tx.Model(&models.UserConnection{}).
			Where("id = ? AND status = ?", c.ID, c.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Transition("connection", string(c.Status), string(to))
		}
		c.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("connection status changed", "connection_id", c.ID, "status", to)
	v := s.view(c)
	return &v, nil
}

// RecordInteraction notes one interaction between the parties of an
// accepted connection.
func (s *Service) RecordInteraction(ctx context.Context, callerID, connectionID uuid.UUID) (*View, error) {
	var c models.UserConnection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", connectionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConnectionNotFound
			}
			return err
		}
		if !c.Involves(callerID) {
			return ErrNotParty
		}
		res := tx.Model(&models.UserConnection{}).
			Where("id = ? AND status = ?", c.ID, models.ConnectionAccepted).
			UpdateColumns(map[string]interface{}{
				"interaction_count":   gorm.Expr("interaction_count + 1"),
				"last_interaction_at": s.now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotAccepted
		}
		return tx.First(&c, "id = ?", c.ID).Error
	})
	if err != nil {
		return nil, err
	}
	v := s.view(c)
	return &v, nil
}

func (s *Service) Get(ctx context.Context, callerID, connectionID uuid.UUID) (*View, error) {
	var c models.UserConnection
	if err := s.db.WithContext(ctx).First(&c, "id = ?", connectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}
	if !c.Involves(callerID) {
		return nil, ErrNotParty
	}
	v := s.view(c)
	return &v, nil
}

// List returns the caller's connections in the given status, or all of
// them, newest first.
func (s *Service) List(ctx context.Context, profileID uuid.UUID, status models.ConnectionStatus, offset, limit int) ([]View, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.UserConnection{}).
		Where("requester_id = ? OR recipient_id = ?", profileID, profileID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.UserConnection
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]View, len(rows))
	for i, c := range rows {
		out[i] = s.view(c)
	}
	return out, total, nil
}

// Pending lists requests waiting on profileID's answer.
func (s *Service) Pending(ctx context.Context, profileID uuid.UUID) ([]models.UserConnection, error) {
	var rows []models.UserConnection
	err := s.db.WithContext(ctx).
		Where("recipient_id = ? AND status = ?", profileID, models.ConnectionPending).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (s *Service) dispatch(ctx context.Context, profileID uuid.UUID) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, profileID, badges.TriggerConnectionMade); err != nil {
		s.logger.Error("badge evaluation failed", "profile_id", profileID, "trigger", badges.TriggerConnectionMade, "error", err)
	}
}
