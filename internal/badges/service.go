package badges

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUnknownTrigger = fmt.Errorf("%w: unknown badge trigger", apperr.ErrValidation)

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// CheckAndAward re-evaluates the badges relevant to trigger in its own
// transaction and returns the ones newly earned.
func (s *Service) CheckAndAward(ctx context.Context, profileID uuid.UUID, trigger Trigger) ([]BadgeType, error) {
	var earned []BadgeType
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		earned, err = CheckAndAwardTx(tx, profileID, trigger)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, b := range earned {
		s.logger.Info("badge earned", "profile_id", profileID, "badge", b.Key, "trigger", trigger)
	}
	return earned, nil
}

// Recompute evaluates every trigger for a profile.
func (s *Service) Recompute(ctx context.Context, profileID uuid.UUID) ([]BadgeType, error) {
	var all []BadgeType
	for _, t := range AllTriggers {
		earned, err := s.CheckAndAward(ctx, profileID, t)
		if err != nil {
			return all, err
		}
		all = append(all, earned...)
	}
	return all, nil
}

// CheckAndAwardTx runs inside the caller's transaction. Progress for every
// relevant badge is upserted, then each badge the stats satisfy is awarded
// with a conditional update; only rows that update touched count as earned.
func CheckAndAwardTx(tx *gorm.DB, profileID uuid.UUID, trigger Trigger) ([]BadgeType, error) {
	if !trigger.Valid() {
		return nil, ErrUnknownTrigger
	}

	stats, err := LoadStats(tx, profileID)
	if err != nil {
		return nil, err
	}

	for _, b := range Relevant(trigger) {
		row := models.ProfileBadge{
			ProfileID: profileID,
			BadgeType: b.Key,
			Progress:  stats.Value(b.Statistic),
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}, {Name: "badge_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"progress", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return nil, fmt.Errorf("recording progress for %s: %w", b.Key, err)
		}
	}

	now := time.Now().UTC()
	var earned []BadgeType
	for _, b := range Evaluate(stats, trigger) {
		res := tx.Model(&models.ProfileBadge{}).
			Where("profile_id = ? AND badge_type = ? AND earned_at IS NULL AND progress >= ?", profileID, b.Key, b.RequiredCount).
			Update("earned_at", now)
		if res.Error != nil {
			return nil, fmt.Errorf("awarding %s: %w", b.Key, res.Error)
		}
		if res.RowsAffected == 1 {
			earned = append(earned, b)
		}
	}
	return earned, nil
}

// LoadStats reads the source counters for a profile.
func LoadStats(tx *gorm.DB, profileID uuid.UUID) (Stats, error) {
	var stats Stats

	var vd models.VolunteerDetails
	res := tx.Where("profile_id = ?", profileID).Limit(1).Find(&vd)
	if res.Error != nil {
		return stats, fmt.Errorf("loading volunteer counters: %w", res.Error)
	}
	stats.EventsAttended = vd.EventsAttended
	stats.TotalHours = vd.TotalVolunteerHours

	var n int64
	if err := tx.Model(&models.ProfileSkill{}).Where("profile_id = ?", profileID).Count(&n).Error; err != nil {
		return stats, fmt.Errorf("counting skills: %w", err)
	}
	stats.Skills = int(n)

	if err := tx.Model(&models.UserConnection{}).
		Where("status = ? AND (requester_id = ? OR recipient_id = ?)", models.ConnectionAccepted, profileID, profileID).
		Count(&n).Error; err != nil {
		return stats, fmt.Errorf("counting connections: %w", err)
	}
	stats.Connections = int(n)

	if err := tx.Model(&models.OrganizationMembership{}).
		Where("volunteer_id = ? AND status = ?", profileID, models.MembershipActive).
		Count(&n).Error; err != nil {
		return stats, fmt.Errorf("counting memberships: %w", err)
	}
	stats.ActiveMemberships = int(n)

	return stats, nil
}

// ForProfile lists the badges a profile has progress on, in catalog order.
// With completedOnly only earned badges are returned.
func (s *Service) ForProfile(ctx context.Context, profileID uuid.UUID, completedOnly bool) ([]View, error) {
	var rows []models.ProfileBadge
	if err := s.db.WithContext(ctx).Where("profile_id = ?", profileID).Find(&rows).Error; err != nil {
		return nil, err
	}

	byType := make(map[string]models.ProfileBadge, len(rows))
	for _, row := range rows {
		byType[row.BadgeType] = row
	}

	views := make([]View, 0, len(rows))
	for _, b := range catalog {
		row, ok := byType[b.Key]
		if !ok {
			continue
		}
		v, _ := NewView(row)
		if completedOnly && !v.IsCompleted {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

// Points is the total of completed badge points for a profile.
func (s *Service) Points(ctx context.Context, profileID uuid.UUID) (int, error) {
	views, err := s.ForProfile(ctx, profileID, true)
	if err != nil {
		return 0, err
	}
	return TotalPoints(views), nil
}
