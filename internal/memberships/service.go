package memberships

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMembershipNotFound   = apperr.NotFound("membership")
	ErrOrganizationNotFound = apperr.NotFound("organization")
	ErrVolunteerNotFound    = apperr.NotFound("volunteer")
	ErrAlreadyMember        = fmt.Errorf("%w: membership already exists", apperr.ErrConflict)
	ErrMembershipEnded      = fmt.Errorf("%w: membership has ended and cannot be requested again", apperr.ErrConflict)
	ErrNotActive            = fmt.Errorf("%w: membership is not active", apperr.ErrConflict)
	ErrNotMember            = fmt.Errorf("%w: not a party to this membership", apperr.ErrForbidden)
)

// View is a membership with its derived engagement.
type View struct {
	models.OrganizationMembership
	EngagementScore float64 `json:"engagement_score"`
	EngagementLevel string  `json:"engagement_level"`
}

func NewView(m models.OrganizationMembership) View {
	score := EngagementScore(&m)
	return View{OrganizationMembership: m, EngagementScore: score, EngagementLevel: EngagementLevel(score)}
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

// RequestToJoin is a volunteer asking to join an organization.
func (s *Service) RequestToJoin(ctx context.Context, volunteerID, organizationID uuid.UUID, notes string) (*models.OrganizationMembership, error) {
	m := models.OrganizationMembership{
		VolunteerID:    volunteerID,
		OrganizationID: organizationID,
		Role:           models.RoleMember,
		Status:         models.MembershipPending,
		Notes:          notes,
	}
	if err := s.create(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Invite adds a volunteer directly as an active member.
func (s *Service) Invite(ctx context.Context, organizationID, volunteerID uuid.UUID, role models.MembershipRole) (*models.OrganizationMembership, error) {
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, apperr.Invalid("role", "unknown role")
	}
	now := s.now()
	m := models.OrganizationMembership{
		VolunteerID:    volunteerID,
		OrganizationID: organizationID,
		Role:           role,
		Status:         models.MembershipActive,
		JoinedAt:       &now,
	}
	if IsLeadership(role) {
		m.LeadershipRolesHeld = 1
	}
	if err := s.create(ctx, &m); err != nil {
		return nil, err
	}
	s.dispatch(ctx, volunteerID, badges.TriggerMembershipJoined)
	return &m, nil
}

func (s *Service) create(ctx context.Context, m *models.OrganizationMembership) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireKind(tx, m.OrganizationID, models.ProfileKindOrganization, ErrOrganizationNotFound); err != nil {
			return err
		}
		if err := requireKind(tx, m.VolunteerID, models.ProfileKindVolunteer, ErrVolunteerNotFound); err != nil {
			return err
		}

		var existing models.OrganizationMembership
		res := tx.Where("volunteer_id = ? AND organization_id = ?", m.VolunteerID, m.OrganizationID).Limit(1).Find(&existing)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			if IsTerminal(existing.Status) {
				return ErrMembershipEnded
			}
			return ErrAlreadyMember
		}

		if err := tx.Create(m).Error; err != nil {
			if database.IsDuplicate(err) {
				return ErrAlreadyMember
			}
			return err
		}
		return nil
	})
}

// ChangeStatus moves a membership along its lifecycle on behalf of the
// organization.
func (s *Service) ChangeStatus(ctx context.Context, organizationID, membershipID uuid.UUID, to models.MembershipStatus, notes string) (*View, error) {
	return s.changeStatus(ctx, membershipID, to, notes, func(m *models.OrganizationMembership) error {
		if m.OrganizationID != organizationID {
			return ErrNotMember
		}
		return nil
	})
}

// Leave is the volunteer ending a membership: a pending request is
// terminated, an active or inactive membership becomes alumni.
func (s *Service) Leave(ctx context.Context, volunteerID, membershipID uuid.UUID) (*View, error) {
	var m models.OrganizationMembership
	if err := s.db.WithContext(ctx).First(&m, "id = ?", membershipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	to := models.MembershipAlumni
	if m.Status == models.MembershipPending || m.Status == models.MembershipSuspended {
		to = models.MembershipTerminated
	}
	return s.changeStatus(ctx, membershipID, to, "", func(m *models.OrganizationMembership) error {
		if m.VolunteerID != volunteerID {
			return ErrNotMember
		}
		return nil
	})
}

func (s *Service) changeStatus(ctx context.Context, membershipID uuid.UUID, to models.MembershipStatus, notes string, authorize func(*models.OrganizationMembership) error) (*View, error) {
	var m models.OrganizationMembership
	joined := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, "id = ?", membershipID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMembershipNotFound
			}
			return err
		}
		if err := authorize(&m); err != nil {
			return err
		}
		if !CanTransition(m.Status, to) {
			return apperr.Transition("membership", string(m.Status), string(to))
		}

		now := s.now()
		updates := map[string]interface{}{"status": to}
		if to == models.MembershipActive && m.JoinedAt == nil {
			updates["joined_at"] = now
			m.JoinedAt = &now
			joined = true
		}
		if IsTerminal(to) {
			updates["left_at"] = now
			m.LeftAt = &now
		}
		if notes != "" {
			updates["notes"] = notes
			m.Notes = notes
		}

		res := tx.Model(&models.OrganizationMembership{}).
			Where("id = ? AND status = ?", m.ID, m.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Transition("membership", string(m.Status), string(to))
		}
		m.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	if joined {
		s.dispatch(ctx, m.VolunteerID, badges.TriggerMembershipJoined)
	}
	s.logger.Info("membership status changed", "membership_id", m.ID, "status", to)
	v := NewView(m)
	return &v, nil
}

type Permissions struct {
	CanManageEvents       *bool
	CanReviewApplications *bool
	CanMessageMembers     *bool
}

// UpdateRole sets the role and permission flags. Moving into a leadership
// role from a non-leadership one counts one more leadership role held.
func (s *Service) UpdateRole(ctx context.Context, organizationID, membershipID uuid.UUID, role models.MembershipRole, perms Permissions) (*View, error) {
	if role != "" && !role.Valid() {
		return nil, apperr.Invalid("role", "unknown role")
	}

	var m models.OrganizationMembership
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadForOrganization(tx, &m, organizationID, membershipID); err != nil {
			return err
		}
		if IsTerminal(m.Status) {
			return ErrNotActive
		}

		updates := map[string]interface{}{}
		if role != "" && role != m.Role {
			updates["role"] = role
			if IsLeadership(role) && !IsLeadership(m.Role) {
				updates["leadership_roles_held"] = gorm.Expr("leadership_roles_held + 1")
			}
		}
		if perms.CanManageEvents != nil {
			updates["can_manage_events"] = *perms.CanManageEvents
		}
		if perms.CanReviewApplications != nil {
			updates["can_review_applications"] = *perms.CanReviewApplications
		}
		if perms.CanMessageMembers != nil {
			updates["can_message_members"] = *perms.CanMessageMembers
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.OrganizationMembership{}).Where("id = ?", m.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&m, "id = ?", m.ID).Error
	})
	if err != nil {
		return nil, err
	}
	v := NewView(m)
	return &v, nil
}

// AddRating folds r into the running average with one statement.
func (s *Service) AddRating(ctx context.Context, organizationID, membershipID uuid.UUID, r float64) (*View, error) {
	if err := ValidateRating(r); err != nil {
		return nil, err
	}

	var m models.OrganizationMembership
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadForOrganization(tx, &m, organizationID, membershipID); err != nil {
			return err
		}
		if err := tx.Model(&models.OrganizationMembership{}).
			Where("id = ?", m.ID).
			UpdateColumns(map[string]interface{}{
				"average_rating":   gorm.Expr("(average_rating * ratings_received + ?) / (ratings_received + 1)", r),
				"ratings_received": gorm.Expr("ratings_received + 1"),
			}).Error; err != nil {
			return fmt.Errorf("recording rating: %w", err)
		}
		return tx.First(&m, "id = ?", m.ID).Error
	})
	if err != nil {
		return nil, err
	}
	v := NewView(m)
	return &v, nil
}

type LogInput struct {
	Hours       float64
	Type        models.ActivityType
	Description string
}

// LogActivity credits hours to an active membership and to the volunteer.
func (s *Service) LogActivity(ctx context.Context, organizationID, membershipID uuid.UUID, in LogInput) (*models.VolunteerActivity, error) {
	if in.Type == "" {
		in.Type = models.ActivityHoursLogged
	}
	if !in.Type.Valid() {
		return nil, apperr.Invalid("type", "unknown activity type")
	}
	if in.Hours < 0 || in.Hours > 24 {
		return nil, apperr.Invalid("hours", "must be between 0 and 24")
	}

	var activity models.VolunteerActivity
	var volunteerID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.OrganizationMembership
		if err := loadForOrganization(tx, &m, organizationID, membershipID); err != nil {
			return err
		}
		if m.Status != models.MembershipActive {
			return ErrNotActive
		}
		volunteerID = m.VolunteerID

		counters := map[string]interface{}{
			"hours_contributed":    gorm.Expr("hours_contributed + ?", in.Hours),
			"activities_completed": gorm.Expr("activities_completed + 1"),
		}
		if in.Type == models.ActivityTraining {
			counters["trainings_completed"] = gorm.Expr("trainings_completed + 1")
		}
		res := tx.Model(&models.OrganizationMembership{}).
			Where("id = ? AND status = ?", m.ID, models.MembershipActive).
			UpdateColumns(counters)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotActive
		}

		if err := tx.Model(&models.VolunteerDetails{}).
			Where("profile_id = ?", m.VolunteerID).
			UpdateColumn("total_volunteer_hours", gorm.Expr("total_volunteer_hours + ?", in.Hours)).Error; err != nil {
			return fmt.Errorf("crediting volunteer: %w", err)
		}

		orgID, mID := m.OrganizationID, m.ID
		activity = models.VolunteerActivity{
			ProfileID:      m.VolunteerID,
			Type:           in.Type,
			Hours:          in.Hours,
			Description:    in.Description,
			OrganizationID: &orgID,
			MembershipID:   &mID,
			OccurredAt:     s.now(),
		}
		return tx.Create(&activity).Error
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, volunteerID, badges.TriggerHoursLogged)
	return &activity, nil
}

// Get returns a membership to either party.
func (s *Service) Get(ctx context.Context, callerID, membershipID uuid.UUID) (*View, error) {
	var m models.OrganizationMembership
	if err := s.db.WithContext(ctx).Preload("Organization").Preload("Volunteer").First(&m, "id = ?", membershipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	if m.VolunteerID != callerID && m.OrganizationID != callerID {
		return nil, ErrNotMember
	}
	v := NewView(m)
	return &v, nil
}

// ForVolunteer lists a volunteer's memberships, newest first.
func (s *Service) ForVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]View, error) {
	var rows []models.OrganizationMembership
	if err := s.db.WithContext(ctx).
		Preload("Organization").
		Where("volunteer_id = ?", volunteerID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return views(rows), nil
}

type RosterSort string

const (
	SortJoined     RosterSort = "joined"
	SortEngagement RosterSort = "engagement"
)

// Roster pages through an organization's members. Engagement ordering is
// computed from the counters, so it sorts after loading.
func (s *Service) Roster(ctx context.Context, organizationID uuid.UUID, status models.MembershipStatus, sortBy RosterSort, offset, limit int) ([]View, int64, error) {
	query := s.db.WithContext(ctx).Preload("Volunteer").Where("organization_id = ?", organizationID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []models.OrganizationMembership
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := views(rows)
	if sortBy == SortEngagement {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EngagementScore > out[j].EngagementScore
		})
	}

	total := int64(len(out))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []View{}, total, nil
	}
	end := len(out)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return out[offset:end], total, nil
}

func (s *Service) dispatch(ctx context.Context, profileID uuid.UUID, trigger badges.Trigger) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, profileID, trigger); err != nil {
		s.logger.Error("badge evaluation failed", "profile_id", profileID, "trigger", trigger, "error", err)
	}
}

func loadForOrganization(tx *gorm.DB, m *models.OrganizationMembership, organizationID, membershipID uuid.UUID) error {
	if err := tx.First(m, "id = ?", membershipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		return err
	}
	if m.OrganizationID != organizationID {
		return ErrNotMember
	}
	return nil
}

func requireKind(tx *gorm.DB, profileID uuid.UUID, kind models.ProfileKind, notFound error) error {
	var n int64
	if err := tx.Model(&models.Profile{}).Where("id = ? AND kind = ?", profileID, kind).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func views(rows []models.OrganizationMembership) []View {
	out := make([]View, len(rows))
	for i, m := range rows {
		out[i] = NewView(m)
	}
	return out
}
