package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"gorm.io/gorm"
)

// Source loads the organization profiles the search runs over. Profiles
// come back with Organization details loaded.
type Source interface {
	PublicOrganizations(ctx context.Context) ([]models.Profile, error)
	VerifiedOrganizations(ctx context.Context) ([]models.Profile, error)
}

type GormSource struct {
	db *gorm.DB
}

func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

func (g *GormSource) PublicOrganizations(ctx context.Context) ([]models.Profile, error) {
	var orgs []models.Profile
	if err := g.db.WithContext(ctx).
		Preload("Organization").
		Where("kind = ? AND is_public = ?", models.ProfileKindOrganization, true).
		Find(&orgs).Error; err != nil {
		return nil, fmt.Errorf("loading organizations: %w", err)
	}
	return orgs, nil
}

func (g *GormSource) VerifiedOrganizations(ctx context.Context) ([]models.Profile, error) {
	var orgs []models.Profile
	if err := g.db.WithContext(ctx).
		Preload("Organization").
		Where("kind = ? AND is_public = ? AND verified = ?", models.ProfileKindOrganization, true, true).
		Order("display_name ASC").
		Find(&orgs).Error; err != nil {
		return nil, fmt.Errorf("loading verified organizations: %w", err)
	}
	return orgs, nil
}

// Stage names which step of the browse fallback chain produced a result.
type Stage string

const (
	StageSearch   Stage = "search"
	StageVerified Stage = "verified"
	StageEmpty    Stage = "empty"
)

type Result struct {
	Organizations []models.Profile
	Total         int64
	Stage         Stage
}

type Service struct {
	db     *gorm.DB
	source Source
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a search service. db serves volunteer search and may
// be nil when only organizations are searched.
func NewService(db *gorm.DB, source Source, logger *slog.Logger) *Service {
	return &Service{db: db, source: source, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Organizations runs the query and fails loudly.
func (s *Service) Organizations(ctx context.Context, q OrganizationQuery) ([]models.Profile, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	all, err := s.source.PublicOrganizations(ctx)
	if err != nil {
		return nil, err
	}

	orgs := Filter(all, q.Predicates(s.now()))
	orgs = MatchName(orgs, q.Name)
	SortOrganizations(orgs, q.Sort)
	return orgs, nil
}

type stage struct {
	name Stage
	run  func(context.Context) ([]models.Profile, error)
}

// Browse is the public listing. It walks the fallback chain and never
// returns an error: a failing stage is logged and the next one runs. The
// last stage is an explicit empty list.
func (s *Service) Browse(ctx context.Context, q OrganizationQuery, offset, limit int) Result {
	chain := []stage{
		{StageSearch, func(ctx context.Context) ([]models.Profile, error) { return s.Organizations(ctx, q) }},
		{StageVerified, s.source.VerifiedOrganizations},
	}

	for _, st := range chain {
		orgs, err := st.run(ctx)
		if err != nil {
			s.logger.Warn("organization browse stage failed", "stage", st.name, "error", err)
			continue
		}
		page, total := paginate(orgs, offset, limit)
		return Result{Organizations: page, Total: total, Stage: st.name}
	}
	return Result{Organizations: []models.Profile{}, Stage: StageEmpty}
}

type VolunteerQuery struct {
	Skill        string
	Location     string
	Availability models.Availability
	MinHours     float64
}

// Volunteers searches public volunteer profiles. Location only matches
// profiles that show their location.
func (s *Service) Volunteers(ctx context.Context, q VolunteerQuery, offset, limit int) ([]models.Profile, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Profile{}).
		Joins("JOIN volunteer_details ON volunteer_details.profile_id = profiles.id AND volunteer_details.deleted_at IS NULL").
		Where("profiles.kind = ? AND profiles.is_public = ?", models.ProfileKindVolunteer, true)

	if skill := models.NormalizeName(q.Skill); skill != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM profile_skills WHERE profile_skills.profile_id = profiles.id AND profile_skills.normalized_name = ? AND profile_skills.deleted_at IS NULL)",
			skill,
		)
	}
	if l := strings.ToLower(strings.TrimSpace(q.Location)); l != "" {
		like := "%" + l + "%"
		query = query.Where(
			"profiles.show_location = ? AND (LOWER(profiles.city) LIKE ? OR LOWER(profiles.state) LIKE ? OR LOWER(profiles.country) LIKE ?)",
			true, like, like, like,
		)
	}
	if q.Availability != "" {
		query = query.Where("volunteer_details.availability = ?", q.Availability)
	}
	if q.MinHours > 0 {
		query = query.Where("volunteer_details.total_volunteer_hours >= ?", q.MinHours)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting volunteers: %w", err)
	}

	var profiles []models.Profile
	if err := query.Preload("Volunteer").
		Order("profiles.display_name ASC").
		Offset(offset).Limit(limit).
		Find(&profiles).Error; err != nil {
		return nil, 0, fmt.Errorf("searching volunteers: %w", err)
	}
	return profiles, total, nil
}

func paginate(orgs []models.Profile, offset, limit int) ([]models.Profile, int64) {
	total := int64(len(orgs))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(orgs) {
		return []models.Profile{}, total
	}
	end := len(orgs)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return orgs[offset:end], total
}
