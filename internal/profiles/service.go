package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound      = apperr.NotFound("profile")
	ErrOrganizationNotFound = apperr.NotFound("organization")
	ErrSkillNotFound        = apperr.NotFound("skill")
	ErrInterestNotFound     = apperr.NotFound("interest")
	ErrFollowNotFound       = apperr.NotFound("follow")
	ErrSkillExists          = fmt.Errorf("%w: skill already listed", apperr.ErrConflict)
	ErrInterestExists       = fmt.Errorf("%w: interest already listed", apperr.ErrConflict)
	ErrAlreadyFollowing     = fmt.Errorf("%w: already following this organization", apperr.ErrConflict)
	ErrSelfEndorsement      = fmt.Errorf("%w: cannot endorse your own skill", apperr.ErrForbidden)
	ErrSealerUnavailable    = errors.New("emergency contact encryption is not configured")
)

// FieldSealer encrypts sensitive profile fields at rest.
type FieldSealer interface {
	SealField(value string) ([]byte, error)
	OpenField(sealed []byte) (string, error)
}

type Service struct {
	db         *gorm.DB
	sealer     FieldSealer
	dispatcher badges.Dispatcher
	logger     *slog.Logger
	richText   *bluemonday.Policy
	plainText  *bluemonday.Policy
	now        func() time.Time
}

func NewService(db *gorm.DB, sealer FieldSealer, dispatcher badges.Dispatcher, logger *slog.Logger) *Service {
	return &Service{
		db:         db,
		sealer:     sealer,
		dispatcher: dispatcher,
		logger:     logger,
		richText:   bluemonday.UGCPolicy(),
		plainText:  bluemonday.StrictPolicy(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Own returns the caller's profile with everything, decrypted.
func (s *Service) Own(ctx context.Context, profileID uuid.UUID) (*View, error) {
	p, email, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}

	v := View{Profile: *p, Email: email, Owner: true}
	if p.Volunteer != nil && len(p.Volunteer.EmergencyContact) > 0 {
		if s.sealer == nil {
			return nil, ErrSealerUnavailable
		}
		contact, err := s.sealer.OpenField(p.Volunteer.EmergencyContact)
		if err != nil {
			return nil, fmt.Errorf("opening emergency contact: %w", err)
		}
		v.EmergencyContact = contact
	}
	if err := s.attachLists(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Get returns a profile as viewerID sees it. Private profiles are not found
// for anyone but their owner.
func (s *Service) Get(ctx context.Context, viewerID, profileID uuid.UUID) (*View, error) {
	if viewerID == profileID {
		return s.Own(ctx, profileID)
	}

	p, email, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !p.IsPublic {
		return nil, ErrProfileNotFound
	}

	v := redact(*p, email)
	if err := s.attachLists(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Service) load(ctx context.Context, profileID uuid.UUID) (*models.Profile, string, error) {
	var p models.Profile
	if err := s.db.WithContext(ctx).
		Preload("Volunteer").
		Preload("Organization").
		Preload("User").
		First(&p, "id = ?", profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrProfileNotFound
		}
		return nil, "", err
	}
	email := ""
	if p.User != nil {
		email = p.User.Email
	}
	return &p, email, nil
}

func (s *Service) attachLists(ctx context.Context, v *View) error {
	v.Skills = []models.ProfileSkill{}
	v.Interests = []models.ProfileInterest{}
	db := s.db.WithContext(ctx)
	if err := db.Where("profile_id = ?", v.ID).Order("name ASC").Find(&v.Skills).Error; err != nil {
		return fmt.Errorf("loading skills: %w", err)
	}
	if err := db.Where("profile_id = ?", v.ID).Order("name ASC").Find(&v.Interests).Error; err != nil {
		return fmt.Errorf("loading interests: %w", err)
	}
	return nil
}

// UpdateInput carries optional changes. Nil fields are left alone. The
// volunteer and organization groups only apply to profiles of that kind.
type UpdateInput struct {
	DisplayName  *string
	Bio          *string
	AvatarURL    *string
	City         *string
	State        *string
	Country      *string
	IsPublic     *bool
	ShowEmail    *bool
	ShowPhone    *bool
	ShowLocation *bool

	FirstName        *string
	LastName         *string
	Phone            *string
	Availability     *models.Availability
	EmergencyContact *string

	OrganizationName *string
	OrganizationType *models.OrganizationType
	Categories       []string
	Mission          *string
	Website          *string
	EmployeeCount    *int
	FoundedYear      *int
}

func (s *Service) Update(ctx context.Context, profileID uuid.UUID, in UpdateInput) (*View, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Profile
		if err := tx.First(&p, "id = ?", profileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}

		common := map[string]interface{}{}
		if in.DisplayName != nil {
			name := strings.TrimSpace(s.plainText.Sanitize(*in.DisplayName))
			if name == "" {
				return apperr.Invalid("display_name", "must not be empty")
			}
			common["display_name"] = name
		}
		s.setText(common, "bio", in.Bio, s.richText)
		s.setText(common, "avatar_url", in.AvatarURL, nil)
		s.setText(common, "city", in.City, s.plainText)
		s.setText(common, "state", in.State, s.plainText)
		s.setText(common, "country", in.Country, s.plainText)
		setBool(common, "is_public", in.IsPublic)
		setBool(common, "show_email", in.ShowEmail)
		setBool(common, "show_phone", in.ShowPhone)
		setBool(common, "show_location", in.ShowLocation)
		if len(common) > 0 {
			if err := tx.Model(&models.Profile{}).Where("id = ?", p.ID).Updates(common).Error; err != nil {
				return fmt.Errorf("updating profile: %w", err)
			}
		}

		switch p.Kind {
		case models.ProfileKindVolunteer:
			return s.updateVolunteer(tx, p.ID, in)
		case models.ProfileKindOrganization:
			return s.updateOrganization(tx, p.ID, in)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Own(ctx, profileID)
}

func (s *Service) updateVolunteer(tx *gorm.DB, profileID uuid.UUID, in UpdateInput) error {
	fields := map[string]interface{}{}
	s.setText(fields, "first_name", in.FirstName, s.plainText)
	s.setText(fields, "last_name", in.LastName, s.plainText)
	s.setText(fields, "phone", in.Phone, s.plainText)
	if in.Availability != nil {
		switch *in.Availability {
		case models.AvailabilityWeekdays, models.AvailabilityWeekends, models.AvailabilityEvenings, models.AvailabilityFlexible:
			fields["availability"] = *in.Availability
		default:
			return apperr.Invalid("availability", "unknown availability")
		}
	}
	if in.EmergencyContact != nil {
		if s.sealer == nil {
			return ErrSealerUnavailable
		}
		sealed, err := s.sealer.SealField(strings.TrimSpace(s.plainText.Sanitize(*in.EmergencyContact)))
		if err != nil {
			return fmt.Errorf("sealing emergency contact: %w", err)
		}
		fields["emergency_contact"] = sealed
	}
	if len(fields) == 0 {
		return nil
	}
	return tx.Model(&models.VolunteerDetails{}).Where("profile_id = ?", profileID).Updates(fields).Error
}

func (s *Service) updateOrganization(tx *gorm.DB, profileID uuid.UUID, in UpdateInput) error {
	fields := map[string]interface{}{}
	if in.OrganizationName != nil {
		name := strings.TrimSpace(s.plainText.Sanitize(*in.OrganizationName))
		if name == "" {
			return apperr.Invalid("organization_name", "must not be empty")
		}
		fields["organization_name"] = name
	}
	if in.OrganizationType != nil {
		switch *in.OrganizationType {
		case models.OrgTypeNonprofit, models.OrgTypeCharity, models.OrgTypeCommunity, models.OrgTypeEducational,
			models.OrgTypeReligious, models.OrgTypeGovernment, models.OrgTypeOther:
			fields["type"] = *in.OrganizationType
		default:
			return apperr.Invalid("organization_type", "unknown organization type")
		}
	}
	if in.Categories != nil {
		fields["categories"] = datatypes.JSONSlice[string](s.cleanList(in.Categories))
	}
	s.setText(fields, "mission", in.Mission, s.richText)
	s.setText(fields, "website", in.Website, nil)
	if in.EmployeeCount != nil {
		if *in.EmployeeCount < 0 {
			return apperr.Invalid("employee_count", "must not be negative")
		}
		fields["employee_count"] = *in.EmployeeCount
	}
	if in.FoundedYear != nil {
		if y := *in.FoundedYear; y != 0 && (y < 1800 || y > s.now().Year()) {
			return apperr.Invalid("founded_year", "out of range")
		}
		fields["founded_year"] = *in.FoundedYear
	}
	if len(fields) == 0 {
		return nil
	}
	return tx.Model(&models.OrganizationDetails{}).Where("profile_id = ?", profileID).Updates(fields).Error
}

// setText records a trimmed text change. A nil policy stores the value as
// given, for URLs.
func (s *Service) setText(fields map[string]interface{}, column string, value *string, policy *bluemonday.Policy) {
	if value == nil {
		return
	}
	v := *value
	if policy != nil {
		v = policy.Sanitize(v)
	}
	fields[column] = strings.TrimSpace(v)
}

func setBool(fields map[string]interface{}, column string, value *bool) {
	if value != nil {
		fields[column] = *value
	}
}

func (s *Service) cleanList(values []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(s.plainText.Sanitize(v))
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// Delete soft-deletes the profile, hides everything it owns and
// deactivates the account.
func (s *Service) Delete(ctx context.Context, profileID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Profile
		if err := tx.First(&p, "id = ?", profileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}

		owned := []interface{}{
			&models.ProfileSkill{},
			&models.ProfileInterest{},
			&models.ProfileBadge{},
			&models.VolunteerActivity{},
			&models.VolunteerDetails{},
			&models.OrganizationDetails{},
		}
		for _, model := range owned {
			if err := tx.Where("profile_id = ?", p.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("hiding %T: %w", model, err)
			}
		}
		if err := tx.Where("volunteer_id = ? OR organization_id = ?", p.ID, p.ID).
			Delete(&models.OrganizationFollow{}).Error; err != nil {
			return fmt.Errorf("hiding follows: %w", err)
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("deleting profile: %w", err)
		}
		return tx.Model(&models.User{}).Where("id = ?", p.UserID).Update("is_active", false).Error
	})
	if err != nil {
		return err
	}
	s.logger.Info("profile deleted", "profile_id", profileID)
	return nil
}

// VerifyOrganization marks an organization profile as verified.
func (s *Service) VerifyOrganization(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ? AND kind = ?", profileID, models.ProfileKindOrganization).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrganizationNotFound
			}
			return err
		}
		if p.Verified {
			return nil
		}
		now := s.now()
		if err := tx.Model(&p).Updates(map[string]interface{}{"verified": true, "verified_at": now}).Error; err != nil {
			return err
		}
		p.Verified, p.VerifiedAt = true, &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type SkillInput struct {
	Name            string
	Proficiency     models.Proficiency
	YearsExperience int
}

func (s *Service) AddSkill(ctx context.Context, profileID uuid.UUID, in SkillInput) (*models.ProfileSkill, error) {
	name := strings.TrimSpace(s.plainText.Sanitize(in.Name))
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	if in.Proficiency == "" {
		in.Proficiency = models.ProficiencyBeginner
	}
	switch in.Proficiency {
	case models.ProficiencyBeginner, models.ProficiencyIntermediate, models.ProficiencyAdvanced, models.ProficiencyExpert:
	default:
		return nil, apperr.Invalid("proficiency", "unknown proficiency")
	}
	if in.YearsExperience < 0 {
		return nil, apperr.Invalid("years_experience", "must not be negative")
	}

	skill := models.ProfileSkill{
		ProfileID:       profileID,
		Name:            name,
		NormalizedName:  models.NormalizeName(name),
		Proficiency:     in.Proficiency,
		YearsExperience: in.YearsExperience,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProfile(tx, profileID); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.ProfileSkill{}).
			Where("profile_id = ? AND normalized_name = ?", profileID, skill.NormalizedName).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrSkillExists
		}
		if err := tx.Create(&skill).Error; err != nil {
			if database.IsDuplicate(err) {
				return ErrSkillExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, profileID, badges.TriggerSkillAdded)
	return &skill, nil
}

func (s *Service) RemoveSkill(ctx context.Context, profileID, skillID uuid.UUID) error {
	res := s.db.WithContext(ctx).Unscoped().
		Where("id = ? AND profile_id = ?", skillID, profileID).
		Delete(&models.ProfileSkill{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSkillNotFound
	}
	return nil
}

// EndorseSkill adds one endorsement to someone else's skill.
func (s *Service) EndorseSkill(ctx context.Context, endorserID, skillID uuid.UUID) (*models.ProfileSkill, error) {
	var skill models.ProfileSkill
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&skill, "id = ?", skillID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSkillNotFound
			}
			return err
		}
		if skill.ProfileID == endorserID {
			return ErrSelfEndorsement
		}
		if err := tx.Model(&models.ProfileSkill{}).
			Where("id = ?", skill.ID).
			UpdateColumn("endorsements", gorm.Expr("endorsements + 1")).Error; err != nil {
			return err
		}
		return tx.First(&skill, "id = ?", skill.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

func (s *Service) Skills(ctx context.Context, profileID uuid.UUID) ([]models.ProfileSkill, error) {
	var skills []models.ProfileSkill
	err := s.db.WithContext(ctx).Where("profile_id = ?", profileID).Order("name ASC").Find(&skills).Error
	return skills, err
}

type InterestInput struct {
	Name     string
	Priority models.Priority
}

func (s *Service) AddInterest(ctx context.Context, profileID uuid.UUID, in InterestInput) (*models.ProfileInterest, error) {
	name := strings.TrimSpace(s.plainText.Sanitize(in.Name))
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	switch in.Priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		return nil, apperr.Invalid("priority", "unknown priority")
	}

	interest := models.ProfileInterest{
		ProfileID:      profileID,
		Name:           name,
		NormalizedName: models.NormalizeName(name),
		Priority:       in.Priority,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProfile(tx, profileID); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.ProfileInterest{}).
			Where("profile_id = ? AND normalized_name = ?", profileID, interest.NormalizedName).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrInterestExists
		}
		if err := tx.Create(&interest).Error; err != nil {
			if database.IsDuplicate(err) {
				return ErrInterestExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &interest, nil
}

func (s *Service) RemoveInterest(ctx context.Context, profileID, interestID uuid.UUID) error {
	res := s.db.WithContext(ctx).Unscoped().
		Where("id = ? AND profile_id = ?", interestID, profileID).
		Delete(&models.ProfileInterest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInterestNotFound
	}
	return nil
}

func (s *Service) Interests(ctx context.Context, profileID uuid.UUID) ([]models.ProfileInterest, error) {
	var interests []models.ProfileInterest
	err := s.db.WithContext(ctx).Where("profile_id = ?", profileID).Order("name ASC").Find(&interests).Error
	return interests, err
}

func (s *Service) Follow(ctx context.Context, volunteerID, organizationID uuid.UUID) (*models.OrganizationFollow, error) {
	follow := models.OrganizationFollow{VolunteerID: volunteerID, OrganizationID: organizationID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Profile{}).
			Where("id = ? AND kind = ?", organizationID, models.ProfileKindOrganization).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrOrganizationNotFound
		}
		if err := tx.Model(&models.OrganizationFollow{}).
			Where("volunteer_id = ? AND organization_id = ?", volunteerID, organizationID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyFollowing
		}
		if err := tx.Create(&follow).Error; err != nil {
			if database.IsDuplicate(err) {
				return ErrAlreadyFollowing
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

func (s *Service) Unfollow(ctx context.Context, volunteerID, organizationID uuid.UUID) error {
	res := s.db.WithContext(ctx).Unscoped().
		Where("volunteer_id = ? AND organization_id = ?", volunteerID, organizationID).
		Delete(&models.OrganizationFollow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFollowNotFound
	}
	return nil
}

// Following lists the organizations a volunteer follows, most recent first.
func (s *Service) Following(ctx context.Context, volunteerID uuid.UUID) ([]models.Profile, error) {
	var follows []models.OrganizationFollow
	if err := s.db.WithContext(ctx).
		Preload("Organization.Organization").
		Where("volunteer_id = ?", volunteerID).
		Order("created_at DESC").
		Find(&follows).Error; err != nil {
		return nil, err
	}

	orgs := make([]models.Profile, 0, len(follows))
	for _, f := range follows {
		if f.Organization != nil {
			orgs = append(orgs, *f.Organization)
		}
	}
	return orgs, nil
}

func (s *Service) FollowerCount(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.OrganizationFollow{}).Where("organization_id = ?", organizationID).Count(&n).Error
	return n, err
}

// Activities pages through a profile's activity log, newest first.
func (s *Service) Activities(ctx context.Context, profileID uuid.UUID, offset, limit int) ([]models.VolunteerActivity, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.VolunteerActivity{}).Where("profile_id = ?", profileID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var activities []models.VolunteerActivity
	if err := query.Order("occurred_at DESC").Offset(offset).Limit(limit).Find(&activities).Error; err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

func (s *Service) dispatch(ctx context.Context, profileID uuid.UUID, trigger badges.Trigger) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, profileID, trigger); err != nil {
		s.logger.Error("badge evaluation failed", "profile_id", profileID, "trigger", trigger, "error", err)
	}
}

func requireProfile(tx *gorm.DB, profileID uuid.UUID) error {
	var n int64
	if err := tx.Model(&models.Profile{}).Where("id = ?", profileID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}
