// Package search filters and ranks organization and volunteer profiles.
package search

import (
	"sort"
	"strings"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
)

type SizeBucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	// Max is the largest employee count in the bucket, 0 for unbounded.
	Max int `json:"max_employees,omitempty"`
}

var sizeBuckets = []SizeBucket{
	{Key: "small", Label: "Small (1-50)", Max: 50},
	{Key: "medium", Label: "Medium (51-200)", Max: 200},
	{Key: "large", Label: "Large (201-1000)", Max: 1000},
	{Key: "enterprise", Label: "Enterprise (1000+)"},
}

func SizeBuckets() []SizeBucket {
	out := make([]SizeBucket, len(sizeBuckets))
	copy(out, sizeBuckets)
	return out
}

// SizeFor maps an employee count to its bucket.
func SizeFor(employees int) SizeBucket {
	for _, b := range sizeBuckets {
		if b.Max == 0 || employees <= b.Max {
			return b
		}
	}
	return sizeBuckets[len(sizeBuckets)-1]
}

func SizeLabel(employees int) string {
	return SizeFor(employees).Label
}

// ParseSize accepts a bucket key or its label, case-insensitively.
func ParseSize(s string) (SizeBucket, bool) {
	s = strings.TrimSpace(s)
	for _, b := range sizeBuckets {
		if strings.EqualFold(s, b.Key) || strings.EqualFold(s, b.Label) {
			return b, true
		}
	}
	return SizeBucket{}, false
}

type OrganizationSort string

const (
	SortName       OrganizationSort = "name"
	SortNewest     OrganizationSort = "newest"
	SortEvents     OrganizationSort = "events"
	SortVolunteers OrganizationSort = "volunteers"
)

func (s OrganizationSort) Valid() bool {
	switch s {
	case "", SortName, SortNewest, SortEvents, SortVolunteers:
		return true
	}
	return false
}

// OrganizationQuery holds the browse parameters. Zero values mean no
// constraint.
type OrganizationQuery struct {
	Name              string
	Category          string
	Type              models.OrganizationType
	Size              string
	Country           string
	Location          string
	Verified          *bool
	FoundedFrom       int
	FoundedTo         int
	CreatedWithinDays int
	UpdatedWithinDays int
	Sort              OrganizationSort
}

func (q OrganizationQuery) Validate() error {
	fields := map[string]string{}
	if q.Size != "" {
		if _, ok := ParseSize(q.Size); !ok {
			fields["size"] = "must be one of small, medium, large, enterprise"
		}
	}
	if !q.Sort.Valid() {
		fields["sort"] = "must be one of name, newest, events, volunteers"
	}
	if q.FoundedFrom != 0 && q.FoundedTo != 0 && q.FoundedFrom > q.FoundedTo {
		fields["founded_to"] = "must not be before founded_from"
	}
	if q.CreatedWithinDays < 0 {
		fields["created_within_days"] = "must not be negative"
	}
	if q.UpdatedWithinDays < 0 {
		fields["updated_within_days"] = "must not be negative"
	}
	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

// Predicate is one independent filter over organization profiles. The
// profile's Organization details must be loaded.
type Predicate func(p *models.Profile) bool

// Predicates builds one predicate per present parameter. Name is handled
// separately by MatchName because it ranks exact matches over substrings.
func (q OrganizationQuery) Predicates(now time.Time) []Predicate {
	var preds []Predicate

	if c := strings.TrimSpace(q.Category); c != "" {
		preds = append(preds, func(p *models.Profile) bool {
			for _, have := range p.Organization.Categories {
				if strings.EqualFold(strings.TrimSpace(have), c) {
					return true
				}
			}
			return false
		})
	}
	if q.Type != "" {
		preds = append(preds, func(p *models.Profile) bool {
			return strings.EqualFold(string(p.Organization.Type), string(q.Type))
		})
	}
	if b, ok := ParseSize(q.Size); ok {
		preds = append(preds, func(p *models.Profile) bool {
			return SizeFor(p.Organization.EmployeeCount).Key == b.Key
		})
	}
	if c := strings.TrimSpace(q.Country); c != "" {
		preds = append(preds, func(p *models.Profile) bool {
			return strings.EqualFold(p.Country, c)
		})
	}
	if l := strings.ToLower(strings.TrimSpace(q.Location)); l != "" {
		preds = append(preds, func(p *models.Profile) bool {
			for _, part := range []string{p.City, p.State, p.Country} {
				if strings.Contains(strings.ToLower(part), l) {
					return true
				}
			}
			return false
		})
	}
	if q.Verified != nil {
		want := *q.Verified
		preds = append(preds, func(p *models.Profile) bool { return p.Verified == want })
	}
	if q.FoundedFrom != 0 {
		preds = append(preds, func(p *models.Profile) bool {
			return p.Organization.FoundedYear != 0 && p.Organization.FoundedYear >= q.FoundedFrom
		})
	}
	if q.FoundedTo != 0 {
		preds = append(preds, func(p *models.Profile) bool {
			return p.Organization.FoundedYear != 0 && p.Organization.FoundedYear <= q.FoundedTo
		})
	}
	if q.CreatedWithinDays > 0 {
		since := now.AddDate(0, 0, -q.CreatedWithinDays)
		preds = append(preds, func(p *models.Profile) bool { return !p.CreatedAt.Before(since) })
	}
	if q.UpdatedWithinDays > 0 {
		since := now.AddDate(0, 0, -q.UpdatedWithinDays)
		preds = append(preds, func(p *models.Profile) bool { return !p.UpdatedAt.Before(since) })
	}

	return preds
}

// Filter keeps the profiles matching every predicate.
func Filter(orgs []models.Profile, preds []Predicate) []models.Profile {
	out := make([]models.Profile, 0, len(orgs))
next:
	for i := range orgs {
		if orgs[i].Organization == nil {
			continue
		}
		for _, pred := range preds {
			if !pred(&orgs[i]) {
				continue next
			}
		}
		out = append(out, orgs[i])
	}
	return out
}

// MatchName returns the organizations whose name equals name ignoring
// case, or the substring matches when there is no exact one.
func MatchName(orgs []models.Profile, name string) []models.Profile {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return orgs
	}

	var exact, partial []models.Profile
	for _, p := range orgs {
		n := strings.ToLower(OrganizationName(&p))
		switch {
		case n == name:
			exact = append(exact, p)
		case strings.Contains(n, name):
			partial = append(partial, p)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	if partial == nil {
		return []models.Profile{}
	}
	return partial
}

// OrganizationName prefers the registered organization name over the
// profile display name.
func OrganizationName(p *models.Profile) string {
	if p.Organization != nil && p.Organization.OrganizationName != "" {
		return p.Organization.OrganizationName
	}
	return p.DisplayName
}

// SortOrganizations orders orgs in place. Ties break on name.
func SortOrganizations(orgs []models.Profile, by OrganizationSort) {
	byName := func(i, j int) bool {
		return strings.ToLower(OrganizationName(&orgs[i])) < strings.ToLower(OrganizationName(&orgs[j]))
	}

	var less func(i, j int) bool
	switch by {
	case SortNewest:
		less = func(i, j int) bool {
			if !orgs[i].CreatedAt.Equal(orgs[j].CreatedAt) {
				return orgs[i].CreatedAt.After(orgs[j].CreatedAt)
			}
			return byName(i, j)
		}
	case SortEvents:
		less = func(i, j int) bool {
			a, b := orgs[i].Organization.EventsHosted, orgs[j].Organization.EventsHosted
			if a != b {
				return a > b
			}
			return byName(i, j)
		}
	case SortVolunteers:
		less = func(i, j int) bool {
			a, b := orgs[i].Organization.VolunteersServed, orgs[j].Organization.VolunteersServed
			if a != b {
				return a > b
			}
			return byName(i, j)
		}
	default:
		less = byName
	}
	sort.SliceStable(orgs, less)
}
