// Package memberships manages volunteer/organization memberships and their
// engagement score.
package memberships

import (
	"math"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
)

const (
	MinRating = 1.0
	MaxRating = 5.0
)

const (
	LevelHighlyEngaged = "Highly Engaged"
	LevelActive        = "Active"
	LevelModerate      = "Moderate"
	LevelLimited       = "Limited"
	LevelInactive      = "Inactive"
)

// EngagementScore is recomputed from the stored counters every time and is
// always in [0, 100].
func EngagementScore(m *models.OrganizationMembership) float64 {
	score := math.Min(40, m.HoursContributed*0.1) +
		math.Min(30, float64(m.ActivitiesCompleted)*2.0)
	if m.RatingsReceived > 0 {
		score += m.AverageRating / 5.0 * 20.0
	}
	score += math.Min(5, float64(m.LeadershipRolesHeld)*1.0)
	score += math.Min(5, float64(m.TrainingsCompleted)*0.5)

	return math.Max(0, math.Min(100, score))
}

func EngagementLevel(score float64) string {
	switch {
	case score >= 80:
		return LevelHighlyEngaged
	case score >= 60:
		return LevelActive
	case score >= 40:
		return LevelModerate
	case score >= 20:
		return LevelLimited
	default:
		return LevelInactive
	}
}

func ValidateRating(r float64) error {
	if math.IsNaN(r) || r < MinRating || r > MaxRating {
		return apperr.Invalid("rating", "must be between 1.0 and 5.0")
	}
	return nil
}

// NextAverage is the running average after adding r to n prior ratings.
func NextAverage(avg float64, n int, r float64) float64 {
	return (avg*float64(n) + r) / float64(n+1)
}

var edges = map[models.MembershipStatus][]models.MembershipStatus{
	models.MembershipPending:   {models.MembershipActive, models.MembershipTerminated},
	models.MembershipActive:    {models.MembershipInactive, models.MembershipSuspended, models.MembershipTerminated, models.MembershipAlumni},
	models.MembershipInactive:  {models.MembershipActive, models.MembershipTerminated, models.MembershipAlumni},
	models.MembershipSuspended: {models.MembershipActive, models.MembershipTerminated},
}

func CanTransition(from, to models.MembershipStatus) bool {
	for _, s := range edges[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(s models.MembershipStatus) bool {
	return s == models.MembershipTerminated || s == models.MembershipAlumni
}

// IsLeadership reports whether r counts toward leadership roles held.
func IsLeadership(r models.MembershipRole) bool {
	return r == models.RoleLeader || r == models.RoleAdmin
}
