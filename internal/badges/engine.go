package badges

import (
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
)

// Stats are the source counters badge progress is read from.
type Stats struct {
	EventsAttended    int     `json:"events_attended"`
	TotalHours        float64 `json:"total_hours"`
	Skills            int     `json:"skills"`
	Connections       int     `json:"accepted_connections"`
	ActiveMemberships int     `json:"active_memberships"`
}

func (s Stats) Value(stat Statistic) float64 {
	switch stat {
	case StatEventsAttended:
		return float64(s.EventsAttended)
	case StatTotalHours:
		return s.TotalHours
	case StatSkills:
		return float64(s.Skills)
	case StatConnections:
		return float64(s.Connections)
	case StatActiveMemberships:
		return float64(s.ActiveMemberships)
	}
	return 0
}

// Evaluate returns the badge types relevant to trigger whose thresholds the
// stats meet. It does not know which badges are already earned.
func Evaluate(stats Stats, trigger Trigger) []BadgeType {
	var out []BadgeType
	for _, b := range Relevant(trigger) {
		if IsCompleted(stats.Value(b.Statistic), b.RequiredCount) {
			out = append(out, b)
		}
	}
	return out
}

func IsCompleted(progress, required float64) bool {
	return progress >= required
}

func ProgressPercentage(progress, required float64) float64 {
	if required <= 0 {
		return 100
	}
	pct := progress * 100 / required
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// View is a stored badge row joined with its catalog entry.
type View struct {
	BadgeType
	Progress           float64    `json:"progress"`
	ProgressPercentage float64    `json:"progress_percentage"`
	IsCompleted        bool       `json:"is_completed"`
	EarnedAt           *time.Time `json:"earned_at,omitempty"`
}

// NewView derives completion from the row's progress. Rows for unknown badge
// types report ok=false.
func NewView(row models.ProfileBadge) (View, bool) {
	b, ok := Lookup(row.BadgeType)
	if !ok {
		return View{}, false
	}
	return View{
		BadgeType:          b,
		Progress:           row.Progress,
		ProgressPercentage: ProgressPercentage(row.Progress, b.RequiredCount),
		IsCompleted:        IsCompleted(row.Progress, b.RequiredCount),
		EarnedAt:           row.EarnedAt,
	}, true
}

// TotalPoints sums the points of completed badges.
func TotalPoints(views []View) int {
	total := 0
	for _, v := range views {
		if v.IsCompleted {
			total += v.Points
		}
	}
	return total
}
