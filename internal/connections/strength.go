// Package connections manages profile-to-profile connections.
package connections

import (
	"math"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
)

var edges = map[models.ConnectionStatus][]models.ConnectionStatus{
	models.ConnectionPending:  {models.ConnectionAccepted, models.ConnectionRejected, models.ConnectionBlocked},
	models.ConnectionAccepted: {models.ConnectionArchived, models.ConnectionBlocked},
	models.ConnectionArchived: {models.ConnectionAccepted, models.ConnectionBlocked},
}

func CanTransition(from, to models.ConnectionStatus) bool {
	for _, s := range edges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Strength scores an accepted connection from its interaction history.
// Anything not accepted scores 0.
func Strength(c *models.UserConnection, now time.Time) float64 {
	if c.Status != models.ConnectionAccepted {
		return 0
	}

	score := 10 + math.Min(50, float64(c.InteractionCount)*5)
	if c.LastInteractionAt != nil {
		age := now.Sub(*c.LastInteractionAt)
		switch {
		case age <= 7*24*time.Hour:
			score += 40
		case age <= 30*24*time.Hour:
			score += 25
		case age <= 90*24*time.Hour:
			score += 10
		}
	}
	return math.Max(0, math.Min(100, score))
}
