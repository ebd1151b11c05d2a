package connections

import (
	"testing"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/stretchr/testify/assert"
)

func TestStrength(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ago := func(days int) *time.Time {
		at := now.AddDate(0, 0, -days)
		return &at
	}

	tests := []struct {
		name string
		c    models.UserConnection
		want float64
	}{
		{"pending", models.UserConnection{Status: models.ConnectionPending, InteractionCount: 20, LastInteractionAt: ago(1)}, 0},
		{"archived", models.UserConnection{Status: models.ConnectionArchived, InteractionCount: 3}, 0},
		{"fresh accept", models.UserConnection{Status: models.ConnectionAccepted}, 10},
		{"interactions", models.UserConnection{Status: models.ConnectionAccepted, InteractionCount: 4}, 30},
		{"interactions capped", models.UserConnection{Status: models.ConnectionAccepted, InteractionCount: 40}, 60},
		{"this week", models.UserConnection{Status: models.ConnectionAccepted, InteractionCount: 2, LastInteractionAt: ago(7)}, 60},
		{"this month", models.UserConnection{Status: models.ConnectionAccepted, InteractionCount: 2, LastInteractionAt: ago(20)}, 45},
		{"this quarter", models.UserConnection{Status: models.ConnectionAccepted, InteractionCount: 2, LastInteractionAt: ago(90)}, 30},
		{"stale", models.UserConnection{Status: models.ConnectionAccepted, InteractionCount: 2, LastInteractionAt: ago(91)}, 20},
		{"max", models.UserConnection{Status: models.ConnectionAccepted, InteractionCount: 100, LastInteractionAt: ago(0)}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strength(&tt.c, now))
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.ConnectionPending, models.ConnectionAccepted))
	assert.True(t, CanTransition(models.ConnectionArchived, models.ConnectionAccepted))
	assert.True(t, CanTransition(models.ConnectionAccepted, models.ConnectionBlocked))
	assert.False(t, CanTransition(models.ConnectionRejected, models.ConnectionAccepted))
	assert.False(t, CanTransition(models.ConnectionBlocked, models.ConnectionAccepted))
	assert.False(t, CanTransition(models.ConnectionPending, models.ConnectionArchived))
}
