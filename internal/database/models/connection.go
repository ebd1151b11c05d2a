package models

import (
	"time"

	"github.com/google/uuid"
)

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "PENDING"
	ConnectionAccepted ConnectionStatus = "ACCEPTED"
	ConnectionRejected ConnectionStatus = "REJECTED"
	ConnectionBlocked  ConnectionStatus = "BLOCKED"
	ConnectionArchived ConnectionStatus = "ARCHIVED"
)

type UserConnection struct {
	Base
	RequesterID uuid.UUID        `gorm:"type:uuid;not null;index" json:"requester_id"`
	RecipientID uuid.UUID        `gorm:"type:uuid;not null;index" json:"recipient_id"`
	PairKey     string           `gorm:"not null;uniqueIndex" json:"-"`
	Status      ConnectionStatus `gorm:"not null;default:'PENDING'" json:"status"`
	Message     string           `gorm:"type:text" json:"message,omitempty"`

	InteractionCount  int        `gorm:"default:0" json:"interaction_count"`
	LastInteractionAt *time.Time `json:"last_interaction_at,omitempty"`
	AcceptedAt        *time.Time `json:"accepted_at,omitempty"`
}

func (UserConnection) TableName() string {
	return "user_connections"
}

// PairKey returns the same key for (a, b) and (b, a).
func PairKey(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if x > y {
		x, y = y, x
	}
	return x + ":" + y
}

// Other returns the party of the connection that is not id.
func (c *UserConnection) Other(id uuid.UUID) uuid.UUID {
	if c.RequesterID == id {
		return c.RecipientID
	}
	return c.RequesterID
}

func (c *UserConnection) Involves(id uuid.UUID) bool {
	return c.RequesterID == id || c.RecipientID == id
}
