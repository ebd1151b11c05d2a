package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with UUID primary key, timestamps and soft delete.
type Base struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&VolunteerDetails{},
		&OrganizationDetails{},
		&Event{},
		&Application{},
		&ProfileBadge{},
		&OrganizationMembership{},
		&ProfileSkill{},
		&ProfileInterest{},
		&OrganizationFollow{},
		&VolunteerActivity{},
		&UserConnection{},
	}
}
