package model

import (
	"time"

	"gorm.io/gorm"
)

// User is an authenticated principal. Role is server-assigned and immutable
// through the portal; ViewMode is only a persisted UI preference.
type User struct {
	gorm.Model
	Name      string     `gorm:"type:varchar(64)"`
	Email     string     `gorm:"uniqueIndex;type:varchar(128);not null"`
	Company   string     `gorm:"type:varchar(128)"`
	Avatar    string     `gorm:"type:varchar(512)"`
	Plan      string     `gorm:"type:varchar(32)"`
	Role      Role       `gorm:"not null;default:1"`
	Status    UserStatus `gorm:"type:varchar(16);not null;default:active"`
	ViewMode  ViewMode   `gorm:"type:varchar(16);default:client"`
	LastLogin *time.Time
}

// MagicToken is a single-use passwordless login token delivered by email.
type MagicToken struct {
	gorm.Model
	Token     string    `gorm:"uniqueIndex;type:varchar(64);not null"`
	Email     string    `gorm:"type:varchar(128);not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}
