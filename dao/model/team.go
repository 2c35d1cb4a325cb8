package model

import "gorm.io/gorm"

// TeamMember is staff reference data, read-mostly and owned by admin operations.
type TeamMember struct {
	gorm.Model
	Name     string     `gorm:"type:varchar(64);not null"`
	Role     MemberRole `gorm:"type:varchar(32);not null"`
	Avatar   string     `gorm:"type:varchar(512)"`
	Email    string     `gorm:"uniqueIndex;type:varchar(128);not null"`
	IsOnline bool       `gorm:"not null;default:false"`
}

// Message is a note between a client and the team, optionally scoped to a
// project. Revision feedback is recorded here.
type Message struct {
	gorm.Model
	SenderUserID   *uint
	SenderMemberID *uint
	ProjectID      *uint  `gorm:"index"`
	Content        string `gorm:"type:text;not null"`
}
