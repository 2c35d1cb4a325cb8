package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QAChecklist holds the three gates that must all pass before a project may
// leave QA Review. It is absent (null column) until QA begins.
type QAChecklist struct {
	ImageQuality    bool `json:"imageQuality"`
	BriefCompliance bool `json:"briefCompliance"`
	SpecsCheck      bool `json:"specsCheck"`
}

// Passed reports whether every gate is checked.
func (q QAChecklist) Passed() bool {
	return q.ImageQuality && q.BriefCompliance && q.SpecsCheck
}

// Project is one client editing job.
type Project struct {
	gorm.Model
	Name          string                         `gorm:"type:varchar(128);not null"`
	Category      string                         `gorm:"type:varchar(64)"`
	Platforms     datatypes.JSONSlice[Platform]  `gorm:"comment:target sales channels"`
	Status        ProjectStatus                  `gorm:"type:varchar(32);not null;default:Draft;index"`
	Thumbnail     string                         `gorm:"type:varchar(512)"`
	CreativeBrief string                         `gorm:"type:text"`
	DeliveryDate  *time.Time
	PackageType   PackageType                    `gorm:"type:varchar(32)"`
	ItemQuantity  int                            `gorm:"not null;default:1"`
	// TotalCost is frozen at submission time; later quantity edits never touch it.
	TotalCost   float64 `gorm:"type:numeric(10,2);not null;default:0"`
	ProgressDay int     `gorm:"not null;default:0"`
	TotalDays   int     `gorm:"not null;default:0"`
	Priority    Priority `gorm:"type:varchar(16);default:Standard"`

	// Admin-only fields. InternalNotes must never reach a client-facing response.
	InternalNotes string                           `gorm:"type:text"`
	QAChecklist   datatypes.JSONType[*QAChecklist] `gorm:"comment:null until QA begins"`

	ClientName  string `gorm:"type:varchar(128)"`
	ClientEmail string `gorm:"type:varchar(128);index"`

	AssignedEditorID *uint
	AssignedEditor   *TeamMember `gorm:"foreignKey:AssignedEditorID"`

	Assets []Asset

	// Version backs optimistic locking on transition writes.
	Version int64 `gorm:"not null;default:0"`
}

// Asset is one deliverable file, independently reviewable by the client.
type Asset struct {
	gorm.Model
	ProjectID  uint        `gorm:"not null;index"`
	URL        string      `gorm:"type:varchar(512);not null"`
	Name       string      `gorm:"type:varchar(128);not null"`
	Size       string      `gorm:"type:varchar(32)"`
	Dimensions string      `gorm:"type:varchar(32)"`
	Status     AssetStatus `gorm:"type:varchar(16);not null;default:pending"`

	EditedByID *uint
	EditedBy   *TeamMember `gorm:"foreignKey:EditedByID"`
}
