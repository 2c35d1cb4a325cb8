// Constants mapped to database columns.
// Gin rejects zero values on fields tagged `binding:"required"`, so numeric
// enums start at iota + 1 to keep the zero value out of the legal range.
package model

// Role is the platform role of an authenticated user.
type Role uint8

const (
	RoleClient Role = iota + 1
	RoleEditor
	RoleAdmin
)

// ViewMode is the UI surface an admin has chosen. It never changes Role.
type ViewMode string

const (
	ViewModeClient ViewMode = "client"
	ViewModeAdmin  ViewMode = "admin"
)

// UserStatus of a portal account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// ProjectStatus is the lifecycle state of an editing project. The values are
// the exact strings the frontend renders, so they go over the wire as-is.
type ProjectStatus string

const (
	ProjectDraft          ProjectStatus = "Draft"
	ProjectSubmitted      ProjectStatus = "Submitted"
	ProjectTeamAssigned   ProjectStatus = "Team Assigned"
	ProjectBeingEdited    ProjectStatus = "Being Edited"
	ProjectQAReview       ProjectStatus = "QA Review"
	ProjectReadyForReview ProjectStatus = "Ready for Review"
	ProjectCompleted      ProjectStatus = "Completed"
)

// AssetStatus is the review state of a single deliverable.
type AssetStatus string

const (
	AssetPending  AssetStatus = "pending"
	AssetApproved AssetStatus = "approved"
	AssetRevision AssetStatus = "revision"
)

// PackageType fixes the feature set and unit price of a project.
type PackageType string

const (
	PackageDFY       PackageType = "DFY Pack"
	PackageImageOnly PackageType = "Image Only"
	PackageVideoOnly PackageType = "Video Only"
)

// Priority set by admins for production planning.
type Priority string

const (
	PriorityUrgent   Priority = "Urgent"
	PriorityStandard Priority = "Standard"
	PriorityLow      Priority = "Low"
)

// Platform is a client sales channel the deliverables target.
type Platform string

const (
	PlatformAmazon    Platform = "Amazon"
	PlatformEtsy      Platform = "Etsy"
	PlatformShopify   Platform = "Shopify"
	PlatformInstagram Platform = "Instagram"
	PlatformWebsite   Platform = "Website"
)

// MemberRole is the staff function of a team member.
type MemberRole string

const (
	MemberLeadEditor      MemberRole = "Lead Editor"
	MemberAccountManager  MemberRole = "Account Manager"
	MemberQASpecialist    MemberRole = "QA Specialist"
	MemberSeniorRetoucher MemberRole = "Senior Retoucher"
)
