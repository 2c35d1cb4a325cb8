package workflow

import (
	"context"

	"github.com/modelmagic/modelmagic/dao/model"
)

// ProjectStore persists projects. SaveProject must perform a compare-and-swap
// on Project.Version and return a Conflict error when the row changed under
// us; Get* must return a NotFound error for missing rows.
type ProjectStore interface {
	GetProject(ctx context.Context, id uint) (*model.Project, error)
	SaveProject(ctx context.Context, p *model.Project) error
	DeleteProject(ctx context.Context, id uint) error
}

// AssetStore persists deliverables scoped to a project.
type AssetStore interface {
	GetAsset(ctx context.Context, id uint) (*model.Asset, error)
	ListAssets(ctx context.Context, projectID uint) ([]model.Asset, error)
	CreateAsset(ctx context.Context, a *model.Asset) error
	SaveAsset(ctx context.Context, a *model.Asset) error
	DeleteAsset(ctx context.Context, id uint) error
	DeleteProjectAssets(ctx context.Context, projectID uint) error
}

// MessageStore records revision feedback and project chatter.
type MessageStore interface {
	CreateMessage(ctx context.Context, m *model.Message) error
}

// Publisher delivers workflow events to observers. Delivery is fire and
// forget: the engine must behave identically when nobody listens.
type Publisher interface {
	Publish(event string, payload any)
}

// Event names published by the engine.
const (
	EventProjectStatusChanged = "project.status_changed"
	EventProjectCompleted     = "project.completed"
	EventAssetStatusChanged   = "asset.status_changed"
)

// StatusChange is the payload for project status events.
type StatusChange struct {
	ProjectID uint                `json:"projectId"`
	From      model.ProjectStatus `json:"from"`
	To        model.ProjectStatus `json:"to"`
}

// AssetChange is the payload for asset status events.
type AssetChange struct {
	AssetID   uint              `json:"assetId"`
	ProjectID uint              `json:"projectId"`
	From      model.AssetStatus `json:"from"`
	To        model.AssetStatus `json:"to"`
}
