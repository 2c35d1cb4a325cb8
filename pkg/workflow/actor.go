package workflow

import "github.com/modelmagic/modelmagic/dao/model"

// Actor is the resolved principal performing a workflow request. Handlers
// build it from the session token; the engine never reads ambient state.
type Actor struct {
	UserID uint
	Email  string
	Role   model.Role
}

// Action names every permission-checked operation. The presentation layer
// asks Can() before showing a control and never re-derives these rules.
type Action string

const (
	ActionSubmitProject   Action = "project.submit"
	ActionAssignEditor    Action = "project.assign_editor"
	ActionStartEditing    Action = "project.start_editing"
	ActionSubmitForQA     Action = "project.submit_for_qa"
	ActionCompleteQA      Action = "project.complete_qa"
	ActionEditMeta        Action = "project.edit_meta"
	ActionViewInternal    Action = "project.view_internal"
	ActionDeleteProject   Action = "project.delete"
	ActionUploadAsset     Action = "asset.upload"
	ActionApproveAsset    Action = "asset.approve"
	ActionRequestRevision Action = "asset.request_revision"
	ActionResubmitAsset   Action = "asset.resubmit"
	ActionDeleteAsset     Action = "asset.delete"
)

// IsStaff reports whether the actor works on the admin surface.
func (a Actor) IsStaff() bool {
	return a.Role == model.RoleAdmin || a.Role == model.RoleEditor
}

// Owns reports whether the actor is the client owner of the project.
func (a Actor) Owns(p *model.Project) bool {
	return a.Email != "" && a.Email == p.ClientEmail
}

// Can is the single source of permission truth for the workflow. project may
// be nil only for actions that are not scoped to one.
func Can(actor Actor, action Action, project *model.Project) bool {
	switch action {
	case ActionSubmitProject, ActionApproveAsset, ActionRequestRevision:
		// Client actions on their own project; staff may drive them too
		// (e.g. approving on behalf of a client on the phone).
		if actor.IsStaff() {
			return true
		}
		return project != nil && actor.Owns(project)

	case ActionAssignEditor, ActionStartEditing, ActionSubmitForQA,
		ActionCompleteQA, ActionEditMeta, ActionViewInternal,
		ActionUploadAsset, ActionResubmitAsset:
		return actor.IsStaff()

	case ActionDeleteProject, ActionDeleteAsset:
		return actor.Role == model.RoleAdmin

	default:
		return false
	}
}
