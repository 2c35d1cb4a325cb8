// Package workflow enforces the project lifecycle and the asset review
// sub-workflow: which transitions are legal, who may perform them, and which
// status changes are derived from asset approvals.
package workflow

import (
	"context"
	"sync"
	"time"

	"gorm.io/datatypes"
	"k8s.io/klog/v2"

	"github.com/modelmagic/modelmagic/dao/model"
	"github.com/modelmagic/modelmagic/pkg/metrics"
)

// forward is the only legal advance from each state. There is no skipping;
// the single regression edge (Ready for Review -> Being Edited) is derived
// from revision requests, never requested directly.
var forward = map[model.ProjectStatus]model.ProjectStatus{
	model.ProjectDraft:          model.ProjectSubmitted,
	model.ProjectSubmitted:      model.ProjectTeamAssigned,
	model.ProjectTeamAssigned:   model.ProjectBeingEdited,
	model.ProjectBeingEdited:    model.ProjectQAReview,
	model.ProjectQAReview:       model.ProjectReadyForReview,
	model.ProjectReadyForReview: model.ProjectCompleted,
}

// CanAdvance reports whether to is the immediate forward successor of from.
func CanAdvance(from, to model.ProjectStatus) bool {
	return forward[from] == to
}

// Service serializes transitions per project and persists them through the
// injected stores. All methods return typed workflow errors.
type Service struct {
	projects ProjectStore
	assets   AssetStore
	messages MessageStore
	events   Publisher

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewService(projects ProjectStore, assets AssetStore, messages MessageStore, events Publisher) *Service {
	return &Service{
		projects: projects,
		assets:   assets,
		messages: messages,
		events:   events,
		locks:    make(map[uint]*sync.Mutex),
	}
}

// lockProject serializes in-process transitions on one project so derived
// side effects (completion, regression) fire at most once per state entry.
// Cross-process races are caught by the store's version check.
func (s *Service) lockProject(id uint) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// advance moves p to the requested state. Re-requesting the current state is
// an idempotent no-op; anything but the immediate successor is rejected.
func advance(p *model.Project, to model.ProjectStatus, precondition string) (bool, error) {
	if p.Status == to {
		return false, nil
	}
	if !CanAdvance(p.Status, to) {
		return false, invalidTransition(p.Status, to, "%s", precondition)
	}
	p.Status = to
	return true, nil
}

func (s *Service) saveAndAnnounce(ctx context.Context, p *model.Project, from model.ProjectStatus) error {
	if err := s.projects.SaveProject(ctx, p); err != nil {
		return err
	}
	if from == p.Status {
		return nil
	}
	change := StatusChange{ProjectID: p.ID, From: from, To: p.Status}
	metrics.TransitionsTotal.WithLabelValues(string(p.Status)).Inc()
	s.events.Publish(EventProjectStatusChanged, change)
	if p.Status == model.ProjectCompleted {
		s.events.Publish(EventProjectCompleted, change)
	}
	klog.V(2).Infof("project %d: %s -> %s", p.ID, from, p.Status)
	return nil
}

// SubmitProject performs Draft -> Submitted. The brief must be complete and
// the total cost is computed and frozen here; it never changes afterwards.
func (s *Service) SubmitProject(ctx context.Context, actor Actor, projectID uint) (*model.Project, error) {
	defer s.lockProject(projectID)()

	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !Can(actor, ActionSubmitProject, p) {
		return nil, unauthorized("role may not submit this project")
	}
	if p.Status == model.ProjectSubmitted {
		return p, nil
	}
	if p.Name == "" || p.CreativeBrief == "" || p.PackageType == "" {
		return nil, validation("submission requires name, creative brief and package type")
	}
	total, err := QuoteTotal(p.PackageType, p.ItemQuantity)
	if err != nil {
		return nil, err
	}
	changed, err := advance(p, model.ProjectSubmitted, "only drafts can be submitted")
	if err != nil {
		return nil, err
	}
	if changed {
		p.TotalCost = total
		p.TotalDays = productionDays[p.PackageType]
		p.ProgressDay = 0
		if err := s.saveAndAnnounce(ctx, p, model.ProjectDraft); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AssignEditor sets the assigned editor. Assigning an editor to an
// unassigned submitted project advances it to Team Assigned in the same
// write; a later reassignment is a plain metadata edit.
func (s *Service) AssignEditor(ctx context.Context, actor Actor, projectID, editorID uint) (*model.Project, error) {
	defer s.lockProject(projectID)()

	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !Can(actor, ActionAssignEditor, p) {
		return nil, unauthorized("only staff may assign editors")
	}
	if p.Status == model.ProjectCompleted {
		return nil, invalidTransition(p.Status, p.Status, "completed projects cannot be reassigned")
	}
	from := p.Status
	p.AssignedEditorID = &editorID
	if p.Status == model.ProjectSubmitted {
		if _, err := advance(p, model.ProjectTeamAssigned, "assignment advances submitted projects"); err != nil {
			return nil, err
		}
	}
	if err := s.saveAndAnnounce(ctx, p, from); err != nil {
		return nil, err
	}
	return p, nil
}

// StartEditing performs Team Assigned -> Being Edited.
func (s *Service) StartEditing(ctx context.Context, actor Actor, projectID uint) (*model.Project, error) {
	return s.staffAdvance(ctx, actor, projectID, ActionStartEditing,
		model.ProjectBeingEdited, "editing starts after a team is assigned", nil)
}

// SubmitForQA performs Being Edited -> QA Review and opens the checklist
// with all gates unchecked.
func (s *Service) SubmitForQA(ctx context.Context, actor Actor, projectID uint) (*model.Project, error) {
	return s.staffAdvance(ctx, actor, projectID, ActionSubmitForQA,
		model.ProjectQAReview, "QA follows the editing phase", func(p *model.Project) error {
			if p.QAChecklist.Data() == nil {
				p.QAChecklist = datatypes.NewJSONType(&model.QAChecklist{})
			}
			return nil
		})
}

// UpdateQAChecklist records gate toggles while the project sits in QA Review.
func (s *Service) UpdateQAChecklist(ctx context.Context, actor Actor, projectID uint, gates model.QAChecklist) (*model.Project, error) {
	defer s.lockProject(projectID)()

	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !Can(actor, ActionCompleteQA, p) {
		return nil, unauthorized("only staff may edit the QA checklist")
	}
	if p.Status != model.ProjectQAReview {
		return nil, invalidTransition(p.Status, model.ProjectQAReview, "checklist is only editable during QA review")
	}
	p.QAChecklist = datatypes.NewJSONType(&gates)
	if err := s.projects.SaveProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CompleteQA performs QA Review -> Ready for Review. All three gates must be
// true; a failing gate rejects the transition rather than forcing it.
func (s *Service) CompleteQA(ctx context.Context, actor Actor, projectID uint) (*model.Project, error) {
	return s.staffAdvance(ctx, actor, projectID, ActionCompleteQA,
		model.ProjectReadyForReview, "QA must be in progress", func(p *model.Project) error {
			gates := p.QAChecklist.Data()
			if gates == nil || !gates.Passed() {
				return invalidTransition(p.Status, model.ProjectReadyForReview,
					"all QA gates (image quality, brief compliance, specs check) must pass")
			}
			return nil
		})
}

// staffAdvance is the shared path for explicit staff transitions. check runs
// after legality is established and before the save.
func (s *Service) staffAdvance(ctx context.Context, actor Actor, projectID uint, action Action,
	to model.ProjectStatus, precondition string, check func(*model.Project) error) (*model.Project, error) {
	defer s.lockProject(projectID)()

	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !Can(actor, action, p) {
		return nil, unauthorized("only staff may perform %s", action)
	}
	if p.Status == to {
		return p, nil
	}
	from := p.Status
	if !CanAdvance(from, to) {
		return nil, invalidTransition(from, to, "%s", precondition)
	}
	if check != nil {
		if err := check(p); err != nil {
			return nil, err
		}
	}
	p.Status = to
	if err := s.saveAndAnnounce(ctx, p, from); err != nil {
		return nil, err
	}
	return p, nil
}

// MetaUpdate carries the admin-editable fields that never change status.
type MetaUpdate struct {
	InternalNotes    *string
	Priority         *model.Priority
	AssignedEditorID *uint
	DeliveryDate     *time.Time
}

// UpdateMeta edits internal notes, priority or the assigned editor. Allowed
// in any non-Completed state and never advances the graph.
func (s *Service) UpdateMeta(ctx context.Context, actor Actor, projectID uint, update MetaUpdate) (*model.Project, error) {
	defer s.lockProject(projectID)()

	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !Can(actor, ActionEditMeta, p) {
		return nil, unauthorized("only staff may edit project metadata")
	}
	if p.Status == model.ProjectCompleted {
		return nil, invalidTransition(p.Status, p.Status, "completed projects are read-only")
	}
	if update.InternalNotes != nil {
		p.InternalNotes = *update.InternalNotes
	}
	if update.Priority != nil {
		p.Priority = *update.Priority
	}
	if update.AssignedEditorID != nil {
		p.AssignedEditorID = update.AssignedEditorID
	}
	if update.DeliveryDate != nil {
		p.DeliveryDate = update.DeliveryDate
	}
	if err := s.projects.SaveProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject is the admin-only destructive override. It cascades to the
// project's assets.
func (s *Service) DeleteProject(ctx context.Context, actor Actor, projectID uint) error {
	defer s.lockProject(projectID)()

	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if !Can(actor, ActionDeleteProject, p) {
		return unauthorized("only admins may delete projects")
	}
	if err := s.assets.DeleteProjectAssets(ctx, projectID); err != nil {
		return err
	}
	return s.projects.DeleteProject(ctx, projectID)
}
