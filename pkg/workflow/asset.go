package workflow

import (
	"context"
	"strings"

	"k8s.io/klog/v2"

	"github.com/modelmagic/modelmagic/dao/model"
	"github.com/modelmagic/modelmagic/pkg/metrics"
)

// Feedback accompanies a revision request. The engine stores it verbatim and
// does not validate its content.
type Feedback struct {
	Tags  []string
	Notes string
}

func (f Feedback) render() string {
	parts := make([]string, 0, 2)
	if len(f.Tags) > 0 {
		parts = append(parts, "["+strings.Join(f.Tags, ", ")+"]")
	}
	if f.Notes != "" {
		parts = append(parts, f.Notes)
	}
	return strings.Join(parts, " ")
}

// ApproveAsset marks a deliverable approved. Approving an already-approved
// asset returns the current state without side effects. When the owning
// project is Ready for Review and this was the last unapproved asset, the
// project auto-completes.
func (s *Service) ApproveAsset(ctx context.Context, actor Actor, assetID uint) (*model.Asset, error) {
	a, err := s.assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	defer s.lockProject(a.ProjectID)()

	p, err := s.projects.GetProject(ctx, a.ProjectID)
	if err != nil {
		return nil, err
	}
	if !Can(actor, ActionApproveAsset, p) {
		return nil, unauthorized("only the project owner may approve designs")
	}
	if a.Status == model.AssetApproved {
		return a, nil
	}

	from := a.Status
	a.Status = model.AssetApproved
	if err := s.assets.SaveAsset(ctx, a); err != nil {
		return nil, err
	}
	metrics.AssetReviewsTotal.WithLabelValues(string(a.Status)).Inc()
	s.events.Publish(EventAssetStatusChanged, AssetChange{AssetID: a.ID, ProjectID: p.ID, From: from, To: a.Status})

	if err := s.completeIfAllApproved(ctx, p); err != nil {
		return nil, err
	}
	return a, nil
}

// RequestRevision marks a deliverable for rework and records the client's
// feedback. Rejected outright on completed projects. When the project is
// Ready for Review it regresses to Being Edited exactly once.
func (s *Service) RequestRevision(ctx context.Context, actor Actor, assetID uint, feedback Feedback) (*model.Asset, error) {
	a, err := s.assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	defer s.lockProject(a.ProjectID)()

	p, err := s.projects.GetProject(ctx, a.ProjectID)
	if err != nil {
		return nil, err
	}
	if !Can(actor, ActionRequestRevision, p) {
		return nil, unauthorized("only the project owner may request revisions")
	}
	if p.Status == model.ProjectCompleted {
		return nil, invalidTransition(p.Status, model.ProjectBeingEdited, "completed projects accept no revision requests")
	}
	if a.Status == model.AssetRevision {
		return a, nil
	}

	from := a.Status
	a.Status = model.AssetRevision
	if err := s.assets.SaveAsset(ctx, a); err != nil {
		return nil, err
	}
	metrics.AssetReviewsTotal.WithLabelValues(string(a.Status)).Inc()
	s.events.Publish(EventAssetStatusChanged, AssetChange{AssetID: a.ID, ProjectID: p.ID, From: from, To: a.Status})

	if msg := feedback.render(); msg != "" && s.messages != nil {
		m := &model.Message{Content: msg, ProjectID: &p.ID}
		if actor.UserID != 0 {
			m.SenderUserID = &actor.UserID
		}
		if err := s.messages.CreateMessage(ctx, m); err != nil {
			klog.Warningf("project %d: failed to record revision feedback: %v", p.ID, err)
		}
	}

	// Re-entering production is derived, not requested: it fires only while
	// the project awaits client review.
	if p.Status == model.ProjectReadyForReview {
		fromStatus := p.Status
		p.Status = model.ProjectBeingEdited
		if err := s.saveAndAnnounce(ctx, p, fromStatus); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// ResubmitAsset is the editor's re-delivery after a revision request: the
// asset goes back to pending for another review round.
func (s *Service) ResubmitAsset(ctx context.Context, actor Actor, assetID uint, url string) (*model.Asset, error) {
	a, err := s.assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	defer s.lockProject(a.ProjectID)()

	p, err := s.projects.GetProject(ctx, a.ProjectID)
	if err != nil {
		return nil, err
	}
	if !Can(actor, ActionResubmitAsset, p) {
		return nil, unauthorized("only staff may resubmit deliverables")
	}
	if a.Status == model.AssetPending {
		return a, nil
	}
	if a.Status != model.AssetRevision {
		return nil, &Error{Kind: KindInvalidTransition,
			Msg: "only assets awaiting revision can be resubmitted"}
	}

	from := a.Status
	a.Status = model.AssetPending
	if url != "" {
		a.URL = url
	}
	if err := s.assets.SaveAsset(ctx, a); err != nil {
		return nil, err
	}
	metrics.AssetReviewsTotal.WithLabelValues(string(a.Status)).Inc()
	s.events.Publish(EventAssetStatusChanged, AssetChange{AssetID: a.ID, ProjectID: p.ID, From: from, To: a.Status})
	return a, nil
}

// AddAsset registers a freshly uploaded deliverable. New assets always start
// pending.
func (s *Service) AddAsset(ctx context.Context, actor Actor, a *model.Asset) error {
	defer s.lockProject(a.ProjectID)()

	p, err := s.projects.GetProject(ctx, a.ProjectID)
	if err != nil {
		return err
	}
	if !Can(actor, ActionUploadAsset, p) {
		return unauthorized("only staff may upload deliverables")
	}
	if p.Status == model.ProjectCompleted {
		return invalidTransition(p.Status, p.Status, "completed projects accept no new deliverables")
	}
	a.Status = model.AssetPending
	return s.assets.CreateAsset(ctx, a)
}

// DeleteAsset removes a deliverable (admin only) and re-checks completion:
// dropping the last unapproved asset may leave everything approved.
func (s *Service) DeleteAsset(ctx context.Context, actor Actor, assetID uint) error {
	a, err := s.assets.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	defer s.lockProject(a.ProjectID)()

	p, err := s.projects.GetProject(ctx, a.ProjectID)
	if err != nil {
		return err
	}
	if !Can(actor, ActionDeleteAsset, p) {
		return unauthorized("only admins may delete deliverables")
	}
	if err := s.assets.DeleteAsset(ctx, assetID); err != nil {
		return err
	}
	return s.completeIfAllApproved(ctx, p)
}

// completeIfAllApproved fires Ready for Review -> Completed when every
// remaining asset is approved. A project with no assets never auto-completes.
func (s *Service) completeIfAllApproved(ctx context.Context, p *model.Project) error {
	if p.Status != model.ProjectReadyForReview {
		return nil
	}
	assets, err := s.assets.ListAssets(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		return nil
	}
	for i := range assets {
		if assets[i].Status != model.AssetApproved {
			return nil
		}
	}
	from := p.Status
	p.Status = model.ProjectCompleted
	p.ProgressDay = p.TotalDays
	return s.saveAndAnnounce(ctx, p, from)
}

// ClampAssetIndex keeps the review cursor inside the asset list as items are
// added and removed.
func ClampAssetIndex(index, length int) int {
	if length <= 0 {
		return 0
	}
	if index < 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	return index
}
