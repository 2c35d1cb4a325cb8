package workflow

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelmagic/modelmagic/dao/model"
)

func TestApproveAssetIdempotent(t *testing.T) {
	svc, st, pub := newTestService()
	p := seedProject(st, model.ProjectReadyForReview)
	a := seedAsset(st, p.ID, model.AssetApproved)
	seedAsset(st, p.ID, model.AssetPending)

	got, err := svc.ApproveAsset(context.Background(), client, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssetApproved, got.Status)
	assert.Empty(t, pub.events, "re-approving must not publish")
}

func TestApproveLastAssetCompletesProject(t *testing.T) {
	svc, st, pub := newTestService()
	p := seedProject(st, model.ProjectReadyForReview)
	p.TotalDays = 4
	seedAsset(st, p.ID, model.AssetApproved)
	last := seedAsset(st, p.ID, model.AssetPending)

	_, err := svc.ApproveAsset(context.Background(), client, last.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectCompleted, st.projects[p.ID].Status)
	assert.Equal(t, 4, st.projects[p.ID].ProgressDay)
	assert.Contains(t, pub.names(), EventAssetStatusChanged)
	assert.Contains(t, pub.names(), EventProjectCompleted)
}

func TestConcurrentLastApprovalCompletesOnce(t *testing.T) {
	svc, st, pub := newTestService()
	p := seedProject(st, model.ProjectReadyForReview)
	seedAsset(st, p.ID, model.AssetApproved)
	last := seedAsset(st, p.ID, model.AssetPending)

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApproveAsset(context.Background(), client, last.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	completions := 0
	for _, name := range pub.names() {
		if name == EventProjectCompleted {
			completions++
		}
	}
	assert.Equal(t, 1, completions, "racing approvals must complete the project exactly once")
	assert.Equal(t, model.ProjectCompleted, st.projects[p.ID].Status)
}

func TestApproveOutsideReviewNeverCompletes(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectBeingEdited)
	a := seedAsset(st, p.ID, model.AssetPending)

	_, err := svc.ApproveAsset(context.Background(), client, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectBeingEdited, st.projects[p.ID].Status,
		"completion only derives while the project awaits client review")
}

func TestApproveAssetRejectsStranger(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectReadyForReview)
	a := seedAsset(st, p.ID, model.AssetPending)

	stranger := Actor{UserID: 9, Email: "other@shop.com", Role: model.RoleClient}
	_, err := svc.ApproveAsset(context.Background(), stranger, a.ID)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestRequestRevisionRegressesFromReview(t *testing.T) {
	svc, st, pub := newTestService()
	p := seedProject(st, model.ProjectReadyForReview)
	a := seedAsset(st, p.ID, model.AssetPending)

	got, err := svc.RequestRevision(context.Background(), client, a.ID, Feedback{
		Tags:  []string{"Background", "Color"},
		Notes: "shadow is too harsh",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AssetRevision, got.Status)
	assert.Equal(t, model.ProjectBeingEdited, st.projects[p.ID].Status)

	require.Len(t, st.messages, 1)
	assert.Equal(t, "[Background, Color] shadow is too harsh", st.messages[0].Content)
	assert.Contains(t, pub.names(), EventProjectStatusChanged)
}

func TestRequestRevisionMidProductionKeepsStatus(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectBeingEdited)
	a := seedAsset(st, p.ID, model.AssetPending)

	_, err := svc.RequestRevision(context.Background(), client, a.ID, Feedback{Notes: "crop tighter"})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectBeingEdited, st.projects[p.ID].Status)
}

func TestRequestRevisionRejectedOnCompleted(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectCompleted)
	a := seedAsset(st, p.ID, model.AssetApproved)

	_, err := svc.RequestRevision(context.Background(), client, a.ID, Feedback{Notes: "too late"})
	assert.Equal(t, KindInvalidTransition, KindOf(err))
	assert.Equal(t, model.AssetApproved, st.assets[a.ID].Status)
}

func TestRequestRevisionIdempotent(t *testing.T) {
	svc, st, pub := newTestService()
	p := seedProject(st, model.ProjectBeingEdited)
	a := seedAsset(st, p.ID, model.AssetRevision)

	got, err := svc.RequestRevision(context.Background(), client, a.ID, Feedback{Notes: "again"})
	require.NoError(t, err)
	assert.Equal(t, model.AssetRevision, got.Status)
	assert.Empty(t, pub.events)
	assert.Empty(t, st.messages, "repeated requests record no duplicate feedback")
}

func TestResubmitAsset(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectBeingEdited)
	a := seedAsset(st, p.ID, model.AssetRevision)

	got, err := svc.ResubmitAsset(context.Background(), editor, a.ID, "s3://bucket/v2.jpg")
	require.NoError(t, err)
	assert.Equal(t, model.AssetPending, got.Status)
	assert.Equal(t, "s3://bucket/v2.jpg", got.URL)
}

func TestResubmitRejectsApprovedAsset(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectBeingEdited)
	a := seedAsset(st, p.ID, model.AssetApproved)

	_, err := svc.ResubmitAsset(context.Background(), editor, a.ID, "")
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestResubmitRejectsClient(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectBeingEdited)
	a := seedAsset(st, p.ID, model.AssetRevision)

	_, err := svc.ResubmitAsset(context.Background(), client, a.ID, "")
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestAddAssetForcesPending(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectBeingEdited)

	a := &model.Asset{ProjectID: p.ID, Name: "hero.jpg", Status: model.AssetApproved}
	require.NoError(t, svc.AddAsset(context.Background(), editor, a))
	assert.Equal(t, model.AssetPending, a.Status, "uploads never skip review")
}

func TestAddAssetRejectedOnCompleted(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectCompleted)

	a := &model.Asset{ProjectID: p.ID, Name: "late.jpg"}
	err := svc.AddAsset(context.Background(), editor, a)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestDeleteLastUnapprovedAssetCompletes(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectReadyForReview)
	seedAsset(st, p.ID, model.AssetApproved)
	pending := seedAsset(st, p.ID, model.AssetPending)

	require.NoError(t, svc.DeleteAsset(context.Background(), admin, pending.ID))
	assert.Equal(t, model.ProjectCompleted, st.projects[p.ID].Status)
}

func TestDeleteOnlyAssetNeverCompletes(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectReadyForReview)
	only := seedAsset(st, p.ID, model.AssetPending)

	require.NoError(t, svc.DeleteAsset(context.Background(), admin, only.ID))
	assert.Equal(t, model.ProjectReadyForReview, st.projects[p.ID].Status,
		"a project with no assets never auto-completes")
}

func TestDeleteAssetRejectsEditor(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectBeingEdited)
	a := seedAsset(st, p.ID, model.AssetPending)

	err := svc.DeleteAsset(context.Background(), editor, a.ID)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestClampAssetIndex(t *testing.T) {
	assert.Equal(t, 0, ClampAssetIndex(0, 0))
	assert.Equal(t, 0, ClampAssetIndex(3, 0))
	assert.Equal(t, 0, ClampAssetIndex(-1, 5))
	assert.Equal(t, 4, ClampAssetIndex(7, 5))
	assert.Equal(t, 2, ClampAssetIndex(2, 5))
}
