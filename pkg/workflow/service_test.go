package workflow

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/modelmagic/modelmagic/dao/model"
)

// fakeStore keeps everything in maps and mirrors the version check the GORM
// store performs. Guarded by a mutex so concurrency tests stay race-clean.
type fakeStore struct {
	mu          sync.Mutex
	projects    map[uint]*model.Project
	assets      map[uint]*model.Asset
	messages    []model.Message
	nextAssetID uint

	// beforeSave runs ahead of the version check, to stage write races.
	beforeSave func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[uint]*model.Project),
		assets:   make(map[uint]*model.Asset),
	}
}

func (f *fakeStore) GetProject(_ context.Context, id uint) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, NotFound("project %d not found", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) SaveProject(_ context.Context, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.beforeSave != nil {
		f.beforeSave()
	}
	cur, ok := f.projects[p.ID]
	if !ok {
		return NotFound("project %d not found", p.ID)
	}
	if cur.Version != p.Version {
		return Conflict("project %d was modified concurrently", p.ID)
	}
	p.Version++
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteProject(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return NotFound("project %d not found", id)
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeStore) GetAsset(_ context.Context, id uint) (*model.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[id]
	if !ok {
		return nil, NotFound("asset %d not found", id)
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) ListAssets(_ context.Context, projectID uint) ([]model.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Asset
	for i := uint(1); i <= f.nextAssetID; i++ {
		if a, ok := f.assets[i]; ok && a.ProjectID == projectID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateAsset(_ context.Context, a *model.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextAssetID++
	a.ID = f.nextAssetID
	cp := *a
	f.assets[a.ID] = &cp
	return nil
}

func (f *fakeStore) SaveAsset(_ context.Context, a *model.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assets[a.ID]; !ok {
		return NotFound("asset %d not found", a.ID)
	}
	cp := *a
	f.assets[a.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteAsset(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assets[id]; !ok {
		return NotFound("asset %d not found", id)
	}
	delete(f.assets, id)
	return nil
}

func (f *fakeStore) DeleteProjectAssets(_ context.Context, projectID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, a := range f.assets {
		if a.ProjectID == projectID {
			delete(f.assets, id)
		}
	}
	return nil
}

func (f *fakeStore) CreateMessage(_ context.Context, m *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *m)
	return nil
}

type recordedEvent struct {
	name    string
	payload any
}

type fakePublisher struct {
	events []recordedEvent
}

func (f *fakePublisher) Publish(event string, payload any) {
	f.events = append(f.events, recordedEvent{name: event, payload: payload})
}

func (f *fakePublisher) names() []string {
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.name)
	}
	return out
}

var (
	client = Actor{UserID: 1, Email: "client@shop.com", Role: model.RoleClient}
	editor = Actor{UserID: 2, Email: "alex@modelmagic.studio", Role: model.RoleEditor}
	admin  = Actor{UserID: 3, Email: "jamie@modelmagic.studio", Role: model.RoleAdmin}
)

func newTestService() (*Service, *fakeStore, *fakePublisher) {
	st := newFakeStore()
	pub := &fakePublisher{}
	return NewService(st, st, st, pub), st, pub
}

func seedProject(st *fakeStore, status model.ProjectStatus) *model.Project {
	p := &model.Project{
		Name:          "Summer Lookbook",
		CreativeBrief: "Clean white background, soft shadows",
		PackageType:   model.PackageDFY,
		ItemQuantity:  3,
		Status:        status,
		ClientEmail:   client.Email,
	}
	p.ID = uint(len(st.projects) + 1)
	st.projects[p.ID] = p
	return p
}

func seedAsset(st *fakeStore, projectID uint, status model.AssetStatus) *model.Asset {
	st.nextAssetID++
	a := &model.Asset{ProjectID: projectID, Name: "shot.jpg", Status: status}
	a.ID = st.nextAssetID
	st.assets[a.ID] = a
	return a
}

func TestSubmitProjectFreezesQuote(t *testing.T) {
	svc, st, pub := newTestService()
	p := seedProject(st, model.ProjectDraft)

	got, err := svc.SubmitProject(context.Background(), client, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectSubmitted, got.Status)
	assert.InDelta(t, 87.00, got.TotalCost, 0.001)
	assert.Equal(t, 4, got.TotalDays)
	assert.Equal(t, 0, got.ProgressDay)
	assert.Equal(t, []string{EventProjectStatusChanged}, pub.names())
}

func TestSubmitProjectIdempotent(t *testing.T) {
	svc, st, pub := newTestService()
	p := seedProject(st, model.ProjectDraft)

	_, err := svc.SubmitProject(context.Background(), client, p.ID)
	require.NoError(t, err)
	again, err := svc.SubmitProject(context.Background(), client, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectSubmitted, again.Status)
	assert.Len(t, pub.events, 1, "re-submitting must not publish again")
}

func TestSubmitProjectValidation(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectDraft)
	p.CreativeBrief = ""

	_, err := svc.SubmitProject(context.Background(), client, p.ID)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestSubmitProjectRejectsStranger(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectDraft)

	stranger := Actor{UserID: 9, Email: "other@shop.com", Role: model.RoleClient}
	_, err := svc.SubmitProject(context.Background(), stranger, p.ID)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestSubmitProjectRejectsSkippedState(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectBeingEdited)

	_, err := svc.SubmitProject(context.Background(), client, p.ID)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestAssignEditorAdvancesSubmitted(t *testing.T) {
	svc, st, pub := newTestService()
	p := seedProject(st, model.ProjectSubmitted)

	got, err := svc.AssignEditor(context.Background(), admin, p.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectTeamAssigned, got.Status)
	require.NotNil(t, got.AssignedEditorID)
	assert.Equal(t, uint(7), *got.AssignedEditorID)
	assert.Equal(t, []string{EventProjectStatusChanged}, pub.names())
}

func TestAssignEditorReassignmentKeepsStatus(t *testing.T) {
	svc, st, pub := newTestService()
	p := seedProject(st, model.ProjectBeingEdited)

	got, err := svc.AssignEditor(context.Background(), admin, p.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectBeingEdited, got.Status)
	assert.Empty(t, pub.events, "reassignment is not a transition")
}

func TestAssignEditorRejectsCompleted(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectCompleted)

	_, err := svc.AssignEditor(context.Background(), admin, p.ID, 7)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestAssignEditorRejectsClient(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectSubmitted)

	_, err := svc.AssignEditor(context.Background(), client, p.ID, 7)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestCompleteQARequiresAllGates(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectQAReview)
	p.QAChecklist = datatypes.NewJSONType(&model.QAChecklist{
		ImageQuality:    true,
		BriefCompliance: true,
		SpecsCheck:      false,
	})

	_, err := svc.CompleteQA(context.Background(), editor, p.ID)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestFullLifecycle(t *testing.T) {
	svc, st, pub := newTestService()
	ctx := context.Background()
	p := seedProject(st, model.ProjectDraft)

	_, err := svc.SubmitProject(ctx, client, p.ID)
	require.NoError(t, err)
	_, err = svc.AssignEditor(ctx, admin, p.ID, 7)
	require.NoError(t, err)
	_, err = svc.StartEditing(ctx, editor, p.ID)
	require.NoError(t, err)
	_, err = svc.SubmitForQA(ctx, editor, p.ID)
	require.NoError(t, err)

	_, err = svc.UpdateQAChecklist(ctx, editor, p.ID, model.QAChecklist{
		ImageQuality: true, BriefCompliance: true, SpecsCheck: true,
	})
	require.NoError(t, err)
	got, err := svc.CompleteQA(ctx, editor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectReadyForReview, got.Status)

	a1 := seedAsset(st, p.ID, model.AssetPending)
	a2 := seedAsset(st, p.ID, model.AssetPending)
	_, err = svc.ApproveAsset(ctx, client, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectReadyForReview, st.projects[p.ID].Status)

	_, err = svc.ApproveAsset(ctx, client, a2.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectCompleted, st.projects[p.ID].Status)
	assert.Equal(t, st.projects[p.ID].TotalDays, st.projects[p.ID].ProgressDay)
	assert.Contains(t, pub.names(), EventProjectCompleted)
}

func TestUpdateQAChecklistOutsideQAReview(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectBeingEdited)

	_, err := svc.UpdateQAChecklist(context.Background(), editor, p.ID, model.QAChecklist{})
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestUpdateMetaRejectsClient(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectBeingEdited)

	notes := "rush this one"
	_, err := svc.UpdateMeta(context.Background(), client, p.ID, MetaUpdate{InternalNotes: &notes})
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestUpdateMetaRejectsCompleted(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectCompleted)

	urgent := model.PriorityUrgent
	_, err := svc.UpdateMeta(context.Background(), admin, p.ID, MetaUpdate{Priority: &urgent})
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestUpdateMetaKeepsStatus(t *testing.T) {
	svc, st, pub := newTestService()
	p := seedProject(st, model.ProjectQAReview)

	urgent := model.PriorityUrgent
	notes := "client flagged deadline"
	got, err := svc.UpdateMeta(context.Background(), admin, p.ID, MetaUpdate{
		Priority:      &urgent,
		InternalNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectQAReview, got.Status)
	assert.Equal(t, urgent, got.Priority)
	assert.Equal(t, notes, got.InternalNotes)
	assert.Empty(t, pub.events)
}

func TestDeleteProjectAdminOnly(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectDraft)

	err := svc.DeleteProject(context.Background(), editor, p.ID)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	seedAsset(st, p.ID, model.AssetPending)
	require.NoError(t, svc.DeleteProject(context.Background(), admin, p.ID))
	assert.Empty(t, st.projects)
	assert.Empty(t, st.assets, "delete must cascade to assets")
}

func TestSaveConflictSurfacesAsConflict(t *testing.T) {
	svc, st, _ := newTestService()
	p := seedProject(st, model.ProjectDraft)
	// Another process lands a write between our read and our save.
	st.beforeSave = func() {
		st.projects[p.ID].Version++
		st.beforeSave = nil
	}

	_, err := svc.SubmitProject(context.Background(), client, p.ID)
	// The fake returns the same conflict the GORM store produces when the
	// version check loses.
	assert.Equal(t, KindConflict, KindOf(err))
}
