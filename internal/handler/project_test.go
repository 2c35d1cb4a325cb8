package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/modelmagic/modelmagic/dao/model"
	"github.com/modelmagic/modelmagic/internal/util"
	"github.com/modelmagic/modelmagic/pkg/workflow"
)

// stubStore holds a single project so handler tests can drive the workflow
// engine without a database.
type stubStore struct {
	project *model.Project
}

func (s *stubStore) GetProject(_ context.Context, id uint) (*model.Project, error) {
	if s.project == nil || s.project.ID != id {
		return nil, workflow.NotFound("project %d not found", id)
	}
	cp := *s.project
	return &cp, nil
}

func (s *stubStore) SaveProject(_ context.Context, p *model.Project) error {
	p.Version++
	cp := *p
	s.project = &cp
	return nil
}

func (s *stubStore) DeleteProject(_ context.Context, _ uint) error {
	s.project = nil
	return nil
}

func (s *stubStore) GetAsset(_ context.Context, id uint) (*model.Asset, error) {
	return nil, workflow.NotFound("asset %d not found", id)
}

func (s *stubStore) ListAssets(_ context.Context, _ uint) ([]model.Asset, error) {
	return nil, nil
}

func (s *stubStore) CreateAsset(_ context.Context, _ *model.Asset) error { return nil }
func (s *stubStore) SaveAsset(_ context.Context, _ *model.Asset) error   { return nil }
func (s *stubStore) DeleteAsset(_ context.Context, _ uint) error         { return nil }
func (s *stubStore) DeleteProjectAssets(_ context.Context, _ uint) error { return nil }
func (s *stubStore) CreateMessage(_ context.Context, _ *model.Message) error {
	return nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(_ string, _ any) {}

func adminRequest(t *testing.T, method, path string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	util.SetJWTContext(c, util.JWTMessage{
		UserID: 3,
		Email:  "jamie@modelmagic.studio",
		Role:   model.RoleAdmin,
	})
	return w, c
}

// Drives the production transitions through the HTTP handlers end to end:
// start editing, submit for QA, release for client review.
func TestProductionTransitionEndpoints(t *testing.T) {
	st := &stubStore{}
	p := &model.Project{Status: model.ProjectTeamAssigned}
	p.ID = 1
	st.project = p

	mgr := &ProjectMgr{
		name:     "projects",
		workflow: workflow.NewService(st, st, st, nopPublisher{}),
	}

	w, c := adminRequest(t, http.MethodPost, "/v1/admin/projects/1/start")
	mgr.StartEditing(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.ProjectBeingEdited, st.project.Status)

	w, c = adminRequest(t, http.MethodPost, "/v1/admin/projects/1/qa")
	mgr.SubmitForQA(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.ProjectQAReview, st.project.Status)
	assert.NotNil(t, st.project.QAChecklist.Data(), "checklist opens on QA entry")

	st.project.QAChecklist = datatypes.NewJSONType(&model.QAChecklist{
		ImageQuality: true, BriefCompliance: true, SpecsCheck: true,
	})
	w, c = adminRequest(t, http.MethodPost, "/v1/admin/projects/1/ready")
	mgr.CompleteQA(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.ProjectReadyForReview, st.project.Status)
}

func TestTransitionEndpointRejectsIllegalJump(t *testing.T) {
	st := &stubStore{}
	p := &model.Project{Status: model.ProjectSubmitted}
	p.ID = 1
	st.project = p

	mgr := &ProjectMgr{
		name:     "projects",
		workflow: workflow.NewService(st, st, st, nopPublisher{}),
	}

	w, c := adminRequest(t, http.MethodPost, "/v1/admin/projects/1/qa")
	mgr.SubmitForQA(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, model.ProjectSubmitted, st.project.Status)
}
