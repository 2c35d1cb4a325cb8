package resputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/modelmagic/modelmagic/dao/model"
	"github.com/modelmagic/modelmagic/pkg/workflow"
)

func respondWith(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	WorkflowError(c, err)
	return w
}

func TestWorkflowErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
	}{
		{"invalid transition", &workflow.Error{Kind: workflow.KindInvalidTransition,
			From: model.ProjectDraft, To: model.ProjectCompleted, Msg: "no skipping"}, http.StatusConflict},
		{"unauthorized", &workflow.Error{Kind: workflow.KindUnauthorized, Msg: "nope"}, http.StatusForbidden},
		{"not found", workflow.NotFound("project 9 not found"), http.StatusNotFound},
		{"validation", &workflow.Error{Kind: workflow.KindValidation, Msg: "bad input"}, http.StatusBadRequest},
		{"conflict", workflow.Conflict("lost the race"), http.StatusConflict},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := respondWith(tt.err)
			assert.Equal(t, tt.wantHTTP, w.Code)
			assert.Contains(t, w.Body.String(), `"code"`)
		})
	}
}
