package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modelmagic/modelmagic/dao/model"
)

func TestResolveViewMode(t *testing.T) {
	tests := []struct {
		name   string
		role   model.Role
		stored model.ViewMode
		want   model.ViewMode
	}{
		{"admin defaults to client surface", model.RoleAdmin, "", model.ViewModeClient},
		{"admin keeps admin preference", model.RoleAdmin, model.ViewModeAdmin, model.ViewModeAdmin},
		{"admin keeps client preference", model.RoleAdmin, model.ViewModeClient, model.ViewModeClient},
		{"editor always admin surface", model.RoleEditor, model.ViewModeClient, model.ViewModeAdmin},
		{"client always client surface", model.RoleClient, model.ViewModeAdmin, model.ViewModeClient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveViewMode(tt.role, tt.stored))
		})
	}
}

func TestCanSetViewMode(t *testing.T) {
	assert.True(t, CanSetViewMode(model.RoleAdmin, model.ViewModeAdmin))
	assert.True(t, CanSetViewMode(model.RoleAdmin, model.ViewModeClient))
	assert.False(t, CanSetViewMode(model.RoleEditor, model.ViewModeAdmin))
	assert.True(t, CanSetViewMode(model.RoleEditor, model.ViewModeClient))
	assert.False(t, CanSetViewMode(model.RoleClient, model.ViewModeAdmin))
	assert.False(t, CanSetViewMode(model.RoleAdmin, "mobile"))
}
