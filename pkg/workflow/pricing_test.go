package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelmagic/modelmagic/dao/model"
)

func TestQuoteTotal(t *testing.T) {
	tests := []struct {
		pkg      model.PackageType
		quantity int
		want     float64
	}{
		{model.PackageDFY, 1, 29.00},
		{model.PackageDFY, 3, 87.00},
		{model.PackageImageOnly, 2, 19.98},
		{model.PackageVideoOnly, 5, 99.95},
	}
	for _, tt := range tests {
		got, err := QuoteTotal(tt.pkg, tt.quantity)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 0.001)
	}
}

func TestQuoteTotalRejectsBadInput(t *testing.T) {
	_, err := QuoteTotal(model.PackageDFY, 0)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = QuoteTotal("Platinum", 1)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCanAdvanceFollowsTheGraph(t *testing.T) {
	assert.True(t, CanAdvance(model.ProjectDraft, model.ProjectSubmitted))
	assert.True(t, CanAdvance(model.ProjectReadyForReview, model.ProjectCompleted))
	assert.False(t, CanAdvance(model.ProjectDraft, model.ProjectBeingEdited))
	assert.False(t, CanAdvance(model.ProjectCompleted, model.ProjectDraft))
	assert.False(t, CanAdvance(model.ProjectSubmitted, model.ProjectDraft))
}
