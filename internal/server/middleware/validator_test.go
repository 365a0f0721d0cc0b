package middleware

import (
	"testing"

	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidatorFeed(t *testing.T) {
	type loadRequest struct {
		Feed models.Feed `query:"feed" validate:"omitempty,feed"`
	}
	type snapshotRequest struct {
		Feed string `json:"feed" validate:"required,feed"`
	}

	v := NewValidator()
	assert.NoError(t, v.Validate(loadRequest{}))
	assert.NoError(t, v.Validate(loadRequest{Feed: models.FeedSaved}))
	assert.NoError(t, v.Validate(snapshotRequest{Feed: "popular"}))

	err := v.Validate(loadRequest{Feed: "trending"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "'feed'")
	}
	assert.Error(t, v.Validate(snapshotRequest{}))
}
