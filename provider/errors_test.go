package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_Retryable(t *testing.T) {
	retryable := []Category{CategoryTimeout, CategoryConnection, CategoryRateLimit, CategoryQuota}
	for _, cat := range retryable {
		assert.True(t, cat.Retryable(), "%s should be retryable", cat)
	}

	notRetryable := []Category{CategoryUnauthorized, CategoryForbidden, CategoryServer, CategoryOther}
	for _, cat := range notRetryable {
		assert.False(t, cat.Retryable(), "%s should not be retryable", cat)
	}
}

func TestCategory_Critical(t *testing.T) {
	critical := []Category{CategoryRateLimit, CategoryQuota, CategoryUnauthorized, CategoryForbidden}
	for _, cat := range critical {
		assert.True(t, cat.Critical(), "%s should be critical", cat)
	}

	notCritical := []Category{CategoryTimeout, CategoryConnection, CategoryServer, CategoryOther}
	for _, cat := range notCritical {
		assert.False(t, cat.Critical(), "%s should not be critical", cat)
	}
}

func TestClassify(t *testing.T) {
	t.Run("provider error wins", func(t *testing.T) {
		err := NewError("OpenAI", CategoryRateLimit, errors.New("429"))
		assert.Equal(t, CategoryRateLimit, Classify(err))
	})

	t.Run("wrapped provider error", func(t *testing.T) {
		inner := NewError("Ollama", CategoryTimeout, errors.New("slow"))
		err := fmt.Errorf("batch 3 failed: %w", inner)
		assert.Equal(t, CategoryTimeout, Classify(err))
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		assert.Equal(t, CategoryTimeout, Classify(context.DeadlineExceeded))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, CategoryOther, Classify(errors.New("boom")))
	})

	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, CategoryOther, Classify(nil))
	})
}

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		message string
		want    Category
	}{
		{"rate limit exceeded, retry after 60", CategoryRateLimit},
		{"HTTP 429 too many requests", CategoryRateLimit},
		{"monthly quota exhausted", CategoryQuota},
		{"unauthorized: invalid api key", CategoryUnauthorized},
		{"status 401", CategoryUnauthorized},
		{"forbidden: key lacks permission", CategoryForbidden},
		{"request timeout after 60s", CategoryTimeout},
		{"connection refused", CategoryConnection},
		{"host unreachable", CategoryConnection},
		{"internal server error (500)", CategoryServer},
		{"something odd happened", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyMessage(errors.New(tt.message)))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewError("Upstage", CategoryQuota, cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "Upstage")
	assert.Contains(t, err.Error(), "quota")
}
