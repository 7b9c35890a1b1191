package pipeline

import (
	"fmt"
	"testing"

	"github.com/poiesic/docport/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("chunk %d", i)
	}
	return out
}

func TestPlanBatchSize(t *testing.T) {
	profile := provider.Profile{
		BaseBatchSize:        32,
		LargeBatchMultiplier: 4,
		BatchCeiling:         256,
		MaxConcurrent:        8,
	}

	tests := []struct {
		name  string
		total int
		want  int
	}{
		{"small input shrinks batches", 50, 8},
		{"medium input uses base size", 200, 32},
		{"large input scales by multiplier", 250, 128},
		{"single item", 1, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, planBatchSize(tt.total, profile))
		})
	}
}

func TestPlanBatchSizeCeiling(t *testing.T) {
	profile := provider.Profile{
		BaseBatchSize:        64,
		LargeBatchMultiplier: 4,
		BatchCeiling:         100,
		MaxConcurrent:        8,
	}
	assert.Equal(t, 100, planBatchSize(500, profile))
}

func TestPlanBatchSizeSmallBase(t *testing.T) {
	profile := provider.Profile{
		BaseBatchSize:        4,
		LargeBatchMultiplier: 2,
		BatchCeiling:         16,
		MaxConcurrent:        2,
	}
	// A base below the small-input cap wins.
	assert.Equal(t, 4, planBatchSize(30, profile))
}

func TestPlan(t *testing.T) {
	profile := provider.Profile{
		BaseBatchSize:        32,
		LargeBatchMultiplier: 4,
		BatchCeiling:         256,
		MaxConcurrent:        8,
	}

	batches := Plan(texts(250), profile)
	require.Len(t, batches, 2)

	assert.Equal(t, 0, batches[0].Index)
	assert.Equal(t, 2, batches[0].Total)
	assert.Len(t, batches[0].Texts, 128)

	assert.Equal(t, 1, batches[1].Index)
	assert.Equal(t, 2, batches[1].Total)
	assert.Len(t, batches[1].Texts, 122)

	// Contiguous and ordered: the first text of the second batch follows
	// the last text of the first.
	assert.Equal(t, "chunk 127", batches[0].Texts[127])
	assert.Equal(t, "chunk 128", batches[1].Texts[0])
}

func TestPlanEmpty(t *testing.T) {
	assert.Nil(t, Plan(nil, provider.DefaultProfile))
	assert.Nil(t, Plan([]string{}, provider.DefaultProfile))
}

func TestPlanCoversEveryText(t *testing.T) {
	for _, n := range []int{1, 7, 50, 51, 200, 201, 1000} {
		batches := Plan(texts(n), provider.OllamaProfile)

		got := 0
		for i, b := range batches {
			assert.Equal(t, i, b.Index)
			assert.Equal(t, len(batches), b.Total)
			got += len(b.Texts)
		}
		assert.Equal(t, n, got, "input size %d", n)
	}
}
