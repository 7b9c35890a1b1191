// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/docport/provider"
)

// DefaultFailureThreshold is the failed-batch share above which an
// embedding run is rejected as a whole.
const DefaultFailureThreshold = 0.5

// Aggregator merges per-batch results into one ordered vector sequence.
type Aggregator struct {
	// FailureThreshold is the maximum tolerated share of failed batches,
	// exclusive. Zero means DefaultFailureThreshold.
	FailureThreshold float64

	// PadShortResults restores the legacy behavior of padding a short
	// vector sequence with zero vectors instead of failing.
	PadShortResults bool

	Logger *slog.Logger
}

// Aggregate concatenates successful batch vectors in batch-index order and
// applies the failure policy. Critical failures (rate limit, quota,
// unauthorized, forbidden) abort immediately regardless of how many batches
// succeeded. The returned success rate covers batches, not items, and is
// reported even when an error is returned.
func (a Aggregator) Aggregate(results []BatchResult, expectedItems int) ([][]float32, float64, error) {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	threshold := a.FailureThreshold
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}

	var failures []BatchFailure
	itemCount := 0
	for _, r := range results {
		if r.Failed() {
			failures = append(failures, BatchFailure{Index: r.Index, Size: r.Size, Err: r.Err})
			continue
		}
		itemCount += len(r.Vectors)
	}

	rate := 0.0
	if len(results) > 0 {
		rate = float64(len(results)-len(failures)) / float64(len(results))
	}

	for _, f := range failures {
		if provider.Classify(f.Err).Critical() {
			return nil, rate, fmt.Errorf("batch %d hit a non-recoverable provider limit: %w", f.Index+1, f.Err)
		}
	}

	if len(failures) == len(results) {
		return nil, 0, ErrNoBatchesSucceeded
	}
	if float64(len(failures))/float64(len(results)) > threshold {
		return nil, rate, &AggregateError{Failed: len(failures), Total: len(results), Failures: failures}
	}

	vectors := make([][]float32, 0, itemCount)
	for _, r := range results {
		if !r.Failed() {
			vectors = append(vectors, r.Vectors...)
		}
	}

	return a.reconcile(vectors, expectedItems, logger, rate)
}

// reconcile aligns the vector count with the expected item count.
func (a Aggregator) reconcile(vectors [][]float32, expected int, logger *slog.Logger, rate float64) ([][]float32, float64, error) {
	switch {
	case len(vectors) == expected:
		return vectors, rate, nil

	case len(vectors) > expected:
		logger.Warn("discarding surplus vectors", "expected", expected, "actual", len(vectors))
		return vectors[:expected], rate, nil

	case a.PadShortResults && len(vectors) > 0:
		logger.Warn("padding missing vectors with zeros", "expected", expected, "actual", len(vectors))
		dim := len(vectors[0])
		for len(vectors) < expected {
			vectors = append(vectors, make([]float32, dim))
		}
		return vectors, rate, nil

	default:
		return nil, rate, &CountMismatchError{Expected: expected, Actual: len(vectors)}
	}
}
