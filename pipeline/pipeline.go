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
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/docport/provider"
)

const (
	// minEmbedTimeout is the floor for a whole embedding run.
	minEmbedTimeout = 5 * time.Minute

	// perItemTimeout scales the run deadline with input volume.
	perItemTimeout = 20 * time.Second
)

// Pipeline plans, executes and aggregates batch embedding runs for a single
// provider. A Pipeline is immutable after New and safe for concurrent use.
type Pipeline struct {
	policy     RetryPolicy
	aggregator Aggregator
	monitor    Monitor
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(p *Pipeline) {
		p.policy = policy
	}
}

// WithFailureThreshold sets the maximum tolerated share of failed batches.
func WithFailureThreshold(threshold float64) Option {
	return func(p *Pipeline) {
		p.aggregator.FailureThreshold = threshold
	}
}

// WithLegacyPadding pads short vector sequences with zero vectors instead of
// failing on a count mismatch.
func WithLegacyPadding() Option {
	return func(p *Pipeline) {
		p.aggregator.PadShortResults = true
	}
}

// WithMonitor installs a progress monitor.
func WithMonitor(monitor Monitor) Option {
	return func(p *Pipeline) {
		p.monitor = monitor
	}
}

// WithLogger sets the logger for the pipeline and its aggregator.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
		p.aggregator.Logger = logger
	}
}

// New creates a Pipeline with the default retry policy and failure
// threshold.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		policy:  DefaultRetryPolicy(),
		monitor: NoopMonitor(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.aggregator.Logger = p.logger
	return p
}

// EmbedTimeout returns the overall deadline for embedding the given number
// of items.
func EmbedTimeout(items int) time.Duration {
	return max(minEmbedTimeout, time.Duration(items)*perItemTimeout)
}

// PlanAndEmbed embeds all texts through the embedder and returns one vector
// per text, in input order. Batch sizing and concurrency follow the
// embedder's profile. The error, when non-nil, already reflects the failure
// policy: critical provider errors, a failed-batch share above the
// threshold, or a vector count mismatch.
func (p *Pipeline) PlanAndEmbed(ctx context.Context, texts []string, embedder provider.Embedder) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	started := time.Now()
	profile := embedder.Profile()
	batches := Plan(texts, profile)

	p.logger.Info("embedding planned",
		"provider", embedder.Name(), "items", len(texts),
		"batches", len(batches), "batchSize", len(batches[0].Texts))

	executor := NewExecutor(p.policy, p.monitor, p.logger)
	results, err := executor.Run(ctx, batches, profile, embedder.Vectorize)
	if err != nil {
		return nil, err
	}

	vectors, rate, err := p.aggregator.Aggregate(results, len(texts))
	p.monitor.Summary(time.Since(started), rate)
	if err != nil {
		return nil, err
	}
	return vectors, nil
}
