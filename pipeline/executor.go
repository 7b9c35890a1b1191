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
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docport/provider"
)

// EmbedFunc performs one embedding call for a batch of texts.
type EmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Executor runs batch embedding tasks on a bounded worker pool. Every batch
// runs to completion independently; a failing batch never cancels its
// siblings. Results are addressed by batch index, not completion order.
type Executor struct {
	policy  RetryPolicy
	monitor Monitor
	logger  *slog.Logger
}

// NewExecutor creates an executor with the given retry policy.
func NewExecutor(policy RetryPolicy, monitor Monitor, logger *slog.Logger) *Executor {
	if monitor == nil {
		monitor = NoopMonitor()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{policy: policy, monitor: monitor, logger: logger}
}

// Run embeds all batches with at most min(profile.MaxConcurrent,
// len(batches)) calls in flight. The returned slice has one result per
// input batch, in input order.
func (e *Executor) Run(ctx context.Context, batches []Batch, profile provider.Profile, embed EmbedFunc) ([]BatchResult, error) {
	if len(batches) == 0 {
		return nil, nil
	}

	profile = profile.Normalize()
	pool, err := ants.NewPool(min(profile.MaxConcurrent, len(batches)))
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]BatchResult, len(batches))
	var wg sync.WaitGroup

	for _, batch := range batches {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[batch.Index] = e.runBatch(ctx, batch, embed)
		})
		if submitErr != nil {
			wg.Done()
			results[batch.Index] = BatchResult{Index: batch.Index, Size: len(batch.Texts), Err: submitErr}
		}
	}

	wg.Wait()
	return results, nil
}

// runBatch loops embedding attempts for one batch under the retry policy.
func (e *Executor) runBatch(ctx context.Context, batch Batch, embed EmbedFunc) BatchResult {
	started := time.Now()

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		e.monitor.BatchStarted(batch.Index, batch.Total, attempt)

		vectors, err := embed(ctx, batch.Texts)
		if err == nil {
			e.monitor.BatchCompleted(batch.Index, batch.Total, len(batch.Texts), time.Since(started))
			return BatchResult{Index: batch.Index, Size: len(batch.Texts), Vectors: vectors}
		}
		lastErr = err

		decision := e.policy.Decide(err, attempt)
		if !decision.Retry {
			break
		}

		e.logger.Warn("batch failed, will retry",
			"batch", batch.Index+1, "batches", batch.Total,
			"attempt", attempt, "delay", decision.Delay, "err", err)

		if err := sleepContext(ctx, decision.Delay); err != nil {
			lastErr = err
			break
		}
	}

	e.monitor.BatchFailed(batch.Index, batch.Total, lastErr)
	return BatchResult{Index: batch.Index, Size: len(batch.Texts), Err: lastErr}
}

// sleepContext sleeps for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
