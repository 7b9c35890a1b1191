package pipeline

import (
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// ProgressTracker is a Monitor that keeps running counts and logs progress
// through slog. Safe for concurrent use.
type ProgressTracker struct {
	mu        sync.Mutex
	logger    *slog.Logger
	started   time.Time
	items     int
	completed int
	failed    int
}

// NewProgressTracker creates a tracker logging through the given logger.
func NewProgressTracker(logger *slog.Logger) *ProgressTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressTracker{logger: logger, started: time.Now()}
}

var _ Monitor = (*ProgressTracker)(nil)

func (t *ProgressTracker) BatchStarted(index, total, attempt int) {
	if attempt > 1 {
		t.logger.Info("retrying batch", "batch", index+1, "batches", total, "attempt", attempt)
	}
}

func (t *ProgressTracker) BatchCompleted(index, total, items int, elapsed time.Duration) {
	t.mu.Lock()
	t.items += items
	t.completed++
	completed := t.completed
	rate := float64(t.items) / time.Since(t.started).Seconds()
	t.mu.Unlock()

	t.logger.Info("batch embedded",
		"batch", index+1, "batches", total, "completed", completed,
		"items", items, "elapsed", elapsed.Round(time.Millisecond),
		"chunksPerSec", formatRate(rate))
}

func (t *ProgressTracker) BatchFailed(index, total int, err error) {
	t.mu.Lock()
	t.failed++
	t.mu.Unlock()

	t.logger.Error("batch failed", "batch", index+1, "batches", total, "err", err)
}

func (t *ProgressTracker) SubBatchImported(index, total int, elapsed time.Duration) {
	t.logger.Info("sub-batch imported",
		"subBatch", index+1, "subBatches", total,
		"elapsed", elapsed.Round(time.Millisecond))
}

func (t *ProgressTracker) Summary(elapsed time.Duration, successRate float64) {
	t.mu.Lock()
	items, completed, failed := t.items, t.completed, t.failed
	t.mu.Unlock()

	t.logger.Info("embedding finished",
		"items", items, "completed", completed, "failed", failed,
		"elapsed", elapsed.Round(time.Millisecond),
		"successRate", formatRate(successRate*100)+"%")
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
