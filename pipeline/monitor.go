package pipeline

import "time"

// Monitor provides hooks to observe embedding and import progress.
// Implementations must be safe for concurrent use; batch hooks fire from
// worker goroutines. Monitoring is reporting only and never affects the
// outcome of a call.
type Monitor interface {
	// BatchStarted fires before each embedding attempt for a batch.
	BatchStarted(index, total, attempt int)

	// BatchCompleted fires once per batch that ends in success.
	BatchCompleted(index, total, items int, elapsed time.Duration)

	// BatchFailed fires once per batch whose attempts are exhausted.
	BatchFailed(index, total int, err error)

	// SubBatchImported fires after each chunk sub-batch is written to the store.
	SubBatchImported(index, total int, elapsed time.Duration)

	// Summary fires once at the end of an embedding call.
	Summary(elapsed time.Duration, successRate float64)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

// NoopMonitor returns a Monitor that ignores all events.
func NoopMonitor() Monitor {
	return &noopMonitor{}
}

func (n *noopMonitor) BatchStarted(_, _, _ int)                    {}
func (n *noopMonitor) BatchCompleted(_, _, _ int, _ time.Duration) {}
func (n *noopMonitor) BatchFailed(_, _ int, _ error)               {}
func (n *noopMonitor) SubBatchImported(_, _ int, _ time.Duration)  {}
func (n *noopMonitor) Summary(_ time.Duration, _ float64)          {}
