package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoBatchesSucceeded is returned when every batch in a run failed.
var ErrNoBatchesSucceeded = errors.New("no batches succeeded")

// BatchFailure records one failed batch for inclusion in an AggregateError.
type BatchFailure struct {
	Index int
	Size  int
	Err   error
}

// AggregateError is returned when the share of failed batches exceeds the
// failure threshold. It names the first few failures; the rest are counted.
type AggregateError struct {
	Failed   int
	Total    int
	Failures []BatchFailure
}

// maxReportedFailures limits how many individual failures an AggregateError
// spells out in its message.
const maxReportedFailures = 3

func (e *AggregateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d batches failed", e.Failed, e.Total)
	for i, f := range e.Failures {
		if i >= maxReportedFailures {
			fmt.Fprintf(&b, "; and %d more", len(e.Failures)-maxReportedFailures)
			break
		}
		fmt.Fprintf(&b, "; batch %d: %v", f.Index+1, f.Err)
	}
	return b.String()
}

// Unwrap exposes the underlying batch errors for errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// CountMismatchError is returned when an embedding run produced a different
// number of vectors than texts and padding is disabled.
type CountMismatchError struct {
	Expected int
	Actual   int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("embedding count mismatch: expected %d vectors, got %d", e.Expected, e.Actual)
}
