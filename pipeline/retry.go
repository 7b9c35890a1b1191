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
	"time"

	"github.com/poiesic/docport/provider"
)

const (
	// DefaultMaxAttempts is one initial try plus three retries.
	DefaultMaxAttempts = 4

	// DefaultRetryBase is the base delay for exponential backoff.
	DefaultRetryBase = time.Second
)

// RetryPolicy decides whether a failed embedding attempt should be retried
// and after what delay. The decision depends only on the error category and
// the attempt number; the delay contains no randomness.
type RetryPolicy struct {
	MaxAttempts int           // Total attempts including the first; default DefaultMaxAttempts
	BaseDelay   time.Duration // default DefaultRetryBase
}

// Decision is the outcome of a retry check.
type Decision struct {
	Retry bool
	Delay time.Duration
}

// DefaultRetryPolicy returns the standard policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultRetryBase}
}

// Decide returns the retry decision for err after the given 1-based attempt.
// Only timeout, connection, rate-limit and quota categories are retryable;
// everything else fails fast and propagates the original error.
//
// The delay grows as base * 2^(attempt-1) plus a deterministic jitter of
// 0.1 * attempt * base.
func (p RetryPolicy) Decide(err error, attempt int) Decision {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultRetryBase
	}

	if attempt >= maxAttempts {
		return Decision{}
	}
	if !provider.Classify(err).Retryable() {
		return Decision{}
	}

	delay := base << (attempt - 1)
	jitter := time.Duration(0.1 * float64(attempt) * float64(base))
	return Decision{Retry: true, Delay: delay + jitter}
}
