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


package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultHealthAttempts bounds health checks and retried operations.
	DefaultHealthAttempts = 3

	// DefaultHealthDelay is the base delay between health attempts.
	DefaultHealthDelay = time.Second
)

// HealthMonitor verifies and repairs a store connection. It wraps a
// Connection with bounded retry loops so callers can demand a healthy
// connection before batches of writes, and run operations that survive a
// dropped connection.
type HealthMonitor struct {
	conn     Connection
	logger   *slog.Logger
	attempts int
	delay    time.Duration
}

// HealthOption configures a HealthMonitor.
type HealthOption func(*HealthMonitor)

// WithHealthAttempts sets the attempt bound for both health checks and
// retried operations.
func WithHealthAttempts(attempts int) HealthOption {
	return func(m *HealthMonitor) {
		m.attempts = attempts
	}
}

// WithHealthDelay sets the base delay between attempts.
func WithHealthDelay(delay time.Duration) HealthOption {
	return func(m *HealthMonitor) {
		m.delay = delay
	}
}

// WithHealthLogger sets the monitor's logger.
func WithHealthLogger(logger *slog.Logger) HealthOption {
	return func(m *HealthMonitor) {
		m.logger = logger
	}
}

// NewHealthMonitor creates a monitor over the given connection.
func NewHealthMonitor(conn Connection, opts ...HealthOption) *HealthMonitor {
	m := &HealthMonitor{
		conn:     conn,
		logger:   slog.Default(),
		attempts: DefaultHealthAttempts,
		delay:    DefaultHealthDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureHealthy verifies the connection with a real probe, reconnecting and
// retrying with a linearly growing delay. It returns nil as soon as a probe
// succeeds and ErrNotReady after the attempt bound.
func (m *HealthMonitor) EnsureHealthy(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= m.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if m.conn.IsReady(ctx) {
			err := m.conn.Probe(ctx)
			if err == nil {
				return nil
			}
			lastErr = err
		}

		m.logger.Warn("store connection unhealthy, reconnecting",
			"attempt", attempt, "attempts", m.attempts, "err", lastErr)

		if err := m.conn.Reconnect(ctx); err != nil {
			lastErr = err
		}

		if attempt < m.attempts {
			if err := sleepContext(ctx, m.delay*time.Duration(attempt)); err != nil {
				return err
			}
		}
	}

	if lastErr != nil {
		return fmt.Errorf("%w after %d attempts: %v", ErrNotReady, m.attempts, lastErr)
	}
	return fmt.Errorf("%w after %d attempts", ErrNotReady, m.attempts)
}

// WithRetry runs op, retrying with reconnection when it fails with a
// connection-level error. Other errors propagate immediately. After the
// attempt bound the last connection error is returned wrapped in
// ErrConnection.
func (m *HealthMonitor) WithRetry(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= m.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if !IsConnectionError(err) {
			return err
		}
		lastErr = err

		m.logger.Warn("store operation hit a connection error",
			"attempt", attempt, "attempts", m.attempts, "err", err)

		if attempt == m.attempts {
			break
		}
		if err := m.conn.Reconnect(ctx); err != nil {
			m.logger.Warn("reconnect failed", "attempt", attempt, "err", err)
		}
		if err := sleepContext(ctx, m.delay<<(attempt-1)); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: operation failed after %d attempts: %v", ErrConnection, m.attempts, lastErr)
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
