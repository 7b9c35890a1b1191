package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	ready      bool
	probeErrs  []error
	probeCalls int
	reconnects int
	// onReconnect runs after each reconnect, letting tests flip state.
	onReconnect func(c *fakeConn)
}

func (c *fakeConn) IsReady(ctx context.Context) bool {
	return c.ready
}

func (c *fakeConn) Probe(ctx context.Context) error {
	c.probeCalls++
	if len(c.probeErrs) == 0 {
		return nil
	}
	err := c.probeErrs[0]
	c.probeErrs = c.probeErrs[1:]
	return err
}

func (c *fakeConn) Reconnect(ctx context.Context) error {
	c.reconnects++
	if c.onReconnect != nil {
		c.onReconnect(c)
	}
	return nil
}

func fastMonitor(conn Connection) *HealthMonitor {
	return NewHealthMonitor(conn, WithHealthDelay(time.Millisecond))
}

func TestEnsureHealthyImmediate(t *testing.T) {
	conn := &fakeConn{ready: true}

	err := fastMonitor(conn).EnsureHealthy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, conn.probeCalls)
	assert.Equal(t, 0, conn.reconnects)
}

func TestEnsureHealthyRecoversAfterReconnect(t *testing.T) {
	conn := &fakeConn{ready: false}
	conn.onReconnect = func(c *fakeConn) {
		c.ready = true
	}

	err := fastMonitor(conn).EnsureHealthy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, conn.reconnects)
}

func TestEnsureHealthyExhaustsAttempts(t *testing.T) {
	probeErr := errors.New("probe refused")
	conn := &fakeConn{ready: true, probeErrs: []error{probeErr, probeErr, probeErr}}

	err := fastMonitor(conn).EnsureHealthy(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, DefaultHealthAttempts, conn.probeCalls)
	assert.Equal(t, DefaultHealthAttempts, conn.reconnects)
}

func TestEnsureHealthyContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conn := &fakeConn{ready: true}
	err := fastMonitor(conn).EnsureHealthy(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithRetrySucceedsFirstTry(t *testing.T) {
	conn := &fakeConn{ready: true}
	calls := 0

	err := fastMonitor(conn).WithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, conn.reconnects)
}

func TestWithRetryReconnectsOnConnectionError(t *testing.T) {
	conn := &fakeConn{ready: true}
	calls := 0

	err := fastMonitor(conn).WithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset by peer")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, conn.reconnects)
}

func TestWithRetryPropagatesOtherErrors(t *testing.T) {
	conn := &fakeConn{ready: true}
	wantErr := errors.New("title is required")
	calls := 0

	err := fastMonitor(conn).WithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, conn.reconnects)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	conn := &fakeConn{ready: true}
	calls := 0

	err := fastMonitor(conn).WithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		return ErrConnection
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Equal(t, DefaultHealthAttempts, calls)
	assert.Equal(t, DefaultHealthAttempts-1, conn.reconnects)
}
