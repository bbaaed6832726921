package circuit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failingOp() error { return errBoom }
func okOp() error      { return nil }

func TestBreakerOpensAtThreshold(t *testing.T) {
	b := NewBreaker("parser", 3, time.Minute)

	for i := 0; i < 3; i++ {
		err := b.Execute(failingOp)
		require.ErrorIs(t, err, errBoom)
	}
	assert.Equal(t, StateOpen, b.State())

	// Fails fast without invoking the operation.
	invoked := false
	err := b.Execute(func() error { invoked = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Contains(t, err.Error(), "parser")
	assert.False(t, invoked)
}

func TestBreakerStaysClosedBelowThreshold(t *testing.T) {
	b := NewBreaker("detector", 3, time.Minute)

	require.Error(t, b.Execute(failingOp))
	require.Error(t, b.Execute(failingOp))
	assert.Equal(t, StateClosed, b.State())

	require.NoError(t, b.Execute(okOp))
	assert.Equal(t, 0, b.Snapshot().FailureCount)
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker("generator", 2, 50*time.Millisecond)

	require.Error(t, b.Execute(failingOp))
	require.Error(t, b.Execute(failingOp))
	require.ErrorIs(t, b.Execute(okOp), ErrCircuitOpen)

	time.Sleep(60 * time.Millisecond)

	// Cooldown elapsed, the next call is a probe; success closes the breaker.
	require.NoError(t, b.Execute(okOp))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, 0, b.Snapshot().FailureCount)
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	b := NewBreaker("generator", 2, 50*time.Millisecond)

	require.Error(t, b.Execute(failingOp))
	require.Error(t, b.Execute(failingOp))
	time.Sleep(60 * time.Millisecond)

	// A single failure during the probe reopens immediately.
	require.ErrorIs(t, b.Execute(failingOp), errBoom)
	assert.Equal(t, StateOpen, b.State())
	require.ErrorIs(t, b.Execute(okOp), ErrCircuitOpen)
}

func TestBreakerSuccessResetsConsecutiveCount(t *testing.T) {
	b := NewBreaker("parser", 3, time.Minute)

	for i := 0; i < 10; i++ {
		require.Error(t, b.Execute(failingOp))
		require.Error(t, b.Execute(failingOp))
		require.NoError(t, b.Execute(okOp))
	}
	assert.Equal(t, StateClosed, b.State(), "interleaved successes must keep the breaker closed")
}

func TestBreakerDefaults(t *testing.T) {
	b := NewBreaker("x", 0, 0)
	assert.Equal(t, DefaultFailureThreshold, b.threshold)
	assert.Equal(t, DefaultResetTimeout, b.timeout)
}
