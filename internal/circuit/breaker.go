package circuit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"cicd-orchestrator/internal/models"
)

// ErrCircuitOpen is returned without invoking the operation while the breaker
// is open and the reset timeout has not elapsed.
var ErrCircuitOpen = errors.New("circuit breaker is open")

const (
	DefaultFailureThreshold = 5
	DefaultResetTimeout     = 60 * time.Second
)

// State of a breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

/**
 * Per-dependency fault isolation state machine
 * @property {string} name - Name of the monitored external target
 * @description
 * - closed -> (consecutive failures >= threshold) -> open
 * - open -> (timeout elapsed, evaluated lazily on next call) -> half-open
 * - half-open -> success -> closed (counter resets) / failure -> open (timestamp refreshed)
 * - One instance per monitored target, owned exclusively by its creator
 */
type Breaker struct {
	name      string
	threshold int
	timeout   time.Duration

	mu              sync.Mutex
	state           State
	failureCount    int
	lastFailureTime time.Time
}

/**
 * Create a breaker for one external target
 * @param {string} name - Target name, used in error and status output
 * @param {int} threshold - Consecutive failures before opening (default 5 when <= 0)
 * @param {time.Duration} timeout - Open cooldown before a half-open probe (default 60s when <= 0)
 */
func NewBreaker(name string, threshold int, timeout time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if timeout <= 0 {
		timeout = DefaultResetTimeout
	}
	return &Breaker{
		name:      name,
		threshold: threshold,
		timeout:   timeout,
		state:     StateClosed,
	}
}

/**
 * Execute an operation under breaker protection
 * @param {func} op - Operation against the monitored target
 * @returns {error} ErrCircuitOpen while tripped, otherwise the operation's error
 * @description
 * - While open with the cooldown not elapsed, fails fast without invoking op
 * - A success resets the breaker to closed with failure count zero
 * - A failure increments the count and refreshes the failure timestamp;
 *   reaching the threshold, or any failure during half-open, opens the breaker
 */
func (b *Breaker) Execute(op func() error) error {
	b.mu.Lock()
	if b.state == StateOpen {
		if time.Since(b.lastFailureTime) < b.timeout {
			b.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrCircuitOpen, b.name)
		}
		b.state = StateHalfOpen
	}
	probing := b.state == StateHalfOpen
	b.mu.Unlock()

	err := op()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.state = StateClosed
		b.failureCount = 0
		return nil
	}
	b.failureCount++
	b.lastFailureTime = time.Now()
	if probing || b.failureCount >= b.threshold {
		b.state = StateOpen
	}
	return err
}

// Name returns the monitored target's name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state without forcing a lazy open->half-open
// transition; that only happens on Execute.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

/**
 * Snapshot breaker internals for status reporting
 * @returns {models.BreakerStatus} State name, failure count and last failure time
 */
func (b *Breaker) Snapshot() models.BreakerStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return models.BreakerStatus{
		State:           b.state.String(),
		FailureCount:    b.failureCount,
		LastFailureTime: b.lastFailureTime,
	}
}
