package core

// batch_limiter.go caps how many image batches run at once.
//
// Each batch already fans out to its own worker pool, so a handful of
// simultaneous batches is enough to saturate the CPU. When all slots are
// occupied, new batches wait up to maxWait before failing with
// ErrBatchLimiterBusy. WaitForDrain lets shutdown block until running
// batches finish writing their files.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBatchLimiterBusy is returned when all batch slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrBatchLimiterBusy = errors.New("too many image batches in progress, please try again later")

// DefaultMaxConcurrentBatches is the default limit for parallel batches.
const DefaultMaxConcurrentBatches = 2

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// BatchLimiter is a counting semaphore with a bounded wait.
type BatchLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewBatchLimiter creates a limiter that allows at most maxConcurrent
// simultaneous batches.
func NewBatchLimiter(maxConcurrent int, maxWait time.Duration) *BatchLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentBatches
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &BatchLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a slot. The caller MUST call Release when done.
func (l *BatchLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-timer.C:
		return ErrBatchLimiterBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot without blocking and reports whether it succeeded.
func (l *BatchLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release returns a slot. Must be called exactly once per successful acquire.
func (l *BatchLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of running batches.
func (l *BatchLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Available returns the number of free slots.
func (l *BatchLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no batch is running or ctx is done.
func (l *BatchLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// BatchLimiterStatus is a snapshot of the limiter's state.
type BatchLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

func (l *BatchLimiter) Status() BatchLimiterStatus {
	return BatchLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.semaphore),
	}
}
