package export

// limiter.go bounds how many export files are rendered at once. PDF and
// spreadsheet encoding hold the whole document in memory, so a burst of
// exports on a large table is capped here rather than in the HTTP layer.
//
// When all slots are occupied, new requests wait up to maxWait before
// failing with ErrTooManyExports.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyExports is returned when all export slots stay occupied for the
// whole wait window. Clients should retry after a short delay.
var ErrTooManyExports = errors.New("too many exports in progress, please try again later")

const (
	DefaultMaxConcurrentExports = 4
	DefaultMaxExportWait        = 10 * time.Second
)

// Limiter is a counting semaphore for export rendering.
type Limiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int32
}

// NewLimiter allows at most maxConcurrent exports at once. Non-positive
// arguments fall back to the package defaults.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentExports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxExportWait
	}
	return &Limiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must Release it when done.
func (l *Limiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyExports
	}
}

// Release frees a slot taken by Acquire.
func (l *Limiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active returns the number of exports currently rendering.
func (l *Limiter) Active() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *Limiter) MaxConcurrent() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no export is rendering or ctx is done. Used on
// shutdown so in-flight downloads complete.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Active() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
