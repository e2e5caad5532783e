package export

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/ibportal/internal/metrics"
)

// LoadState is the lifecycle of a lazily loaded capability.
type LoadState int32

const (
	StateIdle LoadState = iota
	StateLoading
	StateReady
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Lazy loads a value on first use and keeps it for the life of the process.
// Concurrent callers share a single in-flight load. A failed load is not
// cached; the next caller tries again.
type Lazy[T any] struct {
	name  string
	load  func(context.Context) (T, error)
	group singleflight.Group

	mu    sync.RWMutex
	val   T
	ready bool

	state atomic.Int32
	loads atomic.Int64
}

// NewLazy returns a Lazy that calls load at most once per successful load.
func NewLazy[T any](name string, load func(context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{name: name, load: load}
}

// Get returns the loaded value, loading it if needed. Waiting for an
// in-flight load is abandoned when ctx is done; the load itself continues
// so later callers can still use its result.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if v, ok := l.cached(); ok {
		return v, nil
	}

	ch := l.group.DoChan(l.name, func() (any, error) {
		if v, ok := l.cached(); ok {
			return v, nil
		}

		l.state.Store(int32(StateLoading))
		l.loads.Add(1)

		v, err := l.safeLoad(context.WithoutCancel(ctx))
		metrics.CapabilityLoads.WithLabelValues(l.name, metrics.Result(err)).Inc()
		if err != nil {
			l.state.Store(int32(StateFailed))
			return nil, err
		}

		l.mu.Lock()
		l.val, l.ready = v, true
		l.mu.Unlock()
		l.state.Store(int32(StateReady))
		return v, nil
	})

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (l *Lazy[T]) cached() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.val, l.ready
}

// safeLoad turns a panicking loader into an error; singleflight would
// otherwise re-panic on a fresh goroutine and take the process down.
func (l *Lazy[T]) safeLoad(ctx context.Context) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("load %s: panic: %v", l.name, r)
		}
	}()
	return l.load(ctx)
}

// State reports where the capability is in its lifecycle.
func (l *Lazy[T]) State() LoadState {
	return LoadState(l.state.Load())
}

// Loads reports how many times the loader has run.
func (l *Lazy[T]) Loads() int64 {
	return l.loads.Load()
}
