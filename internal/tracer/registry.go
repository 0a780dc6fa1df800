package tracer

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/shared/id"
)

// Registry maps goroutines to their active tracing session.
//
// The registry is only consulted at the interception boundary, where a
// primitive op needs "the current session" without an explicit parameter.
// When no session is installed anywhere, lookups return after one atomic
// load.
type Registry struct {
	mu     sync.RWMutex
	states map[int64]*State
	active atomic.Int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{states: make(map[int64]*State)}
}

// Current returns the session installed for the calling goroutine, or nil.
func (r *Registry) Current() *State {
	if r.active.Load() == 0 {
		return nil
	}
	gid := id.Goroutine()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[gid]
}

// Set installs s for the calling goroutine and returns the previous session.
// A nil s clears the slot.
func (r *Registry) Set(s *State) *State {
	return r.set(id.Goroutine(), s)
}

func (r *Registry) set(gid int64, s *State) *State {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.states[gid]
	switch {
	case s == nil && prev != nil:
		delete(r.states, gid)
		r.active.Add(-1)
	case s != nil && prev == nil:
		r.states[gid] = s
		r.active.Add(1)
	case s != nil:
		r.states[gid] = s
	}
	return prev
}

// install publishes s for the calling goroutine, failing if a session is
// already active there. The returned func clears the goroutine's slot, even
// if the traced code swapped in another session meanwhile.
func (r *Registry) install(s *State) (func(), error) {
	gid := id.Goroutine()

	r.mu.Lock()
	if _, busy := r.states[gid]; busy {
		r.mu.Unlock()
		return nil, ErrNestedTrace
	}
	r.states[gid] = s
	r.active.Add(1)
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.states[gid]; ok {
			delete(r.states, gid)
			r.active.Add(-1)
		}
	}, nil
}

// Len returns the number of goroutines with an active session.
func (r *Registry) Len() int {
	return int(r.active.Load())
}

var sessions = NewRegistry()

// Current returns the calling goroutine's active session, or nil.
func Current() *State {
	return sessions.Current()
}

// SetCurrent replaces the calling goroutine's active session and returns the
// previous one. Passing nil detaches the current session.
func SetCurrent(s *State) *State {
	return sessions.Set(s)
}

// IsTracing reports whether the calling goroutine has an active session.
func IsTracing() bool {
	return Current() != nil
}

type stateKey struct{}

// WithState returns a context carrying s.
func WithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// FromContext returns the session carried by ctx, or nil.
func FromContext(ctx context.Context) *State {
	s, _ := ctx.Value(stateKey{}).(*State)
	return s
}
