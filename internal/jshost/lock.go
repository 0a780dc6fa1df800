package jshost

import (
	"sync"
	"sync/atomic"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/shared/id"
)

// hostLock is a mutex that the owning goroutine may acquire again. Tracer
// hooks run in the middle of script execution on the goroutine that already
// holds the runtime, and must not deadlock there while still excluding
// other goroutines.
type hostLock struct {
	mu    sync.Mutex
	owner atomic.Int64
	depth int
}

func (l *hostLock) Lock() {
	gid := id.Goroutine()
	if l.owner.Load() == gid {
		l.depth++
		return
	}
	l.mu.Lock()
	l.owner.Store(gid)
	l.depth = 1
}

func (l *hostLock) Unlock() {
	l.depth--
	if l.depth > 0 {
		return
	}
	l.owner.Store(0)
	l.mu.Unlock()
}

// acquire locks and returns the matching unlock, for use with defer.
func (l *hostLock) acquire() func() {
	l.Lock()
	return l.Unlock
}

// heldByCaller reports whether the calling goroutine owns the lock.
func (l *hostLock) heldByCaller() bool {
	return l.owner.Load() == id.Goroutine()
}
