package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// Trips is the number of consecutive faults that opens the breaker.
	Trips uint32
	// Cooldown is how long the breaker stays open before admitting trial calls.
	Cooldown time.Duration
	// Trials is the number of calls admitted while half-open.
	Trials uint32
	// IsFault selects the errors that count against the breaker. Other
	// errors are returned unchanged and count as successes. Nil counts
	// every error.
	IsFault func(err error) bool
	// OnStateChange is called whenever the state changes
	OnStateChange func(name string, from State, to State)
}

// Counts holds the statistics for the current state
type Counts struct {
	Calls             uint32
	Faults            uint32
	ConsecutiveFaults uint32
	ConsecutiveOK     uint32
}

// Breaker stops admitting work after repeated faults
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu         sync.Mutex
	state      State
	counts     Counts
	openUntil  time.Time
	generation uint64
}

// New creates a circuit breaker. Zero settings fall back to 5 trips, a 30s
// cooldown and a single trial call.
func New(name string, settings Settings) *Breaker {
	if settings.Trips == 0 {
		settings.Trips = 5
	}
	if settings.Cooldown == 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.Trials == 0 {
		settings.Trials = 1
	}
	if settings.IsFault == nil {
		settings.IsFault = func(error) bool { return true }
	}
	return &Breaker{name: name, settings: settings, now: time.Now}
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// Counts returns a copy of the counts for the current state
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Do runs fn if the breaker admits it. A panic in fn counts as a fault and
// is re-raised.
func (b *Breaker) Do(fn func() error) error {
	generation, err := b.admit()
	if err != nil {
		return err
	}

	defer func() {
		if e := recover(); e != nil {
			b.settle(generation, true)
			panic(e)
		}
	}()

	err = fn()
	b.settle(generation, err != nil && b.settings.IsFault(err))
	return err
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case StateOpen:
		return b.generation, ErrCircuitOpen
	case StateHalfOpen:
		if b.counts.Calls >= b.settings.Trials {
			return b.generation, ErrTooManyRequests
		}
	}
	b.counts.Calls++
	return b.generation, nil
}

func (b *Breaker) settle(generation uint64, fault bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.current()
	if generation != b.generation {
		return
	}

	if !fault {
		b.counts.ConsecutiveOK++
		b.counts.ConsecutiveFaults = 0
		if state == StateHalfOpen && b.counts.ConsecutiveOK >= b.settings.Trials {
			b.setState(StateClosed)
		}
		return
	}

	b.counts.Faults++
	b.counts.ConsecutiveFaults++
	b.counts.ConsecutiveOK = 0
	if state == StateHalfOpen || b.counts.ConsecutiveFaults >= b.settings.Trips {
		b.setState(StateOpen)
	}
}

// current must be called with mu held.
func (b *Breaker) current() State {
	if b.state == StateOpen && !b.now().Before(b.openUntil) {
		b.setState(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) setState(state State) {
	if b.state == state {
		return
	}
	prev := b.state
	b.state = state
	b.counts = Counts{}
	b.generation++
	if state == StateOpen {
		b.openUntil = b.now().Add(b.settings.Cooldown)
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, prev, state)
	}
}
