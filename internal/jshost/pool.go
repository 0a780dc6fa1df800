package jshost

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/logging"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tracer"
)

// Pool manages a pool of reusable runtimes
type Pool struct {
	config   Config
	logger   *logging.Logger
	runtimes chan *Runtime
	breaker  *resilience.Breaker
	size     int
	mu       sync.RWMutex
	closed   bool
}

// NewPool creates a runtime pool
func NewPool(config Config, size int, logger *logging.Logger) (*Pool, error) {
	if size <= 0 {
		size = 4
	}
	if logger == nil {
		logger = logging.Nop()
	}

	log := logger.Named("pool")
	pool := &Pool{
		config:   config,
		logger:   logger,
		runtimes: make(chan *Runtime, size),
		size:     size,
		breaker: resilience.New("jshost", resilience.Settings{
			Trips:    uint32(max(config.BreakerTrips, 0)),
			Cooldown: config.BreakerCooldown,
			IsFault:  TimedOut,
			OnStateChange: func(name string, from, to resilience.State) {
				log.Warn("Runtime pool breaker changed state",
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
	}

	// Pre-create runtimes
	for i := 0; i < size; i++ {
		rt, err := New(config, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		pool.runtimes <- rt
	}

	return pool, nil
}

// Acquire gets a runtime from pool with timeout
func (p *Pool) Acquire(ctx context.Context) (*Runtime, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	select {
	case rt := <-p.runtimes:
		return rt, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		return nil, ErrTimeout
	}
}

// Release returns runtime to pool
func (p *Pool) Release(rt *Runtime) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return rt.Close()
	}

	// Reset runtime state
	if err := rt.Reset(); err != nil {
		rt.Close()
		// Create new runtime
		if fresh, err := New(p.config, p.logger); err == nil {
			p.runtimes <- fresh
		}
		return err
	}

	select {
	case p.runtimes <- rt:
		return nil
	default:
		// Pool full, close runtime
		return rt.Close()
	}
}

// Trace runs a traced call using pool. After repeated timeouts the pool
// rejects work with resilience.ErrCircuitOpen until the cooldown passes.
func (p *Pool) Trace(ctx context.Context, req Request, opts ...tracer.Option) (*Result, error) {
	var result *Result
	err := p.breaker.Do(func() error {
		rt, err := p.Acquire(ctx)
		if err != nil {
			return err
		}
		defer p.Release(rt)

		result, err = rt.Trace(ctx, req, opts...)
		return err
	})
	return result, err
}

// Execute runs script untraced using pool
func (p *Pool) Execute(ctx context.Context, name, script string) (*Result, error) {
	var result *Result
	err := p.breaker.Do(func() error {
		rt, err := p.Acquire(ctx)
		if err != nil {
			return err
		}
		defer p.Release(rt)

		result, err = rt.Execute(ctx, name, script)
		return err
	})
	return result, err
}

// Close closes pool and all runtimes
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	close(p.runtimes)

	// Close all runtimes
	for rt := range p.runtimes {
		rt.Close()
	}

	return nil
}

// PoolStats is a snapshot of pool usage
type PoolStats struct {
	Size      int    `json:"size"`
	Available int    `json:"available"`
	InUse     int    `json:"in_use"`
	Closed    bool   `json:"closed"`
	Breaker   string `json:"breaker"`
}

// Stats returns pool statistics
func (p *Pool) Stats() PoolStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return PoolStats{
		Size:      p.size,
		Available: len(p.runtimes),
		InUse:     p.size - len(p.runtimes),
		Closed:    p.closed,
		Breaker:   p.breaker.State().String(),
	}
}
