package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for reserved run memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentRuns is the maximum number of runs executing at once.
	// If 0, defaults to 1.
	MaxConcurrentRuns int64

	// RunsPerSecond limits how fast runs are admitted.
	// If 0, unlimited.
	RunsPerSecond float64
}

// Controller manages limits shared by clustering runs.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	runSem *semaphore.Weighted
	active atomic.Int64

	// Rate
	limiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = 1
	}

	c := &Controller{
		cfg:    cfg,
		runSem: semaphore.NewWeighted(cfg.MaxConcurrentRuns),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.RunsPerSecond > 0 {
		burst := int(cfg.RunsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RunsPerSecond), burst)
	}

	return c
}

// RunFootprint estimates the bytes a run over n samples of dimension d with k
// clusters holds at once: the K×N distance matrix, two K×D centroid
// matrices and two label vectors.
func RunFootprint(n, k, d int) int64 {
	const word = 8
	return word * (int64(k)*int64(n) + 2*int64(k)*int64(d) + 2*int64(n))
}

// Admit waits for the rate limiter and a run slot, then reserves bytes of
// memory. The returned release function gives everything back and must be
// called exactly once.
func (c *Controller) Admit(ctx context.Context, bytes int64) (func(), error) {
	if c == nil {
		return func() {}, nil
	}

	if err := c.WaitRate(ctx); err != nil {
		return nil, err
	}
	if err := c.AcquireRun(ctx); err != nil {
		return nil, err
	}
	if err := c.AcquireMemory(bytes); err != nil {
		c.ReleaseRun()
		return nil, err
	}

	return func() {
		c.ReleaseMemory(bytes)
		c.ReleaseRun()
	}, nil
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireRun reserves a run slot. Blocks if all slots are busy.
func (c *Controller) AcquireRun(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.runSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.active.Add(1)
	return nil
}

// ReleaseRun releases a run slot.
func (c *Controller) ReleaseRun() {
	if c == nil {
		return
	}
	c.active.Add(-1)
	c.runSem.Release(1)
}

// ActiveRuns returns the number of runs currently holding a slot.
func (c *Controller) ActiveRuns() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}

// WaitRate blocks until the rate limiter admits one more run.
func (c *Controller) WaitRate(ctx context.Context) error {
	if c == nil || c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
