package hashstore

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// StaticPool serves a single thread-safe connection. Use it for backends
// whose client does its own connection management (MemoryStore, the
// DynamoDB and MinIO stores).
type StaticPool struct {
	conn Conn

	mu     sync.Mutex
	closed bool
}

// NewStaticPool creates a pool that always hands out conn.
func NewStaticPool(conn Conn) *StaticPool {
	return &StaticPool{conn: conn}
}

// Acquire returns the shared connection. It honors ctx cancellation so
// callers get uniform behavior across pool implementations.
func (p *StaticPool) Acquire(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	return p.conn, nil
}

// Release is a no-op; the shared connection is never retired.
func (p *StaticPool) Release(Conn) {}

// Close marks the pool closed. Subsequent Acquire calls fail with
// ErrPoolClosed.
func (p *StaticPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	return nil
}

// LimitPoolConfig holds the limits applied by a LimitPool.
type LimitPoolConfig struct {
	// MaxActive is the maximum number of concurrently acquired
	// connections. If 0, concurrency is unbounded.
	MaxActive int64

	// AcquiresPerSec is the maximum acquisition rate.
	// If 0, the rate is unlimited.
	AcquiresPerSec float64
}

// LimitPool wraps another Pool with a concurrency bound and an acquisition
// rate limit. Acquire blocks until both limits admit the caller or ctx is
// canceled.
type LimitPool struct {
	next Pool

	sem     *semaphore.Weighted // nil if unbounded
	limiter *rate.Limiter       // nil if unlimited

	mu     sync.Mutex
	active map[Conn]int
}

// NewLimitPool creates a limiting decorator around next.
func NewLimitPool(next Pool, cfg LimitPoolConfig) *LimitPool {
	p := &LimitPool{
		next:   next,
		active: make(map[Conn]int),
	}

	if cfg.MaxActive > 0 {
		p.sem = semaphore.NewWeighted(cfg.MaxActive)
	}

	if cfg.AcquiresPerSec > 0 {
		burst := int(cfg.AcquiresPerSec)
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.AcquiresPerSec), burst)
	}

	return p
}

// Acquire waits for the rate limiter and the concurrency semaphore, then
// acquires from the wrapped pool.
func (p *LimitPool) Acquire(ctx context.Context) (Conn, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if p.sem != nil {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
	}

	conn, err := p.next.Acquire(ctx)
	if err != nil {
		if p.sem != nil {
			p.sem.Release(1)
		}
		return nil, err
	}

	p.mu.Lock()
	p.active[conn]++
	p.mu.Unlock()

	return conn, nil
}

// Release returns conn to the wrapped pool and frees one semaphore slot.
// Connections not acquired from this pool, or already released, are
// ignored.
func (p *LimitPool) Release(conn Conn) {
	p.mu.Lock()
	n, ok := p.active[conn]
	if !ok || n == 0 {
		p.mu.Unlock()
		return
	}
	if n == 1 {
		delete(p.active, conn)
	} else {
		p.active[conn] = n - 1
	}
	p.mu.Unlock()

	p.next.Release(conn)
	if p.sem != nil {
		p.sem.Release(1)
	}
}
