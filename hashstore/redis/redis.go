package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	redigo "github.com/gomodule/redigo/redis"
	"github.com/hupe1980/redimap/hashstore"
)

// Options configures the Redis pool.
type Options struct {
	// MaxIdle is the maximum number of idle connections kept open.
	MaxIdle int

	// MaxActive is the maximum number of connections handed out at once.
	// If 0, there is no limit. When a limit is set, Acquire blocks until
	// a connection is available or ctx is canceled.
	MaxActive int

	// IdleTimeout closes idle connections after this duration.
	IdleTimeout time.Duration

	// DialOptions are passed through to redigo when dialing
	// (authentication, TLS, database selection, timeouts).
	DialOptions []redigo.DialOption
}

var (
	_ hashstore.Pool = (*Pool)(nil)
	_ hashstore.Conn = (*Conn)(nil)
)

// Pool hands out Redis connections from an underlying redigo pool.
type Pool struct {
	pool *redigo.Pool
}

// NewPool creates a connection pool against the Redis server at address
// (host:port).
func NewPool(address string, optFns ...func(o *Options)) *Pool {
	opts := Options{
		MaxIdle:     3,
		IdleTimeout: 4 * time.Minute,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Pool{
		pool: &redigo.Pool{
			MaxIdle:     opts.MaxIdle,
			MaxActive:   opts.MaxActive,
			IdleTimeout: opts.IdleTimeout,
			Wait:        opts.MaxActive > 0,
			DialContext: func(ctx context.Context) (redigo.Conn, error) {
				return redigo.DialContext(ctx, "tcp", address, opts.DialOptions...)
			},
		},
	}
}

// Acquire obtains a connection from the pool.
func (p *Pool) Acquire(ctx context.Context) (hashstore.Conn, error) {
	c, err := p.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Conn{c: c}, nil
}

// Release returns conn to the pool. Releasing twice is a no-op.
func (p *Pool) Release(conn hashstore.Conn) {
	c, ok := conn.(*Conn)
	if !ok {
		return
	}
	c.close()
}

// Close releases the underlying redigo pool and its idle connections.
func (p *Pool) Close() error {
	return p.pool.Close()
}

// Stats returns the underlying pool statistics.
func (p *Pool) Stats() redigo.PoolStats {
	return p.pool.Stats()
}

// Conn adapts one redigo connection to hashstore.Conn. Commands map 1:1
// onto Redis hash commands, so every Conn method is atomic at the server.
type Conn struct {
	c      redigo.Conn
	closed atomic.Bool
}

func (c *Conn) close() {
	if c.closed.CompareAndSwap(false, true) {
		_ = c.c.Close()
	}
}

// Len issues HLEN.
func (c *Conn) Len(ctx context.Context, name string) (int64, error) {
	return redigo.Int64(redigo.DoContext(c.c, ctx, "HLEN", name))
}

// Exists issues HEXISTS.
func (c *Conn) Exists(ctx context.Context, name, field string) (bool, error) {
	return redigo.Bool(redigo.DoContext(c.c, ctx, "HEXISTS", name, field))
}

// Get issues HGET. A nil reply maps to ok=false.
func (c *Conn) Get(ctx context.Context, name, field string) (string, bool, error) {
	value, err := redigo.String(redigo.DoContext(c.c, ctx, "HGET", name, field))
	if errors.Is(err, redigo.ErrNil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set issues HSET for a single field. The reply counts newly created
// fields, so 1 means the field did not exist before.
func (c *Conn) Set(ctx context.Context, name, field, value string) (bool, error) {
	created, err := redigo.Int64(redigo.DoContext(c.c, ctx, "HSET", name, field, value))
	if err != nil {
		return false, err
	}
	return created > 0, nil
}

// Del issues HDEL for the given fields.
func (c *Conn) Del(ctx context.Context, name string, fields ...string) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}

	args := redigo.Args{}.Add(name).AddFlat(fields)
	return redigo.Int64(redigo.DoContext(c.c, ctx, "HDEL", args...))
}

// SetAll issues one variadic HSET. Redis rejects HSET with zero pairs, so
// an empty entries map is a no-op.
func (c *Conn) SetAll(ctx context.Context, name string, entries map[string]string) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	args := redigo.Args{}.Add(name)
	for field, value := range entries {
		args = args.Add(field, value)
	}
	return redigo.Int64(redigo.DoContext(c.c, ctx, "HSET", args...))
}

// Drop issues DEL on the hash key itself.
func (c *Conn) Drop(ctx context.Context, name string) (int64, error) {
	return redigo.Int64(redigo.DoContext(c.c, ctx, "DEL", name))
}

// Keys issues HKEYS.
func (c *Conn) Keys(ctx context.Context, name string) ([]string, error) {
	return redigo.Strings(redigo.DoContext(c.c, ctx, "HKEYS", name))
}

// Values issues HVALS.
func (c *Conn) Values(ctx context.Context, name string) ([]string, error) {
	return redigo.Strings(redigo.DoContext(c.c, ctx, "HVALS", name))
}

// GetAll issues HGETALL.
func (c *Conn) GetAll(ctx context.Context, name string) (map[string]string, error) {
	return redigo.StringMap(redigo.DoContext(c.c, ctx, "HGETALL", name))
}
