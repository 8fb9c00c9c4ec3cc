package redimap

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/redimap/hashstore"
)

// Map exposes one named remote hash as a string-to-string map. It holds no
// data itself: every method acquires one pooled connection, runs one or
// more hash commands, and releases the connection before returning, so
// every call reflects the remote state at the moment its commands execute.
//
// A Map is safe for concurrent use; multiple Maps (in multiple processes)
// may address the same hash name. Each individual store command is atomic,
// but methods composed of two commands (Put, Remove) are not - see their
// documentation.
type Map struct {
	pool    hashstore.Pool
	name    string
	logger  *Logger
	metrics MetricsCollector
}

// New creates a Map bound to the named hash. The pool is shared with the
// caller and not closed by the Map.
func New(pool hashstore.Pool, name string, optFns ...Option) *Map {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Map{
		pool:    pool,
		name:    name,
		logger:  opts.logger,
		metrics: opts.metrics,
	}
}

// Name returns the remote hash name this map is bound to.
func (m *Map) Name() string {
	return m.name
}

// withConn runs fn with a pooled connection, releasing it on every path.
func (m *Map) withConn(ctx context.Context, fn func(conn hashstore.Conn) error) error {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer m.pool.Release(conn)

	return fn(conn)
}

func (m *Map) observe(ctx context.Context, op string, start time.Time, err error) {
	duration := time.Since(start)
	m.metrics.RecordOperation(op, duration, err)

	if err != nil {
		m.logger.ErrorContext(ctx, "operation failed",
			"op", op,
			"hash", m.name,
			"error", err,
		)
	} else {
		m.logger.DebugContext(ctx, "operation completed",
			"op", op,
			"hash", m.name,
			"duration", duration,
		)
	}
}

// Len returns the number of entries in the hash. A hash that does not
// exist reports zero.
func (m *Map) Len(ctx context.Context) (int64, error) {
	start := time.Now()

	var n int64
	err := m.withConn(ctx, func(conn hashstore.Conn) error {
		var cerr error
		n, cerr = conn.Len(ctx, m.name)
		return cerr
	})
	m.observe(ctx, "len", start, err)
	if err != nil {
		return 0, fmt.Errorf("len of hash %q: %w", m.name, err)
	}
	return n, nil
}

// IsEmpty reports whether the hash has no entries. It issues the same
// count command as Len but is observed as its own operation.
func (m *Map) IsEmpty(ctx context.Context) (bool, error) {
	start := time.Now()

	var n int64
	err := m.withConn(ctx, func(conn hashstore.Conn) error {
		var cerr error
		n, cerr = conn.Len(ctx, m.name)
		return cerr
	})
	m.observe(ctx, "is_empty", start, err)
	if err != nil {
		return false, fmt.Errorf("is empty of hash %q: %w", m.name, err)
	}
	return n == 0, nil
}

// ContainsKey reports whether key is present.
func (m *Map) ContainsKey(ctx context.Context, key string) (bool, error) {
	start := time.Now()

	var found bool
	err := m.withConn(ctx, func(conn hashstore.Conn) error {
		var cerr error
		found, cerr = conn.Exists(ctx, m.name, key)
		return cerr
	})
	m.observe(ctx, "contains_key", start, err)
	if err != nil {
		return false, fmt.Errorf("contains key in hash %q: %w", m.name, err)
	}
	return found, nil
}

// ContainsValue reports whether any entry holds exactly value. The whole
// hash is read and scanned client-side; the comparison is case-sensitive.
// Cost is linear in hash size, so avoid this on very large hashes.
func (m *Map) ContainsValue(ctx context.Context, value string) (bool, error) {
	start := time.Now()

	var found bool
	err := m.withConn(ctx, func(conn hashstore.Conn) error {
		all, cerr := conn.GetAll(ctx, m.name)
		if cerr != nil {
			return cerr
		}

		for _, v := range all {
			if v == value {
				found = true
				break
			}
		}
		return nil
	})
	m.observe(ctx, "contains_value", start, err)
	if err != nil {
		return false, fmt.Errorf("contains value in hash %q: %w", m.name, err)
	}
	return found, nil
}

// Get returns the value stored under key. ok is false if the key is
// absent.
func (m *Map) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	start := time.Now()

	err = m.withConn(ctx, func(conn hashstore.Conn) error {
		var cerr error
		value, ok, cerr = conn.Get(ctx, m.name, key)
		return cerr
	})
	m.observe(ctx, "get", start, err)
	if err != nil {
		return "", false, fmt.Errorf("get from hash %q: %w", m.name, err)
	}
	return value, ok, nil
}

// Put stores value under key and returns the value previously stored
// there, with existed=false if the key was absent.
//
// Put issues two commands on one connection: a read of the previous value
// followed by the write. Another client can modify the same key between
// the two, so the returned previous value may be stale relative to the
// state the write replaced. Callers must not rely on Put being atomic; the
// store only guarantees atomicity per command.
//
// If the write fails after the read succeeded, the hash is left untouched
// by this call; nothing is rolled back or retried.
func (m *Map) Put(ctx context.Context, key, value string) (prev string, existed bool, err error) {
	start := time.Now()

	err = m.withConn(ctx, func(conn hashstore.Conn) error {
		var cerr error
		prev, existed, cerr = conn.Get(ctx, m.name, key)
		if cerr != nil {
			return cerr
		}

		_, cerr = conn.Set(ctx, m.name, key, value)
		return cerr
	})
	m.observe(ctx, "put", start, err)
	if err != nil {
		return "", false, fmt.Errorf("put into hash %q: %w", m.name, err)
	}
	return prev, existed, nil
}

// Remove deletes key and returns the value it held, with existed=false if
// the key was absent.
//
// Like Put, Remove is a read followed by a delete and is not atomic across
// the two commands; a concurrent writer can slip in between.
func (m *Map) Remove(ctx context.Context, key string) (prev string, existed bool, err error) {
	start := time.Now()

	err = m.withConn(ctx, func(conn hashstore.Conn) error {
		var cerr error
		prev, existed, cerr = conn.Get(ctx, m.name, key)
		if cerr != nil {
			return cerr
		}

		_, cerr = conn.Del(ctx, m.name, key)
		return cerr
	})
	m.observe(ctx, "remove", start, err)
	if err != nil {
		return "", false, fmt.Errorf("remove from hash %q: %w", m.name, err)
	}
	return prev, existed, nil
}

// PutAll stores every entry in one bulk command. A nil or empty map is a
// no-op and issues no remote command.
func (m *Map) PutAll(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	start := time.Now()

	err := m.withConn(ctx, func(conn hashstore.Conn) error {
		_, cerr := conn.SetAll(ctx, m.name, entries)
		return cerr
	})
	m.observe(ctx, "put_all", start, err)
	if err != nil {
		return fmt.Errorf("put all into hash %q: %w", m.name, err)
	}
	return nil
}

// Clear deletes the entire hash, key and all. It is not a per-entry
// removal: the remote key itself is dropped unconditionally.
func (m *Map) Clear(ctx context.Context) error {
	start := time.Now()

	err := m.withConn(ctx, func(conn hashstore.Conn) error {
		_, cerr := conn.Drop(ctx, m.name)
		return cerr
	})
	m.observe(ctx, "clear", start, err)
	if err != nil {
		return fmt.Errorf("clear hash %q: %w", m.name, err)
	}
	return nil
}

// Keys returns a snapshot of all keys, materialized from a single read.
// The slice is not a live view: later changes to the hash do not show up
// in it, and modifying it does not touch the hash.
func (m *Map) Keys(ctx context.Context) ([]string, error) {
	start := time.Now()

	var keys []string
	err := m.withConn(ctx, func(conn hashstore.Conn) error {
		var cerr error
		keys, cerr = conn.Keys(ctx, m.name)
		return cerr
	})
	m.observe(ctx, "keys", start, err)
	if err != nil {
		return nil, fmt.Errorf("keys of hash %q: %w", m.name, err)
	}
	return keys, nil
}

// Values returns a snapshot of all values, materialized from a single
// read. Like Keys, it is not a live view.
func (m *Map) Values(ctx context.Context) ([]string, error) {
	start := time.Now()

	var values []string
	err := m.withConn(ctx, func(conn hashstore.Conn) error {
		var cerr error
		values, cerr = conn.Values(ctx, m.name)
		return cerr
	})
	m.observe(ctx, "values", start, err)
	if err != nil {
		return nil, fmt.Errorf("values of hash %q: %w", m.name, err)
	}
	return values, nil
}

// Entries returns a snapshot of the whole hash as a plain map,
// materialized from a single read. It is not a live view. Cost is linear
// in hash size.
func (m *Map) Entries(ctx context.Context) (map[string]string, error) {
	start := time.Now()

	var entries map[string]string
	err := m.withConn(ctx, func(conn hashstore.Conn) error {
		var cerr error
		entries, cerr = conn.GetAll(ctx, m.name)
		return cerr
	})
	m.observe(ctx, "entries", start, err)
	if err != nil {
		return nil, fmt.Errorf("entries of hash %q: %w", m.name, err)
	}
	return entries, nil
}
