package hashstore

import (
	"context"
	"errors"
)

// ErrPoolClosed is returned by Pool.Acquire after the pool has been closed.
var ErrPoolClosed = errors.New("hashstore: pool is closed")

// Conn is a single connection to a remote hash store. Every method maps to
// one store command; each command is atomic at the store, but no atomicity
// is promised across commands.
//
// A hash exists only while it has at least one field. An absent hash and an
// empty hash are indistinguishable: both report a length of zero.
type Conn interface {
	// Len returns the number of fields in the named hash, 0 if the hash
	// does not exist.
	Len(ctx context.Context, name string) (int64, error)

	// Exists reports whether field is present in the named hash.
	Exists(ctx context.Context, name, field string) (bool, error)

	// Get returns the value stored under field. ok is false if the field
	// (or the hash) does not exist.
	Get(ctx context.Context, name, field string) (value string, ok bool, err error)

	// Set stores value under field, creating the hash if needed.
	// created reports whether the field did not exist before the write.
	Set(ctx context.Context, name, field, value string) (created bool, err error)

	// Del removes the given fields and returns the number of fields that
	// actually existed. Removing the last field destroys the hash.
	Del(ctx context.Context, name string, fields ...string) (removed int64, err error)

	// SetAll stores every entry in one command and returns the number of
	// fields that were newly created.
	SetAll(ctx context.Context, name string, entries map[string]string) (created int64, err error)

	// Drop deletes the entire hash and returns 1 if it existed, 0 otherwise.
	Drop(ctx context.Context, name string) (removed int64, err error)

	// Keys returns all field names of the named hash.
	Keys(ctx context.Context, name string) ([]string, error)

	// Values returns all field values of the named hash.
	Values(ctx context.Context, name string) ([]string, error)

	// GetAll returns every field and value of the named hash.
	GetAll(ctx context.Context, name string) (map[string]string, error)
}

// Pool hands out connections with a scoped acquire/release discipline.
// Implementations must be safe for concurrent use.
type Pool interface {
	// Acquire obtains a connection. It may block until one is available
	// or ctx is canceled.
	Acquire(ctx context.Context) (Conn, error)

	// Release returns conn to the pool. Releasing the same connection
	// more than once is a no-op.
	Release(conn Conn)
}
