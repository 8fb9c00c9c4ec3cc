// Package redimap exposes a named hash stored in a remote key-value store
// as a string-to-string map for Go.
//
// A Map is a stateless facade: it caches nothing, runs no background work,
// and holds no connection between calls. Every method checks out one
// connection from a shared pool, issues hash commands, and returns the
// connection on all paths, so each call observes the remote hash as it is
// at that moment. The hash exists only while it has at least one entry; an
// absent hash and an empty one are indistinguishable.
//
// # Quick Start
//
// Redis:
//
//	pool := redis.NewPool("localhost:6379")
//	defer pool.Close()
//
//	m := redimap.New(pool, "sessions")
//
//	prev, existed, err := m.Put(ctx, "user:42", "vanya")
//	value, ok, err := m.Get(ctx, "user:42")
//	n, err := m.Len(ctx)
//
// Any other backend implementing hashstore.Conn works the same way; the
// hashstore package ships DynamoDB, MinIO and in-memory implementations.
//
// # Consistency
//
// Each store command is atomic, but Put and Remove consist of two commands
// (read previous value, then write or delete). Between the two a concurrent
// client may touch the same key, so the previous value they return can be
// stale and a lost update is possible. Operations on distinct keys never
// interfere. There are no transactions, retries or rollbacks; errors from
// the pool or the store surface unchanged to the caller.
//
// Keys, Values and Entries return snapshots materialized from one read,
// never live views.
package redimap
