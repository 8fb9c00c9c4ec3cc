package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hupe1980/redimap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T) *Pool {
	t.Helper()

	server := miniredis.RunT(t)
	pool := NewPool(server.Addr())
	t.Cleanup(func() { _ = pool.Close() })

	return pool
}

func TestConn_Commands(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer pool.Release(conn)

	// Absent hash reports zero and misses.
	n, err := conn.Len(ctx, "h")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, ok, err := conn.Get(ctx, "h", "field")
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := conn.Exists(ctx, "h", "field")
	require.NoError(t, err)
	assert.False(t, exists)

	// Single-field write.
	created, err := conn.Set(ctx, "h", "field", "value")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = conn.Set(ctx, "h", "field", "other")
	require.NoError(t, err)
	assert.False(t, created)

	value, ok, err := conn.Get(ctx, "h", "field")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "other", value)

	// Bulk write.
	newFields, err := conn.SetAll(ctx, "h", map[string]string{
		"field": "v0",
		"a":     "1",
		"b":     "2",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, newFields)

	n, err = conn.Len(ctx, "h")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	keys, err := conn.Keys(ctx, "h")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"field", "a", "b"}, keys)

	values, err := conn.Values(ctx, "h")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v0", "1", "2"}, values)

	all, err := conn.GetAll(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"field": "v0", "a": "1", "b": "2"}, all)

	// Field deletion.
	removed, err := conn.Del(ctx, "h", "a", "missing")
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	removed, err = conn.Del(ctx, "h")
	require.NoError(t, err)
	assert.EqualValues(t, 0, removed)

	// Whole-key deletion.
	removed, err = conn.Drop(ctx, "h")
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	removed, err = conn.Drop(ctx, "h")
	require.NoError(t, err)
	assert.EqualValues(t, 0, removed)
}

func TestConn_EmptySetAll(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer pool.Release(conn)

	// HSET rejects zero pairs; an empty bulk write must not hit the wire.
	created, err := conn.SetAll(ctx, "h", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, created)
}

func TestPool_ReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)

	pool.Release(conn)
	pool.Release(conn)

	// The pool stays usable after a double release.
	conn, err = pool.Acquire(ctx)
	require.NoError(t, err)

	n, err := conn.Len(ctx, "h")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	pool.Release(conn)
}

func TestPool_WithMap(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	m := redimap.New(pool, "testMap")

	prev, existed, err := m.Put(ctx, "key1", "value1")
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Empty(t, prev)

	prev, existed, err = m.Put(ctx, "key1", "value2")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, "value1", prev)

	entries, err := m.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"key1": "value2"}, entries)

	require.NoError(t, m.Clear(ctx))

	empty, err := m.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)
}
