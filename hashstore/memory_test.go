package hashstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.Set(ctx, "h", "field", "value")
	require.NoError(t, err)
	assert.True(t, created)

	value, ok, err := store.Get(ctx, "h", "field")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	// Overwrite is not a creation.
	created, err = store.Set(ctx, "h", "field", "other")
	require.NoError(t, err)
	assert.False(t, created)

	_, ok, err = store.Get(ctx, "h", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_DelDestroysEmptyHash(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Set(ctx, "h", "only", "value")
	require.NoError(t, err)

	removed, err := store.Del(ctx, "h", "only", "missing")
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	// The hash disappeared with its last field.
	n, err := store.Len(ctx, "h")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	removed, err = store.Drop(ctx, "h")
	require.NoError(t, err)
	assert.EqualValues(t, 0, removed)
}

func TestMemoryStore_SetAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Set(ctx, "h", "a", "old")
	require.NoError(t, err)

	created, err := store.SetAll(ctx, "h", map[string]string{
		"a": "1",
		"b": "2",
		"c": "3",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, created)

	all, err := store.GetAll(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": "3"}, all)

	created, err = store.SetAll(ctx, "h", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, created)
}

func TestMemoryStore_Drop(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.SetAll(ctx, "h", map[string]string{"a": "1", "b": "2"})
	require.NoError(t, err)

	removed, err := store.Drop(ctx, "h")
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	exists, err := store.Exists(ctx, "h", "a")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_KeysAndValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.SetAll(ctx, "h", map[string]string{"k1": "v1", "k2": "v2"})
	require.NoError(t, err)

	keys, err := store.Keys(ctx, "h")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"k1", "k2"}, keys)

	values, err := store.Values(ctx, "h")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1", "v2"}, values)
}

func TestMemoryStore_GetAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Set(ctx, "h", "k", "v")
	require.NoError(t, err)

	all, err := store.GetAll(ctx, "h")
	require.NoError(t, err)

	all["k"] = "mutated"

	value, _, err := store.Get(ctx, "h", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}

func TestMemoryStore_HashesAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Set(ctx, "h1", "k", "v1")
	require.NoError(t, err)
	_, err = store.Set(ctx, "h2", "k", "v2")
	require.NoError(t, err)

	_, err = store.Drop(ctx, "h1")
	require.NoError(t, err)

	value, ok, err := store.Get(ctx, "h2", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", value)
}
