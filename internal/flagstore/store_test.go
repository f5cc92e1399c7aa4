package flagstore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiredKey(t *testing.T) {
	date := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "reminder:fired:2025-10-20:Dashain", FiredKey(date, "Dashain"))

	// Same date, different event: distinct keys.
	assert.NotEqual(t, FiredKey(date, "Dashain"), FiredKey(date, "Tihar"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok := m.Get(ctx, "a")
	assert.False(t, ok)

	m.Set(ctx, "a", "1")
	v, ok := m.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	m.Set(ctx, "reminder:fired:x", "ts")
	listed := m.List(ctx, FiredPrefix())
	assert.Len(t, listed, 1)

	m.Remove(ctx, "a")
	_, ok = m.Get(ctx, "a")
	assert.False(t, ok)

	// Removing an absent key is a no-op.
	m.Remove(ctx, "never-set")
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "flags.json")

	f := OpenFile(path, slog.Default())
	f.Set(ctx, "reminder:fired:2025-10-20:Dashain", "2025-10-18T20:00:00Z")
	f.Set(ctx, LastAskedKey, "2025-10-01T00:00:00Z")

	// A fresh open sees the persisted flags.
	reopened := OpenFile(path, slog.Default())
	v, ok := reopened.Get(ctx, "reminder:fired:2025-10-20:Dashain")
	require.True(t, ok)
	assert.Equal(t, "2025-10-18T20:00:00Z", v)

	assert.Len(t, reopened.List(ctx, FiredPrefix()), 1)

	reopened.Remove(ctx, LastAskedKey)
	again := OpenFile(path, slog.Default())
	_, ok = again.Get(ctx, LastAskedKey)
	assert.False(t, ok)
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	f := OpenFile(filepath.Join(t.TempDir(), "nope", "flags.json"), slog.Default())
	_, ok := f.Get(context.Background(), "a")
	assert.False(t, ok)
}

func TestFileStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	ctx := context.Background()
	f := OpenFile(path, slog.Default())
	_, ok := f.Get(ctx, "a")
	assert.False(t, ok)

	// Still usable after the corrupt read.
	f.Set(ctx, "a", "1")
	v, ok := f.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestFileStoreUnwritablePathDegrades(t *testing.T) {
	// Writes fail (path is a directory), reads keep serving memory state.
	dir := t.TempDir()
	f := OpenFile(dir, slog.Default())

	ctx := context.Background()
	f.Set(ctx, "a", "1")
	v, ok := f.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}
