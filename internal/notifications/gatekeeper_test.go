package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajilopatro/patro-data/internal/flagstore"
)

type fakePermission struct {
	mu       sync.Mutex
	current  PermissionState
	answer   PermissionState
	err      error
	requests int
	block    chan struct{} // when set, Request waits until closed
}

func (f *fakePermission) Current(context.Context) (PermissionState, error) {
	return f.current, nil
}

func (f *fakePermission) Request(context.Context) (PermissionState, error) {
	f.mu.Lock()
	f.requests++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return PermissionDefault, f.err
	}
	return f.answer, nil
}

func (f *fakePermission) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func newTestGate(api PermissionAPI, store flagstore.Store, now time.Time) *Gatekeeper {
	g := NewGatekeeper(context.Background(), api, store, slog.Default())
	g.now = func() time.Time { return now }
	return g
}

func TestGatekeeperTerminalStates(t *testing.T) {
	ctx := context.Background()
	store := flagstore.NewMemory()

	for _, state := range []PermissionState{PermissionGranted, PermissionDenied} {
		api := &fakePermission{current: state}
		g := newTestGate(api, store, time.Now())

		assert.Equal(t, state, g.State())
		assert.False(t, g.Askable(ctx))
		assert.Equal(t, state, g.RequestPermission(ctx))
		assert.Equal(t, 0, api.requestCount(), "terminal state never prompts")
	}
}

func TestGatekeeperNeverAskedIsAskable(t *testing.T) {
	ctx := context.Background()
	api := &fakePermission{current: PermissionDefault, answer: PermissionGranted}
	store := flagstore.NewMemory()
	g := newTestGate(api, store, time.Now())

	assert.True(t, g.Askable(ctx))
	assert.Equal(t, PermissionGranted, g.RequestPermission(ctx))
	assert.Equal(t, 1, api.requestCount())

	// The ask timestamp was recorded.
	_, ok := store.Get(ctx, flagstore.LastAskedKey)
	assert.True(t, ok)
}

func TestGatekeeperCooldown(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)

	t.Run("asked 8 days ago reopens", func(t *testing.T) {
		api := &fakePermission{current: PermissionDefault, answer: PermissionDenied}
		store := flagstore.NewMemory()
		store.Set(ctx, flagstore.LastAskedKey, now.AddDate(0, 0, -8).Format(time.RFC3339))
		g := newTestGate(api, store, now)

		require.True(t, g.Askable(ctx))
		// The stale timestamp was cleared by the check.
		_, ok := store.Get(ctx, flagstore.LastAskedKey)
		assert.False(t, ok)

		assert.Equal(t, PermissionDenied, g.RequestPermission(ctx))
		assert.Equal(t, 1, api.requestCount())
	})

	t.Run("asked 1 day ago is a no-op", func(t *testing.T) {
		api := &fakePermission{current: PermissionDefault, answer: PermissionGranted}
		store := flagstore.NewMemory()
		store.Set(ctx, flagstore.LastAskedKey, now.AddDate(0, 0, -1).Format(time.RFC3339))
		g := newTestGate(api, store, now)

		assert.False(t, g.Askable(ctx))
		assert.Equal(t, PermissionDefault, g.RequestPermission(ctx))
		assert.Equal(t, 0, api.requestCount())
	})
}

func TestGatekeeperDenyStillRecordsAsk(t *testing.T) {
	ctx := context.Background()
	api := &fakePermission{current: PermissionDefault, answer: PermissionDenied}
	store := flagstore.NewMemory()
	g := newTestGate(api, store, time.Now())

	assert.Equal(t, PermissionDenied, g.RequestPermission(ctx))
	_, ok := store.Get(ctx, flagstore.LastAskedKey)
	assert.True(t, ok, "deny counts as asked")
	assert.False(t, g.Askable(ctx), "denied is terminal")
}

func TestGatekeeperTransientFailureNoPenalty(t *testing.T) {
	ctx := context.Background()
	api := &fakePermission{current: PermissionDefault, err: errors.New("platform down")}
	store := flagstore.NewMemory()
	g := newTestGate(api, store, time.Now())

	assert.Equal(t, PermissionDefault, g.RequestPermission(ctx))
	assert.Equal(t, PermissionDefault, g.State())

	// No timestamp recorded: the very next ask is still allowed.
	_, ok := store.Get(ctx, flagstore.LastAskedKey)
	assert.False(t, ok)
	assert.True(t, g.Askable(ctx))
}

func TestGatekeeperSingleInflightRequest(t *testing.T) {
	ctx := context.Background()
	block := make(chan struct{})
	api := &fakePermission{current: PermissionDefault, answer: PermissionGranted, block: block}
	g := newTestGate(api, flagstore.NewMemory(), time.Now())

	results := make(chan PermissionState, 2)
	for i := 0; i < 2; i++ {
		go func() { results <- g.RequestPermission(ctx) }()
	}

	// Let both goroutines reach the gatekeeper, then release the prompt.
	require.Eventually(t, func() bool { return api.requestCount() == 1 },
		time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond) // second caller registers as waiter
	close(block)

	for i := 0; i < 2; i++ {
		assert.Equal(t, PermissionGranted, <-results)
	}
	assert.Equal(t, 1, api.requestCount(), "no double prompt")
}

func TestGatekeeperUnparseableTimestampIsPermissive(t *testing.T) {
	ctx := context.Background()
	api := &fakePermission{current: PermissionDefault, answer: PermissionGranted}
	store := flagstore.NewMemory()
	store.Set(ctx, flagstore.LastAskedKey, "garbage")
	g := newTestGate(api, store, time.Now())

	assert.True(t, g.Askable(ctx))
}
