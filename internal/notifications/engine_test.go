package notifications

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"

	"github.com/sajilopatro/patro-data/internal/flagstore"
	"github.com/sajilopatro/patro-data/internal/holiday"
)

func TestRescanSpecsParse(t *testing.T) {
	for _, spec := range rescanSpecs {
		_, err := cron.ParseStandard(spec)
		require.NoError(t, err, "spec %q", spec)
	}
}

func TestStartWorkerScansAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scanned := make(chan struct{}, 1)
	find := func(context.Context) []holiday.Upcoming {
		select {
		case scanned <- struct{}{}:
		default:
		}
		return nil
	}

	sched := NewScheduler(flagstore.NewMemory(), &fakeNotifier{}, nil, slog.Default(), time.UTC)
	done := make(chan struct{})
	go func() {
		StartWorker(ctx, find, sched, time.UTC, slog.Default())
		close(done)
	}()

	// One scan runs at startup, before any cron tick.
	select {
	case <-scanned:
	case <-time.After(time.Second):
		t.Fatal("startup scan did not run")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
