package retention

import (
	"context"
	"testing"

	"github.com/tensorzero/tensorzero-go/pkg/history/storage"
)

// TestScheduler_StartStop tests the scheduler lifecycle.
func TestScheduler_StartStop(t *testing.T) {
	store := storage.NewMemoryStore()
	config := DefaultConfig()
	config.PruneSchedule = "0 3 * * *"

	pruner := NewPruner(store, config)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !pruner.scheduler.IsRunning() {
		t.Error("Expected scheduler to be running after Start()")
	}

	next := pruner.NextPruning()
	if next == nil {
		t.Error("Expected a next pruning time")
	}

	pruner.Stop()
	if pruner.scheduler.IsRunning() {
		t.Error("Expected scheduler to be stopped after Stop()")
	}
}

// TestScheduler_EmptySchedule tests that an empty schedule disables the
// scheduler without error.
func TestScheduler_EmptySchedule(t *testing.T) {
	store := storage.NewMemoryStore()
	config := DefaultConfig()
	config.PruneSchedule = ""

	pruner := NewPruner(store, config)

	if err := pruner.Start(context.Background()); err != nil {
		t.Fatalf("Start() with empty schedule failed: %v", err)
	}
	if pruner.scheduler.IsRunning() {
		t.Error("Expected scheduler to stay stopped with empty schedule")
	}
}

// TestScheduler_InvalidSchedule tests rejection of bad cron expressions.
func TestScheduler_InvalidSchedule(t *testing.T) {
	store := storage.NewMemoryStore()
	config := DefaultConfig()
	config.PruneSchedule = "not a cron expression"

	pruner := NewPruner(store, config)

	if err := pruner.Start(context.Background()); err == nil {
		t.Error("Expected error for invalid cron schedule")
	}
}
