package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"barcaja/backend/internal/domain"
)

func TestUpsertShiftRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("BARCAJA_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set BARCAJA_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	venueID := fmt.Sprintf("venue-it-%d", stamp)
	workerID := fmt.Sprintf("worker-it-%d", stamp)
	shiftID := fmt.Sprintf("shift-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM shifts WHERE venue_id = $1`, venueID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM workers WHERE venue_id = $1`, venueID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, venueID)
	})

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO venues (id, name) VALUES ($1, 'Venue IT')
	`, venueID); err != nil {
		t.Fatalf("insert venue: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if _, err := s.UpsertWorker(ctx, venueID, domain.Worker{
		ID: workerID, Name: "Worker IT", Active: true, CreatedAt: now,
	}); err != nil {
		t.Fatalf("upsert worker: %v", err)
	}

	open := domain.Shift{
		ID:               shiftID,
		WorkerID:         workerID,
		WorkerName:       "Worker IT",
		StartTime:        now,
		Active:           true,
		InitialInventory: map[string]int{"prod-1": 100},
	}
	if _, err := s.UpsertShift(ctx, venueID, open); err != nil {
		t.Fatalf("upsert open shift: %v", err)
	}

	active, err := s.GetActiveShiftByWorker(ctx, venueID, workerID)
	if err != nil {
		t.Fatalf("get active shift: %v", err)
	}
	if active.InitialInventory["prod-1"] != 100 {
		t.Fatalf("expected snapshot 100, got %d", active.InitialInventory["prod-1"])
	}

	end := now.Add(8 * time.Hour)
	closed := *active
	closed.Active = false
	closed.EndTime = &end
	closed.Sold = map[string]int{"prod-1": 30}
	closed.Giveaways = map[string]int{"prod-1": 5}
	closed.FinalInventory = map[string]int{"prod-1": 65}
	closed.ExpectedCash = 120_000
	closed.ActualCash = 120_000
	closed.CashBreakdown = &domain.CashBreakdown{
		Bills: map[int64]int{100_000: 1, 20_000: 1},
		Total: 120_000,
	}
	if _, err := s.UpsertShift(ctx, venueID, closed); err != nil {
		t.Fatalf("upsert closed shift: %v", err)
	}

	got, err := s.GetShift(ctx, venueID, shiftID)
	if err != nil {
		t.Fatalf("get shift: %v", err)
	}
	if got.Active {
		t.Fatalf("expected shift closed")
	}
	if got.FinalInventory["prod-1"] != 65 {
		t.Fatalf("expected final inventory 65, got %d", got.FinalInventory["prod-1"])
	}
	if got.CashBreakdown == nil || got.CashBreakdown.Bills[100_000] != 1 {
		t.Fatalf("cash breakdown did not round-trip: %+v", got.CashBreakdown)
	}
	if _, err := s.GetActiveShiftByWorker(ctx, venueID, workerID); err == nil {
		t.Fatalf("expected no active shift after close")
	}
}
