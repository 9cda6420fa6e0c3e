package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"barcaja/backend/internal/domain"
	"barcaja/backend/internal/draft"
	"barcaja/backend/internal/metrics"
	"barcaja/backend/internal/store/memory"
)

func newReportFixture() (*Service, *memory.Store) {
	ledger := memory.NewSeeded()
	svc := New(ledger, draft.NewMemoryStore(), metrics.New(prometheus.NewRegistry()))
	return svc, ledger
}

func seedClosedShift(t *testing.T, ledger *memory.Store, id string, end time.Time, sold map[string]int, expected, actual int64) {
	t.Helper()
	start := end.Add(-8 * time.Hour)
	shift := domain.Shift{
		ID:               id,
		WorkerID:         "worker-1",
		WorkerName:       "Trabajador Demo",
		StartTime:        start,
		EndTime:          &end,
		Active:           false,
		InitialInventory: map[string]int{"prod-1": 100, "prod-2": 150},
		Sold:             sold,
		ExpectedCash:     expected,
		ActualCash:       actual,
	}
	if _, err := ledger.UpsertShift(context.Background(), testVenue, shift); err != nil {
		t.Fatalf("seed shift %s: %v", id, err)
	}
}

func TestReportsDeriveFromClosedShifts(t *testing.T) {
	svc, ledger := newReportFixture()
	ctx := context.Background()

	now := time.Now()
	seedClosedShift(t, ledger, "shift-a", now.Add(-2*time.Hour),
		map[string]int{"prod-1": 30}, 120_000, 125_000)

	// An open shift and a closed shift without sales must be ignored.
	if _, err := ledger.UpsertShift(ctx, testVenue, domain.Shift{
		ID: "shift-open", WorkerID: "worker-1", WorkerName: "Trabajador Demo",
		StartTime: now, Active: true,
		InitialInventory: map[string]int{"prod-1": 100},
	}); err != nil {
		t.Fatalf("seed open shift: %v", err)
	}
	end := now.Add(-1 * time.Hour)
	if _, err := ledger.UpsertShift(ctx, testVenue, domain.Shift{
		ID: "shift-empty", WorkerID: "worker-1", WorkerName: "Trabajador Demo",
		StartTime: now.Add(-9 * time.Hour), EndTime: &end, Active: false,
		InitialInventory: map[string]int{"prod-1": 100},
	}); err != nil {
		t.Fatalf("seed empty shift: %v", err)
	}

	summary, err := svc.Reports(ctx, testVenue, PeriodAll)
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	if len(summary.Shifts) != 1 {
		t.Fatalf("expected 1 report, got %d", len(summary.Shifts))
	}

	r := summary.Shifts[0]
	if r.Revenue != 120_000 {
		t.Fatalf("expected revenue 120000, got %d", r.Revenue)
	}
	// prod-1 purchase cost is seeded at 2500.
	if r.Cost != 75_000 {
		t.Fatalf("expected cost 75000, got %d", r.Cost)
	}
	if r.Profit != 45_000 {
		t.Fatalf("expected profit 45000, got %d", r.Profit)
	}
	if r.CashDifference != 5_000 {
		t.Fatalf("expected cash difference 5000, got %d", r.CashDifference)
	}
	if summary.UnitsSold != 30 {
		t.Fatalf("expected 30 units, got %d", summary.UnitsSold)
	}
}

func TestReportsUseCurrentPurchaseCosts(t *testing.T) {
	svc, ledger := newReportFixture()
	ctx := context.Background()

	seedClosedShift(t, ledger, "shift-a", time.Now().Add(-2*time.Hour),
		map[string]int{"prod-1": 10}, 40_000, 40_000)

	newCost := int64(3000)
	if _, err := svc.UpdateProduct(ctx, testVenue, "prod-1", domain.ProductUpdateRequest{PurchaseCost: &newCost}); err != nil {
		t.Fatalf("update cost: %v", err)
	}

	summary, err := svc.Reports(ctx, testVenue, PeriodAll)
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	if summary.Cost != 30_000 {
		t.Fatalf("expected cost priced at current 3000, got %d", summary.Cost)
	}
}

func TestReportsPeriodFiltering(t *testing.T) {
	svc, ledger := newReportFixture()
	ctx := context.Background()

	now := time.Now()
	seedClosedShift(t, ledger, "shift-today", now,
		map[string]int{"prod-1": 5}, 20_000, 20_000)
	seedClosedShift(t, ledger, "shift-3d", now.Add(-3*24*time.Hour),
		map[string]int{"prod-1": 5}, 20_000, 20_000)
	seedClosedShift(t, ledger, "shift-10d", now.Add(-10*24*time.Hour),
		map[string]int{"prod-1": 5}, 20_000, 20_000)
	seedClosedShift(t, ledger, "shift-40d", now.Add(-40*24*time.Hour),
		map[string]int{"prod-1": 5}, 20_000, 20_000)

	cases := []struct {
		period string
		want   int
	}{
		{PeriodToday, 1},
		{PeriodWeek, 2},
		{PeriodMonth, 3},
		{PeriodAll, 4},
	}
	for _, tc := range cases {
		summary, err := svc.Reports(ctx, testVenue, tc.period)
		if err != nil {
			t.Fatalf("reports %s: %v", tc.period, err)
		}
		if len(summary.Shifts) != tc.want {
			t.Fatalf("period %s: expected %d reports, got %d", tc.period, tc.want, len(summary.Shifts))
		}
	}

	if _, err := svc.Reports(ctx, testVenue, "quarter"); err == nil {
		t.Fatalf("expected unknown period to be rejected")
	}
}

func TestReportsDailyGroupingAndDistribution(t *testing.T) {
	svc, ledger := newReportFixture()
	ctx := context.Background()

	day := time.Date(2025, 6, 10, 20, 0, 0, 0, time.Local)
	seedClosedShift(t, ledger, "shift-a", day,
		map[string]int{"prod-1": 10}, 40_000, 40_000)
	seedClosedShift(t, ledger, "shift-b", day.Add(2*time.Hour),
		map[string]int{"prod-1": 5, "prod-2": 20}, 100_000, 100_000)
	seedClosedShift(t, ledger, "shift-c", day.Add(24*time.Hour),
		map[string]int{"prod-2": 1}, 4_000, 4_000)

	summary, err := svc.Reports(ctx, testVenue, PeriodAll)
	if err != nil {
		t.Fatalf("reports: %v", err)
	}

	if len(summary.Daily) != 2 {
		t.Fatalf("expected 2 daily buckets, got %d", len(summary.Daily))
	}
	key := day.Format("2006-01-02")
	var bucket *domain.DailySummary
	for i := range summary.Daily {
		if summary.Daily[i].Date == key {
			bucket = &summary.Daily[i]
		}
	}
	if bucket == nil {
		t.Fatalf("missing daily bucket for %s", key)
	}
	if bucket.Revenue != 140_000 || bucket.UnitsSold != 35 {
		t.Fatalf("unexpected daily bucket: %+v", bucket)
	}

	if len(summary.ByProduct) != 2 {
		t.Fatalf("expected 2 products in distribution, got %d", len(summary.ByProduct))
	}
	if summary.ByProduct[0].UnitsSold < summary.ByProduct[1].UnitsSold {
		t.Fatalf("distribution must be sorted by units descending")
	}
	for _, p := range summary.ByProduct {
		if p.UnitsSold == 0 {
			t.Fatalf("zero-sellers must be excluded: %+v", p)
		}
	}
}

func TestExportReportsProducesWorkbook(t *testing.T) {
	svc, ledger := newReportFixture()
	ctx := context.Background()

	seedClosedShift(t, ledger, "shift-a", time.Now().Add(-2*time.Hour),
		map[string]int{"prod-1": 30}, 120_000, 120_000)

	payload, fileName, err := svc.ExportReports(ctx, testVenue, PeriodAll)
	if err != nil {
		t.Fatalf("export reports: %v", err)
	}
	if len(payload) == 0 {
		t.Fatalf("expected non-empty workbook")
	}
	if !strings.HasSuffix(fileName, ".xlsx") || !strings.Contains(fileName, PeriodAll) {
		t.Fatalf("unexpected file name %q", fileName)
	}
}
