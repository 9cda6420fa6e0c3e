package service

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"barcaja/backend/internal/domain"
	"barcaja/backend/internal/store"
)

const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

// Reports derives the sales report set for a venue. Reports are never
// stored; cost is priced at the product list current at call time, so
// a later purchase-cost change is reflected in historical reports.
func (s *Service) Reports(ctx context.Context, venueID string, period string) (*domain.ReportSummary, error) {
	if period == "" {
		period = PeriodAll
	}
	if period != PeriodToday && period != PeriodWeek && period != PeriodMonth && period != PeriodAll {
		return nil, fmt.Errorf("unknown period %q: %w", period, store.ErrValidation)
	}

	shifts, err := s.ledger.ListShifts(ctx, venueID)
	if err != nil {
		return nil, err
	}
	products, err := s.ledger.ListProducts(ctx, venueID)
	if err != nil {
		return nil, err
	}

	costByID := make(map[string]int64, len(products))
	nameByID := make(map[string]string, len(products))
	for _, p := range products {
		costByID[p.ID] = p.PurchaseCost
		nameByID[p.ID] = p.Name
	}

	reports := buildReports(shifts, costByID)
	reports = filterByPeriod(reports, period, time.Now())

	summary := &domain.ReportSummary{
		Period:    period,
		Shifts:    reports,
		Daily:     dailySummaries(reports),
		ByProduct: productDistribution(reports, nameByID),
	}
	for _, r := range reports {
		summary.Revenue += r.Revenue
		summary.Cost += r.Cost
		summary.Profit += r.Profit
		summary.UnitsSold += r.UnitsSold
		summary.CashDifference += r.CashDifference
	}
	return summary, nil
}

// ExportReports renders the filtered report set as an XLSX workbook,
// one row per shift plus a totals row.
func (s *Service) ExportReports(ctx context.Context, venueID string, period string) ([]byte, string, error) {
	if period == "" {
		period = PeriodAll
	}
	summary, err := s.Reports(ctx, venueID, period)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"date",
		"worker",
		"units_sold",
		"revenue",
		"cost",
		"profit",
		"cash_difference",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, "", err
	}

	row := 2
	for _, r := range summary.Shifts {
		excelRow := []interface{}{
			r.Date.Local().Format("2006-01-02 15:04"),
			r.WorkerName,
			r.UnitsSold,
			r.Revenue,
			r.Cost,
			r.Profit,
			r.CashDifference,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, "", err
		}
		row++
	}

	totals := []interface{}{
		"TOTAL",
		"",
		summary.UnitsSold,
		summary.Revenue,
		summary.Cost,
		summary.Profit,
		summary.CashDifference,
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return nil, "", err
	}
	if err := f.SetSheetRow(sheet, cell, &totals); err != nil {
		return nil, "", err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, "", err
	}

	fileName := fmt.Sprintf("reports_%s_%s_%s.xlsx",
		venueID, period, time.Now().Local().Format("2006-01-02"))
	return buf.Bytes(), fileName, nil
}

func buildReports(shifts []domain.Shift, costByID map[string]int64) []domain.SalesReport {
	reports := make([]domain.SalesReport, 0, len(shifts))
	for _, shift := range shifts {
		if shift.Active || len(shift.Sold) == 0 || shift.ExpectedCash == 0 {
			continue
		}

		date := shift.StartTime
		if shift.EndTime != nil {
			date = *shift.EndTime
		}

		var units int
		var cost int64
		for id, qty := range shift.Sold {
			units += qty
			cost += int64(qty) * costByID[id]
		}

		reports = append(reports, domain.SalesReport{
			ShiftID:        shift.ID,
			Date:           date,
			WorkerName:     shift.WorkerName,
			Sold:           shift.Sold,
			UnitsSold:      units,
			Revenue:        shift.ExpectedCash,
			Cost:           cost,
			Profit:         shift.ExpectedCash - cost,
			CashDifference: shift.ActualCash - shift.ExpectedCash,
		})
	}
	return reports
}

// filterByPeriod keeps reports at or after the period's lower bound.
// Today means the current local calendar day; week and month are
// rolling windows of 7 and 30 days from now.
func filterByPeriod(reports []domain.SalesReport, period string, now time.Time) []domain.SalesReport {
	var cutoff time.Time
	switch period {
	case PeriodToday:
		local := now.Local()
		cutoff = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	case PeriodWeek:
		cutoff = now.Add(-7 * 24 * time.Hour)
	case PeriodMonth:
		cutoff = now.Add(-30 * 24 * time.Hour)
	default:
		return reports
	}

	kept := make([]domain.SalesReport, 0, len(reports))
	for _, r := range reports {
		if !r.Date.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	return kept
}

func dailySummaries(reports []domain.SalesReport) []domain.DailySummary {
	byDay := make(map[string]*domain.DailySummary)
	for _, r := range reports {
		key := r.Date.Local().Format("2006-01-02")
		day, ok := byDay[key]
		if !ok {
			day = &domain.DailySummary{Date: key}
			byDay[key] = day
		}
		day.Revenue += r.Revenue
		day.Profit += r.Profit
		day.UnitsSold += r.UnitsSold
	}

	days := make([]domain.DailySummary, 0, len(byDay))
	for _, day := range byDay {
		days = append(days, *day)
	}
	slices.SortFunc(days, func(a, b domain.DailySummary) int {
		return strings.Compare(b.Date, a.Date)
	})
	return days
}

// productDistribution sums units per product over the filtered set.
// Products with zero sales are excluded.
func productDistribution(reports []domain.SalesReport, nameByID map[string]string) []domain.ProductSales {
	unitsByID := make(map[string]int)
	for _, r := range reports {
		for id, qty := range r.Sold {
			unitsByID[id] += qty
		}
	}

	sales := make([]domain.ProductSales, 0, len(unitsByID))
	for id, units := range unitsByID {
		if units == 0 {
			continue
		}
		name := nameByID[id]
		if name == "" {
			name = id
		}
		sales = append(sales, domain.ProductSales{ProductID: id, ProductName: name, UnitsSold: units})
	}
	slices.SortFunc(sales, func(a, b domain.ProductSales) int {
		if a.UnitsSold != b.UnitsSold {
			return b.UnitsSold - a.UnitsSold
		}
		return strings.Compare(a.ProductName, b.ProductName)
	})
	return sales
}
