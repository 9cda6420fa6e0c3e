package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"barcaja/backend/internal/domain"
	"barcaja/backend/internal/draft"
	"barcaja/backend/internal/metrics"
	"barcaja/backend/internal/reconcile"
	"barcaja/backend/internal/store"
	"barcaja/backend/internal/xid"
)

type Service struct {
	ledger  store.Ledger
	drafts  draft.Store
	metrics *metrics.Metrics
}

func New(ledger store.Ledger, drafts draft.Store, m *metrics.Metrics) *Service {
	return &Service{
		ledger:  ledger,
		drafts:  drafts,
		metrics: m,
	}
}

func (s *Service) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	return s.ledger.ListVenues(ctx)
}

func (s *Service) ListProducts(ctx context.Context, venueID string) ([]domain.Product, error) {
	return s.ledger.ListProducts(ctx, venueID)
}

func (s *Service) AddProduct(ctx context.Context, venueID string, req domain.ProductCreateRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("product name required: %w", store.ErrValidation)
	}
	if req.PurchaseCost <= 0 {
		return nil, fmt.Errorf("purchase cost must be positive: %w", store.ErrValidation)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", store.ErrValidation)
	}
	restockDay := req.WeeklyRestockDay
	if restockDay == "" {
		restockDay = domain.RestockDayMonday
	}
	if !domain.IsValidRestockDay(restockDay) {
		return nil, fmt.Errorf("unknown restock day %q: %w", restockDay, store.ErrValidation)
	}

	product := domain.Product{
		ID:               xid.New("prod"),
		Name:             name,
		Quantity:         req.Quantity,
		PurchaseCost:     req.PurchaseCost,
		SellingPrice:     domain.SellingPricePesos,
		LastRestockDate:  time.Now().UTC(),
		WeeklyRestockDay: restockDay,
	}
	return s.ledger.UpsertProduct(ctx, venueID, product)
}

func (s *Service) UpdateProduct(ctx context.Context, venueID string, productID string, req domain.ProductUpdateRequest) (*domain.Product, error) {
	product, err := s.ledger.GetProduct(ctx, venueID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("product name required: %w", store.ErrValidation)
		}
		product.Name = name
	}
	if req.PurchaseCost != nil {
		if *req.PurchaseCost <= 0 {
			return nil, fmt.Errorf("purchase cost must be positive: %w", store.ErrValidation)
		}
		product.PurchaseCost = *req.PurchaseCost
	}
	if req.WeeklyRestockDay != nil {
		if !domain.IsValidRestockDay(*req.WeeklyRestockDay) {
			return nil, fmt.Errorf("unknown restock day %q: %w", *req.WeeklyRestockDay, store.ErrValidation)
		}
		product.WeeklyRestockDay = *req.WeeklyRestockDay
	}

	return s.ledger.UpsertProduct(ctx, venueID, *product)
}

// Restock adds stock to a product, appends a restock record and flags
// every shift that is open while the restock happens.
func (s *Service) Restock(ctx context.Context, venueID string, productID string, req domain.RestockRequest) (*domain.Product, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("restock quantity must be positive: %w", store.ErrValidation)
	}

	product, err := s.ledger.GetProduct(ctx, venueID, productID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	workerName := strings.TrimSpace(req.WorkerName)
	product.Quantity += req.Quantity
	product.LastRestockDate = now
	product.LastRestockBy = workerName

	updated, err := s.ledger.UpsertProduct(ctx, venueID, *product)
	if err != nil {
		return nil, err
	}

	record := domain.RestockRecord{
		ID:                xid.New("restock"),
		Date:              now,
		Type:              domain.RestockTypeBeer,
		WorkerName:        workerName,
		ProductID:         updated.ID,
		ProductName:       updated.Name,
		QuantityAdded:     req.Quantity,
		ResultingQuantity: updated.Quantity,
	}

	detail := fmt.Sprintf("%s +%d", updated.Name, req.Quantity)
	if workerName != "" {
		detail += " (" + workerName + ")"
	}
	for _, openShift := range s.findOpenShifts(ctx, venueID) {
		record.DuringShift = true
		if record.ShiftID == "" {
			record.ShiftID = openShift.ID
		}
		openShift.RestockedDuring = true
		if openShift.RestockDetails == "" {
			openShift.RestockDetails = detail
		} else {
			openShift.RestockDetails += "; " + detail
		}
		if _, err := s.ledger.UpsertShift(ctx, venueID, openShift); err != nil {
			log.Printf("[service] flag restock on shift %s: %v", openShift.ID, err)
		}
	}

	if err := s.ledger.AppendRestock(ctx, venueID, record); err != nil {
		log.Printf("[service] append restock record: %v", err)
	}

	return updated, nil
}

func (s *Service) ListRestocks(ctx context.Context, venueID string, limit int) ([]domain.RestockRecord, error) {
	return s.ledger.ListRestocks(ctx, venueID, limit)
}

func (s *Service) ListWorkers(ctx context.Context, venueID string) ([]domain.Worker, error) {
	return s.ledger.ListWorkers(ctx, venueID)
}

func (s *Service) AddWorker(ctx context.Context, venueID string, req domain.WorkerCreateRequest) (*domain.Worker, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("worker name required: %w", store.ErrValidation)
	}

	worker := domain.Worker{
		ID:        xid.New("worker"),
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	return s.ledger.UpsertWorker(ctx, venueID, worker)
}

func (s *Service) UpdateWorker(ctx context.Context, venueID string, workerID string, req domain.WorkerUpdateRequest) (*domain.Worker, error) {
	worker, err := s.ledger.GetWorker(ctx, venueID, workerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("worker name required: %w", store.ErrValidation)
		}
		worker.Name = name
	}
	if req.Active != nil {
		worker.Active = *req.Active
	}

	return s.ledger.UpsertWorker(ctx, venueID, *worker)
}

// DeleteWorker removes a worker only when no shift references them.
// Otherwise the delete becomes a deactivation so shift history keeps a
// valid worker behind it. The returned worker is nil after a hard
// delete and the deactivated record otherwise.
func (s *Service) DeleteWorker(ctx context.Context, venueID string, workerID string) (*domain.Worker, error) {
	worker, err := s.ledger.GetWorker(ctx, venueID, workerID)
	if err != nil {
		return nil, err
	}

	referenced, err := s.ledger.CountShiftsByWorker(ctx, venueID, workerID)
	if err != nil {
		return nil, err
	}
	if referenced > 0 {
		worker.Active = false
		return s.ledger.UpsertWorker(ctx, venueID, *worker)
	}

	if err := s.ledger.DeleteWorker(ctx, venueID, workerID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Service) ListShifts(ctx context.Context, venueID string) ([]domain.Shift, error) {
	return s.ledger.ListShifts(ctx, venueID)
}

func (s *Service) GetShift(ctx context.Context, venueID string, shiftID string) (*domain.Shift, error) {
	return s.ledger.GetShift(ctx, venueID, shiftID)
}

// OpenShift snapshots the current inventory and starts a shift for the
// worker. A worker holds at most one open shift per venue.
func (s *Service) OpenShift(ctx context.Context, venueID string, req domain.ShiftOpenRequest) (*domain.Shift, error) {
	worker, err := s.ledger.GetWorker(ctx, venueID, req.WorkerID)
	if err != nil {
		return nil, err
	}
	if !worker.Active {
		return nil, fmt.Errorf("worker %s is inactive: %w", worker.Name, store.ErrValidation)
	}

	if existing, err := s.ledger.GetActiveShiftByWorker(ctx, venueID, worker.ID); err == nil && existing != nil {
		return nil, fmt.Errorf("worker %s already has an open shift: %w", worker.Name, store.ErrValidation)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	products, err := s.ledger.ListProducts(ctx, venueID)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]int, len(products))
	for _, p := range products {
		snapshot[p.ID] = p.Quantity
	}

	shift := domain.Shift{
		ID:               xid.New("shift"),
		WorkerID:         worker.ID,
		WorkerName:       worker.Name,
		StartTime:        time.Now().UTC(),
		Active:           true,
		InitialInventory: snapshot,
	}

	created, err := s.ledger.UpsertShift(ctx, venueID, shift)
	if err != nil {
		return nil, err
	}

	s.metrics.ShiftsOpened.Inc()
	log.Printf("[service] shift %s opened by %s at %s", created.ID, created.WorkerName, venueID)
	return created, nil
}

// SaveDraft stores the in-progress closing count for an open shift.
// Saving is an idempotent overwrite and touches neither the shift nor
// the products.
func (s *Service) SaveDraft(ctx context.Context, venueID string, shiftID string, req domain.DraftSaveRequest) (*domain.CountDraft, error) {
	shift, err := s.ledger.GetShift(ctx, venueID, shiftID)
	if err != nil {
		return nil, err
	}
	if !shift.Active {
		return nil, fmt.Errorf("shift %s is already closed: %w", shiftID, store.ErrValidation)
	}
	if err := validateAmounts(req.Bonuses, req.Prizes, req.CashBreakdown); err != nil {
		return nil, err
	}

	sold, giveaways := reconcile.ClampCounts(shift.InitialInventory, req.Sold, req.Giveaways)

	breakdown := req.CashBreakdown
	breakdown.Bonuses = req.Bonuses
	breakdown.Prizes = req.Prizes
	breakdown.Total = reconcile.ComputeTotal(breakdown)

	d := domain.CountDraft{
		ShiftID:       shiftID,
		Sold:          sold,
		Giveaways:     giveaways,
		Bonuses:       req.Bonuses,
		Prizes:        req.Prizes,
		CashBreakdown: breakdown,
		SavedAt:       time.Now().UTC(),
	}
	if err := s.drafts.Save(ctx, venueID, shiftID, d); err != nil {
		return nil, err
	}

	s.metrics.DraftsSaved.Inc()
	return &d, nil
}

// ResumeDraft returns the stored draft for an open shift, or a
// zero-valued draft when none was saved.
func (s *Service) ResumeDraft(ctx context.Context, venueID string, shiftID string) (*domain.CountDraft, error) {
	shift, err := s.ledger.GetShift(ctx, venueID, shiftID)
	if err != nil {
		return nil, err
	}
	if !shift.Active {
		return nil, fmt.Errorf("shift %s is already closed: %w", shiftID, store.ErrValidation)
	}

	d, ok, err := s.drafts.Load(ctx, venueID, shiftID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &domain.CountDraft{
			ShiftID:       shiftID,
			Sold:          map[string]int{},
			Giveaways:     map[string]int{},
			CashBreakdown: domain.CashBreakdown{Bills: map[int64]int{}},
		}, nil
	}
	return d, nil
}

// CloseShift reconciles the count, commits product quantities to the
// derived closing inventory and finalizes the shift. Products are
// persisted before the shift record: if persistence fails partway the
// shift stays open and the close can be retried.
func (s *Service) CloseShift(ctx context.Context, venueID string, shiftID string, req domain.ShiftCloseRequest) (*domain.ShiftCloseResponse, error) {
	shift, err := s.ledger.GetShift(ctx, venueID, shiftID)
	if err != nil {
		return nil, err
	}
	if !shift.Active {
		return nil, fmt.Errorf("shift %s is already closed: %w", shiftID, store.ErrValidation)
	}
	if err := validateAmounts(req.Bonuses, req.Prizes, req.CashBreakdown); err != nil {
		return nil, err
	}

	sold, giveaways := reconcile.ClampCounts(shift.InitialInventory, req.Sold, req.Giveaways)
	final := reconcile.FinalInventory(shift.InitialInventory, sold, giveaways)
	expected := reconcile.ExpectedCash(sold, domain.SellingPricePesos)

	breakdown := req.CashBreakdown
	breakdown.Bonuses = req.Bonuses
	breakdown.Prizes = req.Prizes
	breakdown.Total = reconcile.ComputeTotal(breakdown)

	now := time.Now().UTC()
	closed := *shift
	closed.EndTime = &now
	closed.Active = false
	closed.Sold = sold
	closed.Giveaways = giveaways
	closed.Bonuses = req.Bonuses
	closed.Prizes = req.Prizes
	closed.FinalInventory = final
	closed.ExpectedCash = expected
	closed.ActualCash = breakdown.Total
	closed.CashBreakdown = &breakdown

	// Products first, shift record last.
	for productID, qty := range final {
		product, err := s.ledger.GetProduct(ctx, venueID, productID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Product removed since the shift opened; nothing to commit.
				continue
			}
			return nil, fmt.Errorf("close shift %s: %w", shiftID, err)
		}
		product.Quantity = qty
		if _, err := s.ledger.UpsertProduct(ctx, venueID, *product); err != nil {
			return nil, fmt.Errorf("close shift %s: %w", shiftID, err)
		}
	}

	saved, err := s.ledger.UpsertShift(ctx, venueID, closed)
	if err != nil {
		return nil, fmt.Errorf("close shift %s: %w", shiftID, err)
	}

	if err := s.drafts.Delete(ctx, venueID, shiftID); err != nil {
		log.Printf("[service] delete draft for shift %s: %v", shiftID, err)
	}

	variance := reconcile.Classify(saved.ExpectedCash, saved.ActualCash)
	baseCheck := reconcile.CompareToBase(saved.ActualCash)

	s.metrics.ShiftsClosed.Inc()
	s.metrics.CashVariance.WithLabelValues(variance.Kind).Add(float64(variance.Amount))
	log.Printf("[service] shift %s closed by %s: expected %d actual %d (%s)",
		saved.ID, saved.WorkerName, saved.ExpectedCash, saved.ActualCash, variance.Kind)

	return &domain.ShiftCloseResponse{
		Shift:     *saved,
		Variance:  variance,
		BaseCheck: baseCheck,
		Duration:  reconcile.FormatDuration(saved.StartTime, now),
	}, nil
}

// findOpenShifts returns every currently open shift at the venue.
// More than one worker can hold an open shift at once.
func (s *Service) findOpenShifts(ctx context.Context, venueID string) []domain.Shift {
	shifts, err := s.ledger.ListShifts(ctx, venueID)
	if err != nil {
		return nil
	}
	open := make([]domain.Shift, 0, 2)
	for _, shift := range shifts {
		if shift.Active {
			open = append(open, shift)
		}
	}
	return open
}

func validateAmounts(bonuses, prizes int64, breakdown domain.CashBreakdown) error {
	if bonuses < 0 || prizes < 0 {
		return fmt.Errorf("bonuses and prizes must not be negative: %w", store.ErrValidation)
	}
	if breakdown.Coins < 0 || breakdown.Nequi < 0 || breakdown.MiscBills < 0 {
		return fmt.Errorf("cash amounts must not be negative: %w", store.ErrValidation)
	}
	if !reconcile.ValidBills(breakdown.Bills) {
		return fmt.Errorf("unknown denomination or negative bill count: %w", store.ErrValidation)
	}
	return nil
}
