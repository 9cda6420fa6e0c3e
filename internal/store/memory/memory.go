package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"barcaja/backend/internal/domain"
	"barcaja/backend/internal/store"
)

type Store struct {
	mu         sync.RWMutex
	venues     map[string]domain.Venue
	products   map[string]map[string]domain.Product
	softDrinks map[string]map[string]domain.SoftDrink
	workers    map[string]map[string]domain.Worker
	shifts     map[string]map[string]domain.Shift
	restocks   map[string][]domain.RestockRecord
}

func New() *Store {
	return &Store{
		venues:     make(map[string]domain.Venue),
		products:   make(map[string]map[string]domain.Product),
		softDrinks: make(map[string]map[string]domain.SoftDrink),
		workers:    make(map[string]map[string]domain.Worker),
		shifts:     make(map[string]map[string]domain.Shift),
		restocks:   make(map[string][]domain.RestockRecord),
	}
}

// NewSeeded builds an in-memory ledger with the two demo venues and a
// small starting inventory, for dev mode without a database.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	for _, v := range []domain.Venue{
		{ID: "spezia", Name: "Spezia"},
		{ID: "cali-gran-casino", Name: "Cali Gran Casino"},
	} {
		s.venues[v.ID] = v
		s.products[v.ID] = map[string]domain.Product{}
		s.softDrinks[v.ID] = map[string]domain.SoftDrink{}
		s.workers[v.ID] = map[string]domain.Worker{}
		s.shifts[v.ID] = map[string]domain.Shift{}
	}

	seedProducts := []domain.Product{
		{ID: "prod-1", Name: "Cerveza Premium", Quantity: 100, PurchaseCost: 2500, SellingPrice: domain.SellingPricePesos, LastRestockDate: now, WeeklyRestockDay: domain.RestockDayMonday},
		{ID: "prod-2", Name: "Cerveza Clásica", Quantity: 150, PurchaseCost: 2000, SellingPrice: domain.SellingPricePesos, LastRestockDate: now, WeeklyRestockDay: domain.RestockDayMonday},
	}
	seedSoftDrinks := []domain.SoftDrink{
		{ID: "soda-1", Name: "Coca-Cola", Quantity: 50, Cost: 1800, LastRestockDate: now},
		{ID: "soda-2", Name: "Jugo Hit", Quantity: 30, Cost: 1500, LastRestockDate: now},
	}
	for venueID := range s.venues {
		for _, p := range seedProducts {
			s.products[venueID][p.ID] = p
		}
		for _, d := range seedSoftDrinks {
			s.softDrinks[venueID][d.ID] = d
		}
		s.workers[venueID]["worker-1"] = domain.Worker{
			ID:        "worker-1",
			Name:      "Trabajador Demo",
			Active:    true,
			CreatedAt: now,
		}
	}

	return s
}

func (s *Store) ListVenues(_ context.Context) ([]domain.Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	venues := make([]domain.Venue, 0, len(s.venues))
	for _, v := range s.venues {
		venues = append(venues, v)
	}
	slices.SortFunc(venues, func(a, b domain.Venue) int {
		return strings.Compare(a.Name, b.Name)
	})
	return venues, nil
}

func (s *Store) GetVenue(_ context.Context, venueID string) (*domain.Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	venue, ok := s.venues[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := venue
	return &copied, nil
}

func (s *Store) ListProducts(_ context.Context, venueID string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID, ok := s.products[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}

	products := make([]domain.Product, 0, len(byID))
	for _, p := range byID {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return strings.Compare(a.Name, b.Name)
	})
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, venueID string, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID, ok := s.products[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}
	product, ok := byID[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := product
	return &copied, nil
}

func (s *Store) UpsertProduct(_ context.Context, venueID string, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" || product.Name == "" {
		return nil, store.ErrValidation
	}
	byID, ok := s.products[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}

	byID[product.ID] = product
	saved := product
	return &saved, nil
}

func (s *Store) ListSoftDrinks(_ context.Context, venueID string) ([]domain.SoftDrink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID, ok := s.softDrinks[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}

	drinks := make([]domain.SoftDrink, 0, len(byID))
	for _, d := range byID {
		drinks = append(drinks, d)
	}
	slices.SortFunc(drinks, func(a, b domain.SoftDrink) int {
		return strings.Compare(a.Name, b.Name)
	})
	return drinks, nil
}

func (s *Store) GetSoftDrink(_ context.Context, venueID string, drinkID string) (*domain.SoftDrink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID, ok := s.softDrinks[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}
	drink, ok := byID[drinkID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := drink
	return &copied, nil
}

func (s *Store) UpsertSoftDrink(_ context.Context, venueID string, drink domain.SoftDrink) (*domain.SoftDrink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if drink.ID == "" || drink.Name == "" {
		return nil, store.ErrValidation
	}
	byID, ok := s.softDrinks[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}

	byID[drink.ID] = drink
	saved := drink
	return &saved, nil
}

func (s *Store) DeleteSoftDrink(_ context.Context, venueID string, drinkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.softDrinks[venueID]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := byID[drinkID]; !ok {
		return store.ErrNotFound
	}
	delete(byID, drinkID)
	return nil
}

func (s *Store) ListWorkers(_ context.Context, venueID string) ([]domain.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID, ok := s.workers[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}

	workers := make([]domain.Worker, 0, len(byID))
	for _, w := range byID {
		workers = append(workers, w)
	}
	slices.SortFunc(workers, func(a, b domain.Worker) int {
		return strings.Compare(a.Name, b.Name)
	})
	return workers, nil
}

func (s *Store) GetWorker(_ context.Context, venueID string, workerID string) (*domain.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID, ok := s.workers[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}
	worker, ok := byID[workerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := worker
	return &copied, nil
}

func (s *Store) UpsertWorker(_ context.Context, venueID string, worker domain.Worker) (*domain.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if worker.ID == "" || worker.Name == "" {
		return nil, store.ErrValidation
	}
	byID, ok := s.workers[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}

	byID[worker.ID] = worker
	saved := worker
	return &saved, nil
}

func (s *Store) DeleteWorker(_ context.Context, venueID string, workerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.workers[venueID]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := byID[workerID]; !ok {
		return store.ErrNotFound
	}
	delete(byID, workerID)
	return nil
}

func (s *Store) CountShiftsByWorker(_ context.Context, venueID string, workerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID, ok := s.shifts[venueID]
	if !ok {
		return 0, store.ErrNotFound
	}
	count := 0
	for _, shift := range byID {
		if shift.WorkerID == workerID {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListShifts(_ context.Context, venueID string) ([]domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID, ok := s.shifts[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}

	shifts := make([]domain.Shift, 0, len(byID))
	for _, shift := range byID {
		shifts = append(shifts, cloneShift(shift))
	}
	slices.SortFunc(shifts, func(a, b domain.Shift) int {
		return b.StartTime.Compare(a.StartTime)
	})
	return shifts, nil
}

func (s *Store) GetShift(_ context.Context, venueID string, shiftID string) (*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID, ok := s.shifts[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}
	shift, ok := byID[shiftID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := cloneShift(shift)
	return &copied, nil
}

func (s *Store) GetActiveShiftByWorker(_ context.Context, venueID string, workerID string) (*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID, ok := s.shifts[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}
	for _, shift := range byID {
		if shift.WorkerID == workerID && shift.Active {
			copied := cloneShift(shift)
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpsertShift(_ context.Context, venueID string, shift domain.Shift) (*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if shift.ID == "" || shift.WorkerID == "" {
		return nil, store.ErrValidation
	}
	byID, ok := s.shifts[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}

	byID[shift.ID] = cloneShift(shift)
	saved := cloneShift(shift)
	return &saved, nil
}

func (s *Store) AppendRestock(_ context.Context, venueID string, record domain.RestockRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.venues[venueID]; !ok {
		return store.ErrNotFound
	}
	s.restocks[venueID] = append(s.restocks[venueID], record)
	return nil
}

func (s *Store) ListRestocks(_ context.Context, venueID string, limit int) ([]domain.RestockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.venues[venueID]; !ok {
		return nil, store.ErrNotFound
	}

	records := slices.Clone(s.restocks[venueID])
	slices.SortFunc(records, func(a, b domain.RestockRecord) int {
		return b.Date.Compare(a.Date)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// cloneShift deep-copies the maps so callers can never mutate stored
// state, in particular the opening inventory snapshot.
func cloneShift(shift domain.Shift) domain.Shift {
	copied := shift
	copied.InitialInventory = maps.Clone(shift.InitialInventory)
	copied.FinalInventory = maps.Clone(shift.FinalInventory)
	copied.Sold = maps.Clone(shift.Sold)
	copied.Giveaways = maps.Clone(shift.Giveaways)
	if shift.EndTime != nil {
		end := *shift.EndTime
		copied.EndTime = &end
	}
	if shift.CashBreakdown != nil {
		cb := *shift.CashBreakdown
		cb.Bills = maps.Clone(shift.CashBreakdown.Bills)
		copied.CashBreakdown = &cb
	}
	return copied
}
