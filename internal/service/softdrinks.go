package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"barcaja/backend/internal/domain"
	"barcaja/backend/internal/store"
	"barcaja/backend/internal/xid"
)

// Soft drinks are tracked as plain stock: they are never sold through
// a shift, so restocking one does not flag open shifts and consumption
// is recorded directly against the inventory.

func (s *Service) ListSoftDrinks(ctx context.Context, venueID string) ([]domain.SoftDrink, error) {
	return s.ledger.ListSoftDrinks(ctx, venueID)
}

func (s *Service) AddSoftDrink(ctx context.Context, venueID string, req domain.SoftDrinkCreateRequest) (*domain.SoftDrink, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("soft drink name required: %w", store.ErrValidation)
	}
	if req.Cost < 0 {
		return nil, fmt.Errorf("cost must not be negative: %w", store.ErrValidation)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", store.ErrValidation)
	}

	drink := domain.SoftDrink{
		ID:              xid.New("soda"),
		Name:            name,
		Quantity:        req.Quantity,
		Cost:            req.Cost,
		LastRestockDate: time.Now().UTC(),
	}
	return s.ledger.UpsertSoftDrink(ctx, venueID, drink)
}

func (s *Service) UpdateSoftDrink(ctx context.Context, venueID string, drinkID string, req domain.SoftDrinkUpdateRequest) (*domain.SoftDrink, error) {
	drink, err := s.ledger.GetSoftDrink(ctx, venueID, drinkID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("soft drink name required: %w", store.ErrValidation)
		}
		drink.Name = name
	}
	if req.Cost != nil {
		if *req.Cost < 0 {
			return nil, fmt.Errorf("cost must not be negative: %w", store.ErrValidation)
		}
		drink.Cost = *req.Cost
	}

	return s.ledger.UpsertSoftDrink(ctx, venueID, *drink)
}

func (s *Service) DeleteSoftDrink(ctx context.Context, venueID string, drinkID string) error {
	return s.ledger.DeleteSoftDrink(ctx, venueID, drinkID)
}

// RestockSoftDrink adds stock and appends a softdrink-typed restock
// record to the shared restock history.
func (s *Service) RestockSoftDrink(ctx context.Context, venueID string, drinkID string, req domain.RestockRequest) (*domain.SoftDrink, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("restock quantity must be positive: %w", store.ErrValidation)
	}

	drink, err := s.ledger.GetSoftDrink(ctx, venueID, drinkID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	workerName := strings.TrimSpace(req.WorkerName)
	drink.Quantity += req.Quantity
	drink.LastRestockDate = now
	drink.LastRestockBy = workerName

	updated, err := s.ledger.UpsertSoftDrink(ctx, venueID, *drink)
	if err != nil {
		return nil, err
	}

	record := domain.RestockRecord{
		ID:                xid.New("restock"),
		Date:              now,
		Type:              domain.RestockTypeSoftDrink,
		WorkerName:        workerName,
		ProductID:         updated.ID,
		ProductName:       updated.Name,
		QuantityAdded:     req.Quantity,
		ResultingQuantity: updated.Quantity,
	}
	if err := s.ledger.AppendRestock(ctx, venueID, record); err != nil {
		log.Printf("[service] append soft drink restock record: %v", err)
	}

	return updated, nil
}

// ConsumeSoftDrink records drinks taken from stock; the quantity never
// goes below zero.
func (s *Service) ConsumeSoftDrink(ctx context.Context, venueID string, drinkID string, req domain.SoftDrinkConsumeRequest) (*domain.SoftDrink, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("consumed quantity must be positive: %w", store.ErrValidation)
	}

	drink, err := s.ledger.GetSoftDrink(ctx, venueID, drinkID)
	if err != nil {
		return nil, err
	}

	drink.Quantity -= req.Quantity
	if drink.Quantity < 0 {
		drink.Quantity = 0
	}

	return s.ledger.UpsertSoftDrink(ctx, venueID, *drink)
}
