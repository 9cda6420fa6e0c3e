package store

import (
	"context"
	"errors"

	"barcaja/backend/internal/domain"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
)

// Ledger is the persistence port for all venue-partitioned records.
// Every method takes the venue id; records from different venues never
// mix.
type Ledger interface {
	ListVenues(ctx context.Context) ([]domain.Venue, error)
	GetVenue(ctx context.Context, venueID string) (*domain.Venue, error)

	ListProducts(ctx context.Context, venueID string) ([]domain.Product, error)
	GetProduct(ctx context.Context, venueID string, productID string) (*domain.Product, error)
	UpsertProduct(ctx context.Context, venueID string, product domain.Product) (*domain.Product, error)

	ListWorkers(ctx context.Context, venueID string) ([]domain.Worker, error)
	GetWorker(ctx context.Context, venueID string, workerID string) (*domain.Worker, error)
	UpsertWorker(ctx context.Context, venueID string, worker domain.Worker) (*domain.Worker, error)
	DeleteWorker(ctx context.Context, venueID string, workerID string) error
	CountShiftsByWorker(ctx context.Context, venueID string, workerID string) (int, error)

	ListSoftDrinks(ctx context.Context, venueID string) ([]domain.SoftDrink, error)
	GetSoftDrink(ctx context.Context, venueID string, drinkID string) (*domain.SoftDrink, error)
	UpsertSoftDrink(ctx context.Context, venueID string, drink domain.SoftDrink) (*domain.SoftDrink, error)
	DeleteSoftDrink(ctx context.Context, venueID string, drinkID string) error

	ListShifts(ctx context.Context, venueID string) ([]domain.Shift, error)
	GetShift(ctx context.Context, venueID string, shiftID string) (*domain.Shift, error)
	GetActiveShiftByWorker(ctx context.Context, venueID string, workerID string) (*domain.Shift, error)
	UpsertShift(ctx context.Context, venueID string, shift domain.Shift) (*domain.Shift, error)

	AppendRestock(ctx context.Context, venueID string, record domain.RestockRecord) error
	ListRestocks(ctx context.Context, venueID string, limit int) ([]domain.RestockRecord, error)
}
