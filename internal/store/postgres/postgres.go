package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"barcaja/backend/internal/domain"
	"barcaja/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM venues
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	venues := make([]domain.Venue, 0, 8)
	for rows.Next() {
		var v domain.Venue
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return venues, nil
}

func (s *Store) GetVenue(ctx context.Context, venueID string) (*domain.Venue, error) {
	var venue domain.Venue
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name
		FROM venues
		WHERE id = $1
	`, venueID).Scan(&venue.ID, &venue.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &venue, nil
}

func (s *Store) ListProducts(ctx context.Context, venueID string) ([]domain.Product, error) {
	if err := s.requireVenue(ctx, venueID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, quantity, purchase_cost, selling_price, last_restock_date, last_restock_by, weekly_restock_day
		FROM products
		WHERE venue_id = $1
		ORDER BY name
	`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 32)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &p.PurchaseCost, &p.SellingPrice, &p.LastRestockDate, &p.LastRestockBy, &p.WeeklyRestockDay); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, venueID string, productID string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, quantity, purchase_cost, selling_price, last_restock_date, last_restock_by, weekly_restock_day
		FROM products
		WHERE venue_id = $1 AND id = $2
	`, venueID, productID).Scan(&p.ID, &p.Name, &p.Quantity, &p.PurchaseCost, &p.SellingPrice, &p.LastRestockDate, &p.LastRestockBy, &p.WeeklyRestockDay)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpsertProduct(ctx context.Context, venueID string, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" {
		return nil, store.ErrValidation
	}
	if err := s.requireVenue(ctx, venueID); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (venue_id, id, name, quantity, purchase_cost, selling_price, last_restock_date, last_restock_by, weekly_restock_day, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
		ON CONFLICT (venue_id, id)
		DO UPDATE SET name = $3, quantity = $4, purchase_cost = $5, selling_price = $6, last_restock_date = $7, last_restock_by = $8, weekly_restock_day = $9, updated_at = now()
	`, venueID, product.ID, product.Name, product.Quantity, product.PurchaseCost, product.SellingPrice, product.LastRestockDate, product.LastRestockBy, product.WeeklyRestockDay)
	if err != nil {
		return nil, err
	}

	saved := product
	return &saved, nil
}

func (s *Store) ListSoftDrinks(ctx context.Context, venueID string) ([]domain.SoftDrink, error) {
	if err := s.requireVenue(ctx, venueID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, quantity, cost, last_restock_date, last_restock_by
		FROM soft_drinks
		WHERE venue_id = $1
		ORDER BY name
	`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drinks := make([]domain.SoftDrink, 0, 16)
	for rows.Next() {
		var d domain.SoftDrink
		if err := rows.Scan(&d.ID, &d.Name, &d.Quantity, &d.Cost, &d.LastRestockDate, &d.LastRestockBy); err != nil {
			return nil, err
		}
		drinks = append(drinks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return drinks, nil
}

func (s *Store) GetSoftDrink(ctx context.Context, venueID string, drinkID string) (*domain.SoftDrink, error) {
	var d domain.SoftDrink
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, quantity, cost, last_restock_date, last_restock_by
		FROM soft_drinks
		WHERE venue_id = $1 AND id = $2
	`, venueID, drinkID).Scan(&d.ID, &d.Name, &d.Quantity, &d.Cost, &d.LastRestockDate, &d.LastRestockBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *Store) UpsertSoftDrink(ctx context.Context, venueID string, drink domain.SoftDrink) (*domain.SoftDrink, error) {
	if drink.ID == "" || drink.Name == "" {
		return nil, store.ErrValidation
	}
	if err := s.requireVenue(ctx, venueID); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO soft_drinks (venue_id, id, name, quantity, cost, last_restock_date, last_restock_by, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now())
		ON CONFLICT (venue_id, id)
		DO UPDATE SET name = $3, quantity = $4, cost = $5, last_restock_date = $6, last_restock_by = $7, updated_at = now()
	`, venueID, drink.ID, drink.Name, drink.Quantity, drink.Cost, drink.LastRestockDate, drink.LastRestockBy)
	if err != nil {
		return nil, err
	}

	saved := drink
	return &saved, nil
}

func (s *Store) DeleteSoftDrink(ctx context.Context, venueID string, drinkID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM soft_drinks
		WHERE venue_id = $1 AND id = $2
	`, venueID, drinkID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListWorkers(ctx context.Context, venueID string) ([]domain.Worker, error) {
	if err := s.requireVenue(ctx, venueID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, active, created_at
		FROM workers
		WHERE venue_id = $1
		ORDER BY name
	`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workers := make([]domain.Worker, 0, 16)
	for rows.Next() {
		var w domain.Worker
		if err := rows.Scan(&w.ID, &w.Name, &w.Active, &w.CreatedAt); err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workers, nil
}

func (s *Store) GetWorker(ctx context.Context, venueID string, workerID string) (*domain.Worker, error) {
	var w domain.Worker
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, active, created_at
		FROM workers
		WHERE venue_id = $1 AND id = $2
	`, venueID, workerID).Scan(&w.ID, &w.Name, &w.Active, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (s *Store) UpsertWorker(ctx context.Context, venueID string, worker domain.Worker) (*domain.Worker, error) {
	if worker.ID == "" || worker.Name == "" {
		return nil, store.ErrValidation
	}
	if err := s.requireVenue(ctx, venueID); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workers (venue_id, id, name, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
		ON CONFLICT (venue_id, id)
		DO UPDATE SET name = $3, active = $4, updated_at = now()
	`, venueID, worker.ID, worker.Name, worker.Active, worker.CreatedAt)
	if err != nil {
		return nil, err
	}

	saved := worker
	return &saved, nil
}

func (s *Store) DeleteWorker(ctx context.Context, venueID string, workerID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM workers
		WHERE venue_id = $1 AND id = $2
	`, venueID, workerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountShiftsByWorker(ctx context.Context, venueID string, workerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*)
		FROM shifts
		WHERE venue_id = $1 AND worker_id = $2
	`, venueID, workerID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ListShifts(ctx context.Context, venueID string) ([]domain.Shift, error) {
	if err := s.requireVenue(ctx, venueID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, worker_id, worker_name, start_time, end_time, active,
			initial_inventory, final_inventory, sold, giveaways,
			bonuses, prizes, expected_cash, actual_cash, cash_breakdown, restocked_during, restock_details
		FROM shifts
		WHERE venue_id = $1
		ORDER BY start_time DESC
	`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]domain.Shift, 0, 64)
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (s *Store) GetShift(ctx context.Context, venueID string, shiftID string) (*domain.Shift, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, worker_id, worker_name, start_time, end_time, active,
			initial_inventory, final_inventory, sold, giveaways,
			bonuses, prizes, expected_cash, actual_cash, cash_breakdown, restocked_during, restock_details
		FROM shifts
		WHERE venue_id = $1 AND id = $2
	`, venueID, shiftID)

	shift, err := scanShift(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &shift, nil
}

func (s *Store) GetActiveShiftByWorker(ctx context.Context, venueID string, workerID string) (*domain.Shift, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, worker_id, worker_name, start_time, end_time, active,
			initial_inventory, final_inventory, sold, giveaways,
			bonuses, prizes, expected_cash, actual_cash, cash_breakdown, restocked_during, restock_details
		FROM shifts
		WHERE venue_id = $1 AND worker_id = $2 AND active = true
		ORDER BY start_time DESC
		LIMIT 1
	`, venueID, workerID)

	shift, err := scanShift(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &shift, nil
}

func (s *Store) UpsertShift(ctx context.Context, venueID string, shift domain.Shift) (*domain.Shift, error) {
	if shift.ID == "" || shift.WorkerID == "" {
		return nil, store.ErrValidation
	}
	if err := s.requireVenue(ctx, venueID); err != nil {
		return nil, err
	}

	initialJSON, err := json.Marshal(shift.InitialInventory)
	if err != nil {
		return nil, err
	}
	finalJSON, err := json.Marshal(shift.FinalInventory)
	if err != nil {
		return nil, err
	}
	soldJSON, err := json.Marshal(shift.Sold)
	if err != nil {
		return nil, err
	}
	giveawaysJSON, err := json.Marshal(shift.Giveaways)
	if err != nil {
		return nil, err
	}
	breakdownJSON, err := json.Marshal(shift.CashBreakdown)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shifts (venue_id, id, worker_id, worker_name, start_time, end_time, active,
			initial_inventory, final_inventory, sold, giveaways,
			bonuses, prizes, expected_cash, actual_cash, cash_breakdown, restocked_during, restock_details, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,now())
		ON CONFLICT (venue_id, id)
		DO UPDATE SET worker_id = $3, worker_name = $4, start_time = $5, end_time = $6, active = $7,
			initial_inventory = $8, final_inventory = $9, sold = $10, giveaways = $11,
			bonuses = $12, prizes = $13, expected_cash = $14, actual_cash = $15,
			cash_breakdown = $16, restocked_during = $17, restock_details = $18, updated_at = now()
	`, venueID, shift.ID, shift.WorkerID, shift.WorkerName, shift.StartTime, shift.EndTime, shift.Active,
		initialJSON, finalJSON, soldJSON, giveawaysJSON,
		shift.Bonuses, shift.Prizes, shift.ExpectedCash, shift.ActualCash, breakdownJSON, shift.RestockedDuring, shift.RestockDetails)
	if err != nil {
		return nil, err
	}

	saved := shift
	return &saved, nil
}

func (s *Store) AppendRestock(ctx context.Context, venueID string, record domain.RestockRecord) error {
	if err := s.requireVenue(ctx, venueID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO restock_records (venue_id, id, date, type, worker_name, product_id, product_name, quantity_added, resulting_quantity, during_shift, shift_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, venueID, record.ID, record.Date, record.Type, record.WorkerName, record.ProductID, record.ProductName,
		record.QuantityAdded, record.ResultingQuantity, record.DuringShift, record.ShiftID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrValidation
		}
		return err
	}
	return nil
}

func (s *Store) ListRestocks(ctx context.Context, venueID string, limit int) ([]domain.RestockRecord, error) {
	if err := s.requireVenue(ctx, venueID); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, type, worker_name, product_id, product_name, quantity_added, resulting_quantity, during_shift, shift_id
		FROM restock_records
		WHERE venue_id = $1
		ORDER BY date DESC
		LIMIT $2
	`, venueID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.RestockRecord, 0, limit)
	for rows.Next() {
		var r domain.RestockRecord
		if err := rows.Scan(&r.ID, &r.Date, &r.Type, &r.WorkerName, &r.ProductID, &r.ProductName, &r.QuantityAdded, &r.ResultingQuantity, &r.DuringShift, &r.ShiftID); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *Store) requireVenue(ctx context.Context, venueID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM venues WHERE id = $1`, venueID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (domain.Shift, error) {
	var (
		shift         domain.Shift
		endTime       sql.NullTime
		initialJSON   []byte
		finalJSON     []byte
		soldJSON      []byte
		giveawaysJSON []byte
		breakdownJSON []byte
	)

	err := row.Scan(&shift.ID, &shift.WorkerID, &shift.WorkerName, &shift.StartTime, &endTime, &shift.Active,
		&initialJSON, &finalJSON, &soldJSON, &giveawaysJSON,
		&shift.Bonuses, &shift.Prizes, &shift.ExpectedCash, &shift.ActualCash, &breakdownJSON, &shift.RestockedDuring, &shift.RestockDetails)
	if err != nil {
		return domain.Shift{}, err
	}

	if endTime.Valid {
		end := endTime.Time
		shift.EndTime = &end
	}
	if err := json.Unmarshal(initialJSON, &shift.InitialInventory); err != nil {
		return domain.Shift{}, err
	}
	if err := json.Unmarshal(finalJSON, &shift.FinalInventory); err != nil {
		return domain.Shift{}, err
	}
	if err := json.Unmarshal(soldJSON, &shift.Sold); err != nil {
		return domain.Shift{}, err
	}
	if err := json.Unmarshal(giveawaysJSON, &shift.Giveaways); err != nil {
		return domain.Shift{}, err
	}
	if len(breakdownJSON) > 0 && string(breakdownJSON) != "null" {
		var breakdown domain.CashBreakdown
		if err := json.Unmarshal(breakdownJSON, &breakdown); err != nil {
			return domain.Shift{}, err
		}
		shift.CashBreakdown = &breakdown
	}

	return shift, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
