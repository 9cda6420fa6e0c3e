package domain

import "time"

// Money values are whole Colombian pesos, stored as int64.
const (
	// SellingPricePesos is the fixed unit selling price for every product.
	SellingPricePesos int64 = 4000

	// BaseAmountPesos is the fixed drawer float the counted cash is
	// compared against at shift close.
	BaseAmountPesos int64 = 10_000_000
)

// Denominations lists the accepted bill denominations, largest first.
var Denominations = []int64{100_000, 50_000, 20_000, 10_000, 5_000, 2_000, 1_000}

const (
	RestockDayMonday    = "monday"
	RestockDayTuesday   = "tuesday"
	RestockDayWednesday = "wednesday"
	RestockDayThursday  = "thursday"
	RestockDayFriday    = "friday"
	RestockDaySaturday  = "saturday"
	RestockDaySunday    = "sunday"
)

var RestockDays = []string{
	RestockDayMonday,
	RestockDayTuesday,
	RestockDayWednesday,
	RestockDayThursday,
	RestockDayFriday,
	RestockDaySaturday,
	RestockDaySunday,
}

type Venue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Quantity         int       `json:"quantity"`
	PurchaseCost     int64     `json:"purchase_cost"`
	SellingPrice     int64     `json:"selling_price"`
	LastRestockDate  time.Time `json:"last_restock_date"`
	LastRestockBy    string    `json:"last_restock_by,omitempty"`
	WeeklyRestockDay string    `json:"weekly_restock_day"`
}

type ProductCreateRequest struct {
	Name             string `json:"name"`
	Quantity         int    `json:"quantity"`
	PurchaseCost     int64  `json:"purchase_cost"`
	WeeklyRestockDay string `json:"weekly_restock_day"`
}

type ProductUpdateRequest struct {
	Name             *string `json:"name,omitempty"`
	PurchaseCost     *int64  `json:"purchase_cost,omitempty"`
	WeeklyRestockDay *string `json:"weekly_restock_day,omitempty"`
}

type RestockRequest struct {
	Quantity   int    `json:"quantity"`
	WorkerName string `json:"worker_name"`
}

const (
	RestockTypeBeer      = "beer"
	RestockTypeSoftDrink = "softdrink"
)

type RestockRecord struct {
	ID                string    `json:"id"`
	Date              time.Time `json:"date"`
	Type              string    `json:"type"`
	WorkerName        string    `json:"worker_name"`
	ProductID         string    `json:"product_id"`
	ProductName       string    `json:"product_name"`
	QuantityAdded     int       `json:"quantity_added"`
	ResultingQuantity int       `json:"resulting_quantity"`
	DuringShift       bool      `json:"during_shift"`
	ShiftID           string    `json:"shift_id,omitempty"`
}

// SoftDrink is non-alcoholic stock (sodas, juices). Soft drinks are
// not sold through shifts: they carry no selling price and never enter
// a shift's inventory snapshot.
type SoftDrink struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Quantity        int       `json:"quantity"`
	Cost            int64     `json:"cost"`
	LastRestockDate time.Time `json:"last_restock_date"`
	LastRestockBy   string    `json:"last_restock_by,omitempty"`
}

type SoftDrinkCreateRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Cost     int64  `json:"cost"`
}

type SoftDrinkUpdateRequest struct {
	Name *string `json:"name,omitempty"`
	Cost *int64  `json:"cost,omitempty"`
}

// SoftDrinkConsumeRequest records drinks taken from stock outside any
// sale (staff consumption, spillage).
type SoftDrinkConsumeRequest struct {
	Quantity int `json:"quantity"`
}

type Worker struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type WorkerCreateRequest struct {
	Name string `json:"name"`
}

type WorkerUpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// CashBreakdown is the denomination-level count of a cash drawer.
// Bills maps denomination to bill count; Coins is a flat peso total,
// not a per-coin count. Total is derived and recomputed whenever any
// component changes.
type CashBreakdown struct {
	Bills     map[int64]int `json:"bills"`
	Coins     int64         `json:"coins"`
	Nequi     int64         `json:"nequi"`
	MiscBills int64         `json:"misc_bills"`
	Bonuses   int64         `json:"bonuses"`
	Prizes    int64         `json:"prizes"`
	Total     int64         `json:"total"`
}

type Shift struct {
	ID               string         `json:"id"`
	WorkerID         string         `json:"worker_id"`
	WorkerName       string         `json:"worker_name"`
	StartTime        time.Time      `json:"start_time"`
	EndTime          *time.Time     `json:"end_time,omitempty"`
	Active           bool           `json:"active"`
	InitialInventory map[string]int `json:"initial_inventory"`
	FinalInventory   map[string]int `json:"final_inventory,omitempty"`
	Sold             map[string]int `json:"sold,omitempty"`
	Giveaways        map[string]int `json:"giveaways,omitempty"`
	Bonuses          int64          `json:"bonuses"`
	Prizes           int64          `json:"prizes"`
	ExpectedCash     int64          `json:"expected_cash"`
	ActualCash       int64          `json:"actual_cash"`
	CashBreakdown    *CashBreakdown `json:"cash_breakdown,omitempty"`
	RestockedDuring  bool           `json:"restocked_during"`
	RestockDetails   string         `json:"restock_details,omitempty"`
}

type ShiftOpenRequest struct {
	WorkerID string `json:"worker_id"`
}

type ShiftCloseRequest struct {
	Sold          map[string]int `json:"sold"`
	Giveaways     map[string]int `json:"giveaways"`
	Bonuses       int64          `json:"bonuses"`
	Prizes        int64          `json:"prizes"`
	CashBreakdown CashBreakdown  `json:"cash_breakdown"`
}

type ShiftCloseResponse struct {
	Shift     Shift     `json:"shift"`
	Variance  Variance  `json:"variance"`
	BaseCheck BaseCheck `json:"base_check"`
	Duration  string    `json:"duration"`
}

const (
	VarianceExact = "exact"
	VarianceOver  = "over"
	VarianceUnder = "under"
)

// Variance is the difference between counted and expected cash.
// Amount is always non-negative; Kind tells the direction.
type Variance struct {
	Kind    string `json:"kind"`
	Amount  int64  `json:"amount"`
	Display string `json:"display"`
}

const (
	BaseExact     = "exact"
	BaseShortfall = "shortfall"
	BaseSurplus   = "surplus"
)

// BaseCheck compares the counted total against the fixed drawer float.
type BaseCheck struct {
	Kind    string `json:"kind"`
	Amount  int64  `json:"amount"`
	Display string `json:"display"`
}

// CountDraft is an in-progress closing count, saved so a counter can
// resume after an interruption. It never touches shift or product
// records until the shift is actually closed.
type CountDraft struct {
	ShiftID       string         `json:"shift_id"`
	Sold          map[string]int `json:"sold"`
	Giveaways     map[string]int `json:"giveaways"`
	Bonuses       int64          `json:"bonuses"`
	Prizes        int64          `json:"prizes"`
	CashBreakdown CashBreakdown  `json:"cash_breakdown"`
	SavedAt       time.Time      `json:"saved_at"`
}

type DraftSaveRequest struct {
	Sold          map[string]int `json:"sold"`
	Giveaways     map[string]int `json:"giveaways"`
	Bonuses       int64          `json:"bonuses"`
	Prizes        int64          `json:"prizes"`
	CashBreakdown CashBreakdown  `json:"cash_breakdown"`
}

// SalesReport is derived per closed shift; it is never stored.
type SalesReport struct {
	ShiftID        string         `json:"shift_id"`
	Date           time.Time      `json:"date"`
	WorkerName     string         `json:"worker_name"`
	Sold           map[string]int `json:"sold"`
	UnitsSold      int            `json:"units_sold"`
	Revenue        int64          `json:"revenue"`
	Cost           int64          `json:"cost"`
	Profit         int64          `json:"profit"`
	CashDifference int64          `json:"cash_difference"`
}

type DailySummary struct {
	Date      string `json:"date"`
	Revenue   int64  `json:"revenue"`
	Profit    int64  `json:"profit"`
	UnitsSold int    `json:"units_sold"`
}

type ProductSales struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitsSold   int    `json:"units_sold"`
}

type ReportSummary struct {
	Period         string         `json:"period"`
	Revenue        int64          `json:"revenue"`
	Cost           int64          `json:"cost"`
	Profit         int64          `json:"profit"`
	UnitsSold      int            `json:"units_sold"`
	CashDifference int64          `json:"cash_difference"`
	Shifts         []SalesReport  `json:"shifts"`
	Daily          []DailySummary `json:"daily"`
	ByProduct      []ProductSales `json:"by_product"`
}

func IsValidRestockDay(day string) bool {
	for _, d := range RestockDays {
		if d == day {
			return true
		}
	}
	return false
}
