// Package reconcile holds the pure cash arithmetic for shift closing:
// drawer totals, expected-vs-actual variance, the drawer-float check,
// and the clamping of count entries against the opening snapshot.
package reconcile

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"barcaja/backend/internal/domain"
)

var pesoPrinter = message.NewPrinter(language.Spanish)

// FormatPesos renders a peso amount with thousands separators, e.g.
// "$120.000".
func FormatPesos(amount int64) string {
	return pesoPrinter.Sprintf("$%d", amount)
}

// ValidBills reports whether every key of a bills map is one of the
// accepted denominations and every count is non-negative.
func ValidBills(bills map[int64]int) bool {
	for denom, count := range bills {
		if count < 0 {
			return false
		}
		known := false
		for _, d := range domain.Denominations {
			if d == denom {
				known = true
				break
			}
		}
		if !known {
			return false
		}
	}
	return true
}

// ComputeTotal derives the grand total of a cash breakdown. The stored
// Total field is ignored; callers overwrite it with the returned value.
func ComputeTotal(b domain.CashBreakdown) int64 {
	var total int64
	for denom, count := range b.Bills {
		total += denom * int64(count)
	}
	total += b.Coins
	total += b.Nequi
	total += b.MiscBills
	total += b.Bonuses
	total += b.Prizes
	return total
}

// Classify compares counted cash against the expected amount and
// returns exactly one of exact, over or under with a non-negative
// magnitude.
func Classify(expected, actual int64) domain.Variance {
	diff := actual - expected
	switch {
	case diff > 0:
		return domain.Variance{
			Kind:    domain.VarianceOver,
			Amount:  diff,
			Display: "+" + FormatPesos(diff),
		}
	case diff < 0:
		return domain.Variance{
			Kind:    domain.VarianceUnder,
			Amount:  -diff,
			Display: "-" + FormatPesos(-diff),
		}
	default:
		return domain.Variance{Kind: domain.VarianceExact, Display: "Exacto"}
	}
}

// CompareToBase checks the counted total against the fixed drawer
// float. This is independent of Classify; both results are always
// reported.
func CompareToBase(total int64) domain.BaseCheck {
	diff := total - domain.BaseAmountPesos
	switch {
	case diff > 0:
		return domain.BaseCheck{
			Kind:    domain.BaseSurplus,
			Amount:  diff,
			Display: fmt.Sprintf("%s de más", FormatPesos(diff)),
		}
	case diff < 0:
		return domain.BaseCheck{
			Kind:    domain.BaseShortfall,
			Amount:  -diff,
			Display: fmt.Sprintf("falta %s", FormatPesos(-diff)),
		}
	default:
		return domain.BaseCheck{Kind: domain.BaseExact, Display: "Base exacta"}
	}
}

// ClampCounts limits sold and giveaway entries so that, per product,
// sold + giveaway never exceeds the opening snapshot. Sold wins over
// giveaways when both compete for the remainder. Entries for products
// absent from the snapshot are dropped. This is the single place where
// the clamp-vs-reject policy lives; switching to rejection only needs
// a change here.
func ClampCounts(initial, sold, giveaways map[string]int) (map[string]int, map[string]int) {
	clampedSold := make(map[string]int, len(sold))
	clampedFree := make(map[string]int, len(giveaways))

	for id, qty := range sold {
		avail, ok := initial[id]
		if !ok || qty <= 0 {
			continue
		}
		clampedSold[id] = minInt(qty, avail)
	}
	for id, qty := range giveaways {
		avail, ok := initial[id]
		if !ok || qty <= 0 {
			continue
		}
		remaining := avail - clampedSold[id]
		if remaining <= 0 {
			continue
		}
		clampedFree[id] = minInt(qty, remaining)
	}

	return clampedSold, clampedFree
}

// ExpectedCash is the revenue implied by the sold counts at the fixed
// selling price.
func ExpectedCash(sold map[string]int, sellingPrice int64) int64 {
	var total int64
	for _, qty := range sold {
		total += int64(qty) * sellingPrice
	}
	return total
}

// FinalInventory derives the closing stock per product from the
// opening snapshot and the clamped counts. Inputs must already be
// clamped; results are never negative for clamped inputs.
func FinalInventory(initial, sold, giveaways map[string]int) map[string]int {
	final := make(map[string]int, len(initial))
	for id, qty := range initial {
		final[id] = qty - sold[id] - giveaways[id]
	}
	return final
}

// FormatDuration renders a shift length as whole floored hours, e.g.
// a shift of 7h 59m reads "7h".
func FormatDuration(start, end time.Time) string {
	hours := int(end.Sub(start).Hours())
	if hours < 0 {
		hours = 0
	}
	return fmt.Sprintf("%dh", hours)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
