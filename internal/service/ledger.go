package service

import (
	"sort"

	"restopos/internal/model"

	"github.com/shopspring/decimal"
)

// NotePlaceholder stands in for an absent or blank movement note.
const NotePlaceholder = "—"

// TotalByKind sums the amounts of the movements matching kind. An empty or
// nil ledger sums to zero; accumulation is exact decimal.
func TotalByKind(movs []model.CashMovement, kind string) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movs {
		if m.Kind == kind {
			total = total.Add(m.Amount)
		}
	}
	return total
}

// CountByKind counts the movements matching kind.
func CountByKind(movs []model.CashMovement, kind string) int {
	n := 0
	for _, m := range movs {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

// ManualMovements filters the ledger down to operator-entered adjustments.
func ManualMovements(movs []model.CashMovement) []model.CashMovement {
	out := make([]model.CashMovement, 0, len(movs))
	for _, m := range movs {
		if m.IsManual() {
			out = append(out, m)
		}
	}
	return out
}

// ManualNet is the manual contribution to the till: IN − OUT over the manual
// entries only. This is the same figure the close-time reconciliation uses.
func ManualNet(movs []model.CashMovement) decimal.Decimal {
	manual := ManualMovements(movs)
	return TotalByKind(manual, model.MovementIn).Sub(TotalByKind(manual, model.MovementOut))
}

// SortedForDisplay returns a reverse-chronological copy for human review.
// The input ledger is never reordered — insertion order is the audit order.
func SortedForDisplay(movs []model.CashMovement) []model.CashMovement {
	out := make([]model.CashMovement, len(movs))
	copy(out, movs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.After(out[j].At.Time)
	})
	return out
}

// DisplayNote renders an optional note, falling back to the placeholder so
// an empty note never shows up as a blank cell.
func DisplayNote(note *string) string {
	if note == nil || *note == "" {
		return NotePlaceholder
	}
	return *note
}
