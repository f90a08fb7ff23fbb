package service

import (
	"restopos/internal/dto"
	"restopos/internal/model"

	"github.com/shopspring/decimal"
)

// ShiftFigures are the per-shift inputs to the reconciliation arithmetic.
// Cash sales come from the backend (it aggregates the orders); the manual
// totals come either from the backend's close-time audit fields or, for a
// still-open shift, from the loaded ledger.
type ShiftFigures struct {
	OpeningFloat decimal.Decimal
	CashSales    decimal.Decimal
	ManualIns    decimal.Decimal
	ManualOuts   decimal.Decimal
}

// FiguresFromShift extracts the reconciliation inputs from a shift snapshot,
// preferring the backend-stamped audit figures over a local recount.
func FiguresFromShift(s *model.CashShift) ShiftFigures {
	f := ShiftFigures{OpeningFloat: s.OpeningFloat}
	if s.CashSales != nil {
		f.CashSales = *s.CashSales
	}
	if s.ManualIns != nil && s.ManualOuts != nil {
		f.ManualIns = *s.ManualIns
		f.ManualOuts = *s.ManualOuts
		return f
	}
	manual := ManualMovements(s.Movements)
	f.ManualIns = TotalByKind(manual, model.MovementIn)
	f.ManualOuts = TotalByKind(manual, model.MovementOut)
	return f
}

// Reconciliation holds the three numbers the operator cares about.
type Reconciliation struct {
	Ingresos decimal.Decimal
	Egresos  decimal.Decimal
	Neto     decimal.Decimal
}

// Reconcile composes the figures: ingresos = cash_sales + manual_ins,
// egresos = manual_outs, neto = ingresos − egresos.
func Reconcile(f ShiftFigures) Reconciliation {
	ingresos := f.CashSales.Add(f.ManualIns)
	egresos := f.ManualOuts
	return Reconciliation{
		Ingresos: ingresos,
		Egresos:  egresos,
		Neto:     ingresos.Sub(egresos),
	}
}

// CountedTotal sums the denomination rows: Σ(value × qty). Rows with a
// non-positive value or qty contribute nothing.
func CountedTotal(denoms []model.Denomination) decimal.Decimal {
	total := decimal.Zero
	for _, d := range denoms {
		if d.Qty <= 0 || !d.Value.IsPositive() {
			continue
		}
		total = total.Add(d.Value.Mul(decimal.NewFromInt(d.Qty)))
	}
	return total
}

// SummaryFromClosedShift builds the operator-facing close summary from the
// shift the backend returned. Counted/expected/difference are meaningful only
// when the backend recorded a denomination count.
func SummaryFromClosedShift(s *model.CashShift) dto.ReconciliationSummary {
	r := Reconcile(FiguresFromShift(s))
	sum := dto.ReconciliationSummary{
		Ingresos: r.Ingresos,
		Egresos:  r.Egresos,
		Neto:     r.Neto,
	}
	if s.Counted != nil {
		sum.Counted = *s.Counted
		sum.HasCount = len(s.Denoms) > 0
	}
	if s.Expected != nil {
		sum.Expected = *s.Expected
	}
	if s.Difference != nil {
		sum.Difference = *s.Difference
	}
	return sum
}

// RangeSummary is the "estado de cuentas" over a date range: the per-shift
// figures summed, with the independently tracked expenses folded in.
type RangeSummary struct {
	Shifts       int
	Ingresos     decimal.Decimal
	Egresos      decimal.Decimal
	Neto         decimal.Decimal
	OtrosEgresos decimal.Decimal
	// Balance = Neto − OtrosEgresos.
	Balance decimal.Decimal
}

// SummarizeRange folds per-shift reconciliations and an expense total into
// one account overview.
func SummarizeRange(shifts []model.CashShift, otrosEgresos decimal.Decimal) RangeSummary {
	out := RangeSummary{
		Shifts:       len(shifts),
		Ingresos:     decimal.Zero,
		Egresos:      decimal.Zero,
		OtrosEgresos: otrosEgresos,
	}
	for i := range shifts {
		r := Reconcile(FiguresFromShift(&shifts[i]))
		out.Ingresos = out.Ingresos.Add(r.Ingresos)
		out.Egresos = out.Egresos.Add(r.Egresos)
	}
	out.Neto = out.Ingresos.Sub(out.Egresos)
	out.Balance = out.Neto.Sub(otrosEgresos)
	return out
}

// ExpenseTotal sums a list of expenses.
func ExpenseTotal(expenses []model.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// FormatMoney renders an amount for display. Rounding to two digits happens
// here and only here — internal accumulation stays exact.
func FormatMoney(d decimal.Decimal) string {
	return "Bs " + d.StringFixed(2)
}
