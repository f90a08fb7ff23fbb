package model

import (
	"github.com/shopspring/decimal"
)

// Shift status values as reported by the backend.
const (
	ShiftOpen   = "OPEN"
	ShiftClosed = "CLOSED"
)

// Movement kinds.
const (
	MovementIn  = "IN"
	MovementOut = "OUT"
)

// Movement sources.
const (
	SourceManual = "MANUAL"
	SourceOrder  = "ORDER"
)

// CashShift is one bounded till session, from open to close. The backend owns
// it; this struct is a transient snapshot refreshed after every mutation.
// Counted/Expected/Difference and the audit figures are only present once the
// shift is closed.
type CashShift struct {
	ID           ID               `json:"_id"`
	TenantID     string           `json:"tenant_id"`
	BranchID     string           `json:"branch_id"`
	UserID       string           `json:"user_id"`
	Username     string           `json:"username"`
	OpenedAt     Timestamp        `json:"opened_at"`
	ClosedAt     *Timestamp       `json:"closed_at"`
	OpeningFloat decimal.Decimal  `json:"opening_float"`
	Movements    []CashMovement   `json:"movements"`
	Counted      *decimal.Decimal `json:"counted"`
	Denoms       []Denomination   `json:"denominations"`
	Expected     *decimal.Decimal `json:"expected"`
	Difference   *decimal.Decimal `json:"difference"`
	Status       string           `json:"status"`
	Notes        *string          `json:"notes"`

	// Close-time audit figures, backend-computed.
	ManualIns  *decimal.Decimal `json:"manual_ins"`
	ManualOuts *decimal.Decimal `json:"manual_outs"`
	CashSales  *decimal.Decimal `json:"cash_sales"`
}

// IsOpen reports whether the shift still accepts movements.
func (s *CashShift) IsOpen() bool {
	return s != nil && s.Status == ShiftOpen
}

// CashMovement is an immutable entry in a shift's ledger — movements are
// never edited or deleted once recorded.
type CashMovement struct {
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Note       *string         `json:"note"`
	Source     *string         `json:"source"`
	RefOrderID *string         `json:"ref_order_id"`
	At         Timestamp       `json:"at"`

	// Order is attached only by the enriched listing.
	Order *OrderSummary `json:"order,omitempty"`
}

// IsManual reports whether the movement was keyed in by an operator.
// Entries without a source predate the source field and are manual.
func (m *CashMovement) IsManual() bool {
	return m.Source == nil || *m.Source == SourceManual
}

// Denomination is one counted-cash row at close time.
type Denomination struct {
	Value decimal.Decimal `json:"value"`
	Qty   int64           `json:"qty"`
}

// OrderSummary is the order attachment carried by enriched movement rows.
type OrderSummary struct {
	ID            ID               `json:"_id"`
	OrderNumber   int64            `json:"order_number"`
	PaymentMethod string           `json:"payment_method"`
	CashAmount    *decimal.Decimal `json:"cash_amount"`
	CashChange    *decimal.Decimal `json:"cash_change"`
	Items         []OrderItem      `json:"items"`
	Total         decimal.Decimal  `json:"total"`
	CreatedAt     Timestamp        `json:"created_at"`
	Status        string           `json:"status"`
}

type OrderItem struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}
