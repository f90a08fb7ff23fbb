package dto

import (
	"restopos/internal/model"

	"github.com/shopspring/decimal"
)

// All cash calls take snake_case arguments — variants of the old client mixed
// camelCase and snake_case per call, so the convention is enforced here, once.

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenShiftRequest struct {
	SessionID    string          `json:"session_id"    validate:"required"`
	TenantID     string          `json:"tenant_id"     validate:"required"`
	BranchID     string          `json:"branch_id"     validate:"required"`
	OpeningFloat decimal.Decimal `json:"opening_float" validate:"min=0"`
}

type GetActiveShiftRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	TenantID  string `json:"tenant_id"  validate:"required"`
	BranchID  string `json:"branch_id"  validate:"required"`
}

type RegisterMovementRequest struct {
	SessionID string          `json:"session_id" validate:"required"`
	ShiftID   string          `json:"shift_id"   validate:"required"`
	Kind      string          `json:"kind"       validate:"required,oneof=IN OUT"`
	Amount    decimal.Decimal `json:"amount"     validate:"required,gt=0"`
	Note      *string         `json:"note"`
}

type CloseShiftRequest struct {
	SessionID     string               `json:"session_id" validate:"required"`
	ShiftID       string               `json:"shift_id"   validate:"required"`
	Denominations []model.Denomination `json:"denominations"`
	Notes         *string              `json:"notes"`
}

type ListShiftsRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	TenantID  string `json:"tenant_id"  validate:"required"`
	BranchID  string `json:"branch_id"  validate:"required"`
	FromDate  string `json:"from_date"  validate:"required,datetime=2006-01-02"`
	ToDate    string `json:"to_date"    validate:"required,datetime=2006-01-02"`
	Page      int64  `json:"page"       validate:"min=1"`
	PageSize  int64  `json:"page_size"  validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// Page is the uniform paginated envelope for list calls.
type Page[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int64 `json:"page"`
	PageSize int64 `json:"page_size"`
}

// ReconciliationSummary is what the operator sees after a close. Counted /
// Difference only carry meaning when denominations were supplied; the
// ingresos/egresos/neto figures are always present.
type ReconciliationSummary struct {
	Counted    decimal.Decimal `json:"counted"`
	Expected   decimal.Decimal `json:"expected"`
	Difference decimal.Decimal `json:"difference"`
	Ingresos   decimal.Decimal `json:"ingresos"`
	Egresos    decimal.Decimal `json:"egresos"`
	Neto       decimal.Decimal `json:"neto"`
	// HasCount reports whether a denomination count was supplied at close.
	HasCount bool `json:"-"`
}
