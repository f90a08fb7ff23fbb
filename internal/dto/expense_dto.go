package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// NewExpense is the payload nested inside an expense_create call.
type NewExpense struct {
	TenantID    string          `json:"tenant_id"   validate:"required"`
	BranchID    string          `json:"branch_id"   validate:"required"`
	Description string          `json:"description" validate:"required,min=3"`
	Amount      decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Category    *string         `json:"category"`
	Date        *string         `json:"date"        validate:"omitempty,datetime=2006-01-02"`
}

type ExpenseCreateRequest struct {
	SessionID string     `json:"session_id" validate:"required"`
	Payload   NewExpense `json:"payload"    validate:"required"`
}

type ExpenseDeleteRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	ExpenseID string `json:"expense_id" validate:"required"`
}

type ExpensesListRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	TenantID  string `json:"tenant_id"  validate:"required"`
	BranchID  string `json:"branch_id"  validate:"required"`
	FromDate  string `json:"from_date"  validate:"required,datetime=2006-01-02"`
	ToDate    string `json:"to_date"    validate:"required,datetime=2006-01-02"`
	Page      int64  `json:"page"       validate:"min=1"`
	PageSize  int64  `json:"page_size"  validate:"min=1,max=200"`
}
