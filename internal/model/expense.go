package model

import "github.com/shopspring/decimal"

// Expense is an out-of-shift operating cost. It contributes to the range
// account summary but never to a shift's own ledger.
type Expense struct {
	ID          ID              `json:"_id"`
	TenantID    string          `json:"tenant_id"`
	BranchID    string          `json:"branch_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    *string         `json:"category"`
	Date        Timestamp       `json:"date"`
	CreatedAt   Timestamp       `json:"created_at"`
	CreatedBy   *string         `json:"created_by"`
}
