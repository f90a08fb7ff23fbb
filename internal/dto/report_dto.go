package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ReportRangeRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	TenantID  string `json:"tenant_id"  validate:"required"`
	BranchID  string `json:"branch_id"  validate:"required"`
	FromDate  string `json:"from_date"  validate:"required,datetime=2006-01-02"`
	ToDate    string `json:"to_date"    validate:"required,datetime=2006-01-02"`
}

type MonthlyPnLRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	TenantID  string `json:"tenant_id"  validate:"required"`
	BranchID  string `json:"branch_id"  validate:"required"`
	Year      int    `json:"year"       validate:"required,min=2000,max=2100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────
// All figures are backend-computed; the client only composes and displays.

type MethodTotal struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type Point struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type TopProduct struct {
	Name  string          `json:"name"`
	Qty   int64           `json:"qty"`
	Sales decimal.Decimal `json:"sales"`
}

type SalesOverview struct {
	TotalSales  decimal.Decimal `json:"total_sales"`
	Orders      int64           `json:"orders"`
	AvgTicket   decimal.Decimal `json:"avg_ticket"`
	ByMethod    []MethodTotal   `json:"by_method"`
	ByCategory  []CategoryTotal `json:"by_category"`
	Timeseries  []Point         `json:"timeseries"`
	TopProducts []TopProduct    `json:"top_products"`
}

type ProfitLoss struct {
	Ingresos       decimal.Decimal `json:"ingresos"`
	Egresos        decimal.Decimal `json:"egresos"`
	Neto           decimal.Decimal `json:"neto"`
	IngresosSeries []Point         `json:"ingresos_series"`
	EgresosSeries  []Point         `json:"egresos_series"`
}

type MonthPnL struct {
	Month    string          `json:"month"` // "2025-01"
	Ingresos decimal.Decimal `json:"ingresos"`
	Egresos  decimal.Decimal `json:"egresos"`
	Neto     decimal.Decimal `json:"neto"`
}
