package api

import (
	"context"

	"restopos/internal/bridge"
	"restopos/internal/dto"
)

// ReportAPI exposes the backend-computed report figures. The client composes
// and displays them; it never recomputes the sales aggregation itself.
type ReportAPI interface {
	SalesOverview(ctx context.Context, req dto.ReportRangeRequest) (*dto.SalesOverview, error)
	ProfitAndLoss(ctx context.Context, req dto.ReportRangeRequest) (*dto.ProfitLoss, error)
	MonthlyPnL(ctx context.Context, req dto.MonthlyPnLRequest) ([]dto.MonthPnL, error)
}

type reportAPI struct{ b bridge.Caller }

func NewReportAPI(b bridge.Caller) ReportAPI { return &reportAPI{b: b} }

func (a *reportAPI) SalesOverview(ctx context.Context, req dto.ReportRangeRequest) (*dto.SalesOverview, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var out dto.SalesOverview
	if err := a.b.Call(ctx, "report_sales_overview", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *reportAPI) ProfitAndLoss(ctx context.Context, req dto.ReportRangeRequest) (*dto.ProfitLoss, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var out dto.ProfitLoss
	if err := a.b.Call(ctx, "report_profit_and_loss", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *reportAPI) MonthlyPnL(ctx context.Context, req dto.MonthlyPnLRequest) ([]dto.MonthPnL, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var out []dto.MonthPnL
	if err := a.b.Call(ctx, "report_monthly_pnl", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}
