package service

import (
	"context"

	"restopos/internal/api"
	"restopos/internal/apierror"
	"restopos/internal/dto"
	"restopos/internal/model"
	"restopos/internal/session"
)

// ReportService surfaces the backend-computed report figures and composes
// the cross-entity "estado de cuentas" for a date range.
type ReportService struct {
	reports  api.ReportAPI
	cash     api.CashAPI
	expenses *ExpenseService
	sessions *session.Manager
}

func NewReportService(reports api.ReportAPI, cash api.CashAPI, expenses *ExpenseService, sessions *session.Manager) *ReportService {
	return &ReportService{reports: reports, cash: cash, expenses: expenses, sessions: sessions}
}

func (s *ReportService) currentSession() (*session.Session, error) {
	sess, ok := s.sessions.Current()
	if !ok {
		return nil, apierror.SessionInvalid("Sesión inválida o expirada")
	}
	return sess, nil
}

func (s *ReportService) rangeRequest(fromDate, toDate string) (dto.ReportRangeRequest, error) {
	sess, err := s.currentSession()
	if err != nil {
		return dto.ReportRangeRequest{}, err
	}
	return dto.ReportRangeRequest{
		SessionID: sess.SessionID,
		TenantID:  sess.TenantID,
		BranchID:  sess.BranchID,
		FromDate:  fromDate,
		ToDate:    toDate,
	}, nil
}

func (s *ReportService) SalesOverview(ctx context.Context, fromDate, toDate string) (*dto.SalesOverview, error) {
	req, err := s.rangeRequest(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return s.reports.SalesOverview(ctx, req)
}

func (s *ReportService) ProfitAndLoss(ctx context.Context, fromDate, toDate string) (*dto.ProfitLoss, error) {
	req, err := s.rangeRequest(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return s.reports.ProfitAndLoss(ctx, req)
}

func (s *ReportService) MonthlyPnL(ctx context.Context, year int) ([]dto.MonthPnL, error) {
	sess, err := s.currentSession()
	if err != nil {
		return nil, err
	}
	return s.reports.MonthlyPnL(ctx, dto.MonthlyPnLRequest{
		SessionID: sess.SessionID,
		TenantID:  sess.TenantID,
		BranchID:  sess.BranchID,
		Year:      year,
	})
}

// EstadoDeCuentas sums the per-shift reconciliations over the range and folds
// in the expense total: balance = neto_total − otros_egresos.
func (s *ReportService) EstadoDeCuentas(ctx context.Context, fromDate, toDate string) (*RangeSummary, error) {
	const pageSize = 200

	var shifts []model.CashShift
	for page := int64(1); ; page++ {
		sess, err := s.currentSession()
		if err != nil {
			return nil, err
		}
		res, err := s.cash.ListShifts(ctx, dto.ListShiftsRequest{
			SessionID: sess.SessionID,
			TenantID:  sess.TenantID,
			BranchID:  sess.BranchID,
			FromDate:  fromDate,
			ToDate:    toDate,
			Page:      page,
			PageSize:  pageSize,
		})
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, res.Data...)
		if page*pageSize >= res.Total || len(res.Data) == 0 {
			break
		}
	}

	otros, err := s.expenses.TotalForRange(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	summary := SummarizeRange(shifts, otros)
	return &summary, nil
}
