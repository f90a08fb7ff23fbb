package service

import (
	"context"

	"restopos/internal/api"
	"restopos/internal/apierror"
	"restopos/internal/dto"
	"restopos/internal/model"
	"restopos/internal/session"

	"github.com/shopspring/decimal"
)

// ExpenseService drives the out-of-shift expense panel: an independently
// paginated list plus create/delete. Deleting is admin-gated client-side the
// same way the admin-only links are; the backend enforces it regardless.
type ExpenseService struct {
	expenses api.ExpenseAPI
	sessions *session.Manager
}

func NewExpenseService(expenses api.ExpenseAPI, sessions *session.Manager) *ExpenseService {
	return &ExpenseService{expenses: expenses, sessions: sessions}
}

func (s *ExpenseService) currentSession() (*session.Session, error) {
	sess, ok := s.sessions.Current()
	if !ok {
		return nil, apierror.SessionInvalid("Sesión inválida o expirada")
	}
	return sess, nil
}

// Pager builds an expense pager scoped to the operator's tenant/branch.
func (s *ExpenseService) Pager(pageSize int64) *Pager[model.Expense] {
	fetch := func(ctx context.Context, fromDate, toDate string, page, size int64) (*dto.Page[model.Expense], error) {
		sess, err := s.currentSession()
		if err != nil {
			return nil, err
		}
		return s.expenses.List(ctx, dto.ExpensesListRequest{
			SessionID: sess.SessionID,
			TenantID:  sess.TenantID,
			BranchID:  sess.BranchID,
			FromDate:  fromDate,
			ToDate:    toDate,
			Page:      page,
			PageSize:  size,
		})
	}
	return NewPager(fetch, pageSize)
}

func (s *ExpenseService) Create(ctx context.Context, description string, amount decimal.Decimal, category *string, date *string) (*model.Expense, error) {
	sess, err := s.currentSession()
	if err != nil {
		return nil, err
	}
	return s.expenses.Create(ctx, dto.ExpenseCreateRequest{
		SessionID: sess.SessionID,
		Payload: dto.NewExpense{
			TenantID:    sess.TenantID,
			BranchID:    sess.BranchID,
			Description: description,
			Amount:      amount,
			Category:    category,
			Date:        date,
		},
	})
}

func (s *ExpenseService) Delete(ctx context.Context, expenseID string) error {
	sess, err := s.currentSession()
	if err != nil {
		return err
	}
	if !sess.IsAdmin() {
		return apierror.Rejected("No autorizado: requiere rol ADMIN")
	}
	return s.expenses.Delete(ctx, dto.ExpenseDeleteRequest{
		SessionID: sess.SessionID,
		ExpenseID: expenseID,
	})
}

// TotalForRange walks every expense page in the range and sums the amounts —
// the otros_egresos input to the range account summary.
func (s *ExpenseService) TotalForRange(ctx context.Context, fromDate, toDate string) (decimal.Decimal, error) {
	const pageSize = 200
	total := decimal.Zero
	for page := int64(1); ; page++ {
		sess, err := s.currentSession()
		if err != nil {
			return decimal.Zero, err
		}
		res, err := s.expenses.List(ctx, dto.ExpensesListRequest{
			SessionID: sess.SessionID,
			TenantID:  sess.TenantID,
			BranchID:  sess.BranchID,
			FromDate:  fromDate,
			ToDate:    toDate,
			Page:      page,
			PageSize:  pageSize,
		})
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(ExpenseTotal(res.Data))
		if page*pageSize >= res.Total || len(res.Data) == 0 {
			return total, nil
		}
	}
}
