package service

import (
	"context"
	"testing"
	"time"

	"restopos/internal/apierror"
	"restopos/internal/dto"
	"restopos/internal/model"
	"restopos/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory ExpenseAPI ─────────────────────────────────────────────────────

type fakeExpenseAPI struct {
	rows    []model.Expense
	deleted []string
}

func (f *fakeExpenseAPI) List(_ context.Context, req dto.ExpensesListRequest) (*dto.Page[model.Expense], error) {
	start := (req.Page - 1) * req.PageSize
	out := []model.Expense{}
	if start < int64(len(f.rows)) {
		end := start + req.PageSize
		if end > int64(len(f.rows)) {
			end = int64(len(f.rows))
		}
		out = f.rows[start:end]
	}
	return &dto.Page[model.Expense]{Data: out, Total: int64(len(f.rows)), Page: req.Page, PageSize: req.PageSize}, nil
}

func (f *fakeExpenseAPI) Create(_ context.Context, req dto.ExpenseCreateRequest) (*model.Expense, error) {
	e := model.Expense{
		ID:          model.ID(uuid.NewString()),
		TenantID:    req.Payload.TenantID,
		BranchID:    req.Payload.BranchID,
		Description: req.Payload.Description,
		Amount:      req.Payload.Amount,
		Category:    req.Payload.Category,
		Date:        model.TimestampOf(time.Now()),
	}
	f.rows = append(f.rows, e)
	return &e, nil
}

func (f *fakeExpenseAPI) Delete(_ context.Context, req dto.ExpenseDeleteRequest) error {
	f.deleted = append(f.deleted, req.ExpenseID)
	return nil
}

func expenseRows(amounts ...float64) []model.Expense {
	out := make([]model.Expense, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, model.Expense{
			ID:     model.ID(uuid.NewString()),
			Amount: decimal.NewFromFloat(a),
			Date:   model.TimestampOf(time.Now()),
		})
	}
	return out
}

func adminSessions(t *testing.T) *session.Manager {
	t.Helper()
	m := testSessions(t)
	cur, _ := m.Current()
	cur.Role = session.RoleAdmin
	require.NoError(t, m.Set(cur))
	return m
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestExpenseDeleteRequiresAdmin(t *testing.T) {
	fake := &fakeExpenseAPI{}
	ctx := context.Background()

	cashier := NewExpenseService(fake, testSessions(t))
	err := cashier.Delete(ctx, "e1")
	require.Error(t, err)
	assert.True(t, apierror.IsRejected(err))
	assert.Equal(t, "No autorizado: requiere rol ADMIN", err.Error())
	assert.Empty(t, fake.deleted, "the gate is client-side too: nothing is sent")

	admin := NewExpenseService(fake, adminSessions(t))
	require.NoError(t, admin.Delete(ctx, "e1"))
	assert.Equal(t, []string{"e1"}, fake.deleted)
}

func TestExpenseCreateUsesOperatorScope(t *testing.T) {
	fake := &fakeExpenseAPI{}
	svc := NewExpenseService(fake, testSessions(t))

	e, err := svc.Create(context.Background(), "gas para la cocina", decimal.NewFromInt(120), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ELTITI1", e.TenantID)
	assert.Equal(t, "SUCURSAL1", e.BranchID)
}

func TestExpenseTotalForRangeWalksAllPages(t *testing.T) {
	// 450 rows of 2 each: three pages at the internal page size of 200.
	amounts := make([]float64, 450)
	for i := range amounts {
		amounts[i] = 2
	}
	fake := &fakeExpenseAPI{rows: expenseRows(amounts...)}
	svc := NewExpenseService(fake, testSessions(t))

	total, err := svc.TotalForRange(context.Background(), "2025-05-01", "2025-05-31")
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(900)))
}

func TestExpenseServiceWithoutSession(t *testing.T) {
	m, err := session.NewManager(nil)
	require.NoError(t, err)
	svc := NewExpenseService(&fakeExpenseAPI{}, m)

	_, err = svc.Create(context.Background(), "x", decimal.NewFromInt(1), nil, nil)
	require.Error(t, err)
	assert.True(t, apierror.IsSessionInvalid(err))
}

func TestEstadoDeCuentas(t *testing.T) {
	sessions := testSessions(t)
	cashFake := newFakeCashAPI()
	expenseFake := &fakeExpenseAPI{rows: expenseRows(60, 40)}

	// Two closed shifts with backend audit figures.
	zero := decimal.Zero
	for _, figures := range []struct{ sales, ins, outs float64 }{
		{400, 50, 20},
		{100, 0, 30},
	} {
		sales := decimal.NewFromFloat(figures.sales)
		ins := decimal.NewFromFloat(figures.ins)
		outs := decimal.NewFromFloat(figures.outs)
		id := uuid.NewString()
		cashFake.shifts[id] = &model.CashShift{
			ID:         model.ID(id),
			TenantID:   "ELTITI1",
			BranchID:   "SUCURSAL1",
			Status:     model.ShiftClosed,
			CashSales:  &sales,
			ManualIns:  &ins,
			ManualOuts: &outs,
			Counted:    &zero,
		}
	}

	expenseSvc := NewExpenseService(expenseFake, sessions)
	svc := NewReportService(nil, cashFake, expenseSvc, sessions)

	out, err := svc.EstadoDeCuentas(context.Background(), "2025-05-01", "2025-05-31")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Shifts)
	assert.True(t, out.Ingresos.Equal(decimal.NewFromInt(550)))
	assert.True(t, out.Egresos.Equal(decimal.NewFromInt(50)))
	assert.True(t, out.Neto.Equal(decimal.NewFromInt(500)))
	assert.True(t, out.OtrosEgresos.Equal(decimal.NewFromInt(100)))
	assert.True(t, out.Balance.Equal(decimal.NewFromInt(400)))
}
