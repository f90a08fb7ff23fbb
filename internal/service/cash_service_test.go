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

// ── Full in-memory CashAPI ───────────────────────────────────────────────────

type fakeCashAPI struct {
	shifts map[string]*model.CashShift

	// nextErr is returned by the next call, once. refreshErr only fails
	// GetActiveShift, for exercising post-mutation refresh failures.
	nextErr    error
	refreshErr error

	registerCalls int
	closeCalls    int
}

func newFakeCashAPI() *fakeCashAPI {
	return &fakeCashAPI{shifts: make(map[string]*model.CashShift)}
}

func (f *fakeCashAPI) takeErr() error {
	err := f.nextErr
	f.nextErr = nil
	return err
}

func (f *fakeCashAPI) open(tenantID, branchID string) *model.CashShift {
	for _, s := range f.shifts {
		if s.TenantID == tenantID && s.BranchID == branchID && s.Status == model.ShiftOpen {
			return s
		}
	}
	return nil
}

func (f *fakeCashAPI) OpenShift(_ context.Context, req dto.OpenShiftRequest) (*model.CashShift, error) {
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	if f.open(req.TenantID, req.BranchID) != nil {
		return nil, apierror.Rejected("Ya existe una caja abierta")
	}
	s := &model.CashShift{
		ID:           model.ID(uuid.NewString()),
		TenantID:     req.TenantID,
		BranchID:     req.BranchID,
		OpenedAt:     model.TimestampOf(time.Now()),
		OpeningFloat: req.OpeningFloat,
		Movements:    []model.CashMovement{},
		Status:       model.ShiftOpen,
	}
	f.shifts[s.ID.String()] = s
	return s, nil
}

func (f *fakeCashAPI) GetActiveShift(_ context.Context, req dto.GetActiveShiftRequest) (*model.CashShift, error) {
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	s := f.open(req.TenantID, req.BranchID)
	if s == nil {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeCashAPI) RegisterMovement(_ context.Context, req dto.RegisterMovementRequest) error {
	f.registerCalls++
	if err := f.takeErr(); err != nil {
		return err
	}
	s, ok := f.shifts[req.ShiftID]
	if !ok || s.Status != model.ShiftOpen {
		return apierror.Rejected("Caja no encontrada o ya cerrada")
	}
	source := model.SourceManual
	s.Movements = append(s.Movements, model.CashMovement{
		Kind:   req.Kind,
		Amount: req.Amount,
		Note:   req.Note,
		Source: &source,
		At:     model.TimestampOf(time.Now()),
	})
	return nil
}

func (f *fakeCashAPI) CloseShift(_ context.Context, req dto.CloseShiftRequest) (*model.CashShift, error) {
	f.closeCalls++
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	s, ok := f.shifts[req.ShiftID]
	if !ok || s.Status != model.ShiftOpen {
		return nil, apierror.Rejected("Caja no encontrada o ya cerrada")
	}
	ins := TotalByKind(s.Movements, model.MovementIn)
	outs := TotalByKind(s.Movements, model.MovementOut)
	expected := s.OpeningFloat.Add(ins).Sub(outs)
	counted := CountedTotal(req.Denominations)
	difference := counted.Sub(expected)
	zero := decimal.Zero
	closedAt := model.TimestampOf(time.Now())
	s.Status = model.ShiftClosed
	s.ClosedAt = &closedAt
	s.Denoms = req.Denominations
	s.Counted = &counted
	s.Expected = &expected
	s.Difference = &difference
	s.ManualIns = &ins
	s.ManualOuts = &outs
	s.CashSales = &zero
	cp := *s
	return &cp, nil
}

func (f *fakeCashAPI) ListShifts(_ context.Context, req dto.ListShiftsRequest) (*dto.Page[model.CashShift], error) {
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	rows := []model.CashShift{}
	for _, s := range f.shifts {
		rows = append(rows, *s)
	}
	return &dto.Page[model.CashShift]{Data: rows, Total: int64(len(rows)), Page: req.Page, PageSize: req.PageSize}, nil
}

func (f *fakeCashAPI) ListShiftsEnriched(ctx context.Context, req dto.ListShiftsRequest) (*dto.Page[model.CashShift], error) {
	return f.ListShifts(ctx, req)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func testSessions(t *testing.T) *session.Manager {
	t.Helper()
	m, err := session.NewManager(nil)
	require.NoError(t, err)
	require.NoError(t, m.Set(&session.Session{
		SessionID: uuid.NewString(),
		UserID:    "u1",
		Username:  "cajero",
		Role:      "CASHIER",
		TenantID:  "ELTITI1",
		BranchID:  "SUCURSAL1",
	}))
	return m
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestOpenShiftHappyPath(t *testing.T) {
	fake := newFakeCashAPI()
	c := NewCashController(fake, testSessions(t), nil)

	shift, err := c.OpenShift(context.Background(), decimal.NewFromInt(300))
	require.NoError(t, err)
	require.True(t, shift.IsOpen())
	assert.True(t, shift.OpeningFloat.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, StateOpen, c.State())
}

func TestOpenShiftRefusedWhenAlreadyLoaded(t *testing.T) {
	fake := newFakeCashAPI()
	c := NewCashController(fake, testSessions(t), nil)
	ctx := context.Background()

	_, err := c.OpenShift(ctx, decimal.NewFromInt(300))
	require.NoError(t, err)

	_, err = c.OpenShift(ctx, decimal.NewFromInt(300))
	require.Error(t, err)
	assert.True(t, apierror.IsRejected(err))
	assert.Equal(t, "Ya existe una caja abierta", err.Error())
}

func TestOpenShiftAdoptsWinnerOnRejectedRace(t *testing.T) {
	fake := newFakeCashAPI()
	sessions := testSessions(t)
	ctx := context.Background()

	// Another terminal opened first.
	other := NewCashController(fake, sessions, nil)
	winner, err := other.OpenShift(ctx, decimal.NewFromInt(300))
	require.NoError(t, err)

	c := NewCashController(fake, sessions, nil)
	shift, err := c.OpenShift(ctx, decimal.NewFromInt(300))
	require.Error(t, err)
	assert.True(t, apierror.IsRejected(err))
	// The rejection still surfaces, but the view converges on the
	// existing shift.
	require.NotNil(t, shift)
	assert.Equal(t, winner.ID, shift.ID)
	assert.Equal(t, StateOpen, c.State())
}

func TestMovementConfirmFlow(t *testing.T) {
	fake := newFakeCashAPI()
	c := NewCashController(fake, testSessions(t), nil)
	ctx := context.Background()

	_, err := c.OpenShift(ctx, decimal.NewFromInt(300))
	require.NoError(t, err)

	pending, err := c.BeginMovement(model.MovementIn, decimal.NewFromInt(50), "venta extra")
	require.NoError(t, err)
	assert.Equal(t, 0, fake.registerCalls, "nothing is sent before Confirm")

	require.NoError(t, pending.Confirm(ctx))
	assert.Equal(t, 1, fake.registerCalls)

	shift := c.Active()
	require.Len(t, shift.Movements, 1)
	assert.True(t, shift.Movements[0].Amount.Equal(decimal.NewFromInt(50)))

	// A resolved pending cannot fire twice.
	err = pending.Confirm(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, fake.registerCalls)
}

func TestMovementCancelSendsNothing(t *testing.T) {
	fake := newFakeCashAPI()
	c := NewCashController(fake, testSessions(t), nil)
	ctx := context.Background()

	_, err := c.OpenShift(ctx, decimal.NewFromInt(300))
	require.NoError(t, err)

	pending, err := c.BeginMovement(model.MovementOut, decimal.NewFromInt(20), "compra hielo")
	require.NoError(t, err)
	pending.Cancel()

	err = pending.Confirm(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, fake.registerCalls)
	assert.Empty(t, c.Active().Movements)
}

func TestBeginMovementValidation(t *testing.T) {
	fake := newFakeCashAPI()
	c := NewCashController(fake, testSessions(t), nil)
	ctx := context.Background()

	_, err := c.BeginMovement(model.MovementIn, decimal.NewFromInt(50), "")
	require.Error(t, err, "no active shift")

	_, err = c.OpenShift(ctx, decimal.NewFromInt(300))
	require.NoError(t, err)

	// Client-side validation: the backend never sees these.
	_, err = c.BeginMovement(model.MovementIn, decimal.Zero, "")
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))

	_, err = c.BeginMovement("TRANSFER", decimal.NewFromInt(10), "")
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	assert.Equal(t, 0, fake.registerCalls)
}

func TestMovementRegisteredButRefreshFails(t *testing.T) {
	fake := newFakeCashAPI()
	c := NewCashController(fake, testSessions(t), nil)
	ctx := context.Background()

	_, err := c.OpenShift(ctx, decimal.NewFromInt(300))
	require.NoError(t, err)

	pending, err := c.BeginMovement(model.MovementIn, decimal.NewFromInt(50), "")
	require.NoError(t, err)

	// Registration lands, the follow-up refresh does not. The movement is
	// not rolled back; the error says so.
	fake.refreshErr = apierror.Transport("Error de conexión con el backend")
	err = pending.Confirm(ctx)
	require.Error(t, err)
	assert.Equal(t, apierror.KindTransport, apierror.KindOf(err))
	assert.Equal(t, "Movimiento registrado, pero no se pudo actualizar la caja", err.Error())
	assert.Equal(t, 1, fake.registerCalls)

	// The next successful refresh shows the movement.
	fake.refreshErr = nil
	shift, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, shift.Movements, 1)
}

func TestCloseShiftConfirmFlow(t *testing.T) {
	fake := newFakeCashAPI()
	c := NewCashController(fake, testSessions(t), nil)
	ctx := context.Background()

	_, err := c.OpenShift(ctx, decimal.NewFromInt(300))
	require.NoError(t, err)

	in, err := c.BeginMovement(model.MovementIn, decimal.NewFromInt(50), "venta extra")
	require.NoError(t, err)
	require.NoError(t, in.Confirm(ctx))
	out, err := c.BeginMovement(model.MovementOut, decimal.NewFromInt(20), "compra hielo")
	require.NoError(t, err)
	require.NoError(t, out.Confirm(ctx))

	denoms := []model.Denomination{
		{Value: decimal.NewFromInt(100), Qty: 3},
		{Value: decimal.NewFromInt(10), Qty: 2},
		{Value: decimal.NewFromInt(50), Qty: 0}, // untouched row is dropped
	}
	pending, err := c.BeginClose(denoms, "turno tarde")
	require.NoError(t, err)
	assert.True(t, pending.CountedTotal().Equal(decimal.NewFromInt(320)))
	assert.Equal(t, 0, fake.closeCalls)

	summary, err := pending.Confirm(ctx)
	require.NoError(t, err)
	assert.True(t, summary.Expected.Equal(decimal.NewFromInt(330)), "300 + 50 − 20")
	assert.True(t, summary.Counted.Equal(decimal.NewFromInt(320)))
	assert.True(t, summary.Difference.Equal(decimal.NewFromInt(-10)))
	assert.True(t, summary.HasCount)
	assert.True(t, summary.Ingresos.Equal(decimal.NewFromInt(50)))
	assert.True(t, summary.Egresos.Equal(decimal.NewFromInt(20)))
	assert.True(t, summary.Neto.Equal(decimal.NewFromInt(30)))

	assert.Equal(t, StateNoShift, c.State())
	assert.Nil(t, c.Active())
}

func TestCloseShiftSecondAttemptRejected(t *testing.T) {
	fake := newFakeCashAPI()
	c := NewCashController(fake, testSessions(t), nil)
	ctx := context.Background()

	_, err := c.OpenShift(ctx, decimal.NewFromInt(300))
	require.NoError(t, err)

	pending, err := c.BeginClose(nil, "")
	require.NoError(t, err)
	_, err = pending.Confirm(ctx)
	require.NoError(t, err)

	_, err = pending.Confirm(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, fake.closeCalls)
}

func TestSessionInvalidClearsSessionAndFiresHook(t *testing.T) {
	fake := newFakeCashAPI()
	sessions := testSessions(t)
	fired := false
	c := NewCashController(fake, sessions, func() { fired = true })
	ctx := context.Background()

	fake.nextErr = apierror.SessionInvalid("Sesión inválida o expirada")
	_, err := c.Refresh(ctx)
	require.Error(t, err)
	assert.True(t, apierror.IsSessionInvalid(err))
	assert.True(t, fired)

	_, ok := sessions.Current()
	assert.False(t, ok, "local session is cleared")
	assert.Equal(t, StateNoShift, c.State())
}

func TestRejectedErrorKeepsSession(t *testing.T) {
	fake := newFakeCashAPI()
	sessions := testSessions(t)
	fired := false
	c := NewCashController(fake, sessions, func() { fired = true })

	fake.nextErr = apierror.Rejected("Caja no encontrada o ya cerrada")
	_, err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.False(t, fired)
	_, ok := sessions.Current()
	assert.True(t, ok)
}

func TestHistoryPagerUsesOperatorScope(t *testing.T) {
	fake := newFakeCashAPI()
	c := NewCashController(fake, testSessions(t), nil)
	ctx := context.Background()

	_, err := c.OpenShift(ctx, decimal.NewFromInt(300))
	require.NoError(t, err)

	pager := c.HistoryPager(10, false)
	require.NoError(t, pager.SetRange(ctx, "2025-05-01", "2025-05-31"))
	assert.Equal(t, int64(1), pager.Total())
}
