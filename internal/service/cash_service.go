package service

import (
	"context"
	"sync"

	"restopos/internal/api"
	"restopos/internal/apierror"
	"restopos/internal/dto"
	"restopos/internal/model"
	"restopos/internal/session"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ShiftState is the controller's view of the till.
type ShiftState int

const (
	StateNoShift ShiftState = iota
	StateOpen
)

// CashController owns the active-shift view and gates every shift-mutating
// action. The backend stays the source of truth: each mutation is followed by
// a re-fetch instead of an optimistic local update, and a busy flag keeps a
// second click from firing a concurrent request while one is in flight.
type CashController struct {
	cash     api.CashAPI
	sessions *session.Manager

	// onSessionExpired fires after the session has been cleared; the UI is
	// expected to route back to login.
	onSessionExpired func()

	mu     sync.Mutex
	busy   bool
	active *model.CashShift
}

func NewCashController(cash api.CashAPI, sessions *session.Manager, onSessionExpired func()) *CashController {
	return &CashController{cash: cash, sessions: sessions, onSessionExpired: onSessionExpired}
}

// Active returns a snapshot of the loaded shift, or nil.
func (c *CashController) Active() *model.CashShift {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	cp := *c.active
	return &cp
}

func (c *CashController) State() ShiftState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active.IsOpen() {
		return StateOpen
	}
	return StateNoShift
}

// begin claims the single mutation slot. Callers must release() when done.
func (c *CashController) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return apierror.Rejected("Hay una operación en curso")
	}
	c.busy = true
	return nil
}

func (c *CashController) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *CashController) currentSession() (*session.Session, error) {
	s, ok := c.sessions.Current()
	if !ok {
		return nil, apierror.SessionInvalid("Sesión inválida o expirada")
	}
	return s, nil
}

// fail routes an API error through the taxonomy: an invalid session clears
// local session state and fires the logout hook, everything else passes
// through untouched.
func (c *CashController) fail(err error) error {
	if apierror.IsSessionInvalid(err) {
		if cerr := c.sessions.Clear(); cerr != nil {
			log.Error().Err(cerr).Msg("clearing session after invalidation")
		}
		c.mu.Lock()
		c.active = nil
		c.mu.Unlock()
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
	}
	return err
}

// Refresh re-fetches the active shift from the backend and adopts whatever it
// says, including "none open". Idempotent; used on load and after every
// mutation.
func (c *CashController) Refresh(ctx context.Context) (*model.CashShift, error) {
	sess, err := c.currentSession()
	if err != nil {
		return nil, c.fail(err)
	}
	shift, err := c.cash.GetActiveShift(ctx, dto.GetActiveShiftRequest{
		SessionID: sess.SessionID,
		TenantID:  sess.TenantID,
		BranchID:  sess.BranchID,
	})
	if err != nil {
		return nil, c.fail(err)
	}
	c.mu.Lock()
	c.active = shift
	c.mu.Unlock()
	return c.Active(), nil
}

// OpenShift opens a new shift with the given float. If a shift is already
// loaded the attempt is refused locally; if the backend rejects a duplicate
// open (another terminal won the race), the now-existing shift is fetched and
// adopted so the view converges, and the rejection is still surfaced.
func (c *CashController) OpenShift(ctx context.Context, openingFloat decimal.Decimal) (*model.CashShift, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.release()

	if c.Active().IsOpen() {
		return nil, apierror.Rejected("Ya existe una caja abierta")
	}
	sess, err := c.currentSession()
	if err != nil {
		return nil, c.fail(err)
	}

	_, err = c.cash.OpenShift(ctx, dto.OpenShiftRequest{
		SessionID:    sess.SessionID,
		TenantID:     sess.TenantID,
		BranchID:     sess.BranchID,
		OpeningFloat: openingFloat,
	})
	if err != nil {
		if apierror.IsRejected(err) {
			// Another client opened first; converge on its shift.
			if _, rerr := c.Refresh(ctx); rerr != nil {
				log.Warn().Err(rerr).Msg("refresh after rejected open failed")
			}
		}
		return c.Active(), c.fail(err)
	}
	return c.Refresh(ctx)
}

// PendingMovement is a movement awaiting explicit operator confirmation.
// Nothing is sent until Confirm; Cancel discards it. A registered movement is
// an audit entry that can never be edited or deleted.
type PendingMovement struct {
	c    *CashController
	req  dto.RegisterMovementRequest
	done bool
}

func (p *PendingMovement) Kind() string { return p.req.Kind }

func (p *PendingMovement) Amount() decimal.Decimal { return p.req.Amount }

func (p *PendingMovement) Note() string { return DisplayNote(p.req.Note) }

// BeginMovement validates a movement against the loaded shift and returns it
// pending confirmation. Validation failures never reach the backend.
func (c *CashController) BeginMovement(kind string, amount decimal.Decimal, note string) (*PendingMovement, error) {
	active := c.Active()
	if !active.IsOpen() {
		return nil, apierror.Rejected("No hay caja activa")
	}
	sess, err := c.currentSession()
	if err != nil {
		return nil, c.fail(err)
	}
	var notePtr *string
	if note != "" {
		notePtr = &note
	}
	req := dto.RegisterMovementRequest{
		SessionID: sess.SessionID,
		ShiftID:   active.ID.String(),
		Kind:      kind,
		Amount:    amount,
		Note:      notePtr,
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return &PendingMovement{c: c, req: req}, nil
}

// Confirm submits the movement and re-fetches the shift. When registration
// succeeds but the refresh fails, the movement is NOT rolled back — the
// ledger is backend-authoritative and the next successful refresh shows it.
func (p *PendingMovement) Confirm(ctx context.Context) error {
	if p.done {
		return apierror.Rejected("El movimiento ya fue resuelto")
	}
	if err := p.c.begin(); err != nil {
		return err
	}
	defer p.c.release()
	p.done = true

	if err := p.c.cash.RegisterMovement(ctx, p.req); err != nil {
		return p.c.fail(err)
	}
	if _, err := p.c.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("movement registered but refresh failed")
		return apierror.Transport("Movimiento registrado, pero no se pudo actualizar la caja")
	}
	return nil
}

// Cancel discards the pending movement without sending anything.
func (p *PendingMovement) Cancel() { p.done = true }

// PendingClose is a shift close awaiting explicit operator confirmation —
// closing is irreversible and blocks further movements.
type PendingClose struct {
	c    *CashController
	req  dto.CloseShiftRequest
	done bool
}

// CountedTotal previews Σ(value × qty) over the supplied rows, for the
// confirmation dialog.
func (p *PendingClose) CountedTotal() decimal.Decimal {
	return CountedTotal(p.req.Denominations)
}

// BeginClose validates a close against the loaded shift and returns it
// pending confirmation. Denominations are optional; rows with non-positive
// value or qty are dropped before submission.
func (c *CashController) BeginClose(denoms []model.Denomination, notes string) (*PendingClose, error) {
	active := c.Active()
	if !active.IsOpen() {
		return nil, apierror.Rejected("No hay caja activa")
	}
	sess, err := c.currentSession()
	if err != nil {
		return nil, c.fail(err)
	}
	clean := make([]model.Denomination, 0, len(denoms))
	for _, d := range denoms {
		if d.Qty > 0 && d.Value.IsPositive() {
			clean = append(clean, d)
		}
	}
	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}
	req := dto.CloseShiftRequest{
		SessionID:     sess.SessionID,
		ShiftID:       active.ID.String(),
		Denominations: clean,
		Notes:         notesPtr,
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return &PendingClose{c: c, req: req}, nil
}

// Confirm closes the shift and returns the reconciliation to display. On
// success the controller transitions to NO_SHIFT; on failure the shift
// remains open and the operator may retry.
func (p *PendingClose) Confirm(ctx context.Context) (*dto.ReconciliationSummary, error) {
	if p.done {
		return nil, apierror.Rejected("El cierre ya fue resuelto")
	}
	if err := p.c.begin(); err != nil {
		return nil, err
	}
	defer p.c.release()
	p.done = true

	closed, err := p.c.cash.CloseShift(ctx, p.req)
	if err != nil {
		return nil, p.c.fail(err)
	}
	p.c.mu.Lock()
	p.c.active = nil
	p.c.mu.Unlock()

	summary := SummaryFromClosedShift(closed)
	return &summary, nil
}

func (p *PendingClose) Cancel() { p.done = true }

// HistoryPager builds a pager over the shift history for the current
// operator's tenant/branch. Enriched listings attach order details to each
// ORDER-sourced movement.
func (c *CashController) HistoryPager(pageSize int64, enriched bool) *Pager[model.CashShift] {
	fetch := func(ctx context.Context, fromDate, toDate string, page, size int64) (*dto.Page[model.CashShift], error) {
		sess, err := c.currentSession()
		if err != nil {
			return nil, c.fail(err)
		}
		req := dto.ListShiftsRequest{
			SessionID: sess.SessionID,
			TenantID:  sess.TenantID,
			BranchID:  sess.BranchID,
			FromDate:  fromDate,
			ToDate:    toDate,
			Page:      page,
			PageSize:  size,
		}
		var res *dto.Page[model.CashShift]
		if enriched {
			res, err = c.cash.ListShiftsEnriched(ctx, req)
		} else {
			res, err = c.cash.ListShifts(ctx, req)
		}
		if err != nil {
			return nil, c.fail(err)
		}
		return res, nil
	}
	return NewPager(fetch, pageSize)
}
