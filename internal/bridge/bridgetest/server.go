// Package bridgetest runs an in-memory backend speaking the named-call
// contract, for exercising the bridge, API and workflow layers in tests
// without a real server. State lives in maps; semantics mirror the real
// backend where the client's behavior depends on them (single open shift per
// branch, immutable movements, close-time reconciliation).
package bridgetest

import (
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"restopos/internal/dto"
	"restopos/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type errBody struct {
	Detail string `json:"detail"`
}

type account struct {
	Password string
	Role     string
	UserID   string
}

// Server is the fake backend. Zero value is not usable; call New.
type Server struct {
	mu sync.Mutex

	tenantID string
	branchID string

	users    map[string]account // username → account
	sessions map[string]*dto.SessionView

	shifts   []*model.CashShift
	expenses []*model.Expense

	// cashSales is what the "orders aggregation" reports at close time.
	cashSales decimal.Decimal

	now func() time.Time

	ts *httptest.Server
}

// New starts the fake backend with one cashier and one admin account
// (cajero/cajero123, admin/admin123) under the given tenant/branch.
func New(tenantID, branchID string) *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		users: map[string]account{
			"cajero": {Password: "cajero123", Role: "CASHIER", UserID: newHexID()},
			"admin":  {Password: "admin123", Role: "ADMIN", UserID: newHexID()},
		},
		sessions:  make(map[string]*dto.SessionView),
		cashSales: decimal.Zero,
		now:       time.Now,
	}
	s.tenantID = tenantID
	s.branchID = branchID

	r := gin.New()
	r.POST("/invoke/:name", s.invoke)
	s.ts = httptest.NewServer(r)
	return s
}

func (s *Server) URL() string { return s.ts.URL }

func (s *Server) Close() { s.ts.Close() }

// SetCashSales fixes the order-derived cash sales the next close reports.
func (s *Server) SetCashSales(d decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cashSales = d
}

// SetNow overrides the clock, for deterministic timestamps.
func (s *Server) SetNow(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = fn
}

// LoginAs creates a session directly, bypassing the login call.
func (s *Server) LoginAs(username string) *dto.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.users[username]
	view := &dto.SessionView{
		SessionID: uuid.NewString(),
		UserID:    acc.UserID,
		Username:  username,
		Role:      acc.Role,
		TenantID:  s.tenantID,
		BranchID:  s.branchID,
		ExpiresAt: s.now().Add(8 * time.Hour).Unix(),
	}
	s.sessions[view.SessionID] = view
	return view
}

// RevokeSession invalidates a session so the next call fails with 401.
func (s *Server) RevokeSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func newHexID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:12])
}

func reject(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errBody{Detail: msg})
}

func (s *Server) requireSession(c *gin.Context, sessionID string) *dto.SessionView {
	sess, ok := s.sessions[sessionID]
	if !ok {
		c.JSON(http.StatusUnauthorized, errBody{Detail: "Sesión inválida o expirada"})
		return nil
	}
	return sess
}

func (s *Server) invoke(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch c.Param("name") {
	case "login":
		s.login(c)
	case "logout":
		s.logout(c)
	case "cash_open_shift":
		s.openShift(c)
	case "cash_get_active_shift":
		s.getActiveShift(c)
	case "cash_register_movement":
		s.registerMovement(c)
	case "cash_close_shift":
		s.closeShift(c)
	case "cash_list_shifts", "cash_list_shifts_enriched":
		s.listShifts(c)
	case "expenses_list":
		s.listExpenses(c)
	case "expense_create":
		s.createExpense(c)
	case "expense_delete":
		s.deleteExpense(c)
	case "report_sales_overview":
		s.salesOverview(c)
	case "report_profit_and_loss":
		s.profitAndLoss(c)
	case "report_monthly_pnl":
		s.monthlyPnL(c)
	default:
		reject(c, "llamada desconocida: "+c.Param("name"))
	}
}

func (s *Server) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "JSON invalido")
		return
	}
	acc, ok := s.users[req.Username]
	if !ok || acc.Password != req.Password {
		reject(c, "Credenciales inválidas")
		return
	}
	view := &dto.SessionView{
		SessionID: uuid.NewString(),
		UserID:    acc.UserID,
		Username:  req.Username,
		Role:      acc.Role,
		TenantID:  req.TenantID,
		BranchID:  req.BranchID,
		ExpiresAt: s.now().Add(8 * time.Hour).Unix(),
	}
	s.sessions[view.SessionID] = view
	c.JSON(http.StatusOK, view)
}

func (s *Server) logout(c *gin.Context) {
	var req dto.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "JSON invalido")
		return
	}
	delete(s.sessions, req.SessionID)
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) findOpenShift(tenantID, branchID string) *model.CashShift {
	for _, sh := range s.shifts {
		if sh.TenantID == tenantID && sh.BranchID == branchID && sh.Status == model.ShiftOpen {
			return sh
		}
	}
	return nil
}

func (s *Server) findShift(id string) *model.CashShift {
	for _, sh := range s.shifts {
		if sh.ID.String() == id {
			return sh
		}
	}
	return nil
}

func (s *Server) openShift(c *gin.Context) {
	var req dto.OpenShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "JSON invalido")
		return
	}
	sess := s.requireSession(c, req.SessionID)
	if sess == nil {
		return
	}
	if req.OpeningFloat.IsNegative() {
		reject(c, "Monto de apertura inválido")
		return
	}
	if s.findOpenShift(req.TenantID, req.BranchID) != nil {
		reject(c, "Ya existe una caja abierta")
		return
	}
	shift := &model.CashShift{
		ID:           model.ID(newHexID()),
		TenantID:     req.TenantID,
		BranchID:     req.BranchID,
		UserID:       sess.UserID,
		Username:     sess.Username,
		OpenedAt:     model.TimestampOf(s.now()),
		OpeningFloat: req.OpeningFloat,
		Movements:    []model.CashMovement{},
		Status:       model.ShiftOpen,
	}
	s.shifts = append(s.shifts, shift)
	c.JSON(http.StatusOK, shift)
}

func (s *Server) getActiveShift(c *gin.Context) {
	var req dto.GetActiveShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "JSON invalido")
		return
	}
	if s.requireSession(c, req.SessionID) == nil {
		return
	}
	shift := s.findOpenShift(req.TenantID, req.BranchID)
	if shift == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (s *Server) registerMovement(c *gin.Context) {
	var req dto.RegisterMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "JSON invalido")
		return
	}
	if s.requireSession(c, req.SessionID) == nil {
		return
	}
	if req.Kind != model.MovementIn && req.Kind != model.MovementOut {
		reject(c, "kind inválido")
		return
	}
	if !req.Amount.IsPositive() {
		reject(c, "Monto inválido")
		return
	}
	shift := s.findShift(req.ShiftID)
	if shift == nil || shift.Status != model.ShiftOpen {
		reject(c, "Caja no encontrada o ya cerrada")
		return
	}
	source := model.SourceManual
	shift.Movements = append(shift.Movements, model.CashMovement{
		Kind:   req.Kind,
		Amount: req.Amount,
		Note:   req.Note,
		Source: &source,
		At:     model.TimestampOf(s.now()),
	})
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) closeShift(c *gin.Context) {
	var req dto.CloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "JSON invalido")
		return
	}
	if s.requireSession(c, req.SessionID) == nil {
		return
	}
	shift := s.findShift(req.ShiftID)
	if shift == nil || shift.Status != model.ShiftOpen {
		reject(c, "Caja no encontrada o ya cerrada")
		return
	}

	manualIns, manualOuts := decimal.Zero, decimal.Zero
	for _, m := range shift.Movements {
		if !m.IsManual() {
			continue
		}
		switch m.Kind {
		case model.MovementIn:
			manualIns = manualIns.Add(m.Amount)
		case model.MovementOut:
			manualOuts = manualOuts.Add(m.Amount)
		}
	}

	expected := shift.OpeningFloat.Add(s.cashSales).Add(manualIns).Sub(manualOuts)
	counted := decimal.Zero
	for _, d := range req.Denominations {
		if d.Qty > 0 && d.Value.IsPositive() {
			counted = counted.Add(d.Value.Mul(decimal.NewFromInt(d.Qty)))
		}
	}
	difference := counted.Sub(expected)

	closedAt := model.TimestampOf(s.now())
	cashSales := s.cashSales
	shift.ClosedAt = &closedAt
	shift.Denoms = req.Denominations
	shift.Counted = &counted
	shift.Expected = &expected
	shift.Difference = &difference
	shift.Status = model.ShiftClosed
	shift.Notes = req.Notes
	shift.ManualIns = &manualIns
	shift.ManualOuts = &manualOuts
	shift.CashSales = &cashSales

	c.JSON(http.StatusOK, shift)
}

func parseDay(day string, end bool) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return time.Time{}, false
	}
	if end {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, true
}

func (s *Server) listShifts(c *gin.Context) {
	var req dto.ListShiftsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "JSON invalido")
		return
	}
	if s.requireSession(c, req.SessionID) == nil {
		return
	}
	from, okFrom := parseDay(req.FromDate, false)
	to, okTo := parseDay(req.ToDate, true)
	if !okFrom || !okTo {
		reject(c, "from_date inválido")
		return
	}

	var matched []model.CashShift
	for i := len(s.shifts) - 1; i >= 0; i-- { // newest first
		sh := s.shifts[i]
		if sh.TenantID != req.TenantID || sh.BranchID != req.BranchID {
			continue
		}
		if sh.OpenedAt.Before(from) || sh.OpenedAt.After(to) {
			continue
		}
		cp := *sh
		ins := decimal.Zero
		outs := decimal.Zero
		for _, m := range cp.Movements {
			switch m.Kind {
			case model.MovementIn:
				ins = ins.Add(m.Amount)
			case model.MovementOut:
				outs = outs.Add(m.Amount)
			}
		}
		cp.ManualIns = &ins
		cp.ManualOuts = &outs
		matched = append(matched, cp)
	}

	page, size := clampPage(req.Page, req.PageSize)
	c.JSON(http.StatusOK, paginate(matched, page, size))
}

func clampPage(page, size int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 200 {
		size = 200
	}
	return page, size
}

func paginate[T any](rows []T, page, size int64) dto.Page[T] {
	total := int64(len(rows))
	start := (page - 1) * size
	out := []T{}
	if start < total {
		end := start + size
		if end > total {
			end = total
		}
		out = rows[start:end]
	}
	return dto.Page[T]{Data: out, Total: total, Page: page, PageSize: size}
}

func (s *Server) listExpenses(c *gin.Context) {
	var req dto.ExpensesListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "JSON invalido")
		return
	}
	if s.requireSession(c, req.SessionID) == nil {
		return
	}
	from, okFrom := parseDay(req.FromDate, false)
	to, okTo := parseDay(req.ToDate, true)
	if !okFrom || !okTo {
		reject(c, "from_date inválido")
		return
	}
	var matched []model.Expense
	for i := len(s.expenses) - 1; i >= 0; i-- {
		e := s.expenses[i]
		if e.TenantID != req.TenantID || e.BranchID != req.BranchID {
			continue
		}
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		matched = append(matched, *e)
	}
	page, size := clampPage(req.Page, req.PageSize)
	c.JSON(http.StatusOK, paginate(matched, page, size))
}

func (s *Server) createExpense(c *gin.Context) {
	var req dto.ExpenseCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "JSON invalido")
		return
	}
	sess := s.requireSession(c, req.SessionID)
	if sess == nil {
		return
	}
	if !req.Payload.Amount.IsPositive() {
		reject(c, "Monto inválido")
		return
	}
	if strings.TrimSpace(req.Payload.Description) == "" {
		reject(c, "Descripción requerida")
		return
	}
	date := model.TimestampOf(s.now())
	if req.Payload.Date != nil {
		if d, ok := parseDay(*req.Payload.Date, false); ok {
			date = model.TimestampOf(d)
		}
	}
	e := &model.Expense{
		ID:          model.ID(newHexID()),
		TenantID:    req.Payload.TenantID,
		BranchID:    req.Payload.BranchID,
		Description: req.Payload.Description,
		Amount:      req.Payload.Amount,
		Category:    req.Payload.Category,
		Date:        date,
		CreatedAt:   model.TimestampOf(s.now()),
		CreatedBy:   &sess.Username,
	}
	s.expenses = append(s.expenses, e)
	c.JSON(http.StatusOK, e)
}

func (s *Server) deleteExpense(c *gin.Context) {
	var req dto.ExpenseDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "JSON invalido")
		return
	}
	sess := s.requireSession(c, req.SessionID)
	if sess == nil {
		return
	}
	if sess.Role != "ADMIN" {
		reject(c, "No autorizado: requiere rol ADMIN")
		return
	}
	for i, e := range s.expenses {
		if e.ID.String() == req.ExpenseID {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			c.JSON(http.StatusOK, gin.H{})
			return
		}
	}
	reject(c, "expense_id inválido")
}

// closedIncome sums the backend-side income of closed shifts in [from, to]:
// the order-derived cash sales plus manual ins.
func (s *Server) closedIncome(tenantID, branchID string, from, to time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, sh := range s.shifts {
		if sh.TenantID != tenantID || sh.BranchID != branchID || sh.Status != model.ShiftClosed {
			continue
		}
		if sh.OpenedAt.Before(from) || sh.OpenedAt.After(to) {
			continue
		}
		if sh.CashSales != nil {
			total = total.Add(*sh.CashSales)
		}
		if sh.ManualIns != nil {
			total = total.Add(*sh.ManualIns)
		}
	}
	return total
}

func (s *Server) expenseSum(tenantID, branchID string, from, to time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.expenses {
		if e.TenantID != tenantID || e.BranchID != branchID {
			continue
		}
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total
}

func (s *Server) salesOverview(c *gin.Context) {
	var req dto.ReportRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "JSON invalido")
		return
	}
	if s.requireSession(c, req.SessionID) == nil {
		return
	}
	from, okFrom := parseDay(req.FromDate, false)
	to, okTo := parseDay(req.ToDate, true)
	if !okFrom || !okTo {
		reject(c, "from_date inválido")
		return
	}
	total := s.closedIncome(req.TenantID, req.BranchID, from, to)
	out := dto.SalesOverview{
		TotalSales:  total,
		ByMethod:    []dto.MethodTotal{{Method: "EFECTIVO", Amount: total}},
		ByCategory:  []dto.CategoryTotal{},
		Timeseries:  []dto.Point{{Date: req.FromDate, Amount: total}},
		TopProducts: []dto.TopProduct{},
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) profitAndLoss(c *gin.Context) {
	var req dto.ReportRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "JSON invalido")
		return
	}
	if s.requireSession(c, req.SessionID) == nil {
		return
	}
	from, okFrom := parseDay(req.FromDate, false)
	to, okTo := parseDay(req.ToDate, true)
	if !okFrom || !okTo {
		reject(c, "from_date inválido")
		return
	}
	ingresos := s.closedIncome(req.TenantID, req.BranchID, from, to)
	egresos := s.expenseSum(req.TenantID, req.BranchID, from, to)
	out := dto.ProfitLoss{
		Ingresos:       ingresos,
		Egresos:        egresos,
		Neto:           ingresos.Sub(egresos),
		IngresosSeries: []dto.Point{{Date: req.FromDate, Amount: ingresos}},
		EgresosSeries:  []dto.Point{{Date: req.FromDate, Amount: egresos}},
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) monthlyPnL(c *gin.Context) {
	var req dto.MonthlyPnLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, "JSON invalido")
		return
	}
	if s.requireSession(c, req.SessionID) == nil {
		return
	}
	out := make([]dto.MonthPnL, 0, 12)
	for m := time.January; m <= time.December; m++ {
		from := time.Date(req.Year, m, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0).Add(-time.Second)
		ingresos := s.closedIncome(req.TenantID, req.BranchID, from, to)
		egresos := s.expenseSum(req.TenantID, req.BranchID, from, to)
		out = append(out, dto.MonthPnL{
			Month:    from.Format("2006-01"),
			Ingresos: ingresos,
			Egresos:  egresos,
			Neto:     ingresos.Sub(egresos),
		})
	}
	c.JSON(http.StatusOK, out)
}
