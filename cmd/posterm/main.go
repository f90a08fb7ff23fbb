// posterm is the terminal operator console: login, till open/close, manual
// cash movements and the arqueo history, driven by the same workflow layer a
// graphical frontend would use.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"restopos/internal/api"
	"restopos/internal/bridge"
	"restopos/internal/config"
	"restopos/internal/dto"
	"restopos/internal/model"
	"restopos/internal/service"
	"restopos/internal/session"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type console struct {
	cfg      *config.Config
	in       *bufio.Scanner
	sessions *session.Manager

	auth     *service.AuthService
	cash     *service.CashController
	expenses *service.ExpenseService
	reports  *service.ReportService

	history     *service.Pager[model.CashShift]
	expensePage *service.Pager[model.Expense]
}

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	sessions, err := session.NewManager(session.NewStore(cfg.SessionFile))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load session store")
	}

	b := bridge.NewHTTP(cfg.BackendURL, time.Duration(cfg.RequestTimeout)*time.Second)

	cashAPI := api.NewCashAPI(b)
	expenseSvc := service.NewExpenseService(api.NewExpenseAPI(b), sessions)

	c := &console{
		cfg:      cfg,
		in:       bufio.NewScanner(os.Stdin),
		sessions: sessions,
		auth:     service.NewAuthService(api.NewAuthAPI(b), sessions),
		expenses: expenseSvc,
		reports:  service.NewReportService(api.NewReportAPI(b), cashAPI, expenseSvc, sessions),
	}
	c.cash = service.NewCashController(cashAPI, sessions, func() {
		fmt.Println("Sesión inválida o expirada. Ingrese nuevamente con 'login'.")
	})

	log.Info().Str("backend", cfg.BackendURL).Msg("posterm started")
	c.run()
}

func (c *console) run() {
	fmt.Println("posterm — consola de caja. Escriba 'help' para ver los comandos.")
	for {
		fmt.Print("> ")
		if !c.in.Scan() {
			return
		}
		fields := strings.Fields(c.in.Text())
		if len(fields) == 0 {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.cfg.RequestTimeout+5)*time.Second)
		c.dispatch(ctx, fields[0], fields[1:])
		cancel()
	}
}

func (c *console) dispatch(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "help":
		c.help()
	case "login":
		c.login(ctx)
	case "logout":
		c.logout(ctx)
	case "status":
		c.status(ctx)
	case "open":
		c.open(ctx)
	case "in":
		c.movement(ctx, model.MovementIn, args)
	case "out":
		c.movement(ctx, model.MovementOut, args)
	case "close":
		c.close(ctx)
	case "history":
		c.historyCmd(ctx, args)
	case "next":
		c.pagerNext(ctx)
	case "prev":
		c.pagerPrev(ctx)
	case "expenses":
		c.expensesCmd(ctx, args)
	case "expense-add":
		c.expenseAdd(ctx)
	case "expense-del":
		c.expenseDel(ctx, args)
	case "pnl":
		c.pnl(ctx, args)
	case "pnl-year":
		c.pnlYear(ctx, args)
	case "overview":
		c.overview(ctx, args)
	case "estado":
		c.estado(ctx, args)
	case "quit", "exit":
		os.Exit(0)
	default:
		fmt.Println("Comando desconocido. Escriba 'help'.")
	}
}

func (c *console) help() {
	fmt.Print(`Comandos:
  login                          iniciar sesión
  logout                         cerrar sesión
  status                         estado de la caja activa
  open                           abrir caja
  in <monto> [nota]              registrar ingreso manual
  out <monto> [nota]             registrar egreso manual
  close                          cerrar caja (arqueo)
  history <desde> <hasta>        historial de arqueos (YYYY-MM-DD)
  next / prev                    paginar el último listado
  expenses <desde> <hasta>       listar gastos
  expense-add                    registrar gasto
  expense-del <id>               eliminar gasto (ADMIN)
  pnl <desde> <hasta>            ingresos vs egresos
  pnl-year <año>                 ingresos vs egresos por mes
  overview <desde> <hasta>       resumen de ventas
  estado <desde> <hasta>         estado de cuentas del rango
  quit
`)
}

func (c *console) prompt(label string) string {
	fmt.Print(label)
	if !c.in.Scan() {
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

func (c *console) confirm(label string) bool {
	ans := strings.ToLower(c.prompt(label + " [y/N]: "))
	return ans == "y" || ans == "s" || ans == "si"
}

func (c *console) login(ctx context.Context) {
	username := c.prompt("Usuario: ")
	password := c.prompt("Contraseña: ")
	sess, err := c.auth.Login(ctx, dto.LoginRequest{
		Username: username,
		Password: password,
		TenantID: c.cfg.TenantID,
		BranchID: c.cfg.BranchID,
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Bienvenido %s (%s)\n", sess.Username, sess.Role)
	if shift, err := c.cash.Refresh(ctx); err == nil && shift.IsOpen() {
		fmt.Printf("Caja abierta desde %s\n", shift.OpenedAt.Format("2006-01-02 15:04"))
	}
}

func (c *console) logout(ctx context.Context) {
	if err := c.auth.Logout(ctx); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("Sesión cerrada.")
}

func (c *console) status(ctx context.Context) {
	shift, err := c.cash.Refresh(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	if !shift.IsOpen() {
		fmt.Println("No hay caja abierta.")
		return
	}
	figures := service.FiguresFromShift(shift)
	fmt.Printf("Caja abierta por %s desde %s\n", shift.Username, shift.OpenedAt.Format("2006-01-02 15:04"))
	fmt.Printf("  Apertura:  %s\n", service.FormatMoney(shift.OpeningFloat))
	fmt.Printf("  Ingresos:  %s (%d)\n", service.FormatMoney(figures.ManualIns), service.CountByKind(shift.Movements, model.MovementIn))
	fmt.Printf("  Egresos:   %s (%d)\n", service.FormatMoney(figures.ManualOuts), service.CountByKind(shift.Movements, model.MovementOut))
	for _, m := range service.SortedForDisplay(shift.Movements) {
		fmt.Printf("  %s  %-3s %12s  %s\n",
			m.At.Format("15:04"), m.Kind, service.FormatMoney(m.Amount), service.DisplayNote(m.Note))
	}
}

func (c *console) open(ctx context.Context) {
	openingFloat := decimal.NewFromFloat(c.cfg.OpeningFloat)
	if !c.cfg.OpeningFloatFixed {
		raw := c.prompt("Monto de apertura: ")
		d, err := decimal.NewFromString(raw)
		if err != nil {
			fmt.Println("Monto inválido.")
			return
		}
		openingFloat = d
	}
	if !c.confirm(fmt.Sprintf("Abrir caja con %s?", service.FormatMoney(openingFloat))) {
		fmt.Println("Cancelado.")
		return
	}
	shift, err := c.cash.OpenShift(ctx, openingFloat)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Caja abierta (%s).\n", shift.ID)
}

func (c *console) movement(ctx context.Context, kind string, args []string) {
	if len(args) < 1 {
		fmt.Println("Uso: in|out <monto> [nota]")
		return
	}
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		fmt.Println("Monto inválido.")
		return
	}
	note := strings.Join(args[1:], " ")
	pending, err := c.cash.BeginMovement(kind, amount, note)
	if err != nil {
		fmt.Println(err)
		return
	}
	verb := "ingreso"
	if kind == model.MovementOut {
		verb = "egreso"
	}
	if !c.confirm(fmt.Sprintf("Registrar %s de %s (%s)? No se puede deshacer.", verb, service.FormatMoney(amount), pending.Note())) {
		pending.Cancel()
		fmt.Println("Cancelado.")
		return
	}
	if err := pending.Confirm(ctx); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("Movimiento registrado.")
}

func (c *console) close(ctx context.Context) {
	denoms := c.readDenominations()
	notes := c.prompt("Notas (opcional): ")
	pending, err := c.cash.BeginClose(denoms, notes)
	if err != nil {
		fmt.Println(err)
		return
	}
	if len(denoms) > 0 {
		fmt.Printf("Conteo: %s\n", service.FormatMoney(pending.CountedTotal()))
	}
	if !c.confirm("Cerrar la caja? No se puede deshacer.") {
		pending.Cancel()
		fmt.Println("Cancelado.")
		return
	}
	summary, err := pending.Confirm(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("Caja cerrada.")
	fmt.Printf("  Esperado:   %s\n", service.FormatMoney(summary.Expected))
	if summary.HasCount {
		fmt.Printf("  Contado:    %s\n", service.FormatMoney(summary.Counted))
		fmt.Printf("  Diferencia: %s\n", service.FormatMoney(summary.Difference))
	}
	fmt.Printf("  Ingresos:   %s\n", service.FormatMoney(summary.Ingresos))
	fmt.Printf("  Egresos:    %s\n", service.FormatMoney(summary.Egresos))
	fmt.Printf("  Neto:       %s\n", service.FormatMoney(summary.Neto))
}

// readDenominations asks one "valor cantidad" pair per line; empty line ends
// the count, empty count means close without arqueo.
func (c *console) readDenominations() []model.Denomination {
	fmt.Println("Conteo de efectivo — una línea por denominación: <valor> <cantidad>. Línea vacía para terminar.")
	var denoms []model.Denomination
	for {
		line := c.prompt("  denominación: ")
		if line == "" {
			return denoms
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			fmt.Println("  Formato: <valor> <cantidad>")
			continue
		}
		value, err := decimal.NewFromString(parts[0])
		if err != nil {
			fmt.Println("  Valor inválido.")
			continue
		}
		qty, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			fmt.Println("  Cantidad inválida.")
			continue
		}
		denoms = append(denoms, model.Denomination{Value: value, Qty: qty})
	}
}

func requireRange(args []string) (string, string, bool) {
	if len(args) != 2 {
		fmt.Println("Uso: <comando> <desde> <hasta>  (YYYY-MM-DD)")
		return "", "", false
	}
	return args[0], args[1], true
}

func (c *console) historyCmd(ctx context.Context, args []string) {
	from, to, ok := requireRange(args)
	if !ok {
		return
	}
	pager := c.cash.HistoryPager(int64(c.cfg.PageSize), true)
	if err := pager.SetRange(ctx, from, to); err != nil {
		fmt.Println(err)
		return
	}
	c.history, c.expensePage = pager, nil
	c.printHistory()
}

func (c *console) printHistory() {
	rows := c.history.Rows()
	if len(rows) == 0 {
		fmt.Println("Sin arqueos en el rango.")
		return
	}
	for _, s := range rows {
		closed := "—"
		if s.ClosedAt != nil {
			closed = s.ClosedAt.Format("2006-01-02 15:04")
		}
		diff := "—"
		if s.Difference != nil {
			diff = service.FormatMoney(*s.Difference)
		}
		fmt.Printf("%s  %s → %s  %-8s  %s  dif %s\n",
			s.ID, s.OpenedAt.Format("2006-01-02 15:04"), closed, s.Status, s.Username, diff)
	}
	fmt.Printf("Página %d de %d (%d arqueos)\n", c.history.Page(), c.history.Pages(), c.history.Total())
}

func (c *console) pagerNext(ctx context.Context) {
	switch {
	case c.history != nil:
		if err := c.history.Next(ctx); err != nil {
			fmt.Println(err)
			return
		}
		c.printHistory()
	case c.expensePage != nil:
		if err := c.expensePage.Next(ctx); err != nil {
			fmt.Println(err)
			return
		}
		c.printExpenses()
	default:
		fmt.Println("No hay listado activo.")
	}
}

func (c *console) pagerPrev(ctx context.Context) {
	switch {
	case c.history != nil:
		if err := c.history.Prev(ctx); err != nil {
			fmt.Println(err)
			return
		}
		c.printHistory()
	case c.expensePage != nil:
		if err := c.expensePage.Prev(ctx); err != nil {
			fmt.Println(err)
			return
		}
		c.printExpenses()
	default:
		fmt.Println("No hay listado activo.")
	}
}

func (c *console) expensesCmd(ctx context.Context, args []string) {
	from, to, ok := requireRange(args)
	if !ok {
		return
	}
	pager := c.expenses.Pager(int64(c.cfg.PageSize))
	if err := pager.SetRange(ctx, from, to); err != nil {
		fmt.Println(err)
		return
	}
	c.expensePage, c.history = pager, nil
	c.printExpenses()
}

func (c *console) printExpenses() {
	rows := c.expensePage.Rows()
	if len(rows) == 0 {
		fmt.Println("Sin gastos en el rango.")
		return
	}
	for _, e := range rows {
		category := "—"
		if e.Category != nil {
			category = *e.Category
		}
		fmt.Printf("%s  %s  %-20s %12s  %s\n",
			e.ID, e.Date.Format("2006-01-02"), category, service.FormatMoney(e.Amount), e.Description)
	}
	fmt.Printf("Página %d de %d (%d gastos)\n", c.expensePage.Page(), c.expensePage.Pages(), c.expensePage.Total())
}

func (c *console) expenseAdd(ctx context.Context) {
	description := c.prompt("Descripción: ")
	raw := c.prompt("Monto: ")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		fmt.Println("Monto inválido.")
		return
	}
	var category *string
	if cat := c.prompt("Categoría (opcional): "); cat != "" {
		category = &cat
	}
	var date *string
	if d := c.prompt("Fecha YYYY-MM-DD (opcional, hoy por defecto): "); d != "" {
		date = &d
	}
	e, err := c.expenses.Create(ctx, description, amount, category, date)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Gasto registrado (%s).\n", e.ID)
}

func (c *console) expenseDel(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Uso: expense-del <id>")
		return
	}
	if !c.confirm("Eliminar el gasto? No se puede deshacer.") {
		fmt.Println("Cancelado.")
		return
	}
	if err := c.expenses.Delete(ctx, args[0]); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("Gasto eliminado.")
}

func (c *console) pnl(ctx context.Context, args []string) {
	from, to, ok := requireRange(args)
	if !ok {
		return
	}
	out, err := c.reports.ProfitAndLoss(ctx, from, to)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Ingresos: %s\nEgresos:  %s\nNeto:     %s\n",
		service.FormatMoney(out.Ingresos), service.FormatMoney(out.Egresos), service.FormatMoney(out.Neto))
}

func (c *console) pnlYear(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Uso: pnl-year <año>")
		return
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("Año inválido.")
		return
	}
	months, err := c.reports.MonthlyPnL(ctx, year)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, m := range months {
		fmt.Printf("%s  ingresos %12s  egresos %12s  neto %12s\n",
			m.Month, service.FormatMoney(m.Ingresos), service.FormatMoney(m.Egresos), service.FormatMoney(m.Neto))
	}
}

func (c *console) overview(ctx context.Context, args []string) {
	from, to, ok := requireRange(args)
	if !ok {
		return
	}
	out, err := c.reports.SalesOverview(ctx, from, to)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Ventas: %s en %d órdenes (ticket promedio %s)\n",
		service.FormatMoney(out.TotalSales), out.Orders, service.FormatMoney(out.AvgTicket))
	for _, m := range out.ByMethod {
		fmt.Printf("  %-12s %s\n", m.Method, service.FormatMoney(m.Amount))
	}
	for _, p := range out.TopProducts {
		fmt.Printf("  %-20s x%-4d %s\n", p.Name, p.Qty, service.FormatMoney(p.Sales))
	}
}

func (c *console) estado(ctx context.Context, args []string) {
	from, to, ok := requireRange(args)
	if !ok {
		return
	}
	out, err := c.reports.EstadoDeCuentas(ctx, from, to)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Arqueos:        %d\n", out.Shifts)
	fmt.Printf("Ingresos:       %s\n", service.FormatMoney(out.Ingresos))
	fmt.Printf("Egresos:        %s\n", service.FormatMoney(out.Egresos))
	fmt.Printf("Neto:           %s\n", service.FormatMoney(out.Neto))
	fmt.Printf("Otros egresos:  %s\n", service.FormatMoney(out.OtrosEgresos))
	fmt.Printf("Balance:        %s\n", service.FormatMoney(out.Balance))
}
