package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/jask/liquidity/internal/auth"
	"github.com/jask/liquidity/internal/config"
	"github.com/jask/liquidity/internal/database"
	"github.com/jask/liquidity/internal/database/repository"
	"github.com/jask/liquidity/internal/service"
)

// App ties together views.
type App struct {
	ctx      context.Context
	cfg      config.Config
	repos    Repos
	services Services
	gate     *auth.Gate
	session  *auth.Session
	state    appState
	modal    modalState
	status   string
	tz       *time.Location

	password textinput.Model
	input    textinput.Model

	snapshot   *service.Snapshot
	accounts   []repository.Account
	history    []repository.BalanceSnapshot
	rewards    []repository.RewardsProgram
	draws      []repository.Draw
	rules      []repository.Rule
	acctCursor int
	drawCursor int
	lastImport *service.ImportResult
}

type Repos struct {
	Accounts *repository.AccountRepo
	History  *repository.BalanceHistoryRepo
	Rewards  *repository.RewardsRepo
	Draws    *repository.DrawRepo
}

type Services struct {
	Dashboard   *service.DashboardService
	Importer    *service.DrawImporter
	Settings    *service.SettingsService
	Maintenance *service.MaintenanceService
}

type appState string

const (
	viewGate      appState = "gate"
	viewDashboard appState = "dashboard"
	viewAccounts  appState = "accounts"
	viewDraws     appState = "draws"
	viewSettings  appState = "settings"
)

type modalState string

const (
	modalNone          modalState = ""
	modalImportPath    modalState = "importPath"
	modalConfirmImport modalState = "confirmImport"
	modalBalance       modalState = "balance"
	modalConfirmClear  modalState = "confirmClear"
	modalConfirmReset  modalState = "confirmReset"
	modalThresholds    modalState = "thresholds"
	modalSheetName     modalState = "sheetName"
)

func New(ctx context.Context, cfg config.Config, gate *auth.Gate, repos Repos, services Services) *App {
	pw := textinput.New()
	pw.Placeholder = "password"
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	pw.Focus()

	in := textinput.New()
	in.CharLimit = 512

	return &App{
		ctx:      ctx,
		cfg:      cfg,
		repos:    repos,
		services: services,
		gate:     gate,
		state:    viewGate,
		tz:       cfg.Location(),
		password: pw,
		input:    in,
	}
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

func (a *App) today() time.Time { return database.Today(a.tz) }

func (a *App) loadAll() tea.Cmd {
	return tea.Batch(a.loadSnapshot(), a.loadAccounts(), a.loadDraws(), a.loadSettings())
}

func (a *App) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, err := a.services.Dashboard.Snapshot(a.ctx, a.today())
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg(snap)
	}
}

func (a *App) loadAccounts() tea.Cmd {
	return func() tea.Msg {
		list, err := a.repos.Accounts.List(a.ctx, repository.ListAccounts{})
		if err != nil {
			return errMsg{err}
		}
		programs, err := a.repos.Rewards.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return accountsMsg{accounts: list, rewards: programs}
	}
}

func (a *App) loadHistory(accountID string) tea.Cmd {
	return func() tea.Msg {
		snaps, err := a.repos.History.ListForAccount(a.ctx, accountID)
		if err != nil {
			return errMsg{err}
		}
		return historyMsg(snaps)
	}
}

func (a *App) loadDraws() tea.Cmd {
	return func() tea.Msg {
		list, err := a.repos.Draws.List(a.ctx, repository.DrawFilter{})
		if err != nil {
			return errMsg{err}
		}
		return drawsMsg(list)
	}
}

func (a *App) loadSettings() tea.Cmd {
	return func() tea.Msg {
		rules, err := a.services.Settings.Rules(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return rulesMsg(rules)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if m.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.state == viewGate {
			return a.handleGateKey(m)
		}
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		return a.handleKey(m)
	case sessionMsg:
		s := auth.Session(m)
		a.session = &s
		a.state = viewDashboard
		a.status = ""
		return a, a.loadAll()
	case snapshotMsg:
		s := service.Snapshot(m)
		a.snapshot = &s
	case accountsMsg:
		a.accounts = m.accounts
		a.rewards = m.rewards
		if a.acctCursor >= len(a.accounts) {
			a.acctCursor = 0
		}
		if len(a.accounts) > 0 {
			return a, a.loadHistory(a.accounts[a.acctCursor].ID)
		}
	case historyMsg:
		a.history = []repository.BalanceSnapshot(m)
	case drawsMsg:
		a.draws = []repository.Draw(m)
		if a.drawCursor >= len(a.draws) {
			a.drawCursor = 0
		}
	case rulesMsg:
		a.rules = []repository.Rule(m)
	case importDoneMsg:
		a.lastImport = &m.Result
		a.status = fmt.Sprintf("imported %d Katie, %d Mark draws (skipped %d)",
			m.Result.Counts[repository.PartnerKatie], m.Result.Counts[repository.PartnerMark], m.Result.Skipped)
		return a, tea.Batch(a.loadDraws(), a.loadSnapshot())
	case sheetSavedMsg:
		a.cfg.Import.Sheet = string(m)
		if a.services.Importer != nil {
			a.services.Importer.Sheet = string(m)
		}
		a.status = fmt.Sprintf("import sheet set to %q", string(m))
	case statusMsg:
		a.status = string(m)
		return a, a.loadAll()
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) handleGateKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		return a, tea.Quit
	case tea.KeyEnter:
		if a.gate == nil {
			a.status = "no password configured"
			return a, nil
		}
		s, err := a.gate.Check(a.password.Value())
		a.password.SetValue("")
		if err != nil {
			a.status = "incorrect password"
			return a, nil
		}
		return a, func() tea.Msg { return sessionMsg(s) }
	}
	var cmd tea.Cmd
	a.password, cmd = a.password.Update(m)
	return a, cmd
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q":
		return a, tea.Quit
	case "d":
		a.state = viewDashboard
	case "a":
		a.state = viewAccounts
	case "w":
		a.state = viewDraws
	case "s":
		a.state = viewSettings
	case "r":
		a.status = "refreshing..."
		return a, a.loadAll()
	case "up", "k":
		switch a.state {
		case viewAccounts:
			if a.acctCursor > 0 {
				a.acctCursor--
				return a, a.loadHistory(a.accounts[a.acctCursor].ID)
			}
		case viewDraws:
			if a.drawCursor > 0 {
				a.drawCursor--
			}
		}
	case "down", "j":
		switch a.state {
		case viewAccounts:
			if a.acctCursor < len(a.accounts)-1 {
				a.acctCursor++
				return a, a.loadHistory(a.accounts[a.acctCursor].ID)
			}
		case viewDraws:
			if a.drawCursor < len(a.draws)-1 {
				a.drawCursor++
			}
		}
	case "b":
		if a.state == viewAccounts && len(a.accounts) > 0 {
			a.openInput(modalBalance, a.accounts[a.acctCursor].CurrentBalance.StringFixed(2))
		}
	case "i":
		if a.state == viewDraws {
			a.openInput(modalImportPath, "")
		}
	case "c":
		if a.state == viewDraws {
			a.modal = modalConfirmClear
		}
	case "x":
		if a.state == viewSettings {
			a.modal = modalConfirmReset
		}
	case "t":
		if a.state == viewSettings && a.snapshot != nil {
			a.openInput(modalThresholds, formatThresholds(a.snapshot.Thresholds))
		}
	case "n":
		if a.state == viewSettings {
			a.openInput(modalSheetName, a.cfg.Import.Sheet)
		}
	}
	return a, nil
}

func (a *App) openInput(modal modalState, value string) {
	a.modal = modal
	a.input.SetValue(value)
	a.input.CursorEnd()
	a.input.Focus()
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalImportPath, modalBalance, modalThresholds, modalSheetName:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
			a.input.Blur()
			return a, nil
		case tea.KeyEnter:
			return a.submitInput(strings.TrimSpace(a.input.Value()))
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(m)
		return a, cmd
	case modalConfirmImport, modalConfirmClear, modalConfirmReset:
		switch m.String() {
		case "y":
			modal := a.modal
			a.modal = modalNone
			a.input.Blur()
			switch modal {
			case modalConfirmImport:
				a.status = "importing..."
				return a, a.importCmd(strings.TrimSpace(a.input.Value()))
			case modalConfirmClear:
				return a, a.clearDrawsCmd()
			default:
				return a, a.resetCmd()
			}
		case "n", "esc":
			a.modal = modalNone
			a.input.Blur()
		}
	}
	return a, nil
}

func (a *App) submitInput(value string) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalImportPath:
		if value == "" {
			a.status = "enter a spreadsheet path"
			return a, nil
		}
		a.modal = modalConfirmImport
		return a, nil
	case modalThresholds:
		t, err := parseThresholds(value)
		if err != nil {
			a.status = "error: " + err.Error()
			return a, nil
		}
		a.closeInput()
		return a, a.saveThresholdsCmd(t)
	case modalSheetName:
		if value == "" {
			a.status = "enter a sheet name"
			return a, nil
		}
		a.closeInput()
		return a, a.saveSheetNameCmd(value)
	default:
		a.closeInput()
		return a, a.updateBalanceCmd(a.accounts[a.acctCursor], value)
	}
}

func (a *App) closeInput() {
	a.modal = modalNone
	a.input.Blur()
}

// formatThresholds renders t as the threshold editor's input: cash warning,
// cash danger, then utilization warning and danger in percent.
func formatThresholds(t service.Thresholds) string {
	return strings.Join([]string{
		t.CashWarning.String(), t.CashDanger.String(),
		t.UtilizationWarning.Mul(hundred).String(), t.UtilizationDanger.Mul(hundred).String(),
	}, " ")
}

func parseThresholds(s string) (service.Thresholds, error) {
	fields := strings.Fields(strings.NewReplacer("$", "", ",", "", "%", "").Replace(s))
	if len(fields) != 4 {
		return service.Thresholds{}, fmt.Errorf("want 4 values: cash warning, cash danger, utilization warning %%, danger %%")
	}
	vals := make([]decimal.Decimal, len(fields))
	for i, f := range fields {
		v, err := decimal.NewFromString(f)
		if err != nil {
			return service.Thresholds{}, fmt.Errorf("threshold %q: %w", f, err)
		}
		vals[i] = v
	}
	t := service.Thresholds{
		CashWarning:        vals[0],
		CashDanger:         vals[1],
		UtilizationWarning: vals[2].Div(hundred),
		UtilizationDanger:  vals[3].Div(hundred),
	}
	if err := t.Validate(); err != nil {
		return service.Thresholds{}, err
	}
	return t, nil
}

var hundred = decimal.NewFromInt(100)

// commands
func (a *App) saveThresholdsCmd(t service.Thresholds) tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Settings.SetThresholds(a.ctx, t); err != nil {
			return errMsg{err}
		}
		return statusMsg("thresholds saved")
	}
}

// saveSheetNameCmd writes the import sheet name to the config file and points
// the importer at it.
func (a *App) saveSheetNameCmd(name string) tea.Cmd {
	return func() tea.Msg {
		cfg := a.cfg
		cfg.Import.Sheet = name
		if err := config.Save(cfg); err != nil {
			return errMsg{err}
		}
		return sheetSavedMsg(name)
	}
}

func (a *App) updateBalanceCmd(acct repository.Account, raw string) tea.Cmd {
	return func() tea.Msg {
		v, err := decimal.NewFromString(strings.NewReplacer("$", "", ",", "").Replace(raw))
		if err != nil {
			return errMsg{fmt.Errorf("balance %q: %w", raw, err)}
		}
		if err := a.repos.Accounts.UpdateBalance(a.ctx, acct.ID, v, a.today()); err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("%s balance set to %s", acct.Name, a.money(v)))
	}
}

func (a *App) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		res, err := a.services.Importer.ReplaceAllFromSpreadsheet(a.ctx, path)
		if err != nil {
			return errMsg{err}
		}
		return importDoneMsg{Result: res}
	}
}

func (a *App) clearDrawsCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Maintenance.ClearDraws(a.ctx); err != nil {
			return errMsg{err}
		}
		return statusMsg("all draws deleted")
	}
}

func (a *App) resetCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Maintenance.Reset(a.ctx); err != nil {
			return errMsg{err}
		}
		return statusMsg("database reset")
	}
}

type sessionMsg auth.Session

type snapshotMsg service.Snapshot

type accountsMsg struct {
	accounts []repository.Account
	rewards  []repository.RewardsProgram
}

type historyMsg []repository.BalanceSnapshot

type drawsMsg []repository.Draw

type rulesMsg []repository.Rule

type statusMsg string

type sheetSavedMsg string

type errMsg struct{ error }

func (e errMsg) Unwrap() error { return e.error }

type importDoneMsg struct {
	Result service.ImportResult
}

var errNoSession = errors.New("locked")

// Session returns the session granted by the gate, if any.
func (a *App) Session() (auth.Session, error) {
	if a.session == nil {
		return auth.Session{}, errNoSession
	}
	return *a.session, nil
}

// styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)
