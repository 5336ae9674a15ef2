package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jask/liquidity/internal/auth"
	"github.com/jask/liquidity/internal/config"
	"github.com/jask/liquidity/internal/database"
	"github.com/jask/liquidity/internal/database/repository"
	"github.com/jask/liquidity/internal/logger"
	"github.com/jask/liquidity/internal/secrets"
	"github.com/jask/liquidity/internal/service"
	"github.com/jask/liquidity/internal/tui"
)

const usage = `usage:
  liquidity                      open the dashboard
  liquidity import-draws <file>  replace all partner draws from a spreadsheet
  liquidity summary              print the dashboard figures
  liquidity set-password         store the dashboard password (read from stdin)`

type app struct {
	cfg      config.Config
	repos    tui.Repos
	services tui.Services
	gate     *auth.Gate
	gateErr  error
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one invocation and returns the process exit code. Deferred
// closes run before main exits.
func run(args []string) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warn: .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}

	interactive := len(args) == 0

	var base zerolog.Logger
	if interactive {
		// the TUI owns the terminal, so logs go to a file
		f, err := logger.OpenFile(cfg.Log.File)
		if err != nil {
			log.Printf("log file: %v", err)
			return 1
		}
		defer f.Close()
		base = logger.NewWithWriter(f)
	} else {
		base = logger.New()
	}
	lg := logger.WithLevel(base, cfg.Log.Level)
	ctx := logger.WithContext(context.Background(), lg)

	if len(args) > 0 && args[0] == "set-password" {
		if err := setPassword(os.Stdin); err != nil {
			log.Printf("set-password: %v", err)
			return 1
		}
		fmt.Println("password stored")
		return 0
	}

	db, err := database.Initialize(cfg.Database.Path)
	if err != nil {
		log.Printf("initialize store: %v", err)
		return 1
	}
	defer db.Close()

	seeded, err := database.SeedDefaults(ctx, db)
	if err != nil {
		log.Printf("seed defaults: %v", err)
		return 1
	}
	if seeded {
		lg.Info().Str("path", cfg.Database.Path).Msg("seeded default data")
	}

	a, err := wire(cfg, db)
	if err != nil {
		log.Printf("wire: %v", err)
		return 1
	}

	switch {
	case interactive:
		err = a.runTUI(ctx)
	case args[0] == "import-draws" && len(args) == 2:
		err = a.withSession(os.Stdin, func(s auth.Session) error { return a.importDraws(ctx, s, args[1]) })
	case args[0] == "summary" && len(args) == 1:
		err = a.withSession(os.Stdin, func(s auth.Session) error { return a.summary(ctx, s, os.Stdout) })
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	if err != nil {
		lg.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func wire(cfg config.Config, db *sql.DB) (*app, error) {
	layout, err := service.LayoutFromConfig(cfg.Import)
	if err != nil {
		return nil, err
	}

	// repositories
	acctRepo := repository.NewAccountRepo(db)
	historyRepo := repository.NewBalanceHistoryRepo(db)
	rewardsRepo := repository.NewRewardsRepo(db)
	drawRepo := repository.NewDrawRepo(db)

	settings := &service.SettingsService{DB: db, Defaults: cfg.Thresholds}
	a := &app{
		cfg: cfg,
		repos: tui.Repos{
			Accounts: acctRepo,
			History:  historyRepo,
			Rewards:  rewardsRepo,
			Draws:    drawRepo,
		},
		services: tui.Services{
			Dashboard: &service.DashboardService{
				Accounts: acctRepo, Rewards: rewardsRepo, Draws: drawRepo,
				Settings: settings, WindowDays: cfg.Upcoming.WindowDays,
			},
			Importer:    &service.DrawImporter{Draws: drawRepo, Sheet: cfg.Import.Sheet, Layout: layout},
			Settings:    settings,
			Maintenance: &service.MaintenanceService{DB: db},
		},
	}

	secret, err := auth.ResolveSecret(cfg.Auth)
	if err != nil {
		a.gateErr = err
		return a, nil
	}
	a.gate, a.gateErr = auth.NewGate(secret)
	return a, nil
}

func (a *app) runTUI(ctx context.Context) error {
	if a.gateErr != nil {
		return fmt.Errorf("%w: set %s or run `liquidity set-password`", a.gateErr, a.cfg.Auth.PasswordEnv)
	}
	p := tea.NewProgram(tui.New(ctx, a.cfg, a.gate, a.repos, a.services), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// withSession reads the password from r and runs fn with the session the gate grants.
func (a *app) withSession(r io.Reader, fn func(auth.Session) error) error {
	if a.gateErr != nil {
		return a.gateErr
	}
	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	session, err := a.gate.Check(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return err
	}
	return fn(session)
}

func (a *app) importDraws(ctx context.Context, s auth.Session, path string) error {
	lg := logger.FromContext(ctx)
	lg.Info().Time("session", s.Started).Str("path", path).Msg("draw import requested")
	res, err := a.services.Importer.ReplaceAllFromSpreadsheet(ctx, path)
	if err != nil {
		return err
	}
	fmt.Printf("replaced draws: %s %d, %s %d (skipped %d)\n",
		repository.PartnerKatie, res.Counts[repository.PartnerKatie],
		repository.PartnerMark, res.Counts[repository.PartnerMark], res.Skipped)
	return nil
}

func (a *app) summary(ctx context.Context, s auth.Session, w io.Writer) error {
	lg := logger.FromContext(ctx)
	lg.Debug().Time("session", s.Started).Msg("summary requested")
	snap, err := a.services.Dashboard.Snapshot(ctx, database.Today(a.cfg.Location()))
	if err != nil {
		return err
	}
	sym := a.cfg.UI.CurrencySymbol
	fmt.Fprintf(w, "total debt           %s%s\n", sym, snap.TotalDebt.StringFixed(2))
	fmt.Fprintf(w, "monthly obligations  %s%s\n", sym, snap.MonthlyObligations.StringFixed(2))
	fmt.Fprintf(w, "rewards value        %s%s\n", sym, snap.RewardsValue.StringFixed(2))
	for _, g := range snap.DebtByType {
		fmt.Fprintf(w, "  %-14s %s%s (%d)\n", g.Type, sym, g.Total.StringFixed(2), g.Count)
	}
	for _, p := range snap.Upcoming {
		fmt.Fprintf(w, "due %s  %-28s %s%s  [%s]\n", p.DueDate.Format("2006-01-02"), p.Account.Name, sym, p.Account.MinimumPayment.StringFixed(2), p.Urgency)
	}
	if snap.AllCards != nil {
		fmt.Fprintf(w, "card utilization     %s%% (%s)\n", snap.AllCards.Ratio.Mul(hundred).StringFixed(1), snap.AllCards.Band)
	}
	ps := snap.Partners
	fmt.Fprintf(w, "draws %s %s%s, %s %s%s, difference %s%s (%s)\n",
		a.cfg.Partners.A, sym, ps.A.Total.StringFixed(2),
		a.cfg.Partners.B, sym, ps.B.Total.StringFixed(2),
		sym, ps.Diff.StringFixed(2), ps.Leader)
	return nil
}

var hundred = decimal.NewFromInt(100)

func setPassword(r io.Reader) error {
	fmt.Fprint(os.Stderr, "new password: ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return auth.ErrNoSecret
	}
	return secrets.Store(secrets.GatePassword, pw)
}
