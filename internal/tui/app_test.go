package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/liquidity/internal/auth"
	"github.com/jask/liquidity/internal/config"
	"github.com/jask/liquidity/internal/database"
	"github.com/jask/liquidity/internal/service"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	gate, err := auth.NewGate("secret")
	require.NoError(t, err)
	cfg := config.Config{Partners: config.PartnerConfig{A: "Mark", B: "Katie"}, UI: config.UIConfig{CurrencySymbol: "$", Timezone: "UTC"}}
	return New(context.Background(), cfg, gate, Repos{}, Services{})
}

func typeText(a *App, s string) {
	for _, r := range s {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestGateRejectsWrongPassword(t *testing.T) {
	a := newTestApp(t)
	typeText(a, "nope")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Equal(t, viewGate, a.state)
	require.Equal(t, "incorrect password", a.status)

	_, err := a.Session()
	require.Error(t, err)

	// navigation keys are typed into the password field while locked
	typeText(a, "d")
	require.Equal(t, viewGate, a.state)
}

func TestGateGrantsSession(t *testing.T) {
	a := newTestApp(t)
	typeText(a, "secret")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	require.IsType(t, sessionMsg{}, msg)
	a.Update(msg)
	require.Equal(t, viewDashboard, a.state)
	s, err := a.Session()
	require.NoError(t, err)
	require.False(t, s.Started.IsZero())
	require.Empty(t, a.password.Value())
}

func TestViewSwitching(t *testing.T) {
	a := newTestApp(t)
	a.state = viewDashboard
	for key, want := range map[string]appState{"a": viewAccounts, "w": viewDraws, "s": viewSettings, "d": viewDashboard} {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
		require.Equal(t, want, a.state, key)
	}

	a.state = viewSettings
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.Equal(t, modalConfirmReset, a.modal)
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	require.Equal(t, modalNone, a.modal)
	require.True(t, strings.Contains(a.View(), "Reset database"))
}

func TestImportNeedsConfirmation(t *testing.T) {
	a := newTestApp(t)
	a.state = viewDraws
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("i")})
	require.Equal(t, modalImportPath, a.modal)

	typeText(a, "draws.xlsx")
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modalConfirmImport, a.modal)
	require.Contains(t, a.View(), "draws.xlsx")

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, modalNone, a.modal)
}

func TestMoney(t *testing.T) {
	a := newTestApp(t)
	tests := map[string]string{
		"0":         "$0.00",
		"12.5":      "$12.50",
		"1234.567":  "$1,234.57",
		"141398.50": "$141,398.50",
		"-1000000":  "-$1,000,000.00",
		"-0.5":      "-$0.50",
		"999":       "$999.00",
	}
	for in, want := range tests {
		require.Equal(t, want, a.money(decimal.RequireFromString(in)), in)
	}
}

func TestParseThresholds(t *testing.T) {
	th, err := parseThresholds("$45,000 15000 65% 85")
	require.NoError(t, err)
	require.True(t, th.CashWarning.Equal(decimal.NewFromInt(45000)))
	require.True(t, th.CashDanger.Equal(decimal.NewFromInt(15000)))
	require.Equal(t, "0.65", th.UtilizationWarning.String())
	require.Equal(t, "0.85", th.UtilizationDanger.String())
	require.Equal(t, "45000 15000 65 85", formatThresholds(th))

	for _, in := range []string{"1 2 3", "50000 20000 95 90", "50000 abc 70 90"} {
		_, err := parseThresholds(in)
		require.Error(t, err, in)
	}
}

func TestEditThresholdsPersists(t *testing.T) {
	db, err := database.Initialize(filepath.Join(t.TempDir(), "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := newTestApp(t)
	a.services.Settings = &service.SettingsService{DB: db, Defaults: config.ThresholdConfig{
		CashWarning: 50000, CashDanger: 20000, UtilizationWarning: 0.7, UtilizationDanger: 0.9,
	}}
	th, err := a.services.Settings.Thresholds(context.Background())
	require.NoError(t, err)
	a.state = viewSettings
	a.snapshot = &service.Snapshot{Thresholds: th}

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	require.Equal(t, modalThresholds, a.modal)
	require.Equal(t, "50000 20000 70 90", a.input.Value())

	a.input.SetValue("40000 10000 60 80")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modalNone, a.modal)
	require.NotNil(t, cmd)
	require.Equal(t, statusMsg("thresholds saved"), cmd())

	got, err := a.services.Settings.Thresholds(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0.6", got.UtilizationWarning.String())
	require.True(t, got.CashDanger.Equal(decimal.NewFromInt(10000)))
}

func TestEditThresholdsRejectsInvertedBands(t *testing.T) {
	a := newTestApp(t)
	a.state = viewSettings
	a.snapshot = &service.Snapshot{}
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	a.input.SetValue("50000 20000 95 90")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Equal(t, modalThresholds, a.modal)
	require.Contains(t, a.status, "utilization warning must be below danger")
}

func TestImportSheetNameSavedToConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.toml")
	t.Setenv("LIQUIDITY_CONFIG", path)
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg, err := config.Load()
	require.NoError(t, err)
	importer := &service.DrawImporter{Sheet: cfg.Import.Sheet}
	a := New(context.Background(), cfg, nil, Repos{}, Services{Importer: importer})
	a.state = viewSettings

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	require.Equal(t, modalSheetName, a.modal)
	require.Equal(t, "Draw 2025", a.input.Value())

	a.input.SetValue("Draw 2026")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	require.Equal(t, sheetSavedMsg("Draw 2026"), msg)
	a.Update(msg)
	require.Equal(t, "Draw 2026", a.cfg.Import.Sheet)
	require.Equal(t, "Draw 2026", importer.Sheet)

	reloaded, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "Draw 2026", reloaded.Import.Sheet)
}
