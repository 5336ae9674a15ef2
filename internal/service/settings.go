package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jask/liquidity/internal/config"
	"github.com/jask/liquidity/internal/database"
	"github.com/jask/liquidity/internal/database/repository"
	"github.com/jask/liquidity/internal/report"
)

// Settings keys that override the configured thresholds.
const (
	KeyCashWarning        = "thresholds.cash_warning"
	KeyCashDanger         = "thresholds.cash_danger"
	KeyUtilizationWarning = "thresholds.utilization_warning"
	KeyUtilizationDanger  = "thresholds.utilization_danger"
)

// Thresholds are the dashboard alert levels in effect. Utilization values are ratios.
type Thresholds struct {
	CashWarning        decimal.Decimal
	CashDanger         decimal.Decimal
	UtilizationWarning decimal.Decimal
	UtilizationDanger  decimal.Decimal
}

func thresholdsFromConfig(c config.ThresholdConfig) Thresholds {
	return Thresholds{
		CashWarning:        decimal.NewFromFloat(c.CashWarning),
		CashDanger:         decimal.NewFromFloat(c.CashDanger),
		UtilizationWarning: decimal.NewFromFloat(c.UtilizationWarning),
		UtilizationDanger:  decimal.NewFromFloat(c.UtilizationDanger),
	}
}

func (t Thresholds) Bands() report.Bands {
	return report.Bands{Warning: t.UtilizationWarning, Danger: t.UtilizationDanger}
}

// CashBand classifies a cash position against the cash thresholds.
func (t Thresholds) CashBand(cash decimal.Decimal) report.Band {
	return report.CashBand(cash, t.CashWarning, t.CashDanger)
}

// Validate applies the same ordering rules as the config file.
func (t Thresholds) Validate() error {
	for _, v := range []decimal.Decimal{t.CashWarning, t.CashDanger, t.UtilizationWarning, t.UtilizationDanger} {
		if v.IsNegative() {
			return fmt.Errorf("%w: thresholds must be non-negative", repository.ErrValidation)
		}
	}
	if !t.UtilizationWarning.LessThan(t.UtilizationDanger) {
		return fmt.Errorf("%w: utilization warning must be below danger", repository.ErrValidation)
	}
	if !t.CashDanger.LessThan(t.CashWarning) {
		return fmt.Errorf("%w: cash danger must be below warning", repository.ErrValidation)
	}
	return nil
}

// SettingsService resolves thresholds from config defaults and stored overrides.
type SettingsService struct {
	DB       *sql.DB
	Defaults config.ThresholdConfig
}

// Thresholds returns the config defaults with any stored overrides applied.
func (s *SettingsService) Thresholds(ctx context.Context) (Thresholds, error) {
	t := thresholdsFromConfig(s.Defaults)
	if s.DB == nil {
		return t, nil
	}
	stored, err := repository.NewSettingsRepo(s.DB).All(ctx)
	if err != nil {
		return Thresholds{}, err
	}
	for key, dst := range map[string]*decimal.Decimal{
		KeyCashWarning:        &t.CashWarning,
		KeyCashDanger:         &t.CashDanger,
		KeyUtilizationWarning: &t.UtilizationWarning,
		KeyUtilizationDanger:  &t.UtilizationDanger,
	} {
		raw, ok := stored[key]
		if !ok {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return Thresholds{}, fmt.Errorf("setting %s=%q: %w", key, raw, err)
		}
		*dst = v
	}
	return t, nil
}

// SetThresholds validates t and stores all four values together.
func (s *SettingsService) SetThresholds(ctx context.Context, t Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if s.DB == nil {
		return fmt.Errorf("settings: db not configured")
	}
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		repo := repository.NewSettingsRepo(tx)
		for key, v := range map[string]decimal.Decimal{
			KeyCashWarning:        t.CashWarning,
			KeyCashDanger:         t.CashDanger,
			KeyUtilizationWarning: t.UtilizationWarning,
			KeyUtilizationDanger:  t.UtilizationDanger,
		} {
			if err := repo.Set(ctx, key, v.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

// Rules lists stored auto-categorization rules by priority.
func (s *SettingsService) Rules(ctx context.Context) ([]repository.Rule, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("settings: db not configured")
	}
	return repository.NewRuleRepo(s.DB).List(ctx, repository.ListRules{})
}
