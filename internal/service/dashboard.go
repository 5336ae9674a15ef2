package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/liquidity/internal/database/repository"
	"github.com/jask/liquidity/internal/report"
)

// Snapshot is everything the dashboard shows, computed from one read of the store.
type Snapshot struct {
	Today              time.Time
	TotalDebt          decimal.Decimal
	MonthlyObligations decimal.Decimal
	RewardsValue       decimal.Decimal
	DebtByType         []report.TypeTotal
	Upcoming           []report.UpcomingPayment
	Cards              []report.AccountUtilization
	AllCards           *report.AccountUtilization
	Partners           report.PartnerSummary
	Thresholds         Thresholds
}

// DashboardService assembles Snapshots.
type DashboardService struct {
	Accounts   *repository.AccountRepo
	Rewards    *repository.RewardsRepo
	Draws      *repository.DrawRepo
	Settings   *SettingsService
	WindowDays int
}

func (s *DashboardService) Snapshot(ctx context.Context, today time.Time) (Snapshot, error) {
	if s.Accounts == nil || s.Rewards == nil || s.Draws == nil || s.Settings == nil {
		return Snapshot{}, fmt.Errorf("dashboard: repos not configured")
	}
	accounts, err := s.Accounts.List(ctx, repository.ListAccounts{})
	if err != nil {
		return Snapshot{}, err
	}
	programs, err := s.Rewards.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	draws, err := s.Draws.List(ctx, repository.DrawFilter{})
	if err != nil {
		return Snapshot{}, err
	}
	th, err := s.Settings.Thresholds(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	bands := th.Bands()
	snap := Snapshot{
		Today:              today,
		TotalDebt:          report.TotalDebt(accounts),
		MonthlyObligations: report.MonthlyObligations(accounts),
		RewardsValue:       report.RewardsTotalValue(programs),
		DebtByType:         report.DebtByType(accounts),
		Upcoming:           report.UpcomingPayments(accounts, today, s.WindowDays),
		Cards:              report.AccountUtilizations(accounts, bands),
		Partners:           report.PartnerTotals(draws, repository.PartnerMark, repository.PartnerKatie),
		Thresholds:         th,
	}
	if agg, ok := report.AggregateUtilization(accounts, bands); ok {
		snap.AllCards = &agg
	}
	return snap, nil
}
