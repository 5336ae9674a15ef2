package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/liquidity/internal/database"
	"github.com/jask/liquidity/internal/logger"
)

// MaintenanceService houses destructive actions surfaced through the TUI.
type MaintenanceService struct {
	DB *sql.DB
}

// ClearDraws deletes every partner draw.
func (s *MaintenanceService) ClearDraws(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	res, err := s.DB.ExecContext(ctx, "DELETE FROM partner_draws")
	if err != nil {
		return fmt.Errorf("clear draws: %w", err)
	}
	n, _ := res.RowsAffected()
	log := logger.FromContext(ctx)
	log.Warn().Int64("rows", n).Msg("partner draws cleared")
	return nil
}

// Reset wipes all user data. It keeps the schema intact so the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"balance_history",
			"partner_draws",
			"rewards_points",
			"auto_rules",
			"categories",
			"settings",
			"accounts",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	log := logger.FromContext(ctx)
	log.Warn().Msg("store reset")
	return nil
}
