package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/liquidity/internal/config"
	"github.com/jask/liquidity/internal/database"
)

func newTestDB(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, ctx
}

func defaultImportConfig() config.ImportConfig {
	return config.ImportConfig{
		Sheet:        "Draw 2025",
		FallbackDate: "2024-01-01",
		HeaderRows:   1,
		Katie:        config.ColumnRoles{Date: 0, Description: 1, Amount: 2, Notes: 3, FallbackDateCol: -1},
		Mark:         config.ColumnRoles{Date: 5, Description: 6, Amount: 7, Notes: -1, FallbackDateCol: 0},
	}
}

func defaultThresholds() config.ThresholdConfig {
	return config.ThresholdConfig{CashWarning: 50000, CashDanger: 20000, UtilizationWarning: 0.70, UtilizationDanger: 0.90}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
