package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/liquidity/internal/database"
	"github.com/jask/liquidity/internal/database/repository"
)

func TestClearDraws(t *testing.T) {
	t.Parallel()
	db, ctx := newTestDB(t)
	draws := repository.NewDrawRepo(db)
	_, err := draws.Add(ctx, repository.NewDraw{Partner: repository.PartnerKatie, Date: date(2025, 1, 1), Description: "x", Amount: dec("5")})
	require.NoError(t, err)

	svc := &MaintenanceService{DB: db}
	require.NoError(t, svc.ClearDraws(ctx))
	n, err := draws.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestResetKeepsSchema(t *testing.T) {
	t.Parallel()
	db, ctx := newTestDB(t)
	seeded, err := database.SeedDefaults(ctx, db)
	require.NoError(t, err)
	require.True(t, seeded)

	svc := &MaintenanceService{DB: db}
	require.NoError(t, svc.Reset(ctx))

	accounts := repository.NewAccountRepo(db)
	n, err := accounts.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	// schema survives and the store can be seeded again
	seeded, err = database.SeedDefaults(ctx, db)
	require.NoError(t, err)
	require.True(t, seeded)
}

func TestMaintenanceRequiresDB(t *testing.T) {
	svc := &MaintenanceService{}
	require.Error(t, svc.Reset(context.Background()))
	require.Error(t, svc.ClearDraws(context.Background()))
}
