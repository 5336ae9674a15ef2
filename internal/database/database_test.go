package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/liquidity/internal/database/repository"
)

func TestInitializeIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "liquidity.db")

	db, err := Initialize(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Initialize(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&n))
	require.Zero(t, n)
}

func TestSeedDefaultsRunsOnce(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Initialize(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	seeded, err := SeedDefaults(ctx, db)
	require.NoError(t, err)
	require.True(t, seeded)

	accounts, err := repository.NewAccountRepo(db).List(ctx, repository.ListAccounts{})
	require.NoError(t, err)
	require.Len(t, accounts, len(seedAccounts))
	require.Equal(t, "Chase Ink Reserve", accounts[0].Name)
	require.NotNil(t, accounts[0].CreditLimit)

	rewards, err := repository.NewRewardsRepo(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, rewards, len(seedRewards))

	cats, err := repository.NewCategoryRepo(db).List(ctx, "")
	require.NoError(t, err)
	require.Len(t, cats, 34)
	require.Equal(t, "Client Payments", *cats[0].Subcategory)

	rules, err := repository.NewRuleRepo(db).List(ctx, repository.ListRules{})
	require.NoError(t, err)
	require.Len(t, rules, len(seedRules))
	require.Equal(t, 10, rules[0].Priority)

	seeded, err = SeedDefaults(ctx, db)
	require.NoError(t, err)
	require.False(t, seeded)
	n, err := repository.NewAccountRepo(db).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, len(seedAccounts), n)
}

func TestSeedDefaultsSkipsPopulatedStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := Initialize(filepath.Join(t.TempDir(), "own.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = repository.NewAccountRepo(db).Add(ctx, repository.NewAccount{Name: "Checking", Institution: "Bank", Type: repository.AccountChecking})
	require.NoError(t, err)

	seeded, err := SeedDefaults(ctx, db)
	require.NoError(t, err)
	require.False(t, seeded)

	rules, err := repository.NewRuleRepo(db).List(ctx, repository.ListRules{})
	require.NoError(t, err)
	require.Empty(t, rules)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := Initialize(filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := repository.NewSettingsRepo(tx).Set(ctx, "x", "1"); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, ok, err := repository.NewSettingsRepo(db).Get(ctx, "x")
	require.NoError(t, err)
	require.False(t, ok)
}

var errBoom = errors.New("boom")
