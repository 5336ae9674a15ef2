package repository_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/liquidity/internal/database/repository"
)

func TestDrawAddListFilter(t *testing.T) {
	t.Parallel()
	db, ctx := newTestDB(t)
	repo := repository.NewDrawRepo(db)

	_, err := repo.Add(ctx, repository.NewDraw{Partner: repository.PartnerMark, Date: day("2025-01-05"), Description: "Rent", Amount: dec("2000")})
	require.NoError(t, err)
	_, err = repo.Add(ctx, repository.NewDraw{Partner: repository.PartnerKatie, Date: day("2025-02-01"), Description: "Refund", Amount: dec("-150.25")})
	require.NoError(t, err)

	all, err := repo.List(ctx, repository.DrawFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Refund", all[0].Description)
	require.True(t, all[0].Amount.Equal(dec("-150.25")))

	mark, err := repo.List(ctx, repository.DrawFilter{Partner: repository.PartnerMark})
	require.NoError(t, err)
	require.Len(t, mark, 1)

	jan, err := repo.List(ctx, repository.DrawFilter{From: day("2025-01-01"), To: day("2025-01-31")})
	require.NoError(t, err)
	require.Len(t, jan, 1)
	require.Equal(t, "Rent", jan[0].Description)

	_, err = repo.Add(ctx, repository.NewDraw{Partner: "Bob", Date: day("2025-01-05"), Description: "x", Amount: dec("1")})
	require.ErrorIs(t, err, repository.ErrValidation)
}

func TestDrawReplaceAll(t *testing.T) {
	t.Parallel()
	db, ctx := newTestDB(t)
	repo := repository.NewDrawRepo(db)

	_, err := repo.Add(ctx, repository.NewDraw{Partner: repository.PartnerMark, Date: day("2024-06-01"), Description: "Old", Amount: dec("1")})
	require.NoError(t, err)

	batch := []repository.NewDraw{
		{Partner: repository.PartnerKatie, Date: day("2025-01-02"), Description: "A", Amount: dec("10")},
		{Partner: repository.PartnerMark, Date: day("2025-01-03"), Description: "B", Amount: dec("20")},
	}
	require.NoError(t, repo.ReplaceAll(ctx, batch))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, repo.ReplaceAll(ctx, batch))
	n, err = repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	bad := append(batch, repository.NewDraw{Partner: repository.PartnerMark, Date: day("2025-01-04"), Description: " ", Amount: dec("5")})
	require.ErrorIs(t, repo.ReplaceAll(ctx, bad), repository.ErrValidation)
	n, err = repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, repo.ReplaceAll(ctx, nil))
	n, err = repo.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestDrawUpdateDelete(t *testing.T) {
	t.Parallel()
	db, ctx := newTestDB(t)
	repo := repository.NewDrawRepo(db)

	id, err := repo.Add(ctx, repository.NewDraw{Partner: repository.PartnerMark, Date: day("2025-03-01"), Description: "Car", Amount: dec("500")})
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, id, repository.DrawPatch{Amount: ptr(dec("450")), Notes: ptr("split")}))
	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, got.Amount.Equal(dec("450")))
	require.Equal(t, "split", *got.Notes)

	require.NoError(t, repo.Delete(ctx, id))
	require.ErrorIs(t, repo.Delete(ctx, id), repository.ErrNotFound)
}
