package repository_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/liquidity/internal/database/repository"
)

func TestCategoryTripleIsUnique(t *testing.T) {
	t.Parallel()
	db, ctx := newTestDB(t)
	repo := repository.NewCategoryRepo(db)

	_, err := repo.Add(ctx, repository.BucketEngine, "Revenue", ptr("Consulting"), 0)
	require.NoError(t, err)
	_, err = repo.Add(ctx, repository.BucketEngine, "Revenue", ptr("Consulting"), 1)
	require.ErrorIs(t, err, repository.ErrConstraint)

	// NULL subcategory collides only with another NULL.
	_, err = repo.Add(ctx, repository.BucketEngine, "Revenue", nil, 2)
	require.NoError(t, err)
	_, err = repo.Add(ctx, repository.BucketEngine, "Revenue", ptr(""), 3)
	require.ErrorIs(t, err, repository.ErrConstraint)

	_, err = repo.Add(ctx, repository.BucketOverhead, "Revenue", ptr("Consulting"), 4)
	require.NoError(t, err)

	engine, err := repo.List(ctx, repository.BucketEngine)
	require.NoError(t, err)
	require.Len(t, engine, 2)
	require.Equal(t, "Consulting", *engine[0].Subcategory)
	require.Nil(t, engine[1].Subcategory)

	require.NoError(t, repo.SetActive(ctx, engine[0].ID, false))
	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.False(t, all[0].IsActive)

	_, err = repo.Add(ctx, "OTHER", "Revenue", nil, 0)
	require.ErrorIs(t, err, repository.ErrValidation)
}

func TestRulesOrderedByPriority(t *testing.T) {
	t.Parallel()
	db, ctx := newTestDB(t)
	repo := repository.NewRuleRepo(db)

	_, err := repo.Add(ctx, repository.NewRule{Pattern: "gusto", Bucket: repository.BucketOverhead, Category: "Payroll"})
	require.NoError(t, err)
	_, err = repo.Add(ctx, repository.NewRule{Pattern: "newlin", MatchType: repository.MatchContains, Bucket: repository.BucketEngine, Category: "Revenue", Priority: ptr(10)})
	require.NoError(t, err)
	offID, err := repo.Add(ctx, repository.NewRule{Pattern: "^IRS", MatchType: repository.MatchRegex, Bucket: repository.BucketOverhead, Category: "Debt Service", Priority: ptr(50)})
	require.NoError(t, err)

	rules, err := repo.List(ctx, repository.ListRules{})
	require.NoError(t, err)
	require.Len(t, rules, 3)
	require.Equal(t, "NEWLIN", rules[0].Pattern)
	require.Equal(t, "^IRS", rules[1].Pattern)
	require.Equal(t, "GUSTO", rules[2].Pattern)
	require.Equal(t, 100, rules[2].Priority)
	require.Equal(t, repository.MatchContains, rules[2].MatchType)

	require.NoError(t, repo.SetActive(ctx, offID, false))
	active, err := repo.List(ctx, repository.ListRules{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 2)

	_, err = repo.Add(ctx, repository.NewRule{Pattern: "([", MatchType: repository.MatchRegex, Bucket: repository.BucketEngine, Category: "Revenue"})
	require.ErrorIs(t, err, repository.ErrValidation)
	_, err = repo.Add(ctx, repository.NewRule{Pattern: "X", MatchType: "fuzzy", Bucket: repository.BucketEngine, Category: "Revenue"})
	require.ErrorIs(t, err, repository.ErrValidation)

	require.NoError(t, repo.Delete(ctx, offID))
	require.ErrorIs(t, repo.Delete(ctx, offID), repository.ErrNotFound)
}

func TestRegexRulesKeepTheirCase(t *testing.T) {
	t.Parallel()
	db, ctx := newTestDB(t)
	repo := repository.NewRuleRepo(db)

	for _, pattern := range []string{`^ACH\s+\d{4}\b`, `(?i)best egg`} {
		_, err := repo.Add(ctx, repository.NewRule{Pattern: pattern, MatchType: repository.MatchRegex, Bucket: repository.BucketOverhead, Category: "Debt Service"})
		require.NoError(t, err, pattern)
	}
	_, err := repo.Add(ctx, repository.NewRule{Pattern: " land rover ", MatchType: repository.MatchExact, Bucket: repository.BucketOverhead, Category: "Debt Service"})
	require.NoError(t, err)

	rules, err := repo.List(ctx, repository.ListRules{})
	require.NoError(t, err)
	got := map[string]repository.MatchType{}
	for _, r := range rules {
		got[r.Pattern] = r.MatchType
	}
	require.Equal(t, map[string]repository.MatchType{
		`^ACH\s+\d{4}\b`: repository.MatchRegex,
		`(?i)best egg`:   repository.MatchRegex,
		"LAND ROVER":     repository.MatchExact,
	}, got)
}

func TestSettings(t *testing.T) {
	t.Parallel()
	db, ctx := newTestDB(t)
	repo := repository.NewSettingsRepo(db)

	_, ok, err := repo.Get(ctx, "thresholds.cash_warning")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Set(ctx, "thresholds.cash_warning", "40000"))
	require.NoError(t, repo.Set(ctx, "thresholds.cash_warning", "45000"))
	v, ok, err := repo.Get(ctx, "thresholds.cash_warning")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "45000", v)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"thresholds.cash_warning": "45000"}, all)

	require.ErrorIs(t, repo.Set(ctx, " ", "x"), repository.ErrValidation)
}
