// Package report computes dashboard figures from store records. Every function
// is pure; callers pass in the rows they have already loaded.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jask/liquidity/internal/database/repository"
)

// TypeTotal is one debt_by_type group.
type TypeTotal struct {
	Type  repository.AccountType
	Total decimal.Decimal
	Count int
}

func owes(a repository.Account) bool {
	return a.IsActive && a.CurrentBalance.IsPositive()
}

// TotalDebt sums positive balances of active accounts. Credits are excluded,
// not subtracted.
func TotalDebt(accounts []repository.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		if owes(a) {
			total = total.Add(a.CurrentBalance)
		}
	}
	return total
}

// MonthlyObligations sums positive minimum payments of active accounts.
func MonthlyObligations(accounts []repository.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		if a.IsActive && a.MinimumPayment.IsPositive() {
			total = total.Add(a.MinimumPayment)
		}
	}
	return total
}

// DebtByType groups the accounts counted by TotalDebt, largest total first.
func DebtByType(accounts []repository.Account) []TypeTotal {
	idx := map[repository.AccountType]int{}
	var out []TypeTotal
	for _, a := range accounts {
		if !owes(a) {
			continue
		}
		i, ok := idx[a.Type]
		if !ok {
			i = len(out)
			idx[a.Type] = i
			out = append(out, TypeTotal{Type: a.Type, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(a.CurrentBalance)
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// RewardsValue is balance times point value; an unknown point value counts as zero.
func RewardsValue(p repository.RewardsProgram) decimal.Decimal {
	if p.PointValue == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(p.Balance).Mul(*p.PointValue)
}

func RewardsTotalValue(programs []repository.RewardsProgram) decimal.Decimal {
	total := decimal.Zero
	for _, p := range programs {
		total = total.Add(RewardsValue(p))
	}
	return total
}
