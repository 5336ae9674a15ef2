package report

import (
	"github.com/shopspring/decimal"

	"github.com/jask/liquidity/internal/database/repository"
)

// Band is a threshold classification shared by utilization and cash.
type Band string

const (
	BandOK       Band = "ok"
	BandWarning  Band = "warning"
	BandCritical Band = "critical"
)

// Bands holds utilization thresholds as ratios. A ratio below Warning is ok,
// above Danger is critical, and anything between (inclusive) is a warning.
type Bands struct {
	Warning decimal.Decimal
	Danger  decimal.Decimal
}

// BandsFromRatios builds Bands from configured float ratios.
func BandsFromRatios(warning, danger float64) Bands {
	return Bands{Warning: decimal.NewFromFloat(warning), Danger: decimal.NewFromFloat(danger)}
}

// AccountUtilization pairs an account with its utilization ratio and band.
type AccountUtilization struct {
	Account repository.Account
	Ratio   decimal.Decimal
	Band    Band
}

// Utilization returns balance/limit. ok is false when the limit is missing or
// not positive; such accounts have no defined utilization.
func Utilization(a repository.Account) (decimal.Decimal, bool) {
	if a.CreditLimit == nil || !a.CreditLimit.IsPositive() {
		return decimal.Zero, false
	}
	return a.CurrentBalance.Div(*a.CreditLimit), true
}

func ClassifyUtilization(ratio decimal.Decimal, b Bands) Band {
	switch {
	case ratio.LessThan(b.Warning):
		return BandOK
	case ratio.GreaterThan(b.Danger):
		return BandCritical
	default:
		return BandWarning
	}
}

func isCard(a repository.Account) bool {
	return a.IsActive && a.Type == repository.AccountCreditCard
}

// AccountUtilizations lists active credit cards with a defined ratio, in input order.
func AccountUtilizations(accounts []repository.Account, b Bands) []AccountUtilization {
	var out []AccountUtilization
	for _, a := range accounts {
		if !isCard(a) {
			continue
		}
		ratio, ok := Utilization(a)
		if !ok {
			continue
		}
		out = append(out, AccountUtilization{Account: a, Ratio: ratio, Band: ClassifyUtilization(ratio, b)})
	}
	return out
}

// AggregateUtilization divides summed card balances by summed limits over the
// cards that have a defined ratio. ok is false when there are none.
func AggregateUtilization(accounts []repository.Account, b Bands) (AccountUtilization, bool) {
	balance, limit := decimal.Zero, decimal.Zero
	for _, a := range accounts {
		if !isCard(a) {
			continue
		}
		if _, ok := Utilization(a); !ok {
			continue
		}
		balance = balance.Add(a.CurrentBalance)
		limit = limit.Add(*a.CreditLimit)
	}
	if !limit.IsPositive() {
		return AccountUtilization{}, false
	}
	ratio := balance.Div(limit)
	return AccountUtilization{
		Account: repository.Account{Name: "All cards", Type: repository.AccountCreditCard, CurrentBalance: balance, CreditLimit: &limit, IsActive: true},
		Ratio:   ratio,
		Band:    ClassifyUtilization(ratio, b),
	}, true
}

// CashBand classifies a cash position: below danger is critical, below warning
// is a warning.
func CashBand(cash, warning, danger decimal.Decimal) Band {
	switch {
	case cash.LessThan(danger):
		return BandCritical
	case cash.LessThan(warning):
		return BandWarning
	default:
		return BandOK
	}
}
