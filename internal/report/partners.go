package report

import (
	"github.com/shopspring/decimal"

	"github.com/jask/liquidity/internal/database/repository"
)

// Leader says which partner has drawn more.
type Leader string

const (
	LeaderA    Leader = "a"
	LeaderB    Leader = "b"
	LeaderEven Leader = "even"
)

// PartnerTotal is one partner's draw sum and row count.
type PartnerTotal struct {
	Partner repository.Partner
	Total   decimal.Decimal
	Count   int
}

// PartnerSummary compares two partners. Diff is A minus B.
type PartnerSummary struct {
	A, B   PartnerTotal
	Diff   decimal.Decimal
	Leader Leader
}

// PartnerTotals sums draws for partners a and b. Draws for anyone else are ignored.
func PartnerTotals(draws []repository.Draw, a, b repository.Partner) PartnerSummary {
	s := PartnerSummary{
		A: PartnerTotal{Partner: a, Total: decimal.Zero},
		B: PartnerTotal{Partner: b, Total: decimal.Zero},
	}
	for _, d := range draws {
		switch d.Partner {
		case a:
			s.A.Total = s.A.Total.Add(d.Amount)
			s.A.Count++
		case b:
			s.B.Total = s.B.Total.Add(d.Amount)
			s.B.Count++
		}
	}
	s.Diff, s.Leader = PartnerBalance(s.A.Total, s.B.Total)
	return s
}

// PartnerBalance returns aTotal-bTotal and who is ahead. Zero is even.
func PartnerBalance(aTotal, bTotal decimal.Decimal) (decimal.Decimal, Leader) {
	diff := aTotal.Sub(bTotal)
	switch diff.Sign() {
	case 1:
		return diff, LeaderA
	case -1:
		return diff, LeaderB
	default:
		return diff, LeaderEven
	}
}
