package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/liquidity/internal/database/repository"
)

type seedAccount struct {
	name, institution string
	kind              repository.AccountType
	lastFour          string
	balance, limit    string
	payment           string
	dueDay            int
	rate              string
	payoff            string
	business          bool
	notes             string
}

var seedAccounts = []seedAccount{
	{"Chase Ink Reserve", "Chase", repository.AccountCreditCard, "0678", "141398.50", "150000", "122291.79", 17, "", "", true, "CRITICAL: Huge payment due"},
	{"Capital One Venture X", "Capital One", repository.AccountCreditCard, "8615", "17538.56", "30000", "17538.56", 20, "", "", true, "Pay Full Balance"},
	{"Amex Gold (Ad Account)", "Amex", repository.AccountCreditCard, "51008", "6560.22", "25000", "4355.21", 2, "", "", true, "Primary ad spend card"},
	{"Amex Gold (Marketing)", "Amex", repository.AccountCreditCard, "51001", "5465.09", "25000", "1282.11", 18, "", "", true, "Marketing Card"},
	{"Amex Amazon", "Amex", repository.AccountCreditCard, "61002", "1111.63", "10000", "35.00", 15, "", "", true, "Amazon Prime"},
	{"Amex Plum", "Amex", repository.AccountCreditCard, "31003", "235.60", "50000", "0", 0, "", "", true, "Flexible Pay"},
	{"Chase Sapphire", "Chase", repository.AccountCreditCard, "5125", "887.07", "15000", "0", 4, "", "", false, "Personal"},
	{"Chase Biz Ink", "Chase", repository.AccountCreditCard, "8187", "0", "25000", "0", 9, "", "", true, "Zero Balance"},
	{"Capital One Savor", "Capital One", repository.AccountCreditCard, "5920", "1929.86", "10000", "1929.86", 0, "", "", false, "Personal card"},

	{"Tax Debt (Katie)", "IRS", repository.AccountTaxDebt, "", "40377.78", "", "1230.00", 15, "", "", true, "2020/2021 Taxes"},
	{"Land Rover Auto Loan", "Land Rover Financial", repository.AccountAutoLoan, "", "63940.87", "", "1596.07", 27, "", "2029-07-27", false, "Loan Ends July 2029"},
	{"Best Egg Personal Loan", "Best Egg", repository.AccountPersonalLoan, "1753", "32545.15", "", "1283.58", 7, "", "", false, "Autopay ON"},
	{"LendingPoint Personal Loan", "LendingPoint", repository.AccountPersonalLoan, "6143", "8744.74", "", "1139.15", 23, "", "", false, "16 Payments Left"},

	{"Sandra Lopez Loan", "Sandra Lopez", repository.AccountPrivateLoan, "", "117000.00", "", "3000.00", 1, "0", "", false, "No interest - straight paydown"},
	{"John Lyon Card", "Chase (for John Lyon)", repository.AccountCreditCard, "", "19600.00", "25000", "1400.00", 22, "", "2027-03-21", false, "Paying on behalf of John Lyon"},
	{"Martin Toha", "Martin Toha", repository.AccountPrivateLoan, "", "30000.00", "", "0", 0, "", "", false, "No payment plan yet - track balance only"},
}

var seedRewards = []struct {
	name   string
	points int64
	value  string
}{
	{"Amex Membership Rewards", 1148376, "0.015"},
	{"Chase Ultimate Rewards", 985997, "0.015"},
	{"Capital One Miles", 313946, "0.01"},
	{"Amazon Rewards", 221369, "0.01"},
	{"American Airlines", 26789, "0.014"},
	{"Atmos Rewards (Alaska/Hawaiian)", 551625, "0.014"},
}

var seedRewardsDate = time.Date(2026, time.January, 27, 0, 0, 0, 0, time.UTC)

type seedCategory struct {
	name string
	subs []string
}

var seedCategories = []struct {
	bucket     repository.Bucket
	categories []seedCategory
}{
	{repository.BucketEngine, []seedCategory{
		{"Revenue", []string{"Client Payments", "Consulting", "Other Income"}},
		{"Ad Spend", []string{"Facebook/Meta", "Google", "TikTok", "Other Platforms"}},
		{"Partner Payouts", []string{"Digital Viking", "Other Partners"}},
		{"Commissions", nil},
	}},
	{repository.BucketOverhead, []seedCategory{
		{"Payroll", []string{"Gusto/Salaries", "Contractors"}},
		{"Debt Service", []string{"Credit Cards", "Personal Loans", "Auto Loan", "Tax Debt", "Private Loans"}},
		{"Subscriptions", []string{"Software", "Services"}},
		{"Insurance", nil},
		{"Professional Services", []string{"Legal", "Accounting"}},
	}},
	{repository.BucketLifestyle, []seedCategory{
		{"Dining", nil},
		{"Travel", []string{"Flights", "Hotels", "Transportation", "Activities"}},
		{"Entertainment", nil},
		{"Shopping", []string{"Mark", "Katie", "Gifts/Other"}},
		{"Home", nil},
		{"Health/Fitness", nil},
		{"Distributions/Draws", nil},
	}},
}

var seedRules = []struct {
	pattern  string
	bucket   repository.Bucket
	category string
	sub      string
	priority int
}{
	{"NEWLIN", repository.BucketEngine, "Revenue", "Client Payments", 10},
	{"RME", repository.BucketEngine, "Revenue", "Client Payments", 10},
	{"FACEBOOK", repository.BucketEngine, "Ad Spend", "Facebook/Meta", 20},
	{"META ADS", repository.BucketEngine, "Ad Spend", "Facebook/Meta", 20},
	{"GOOGLE ADS", repository.BucketEngine, "Ad Spend", "Google", 20},
	{"TIKTOK", repository.BucketEngine, "Ad Spend", "TikTok", 20},
	{"DIGITAL VIKING", repository.BucketEngine, "Partner Payouts", "Digital Viking", 30},
	{"GUSTO", repository.BucketOverhead, "Payroll", "Gusto/Salaries", 40},
	{"BEST EGG", repository.BucketOverhead, "Debt Service", "Personal Loans", 50},
	{"LENDINGPOINT", repository.BucketOverhead, "Debt Service", "Personal Loans", 50},
	{"LAND ROVER FIN", repository.BucketOverhead, "Debt Service", "Auto Loan", 50},
	{"IRS", repository.BucketOverhead, "Debt Service", "Tax Debt", 50},
	{"EFTPS", repository.BucketOverhead, "Debt Service", "Tax Debt", 50},
}

// SeedDefaults loads the starting accounts, rewards programs, categories and
// rules into an empty store. It does nothing when any account exists, so it
// is safe to run on every startup. All rows are written in one transaction.
func SeedDefaults(ctx context.Context, db *sql.DB) (bool, error) {
	n, err := repository.NewAccountRepo(db).Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := seedAccountRows(ctx, repository.NewAccountRepo(tx)); err != nil {
			return err
		}
		rewards := repository.NewRewardsRepo(tx)
		for _, r := range seedRewards {
			v := decimal.RequireFromString(r.value)
			day := seedRewardsDate
			if err := rewards.Upsert(ctx, repository.RewardsProgram{Name: r.name, Balance: r.points, PointValue: &v, LastUpdated: &day}); err != nil {
				return fmt.Errorf("seed rewards %s: %w", r.name, err)
			}
		}
		cats := repository.NewCategoryRepo(tx)
		order := 0
		for _, b := range seedCategories {
			for _, c := range b.categories {
				if len(c.subs) == 0 {
					if _, err := cats.Add(ctx, b.bucket, c.name, nil, order); err != nil {
						return fmt.Errorf("seed category %s: %w", c.name, err)
					}
					order++
					continue
				}
				for _, s := range c.subs {
					sub := s
					if _, err := cats.Add(ctx, b.bucket, c.name, &sub, order); err != nil {
						return fmt.Errorf("seed category %s/%s: %w", c.name, s, err)
					}
					order++
				}
			}
		}
		rules := repository.NewRuleRepo(tx)
		for _, r := range seedRules {
			sub, prio := r.sub, r.priority
			if _, err := rules.Add(ctx, repository.NewRule{
				Pattern: r.pattern, MatchType: repository.MatchContains, Bucket: r.bucket,
				Category: r.category, Subcategory: &sub, Priority: &prio,
			}); err != nil {
				return fmt.Errorf("seed rule %s: %w", r.pattern, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func seedAccountRows(ctx context.Context, accounts *repository.AccountRepo) error {
	for _, s := range seedAccounts {
		a := repository.NewAccount{
			Name:           s.name,
			Institution:    s.institution,
			Type:           s.kind,
			CurrentBalance: decimal.RequireFromString(s.balance),
			MinimumPayment: decimal.RequireFromString(s.payment),
			IsBusiness:     s.business,
		}
		if s.lastFour != "" {
			v := s.lastFour
			a.LastFour = &v
		}
		if s.limit != "" {
			v := decimal.RequireFromString(s.limit)
			a.CreditLimit = &v
		}
		if s.dueDay > 0 {
			v := s.dueDay
			a.DueDay = &v
		}
		if s.rate != "" {
			v := decimal.RequireFromString(s.rate)
			a.InterestRate = &v
		}
		if s.payoff != "" {
			t, err := time.Parse(time.DateOnly, s.payoff)
			if err != nil {
				return err
			}
			a.PayoffDate = &t
		}
		if s.notes != "" {
			v := s.notes
			a.Notes = &v
		}
		if _, err := accounts.Add(ctx, a); err != nil {
			return fmt.Errorf("seed account %s: %w", s.name, err)
		}
	}
	return nil
}
