package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates stored account_type values.
type AccountType string

const (
	AccountChecking     AccountType = "checking"
	AccountSavings      AccountType = "savings"
	AccountCreditCard   AccountType = "credit_card"
	AccountPersonalLoan AccountType = "personal_loan"
	AccountAutoLoan     AccountType = "auto_loan"
	AccountTaxDebt      AccountType = "tax_debt"
	AccountPrivateLoan  AccountType = "private_loan"
	AccountOther        AccountType = "other"
)

// AccountTypes lists every valid account type in display order.
var AccountTypes = []AccountType{
	AccountChecking, AccountSavings, AccountCreditCard, AccountPersonalLoan,
	AccountAutoLoan, AccountTaxDebt, AccountPrivateLoan, AccountOther,
}

func (t AccountType) Valid() bool {
	for _, v := range AccountTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Partner is one of the two fixed draw identities.
type Partner string

const (
	PartnerMark  Partner = "Mark"
	PartnerKatie Partner = "Katie"
)

// Partners lists both identities; Mark is partner A in balance reporting.
var Partners = []Partner{PartnerMark, PartnerKatie}

func (p Partner) Valid() bool { return p == PartnerMark || p == PartnerKatie }

// Bucket is a top-level category classification.
type Bucket string

const (
	BucketEngine    Bucket = "ENGINE"
	BucketOverhead  Bucket = "OVERHEAD"
	BucketLifestyle Bucket = "LIFESTYLE"
)

var Buckets = []Bucket{BucketEngine, BucketOverhead, BucketLifestyle}

func (b Bucket) Valid() bool { return b == BucketEngine || b == BucketOverhead || b == BucketLifestyle }

// MatchType is how an auto-rule pattern is compared to a description.
type MatchType string

const (
	MatchContains MatchType = "contains"
	MatchExact    MatchType = "exact"
	MatchRegex    MatchType = "regex"
)

func (m MatchType) Valid() bool { return m == MatchContains || m == MatchExact || m == MatchRegex }

// Account represents an account row. Positive balances are owed or held.
type Account struct {
	ID             string
	Name           string
	Institution    string
	Type           AccountType
	LastFour       *string
	CurrentBalance decimal.Decimal
	CreditLimit    *decimal.Decimal
	MinimumPayment decimal.Decimal
	DueDay         *int
	InterestRate   *decimal.Decimal
	PayoffDate     *time.Time
	IsBusiness     bool
	IsActive       bool
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAccount is the input to AccountRepo.Add.
type NewAccount struct {
	Name           string
	Institution    string
	Type           AccountType
	LastFour       *string
	CurrentBalance decimal.Decimal
	CreditLimit    *decimal.Decimal
	MinimumPayment decimal.Decimal
	DueDay         *int
	InterestRate   *decimal.Decimal
	PayoffDate     *time.Time
	IsBusiness     bool
	Notes          *string
}

// AccountPatch lists the account fields that may be edited. Nil fields are
// left unchanged. Balance goes through UpdateBalance and activity through
// SoftDelete/Reactivate.
type AccountPatch struct {
	Name           *string
	Institution    *string
	Type           *AccountType
	LastFour       *string
	CreditLimit    *decimal.Decimal
	MinimumPayment *decimal.Decimal
	DueDay         *int
	InterestRate   *decimal.Decimal
	PayoffDate     *time.Time
	IsBusiness     *bool
	Notes          *string

	ClearCreditLimit bool
	ClearDueDay      bool
	ClearPayoffDate  bool
}

// BalanceSnapshot is one balance_history row.
type BalanceSnapshot struct {
	ID         string
	AccountID  string
	Date       time.Time
	Balance    decimal.Decimal
	RecordedAt time.Time
}

// RewardsProgram represents a rewards_points row.
type RewardsProgram struct {
	ID          string
	Name        string
	Balance     int64
	PointValue  *decimal.Decimal
	LastUpdated *time.Time
	Notes       *string
}

// Draw represents a partner_draws row. Positive amounts are draws, negative are returns.
type Draw struct {
	ID            string
	Partner       Partner
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	Notes         *string
	TransactionID *string
	CreatedAt     time.Time
}

// NewDraw is the input to DrawRepo.Add and ReplaceAll.
type NewDraw struct {
	Partner       Partner
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	Notes         *string
	TransactionID *string
}

// DrawPatch lists editable draw fields. Nil fields are left unchanged.
type DrawPatch struct {
	Partner     *Partner
	Date        *time.Time
	Description *string
	Amount      *decimal.Decimal
	Notes       *string
}

// DrawFilter narrows DrawRepo.List. Zero values mean no filter; From and To are inclusive.
type DrawFilter struct {
	Partner Partner
	From    time.Time
	To      time.Time
}

// Category represents a categories row.
type Category struct {
	ID           string
	Bucket       Bucket
	Category     string
	Subcategory  *string
	IsActive     bool
	DisplayOrder int
}

// Rule represents an auto_rules row.
type Rule struct {
	ID          string
	Pattern     string
	MatchType   MatchType
	Bucket      Bucket
	Category    string
	Subcategory *string
	Tag         *string
	Priority    int
	IsActive    bool
	CreatedAt   time.Time
}

// NewRule is the input to RuleRepo.Add. A nil Priority stores the default (100).
type NewRule struct {
	Pattern     string
	MatchType   MatchType
	Bucket      Bucket
	Category    string
	Subcategory *string
	Tag         *string
	Priority    *int
}
