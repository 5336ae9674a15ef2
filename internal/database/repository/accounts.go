package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepo handles accounts and the balance snapshots written alongside them.
type AccountRepo struct {
	db DBTX
}

func NewAccountRepo(db DBTX) *AccountRepo {
	return &AccountRepo{db: db}
}

// ListAccounts controls AccountRepo.List.
type ListAccounts struct {
	IncludeInactive bool
}

const accountColumns = `id, name, institution, account_type, last_four, current_balance, credit_limit,
	minimum_payment, due_day, interest_rate, payoff_date, is_business, is_active, notes, created_at, updated_at`

func validateNewAccount(a NewAccount) error {
	if strings.TrimSpace(a.Name) == "" {
		return validationf("account name is required")
	}
	if strings.TrimSpace(a.Institution) == "" {
		return validationf("institution is required")
	}
	if !a.Type.Valid() {
		return validationf("unknown account type %q", a.Type)
	}
	return validateAccountFields(a.LastFour, a.CreditLimit, &a.MinimumPayment, a.DueDay)
}

func validateAccountFields(lastFour *string, limit, payment *decimal.Decimal, dueDay *int) error {
	if lastFour != nil {
		v := strings.TrimSpace(*lastFour)
		for _, r := range v {
			if r < '0' || r > '9' {
				return validationf("last four %q must be digits", v)
			}
		}
	}
	if limit != nil && limit.IsNegative() {
		return validationf("credit limit must not be negative")
	}
	if payment != nil && payment.IsNegative() {
		return validationf("minimum payment must not be negative")
	}
	if dueDay != nil && (*dueDay < 1 || *dueDay > 31) {
		return validationf("due day %d out of range 1-31", *dueDay)
	}
	return nil
}

// Add inserts an active account and returns its id.
func (r *AccountRepo) Add(ctx context.Context, a NewAccount) (string, error) {
	if err := validateNewAccount(a); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(
	 id, name, institution, account_type, last_four, current_balance, credit_limit,
	 minimum_payment, due_day, interest_rate, payoff_date, is_business, is_active, notes,
	 created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		id, strings.TrimSpace(a.Name), strings.TrimSpace(a.Institution), string(a.Type), trimmedOrNil(a.LastFour),
		a.CurrentBalance.String(), decimalArg(a.CreditLimit), a.MinimumPayment.String(), a.DueDay,
		decimalArg(a.InterestRate), dateArg(a.PayoffDate), boolInt(a.IsBusiness), trimmedOrNil(a.Notes))
	if err != nil {
		return "", asConstraint(err, "insert account")
	}
	return id, nil
}

func (r *AccountRepo) Get(ctx context.Context, id string) (Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, notFound("account", id)
	}
	return a, err
}

// List returns accounts with the largest balance first. Inactive accounts are
// excluded unless asked for.
func (r *AccountRepo) List(ctx context.Context, opts ListAccounts) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	if !opts.IncludeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY CAST(current_balance AS REAL) DESC, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Count returns the number of account rows, active or not.
func (r *AccountRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

// Update applies the non-nil fields of p. An empty patch is a no-op.
func (r *AccountRepo) Update(ctx context.Context, id string, p AccountPatch) error {
	if err := validateAccountFields(p.LastFour, p.CreditLimit, p.MinimumPayment, p.DueDay); err != nil {
		return err
	}
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return validationf("account name is required")
		}
		set("name", strings.TrimSpace(*p.Name))
	}
	if p.Institution != nil {
		if strings.TrimSpace(*p.Institution) == "" {
			return validationf("institution is required")
		}
		set("institution", strings.TrimSpace(*p.Institution))
	}
	if p.Type != nil {
		if !p.Type.Valid() {
			return validationf("unknown account type %q", *p.Type)
		}
		set("account_type", string(*p.Type))
	}
	if p.LastFour != nil {
		set("last_four", trimmedOrNil(p.LastFour))
	}
	switch {
	case p.ClearCreditLimit:
		set("credit_limit", nil)
	case p.CreditLimit != nil:
		set("credit_limit", p.CreditLimit.String())
	}
	if p.MinimumPayment != nil {
		set("minimum_payment", p.MinimumPayment.String())
	}
	switch {
	case p.ClearDueDay:
		set("due_day", nil)
	case p.DueDay != nil:
		set("due_day", *p.DueDay)
	}
	if p.InterestRate != nil {
		set("interest_rate", p.InterestRate.String())
	}
	switch {
	case p.ClearPayoffDate:
		set("payoff_date", nil)
	case p.PayoffDate != nil:
		set("payoff_date", formatDate(*p.PayoffDate))
	}
	if p.IsBusiness != nil {
		set("is_business", boolInt(*p.IsBusiness))
	}
	if p.Notes != nil {
		set("notes", trimmedOrNil(p.Notes))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET `+strings.Join(sets, ", ")+`, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, args...)
	if err != nil {
		return asConstraint(err, "update account")
	}
	return requireAffected(res, "account", id)
}

// UpdateBalance sets the current balance and records the day's snapshot in one
// transaction. A second update on the same day replaces that day's snapshot.
func (r *AccountRepo) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal, day time.Time) error {
	return inTx(ctx, r.db, func(q DBTX) error {
		res, err := q.ExecContext(ctx, `UPDATE accounts SET current_balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, balance.String(), id)
		if err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		if err := requireAffected(res, "account", id); err != nil {
			return err
		}
		return upsertSnapshot(ctx, q, id, day, balance)
	})
}

// SoftDelete marks the account inactive; it stays queryable with IncludeInactive.
func (r *AccountRepo) SoftDelete(ctx context.Context, id string) error {
	return r.setActive(ctx, id, false)
}

func (r *AccountRepo) Reactivate(ctx context.Context, id string) error {
	return r.setActive(ctx, id, true)
}

func (r *AccountRepo) setActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, boolInt(active), id)
	if err != nil {
		return fmt.Errorf("set account active: %w", err)
	}
	return requireAffected(res, "account", id)
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

func scanAccount(row scanner) (Account, error) {
	var a Account
	var accountType string
	var lastFour, notes, payoff sql.NullString
	var limit, rate decimal.NullDecimal
	var dueDay sql.NullInt64
	var isBusiness, isActive int
	if err := row.Scan(&a.ID, &a.Name, &a.Institution, &accountType, &lastFour, &a.CurrentBalance, &limit,
		&a.MinimumPayment, &dueDay, &rate, &payoff, &isBusiness, &isActive, &notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Account{}, err
	}
	a.Type = AccountType(accountType)
	a.LastFour = nullString(lastFour)
	a.CreditLimit = nullDecimal(limit)
	a.DueDay = nullInt(dueDay)
	a.InterestRate = nullDecimal(rate)
	a.IsBusiness = isBusiness == 1
	a.IsActive = isActive == 1
	a.Notes = nullString(notes)
	pd, err := nullDate(payoff)
	if err != nil {
		return Account{}, err
	}
	a.PayoffDate = pd
	return a, nil
}
