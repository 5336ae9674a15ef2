package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceHistoryRepo reads balance snapshots. Writes happen through AccountRepo.UpdateBalance.
type BalanceHistoryRepo struct {
	db DBTX
}

func NewBalanceHistoryRepo(db DBTX) *BalanceHistoryRepo { return &BalanceHistoryRepo{db: db} }

// upsertSnapshot keeps one row per (account, day); the latest write wins.
func upsertSnapshot(ctx context.Context, q DBTX, accountID string, day time.Time, balance decimal.Decimal) error {
	_, err := q.ExecContext(ctx, `
	INSERT INTO balance_history(id, account_id, balance_date, balance, recorded_at)
	VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(account_id, balance_date) DO UPDATE SET
	 balance=excluded.balance,
	 recorded_at=CURRENT_TIMESTAMP;
	`, uuid.NewString(), accountID, formatDate(day), balance.String())
	if err != nil {
		return fmt.Errorf("upsert balance snapshot: %w", err)
	}
	return nil
}

// ListForAccount returns snapshots newest first.
func (r *BalanceHistoryRepo) ListForAccount(ctx context.Context, accountID string) ([]BalanceSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, account_id, balance_date, balance, recorded_at
	FROM balance_history WHERE account_id = ?
	ORDER BY balance_date DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query balance history: %w", err)
	}
	defer rows.Close()
	var out []BalanceSnapshot
	for rows.Next() {
		var s BalanceSnapshot
		var day string
		if err := rows.Scan(&s.ID, &s.AccountID, &day, &s.Balance, &s.RecordedAt); err != nil {
			return nil, err
		}
		if s.Date, err = parseDate(day); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
