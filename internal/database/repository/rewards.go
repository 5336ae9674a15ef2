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

// RewardsRepo handles rewards programs, keyed by program name.
type RewardsRepo struct {
	db DBTX
}

func NewRewardsRepo(db DBTX) *RewardsRepo { return &RewardsRepo{db: db} }

// Upsert inserts a program or replaces the balance, value and notes of the one with the same name.
func (r *RewardsRepo) Upsert(ctx context.Context, p RewardsProgram) error {
	return upsertRewards(ctx, r.db, p)
}

func upsertRewards(ctx context.Context, q DBTX, p RewardsProgram) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return validationf("program name is required")
	}
	if p.Balance < 0 {
		return validationf("points balance must not be negative")
	}
	if p.PointValue != nil && p.PointValue.IsNegative() {
		return validationf("point value must not be negative")
	}
	_, err := q.ExecContext(ctx, `
	INSERT INTO rewards_points(id, program_name, current_balance, point_value, last_updated, notes)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(program_name) DO UPDATE SET
	 current_balance=excluded.current_balance,
	 point_value=excluded.point_value,
	 last_updated=excluded.last_updated,
	 notes=excluded.notes;
	`, uuid.NewString(), name, p.Balance, decimalArg(p.PointValue), dateArg(p.LastUpdated), trimmedOrNil(p.Notes))
	if err != nil {
		return asConstraint(err, "upsert rewards")
	}
	return nil
}

// UpdateBalance sets the points balance and stamps last_updated with day.
func (r *RewardsRepo) UpdateBalance(ctx context.Context, name string, points int64, day time.Time) error {
	if points < 0 {
		return validationf("points balance must not be negative")
	}
	res, err := r.db.ExecContext(ctx, `UPDATE rewards_points SET current_balance = ?, last_updated = ? WHERE program_name = ?`,
		points, formatDate(day), name)
	if err != nil {
		return fmt.Errorf("update rewards balance: %w", err)
	}
	return requireAffected(res, "rewards program", name)
}

func (r *RewardsRepo) Get(ctx context.Context, name string) (RewardsProgram, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, program_name, current_balance, point_value, last_updated, notes FROM rewards_points WHERE program_name = ?`, name)
	p, err := scanRewards(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RewardsProgram{}, notFound("rewards program", name)
	}
	return p, err
}

// List returns programs with the largest points balance first.
func (r *RewardsRepo) List(ctx context.Context) ([]RewardsProgram, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, program_name, current_balance, point_value, last_updated, notes FROM rewards_points ORDER BY current_balance DESC, program_name`)
	if err != nil {
		return nil, fmt.Errorf("query rewards: %w", err)
	}
	defer rows.Close()
	var out []RewardsProgram
	for rows.Next() {
		p, err := scanRewards(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *RewardsRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rewards_points WHERE program_name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete rewards: %w", err)
	}
	return requireAffected(res, "rewards program", name)
}

func scanRewards(row scanner) (RewardsProgram, error) {
	var p RewardsProgram
	var value decimal.NullDecimal
	var updated, notes sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Balance, &value, &updated, &notes); err != nil {
		return RewardsProgram{}, err
	}
	p.PointValue = nullDecimal(value)
	p.Notes = nullString(notes)
	lu, err := nullDate(updated)
	if err != nil {
		return RewardsProgram{}, err
	}
	p.LastUpdated = lu
	return p, nil
}
