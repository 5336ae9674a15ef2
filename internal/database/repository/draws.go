package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DrawRepo handles partner draws.
type DrawRepo struct {
	db DBTX
}

func NewDrawRepo(db DBTX) *DrawRepo { return &DrawRepo{db: db} }

func validateDraw(d NewDraw) error {
	if !d.Partner.Valid() {
		return validationf("unknown partner %q", d.Partner)
	}
	if strings.TrimSpace(d.Description) == "" {
		return validationf("draw description is required")
	}
	if d.Date.IsZero() {
		return validationf("draw date is required")
	}
	return nil
}

func insertDraw(ctx context.Context, q DBTX, d NewDraw) (string, error) {
	id := uuid.NewString()
	_, err := q.ExecContext(ctx, `
	INSERT INTO partner_draws(id, partner, draw_date, description, amount, notes, transaction_id, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, id, string(d.Partner), formatDate(d.Date), strings.TrimSpace(d.Description), d.Amount.String(),
		trimmedOrNil(d.Notes), d.TransactionID)
	if err != nil {
		return "", asConstraint(err, "insert draw")
	}
	return id, nil
}

// Add records a single draw. The amount is stored with its sign unchanged.
func (r *DrawRepo) Add(ctx context.Context, d NewDraw) (string, error) {
	if err := validateDraw(d); err != nil {
		return "", err
	}
	return insertDraw(ctx, r.db, d)
}

// ReplaceAll deletes every draw and inserts draws in one transaction. Nothing
// changes if any row fails validation or insertion.
func (r *DrawRepo) ReplaceAll(ctx context.Context, draws []NewDraw) error {
	for i, d := range draws {
		if err := validateDraw(d); err != nil {
			return fmt.Errorf("draw %d: %w", i, err)
		}
	}
	return inTx(ctx, r.db, func(q DBTX) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM partner_draws`); err != nil {
			return fmt.Errorf("clear draws: %w", err)
		}
		for i, d := range draws {
			if _, err := insertDraw(ctx, q, d); err != nil {
				return fmt.Errorf("draw %d: %w", i, err)
			}
		}
		return nil
	})
}

func (r *DrawRepo) Get(ctx context.Context, id string) (Draw, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, partner, draw_date, description, amount, notes, transaction_id, created_at FROM partner_draws WHERE id = ?`, id)
	d, err := scanDraw(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Draw{}, notFound("draw", id)
	}
	return d, err
}

// List returns draws newest first.
func (r *DrawRepo) List(ctx context.Context, f DrawFilter) ([]Draw, error) {
	var where []string
	var args []any
	if f.Partner != "" {
		where = append(where, "partner = ?")
		args = append(args, string(f.Partner))
	}
	if !f.From.IsZero() {
		where = append(where, "draw_date >= ?")
		args = append(args, formatDate(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "draw_date <= ?")
		args = append(args, formatDate(f.To))
	}
	query := "SELECT id, partner, draw_date, description, amount, notes, transaction_id, created_at FROM partner_draws"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY draw_date DESC, created_at DESC, rowid DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query draws: %w", err)
	}
	defer rows.Close()
	var out []Draw
	for rows.Next() {
		d, err := scanDraw(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update applies the non-nil fields of p. An empty patch is a no-op.
func (r *DrawRepo) Update(ctx context.Context, id string, p DrawPatch) error {
	var sets []string
	var args []any
	if p.Partner != nil {
		if !p.Partner.Valid() {
			return validationf("unknown partner %q", *p.Partner)
		}
		sets = append(sets, "partner = ?")
		args = append(args, string(*p.Partner))
	}
	if p.Date != nil {
		sets = append(sets, "draw_date = ?")
		args = append(args, formatDate(*p.Date))
	}
	if p.Description != nil {
		if strings.TrimSpace(*p.Description) == "" {
			return validationf("draw description is required")
		}
		sets = append(sets, "description = ?")
		args = append(args, strings.TrimSpace(*p.Description))
	}
	if p.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, p.Amount.String())
	}
	if p.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, trimmedOrNil(p.Notes))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, `UPDATE partner_draws SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return asConstraint(err, "update draw")
	}
	return requireAffected(res, "draw", id)
}

func (r *DrawRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM partner_draws WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete draw: %w", err)
	}
	return requireAffected(res, "draw", id)
}

// Count returns the number of draw rows.
func (r *DrawRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM partner_draws`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count draws: %w", err)
	}
	return n, nil
}

func scanDraw(row scanner) (Draw, error) {
	var d Draw
	var partner, day string
	var notes, txID sql.NullString
	if err := row.Scan(&d.ID, &partner, &day, &d.Description, &d.Amount, &notes, &txID, &d.CreatedAt); err != nil {
		return Draw{}, err
	}
	d.Partner = Partner(partner)
	d.Notes = nullString(notes)
	d.TransactionID = nullString(txID)
	t, err := parseDate(day)
	if err != nil {
		return Draw{}, err
	}
	d.Date = t
	return d, nil
}
