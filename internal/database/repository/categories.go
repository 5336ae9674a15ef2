package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CategoryRepo handles the bucket/category/subcategory taxonomy.
type CategoryRepo struct {
	db DBTX
}

func NewCategoryRepo(db DBTX) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Add inserts an active category. A blank subcategory is stored as NULL, and a
// duplicate (bucket, category, subcategory) triple fails with ErrConstraint.
func (r *CategoryRepo) Add(ctx context.Context, bucket Bucket, category string, subcategory *string, displayOrder int) (string, error) {
	if !bucket.Valid() {
		return "", validationf("unknown bucket %q", bucket)
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return "", validationf("category name is required")
	}
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO categories(id, bucket, category, subcategory, is_active, display_order)
	VALUES (?, ?, ?, ?, 1, ?)
	`, id, string(bucket), category, trimmedOrNil(subcategory), displayOrder)
	if err != nil {
		return "", asConstraint(err, "insert category")
	}
	return id, nil
}

// List returns categories in display order. An empty bucket lists all of them.
func (r *CategoryRepo) List(ctx context.Context, bucket Bucket) ([]Category, error) {
	query := `SELECT id, bucket, category, subcategory, is_active, display_order FROM categories`
	var args []any
	if bucket != "" {
		query += ` WHERE bucket = ?`
		args = append(args, string(bucket))
	}
	query += ` ORDER BY display_order, category, COALESCE(subcategory, '')`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		var b string
		var sub sql.NullString
		var active int
		if err := rows.Scan(&c.ID, &b, &c.Category, &sub, &active, &c.DisplayOrder); err != nil {
			return nil, err
		}
		c.Bucket = Bucket(b)
		c.Subcategory = nullString(sub)
		c.IsActive = active == 1
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET is_active = ? WHERE id = ?`, boolInt(active), id)
	if err != nil {
		return fmt.Errorf("set category active: %w", err)
	}
	return requireAffected(res, "category", id)
}
