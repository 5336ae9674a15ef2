package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const defaultRulePriority = 100

// RuleRepo handles auto-categorization rules. Rules are stored for later use;
// nothing applies them yet.
type RuleRepo struct {
	db DBTX
}

func NewRuleRepo(db DBTX) *RuleRepo {
	return &RuleRepo{db: db}
}

// ListRules controls RuleRepo.List.
type ListRules struct {
	ActiveOnly bool
}

// Add validates and stores a rule. Contains and exact patterns are
// upper-cased; regex patterns are stored as entered and must compile.
func (r *RuleRepo) Add(ctx context.Context, nr NewRule) (string, error) {
	pattern := strings.TrimSpace(nr.Pattern)
	if pattern == "" {
		return "", validationf("rule pattern is required")
	}
	if nr.MatchType == "" {
		nr.MatchType = MatchContains
	}
	if !nr.MatchType.Valid() {
		return "", validationf("unknown match type %q", nr.MatchType)
	}
	if nr.MatchType == MatchRegex {
		if _, err := regexp.Compile(pattern); err != nil {
			return "", validationf("rule pattern %q: %v", pattern, err)
		}
	} else {
		pattern = strings.ToUpper(pattern)
	}
	if !nr.Bucket.Valid() {
		return "", validationf("unknown bucket %q", nr.Bucket)
	}
	if strings.TrimSpace(nr.Category) == "" {
		return "", validationf("rule category is required")
	}
	priority := defaultRulePriority
	if nr.Priority != nil {
		priority = *nr.Priority
	}

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO auto_rules(id, match_pattern, match_type, bucket, category, subcategory, tag, priority, is_active, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
	`, id, pattern, string(nr.MatchType), string(nr.Bucket), strings.TrimSpace(nr.Category),
		trimmedOrNil(nr.Subcategory), trimmedOrNil(nr.Tag), priority)
	if err != nil {
		return "", asConstraint(err, "insert rule")
	}
	return id, nil
}

// List returns rules with the lowest priority number first.
func (r *RuleRepo) List(ctx context.Context, opts ListRules) ([]Rule, error) {
	query := `SELECT id, match_pattern, match_type, bucket, category, subcategory, tag, priority, is_active, created_at FROM auto_rules`
	if opts.ActiveOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY priority ASC, created_at ASC, rowid ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()
	var out []Rule
	for rows.Next() {
		var ru Rule
		var mt, b string
		var sub, tag sql.NullString
		var active int
		if err := rows.Scan(&ru.ID, &ru.Pattern, &mt, &b, &ru.Category, &sub, &tag, &ru.Priority, &active, &ru.CreatedAt); err != nil {
			return nil, err
		}
		ru.MatchType = MatchType(mt)
		ru.Bucket = Bucket(b)
		ru.Subcategory = nullString(sub)
		ru.Tag = nullString(tag)
		ru.IsActive = active == 1
		out = append(out, ru)
	}
	return out, rows.Err()
}

func (r *RuleRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE auto_rules SET is_active = ? WHERE id = ?`, boolInt(active), id)
	if err != nil {
		return fmt.Errorf("set rule active: %w", err)
	}
	return requireAffected(res, "rule", id)
}

func (r *RuleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM auto_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return requireAffected(res, "rule", id)
}
