package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
)

// FindCategoryRule retrieves the active rule for tenant+keyword, or nil when
// none exists. Keywords are stored lowercase; lookups normalize accordingly.
func (s *SQLiteStorage) FindCategoryRule(ctx context.Context, tenantID, keyword string) (*model.CategoryRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return nil, err
	}
	if err := validateString(keyword, "keyword"); err != nil {
		return nil, err
	}

	var rule model.CategoryRule
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, keyword, category_id, usage_count, is_active, created_at
		FROM category_rules
		WHERE tenant_id = ? AND keyword = ? AND is_active = 1
	`, tenantID, strings.ToLower(keyword)).Scan(
		&rule.ID,
		&rule.TenantID,
		&rule.Keyword,
		&rule.CategoryID,
		&rule.UsageCount,
		&rule.IsActive,
		&rule.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // not an error, just not learned yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category rule: %w", err)
	}
	return &rule, nil
}

// UpsertCategoryRule inserts or updates a rule, keyed on (tenant, keyword).
func (s *SQLiteStorage) UpsertCategoryRule(ctx context.Context, rule *model.CategoryRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategoryRule(rule); err != nil {
		return err
	}

	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO category_rules (tenant_id, keyword, category_id, usage_count, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, keyword) DO UPDATE SET
			category_id = excluded.category_id,
			usage_count = excluded.usage_count,
			is_active = excluded.is_active
	`, rule.TenantID, strings.ToLower(rule.Keyword), rule.CategoryID, rule.UsageCount, rule.IsActive, rule.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save category rule: %w", err)
	}
	return nil
}

// FindRecurringMatchRule retrieves the active rule for tenant+keyword, or
// nil when none exists.
func (s *SQLiteStorage) FindRecurringMatchRule(ctx context.Context, tenantID, keyword string) (*model.RecurringMatchRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return nil, err
	}
	if err := validateString(keyword, "keyword"); err != nil {
		return nil, err
	}

	var rule model.RecurringMatchRule
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, keyword, recurring_id, usage_count, is_active, created_at
		FROM recurring_match_rules
		WHERE tenant_id = ? AND keyword = ? AND is_active = 1
	`, tenantID, strings.ToLower(keyword)).Scan(
		&rule.ID,
		&rule.TenantID,
		&rule.Keyword,
		&rule.RecurringID,
		&rule.UsageCount,
		&rule.IsActive,
		&rule.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring match rule: %w", err)
	}
	return &rule, nil
}

// UpsertRecurringMatchRule inserts or updates a rule, keyed on
// (tenant, keyword).
func (s *SQLiteStorage) UpsertRecurringMatchRule(ctx context.Context, rule *model.RecurringMatchRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecurringMatchRule(rule); err != nil {
		return err
	}

	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_match_rules (tenant_id, keyword, recurring_id, usage_count, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, keyword) DO UPDATE SET
			recurring_id = excluded.recurring_id,
			usage_count = excluded.usage_count,
			is_active = excluded.is_active
	`, rule.TenantID, strings.ToLower(rule.Keyword), rule.RecurringID, rule.UsageCount, rule.IsActive, rule.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save recurring match rule: %w", err)
	}
	return nil
}

// ActiveRecurringMatchRules lists every active rule for the tenant. Ordering
// is usage count descending, then creation time ascending, then id: ties
// deterministically favor the oldest rule.
func (s *SQLiteStorage) ActiveRecurringMatchRules(ctx context.Context, tenantID string) ([]model.RecurringMatchRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, keyword, recurring_id, usage_count, is_active, created_at
		FROM recurring_match_rules
		WHERE tenant_id = ? AND is_active = 1
		ORDER BY usage_count DESC, created_at ASC, id ASC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring match rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.RecurringMatchRule
	for rows.Next() {
		var rule model.RecurringMatchRule
		if err := rows.Scan(
			&rule.ID,
			&rule.TenantID,
			&rule.Keyword,
			&rule.RecurringID,
			&rule.UsageCount,
			&rule.IsActive,
			&rule.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recurring match rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
