package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
)

// ActiveCategories returns the tenant's active categories of one direction.
func (s *SQLiteStorage) ActiveCategories(ctx context.Context, tenantID string, categoryType model.CategoryType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, type, is_active, created_at
		FROM categories
		WHERE tenant_id = ? AND type = ? AND is_active = 1
		ORDER BY name
	`, tenantID, string(categoryType))
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.TenantID, &cat.Name, &cat.Type, &cat.IsActive, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "tenant", tenantID, "type", categoryType, "count", len(categories))
	return categories, nil
}

// CreateCategory creates a new active category for the tenant.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, tenantID, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (tenant_id, name, type, is_active, created_at)
		VALUES (?, ?, ?, 1, ?)
	`, tenantID, name, string(categoryType), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	return &model.Category{
		ID:        id,
		TenantID:  tenantID,
		Name:      name,
		Type:      categoryType,
		IsActive:  true,
		CreatedAt: now,
	}, nil
}
