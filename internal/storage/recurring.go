package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
)

// ActiveRecurringTransactions returns the tenant's active templates of one
// direction.
func (s *SQLiteStorage) ActiveRecurringTransactions(ctx context.Context, tenantID string, categoryType model.CategoryType) ([]model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return nil, err
	}

	return queryRecurring(ctx, s.db, `
		SELECT id, tenant_id, name, amount, type, category_id, is_active, created_at
		FROM recurring_transactions
		WHERE tenant_id = ? AND type = ? AND is_active = 1
		ORDER BY name
	`, tenantID, string(categoryType))
}

// RecurringTransactionByID returns one template, or nil when it no longer
// exists.
func (s *SQLiteStorage) RecurringTransactionByID(ctx context.Context, tenantID string, id int64) (*model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return nil, err
	}

	tmpl, err := recurringByID(ctx, s.db, tenantID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

// CreateRecurringTransaction creates a new active template for the tenant.
func (s *SQLiteStorage) CreateRecurringTransaction(ctx context.Context, tmpl *model.RecurringTransaction) (*model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, fmt.Errorf("%w: template", ErrNilParameter)
	}
	if err := validateString(tmpl.TenantID, "tenantID"); err != nil {
		return nil, err
	}
	if err := validateString(tmpl.Name, "name"); err != nil {
		return nil, err
	}

	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = time.Now()
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions (tenant_id, name, amount, type, category_id, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, tmpl.TenantID, tmpl.Name, tmpl.Amount, string(tmpl.Type), tmpl.CategoryID, tmpl.IsActive, tmpl.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create recurring transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring transaction ID: %w", err)
	}
	tmpl.ID = id
	return tmpl, nil
}

// OpenReceivables returns open receivables drawn from the three most recent
// snapshot dates for the tenant, newest first.
func (s *SQLiteStorage) OpenReceivables(ctx context.Context, tenantID string) ([]model.Receivable, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, description, amount, snapshot_date, is_open
		FROM receivables
		WHERE tenant_id = ? AND is_open = 1
		  AND snapshot_date IN (
			SELECT DISTINCT snapshot_date FROM receivables
			WHERE tenant_id = ? AND is_open = 1
			ORDER BY snapshot_date DESC
			LIMIT 3
		  )
		ORDER BY snapshot_date DESC, id ASC
	`, tenantID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query receivables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var receivables []model.Receivable
	for rows.Next() {
		var rcv model.Receivable
		if err := rows.Scan(&rcv.ID, &rcv.TenantID, &rcv.Description, &rcv.Amount, &rcv.SnapshotDate, &rcv.IsOpen); err != nil {
			return nil, fmt.Errorf("failed to scan receivable: %w", err)
		}
		receivables = append(receivables, rcv)
	}
	return receivables, rows.Err()
}

// CreateReceivable records a new open receivable for the tenant.
func (s *SQLiteStorage) CreateReceivable(ctx context.Context, rcv *model.Receivable) (*model.Receivable, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if rcv == nil {
		return nil, fmt.Errorf("%w: receivable", ErrNilParameter)
	}
	if err := validateString(rcv.TenantID, "tenantID"); err != nil {
		return nil, err
	}
	if err := validateString(rcv.Description, "description"); err != nil {
		return nil, err
	}

	if rcv.SnapshotDate.IsZero() {
		rcv.SnapshotDate = time.Now()
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO receivables (tenant_id, description, amount, snapshot_date, is_open)
		VALUES (?, ?, ?, ?, ?)
	`, rcv.TenantID, rcv.Description, rcv.Amount, rcv.SnapshotDate, rcv.IsOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to create receivable: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get receivable ID: %w", err)
	}
	rcv.ID = id
	return rcv, nil
}

// queryRecurring runs a multi-row recurring-transaction query against any
// queryable, so reads work identically inside and outside a transaction.
func queryRecurring(ctx context.Context, q queryable, query string, args ...any) ([]model.RecurringTransaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var templates []model.RecurringTransaction
	for rows.Next() {
		tmpl, err := scanRecurring(rows.Scan)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *tmpl)
	}
	return templates, rows.Err()
}

// recurringByID fetches one template via any queryable.
func recurringByID(ctx context.Context, q queryable, tenantID string, id int64) (*model.RecurringTransaction, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, amount, type, category_id, is_active, created_at
		FROM recurring_transactions
		WHERE tenant_id = ? AND id = ?
	`, tenantID, id)
	return scanRecurring(row.Scan)
}

// scanRecurring decodes one recurring-transaction row via the given scan
// function, so it serves both Row and Rows.
func scanRecurring(scan func(dest ...any) error) (*model.RecurringTransaction, error) {
	var tmpl model.RecurringTransaction
	var categoryID sql.NullInt64
	var typ string

	err := scan(
		&tmpl.ID,
		&tmpl.TenantID,
		&tmpl.Name,
		&tmpl.Amount,
		&typ,
		&categoryID,
		&tmpl.IsActive,
		&tmpl.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan recurring transaction: %w", err)
	}

	tmpl.Type = model.CategoryType(typ)
	if categoryID.Valid {
		tmpl.CategoryID = &categoryID.Int64
	}
	return &tmpl, nil
}
