// Package storage provides the SQLite persistence layer behind the
// service.Store interfaces.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidRule  = errors.New("invalid rule")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateCategoryRule validates a category rule before persistence.
func validateCategoryRule(rule *model.CategoryRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if strings.TrimSpace(rule.TenantID) == "" {
		return fmt.Errorf("%w: missing tenant id", ErrInvalidRule)
	}
	if strings.TrimSpace(rule.Keyword) == "" {
		return fmt.Errorf("%w: missing keyword", ErrInvalidRule)
	}
	if rule.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category id", ErrInvalidRule)
	}
	return nil
}

// validateRecurringMatchRule validates a recurring match rule before
// persistence.
func validateRecurringMatchRule(rule *model.RecurringMatchRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if strings.TrimSpace(rule.TenantID) == "" {
		return fmt.Errorf("%w: missing tenant id", ErrInvalidRule)
	}
	if strings.TrimSpace(rule.Keyword) == "" {
		return fmt.Errorf("%w: missing keyword", ErrInvalidRule)
	}
	if rule.RecurringID <= 0 {
		return fmt.Errorf("%w: missing recurring id", ErrInvalidRule)
	}
	return nil
}
