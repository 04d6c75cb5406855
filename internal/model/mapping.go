package model

import (
	"errors"
	"fmt"
)

// Mapping validation errors.
var (
	ErrNilMapping     = errors.New("column mapping cannot be nil")
	ErrInvalidMapping = errors.New("invalid column mapping")
)

// CsvColumnMapping describes how to decode one bank's CSV export. The caller
// supplies it per import; column indices are zero-based. CategoryColumn may
// be -1 when the source carries no category column.
type CsvColumnMapping struct {
	DateFormat        string
	Delimiter         rune
	SkipRows          int
	DateColumn        int
	DescriptionColumn int
	AmountColumn      int
	CategoryColumn    int
	DecimalSeparator  rune
}

// Validate checks the mapping for contract violations. Out-of-range indices
// against actual rows are a per-row concern handled by the parser; this only
// rejects configurations that can never work.
func (m *CsvColumnMapping) Validate() error {
	if m == nil {
		return ErrNilMapping
	}
	if m.DateColumn < 0 {
		return fmt.Errorf("%w: date column %d", ErrInvalidMapping, m.DateColumn)
	}
	if m.DescriptionColumn < 0 {
		return fmt.Errorf("%w: description column %d", ErrInvalidMapping, m.DescriptionColumn)
	}
	if m.AmountColumn < 0 {
		return fmt.Errorf("%w: amount column %d", ErrInvalidMapping, m.AmountColumn)
	}
	if m.CategoryColumn < -1 {
		return fmt.Errorf("%w: category column %d", ErrInvalidMapping, m.CategoryColumn)
	}
	if m.SkipRows < 0 {
		return fmt.Errorf("%w: skip rows %d", ErrInvalidMapping, m.SkipRows)
	}
	if m.DateFormat == "" {
		return fmt.Errorf("%w: missing date format", ErrInvalidMapping)
	}
	if m.DecimalSeparator != ',' && m.DecimalSeparator != '.' {
		return fmt.Errorf("%w: decimal separator %q", ErrInvalidMapping, m.DecimalSeparator)
	}
	return nil
}

// HasCategoryColumn reports whether the source file carries its own category
// column.
func (m *CsvColumnMapping) HasCategoryColumn() bool {
	return m.CategoryColumn >= 0
}
