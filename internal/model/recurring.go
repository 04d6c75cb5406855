package model

import "time"

// RecurringTransaction is a user-defined expected periodic payment or income
// used as a matching target. Read-only from the pipeline's perspective.
type RecurringTransaction struct {
	CreatedAt  time.Time
	Name       string
	TenantID   string
	Type       CategoryType // direction the template applies to
	CategoryID *int64       // optional category carried onto learned matches
	ID         int64
	Amount     float64 // nominal absolute amount
	IsActive   bool
}

// Receivable is an outstanding expected incoming amount, open until the
// caller marks it received or cancelled.
type Receivable struct {
	SnapshotDate time.Time
	Description  string
	TenantID     string
	ID           int64
	Amount       float64
	IsOpen       bool
}
