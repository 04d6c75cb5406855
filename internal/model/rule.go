package model

import "time"

// Confidence tiers derived from rule usage counts. A rule that has survived
// several confirmations is trusted more than a fresh one.
const (
	confidenceHigh   = 95
	confidenceMedium = 90
	confidenceLow    = 85
)

// CategoryRule is a learned keyword-to-category mapping owned by a tenant.
// UsageCount doubles as a confidence proxy and as the protection threshold
// against single-outlier corrections.
type CategoryRule struct {
	CreatedAt  time.Time
	TenantID   string
	Keyword    string // always stored lowercase
	ID         int64
	CategoryID int64
	UsageCount int
	IsActive   bool
}

// Confidence maps the rule's usage count onto the classifier confidence
// scale: >=5 uses 95, >=2 uses 90, otherwise 85.
func (r *CategoryRule) Confidence() int {
	switch {
	case r.UsageCount >= 5:
		return confidenceHigh
	case r.UsageCount >= 2:
		return confidenceMedium
	default:
		return confidenceLow
	}
}

// RecurringMatchRule is a learned keyword tied to a recurring template. Same
// shape as CategoryRule but targeting a different entity; learned recurring
// matches are always reported at fixed high confidence.
type RecurringMatchRule struct {
	CreatedAt   time.Time
	TenantID    string
	Keyword     string
	ID          int64
	RecurringID int64
	UsageCount  int
	IsActive    bool
}

// Confidence for a learned recurring match is fixed regardless of usage.
func (r *RecurringMatchRule) Confidence() int {
	return confidenceHigh
}
