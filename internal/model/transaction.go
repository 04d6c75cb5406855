// Package model defines the staging and persisted types shared by the
// ingestion pipeline.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// MatchType indicates what kind of entity a transaction was linked to.
type MatchType string

const (
	// MatchNone means no recurring template or receivable was matched.
	MatchNone MatchType = "NONE"
	// MatchRecurring means the transaction was linked to a recurring template.
	MatchRecurring MatchType = "RECURRING"
	// MatchReceivable means the transaction was linked to an open receivable.
	MatchReceivable MatchType = "RECEIVABLE"
)

// ImportedTransaction is a single parsed statement row staged for user
// confirmation. It is created by the CSV parser, enriched in place by the
// categorizer and the matcher, and handed back to the caller; it is never
// persisted itself.
type ImportedTransaction struct {
	Date                  time.Time
	ID                    string
	Description           string
	RawCategory           string // category string carried by the source file, if any
	SuggestedCategoryName string
	MatchedEntityName     string
	SuggestedCategoryID   *int64
	MatchedEntityID       *int64
	Amount                float64 // signed: negative = expense-like, positive = income-like
	Confidence            int     // 0-100
	MatchConfidence       int     // 0-100
	MatchType             MatchType
	IsLearnedRule         bool
	IsMatchConfirmed      bool
	IsUserConfirmed       bool
	IsSelected            bool
	IsDuplicate           bool
}

// IsExpense reports whether the transaction is expense-like. The direction
// rule is shared with CategoryTypeForAmount: only a strictly positive amount
// is income-like, so a zero amount classifies as an expense.
func (t *ImportedTransaction) IsExpense() bool {
	return CategoryTypeForAmount(t.Amount) == CategoryTypeExpense
}

// Fingerprint returns a stable hash over date, amount and normalized
// description, used to flag duplicate rows within one import batch.
func (t *ImportedTransaction) Fingerprint() string {
	data := fmt.Sprintf("%s:%.2f:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		strings.ToLower(strings.Join(strings.Fields(t.Description), " ")))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// FlagDuplicates marks every transaction whose fingerprint was already seen
// earlier in the batch.
func FlagDuplicates(txns []*ImportedTransaction) {
	seen := make(map[string]bool, len(txns))
	for _, txn := range txns {
		fp := txn.Fingerprint()
		if seen[fp] {
			txn.IsDuplicate = true
			continue
		}
		seen[fp] = true
	}
}
