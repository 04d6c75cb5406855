// Package engine wires the parsing, categorization, matching and learning
// stages into one import pipeline. The pipeline is a synchronous batch over
// one file: rows are processed in file order and categorization always runs
// before matching, because the matcher's learned branch may settle a
// category that local categorization must not overwrite.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/categorizer"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/csvimport"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/learning"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/matcher"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/service"
)

// Pipeline runs a full import batch.
type Pipeline struct {
	categorizer *categorizer.Categorizer
	matcher     *matcher.Matcher
	learner     *learning.Engine
}

// New creates a pipeline backed by the given store.
func New(store service.Store) *Pipeline {
	return &Pipeline{
		categorizer: categorizer.New(store),
		matcher:     matcher.New(store),
		learner:     learning.New(store),
	}
}

// Run parses r according to mapping, flags in-batch duplicates, then
// categorizes and matches every row for the tenant. The returned slice is in
// file order and ready for user confirmation; nothing is persisted.
func (p *Pipeline) Run(ctx context.Context, r io.Reader, mapping *model.CsvColumnMapping, tenantID string) ([]*model.ImportedTransaction, error) {
	parsed, err := csvimport.ParseRows(r, mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to parse statement: %w", err)
	}

	txns := make([]*model.ImportedTransaction, len(parsed))
	for i := range parsed {
		txns[i] = &parsed[i]
	}

	model.FlagDuplicates(txns)

	if err := p.categorizer.Categorize(ctx, txns, tenantID); err != nil {
		return nil, fmt.Errorf("failed to categorize: %w", err)
	}
	if err := p.matcher.Match(ctx, txns, tenantID); err != nil {
		return nil, fmt.Errorf("failed to match: %w", err)
	}
	return txns, nil
}

// Confirm feeds one user-confirmed transaction into the learning engine.
// Learning failures are logged and swallowed: a failed rule update must
// never block the import the confirmation came from.
func (p *Pipeline) Confirm(ctx context.Context, tenantID string, txn *model.ImportedTransaction) {
	if txn == nil {
		return
	}

	if txn.SuggestedCategoryID != nil {
		if err := p.learner.LearnCategory(ctx, tenantID, txn.Description, *txn.SuggestedCategoryID); err != nil {
			slog.Error("failed to learn category",
				"tenant", tenantID,
				"description", txn.Description,
				"error", err)
		}
	}

	if txn.MatchType == model.MatchRecurring && txn.MatchedEntityID != nil {
		if err := p.learner.LearnRecurringMatch(ctx, tenantID, txn.Description, *txn.MatchedEntityID); err != nil {
			slog.Error("failed to learn recurring match",
				"tenant", tenantID,
				"description", txn.Description,
				"error", err)
		}
	}

	txn.IsUserConfirmed = true
}
