package csvimport

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
)

// fallbackDateLayouts are tried when the configured format does not match.
// Bank exports occasionally switch layout mid-quarter without notice.
var fallbackDateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"02.01.2006",
	"01/02/2006",
	"02/01/06",
	time.RFC3339,
}

// ParseRows decodes every line of r according to mapping. Malformed rows
// (short field count, undecodable date or amount) are skipped with a debug
// log: a single bad line in a large export must not abort the import. The
// returned error covers only a nil/invalid mapping or a reader failure.
func ParseRows(r io.Reader, mapping *model.CsvColumnMapping) ([]model.ImportedTransaction, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var txns []model.ImportedTransaction
	var delimiter rune
	lineNo := 0
	dataRows := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo++

		if delimiter == 0 {
			if mapping.Delimiter != 0 {
				delimiter = mapping.Delimiter
			} else {
				delimiter = DetectDelimiter(line)
			}
		}
		if lineNo <= mapping.SkipRows {
			continue
		}
		dataRows++

		fields := SplitLine(line, delimiter)
		txn, ok := decodeRow(fields, mapping)
		if !ok {
			slog.Debug("skipping undecodable row", "line", lineNo, "fields", len(fields))
			continue
		}
		txns = append(txns, txn)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	slog.Info("parsed statement rows",
		"data_rows", dataRows,
		"decoded", len(txns),
		"skipped", dataRows-len(txns))
	return txns, nil
}

// decodeRow turns one split line into a staged transaction. Returns false
// whenever any mapped column is missing or undecodable.
func decodeRow(fields []string, mapping *model.CsvColumnMapping) (model.ImportedTransaction, bool) {
	maxIdx := mapping.DateColumn
	if mapping.DescriptionColumn > maxIdx {
		maxIdx = mapping.DescriptionColumn
	}
	if mapping.AmountColumn > maxIdx {
		maxIdx = mapping.AmountColumn
	}
	if mapping.HasCategoryColumn() && mapping.CategoryColumn > maxIdx {
		maxIdx = mapping.CategoryColumn
	}
	if maxIdx >= len(fields) {
		return model.ImportedTransaction{}, false
	}

	date, ok := parseDate(fields[mapping.DateColumn], mapping.DateFormat)
	if !ok {
		return model.ImportedTransaction{}, false
	}

	amount, ok := parseAmount(fields[mapping.AmountColumn], mapping.DecimalSeparator)
	if !ok {
		return model.ImportedTransaction{}, false
	}

	txn := model.ImportedTransaction{
		ID:          uuid.NewString(),
		Date:        date,
		Description: fields[mapping.DescriptionColumn],
		Amount:      amount,
		MatchType:   model.MatchNone,
	}
	if mapping.HasCategoryColumn() {
		txn.RawCategory = fields[mapping.CategoryColumn]
	}
	return txn, true
}

// parseDate tries the configured layout first, then the generic fallbacks.
func parseDate(value, layout string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(layout, value); err == nil {
		return t, true
	}
	for _, fallback := range fallbackDateLayouts {
		if fallback == layout {
			continue
		}
		if t, err := time.Parse(fallback, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAmount normalizes a locale-formatted amount string and parses it.
// Currency symbols are stripped; the thousands separator implied by the
// configured decimal separator is removed before the decimal point is
// normalized to a dot.
func parseAmount(value string, decimalSeparator rune) (float64, bool) {
	s := strings.TrimSpace(value)
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}

	if decimalSeparator == ',' {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}
