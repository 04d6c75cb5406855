// Package portfolio parses fixed-layout broker portfolio exports: a title
// line, account and extraction-date metadata lines, an optional total-value
// line, a column-header row located by name rather than position, data rows
// and a trailing totals row. Unlike bank CSVs the numeric convention here is
// invariant dot-decimal regardless of locale.
package portfolio

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/csvimport"
)

// Row is one holding from the statement.
type Row struct {
	Ticker       string
	ISIN         string
	Name         string
	Price        float64
	Quantity     float64
	CostBasis    float64
	CurrentValue float64
}

// Result carries the outcome of a portfolio parse. Failures never surface as
// errors or panics; they funnel into Success=false plus ErrorMessage so a
// broken file degrades into a single user-visible message.
type Result struct {
	ExtractedAt    time.Time
	ErrorMessage   string
	AccountLabel   string
	Rows           []Row
	TotalValue     float64
	TotalCostBasis float64
	Success        bool
}

var (
	accountPattern    = regexp.MustCompile(`(?i)account\s*:\s*([^,;]+)`)
	datePattern       = regexp.MustCompile(`(?i)date\s*:\s*([^,;]+)`)
	totalValuePattern = regexp.MustCompile(`([\d.,]+)\s*(?:EUR|USD|GBP|€|\$)\s*$`)
)

var extractionLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// columnIndexes holds the positions discovered from the header row. Absent
// optional columns stay -1.
type columnIndexes struct {
	ticker       int
	isin         int
	name         int
	price        int
	quantity     int
	costBasis    int
	currentValue int
}

// Parse reads a portfolio statement from r. See Result for the failure
// contract.
func Parse(r io.Reader) *Result {
	result := &Result{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		result.ErrorMessage = "failed to read statement: " + err.Error()
		return result
	}
	if len(lines) < 4 {
		result.ErrorMessage = "statement too short to contain a holdings table"
		return result
	}

	if m := accountPattern.FindStringSubmatch(lines[1]); m != nil {
		result.AccountLabel = strings.Trim(strings.TrimSpace(m[1]), `"`)
	}
	if m := datePattern.FindStringSubmatch(lines[2]); m != nil {
		result.ExtractedAt = parseExtractionDate(strings.Trim(strings.TrimSpace(m[1]), `"`))
	}

	delimiter := detectTableDelimiter(lines)
	headerIdx, cols := findHeader(lines, delimiter)
	if headerIdx < 0 {
		result.ErrorMessage = "mandatory columns (ticker, cost basis, current value) not found in header"
		return result
	}

	// The total portfolio value may appear in the preamble as a figure with
	// a trailing currency literal. The header can sit anywhere, including
	// before line 3 when a statement carries no metadata preamble at all.
	for _, line := range lines[min(3, headerIdx):headerIdx] {
		if m := totalValuePattern.FindStringSubmatch(line); m != nil {
			if v, ok := parseInvariantDecimal(m[1]); ok {
				result.TotalValue = v
			}
			break
		}
	}

	for _, line := range lines[headerIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := csvimport.SplitLine(line, delimiter)

		if strings.TrimSpace(fields[0]) == "" {
			// Trailing totals row: its cost-basis/value cells feed the
			// aggregates, not a holding.
			if v, ok := fieldDecimal(fields, cols.costBasis); ok {
				result.TotalCostBasis = v
			}
			if v, ok := fieldDecimal(fields, cols.currentValue); ok && result.TotalValue == 0 {
				result.TotalValue = v
			}
			continue
		}

		row, ok := decodeHolding(fields, cols)
		if !ok {
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	result.Success = true
	return result
}

// detectTableDelimiter samples the longest line, which in this layout is
// always part of the holdings table.
func detectTableDelimiter(lines []string) rune {
	longest := ""
	for _, line := range lines {
		if len(line) > len(longest) {
			longest = line
		}
	}
	return csvimport.DetectDelimiter(longest)
}

// findHeader scans for the first row naming the mandatory columns. Matching
// is case-insensitive by substring, so "Cost basis (EUR)" still counts.
func findHeader(lines []string, delimiter rune) (int, columnIndexes) {
	for i, line := range lines {
		fields := csvimport.SplitLine(line, delimiter)
		cols := columnIndexes{ticker: -1, isin: -1, name: -1, price: -1, quantity: -1, costBasis: -1, currentValue: -1}
		for idx, f := range fields {
			h := strings.ToLower(f)
			switch {
			case cols.ticker < 0 && (strings.Contains(h, "ticker") || strings.Contains(h, "symbol")):
				cols.ticker = idx
			case cols.isin < 0 && strings.Contains(h, "isin"):
				cols.isin = idx
			case cols.costBasis < 0 && strings.Contains(h, "cost"):
				cols.costBasis = idx
			case cols.currentValue < 0 && (strings.Contains(h, "value") || strings.Contains(h, "market")):
				cols.currentValue = idx
			case cols.quantity < 0 && (strings.Contains(h, "quantity") || strings.Contains(h, "qty") || strings.Contains(h, "shares")):
				cols.quantity = idx
			case cols.price < 0 && strings.Contains(h, "price"):
				cols.price = idx
			case cols.name < 0 && (strings.Contains(h, "name") || strings.Contains(h, "instrument") || strings.Contains(h, "description")):
				cols.name = idx
			}
		}
		if cols.ticker >= 0 && cols.costBasis >= 0 && cols.currentValue >= 0 {
			return i, cols
		}
	}
	return -1, columnIndexes{}
}

func decodeHolding(fields []string, cols columnIndexes) (Row, bool) {
	ticker := fieldString(fields, cols.ticker)
	if ticker == "" {
		return Row{}, false
	}
	row := Row{
		Ticker: ticker,
		ISIN:   fieldString(fields, cols.isin),
		Name:   fieldString(fields, cols.name),
	}
	row.Price, _ = fieldDecimal(fields, cols.price)
	row.Quantity, _ = fieldDecimal(fields, cols.quantity)
	row.CostBasis, _ = fieldDecimal(fields, cols.costBasis)
	row.CurrentValue, _ = fieldDecimal(fields, cols.currentValue)
	return row, true
}

func fieldString(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}

func fieldDecimal(fields []string, idx int) (float64, bool) {
	return parseInvariantDecimal(fieldString(fields, idx))
}

// parseInvariantDecimal parses a dot-decimal figure, tolerating comma
// thousands separators and stray currency symbols.
func parseInvariantDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

func parseExtractionDate(s string) time.Time {
	for _, layout := range extractionLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
