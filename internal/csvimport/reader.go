// Package csvimport turns raw bank CSV exports into staged transactions.
// Bank exports are loosely specified: delimiters, locales and quoting vary
// per institution, so the reader detects the delimiter itself and the
// decoder skips rows it cannot make sense of instead of failing the import.
package csvimport

import (
	"bufio"
	"io"
	"strings"
)

// DetectDelimiter inspects the first non-empty line and picks the most
// plausible field separator. Semicolon and tab win over comma because comma
// also appears inside locale-formatted amounts; comma is the fallback.
func DetectDelimiter(line string) rune {
	semicolons := strings.Count(line, ";")
	tabs := strings.Count(line, "\t")

	switch {
	case semicolons > 0 && semicolons >= tabs:
		return ';'
	case tabs > 0:
		return '\t'
	default:
		return ','
	}
}

// SplitLine splits a raw line on delimiter, honouring double-quoted fields.
// A quoted field may contain the delimiter; a doubled quote inside a quoted
// field is an escaped literal quote. Fields come back trimmed of surrounding
// quotes and whitespace.
func SplitLine(line string, delimiter rune) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == delimiter && !inQuotes:
			fields = append(fields, cleanField(field.String()))
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	fields = append(fields, cleanField(field.String()))
	return fields
}

func cleanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

// PreviewRows reads up to n non-empty lines from r and returns them split on
// the detected delimiter, so callers can let the user line up a column
// mapping before a real parse. The reader is consumed; pass a fresh one to
// re-read from the start.
func PreviewRows(r io.Reader, n int) ([][]string, error) {
	if n <= 0 {
		return nil, nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rows [][]string
	var delimiter rune
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if delimiter == 0 {
			delimiter = DetectDelimiter(line)
		}
		rows = append(rows, SplitLine(line, delimiter))
		if len(rows) == n {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
