// Package keywords normalizes free-text transaction descriptions into a
// small ordered set of significant tokens. The extractor is shared by the
// categorizer and the matcher and is a pure function of its input.
package keywords

import (
	"regexp"
	"strings"
)

// MaxKeywords caps how many tokens Extract returns.
const MaxKeywords = 3

// minTokenLength is the shortest token worth keeping.
const minTokenLength = 3

var (
	datePattern     = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/(\d{4}|\d{2})\b`)
	amountPattern   = regexp.MustCompile(`\b\d+[.,]\d{2}\b`)
	cardMaskPattern = regexp.MustCompile(`\*+\d{4}\b`)
	punctPattern    = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	digitsPattern   = regexp.MustCompile(`^\d+$`)
)

// stopWords are tokens that never identify a counterparty: legal-entity
// suffixes, payment-method vocabulary and function words, in the two
// languages bank exports around here actually come in.
var stopWords = map[string]bool{
	// legal-entity suffixes
	"srl": true, "spa": true, "snc": true, "sas": true, "sapa": true,
	"gmbh": true, "ltd": true, "llc": true, "inc": true, "plc": true,
	// payment-method words
	"pagamento": true, "pos": true, "carta": true, "bonifico": true,
	"addebito": true, "accredito": true, "prelievo": true, "ricarica": true,
	"sepa": true, "sdd": true, "rid": true, "iban": true, "disposizione": true,
	"operazione": true, "commissione": true, "commissioni": true,
	"payment": true, "purchase": true, "card": true, "debit": true,
	"credit": true, "transfer": true, "withdrawal": true, "visa": true,
	"mastercard": true, "maestro": true, "paypal": true, "contactless": true,
	// function words
	"del": true, "della": true, "dello": true, "delle": true, "dei": true,
	"con": true, "per": true, "presso": true, "verso": true, "favore": true,
	"the": true, "and": true, "for": true, "from": true, "via": true,
}

// Extract returns at most MaxKeywords lowercase tokens from text, in first
// occurrence order. Date-like, amount-like and masked-card substrings are
// stripped before tokenizing; short, numeric and stop-word tokens are
// dropped; duplicates keep their first position.
func Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	s := strings.ToLower(text)
	s = datePattern.ReplaceAllString(s, " ")
	s = amountPattern.ReplaceAllString(s, " ")
	s = cardMaskPattern.ReplaceAllString(s, " ")
	s = punctPattern.ReplaceAllString(s, " ")

	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range strings.Fields(s) {
		if len(tok) < minTokenLength {
			continue
		}
		if digitsPattern.MatchString(tok) {
			continue
		}
		if stopWords[tok] {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
		if len(tokens) == MaxKeywords {
			break
		}
	}
	return tokens
}

// Longest returns the single longest token Extract would produce, or the
// empty string when extraction yields nothing. Ties keep the earlier token.
func Longest(text string) string {
	var longest string
	for _, tok := range Extract(text) {
		if len(tok) > len(longest) {
			longest = tok
		}
	}
	return longest
}
