// Package common provides shared utilities and types used across the
// application.
package common

import "errors"

// Common application errors.
var (
	// Import errors.
	ErrNoRows = errors.New("no decodable rows in input")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)
