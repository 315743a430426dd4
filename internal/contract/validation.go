// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"os"
	"strconv"
)

const (
	// DefaultKeyMaxBytes is the baseline soft limit on an ISGL1 key or
	// free-text query string accepted from a query endpoint caller.
	DefaultKeyMaxBytes = 4 << 10 // 4 KiB

	// DefaultListLimit is the row count returned when a caller omits or
	// zeroes a limit argument.
	DefaultListLimit = 200

	// MaxListLimit caps how many rows a single list-style endpoint call
	// may request, regardless of the caller-supplied limit.
	MaxListLimit = 20000
)

// KeyMaxBytes returns the effective soft limit for entity keys and
// free-text query strings. Controlled via env PARSELTONGUE_KEY_MAX_BYTES;
// falls back to DefaultKeyMaxBytes.
func KeyMaxBytes() int {
	if v := os.Getenv("PARSELTONGUE_KEY_MAX_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultKeyMaxBytes
}

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	OK      bool
	Message string
}

// ValidateKey checks a required identifier-like input (an ISGL1 key or a
// free-text search query): it must be non-empty and within KeyMaxBytes.
func ValidateKey(field, value string) *ValidationResult {
	if value == "" {
		return &ValidationResult{Message: field + " is required"}
	}
	if len(value) > KeyMaxBytes() {
		return &ValidationResult{Message: field + " exceeds soft limit"}
	}
	return &ValidationResult{OK: true}
}

// ClampLimit normalizes a caller-supplied row limit: non-positive or
// missing falls back to def, anything above max is truncated to max.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
