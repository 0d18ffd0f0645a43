package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRunID creates a short, human-readable id for an aggregation run or
// daemon session.
// Format: {operation}-{8charHexUUID}
//
// Example:
//   - Input: operation="colonies"
//   - Output: "colonies-a3f8e2b1"
func GenerateRunID(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	if operation == "" {
		operation = "run"
	}
	return operation + "-" + generateShortUUID()
}

// generateShortUUID creates an 8-character hex string from a UUID.
// This provides sufficient uniqueness while keeping IDs compact.
func generateShortUUID() string {
	id := uuid.New()
	// Remove hyphens and take first 8 characters
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}

// ClampFloat limits v to [lo, hi]
func ClampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
