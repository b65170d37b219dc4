// Package audit records rule evaluation decisions for later inspection.
//
// Only verdicts are stored. Rules themselves are never persisted; each
// Decision carries the rule text it was made with.
package audit

import (
	"errors"
)

// Store persists decisions.
// Implementations must be safe for concurrent use.
type Store interface {
	// Record stores a decision, assigning its sequence number (per rule name)
	// and timestamp. A decision without an ID is rejected with ErrMissingID,
	// and a repeated ID with ErrDuplicateID; neither consumes a sequence number.
	Record(d Decision) error

	// Get retrieves a decision by ID.
	// Returns ErrNotFound if it doesn't exist.
	Get(id string) (Decision, error)

	// List returns all decisions for a rule, ordered by sequence.
	// Returns empty slice (not error) if the rule has none.
	List(ruleName string) ([]Decision, error)

	// DeleteRule removes all decisions for a rule.
	// Returns nil if the rule has none.
	DeleteRule(ruleName string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for audit operations.
var (
	// ErrNotFound indicates a decision doesn't exist.
	ErrNotFound = errors.New("decision not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("audit store closed")

	// ErrMissingID indicates a decision was recorded without an ID.
	ErrMissingID = errors.New("decision ID required")

	// ErrDuplicateID indicates a decision with the same ID was already recorded.
	ErrDuplicateID = errors.New("duplicate decision ID")
)
