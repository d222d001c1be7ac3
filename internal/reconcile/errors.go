package reconcile

import (
	"errors"
	"fmt"
)

// Sentinel errors for reconciliation failures.
var (
	// ErrReconcile matches every error that aborted a sync.
	ErrReconcile = errors.New("reconciliation failed")

	// ErrDuplicateID indicates two source entities under one parent
	// stabilize to the same ID.
	ErrDuplicateID = errors.New("duplicate stable id")

	// ErrUnknownStage indicates a lineup or performance names a stage the
	// event does not declare.
	ErrUnknownStage = errors.New("unknown stage")

	// ErrNoOrganizerID indicates the configuration has no organizer ID.
	ErrNoOrganizerID = errors.New("organizer has no id")
)

// ReconciliationError describes the entity and operation that aborted a sync.
// It matches ErrReconcile as well as the wrapped cause.
type ReconciliationError struct {
	Kind string // entity kind, e.g. "artist"
	ID   string
	Op   string // plan, upsert, delete, link
	Err  error
}

// Error returns "reconcile: <op> <kind> <id>: <cause>".
func (e *ReconciliationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("reconcile: %s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("reconcile: %s %s %q: %v", e.Op, e.Kind, e.ID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrReconcile.
func (e *ReconciliationError) Is(target error) bool {
	return target == ErrReconcile
}
