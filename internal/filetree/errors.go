package filetree

import "errors"

// ErrMissing indicates a required file or directory does not exist.
var ErrMissing = errors.New("required node missing")

// NodeKind names what a StructureError was looking for.
type NodeKind string

// Node kinds.
const (
	KindFile      NodeKind = "file"
	KindDirectory NodeKind = "directory"
)

// StructureError reports a required file or directory that is missing.
type StructureError struct {
	Path string
	Kind NodeKind
}

// Error returns "missing required <kind>: <path>".
func (e *StructureError) Error() string {
	return "missing required " + string(e.Kind) + ": " + e.Path
}

// Unwrap returns ErrMissing.
func (e *StructureError) Unwrap() error {
	return ErrMissing
}
