package loader

import "errors"

// Sentinel errors for loading and validating an organizer directory.
var (
	// ErrUnresolvableDate indicates a schedule has no derivable calendar
	// date, or no performances to derive its bounds from.
	ErrUnresolvableDate = errors.New("unresolvable schedule date")
	// ErrInvalidTimeOfDay indicates a performance time is not HH:MM or h:mm AM/PM.
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	// ErrMissingField indicates a required field is empty.
	ErrMissingField = errors.New("required field missing")
	// ErrDuplicateID indicates two entities of one kind derive the same stable ID.
	ErrDuplicateID = errors.New("duplicate stable ID")
	// ErrInvalidValue indicates a field holds a value outside its domain.
	ErrInvalidValue = errors.New("invalid value")
	// ErrTimeOrder indicates an end instant that does not follow its start.
	ErrTimeOrder = errors.New("end is not after start")
	// ErrUnknownStage indicates a schedule or lineup names a stage the event
	// does not declare.
	ErrUnknownStage = errors.New("unknown stage")
)

// UnresolvableDateError reports a schedule file whose performances cannot be
// placed on a calendar day.
type UnresolvableDateError struct {
	Path   string
	Reason string
}

// Error returns "<path>: unresolvable schedule date: <reason>".
func (e *UnresolvableDateError) Error() string {
	return e.Path + ": " + ErrUnresolvableDate.Error() + ": " + e.Reason
}

// Unwrap returns ErrUnresolvableDate.
func (e *UnresolvableDateError) Unwrap() error {
	return ErrUnresolvableDate
}

// ValidationCategory classifies a validation error for programmatic handling.
type ValidationCategory string

const (
	// ValCatMissingField indicates a required field is empty.
	ValCatMissingField ValidationCategory = "missing_field"
	// ValCatDuplicateID indicates two entities share a stable ID.
	ValCatDuplicateID ValidationCategory = "duplicate_id"
	// ValCatInvalidValue indicates a malformed URL, color, coordinate, enum or reference.
	ValCatInvalidValue ValidationCategory = "invalid_value"
	// ValCatTimeOrder indicates an end before its start.
	ValCatTimeOrder ValidationCategory = "time_order"
)

// ValidationError records a validation problem with source context.
type ValidationError struct {
	Category   ValidationCategory
	Event      string
	SourceFile string
	Field      string
	Err        error
}

// Error returns a human-readable string including source file and event context.
func (e *ValidationError) Error() string {
	if e.Event != "" {
		return e.SourceFile + ": event " + e.Event + ": " + e.Err.Error()
	}
	return e.SourceFile + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
