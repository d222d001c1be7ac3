package convert

import (
	"errors"
	"fmt"
)

// Sentinel errors for malformed content.
var (
	// ErrInvalidUTF8 indicates file bytes are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")
	// ErrUnterminatedFrontMatter indicates an opening front matter delimiter
	// without a matching closing line.
	ErrUnterminatedFrontMatter = errors.New("front matter is not terminated")
)

// Decode stages reported in DecodeError.
const (
	StageUTF8        = "utf8"
	StageFrontMatter = "front matter"
	StageYAML        = "yaml"
	StageTOML        = "toml"
	StageValue       = "value"
)

// DecodeError reports malformed file content together with the file it came
// from and the pipeline stage that rejected it.
type DecodeError struct {
	Path  string
	Stage string
	Err   error
}

// Error returns "<path>: <stage>: <cause>".
func (e *DecodeError) Error() string {
	msg := e.Stage + ": " + e.Err.Error()
	if e.Path != "" {
		return e.Path + ": " + msg
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decodef returns a value-stage DecodeError with a formatted cause.
func Decodef(format string, args ...any) error {
	return &DecodeError{Stage: StageValue, Err: fmt.Errorf(format, args...)}
}

// WithPath attaches path to err. A DecodeError without a path gets it filled
// in; any other error is wrapped as a value-stage DecodeError.
func WithPath(err error, path string) error {
	if err == nil {
		return nil
	}
	var de *DecodeError
	if errors.As(err, &de) {
		if de.Path == "" {
			de.Path = path
		}
		return err
	}
	return &DecodeError{Path: path, Stage: StageValue, Err: err}
}
