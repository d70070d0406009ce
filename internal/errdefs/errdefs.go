// Package errdefs defines the error kinds shared across the extraction
// pipeline and the propagation policy each kind implies.
//
//   - ConfigurationError is fatal to the whole operation and is surfaced
//     before any work begins.
//   - GenerationError aborts only the configuration-save step; no artifacts
//     are persisted.
//   - ExtractionError and FormatError are local to one document; the batch
//     records them and continues.
package errdefs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for batch summaries and exit codes.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindGeneration    Kind = "generation"
	KindExtraction    Kind = "extraction"
	KindFormat        Kind = "format"
)

// Error carries a kind alongside the wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Configuration returns a ConfigurationError.
func Configuration(format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Msg: fmt.Sprintf(format, args...)}
}

// Generation wraps err as a GenerationError.
func Generation(err error, format string, args ...any) error {
	return &Error{Kind: KindGeneration, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Extraction wraps err as a per-document ExtractionError.
func Extraction(err error, format string, args ...any) error {
	return &Error{Kind: KindExtraction, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Format wraps err as a per-document FormatError.
func Format(err error, format string, args ...any) error {
	return &Error{Kind: KindFormat, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or empty string if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
