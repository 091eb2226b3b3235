// Package parsererror defines the error taxonomy of a conversion run.
//
// Structural failures (ContainerFormatError, ColumnNotFoundError) abort a run.
// RecordError is row-level: the normalizer logs and skips the row.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is checks across wrapping layers.
var (
	ErrUnrecognizedContainer = errors.New("unrecognized container format")
	ErrColumnNotFound        = errors.New("column not found")
	ErrUnparseableRecord     = errors.New("unparseable record")
	ErrUnknownSource         = errors.New("unknown source")
	ErrInvalidFormat         = errors.New("invalid format")
)

// ParseError describes a single field that could not be converted.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v", e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// AttemptFailure records why one container interpretation was rejected.
type AttemptFailure struct {
	Attempt string
	Err     error
}

// ContainerFormatError is returned when no container interpretation produced a row-set.
type ContainerFormatError struct {
	Source   string
	Attempts []AttemptFailure
}

func (e *ContainerFormatError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Attempt, a.Err))
	}
	msg := "unrecognized container format"
	if e.Source != "" {
		msg += " for source '" + e.Source + "'"
	}
	if len(parts) > 0 {
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return msg
}

func (e *ContainerFormatError) Unwrap() error {
	return ErrUnrecognizedContainer
}

// ColumnNotFoundError is returned when a semantic column cannot be resolved.
type ColumnNotFoundError struct {
	Source    string
	Role      string
	Label     string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	want := e.Role
	if e.Label != "" {
		want = fmt.Sprintf("%s ('%s')", e.Role, e.Label)
	}
	return fmt.Sprintf("column not found for source '%s': %s; available columns: [%s]",
		e.Source, want, strings.Join(e.Available, ", "))
}

func (e *ColumnNotFoundError) Unwrap() error {
	return ErrColumnNotFound
}

// RecordError describes a row the normalizer dropped.
type RecordError struct {
	Row    int
	Reason string
	Err    error
}

func (e *RecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d: %s: %v", e.Row, e.Reason, e.Err)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Is makes every RecordError match ErrUnparseableRecord.
func (e *RecordError) Is(target error) bool {
	return target == ErrUnparseableRecord
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// UnknownSourceError is returned when a source selector does not name a profile.
type UnknownSourceError struct {
	Source    string
	Supported []string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown source '%s' (supported: %s)", e.Source, strings.Join(e.Supported, ", "))
}

func (e *UnknownSourceError) Unwrap() error {
	return ErrUnknownSource
}

// InvalidFormatError represents an input that failed the validate step.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s", e.FilePath, e.Msg, e.ExpectedFormat)
}

func (e *InvalidFormatError) Unwrap() error {
	return ErrInvalidFormat
}

// UserMessage renders err for an end user, telling apart a file that belongs
// to another source from a file that could not be read at all.
func UserMessage(err error) string {
	var invalid *InvalidFormatError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &invalid):
		return fmt.Sprintf("%s is not a valid %s.", invalid.FilePath, invalid.ExpectedFormat)
	case errors.Is(err, ErrColumnNotFound):
		return "The file was read, but its columns do not match this bank. Check that you selected the right bank for this file."
	case errors.Is(err, ErrUnrecognizedContainer):
		return "The file could not be read as a spreadsheet, delimited text, HTML table or XML document."
	case errors.Is(err, ErrUnknownSource):
		return "Unsupported bank. " + err.Error()
	default:
		return "Error processing the file: " + err.Error()
	}
}
