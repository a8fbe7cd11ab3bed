package config

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrNotFound = errors.New("config not found")
	ErrParse    = errors.New("config parse error")
	ErrShape    = errors.New("config shape error")
)

// NotFoundError reports a configuration path that does not resolve to a readable file.
type NotFoundError struct {
	Path  string
	Cause error
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// Is matches ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ParseError reports a configuration file whose content is not valid structured data.
// Line and Column are 1-based and zero when the decoder gave no position. Offset
// is the number of bytes read before the failure and is set for JSON only.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Offset int64
	Cause  error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Offset > 0:
		return fmt.Sprintf("invalid config in %s: line %d column %d (char %d): %v", e.Path, e.Line, e.Column, e.Offset, e.Cause)
	case e.Line > 0:
		return fmt.Sprintf("invalid config in %s: line %d column %d: %v", e.Path, e.Line, e.Column, e.Cause)
	}
	return fmt.Sprintf("invalid config in %s: %v", e.Path, e.Cause)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is matches ErrParse
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ShapeError reports a required key that is absent or of the wrong kind.
type ShapeError struct {
	Path   string
	Key    string
	Reason string
}

// Error implements the error interface
func (e *ShapeError) Error() string {
	return fmt.Sprintf("config %s: key %q %s", e.Path, e.Key, e.Reason)
}

// Is matches ErrShape
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}
