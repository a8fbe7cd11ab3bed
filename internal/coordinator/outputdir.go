package coordinator

import (
	"fmt"
	"os"
)

// OutputDirectoryError reports an output directory that cannot be created
type OutputDirectoryError struct {
	Path  string
	Cause error
}

// Error implements the error interface
func (e *OutputDirectoryError) Error() string {
	return fmt.Sprintf("cannot create output directory %s: %v", e.Path, e.Cause)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *OutputDirectoryError) Unwrap() error {
	return e.Cause
}

// EnsureOutputDir creates path and any missing parents. An existing directory
// is left untouched.
func EnsureOutputDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &OutputDirectoryError{Path: path, Cause: err}
	}
	return nil
}
