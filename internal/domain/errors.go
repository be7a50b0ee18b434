package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a booking id is not in the collection.
	ErrNotFound = errors.New("booking not found")
	// ErrBlobNotFound is returned by a BlobStore for a key that was never set.
	ErrBlobNotFound = errors.New("blob not found")
)

// ValidationError reports a single invalid form field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field of a form.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

// Op values for PersistenceError.
const (
	OpLoad = "load"
	OpSave = "save"
)

// PersistenceError wraps a failure to read or write durable storage.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NotFound wraps ErrNotFound with the missing id.
func NotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// IsValidation reports whether err carries a validation failure.
func IsValidation(err error) bool {
	var fe *ValidationError
	var all ValidationErrors
	return errors.As(err, &fe) || errors.As(err, &all)
}
