package mbean

import (
	"errors"
	"fmt"
)

// CommunicationError marks a transport-level failure: the endpoint could not
// be reached or the exchange broke down. These are the only failures that
// are worth retrying on a fresh connection.
type CommunicationError struct {
	Op  string // Operation that failed (connect, read, write, exec)
	Err error
}

// Error implements the error interface.
func (e *CommunicationError) Error() string {
	return fmt.Sprintf("communication error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// IsCommunication reports whether err is, or wraps, a CommunicationError.
func IsCommunication(err error) bool {
	var ce *CommunicationError
	return errors.As(err, &ce)
}

// RemoteError is an error reported by the endpoint itself, such as an
// unknown object, a missing attribute or a failing operation.
type RemoteError struct {
	Status    int    // Status code reported by the endpoint
	ErrorType string // Remote exception class, if known
	Message   string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.ErrorType != "" {
		return fmt.Sprintf("remote error %d (%s): %s", e.Status, e.ErrorType, e.Message)
	}
	return fmt.Sprintf("remote error %d: %s", e.Status, e.Message)
}

// ErrFieldNotFound is returned when a composite value has no such sub-field.
var ErrFieldNotFound = errors.New("composite field not found")
