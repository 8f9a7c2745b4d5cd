package service

import (
	"errors"
	"fmt"

	"jmxstat/internal/model"
)

// Process exit statuses.
const (
	ExitOK     = 0 // Normal termination
	ExitUsage  = 1 // Invalid arguments or configuration
	ExitIO     = 2 // Connection or read failure, after retries where allowed
	ExitAction = 3 // Maintenance action or instrumentation toggle failed
)

// FatalError ends the run with the given exit status.
type FatalError struct {
	Status int
	Err    error
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *FatalError) Unwrap() error {
	return e.Err
}

// ExitStatus returns the exit status for err: ExitOK for nil, the recorded
// status for a FatalError and ExitIO for anything else.
func ExitStatus(err error) int {
	if err == nil {
		return ExitOK
	}
	var fatal *FatalError
	if errors.As(err, &fatal) {
		return fatal.Status
	}
	return ExitIO
}

func fatalf(status int, format string, args ...interface{}) error {
	return &FatalError{Status: status, Err: fmt.Errorf(format, args...)}
}

// AttributeReadError is a failure to read one attribute during a sampling pass.
// It wraps the cause, so transport failures stay recognisable.
type AttributeReadError struct {
	Ref model.AttributeReference
	Err error
}

// Error implements the error interface.
func (e *AttributeReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Ref, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AttributeReadError) Unwrap() error {
	return e.Err
}
