package mcl

import (
	"errors"
	"fmt"
)

var (
	// ErrInitialization is generated when the driver hands out a zero handle
	ErrInitialization = errors.New("MCL init error, driver returned handle 0")

	// ErrNoActiveHandle is generated by any axis operation after Close
	ErrNoActiveHandle = errors.New("no active Nano-Drive handle")

	// ErrUnknownAxis is generated when an axis name cannot be parsed
	ErrUnknownAxis = errors.New("unknown axis")

	// ErrMap maps Madlib return codes to their names
	ErrMap = map[int]string{
		0:  "MCL_SUCCESS",
		-1: "MCL_GENERAL_ERROR",
		-2: "MCL_DEV_ERROR",
		-3: "MCL_DEV_NOT_ATTACHED",
		-4: "MCL_USAGE_ERROR",
		-5: "MCL_DEV_NOT_READY",
		-6: "MCL_ARGUMENT_ERROR",
		-7: "MCL_INVALID_AXIS",
		-8: "MCL_INVALID_HANDLE",
	}
)

const (
	// Success is returned by the driver when a command completed
	Success = 0

	// GeneralError is MCL_GENERAL_ERROR
	GeneralError = -1

	// DevNotAttached is MCL_DEV_NOT_ATTACHED
	DevNotAttached = -3

	// InvalidAxis is MCL_INVALID_AXIS
	InvalidAxis = -7

	// InvalidHandle is MCL_INVALID_HANDLE
	InvalidHandle = -8
)

// Status encapsulates a return code from Madlib
type Status struct {
	Code int
}

// CodeErr converts a Madlib return code to an error, nil for MCL_SUCCESS
func CodeErr(code int) error {
	if code == Success {
		return nil
	}
	return Status{code}
}

func (s Status) Error() string {
	if name, ok := ErrMap[s.Code]; ok {
		return fmt.Sprintf("%d - %s", s.Code, name)
	}
	return fmt.Sprintf("%d - UNKNOWN ERROR CODE", s.Code)
}

// WriteError is generated when SingleWriteN returns a nonzero code.
// It unwraps to the Status of the code.
type WriteError struct {
	Axis Axis
	Code int
}

func (e WriteError) Error() string {
	return fmt.Sprintf("MCL write error on axis %s = %v", e.Axis, CodeErr(e.Code))
}

// Unwrap returns the Status for the write's return code
func (e WriteError) Unwrap() error {
	return CodeErr(e.Code)
}
