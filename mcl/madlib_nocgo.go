//go:build !cgo

package mcl

import "errors"

// ErrNoCgo is returned by Load in binaries built with CGO_ENABLED=0
var ErrNoCgo = errors.New("MCL driver requires cgo; rebuild with CGO_ENABLED=1 or use the mock driver")

// Madlib is unavailable without cgo
type Madlib struct{}

// Load always fails without cgo
func Load(path string) (*Madlib, error) {
	return nil, ErrNoCgo
}

// InitHandle returns 0
func (m *Madlib) InitHandle() int { return 0 }

// SingleReadN returns MCL_GENERAL_ERROR
func (m *Madlib) SingleReadN(axis Axis, handle int) float64 { return GeneralError }

// SingleWriteN returns MCL_GENERAL_ERROR
func (m *Madlib) SingleWriteN(position float64, axis Axis, handle int) int { return GeneralError }

// ReleaseAllHandles does nothing
func (m *Madlib) ReleaseAllHandles() {}

// Close does nothing
func (m *Madlib) Close() error { return nil }
