// Package util contains misc internal utilities.
package util

import (
	"math"
	"time"
)

// Limiter is a type which imposes software limits on a quantity,
// such as the travel of an axis
type Limiter struct {
	Min float64 `json:"min" koanf:"min" yaml:"min"`
	Max float64 `json:"max" koanf:"max" yaml:"max"`
}

// Check returns true if min <= input <= max
func (l Limiter) Check(input float64) bool {
	return input >= l.Min && input <= l.Max
}

// SecsToDuration converts a number of seconds to a time.Duration,
// rounded to the nearest nanosecond
func SecsToDuration(secs float64) time.Duration {
	return time.Duration(math.Round(secs * 1e9))
}
