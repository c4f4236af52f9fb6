package mcl

import (
	"fmt"
	"strings"
)

// Axis identifies one motion channel of a Nano-Drive
type Axis uint

const (
	// AxisX is the X axis
	AxisX Axis = 1

	// AxisY is the Y axis
	AxisY Axis = 2

	// AxisZ is the Z axis
	AxisZ Axis = 3

	// AxisAux is the auxiliary axis, present on some stages
	AxisAux Axis = 4
)

var (
	axisNames = map[Axis]string{
		AxisX:   "x",
		AxisY:   "y",
		AxisZ:   "z",
		AxisAux: "aux",
	}

	// Axes lists every axis the driver can address, in driver order
	Axes = []Axis{AxisX, AxisY, AxisZ, AxisAux}
)

func (a Axis) String() string {
	if s, ok := axisNames[a]; ok {
		return s
	}
	return fmt.Sprintf("axis(%d)", uint(a))
}

// Valid is true if a is one of the four axes the driver knows
func (a Axis) Valid() bool {
	_, ok := axisNames[a]
	return ok
}

// ParseAxis converts "x", "X", or "1" (and so on for y, z, aux) to an Axis
func ParseAxis(s string) (Axis, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range axisNames {
		if s == name || s == fmt.Sprint(uint(a)) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAxis, s)
}
