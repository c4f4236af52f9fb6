package mcl_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nasa-jpl/nanodrive/mcl"
)

func ExampleCodeErr() {
	fmt.Println(mcl.CodeErr(-8))
	// Output: -8 - MCL_INVALID_HANDLE
}

func ExampleWriteError() {
	err := mcl.WriteError{Axis: mcl.AxisY, Code: -3}
	fmt.Println(err)
	// Output: MCL write error on axis y = -3 - MCL_DEV_NOT_ATTACHED
}

func TestCodeErrSuccessIsNil(t *testing.T) {
	if err := mcl.CodeErr(mcl.Success); err != nil {
		t.Errorf("expected nil for MCL_SUCCESS, got %v", err)
	}
}

func TestCodeErrUnknown(t *testing.T) {
	err := mcl.CodeErr(-99)
	if err.Error() != "-99 - UNKNOWN ERROR CODE" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestWriteErrorUnwrapsToStatus(t *testing.T) {
	var err error = mcl.WriteError{Axis: mcl.AxisX, Code: mcl.InvalidAxis}
	var st mcl.Status
	if !errors.As(err, &st) || st.Code != mcl.InvalidAxis {
		t.Errorf("expected Status %d, got %v", mcl.InvalidAxis, st)
	}
}

func TestParseAxis(t *testing.T) {
	cases := map[string]mcl.Axis{
		"x": mcl.AxisX, "X": mcl.AxisX, "1": mcl.AxisX,
		"y": mcl.AxisY, "2": mcl.AxisY,
		"z": mcl.AxisZ, " Z ": mcl.AxisZ,
		"aux": mcl.AxisAux, "4": mcl.AxisAux,
	}
	for in, want := range cases {
		got, err := mcl.ParseAxis(in)
		if err != nil {
			t.Errorf("ParseAxis(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseAxis(%q): expected %s got %s", in, want, got)
		}
	}
	if _, err := mcl.ParseAxis("5"); err == nil {
		t.Error("expected error for axis 5")
	}
}
