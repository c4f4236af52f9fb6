package mcl

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
)

func openMock(t *testing.T) (*NanoDrive, *MockDriver) {
	t.Helper()
	drv := NewMock()
	nd, err := Open(drv, Config{Verbose: true}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open mock: %v", err)
	}
	return nd, drv
}

func TestWriteThenReadEveryAxis(t *testing.T) {
	nd, _ := openMock(t)
	defer nd.Close()
	for i, axis := range Axes {
		target := 10 * float64(i+1)
		if err := nd.WriteAxis(target, axis); err != nil {
			t.Fatalf("write %s: %v", axis, err)
		}
		got, err := nd.ReadAxis(axis)
		if err != nil {
			t.Fatalf("read %s: %v", axis, err)
		}
		if got != target {
			t.Errorf("axis %s: expected %f got %f", axis, target, got)
		}
	}
}

func TestFailedWriteLeavesAxisAndReportsCode(t *testing.T) {
	nd, drv := openMock(t)
	defer nd.Close()
	if err := nd.WriteAxis(5, AxisZ); err != nil {
		t.Fatal(err)
	}
	drv.SetWriteCode(AxisZ, DevNotAttached)
	err := nd.WriteAxis(50, AxisZ)
	var werr WriteError
	if !errors.As(err, &werr) {
		t.Fatalf("expected WriteError, got %v", err)
	}
	if werr.Code != DevNotAttached || werr.Axis != AxisZ {
		t.Errorf("expected code %d on z, got %+v", DevNotAttached, werr)
	}
	got, _ := nd.ReadAxis(AxisZ)
	if got != 5 {
		t.Errorf("expected z to stay at 5 after failed write, got %f", got)
	}
}

func TestMoveXYWritesXThenYEvenOnFailure(t *testing.T) {
	nd, drv := openMock(t)
	defer nd.Close()
	drv.SetWriteCode(AxisX, GeneralError)
	err := nd.MoveXY(1, 2)
	if err == nil {
		t.Fatal("expected an error from the failed X write")
	}
	var writes []Call
	for _, c := range drv.Calls() {
		if c.Op == "SingleWriteN" {
			writes = append(writes, c)
		}
	}
	expected := []Call{
		{Op: "SingleWriteN", Axis: AxisX, Position: 1},
		{Op: "SingleWriteN", Axis: AxisY, Position: 2},
	}
	if diff := cmp.Diff(expected, writes); diff != "" {
		t.Errorf("MoveXY writes mismatch (-want +got):\n%s", diff)
	}
	y, _ := nd.ReadAxis(AxisY)
	if y != 2 {
		t.Errorf("expected y to reach 2, got %f", y)
	}
}

func TestMoveZAndGetPosition(t *testing.T) {
	nd, _ := openMock(t)
	defer nd.Close()
	if err := nd.MoveXY(3, 4); err != nil {
		t.Fatal(err)
	}
	if err := nd.MoveZ(50); err != nil {
		t.Fatal(err)
	}
	p, err := nd.GetPosition()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Position{X: 3, Y: 4, Z: 50}, p); diff != "" {
		t.Errorf("position mismatch (-want +got):\n%s", diff)
	}
}

func TestCloseReleasesOnce(t *testing.T) {
	nd, drv := openMock(t)
	for i := 0; i < 3; i++ {
		if err := nd.Close(); err != nil {
			t.Fatal(err)
		}
	}
	if n := drv.Releases(); n != 1 {
		t.Errorf("expected exactly 1 ReleaseAllHandles, got %d", n)
	}
}

func TestOperationsAfterCloseFail(t *testing.T) {
	nd, drv := openMock(t)
	nd.Close()
	before := len(drv.Calls())
	if _, err := nd.ReadAxis(AxisX); !errors.Is(err, ErrNoActiveHandle) {
		t.Errorf("read after close: expected ErrNoActiveHandle, got %v", err)
	}
	if err := nd.WriteAxis(1, AxisX); !errors.Is(err, ErrNoActiveHandle) {
		t.Errorf("write after close: expected ErrNoActiveHandle, got %v", err)
	}
	if _, err := nd.GetPosition(); !errors.Is(err, ErrNoActiveHandle) {
		t.Errorf("position after close: expected ErrNoActiveHandle, got %v", err)
	}
	if after := len(drv.Calls()); after != before {
		t.Errorf("expected no driver calls after close, got %d", after-before)
	}
	if nd.Handle() != 0 {
		t.Errorf("expected handle 0 after close, got %d", nd.Handle())
	}
}

func TestZeroHandleFailsInitialization(t *testing.T) {
	drv := NewMock()
	drv.Handle = 0
	nd, err := Open(drv, Config{}, zaptest.NewLogger(t))
	if !errors.Is(err, ErrInitialization) {
		t.Fatalf("expected ErrInitialization, got %v", err)
	}
	if nd != nil {
		t.Error("expected nil NanoDrive on init failure")
	}
	expected := []Call{{Op: "InitHandle"}}
	if diff := cmp.Diff(expected, drv.Calls()); diff != "" {
		t.Errorf("unexpected driver calls (-want +got):\n%s", diff)
	}
}

func TestNewMockConfig(t *testing.T) {
	nd, err := New(Config{Mock: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer nd.Close()
	if nd.Handle() != 1 {
		t.Errorf("expected mock handle 1, got %d", nd.Handle())
	}
}

func TestMoverByAxisName(t *testing.T) {
	nd, _ := openMock(t)
	defer nd.Close()
	if err := nd.MoveAbs("x", 10); err != nil {
		t.Fatal(err)
	}
	if err := nd.MoveRel("X", 2.5); err != nil {
		t.Fatal(err)
	}
	pos, err := nd.GetPos("1")
	if err != nil {
		t.Fatal(err)
	}
	if pos != 12.5 {
		t.Errorf("expected 12.5 after abs+rel move, got %f", pos)
	}
	if err := nd.Home("x"); err != nil {
		t.Fatal(err)
	}
	if pos, _ = nd.GetPos("x"); pos != 0 {
		t.Errorf("expected home to move to 0, got %f", pos)
	}
	if err := nd.MoveAbs("w", 1); !errors.Is(err, ErrUnknownAxis) {
		t.Errorf("expected ErrUnknownAxis, got %v", err)
	}
}

func TestAxisNameCanonical(t *testing.T) {
	nd, _ := openMock(t)
	cases := map[string]string{"x": "x", "X": "x", "1": "x", "2": "y", "Z": "z", "4": "aux"}
	for in, want := range cases {
		got, err := nd.AxisName(in)
		if err != nil || got != want {
			t.Errorf("AxisName(%q): expected %q got %q (%v)", in, want, got, err)
		}
	}
	if _, err := nd.AxisName("5"); !errors.Is(err, ErrUnknownAxis) {
		t.Errorf("expected ErrUnknownAxis, got %v", err)
	}
}
