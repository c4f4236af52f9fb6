/*Package mcl exposes control of Mad City Labs Nano-Drive piezo stages in Go
via the vendor's Madlib driver.

A NanoDrive holds exactly one driver handle for its lifetime.  Acquire it with
Open (or New, which also loads the driver) and release it with Close:

	nd, err := mcl.New(mcl.Config{DriverPath: "Madlib.dll"}, logger)
	if err != nil {
		return err
	}
	defer nd.Close()
	err = nd.MoveXY(10, 10)

Write failures are reported as WriteError and logged; the driver is left to
decide if the stage moved.  Reads are passed through from the driver
verbatim, an error code from MCL_SingleReadN looks like a (negative) position.
*/
package mcl

import (
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Position is the position of the three positioning axes, in microns
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NanoDrive is a Nano-Drive stage controller bound to one driver handle
type NanoDrive struct {
	// mu serializes calls into the driver, which is single-client
	mu sync.Mutex

	drv     Driver
	handle  int
	verbose bool
	log     *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// New loads the driver described by cfg and opens a NanoDrive on it
func New(cfg Config, log *zap.Logger) (*NanoDrive, error) {
	drv, err := LoadDriver(cfg)
	if err != nil {
		return nil, err
	}
	nd, err := Open(drv, cfg, log)
	if err != nil {
		if c, ok := drv.(io.Closer); ok {
			c.Close()
		}
		return nil, err
	}
	return nd, nil
}

// Open requests a handle from drv.  If the driver reports 0, ErrInitialization
// is returned and no axis is touched.
func Open(drv Driver, cfg Config, log *zap.Logger) (*NanoDrive, error) {
	if log == nil {
		log = zap.NewNop()
	}
	handle := drv.InitHandle()
	if handle == 0 {
		log.Error("MCL init error", zap.String("driver", cfg.DriverPath))
		return nil, ErrInitialization
	}
	if cfg.Verbose {
		log.Info("acquired Nano-Drive", zap.Int("handle", handle))
	}
	return &NanoDrive{drv: drv, handle: handle, verbose: cfg.Verbose, log: log}, nil
}

// Handle returns the driver handle, 0 after Close
func (n *NanoDrive) Handle() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.handle
}

func (n *NanoDrive) readAxis(axis Axis) (float64, error) {
	if n.handle == 0 {
		return 0, ErrNoActiveHandle
	}
	return n.drv.SingleReadN(axis, n.handle), nil
}

func (n *NanoDrive) writeAxis(position float64, axis Axis) error {
	if n.handle == 0 {
		return ErrNoActiveHandle
	}
	code := n.drv.SingleWriteN(position, axis, n.handle)
	if err := CodeErr(code); err != nil {
		n.log.Warn("MCL write error",
			zap.Stringer("axis", axis),
			zap.Float64("position", position),
			zap.Int("code", code),
			zap.Error(err))
		return WriteError{Axis: axis, Code: code}
	}
	return nil
}

// ReadAxis returns the current position of axis in microns
func (n *NanoDrive) ReadAxis(axis Axis) (float64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.readAxis(axis)
}

// WriteAxis commands axis to position (microns).  A nonzero return code from
// the driver is logged and returned as a WriteError.
func (n *NanoDrive) WriteAxis(position float64, axis Axis) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.writeAxis(position, axis)
}

// MoveXY writes X then Y.  The Y write is issued even if the X write failed;
// the returned error joins both failures.
func (n *NanoDrive) MoveXY(x, y float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	errX := n.writeAxis(x, AxisX)
	errY := n.writeAxis(y, AxisY)
	return errors.Join(errX, errY)
}

// MoveZ writes Z
func (n *NanoDrive) MoveZ(z float64) error {
	return n.WriteAxis(z, AxisZ)
}

// GetPosition reads X, Y, and Z.  These are three independent reads, not a
// snapshot.
func (n *NanoDrive) GetPosition() (Position, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var (
		p   Position
		err error
	)
	if p.X, err = n.readAxis(AxisX); err != nil {
		return p, err
	}
	if p.Y, err = n.readAxis(AxisY); err != nil {
		return p, err
	}
	if p.Z, err = n.readAxis(AxisZ); err != nil {
		return p, err
	}
	if n.verbose {
		n.log.Info("position", zap.Float64("x", p.X), zap.Float64("y", p.Y), zap.Float64("z", p.Z))
	}
	return p, nil
}

// Close releases every handle held by the driver and, if the driver is a
// loaded library, unloads it.  Only the first call does anything.
func (n *NanoDrive) Close() error {
	n.closeOnce.Do(func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.drv.ReleaseAllHandles()
		n.handle = 0
		if c, ok := n.drv.(io.Closer); ok {
			n.closeErr = c.Close()
		}
		if n.verbose {
			n.log.Info("released Nano-Drive")
		}
	})
	return n.closeErr
}

// AxisName returns the canonical name of an axis, so "X" and "1" are both "x"
func (n *NanoDrive) AxisName(axis string) (string, error) {
	a, err := ParseAxis(axis)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}

// GetPos reads an axis by name ("x", "y", "z", "aux", or 1..4)
func (n *NanoDrive) GetPos(axis string) (float64, error) {
	a, err := ParseAxis(axis)
	if err != nil {
		return 0, err
	}
	return n.ReadAxis(a)
}

// MoveAbs writes an axis by name
func (n *NanoDrive) MoveAbs(axis string, pos float64) error {
	a, err := ParseAxis(axis)
	if err != nil {
		return err
	}
	return n.WriteAxis(pos, a)
}

// MoveRel moves an axis by name a relative amount from its read-back position
func (n *NanoDrive) MoveRel(axis string, delta float64) error {
	a, err := ParseAxis(axis)
	if err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	pos, err := n.readAxis(a)
	if err != nil {
		return err
	}
	return n.writeAxis(pos+delta, a)
}

// Home moves an axis to the start of its travel.  Piezo stages have no
// reference switch, so this is a move to 0.
func (n *NanoDrive) Home(axis string) error {
	return n.MoveAbs(axis, 0)
}
