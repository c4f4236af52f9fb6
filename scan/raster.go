/*Package scan drives a stage through a rectangular raster, taking a
measurement at each point.

The raster moves to (X1, Y1) and the scan height first, then visits every grid
point in row-major order.  At each point it moves, waits for the stage to
settle, calls the measurement hook, and reads the position back.  Failed
writes and failed measurements are logged and the scan continues; a raster
always visits every point.
*/
package scan

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nasa-jpl/nanodrive/mcl"
)

// DefaultSettle is the settle time used by the MCL example raster
const DefaultSettle = 30 * time.Millisecond

// ErrBusy is generated when Run is called on a raster that is already running
var ErrBusy = errors.New("scan already in progress")

// State is the phase of a raster
type State int

const (
	// Idle means the raster has not started
	Idle State = iota

	// Homed means the stage is at the scan origin and height
	Homed

	// Scanning means the raster is visiting grid points
	Scanning

	// Done means every grid point has been visited
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Homed:
		return "homed"
	case Scanning:
		return "scanning"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Stage is the part of a stage controller a raster needs
type Stage interface {
	MoveXY(x, y float64) error
	MoveZ(z float64) error
	GetPosition() (mcl.Position, error)
}

// Measurer takes a measurement with the stage at a grid point.  It may
// return a scalar (length 1) or a vector.
type Measurer func(idx Index, at Point) ([]float64, error)

// Result is the outcome at one grid point
type Result struct {
	Index

	// Target is the commanded position
	Target Point `json:"target"`

	// Position is the position read back after settling
	Position mcl.Position `json:"position"`

	// Measurement is the return of the Measurer, nil without one
	Measurement []float64 `json:"measurement,omitempty"`

	// Err joins any move, measurement, or readback errors at this point
	Err error `json:"-"`

	// ErrText is Err as a string, for JSON
	ErrText string `json:"error,omitempty"`
}

// Raster is a 2D scan over a Grid at fixed height Z
type Raster struct {
	Stage   Stage
	Grid    Grid
	Z       float64
	Settle  time.Duration
	Measure Measurer
	Log     *zap.Logger

	// Sleep waits out the settle time, time.Sleep if nil
	Sleep func(time.Duration)

	// Progress, if not nil, is called after each point with the number of
	// points done, the total, and the result at that point
	Progress func(done, total int, res Result)

	mu      sync.Mutex
	running bool
	state   State
	cursor  int
	results []Result
}

// State returns the current phase of the raster
func (r *Raster) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Cursor returns the flat index of the point being visited
func (r *Raster) Cursor() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// Results returns a copy of the results gathered so far
func (r *Raster) Results() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Result, len(r.results))
	copy(out, r.results)
	return out
}

func (r *Raster) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
}

// Run executes the raster and returns one Result per grid point in
// row-major order.  It blocks until every point has been visited; the only
// errors are an invalid grid and ErrBusy, returned while another Run on r is
// homing or scanning.
func (r *Raster) Run() ([]Result, error) {
	if err := r.Grid.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrBusy
	}
	r.running = true
	r.state = Idle
	r.cursor = 0
	r.results = make([]Result, 0, r.Grid.Len())
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	// go to the origin of the scan
	if err := r.Stage.MoveXY(r.Grid.X1, r.Grid.Y1); err != nil {
		log.Warn("move to scan origin failed", zap.Error(err))
	}
	if err := r.Stage.MoveZ(r.Z); err != nil {
		log.Warn("move to scan height failed", zap.Error(err))
	}
	r.setState(Homed)
	log.Info("raster homed",
		zap.Float64("x", r.Grid.X1), zap.Float64("y", r.Grid.Y1), zap.Float64("z", r.Z),
		zap.Int("nx", r.Grid.NX), zap.Int("ny", r.Grid.NY))

	r.setState(Scanning)
	pts := r.Grid.Points()
	for i, pt := range pts {
		r.mu.Lock()
		r.cursor = i
		r.mu.Unlock()

		res := r.visit(r.Grid.IndexOf(i), pt, sleep, log)

		r.mu.Lock()
		r.results = append(r.results, res)
		r.mu.Unlock()
		if r.Progress != nil {
			r.Progress(i+1, len(pts), res)
		}
	}
	r.setState(Done)
	log.Info("raster done", zap.Int("points", len(pts)))
	return r.Results(), nil
}

func (r *Raster) visit(idx Index, pt Point, sleep func(time.Duration), log *zap.Logger) Result {
	res := Result{Index: idx, Target: pt}
	var errs []error
	if err := r.Stage.MoveXY(pt.X, pt.Y); err != nil {
		errs = append(errs, err)
		log.Warn("move failed", zap.Int("row", idx.Row), zap.Int("col", idx.Col), zap.Error(err))
	}
	sleep(r.Settle)
	if r.Measure != nil {
		m, err := r.Measure(idx, pt)
		if err != nil {
			errs = append(errs, err)
			log.Warn("measurement failed", zap.Int("row", idx.Row), zap.Int("col", idx.Col), zap.Error(err))
		}
		res.Measurement = m
	}
	pos, err := r.Stage.GetPosition()
	if err != nil {
		errs = append(errs, err)
		log.Warn("position readback failed", zap.Error(err))
	}
	res.Position = pos
	log.Info("current position",
		zap.Int("row", idx.Row), zap.Int("col", idx.Col),
		zap.Float64("x", pos.X), zap.Float64("y", pos.Y), zap.Float64("z", pos.Z))
	if res.Err = errors.Join(errs...); res.Err != nil {
		res.ErrText = res.Err.Error()
	}
	return res
}
