package mcl

import "sync"

// Call is one entry in a MockDriver's call log
type Call struct {
	// Op is the driver entry point, e.g. "SingleWriteN"
	Op string

	// Axis is the axis addressed, zero for InitHandle and ReleaseAllHandles
	Axis Axis

	// Position is the commanded position for SingleWriteN
	Position float64
}

// MockDriver is an in-memory Driver.  Writes land instantly; there is no
// servo model since a piezo stage settles in a few ms.
type MockDriver struct {
	sync.Mutex

	// Handle is what InitHandle gives out.  Set it to 0 to simulate a
	// missing device.
	Handle int

	// WriteCodes holds a return code per axis for SingleWriteN.  A nonzero
	// code leaves the axis where it was.
	WriteCodes map[Axis]int

	pos      map[Axis]float64
	live     map[int]bool
	calls    []Call
	releases int
}

// NewMock returns a MockDriver which hands out handle 1
func NewMock() *MockDriver {
	return &MockDriver{
		Handle:     1,
		WriteCodes: make(map[Axis]int),
		pos:        make(map[Axis]float64),
		live:       make(map[int]bool)}
}

func (m *MockDriver) record(c Call) {
	m.calls = append(m.calls, c)
}

// InitHandle returns m.Handle
func (m *MockDriver) InitHandle() int {
	m.Lock()
	defer m.Unlock()
	m.record(Call{Op: "InitHandle"})
	if m.Handle != 0 {
		m.live[m.Handle] = true
	}
	return m.Handle
}

// SingleReadN returns the last position written to axis
func (m *MockDriver) SingleReadN(axis Axis, handle int) float64 {
	m.Lock()
	defer m.Unlock()
	m.record(Call{Op: "SingleReadN", Axis: axis})
	if !m.live[handle] {
		return InvalidHandle
	}
	if !axis.Valid() {
		return InvalidAxis
	}
	return m.pos[axis]
}

// SingleWriteN moves axis to position unless a WriteCode is set for it
func (m *MockDriver) SingleWriteN(position float64, axis Axis, handle int) int {
	m.Lock()
	defer m.Unlock()
	m.record(Call{Op: "SingleWriteN", Axis: axis, Position: position})
	if !m.live[handle] {
		return InvalidHandle
	}
	if !axis.Valid() {
		return InvalidAxis
	}
	if code := m.WriteCodes[axis]; code != Success {
		return code
	}
	m.pos[axis] = position
	return Success
}

// ReleaseAllHandles invalidates every handle given out
func (m *MockDriver) ReleaseAllHandles() {
	m.Lock()
	defer m.Unlock()
	m.record(Call{Op: "ReleaseAllHandles"})
	m.releases++
	m.live = make(map[int]bool)
}

// SetWriteCode makes every future write to axis return code
func (m *MockDriver) SetWriteCode(axis Axis, code int) {
	m.Lock()
	defer m.Unlock()
	m.WriteCodes[axis] = code
}

// Calls returns a copy of the call log
func (m *MockDriver) Calls() []Call {
	m.Lock()
	defer m.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Releases returns how many times ReleaseAllHandles was called
func (m *MockDriver) Releases() int {
	m.Lock()
	defer m.Unlock()
	return m.releases
}
