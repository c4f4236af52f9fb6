package mcl

// Driver is the native boundary of the Nano-Drive: the four Madlib entry
// points this package consumes.  Signatures mirror madlib.h.
type Driver interface {
	// InitHandle requests control of a single Nano-Drive.  0 means failure.
	InitHandle() int

	// SingleReadN reads the position of axis in microns, or an error code
	// encoded as a (negative) position
	SingleReadN(axis Axis, handle int) float64

	// SingleWriteN commands axis to position (microns) and returns
	// MCL_SUCCESS or an error code
	SingleWriteN(position float64, axis Axis, handle int) int

	// ReleaseAllHandles releases control of every Nano-Drive held by this
	// instance of the driver
	ReleaseAllHandles()
}

// Config holds the parameters needed to bring up a Nano-Drive
type Config struct {
	// DriverPath is the filesystem path to Madlib.dll / libmadlib.so
	DriverPath string `koanf:"path" yaml:"path"`

	// Verbose logs the handle and every position read back
	Verbose bool `koanf:"verbose" yaml:"verbose"`

	// Mock substitutes an in-memory driver for the real one
	Mock bool `koanf:"mock" yaml:"mock"`
}

// LoadDriver returns the driver described by cfg, a MockDriver if cfg.Mock
// and the native library otherwise
func LoadDriver(cfg Config) (Driver, error) {
	if cfg.Mock {
		return NewMock(), nil
	}
	lib, err := Load(cfg.DriverPath)
	if err != nil {
		return nil, err
	}
	return lib, nil
}
