package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	"github.com/nasa-jpl/nanodrive/mcl"
	"github.com/nasa-jpl/nanodrive/scan"
	"github.com/nasa-jpl/nanodrive/util"
)

// EnvPrefix prefixes environment variables that override the config file,
// e.g. NANODRIVE_DRIVER_PATH overrides driver.path
const EnvPrefix = "NANODRIVE_"

// ScanSetup holds the parameters of the raster run by the scan command
type ScanSetup struct {
	// Grid is the lattice of points to visit
	Grid scan.Grid `koanf:"grid" yaml:"grid"`

	// Z is the height of the scan in microns
	Z float64 `koanf:"z" yaml:"z"`

	// Settle is the wait after each move, in seconds
	Settle float64 `koanf:"settle" yaml:"settle"`

	// Output is the FITS file to write the results to, none if empty
	Output string `koanf:"output" yaml:"output"`
}

// Config is a struct that holds the initialization parameters for the
// Nano-Drive server and scanner.  It is populated by koanf.
type Config struct {
	// Addr is the address to listen at
	Addr string `koanf:"addr" yaml:"addr"`

	// Endpoint is the path the stage's routes are served under
	Endpoint string `koanf:"endpoint" yaml:"endpoint"`

	// Driver locates the MCL driver library
	Driver mcl.Config `koanf:"driver" yaml:"driver"`

	// Limits are software limits on HTTP moves, keyed by axis name
	Limits map[string]util.Limiter `koanf:"limits" yaml:"limits"`

	// Scan is the raster run by the scan command
	Scan ScanSetup `koanf:"scan" yaml:"scan"`
}

// DefaultDriverPath is where Madlib is usually found on this platform
func DefaultDriverPath() string {
	if runtime.GOOS == "windows" {
		return `C:\Program Files\Mad City Labs\NanoDrive\Madlib.dll`
	}
	return "libmadlib.so"
}

// DefaultConfig is the MCL example raster: 64x64 points over 16x16 um at
// z = 50 um with a 30 ms settle
func DefaultConfig() Config {
	return Config{
		Addr:     ":8000",
		Endpoint: "/mcl",
		Driver:   mcl.Config{DriverPath: DefaultDriverPath()},
		Limits:   map[string]util.Limiter{},
		Scan: ScanSetup{
			Grid:   scan.Grid{X1: 0, X2: 16, Y1: 0, Y2: 16, NX: 64, NY: 64},
			Z:      50,
			Settle: scan.DefaultSettle.Seconds(),
		},
	}
}

// LoadConfig layers defaults, the YAML file at path (if it exists), and the
// environment, in that order
func LoadConfig(path string) (*koanf.Koanf, Config, error) {
	k := koanf.New(".")
	c := Config{}
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return k, c, fmt.Errorf("loading default config: %w", err)
	}
	// file missing, who cares
	if _, err := os.Stat(path); path != "" && err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return k, c, fmt.Errorf("error loading config %s: %w", path, err)
		}
	}
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return k, c, fmt.Errorf("loading environment: %w", err)
	}
	err = k.Unmarshal("", &c)
	return k, c, err
}
