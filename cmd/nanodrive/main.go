package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/theckman/yacspin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	yml "gopkg.in/yaml.v2"

	"github.com/nasa-jpl/nanodrive/mcl"
	"github.com/nasa-jpl/nanodrive/scan"
	"github.com/nasa-jpl/nanodrive/util"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "nanodrive.yml"

	verbose bool
	mock    bool
)

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func loadConfig() (Config, error) {
	_, c, err := LoadConfig(ConfigFileName)
	if err != nil {
		return c, err
	}
	if mock {
		c.Driver.Mock = true
	}
	if verbose {
		c.Driver.Verbose = true
	}
	return c, nil
}

// releaseOnSignal closes nd when the process is interrupted, so the handle
// goes back to the driver on every exit short of a kill
func releaseOnSignal(nd *mcl.NanoDrive, log *zap.Logger, then func()) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sig
		log.Info("signal received, releasing Nano-Drive", zap.Stringer("signal", s))
		if err := nd.Close(); err != nil {
			log.Error("closing Nano-Drive", zap.Error(err))
		}
		then()
	}()
}

func run(cmd *cobra.Command, args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(zap.InfoLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	nd, err := mcl.New(c.Driver, log)
	if err != nil {
		return err
	}
	defer nd.Close()

	srv := &http.Server{Addr: c.Addr, Handler: BuildMux(c, nd, log)}
	releaseOnSignal(nd, log, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	log.Info("now listening for requests", zap.String("addr", c.Addr), zap.String("endpoint", c.Endpoint))
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func runScan(cmd *cobra.Command, args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	// with --verbose every position is logged; otherwise the spinner
	// message carries the position read back at each point
	log, err := newLogger(zap.WarnLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	nd, err := mcl.New(c.Driver, log)
	if err != nil {
		return err
	}
	defer nd.Close()
	releaseOnSignal(nd, log, func() { os.Exit(1) })

	raster := &scan.Raster{
		Stage:  nd,
		Grid:   c.Scan.Grid,
		Z:      c.Scan.Z,
		Settle: util.SecsToDuration(c.Scan.Settle),
		Log:    log,
	}

	var spinner *yacspin.Spinner
	if !verbose {
		spinner, err = yacspin.New(yacspin.Config{
			Writer:          cmd.OutOrStdout(),
			Frequency:       100 * time.Millisecond,
			CharSet:         yacspin.CharSets[59],
			Suffix:          " scanning",
			SuffixAutoColon: true,
			StopCharacter:   "✓",
			StopColors:      []string{"fgGreen"},
		})
		if err != nil {
			return err
		}
		raster.Progress = func(done, total int, res scan.Result) {
			p := res.Position
			spinner.Message(fmt.Sprintf("%d/%d x=%.4f y=%.4f z=%.4f", done, total, p.X, p.Y, p.Z))
		}
		if err = spinner.Start(); err != nil {
			return err
		}
	}

	results, err := raster.Run()
	nerr := 0
	for _, res := range results {
		if res.Err != nil {
			nerr++
		}
	}
	if spinner != nil {
		spinner.StopMessage(fmt.Sprintf("%d points, %d with errors", len(results), nerr))
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	if c.Scan.Output == "" {
		return nil
	}
	f, err := os.Create(c.Scan.Output)
	if err != nil {
		return err
	}
	defer f.Close()
	if err = scan.WriteFITS(f, c.Scan.Grid, c.Scan.Z, results); err != nil {
		return fmt.Errorf("writing %s: %w", c.Scan.Output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s, %d points, %d with errors\n", c.Scan.Output, len(results), nerr)
	return nil
}

func mkconf(cmd *cobra.Command, args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		return err
	}
	defer f.Close()
	return yml.NewEncoder(f).Encode(c)
}

func printconf(cmd *cobra.Command, args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	return yml.NewEncoder(cmd.OutOrStdout()).Encode(c)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nanodrive",
		Short: "nanodrive controls Mad City Labs Nano-Drive piezo stages",
		Long: `nanodrive communicates with a Mad City Labs Nano-Drive through the vendor's
Madlib driver.  It can expose the stage over HTTP, so clients in any language
can move it, or run a raster scan directly.

nanodrive is amenable to configuration via its .yml file; see mkconf and conf.
Any key may be overridden from the environment, e.g. NANODRIVE_DRIVER_PATH for
driver.path.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&ConfigFileName, "config", "c", ConfigFileName, "configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log the driver handle and every position read back")
	root.PersistentFlags().BoolVar(&mock, "mock", false, "use an in-memory driver instead of Madlib")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "serve the stage over HTTP",
			RunE:  run,
		},
		&cobra.Command{
			Use:   "scan",
			Short: "run the configured raster scan and optionally write it to FITS",
			RunE:  runScan,
		},
		&cobra.Command{
			Use:   "mkconf",
			Short: "write the current configuration to the config file",
			RunE:  mkconf,
		},
		&cobra.Command{
			Use:   "conf",
			Short: "print the current configuration",
			RunE:  printconf,
		},
		&cobra.Command{
			Use:   "version",
			Short: "print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "nanodrive version %v\n", Version)
			},
		},
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
