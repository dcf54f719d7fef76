// Command rfidr logs the tags presented to an RDM630 RFID reader.
//
// The reader is wired to /dev/ttyAMA0 at 9600 baud. Every tag read is
// printed and appended to the read log as
//
//	<tag>\tat <dd/mm/yy hh:mm:ss>\t<seconds since start>
//
// The read log is truncated at startup and starts with a header line.
//
// Usage:
//
//	rfidr [flags]
//
// Flags:
//
//	-config string      Configuration file path (YAML)
//	-log-level string   Log level override: debug, info, warn, error
//
// Examples:
//
//	# Log to ./test.out with defaults
//	rfidr
//
//	# Use a config file and trace every frame
//	rfidr -config /etc/rfidr.yaml -log-level debug
//
// Exit status is 1 when the device cannot be opened, 2 for an invalid
// configuration, and 0 after SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/clivemjeffery/rfidr/pkg/clock"
	"github.com/clivemjeffery/rfidr/pkg/config"
	"github.com/clivemjeffery/rfidr/pkg/log"
	"github.com/clivemjeffery/rfidr/pkg/service"
	"github.com/clivemjeffery/rfidr/pkg/transport"
)

// Exit codes.
const (
	exitOK     = 0
	exitOpen   = 1
	exitConfig = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil))
}

// run parses args and runs the reader until ctx is done. A nil open uses
// the serial driver.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, open transport.Opener) int {
	fs := flag.NewFlagSet("rfidr", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "Configuration file path (YAML)")
	logLevel := fs.String("log-level", "", "Log level override: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	logger := stdlog.New(stderr, "", stdlog.Ltime)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Printf("Invalid configuration: %v", err)
		return exitConfig
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
		if err := cfg.Validate(); err != nil {
			logger.Printf("Invalid configuration: %v", err)
			return exitConfig
		}
	}

	level := cfg.SlogLevel()
	slogger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if open == nil {
		portCfg := transport.DefaultPortConfig()
		portCfg.ReadTimeout = cfg.ReadTimeout
		open = transport.SerialOpener(portCfg)
	}

	r := service.NewReader(readerConfig(cfg, stdout, stderr, slogger, level), open)
	if err := r.Start(); err != nil {
		var oe *service.OpenError
		if errors.As(err, &oe) {
			fmt.Fprintf(stderr, "Unable to open serial device: %v\n", oe.Err)
			return exitOpen
		}
		logger.Printf("Failed to start reader: %v", err)
		return exitOpen
	}

	slogger.Debug("reading", "device", cfg.Device, "logFile", cfg.LogFile, "session", r.SessionID())

	if err := r.Run(ctx); err != nil {
		logger.Printf("Reader stopped: %v", err)
	}
	if err := r.Close(); err != nil {
		logger.Printf("Error stopping reader: %v", err)
	}
	return exitOK
}

func readerConfig(cfg config.Config, stdout, stderr io.Writer, logger *slog.Logger, level slog.Level) service.ReaderConfig {
	rc := service.DefaultReaderConfig()
	rc.Device = cfg.Device
	rc.Baud = cfg.Baud
	rc.LogFile = cfg.LogFile
	rc.LogHeader = cfg.LogHeader
	rc.PollInterval = cfg.PollInterval
	rc.CaptureFile = cfg.CaptureFile
	rc.StateFile = cfg.StateFile
	rc.Clock = clock.New(clock.WithLocation(cfg.Timezone))
	rc.Out = stdout
	rc.Err = stderr
	rc.Logger = logger

	// Trace every capture event to the diagnostic log at debug level.
	if level <= slog.LevelDebug {
		rc.Capture = log.NewSlogAdapter(logger)
	}
	return rc
}
