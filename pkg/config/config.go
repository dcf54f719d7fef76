// Package config loads the reader configuration from YAML.
//
// A missing file is not an error: Load("") returns Default(). Durations use
// Go syntax ("250us", "100ms"). The serial device and baud rate are fixed
// for the RDM630 and cannot be set from the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/clivemjeffery/rfidr/pkg/store"
	"github.com/clivemjeffery/rfidr/pkg/transport"
)

// Config is the reader configuration.
type Config struct {
	// Device is the serial device path. Fixed.
	Device string `yaml:"-"`

	// Baud is the serial line speed. Fixed.
	Baud int `yaml:"-"`

	// LogFile is the text read log, truncated at startup.
	LogFile string `yaml:"log_file"`

	// LogHeader is the first line of the read log.
	LogHeader string `yaml:"log_header"`

	// PollInterval is the wait between availability polls.
	PollInterval time.Duration `yaml:"poll_interval"`

	// ReadTimeout bounds each driver read so the pump can notice Close.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// CaptureFile, if set, receives CBOR capture events.
	CaptureFile string `yaml:"capture_file,omitempty"`

	// StateFile, if set, receives the JSON run summary.
	StateFile string `yaml:"state_file,omitempty"`

	// LogLevel is the diagnostic level: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Timezone is the IANA zone for display timestamps. Empty means local.
	// The zone database is embedded, so names resolve without system tzdata.
	Timezone string `yaml:"timezone,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Device:       transport.DefaultDevice,
		Baud:         transport.DefaultBaud,
		LogFile:      store.DefaultPath,
		LogHeader:    store.DefaultHeader,
		PollInterval: transport.DefaultPollInterval,
		ReadTimeout:  transport.DefaultReadTimeout,
		LogLevel:     "info",
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	// Not settable from YAML; restore in case of a zeroing document.
	cfg.Device = transport.DefaultDevice
	cfg.Baud = transport.DefaultBaud

	if err := cfg.Validate(); err != nil {
		return Config{}, &LoadError{
			Message: "invalid configuration",
			Cause:   err,
		}
	}
	return cfg, nil
}

// Load reads and parses the file at path. An empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return Config{}, le
		}
		return Config{}, &LoadError{File: path, Message: err.Error()}
	}
	return cfg, nil
}

// Validation errors.
var (
	ErrEmptyLogFile    = errors.New("log_file is required")
	ErrPollInterval    = errors.New("poll_interval must be positive")
	ErrReadTimeout     = errors.New("read_timeout must be positive")
	ErrUnknownLogLevel = errors.New("unknown log_level")
	ErrTimezone        = errors.New("unknown timezone")
)

// Validate checks the configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.LogFile) == "" {
		return ErrEmptyLogFile
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: %s", ErrPollInterval, c.PollInterval)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("%w: %s", ErrReadTimeout, c.ReadTimeout)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("%w: %q", ErrTimezone, c.Timezone)
		}
	}
	return nil
}

// SlogLevel returns the slog level for LogLevel, or info if it is invalid.
func (c Config) SlogLevel() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLogLevel, name)
	}
}

// LoadError provides details about a configuration loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File == "" {
		return msg
	}
	return e.File + ": " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
