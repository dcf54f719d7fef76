package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rfidr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "/dev/ttyAMA0", cfg.Device)
	assert.Equal(t, 9600, cfg.Baud)
	assert.Equal(t, "test.out", cfg.LogFile)
	assert.Equal(t, "Test run", cfg.LogHeader)
	assert.Equal(t, 250*time.Microsecond, cfg.PollInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.ReadTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.CaptureFile)
	assert.Empty(t, cfg.StateFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesFields(t *testing.T) {
	path := writeConfig(t, `
log_file: /var/log/rfidr/reads.out
log_header: Gate 3
poll_interval: 1ms
read_timeout: 50ms
capture_file: reads.rlog
state_file: state.json
log_level: debug
timezone: Europe/London
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/log/rfidr/reads.out", cfg.LogFile)
	assert.Equal(t, "Gate 3", cfg.LogHeader)
	assert.Equal(t, time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 50*time.Millisecond, cfg.ReadTimeout)
	assert.Equal(t, "reads.rlog", cfg.CaptureFile)
	assert.Equal(t, "state.json", cfg.StateFile)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "Europe/London", cfg.Timezone)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log_header: Another run\n"))
	require.NoError(t, err)
	assert.Equal(t, "Another run", cfg.LogHeader)
	assert.Equal(t, "test.out", cfg.LogFile)
	assert.Equal(t, 250*time.Microsecond, cfg.PollInterval)
}

func TestDeviceAndBaudNotSettable(t *testing.T) {
	cfg, err := Parse([]byte("device: /dev/ttyUSB0\nbaud: 115200\n"))
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyAMA0", cfg.Device)
	assert.Equal(t, 9600, cfg.Baud)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	_, err := Load(path)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, path, le.File)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "poll_interval: [1, 2\n")
	_, err := Load(path)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, path, le.File)
	assert.Equal(t, "failed to parse YAML", le.Message)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"zero poll", "poll_interval: 0s\n", ErrPollInterval},
		{"negative timeout", "read_timeout: -1s\n", ErrReadTimeout},
		{"blank log file", "log_file: \"  \"\n", ErrEmptyLogFile},
		{"unknown level", "log_level: chatty\n", ErrUnknownLogLevel},
		{"unknown timezone", "timezone: Mars/Olympus\n", ErrTimezone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, tt.want)

			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Contains(t, le.Error(), "invalid configuration")
		})
	}
}

func TestValidTimezones(t *testing.T) {
	for _, tz := range []string{"", "UTC", "Local", "Europe/London", "Australia/Sydney"} {
		cfg := Default()
		cfg.Timezone = tz
		assert.NoError(t, cfg.Validate(), tz)
	}
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("trace")
	assert.ErrorIs(t, err, ErrUnknownLogLevel)
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: "trace"}.SlogLevel())
}

func TestLoadErrorFormat(t *testing.T) {
	le := &LoadError{File: "a.yaml", Message: "failed", Cause: errors.New("boom")}
	assert.Equal(t, "a.yaml: failed: boom", le.Error())
	assert.Equal(t, "failed", (&LoadError{Message: "failed"}).Error())
}
