// Package store is the plain text read log.
//
// Every Append opens the file in append mode, writes one line and closes it
// again. No handle is held between reads, so a process killed between reads
// leaves a complete file and one killed mid-read loses at most that line.
// This costs an open and close per read, which is negligible at the rate
// tags can be presented.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Defaults for the read log.
const (
	// DefaultPath is the read log file name.
	DefaultPath = "test.out"

	// DefaultHeader is the first line written to a fresh read log.
	DefaultHeader = "Test run"
)

// ErrEmptyPath indicates a Store without a path.
var ErrEmptyPath = errors.New("store: empty path")

// Store is an append-only text file at a fixed path. It has a single
// writer and takes no locks.
type Store struct {
	path string
}

// New creates a Store for path. The file is not touched until Create or
// Append.
func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	return &Store{path: path}, nil
}

// Path returns the file path.
func (s *Store) Path() string {
	return s.path
}

// Create truncates or creates the file and writes header as its first line.
func (s *Store) Create(header string) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("store: create %s: %w", s.path, err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("store: create %s: %w", s.path, err)
	}
	if _, err := f.WriteString(terminate(header)); err != nil {
		f.Close()
		return fmt.Errorf("store: write header: %w", err)
	}
	return f.Close()
}

// Append writes line to the end of the file, adding a newline if missing.
func (s *Store) Append(line string) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("store: open %s: %w", s.path, err)
	}
	if _, err := f.WriteString(terminate(line)); err != nil {
		f.Close()
		return fmt.Errorf("store: append: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", s.path, err)
	}
	return nil
}

func terminate(line string) string {
	if strings.HasSuffix(line, "\n") {
		return line
	}
	return line + "\n"
}
