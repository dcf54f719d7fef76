package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// RunState summarises one reader run.
type RunState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// SessionID identifies the run; it matches capture events.
	SessionID string `json:"session_id"`

	// Device is the serial device path.
	Device string `json:"device,omitempty"`

	// StartedAt is the clock start instant.
	StartedAt time.Time `json:"started_at"`

	// Reads is the number of tags logged.
	Reads uint64 `json:"reads"`

	// NoData is the number of empty reads.
	NoData uint64 `json:"no_data"`

	// Errors is the number of failed reads.
	Errors uint64 `json:"errors"`

	// LastTag is the most recent tag read.
	LastTag string `json:"last_tag,omitempty"`

	// LastReadAt is when LastTag was read.
	LastReadAt time.Time `json:"last_read_at,omitempty"`

	// LastError is the most recent read error message.
	LastError string `json:"last_error,omitempty"`

	// TagCounts maps each tag to how often it was read.
	TagCounts map[string]uint64 `json:"tag_counts,omitempty"`
}

// NewRunState creates the state for a run starting at startedAt.
func NewRunState(sessionID, device string, startedAt time.Time) *RunState {
	return &RunState{
		SessionID: sessionID,
		Device:    device,
		StartedAt: startedAt,
		TagCounts: make(map[string]uint64),
	}
}

// RecordRead counts a logged tag.
func (s *RunState) RecordRead(tag string, at time.Time) {
	s.Reads++
	s.LastTag = tag
	s.LastReadAt = at
	if s.TagCounts == nil {
		s.TagCounts = make(map[string]uint64)
	}
	s.TagCounts[tag]++
}

// RecordNoData counts an empty read.
func (s *RunState) RecordNoData() {
	s.NoData++
}

// RecordError counts a failed read.
func (s *RunState) RecordError(err error) {
	s.Errors++
	if err != nil {
		s.LastError = err.Error()
	}
}

// RunStateStore manages persistence of run state to a JSON file.
type RunStateStore struct {
	mu   sync.Mutex
	path string
}

// NewRunStateStore creates a new run state store.
func NewRunStateStore(path string) *RunStateStore {
	return &RunStateStore{path: path}
}

// Path returns the state file path.
func (s *RunStateStore) Path() string {
	return s.path
}

// Save persists the run state to disk. The file is replaced atomically.
func (s *RunStateStore) Save(state *RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	state.SavedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the run state from disk.
// Returns nil, nil if the file doesn't exist.
func (s *RunStateStore) Load() (*RunState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &RunState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	return state, nil
}
