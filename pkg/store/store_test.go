package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestNewRejectsEmptyPath(t *testing.T) {
	_, err := New("  ")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestCreateWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	s, err := New(path)
	require.NoError(t, err)

	require.NoError(t, s.Create(DefaultHeader))
	assert.Equal(t, []string{DefaultHeader}, readLines(t, path))
}

func TestCreateTruncatesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte("old\nlines\nhere\n"), 0644))

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Create("Test run"))

	assert.Equal(t, []string{"Test run"}, readLines(t, path))
}

func TestCreateMakesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "reads.out")
	s, err := New(path)
	require.NoError(t, err)

	require.NoError(t, s.Create(DefaultHeader))
	assert.FileExists(t, path)
}

func TestAppendKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Create(DefaultHeader))

	const n = 50
	for i := 0; i < n; i++ {
		require.NoError(t, s.Append(fmt.Sprintf("%012d\tat 01/01/26 00:00:00\t%d\n", i, i)))
	}

	lines := readLines(t, path)
	require.Len(t, lines, n+1)
	assert.Equal(t, DefaultHeader, lines[0])
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("%012d\tat 01/01/26 00:00:00\t%d", i, i), lines[i+1])
	}
}

func TestAppendTerminatesLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	s, err := New(path)
	require.NoError(t, err)

	require.NoError(t, s.Append("no newline"))
	require.NoError(t, s.Append("with newline\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "no newline\nwith newline\n", string(data))
}

func TestAppendSeesExternalTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Create(DefaultHeader))
	require.NoError(t, s.Append("first"))

	// No handle is held, so a rotation by another tool is picked up.
	require.NoError(t, os.Remove(path))
	require.NoError(t, s.Append("second"))

	assert.Equal(t, []string{"second"}, readLines(t, path))
}

func TestAppendFailsInMissingDirectory(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "missing", DefaultPath))
	require.NoError(t, err)
	assert.Error(t, s.Append("line"))
}
