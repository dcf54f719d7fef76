package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/clivemjeffery/rfidr/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rlog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readEvent(ts time.Time, session, tag string, elapsed int64) log.Event {
	return log.Event{
		Timestamp: ts,
		SessionID: session,
		Layer:     log.LayerReader,
		Category:  log.CategoryRead,
		Device:    "/dev/ttyAMA0",
		Read: &log.ReadEvent{
			Tag:     tag,
			Text:    ts.Format("02/01/06 15:04:05"),
			Elapsed: elapsed,
		},
	}
}
