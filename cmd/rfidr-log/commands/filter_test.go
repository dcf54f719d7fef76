package commands

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/clivemjeffery/rfidr/pkg/log"
)

func readFiltered(t *testing.T, path string) []log.Event {
	t.Helper()
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	var events []log.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		events = append(events, event)
	}
	return events
}

func TestFilterBySessionID(t *testing.T) {
	ts := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	events := []log.Event{
		readEvent(ts, "run-1", "AAAAAAAAAAAA", 0),
		readEvent(ts, "run-2", "AAAAAAAAAAAA", 0),
		readEvent(ts, "run-1", "BBBBBBBBBBBB", 0),
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.rlog")

	var summary bytes.Buffer
	err := RunFilter(path, FilterOptions{Output: outPath, SessionID: "run-1"}, &summary)
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readFiltered(t, outPath)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	for _, e := range got {
		if e.SessionID != "run-1" {
			t.Errorf("expected run-1, got %s", e.SessionID)
		}
	}
	if !strings.Contains(summary.String(), "Filtered 2 events") {
		t.Errorf("unexpected summary: %s", summary.String())
	}
}

func TestFilterByTagAndTimeRange(t *testing.T) {
	base := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	events := []log.Event{
		readEvent(base, "s", "AAAAAAAAAAAA", 0),
		readEvent(base.Add(10*time.Second), "s", "AAAAAAAAAAAA", 10),
		readEvent(base.Add(20*time.Second), "s", "BBBBBBBBBBBB", 20),
		readEvent(base.Add(30*time.Second), "s", "AAAAAAAAAAAA", 30),
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.rlog")

	err := RunFilter(path, FilterOptions{
		Output:    outPath,
		Tag:       "AAAAAAAAAAAA",
		TimeStart: base.Add(5 * time.Second).Format(time.RFC3339),
		TimeEnd:   base.Add(35 * time.Second).Format(time.RFC3339),
	}, io.Discard)
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readFiltered(t, outPath)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Read.Elapsed != 10 || got[1].Read.Elapsed != 30 {
		t.Errorf("unexpected events: %+v, %+v", got[0].Read, got[1].Read)
	}
}

func TestFilterByLayerAndCategory(t *testing.T) {
	ts := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Layer: log.LayerTransport, Category: log.CategoryFrame, Frame: &log.FrameEvent{Size: 14}},
		readEvent(ts, "s", "AAAAAAAAAAAA", 0),
		{Timestamp: ts, Layer: log.LayerReader, Category: log.CategoryNoData},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.rlog")

	err := RunFilter(path, FilterOptions{Output: outPath, Layer: "reader", Category: "nodata"}, io.Discard)
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readFiltered(t, outPath)
	if len(got) != 1 || got[0].Category != log.CategoryNoData {
		t.Errorf("expected one no-data event, got %+v", got)
	}
}

func TestFilterInvalidOptions(t *testing.T) {
	path := createTestLogFile(t, nil)
	outPath := filepath.Join(t.TempDir(), "filtered.rlog")

	for name, opts := range map[string]FilterOptions{
		"time-start": {Output: outPath, TimeStart: "yesterday"},
		"time-end":   {Output: outPath, TimeEnd: "tomorrow"},
		"layer":      {Output: outPath, Layer: "wire"},
		"category":   {Output: outPath, Category: "message"},
	} {
		if err := RunFilter(path, opts, io.Discard); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
