package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/clivemjeffery/rfidr/pkg/log"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents      int
	EventsByLayer    map[log.Layer]int
	EventsByCategory map[log.Category]int
	Sessions         map[string]*SessionStats
	Tags             map[string]*TagStats
	Errors           int
	Truncated        bool
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single reader run.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Device    string
	Reads     int
	NoData    int
	Errors    int
}

// TagStats holds statistics for a single tag.
type TagStats struct {
	Reads     int
	BadFrames int
	FirstSeen time.Time
	LastSeen  time.Time
}

// Collect reads every event of the capture file into Stats.
func Collect(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:    make(map[log.Layer]int),
		EventsByCategory: make(map[log.Category]int),
		Sessions:         make(map[string]*SessionStats),
		Tags:             make(map[string]*TagStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}
	stats.Truncated = reader.Truncated()

	return stats, nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	session, ok := s.Sessions[event.SessionID]
	if !ok {
		session = &SessionStats{
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
		}
		s.Sessions[event.SessionID] = session
	}
	session.Events++
	if event.Timestamp.Before(session.FirstSeen) {
		session.FirstSeen = event.Timestamp
	}
	if event.Timestamp.After(session.LastSeen) {
		session.LastSeen = event.Timestamp
	}
	if event.Device != "" && session.Device == "" {
		session.Device = event.Device
	}

	switch event.Category {
	case log.CategoryNoData:
		session.NoData++
	case log.CategoryError:
		session.Errors++
		s.Errors++
	}

	if event.Read == nil {
		return
	}
	session.Reads++

	tag, ok := s.Tags[event.Read.Tag]
	if !ok {
		tag = &TagStats{
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
		}
		s.Tags[event.Read.Tag] = tag
	}
	tag.Reads++
	if event.Read.BadDelimiters {
		tag.BadFrames++
	}
	if event.Timestamp.Before(tag.FirstSeen) {
		tag.FirstSeen = event.Timestamp
	}
	if event.Timestamp.After(tag.LastSeen) {
		tag.LastSeen = event.Timestamp
	}
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== RFID Reader Capture Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	if stats.Truncated {
		fmt.Fprintln(w, "Warning: capture ends part way through a record")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerReader, log.LayerService} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryFrame, log.CategoryRead, log.CategoryNoData, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Second)
			fmt.Fprintf(w, "  [%s] %d events, %d reads, duration %s\n",
				shortenSessionID(s.id), s.stats.Events, s.stats.Reads, duration)
			if s.stats.Device != "" {
				fmt.Fprintf(w, "             Device: %s\n", s.stats.Device)
			}
			if s.stats.NoData > 0 || s.stats.Errors > 0 {
				fmt.Fprintf(w, "             No data: %d, errors: %d\n", s.stats.NoData, s.stats.Errors)
			}
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Tags: %d\n", len(stats.Tags))
	if len(stats.Tags) > 0 {
		tags := make([]string, 0, len(stats.Tags))
		for tag := range stats.Tags {
			tags = append(tags, tag)
		}
		// Most read first
		sort.Slice(tags, func(i, j int) bool {
			a, b := stats.Tags[tags[i]], stats.Tags[tags[j]]
			if a.Reads != b.Reads {
				return a.Reads > b.Reads
			}
			return tags[i] < tags[j]
		})

		fmt.Fprintln(w)
		for _, tag := range tags {
			ts := stats.Tags[tag]
			fmt.Fprintf(w, "  %s  %d reads  first %s  last %s\n",
				tag, ts.Reads,
				ts.FirstSeen.Format(time.RFC3339),
				ts.LastSeen.Format(time.RFC3339))
			if ts.BadFrames > 0 {
				fmt.Fprintf(w, "                bad delimiters: %d\n", ts.BadFrames)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
