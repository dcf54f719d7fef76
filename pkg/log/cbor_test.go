package log

import (
	"bytes"
	"testing"
	"time"
)

func TestEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456789, time.UTC)
	original := Event{
		Timestamp: ts,
		SessionID: "abc12345-def6-7890-abcd-ef1234567890",
		Layer:     LayerReader,
		Category:  CategoryRead,
		Device:    "/dev/ttyAMA0",
		Read: &ReadEvent{
			Tag:           "0A00B1C2D3E4",
			Text:          "28/01/26 10:15:32",
			Elapsed:       42,
			BadDelimiters: true,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.SessionID != original.SessionID {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, original.SessionID)
	}
	if decoded.Layer != original.Layer || decoded.Category != original.Category {
		t.Errorf("Layer/Category: got %v/%v, want %v/%v",
			decoded.Layer, decoded.Category, original.Layer, original.Category)
	}
	if decoded.Device != original.Device {
		t.Errorf("Device: got %q, want %q", decoded.Device, original.Device)
	}
	if decoded.Read == nil {
		t.Fatal("Read is nil")
	}
	if *decoded.Read != *original.Read {
		t.Errorf("Read: got %+v, want %+v", *decoded.Read, *original.Read)
	}
}

func TestEventCBOROmitsEmptyPayloads(t *testing.T) {
	data, err := EncodeEvent(Event{Timestamp: time.Now(), Category: CategoryNoData, Layer: LayerReader})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if decoded.Frame != nil || decoded.Read != nil || decoded.StateChange != nil || decoded.Error != nil {
		t.Errorf("expected no payload, got %+v", decoded)
	}
	if decoded.Label() != "NoData" {
		t.Errorf("Label: got %q, want %q", decoded.Label(), "NoData")
	}
}

func TestEncoderStreamsMultipleEvents(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for i := 0; i < 3; i++ {
		if err := enc.Encode(Event{Frame: &FrameEvent{Size: i}}); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
	}

	dec := NewDecoder(&buf)
	for i := 0; i < 3; i++ {
		var e Event
		if err := dec.Decode(&e); err != nil {
			t.Fatalf("Decode %d failed: %v", i, err)
		}
		if e.Frame == nil || e.Frame.Size != i {
			t.Errorf("event %d: got %+v", i, e.Frame)
		}
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0x00}); err == nil {
		t.Error("expected error decoding garbage")
	}
}

func TestEnumStrings(t *testing.T) {
	if LayerTransport.String() != "TRANSPORT" || LayerReader.String() != "READER" || LayerService.String() != "SERVICE" {
		t.Error("unexpected layer names")
	}
	if Layer(99).String() != "UNKNOWN" {
		t.Error("unknown layer should be UNKNOWN")
	}
	want := map[Category]string{
		CategoryFrame:  "FRAME",
		CategoryRead:   "READ",
		CategoryNoData: "NODATA",
		CategoryState:  "STATE",
		CategoryError:  "ERROR",
		Category(99):   "UNKNOWN",
	}
	for c, name := range want {
		if c.String() != name {
			t.Errorf("Category(%d).String() = %q, want %q", c, c.String(), name)
		}
	}
}
