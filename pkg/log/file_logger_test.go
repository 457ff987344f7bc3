package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func writeEvents(t *testing.T, path string, events []Event) {
	t.Helper()

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	dur := 25 * time.Millisecond
	events := []Event{
		{
			Timestamp:  time.Now().UTC(),
			RegistryID: "c3a9e2f0-0000-0000-0000-000000000001",
			Category:   CategoryLifecycle,
			Op:         OpCreate,
			Node:       "devices",
		},
		{
			Timestamp:  time.Now().UTC(),
			RegistryID: "c3a9e2f0-0000-0000-0000-000000000001",
			Category:   CategoryDispatch,
			Op:         OpRead,
			Path:       "devices/sda/label",
			Node:       "sda",
			Attribute:  "label",
			Duration:   &dur,
		},
		{
			Timestamp:  time.Now().UTC(),
			RegistryID: "c3a9e2f0-0000-0000-0000-000000000001",
			Category:   CategoryDispatch,
			Op:         OpWrite,
			Path:       "devices/sda/label",
			Err:        "attribute is not writable",
		},
	}
	writeEvents(t, path, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var got []Event
	for {
		e, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		got = append(got, e)
	}

	if len(got) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(got))
	}
	if got[0].Op != OpCreate || got[0].Node != "devices" {
		t.Errorf("first event mismatch: %+v", got[0])
	}
	if got[1].Duration == nil || *got[1].Duration != dur {
		t.Errorf("expected duration %v, got %v", dur, got[1].Duration)
	}
	if got[2].OK() {
		t.Error("expected third event to record an error")
	}
}

func TestFileLoggerAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	writeEvents(t, path, []Event{{Timestamp: time.Now(), Op: OpCreate}})
	writeEvents(t, path, []Event{{Timestamp: time.Now(), Op: OpDestroy}})

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		if _, err := reader.Next(); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 events after append, got %d", count)
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// Logging after close must not panic.
	logger.Log(Event{Timestamp: time.Now()})
}

func TestReaderFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	writeEvents(t, path, []Event{
		{Timestamp: time.Now(), Category: CategoryLifecycle, Op: OpCreate, Node: "devices"},
		{Timestamp: time.Now(), Category: CategoryDispatch, Op: OpRead, Node: "sda"},
		{Timestamp: time.Now(), Category: CategoryDispatch, Op: OpWrite, Node: "sda", Err: "boom"},
	})

	t.Run("ByCategory", func(t *testing.T) {
		cat := CategoryDispatch
		reader, err := NewFilteredReader(path, Filter{Category: &cat})
		if err != nil {
			t.Fatalf("NewFilteredReader failed: %v", err)
		}
		defer reader.Close()

		count := 0
		for {
			if _, err := reader.Next(); err == io.EOF {
				break
			} else if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			count++
		}
		if count != 2 {
			t.Errorf("expected 2 dispatch events, got %d", count)
		}
	})

	t.Run("FailedOnly", func(t *testing.T) {
		reader, err := NewFilteredReader(path, Filter{FailedOnly: true})
		if err != nil {
			t.Fatalf("NewFilteredReader failed: %v", err)
		}
		defer reader.Close()

		e, err := reader.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if e.Op != OpWrite || e.Err != "boom" {
			t.Errorf("unexpected event: %+v", e)
		}
		if _, err := reader.Next(); err != io.EOF {
			t.Errorf("expected EOF, got %v", err)
		}
	})
}
