package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	adapter.Log(Event{
		Timestamp:  time.Now(),
		RegistryID: "c3a9e2f0-1234-5678-0000-000000000001",
		Category:   CategoryDispatch,
		Op:         OpRead,
		Path:       "info/num_devices",
		Node:       "info",
		Attribute:  "num_devices",
	})

	out := buf.String()
	for _, want := range []string{"registry_id=c3a9e2f0", "op=READ", "path=info/num_devices", "attribute=num_devices"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSlogAdapterErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	adapter.Log(Event{
		Timestamp: time.Now(),
		Category:  CategoryLifecycle,
		Op:        OpPublish,
		Node:      "health",
		Err:       "renderer rejected node",
	})

	out := buf.String()
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("expected WARN level for failed op:\n%s", out)
	}
	if !strings.Contains(out, "renderer rejected node") {
		t.Errorf("expected error text in output:\n%s", out)
	}
}
