package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes registry events to an slog.Logger.
// Useful for development when you want to see registry events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Failed operations are logged
// at Warn level, everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("registry_id", shortenID(event.RegistryID)),
		slog.String("category", event.Category.String()),
		slog.String("op", event.Op.String()),
	}

	if event.Path != "" {
		attrs = append(attrs, slog.String("path", event.Path))
	}
	if event.Node != "" {
		attrs = append(attrs, slog.String("node", event.Node))
	}
	if event.Attribute != "" {
		attrs = append(attrs, slog.String("attribute", event.Attribute))
	}
	if event.Duration != nil {
		attrs = append(attrs, slog.Duration("duration", *event.Duration))
	}

	level := slog.LevelDebug
	if event.Err != "" {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", event.Err))
	}

	a.logger.LogAttrs(context.Background(), level, "registry", attrs...)
}

// shortenID returns the first 8 characters of a UUID for display.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
