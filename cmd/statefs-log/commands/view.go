// Package commands implements the statefs-log subcommands.
package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/statefs-project/statefs-go/pkg/log"
)

// ViewFilter selects which events the view command prints.
type ViewFilter = log.Filter

// ParseCategoryFlag parses a category flag value.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch s {
	case "lifecycle":
		return log.CategoryLifecycle, nil
	case "dispatch":
		return log.CategoryDispatch, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q (want lifecycle, dispatch or error)", s)
	}
}

// ParseOpFlag parses an operation flag value.
func ParseOpFlag(s string) (log.Op, error) {
	ops := map[string]log.Op{
		"create":    log.OpCreate,
		"destroy":   log.OpDestroy,
		"release":   log.OpRelease,
		"publish":   log.OpPublish,
		"unpublish": log.OpUnpublish,
		"read":      log.OpRead,
		"write":     log.OpWrite,
		"init":      log.OpInit,
		"exit":      log.OpExit,
	}
	op, ok := ops[s]
	if !ok {
		return 0, fmt.Errorf("unknown operation %q", s)
	}
	return op, nil
}

// RunView prints matching events, one line per event.
func RunView(path string, filter ViewFilter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return err
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event %d: %w", count+1, err)
		}

		fmt.Fprintln(w, formatEvent(event))
		count++
	}

	fmt.Fprintf(w, "\n%d events\n", count)
	return nil
}

// formatEvent renders one event as a log line.
func formatEvent(event log.Event) string {
	line := fmt.Sprintf("%s [%s] %-9s",
		event.Timestamp.Format("15:04:05.000"),
		event.Category,
		event.Op,
	)

	switch {
	case event.Path != "":
		line += " " + event.Path
	case event.Node != "":
		line += " " + event.Node
	}

	if event.Duration != nil {
		line += fmt.Sprintf(" (%s)", event.Duration)
	}
	if event.Err != "" {
		line += " ERROR: " + event.Err
	}
	return line
}
