package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/statefs-project/statefs-go/pkg/log"
)

// RunStats prints summary statistics for a log file.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	var (
		total      int
		failed     int
		byOp       = make(map[string]int)
		byCategory = make(map[string]int)
		first      time.Time
		last       time.Time
	)

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event %d: %w", total+1, err)
		}

		total++
		if !event.OK() {
			failed++
		}
		byOp[event.Op.String()]++
		byCategory[event.Category.String()]++

		if first.IsZero() || event.Timestamp.Before(first) {
			first = event.Timestamp
		}
		if event.Timestamp.After(last) {
			last = event.Timestamp
		}
	}

	fmt.Fprintf(w, "Events:   %d\n", total)
	fmt.Fprintf(w, "Failed:   %d\n", failed)
	if total > 0 {
		fmt.Fprintf(w, "Span:     %s\n", last.Sub(first).Round(time.Millisecond))
	}

	fmt.Fprintln(w, "\nBy category:")
	for _, name := range sortedKeys(byCategory) {
		fmt.Fprintf(w, "  %-10s %d\n", name, byCategory[name])
	}

	fmt.Fprintln(w, "\nBy operation:")
	for _, name := range sortedKeys(byOp) {
		fmt.Fprintf(w, "  %-10s %d\n", name, byOp[name])
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
