// Command statefs-log is a tool for viewing and analyzing registry
// event log files.
//
// Log files are created by running statefs-shell with the -log flag.
//
// Usage:
//
//	statefs-log <command> [flags] <file.slog>
//
// Commands:
//
//	view     View log file in human-readable format
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	statefs-log view array0.slog
//
//	# View only dispatch events
//	statefs-log view --category dispatch array0.slog
//
//	# View only failed operations
//	statefs-log view --failed array0.slog
//
//	# Show statistics
//	statefs-log stats array0.slog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/statefs-project/statefs-go/cmd/statefs-log/commands"
)

const usage = `statefs-log - Registry Event Log Analyzer

Usage:
  statefs-log <command> [flags] <file.slog>

Commands:
  view     View log file in human-readable format
  stats    Show statistics about the log file

Use "statefs-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `statefs-log view - View log file in human-readable format

Usage:
  statefs-log view [flags] <file.slog>

Flags:
`)
		fs.PrintDefaults()
	}

	category := fs.String("category", "", "Filter by category (lifecycle, dispatch, error)")
	op := fs.String("op", "", "Filter by operation (create, destroy, release, publish, unpublish, read, write, init, exit)")
	node := fs.String("node", "", "Filter by node name")
	registryID := fs.String("registry-id", "", "Filter by registry instance ID")
	failed := fs.Bool("failed", false, "Show only failed operations")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	var filter commands.ViewFilter
	filter.RegistryID = *registryID
	filter.Node = *node
	filter.FailedOnly = *failed

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Category = &c
	}

	if *op != "" {
		o, err := commands.ParseOpFlag(*op)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Op = &o
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `statefs-log stats - Show statistics about the log file

Usage:
  statefs-log stats <file.slog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunStats(fs.Arg(0), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
