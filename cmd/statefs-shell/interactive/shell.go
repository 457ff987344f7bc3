// Package interactive provides the interactive command-line interface
// for statefs-shell.
package interactive

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/statefs-project/statefs-go/pkg/dispatch"
	"github.com/statefs-project/statefs-go/pkg/inspect"
	"github.com/statefs-project/statefs-go/pkg/persistence"
	"github.com/statefs-project/statefs-go/pkg/registry"
	"github.com/statefs-project/statefs-go/pkg/render"
	"github.com/statefs-project/statefs-go/pkg/storage"
)

// Shell handles interactive mode for statefs-shell.
type Shell struct {
	reg        *registry.Registry
	renderer   *render.MemoryRenderer
	dispatcher *dispatch.Dispatcher
	manager    *storage.Manager
	inspector  *inspect.Inspector
	formatter  *inspect.Formatter
	rl         *readline.Instance
}

// New creates a new interactive shell.
func New(reg *registry.Registry, renderer *render.MemoryRenderer, dispatcher *dispatch.Dispatcher, manager *storage.Manager) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "statefs> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Shell{
		reg:        reg,
		renderer:   renderer,
		dispatcher: dispatcher,
		manager:    manager,
		inspector:  inspect.NewInspector(reg),
		formatter:  inspect.NewFormatter(),
		rl:         rl,
	}, nil
}

// Run starts the interactive command loop and blocks until exit.
func (s *Shell) Run() {
	defer s.rl.Close()

	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "tree", "t":
			s.cmdTree()

		case "ls", "list":
			s.cmdList(args)

		case "read", "r":
			s.cmdRead(args)

		case "write", "w":
			s.cmdWrite(args)

		case "add-device", "add":
			s.cmdAddDevice(args)

		case "rm-device", "rm":
			s.cmdRemoveDevice(args)

		case "status":
			s.cmdStatus()

		case "save":
			s.cmdSave(args)

		case "load":
			s.cmdLoad(args)

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
StateFS Commands:
  Inspection:
    tree               - Show the full registry tree
    ls [path]          - List entries under a path (roots if omitted)
    read <path>        - Read an attribute value
    write <path> <val> - Write an attribute value

  Devices:
    add-device <label> <capacity> - Register a device
    rm-device <label>             - Remove a device
    status                        - Show array status
    save <file>                   - Save array state to a JSON file
    load <file>                   - Restore array state from a JSON file

  General:
    help               - Show this help
    quit               - Exit

  Path Format:
    node/attribute or node/child/attribute
    e.g. info/num_devices, devices/sda/label`)
}

func (s *Shell) cmdTree() {
	fmt.Fprint(s.rl.Stdout(), s.formatter.FormatTree(s.inspector.InspectTree()))
}

func (s *Shell) cmdList(args []string) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	entries, err := s.renderer.List(path)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	for _, entry := range entries {
		fmt.Fprintln(s.rl.Stdout(), entry)
	}
}

func (s *Shell) cmdRead(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: read <path>")
		return
	}

	data, err := s.dispatcher.OnRead(context.Background(), args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%s = %q\n", args[0], string(data))
}

func (s *Shell) cmdWrite(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: write <path> <value>")
		return
	}

	if err := s.dispatcher.OnWrite(context.Background(), args[0], []byte(args[1])); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "OK")
}

func (s *Shell) cmdAddDevice(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: add-device <label> <capacity>")
		return
	}

	capacity, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid capacity: %v\n", err)
		return
	}

	record, err := s.manager.AddDevice(args[0], capacity)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Added %s (uid %s)\n", record.Label, record.UID)
}

func (s *Shell) cmdRemoveDevice(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: rm-device <label>")
		return
	}

	if err := s.manager.RemoveDevice(args[0]); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "Removed")
}

func (s *Shell) cmdSave(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: save <file>")
		return
	}

	store := persistence.NewStateStore(args[0])
	if err := store.Save(s.manager.Snapshot()); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Saved to %s\n", args[0])
}

func (s *Shell) cmdLoad(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: load <file>")
		return
	}

	store := persistence.NewStateStore(args[0])
	state, err := store.Load()
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	if state == nil {
		fmt.Fprintf(s.rl.Stdout(), "No state at %s\n", args[0])
		return
	}
	if err := s.manager.Restore(state); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Restored %d devices\n", len(state.Devices))
}

func (s *Shell) cmdStatus() {
	state := "ok"
	if s.manager.Degraded() {
		state = "degraded"
	}
	fmt.Fprintf(s.rl.Stdout(), "registry: %s\ndevices:  %d\nhealth:   %s\n",
		s.reg.Name(), s.manager.DeviceCount(), state)
}
