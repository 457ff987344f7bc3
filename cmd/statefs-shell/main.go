// Command statefs-shell runs an interactive registry session over a
// simulated storage array.
//
// Usage:
//
//	statefs-shell [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-log string        Event log file path (CBOR, readable with statefs-log)
//	-log-level string  Console log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Start with the built-in root set
//	statefs-shell
//
//	# Start from a configuration file, recording events
//	statefs-shell -config array0.yaml -log array0.slog
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/statefs-project/statefs-go/cmd/statefs-shell/interactive"
	"github.com/statefs-project/statefs-go/pkg/config"
	"github.com/statefs-project/statefs-go/pkg/dispatch"
	"github.com/statefs-project/statefs-go/pkg/log"
	"github.com/statefs-project/statefs-go/pkg/registry"
	"github.com/statefs-project/statefs-go/pkg/render"
	"github.com/statefs-project/statefs-go/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path (YAML)")
	logPath := flag.String("log", "", "Event log file path")
	logLevel := flag.String("log-level", "info", "Console log level: debug, info, warn, error")
	flag.Parse()

	if err := run(*configPath, *logPath, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logPath, logLevel string) error {
	cfg := defaultConfig()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if logPath != "" {
		cfg.Log.File = logPath
	}

	logger, closeLog, err := buildLogger(cfg.Log, logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	renderer := render.NewMemoryRenderer()
	reg := registry.New(cfg.Registry.Name, renderer, logger)
	manager := storage.NewManager(reg)

	specs := make([]storage.RootSpec, 0, len(cfg.Roots))
	for _, root := range cfg.Roots {
		specs = append(specs, storage.RootSpec{Name: root.Name, Type: root.Type})
	}
	if err := manager.InitializeRoots(specs); err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	defer manager.Exit()

	for _, dev := range cfg.Devices {
		if _, err := manager.AddDevice(dev.Label, dev.Capacity); err != nil {
			return fmt.Errorf("preload device %q: %w", dev.Label, err)
		}
	}

	dispatcher := dispatch.New(renderer, logger)
	dispatcher.SetRegistryID(reg.ID())

	shell, err := interactive.New(reg, renderer, dispatcher, manager)
	if err != nil {
		return err
	}
	shell.Run()
	return nil
}

// defaultConfig is used when no configuration file is given.
func defaultConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Registry.Name = "statefs"
	cfg.Log.Console = true
	for _, spec := range storage.DefaultRoots() {
		cfg.Roots = append(cfg.Roots, config.RootConfig{Name: spec.Name, Type: spec.Type})
	}
	return cfg
}

// buildLogger assembles the configured event log sinks.
func buildLogger(cfg config.LogConfig, level string) (log.Logger, func(), error) {
	var sinks []log.Logger
	closeLog := func() {}

	if cfg.Console {
		slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLevel(level),
		}))
		sinks = append(sinks, log.NewSlogAdapter(slogger))
	}

	if cfg.File != "" {
		fileLogger, err := log.NewFileLogger(cfg.File)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open event log: %w", err)
		}
		sinks = append(sinks, fileLogger)
		closeLog = func() { _ = fileLogger.Close() }
	}

	switch len(sinks) {
	case 0:
		return log.NoopLogger{}, closeLog, nil
	case 1:
		return sinks[0], closeLog, nil
	default:
		return log.NewMultiLogger(sinks...), closeLog, nil
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
