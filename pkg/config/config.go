// Package config loads the registry bootstrap configuration from
// YAML: the registry name, event log settings, the ordered root
// declarations and any devices to register at startup.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full bootstrap configuration.
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
	Log      LogConfig      `yaml:"log"`
	Roots    []RootConfig   `yaml:"roots"`
	Devices  []DeviceConfig `yaml:"devices"`
}

// RegistryConfig names the registry instance.
type RegistryConfig struct {
	Name string `yaml:"name"`
}

// LogConfig selects the event log sinks. An empty File disables the
// binary log; Console controls the human-readable slog output.
type LogConfig struct {
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// RootConfig declares one root node. Type names a registered node
// type; declaration order is bootstrap order.
type RootConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// DeviceConfig declares a device to register after bootstrap.
type DeviceConfig struct {
	Label    string `yaml:"label"`
	Capacity uint64 `yaml:"capacity"`
}

// LoadError describes a configuration load failure.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

// Error returns the error message.
func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = fmt.Sprintf("%s: %s", e.File, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Parse parses a configuration from YAML bytes. Unknown fields are
// rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Registry.Name == "" {
		c.Registry.Name = "statefs"
	}

	if len(c.Roots) == 0 {
		return &LoadError{Message: "at least one root is required"}
	}

	seen := make(map[string]struct{}, len(c.Roots))
	for i, root := range c.Roots {
		if root.Name == "" {
			return &LoadError{Message: fmt.Sprintf("root %d: name is required", i)}
		}
		if root.Type == "" {
			return &LoadError{Message: fmt.Sprintf("root %q: type is required", root.Name)}
		}
		if _, dup := seen[root.Name]; dup {
			return &LoadError{Message: fmt.Sprintf("root %q: duplicate name", root.Name)}
		}
		seen[root.Name] = struct{}{}
	}

	for i, dev := range c.Devices {
		if dev.Label == "" {
			return &LoadError{Message: fmt.Sprintf("device %d: label is required", i)}
		}
	}
	return nil
}
