// Package config provides configuration management for the leapc CLI.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapc/internal/cli/output"
	"github.com/leapstack-labs/leapc/pkg/capability"
)

// Default configuration values.
const (
	DefaultStateFile = ".leapc/state.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel  = "warn"
	DefaultNamespace = capability.DefaultNamespace
	DefaultHistory   = 20
)

// HeaderConfig declares an extra header for the capability table.
// Headers are listed rather than keyed by name because header names
// contain the config key delimiter.
type HeaderConfig struct {
	Name      string   `koanf:"name"`
	Namespace string   `koanf:"namespace"`
	Functions []string `koanf:"functions"`
}

// Config holds all CLI configuration options.
type Config struct {
	Verbose         bool           `koanf:"verbose"`
	LogLevel        string         `koanf:"log_level"`
	OutputFormat    string         `koanf:"output"`
	StatePath       string         `koanf:"state_path"`
	Record          bool           `koanf:"record"`
	Namespace       string         `koanf:"namespace"`
	IncludeDefaults bool           `koanf:"include_defaults"`
	Headers         []HeaderConfig `koanf:"headers"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		LogLevel:        DefaultLogLevel,
		OutputFormat:    DefaultOutput,
		StatePath:       DefaultStateFile,
		Namespace:       DefaultNamespace,
		IncludeDefaults: true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Record && c.StatePath == "" {
		return fmt.Errorf("state_path is required when record is enabled")
	}
	for i, h := range c.Headers {
		if strings.TrimSpace(h.Name) == "" {
			return fmt.Errorf("headers[%d]: name is required", i)
		}
		if len(h.Functions) == 0 {
			return fmt.Errorf("headers[%d] (%s): at least one function is required", i, h.Name)
		}
	}
	return nil
}

// CapabilityTable builds the table includes resolve against: the built-in
// headers (unless include_defaults is off) overlaid with configured headers.
// A header listed twice keeps its last declaration.
func (c *Config) CapabilityTable() (*capability.Table, error) {
	b := capability.NewBuilder()
	if c.IncludeDefaults {
		b.From(capability.Default())
	}

	for _, h := range c.Headers {
		ns := h.Namespace
		if ns == "" {
			ns = c.Namespace
		}
		if ns == "" {
			ns = DefaultNamespace
		}
		b.Add(h.Name, ns, h.Functions...)
	}

	table, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("invalid headers configuration: %w", err)
	}
	return table, nil
}
