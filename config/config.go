// Package config loads the YAML settings shared by the REPL, the CLI and
// the HTTP server.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

const DefaultPrompt = "apl> "

type Config struct {
	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`

	Prompt  string  `yaml:"prompt"`
	Color   string  `yaml:"color"`
	Verbose bool    `yaml:"verbose"`
	History History `yaml:"history"`
	Server  Server  `yaml:"server"`
}

type History struct {
	// empty disables history
	Path  string `yaml:"path"`
	Limit int    `yaml:"limit"`
}

type Server struct {
	Addr          string        `yaml:"addr"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

func Default() *Config {
	return &Config{
		Prompt: DefaultPrompt,
		Color:  ColorAuto,
		History: History{
			Limit: 20,
		},
		Server: Server{
			Addr:          ":8080",
			SessionTTL:    30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load reads the YAML file at path on top of the defaults. An empty path,
// a missing file or an empty file all yield the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	cfg, err = Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}
	cfg.Path = absPath

	return cfg, nil
}

// Decode reads YAML from r on top of the defaults and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}
	c.History.Path = strings.TrimSpace(c.History.Path)
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
}

func (c *Config) validate() error {
	var errs ValidationError

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs.Issues = append(errs.Issues, fmt.Sprintf("color must be one of auto, always, never (got %q)", c.Color))
	}
	if c.History.Limit < 1 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("history.limit must be positive (got %d)", c.History.Limit))
	}
	if c.Server.Addr == "" {
		errs.Issues = append(errs.Issues, "server.addr must be provided")
	}
	if c.Server.SessionTTL <= 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("server.session_ttl must be positive (got %s)", c.Server.SessionTTL))
	}
	if c.Server.SweepInterval <= 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("server.sweep_interval must be positive (got %s)", c.Server.SweepInterval))
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// UseColor resolves the color mode against whether output is a terminal.
func (c *Config) UseColor(terminal bool) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return terminal
	}
}

// DefaultPath is $HOME/.apl.yml, or "" when there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".apl.yml")
}
