package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"gopkg.in/yaml.v3"

	"github.com/Lattyware/montyweightjava/pkg/interpreter"
)

// ConfigFileName is looked up next to the source file.
const ConfigFileName = "mj.yml"

// Config models mj.yml.
type Config struct {
	Path   string `yaml:"-"`
	Main   string `yaml:"main,omitempty"`
	Trace  string `yaml:"trace,omitempty"`
	Limits Limits `yaml:"limits,omitempty"`
}

type Limits struct {
	MaxCallDepth int   `yaml:"max_call_depth,omitempty"`
	MaxSteps     int64 `yaml:"max_steps,omitempty"`
}

// LoadConfig parses the file at path. Unknown keys are errors.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := &Config{}
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.Path = abs
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", abs, err)
	}
	return cfg, nil
}

// FindConfig loads mj.yml from the directory of sourcePath. A missing file
// yields an empty configuration.
func FindConfig(sourcePath string) (*Config, error) {
	candidate := filepath.Join(filepath.Dir(sourcePath), ConfigFileName)
	if _, err := os.Stat(candidate); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	return LoadConfig(candidate)
}

func (c *Config) Validate() error {
	if _, err := ParseTraceLevel(c.Trace); err != nil {
		return err
	}
	if c.Limits.MaxCallDepth < 0 {
		return fmt.Errorf("limits.max_call_depth must not be negative")
	}
	if c.Limits.MaxCallDepth > interpreter.MaxCallDepthLimit {
		return fmt.Errorf("limits.max_call_depth must not exceed %d", interpreter.MaxCallDepthLimit)
	}
	if c.Limits.MaxSteps < 0 {
		return fmt.Errorf("limits.max_steps must not be negative")
	}
	return nil
}

// Options turns the configuration into interpreter options.
func (c *Config) Options() []interpreter.Option {
	var opts []interpreter.Option
	if c.Main != "" {
		opts = append(opts, interpreter.WithEntryClass(c.Main))
	}
	if c.Limits.MaxCallDepth > 0 {
		opts = append(opts, interpreter.WithMaxCallDepth(c.Limits.MaxCallDepth))
	}
	if c.Limits.MaxSteps > 0 {
		opts = append(opts, interpreter.WithMaxSteps(c.Limits.MaxSteps))
	}
	return opts
}

// ParseTraceLevel accepts error, info or debug in any case; the empty
// string means error.
func ParseTraceLevel(level string) (tracing.TraceLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "error":
		return tracing.LevelError, nil
	case "info":
		return tracing.LevelInfo, nil
	case "debug":
		return tracing.LevelDebug, nil
	}
	return tracing.LevelError, fmt.Errorf("unknown trace level %q (want error, info or debug)", level)
}

// ConfigureTracing routes every tracer to a Go logger writing to w.
func ConfigureTracing(level string, w io.Writer) error {
	lvl, err := ParseTraceLevel(level)
	if err != nil {
		return err
	}
	trace := gologadapter.New()
	trace.SetOutput(w)
	trace.SetTraceLevel(lvl)
	tracing.SetTraceSelector(tracing.SelectorForAdapter(func() tracing.Trace { return trace }))
	return nil
}
