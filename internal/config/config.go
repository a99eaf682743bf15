// Package config loads iatro settings from a YAML file and IATRO_*
// environment variables.
//
// Precedence, highest first:
//  1. command-line flags (Overrides)
//  2. environment variables (IATRO_LOG_LEVEL -> log.level)
//  3. the YAML file
//  4. built-in defaults
//
// Engine thresholds start from the selected preset; any key under
// "engine" in the file or environment overrides the preset value.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/iatro-health/iatro/internal/inference"
	"github.com/iatro-health/iatro/internal/llm"
	"github.com/iatro-health/iatro/internal/logging"
)

const (
	envPrefix         = "IATRO_"
	maxConfigFileSize = 1 << 20
)

// Config is the resolved application configuration.
type Config struct {
	// DB is the SQLite path; empty selects store.DefaultDBPath.
	DB string `koanf:"db" yaml:"db"`
	// KB is a YAML knowledge-base file; empty reads the database.
	KB string `koanf:"kb" yaml:"kb"`

	Engine EngineConfig `koanf:"engine" yaml:"engine"`
	Log    LogConfig    `koanf:"log" yaml:"log"`
	LLM    llm.Config   `koanf:"llm" yaml:"llm"`

	// Inference is the preset with engine overrides applied.
	Inference inference.Config `koanf:"-" yaml:"-"`
}

type EngineConfig struct {
	Preset string `koanf:"preset" yaml:"preset"`
}

type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// Overrides carries flag values; empty fields are ignored.
type Overrides struct {
	Preset    string
	DB        string
	KB        string
	LogLevel  string
	LogFormat string
	LLM       string // provider name
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{Preset: inference.PresetStrict},
		Log:    LogConfig{Level: "warn", Format: logging.FormatConsole},
		LLM:    llm.DefaultConfig(),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/iatro/config.yaml, falling back to
// ~/.config/iatro/config.yaml.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "iatro", "config.yaml"), nil
}

// Load resolves the configuration. An empty path loads the default file
// when it exists; an explicit path must exist.
func Load(path string, o Overrides) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := loadFile(k, path, explicit); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	llm.ApplyEnv(&cfg.LLM)
	if !cfg.LLM.Enabled() {
		if found, ok := llm.DiscoverConfig(cfg.LLM); ok && k.String("llm.provider") == "" {
			cfg.LLM = found
		}
	}
	cfg.apply(o)

	ic, err := inference.Preset(cfg.Engine.Preset)
	if err != nil {
		return nil, err
	}
	if err := k.Unmarshal("engine", &ic); err != nil {
		return nil, fmt.Errorf("unmarshal engine overrides: %w", err)
	}
	cfg.Inference = ic

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string, required bool) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return fmt.Errorf("load config file %s: %w", path, err)
	}
	return nil
}

// envKey maps IATRO_SECTION_FIELD_NAME to section.field_name. Single-word
// names (IATRO_DB) stay top-level.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	section, field, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + field
}

func (c *Config) apply(o Overrides) {
	if o.Preset != "" {
		c.Engine.Preset = o.Preset
	}
	if o.DB != "" {
		c.DB = o.DB
	}
	if o.KB != "" {
		c.KB = o.KB
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Log.Format = o.LogFormat
	}
	if o.LLM != "" {
		c.LLM.Provider = o.LLM
	}
}

// Validate checks every section and joins the failures.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.New(logging.Options{Level: c.Log.Level, Format: c.Log.Format, Out: io.Discard}); err != nil {
		errs = append(errs, err)
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("llm: %w", err))
	}
	if err := c.Inference.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("engine: %w", err))
	}
	return errors.Join(errs...)
}
