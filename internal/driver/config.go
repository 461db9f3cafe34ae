package driver

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Config describes how to launch the host under test.
type Config struct {
	// Host is the host executable. Required.
	Host string `yaml:"host" json:"host"`

	// Args are passed to the host verbatim.
	Args []string `yaml:"args,omitempty" json:"args,omitempty"`

	// Env adds variables to the driver's own environment for the host.
	Env map[string]string `yaml:"env,omitempty" json:"env,omitempty"`

	// Dir is the host's working directory. Relative paths are resolved
	// against the config file's directory.
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// ErrMissingHost is returned when a config names no host executable.
var ErrMissingHost = errors.New("config: host is required")

// Validate checks required fields.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return ErrMissingHost
	}
	return nil
}

// LoadConfig reads a driver config from a YAML (.yaml, .yml) or CUE (.cue)
// file. YAML is decoded strictly: unknown fields are errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".cue":
		if err := decodeCUE(path, data, &cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .cue)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Dir != "" && !filepath.IsAbs(cfg.Dir) {
		cfg.Dir = filepath.Join(filepath.Dir(path), cfg.Dir)
	}
	return &cfg, nil
}

// decodeCUE evaluates a single CUE file and decodes it into cfg.
// The file must be concrete: every field needs a final value.
func decodeCUE(path string, data []byte, cfg *Config) error {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("CUE config is not concrete: %w", err)
	}
	if err := value.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode CUE: %w", err)
	}
	return nil
}
