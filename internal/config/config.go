// Package config loads machine settings from CUE, TOML or YAML files.
//
// Every format is validated by the same closed CUE definition (#Config in
// schema.cue), so unknown keys, out-of-range sizes and bad input modes are
// rejected the same way regardless of the file's syntax. Omitted fields take
// the schema defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Input modes accepted by the input field.
const (
	InputTerminal = "terminal"
	InputStdin    = "stdin"
	InputNone     = "none"
)

// ErrUnsupportedFormat is returned for config files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config holds machine settings.
type Config struct {
	Memory   Memory `json:"memory"`
	Strict   bool   `json:"strict"`
	MaxSteps int    `json:"max_steps"`
	Input    string `json:"input"`
}

// Memory configures the data tape.
type Memory struct {
	Size           int  `json:"size"`
	CursorRollover bool `json:"cursor_rollover"`
	ValueRollover  bool `json:"value_rollover"`
}

// Default returns the settings used when no config file is given.
// Matches the defaults in schema.cue.
func Default() Config {
	return Config{
		Memory: Memory{
			Size:           1_048_576,
			CursorRollover: true,
			ValueRollover:  true,
		},
		Input: InputTerminal,
	}
}

// Load reads and validates a config file. The format is chosen by
// extension: .cue, .toml, .yaml or .yml. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates config data in the format named by ext (with or without
// the leading dot).
func Parse(ext string, data []byte) (Config, error) {
	ctx := cuecontext.New()

	def, err := schema(ctx)
	if err != nil {
		return Config{}, err
	}

	var v cue.Value
	switch strings.TrimPrefix(strings.ToLower(ext), ".") {
	case "cue":
		v = ctx.CompileBytes(data, cue.Filename("config.cue"))

	case "toml":
		raw := map[string]any{}
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return Config{}, fmt.Errorf("decode toml: %w", err)
		}
		v = ctx.Encode(raw)

	case "yaml", "yml":
		raw := map[string]any{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("decode yaml: %w", err)
		}
		v = ctx.Encode(raw)

	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := v.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config: %w", err)
	}

	return decode(def.Unify(v))
}

func schema(ctx *cue.Context) (cue.Value, error) {
	s := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := s.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile schema: %w", err)
	}
	def := s.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("lookup #Config: %w", err)
	}
	return def, nil
}

func decode(v cue.Value) (Config, error) {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("validate: %w", err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	return cfg, nil
}

// Validate checks cfg against the schema. Use it after applying overrides
// to a loaded config.
func Validate(cfg Config) error {
	ctx := cuecontext.New()

	def, err := schema(ctx)
	if err != nil {
		return err
	}

	v := ctx.Encode(cfg)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = decode(def.Unify(v))
	return err
}
