// Package config loads todokit configuration files and validates them
// against an embedded CUE schema.
//
// Files may be written in CUE, JSON or YAML. Whatever the input format, the
// document is unified with the #Config definition from schema.cue, so unknown
// fields are rejected and missing fields take the schema defaults.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config is the decoded configuration.
type Config struct {
	Database string `json:"database"`
	LogLevel string `json:"log_level"`
	Server   Server `json:"server"`
	Seed     []Seed `json:"seed"`
}

// Server configures the HTTP API.
type Server struct {
	Listen string `json:"listen"`
	Debug  bool   `json:"debug"`
}

// Seed is a todo added to an empty list at startup.
type Seed struct {
	Text      string   `json:"text"`
	Completed bool     `json:"completed"`
	Tags      []string `json:"tags"`
}

// SlogLevel converts LogLevel to a slog level. Unknown values map to Info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
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

// Default returns the configuration the schema yields for an empty document.
func Default() *Config {
	cfg, err := decode(func(ctx *cue.Context) (cue.Value, error) {
		return ctx.CompileString("{}"), nil
	})
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema is broken: %v", err))
	}
	return cfg
}

// Load reads and validates the configuration file at path. The format is
// chosen by extension: .cue, .json, .yaml or .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	cfg, err := decode(func(ctx *cue.Context) (cue.Value, error) {
		return compileInput(ctx, path, ext, data)
	})
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates a configuration document held in memory. format is one of
// "cue", "json" or "yaml".
func Parse(format string, data []byte) (*Config, error) {
	cfg, err := decode(func(ctx *cue.Context) (cue.Value, error) {
		return compileInput(ctx, "config."+format, "."+format, data)
	})
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func compileInput(ctx *cue.Context, name, ext string, data []byte) (cue.Value, error) {
	switch ext {
	case ".cue", ".json":
		// JSON is a subset of CUE.
		return ctx.CompileBytes(data, cue.Filename(name)), nil
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cue.Value{}, &Error{Message: fmt.Sprintf("invalid YAML: %v", err)}
		}
		if raw == nil {
			return ctx.CompileString("{}"), nil
		}
		return ctx.Encode(raw), nil
	default:
		return cue.Value{}, &Error{Message: fmt.Sprintf("unsupported config format %q (want .cue, .json, .yaml or .yml)", ext)}
	}
}

// decode unifies the document produced by input with #Config and decodes
// the result.
func decode(input func(ctx *cue.Context) (cue.Value, error)) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fromCUE(err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	doc, err := input(ctx)
	if err != nil {
		return nil, err
	}
	if err := doc.Err(); err != nil {
		return nil, fromCUE(err)
	}

	v := def.Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fromCUE(err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, fromCUE(err)
	}
	return &cfg, nil
}
