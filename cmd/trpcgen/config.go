package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	env "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/syssam/trpcgen/compiler/gen"
)

// envPrefix prefixes the environment variables read by the command.
const envPrefix = "TRPCGEN_"

// Config is the command configuration. Values are taken from the
// defaults, the config file, the environment and the flags, in this
// order of increasing precedence.
type Config struct {
	// Document is the data-model document to generate from.
	Document string `yaml:"document" env:"DOCUMENT"`
	// Schema is the schema file external module paths are relative to.
	// It defaults to the document.
	Schema  string    `yaml:"schema" env:"SCHEMA"`
	Output  string    `yaml:"output" env:"OUTPUT"`
	Workers int       `yaml:"workers" env:"WORKERS"`
	DryRun  bool      `yaml:"dryRun" env:"DRY_RUN"`
	Log     LogConfig `yaml:"log" envPrefix:"LOG_"`

	// Generator holds the generator options as key/value pairs.
	Generator gen.RawConfig `yaml:"generator"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	// File enables a rotated log file in addition to stderr.
	File       string `yaml:"file" env:"FILE"`
	MaxSize    int    `yaml:"maxSize" env:"MAX_SIZE"` // megabytes
	MaxBackups int    `yaml:"maxBackups" env:"MAX_BACKUPS"`
	MaxAge     int    `yaml:"maxAge" env:"MAX_AGE"` // days
	Compress   bool   `yaml:"compress" env:"COMPRESS"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Document: "schema.json",
		Output:   "generated",
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// LoadConfig returns the defaults overridden by the config file at path,
// if any, and by the environment. A missing file is an error only when
// required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	c := DefaultConfig()
	if path != "" {
		buf, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !required:
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(buf, c); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	if err := env.ParseWithOptions(c, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return c, nil
}

// GenConfig builds the generator config.
func (c *Config) GenConfig() (*gen.Config, error) {
	schema := c.Schema
	if schema == "" {
		schema = c.Document
	}
	return gen.ParseConfig(c.Generator, gen.WithTarget(c.Output), gen.WithSchemaPath(schema))
}
