// Package config provides configuration loading for the nbt tool.
//
// Configuration is loaded from a single file specified by:
//   - the --config flag, or
//   - the NBT_CONFIG environment variable.
//
// With neither set the defaults apply. The file format follows the
// extension: .yaml and .yml are YAML, .toml is TOML. Unknown keys are an
// error in both formats.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Neumenon/nbt/nbt"
	"github.com/Neumenon/nbt/stream"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "NBT_CONFIG"

// Config is the configuration for the nbt tool.
type Config struct {
	// Compression is used when writing binary output: none, gzip, zlib,
	// zstd or lz4. Default: gzip
	Compression string `yaml:"compression" toml:"compression"`

	// Level is the compression level in the format's own scale.
	// Default: 0 (format default)
	Level int `yaml:"level" toml:"level"`

	// SortKeys writes compound entries in sorted key order, both in binary
	// and text output.
	SortKeys bool `yaml:"sort_keys" toml:"sort_keys"`

	// MaxDepth limits container nesting when reading binary or text input.
	// Default: 512
	MaxDepth int `yaml:"max_depth" toml:"max_depth"`

	// Pretty selects indented SNBT output.
	Pretty bool `yaml:"pretty" toml:"pretty"`

	// Indent is the indentation unit for pretty output. Default: two spaces
	Indent string `yaml:"indent" toml:"indent"`

	// LogLevel is one of debug, info, warn, error. Default: info
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// Output is the default output path; empty means standard output.
	Output string `yaml:"output" toml:"output"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Compression: "gzip",
		MaxDepth:    nbt.DefaultMaxDepth,
		Indent:      "  ",
		LogLevel:    "info",
	}
}

// Load loads the file at path, or the file named by NBT_CONFIG when path
// is empty. With neither it returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file, merged over the
// defaults, and validates it.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = cfg.decodeYAML(data)
	case ".toml":
		err = cfg.decodeTOML(data)
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q (want .yaml, .yml or .toml)", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) decodeTOML(data []byte) error {
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	var errs []error
	if _, err := stream.ParseCompression(c.Compression); err != nil {
		errs = append(errs, err)
	}
	if c.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimLeft(c.Indent, " \t") != "" {
		errs = append(errs, fmt.Errorf("indent must be spaces or tabs, got %q", c.Indent))
	}
	return errors.Join(errs...)
}

// CompressionKind returns the parsed Compression.
func (c *Config) CompressionKind() stream.Compression {
	comp, err := stream.ParseCompression(c.Compression)
	if err != nil {
		return stream.CompressionGzip
	}
	return comp
}

// SlogLevel returns the parsed log level, info if unparseable.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// EmitOptions returns the SNBT emitter options the config selects.
func (c *Config) EmitOptions() nbt.EmitOptions {
	return nbt.EmitOptions{
		Pretty:   c.Pretty,
		Indent:   c.Indent,
		SortKeys: c.SortKeys,
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
