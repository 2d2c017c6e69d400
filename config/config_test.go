package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neumenon/nbt/nbt"
	"github.com/Neumenon/nbt/stream"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "gzip", cfg.Compression)
	assert.Equal(t, nbt.DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, "  ", cfg.Indent)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, stream.CompressionGzip, cfg.CompressionKind())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	t.Setenv(EnvVar, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FromEnvironment(t *testing.T) {
	path := writeConfig(t, "nbt.yaml", "compression: zstd\n")
	t.Setenv(EnvVar, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, stream.CompressionZstd, cfg.CompressionKind())
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	t.Setenv(EnvVar, writeConfig(t, "env.yaml", "compression: zstd\n"))
	flagPath := writeConfig(t, "flag.yaml", "compression: lz4\n")

	cfg, err := Load(flagPath)
	require.NoError(t, err)
	assert.Equal(t, stream.CompressionLZ4, cfg.CompressionKind())
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeConfig(t, "nbt.yml", `
compression: zlib
level: 9
sort_keys: true
max_depth: 64
pretty: true
indent: "\t"
log_level: debug
output: out.dat
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Compression: "zlib",
		Level:       9,
		SortKeys:    true,
		MaxDepth:    64,
		Pretty:      true,
		Indent:      "\t",
		LogLevel:    "debug",
		Output:      "out.dat",
	}, cfg)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, nbt.EmitOptions{Pretty: true, Indent: "\t", SortKeys: true}, cfg.EmitOptions())
}

func TestLoadFile_TOML(t *testing.T) {
	path := writeConfig(t, "nbt.toml", `
compression = "none"
max_depth = 128
log_level = "warn"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, stream.CompressionNone, cfg.CompressionKind())
	assert.Equal(t, 128, cfg.MaxDepth)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
	// Unset keys keep their defaults.
	assert.Equal(t, "  ", cfg.Indent)
}

func TestLoadFile_EmptyYAMLKeepsDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unknown yaml key", "a.yaml", "compresion: gzip\n", "compresion"},
		{"unknown toml key", "a.toml", "compresion = \"gzip\"\n", "unknown keys: compresion"},
		{"bad yaml", "a.yaml", "compression: [\n", ""},
		{"bad toml", "a.toml", "compression = \n", ""},
		{"unsupported extension", "a.json", "{}", "unsupported format"},
		{"bad compression", "a.yaml", "compression: brotli\n", "brotli"},
		{"bad depth", "a.yaml", "max_depth: 0\n", "max_depth"},
		{"bad log level", "a.yaml", "log_level: loud\n", "log_level"},
		{"bad indent", "a.yaml", "indent: xx\n", "indent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.file, tt.content))
			require.Error(t, err)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Compression = "brotli"
	cfg.MaxDepth = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brotli")
	assert.Contains(t, err.Error(), "max_depth")
}
