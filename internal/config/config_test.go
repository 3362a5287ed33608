package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, ParserAuto, cfg.Parser)
	assert.Equal(t, "clang++", cfg.Clang.Command)
	assert.Contains(t, cfg.Paths.Headers, "**/*.hpp")
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.NoError(t, Validate(cfg))
}

func TestLoadWithoutFile(t *testing.T) {
	t.Parallel()

	l := NewLoader(t.TempDir(), "")
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, l.Used())
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	for _, name := range []string{".modgen.yaml", ".modgen.yml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			path := writeConfig(t, dir, name, `namespaces: [lib, "other, third"]
module: mylib
parser: source
clang:
  args: ["-std=c++23", "-Iinclude"]
max_file_size: 2048
`)

			l := NewLoader(dir, "")
			cfg, err := l.Load()
			require.NoError(t, err)
			assert.Equal(t, []string{"lib", "other", "third"}, cfg.Namespaces)
			assert.Equal(t, "mylib", cfg.Module)
			assert.Equal(t, ParserSource, cfg.Parser)
			assert.Equal(t, "clang++", cfg.Clang.Command, "unset keys keep defaults")
			assert.Equal(t, []string{"-std=c++23", "-Iinclude"}, cfg.Clang.Args)
			assert.Equal(t, int64(2048), cfg.MaxFileSize)
			assert.Equal(t, path, l.Used())
		})
	}
}

func TestLoadExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, "custom.yaml", "filter: \"ns::.*\"\n")

	cfg, err := NewLoader(t.TempDir(), path).Load()
	require.NoError(t, err)
	assert.Equal(t, "ns::.*", cfg.Filter)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml")).Load()
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, ".modgen.yaml", "namespaces: [unclosed\n")

	_, err := NewLoader(dir, "").Load()
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, ".modgen.yaml", "parser: magic\njobs: -1\n")

	_, err := NewLoader(dir, "").Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParser))
	assert.True(t, errors.Is(err, ErrInvalidLimit))
}

// Environment tests mutate process state and cannot run in parallel.
func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".modgen.yaml", "module: fromfile\nexclude: a\n")
	t.Setenv("MODGEN_MODULE", "fromenv")
	t.Setenv("MODGEN_NAMESPACES", "x,y")
	t.Setenv("MODGEN_CLANG_COMMAND", "clang-18")

	cfg, err := NewLoader(dir, "").Load()
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.Module)
	assert.Equal(t, "a", cfg.Exclude)
	assert.Equal(t, []string{"x", "y"}, cfg.Namespaces)
	assert.Equal(t, "clang-18", cfg.Clang.Command)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown parser", func(c *Config) { c.Parser = "libclang" }, ErrInvalidParser},
		{"parser is case-insensitive", func(c *Config) { c.Parser = "JSON" }, nil},
		{"empty clang command", func(c *Config) { c.Clang.Command = " " }, ErrEmptyCommand},
		{"negative size", func(c *Config) { c.MaxFileSize = -1 }, ErrInvalidLimit},
		{"negative jobs", func(c *Config) { c.Jobs = -2 }, ErrInvalidLimit},
		{"zero size disables the limit", func(c *Config) { c.MaxFileSize = 0 }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
