package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/modgen/internal/config"
)

// TestInitCreatesFile verifies that runInit writes a config that loads back
// as the defaults.
func TestInitCreatesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, ".modgen.yaml")

	var stdout, stderr bytes.Buffer
	require.NoError(t, runInit(path, false, false, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "wrote "+path)

	cfg, err := config.NewLoader(dir, "").Load()
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestInitKeepsExistingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".modgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("module: mine\n"), 0o644))

	var stdout, stderr bytes.Buffer
	err := runInit(path, false, false, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "module: mine\n", string(data))

	require.NoError(t, runInit(path, false, true, &stdout, &stderr))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_file_size: 1000000")
}

// TestInitDryRun verifies that --dry-run prints the file and writes nothing.
func TestInitDryRun(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".modgen.yaml")

	var stdout, stderr bytes.Buffer
	require.NoError(t, runInit(path, true, false, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "# modgen configuration")
	assert.Contains(t, out, "parser: auto")
	assert.Contains(t, out, "command: clang++")
	assert.Contains(t, out, "- '**/*.hpp'")

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "dry run must not create the file")
}

func TestInitSubcommand(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "custom.yaml")

	out, stderr, err := runModgen(t, "", "init", path)
	require.NoError(t, err, stderr)
	assert.Empty(t, out)

	cfg, err := config.NewLoader("", path).Load()
	require.NoError(t, err)
	assert.Equal(t, config.ParserAuto, cfg.Parser)
}
