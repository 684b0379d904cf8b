package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinimalArgs(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{"declaration.hcl", "total"}, &out)
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "declaration.hcl", cfg.DeclarationPath)
	assert.Equal(t, "total", cfg.Target)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Trace)
	assert.False(t, cfg.Profile)
	assert.Empty(t, cfg.Context)
}

func TestParseInlineContext(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{
		"-context", "driver_age=22,brand=BMW",
		"-trace", "-profile", "-log-level", "debug",
		"declaration.hcl", "total",
	}, &out)
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.True(t, cfg.Trace)
	assert.True(t, cfg.Profile)
	assert.Equal(t, "debug", cfg.LogLevel)

	d, ok := cfg.Context["driver_age"].Decimal()
	require.True(t, ok)
	assert.Equal(t, "22", d.String())

	txt, ok := cfg.Context["brand"].Text()
	require.True(t, ok)
	assert.Equal(t, "BMW", txt)
}

func TestParseContextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ctx.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"driver_age": "45", "brand": "Toyota"}`), 0o644))

	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{"-context-file", path, "declaration.hcl", "total"}, &out)
	require.NoError(t, err)
	assert.False(t, shouldExit)

	d, ok := cfg.Context["driver_age"].Decimal()
	require.True(t, ok)
	assert.Equal(t, "45", d.String())
}

func TestParseMissingArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{"only-one-arg"}, &out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseRejectsInvalidLogLevel(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"-log-level", "noisy", "declaration.hcl", "total"}, &out)
	require.Error(t, err)
	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseRejectsMalformedInlineContext(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"-context", "driver_age", "declaration.hcl", "total"}, &out)
	require.Error(t, err)
	_, ok := err.(*ExitError)
	assert.True(t, ok)
}

func TestParseContextValueFallsBackToText(t *testing.T) {
	v := parseContextValue("BMW")
	txt, ok := v.Text()
	require.True(t, ok)
	assert.Equal(t, "BMW", txt)

	v = parseContextValue("22.5")
	d, ok := v.Decimal()
	require.True(t, ok)
	assert.Equal(t, "22.5", d.String())
}
