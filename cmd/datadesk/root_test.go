package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "datadesk.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  file: \"\"\n  console: false\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env")))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "datadesk version ")
}

func TestSessionLs_EmptyStore(t *testing.T) {
	out, err := execute(t, "session", "ls")
	require.NoError(t, err)
	assert.Equal(t, "No active sessions found.\n", out)
}

func TestSessionInspect_Unknown(t *testing.T) {
	_, err := execute(t, "session", "inspect", "nobody")
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "session", "ls", "--log-level", "loud")
	assert.Error(t, err)
}
