package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestMigrateCommands_SQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", filepath.Join(t.TempDir(), "users.db"))
	t.Setenv("LOG_LEVEL", "error")

	assert.Contains(t, runCommand(t, "migrate", "version"), "no migrations applied")

	runCommand(t, "migrate", "up")
	assert.Contains(t, runCommand(t, "migrate", "version"), "version 1 (dirty: false)")

	runCommand(t, "migrate", "down")
	assert.Contains(t, runCommand(t, "migrate", "version"), "no migrations applied")
}
