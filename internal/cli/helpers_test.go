package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gizmo/internal/config"
)

const (
	inventoryDir = "testdata/inventory"
	invalidDir   = "testdata/invalid"
	develHash    = "c57dbcafc0e0882b057066d6c7d5d228badc33bdcc1c3b3c3ea16a07b143e24b"
	tailxSig     = "{widgets{0rocketfunctions{0signametailx"
)

// runCommand executes cmd with args and returns stdout, stderr and the error.
func runCommand(cmd *cobra.Command, args ...string) (string, string, error) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// isolateEnv clears GIZMO_* settings so defaults apply.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		config.EnvDatabase, config.EnvAddr, config.EnvShutdownTimeout,
		config.EnvLogLevel, config.EnvHistoryLimit,
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

// loadedDB returns a fresh database path with testdata/inventory loaded.
func loadedDB(t *testing.T) string {
	t.Helper()
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "gizmo.db")
	_, _, err := runCommand(NewLoadCommand(&RootOptions{Format: "text"}), "--db", db, inventoryDir)
	require.NoError(t, err)
	return db
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
