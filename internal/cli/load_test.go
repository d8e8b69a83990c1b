package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gizmo/internal/config"
	"github.com/roach88/gizmo/internal/store"
)

func TestLoadCreatesInventory(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "gizmo.db")

	out, _, err := runCommand(NewLoadCommand(&RootOptions{Format: "text"}), "--db", db, inventoryDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Loaded 2 widget(s) (2 new), 2 gadget(s) (2 new)")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	w, ok, err := st.GetWidget(ctx, "spring")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"hub", "wheel"}, w.Parts)

	g, ok, err := st.GetGadget(ctx, "tailx")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"rocket"}, g.Widgets)
	assert.Equal(t, []string{"sig"}, g.Functions)
}

func TestLoadIsAnUpsert(t *testing.T) {
	db := loadedDB(t)

	out, _, err := runCommand(NewLoadCommand(&RootOptions{Format: "json"}), "--db", db, inventoryDir)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   LoadSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, LoadSummary{WidgetsUpdated: 2, GadgetsUpdated: 2}, resp.Data)
}

func TestLoadResolvesAgainstStoredWidgets(t *testing.T) {
	db := loadedDB(t)

	dir := filepath.Join(t.TempDir(), "more")
	writeFile(t, dir, "extra.cue", `package inventory

gadget: both: {
	widgets:   ["rocket", "spring"]
	functions: ["sig", "hash"]
}
`)
	_, _, err := runCommand(NewLoadCommand(&RootOptions{Format: "text"}), "--db", db, dir)
	require.NoError(t, err)

	out, _, err := runCommand(NewExecCommand(&RootOptions{Format: "text"}), "--db", db, "sig", "both")
	require.NoError(t, err)
	assert.Contains(t, out, "output: {widgets{0rocket1springfunctions{0sig1hashnameboth")
}

func TestLoadWritesNothingWhenInvalid(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "gizmo.db")

	out, _, err := runCommand(NewLoadCommand(&RootOptions{Format: "text"}), "--db", db, invalidDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	widgets, err := st.ListWidgets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, widgets)
}

func TestLoadMissingDirectory(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "gizmo.db")

	_, _, err := runCommand(NewLoadCommand(&RootOptions{Format: "text"}), "--db", db, "/nonexistent/inventory")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLoadUsesEnvironmentDatabase(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "env.db")
	t.Setenv(config.EnvDatabase, db)

	_, _, err := runCommand(NewLoadCommand(&RootOptions{Format: "text"}), inventoryDir)
	require.NoError(t, err)

	out, _, err := runCommand(NewExecCommand(&RootOptions{Format: "text"}), "sig", "tailx")
	require.NoError(t, err)
	assert.Contains(t, out, "output: "+tailxSig)
}

func TestLoadEmptyDatabaseFlag(t *testing.T) {
	isolateEnv(t)
	_, _, err := runCommand(NewLoadCommand(&RootOptions{Format: "text"}), "--db", "", inventoryDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), config.EnvDatabase+" is required")
}
