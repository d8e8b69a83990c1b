package engine

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/gizmo/internal/ir"
	"github.com/roach88/gizmo/internal/resolver"
	"github.com/roach88/gizmo/internal/store"
	"github.com/roach88/gizmo/internal/testutil"
)

const develHash = "c57dbcafc0e0882b057066d6c7d5d228badc33bdcc1c3b3c3ea16a07b143e24b"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestStore opens a temp-dir SQLite store seeded with the reference
// inventory:
//
//	rocket [spoke, wheel]    tailx: widgets [rocket] functions [sig]
//	spring [hub, wheel]      devel: widgets [spring] functions [hash]
func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.PutWidget(ctx, ir.Widget{Name: "rocket", Parts: []string{"spoke", "wheel"}}))
	require.NoError(t, s.PutWidget(ctx, ir.Widget{Name: "spring", Parts: []string{"hub", "wheel"}}))
	require.NoError(t, s.PutGadget(ctx, ir.Gadget{Name: "tailx", Widgets: []string{"rocket"}, Functions: []string{"sig"}}))
	require.NoError(t, s.PutGadget(ctx, ir.Gadget{Name: "devel", Widgets: []string{"spring"}, Functions: []string{"hash"}}))
	return s
}

// setupTestEngine returns an engine with a deterministic clock and tokens.
func setupTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	s := setupTestStore(t)
	e := New(resolver.New(s, s), s,
		WithClock(testutil.NewDeterministicClock()),
		WithTokenGenerator(testutil.NewSequenceTokenGenerator("")),
		WithLogger(discardLogger()),
	)
	return e, s
}

func countResults(t *testing.T, s *store.Store) int {
	t.Helper()
	n, err := s.CountFunctionResults(context.Background())
	require.NoError(t, err)
	return n
}
