package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gizmo/internal/ir"
)

func TestReplay_Match(t *testing.T) {
	e, s := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Execute(ctx, ir.ExecuteRequest{Name: "hash", Gadget: "devel"})
	require.NoError(t, err)

	res, err := e.Replay(ctx, r.Token)
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Equal(t, develHash, res.Recomputed)
	assert.Equal(t, r, res.Stored)
	assert.Equal(t, 1, countResults(t, s), "replay writes nothing")
}

func TestReplay_DetectsDrift(t *testing.T) {
	e, s := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Execute(ctx, ir.ExecuteRequest{Name: "hash", Gadget: "devel"})
	require.NoError(t, err)

	require.NoError(t, s.PutWidget(ctx, ir.Widget{Name: "spring", Parts: []string{"wheel", "hub"}}))

	res, err := e.Replay(ctx, r.Token)
	require.NoError(t, err)
	assert.False(t, res.Match)
	assert.Equal(t, develHash, res.Stored.Output)
	assert.NotEqual(t, develHash, res.Recomputed)
}

func TestReplay_SigIgnoresPartOrder(t *testing.T) {
	e, s := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Execute(ctx, ir.ExecuteRequest{Name: "sig", Gadget: "tailx"})
	require.NoError(t, err)
	require.NoError(t, s.PutWidget(ctx, ir.Widget{Name: "rocket", Parts: []string{"wheel", "spoke"}}))

	res, err := e.Replay(ctx, r.Token)
	require.NoError(t, err)
	assert.True(t, res.Match)
}

func TestReplay_Errors(t *testing.T) {
	e, s := setupTestEngine(t)
	ctx := context.Background()

	_, err := e.Replay(ctx, "00000000-0000-4000-8000-999999999999")
	assert.Equal(t, ErrCodeResultNotFound, CodeOf(err))

	r, err := e.Execute(ctx, ir.ExecuteRequest{Name: "sig", Gadget: "tailx"})
	require.NoError(t, err)

	require.NoError(t, s.PutGadget(ctx, ir.Gadget{Name: "tailx", Widgets: []string{"rocket"}, Functions: []string{"hash"}}))
	_, err = e.Replay(ctx, r.Token)
	assert.Equal(t, ErrCodeUnsupportedFunction, CodeOf(err))

	_, err = s.DeleteGadget(ctx, "tailx")
	require.NoError(t, err)
	_, err = e.Replay(ctx, r.Token)
	assert.Equal(t, ErrCodeGadgetNotFound, CodeOf(err))
}
