package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gizmo/internal/ir"
	"github.com/roach88/gizmo/internal/resolver"
)

func setupTestInventory(t *testing.T) (*Inventory, *Engine) {
	t.Helper()
	e, s := setupTestEngine(t)
	return NewInventory(s, discardLogger()), e
}

func TestInventory_CreateWidget(t *testing.T) {
	inv, _ := setupTestInventory(t)
	ctx := context.Background()

	w, err := inv.CreateWidget(ctx, ir.Widget{Name: "  gear ", Parts: []string{"tooth", "axle"}})
	require.NoError(t, err)
	assert.Equal(t, "gear", w.Name)

	got, err := inv.GetWidget(ctx, "gear")
	require.NoError(t, err)
	assert.Equal(t, []string{"tooth", "axle"}, got.Parts)
}

func TestInventory_CreateWidgetEmptyParts(t *testing.T) {
	inv, _ := setupTestInventory(t)

	w, err := inv.CreateWidget(context.Background(), ir.Widget{Name: "blank", Parts: []string{}})
	require.NoError(t, err)
	assert.NotNil(t, w.Parts)
	assert.Empty(t, w.Parts)
}

func TestInventory_CreateWidgetValidation(t *testing.T) {
	inv, _ := setupTestInventory(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		widget ir.Widget
	}{
		{"missing name", ir.Widget{Parts: []string{"a"}}},
		{"blank name", ir.Widget{Name: "   ", Parts: []string{"a"}}},
		{"missing parts", ir.Widget{Name: "gear"}},
		{"empty part", ir.Widget{Name: "gear", Parts: []string{"a", ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inv.CreateWidget(ctx, tt.widget)
			assert.True(t, IsInvalidRequest(err), "got %v", err)
		})
	}
}

func TestInventory_CreateWidgetDuplicate(t *testing.T) {
	inv, _ := setupTestInventory(t)

	_, err := inv.CreateWidget(context.Background(), ir.Widget{Name: "rocket", Parts: []string{"x"}})
	assert.Equal(t, ErrCodeAlreadyExists, CodeOf(err))

	got, err := inv.GetWidget(context.Background(), "rocket")
	require.NoError(t, err)
	assert.Equal(t, []string{"spoke", "wheel"}, got.Parts)
}

func TestInventory_UpdateWidget(t *testing.T) {
	inv, _ := setupTestInventory(t)
	ctx := context.Background()

	_, err := inv.UpdateWidget(ctx, ir.Widget{Name: "rocket", Parts: []string{"wheel"}})
	require.NoError(t, err)
	got, err := inv.GetWidget(ctx, "rocket")
	require.NoError(t, err)
	assert.Equal(t, []string{"wheel"}, got.Parts)

	_, err = inv.UpdateWidget(ctx, ir.Widget{Name: "ghost", Parts: []string{"x"}})
	assert.Equal(t, ErrCodeWidgetNotFound, CodeOf(err))
}

func TestInventory_ListAndDeleteWidget(t *testing.T) {
	inv, e := setupTestInventory(t)
	ctx := context.Background()

	widgets, err := inv.ListWidgets(ctx)
	require.NoError(t, err)
	require.Len(t, widgets, 2)
	assert.Equal(t, "rocket", widgets[0].Name)
	assert.Equal(t, "spring", widgets[1].Name)

	// still referenced by tailx; delete is allowed
	require.NoError(t, inv.DeleteWidget(ctx, "rocket"))
	assert.Equal(t, ErrCodeWidgetNotFound, CodeOf(inv.DeleteWidget(ctx, "rocket")))

	_, err = e.Execute(ctx, ir.ExecuteRequest{Name: "sig", Gadget: "tailx"})
	assert.Equal(t, ErrCodeWidgetNotFound, CodeOf(err))
}

func TestInventory_CreateGadget(t *testing.T) {
	inv, e := setupTestInventory(t)
	ctx := context.Background()

	g, err := inv.CreateGadget(ctx, ir.Gadget{
		Name:      "combo",
		Widgets:   []string{"spring", "rocket"},
		Functions: []string{"sig", "hash", "sig"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sig", "hash"}, g.Functions)

	stored, err := inv.GetGadget(ctx, "combo")
	require.NoError(t, err)
	assert.Equal(t, g, stored)

	r, err := e.Execute(ctx, ir.ExecuteRequest{Name: "sig", Gadget: "combo"})
	require.NoError(t, err)
	assert.Equal(t, "{widgets{0spring1rocketfunctions{0sig1hashnamecombo", r.Output)
}

func TestInventory_CreateGadgetValidation(t *testing.T) {
	inv, _ := setupTestInventory(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		gadget ir.Gadget
		code   ErrorCode
	}{
		{"missing name", ir.Gadget{Widgets: []string{"rocket"}, Functions: []string{"sig"}}, ErrCodeInvalidRequest},
		{"missing widgets", ir.Gadget{Name: "g", Functions: []string{"sig"}}, ErrCodeInvalidRequest},
		{"missing functions", ir.Gadget{Name: "g", Widgets: []string{"rocket"}}, ErrCodeInvalidRequest},
		{"unknown widget", ir.Gadget{Name: "g", Widgets: []string{"rocket", "ghost"}, Functions: []string{"sig"}}, ErrCodeWidgetNotFound},
		{"duplicate name", ir.Gadget{Name: "tailx", Widgets: []string{"rocket"}, Functions: []string{"sig"}}, ErrCodeAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inv.CreateGadget(ctx, tt.gadget)
			assert.Equal(t, tt.code, CodeOf(err), "got %v", err)
		})
	}

	gadgets, err := inv.ListGadgets(ctx)
	require.NoError(t, err)
	assert.Len(t, gadgets, 2)
}

func TestInventory_UpdateAndDeleteGadget(t *testing.T) {
	inv, e := setupTestInventory(t)
	ctx := context.Background()

	_, err := inv.UpdateGadget(ctx, ir.Gadget{Name: "tailx", Widgets: []string{"rocket"}, Functions: []string{"sig", "hash"}})
	require.NoError(t, err)

	r, err := e.Execute(ctx, ir.ExecuteRequest{Name: "hash", Gadget: "tailx"})
	require.NoError(t, err)
	assert.Equal(t, "tailx", r.Gadget)

	_, err = inv.UpdateGadget(ctx, ir.Gadget{Name: "ghost", Widgets: []string{}, Functions: []string{}})
	assert.Equal(t, ErrCodeGadgetNotFound, CodeOf(err))

	require.NoError(t, inv.DeleteGadget(ctx, "tailx"))
	assert.Equal(t, ErrCodeGadgetNotFound, CodeOf(inv.DeleteGadget(ctx, "tailx")))
	_, err = inv.GetGadget(ctx, "tailx")
	assert.Equal(t, ErrCodeGadgetNotFound, CodeOf(err))

	// results outlive the gadget
	got, err := e.GetByToken(ctx, r.Token)
	require.NoError(t, err)
	assert.Equal(t, r.Output, got.Output)
}

// brokenStore fails every call with err.
type brokenStore struct {
	InventoryStore
	err error
}

func (b brokenStore) GetWidget(context.Context, string) (ir.Widget, bool, error) {
	return ir.Widget{}, false, b.err
}

func (b brokenStore) InsertWidget(context.Context, ir.Widget) (bool, error) {
	return false, b.err
}

func TestInventory_StoreErrorsAreWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	inv := NewInventory(brokenStore{err: boom}, nil)
	ctx := context.Background()

	_, err := inv.CreateWidget(ctx, ir.Widget{Name: "w", Parts: []string{}})
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsDomainError(err))

	_, err = inv.GetWidget(ctx, "w")
	assert.ErrorIs(t, err, boom)

	_, err = inv.CreateGadget(ctx, ir.Gadget{Name: "g", Widgets: []string{"w"}, Functions: []string{}})
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsDomainError(err))
}

func TestTranslateResolveError(t *testing.T) {
	err := translateResolveError(&resolver.NotFoundError{Kind: resolver.KindWidget, Name: "w", Gadget: "g"})
	assert.Equal(t, ErrCodeWidgetNotFound, CodeOf(err))

	boom := errors.New("boom")
	err = translateResolveError(boom)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsDomainError(err))
}
