package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/gizmo/internal/ir"
)

// InventoryStore is the widget and gadget persistence used by Inventory.
// Implemented by *store.Store.
type InventoryStore interface {
	InsertWidget(ctx context.Context, w ir.Widget) (inserted bool, err error)
	UpdateWidget(ctx context.Context, w ir.Widget) (found bool, err error)
	GetWidget(ctx context.Context, name string) (ir.Widget, bool, error)
	ListWidgets(ctx context.Context) ([]ir.Widget, error)
	DeleteWidget(ctx context.Context, name string) (found bool, err error)

	InsertGadget(ctx context.Context, g ir.Gadget) (inserted bool, err error)
	UpdateGadget(ctx context.Context, g ir.Gadget) (found bool, err error)
	GetGadget(ctx context.Context, name string) (ir.Gadget, bool, error)
	ListGadgets(ctx context.Context) ([]ir.Gadget, error)
	DeleteGadget(ctx context.Context, name string) (found bool, err error)
}

// Inventory is the validated write path for widgets and gadgets.
//
// Widgets and gadgets are plain records; Inventory only checks required
// fields, name uniqueness and that gadget widget references exist at write
// time. A widget may be deleted while gadgets still reference it; later
// executions against those gadgets fail with WIDGET_NOT_FOUND.
type Inventory struct {
	store  InventoryStore
	logger *slog.Logger
}

// NewInventory creates an Inventory over s. A nil logger uses slog.Default().
func NewInventory(s InventoryStore, logger *slog.Logger) *Inventory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inventory{store: s, logger: logger}
}

// CreateWidget stores a new widget. Returns ALREADY_EXISTS if the name is taken.
func (inv *Inventory) CreateWidget(ctx context.Context, w ir.Widget) (ir.Widget, error) {
	w, err := normalizeWidget(w)
	if err != nil {
		return ir.Widget{}, err
	}
	inserted, err := inv.store.InsertWidget(ctx, w)
	if err != nil {
		return ir.Widget{}, fmt.Errorf("create widget %q: %w", w.Name, err)
	}
	if !inserted {
		return ir.Widget{}, NewAlreadyExistsError("widget", w.Name)
	}
	inv.logger.Info("widget created", "widget", w.Name, "parts", len(w.Parts))
	return w, nil
}

// UpdateWidget replaces the parts of an existing widget.
func (inv *Inventory) UpdateWidget(ctx context.Context, w ir.Widget) (ir.Widget, error) {
	w, err := normalizeWidget(w)
	if err != nil {
		return ir.Widget{}, err
	}
	found, err := inv.store.UpdateWidget(ctx, w)
	if err != nil {
		return ir.Widget{}, fmt.Errorf("update widget %q: %w", w.Name, err)
	}
	if !found {
		return ir.Widget{}, NewWidgetNotFoundError(w.Name, "")
	}
	inv.logger.Info("widget updated", "widget", w.Name, "parts", len(w.Parts))
	return w, nil
}

// GetWidget returns the named widget or WIDGET_NOT_FOUND.
func (inv *Inventory) GetWidget(ctx context.Context, name string) (ir.Widget, error) {
	w, ok, err := inv.store.GetWidget(ctx, name)
	if err != nil {
		return ir.Widget{}, fmt.Errorf("get widget %q: %w", name, err)
	}
	if !ok {
		return ir.Widget{}, NewWidgetNotFoundError(name, "")
	}
	return w, nil
}

// ListWidgets returns every widget ordered by name.
func (inv *Inventory) ListWidgets(ctx context.Context) ([]ir.Widget, error) {
	widgets, err := inv.store.ListWidgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list widgets: %w", err)
	}
	return widgets, nil
}

// DeleteWidget removes the named widget or returns WIDGET_NOT_FOUND.
func (inv *Inventory) DeleteWidget(ctx context.Context, name string) error {
	found, err := inv.store.DeleteWidget(ctx, name)
	if err != nil {
		return fmt.Errorf("delete widget %q: %w", name, err)
	}
	if !found {
		return NewWidgetNotFoundError(name, "")
	}
	inv.logger.Info("widget deleted", "widget", name)
	return nil
}

// CreateGadget stores a new gadget after checking its widget references.
func (inv *Inventory) CreateGadget(ctx context.Context, g ir.Gadget) (ir.Gadget, error) {
	g, err := inv.validateGadget(ctx, g)
	if err != nil {
		return ir.Gadget{}, err
	}
	inserted, err := inv.store.InsertGadget(ctx, g)
	if err != nil {
		return ir.Gadget{}, fmt.Errorf("create gadget %q: %w", g.Name, err)
	}
	if !inserted {
		return ir.Gadget{}, NewAlreadyExistsError("gadget", g.Name)
	}
	inv.logger.Info("gadget created", "gadget", g.Name, "widgets", len(g.Widgets), "functions", g.Functions)
	return g, nil
}

// UpdateGadget replaces the widgets and functions of an existing gadget.
func (inv *Inventory) UpdateGadget(ctx context.Context, g ir.Gadget) (ir.Gadget, error) {
	g, err := inv.validateGadget(ctx, g)
	if err != nil {
		return ir.Gadget{}, err
	}
	found, err := inv.store.UpdateGadget(ctx, g)
	if err != nil {
		return ir.Gadget{}, fmt.Errorf("update gadget %q: %w", g.Name, err)
	}
	if !found {
		return ir.Gadget{}, NewGadgetNotFoundError(g.Name)
	}
	inv.logger.Info("gadget updated", "gadget", g.Name, "widgets", len(g.Widgets), "functions", g.Functions)
	return g, nil
}

// GetGadget returns the named gadget or GADGET_NOT_FOUND.
func (inv *Inventory) GetGadget(ctx context.Context, name string) (ir.Gadget, error) {
	g, ok, err := inv.store.GetGadget(ctx, name)
	if err != nil {
		return ir.Gadget{}, fmt.Errorf("get gadget %q: %w", name, err)
	}
	if !ok {
		return ir.Gadget{}, NewGadgetNotFoundError(name)
	}
	return g, nil
}

// ListGadgets returns every gadget ordered by name.
func (inv *Inventory) ListGadgets(ctx context.Context) ([]ir.Gadget, error) {
	gadgets, err := inv.store.ListGadgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list gadgets: %w", err)
	}
	return gadgets, nil
}

// DeleteGadget removes the named gadget or returns GADGET_NOT_FOUND.
// Stored function results for the gadget are kept.
func (inv *Inventory) DeleteGadget(ctx context.Context, name string) error {
	found, err := inv.store.DeleteGadget(ctx, name)
	if err != nil {
		return fmt.Errorf("delete gadget %q: %w", name, err)
	}
	if !found {
		return NewGadgetNotFoundError(name)
	}
	inv.logger.Info("gadget deleted", "gadget", name)
	return nil
}

// normalizeWidget trims the name and checks required fields. A nil Parts
// slice means the field was absent; an empty one is accepted.
func normalizeWidget(w ir.Widget) (ir.Widget, error) {
	w.Name = strings.TrimSpace(w.Name)
	var missing []string
	if w.Name == "" {
		missing = append(missing, "name")
	}
	if w.Parts == nil {
		missing = append(missing, "parts")
	}
	if len(missing) > 0 {
		return ir.Widget{}, NewInvalidRequestError(missing...)
	}
	for i, p := range w.Parts {
		if p == "" {
			return ir.Widget{}, &Error{
				Code:    ErrCodeInvalidRequest,
				Message: fmt.Sprintf("widget %q: parts[%d] is empty", w.Name, i),
				Widget:  w.Name,
			}
		}
	}
	w.Parts = append([]string{}, w.Parts...)
	return w, nil
}

func (inv *Inventory) validateGadget(ctx context.Context, g ir.Gadget) (ir.Gadget, error) {
	g.Name = strings.TrimSpace(g.Name)
	var missing []string
	if g.Name == "" {
		missing = append(missing, "name")
	}
	if g.Widgets == nil {
		missing = append(missing, "widgets")
	}
	if g.Functions == nil {
		missing = append(missing, "functions")
	}
	if len(missing) > 0 {
		return ir.Gadget{}, NewInvalidRequestError(missing...)
	}

	for _, name := range g.Widgets {
		_, ok, err := inv.store.GetWidget(ctx, name)
		if err != nil {
			return ir.Gadget{}, fmt.Errorf("check widget %q: %w", name, err)
		}
		if !ok {
			return ir.Gadget{}, NewWidgetNotFoundError(name, g.Name)
		}
	}

	g.Widgets = append([]string{}, g.Widgets...)
	g.Functions = dedupe(g.Functions)
	return g, nil
}

// dedupe keeps the first occurrence of each function name, preserving order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
