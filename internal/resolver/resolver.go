// Package resolver expands a gadget's widget references into full widgets.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/gizmo/internal/ir"
)

// WidgetStore reads widgets by name. ok is false when no widget has that name.
type WidgetStore interface {
	GetWidget(ctx context.Context, name string) (w ir.Widget, ok bool, err error)
}

// GadgetStore reads gadgets by name. ok is false when no gadget has that name.
type GadgetStore interface {
	GetGadget(ctx context.Context, name string) (g ir.Gadget, ok bool, err error)
}

// Kind names the record type a NotFoundError refers to.
type Kind string

const (
	KindGadget Kind = "gadget"
	KindWidget Kind = "widget"
)

// NotFoundError reports a gadget or widget reference that does not resolve.
type NotFoundError struct {
	Kind Kind
	Name string

	// Gadget is the gadget being resolved (set for widget misses).
	Gadget string
}

func (e *NotFoundError) Error() string {
	if e.Kind == KindWidget && e.Gadget != "" {
		return fmt.Sprintf("widget %q referenced by gadget %q not found", e.Name, e.Gadget)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// IsNotFound reports whether err is a NotFoundError of the given kind.
func IsNotFound(err error, kind Kind) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Kind == kind
}

// Resolver expands gadgets against the widget and gadget stores.
// Resolver holds no state between calls and is safe for concurrent use.
type Resolver struct {
	widgets WidgetStore
	gadgets GadgetStore
}

// New creates a Resolver over the given stores.
func New(widgets WidgetStore, gadgets GadgetStore) *Resolver {
	return &Resolver{widgets: widgets, gadgets: gadgets}
}

// Resolve loads the named gadget and each widget it references, in order.
//
// Fails fast with a *NotFoundError for the gadget or for the first widget
// that does not exist. Store errors are returned wrapped and unchanged
// otherwise. Neither store is modified.
func (r *Resolver) Resolve(ctx context.Context, gadgetName string) (ir.ResolvedGadget, error) {
	g, ok, err := r.gadgets.GetGadget(ctx, gadgetName)
	if err != nil {
		return ir.ResolvedGadget{}, fmt.Errorf("resolve gadget %q: %w", gadgetName, err)
	}
	if !ok {
		return ir.ResolvedGadget{}, &NotFoundError{Kind: KindGadget, Name: gadgetName}
	}

	widgets := make([]ir.Widget, 0, len(g.Widgets))
	for _, name := range g.Widgets {
		w, ok, err := r.widgets.GetWidget(ctx, name)
		if err != nil {
			return ir.ResolvedGadget{}, fmt.Errorf("resolve widget %q: %w", name, err)
		}
		if !ok {
			return ir.ResolvedGadget{}, &NotFoundError{Kind: KindWidget, Name: name, Gadget: g.Name}
		}
		widgets = append(widgets, w)
	}

	functions := make([]string, len(g.Functions))
	copy(functions, g.Functions)

	return ir.ResolvedGadget{
		Name:      g.Name,
		Widgets:   widgets,
		Functions: functions,
	}, nil
}
