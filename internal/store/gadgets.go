package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/gizmo/internal/ir"
)

func marshalGadget(g ir.Gadget) (widgets, functions string, err error) {
	widgets, err = marshalList(g.Widgets)
	if err != nil {
		return "", "", err
	}
	functions, err = marshalList(g.Functions)
	if err != nil {
		return "", "", err
	}
	return widgets, functions, nil
}

func unmarshalGadget(name, widgets, functions string) (ir.Gadget, error) {
	w, err := unmarshalList(widgets)
	if err != nil {
		return ir.Gadget{}, fmt.Errorf("gadget %q widgets: %w", name, err)
	}
	f, err := unmarshalList(functions)
	if err != nil {
		return ir.Gadget{}, fmt.Errorf("gadget %q functions: %w", name, err)
	}
	return ir.Gadget{Name: name, Widgets: w, Functions: f}, nil
}

// InsertGadget creates a gadget. Returns inserted=false without error when a
// gadget with the same name already exists. Widget references are not
// checked here; that is the caller's validation.
func (s *Store) InsertGadget(ctx context.Context, g ir.Gadget) (inserted bool, err error) {
	widgets, functions, err := marshalGadget(g)
	if err != nil {
		return false, fmt.Errorf("insert gadget: %w", err)
	}

	now := s.stamp()
	result, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO gadgets (name, widgets, functions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`), g.Name, widgets, functions, now, now)
	if err != nil {
		return false, fmt.Errorf("insert gadget: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert gadget: rows affected: %w", err)
	}
	return n > 0, nil
}

// PutGadget creates or replaces a gadget.
func (s *Store) PutGadget(ctx context.Context, g ir.Gadget) error {
	widgets, functions, err := marshalGadget(g)
	if err != nil {
		return fmt.Errorf("put gadget: %w", err)
	}

	now := s.stamp()
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO gadgets (name, widgets, functions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			widgets = excluded.widgets,
			functions = excluded.functions,
			updated_at = excluded.updated_at
	`), g.Name, widgets, functions, now, now)
	if err != nil {
		return fmt.Errorf("put gadget: %w", err)
	}
	return nil
}

// UpdateGadget replaces the widgets and functions of an existing gadget.
// Returns found=false when no gadget has that name.
func (s *Store) UpdateGadget(ctx context.Context, g ir.Gadget) (found bool, err error) {
	widgets, functions, err := marshalGadget(g)
	if err != nil {
		return false, fmt.Errorf("update gadget: %w", err)
	}

	result, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE gadgets SET widgets = ?, functions = ?, updated_at = ? WHERE name = ?
	`), widgets, functions, s.stamp(), g.Name)
	if err != nil {
		return false, fmt.Errorf("update gadget: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update gadget: rows affected: %w", err)
	}
	return n > 0, nil
}

// GetGadget retrieves a gadget by name. ok is false if it does not exist.
func (s *Store) GetGadget(ctx context.Context, name string) (ir.Gadget, bool, error) {
	var widgets, functions string
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT widgets, functions FROM gadgets WHERE name = ?
	`), name).Scan(&widgets, &functions)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Gadget{}, false, nil
	}
	if err != nil {
		return ir.Gadget{}, false, fmt.Errorf("get gadget: %w", err)
	}

	g, err := unmarshalGadget(name, widgets, functions)
	if err != nil {
		return ir.Gadget{}, false, fmt.Errorf("get gadget: %w", err)
	}
	return g, true, nil
}

// ListGadgets returns all gadgets ordered by name.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ListGadgets(ctx context.Context) ([]ir.Gadget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, widgets, functions FROM gadgets ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query gadgets: %w", err)
	}
	defer rows.Close()

	gadgets := []ir.Gadget{}
	for rows.Next() {
		var name, widgets, functions string
		if err := rows.Scan(&name, &widgets, &functions); err != nil {
			return nil, fmt.Errorf("scan gadget: %w", err)
		}
		g, err := unmarshalGadget(name, widgets, functions)
		if err != nil {
			return nil, err
		}
		gadgets = append(gadgets, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gadgets: %w", err)
	}
	return gadgets, nil
}

// DeleteGadget removes a gadget. Existing function results are unaffected.
// Returns found=false if it did not exist.
func (s *Store) DeleteGadget(ctx context.Context, name string) (found bool, err error) {
	result, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM gadgets WHERE name = ?`), name)
	if err != nil {
		return false, fmt.Errorf("delete gadget: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete gadget: rows affected: %w", err)
	}
	return n > 0, nil
}
