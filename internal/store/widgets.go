package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/gizmo/internal/ir"
)

// InsertWidget creates a widget. Returns inserted=false without error when a
// widget with the same name already exists.
func (s *Store) InsertWidget(ctx context.Context, w ir.Widget) (inserted bool, err error) {
	parts, err := marshalList(w.Parts)
	if err != nil {
		return false, fmt.Errorf("insert widget: %w", err)
	}

	now := s.stamp()
	result, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO widgets (name, parts, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`), w.Name, parts, now, now)
	if err != nil {
		return false, fmt.Errorf("insert widget: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert widget: rows affected: %w", err)
	}
	return n > 0, nil
}

// PutWidget creates or replaces a widget.
func (s *Store) PutWidget(ctx context.Context, w ir.Widget) error {
	parts, err := marshalList(w.Parts)
	if err != nil {
		return fmt.Errorf("put widget: %w", err)
	}

	now := s.stamp()
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO widgets (name, parts, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET parts = excluded.parts, updated_at = excluded.updated_at
	`), w.Name, parts, now, now)
	if err != nil {
		return fmt.Errorf("put widget: %w", err)
	}
	return nil
}

// UpdateWidget replaces the parts of an existing widget.
// Returns found=false when no widget has that name.
func (s *Store) UpdateWidget(ctx context.Context, w ir.Widget) (found bool, err error) {
	parts, err := marshalList(w.Parts)
	if err != nil {
		return false, fmt.Errorf("update widget: %w", err)
	}

	result, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE widgets SET parts = ?, updated_at = ? WHERE name = ?
	`), parts, s.stamp(), w.Name)
	if err != nil {
		return false, fmt.Errorf("update widget: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update widget: rows affected: %w", err)
	}
	return n > 0, nil
}

// GetWidget retrieves a widget by name. ok is false if it does not exist.
func (s *Store) GetWidget(ctx context.Context, name string) (ir.Widget, bool, error) {
	var parts string
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT parts FROM widgets WHERE name = ?
	`), name).Scan(&parts)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Widget{}, false, nil
	}
	if err != nil {
		return ir.Widget{}, false, fmt.Errorf("get widget: %w", err)
	}

	list, err := unmarshalList(parts)
	if err != nil {
		return ir.Widget{}, false, fmt.Errorf("get widget %q: %w", name, err)
	}
	return ir.Widget{Name: name, Parts: list}, true, nil
}

// ListWidgets returns all widgets ordered by name.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ListWidgets(ctx context.Context) ([]ir.Widget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, parts FROM widgets ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query widgets: %w", err)
	}
	defer rows.Close()

	widgets := []ir.Widget{}
	for rows.Next() {
		var name, parts string
		if err := rows.Scan(&name, &parts); err != nil {
			return nil, fmt.Errorf("scan widget: %w", err)
		}
		list, err := unmarshalList(parts)
		if err != nil {
			return nil, fmt.Errorf("widget %q: %w", name, err)
		}
		widgets = append(widgets, ir.Widget{Name: name, Parts: list})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate widgets: %w", err)
	}
	return widgets, nil
}

// DeleteWidget removes a widget. Gadgets referencing it are left untouched;
// they fail resolution on next use. Returns found=false if it did not exist.
func (s *Store) DeleteWidget(ctx context.Context, name string) (found bool, err error) {
	result, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM widgets WHERE name = ?`), name)
	if err != nil {
		return false, fmt.Errorf("delete widget: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete widget: rows affected: %w", err)
	}
	return n > 0, nil
}
