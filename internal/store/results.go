package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/gizmo/internal/ir"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// InsertFunctionResult stores an execution record and returns it with the
// store-assigned identifier (a UUIDv7, time-sortable). A non-empty ID on the
// input is kept as-is. Start is normalized to UTC.
//
// Records are append-only; a duplicate token is an error.
func (s *Store) InsertFunctionResult(ctx context.Context, r ir.FunctionResult) (ir.FunctionResult, error) {
	if r.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return ir.FunctionResult{}, fmt.Errorf("insert function result: generate id: %w", err)
		}
		r.ID = id.String()
	}
	r.Start = r.Start.UTC()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO function_results
		(id, token, name, gadget, output, start, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`),
		r.ID,
		r.Token,
		r.Name,
		r.Gadget,
		r.Output,
		formatTime(r.Start),
		ir.EngineVersion,
	)
	if err != nil {
		return ir.FunctionResult{}, fmt.Errorf("insert function result: %w", err)
	}

	return r, nil
}

// FunctionResultByToken retrieves a record by correlation token.
// ok is false if no record has that token.
func (s *Store) FunctionResultByToken(ctx context.Context, token string) (ir.FunctionResult, bool, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, token, name, gadget, output, start
		FROM function_results
		WHERE token = ?
	`), token)

	r, err := scanFunctionResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.FunctionResult{}, false, nil
	}
	if err != nil {
		return ir.FunctionResult{}, false, fmt.Errorf("get function result: %w", err)
	}
	return r, true, nil
}

// FunctionResultsByGadget returns records for a gadget ordered by
// start ASC, id ASC. A positive limit keeps the newest limit records;
// limit <= 0 means no limit.
// Returns an empty slice (not nil) if none exist.
func (s *Store) FunctionResultsByGadget(ctx context.Context, gadget string, limit int) ([]ir.FunctionResult, error) {
	query := `
		SELECT id, token, name, gadget, output, start
		FROM function_results
		WHERE gadget = ?
		ORDER BY start ASC, id ASC`
	args := []any{gadget}
	if limit > 0 {
		query = `
		SELECT id, token, name, gadget, output, start FROM (
			SELECT id, token, name, gadget, output, start
			FROM function_results
			WHERE gadget = ?
			ORDER BY start DESC, id DESC
			LIMIT ?
		) AS recent
		ORDER BY start ASC, id ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query function results: %w", err)
	}
	defer rows.Close()

	results := []ir.FunctionResult{}
	for rows.Next() {
		r, err := scanFunctionResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate function results: %w", err)
	}
	return results, nil
}

// CountFunctionResults returns the number of stored records.
func (s *Store) CountFunctionResults(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM function_results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count function results: %w", err)
	}
	return n, nil
}

func scanFunctionResult(row scanner) (ir.FunctionResult, error) {
	var r ir.FunctionResult
	var start string
	if err := row.Scan(&r.ID, &r.Token, &r.Name, &r.Gadget, &r.Output, &start); err != nil {
		return ir.FunctionResult{}, err
	}
	t, err := parseTime(start)
	if err != nil {
		return ir.FunctionResult{}, err
	}
	r.Start = t
	return r, nil
}
