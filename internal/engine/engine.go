package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/gizmo/internal/catalog"
	"github.com/roach88/gizmo/internal/ir"
	"github.com/roach88/gizmo/internal/resolver"
)

// Resolver expands a gadget name into a fully resolved gadget.
// Implemented by *resolver.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, gadget string) (ir.ResolvedGadget, error)
}

// RecordStore persists and reads function results.
// Implemented by *store.Store.
type RecordStore interface {
	// InsertFunctionResult stores r and returns it with its identifier assigned.
	InsertFunctionResult(ctx context.Context, r ir.FunctionResult) (ir.FunctionResult, error)

	// FunctionResultByToken returns ok=false when no result has the token.
	FunctionResultByToken(ctx context.Context, token string) (ir.FunctionResult, bool, error)

	// FunctionResultsByGadget returns results ordered by start, id.
	// A positive limit keeps the newest records; limit <= 0 means no limit.
	FunctionResultsByGadget(ctx context.Context, gadget string, limit int) ([]ir.FunctionResult, error)
}

// Engine executes catalog functions against stored gadgets.
//
// Thread-safety: the engine holds no mutable state after construction and is
// safe for concurrent use. Consistency of the persisted records is owned by
// the RecordStore.
type Engine struct {
	resolver Resolver
	records  RecordStore
	tokens   TokenGenerator
	clock    Clock
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTokenGenerator sets the correlation token source.
// Default: UUIDv4Generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) {
		e.tokens = g
	}
}

// WithClock sets the clock used to stamp start times.
// Default: SystemClock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine reading gadgets through res and writing results to
// records.
func New(res Resolver, records RecordStore, opts ...Option) *Engine {
	e := &Engine{
		resolver: res,
		records:  records,
		tokens:   UUIDv4Generator{},
		clock:    SystemClock{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the requested function against the named gadget and persists
// exactly one FunctionResult on success.
//
// Returns an *Error for every domain failure (see package doc for the order
// of checks). Store and context errors are returned wrapped. No record is
// written when an error is returned.
func (e *Engine) Execute(ctx context.Context, req ir.ExecuteRequest) (ir.FunctionResult, error) {
	result, err := e.execute(ctx, req)
	if err != nil {
		if IsDomainError(err) {
			e.logger.Warn("function rejected",
				"function", req.Name,
				"gadget", req.Gadget,
				"code", string(CodeOf(err)),
				"error", err)
		} else {
			e.logger.Error("function failed",
				"function", req.Name,
				"gadget", req.Gadget,
				"error", err)
		}
		return ir.FunctionResult{}, err
	}

	e.logger.Debug("function executed",
		"function", result.Name,
		"gadget", result.Gadget,
		"token", result.Token,
		"id", result.ID)
	return result, nil
}

func (e *Engine) execute(ctx context.Context, req ir.ExecuteRequest) (ir.FunctionResult, error) {
	if err := validateRequest(req); err != nil {
		return ir.FunctionResult{}, err
	}

	gadget, output, err := e.compute(ctx, req.Name, req.Gadget)
	if err != nil {
		return ir.FunctionResult{}, err
	}

	record := ir.FunctionResult{
		Token:  e.tokens.Generate(),
		Name:   req.Name,
		Gadget: gadget.Name,
		Output: output,
		Start:  e.clock.Now(),
	}

	stored, err := e.records.InsertFunctionResult(ctx, record)
	if err != nil {
		return ir.FunctionResult{}, fmt.Errorf("store function result: %w", err)
	}
	return stored, nil
}

// GetByToken returns the stored result for token. The output is returned
// exactly as stored; nothing is recomputed.
func (e *Engine) GetByToken(ctx context.Context, token string) (ir.FunctionResult, error) {
	if token == "" {
		return ir.FunctionResult{}, NewResultNotFoundError(token)
	}
	r, ok, err := e.records.FunctionResultByToken(ctx, token)
	if err != nil {
		return ir.FunctionResult{}, fmt.Errorf("get function result: %w", err)
	}
	if !ok {
		return ir.FunctionResult{}, NewResultNotFoundError(token)
	}
	return r, nil
}

// History returns the newest limit results for gadget, oldest first.
// limit <= 0 returns every result.
func (e *Engine) History(ctx context.Context, gadget string, limit int) ([]ir.FunctionResult, error) {
	if gadget == "" {
		return nil, NewInvalidRequestError("gadget")
	}
	results, err := e.records.FunctionResultsByGadget(ctx, gadget, limit)
	if err != nil {
		return nil, fmt.Errorf("function history for %q: %w", gadget, err)
	}
	return results, nil
}

// compute resolves the gadget and runs the named function without recording
// anything.
func (e *Engine) compute(ctx context.Context, function, gadgetName string) (ir.ResolvedGadget, string, error) {
	gadget, err := e.resolver.Resolve(ctx, gadgetName)
	if err != nil {
		return ir.ResolvedGadget{}, "", translateResolveError(err)
	}

	// A gadget must declare a function even if the catalog implements it.
	if !gadget.Supports(function) {
		return ir.ResolvedGadget{}, "", NewUnsupportedError(function, gadget.Name)
	}

	strategy, ok := catalog.Lookup(function)
	if !ok {
		return ir.ResolvedGadget{}, "", NewUnimplementedError(function, gadget.Name)
	}

	return gadget, strategy.Compute(gadget), nil
}

func validateRequest(req ir.ExecuteRequest) error {
	var missing []string
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.Gadget == "" {
		missing = append(missing, "gadget")
	}
	if len(missing) > 0 {
		return NewInvalidRequestError(missing...)
	}
	return nil
}

// translateResolveError maps resolver misses onto domain errors and wraps
// everything else.
func translateResolveError(err error) error {
	var nf *resolver.NotFoundError
	if errors.As(err, &nf) {
		switch nf.Kind {
		case resolver.KindGadget:
			return NewGadgetNotFoundError(nf.Name)
		case resolver.KindWidget:
			return NewWidgetNotFoundError(nf.Name, nf.Gadget)
		}
	}
	return fmt.Errorf("resolve: %w", err)
}
