package engine

import (
	"context"

	"github.com/roach88/gizmo/internal/ir"
)

// ReplayResult compares a stored result with a fresh computation over the
// current inventory.
type ReplayResult struct {
	Stored     ir.FunctionResult `json:"stored"`
	Recomputed string            `json:"recomputed"`
	Match      bool              `json:"match"`
}

// Replay recomputes the function recorded under token against the gadget as
// it is stored now. Functions are pure, so a mismatch means the gadget or
// one of its widgets changed after the result was recorded. Nothing is
// written.
//
// Returns RESULT_NOT_FOUND for an unknown token, and the usual resolution
// errors when the gadget can no longer be computed.
func (e *Engine) Replay(ctx context.Context, token string) (ReplayResult, error) {
	stored, err := e.GetByToken(ctx, token)
	if err != nil {
		return ReplayResult{}, err
	}

	_, output, err := e.compute(ctx, stored.Name, stored.Gadget)
	if err != nil {
		return ReplayResult{}, err
	}

	res := ReplayResult{
		Stored:     stored,
		Recomputed: output,
		Match:      output == stored.Output,
	}
	if !res.Match {
		e.logger.Info("replay drift",
			"token", token,
			"function", stored.Name,
			"gadget", stored.Gadget)
	}
	return res, nil
}
