package engine

import (
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator generates correlation tokens for function results.
// Implemented by UUIDv4Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv4Generator generates random version-4 UUID tokens.
//
// Format: "6f1c2b5e-8a7d-4c3b-9e2f-1a2b3c4d5e6f" (36 characters), matching
// the public token contract [\w]{8}(-[\w]{4}){3}-[\w]{12}.
//
// Thread-safety: UUIDv4Generator is stateless and safe for concurrent use.
type UUIDv4Generator struct{}

// Generate creates a new UUIDv4 and returns it as a hyphenated string.
// Panics if the random source fails (should never happen in practice).
func (UUIDv4Generator) Generate() string {
	return uuid.Must(uuid.NewRandom()).String()
}

// FixedGenerator returns predetermined tokens for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
//
// Example:
//
//	gen := NewFixedGenerator("tok-1", "tok-2")
//	gen.Generate() // "tok-1"
//	gen.Generate() // "tok-2"
//	gen.Generate() // panic: all tokens exhausted
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
//
// Panics if all tokens have been consumed. This is a fail-fast approach
// to catch test misconfiguration.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
