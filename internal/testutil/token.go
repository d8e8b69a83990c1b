package testutil

import (
	"fmt"
	"sync"
)

// SequenceTokenGenerator generates predictable UUID-shaped tokens.
//
// Tokens have the form "<prefix-24-chars>" + 12-digit counter, e.g. with the
// default prefix the first token is
//
//	00000000-0000-4000-8000-000000000001
//
// so the same scenario with a fresh generator produces byte-identical traces.
// Unlike engine.FixedGenerator it never runs out.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceTokenGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int64
}

// DefaultTokenPrefix is used when NewSequenceTokenGenerator gets "".
const DefaultTokenPrefix = "00000000-0000-4000-8000-"

// NewSequenceTokenGenerator creates a generator with the given 24-character
// prefix. The prefix is typically set in the scenario YAML:
//
//	token: "00000000-0000-4000-8000-"
func NewSequenceTokenGenerator(prefix string) *SequenceTokenGenerator {
	if prefix == "" {
		prefix = DefaultTokenPrefix
	}
	return &SequenceTokenGenerator{prefix: prefix}
}

// Generate returns the next token. Implements engine.TokenGenerator.
func (g *SequenceTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s%012d", g.prefix, g.n)
}
