package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/gizmo/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestResult creates a function result with minimal required fields.
func createTestResult(token, gadget string, start time.Time) ir.FunctionResult {
	return ir.FunctionResult{
		Token:  token,
		Name:   "sig",
		Gadget: gadget,
		Output: "{widgets{0rocketfunctions{0signame" + gadget,
		Start:  start,
	}
}
