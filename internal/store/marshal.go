package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalList converts an ordered string list to JSON TEXT for storage.
// HTML escaping is disabled so stored text matches what clients sent.
func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return "", fmt.Errorf("marshal list: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalList parses JSON TEXT into an ordered string list.
// Returns an empty (non-nil) slice for empty input.
func unmarshalList(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return []string{}, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("unmarshal list: %w", err)
	}
	return items, nil
}
