package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainGadget = "gizmo/gadget/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalObject returns the resolved gadget as a canonical-JSON-ready value:
//
//	{"functions":[...],"name":"...","widgets":[{"name":"...","parts":[...]}]}
//
// Widget order, part order and function order are all preserved.
func (g ResolvedGadget) CanonicalObject() map[string]any {
	widgets := make([]any, len(g.Widgets))
	for i, w := range g.Widgets {
		widgets[i] = map[string]any{
			"name":  w.Name,
			"parts": nonNil(w.Parts),
		}
	}
	return map[string]any{
		"name":      g.Name,
		"widgets":   widgets,
		"functions": nonNil(g.Functions),
	}
}

// GadgetDigest computes the 64-character hex digest of a resolved gadget.
// Stable across runs for identical input; any change to widget order, part
// order or the function list changes it.
func GadgetDigest(g ResolvedGadget) (string, error) {
	canonical, err := MarshalCanonical(g.CanonicalObject())
	if err != nil {
		return "", fmt.Errorf("GadgetDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainGadget, canonical), nil
}

// MustGadgetDigest is like GadgetDigest but panics on error.
// Resolved gadgets hold only strings, so marshaling cannot fail in practice.
func MustGadgetDigest(g ResolvedGadget) string {
	digest, err := GadgetDigest(g)
	if err != nil {
		panic(err)
	}
	return digest
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
