package catalog

import (
	"github.com/roach88/gizmo/internal/ir"
)

// hashStrategy returns the hex SHA-256 digest of the resolved gadget's
// canonical JSON form. See ir.GadgetDigest.
type hashStrategy struct{}

func (hashStrategy) ID() FunctionID { return Hash }

func (hashStrategy) Compute(g ir.ResolvedGadget) string {
	return ir.MustGadgetDigest(g)
}
