package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func devel() ResolvedGadget {
	return ResolvedGadget{
		Name:      "devel",
		Widgets:   []Widget{{Name: "spring", Parts: []string{"hub", "wheel"}}},
		Functions: []string{"hash"},
	}
}

func TestResolvedGadgetCanonicalJSON(t *testing.T) {
	data, err := MarshalCanonical(devel().CanonicalObject())
	require.NoError(t, err)
	assert.Equal(t,
		`{"functions":["hash"],"name":"devel","widgets":[{"name":"spring","parts":["hub","wheel"]}]}`,
		string(data))
}

func TestGadgetDigestReference(t *testing.T) {
	digest, err := GadgetDigest(devel())
	require.NoError(t, err)
	assert.Equal(t, "c57dbcafc0e0882b057066d6c7d5d228badc33bdcc1c3b3c3ea16a07b143e24b", digest)
	assert.Len(t, digest, 64, "SHA-256 hex is 64 characters")
}

func TestGadgetDigestDeterminism(t *testing.T) {
	assert.Equal(t, MustGadgetDigest(devel()), MustGadgetDigest(devel()))
}

func TestGadgetDigestChangesWithInput(t *testing.T) {
	base := MustGadgetDigest(devel())

	swappedParts := devel()
	swappedParts.Widgets[0].Parts = []string{"wheel", "hub"}

	extraFunction := devel()
	extraFunction.Functions = []string{"hash", "sig"}

	renamed := devel()
	renamed.Name = "devel2"

	twoWidgets := devel()
	twoWidgets.Widgets = append(twoWidgets.Widgets, Widget{Name: "rocket", Parts: []string{"spoke"}})
	swappedWidgets := devel()
	swappedWidgets.Widgets = []Widget{twoWidgets.Widgets[1], twoWidgets.Widgets[0]}

	assert.NotEqual(t, base, MustGadgetDigest(swappedParts), "part order must change the digest")
	assert.NotEqual(t, base, MustGadgetDigest(extraFunction), "function set must change the digest")
	assert.NotEqual(t, base, MustGadgetDigest(renamed), "gadget name must change the digest")
	assert.NotEqual(t, MustGadgetDigest(twoWidgets), MustGadgetDigest(swappedWidgets), "widget order must change the digest")
}

func TestGadgetDigestNilSlicesMatchEmpty(t *testing.T) {
	withNil := ResolvedGadget{Name: "g", Widgets: []Widget{{Name: "w"}}}
	withEmpty := ResolvedGadget{Name: "g", Widgets: []Widget{{Name: "w", Parts: []string{}}}, Functions: []string{}}
	assert.Equal(t, MustGadgetDigest(withEmpty), MustGadgetDigest(withNil))
}
