package catalog

import (
	"strconv"
	"strings"

	"github.com/roach88/gizmo/internal/ir"
)

// sigStrategy renders the gadget document with section markers:
//
//	enc(object) = "{" + key + enc(value) ...
//	enc(list)   = "{" + index + enc(element) ...
//	enc(string) = string, with a backslash before every digit, backslash and "{"
//
// over the fields widgets, functions, name in that order. Widgets appear by
// reference name only; parts never reach the output. There are no closing
// markers. Unescaped digits only ever come from list indices.
//
//	tailx{widgets:[rocket], functions:[sig]} => {widgets{0rocketfunctions{0signametailx
type sigStrategy struct{}

func (sigStrategy) ID() FunctionID { return Sig }

func (sigStrategy) Compute(g ir.ResolvedGadget) string {
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString("widgets")
	writeList(&b, g.WidgetNames())
	b.WriteString("functions")
	writeList(&b, g.Functions)
	b.WriteString("name")
	writeName(&b, g.Name)
	return b.String()
}

func writeList(b *strings.Builder, items []string) {
	b.WriteByte('{')
	for i, item := range items {
		b.WriteString(strconv.Itoa(i))
		writeName(b, item)
	}
}

func writeName(b *strings.Builder, name string) {
	for _, r := range name {
		if (r >= '0' && r <= '9') || r == '\\' || r == '{' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
}
