package semantic

import (
	"strings"

	"github.com/emmylua-go/semacore/internal/types"
)

// HumanizeTypeDetailed renders a type for display:
// signatures expand to their fun(...) form, multi-line unions keep
// their per-arm docs, and everything else uses the canonical String.
func (m *SemanticModel) HumanizeTypeDetailed(t types.Type) string {
	if t == nil {
		return "unknown"
	}
	switch v := t.(type) {
	case types.Signature:
		sig, ok := m.Db.Signature.Get(v.Id)
		if !ok || len(sig.Overloads) == 0 {
			return "function"
		}
		parts := make([]string, len(sig.Overloads))
		for i, o := range sig.Overloads {
			parts[i] = m.humanizeFunc(o)
		}
		return strings.Join(parts, "\n")

	case types.DocFunction:
		return m.humanizeFunc(v.Func)

	case types.MultiLineUnion:
		var b strings.Builder
		for i, arm := range v.Arms {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("| ")
			b.WriteString(m.HumanizeTypeDetailed(arm.Type))
			if arm.Doc != nil {
				b.WriteString(" -- ")
				b.WriteString(*arm.Doc)
			}
		}
		return b.String()

	case types.Union:
		parts := make([]string, len(v.Types))
		for i, arm := range v.Types {
			parts[i] = m.HumanizeTypeDetailed(arm)
		}
		return strings.Join(parts, " | ")

	case types.Instance:
		return m.HumanizeTypeDetailed(v.Base)

	case types.Variadic:
		if v.Variadic.IsMulti {
			parts := make([]string, len(v.Variadic.Multi))
			for i, it := range v.Variadic.Multi {
				parts[i] = m.HumanizeTypeDetailed(it)
			}
			return strings.Join(parts, ", ") + "..."
		}
		return m.HumanizeTypeDetailed(v.Variadic.Base) + "..."
	}
	return t.String()
}

func (m *SemanticModel) humanizeFunc(f *types.FunctionType) string {
	var b strings.Builder
	b.WriteString("fun(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		if p.Type != nil {
			b.WriteString(": ")
			b.WriteString(m.HumanizeTypeDetailed(p.Type))
		}
	}
	b.WriteString(")")
	if f.Ret != nil {
		b.WriteString(": ")
		b.WriteString(m.HumanizeTypeDetailed(f.Ret))
	}
	return b.String()
}
