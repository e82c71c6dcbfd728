// Package narrow implements the flow-sensitive type-narrowing engine:
// walking a FlowTree backward from a program point to compute a
// variable's refined type, including the condition-flow rules (type()
// guards, literal equality, field discrimination) and ---@cast
// semantics.
package narrow

import "github.com/emmylua-go/semacore/internal/ids"

// DeclOrMemberId holds exactly one of Decl or Member: the owner a
// SelfRef/IndexRef chain starts from.
type DeclOrMemberId struct {
	Decl   *ids.DeclId
	Member *ids.MemberId
}

func FromDecl(d ids.DeclId) DeclOrMemberId     { return DeclOrMemberId{Decl: &d} }
func FromMember(m ids.MemberId) DeclOrMemberId { return DeclOrMemberId{Member: &m} }

func (o DeclOrMemberId) key() interface{} {
	if o.Decl != nil {
		return *o.Decl
	}
	return *o.Member
}

// PathSegment is one fixed access in an IndexRef chain.
type PathSegment struct {
	IsInteger bool
	Name      string
	Integer   int64
}

// VarRefKind discriminates a VarRefId's shape.
type VarRefKind uint8

const (
	VarRefPlain VarRefKind = iota
	VarRefSelf
	VarRefIndex
)

// VarRefId identifies which variable a narrowing walk tracks: a
// plain decl, the bound self, or a fixed dotted/bracketed chain.
type VarRefId struct {
	Kind  VarRefKind
	Decl  ids.DeclId // valid iff Kind == VarRefPlain
	Owner DeclOrMemberId
	Path  []PathSegment // valid iff Kind == VarRefIndex
}

func VarRef(d ids.DeclId) VarRefId          { return VarRefId{Kind: VarRefPlain, Decl: d} }
func SelfRef(owner DeclOrMemberId) VarRefId { return VarRefId{Kind: VarRefSelf, Owner: owner} }
func IndexRef(owner DeclOrMemberId, path []PathSegment) VarRefId {
	return VarRefId{Kind: VarRefIndex, Owner: owner, Path: path}
}

// Equal reports whether two VarRefIds track the same variable.
func (v VarRefId) Equal(o VarRefId) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case VarRefPlain:
		return v.Decl == o.Decl
	case VarRefSelf:
		return v.Owner.key() == o.Owner.key()
	default:
		if v.Owner.key() != o.Owner.key() || len(v.Path) != len(o.Path) {
			return false
		}
		for i := range v.Path {
			if v.Path[i] != o.Path[i] {
				return false
			}
		}
		return true
	}
}

// Position is the source position the tracked variable was introduced
// at, consulted by the narrower's DeclPosition rule.
func (v VarRefId) Position() ids.Position {
	switch v.Kind {
	case VarRefPlain:
		return v.Decl.Pos
	default:
		if v.Owner.Decl != nil {
			return v.Owner.Decl.Pos
		}
		if v.Owner.Member != nil {
			return v.Owner.Member.Node.Range.Start
		}
		return 0
	}
}

// cacheKey returns a comparable value usable as a map key.
func (v VarRefId) cacheKey() interface{} {
	switch v.Kind {
	case VarRefPlain:
		return v.Decl
	case VarRefSelf:
		return [2]interface{}{"self", v.Owner.key()}
	default:
		segs := make([]interface{}, len(v.Path))
		for i, s := range v.Path {
			segs[i] = s
		}
		return [3]interface{}{"index", v.Owner.key(), fmtPath(segs)}
	}
}

func fmtPath(segs []interface{}) string {
	s := ""
	for _, seg := range segs {
		p := seg.(PathSegment)
		if p.IsInteger {
			s += "[" + itoa(p.Integer) + "]"
		} else {
			s += "." + p.Name
		}
	}
	return s
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
