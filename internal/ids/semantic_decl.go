package ids

import "fmt"

// SemanticDeclKind discriminates the four observable declaration
// flavors a query can resolve to.
type SemanticDeclKind uint8

const (
	SemanticDeclType SemanticDeclKind = iota
	SemanticDeclMember
	SemanticDeclLua
	SemanticDeclSignature
)

func (k SemanticDeclKind) String() string {
	switch k {
	case SemanticDeclType:
		return "Type"
	case SemanticDeclMember:
		return "Member"
	case SemanticDeclLua:
		return "Lua"
	case SemanticDeclSignature:
		return "Signature"
	default:
		return "Unknown"
	}
}

// SemanticDeclId is the opaque, serializable union returned from
// find_decl: a TypeDecl, Member, (Lua) Decl, or Signature id.
type SemanticDeclId struct {
	Kind      SemanticDeclKind
	Type      TypeDeclId
	Member    MemberId
	Decl      DeclId
	Signature SignatureId
}

func NewTypeDecl(t TypeDeclId) SemanticDeclId {
	return SemanticDeclId{Kind: SemanticDeclType, Type: t}
}

func NewMemberDecl(m MemberId) SemanticDeclId {
	return SemanticDeclId{Kind: SemanticDeclMember, Member: m}
}

func NewLuaDecl(d DeclId) SemanticDeclId {
	return SemanticDeclId{Kind: SemanticDeclLua, Decl: d}
}

func NewSignatureDecl(s SignatureId) SemanticDeclId {
	return SemanticDeclId{Kind: SemanticDeclSignature, Signature: s}
}

// String renders a stable, roundtrippable form: "<kind>:<payload>".
func (s SemanticDeclId) String() string {
	switch s.Kind {
	case SemanticDeclType:
		return "Type:" + s.Type.String()
	case SemanticDeclMember:
		return fmt.Sprintf("Member:%d|%d|%d", s.Member.File, s.Member.Node.Kind, s.Member.Node.Range.Start)
	case SemanticDeclLua:
		return "Lua:" + s.Decl.String()
	case SemanticDeclSignature:
		return "Signature:" + s.Signature.String()
	default:
		return "Unknown"
	}
}
