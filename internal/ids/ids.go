// Package ids defines the stable, serializable handles used throughout
// the semantic core: FileId, Position, Range, SyntaxId, DeclId,
// MemberId, SignatureId, TypeDeclId, OperatorId, GenericTplId, ScopeId
// and FlowId. All are small comparable value types so they can be used
// directly as map keys.
package ids

import (
	"fmt"
	"strconv"
	"strings"
)

// FileId is a unique small integer assigned by the VFS on first
// observation of a file. It is never reused after removal within a
// session.
type FileId uint32

func (f FileId) String() string { return strconv.FormatUint(uint64(f), 10) }

// Position is a byte offset within a file's source text.
type Position uint32

// Range is a half-open (Start, End) byte range.
type Range struct {
	Start Position
	End   Position
}

func (r Range) Contains(p Position) bool { return p >= r.Start && p < r.End }

func (r Range) String() string { return fmt.Sprintf("%d..%d", r.Start, r.End) }

// Overlaps reports whether r and o share at least one byte.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// SyntaxKind discriminates CST node classes; concrete values are owned
// by package syntax, not here, to keep ids free of a dependency on the
// parser contract.
type SyntaxKind uint16

// SyntaxId identifies a CST node within one file.
type SyntaxId struct {
	Kind  SyntaxKind
	Range Range
}

// DeclId is the start position of the name that introduces a local
// binding, parameter, or global.
type DeclId struct {
	File FileId
	Pos  Position
}

func (d DeclId) String() string {
	return fmt.Sprintf("%d|%d", d.File, d.Pos)
}

// ParseDeclId parses the "<file_id>|<position>" form produced by
// DeclId.String.
func ParseDeclId(s string) (DeclId, error) {
	file, pos, err := splitPair(s)
	if err != nil {
		return DeclId{}, fmt.Errorf("ids: parse DeclId %q: %w", s, err)
	}
	return DeclId{File: FileId(file), Pos: Position(pos)}, nil
}

// MemberId is a table field, doc field, or class field, identified by
// the syntax node that declares it.
type MemberId struct {
	File FileId
	Node SyntaxId
}

// SignatureId is the start of a function-defining closure, or of a doc
// fun(...) type.
type SignatureId struct {
	File FileId
	Pos  Position
}

func (s SignatureId) String() string {
	return fmt.Sprintf("%d|%d", s.File, s.Pos)
}

// ParseSignatureId parses the "<file_id>|<position>" form produced by
// SignatureId.String.
func ParseSignatureId(s string) (SignatureId, error) {
	file, pos, err := splitPair(s)
	if err != nil {
		return SignatureId{}, fmt.Errorf("ids: parse SignatureId %q: %w", s, err)
	}
	return SignatureId{File: FileId(file), Pos: Position(pos)}, nil
}

// TypeDeclId is an interned dotted name: namespace + local name. Type
// identity is by this name, not by the file that declared it.
type TypeDeclId struct {
	Namespace string
	Name      string
}

func NewTypeDeclId(namespace, name string) TypeDeclId {
	return TypeDeclId{Namespace: namespace, Name: name}
}

func (t TypeDeclId) String() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// ParseTypeDeclId parses a dotted name back into namespace + local name,
// splitting at the last dot (namespaces may themselves contain dots).
func ParseTypeDeclId(s string) TypeDeclId {
	idx := strings.LastIndexByte(s, '.')
	if idx < 0 {
		return TypeDeclId{Name: s}
	}
	return TypeDeclId{Namespace: s[:idx], Name: s[idx+1:]}
}

// OperatorId is a metamethod or operator-override site.
type OperatorId struct {
	File FileId
	Pos  Position
}

// GenericTplKind distinguishes a class/alias-scoped template parameter
// from a function-scoped one.
type GenericTplKind uint8

const (
	GenericTplType GenericTplKind = iota
	GenericTplFunc
)

// GenericTplId identifies a generic template parameter by its
// declaration index within its owning class/alias or function.
type GenericTplId struct {
	Kind  GenericTplKind
	Index uint32
}

func (g GenericTplId) String() string {
	if g.Kind == GenericTplFunc {
		return fmt.Sprintf("Func(%d)", g.Index)
	}
	return fmt.Sprintf("Type(%d)", g.Index)
}

// ScopeId indexes into a file's scope vector.
type ScopeId struct {
	File FileId
	Idx  uint32
}

// FlowId indexes into a file's flow-node vector.
type FlowId uint32

const InvalidFlowId FlowId = ^FlowId(0)

func splitPair(s string) (uint64, uint64, error) {
	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"file|pos\" form")
	}
	file, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	pos, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	return file, pos, nil
}
