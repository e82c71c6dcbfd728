// Package index implements the code database: the
// coordinated, per-axis indexes that are the single source of truth
// every query consults. Each index is file-scoped, supports bulk
// removal by FileId, and is mutated only during analysis of one file
// at a time.
package index

import (
	"github.com/emmylua-go/semacore/internal/ids"
)

// LocalAttrib is a local variable's <const>/<close> attribute.
type LocalAttrib uint8

const (
	AttribNone LocalAttrib = iota
	AttribConst
	AttribClose
	AttribIterConst
)

// DeclKind discriminates a Local from a Param/ImplicitSelf/Global.
type DeclKind uint8

const (
	DeclLocal DeclKind = iota
	DeclParam
	DeclImplicitSelf
	DeclGlobal
)

// GlobalKind further classifies a Global decl (assignment vs. an
// implicit read-only builtin); kept minimal since the core treats both
// identically for lookup purposes.
type GlobalKind uint8

const (
	GlobalAssign GlobalKind = iota
	GlobalBuiltin
)

// Decl is a local binding, parameter, or global.
type Decl struct {
	Name   string
	File   ids.FileId
	Range  ids.Range
	ExprId *ids.SyntaxId // nil if none

	Kind DeclKind

	// Local
	LocalAttrib LocalAttrib

	// Param
	ParamIdx      int
	SignatureId   ids.SignatureId
	OwnerMemberId *ids.MemberId

	// ImplicitSelf
	SelfKind string // "instance-method", "static"

	// Global
	GlobalKind GlobalKind
}

func (d *Decl) Id() ids.DeclId { return ids.DeclId{File: d.File, Pos: d.Range.Start} }

// ScopeKind discriminates the syntactic construct a scope covers.
type ScopeKind uint8

const (
	ScopeNormal ScopeKind = iota
	ScopeRepeat
	ScopeLocalOrAssignStat
	ScopeForRange
	ScopeFuncStat
	ScopeMethodStat
)

// ScopeOrDeclKind discriminates one entry of Scope.Children.
type ScopeOrDeclKind uint8

const (
	EntryScope ScopeOrDeclKind = iota
	EntryDecl
)

// ScopeEntry is one child of a Scope: either a nested Scope or a Decl,
// ordered by source position.
type ScopeEntry struct {
	Kind  ScopeOrDeclKind
	Scope ids.ScopeId
	Decl  ids.DeclId
	Pos   ids.Position
}

// Scope is a lexical scope.
type Scope struct {
	Id       ids.ScopeId
	Parent   *ids.ScopeId
	Children []ScopeEntry
	Range    ids.Range
	Kind     ScopeKind
}

// DeclarationTree is one file's scope tree plus its decls, mutated only
// during analysis of that file.
type DeclarationTree struct {
	File   ids.FileId
	Scopes []Scope
	Decls  map[ids.DeclId]*Decl
}

func newDeclarationTree(file ids.FileId) *DeclarationTree {
	root := Scope{Id: ids.ScopeId{File: file, Idx: 0}, Range: ids.Range{Start: 0, End: ^ids.Position(0)}}
	return &DeclarationTree{File: file, Scopes: []Scope{root}, Decls: map[ids.DeclId]*Decl{}}
}

// RootScope returns the file-wide root scope id (always index 0).
func (t *DeclarationTree) RootScope() ids.ScopeId { return t.Scopes[0].Id }

// NewScope appends a child scope under parent and returns its id.
func (t *DeclarationTree) NewScope(parent ids.ScopeId, rng ids.Range, kind ScopeKind) ids.ScopeId {
	idx := uint32(len(t.Scopes))
	id := ids.ScopeId{File: t.File, Idx: idx}
	t.Scopes = append(t.Scopes, Scope{Id: id, Parent: &parent, Range: rng, Kind: kind})
	p := &t.Scopes[parent.Idx]
	p.Children = append(p.Children, ScopeEntry{Kind: EntryScope, Scope: id, Pos: rng.Start})
	return id
}

// AddDecl appends d to scope's children, recording its start
// position, and records it in Decls.
func (t *DeclarationTree) AddDecl(scope ids.ScopeId, d *Decl) {
	t.Decls[d.Id()] = d
	s := &t.Scopes[scope.Idx]
	s.Children = append(s.Children, ScopeEntry{Kind: EntryDecl, Decl: d.Id(), Pos: d.Range.Start})
}

func (t *DeclarationTree) scopeAt(s ids.ScopeId) *Scope { return &t.Scopes[s.Idx] }

// innermostScope returns the innermost scope containing pos.
func (t *DeclarationTree) innermostScope(pos ids.Position) ids.ScopeId {
	cur := t.RootScope()
	for {
		s := t.scopeAt(cur)
		advanced := false
		for _, c := range s.Children {
			if c.Kind != EntryScope {
				continue
			}
			child := t.scopeAt(c.Scope)
			if child.Range.Contains(pos) || child.Range.Start == pos {
				cur = c.Scope
				advanced = true
				break
			}
		}
		if !advanced {
			return cur
		}
	}
}

// FindLocalDecl resolves a name reference at pos: innermost scope
// containing pos, then walk child entries before pos in
// reverse, ascending to the parent when exhausted. Special cases at
// level-0 entry: a LocalOrAssignStat scope skips its own decls (a
// binding cannot refer to itself from its value expressions) and a
// ForRange scope skips straight to the parent (iterator variables are
// invisible to the header expressions). Repeat scopes hold their body
// decls directly, so the until condition sees them by ordering alone.
func (t *DeclarationTree) FindLocalDecl(name string, pos ids.Position) (*Decl, bool) {
	scope := t.innermostScope(pos)
	level := 0
	for {
		s := t.scopeAt(scope)
		skip := level == 0 && (s.Kind == ScopeLocalOrAssignStat || s.Kind == ScopeForRange)
		if !skip {
			for i := len(s.Children) - 1; i >= 0; i-- {
				c := s.Children[i]
				if c.Pos >= pos {
					continue
				}
				if d, ok := t.findInEntry(c, name, pos); ok {
					return d, true
				}
			}
		}
		if s.Parent == nil {
			return nil, false
		}
		scope = *s.Parent
		level++
	}
}

// findInEntry matches one scope child: a decl directly, or, for a
// LocalOrAssignStat child scope, the decls it introduced, which are
// visible to everything after the statement.
func (t *DeclarationTree) findInEntry(c ScopeEntry, name string, pos ids.Position) (*Decl, bool) {
	switch c.Kind {
	case EntryDecl:
		d := t.Decls[c.Decl]
		if d != nil && d.Name == name {
			return d, true
		}
	case EntryScope:
		child := t.scopeAt(c.Scope)
		if child.Kind != ScopeLocalOrAssignStat || child.Range.Contains(pos) {
			return nil, false
		}
		for i := len(child.Children) - 1; i >= 0; i-- {
			cc := child.Children[i]
			if cc.Kind != EntryDecl || cc.Pos >= pos {
				continue
			}
			d := t.Decls[cc.Decl]
			if d != nil && d.Name == name {
				return d, true
			}
		}
	}
	return nil, false
}

// DeclIndex stores one DeclarationTree per file.
type DeclIndex struct {
	trees map[ids.FileId]*DeclarationTree
}

func NewDeclIndex() *DeclIndex { return &DeclIndex{trees: map[ids.FileId]*DeclarationTree{}} }

// Tree returns (creating if absent) the DeclarationTree for file.
func (idx *DeclIndex) Tree(file ids.FileId) *DeclarationTree {
	t, ok := idx.trees[file]
	if !ok {
		t = newDeclarationTree(file)
		idx.trees[file] = t
	}
	return t
}

func (idx *DeclIndex) Get(file ids.FileId) (*DeclarationTree, bool) {
	t, ok := idx.trees[file]
	return t, ok
}

func (idx *DeclIndex) Remove(file ids.FileId) { delete(idx.trees, file) }
func (idx *DeclIndex) Clear()                 { idx.trees = map[ids.FileId]*DeclarationTree{} }

// Decl looks up a decl anywhere it's indexed, given its DeclId.
func (idx *DeclIndex) Decl(id ids.DeclId) (*Decl, bool) {
	t, ok := idx.trees[id.File]
	if !ok {
		return nil, false
	}
	d, ok := t.Decls[id]
	return d, ok
}
