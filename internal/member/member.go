// Package member implements the member resolver: dispatch by prefix
// type, index-access key matching, and the recursion guard shared
// with the generic engine's supertype walks.
package member

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/types"
)

// InferGuard is the recursion guard carried on every traversal: a set
// of TypeDeclIds already visited on this resolution path, preventing
// cycles through supers/aliases.
type InferGuard map[ids.TypeDeclId]bool

func NewInferGuard() InferGuard { return InferGuard{} }

func (g InferGuard) visit(id ids.TypeDeclId) bool {
	if g[id] {
		return false
	}
	g[id] = true
	return true
}

// Resolver looks members up against a *index.DbIndex's Type/Member/
// Global indexes.
type Resolver struct {
	Types   *index.TypeIndex
	Members *index.MemberIndex
	Globals *index.GlobalIndex
	Decls   *index.DeclIndex
}

func New(types *index.TypeIndex, members *index.MemberIndex, globals *index.GlobalIndex, decls *index.DeclIndex) *Resolver {
	return &Resolver{Types: types, Members: members, Globals: globals, Decls: decls}
}

// Result is the outcome of a member resolution.
type Result struct {
	Type   types.Type
	Member *index.Member
}

// ResolveOnPrefix resolves key against the prefix type t, dispatching
// on the prefix's shape.
func (r *Resolver) ResolveOnPrefix(t types.Type, key types.MemberKey, guard InferGuard) (Result, bool) {
	if guard == nil {
		guard = NewInferGuard()
	}
	switch p := t.(type) {
	case types.Object:
		return r.resolveObject(p, key, guard)
	case types.Ref:
		return r.resolveNamed(p.Decl, key, guard)
	case types.Def:
		return r.resolveNamed(p.Decl, key, guard)
	case types.Generic:
		return r.resolveGeneric(p, key, guard)
	case types.Primitive:
		return r.resolveBuiltin(p.Kind, key, guard)
	case types.StringConst:
		return r.resolveBuiltin(types.String, key, guard)
	case types.Union:
		for _, alt := range p.Types {
			if res, ok := r.ResolveOnPrefix(alt, key, guard); ok {
				return res, true
			}
		}
		return Result{}, false
	case types.Intersection:
		for _, alt := range p.Types {
			if res, ok := r.ResolveOnPrefix(alt, key, guard); ok {
				return res, true
			}
		}
		return Result{}, false
	case types.Instance:
		if res, ok := r.ResolveOnPrefix(p.Base, key, guard); ok {
			return res, true
		}
		return r.resolveElement(p.File, p.Range, key, guard)
	case types.ModuleRef:
		return r.resolveModuleRef(p, key, guard)
	}
	return Result{}, false
}

func (r *Resolver) resolveObject(o types.Object, key types.MemberKey, guard InferGuard) (Result, bool) {
	if ty, ok := o.Fields[key]; ok {
		return Result{Type: ty}, true
	}
	for _, entry := range o.IndexAccess {
		if checkTypeCompact(entry.Key, key) {
			return Result{Type: entry.Value}, true
		}
	}
	return Result{}, false
}

func (r *Resolver) resolveElement(file ids.FileId, rng ids.Range, key types.MemberKey, guard InferGuard) (Result, bool) {
	owner := index.ElementMemberOwner(file, rng)
	if m, ok := r.lookupOwner(owner, key); ok {
		return m, true
	}
	return Result{}, false
}

// resolveNamed walks t's own members, then, if unresolved, its
// declared supers depth-first, visiting each class at most once,
// resolving an alias's origin and retrying on alias targets.
func (r *Resolver) resolveNamed(id ids.TypeDeclId, key types.MemberKey, guard InferGuard) (Result, bool) {
	if !guard.visit(id) {
		return Result{}, false
	}
	decl, ok := r.Types.TypeDeclOf(id)
	if !ok {
		return Result{}, false
	}
	if decl.Kind == index.TypeAlias {
		if decl.AliasOrigin != nil {
			return r.ResolveOnPrefix(decl.AliasOrigin, key, guard)
		}
		return Result{}, false
	}

	owner := index.TypeMemberOwner(id)
	if m, ok := r.lookupOwner(owner, key); ok {
		return m, true
	}
	for _, super := range decl.Supers {
		if ref, ok := super.(types.Ref); ok {
			if res, ok := r.resolveNamed(ref.Decl, key, guard); ok {
				return res, true
			}
		}
	}
	return Result{}, false
}

func (r *Resolver) lookupOwner(owner index.MemberOwner, key types.MemberKey) (Result, bool) {
	ty, ok := r.Members.Resolved(owner, key)
	if !ok {
		return Result{}, false
	}
	ms := r.Members.Members(owner, key)
	var m *index.Member
	if len(ms) > 0 {
		m = ms[0]
	}
	return Result{Type: ty, Member: m}, true
}

// resolveGeneric resolves against g's base named type. Full parameter
// substitution across an entire type tree is internal/generic's job
// ; here we only need to know which keys exist on the
// base declaration, which does not depend on substituted argument
// positions.
func (r *Resolver) resolveGeneric(g types.Generic, key types.MemberKey, guard InferGuard) (Result, bool) {
	return r.resolveNamed(g.Base, key, guard)
}

func (r *Resolver) resolveBuiltin(kind types.PrimitiveKind, key types.MemberKey, guard InferGuard) (Result, bool) {
	id, ok := builtinTypeDeclId(kind)
	if !ok {
		return Result{}, false
	}
	return r.resolveNamed(id, key, guard)
}

// builtinTypeDeclId maps a primitive kind to the standard-workspace
// TypeDeclId carrying its builtin member table (e.g. "string" methods
// in the std workspace namespace); string-like and io prefixes map
// to these and recurse.
func builtinTypeDeclId(kind types.PrimitiveKind) (ids.TypeDeclId, bool) {
	switch kind {
	case types.String:
		return ids.NewTypeDeclId("std", "string"), true
	case types.Io:
		return ids.NewTypeDeclId("std", "io"), true
	}
	return ids.TypeDeclId{}, false
}

func (r *Resolver) resolveModuleRef(m types.ModuleRef, key types.MemberKey, guard InferGuard) (Result, bool) {
	// Resolution against a module's export_type is delegated to the
	// semantic model, which knows the current DbIndex's ModuleIndex; this
	// package only has Types/Members/Globals/Decls, so a ModuleRef whose
	// export type isn't already reified as an Object/Ref is unresolvable
	// here and simply fails.
	return Result{}, false
}

// checkTypeCompact is a lightweight structural compatibility check
// used only to decide whether an index-access entry's key type could
// accept the lookup key; it does not perform full type-checking.
func checkTypeCompact(keyType types.Type, key types.MemberKey) bool {
	switch key.Kind {
	case types.MemberKeyName, types.MemberKeyExprType:
		p, ok := keyType.(types.Primitive)
		return ok && p.Kind == types.String
	case types.MemberKeyInteger:
		p, ok := keyType.(types.Primitive)
		return ok && (p.Kind == types.Integer || p.Kind == types.Number)
	}
	return false
}

// ResolveGlobal resolves a bare-name reference that has no in-scope
// local decl, against the global index.
func (r *Resolver) ResolveGlobal(name string) ([]*index.Decl, bool) {
	declIds := r.Globals.Get(name)
	if len(declIds) == 0 {
		return nil, false
	}
	out := make([]*index.Decl, 0, len(declIds))
	for _, id := range declIds {
		if d, ok := r.Decls.Decl(id); ok {
			out = append(out, d)
		}
	}
	return out, len(out) > 0
}
