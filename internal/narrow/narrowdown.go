package narrow

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/types"
)

// TypeDeclLookup is the slice of the type index NarrowDownType needs:
// enum detection and super-chain walking.
type TypeDeclLookup interface {
	TypeDeclOf(ids.TypeDeclId) (*index.TypeDecl, bool)
}

// NarrowDownType returns the strongest subtype of source compatible
// with target. The boolean result distinguishes a
// successful narrowing from "no compatible subtype"; notably a Table
// target against an enum ref yields none rather than the source.
func NarrowDownType(source, target types.Type, decls TypeDeclLookup) (types.Type, bool) {
	if source == nil || target == nil {
		return source, source != nil
	}
	if p, ok := target.(types.Primitive); ok && (p.Kind == types.Any || p.Kind == types.Unknown) {
		return source, true
	}
	if p, ok := source.(types.Primitive); ok && (p.Kind == types.Any || p.Kind == types.Unknown) {
		return target, true
	}
	if types.StructurallyEqual(source, target) {
		return source, true
	}

	if u, ok := source.(types.Union); ok {
		var kept []types.Type
		for _, arm := range u.Types {
			if narrowed, ok := NarrowDownType(arm, target, decls); ok {
				kept = append(kept, narrowed)
			}
		}
		if len(kept) == 0 {
			return nil, false
		}
		return types.NewUnion(kept), true
	}
	if u, ok := target.(types.Union); ok {
		var kept []types.Type
		for _, arm := range u.Types {
			if narrowed, ok := NarrowDownType(source, arm, decls); ok {
				kept = append(kept, narrowed)
			}
		}
		if len(kept) == 0 {
			return nil, false
		}
		return types.NewUnion(kept), true
	}

	if tp, ok := target.(types.Primitive); ok {
		return narrowToPrimitive(source, tp, decls)
	}

	// literal target against its base source folds to the literal
	if base := literalBase(target); base != nil {
		if sp, ok := source.(types.Primitive); ok && primCompatible(sp.Kind, base.Kind) {
			return target, true
		}
		return nil, false
	}

	// class-vs-class uses the subtype relation both ways
	sid, sIsNamed := namedId(source)
	tid, tIsNamed := namedId(target)
	if sIsNamed && tIsNamed {
		if sid == tid {
			return source, true
		}
		if isSubClass(sid, tid, decls, map[ids.TypeDeclId]bool{}) {
			return source, true
		}
		if isSubClass(tid, sid, decls, map[ids.TypeDeclId]bool{}) {
			return target, true
		}
		return nil, false
	}

	if sa, ok := source.(types.Array); ok {
		if ta, ok := target.(types.Array); ok {
			if base, ok := NarrowDownType(sa.Base, ta.Base, decls); ok {
				ln := sa.Len
				if ta.Len.Kind == types.ArrayLenMax {
					ln = ta.Len
				}
				return types.Array{Base: base, Len: ln}, true
			}
			return nil, false
		}
	}

	return nil, false
}

func narrowToPrimitive(source types.Type, target types.Primitive, decls TypeDeclLookup) (types.Type, bool) {
	switch s := source.(type) {
	case types.Primitive:
		if s.Kind == target.Kind {
			return source, true
		}
		// atoms fold: number narrowed to integer is integer
		if s.Kind == types.Number && target.Kind == types.Integer {
			return target, true
		}
		if s.Kind == types.Integer && target.Kind == types.Number {
			return source, true
		}
		if target.Kind == types.Table {
			return nil, false
		}
		return nil, false
	case types.BooleanConst:
		if target.Kind == types.Boolean {
			return source, true
		}
	case types.IntegerConst:
		if target.Kind == types.Integer || target.Kind == types.Number {
			return source, true
		}
	case types.FloatConst:
		if target.Kind == types.Number {
			return source, true
		}
	case types.StringConst:
		if target.Kind == types.String {
			return source, true
		}
	case types.Array, types.Tuple, types.Generic, types.Object, types.TableGeneric, types.Instance:
		if target.Kind == types.Table {
			return source, true
		}
	case types.Ref:
		if target.Kind == types.Table {
			return narrowRefToTable(s.Decl, source, decls)
		}
	case types.Def:
		if target.Kind == types.Table {
			return narrowRefToTable(s.Decl, source, decls)
		}
	case types.DocFunction, types.Signature:
		if target.Kind == types.Function {
			return source, true
		}
	}
	return nil, false
}

// narrowRefToTable keeps a class ref under a table narrowing. An enum
// ref yields none, as does a class whose super chain contains
// userdata; enum values behave as their literal payloads here, not as
// tables.
func narrowRefToTable(id ids.TypeDeclId, source types.Type, decls TypeDeclLookup) (types.Type, bool) {
	decl, ok := decls.TypeDeclOf(id)
	if !ok {
		return source, true
	}
	if decl.Kind == index.TypeEnum {
		return nil, false
	}
	if superChainHasUserdata(id, decls, map[ids.TypeDeclId]bool{}) {
		return nil, false
	}
	return source, true
}

func superChainHasUserdata(id ids.TypeDeclId, decls TypeDeclLookup, seen map[ids.TypeDeclId]bool) bool {
	if seen[id] {
		return false
	}
	seen[id] = true
	decl, ok := decls.TypeDeclOf(id)
	if !ok {
		return false
	}
	for _, s := range decl.Supers {
		if p, ok := s.(types.Primitive); ok && p.Kind == types.Userdata {
			return true
		}
		if sid, ok := namedId(s); ok && superChainHasUserdata(sid, decls, seen) {
			return true
		}
	}
	return false
}

func namedId(t types.Type) (ids.TypeDeclId, bool) {
	switch v := t.(type) {
	case types.Ref:
		return v.Decl, true
	case types.Def:
		return v.Decl, true
	case types.Generic:
		return v.Base, true
	}
	return ids.TypeDeclId{}, false
}

func isSubClass(sub, super ids.TypeDeclId, decls TypeDeclLookup, seen map[ids.TypeDeclId]bool) bool {
	if seen[sub] {
		return false
	}
	seen[sub] = true
	decl, ok := decls.TypeDeclOf(sub)
	if !ok {
		return false
	}
	for _, s := range decl.Supers {
		sid, ok := namedId(s)
		if !ok {
			continue
		}
		if sid == super || isSubClass(sid, super, decls, seen) {
			return true
		}
	}
	return false
}

func literalBase(t types.Type) *types.Primitive {
	switch t.(type) {
	case types.BooleanConst:
		return &types.Primitive{Kind: types.Boolean}
	case types.IntegerConst:
		return &types.Primitive{Kind: types.Integer}
	case types.FloatConst:
		return &types.Primitive{Kind: types.Number}
	case types.StringConst:
		return &types.Primitive{Kind: types.String}
	}
	return nil
}

func primCompatible(source, targetBase types.PrimitiveKind) bool {
	if source == targetBase {
		return true
	}
	return source == types.Number && targetBase == types.Integer
}
