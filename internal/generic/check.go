package generic

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/member"
	"github.com/emmylua-go/semacore/internal/types"
)

// CheckTypeCompact reports whether a value of type a is acceptable
// where b is expected. It is the compatibility relation behind
// Extends(A, B), conditional-type branch selection, overload scoring
// and index-access key matching. Best-effort and permissive:
// inference degrades gracefully and soundness is not a goal, so
// unknown shapes lean toward compatible.
func (e *Engine) CheckTypeCompact(a, b types.Type) bool {
	return e.checkCompact(a, b, member.NewInferGuard())
}

func (e *Engine) checkCompact(a, b types.Type, guard member.InferGuard) bool {
	if a == nil || b == nil {
		return true
	}
	if isAnyUnknown(a) || isAnyUnknown(b) {
		return true
	}
	if types.StructurallyEqual(a, b) {
		return true
	}

	// union on the expected side: any arm accepts
	if ub, ok := b.(types.Union); ok {
		for _, arm := range ub.Types {
			if e.checkCompact(a, arm, guard) {
				return true
			}
		}
		return false
	}
	// union on the value side: every arm must be acceptable
	if ua, ok := a.(types.Union); ok {
		for _, arm := range ua.Types {
			if !e.checkCompact(arm, b, guard) {
				return false
			}
		}
		return true
	}

	if mb, ok := b.(types.MultiLineUnion); ok {
		return e.checkCompact(a, mb.ToUnion(), guard)
	}
	if ma, ok := a.(types.MultiLineUnion); ok {
		return e.checkCompact(ma.ToUnion(), b, guard)
	}

	// aliases unfold on either side; the shared guard stops
	// self-referential aliases from unfolding forever
	if ua := e.UnfoldAlias(a, guard); !types.StructurallyEqual(ua, a) {
		return e.checkCompact(ua, b, guard)
	}
	if ub := e.UnfoldAlias(b, guard); !types.StructurallyEqual(ub, b) {
		return e.checkCompact(a, ub, guard)
	}

	switch bt := b.(type) {
	case types.Primitive:
		return e.checkAgainstPrimitive(a, bt)
	case types.BooleanConst, types.IntegerConst, types.FloatConst, types.StringConst:
		return constsCompatible(a, b)
	case types.Array:
		return e.checkAgainstArray(a, bt, guard)
	case types.Tuple:
		at, ok := a.(types.Tuple)
		if !ok || len(at.Items) < len(bt.Items) {
			return false
		}
		for i := range bt.Items {
			if !e.checkCompact(at.Items[i], bt.Items[i], guard) {
				return false
			}
		}
		return true
	case types.TableGeneric:
		ak, av, ok := e.tableKeyValue(a, &MatchCtx{guard: guard})
		if !ok || len(bt.Params) != 2 {
			return false
		}
		return e.checkCompact(ak, bt.Params[0], guard) && e.checkCompact(av, bt.Params[1], guard)
	case types.Object:
		return e.checkAgainstObject(a, bt, guard)
	case types.Ref:
		return e.checkAgainstNamed(a, bt.Decl, guard)
	case types.Def:
		return e.checkAgainstNamed(a, bt.Decl, guard)
	case types.Generic:
		ag, ok := a.(types.Generic)
		if ok && ag.Base == bt.Base && len(ag.Params) == len(bt.Params) {
			for i := range bt.Params {
				if !e.checkCompact(ag.Params[i], bt.Params[i], guard) {
					return false
				}
			}
			return true
		}
		return e.checkAgainstNamed(a, bt.Base, guard)
	case types.DocFunction:
		return isFunctionShaped(a)
	case types.Signature:
		return isFunctionShaped(a)
	case types.TplRef:
		if bt.Tpl.Constraint != nil {
			return e.checkCompact(a, bt.Tpl.Constraint, guard)
		}
		return true
	case types.ConstTplRef:
		if bt.Tpl.Constraint != nil {
			return e.checkCompact(a, bt.Tpl.Constraint, guard)
		}
		return true
	}
	return false
}

func isAnyUnknown(t types.Type) bool {
	p, ok := t.(types.Primitive)
	return ok && (p.Kind == types.Any || p.Kind == types.Unknown)
}

func isFunctionShaped(t types.Type) bool {
	switch v := t.(type) {
	case types.DocFunction, types.Signature:
		return true
	case types.Primitive:
		return v.Kind == types.Function
	}
	return false
}

func (e *Engine) checkAgainstPrimitive(a types.Type, b types.Primitive) bool {
	switch at := a.(type) {
	case types.Primitive:
		if at.Kind == b.Kind {
			return true
		}
		// integers are numbers
		return at.Kind == types.Integer && b.Kind == types.Number
	case types.BooleanConst:
		return b.Kind == types.Boolean
	case types.IntegerConst:
		return b.Kind == types.Integer || b.Kind == types.Number
	case types.FloatConst:
		return b.Kind == types.Number
	case types.StringConst:
		return b.Kind == types.String
	case types.Array, types.Tuple, types.Object, types.TableGeneric, types.Instance:
		return b.Kind == types.Table
	case types.Ref, types.Def, types.Generic:
		return b.Kind == types.Table
	case types.DocFunction, types.Signature:
		return b.Kind == types.Function
	}
	return false
}

func constsCompatible(a, b types.Type) bool {
	// a literal expectation accepts only that literal; handled by the
	// structural-equality fast path, so anything reaching here differs
	return false
}

func (e *Engine) checkAgainstArray(a types.Type, b types.Array, guard member.InferGuard) bool {
	switch at := a.(type) {
	case types.Array:
		return e.checkCompact(at.Base, b.Base, guard)
	case types.Tuple:
		for _, it := range at.Items {
			if !e.checkCompact(it, b.Base, guard) {
				return false
			}
		}
		return true
	}
	return false
}

func (e *Engine) checkAgainstObject(a types.Type, b types.Object, guard member.InferGuard) bool {
	lookup := func(k types.MemberKey) (types.Type, bool) {
		switch at := a.(type) {
		case types.Object:
			t, ok := at.Fields[k]
			return t, ok
		case types.Ref:
			return e.Db.Member.Resolved(index.TypeMemberOwner(at.Decl), k)
		case types.Def:
			return e.Db.Member.Resolved(index.TypeMemberOwner(at.Decl), k)
		case types.Instance:
			return e.Db.Member.Resolved(index.ElementMemberOwner(at.File, at.Range), k)
		}
		return nil, false
	}
	for k, bv := range b.Fields {
		av, ok := lookup(k)
		if !ok {
			if nilable(bv) {
				continue
			}
			return false
		}
		if !e.checkCompact(av, bv, guard) {
			return false
		}
	}
	return true
}

func nilable(t types.Type) bool {
	if p, ok := t.(types.Primitive); ok && p.Kind == types.Nil {
		return true
	}
	if u, ok := t.(types.Union); ok {
		for _, arm := range u.Types {
			if p, ok := arm.(types.Primitive); ok && p.Kind == types.Nil {
				return true
			}
		}
	}
	return false
}

// checkAgainstNamed accepts a when a names the same type or declares
// it (transitively) as a super.
func (e *Engine) checkAgainstNamed(a types.Type, b ids.TypeDeclId, guard member.InferGuard) bool {
	var aId ids.TypeDeclId
	switch at := a.(type) {
	case types.Ref:
		aId = at.Decl
	case types.Def:
		aId = at.Decl
	case types.Generic:
		aId = at.Base
	case types.Instance:
		return e.checkCompact(at.Base, types.Ref{Decl: b}, guard)
	default:
		return false
	}
	if aId == b {
		return true
	}
	// the super walk gets its own visited set so an alias unfold above
	// can't shadow part of the chain
	return e.isSubClassOf(aId, b, member.NewInferGuard())
}

func (e *Engine) isSubClassOf(sub, super ids.TypeDeclId, guard member.InferGuard) bool {
	if guard[sub] {
		return false
	}
	guard[sub] = true
	decl, ok := e.typeDeclOf(sub)
	if !ok {
		return false
	}
	for _, s := range decl.Supers {
		var sid ids.TypeDeclId
		switch sv := s.(type) {
		case types.Ref:
			sid = sv.Decl
		case types.Generic:
			sid = sv.Base
		default:
			continue
		}
		if sid == super || e.isSubClassOf(sid, super, guard) {
			return true
		}
	}
	return false
}
