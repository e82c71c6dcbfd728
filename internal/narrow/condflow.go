package narrow

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/syntax"
	"github.com/emmylua-go/semacore/internal/types"
)

// conditionApply refines v's type under one condition expression with
// the given polarity. handled=false means the condition
// shape says nothing about v and the walk falls through to the
// antecedent.
func (e *Engine) conditionApply(v VarRefId, cond syntax.Expression, truthy bool, ant ids.FlowId) (types.Type, bool, error) {
	switch c := cond.(type) {
	case *syntax.ParenExpr:
		return e.conditionApply(v, c.Inner, truthy, ant)

	case *syntax.UnaryExpr:
		if c.Op == syntax.OpNot {
			return e.conditionApply(v, c.Operand, !truthy, ant)
		}

	case *syntax.NameExpr, *syntax.IndexExpr:
		if ref, ok := e.P.ExprVarRef(cond); ok && ref.Equal(v) {
			prev, err := e.TypeAt(v, ant)
			if err != nil {
				return nil, true, err
			}
			if truthy {
				return RemoveFalseOrNil(prev), true, nil
			}
			return NarrowFalseOrNil(prev), true, nil
		}
		if ix, ok := cond.(*syntax.IndexExpr); ok {
			return e.indexCondition(v, ix, truthy, ant)
		}

	case *syntax.BinaryExpr:
		switch c.Op {
		case syntax.OpEq, syntax.OpNe:
			eq := c.Op == syntax.OpEq
			if !eq {
				truthy = !truthy
			}
			return e.equalityCondition(v, c.Left, c.Right, truthy, ant)
		case syntax.OpGe, syntax.OpGt, syntax.OpLe, syntax.OpLt:
			return e.lengthCondition(v, c, truthy, ant)
		case syntax.OpAnd:
			if truthy {
				// both operands held: refine through each in turn
				return e.conjunction(v, c.Left, c.Right, ant)
			}
		case syntax.OpOr:
			if !truthy {
				// neither operand held
				return e.disjunctionFalse(v, c.Left, c.Right, ant)
			}
		}

	case *syntax.CallExpr:
		return e.callCondition(v, c, truthy, ant)
	}
	return nil, false, nil
}

func (e *Engine) conjunction(v VarRefId, left, right syntax.Expression, ant ids.FlowId) (types.Type, bool, error) {
	lt, lh, err := e.conditionApply(v, left, true, ant)
	if err != nil {
		return nil, true, err
	}
	rt, rh, err := e.conditionApply(v, right, true, ant)
	if err != nil {
		return nil, true, err
	}
	switch {
	case lh && rh:
		return types.TypeOpsIntersect(lt, rt), true, nil
	case lh:
		return lt, true, nil
	case rh:
		return rt, true, nil
	}
	return nil, false, nil
}

func (e *Engine) disjunctionFalse(v VarRefId, left, right syntax.Expression, ant ids.FlowId) (types.Type, bool, error) {
	lt, lh, err := e.conditionApply(v, left, false, ant)
	if err != nil {
		return nil, true, err
	}
	rt, rh, err := e.conditionApply(v, right, false, ant)
	if err != nil {
		return nil, true, err
	}
	switch {
	case lh && rh:
		return types.TypeOpsIntersect(lt, rt), true, nil
	case lh:
		return lt, true, nil
	case rh:
		return rt, true, nil
	}
	return nil, false, nil
}

// equalityCondition dispatches the `==`-family rules, already
// normalized so truthy means "the equality held".
func (e *Engine) equalityCondition(v VarRefId, left, right syntax.Expression, truthy bool, ant ids.FlowId) (types.Type, bool, error) {
	// try both operand orders
	if t, handled, err := e.equalityOriented(v, left, right, truthy, ant); handled {
		return t, handled, err
	}
	return e.equalityOriented(v, right, left, truthy, ant)
}

func (e *Engine) equalityOriented(v VarRefId, subject, probe syntax.Expression, truthy bool, ant ids.FlowId) (types.Type, bool, error) {
	// type(x) == "literal"
	if call, ok := callOf(subject); ok && e.P.IsTypeBuiltin(call.Callee) && len(call.Args) == 1 {
		lit, ok := stringLiteral(probe)
		if !ok {
			return nil, false, nil
		}
		ref, ok := e.P.ExprVarRef(call.Args[0])
		if !ok || !ref.Equal(v) {
			return nil, false, nil
		}
		prim, ok := primitiveForTypeName(lit)
		if !ok {
			return nil, false, nil
		}
		prev, err := e.TypeAt(v, ant)
		if err != nil {
			return nil, true, err
		}
		if truthy {
			if narrowed, ok := NarrowDownType(prev, prim, e.Decls); ok {
				return narrowed, true, nil
			}
			return prim, true, nil
		}
		return types.TypeOpsRemove(prev, prim), true, nil
	}

	// literal equality on v itself
	if ref, ok := e.P.ExprVarRef(subject); ok && ref.Equal(v) {
		lit, ok := literalType(probe)
		if !ok {
			return nil, false, nil
		}
		prev, err := e.TypeAt(v, ant)
		if err != nil {
			return nil, true, err
		}
		if truthy {
			if v.Kind == VarRefSelf {
				// self keeps its identity; the literal match only strips nil
				return types.TypeOpsRemove(prev, types.P(types.Nil)), true, nil
			}
			return types.TypeOpsIntersect(prev, lit), true, nil
		}
		return types.TypeOpsRemove(prev, lit), true, nil
	}

	// field literal equality: obj.k == "lit" discriminates obj's union
	if ix, ok := subject.(*syntax.IndexExpr); ok && ix.KeyKind == syntax.IndexKeyDot {
		if ref, ok := e.P.ExprVarRef(ix.Prefix); ok && ref.Equal(v) {
			lit, ok := literalType(probe)
			if !ok {
				return nil, false, nil
			}
			prev, err := e.TypeAt(v, ant)
			if err != nil {
				return nil, true, err
			}
			return e.discriminateByField(prev, ix.Name, lit, truthy)
		}
	}

	// #arr == n refines an unknown-length array
	if un, ok := subject.(*syntax.UnaryExpr); ok && un.Op == syntax.OpHash {
		return e.lengthEquality(v, un, probe, truthy, ant, 0)
	}

	return nil, false, nil
}

// discriminateByField picks (or removes) the union arms whose member
// name has a constant type equal to lit.
func (e *Engine) discriminateByField(prev types.Type, name string, lit types.Type, keepMatching bool) (types.Type, bool, error) {
	arms := unionArms(e.P.ResolveToUnion(prev))
	if arms == nil {
		return nil, false, nil
	}
	var kept []types.Type
	for _, arm := range arms {
		mt, ok := e.P.MemberTypeOf(arm, types.NameKey(name))
		matches := ok && constEqual(mt, lit)
		if matches == keepMatching {
			kept = append(kept, arm)
		}
	}
	if len(kept) == 0 {
		return types.P(types.Never), true, nil
	}
	return types.NewUnion(kept), true, nil
}

// constEqual compares two literal-constant types by value regardless
// of doc/inferred origin.
func constEqual(a, b types.Type) bool {
	switch av := a.(type) {
	case types.StringConst:
		bv, ok := b.(types.StringConst)
		return ok && av.Value == bv.Value
	case types.IntegerConst:
		bv, ok := b.(types.IntegerConst)
		return ok && av.Value == bv.Value
	case types.BooleanConst:
		bv, ok := b.(types.BooleanConst)
		return ok && av.Value == bv.Value
	case types.FloatConst:
		bv, ok := b.(types.FloatConst)
		return ok && av.Value == bv.Value
	}
	return types.StructurallyEqual(a, b)
}

// lengthCondition handles `#arr >= n` / `#arr > n` orderings.
func (e *Engine) lengthCondition(v VarRefId, c *syntax.BinaryExpr, truthy bool, ant ids.FlowId) (types.Type, bool, error) {
	un, ok := c.Left.(*syntax.UnaryExpr)
	var probe syntax.Expression = c.Right
	bump := int64(0)
	if ok && un.Op == syntax.OpHash {
		if c.Op == syntax.OpGt {
			bump = 1
		}
		if !truthy || (c.Op != syntax.OpGe && c.Op != syntax.OpGt) {
			return nil, false, nil
		}
		return e.lengthEquality(v, un, probe, true, ant, bump)
	}
	return nil, false, nil
}

func (e *Engine) lengthEquality(v VarRefId, un *syntax.UnaryExpr, probe syntax.Expression, truthy bool, ant ids.FlowId, bump int64) (types.Type, bool, error) {
	if !truthy {
		return nil, false, nil
	}
	ref, ok := e.P.ExprVarRef(un.Operand)
	if !ok || !ref.Equal(v) {
		return nil, false, nil
	}
	lit, ok := probe.(*syntax.LiteralExpr)
	if !ok || lit.Kind != syntax.LiteralInt {
		return nil, false, nil
	}
	prev, err := e.TypeAt(v, ant)
	if err != nil {
		return nil, true, err
	}
	if arr, ok := prev.(types.Array); ok && arr.Len.Kind == types.ArrayLenUnknown {
		n := lit.Int + bump
		if n > 0 {
			return types.Array{Base: arr.Base, Len: types.ArrayLen{Kind: types.ArrayLenMax, Max: n}}, true, nil
		}
	}
	return nil, false, nil
}

// callCondition handles a bare call as a condition: type-guard
// returns, declared signature casts, and raw-get results.
func (e *Engine) callCondition(v VarRefId, call *syntax.CallExpr, truthy bool, ant ids.FlowId) (types.Type, bool, error) {
	ret, ok := e.P.CallReturn(call)
	if !ok {
		return nil, false, nil
	}

	if guard, isGuard := ret.(types.TypeGuard); isGuard {
		if len(call.Args) == 0 {
			return nil, false, nil
		}
		ref, ok := e.P.ExprVarRef(call.Args[0])
		if !ok || !ref.Equal(v) {
			return nil, false, nil
		}
		prev, err := e.TypeAt(v, ant)
		if err != nil {
			return nil, true, err
		}
		if truthy {
			return guard.Inner, true, nil
		}
		return types.TypeOpsRemove(prev, guard.Inner), true, nil
	}

	// a signature-declared cast on a named parameter or self
	if sig, ok := e.P.CalleeSignature(call); ok {
		if t, handled, err := e.signatureCastCondition(v, call, sig.Id, truthy, ant); handled {
			return t, handled, err
		}
	}

	// rawget-style member probes narrow the variable itself truthily
	if c, isCall := ret.(types.Call); isCall && c.Kind == types.CallRawGet {
		if ref, ok := e.P.ExprVarRef(call); ok && ref.Equal(v) {
			prev, err := e.TypeAt(v, ant)
			if err != nil {
				return nil, true, err
			}
			if truthy {
				return RemoveFalseOrNil(prev), true, nil
			}
			return NarrowFalseOrNil(prev), true, nil
		}
	}
	return nil, false, nil
}

func (e *Engine) signatureCastCondition(v VarRefId, call *syntax.CallExpr, sig ids.SignatureId, truthy bool, ant ids.FlowId) (types.Type, bool, error) {
	flowIdx := e.sigCasts
	if flowIdx == nil {
		return nil, false, nil
	}
	for i, arg := range call.Args {
		ref, ok := e.P.ExprVarRef(arg)
		if !ok || !ref.Equal(v) {
			continue
		}
		castTy, ok := flowIdx(sig, i)
		if !ok {
			continue
		}
		prev, err := e.TypeAt(v, ant)
		if err != nil {
			return nil, true, err
		}
		if truthy {
			if narrowed, ok := NarrowDownType(prev, castTy, e.Decls); ok {
				return narrowed, true, nil
			}
			return castTy, true, nil
		}
		return types.TypeOpsRemove(prev, castTy), true, nil
	}
	return nil, false, nil
}

// SetSignatureCasts wires the signature cast cache lookup into the
// condition rules.
func (e *Engine) SetSignatureCasts(lookup func(ids.SignatureId, int) (types.Type, bool)) {
	e.sigCasts = lookup
}

// indexCondition filters a union-typed prefix by whether the indexed
// member is always falsy.
func (e *Engine) indexCondition(v VarRefId, ix *syntax.IndexExpr, truthy bool, ant ids.FlowId) (types.Type, bool, error) {
	ref, ok := e.P.ExprVarRef(ix.Prefix)
	if !ok || !ref.Equal(v) {
		return nil, false, nil
	}
	key, ok := indexKey(ix)
	if !ok {
		return nil, false, nil
	}
	prev, err := e.TypeAt(v, ant)
	if err != nil {
		return nil, true, err
	}
	arms := unionArms(e.P.ResolveToUnion(prev))
	if arms == nil {
		return nil, false, nil
	}
	var kept []types.Type
	for _, arm := range arms {
		mt, found := e.P.MemberTypeOf(arm, key)
		falsy := !found || AlwaysFalsy(mt)
		if falsy != truthy {
			kept = append(kept, arm)
		}
	}
	if len(kept) == 0 {
		return types.P(types.Never), true, nil
	}
	return types.NewUnion(kept), true, nil
}

func indexKey(ix *syntax.IndexExpr) (types.MemberKey, bool) {
	switch ix.KeyKind {
	case syntax.IndexKeyDot:
		return types.NameKey(ix.Name), true
	case syntax.IndexKeyBracket:
		if lit, ok := ix.Key.(*syntax.LiteralExpr); ok {
			switch lit.Kind {
			case syntax.LiteralString:
				return types.NameKey(lit.Str), true
			case syntax.LiteralInt:
				return types.IntegerKey(lit.Int), true
			}
		}
	}
	return types.MemberKey{}, false
}

// --- falsy/truthy helpers ---

// RemoveFalseOrNil strips nil and literal false from t, the truthy
// branch of a bare reference condition.
func RemoveFalseOrNil(t types.Type) types.Type {
	out := types.TypeOpsRemove(t, types.P(types.Nil))
	return types.TypeOpsRemove(out, types.BooleanConst{Value: false})
}

// NarrowFalseOrNil keeps only the nil-or-false portion of t, the falsy
// branch of a bare reference condition.
func NarrowFalseOrNil(t types.Type) types.Type {
	falsy := types.NewUnion([]types.Type{types.P(types.Nil), types.BooleanConst{Value: false}})
	return types.TypeOpsIntersect(t, falsy)
}

// AlwaysFalsy reports whether every value of t is falsy in Lua.
func AlwaysFalsy(t types.Type) bool {
	switch v := t.(type) {
	case types.Primitive:
		return v.Kind == types.Nil || v.Kind == types.Never
	case types.BooleanConst:
		return !v.Value
	case types.Union:
		for _, arm := range v.Types {
			if !AlwaysFalsy(arm) {
				return false
			}
		}
		return true
	}
	return false
}

func unionArms(t types.Type) []types.Type {
	switch v := t.(type) {
	case types.Union:
		return v.Types
	case types.MultiLineUnion:
		if u, ok := v.ToUnion().(types.Union); ok {
			return u.Types
		}
	}
	return nil
}

func callOf(e syntax.Expression) (*syntax.CallExpr, bool) {
	c, ok := e.(*syntax.CallExpr)
	return c, ok
}

func stringLiteral(e syntax.Expression) (string, bool) {
	lit, ok := e.(*syntax.LiteralExpr)
	if !ok || lit.Kind != syntax.LiteralString {
		return "", false
	}
	return lit.Str, true
}

func literalType(e syntax.Expression) (types.Type, bool) {
	lit, ok := e.(*syntax.LiteralExpr)
	if !ok {
		return nil, false
	}
	switch lit.Kind {
	case syntax.LiteralNil:
		return types.P(types.Nil), true
	case syntax.LiteralTrue:
		return types.BooleanConst{Value: true}, true
	case syntax.LiteralFalse:
		return types.BooleanConst{Value: false}, true
	case syntax.LiteralInt:
		return types.IntegerConst{Value: lit.Int}, true
	case syntax.LiteralFloat:
		return types.FloatConst{Value: lit.Flt}, true
	case syntax.LiteralString:
		return types.StringConst{Value: lit.Str}, true
	}
	return nil, false
}

func primitiveForTypeName(name string) (types.Type, bool) {
	switch name {
	case "nil":
		return types.P(types.Nil), true
	case "boolean":
		return types.P(types.Boolean), true
	case "number":
		return types.P(types.Number), true
	case "string":
		return types.P(types.String), true
	case "table":
		return types.P(types.Table), true
	case "function":
		return types.P(types.Function), true
	case "thread":
		return types.P(types.Thread), true
	case "userdata":
		return types.P(types.Userdata), true
	}
	return nil, false
}
