package generic

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/member"
	"github.com/emmylua-go/semacore/internal/types"
)

// MatchCtx carries call-site context the matcher occasionally needs:
// whether the call being matched is the standard library's pairs
// function (identified by name and std workspace, never generalized to
// other functions named pairs.
type MatchCtx struct {
	StdPairs bool
	guard    member.InferGuard
}

func (c *MatchCtx) ensureGuard() member.InferGuard {
	if c.guard == nil {
		c.guard = member.NewInferGuard()
	}
	return c.guard
}

// PatternMatch learns template bindings by structurally unifying
// pattern against target. Unresolved templates stay
// unbound and fall back to their constraint at substitution time;
// there is no fixed-point iteration.
func (e *Engine) PatternMatch(pattern, target types.Type, sub *Substitutor, ctx *MatchCtx) {
	if pattern == nil || target == nil {
		return
	}
	if ctx == nil {
		ctx = &MatchCtx{}
	}
	switch p := pattern.(type) {
	case types.TplRef:
		sub.Bind(p.Tpl.Id, TypeValue(target))

	case types.ConstTplRef:
		sub.BindRaw(p.Tpl.Id, TypeValue(target))

	case types.StrTplRef:
		if s, ok := target.(types.StringConst); ok {
			sub.BindRaw(p.TplId, TypeValue(types.StringConst{Value: p.Prefix + s.Value + p.Suffix}))
		}

	case types.Array:
		e.matchArray(p, target, sub, ctx)

	case types.TableGeneric:
		e.matchTableGeneric(p, target, sub, ctx)

	case types.Generic:
		e.matchGeneric(p, target, sub, ctx)

	case types.DocFunction:
		if ft, ok := e.funcTypeOf(target); ok {
			e.matchFunc(p.Func, ft, sub, ctx)
		}

	case types.Tuple:
		e.matchTuple(p, target, sub, ctx)

	case types.Union:
		// Try arms in declared source order; the first arm that binds
		// without error wins.
		for _, arm := range p.Types {
			before := len(sub.values)
			e.PatternMatch(arm, target, sub, ctx)
			if len(sub.values) > before {
				return
			}
		}

	case types.Object:
		e.matchObject(p, target, sub, ctx)

	case types.Variadic:
		if !p.Variadic.IsMulti {
			e.PatternMatch(p.Variadic.Base, target, sub, ctx)
		}
	}
}

// matchArray recurses on element bases, casting the target down to an
// array base where it has one.
func (e *Engine) matchArray(p types.Array, target types.Type, sub *Substitutor, ctx *MatchCtx) {
	switch t := target.(type) {
	case types.Array:
		e.PatternMatch(p.Base, t.Base, sub, ctx)
	case types.Tuple:
		if len(t.Items) > 0 {
			e.PatternMatch(p.Base, types.NewUnion(t.Items), sub, ctx)
		}
	case types.Object:
		var vals []types.Type
		for k, v := range t.Fields {
			if k.Kind == types.MemberKeyInteger {
				vals = append(vals, v)
			}
		}
		if len(vals) > 0 {
			e.PatternMatch(p.Base, types.NewUnion(vals), sub, ctx)
		}
	}
}

// matchTableGeneric derives a key union and value union from the
// target and matches table<K, V> element-wise. For
// pairs calls, the iterator's return types from a __pairs metamethod
// take precedence when present.
func (e *Engine) matchTableGeneric(p types.TableGeneric, target types.Type, sub *Substitutor, ctx *MatchCtx) {
	if len(p.Params) != 2 {
		return
	}
	if ctx.StdPairs {
		if k, v, ok := e.pairsIteratorTypes(target); ok {
			e.PatternMatch(p.Params[0], k, sub, ctx)
			e.PatternMatch(p.Params[1], v, sub, ctx)
			return
		}
	}
	key, value, ok := e.tableKeyValue(target, ctx)
	if !ok {
		return
	}
	e.PatternMatch(p.Params[0], key, sub, ctx)
	e.PatternMatch(p.Params[1], value, sub, ctx)
}

// pairsIteratorTypes consults a __pairs operator on the target's
// owner and, when declared, extracts the iterator function's return
// pair.
func (e *Engine) pairsIteratorTypes(target types.Type) (types.Type, types.Type, bool) {
	var owner index.MemberOwner
	switch t := target.(type) {
	case types.Ref:
		owner = index.TypeMemberOwner(t.Decl)
	case types.Def:
		owner = index.TypeMemberOwner(t.Decl)
	case types.Generic:
		owner = index.TypeMemberOwner(t.Base)
	default:
		return nil, nil, false
	}
	ops := e.Db.Operator.Get(owner, "__pairs")
	if len(ops) == 0 {
		return nil, nil, false
	}
	var fn *types.FunctionType
	op := ops[0]
	switch op.Func.Kind {
	case index.OperatorFuncInline:
		fn = op.Func.Inline
	case index.OperatorFuncSignature:
		if sig, ok := e.Db.Signature.Get(op.Func.Signature); ok && len(sig.Overloads) > 0 {
			fn = sig.Overloads[0]
		}
	}
	if fn == nil || fn.Ret == nil {
		return nil, nil, false
	}
	// __pairs returns the iterator function; the iterator's own return
	// pair is the (key, value) sequence pairs() yields.
	iter := fn.Ret
	if vr, ok := iter.(types.Variadic); ok && vr.Variadic.IsMulti && len(vr.Variadic.Multi) > 0 {
		iter = vr.Variadic.Multi[0]
	}
	iterFn, ok := e.funcTypeOf(iter)
	if !ok || iterFn.Ret == nil {
		return nil, nil, false
	}
	if vr, ok := iterFn.Ret.(types.Variadic); ok && vr.Variadic.IsMulti && len(vr.Variadic.Multi) >= 2 {
		return vr.Variadic.Multi[0], vr.Variadic.Multi[1], true
	}
	return iterFn.Ret, types.P(types.Any), true
}

// TableKeyValue exposes the key/value union derivation for callers
// typing iteration constructs (pairs/ipairs inference).
func (e *Engine) TableKeyValue(t types.Type) (types.Type, types.Type, bool) {
	return e.tableKeyValue(t, &MatchCtx{})
}

// tableKeyValue derives the (key, value) unions of any table-bearing
// target shape.
func (e *Engine) tableKeyValue(target types.Type, ctx *MatchCtx) (types.Type, types.Type, bool) {
	switch t := target.(type) {
	case types.Array:
		return types.P(types.Integer), t.Base, true
	case types.Tuple:
		if len(t.Items) == 0 {
			return types.P(types.Integer), types.P(types.Unknown), true
		}
		return types.P(types.Integer), types.NewUnion(t.Items), true
	case types.TableGeneric:
		if len(t.Params) == 2 {
			return t.Params[0], t.Params[1], true
		}
	case types.Object:
		var keys, vals []types.Type
		for k, v := range t.Fields {
			switch k.Kind {
			case types.MemberKeyName:
				keys = append(keys, types.StringConst{Value: k.Name})
			case types.MemberKeyInteger:
				keys = append(keys, types.IntegerConst{Value: k.Integer})
			}
			vals = append(vals, v)
		}
		for _, a := range t.IndexAccess {
			keys = append(keys, a.Key)
			vals = append(vals, a.Value)
		}
		if len(keys) > 0 {
			return types.NewUnion(keys), types.NewUnion(vals), true
		}
	case types.Ref:
		return e.namedKeyValue(t.Decl, ctx)
	case types.Def:
		return e.namedKeyValue(t.Decl, ctx)
	case types.Generic:
		return e.namedKeyValue(t.Base, ctx)
	case types.Instance:
		if k, v, ok := e.tableKeyValue(t.Base, ctx); ok {
			return k, v, ok
		}
		return e.elementKeyValue(index.ElementMemberOwner(t.File, t.Range))
	case types.Primitive:
		switch t.Kind {
		case types.Global, types.Any, types.Table, types.Userdata:
			return types.P(types.Any), types.P(types.Any), true
		}
	}
	return nil, nil, false
}

func (e *Engine) namedKeyValue(id ids.TypeDeclId, ctx *MatchCtx) (types.Type, types.Type, bool) {
	decl, ok := e.typeDeclOf(id)
	if !ok {
		return nil, nil, false
	}
	if decl.Kind == index.TypeAlias && decl.AliasOrigin != nil {
		guard := ctx.ensureGuard()
		if !guard[id] {
			guard[id] = true
			return e.tableKeyValue(decl.AliasOrigin, ctx)
		}
		return nil, nil, false
	}
	return e.elementKeyValueFromMembers(e.Db.Member.AllMembers(index.TypeMemberOwner(id)))
}

func (e *Engine) elementKeyValue(owner index.MemberOwner) (types.Type, types.Type, bool) {
	return e.elementKeyValueFromMembers(e.Db.Member.AllMembers(owner))
}

func (e *Engine) elementKeyValueFromMembers(ms []*index.Member) (types.Type, types.Type, bool) {
	if len(ms) == 0 {
		return nil, nil, false
	}
	var keys, vals []types.Type
	for _, m := range ms {
		switch m.Key.Kind {
		case types.MemberKeyName:
			keys = append(keys, types.StringConst{Value: m.Key.Name})
		case types.MemberKeyInteger:
			keys = append(keys, types.IntegerConst{Value: m.Key.Integer})
		case types.MemberKeyExprType:
			keys = append(keys, m.Key.Expr)
		}
		vals = append(vals, m.Type)
	}
	return types.NewUnion(keys), types.NewUnion(vals), true
}

// matchGeneric matches Generic(B, ps) against the target: same base
// means pairwise parameter matching (a variadic tail eats the rest);
// otherwise the target's supers and alias origin are walked.
func (e *Engine) matchGeneric(p types.Generic, target types.Type, sub *Substitutor, ctx *MatchCtx) {
	switch t := target.(type) {
	case types.Generic:
		if t.Base == p.Base {
			e.matchParamsPairwise(p.Params, t.Params, sub, ctx)
			return
		}
		e.matchViaSupers(p, types.Type(t), t.Base, sub, ctx)
	case types.Ref:
		e.matchViaSupers(p, target, t.Decl, sub, ctx)
	case types.Def:
		e.matchViaSupers(p, target, t.Decl, sub, ctx)
	}
}

func (e *Engine) matchParamsPairwise(patterns, targets []types.Type, sub *Substitutor, ctx *MatchCtx) {
	for i, pat := range patterns {
		if vr, ok := pat.(types.Variadic); ok && !vr.Variadic.IsMulti {
			if tpl, ok := vr.Variadic.Base.(types.TplRef); ok && i < len(targets) {
				sub.Bind(tpl.Tpl.Id, MultiTypesValue(targets[i:]))
				return
			}
		}
		if i < len(targets) {
			e.PatternMatch(pat, targets[i], sub, ctx)
		}
	}
}

func (e *Engine) matchViaSupers(p types.Generic, target types.Type, targetBase ids.TypeDeclId, sub *Substitutor, ctx *MatchCtx) {
	guard := ctx.ensureGuard()
	decl, ok := e.typeDeclOf(targetBase)
	if !ok {
		return
	}
	if decl.Kind == index.TypeAlias && decl.AliasOrigin != nil {
		unfolded := e.UnfoldAlias(target, guard)
		if !types.StructurallyEqual(unfolded, target) {
			e.PatternMatch(p, unfolded, sub, ctx)
		}
		return
	}
	if guard[targetBase] {
		return
	}
	guard[targetBase] = true
	for _, super := range decl.Supers {
		e.PatternMatch(p, super, sub, ctx)
	}
}

// matchFunc matches parameter lists with colon-self normalization (a
// synthetic `self: any` is inserted when the two sides disagree), then
// return pairs; a variadic parameter or return consumes the tail
// .
func (e *Engine) matchFunc(pattern, target *types.FunctionType, sub *Substitutor, ctx *MatchCtx) {
	pParams := normalizeSelf(pattern, target)
	tParams := normalizeSelf(target, pattern)

	ti := 0
	for pi := 0; pi < len(pParams); pi++ {
		pp := pParams[pi]
		if vr, ok := pp.Type.(types.Variadic); ok && !vr.Variadic.IsMulti {
			if tpl, ok := vr.Variadic.Base.(types.TplRef); ok {
				rest := tParams[min(ti, len(tParams)):]
				sub.Bind(tpl.Tpl.Id, ParamsValue(rest))
				ti = len(tParams)
				break
			}
			// homogeneous variadic pattern: match base against each tail type
			for ; ti < len(tParams); ti++ {
				if tParams[ti].Type != nil {
					e.PatternMatch(vr.Variadic.Base, tParams[ti].Type, sub, ctx)
				}
			}
			break
		}
		if ti < len(tParams) {
			if pp.Type != nil && tParams[ti].Type != nil {
				e.PatternMatch(pp.Type, tParams[ti].Type, sub, ctx)
			}
			ti++
		}
	}

	e.matchReturns(pattern.Ret, target.Ret, sub, ctx)
}

func (e *Engine) matchReturns(pRet, tRet types.Type, sub *Substitutor, ctx *MatchCtx) {
	if pRet == nil || tRet == nil {
		return
	}
	if vr, ok := pRet.(types.Variadic); ok && !vr.Variadic.IsMulti {
		if tpl, ok := vr.Variadic.Base.(types.TplRef); ok {
			switch tv := tRet.(type) {
			case types.Variadic:
				if tv.Variadic.IsMulti {
					sub.Bind(tpl.Tpl.Id, MultiTypesValue(tv.Variadic.Multi))
				} else {
					sub.Bind(tpl.Tpl.Id, MultiBaseValue(tv.Variadic.Base))
				}
			case types.Tuple:
				sub.Bind(tpl.Tpl.Id, MultiTypesValue(tv.Items))
			default:
				sub.Bind(tpl.Tpl.Id, MultiBaseValue(tRet))
			}
			return
		}
	}
	pMulti, tMulti := spreadReturn(pRet), spreadReturn(tRet)
	for i, p := range pMulti {
		if i < len(tMulti) {
			e.PatternMatch(p, tMulti[i], sub, ctx)
		}
	}
}

func spreadReturn(ret types.Type) []types.Type {
	switch v := ret.(type) {
	case types.Variadic:
		if v.Variadic.IsMulti {
			return v.Variadic.Multi
		}
		return []types.Type{v.Variadic.Base}
	case types.Tuple:
		return v.Items
	default:
		return []types.Type{ret}
	}
}

// normalizeSelf returns f's parameter list adjusted so both sides
// agree on an explicit self slot.
func normalizeSelf(f, other *types.FunctionType) []types.Param {
	if f.IsColonDefine == other.IsColonDefine {
		return f.Params
	}
	if f.IsColonDefine {
		// colon side carries an implicit self the other side spells out
		return append([]types.Param{{Name: "self", Type: types.P(types.Any)}}, f.Params...)
	}
	return f.Params
}

// matchTuple matches tuples pairwise; a trailing Variadic(T) pattern
// element binds T as the rest, and a Tuple([..., Variadic(T)]) pattern
// against an Array(B) target binds T as MultiBase(B).
func (e *Engine) matchTuple(p types.Tuple, target types.Type, sub *Substitutor, ctx *MatchCtx) {
	switch t := target.(type) {
	case types.Tuple:
		for i, pat := range p.Items {
			if vr, ok := pat.(types.Variadic); ok && !vr.Variadic.IsMulti {
				if tpl, ok := vr.Variadic.Base.(types.TplRef); ok {
					sub.Bind(tpl.Tpl.Id, MultiTypesValue(t.Items[min(i, len(t.Items)):]))
					return
				}
			}
			if i < len(t.Items) {
				e.PatternMatch(pat, t.Items[i], sub, ctx)
			}
		}
	case types.Array:
		for _, pat := range p.Items {
			if vr, ok := pat.(types.Variadic); ok && !vr.Variadic.IsMulti {
				if tpl, ok := vr.Variadic.Base.(types.TplRef); ok {
					sub.Bind(tpl.Tpl.Id, MultiBaseValue(t.Base))
					continue
				}
			}
			e.PatternMatch(pat, t.Base, sub, ctx)
		}
	}
}

// matchObject matches fields against same-key target fields, then
// index_access entries by key compatibility.
func (e *Engine) matchObject(p types.Object, target types.Type, sub *Substitutor, ctx *MatchCtx) {
	t, ok := target.(types.Object)
	if !ok {
		return
	}
	for k, pv := range p.Fields {
		if tv, found := t.Fields[k]; found {
			e.PatternMatch(pv, tv, sub, ctx)
		}
	}
	for _, pa := range p.IndexAccess {
		for _, ta := range t.IndexAccess {
			if e.CheckTypeCompact(ta.Key, pa.Key) {
				e.PatternMatch(pa.Key, ta.Key, sub, ctx)
				e.PatternMatch(pa.Value, ta.Value, sub, ctx)
				break
			}
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
