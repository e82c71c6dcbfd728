package generic

import (
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/member"
	"github.com/emmylua-go/semacore/internal/types"
)

// EvalAliasCall evaluates a computed Call type. It is
// invoked only at instantiation time, once the operands are free of
// live templates; an unevaluable call reports false and the caller
// keeps the rebuilt Call node.
func (e *Engine) EvalAliasCall(c types.Call) (types.Type, bool) {
	ops := c.Operands
	switch c.Kind {
	case types.CallSub:
		if len(ops) == 2 {
			return types.TypeOpsRemove(ops[0], ops[1]), true
		}
	case types.CallAdd:
		if len(ops) == 2 {
			return types.TypeOpsUnion(ops[0], ops[1]), true
		}
	case types.CallKeyOf:
		if len(ops) == 1 {
			return e.evalKeyOf(ops[0]), true
		}
	case types.CallExtends:
		if len(ops) == 2 {
			return types.BooleanConst{Value: e.CheckTypeCompact(ops[0], ops[1])}, true
		}
	case types.CallSelect:
		if len(ops) == 2 {
			return e.evalSelect(ops[0], ops[1])
		}
	case types.CallUnpack:
		if len(ops) >= 1 {
			return e.evalUnpack(ops)
		}
	case types.CallRawGet:
		if len(ops) == 2 {
			return e.evalRawGet(ops[0], ops[1])
		}
	case types.CallIndex:
		if len(ops) == 2 {
			return e.evalIndex(ops[0], ops[1])
		}
	}
	return nil, false
}

// evalKeyOf builds a Tuple of the string/integer literal keys of T's
// members; a variadic T contributes one entry per position.
func (e *Engine) evalKeyOf(t types.Type) types.Type {
	if vr, ok := t.(types.Variadic); ok && vr.Variadic.IsMulti {
		items := make([]types.Type, len(vr.Variadic.Multi))
		for i := range vr.Variadic.Multi {
			items[i] = types.IntegerConst{Value: int64(i + 1)}
		}
		return types.Tuple{Items: items}
	}
	var items []types.Type
	appendKey := func(k types.MemberKey) {
		switch k.Kind {
		case types.MemberKeyName:
			items = append(items, types.StringConst{Value: k.Name})
		case types.MemberKeyInteger:
			items = append(items, types.IntegerConst{Value: k.Integer})
		}
	}
	switch v := e.UnfoldAlias(t, nil).(type) {
	case types.Object:
		for k := range v.Fields {
			appendKey(k)
		}
	case types.Tuple:
		for i := range v.Items {
			items = append(items, types.IntegerConst{Value: int64(i + 1)})
		}
	case types.Ref:
		for _, m := range e.Db.Member.AllMembers(index.TypeMemberOwner(v.Decl)) {
			appendKey(m.Key)
		}
	case types.Def:
		for _, m := range e.Db.Member.AllMembers(index.TypeMemberOwner(v.Decl)) {
			appendKey(m.Key)
		}
	case types.Generic:
		for _, m := range e.Db.Member.AllMembers(index.TypeMemberOwner(v.Base)) {
			appendKey(m.Key)
		}
	}
	sortKeyItems(items)
	return types.Tuple{Items: items}
}

// sortKeyItems orders keyof results deterministically: integer keys
// first in value order, then string keys lexicographically. Map
// iteration order must never leak into a query result.
func sortKeyItems(items []types.Type) {
	rank := func(t types.Type) (int, int64, string) {
		switch v := t.(type) {
		case types.IntegerConst:
			return 0, v.Value, ""
		case types.StringConst:
			return 1, 0, v.Value
		}
		return 2, 0, t.String()
	}
	for i := 1; i < len(items); i++ {
		for j := i; j > 0; j-- {
			ra, ia, sa := rank(items[j-1])
			rb, ib, sb := rank(items[j])
			if ra < rb || (ra == rb && (ia < ib || (ia == ib && sa <= sb))) {
				break
			}
			items[j-1], items[j] = items[j], items[j-1]
		}
	}
}

// evalSelect implements Select(src, idx): a numeric index selects the
// multi-return tail starting at idx (1-based); "#" returns the length.
func (e *Engine) evalSelect(src, idx types.Type) (types.Type, bool) {
	if s, ok := idx.(types.StringConst); ok && s.Value == "#" {
		switch v := src.(type) {
		case types.Variadic:
			if v.Variadic.IsMulti {
				return types.IntegerConst{Value: int64(len(v.Variadic.Multi))}, true
			}
			return types.P(types.Integer), true
		case types.Tuple:
			return types.IntegerConst{Value: int64(len(v.Items))}, true
		}
		return types.P(types.Integer), true
	}
	n, ok := idx.(types.IntegerConst)
	if !ok {
		return nil, false
	}
	switch v := src.(type) {
	case types.Variadic:
		if !v.Variadic.IsMulti {
			// homogeneous: the tail of string... is still string...
			return src, true
		}
		if n.Value >= 1 && int(n.Value) <= len(v.Variadic.Multi) {
			return types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: v.Variadic.Multi[n.Value-1:]}}, true
		}
	case types.Tuple:
		if n.Value >= 1 && int(n.Value) <= len(v.Items) {
			return types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: v.Items[n.Value-1:]}}, true
		}
	}
	return nil, false
}

// evalUnpack spreads T as a variadic: tuple to multi, array to base,
// generic table to its value type. Optional start/end bounds slice a
// tuple.
func (e *Engine) evalUnpack(ops []types.Type) (types.Type, bool) {
	src := e.UnfoldAlias(ops[0], nil)
	start, end := int64(1), int64(-1)
	if len(ops) >= 2 {
		if n, ok := ops[1].(types.IntegerConst); ok {
			start = n.Value
		}
	}
	if len(ops) >= 3 {
		if n, ok := ops[2].(types.IntegerConst); ok {
			end = n.Value
		}
	}
	switch v := src.(type) {
	case types.Tuple:
		lo := start - 1
		hi := int64(len(v.Items))
		if end >= 0 && end < hi {
			hi = end
		}
		if lo < 0 || lo > hi {
			return nil, false
		}
		return types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: v.Items[lo:hi]}}, true
	case types.Array:
		return types.Variadic{Variadic: &types.VariadicType{Base: v.Base}}, true
	case types.TableGeneric:
		if len(v.Params) == 2 {
			return types.Variadic{Variadic: &types.VariadicType{Base: v.Params[1]}}, true
		}
	}
	return nil, false
}

// evalRawGet performs a direct member lookup, bypassing __index and
// super walking.
func (e *Engine) evalRawGet(obj, key types.Type) (types.Type, bool) {
	mk, ok := keyFromType(key)
	if !ok {
		return nil, false
	}
	switch v := e.UnfoldAlias(obj, nil).(type) {
	case types.Object:
		if t, found := v.Fields[mk]; found {
			return t, true
		}
	case types.Ref:
		if t, found := e.Db.Member.Resolved(index.TypeMemberOwner(v.Decl), mk); found {
			return t, true
		}
	case types.Def:
		if t, found := e.Db.Member.Resolved(index.TypeMemberOwner(v.Decl), mk); found {
			return t, true
		}
	case types.Instance:
		if t, found := e.Db.Member.Resolved(index.ElementMemberOwner(v.File, v.Range), mk); found {
			return t, true
		}
	}
	return nil, false
}

// evalIndex performs a full member lookup with __index semantics; a
// variadic obj is picked into by integer index, or yields its base.
func (e *Engine) evalIndex(obj, key types.Type) (types.Type, bool) {
	if vr, ok := obj.(types.Variadic); ok {
		if n, isInt := key.(types.IntegerConst); isInt && vr.Variadic.IsMulti {
			if n.Value >= 1 && int(n.Value) <= len(vr.Variadic.Multi) {
				return vr.Variadic.Multi[n.Value-1], true
			}
			return nil, false
		}
		if !vr.Variadic.IsMulti {
			return vr.Variadic.Base, true
		}
	}
	mk, ok := keyFromType(key)
	if !ok {
		return nil, false
	}
	res, found := e.Members.ResolveOnPrefix(e.UnfoldAlias(obj, nil), mk, member.NewInferGuard())
	if !found {
		return nil, false
	}
	return res.Type, true
}

func keyFromType(key types.Type) (types.MemberKey, bool) {
	switch k := key.(type) {
	case types.StringConst:
		return types.NameKey(k.Value), true
	case types.IntegerConst:
		return types.IntegerKey(k.Value), true
	}
	return types.MemberKey{}, false
}
