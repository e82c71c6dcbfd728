package generic

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/types"
)

// ValueKind discriminates what a template resolved to.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueType
	ValueMultiTypes
	ValueParams
	ValueMultiBase
)

// Value is one template's binding.
type Value struct {
	Kind   ValueKind
	Type   types.Type
	Multi  []types.Type
	Params []types.Param
	Base   types.Type
}

func TypeValue(t types.Type) Value          { return Value{Kind: ValueType, Type: t} }
func MultiTypesValue(ts []types.Type) Value { return Value{Kind: ValueMultiTypes, Multi: ts} }
func ParamsValue(ps []types.Param) Value    { return Value{Kind: ValueParams, Params: ps} }
func MultiBaseValue(b types.Type) Value     { return Value{Kind: ValueMultiBase, Base: b} }

// Substitutor maps GenericTplId -> Value, plus the
// context carried through instantiation: the alias being expanded (for
// recursion detection) and the self type (for SelfInfer).
type Substitutor struct {
	values map[ids.GenericTplId]Value
	// byName carries mapped-type key bindings and conditional `infer`
	// bindings, which are addressed by name rather than template id.
	byName map[string]types.Type

	AliasTypeId *ids.TypeDeclId
	SelfType    types.Type
}

func NewSubstitutor() *Substitutor {
	return &Substitutor{values: map[ids.GenericTplId]Value{}, byName: map[string]types.Type{}}
}

// Bind records v for id with literal decay applied to ValueType
// bindings. The first binding wins; pattern
// matching performs no fixed-point iteration.
func (s *Substitutor) Bind(id ids.GenericTplId, v Value) {
	if _, ok := s.values[id]; ok {
		return
	}
	if v.Kind == ValueType {
		v.Type = types.Decay(v.Type)
	}
	s.values[id] = v
}

// BindRaw records v without decay, for ConstTplRef bindings and for
// explicit call-site generic arguments.
func (s *Substitutor) BindRaw(id ids.GenericTplId, v Value) {
	if _, ok := s.values[id]; ok {
		return
	}
	s.values[id] = v
}

func (s *Substitutor) Lookup(id ids.GenericTplId) (Value, bool) {
	v, ok := s.values[id]
	return v, ok
}

func (s *Substitutor) BindName(name string, t types.Type) { s.byName[name] = t }

func (s *Substitutor) LookupName(name string) (types.Type, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// child clones s for a nested expansion (mapped key, infer branch)
// without leaking the nested bindings back out.
func (s *Substitutor) child() *Substitutor {
	c := NewSubstitutor()
	for k, v := range s.values {
		c.values[k] = v
	}
	for k, v := range s.byName {
		c.byName[k] = v
	}
	c.AliasTypeId = s.AliasTypeId
	c.SelfType = s.SelfType
	return c
}

// Instantiate rebuilds t with every template reference replaced per
// sub, evaluating computed
// forms (alias calls, conditionals, mapped types) once they no longer
// contain live templates.
func (e *Engine) Instantiate(t types.Type, sub *Substitutor) types.Type {
	if t == nil {
		return nil
	}
	switch v := t.(type) {
	case types.Primitive:
		if v.Kind == types.SelfInfer && sub.SelfType != nil {
			return sub.SelfType
		}
		return t

	case types.TplRef:
		return e.substituteTpl(v.Tpl, sub, t)

	case types.ConstTplRef:
		return e.substituteTpl(v.Tpl, sub, t)

	case types.StrTplRef:
		if val, ok := sub.Lookup(v.TplId); ok && val.Kind == ValueType {
			if s, ok := val.Type.(types.StringConst); ok {
				return types.StringConst{Value: v.Prefix + s.Value + v.Suffix}
			}
		}
		return t

	case types.ConditionalInfer:
		if bound, ok := sub.LookupName(v.Name); ok {
			return bound
		}
		return t

	case types.Array:
		return types.Array{Base: e.Instantiate(v.Base, sub), Len: v.Len}

	case types.Tuple:
		items := make([]types.Type, 0, len(v.Items))
		for _, it := range v.Items {
			inst := e.Instantiate(it, sub)
			if vr, ok := inst.(types.Variadic); ok && vr.Variadic.IsMulti {
				items = append(items, vr.Variadic.Multi...)
				continue
			}
			items = append(items, inst)
		}
		return types.Tuple{Items: items, Status: v.Status}

	case types.Object:
		fields := make(map[types.MemberKey]types.Type, len(v.Fields))
		for k, ft := range v.Fields {
			fields[k] = e.Instantiate(ft, sub)
		}
		access := make([]types.IndexAccessEntry, len(v.IndexAccess))
		for i, a := range v.IndexAccess {
			access[i] = types.IndexAccessEntry{Key: e.Instantiate(a.Key, sub), Value: e.Instantiate(a.Value, sub)}
		}
		return types.Object{Fields: fields, IndexAccess: access}

	case types.TableGeneric:
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = e.Instantiate(p, sub)
		}
		return types.TableGeneric{Params: params}

	case types.Union:
		arms := make([]types.Type, len(v.Types))
		for i, a := range v.Types {
			arms[i] = e.Instantiate(a, sub)
		}
		return types.NewUnion(arms)

	case types.Intersection:
		arms := make([]types.Type, len(v.Types))
		for i, a := range v.Types {
			arms[i] = e.Instantiate(a, sub)
		}
		return types.Intersection{Types: arms}

	case types.MultiLineUnion:
		arms := make([]types.MultiLineArm, len(v.Arms))
		for i, a := range v.Arms {
			arms[i] = types.MultiLineArm{Type: e.Instantiate(a.Type, sub), Doc: a.Doc}
		}
		return types.MultiLineUnion{Arms: arms}

	case types.DocFunction:
		return types.DocFunction{Func: e.instantiateFunc(v.Func, sub)}

	case types.Generic:
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = e.Instantiate(p, sub)
		}
		return types.Generic{Base: v.Base, Params: params}

	case types.Variadic:
		return e.instantiateVariadic(v, sub)

	case types.Call:
		ops := make([]types.Type, len(v.Operands))
		for i, o := range v.Operands {
			ops[i] = e.Instantiate(o, sub)
		}
		rebuilt := types.Call{Kind: v.Kind, Operands: ops}
		if !containsLiveTpl(rebuilt) {
			if evaluated, ok := e.EvalAliasCall(rebuilt); ok {
				return evaluated
			}
		}
		return rebuilt

	case types.Conditional:
		return e.evalConditional(v, sub)

	case types.Mapped:
		return e.expandMapped(v, sub)

	case types.IndexAccess:
		base := e.Instantiate(v.Base, sub)
		key := e.Instantiate(v.Key, sub)
		rebuilt := types.IndexAccess{Base: base, Key: key}
		if !containsLiveTpl(rebuilt) {
			if evaluated, ok := e.EvalAliasCall(types.Call{Kind: types.CallIndex, Operands: []types.Type{base, key}}); ok {
				return evaluated
			}
		}
		return rebuilt

	case types.TypeGuard:
		return types.TypeGuard{Inner: e.Instantiate(v.Inner, sub)}

	case types.Attributed:
		return types.Attributed{Base: e.Instantiate(v.Base, sub), Attributes: v.Attributes}

	case types.Instance:
		return types.Instance{Base: e.Instantiate(v.Base, sub), File: v.File, Range: v.Range}
	}
	return t
}

// substituteTpl resolves one template reference against its binding:
// a plain type directly, a multi as a variadic, a parameter sequence
// by its first type, a multi-base by its base. Literal decay happened at bind time, so TplRef
// and ConstTplRef read the same table here; the difference is which
// Bind entry point recorded the value.
func (e *Engine) substituteTpl(tpl types.GenericTpl, sub *Substitutor, orig types.Type) types.Type {
	v, ok := sub.Lookup(tpl.Id)
	if !ok {
		if bound, ok := sub.LookupName(tpl.Name); ok {
			return bound
		}
		if tpl.Constraint != nil {
			return tpl.Constraint
		}
		return orig
	}
	switch v.Kind {
	case ValueType:
		return v.Type
	case ValueMultiTypes:
		return types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: v.Multi}}
	case ValueParams:
		if len(v.Params) > 0 && v.Params[0].Type != nil {
			return v.Params[0].Type
		}
		return types.P(types.Any)
	case ValueMultiBase:
		return v.Base
	default:
		if tpl.Constraint != nil {
			return tpl.Constraint
		}
		return orig
	}
}

// instantiateVariadic handles a standalone Variadic(Base(TplRef T))
// whose binding expands to a sequence.
func (e *Engine) instantiateVariadic(v types.Variadic, sub *Substitutor) types.Type {
	if v.Variadic.IsMulti {
		multi := make([]types.Type, len(v.Variadic.Multi))
		for i, it := range v.Variadic.Multi {
			multi[i] = e.Instantiate(it, sub)
		}
		return types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: multi}}
	}
	if tpl, ok := v.Variadic.Base.(types.TplRef); ok {
		if val, ok := sub.Lookup(tpl.Tpl.Id); ok {
			switch val.Kind {
			case ValueMultiTypes:
				return types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: val.Multi}}
			case ValueParams:
				multi := make([]types.Type, len(val.Params))
				for i, p := range val.Params {
					if p.Type != nil {
						multi[i] = p.Type
					} else {
						multi[i] = types.P(types.Any)
					}
				}
				return types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: multi}}
			case ValueMultiBase:
				return types.Variadic{Variadic: &types.VariadicType{Base: val.Base}}
			case ValueType:
				if tup, ok := val.Type.(types.Tuple); ok {
					return types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: tup.Items}}
				}
				return types.Variadic{Variadic: &types.VariadicType{Base: val.Type}}
			}
		}
	}
	base := e.Instantiate(v.Variadic.Base, sub)
	if tup, ok := base.(types.Tuple); ok {
		// a Variadic instantiated to a Tuple spreads into a multi-return
		return types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: tup.Items}}
	}
	return types.Variadic{Variadic: &types.VariadicType{Base: base}}
}

// instantiateFunc rebuilds a FunctionType, expanding variadic
// template parameters in place: a parameter
// (name, Variadic(Base(TplRef T))) with T bound to a parameter
// sequence expands to that sequence, and a tuple bound to a `...`
// parameter is spread.
func (e *Engine) instantiateFunc(f *types.FunctionType, sub *Substitutor) *types.FunctionType {
	out := &types.FunctionType{
		Async:         f.Async,
		IsColonDefine: f.IsColonDefine,
		IsVariadic:    f.IsVariadic,
	}
	for _, p := range f.Params {
		if expanded, ok := e.expandVariadicParam(p, sub); ok {
			out.Params = append(out.Params, expanded...)
			continue
		}
		var pt types.Type
		if p.Type != nil {
			pt = e.Instantiate(p.Type, sub)
		}
		out.Params = append(out.Params, types.Param{Name: p.Name, Type: pt})
	}
	if f.Ret != nil {
		out.Ret = e.Instantiate(f.Ret, sub)
		if tup, ok := out.Ret.(types.Tuple); ok && retWasVariadic(f.Ret) {
			out.Ret = types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: tup.Items}}
		}
	}
	return out
}

func retWasVariadic(ret types.Type) bool {
	_, ok := ret.(types.Variadic)
	return ok
}

// expandVariadicParam expands one `...: T...` parameter whose template
// resolved to a parameter sequence or a tuple.
func (e *Engine) expandVariadicParam(p types.Param, sub *Substitutor) ([]types.Param, bool) {
	vr, ok := p.Type.(types.Variadic)
	if !ok || vr.Variadic.IsMulti {
		return nil, false
	}
	tpl, ok := vr.Variadic.Base.(types.TplRef)
	if !ok {
		return nil, false
	}
	val, bound := sub.Lookup(tpl.Tpl.Id)
	if !bound {
		return nil, false
	}
	switch val.Kind {
	case ValueParams:
		return val.Params, true
	case ValueType:
		if tup, ok := val.Type.(types.Tuple); ok && p.Name == "..." {
			out := make([]types.Param, len(tup.Items))
			for i, it := range tup.Items {
				out[i] = types.Param{Name: "...", Type: it}
			}
			return out, true
		}
	case ValueMultiTypes:
		out := make([]types.Param, len(val.Multi))
		for i, it := range val.Multi {
			out[i] = types.Param{Name: "...", Type: it}
		}
		return out, true
	}
	return nil, false
}

// containsLiveTpl reports whether t still carries an unsubstituted
// template or infer placeholder after instantiation.
func containsLiveTpl(t types.Type) bool {
	return types.ContainsTpl(t) || types.ContainsConditionalInfer(t)
}
