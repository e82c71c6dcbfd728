package generic

import (
	"github.com/emmylua-go/semacore/internal/types"
)

// expandMapped expands `{ [K in C]: V }`: the
// constraint's key atoms are enumerated, the value is instantiated
// once per atom with the mapped key bound, and the results collect
// into an Object, or a Tuple when the keys are contiguous integers
// from a tuple constraint.
func (e *Engine) expandMapped(m types.Mapped, sub *Substitutor) types.Type {
	constraint := e.Instantiate(m.Param.Constraint, sub)
	if containsLiveTpl(constraint) {
		return types.Mapped{
			Param:      types.MappedParam{Name: m.Param.Name, Constraint: constraint},
			Value:      m.Value,
			IsOptional: m.IsOptional,
			IsReadonly: m.IsReadonly,
		}
	}

	_, fromTuple := e.UnfoldAlias(constraint, nil).(types.Tuple)
	atoms := keyAtoms(e.UnfoldAlias(constraint, nil))

	fields := map[types.MemberKey]types.Type{}
	var tupleItems []types.Type
	allKeyed := true
	contiguous := fromTuple

	for i, atom := range atoms {
		branch := sub.child()
		branch.BindName(m.Param.Name, atom)
		value := e.Instantiate(m.Value, branch)
		if m.IsOptional {
			value = types.TypeOpsUnion(value, types.P(types.Nil))
		}
		switch k := atom.(type) {
		case types.StringConst:
			fields[types.NameKey(k.Value)] = value
			contiguous = false
		case types.IntegerConst:
			fields[types.IntegerKey(k.Value)] = value
			if k.Value != int64(i+1) {
				contiguous = false
			}
		default:
			allKeyed = false
			contiguous = false
		}
		tupleItems = append(tupleItems, value)
	}

	if contiguous && len(tupleItems) > 0 {
		return types.Tuple{Items: tupleItems}
	}
	if allKeyed {
		return types.Object{Fields: fields}
	}
	return types.NewUnion(tupleItems)
}

// keyAtoms flattens unions, multi-line unions and variadics into the
// individual key atoms a mapped type iterates; a tuple contributes its
// elements.
func keyAtoms(t types.Type) []types.Type {
	switch v := t.(type) {
	case types.Union:
		var out []types.Type
		for _, arm := range v.Types {
			out = append(out, keyAtoms(arm)...)
		}
		return out
	case types.MultiLineUnion:
		var out []types.Type
		for _, arm := range v.Arms {
			out = append(out, keyAtoms(arm.Type)...)
		}
		return out
	case types.Variadic:
		if v.Variadic.IsMulti {
			var out []types.Type
			for _, it := range v.Variadic.Multi {
				out = append(out, keyAtoms(it)...)
			}
			return out
		}
		return []types.Type{v.Variadic.Base}
	case types.Tuple:
		var out []types.Type
		for _, it := range v.Items {
			out = append(out, keyAtoms(it)...)
		}
		return out
	default:
		return []types.Type{t}
	}
}
