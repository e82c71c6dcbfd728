package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/luaconfig"
	"github.com/emmylua-go/semacore/internal/types"
	"github.com/emmylua-go/semacore/internal/vfs"
)

func newTestEngine() *Engine {
	db := index.NewDbIndex(vfs.NewMemVFS(), luaconfig.Default())
	return NewEngine(db)
}

func tplT() types.GenericTpl {
	return types.GenericTpl{Id: ids.GenericTplId{Kind: ids.GenericTplFunc, Index: 0}, Name: "T"}
}

func tplR() types.GenericTpl {
	return types.GenericTpl{Id: ids.GenericTplId{Kind: ids.GenericTplFunc, Index: 1}, Name: "R"}
}

func TestInstantiateEmptySubstIsIdentity(t *testing.T) {
	e := newTestEngine()
	cases := []types.Type{
		types.P(types.String),
		types.Array{Base: types.P(types.Integer)},
		types.NewUnion([]types.Type{types.P(types.String), types.P(types.Nil)}),
		types.TplRef{Tpl: tplT()},
		types.DocFunction{Func: &types.FunctionType{
			Params: []types.Param{{Name: "x", Type: types.P(types.Number)}},
			Ret:    types.P(types.Boolean),
		}},
	}
	for _, ty := range cases {
		got := e.Instantiate(ty, NewSubstitutor())
		assert.True(t, types.StructurallyEqual(ty, got), "expected %s, got %s", ty, got)
	}
}

func TestSubstituteDecaysLiterals(t *testing.T) {
	e := newTestEngine()
	sub := NewSubstitutor()
	sub.Bind(tplT().Id, TypeValue(types.IntegerConst{Value: 3}))
	got := e.Instantiate(types.TplRef{Tpl: tplT()}, sub)
	assert.True(t, types.StructurallyEqual(types.P(types.Integer), got))
}

func TestConstTplSkipsDecay(t *testing.T) {
	e := newTestEngine()
	sub := NewSubstitutor()
	sub.BindRaw(tplT().Id, TypeValue(types.IntegerConst{Value: 3}))
	got := e.Instantiate(types.ConstTplRef{Tpl: tplT()}, sub)
	assert.True(t, types.StructurallyEqual(types.IntegerConst{Value: 3}, got))
}

func TestUnboundTplFallsBackToConstraint(t *testing.T) {
	e := newTestEngine()
	constrained := types.GenericTpl{Id: tplT().Id, Name: "T", Constraint: types.P(types.String)}
	got := e.Instantiate(types.TplRef{Tpl: constrained}, NewSubstitutor())
	assert.True(t, types.StructurallyEqual(types.P(types.String), got))
}

func TestPatternMatchGenericPairwise(t *testing.T) {
	e := newTestEngine()
	base := ids.NewTypeDeclId("", "Arrayable")
	pattern := types.Generic{Base: base, Params: []types.Type{types.TplRef{Tpl: tplT()}}}
	target := types.Generic{Base: base, Params: []types.Type{types.Ref{Decl: ids.NewTypeDeclId("", "Suite")}}}

	sub := NewSubstitutor()
	e.PatternMatch(pattern, target, sub, nil)

	v, ok := sub.Lookup(tplT().Id)
	require.True(t, ok)
	require.Equal(t, ValueType, v.Kind)
	assert.True(t, types.StructurallyEqual(types.Ref{Decl: ids.NewTypeDeclId("", "Suite")}, v.Type))

	got := e.Instantiate(types.Array{Base: types.TplRef{Tpl: tplT()}}, sub)
	assert.Equal(t, "Suite[]", got.String())
}

func TestPatternMatchVariadicFuncParams(t *testing.T) {
	e := newTestEngine()
	// pattern: fun(...: T...): R...
	pattern := &types.FunctionType{
		IsVariadic: true,
		Params: []types.Param{{
			Name: "...",
			Type: types.Variadic{Variadic: &types.VariadicType{Base: types.TplRef{Tpl: tplT()}}},
		}},
		Ret: types.Variadic{Variadic: &types.VariadicType{Base: types.TplRef{Tpl: tplR()}}},
	}
	// target: fun(a: number, b: string, c: boolean): number
	target := &types.FunctionType{
		Params: []types.Param{
			{Name: "a", Type: types.P(types.Number)},
			{Name: "b", Type: types.P(types.String)},
			{Name: "c", Type: types.P(types.Boolean)},
		},
		Ret: types.P(types.Number),
	}

	sub := NewSubstitutor()
	e.matchFunc(pattern, target, sub, &MatchCtx{})

	tv, ok := sub.Lookup(tplT().Id)
	require.True(t, ok)
	assert.Equal(t, ValueParams, tv.Kind)
	require.Len(t, tv.Params, 3)
	assert.Equal(t, "a", tv.Params[0].Name)

	rv, ok := sub.Lookup(tplR().Id)
	require.True(t, ok)
	assert.Equal(t, ValueMultiBase, rv.Kind)

	inst := e.instantiateFunc(&types.FunctionType{
		IsVariadic: true,
		Params:     pattern.Params,
		Ret:        pattern.Ret,
	}, sub)
	require.Len(t, inst.Params, 3)
	assert.Equal(t, "b", inst.Params[1].Name)
	assert.True(t, types.StructurallyEqual(types.P(types.String), inst.Params[1].Type))
	assert.Equal(t, "number...", inst.Ret.String())
}

func TestPatternMatchTableGenericFromArray(t *testing.T) {
	e := newTestEngine()
	k, v := tplT(), tplR()
	pattern := types.TableGeneric{Params: []types.Type{types.TplRef{Tpl: k}, types.TplRef{Tpl: v}}}
	target := types.Array{Base: types.P(types.String)}

	sub := NewSubstitutor()
	e.PatternMatch(pattern, target, sub, nil)

	kv, ok := sub.Lookup(k.Id)
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.P(types.Integer), kv.Type))
	vv, ok := sub.Lookup(v.Id)
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.P(types.String), vv.Type))
}

func TestPatternMatchStrTpl(t *testing.T) {
	e := newTestEngine()
	pattern := types.StrTplRef{TplId: tplT().Id, Prefix: "ns.", Suffix: ""}
	sub := NewSubstitutor()
	e.PatternMatch(pattern, types.StringConst{Value: "Widget"}, sub, nil)
	v, ok := sub.Lookup(tplT().Id)
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.StringConst{Value: "ns.Widget"}, v.Type))
}

func TestAliasCallSubAdd(t *testing.T) {
	e := newTestEngine()
	u := types.NewUnion([]types.Type{types.P(types.String), types.P(types.Nil)})

	got, ok := e.EvalAliasCall(types.Call{Kind: types.CallSub, Operands: []types.Type{u, types.P(types.Nil)}})
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.P(types.String), got))

	got, ok = e.EvalAliasCall(types.Call{Kind: types.CallAdd, Operands: []types.Type{types.P(types.String), types.P(types.Nil)}})
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(u, got))
}

func TestAliasCallSelect(t *testing.T) {
	e := newTestEngine()
	multi := types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: []types.Type{
		types.P(types.Number), types.P(types.String), types.P(types.Boolean),
	}}}

	got, ok := e.EvalAliasCall(types.Call{Kind: types.CallSelect, Operands: []types.Type{multi, types.IntegerConst{Value: 2}}})
	require.True(t, ok)
	vr, isVar := got.(types.Variadic)
	require.True(t, isVar)
	require.Len(t, vr.Variadic.Multi, 2)
	assert.True(t, types.StructurallyEqual(types.P(types.String), vr.Variadic.Multi[0]))

	got, ok = e.EvalAliasCall(types.Call{Kind: types.CallSelect, Operands: []types.Type{multi, types.StringConst{Value: "#"}}})
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.IntegerConst{Value: 3}, got))

	// homogeneous variadic: the tail keeps its shape
	base := types.Variadic{Variadic: &types.VariadicType{Base: types.P(types.String)}}
	got, ok = e.EvalAliasCall(types.Call{Kind: types.CallSelect, Operands: []types.Type{base, types.IntegerConst{Value: 2}}})
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(base, got))
}

func TestAliasCallExtends(t *testing.T) {
	e := newTestEngine()
	got, ok := e.EvalAliasCall(types.Call{Kind: types.CallExtends, Operands: []types.Type{
		types.IntegerConst{Value: 1}, types.P(types.Number),
	}})
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.BooleanConst{Value: true}, got))
}

func TestAliasCallKeyOfObject(t *testing.T) {
	e := newTestEngine()
	obj := types.Object{Fields: map[types.MemberKey]types.Type{
		types.NameKey("b"): types.P(types.Number),
		types.NameKey("a"): types.P(types.String),
	}}
	got := e.evalKeyOf(obj)
	tup, ok := got.(types.Tuple)
	require.True(t, ok)
	require.Len(t, tup.Items, 2)
	// deterministic order regardless of map iteration
	assert.True(t, types.StructurallyEqual(types.StringConst{Value: "a"}, tup.Items[0]))
	assert.True(t, types.StructurallyEqual(types.StringConst{Value: "b"}, tup.Items[1]))
}

func TestConditionalExtendsEvaluation(t *testing.T) {
	e := newTestEngine()
	cond := types.Conditional{
		Condition: types.Call{Kind: types.CallExtends, Operands: []types.Type{
			types.TplRef{Tpl: tplT()}, types.P(types.String),
		}},
		True:  types.P(types.Boolean),
		False: types.P(types.Nil),
	}

	sub := NewSubstitutor()
	sub.Bind(tplT().Id, TypeValue(types.P(types.String)))
	got := e.Instantiate(cond, sub)
	assert.True(t, types.StructurallyEqual(types.P(types.Boolean), got))

	sub2 := NewSubstitutor()
	sub2.Bind(tplT().Id, TypeValue(types.P(types.Table)))
	got = e.Instantiate(cond, sub2)
	assert.True(t, types.StructurallyEqual(types.P(types.Nil), got))
}

func TestConditionalInferCollection(t *testing.T) {
	e := newTestEngine()
	// T extends V[] (infer V) and V or nil, with T = string[]
	cond := types.Conditional{
		Condition: types.Call{Kind: types.CallExtends, Operands: []types.Type{
			types.TplRef{Tpl: tplT()},
			types.Array{Base: types.ConditionalInfer{Name: "V"}},
		}},
		True:  types.ConditionalInfer{Name: "V"},
		False: types.P(types.Nil),
	}
	sub := NewSubstitutor()
	sub.Bind(tplT().Id, TypeValue(types.Array{Base: types.P(types.String)}))
	got := e.Instantiate(cond, sub)
	assert.True(t, types.StructurallyEqual(types.P(types.String), got))
}

func TestConditionalStaysUnevaluatedWithLiveTpl(t *testing.T) {
	e := newTestEngine()
	cond := types.Conditional{
		Condition: types.Call{Kind: types.CallExtends, Operands: []types.Type{
			types.TplRef{Tpl: tplT()}, types.P(types.String),
		}},
		True:  types.P(types.Boolean),
		False: types.P(types.Nil),
	}
	got := e.Instantiate(cond, NewSubstitutor())
	_, still := got.(types.Conditional)
	assert.True(t, still, "unbound template must leave the conditional unevaluated")
}

func TestMappedTypeOverStringKeys(t *testing.T) {
	e := newTestEngine()
	m := types.Mapped{
		Param: types.MappedParam{Name: "K", Constraint: types.NewUnion([]types.Type{
			types.StringConst{Value: "x"}, types.StringConst{Value: "y"},
		})},
		Value: types.P(types.Number),
	}
	got := e.Instantiate(m, NewSubstitutor())
	obj, ok := got.(types.Object)
	require.True(t, ok)
	assert.Len(t, obj.Fields, 2)
	assert.True(t, types.StructurallyEqual(types.P(types.Number), obj.Fields[types.NameKey("x")]))
}

func TestMappedTypeOptionalAddsNil(t *testing.T) {
	e := newTestEngine()
	m := types.Mapped{
		Param:      types.MappedParam{Name: "K", Constraint: types.StringConst{Value: "x"}},
		Value:      types.P(types.Number),
		IsOptional: true,
	}
	got := e.Instantiate(m, NewSubstitutor())
	obj, ok := got.(types.Object)
	require.True(t, ok)
	want := types.NewUnion([]types.Type{types.P(types.Number), types.P(types.Nil)})
	assert.True(t, types.StructurallyEqual(want, obj.Fields[types.NameKey("x")]))
}

func TestMappedTupleConstraintYieldsTuple(t *testing.T) {
	e := newTestEngine()
	m := types.Mapped{
		Param: types.MappedParam{Name: "K", Constraint: types.Tuple{Items: []types.Type{
			types.IntegerConst{Value: 1}, types.IntegerConst{Value: 2},
		}}},
		Value: types.P(types.String),
	}
	got := e.Instantiate(m, NewSubstitutor())
	tup, ok := got.(types.Tuple)
	require.True(t, ok)
	assert.Len(t, tup.Items, 2)
}

func TestCheckTypeCompact(t *testing.T) {
	e := newTestEngine()
	cases := []struct {
		a, b types.Type
		want bool
	}{
		{types.P(types.Integer), types.P(types.Number), true},
		{types.P(types.Number), types.P(types.Integer), false},
		{types.IntegerConst{Value: 5}, types.P(types.Integer), true},
		{types.StringConst{Value: "a"}, types.P(types.String), true},
		{types.P(types.String), types.NewUnion([]types.Type{types.P(types.String), types.P(types.Nil)}), true},
		{types.Array{Base: types.P(types.Integer)}, types.P(types.Table), true},
		{types.P(types.String), types.P(types.Boolean), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, e.CheckTypeCompact(tc.a, tc.b), "%s vs %s", tc.a, tc.b)
	}
}

func TestCheckTypeCompactClassSupers(t *testing.T) {
	db := index.NewDbIndex(vfs.NewMemVFS(), luaconfig.Default())
	base := ids.NewTypeDeclId("", "Base")
	derived := ids.NewTypeDeclId("", "Derived")
	db.Type.AddTypeDecl(1, &index.TypeDecl{Id: base, Kind: index.TypeClass})
	db.Type.AddTypeDecl(1, &index.TypeDecl{Id: derived, Kind: index.TypeClass, Supers: []types.Type{types.Ref{Decl: base}}})
	e := NewEngine(db)

	assert.True(t, e.CheckTypeCompact(types.Ref{Decl: derived}, types.Ref{Decl: base}))
	assert.False(t, e.CheckTypeCompact(types.Ref{Decl: base}, types.Ref{Decl: derived}))
}

func TestInstantiateFuncGenericSimple(t *testing.T) {
	e := newTestEngine()
	fn := &types.FunctionType{
		Params: []types.Param{{Name: "x", Type: types.TplRef{Tpl: tplT()}}},
		Ret:    types.Array{Base: types.TplRef{Tpl: tplT()}},
	}
	sig := &index.Signature{GenericParams: []types.GenericTpl{tplT()}}
	inst := e.InstantiateFuncGeneric(sig, fn, CallCtx{Args: []types.Type{types.StringConst{Value: "s"}}})
	assert.Equal(t, "string[]", inst.Ret.String())
}

func TestInstantiateFuncGenericExplicitArgs(t *testing.T) {
	e := newTestEngine()
	fn := &types.FunctionType{
		Params: []types.Param{{Name: "x", Type: types.TplRef{Tpl: tplT()}}},
		Ret:    types.TplRef{Tpl: tplT()},
	}
	sig := &index.Signature{GenericParams: []types.GenericTpl{tplT()}}
	inst := e.InstantiateFuncGeneric(sig, fn, CallCtx{
		Args:         []types.Type{types.P(types.Any)},
		ExplicitArgs: []types.Type{types.P(types.Boolean)},
	})
	assert.True(t, types.StructurallyEqual(types.P(types.Boolean), inst.Ret))
}

func TestUnfoldAliasGeneric(t *testing.T) {
	db := index.NewDbIndex(vfs.NewMemVFS(), luaconfig.Default())
	aliasId := ids.NewTypeDeclId("", "Arrayable")
	tp := types.GenericTpl{Id: ids.GenericTplId{Kind: ids.GenericTplType, Index: 0}, Name: "T"}
	db.Type.AddTypeDecl(1, &index.TypeDecl{
		Id:            aliasId,
		Kind:          index.TypeAlias,
		GenericParams: []types.GenericTpl{tp},
		AliasOrigin: types.NewUnion([]types.Type{
			types.TplRef{Tpl: tp},
			types.Array{Base: types.TplRef{Tpl: tp}},
		}),
	})
	e := NewEngine(db)

	got := e.UnfoldAlias(types.Generic{Base: aliasId, Params: []types.Type{types.P(types.String)}}, nil)
	want := types.NewUnion([]types.Type{types.P(types.String), types.Array{Base: types.P(types.String)}})
	assert.True(t, types.StructurallyEqual(want, got), "got %s", got)
}
