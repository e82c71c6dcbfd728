package narrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/types"
)

type declTable map[ids.TypeDeclId]*index.TypeDecl

func (d declTable) TypeDeclOf(id ids.TypeDeclId) (*index.TypeDecl, bool) {
	td, ok := d[id]
	return td, ok
}

func TestNarrowDownAnyTargetKeepsSource(t *testing.T) {
	src := types.NewUnion([]types.Type{types.P(types.String), types.P(types.Nil)})
	got, ok := NarrowDownType(src, types.P(types.Any), declTable{})
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(src, got))
}

func TestNarrowDownSelfIsIdentity(t *testing.T) {
	src := types.Array{Base: types.P(types.Integer)}
	got, ok := NarrowDownType(src, src, declTable{})
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(src, got))
}

func TestNarrowDownUnionByPrimitive(t *testing.T) {
	src := types.NewUnion([]types.Type{types.P(types.Number), types.P(types.String)})
	got, ok := NarrowDownType(src, types.P(types.String), declTable{})
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.P(types.String), got))
}

func TestNarrowDownNumberToInteger(t *testing.T) {
	got, ok := NarrowDownType(types.P(types.Number), types.P(types.Integer), declTable{})
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.P(types.Integer), got))
}

func TestNarrowDownTableKeepsArray(t *testing.T) {
	src := types.Array{Base: types.P(types.String)}
	got, ok := NarrowDownType(src, types.P(types.Table), declTable{})
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(src, got))
}

func TestNarrowDownTableAgainstEnumRefIsNone(t *testing.T) {
	enumId := ids.NewTypeDeclId("", "Color")
	decls := declTable{enumId: &index.TypeDecl{Id: enumId, Kind: index.TypeEnum}}
	_, ok := NarrowDownType(types.Ref{Decl: enumId}, types.P(types.Table), decls)
	assert.False(t, ok, "enum ref under a table narrowing yields none, deliberately")
}

func TestNarrowDownTableAgainstUserdataSuperIsNone(t *testing.T) {
	classId := ids.NewTypeDeclId("", "Handle")
	decls := declTable{classId: &index.TypeDecl{
		Id:     classId,
		Kind:   index.TypeClass,
		Supers: []types.Type{types.P(types.Userdata)},
	}}
	_, ok := NarrowDownType(types.Ref{Decl: classId}, types.P(types.Table), decls)
	assert.False(t, ok)
}

func TestNarrowDownClassSubtypeBothWays(t *testing.T) {
	base := ids.NewTypeDeclId("", "Base")
	derived := ids.NewTypeDeclId("", "Derived")
	decls := declTable{
		base:    &index.TypeDecl{Id: base, Kind: index.TypeClass},
		derived: &index.TypeDecl{Id: derived, Kind: index.TypeClass, Supers: []types.Type{types.Ref{Decl: base}}},
	}

	got, ok := NarrowDownType(types.Ref{Decl: derived}, types.Ref{Decl: base}, decls)
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.Ref{Decl: derived}, got), "subtype source survives")

	got, ok = NarrowDownType(types.Ref{Decl: base}, types.Ref{Decl: derived}, decls)
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.Ref{Decl: derived}, got), "supertype folds to the target")
}

func TestRemoveFalseOrNil(t *testing.T) {
	src := types.NewUnion([]types.Type{types.P(types.String), types.P(types.Nil), types.BooleanConst{Value: false}})
	got := RemoveFalseOrNil(src)
	assert.True(t, types.StructurallyEqual(types.P(types.String), got))
}

func TestNarrowFalseOrNil(t *testing.T) {
	src := types.NewUnion([]types.Type{types.P(types.String), types.P(types.Nil)})
	got := NarrowFalseOrNil(src)
	assert.True(t, types.StructurallyEqual(types.P(types.Nil), got))
}

func TestAlwaysFalsy(t *testing.T) {
	assert.True(t, AlwaysFalsy(types.P(types.Nil)))
	assert.True(t, AlwaysFalsy(types.BooleanConst{Value: false}))
	assert.True(t, AlwaysFalsy(types.NewUnion([]types.Type{types.P(types.Nil), types.BooleanConst{Value: false}})))
	assert.False(t, AlwaysFalsy(types.P(types.String)))
	assert.False(t, AlwaysFalsy(types.BooleanConst{Value: true}))
}

func TestVarRefIdEqualAndPosition(t *testing.T) {
	d := ids.DeclId{File: 1, Pos: 10}
	assert.True(t, VarRef(d).Equal(VarRef(d)))
	assert.False(t, VarRef(d).Equal(VarRef(ids.DeclId{File: 1, Pos: 11})))
	assert.Equal(t, ids.Position(10), VarRef(d).Position())

	path := []PathSegment{{Name: "a"}, {IsInteger: true, Integer: 2}}
	ir := IndexRef(FromDecl(d), path)
	assert.True(t, ir.Equal(IndexRef(FromDecl(d), path)))
	assert.False(t, ir.Equal(IndexRef(FromDecl(d), path[:1])))
	assert.False(t, ir.Equal(VarRef(d)))
}

func TestFirstAndNthValue(t *testing.T) {
	multi := types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: []types.Type{
		types.P(types.Number), types.P(types.String),
	}}}
	assert.True(t, types.StructurallyEqual(types.P(types.Number), FirstValue(multi)))
	assert.True(t, types.StructurallyEqual(types.P(types.String), NthValue(multi, 1)))
	assert.True(t, types.StructurallyEqual(types.P(types.Nil), NthValue(multi, 5)))

	base := types.Variadic{Variadic: &types.VariadicType{Base: types.P(types.String)}}
	assert.True(t, types.StructurallyEqual(types.P(types.String), NthValue(base, 3)))

	single := types.P(types.Boolean)
	assert.True(t, types.StructurallyEqual(single, NthValue(single, 0)))
	assert.True(t, types.StructurallyEqual(types.P(types.Nil), NthValue(single, 1)))
}
