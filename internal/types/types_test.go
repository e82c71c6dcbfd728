package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionInvariants(t *testing.T) {
	u := NewUnion([]Type{P(String), P(Integer), P(String)})
	union, ok := u.(Union)
	if assert.True(t, ok, "expected a flattened Union, got %T", u) {
		assert.Len(t, union.Types, 2, "duplicates must be removed")
		for _, arm := range union.Types {
			_, nested := arm.(Union)
			assert.False(t, nested, "Union must not nest")
		}
	}
}

func TestUnionAbsorbsNever(t *testing.T) {
	assert.True(t, StructurallyEqual(P(String), TypeOpsUnion(P(String), P(Never))))
	assert.True(t, StructurallyEqual(P(String), TypeOpsUnion(P(Never), P(String))))
}

func TestUnionIdempotent(t *testing.T) {
	assert.True(t, StructurallyEqual(P(Integer), TypeOpsUnion(P(Integer), P(Integer))))
}

func TestUnionAbsorbsAnyUnknown(t *testing.T) {
	assert.Equal(t, P(Any), TypeOpsUnion(P(String), P(Any)))
	assert.Equal(t, P(Unknown), TypeOpsUnion(P(Unknown), P(Integer)))
}

func TestRemoveIsIdempotent(t *testing.T) {
	u := NewUnion([]Type{P(String), P(Integer), P(Boolean)})
	once := TypeOpsRemove(u, P(Integer))
	twice := TypeOpsRemove(once, P(Integer))
	assert.True(t, StructurallyEqual(once, twice))
}

func TestRemoveConstFromBaseKeepsBase(t *testing.T) {
	got := TypeOpsRemove(P(String), StringConst{Value: "x"})
	assert.True(t, StructurallyEqual(P(String), got))
}

func TestDecay(t *testing.T) {
	assert.Equal(t, P(Integer), Decay(IntegerConst{Value: 3}))
	assert.Equal(t, P(String), Decay(StringConst{Value: "a"}))
	assert.Equal(t, P(Boolean), Decay(P(Boolean)))
}

func TestContainsTpl(t *testing.T) {
	tpl := TplRef{Tpl: GenericTpl{Name: "T"}}
	arr := Array{Base: tpl, Len: ArrayLen{Kind: ArrayLenUnknown}}
	assert.True(t, ContainsTpl(arr))
	assert.False(t, ContainsTpl(P(String)))
}
