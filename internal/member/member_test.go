package member

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/types"
)

func newResolver() (*Resolver, *index.TypeIndex, *index.MemberIndex) {
	ti := index.NewTypeIndex()
	mi := index.NewMemberIndex()
	return New(ti, mi, index.NewGlobalIndex(), index.NewDeclIndex()), ti, mi
}

func addMember(mi *index.MemberIndex, owner index.MemberOwner, name string, ty types.Type, pos ids.Position) {
	mi.Add(&index.Member{
		Id:    ids.MemberId{File: 1, Node: ids.SyntaxId{Range: ids.Range{Start: pos, End: pos + 1}}},
		Key:   types.NameKey(name),
		Type:  ty,
		Owner: owner,
	})
}

func TestResolveOnObject(t *testing.T) {
	r, _, _ := newResolver()
	obj := types.Object{Fields: map[types.MemberKey]types.Type{
		types.NameKey("id"): types.P(types.Integer),
	}}
	res, ok := r.ResolveOnPrefix(obj, types.NameKey("id"), nil)
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.P(types.Integer), res.Type))

	_, ok = r.ResolveOnPrefix(obj, types.NameKey("missing"), nil)
	assert.False(t, ok)
}

func TestResolveOnObjectIndexAccess(t *testing.T) {
	r, _, _ := newResolver()
	obj := types.Object{IndexAccess: []types.IndexAccessEntry{
		{Key: types.P(types.String), Value: types.P(types.Boolean)},
	}}
	res, ok := r.ResolveOnPrefix(obj, types.NameKey("anything"), nil)
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.P(types.Boolean), res.Type))
}

func TestResolveWalksSupers(t *testing.T) {
	r, ti, mi := newResolver()
	base := ids.NewTypeDeclId("", "Base")
	derived := ids.NewTypeDeclId("", "Derived")
	ti.AddTypeDecl(1, &index.TypeDecl{Id: base, Kind: index.TypeClass})
	ti.AddTypeDecl(1, &index.TypeDecl{Id: derived, Kind: index.TypeClass, Supers: []types.Type{types.Ref{Decl: base}}})
	addMember(mi, index.TypeMemberOwner(base), "greet", types.P(types.Function), 10)

	res, ok := r.ResolveOnPrefix(types.Ref{Decl: derived}, types.NameKey("greet"), nil)
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.P(types.Function), res.Type))
}

func TestResolveAliasUnfolds(t *testing.T) {
	r, ti, _ := newResolver()
	alias := ids.NewTypeDeclId("", "Pair")
	ti.AddTypeDecl(1, &index.TypeDecl{
		Id:   alias,
		Kind: index.TypeAlias,
		AliasOrigin: types.Object{Fields: map[types.MemberKey]types.Type{
			types.NameKey("first"): types.P(types.Number),
		}},
	})
	res, ok := r.ResolveOnPrefix(types.Ref{Decl: alias}, types.NameKey("first"), nil)
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.P(types.Number), res.Type))
}

func TestResolveGuardStopsCycles(t *testing.T) {
	r, ti, _ := newResolver()
	a := ids.NewTypeDeclId("", "A")
	bId := ids.NewTypeDeclId("", "B")
	ti.AddTypeDecl(1, &index.TypeDecl{Id: a, Kind: index.TypeClass, Supers: []types.Type{types.Ref{Decl: bId}}})
	ti.AddTypeDecl(1, &index.TypeDecl{Id: bId, Kind: index.TypeClass, Supers: []types.Type{types.Ref{Decl: a}}})

	_, ok := r.ResolveOnPrefix(types.Ref{Decl: a}, types.NameKey("missing"), nil)
	assert.False(t, ok, "cyclic supers terminate via the infer guard")
}

func TestResolveUnionFirstHitWins(t *testing.T) {
	r, _, _ := newResolver()
	u := types.Union{Types: []types.Type{
		types.Object{Fields: map[types.MemberKey]types.Type{types.NameKey("x"): types.P(types.Number)}},
		types.Object{Fields: map[types.MemberKey]types.Type{types.NameKey("x"): types.P(types.String)}},
	}}
	res, ok := r.ResolveOnPrefix(u, types.NameKey("x"), nil)
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.P(types.Number), res.Type))
}

func TestResolveInstanceFallsBackToElement(t *testing.T) {
	r, _, mi := newResolver()
	rng := ids.Range{Start: 100, End: 120}
	addMember(mi, index.ElementMemberOwner(1, rng), "answer", types.IntegerConst{Value: 42}, 105)

	inst := types.Instance{Base: types.P(types.Table), File: 1, Range: rng}
	res, ok := r.ResolveOnPrefix(inst, types.NameKey("answer"), nil)
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.IntegerConst{Value: 42}, res.Type))
}

func TestRepeatedKeysResolveToUnion(t *testing.T) {
	_, _, mi := newResolver()
	owner := index.TypeMemberOwner(ids.NewTypeDeclId("", "S"))
	addMember(mi, owner, "f", types.P(types.Function), 1)
	addMember(mi, owner, "f", types.P(types.String), 2)

	res, ok := mi.Resolved(owner, types.NameKey("f"))
	require.True(t, ok)
	u, isUnion := res.(types.Union)
	require.True(t, isUnion)
	assert.Len(t, u.Types, 2)
}
