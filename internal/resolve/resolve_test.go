package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/types"
)

func mkDecl(pos ids.Position) *index.Decl {
	return &index.Decl{Name: "g", File: 1, Range: ids.Range{Start: pos, End: pos + 1}, Kind: index.DeclGlobal}
}

func TestSingleDeclShortCircuits(t *testing.T) {
	d := mkDecl(1)
	got, ok := ResolveGlobalDeclId([]*index.Decl{d}, CallShape{}, nil, nil)
	require.True(t, ok)
	assert.Same(t, d, got)
}

func TestCallPrefersOverloadPick(t *testing.T) {
	d1, d2 := mkDecl(1), mkDecl(2)
	fn := types.DocFunction{Func: &types.FunctionType{Ret: types.P(types.String)}}
	declType := func(d *index.Decl) types.Type {
		if d == d2 {
			return fn
		}
		return types.P(types.Unknown)
	}
	pick := func(call CallShape, candidates []*index.Decl) (*index.Decl, bool) {
		require.Len(t, candidates, 1)
		return candidates[0], true
	}
	got, ok := ResolveGlobalDeclId([]*index.Decl{d1, d2}, CallShape{IsCall: true}, declType, pick)
	require.True(t, ok)
	assert.Same(t, d2, got)
}

func TestNonCallPrefersTypedDecl(t *testing.T) {
	d1, d2 := mkDecl(1), mkDecl(2)
	declType := func(d *index.Decl) types.Type {
		if d == d2 {
			return types.Def{Decl: ids.NewTypeDeclId("", "M")}
		}
		return types.P(types.Unknown)
	}
	got, ok := ResolveGlobalDeclId([]*index.Decl{d1, d2}, CallShape{}, declType, nil)
	require.True(t, ok)
	assert.Same(t, d2, got)
}

func TestFallsBackToFirst(t *testing.T) {
	d1, d2 := mkDecl(1), mkDecl(2)
	declType := func(*index.Decl) types.Type { return types.P(types.Unknown) }
	got, ok := ResolveGlobalDeclId([]*index.Decl{d1, d2}, CallShape{}, declType, nil)
	require.True(t, ok)
	assert.Same(t, d1, got)
}

func TestFindSelfPrefersImplicitDecl(t *testing.T) {
	self := &index.Decl{Name: "self", File: 1, Kind: index.DeclImplicitSelf}
	memberId := ids.MemberId{File: 1}
	chain := []EnclosingMethod{
		{Signature: ids.SignatureId{File: 1, Pos: 5}},
		{Signature: ids.SignatureId{File: 1, Pos: 2}, ImplicitSelf: self},
		{Signature: ids.SignatureId{File: 1, Pos: 1}, OwnerMemberId: &memberId},
	}
	res, ok := FindSelfDeclOrMemberId(chain)
	require.True(t, ok)
	assert.Same(t, self, res.Decl)
	assert.Nil(t, res.Member)
}

func TestFindSelfFallsBackToOwnerMember(t *testing.T) {
	memberId := ids.MemberId{File: 2}
	chain := []EnclosingMethod{{Signature: ids.SignatureId{File: 2, Pos: 1}, OwnerMemberId: &memberId}}
	res, ok := FindSelfDeclOrMemberId(chain)
	require.True(t, ok)
	require.NotNil(t, res.Member)
	assert.Equal(t, memberId, *res.Member)

	_, ok = FindSelfDeclOrMemberId(nil)
	assert.False(t, ok)
}
