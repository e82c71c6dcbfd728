package overload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmylua-go/semacore/internal/generic"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/luaconfig"
	"github.com/emmylua-go/semacore/internal/types"
	"github.com/emmylua-go/semacore/internal/vfs"
)

func testEngine() *generic.Engine {
	return generic.NewEngine(index.NewDbIndex(vfs.NewMemVFS(), luaconfig.Default()))
}

func fn(ret types.Type, params ...types.Type) *types.FunctionType {
	f := &types.FunctionType{Ret: ret}
	for i, p := range params {
		f.Params = append(f.Params, types.Param{Name: string(rune('a' + i)), Type: p})
	}
	return f
}

func TestResolvePicksExactArity(t *testing.T) {
	e := testEngine()
	one := fn(types.P(types.String), types.P(types.String))
	two := fn(types.P(types.Integer), types.P(types.String), types.P(types.Integer))

	got := Resolve(e, []*types.FunctionType{one, two}, []types.Type{types.P(types.String), types.P(types.Integer)})
	require.NotNil(t, got)
	assert.Same(t, two, got)
}

func TestResolvePrefersStricterParams(t *testing.T) {
	e := testEngine()
	loose := fn(types.P(types.String), types.P(types.Any))
	strict := fn(types.P(types.Integer), types.P(types.Integer))

	got := Resolve(e, []*types.FunctionType{loose, strict}, []types.Type{types.P(types.Integer)})
	require.NotNil(t, got)
	assert.Same(t, strict, got)
}

func TestResolveExactBeatsVararg(t *testing.T) {
	e := testEngine()
	vararg := &types.FunctionType{
		IsVariadic: true,
		Params: []types.Param{{
			Name: "...",
			Type: types.Variadic{Variadic: &types.VariadicType{Base: types.P(types.String)}},
		}},
		Ret: types.P(types.Nil),
	}
	exact := fn(types.P(types.Boolean), types.P(types.String))

	got := Resolve(e, []*types.FunctionType{vararg, exact}, []types.Type{types.P(types.String)})
	require.NotNil(t, got)
	assert.Same(t, exact, got)
}

func TestResolveTieKeepsSourceOrder(t *testing.T) {
	e := testEngine()
	first := fn(types.P(types.String), types.P(types.String))
	second := fn(types.P(types.Integer), types.P(types.String))

	got := Resolve(e, []*types.FunctionType{first, second}, []types.Type{types.P(types.String)})
	require.NotNil(t, got)
	assert.Same(t, first, got)
}

func TestResolveSingleCandidate(t *testing.T) {
	e := testEngine()
	only := fn(types.P(types.String))
	assert.Same(t, only, Resolve(e, []*types.FunctionType{only}, nil))
	assert.Nil(t, Resolve(e, nil, nil))
}

func TestCollectCandidatesFromUnion(t *testing.T) {
	a := types.DocFunction{Func: fn(types.P(types.String))}
	b := types.DocFunction{Func: fn(types.P(types.Integer))}
	u := types.Union{Types: []types.Type{a, b}}
	got := CollectCandidates(u, nil)
	assert.Len(t, got, 2)
}
