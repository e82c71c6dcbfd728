package flow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emmylua-go/semacore/internal/flow"
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/syntax"
)

// buildChunk assembles a tiny Chunk from raw statements for tree
// construction, mirroring the shape a real parser would hand back.
func buildChunk(stats []syntax.Statement) *syntax.Chunk {
	return &syntax.Chunk{Body: &syntax.Block{Stats: stats}}
}

func TestBuildIfProducesTrueCondition(t *testing.T) {
	cond := &syntax.NameExpr{Name: "x"}
	ret1 := &syntax.ReturnStat{Exprs: []syntax.Expression{&syntax.NameExpr{Name: "x"}}}
	ifStat := &syntax.IfStat{
		Cond: cond,
		Then: &syntax.Block{Stats: []syntax.Statement{ret1}},
	}
	chunk := buildChunk([]syntax.Statement{ifStat})

	trees := flow.Build(ids.FileId(1), chunk)
	tree, ok := trees[flow.ClosureRef{IsChunk: true}]
	require.True(t, ok)
	require.NotEmpty(t, tree.Nodes)
	require.Equal(t, flow.Start, tree.Node(0).Kind)

	found := false
	for _, n := range tree.Nodes {
		if n.Kind == flow.TrueCondition {
			found = true
		}
	}
	require.True(t, found, "expected a TrueCondition node for the if guard")
}

func TestBuildWhileProducesLoopLabel(t *testing.T) {
	cond := &syntax.NameExpr{Name: "x"}
	body := &syntax.Block{Stats: []syntax.Statement{&syntax.BreakStat{}}}
	whileStat := &syntax.WhileStat{Cond: cond, Body: body}
	chunk := buildChunk([]syntax.Statement{whileStat})

	trees := flow.Build(ids.FileId(1), chunk)
	tree := trees[flow.ClosureRef{IsChunk: true}]
	hasLoop, hasBreak := false, false
	for _, n := range tree.Nodes {
		if n.Kind == flow.LoopLabel {
			hasLoop = true
		}
		if n.Kind == flow.Break {
			hasBreak = true
		}
	}
	require.True(t, hasLoop)
	require.True(t, hasBreak)
}

func TestNestedClosureGetsOwnFlowTree(t *testing.T) {
	inner := &syntax.ClosureExpr{Body: &syntax.Block{}, SigPos: 10}
	local := &syntax.LocalStat{
		Names: []syntax.LocalName{{Name: "f", Pos: 1}},
		Exprs: []syntax.Expression{inner},
	}
	chunk := buildChunk([]syntax.Statement{local})

	trees := flow.Build(ids.FileId(1), chunk)
	require.Len(t, trees, 2)
	_, ok := trees[flow.ClosureRef{Sig: ids.SignatureId{File: 1, Pos: 10}}]
	require.True(t, ok)
}
