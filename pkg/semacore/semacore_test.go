package semacore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmylua-go/semacore/internal/synbuild"
	"github.com/emmylua-go/semacore/internal/syntax"
	"github.com/emmylua-go/semacore/pkg/semacore"
)

func TestWorkspaceRoundTrip(t *testing.T) {
	b := synbuild.New()
	s := b.Mark()
	doc := b.TagType(b.DocNamed("string"))
	xName := b.LocalName("x")
	stat := b.Local(s, []syntax.LocalName{xName}, nil, doc)
	rs := b.Mark()
	xRef := b.Name("x")
	ret := b.Return(rs, xRef)

	w := semacore.NewWorkspace(nil)
	file := w.Load("/ws/main.lua", "", b.Tree(stat, ret), "/ws", semacore.WorkspaceMain, false)
	w.Analyze(file)

	info, ok := w.Module(file)
	require.True(t, ok)
	assert.Equal(t, "main", info.FullModuleName)

	found, ok := w.FindModule("main")
	require.True(t, ok)
	assert.Equal(t, file, found.File)

	m, ok := w.Model(file)
	require.True(t, ok)
	got, err := m.InferExpr(xRef)
	require.NoError(t, err)
	assert.Equal(t, "string", got.String())
}

func TestWorkspaceRemoveInvalidates(t *testing.T) {
	b := synbuild.New()
	s := b.Mark()
	xName := b.LocalName("x")
	one := b.Int(1)
	stat := b.Local(s, []syntax.LocalName{xName}, []syntax.Expression{one})

	w := semacore.NewWorkspace(nil)
	file := w.Load("/ws/gone.lua", "", b.Tree(stat), "/ws", semacore.WorkspaceMain, false)
	w.Analyze(file)
	w.Remove(file)

	_, ok := w.Model(file)
	assert.False(t, ok, "a removed file has no syntax tree to query")
	_, ok = w.Module(file)
	assert.False(t, ok)
}
