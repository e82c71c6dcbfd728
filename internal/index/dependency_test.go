package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/luaconfig"
)

func TestBestAnalysisOrderMetaFirst(t *testing.T) {
	// files {1,2,3,4}, deps 1 -> 2, metas {2}: expected [2, 3, 4, 1]
	idx := NewDependencyIndex()
	idx.AddEdge(1, 2)
	files := []ids.FileId{1, 2, 3, 4}
	order := idx.GetBestAnalysisOrder(files, map[ids.FileId]bool{2: true})
	assert.Equal(t, []ids.FileId{2, 3, 4, 1}, order)
}

func TestBestAnalysisOrderRespectsEdges(t *testing.T) {
	idx := NewDependencyIndex()
	idx.AddEdge(1, 2)
	idx.AddEdge(2, 3)
	idx.AddEdge(4, 3)
	order := idx.GetBestAnalysisOrder([]ids.FileId{1, 2, 3, 4}, nil)

	pos := map[ids.FileId]int{}
	for i, f := range order {
		pos[f] = i
	}
	// for every edge a -> b, b precedes a
	assert.Less(t, pos[2], pos[1])
	assert.Less(t, pos[3], pos[2])
	assert.Less(t, pos[3], pos[4])
}

func TestBestAnalysisOrderCycleAppends(t *testing.T) {
	idx := NewDependencyIndex()
	idx.AddEdge(1, 2)
	idx.AddEdge(2, 1)
	idx.AddEdge(3, 1)
	order := idx.GetBestAnalysisOrder([]ids.FileId{1, 2, 3}, nil)
	require.Len(t, order, 3)
	// cyclic participants still appear exactly once
	seen := map[ids.FileId]bool{}
	for _, f := range order {
		assert.False(t, seen[f])
		seen[f] = true
	}
}

func TestCollectFileDependents(t *testing.T) {
	idx := NewDependencyIndex()
	idx.AddEdge(2, 1) // 2 requires 1
	idx.AddEdge(3, 2)
	got := idx.CollectFileDependents(1)
	assert.ElementsMatch(t, []ids.FileId{1, 2, 3}, got)
}

func TestDependencyRemove(t *testing.T) {
	idx := NewDependencyIndex()
	idx.AddEdge(1, 2)
	idx.AddEdge(3, 2)
	idx.Remove(1)
	assert.Empty(t, idx.Dependencies(1))
	assert.ElementsMatch(t, []ids.FileId{3}, idx.Dependents(2))
}

func TestModuleFindRoundTrip(t *testing.T) {
	idx := NewModuleIndex()
	info := &ModuleInfo{File: 7, FullModuleName: "net.http.client", Name: "client", Visible: true, WorkspaceId: WorkspaceMain}
	idx.Insert(info)

	found, ok := idx.FindModule("net.http.client")
	require.True(t, ok)
	assert.Equal(t, ids.FileId(7), found.File)
}

func TestModuleConflictPrefersLibrary(t *testing.T) {
	idx := NewModuleIndex()
	idx.Insert(&ModuleInfo{File: 1, FullModuleName: "json", WorkspaceId: WorkspaceMain})
	idx.Insert(&ModuleInfo{File: 2, FullModuleName: "json", WorkspaceId: WorkspaceId(2)})

	found, ok := idx.FindModule("json")
	require.True(t, ok)
	assert.Equal(t, ids.FileId(2), found.File, "non-main workspace takes precedence")
}

func TestExtractModulePath(t *testing.T) {
	cfg := luaconfig.Default()
	cases := []struct {
		path string
		want string
	}{
		{"/ws/net/http/client.lua", "net.http.client"},
		{"/ws/net/init.lua", "net"},
		{"/ws/main.lua", "main"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractModulePath(cfg, "/ws", tc.path), tc.path)
	}
}

func TestExtractModulePathAppliesModuleMap(t *testing.T) {
	cfg := luaconfig.Default()
	cfg.Workspace.ModuleMap = []luaconfig.ModuleMapEntry{{Pattern: `^src\.`, Replace: ""}}
	assert.Equal(t, "app.core", ExtractModulePath(cfg, "/ws", "/ws/src/app/core.lua"))
}
