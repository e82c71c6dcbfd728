// Package vfs defines the VFS contract the semantic core consumes
// plus a reference in-memory implementation used by tests
// and the demo CLI. File watching and real filesystem I/O remain
// external collaborators; this package owns no source text beyond
// what a test or caller explicitly loads.
package vfs

import (
	"sync"

	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/luaconfig"
	"github.com/emmylua-go/semacore/internal/syntax"
)

// SyntaxTree is the parsed form of one file: its root Chunk plus a
// lookup from SyntaxId back to Node, standing in for the red-tree the
// real parser would hand back.
type SyntaxTree struct {
	Root  *syntax.Chunk
	Nodes map[ids.SyntaxId]syntax.Node
}

func (t *SyntaxTree) Resolve(_ ids.FileId, id ids.SyntaxId) syntax.Node {
	if t == nil {
		return nil
	}
	return t.Nodes[id]
}

// Vfs owns source text and parsed trees; the core holds neither
// directly.
type Vfs interface {
	GetSyntaxTree(file ids.FileId) (*SyntaxTree, bool)
	Load(path string, source string, tree *SyntaxTree) ids.FileId
	Replace(file ids.FileId, source string, tree *SyntaxTree)
	Remove(file ids.FileId)
	UpdateConfig(cfg *luaconfig.Config)
	Path(file ids.FileId) (string, bool)
}

// MemVFS is a reference in-memory Vfs, assigning FileIds by first
// observation and never reusing one after removal within a session.
type MemVFS struct {
	mu      sync.RWMutex
	nextID  ids.FileId
	paths   map[ids.FileId]string
	byPath  map[string]ids.FileId
	sources map[ids.FileId]string
	trees   map[ids.FileId]*SyntaxTree
	cfg     *luaconfig.Config
}

func NewMemVFS() *MemVFS {
	return &MemVFS{
		nextID:  1,
		paths:   map[ids.FileId]string{},
		byPath:  map[string]ids.FileId{},
		sources: map[ids.FileId]string{},
		trees:   map[ids.FileId]*SyntaxTree{},
	}
}

func (m *MemVFS) GetSyntaxTree(file ids.FileId) (*SyntaxTree, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trees[file]
	return t, ok
}

func (m *MemVFS) Load(path string, source string, tree *SyntaxTree) ids.FileId {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byPath[path]; ok {
		m.sources[id] = source
		m.trees[id] = tree
		return id
	}
	id := m.nextID
	m.nextID++
	m.paths[id] = path
	m.byPath[path] = id
	m.sources[id] = source
	m.trees[id] = tree
	return id
}

func (m *MemVFS) Replace(file ids.FileId, source string, tree *SyntaxTree) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[file] = source
	m.trees[file] = tree
}

func (m *MemVFS) Remove(file ids.FileId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.paths[file]; ok {
		delete(m.byPath, p)
	}
	delete(m.paths, file)
	delete(m.sources, file)
	delete(m.trees, file)
}

func (m *MemVFS) UpdateConfig(cfg *luaconfig.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

func (m *MemVFS) Path(file ids.FileId) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.paths[file]
	return p, ok
}

func (m *MemVFS) Source(file ids.FileId) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sources[file]
	return s, ok
}
