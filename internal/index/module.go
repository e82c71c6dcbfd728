package index

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/luaconfig"
)

// WorkspaceId values: STD=0, MAIN=1, libraries >= 2.
type WorkspaceId uint32

const (
	WorkspaceStd  WorkspaceId = 0
	WorkspaceMain WorkspaceId = 1
)

// ModuleNodeId indexes a node of the module trie; the root is 0.
// Anonymous (file-less) nodes created for synthetic requires get a
// uuid-derived id so they never collide with a real trie-assigned
// index.
type ModuleNodeId struct {
	Idx     uint32
	Synth   bool
	SynthId uuid.UUID
}

var rootModuleNode = ModuleNodeId{Idx: 0}

// ModuleInfo is one file's registration in the module tree.
type ModuleInfo struct {
	File           ids.FileId
	FullModuleName string
	Name           string
	ModuleId       ModuleNodeId
	Visible        bool
	ExportType     interface{} // types.Type; interface{} to avoid import for a rarely-filled optional
	VersionConds   []VersionCond
	WorkspaceId    WorkspaceId
	SemanticId     *string
	IsMeta         bool
}

type moduleNode struct {
	id       ModuleNodeId
	parent   *ModuleNodeId
	children map[string]ModuleNodeId
	fileIds  []ids.FileId
}

// ModuleIndex is the module tree: a trie of path segments
// rooted at id 0, plus the ModuleInfo registered per file.
type ModuleIndex struct {
	nodes  []*moduleNode
	byName map[string]*ModuleInfo
	byFile map[ids.FileId]*ModuleInfo
}

func NewModuleIndex() *ModuleIndex {
	return &ModuleIndex{
		nodes:  []*moduleNode{{id: rootModuleNode, children: map[string]ModuleNodeId{}}},
		byName: map[string]*ModuleInfo{},
		byFile: map[ids.FileId]*ModuleInfo{},
	}
}

func (idx *ModuleIndex) node(id ModuleNodeId) *moduleNode { return idx.nodes[id.Idx] }

// Insert registers full_module_name (dot-separated) for file, creating
// trie nodes as needed, and returns the leaf node's id. On a
// cross-workspace conflict, a non-main workspace takes precedence over
// WorkspaceMain.
func (idx *ModuleIndex) Insert(info *ModuleInfo) ModuleNodeId {
	cur := rootModuleNode
	if info.FullModuleName != "" {
		for _, seg := range strings.Split(info.FullModuleName, ".") {
			n := idx.node(cur)
			if child, ok := n.children[seg]; ok {
				cur = child
			} else {
				childId := ModuleNodeId{Idx: uint32(len(idx.nodes))}
				parent := cur
				idx.nodes = append(idx.nodes, &moduleNode{id: childId, parent: &parent, children: map[string]ModuleNodeId{}})
				n.children[seg] = childId
				cur = childId
			}
		}
	}
	idx.node(cur).fileIds = append(idx.node(cur).fileIds, info.File)
	info.ModuleId = cur

	if existing, ok := idx.byName[info.FullModuleName]; ok {
		if existing.WorkspaceId == WorkspaceMain && info.WorkspaceId != WorkspaceMain {
			idx.byName[info.FullModuleName] = info
		}
	} else {
		idx.byName[info.FullModuleName] = info
	}
	idx.byFile[info.File] = info
	return cur
}

// NewSynthNode mints an anonymous module node for a synthetic require
// target that has no backing file.
func (idx *ModuleIndex) NewSynthNode() ModuleNodeId {
	return ModuleNodeId{Synth: true, SynthId: uuid.New()}
}

func (idx *ModuleIndex) FindModule(fullName string) (*ModuleInfo, bool) {
	m, ok := idx.byName[fullName]
	return m, ok
}

func (idx *ModuleIndex) ModuleOf(file ids.FileId) (*ModuleInfo, bool) {
	m, ok := idx.byFile[file]
	return m, ok
}

func (idx *ModuleIndex) Remove(file ids.FileId) {
	info, ok := idx.byFile[file]
	if !ok {
		return
	}
	delete(idx.byFile, file)
	if idx.byName[info.FullModuleName] == info {
		delete(idx.byName, info.FullModuleName)
	}
	if !info.ModuleId.Synth {
		n := idx.node(info.ModuleId)
		kept := n.fileIds[:0:0]
		for _, f := range n.fileIds {
			if f != file {
				kept = append(kept, f)
			}
		}
		n.fileIds = kept
	}
}

func (idx *ModuleIndex) Clear() {
	idx.nodes = []*moduleNode{{id: rootModuleNode, children: map[string]ModuleNodeId{}}}
	idx.byName = map[string]*ModuleInfo{}
	idx.byFile = map[ids.FileId]*ModuleInfo{}
}

// ExtractModulePath derives a file's dotted module path: strip the
// workspace root, match against the configured
// require_pattern (longest match wins), normalize separators to '.',
// then apply configured regex module-map replacements.
func ExtractModulePath(cfg *luaconfig.Config, workspaceRoot, filePath string) string {
	rel := strings.TrimPrefix(filePath, workspaceRoot)
	rel = strings.TrimPrefix(rel, "/")
	rel = strings.TrimPrefix(rel, "\\")

	// longest pattern match wins: "?/init.lua" beats "?.lua" for
	// net/init.lua, so the module is "net", not "net.init"
	best := rel
	bestLen := -1
	for _, pat := range cfg.Runtime.RequirePattern {
		if stripped, ok := matchRequirePattern(pat, rel); ok && len(pat) > bestLen {
			best = stripped
			bestLen = len(pat)
		}
	}

	best = strings.ReplaceAll(best, "/", ".")
	best = strings.ReplaceAll(best, "\\", ".")

	for _, m := range cfg.Workspace.ModuleMap {
		re, err := regexp.Compile(m.Pattern)
		if err != nil {
			continue
		}
		best = re.ReplaceAllString(best, m.Replace)
	}
	return best
}

// matchRequirePattern matches a pattern like "?.lua" or "?/init.lua"
// against rel, returning the '?' capture with its extension stripped.
func matchRequirePattern(pattern, rel string) (string, bool) {
	idx := strings.IndexByte(pattern, '?')
	if idx < 0 {
		return "", false
	}
	prefix, suffix := pattern[:idx], pattern[idx+1:]
	if !strings.HasPrefix(rel, prefix) || !strings.HasSuffix(rel, suffix) {
		return "", false
	}
	return rel[len(prefix) : len(rel)-len(suffix)], true
}
