// Package semacore is the host-facing surface of the semantic core:
// a Workspace owning the code database and VFS, from
// which hosts obtain per-file SemanticModel views. Ids are opaque to
// callers; SemanticDeclId, Type, Signature and ModuleInfo are the
// observable vocabulary. Queries never mutate workspace state; all
// writes go through Load/Replace/Remove/Analyze.
package semacore

import (
	"github.com/emmylua-go/semacore/internal/analyze"
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/luaconfig"
	"github.com/emmylua-go/semacore/internal/semantic"
	"github.com/emmylua-go/semacore/internal/vfs"
)

// Observable types, aliased so hosts never import internal packages.
type (
	Config         = luaconfig.Config
	FileId         = ids.FileId
	SyntaxTree     = vfs.SyntaxTree
	SemanticModel  = semantic.SemanticModel
	SemanticDeclId = ids.SemanticDeclId
	ModuleInfo     = index.ModuleInfo
	WorkspaceId    = index.WorkspaceId
)

const (
	WorkspaceStd  = index.WorkspaceStd
	WorkspaceMain = index.WorkspaceMain
)

// DefaultConfig returns the configuration a fresh workspace starts
// with.
func DefaultConfig() *Config { return luaconfig.Default() }

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) { return luaconfig.Load(path) }

// Workspace owns one code database and its VFS. Writes (Load,
// Replace, Remove, Analyze) must be serialized by the host; models
// may be used freely once writes have quiesced.
type Workspace struct {
	db  *index.DbIndex
	vfs *vfs.MemVFS
}

func NewWorkspace(cfg *Config) *Workspace {
	if cfg == nil {
		cfg = luaconfig.Default()
	}
	v := vfs.NewMemVFS()
	v.UpdateConfig(cfg)
	return &Workspace{db: index.NewDbIndex(v, cfg), vfs: v}
}

// Load registers a parsed file under path and returns its id. The
// module path is derived from path relative to workspaceRoot.
func (w *Workspace) Load(path, source string, tree *SyntaxTree, workspaceRoot string, ws WorkspaceId, isMeta bool) FileId {
	file := w.vfs.Load(path, source, tree)
	analyze.RegisterModule(w.db, file, workspaceRoot, ws, isMeta)
	return file
}

// Replace swaps a file's parsed content; the caller follows with
// Analyze over the file and its dependents.
func (w *Workspace) Replace(file FileId, source string, tree *SyntaxTree) {
	w.db.Remove(file)
	w.vfs.Replace(file, source, tree)
}

// Remove drops a file from every index and the VFS.
func (w *Workspace) Remove(file FileId) {
	w.db.Remove(file)
	w.vfs.Remove(file)
}

// Analyze runs the analyzers over files in the best analysis order
// (meta first, then dependency-topological).
func (w *Workspace) Analyze(files ...FileId) {
	analyze.AnalyzeAll(w.db, files)
}

// Dependents returns file plus everything transitively requiring it:
// the reanalysis set after an edit.
func (w *Workspace) Dependents(file FileId) []FileId {
	return w.db.Dependency.CollectFileDependents(file)
}

// BestAnalysisOrder exposes the scheduling order for a file set.
func (w *Workspace) BestAnalysisOrder(files []FileId) []FileId {
	return w.db.GetBestAnalysisOrder(files)
}

// Model returns a fresh per-query SemanticModel for file;
// each model carries its own inference cache.
func (w *Workspace) Model(file FileId) (*SemanticModel, bool) {
	return semantic.NewSemanticModel(w.db, file)
}

// Module returns the module registered for file.
func (w *Workspace) Module(file FileId) (*ModuleInfo, bool) {
	return w.db.Module.ModuleOf(file)
}

// FindModule resolves a dotted module path.
func (w *Workspace) FindModule(fullName string) (*ModuleInfo, bool) {
	return w.db.Module.FindModule(fullName)
}
