package index

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/luaconfig"
	"github.com/emmylua-go/semacore/internal/vfs"
)

// DbIndex is the Code Database: the aggregate owning every
// per-axis index plus the VFS and the active configuration snapshot.
// It is the single mutation point callers use to keep all indexes
// consistent when a file is added, edited, or removed.
type DbIndex struct {
	Vfs    vfs.Vfs
	Config *luaconfig.Config

	Decl       *DeclIndex
	Reference  *ReferenceIndex
	Type       *TypeIndex
	Module     *ModuleIndex
	Member     *MemberIndex
	Property   *PropertyIndex
	Signature  *SignatureIndex
	Diagnostic *DiagnosticIndex
	Operator   *OperatorIndex
	Flow       *FlowIndex
	Metatable  *MetatableIndex
	Global     *GlobalIndex
	Dependency *DependencyIndex

	metaFiles map[ids.FileId]bool
}

// NewDbIndex wires a fresh, empty set of indexes against vfs and cfg.
func NewDbIndex(v vfs.Vfs, cfg *luaconfig.Config) *DbIndex {
	return &DbIndex{
		Vfs:    v,
		Config: cfg,

		Decl:       NewDeclIndex(),
		Reference:  NewReferenceIndex(),
		Type:       NewTypeIndex(),
		Module:     NewModuleIndex(),
		Member:     NewMemberIndex(),
		Property:   NewPropertyIndex(),
		Signature:  NewSignatureIndex(),
		Diagnostic: NewDiagnosticIndex(),
		Operator:   NewOperatorIndex(),
		Flow:       NewFlowIndex(),
		Metatable:  NewMetatableIndex(),
		Global:     NewGlobalIndex(),
		Dependency: NewDependencyIndex(),

		metaFiles: map[ids.FileId]bool{},
	}
}

// MarkMeta records whether file carries a `---@meta` header, consulted
// by GetBestAnalysisOrder's tiebreak.
func (db *DbIndex) MarkMeta(file ids.FileId, isMeta bool) {
	if isMeta {
		db.metaFiles[file] = true
	} else {
		delete(db.metaFiles, file)
	}
}

func (db *DbIndex) IsMeta(file ids.FileId) bool { return db.metaFiles[file] }

// GetBestAnalysisOrder computes the reanalysis order for fileIds,
// using this db's recorded require graph and meta flags.
func (db *DbIndex) GetBestAnalysisOrder(fileIds []ids.FileId) []ids.FileId {
	return db.Dependency.GetBestAnalysisOrder(fileIds, db.metaFiles)
}

// Remove fans file's removal out to every per-axis index so no axis
// retains stale entries.
func (db *DbIndex) Remove(file ids.FileId) {
	db.Decl.Remove(file)
	db.Reference.Remove(file)
	db.Type.Remove(file)
	db.Module.Remove(file)
	db.Member.Remove(file)
	db.Property.Remove(file)
	db.Signature.Remove(file)
	db.Diagnostic.Remove(file)
	db.Operator.Remove(file)
	db.Flow.Remove(file)
	db.Metatable.Remove(file)
	db.Global.Remove(file)
	db.Dependency.Remove(file)
	delete(db.metaFiles, file)
}

// Clear resets every index to empty, e.g. on a full workspace reload.
func (db *DbIndex) Clear() {
	db.Decl.Clear()
	db.Reference.Clear()
	db.Type.Clear()
	db.Module.Clear()
	db.Member.Clear()
	db.Property.Clear()
	db.Signature.Clear()
	db.Diagnostic.Clear()
	db.Operator.Clear()
	db.Flow.Clear()
	db.Metatable.Clear()
	db.Global.Clear()
	db.Dependency.Clear()
	db.metaFiles = map[ids.FileId]bool{}
}
