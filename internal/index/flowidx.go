package index

import (
	"github.com/emmylua-go/semacore/internal/flow"
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/types"
)

// FlowIndex is file -> FlowTree-per-closure, plus the
// signature_cast_cache memoizing type-narrowing casts attached to a
// function's parameters or `self` by its declaration: a ---@cast tag
// in the function's own doc block, keyed by the cast variable's name
// and applied to the matching argument when the function is called.
type FlowIndex struct {
	trees              map[ids.FileId]map[flow.ClosureRef]*flow.FlowTree
	signatureCastCache map[ids.SignatureId]map[string]types.Type
}

func NewFlowIndex() *FlowIndex {
	return &FlowIndex{
		trees:              map[ids.FileId]map[flow.ClosureRef]*flow.FlowTree{},
		signatureCastCache: map[ids.SignatureId]map[string]types.Type{},
	}
}

func (idx *FlowIndex) SetTrees(file ids.FileId, trees map[flow.ClosureRef]*flow.FlowTree) {
	idx.trees[file] = trees
}

// Trees returns every closure flow tree recorded for file.
func (idx *FlowIndex) Trees(file ids.FileId) map[flow.ClosureRef]*flow.FlowTree {
	return idx.trees[file]
}

func (idx *FlowIndex) Tree(file ids.FileId, ref flow.ClosureRef) (*flow.FlowTree, bool) {
	byFile, ok := idx.trees[file]
	if !ok {
		return nil, false
	}
	t, ok := byFile[ref]
	return t, ok
}

func (idx *FlowIndex) SetSignatureCast(sig ids.SignatureId, param string, ty types.Type) {
	byParam, ok := idx.signatureCastCache[sig]
	if !ok {
		byParam = map[string]types.Type{}
		idx.signatureCastCache[sig] = byParam
	}
	byParam[param] = ty
}

func (idx *FlowIndex) SignatureCast(sig ids.SignatureId, param string) (types.Type, bool) {
	byParam, ok := idx.signatureCastCache[sig]
	if !ok {
		return nil, false
	}
	t, ok := byParam[param]
	return t, ok
}

func (idx *FlowIndex) Remove(file ids.FileId) {
	delete(idx.trees, file)
	for sig := range idx.signatureCastCache {
		if sig.File == file {
			delete(idx.signatureCastCache, sig)
		}
	}
}

func (idx *FlowIndex) Clear() {
	idx.trees = map[ids.FileId]map[flow.ClosureRef]*flow.FlowTree{}
	idx.signatureCastCache = map[ids.SignatureId]map[string]types.Type{}
}
