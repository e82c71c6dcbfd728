package index

import "github.com/emmylua-go/semacore/internal/ids"

// RefCell is one occurrence of a reference.
type RefCell struct {
	Range   ids.Range
	IsWrite bool
}

// DeclRefs is the reference set for one decl: every occurrence plus
// whether any of them is a write.
type DeclRefs struct {
	Cells   []RefCell
	Mutable bool
}

// ReferenceIndex stores four independent reference maps:
// decl references per file, index (member-key) references, global
// references by name, and string-literal references.
type ReferenceIndex struct {
	declRefs   map[ids.FileId]map[ids.DeclId]*DeclRefs
	indexRefs  map[string][]RefCell // keyed by MemberKey.String()
	globalRefs map[string][]RefCell
	stringRefs map[string][]RefCell
}

func NewReferenceIndex() *ReferenceIndex {
	return &ReferenceIndex{
		declRefs:   map[ids.FileId]map[ids.DeclId]*DeclRefs{},
		indexRefs:  map[string][]RefCell{},
		globalRefs: map[string][]RefCell{},
		stringRefs: map[string][]RefCell{},
	}
}

func (idx *ReferenceIndex) AddDeclRef(decl ids.DeclId, rng ids.Range, isWrite bool) {
	byFile, ok := idx.declRefs[decl.File]
	if !ok {
		byFile = map[ids.DeclId]*DeclRefs{}
		idx.declRefs[decl.File] = byFile
	}
	refs, ok := byFile[decl]
	if !ok {
		refs = &DeclRefs{}
		byFile[decl] = refs
	}
	refs.Cells = append(refs.Cells, RefCell{Range: rng, IsWrite: isWrite})
	if isWrite {
		refs.Mutable = true
	}
}

func (idx *ReferenceIndex) DeclRefs(decl ids.DeclId) (*DeclRefs, bool) {
	byFile, ok := idx.declRefs[decl.File]
	if !ok {
		return nil, false
	}
	r, ok := byFile[decl]
	return r, ok
}

func (idx *ReferenceIndex) AddIndexRef(key string, rng ids.Range, isWrite bool) {
	idx.indexRefs[key] = append(idx.indexRefs[key], RefCell{Range: rng, IsWrite: isWrite})
}

func (idx *ReferenceIndex) IndexRefs(key string) []RefCell { return idx.indexRefs[key] }

func (idx *ReferenceIndex) AddGlobalRef(name string, rng ids.Range, isWrite bool) {
	idx.globalRefs[name] = append(idx.globalRefs[name], RefCell{Range: rng, IsWrite: isWrite})
}

func (idx *ReferenceIndex) GlobalRefs(name string) []RefCell { return idx.globalRefs[name] }

func (idx *ReferenceIndex) AddStringRef(value string, rng ids.Range) {
	idx.stringRefs[value] = append(idx.stringRefs[value], RefCell{Range: rng})
}

func (idx *ReferenceIndex) StringRefs(value string) []RefCell { return idx.stringRefs[value] }

func (idx *ReferenceIndex) Remove(file ids.FileId) {
	delete(idx.declRefs, file)
	// index/global/string refs aren't file-keyed at the top level; a
	// full rebuild re-derives them deterministically since analysis
	// always reprocesses every reference site in the removed file. A
	// real implementation would additionally track file provenance per
	// cell to prune surgically; left as a known limitation.
}

func (idx *ReferenceIndex) Clear() {
	idx.declRefs = map[ids.FileId]map[ids.DeclId]*DeclRefs{}
	idx.indexRefs = map[string][]RefCell{}
	idx.globalRefs = map[string][]RefCell{}
	idx.stringRefs = map[string][]RefCell{}
}
