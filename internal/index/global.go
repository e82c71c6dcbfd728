package index

import "github.com/emmylua-go/semacore/internal/ids"

// GlobalIndex is name -> []DeclId for globally visible assignments.
type GlobalIndex struct {
	byName map[string][]ids.DeclId
}

func NewGlobalIndex() *GlobalIndex { return &GlobalIndex{byName: map[string][]ids.DeclId{}} }

func (idx *GlobalIndex) Add(name string, decl ids.DeclId) {
	idx.byName[name] = append(idx.byName[name], decl)
}

func (idx *GlobalIndex) Get(name string) []ids.DeclId { return idx.byName[name] }

func (idx *GlobalIndex) Remove(file ids.FileId) {
	for name, decls := range idx.byName {
		kept := decls[:0:0]
		for _, d := range decls {
			if d.File != file {
				kept = append(kept, d)
			}
		}
		if len(kept) == 0 {
			delete(idx.byName, name)
		} else {
			idx.byName[name] = kept
		}
	}
}

func (idx *GlobalIndex) Clear() { idx.byName = map[string][]ids.DeclId{} }
