package index

import "github.com/emmylua-go/semacore/internal/ids"

// MetatableIndex is `{table-range} -> {metatable-range}`,
// recording which literal table expression was installed as another's
// metatable via setmetatable.
type MetatableIndex struct {
	entries map[ids.FileId]map[ids.Range]ids.Range
}

func NewMetatableIndex() *MetatableIndex {
	return &MetatableIndex{entries: map[ids.FileId]map[ids.Range]ids.Range{}}
}

func (idx *MetatableIndex) Set(file ids.FileId, table, metatable ids.Range) {
	byFile, ok := idx.entries[file]
	if !ok {
		byFile = map[ids.Range]ids.Range{}
		idx.entries[file] = byFile
	}
	byFile[table] = metatable
}

func (idx *MetatableIndex) Get(file ids.FileId, table ids.Range) (ids.Range, bool) {
	byFile, ok := idx.entries[file]
	if !ok {
		return ids.Range{}, false
	}
	r, ok := byFile[table]
	return r, ok
}

func (idx *MetatableIndex) Remove(file ids.FileId) { delete(idx.entries, file) }
func (idx *MetatableIndex) Clear()                 { idx.entries = map[ids.FileId]map[ids.Range]ids.Range{} }
