package index

import "github.com/emmylua-go/semacore/internal/ids"

// DependencyIndex is the file -> file require graph,
// tracked in both directions so `collect_file_dependents` (reverse
// traversal, used to decide what must be reanalyzed after a file
// changes) doesn't need a full scan.
type DependencyIndex struct {
	deps       map[ids.FileId]map[ids.FileId]bool // file -> files it requires
	dependents map[ids.FileId]map[ids.FileId]bool // file -> files that require it
}

func NewDependencyIndex() *DependencyIndex {
	return &DependencyIndex{
		deps:       map[ids.FileId]map[ids.FileId]bool{},
		dependents: map[ids.FileId]map[ids.FileId]bool{},
	}
}

// AddEdge records that from requires to.
func (idx *DependencyIndex) AddEdge(from, to ids.FileId) {
	fwd, ok := idx.deps[from]
	if !ok {
		fwd = map[ids.FileId]bool{}
		idx.deps[from] = fwd
	}
	fwd[to] = true

	rev, ok := idx.dependents[to]
	if !ok {
		rev = map[ids.FileId]bool{}
		idx.dependents[to] = rev
	}
	rev[from] = true
}

func (idx *DependencyIndex) Dependencies(file ids.FileId) []ids.FileId {
	return setToSlice(idx.deps[file])
}

func (idx *DependencyIndex) Dependents(file ids.FileId) []ids.FileId {
	return setToSlice(idx.dependents[file])
}

// CollectFileDependents returns file and every file transitively
// depending on it, via reverse BFS.
func (idx *DependencyIndex) CollectFileDependents(file ids.FileId) []ids.FileId {
	seen := map[ids.FileId]bool{file: true}
	queue := []ids.FileId{file}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for dep := range idx.dependents[cur] {
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return setToSlice(seen)
}

func (idx *DependencyIndex) Remove(file ids.FileId) {
	for to := range idx.deps[file] {
		delete(idx.dependents[to], file)
	}
	delete(idx.deps, file)
	for from := range idx.dependents[file] {
		delete(idx.deps[from], file)
	}
	delete(idx.dependents, file)
}

func (idx *DependencyIndex) Clear() {
	idx.deps = map[ids.FileId]map[ids.FileId]bool{}
	idx.dependents = map[ids.FileId]map[ids.FileId]bool{}
}

func setToSlice(s map[ids.FileId]bool) []ids.FileId {
	out := make([]ids.FileId, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	return out
}

// GetBestAnalysisOrder computes a topological order over fileIds by
// the dependency graph recorded in idx, with metas (files carrying
// `---@meta`) sorted first among ties, then by FileId, and any files
// participating in a require cycle appended at the end in FileId
// order.
func (idx *DependencyIndex) GetBestAnalysisOrder(fileIds []ids.FileId, metas map[ids.FileId]bool) []ids.FileId {
	inSet := map[ids.FileId]bool{}
	for _, f := range fileIds {
		inSet[f] = true
	}

	// indegree[f] counts f's not-yet-ready prerequisites: files f
	// requires that are also in fileIds. f can only be emitted once all
	// of its requires have already been emitted.
	indegree := map[ids.FileId]int{}
	for _, f := range fileIds {
		indegree[f] = 0
	}
	for _, f := range fileIds {
		for dep := range idx.deps[f] {
			if inSet[dep] {
				indegree[f]++
			}
		}
	}

	remaining := map[ids.FileId]bool{}
	for _, f := range fileIds {
		remaining[f] = true
	}

	var order []ids.FileId
	for len(remaining) > 0 {
		var ready []ids.FileId
		for f := range remaining {
			if indegree[f] == 0 {
				ready = append(ready, f)
			}
		}
		if len(ready) == 0 {
			// Cycle: append all remaining files, sorted, and stop.
			order = append(order, sortFileIds(setOf(remaining))...)
			break
		}
		sortFilesMetaFirst(ready, metas)
		for _, f := range ready {
			order = append(order, f)
			delete(remaining, f)
			for dependent := range idx.dependents[f] {
				if remaining[dependent] {
					indegree[dependent]--
				}
			}
		}
	}
	return order
}

func setOf(m map[ids.FileId]bool) []ids.FileId {
	out := make([]ids.FileId, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	return out
}

func sortFileIds(fs []ids.FileId) []ids.FileId {
	for i := 1; i < len(fs); i++ {
		for j := i; j > 0 && fs[j] < fs[j-1]; j-- {
			fs[j], fs[j-1] = fs[j-1], fs[j]
		}
	}
	return fs
}

// sortFilesMetaFirst sorts fs in place: meta files before non-meta
// files, ties broken by FileId.
func sortFilesMetaFirst(fs []ids.FileId, metas map[ids.FileId]bool) {
	less := func(a, b ids.FileId) bool {
		am, bm := metas[a], metas[b]
		if am != bm {
			return am
		}
		return a < b
	}
	for i := 1; i < len(fs); i++ {
		for j := i; j > 0 && less(fs[j], fs[j-1]); j-- {
			fs[j], fs[j-1] = fs[j-1], fs[j]
		}
	}
}
