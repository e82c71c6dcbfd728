package index

import (
	"github.com/emmylua-go/semacore/internal/diagnostics"
	"github.com/emmylua-go/semacore/internal/ids"
)

// DiagnosticIndex accumulates analyzer errors and inline
// disable/enable filters per file.
type DiagnosticIndex struct {
	errs    map[ids.FileId][]*diagnostics.DiagnosticError
	filters map[ids.FileId]*diagnostics.Filter
}

func NewDiagnosticIndex() *DiagnosticIndex {
	return &DiagnosticIndex{
		errs:    map[ids.FileId][]*diagnostics.DiagnosticError{},
		filters: map[ids.FileId]*diagnostics.Filter{},
	}
}

func (idx *DiagnosticIndex) Report(e *diagnostics.DiagnosticError) {
	idx.errs[e.File] = append(idx.errs[e.File], e)
}

func (idx *DiagnosticIndex) Filter(file ids.FileId) *diagnostics.Filter {
	f, ok := idx.filters[file]
	if !ok {
		f = diagnostics.NewFilter(file)
		idx.filters[file] = f
	}
	return f
}

// Diagnostics returns file's accumulated errors, with inline directives
// applied.
func (idx *DiagnosticIndex) Diagnostics(file ids.FileId, lineOf func(ids.Position) int) []*diagnostics.DiagnosticError {
	errs := idx.errs[file]
	f, ok := idx.filters[file]
	if !ok {
		return errs
	}
	return f.ApplyAll(errs, lineOf)
}

func (idx *DiagnosticIndex) Remove(file ids.FileId) {
	delete(idx.errs, file)
	delete(idx.filters, file)
}

func (idx *DiagnosticIndex) Clear() {
	idx.errs = map[ids.FileId][]*diagnostics.DiagnosticError{}
	idx.filters = map[ids.FileId]*diagnostics.Filter{}
}
