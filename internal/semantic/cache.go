package semantic

import (
	"github.com/emmylua-go/semacore/internal/flow"
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/narrow"
	"github.com/emmylua-go/semacore/internal/types"
)

// InferCache scopes one query session: expression types,
// expression-to-VarRefId resolutions, per-closure narrowing engines
// (each carrying its own (VarRefId, FlowId) memo), and the guard set
// preventing exponential re-narrowing through literal-equality rules
// and recursive module exports.
type InferCache struct {
	exprTypes map[ids.SyntaxId]types.Type
	varRefs   map[ids.SyntaxId]varRefEntry
	engines   map[flow.ClosureRef]*narrow.Engine

	exprActive   map[ids.SyntaxId]bool
	exportActive map[ids.FileId]bool
}

type varRefEntry struct {
	ref narrow.VarRefId
	ok  bool
}

func NewInferCache() *InferCache {
	return &InferCache{
		exprTypes:    map[ids.SyntaxId]types.Type{},
		varRefs:      map[ids.SyntaxId]varRefEntry{},
		engines:      map[flow.ClosureRef]*narrow.Engine{},
		exprActive:   map[ids.SyntaxId]bool{},
		exportActive: map[ids.FileId]bool{},
	}
}
