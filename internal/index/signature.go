package index

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/types"
)

// ResolveReturnState discriminates whether a Signature's return type
// has been computed yet, and how.
type ResolveReturnState uint8

const (
	ResolveUnresolved ResolveReturnState = iota
	ResolveFromDoc
	ResolveFromInference
)

// ParamInfo is one @param tag's metadata, keyed by parameter index.
type ParamInfo struct {
	Name     string
	Type     types.Type
	Optional bool
	Doc      string
}

// ReturnInfo is one @return tag's metadata.
type ReturnInfo struct {
	Type types.Type
	Name string
	Doc  string
}

// Signature is a declared function's full type information: generic
// params, every overload (the primary @param/@return form plus any
// @overload-declared ones), and doc metadata.
type Signature struct {
	Id            ids.SignatureId
	GenericParams []types.GenericTpl
	Overloads     []*types.FunctionType
	ParamDocs     map[int]ParamInfo
	Params        []string
	ReturnDocs    []ReturnInfo
	ResolveReturn ResolveReturnState
	IsColonDefine bool
	Async         types.AsyncState
	NoDiscard     bool
	IsVararg      bool
}

// ReturnType is Nil if no returns were declared, the sole return, or
// a Variadic(Multi(...)) sequence otherwise, computed from the
// primary overload (Overloads[0]).
func (s *Signature) ReturnType() types.Type {
	if len(s.Overloads) == 0 {
		return types.P(types.Nil)
	}
	ret := s.Overloads[0].Ret
	if ret == nil {
		return types.P(types.Nil)
	}
	return ret
}

// SignatureIndex is SignatureId -> Signature.
type SignatureIndex struct {
	sigs map[ids.SignatureId]*Signature
	file map[ids.FileId][]ids.SignatureId
}

func NewSignatureIndex() *SignatureIndex {
	return &SignatureIndex{sigs: map[ids.SignatureId]*Signature{}, file: map[ids.FileId][]ids.SignatureId{}}
}

func (idx *SignatureIndex) Add(sig *Signature) {
	idx.sigs[sig.Id] = sig
	idx.file[sig.Id.File] = append(idx.file[sig.Id.File], sig.Id)
}

func (idx *SignatureIndex) Get(id ids.SignatureId) (*Signature, bool) {
	s, ok := idx.sigs[id]
	return s, ok
}

// AddOverload appends an additional FunctionType to an existing
// signature's overload set, for @overload declarations.
func (idx *SignatureIndex) AddOverload(id ids.SignatureId, ft *types.FunctionType) {
	if s, ok := idx.sigs[id]; ok {
		s.Overloads = append(s.Overloads, ft)
	}
}

func (idx *SignatureIndex) Remove(file ids.FileId) {
	for _, id := range idx.file[file] {
		delete(idx.sigs, id)
	}
	delete(idx.file, file)
}

func (idx *SignatureIndex) Clear() {
	idx.sigs = map[ids.SignatureId]*Signature{}
	idx.file = map[ids.FileId][]ids.SignatureId{}
}
