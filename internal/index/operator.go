package index

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/types"
)

// OperatorFuncKind discriminates how an Operator's behavior is
// expressed.
type OperatorFuncKind uint8

const (
	OperatorFuncInline OperatorFuncKind = iota
	OperatorFuncSignature
	OperatorDefaultClassCtor
)

// OperatorFunc is how an operator's behavior is expressed: an inline
// function type, a reference to a declared signature, or the synthesized
// default constructor for a class with no explicit one.
type OperatorFunc struct {
	Kind        OperatorFuncKind
	Inline      *types.FunctionType
	Signature   ids.SignatureId
	CtorOwner   ids.TypeDeclId
	StripSelf   bool
	ReturnsSelf bool
}

// Operator is a metamethod or operator override.
type Operator struct {
	Id         ids.OperatorId
	Owner      MemberOwner
	Metamethod string // "__index", "__add", "__call", ...
	Func       OperatorFunc
}

// OperatorIndex is (owner, metamethod) -> []OperatorId -> Operator.
type OperatorIndex struct {
	byOwner map[interface{}]map[string][]*Operator
	file    map[ids.FileId][]*Operator
}

func NewOperatorIndex() *OperatorIndex {
	return &OperatorIndex{byOwner: map[interface{}]map[string][]*Operator{}, file: map[ids.FileId][]*Operator{}}
}

func (idx *OperatorIndex) Add(op *Operator) {
	byMeta, ok := idx.byOwner[op.Owner.key()]
	if !ok {
		byMeta = map[string][]*Operator{}
		idx.byOwner[op.Owner.key()] = byMeta
	}
	byMeta[op.Metamethod] = append(byMeta[op.Metamethod], op)
	idx.file[op.Id.File] = append(idx.file[op.Id.File], op)
}

func (idx *OperatorIndex) Get(owner MemberOwner, metamethod string) []*Operator {
	byMeta, ok := idx.byOwner[owner.key()]
	if !ok {
		return nil
	}
	return byMeta[metamethod]
}

func (idx *OperatorIndex) Remove(file ids.FileId) {
	for _, op := range idx.file[file] {
		byMeta, ok := idx.byOwner[op.Owner.key()]
		if !ok {
			continue
		}
		list := byMeta[op.Metamethod][:0:0]
		for _, cand := range byMeta[op.Metamethod] {
			if cand.Id.File != file {
				list = append(list, cand)
			}
		}
		if len(list) == 0 {
			delete(byMeta, op.Metamethod)
		} else {
			byMeta[op.Metamethod] = list
		}
	}
	delete(idx.file, file)
}

func (idx *OperatorIndex) Clear() {
	idx.byOwner = map[interface{}]map[string][]*Operator{}
	idx.file = map[ids.FileId][]*Operator{}
}
