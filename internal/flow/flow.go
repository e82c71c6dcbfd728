// Package flow builds and stores the per-file, per-closure
// control-flow graph: the structure the narrower (internal/narrow)
// walks backward to compute a variable's type at a program point.
package flow

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/syntax"
)

// Kind discriminates a FlowNode's role.
type Kind uint8

const (
	Start Kind = iota
	Unreachable
	BranchLabel
	LoopLabel
	NamedLabel
	DeclPosition
	Assignment
	TrueCondition
	FalseCondition
	ImplFunc
	ForIStat
	TagCast
	Break
	Return
)

// AntecedentKind discriminates a single predecessor from a merge point.
type AntecedentKind uint8

const (
	NoAntecedent AntecedentKind = iota
	AntecedentSingle
	AntecedentMultiple
)

// Antecedent is a node's predecessor link: none, a single node, or
// an index into the shared multi-antecedent table.
type Antecedent struct {
	Kind   AntecedentKind
	Single ids.FlowId
	Multi  int // index into FlowTree.MultipleAntecedents
}

// FlowNode is one vertex of the control-flow graph.
type FlowNode struct {
	Id         ids.FlowId
	Kind       Kind
	Antecedent Antecedent
	// Ptr carries the statement/expression a Kind-specific node refers
	// to: the assignment statement, the guarding condition expression,
	// the implicitly-named function statement, the for-i statement, or
	// the cast doc tag. Nil for Kind-s that don't need one.
	Ptr syntax.Node
	// Name carries the label text for NamedLabel nodes.
	Name string
	// DeclAt carries the bound position for DeclPosition nodes.
	DeclAt ids.Position
}

// FlowTree is the flow graph for one closure or chunk: an
// arena of FlowNode plus ancillary maps.
type FlowTree struct {
	Nodes               []FlowNode
	MultipleAntecedents [][]ids.FlowId
	// DeclBindExprRef maps a local decl to the flow-relevant value
	// expression that initializes it.
	DeclBindExprRef map[ids.DeclId]syntax.Expression
	// DeclBindMultiIndex records, for decls destructured from a
	// trailing multi-return, which value position (0-based) they take.
	DeclBindMultiIndex map[ids.DeclId]int
	// Bindings maps a syntax position to the flow node visible
	// immediately before it is evaluated.
	Bindings map[ids.SyntaxId]ids.FlowId
}

func newTree() *FlowTree {
	t := &FlowTree{
		DeclBindExprRef:    map[ids.DeclId]syntax.Expression{},
		DeclBindMultiIndex: map[ids.DeclId]int{},
		Bindings:           map[ids.SyntaxId]ids.FlowId{},
	}
	t.emit(FlowNode{Kind: Start})
	return t
}

func (t *FlowTree) emit(n FlowNode) ids.FlowId {
	id := ids.FlowId(len(t.Nodes))
	n.Id = id
	t.Nodes = append(t.Nodes, n)
	return id
}

func (t *FlowTree) single(k Kind, from ids.FlowId, ptr syntax.Node) ids.FlowId {
	return t.emit(FlowNode{Kind: k, Antecedent: Antecedent{Kind: AntecedentSingle, Single: from}, Ptr: ptr})
}

func (t *FlowTree) merge(k Kind, froms []ids.FlowId, name string) ids.FlowId {
	idx := len(t.MultipleAntecedents)
	t.MultipleAntecedents = append(t.MultipleAntecedents, froms)
	return t.emit(FlowNode{Kind: k, Antecedent: Antecedent{Kind: AntecedentMultiple, Multi: idx}, Name: name})
}

// Node returns the FlowNode for id.
func (t *FlowTree) Node(id ids.FlowId) FlowNode { return t.Nodes[id] }

// Antecedents resolves a node's predecessor set (0, 1, or N nodes).
func (t *FlowTree) Antecedents(n FlowNode) []ids.FlowId {
	switch n.Antecedent.Kind {
	case AntecedentSingle:
		return []ids.FlowId{n.Antecedent.Single}
	case AntecedentMultiple:
		return t.MultipleAntecedents[n.Antecedent.Multi]
	default:
		return nil
	}
}

// bindAt records that syntax id sees flow node id immediately before
// evaluation, and returns id for chaining.
func (t *FlowTree) bindAt(node syntax.Node, id ids.FlowId) ids.FlowId {
	if node != nil {
		t.Bindings[node.SyntaxId()] = id
	}
	return id
}

// BindingAt returns the flow node visible immediately before node's
// evaluation, if recorded.
func (t *FlowTree) BindingAt(node syntax.Node) (ids.FlowId, bool) {
	id, ok := t.Bindings[node.SyntaxId()]
	return id, ok
}
