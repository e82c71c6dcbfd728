// Package syntax defines the parser contract the semantic core
// consumes: typed syntax pointers over a read-only CST. The core
// never parses; the concrete lexer/parser that produces these trees
// from Lua source text is a deliberately external collaborator. This
// package ships the node shapes only, as Node/Statement/Expression
// interfaces with an Accept(Visitor) walk.
package syntax

import "github.com/emmylua-go/semacore/internal/ids"

// Kind values for ids.SyntaxKind, used by every node below.
const (
	KindChunk ids.SyntaxKind = iota + 1
	KindBlock
	KindLocalStat
	KindAssignStat
	KindIfStat
	KindWhileStat
	KindRepeatStat
	KindNumericForStat
	KindGenericForStat
	KindFuncStat
	KindLocalFuncStat
	KindReturnStat
	KindBreakStat
	KindGotoStat
	KindLabelStat
	KindCallStat
	KindDoStat
	KindDocStat

	KindNameExpr
	KindIndexExpr
	KindCallExpr
	KindLiteralExpr
	KindBinaryExpr
	KindUnaryExpr
	KindParenExpr
	KindClosureExpr
	KindTableExpr

	KindDocTagParam
	KindDocTagReturn
	KindDocTagType
	KindDocTagClass
	KindDocTagAlias
	KindDocTagEnum
	KindDocTagGeneric
	KindDocTagCast
	KindDocTagField
	KindDocTagOverload
	KindDocTagDiagnostic
	KindDocTagVisibility
	KindDocTagDeprecated
	KindDocTagSee
	KindDocTagOperator
	KindDocOpType
	KindDocFuncType
	KindDocTypeList
	KindDocNamedType
	KindDocArrayType
	KindDocTableType
	KindDocLiteralType
	KindDocObjectType
	KindDocVariadicType
)

// Node is the base interface every CST node implements.
type Node interface {
	Accept(v Visitor)
	SyntaxId() ids.SyntaxId
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// AstPtr is a stable, serializable reference into a CST: the file it
// lives in plus the node's SyntaxId. It round-trips through
// (FileId, SyntaxId) alone, never an owning pointer into the tree.
type AstPtr[T Node] struct {
	File FileRef
	Id   ids.SyntaxId
}

// FileRef is a thin alias kept distinct from ids.FileId so AstPtr's
// zero value is self-describing in debugger output.
type FileRef = ids.FileId

// Cast attempts to resolve an AstPtr to its concrete node via a
// resolver function.
func Cast[T Node](ptr AstPtr[T], resolve func(ids.FileId, ids.SyntaxId) Node) (T, bool) {
	var zero T
	n := resolve(ptr.File, ptr.Id)
	if n == nil {
		return zero, false
	}
	t, ok := n.(T)
	return t, ok
}
