package syntax

import "github.com/emmylua-go/semacore/internal/ids"

// base carries the fields every concrete node shares: its kind and
// source range, from which SyntaxId() is derived.
type base struct {
	kind ids.SyntaxKind
	rng  ids.Range
}

func (b base) SyntaxId() ids.SyntaxId { return ids.SyntaxId{Kind: b.kind, Range: b.rng} }

func mkBase(k ids.SyntaxKind, r ids.Range) base { return base{kind: k, rng: r} }

// --- Statements ---

type Chunk struct {
	base
	Body *Block
}

func (c *Chunk) Accept(v Visitor) { v.VisitChunk(c) }

type Block struct {
	base
	Stats []Statement
}

func (b *Block) Accept(v Visitor) { v.VisitBlock(b) }

// LocalName is one name in a `local a, b <attrib> = ...` statement.
type LocalName struct {
	Name   string
	Pos    ids.Position
	Attrib string // "", "const", "close"
}

type LocalStat struct {
	base
	Names []LocalName
	Exprs []Expression
	Docs  []DocTag
}

func (s *LocalStat) Accept(v Visitor) { v.VisitLocalStat(s) }
func (*LocalStat) statementNode()     {}

type AssignStat struct {
	base
	Targets []Expression // NameExpr or IndexExpr
	Exprs   []Expression
}

func (s *AssignStat) Accept(v Visitor) { v.VisitAssignStat(s) }
func (*AssignStat) statementNode()     {}

// ElseIfClause is one `elseif cond then body` arm.
type ElseIfClause struct {
	Cond Expression
	Body *Block
}

type IfStat struct {
	base
	Cond    Expression
	Then    *Block
	ElseIfs []ElseIfClause
	Else    *Block // nil if no else
}

func (s *IfStat) Accept(v Visitor) { v.VisitIfStat(s) }
func (*IfStat) statementNode()     {}

type WhileStat struct {
	base
	Cond Expression
	Body *Block
}

func (s *WhileStat) Accept(v Visitor) { v.VisitWhileStat(s) }
func (*WhileStat) statementNode()     {}

type RepeatStat struct {
	base
	Body  *Block
	Until Expression
}

func (s *RepeatStat) Accept(v Visitor) { v.VisitRepeatStat(s) }
func (*RepeatStat) statementNode()     {}

type NumericForStat struct {
	base
	Var   LocalName
	Start Expression
	Stop  Expression
	Step  Expression // nil if omitted
	Body  *Block
}

func (s *NumericForStat) Accept(v Visitor) { v.VisitNumericForStat(s) }
func (*NumericForStat) statementNode()     {}

type GenericForStat struct {
	base
	Names []LocalName
	Exprs []Expression
	Body  *Block
}

func (s *GenericForStat) Accept(v Visitor) { v.VisitGenericForStat(s) }
func (*GenericForStat) statementNode()     {}

// FuncStat is `function Name.path:method(...) ... end`; IsMethod marks
// the colon-define form, which implicitly binds `self`.
type FuncStat struct {
	base
	Target   Expression // NameExpr or chain of IndexExpr
	IsMethod bool
	Params   []LocalName
	IsVararg bool
	Body     *Block
	SigPos   ids.Position
	Docs     []DocTag
}

func (s *FuncStat) Accept(v Visitor) { v.VisitFuncStat(s) }
func (*FuncStat) statementNode()     {}

type LocalFuncStat struct {
	base
	Name     LocalName
	Params   []LocalName
	IsVararg bool
	Body     *Block
	SigPos   ids.Position
	Docs     []DocTag
}

func (s *LocalFuncStat) Accept(v Visitor) { v.VisitLocalFuncStat(s) }
func (*LocalFuncStat) statementNode()     {}

type ReturnStat struct {
	base
	Exprs []Expression
}

func (s *ReturnStat) Accept(v Visitor) { v.VisitReturnStat(s) }
func (*ReturnStat) statementNode()     {}

type BreakStat struct{ base }

func (s *BreakStat) Accept(v Visitor) { v.VisitBreakStat(s) }
func (*BreakStat) statementNode()     {}

type GotoStat struct {
	base
	Label string
}

func (s *GotoStat) Accept(v Visitor) { v.VisitGotoStat(s) }
func (*GotoStat) statementNode()     {}

type LabelStat struct {
	base
	Name string
}

func (s *LabelStat) Accept(v Visitor) { v.VisitLabelStat(s) }
func (*LabelStat) statementNode()     {}

type CallStat struct {
	base
	Call *CallExpr
}

func (s *CallStat) Accept(v Visitor) { v.VisitCallStat(s) }
func (*CallStat) statementNode()     {}

type DoStat struct {
	base
	Body *Block
}

func (s *DoStat) Accept(v Visitor) { v.VisitDoStat(s) }
func (*DoStat) statementNode()     {}

// DocStat is a standalone `---@...` doc comment not attached to a
// following declaration, e.g. a bare `---@cast x string` or
// `---@diagnostic disable-next-line` above an arbitrary statement.
type DocStat struct {
	base
	Tags []DocTag
}

func (s *DocStat) Accept(v Visitor) { v.VisitDocStat(s) }
func (*DocStat) statementNode()     {}

// --- Expressions ---

type NameExpr struct {
	base
	Name string
}

func (e *NameExpr) Accept(v Visitor) { v.VisitNameExpr(e) }
func (*NameExpr) expressionNode()    {}

// IndexKeyKind discriminates `.name` access from `[expr]` access.
type IndexKeyKind uint8

const (
	IndexKeyDot IndexKeyKind = iota
	IndexKeyBracket
	IndexKeyColon // method-call target, e.g. obj:method
)

type IndexExpr struct {
	base
	Prefix  Expression
	KeyKind IndexKeyKind
	Name    string     // valid when KeyKind is Dot/Colon
	Key     Expression // valid when KeyKind is Bracket
}

func (e *IndexExpr) Accept(v Visitor) { v.VisitIndexExpr(e) }
func (*IndexExpr) expressionNode()    {}

type CallExpr struct {
	base
	Callee Expression
	Args   []Expression
	// GenericArgs holds explicit `--[[@<T1,T2>]]` call-site type
	// arguments, parsed as doc Type nodes.
	GenericArgs []DocType
}

func (e *CallExpr) Accept(v Visitor) { v.VisitCallExpr(e) }
func (*CallExpr) expressionNode()    {}

type LiteralKind uint8

const (
	LiteralNil LiteralKind = iota
	LiteralTrue
	LiteralFalse
	LiteralInt
	LiteralFloat
	LiteralString
	LiteralVararg // `...`
)

type LiteralExpr struct {
	base
	Kind LiteralKind
	Int  int64
	Flt  float64
	Str  string
}

func (e *LiteralExpr) Accept(v Visitor) { v.VisitLiteralExpr(e) }
func (*LiteralExpr) expressionNode()    {}

type BinaryOp string

const (
	OpAnd BinaryOp = "and"
	OpOr  BinaryOp = "or"
	OpEq  BinaryOp = "=="
	OpNe  BinaryOp = "~="
	OpLt  BinaryOp = "<"
	OpLe  BinaryOp = "<="
	OpGt  BinaryOp = ">"
	OpGe  BinaryOp = ">="
	OpLen BinaryOp = "#" // used only as a unary, kept here for symmetry
)

type BinaryExpr struct {
	base
	Op          BinaryOp
	Left, Right Expression
}

func (e *BinaryExpr) Accept(v Visitor) { v.VisitBinaryExpr(e) }
func (*BinaryExpr) expressionNode()    {}

type UnaryOp string

const (
	OpNot  UnaryOp = "not"
	OpNeg  UnaryOp = "-"
	OpHash UnaryOp = "#"
)

type UnaryExpr struct {
	base
	Op      UnaryOp
	Operand Expression
}

func (e *UnaryExpr) Accept(v Visitor) { v.VisitUnaryExpr(e) }
func (*UnaryExpr) expressionNode()    {}

type ParenExpr struct {
	base
	Inner Expression
}

func (e *ParenExpr) Accept(v Visitor) { v.VisitParenExpr(e) }
func (*ParenExpr) expressionNode()    {}

type ClosureExpr struct {
	base
	Params   []LocalName
	IsVararg bool
	Body     *Block
	SigPos   ids.Position
}

func (e *ClosureExpr) Accept(v Visitor) { v.VisitClosureExpr(e) }
func (*ClosureExpr) expressionNode()    {}

type TableFieldKind uint8

const (
	TableFieldPositional TableFieldKind = iota
	TableFieldNamed
	TableFieldIndexed
)

type TableField struct {
	Kind  TableFieldKind
	Name  string     // valid when Kind == Named
	Key   Expression // valid when Kind == Indexed
	Value Expression
	Doc   []DocTag // doc comments attached to this field
}

type TableExpr struct {
	base
	Fields []TableField
}

func (e *TableExpr) Accept(v Visitor) { v.VisitTableExpr(e) }
func (*TableExpr) expressionNode()    {}
