package syntax

import "github.com/emmylua-go/semacore/internal/ids"

// DocTag is any `---@...` annotation node attached to a statement.
type DocTag interface {
	Node
	docTagNode()
}

// DocType is a type expression written inside a doc comment (the
// right-hand side of @param/@return/@type/@alias/etc.), distinct from
// a code Expression.
type DocType interface {
	Node
	docTypeNode()
}

// --- Doc type nodes ---

type DocNamedType struct {
	base
	Name string
	Args []DocType // generic instantiation args, e.g. List<Int>
}

func (d *DocNamedType) Accept(v Visitor) { v.VisitDocNamedType(d) }
func (*DocNamedType) docTypeNode()       {}

type DocOpType struct {
	base
	Op    string // "|" (union) or "&" (intersection)
	Types []DocType
}

func (d *DocOpType) Accept(v Visitor) { v.VisitDocOpType(d) }
func (*DocOpType) docTypeNode()       {}

type DocArrayType struct {
	base
	Elem DocType
}

func (d *DocArrayType) Accept(v Visitor) { v.VisitDocArrayType(d) }
func (*DocArrayType) docTypeNode()       {}

type DocTableType struct {
	base
	Key   DocType
	Value DocType
}

func (d *DocTableType) Accept(v Visitor) { v.VisitDocTableType(d) }
func (*DocTableType) docTypeNode()       {}

// DocFuncType is `fun(a: T, ...): R`.
type DocFuncTypeNode struct {
	base
	ParamNames []string
	ParamTypes []DocType
	IsVariadic bool
	Rets       []DocType
}

func (d *DocFuncTypeNode) Accept(v Visitor) { v.VisitDocFuncType(d) }
func (*DocFuncTypeNode) docTypeNode()       {}

type DocLiteralType struct {
	base
	// one of: "nil", "int", "float", "string", "bool"
	Prim string
	Int  int64
	Flt  float64
	Str  string
	Bool bool
}

func (d *DocLiteralType) Accept(v Visitor) { v.VisitDocLiteralType(d) }
func (*DocLiteralType) docTypeNode()       {}

// DocObjectField is one `name: T` entry of an inline object type.
type DocObjectField struct {
	Name string
	Type DocType
}

// DocObjectType is an inline `{ kind: "a", val: number }` object type.
type DocObjectType struct {
	base
	Fields []DocObjectField
}

func (d *DocObjectType) Accept(v Visitor) { v.VisitDocObjectType(d) }
func (*DocObjectType) docTypeNode()       {}

// DocVariadicType is `T...`, a variadic span of T values, legal as a
// fun(...) parameter or return position.
type DocVariadicType struct {
	base
	Elem DocType
}

func (d *DocVariadicType) Accept(v Visitor) { v.VisitDocVariadicType(d) }
func (*DocVariadicType) docTypeNode()       {}

// DocTypeList is an explicit call-site generic argument list,
// `--[[@<T1, T2>]]`.
type DocTypeList struct {
	base
	Types []DocType
}

func (d *DocTypeList) Accept(v Visitor) { v.VisitDocTypeList(d) }
func (*DocTypeList) docTypeNode()       {}

// --- Doc tag nodes ---

type DocTagParam struct {
	base
	Name     string
	Type     DocType
	Optional bool
}

func (d *DocTagParam) Accept(v Visitor) { v.VisitDocTagParam(d) }
func (*DocTagParam) docTagNode()        {}

type DocTagReturn struct {
	base
	Type DocType
	Name string // optional name, per @return T name
}

func (d *DocTagReturn) Accept(v Visitor) { v.VisitDocTagReturn(d) }
func (*DocTagReturn) docTagNode()        {}

type DocTagType struct {
	base
	Type DocType
}

func (d *DocTagType) Accept(v Visitor) { v.VisitDocTagType(d) }
func (*DocTagType) docTagNode()        {}

type DocFieldDecl struct {
	Name string
	Type DocType
	Pos  ids.Position
}

type DocTagClass struct {
	base
	Name           string
	GenericParams  []string
	Supers         []DocType
	Fields         []DocFieldDecl
	PartialUpdates bool
}

func (d *DocTagClass) Accept(v Visitor) { v.VisitDocTagClass(d) }
func (*DocTagClass) docTagNode()        {}

type DocTagAlias struct {
	base
	Name          string
	GenericParams []string
	Value         DocType
}

func (d *DocTagAlias) Accept(v Visitor) { v.VisitDocTagAlias(d) }
func (*DocTagAlias) docTagNode()        {}

type DocEnumField struct {
	Name  string
	Value DocType // literal value, if any
}

type DocTagEnum struct {
	base
	Name   string
	Fields []DocEnumField
}

func (d *DocTagEnum) Accept(v Visitor) { v.VisitDocTagEnum(d) }
func (*DocTagEnum) docTagNode()        {}

type DocGenericParam struct {
	Name       string
	Constraint DocType // nil if unconstrained
}

type DocTagGeneric struct {
	base
	Params []DocGenericParam
}

func (d *DocTagGeneric) Accept(v Visitor) { v.VisitDocTagGeneric(d) }
func (*DocTagGeneric) docTagNode()        {}

// DocCastOp is one `+Type`/`-Type`/`Type` cast operation, with an
// optional `?` (nil-specific) modifier.
type DocCastOp struct {
	Op       string // "+", "-", "" (replace)
	Type     DocType
	NilOnly  bool
	Fallback DocType // used on the false branch, if declared
}

type DocTagCast struct {
	base
	Var string
	Ops []DocCastOp
}

func (d *DocTagCast) Accept(v Visitor) { v.VisitDocTagCast(d) }
func (*DocTagCast) docTagNode()        {}

type DocTagField struct {
	base
	Name string
	Type DocType
}

func (d *DocTagField) Accept(v Visitor) { v.VisitDocTagField(d) }
func (*DocTagField) docTagNode()        {}

// DocTagOverload attaches an additional fun(...) signature to a
// function declaration, distinct from its @param/@return-derived
// type.
type DocTagOverload struct {
	base
	Func *DocFuncTypeNode
}

func (d *DocTagOverload) Accept(v Visitor) { v.VisitDocTagOverload(d) }
func (*DocTagOverload) docTagNode()        {}

// DocTagVisibility is `@public`/`@protected`/`@private`/`@package`.
type DocTagVisibility struct {
	base
	Level string
}

func (d *DocTagVisibility) Accept(v Visitor) { v.VisitDocTagVisibility(d) }
func (*DocTagVisibility) docTagNode()        {}

type DocTagDeprecated struct {
	base
	Message string
}

func (d *DocTagDeprecated) Accept(v Visitor) { v.VisitDocTagDeprecated(d) }
func (*DocTagDeprecated) docTagNode()        {}

type DocTagSee struct {
	base
	Target string
}

func (d *DocTagSee) Accept(v Visitor) { v.VisitDocTagSee(d) }
func (*DocTagSee) docTagNode()        {}

// DocTagOperator is `@operator add(T): T`, a metamethod override
// declared on a class.
type DocTagOperator struct {
	base
	Name string // "add", "call", "pairs", "index", ...
	Func *DocFuncTypeNode
}

func (d *DocTagOperator) Accept(v Visitor) { v.VisitDocTagOperator(d) }
func (*DocTagOperator) docTagNode()        {}

// DiagnosticAction is "disable", "enable", or "disable-next-line".
type DiagnosticAction string

const (
	DiagDisable         DiagnosticAction = "disable"
	DiagEnable          DiagnosticAction = "enable"
	DiagDisableNextLine DiagnosticAction = "disable-next-line"
)

type DocTagDiagnostic struct {
	base
	Action DiagnosticAction
	Codes  []string // empty means "all codes"
}

func (d *DocTagDiagnostic) Accept(v Visitor) { v.VisitDocTagDiagnostic(d) }
func (*DocTagDiagnostic) docTagNode()        {}
