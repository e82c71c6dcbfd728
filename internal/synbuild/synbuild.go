// Package synbuild assembles syntax trees by hand for tests and the
// demo tooling, standing in for the external parser. A
// Builder allocates monotonically increasing byte positions, so nodes
// built in source order get the same relative layout a parsed file
// would have: declarations precede their references, scope ranges
// nest, and every node has a distinct SyntaxId.
package synbuild

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/syntax"
	"github.com/emmylua-go/semacore/internal/vfs"
)

type Builder struct {
	cur   ids.Position
	nodes map[ids.SyntaxId]syntax.Node
}

func New() *Builder {
	return &Builder{nodes: map[ids.SyntaxId]syntax.Node{}}
}

// alloc reserves w bytes plus a one-byte separator.
func (b *Builder) alloc(w uint32) ids.Range {
	r := ids.Range{Start: b.cur, End: b.cur + ids.Position(w)}
	b.cur += ids.Position(w) + 1
	return r
}

// Mark returns the current position; composites built after a Mark
// span from it to the builder's position at construction time.
func (b *Builder) Mark() ids.Position { return b.cur }

func (b *Builder) span(start ids.Position) ids.Range {
	r := ids.Range{Start: start, End: b.cur}
	b.cur++
	return r
}

func (b *Builder) add(n syntax.Node) {
	b.nodes[n.SyntaxId()] = n
}

// Tree wraps the statements built so far into a chunk spanning the
// whole "file" and returns the SyntaxTree a Vfs would hand back.
func (b *Builder) Tree(stats ...syntax.Statement) *vfs.SyntaxTree {
	body := syntax.NewBlock(ids.Range{Start: 0, End: b.cur}, stats)
	b.add(body)
	b.cur++
	chunk := syntax.NewChunk(ids.Range{Start: 0, End: b.cur}, body)
	b.add(chunk)
	return &vfs.SyntaxTree{Root: chunk, Nodes: b.nodes}
}

// --- leaves ---

func (b *Builder) Name(n string) *syntax.NameExpr {
	e := syntax.NewNameExpr(b.alloc(uint32(len(n))), n)
	b.add(e)
	return e
}

func (b *Builder) Str(s string) *syntax.LiteralExpr {
	e := syntax.NewLiteralString(b.alloc(uint32(len(s))+2), s)
	b.add(e)
	return e
}

func (b *Builder) Int(v int64) *syntax.LiteralExpr {
	e := syntax.NewLiteralInt(b.alloc(2), v)
	b.add(e)
	return e
}

func (b *Builder) Float(v float64) *syntax.LiteralExpr {
	e := syntax.NewLiteralFloat(b.alloc(3), v)
	b.add(e)
	return e
}

func (b *Builder) Bool(v bool) *syntax.LiteralExpr {
	e := syntax.NewLiteralBool(b.alloc(5), v)
	b.add(e)
	return e
}

func (b *Builder) Nil() *syntax.LiteralExpr {
	e := syntax.NewLiteralNil(b.alloc(3))
	b.add(e)
	return e
}

func (b *Builder) Vararg() *syntax.LiteralExpr {
	e := syntax.NewLiteralVararg(b.alloc(3))
	b.add(e)
	return e
}

// LocalName allocates the position of one binding name.
func (b *Builder) LocalName(n string) syntax.LocalName {
	r := b.alloc(uint32(len(n)))
	return syntax.LocalName{Name: n, Pos: r.Start}
}

// SigPos reserves the position a closure's signature is keyed by.
func (b *Builder) SigPos() ids.Position {
	return b.alloc(1).Start
}

// --- expressions ---

func (b *Builder) Dot(prefix syntax.Expression, name string) *syntax.IndexExpr {
	start := prefix.SyntaxId().Range.Start
	b.alloc(uint32(len(name)))
	e := syntax.NewIndexExpr(b.span(start), prefix, syntax.IndexKeyDot, name, nil)
	b.add(e)
	return e
}

func (b *Builder) Bracket(prefix, key syntax.Expression) *syntax.IndexExpr {
	start := prefix.SyntaxId().Range.Start
	e := syntax.NewIndexExpr(b.span(start), prefix, syntax.IndexKeyBracket, "", key)
	b.add(e)
	return e
}

func (b *Builder) Call(callee syntax.Expression, args ...syntax.Expression) *syntax.CallExpr {
	start := callee.SyntaxId().Range.Start
	e := syntax.NewCallExpr(b.span(start), callee, args, nil)
	b.add(e)
	return e
}

func (b *Builder) CallGeneric(callee syntax.Expression, genericArgs []syntax.DocType, args ...syntax.Expression) *syntax.CallExpr {
	start := callee.SyntaxId().Range.Start
	e := syntax.NewCallExpr(b.span(start), callee, args, genericArgs)
	b.add(e)
	return e
}

func (b *Builder) Binary(op syntax.BinaryOp, left, right syntax.Expression) *syntax.BinaryExpr {
	start := left.SyntaxId().Range.Start
	e := syntax.NewBinaryExpr(b.span(start), op, left, right)
	b.add(e)
	return e
}

func (b *Builder) Unary(op syntax.UnaryOp, operand syntax.Expression) *syntax.UnaryExpr {
	start := operand.SyntaxId().Range.Start
	e := syntax.NewUnaryExpr(b.span(start), op, operand)
	b.add(e)
	return e
}

func (b *Builder) Paren(inner syntax.Expression) *syntax.ParenExpr {
	start := inner.SyntaxId().Range.Start
	e := syntax.NewParenExpr(b.span(start), inner)
	b.add(e)
	return e
}

func (b *Builder) Closure(params []syntax.LocalName, isVararg bool, body *syntax.Block, sigPos ids.Position) *syntax.ClosureExpr {
	e := syntax.NewClosureExpr(b.span(sigPos), params, isVararg, body, sigPos)
	b.add(e)
	return e
}

func (b *Builder) Table(start ids.Position, fields ...syntax.TableField) *syntax.TableExpr {
	e := syntax.NewTableExpr(b.span(start), fields)
	b.add(e)
	return e
}

// --- statements ---

func (b *Builder) Block(start ids.Position, stats ...syntax.Statement) *syntax.Block {
	if len(stats) == 0 {
		b.alloc(1)
	}
	blk := syntax.NewBlock(b.span(start), stats)
	b.add(blk)
	return blk
}

func (b *Builder) Local(start ids.Position, names []syntax.LocalName, exprs []syntax.Expression, docs ...syntax.DocTag) *syntax.LocalStat {
	s := syntax.NewLocalStat(b.span(start), names, exprs, docs)
	b.add(s)
	return s
}

func (b *Builder) Assign(targets, exprs []syntax.Expression) *syntax.AssignStat {
	start := targets[0].SyntaxId().Range.Start
	s := syntax.NewAssignStat(b.span(start), targets, exprs)
	b.add(s)
	return s
}

func (b *Builder) If(start ids.Position, cond syntax.Expression, then *syntax.Block, els *syntax.Block) *syntax.IfStat {
	s := syntax.NewIfStat(b.span(start), cond, then, nil, els)
	b.add(s)
	return s
}

func (b *Builder) IfElseIf(start ids.Position, cond syntax.Expression, then *syntax.Block, elseIfs []syntax.ElseIfClause, els *syntax.Block) *syntax.IfStat {
	s := syntax.NewIfStat(b.span(start), cond, then, elseIfs, els)
	b.add(s)
	return s
}

func (b *Builder) While(start ids.Position, cond syntax.Expression, body *syntax.Block) *syntax.WhileStat {
	s := syntax.NewWhileStat(b.span(start), cond, body)
	b.add(s)
	return s
}

func (b *Builder) Repeat(start ids.Position, body *syntax.Block, until syntax.Expression) *syntax.RepeatStat {
	s := syntax.NewRepeatStat(b.span(start), body, until)
	b.add(s)
	return s
}

func (b *Builder) NumericFor(start ids.Position, v syntax.LocalName, from, to, step syntax.Expression, body *syntax.Block) *syntax.NumericForStat {
	s := syntax.NewNumericForStat(b.span(start), v, from, to, step, body)
	b.add(s)
	return s
}

func (b *Builder) GenericFor(start ids.Position, names []syntax.LocalName, exprs []syntax.Expression, body *syntax.Block) *syntax.GenericForStat {
	s := syntax.NewGenericForStat(b.span(start), names, exprs, body)
	b.add(s)
	return s
}

func (b *Builder) FuncStat(start ids.Position, target syntax.Expression, isMethod bool, params []syntax.LocalName, isVararg bool, body *syntax.Block, sigPos ids.Position, docs ...syntax.DocTag) *syntax.FuncStat {
	s := syntax.NewFuncStat(b.span(start), target, isMethod, params, isVararg, body, sigPos, docs)
	b.add(s)
	return s
}

func (b *Builder) LocalFunc(start ids.Position, name syntax.LocalName, params []syntax.LocalName, isVararg bool, body *syntax.Block, sigPos ids.Position, docs ...syntax.DocTag) *syntax.LocalFuncStat {
	s := syntax.NewLocalFuncStat(b.span(start), name, params, isVararg, body, sigPos, docs)
	b.add(s)
	return s
}

func (b *Builder) Return(start ids.Position, exprs ...syntax.Expression) *syntax.ReturnStat {
	s := syntax.NewReturnStat(b.span(start), exprs)
	b.add(s)
	return s
}

func (b *Builder) Break() *syntax.BreakStat {
	s := syntax.NewBreakStat(b.alloc(5))
	b.add(s)
	return s
}

func (b *Builder) CallStat(call *syntax.CallExpr) *syntax.CallStat {
	s := syntax.NewCallStat(call.SyntaxId().Range, call)
	b.add(s)
	return s
}

func (b *Builder) DocStat(tags ...syntax.DocTag) *syntax.DocStat {
	start := b.Mark()
	b.alloc(1)
	s := syntax.NewDocStat(b.span(start), tags)
	b.add(s)
	return s
}

// --- doc types ---

func (b *Builder) DocNamed(name string, args ...syntax.DocType) *syntax.DocNamedType {
	d := syntax.NewDocNamedType(b.alloc(uint32(len(name))), name, args)
	b.add(d)
	return d
}

func (b *Builder) DocUnion(ts ...syntax.DocType) *syntax.DocOpType {
	d := syntax.NewDocOpType(b.alloc(1), "|", ts)
	b.add(d)
	return d
}

func (b *Builder) DocArray(elem syntax.DocType) *syntax.DocArrayType {
	d := syntax.NewDocArrayType(b.alloc(2), elem)
	b.add(d)
	return d
}

func (b *Builder) DocTable(key, value syntax.DocType) *syntax.DocTableType {
	d := syntax.NewDocTableType(b.alloc(2), key, value)
	b.add(d)
	return d
}

func (b *Builder) DocFun(paramNames []string, paramTypes []syntax.DocType, isVariadic bool, rets ...syntax.DocType) *syntax.DocFuncTypeNode {
	d := syntax.NewDocFuncType(b.alloc(4), paramNames, paramTypes, isVariadic, rets)
	b.add(d)
	return d
}

func (b *Builder) DocLitStr(s string) *syntax.DocLiteralType {
	d := syntax.NewDocLiteralString(b.alloc(uint32(len(s))+2), s)
	b.add(d)
	return d
}

func (b *Builder) DocLitInt(v int64) *syntax.DocLiteralType {
	d := syntax.NewDocLiteralInt(b.alloc(2), v)
	b.add(d)
	return d
}

func (b *Builder) DocObject(fields ...syntax.DocObjectField) *syntax.DocObjectType {
	d := syntax.NewDocObjectType(b.alloc(2), fields)
	b.add(d)
	return d
}

func (b *Builder) DocVariadic(elem syntax.DocType) *syntax.DocVariadicType {
	d := syntax.NewDocVariadicType(b.alloc(3), elem)
	b.add(d)
	return d
}

// --- doc tags ---

func (b *Builder) TagParam(name string, ty syntax.DocType) *syntax.DocTagParam {
	t := syntax.NewDocTagParam(b.alloc(uint32(len(name))+7), name, ty, false)
	b.add(t)
	return t
}

func (b *Builder) TagReturn(ty syntax.DocType) *syntax.DocTagReturn {
	t := syntax.NewDocTagReturn(b.alloc(7), ty, "")
	b.add(t)
	return t
}

func (b *Builder) TagType(ty syntax.DocType) *syntax.DocTagType {
	t := syntax.NewDocTagType(b.alloc(5), ty)
	b.add(t)
	return t
}

func (b *Builder) TagClass(name string, genericParams []string, supers []syntax.DocType, fields ...syntax.DocFieldDecl) *syntax.DocTagClass {
	t := syntax.NewDocTagClass(b.alloc(uint32(len(name))+8), name, genericParams, supers, fields)
	b.add(t)
	return t
}

// ClassField allocates one @field declaration's position.
func (b *Builder) ClassField(name string, ty syntax.DocType) syntax.DocFieldDecl {
	r := b.alloc(uint32(len(name)))
	return syntax.DocFieldDecl{Name: name, Type: ty, Pos: r.Start}
}

func (b *Builder) TagAlias(name string, genericParams []string, value syntax.DocType) *syntax.DocTagAlias {
	t := syntax.NewDocTagAlias(b.alloc(uint32(len(name))+8), name, genericParams, value)
	b.add(t)
	return t
}

func (b *Builder) TagEnum(name string, fields ...syntax.DocEnumField) *syntax.DocTagEnum {
	t := syntax.NewDocTagEnum(b.alloc(uint32(len(name))+7), name, fields)
	b.add(t)
	return t
}

func (b *Builder) TagGeneric(names ...string) *syntax.DocTagGeneric {
	params := make([]syntax.DocGenericParam, len(names))
	for i, n := range names {
		params[i] = syntax.DocGenericParam{Name: n}
	}
	t := syntax.NewDocTagGeneric(b.alloc(9), params)
	b.add(t)
	return t
}

func (b *Builder) TagCast(v string, ops ...syntax.DocCastOp) *syntax.DocTagCast {
	t := syntax.NewDocTagCast(b.alloc(uint32(len(v))+7), v, ops)
	b.add(t)
	return t
}

func (b *Builder) TagField(name string, ty syntax.DocType) *syntax.DocTagField {
	t := syntax.NewDocTagField(b.alloc(uint32(len(name))+7), name, ty)
	b.add(t)
	return t
}

func (b *Builder) TagOverload(fn *syntax.DocFuncTypeNode) *syntax.DocTagOverload {
	t := syntax.NewDocTagOverload(b.alloc(9), fn)
	b.add(t)
	return t
}

func (b *Builder) TagVisibility(level string) *syntax.DocTagVisibility {
	t := syntax.NewDocTagVisibility(b.alloc(uint32(len(level))+1), level)
	b.add(t)
	return t
}

func (b *Builder) TagDeprecated(message string) *syntax.DocTagDeprecated {
	t := syntax.NewDocTagDeprecated(b.alloc(11), message)
	b.add(t)
	return t
}

func (b *Builder) TagSee(target string) *syntax.DocTagSee {
	t := syntax.NewDocTagSee(b.alloc(uint32(len(target))+4), target)
	b.add(t)
	return t
}

func (b *Builder) TagOperator(name string, fn *syntax.DocFuncTypeNode) *syntax.DocTagOperator {
	t := syntax.NewDocTagOperator(b.alloc(uint32(len(name))+9), name, fn)
	b.add(t)
	return t
}

func (b *Builder) TagDiagnostic(action syntax.DiagnosticAction, codes ...string) *syntax.DocTagDiagnostic {
	t := syntax.NewDocTagDiagnostic(b.alloc(12), action, codes)
	b.add(t)
	return t
}
