package syntax

import "github.com/emmylua-go/semacore/internal/ids"

// Constructors for every concrete node. A real parser front-end (and
// the synbuild test helper) builds trees through these so each node
// carries its proper kind and source range; a node built by bare
// struct literal has a zero SyntaxId and won't resolve through a
// SyntaxTree.

func NewChunk(r ids.Range, body *Block) *Chunk {
	return &Chunk{base: mkBase(KindChunk, r), Body: body}
}

func NewBlock(r ids.Range, stats []Statement) *Block {
	return &Block{base: mkBase(KindBlock, r), Stats: stats}
}

func NewLocalStat(r ids.Range, names []LocalName, exprs []Expression, docs []DocTag) *LocalStat {
	return &LocalStat{base: mkBase(KindLocalStat, r), Names: names, Exprs: exprs, Docs: docs}
}

func NewAssignStat(r ids.Range, targets, exprs []Expression) *AssignStat {
	return &AssignStat{base: mkBase(KindAssignStat, r), Targets: targets, Exprs: exprs}
}

func NewIfStat(r ids.Range, cond Expression, then *Block, elseIfs []ElseIfClause, els *Block) *IfStat {
	return &IfStat{base: mkBase(KindIfStat, r), Cond: cond, Then: then, ElseIfs: elseIfs, Else: els}
}

func NewWhileStat(r ids.Range, cond Expression, body *Block) *WhileStat {
	return &WhileStat{base: mkBase(KindWhileStat, r), Cond: cond, Body: body}
}

func NewRepeatStat(r ids.Range, body *Block, until Expression) *RepeatStat {
	return &RepeatStat{base: mkBase(KindRepeatStat, r), Body: body, Until: until}
}

func NewNumericForStat(r ids.Range, v LocalName, start, stop, step Expression, body *Block) *NumericForStat {
	return &NumericForStat{base: mkBase(KindNumericForStat, r), Var: v, Start: start, Stop: stop, Step: step, Body: body}
}

func NewGenericForStat(r ids.Range, names []LocalName, exprs []Expression, body *Block) *GenericForStat {
	return &GenericForStat{base: mkBase(KindGenericForStat, r), Names: names, Exprs: exprs, Body: body}
}

func NewFuncStat(r ids.Range, target Expression, isMethod bool, params []LocalName, isVararg bool, body *Block, sigPos ids.Position, docs []DocTag) *FuncStat {
	return &FuncStat{base: mkBase(KindFuncStat, r), Target: target, IsMethod: isMethod, Params: params, IsVararg: isVararg, Body: body, SigPos: sigPos, Docs: docs}
}

func NewLocalFuncStat(r ids.Range, name LocalName, params []LocalName, isVararg bool, body *Block, sigPos ids.Position, docs []DocTag) *LocalFuncStat {
	return &LocalFuncStat{base: mkBase(KindLocalFuncStat, r), Name: name, Params: params, IsVararg: isVararg, Body: body, SigPos: sigPos, Docs: docs}
}

func NewReturnStat(r ids.Range, exprs []Expression) *ReturnStat {
	return &ReturnStat{base: mkBase(KindReturnStat, r), Exprs: exprs}
}

func NewBreakStat(r ids.Range) *BreakStat { return &BreakStat{base: mkBase(KindBreakStat, r)} }

func NewGotoStat(r ids.Range, label string) *GotoStat {
	return &GotoStat{base: mkBase(KindGotoStat, r), Label: label}
}

func NewLabelStat(r ids.Range, name string) *LabelStat {
	return &LabelStat{base: mkBase(KindLabelStat, r), Name: name}
}

func NewCallStat(r ids.Range, call *CallExpr) *CallStat {
	return &CallStat{base: mkBase(KindCallStat, r), Call: call}
}

func NewDoStat(r ids.Range, body *Block) *DoStat {
	return &DoStat{base: mkBase(KindDoStat, r), Body: body}
}

func NewDocStat(r ids.Range, tags []DocTag) *DocStat {
	return &DocStat{base: mkBase(KindDocStat, r), Tags: tags}
}

func NewNameExpr(r ids.Range, name string) *NameExpr {
	return &NameExpr{base: mkBase(KindNameExpr, r), Name: name}
}

func NewIndexExpr(r ids.Range, prefix Expression, kind IndexKeyKind, name string, key Expression) *IndexExpr {
	return &IndexExpr{base: mkBase(KindIndexExpr, r), Prefix: prefix, KeyKind: kind, Name: name, Key: key}
}

func NewCallExpr(r ids.Range, callee Expression, args []Expression, genericArgs []DocType) *CallExpr {
	return &CallExpr{base: mkBase(KindCallExpr, r), Callee: callee, Args: args, GenericArgs: genericArgs}
}

func NewLiteralNil(r ids.Range) *LiteralExpr {
	return &LiteralExpr{base: mkBase(KindLiteralExpr, r), Kind: LiteralNil}
}

func NewLiteralBool(r ids.Range, v bool) *LiteralExpr {
	k := LiteralFalse
	if v {
		k = LiteralTrue
	}
	return &LiteralExpr{base: mkBase(KindLiteralExpr, r), Kind: k}
}

func NewLiteralInt(r ids.Range, v int64) *LiteralExpr {
	return &LiteralExpr{base: mkBase(KindLiteralExpr, r), Kind: LiteralInt, Int: v}
}

func NewLiteralFloat(r ids.Range, v float64) *LiteralExpr {
	return &LiteralExpr{base: mkBase(KindLiteralExpr, r), Kind: LiteralFloat, Flt: v}
}

func NewLiteralString(r ids.Range, v string) *LiteralExpr {
	return &LiteralExpr{base: mkBase(KindLiteralExpr, r), Kind: LiteralString, Str: v}
}

func NewLiteralVararg(r ids.Range) *LiteralExpr {
	return &LiteralExpr{base: mkBase(KindLiteralExpr, r), Kind: LiteralVararg}
}

func NewBinaryExpr(r ids.Range, op BinaryOp, left, right Expression) *BinaryExpr {
	return &BinaryExpr{base: mkBase(KindBinaryExpr, r), Op: op, Left: left, Right: right}
}

func NewUnaryExpr(r ids.Range, op UnaryOp, operand Expression) *UnaryExpr {
	return &UnaryExpr{base: mkBase(KindUnaryExpr, r), Op: op, Operand: operand}
}

func NewParenExpr(r ids.Range, inner Expression) *ParenExpr {
	return &ParenExpr{base: mkBase(KindParenExpr, r), Inner: inner}
}

func NewClosureExpr(r ids.Range, params []LocalName, isVararg bool, body *Block, sigPos ids.Position) *ClosureExpr {
	return &ClosureExpr{base: mkBase(KindClosureExpr, r), Params: params, IsVararg: isVararg, Body: body, SigPos: sigPos}
}

func NewTableExpr(r ids.Range, fields []TableField) *TableExpr {
	return &TableExpr{base: mkBase(KindTableExpr, r), Fields: fields}
}

// --- doc types ---

func NewDocNamedType(r ids.Range, name string, args []DocType) *DocNamedType {
	return &DocNamedType{base: mkBase(KindDocNamedType, r), Name: name, Args: args}
}

func NewDocOpType(r ids.Range, op string, ts []DocType) *DocOpType {
	return &DocOpType{base: mkBase(KindDocOpType, r), Op: op, Types: ts}
}

func NewDocArrayType(r ids.Range, elem DocType) *DocArrayType {
	return &DocArrayType{base: mkBase(KindDocArrayType, r), Elem: elem}
}

func NewDocTableType(r ids.Range, key, value DocType) *DocTableType {
	return &DocTableType{base: mkBase(KindDocTableType, r), Key: key, Value: value}
}

func NewDocFuncType(r ids.Range, paramNames []string, paramTypes []DocType, isVariadic bool, rets []DocType) *DocFuncTypeNode {
	return &DocFuncTypeNode{base: mkBase(KindDocFuncType, r), ParamNames: paramNames, ParamTypes: paramTypes, IsVariadic: isVariadic, Rets: rets}
}

func NewDocLiteralString(r ids.Range, s string) *DocLiteralType {
	return &DocLiteralType{base: mkBase(KindDocLiteralType, r), Prim: "string", Str: s}
}

func NewDocLiteralInt(r ids.Range, v int64) *DocLiteralType {
	return &DocLiteralType{base: mkBase(KindDocLiteralType, r), Prim: "int", Int: v}
}

func NewDocLiteralBool(r ids.Range, v bool) *DocLiteralType {
	return &DocLiteralType{base: mkBase(KindDocLiteralType, r), Prim: "bool", Bool: v}
}

func NewDocObjectType(r ids.Range, fields []DocObjectField) *DocObjectType {
	return &DocObjectType{base: mkBase(KindDocObjectType, r), Fields: fields}
}

func NewDocVariadicType(r ids.Range, elem DocType) *DocVariadicType {
	return &DocVariadicType{base: mkBase(KindDocVariadicType, r), Elem: elem}
}

func NewDocTypeList(r ids.Range, ts []DocType) *DocTypeList {
	return &DocTypeList{base: mkBase(KindDocTypeList, r), Types: ts}
}

// --- doc tags ---

func NewDocTagParam(r ids.Range, name string, ty DocType, optional bool) *DocTagParam {
	return &DocTagParam{base: mkBase(KindDocTagParam, r), Name: name, Type: ty, Optional: optional}
}

func NewDocTagReturn(r ids.Range, ty DocType, name string) *DocTagReturn {
	return &DocTagReturn{base: mkBase(KindDocTagReturn, r), Type: ty, Name: name}
}

func NewDocTagType(r ids.Range, ty DocType) *DocTagType {
	return &DocTagType{base: mkBase(KindDocTagType, r), Type: ty}
}

func NewDocTagClass(r ids.Range, name string, genericParams []string, supers []DocType, fields []DocFieldDecl) *DocTagClass {
	return &DocTagClass{base: mkBase(KindDocTagClass, r), Name: name, GenericParams: genericParams, Supers: supers, Fields: fields}
}

func NewDocTagAlias(r ids.Range, name string, genericParams []string, value DocType) *DocTagAlias {
	return &DocTagAlias{base: mkBase(KindDocTagAlias, r), Name: name, GenericParams: genericParams, Value: value}
}

func NewDocTagEnum(r ids.Range, name string, fields []DocEnumField) *DocTagEnum {
	return &DocTagEnum{base: mkBase(KindDocTagEnum, r), Name: name, Fields: fields}
}

func NewDocTagGeneric(r ids.Range, params []DocGenericParam) *DocTagGeneric {
	return &DocTagGeneric{base: mkBase(KindDocTagGeneric, r), Params: params}
}

func NewDocTagCast(r ids.Range, v string, ops []DocCastOp) *DocTagCast {
	return &DocTagCast{base: mkBase(KindDocTagCast, r), Var: v, Ops: ops}
}

func NewDocTagField(r ids.Range, name string, ty DocType) *DocTagField {
	return &DocTagField{base: mkBase(KindDocTagField, r), Name: name, Type: ty}
}

func NewDocTagOverload(r ids.Range, fn *DocFuncTypeNode) *DocTagOverload {
	return &DocTagOverload{base: mkBase(KindDocTagOverload, r), Func: fn}
}

func NewDocTagDiagnostic(r ids.Range, action DiagnosticAction, codes []string) *DocTagDiagnostic {
	return &DocTagDiagnostic{base: mkBase(KindDocTagDiagnostic, r), Action: action, Codes: codes}
}

func NewDocTagVisibility(r ids.Range, level string) *DocTagVisibility {
	return &DocTagVisibility{base: mkBase(KindDocTagVisibility, r), Level: level}
}

func NewDocTagDeprecated(r ids.Range, message string) *DocTagDeprecated {
	return &DocTagDeprecated{base: mkBase(KindDocTagDeprecated, r), Message: message}
}

func NewDocTagSee(r ids.Range, target string) *DocTagSee {
	return &DocTagSee{base: mkBase(KindDocTagSee, r), Target: target}
}

func NewDocTagOperator(r ids.Range, name string, fn *DocFuncTypeNode) *DocTagOperator {
	return &DocTagOperator{base: mkBase(KindDocTagOperator, r), Name: name, Func: fn}
}
