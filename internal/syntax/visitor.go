package syntax

// Visitor is implemented by anything that walks the CST through
// Accept. Analyzers (internal/analyze) are the primary implementers.
type Visitor interface {
	VisitChunk(*Chunk)
	VisitBlock(*Block)
	VisitLocalStat(*LocalStat)
	VisitAssignStat(*AssignStat)
	VisitIfStat(*IfStat)
	VisitWhileStat(*WhileStat)
	VisitRepeatStat(*RepeatStat)
	VisitNumericForStat(*NumericForStat)
	VisitGenericForStat(*GenericForStat)
	VisitFuncStat(*FuncStat)
	VisitLocalFuncStat(*LocalFuncStat)
	VisitReturnStat(*ReturnStat)
	VisitBreakStat(*BreakStat)
	VisitGotoStat(*GotoStat)
	VisitLabelStat(*LabelStat)
	VisitCallStat(*CallStat)
	VisitDoStat(*DoStat)
	VisitDocStat(*DocStat)

	VisitNameExpr(*NameExpr)
	VisitIndexExpr(*IndexExpr)
	VisitCallExpr(*CallExpr)
	VisitLiteralExpr(*LiteralExpr)
	VisitBinaryExpr(*BinaryExpr)
	VisitUnaryExpr(*UnaryExpr)
	VisitParenExpr(*ParenExpr)
	VisitClosureExpr(*ClosureExpr)
	VisitTableExpr(*TableExpr)

	VisitDocNamedType(*DocNamedType)
	VisitDocOpType(*DocOpType)
	VisitDocArrayType(*DocArrayType)
	VisitDocTableType(*DocTableType)
	VisitDocFuncType(*DocFuncTypeNode)
	VisitDocLiteralType(*DocLiteralType)
	VisitDocObjectType(*DocObjectType)
	VisitDocVariadicType(*DocVariadicType)
	VisitDocTypeList(*DocTypeList)

	VisitDocTagParam(*DocTagParam)
	VisitDocTagReturn(*DocTagReturn)
	VisitDocTagType(*DocTagType)
	VisitDocTagClass(*DocTagClass)
	VisitDocTagAlias(*DocTagAlias)
	VisitDocTagEnum(*DocTagEnum)
	VisitDocTagGeneric(*DocTagGeneric)
	VisitDocTagCast(*DocTagCast)
	VisitDocTagField(*DocTagField)
	VisitDocTagOverload(*DocTagOverload)
	VisitDocTagDiagnostic(*DocTagDiagnostic)
	VisitDocTagVisibility(*DocTagVisibility)
	VisitDocTagDeprecated(*DocTagDeprecated)
	VisitDocTagSee(*DocTagSee)
	VisitDocTagOperator(*DocTagOperator)
}

// BaseVisitor gives every method a no-op default so implementers only
// override what they need.
type BaseVisitor struct{}

func (BaseVisitor) VisitChunk(*Chunk)                       {}
func (BaseVisitor) VisitBlock(*Block)                       {}
func (BaseVisitor) VisitLocalStat(*LocalStat)               {}
func (BaseVisitor) VisitAssignStat(*AssignStat)             {}
func (BaseVisitor) VisitIfStat(*IfStat)                     {}
func (BaseVisitor) VisitWhileStat(*WhileStat)               {}
func (BaseVisitor) VisitRepeatStat(*RepeatStat)             {}
func (BaseVisitor) VisitNumericForStat(*NumericForStat)     {}
func (BaseVisitor) VisitGenericForStat(*GenericForStat)     {}
func (BaseVisitor) VisitFuncStat(*FuncStat)                 {}
func (BaseVisitor) VisitLocalFuncStat(*LocalFuncStat)       {}
func (BaseVisitor) VisitReturnStat(*ReturnStat)             {}
func (BaseVisitor) VisitBreakStat(*BreakStat)               {}
func (BaseVisitor) VisitGotoStat(*GotoStat)                 {}
func (BaseVisitor) VisitLabelStat(*LabelStat)               {}
func (BaseVisitor) VisitCallStat(*CallStat)                 {}
func (BaseVisitor) VisitDoStat(*DoStat)                     {}
func (BaseVisitor) VisitDocStat(*DocStat)                   {}
func (BaseVisitor) VisitNameExpr(*NameExpr)                 {}
func (BaseVisitor) VisitIndexExpr(*IndexExpr)               {}
func (BaseVisitor) VisitCallExpr(*CallExpr)                 {}
func (BaseVisitor) VisitLiteralExpr(*LiteralExpr)           {}
func (BaseVisitor) VisitBinaryExpr(*BinaryExpr)             {}
func (BaseVisitor) VisitUnaryExpr(*UnaryExpr)               {}
func (BaseVisitor) VisitParenExpr(*ParenExpr)               {}
func (BaseVisitor) VisitClosureExpr(*ClosureExpr)           {}
func (BaseVisitor) VisitTableExpr(*TableExpr)               {}
func (BaseVisitor) VisitDocNamedType(*DocNamedType)         {}
func (BaseVisitor) VisitDocOpType(*DocOpType)               {}
func (BaseVisitor) VisitDocArrayType(*DocArrayType)         {}
func (BaseVisitor) VisitDocTableType(*DocTableType)         {}
func (BaseVisitor) VisitDocFuncType(*DocFuncTypeNode)       {}
func (BaseVisitor) VisitDocLiteralType(*DocLiteralType)     {}
func (BaseVisitor) VisitDocObjectType(*DocObjectType)       {}
func (BaseVisitor) VisitDocVariadicType(*DocVariadicType)   {}
func (BaseVisitor) VisitDocTypeList(*DocTypeList)           {}
func (BaseVisitor) VisitDocTagParam(*DocTagParam)           {}
func (BaseVisitor) VisitDocTagReturn(*DocTagReturn)         {}
func (BaseVisitor) VisitDocTagType(*DocTagType)             {}
func (BaseVisitor) VisitDocTagClass(*DocTagClass)           {}
func (BaseVisitor) VisitDocTagAlias(*DocTagAlias)           {}
func (BaseVisitor) VisitDocTagEnum(*DocTagEnum)             {}
func (BaseVisitor) VisitDocTagGeneric(*DocTagGeneric)       {}
func (BaseVisitor) VisitDocTagCast(*DocTagCast)             {}
func (BaseVisitor) VisitDocTagField(*DocTagField)           {}
func (BaseVisitor) VisitDocTagOverload(*DocTagOverload)     {}
func (BaseVisitor) VisitDocTagDiagnostic(*DocTagDiagnostic) {}
func (BaseVisitor) VisitDocTagVisibility(*DocTagVisibility) {}
func (BaseVisitor) VisitDocTagDeprecated(*DocTagDeprecated) {}
func (BaseVisitor) VisitDocTagSee(*DocTagSee)               {}
func (BaseVisitor) VisitDocTagOperator(*DocTagOperator)     {}
