package analyze

import (
	"github.com/emmylua-go/semacore/internal/diagnostics"
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/syntax"
	"github.com/emmylua-go/semacore/internal/types"
)

// docAnalyzer processes ---@ annotations: named type declarations
// (class/alias/enum), signatures with their generic templates, member
// emission for class fields and table literals, @type caches, and
// inline diagnostic directives.
type docAnalyzer struct {
	db   *index.DbIndex
	file ids.FileId
	tb   *TypeBuilder
}

func analyzeDocs(db *index.DbIndex, file ids.FileId, chunk *syntax.Chunk) {
	a := &docAnalyzer{db: db, file: file, tb: NewTypeBuilder(db.Type, file)}
	// two passes: named types first so annotations anywhere in the file
	// can reference a class declared further down
	a.collectTypeDecls(chunk.Body)
	a.walkBlock(chunk.Body)
}

func (a *docAnalyzer) collectTypeDecls(blk *syntax.Block) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stats {
		for _, tag := range docsOf(s) {
			switch t := tag.(type) {
			case *syntax.DocTagClass:
				a.declareClass(s, t)
			case *syntax.DocTagAlias:
				a.declareAlias(t)
			case *syntax.DocTagEnum:
				a.declareEnum(s, t)
			}
		}
		switch st := s.(type) {
		case *syntax.IfStat:
			a.collectTypeDecls(st.Then)
			for _, ei := range st.ElseIfs {
				a.collectTypeDecls(ei.Body)
			}
			a.collectTypeDecls(st.Else)
		case *syntax.DoStat:
			a.collectTypeDecls(st.Body)
		case *syntax.WhileStat:
			a.collectTypeDecls(st.Body)
		}
	}
}

func (a *docAnalyzer) walkBlock(blk *syntax.Block) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stats {
		a.walkStat(s)
	}
}

func (a *docAnalyzer) walkStat(s syntax.Statement) {
	switch st := s.(type) {
	case *syntax.LocalStat:
		a.localStatDocs(st)
		a.auxTags(st)
		for _, e := range st.Exprs {
			a.walkExpr(e)
		}

	case *syntax.AssignStat:
		for _, e := range st.Exprs {
			a.walkExpr(e)
		}

	case *syntax.FuncStat:
		a.buildSignature(ids.SignatureId{File: a.file, Pos: st.SigPos}, st.Params, st.IsVararg, st.IsMethod, st.Docs)
		a.funcStatMember(st)
		a.auxTags(st)
		a.walkBlock(st.Body)

	case *syntax.LocalFuncStat:
		a.buildSignature(ids.SignatureId{File: a.file, Pos: st.SigPos}, st.Params, st.IsVararg, false, st.Docs)
		a.auxTags(st)
		a.walkBlock(st.Body)

	case *syntax.DocStat:
		for _, tag := range st.Tags {
			if d, ok := tag.(*syntax.DocTagDiagnostic); ok {
				start := d.SyntaxId().Range.Start
				line := 1
				if src, ok := a.db.Vfs.(interface{ Source(ids.FileId) (string, bool) }); ok {
					if text, found := src.Source(a.file); found && int(start) <= len(text) {
						for _, c := range text[:start] {
							if c == '\n' {
								line++
							}
						}
					}
				}
				a.db.Diagnostic.Filter(a.file).Record(
					diagnostics.Action(d.Action), d.Codes,
					line, d.SyntaxId().Range)
			}
		}
		a.auxTags(st)

	case *syntax.IfStat:
		a.walkBlock(st.Then)
		for _, ei := range st.ElseIfs {
			a.walkBlock(ei.Body)
		}
		a.walkBlock(st.Else)
	case *syntax.WhileStat:
		a.walkBlock(st.Body)
	case *syntax.RepeatStat:
		a.walkBlock(st.Body)
	case *syntax.NumericForStat:
		a.walkBlock(st.Body)
	case *syntax.GenericForStat:
		a.walkBlock(st.Body)
	case *syntax.DoStat:
		a.walkBlock(st.Body)
	case *syntax.ReturnStat:
		for _, e := range st.Exprs {
			a.walkExpr(e)
		}
	case *syntax.CallStat:
		a.walkExpr(st.Call)
	}
}

func (a *docAnalyzer) walkExpr(e syntax.Expression) {
	switch ex := e.(type) {
	case *syntax.ClosureExpr:
		a.buildSignature(ids.SignatureId{File: a.file, Pos: ex.SigPos}, ex.Params, ex.IsVararg, false, nil)
		a.walkBlock(ex.Body)
	case *syntax.CallExpr:
		a.walkExpr(ex.Callee)
		for _, arg := range ex.Args {
			a.walkExpr(arg)
		}
	case *syntax.IndexExpr:
		a.walkExpr(ex.Prefix)
	case *syntax.BinaryExpr:
		a.walkExpr(ex.Left)
		a.walkExpr(ex.Right)
	case *syntax.UnaryExpr:
		a.walkExpr(ex.Operand)
	case *syntax.ParenExpr:
		a.walkExpr(ex.Inner)
	case *syntax.TableExpr:
		a.tableMembers(ex)
		for _, f := range ex.Fields {
			if f.Value != nil {
				a.walkExpr(f.Value)
			}
		}
	}
}

func docsOf(s syntax.Statement) []syntax.DocTag {
	switch st := s.(type) {
	case *syntax.LocalStat:
		return st.Docs
	case *syntax.FuncStat:
		return st.Docs
	case *syntax.LocalFuncStat:
		return st.Docs
	case *syntax.DocStat:
		return st.Tags
	}
	return nil
}

// --- named type declarations ---

func (a *docAnalyzer) qualify(name string) ids.TypeDeclId {
	if ns := a.db.Type.Namespace(a.file); ns != "" {
		return ids.ParseTypeDeclId(ns + "." + name)
	}
	return ids.ParseTypeDeclId(name)
}

func classTpls(names []string) []types.GenericTpl {
	tpls := make([]types.GenericTpl, len(names))
	for i, n := range names {
		tpls[i] = types.GenericTpl{
			Id:   ids.GenericTplId{Kind: ids.GenericTplType, Index: uint32(i)},
			Name: n,
		}
	}
	return tpls
}

func (a *docAnalyzer) declareClass(attached syntax.Statement, tag *syntax.DocTagClass) {
	id := a.qualify(tag.Name)
	tpls := classTpls(tag.GenericParams)
	tb := a.tb.WithTpls(tpls)

	supers := make([]types.Type, len(tag.Supers))
	for i, s := range tag.Supers {
		supers[i] = tb.Convert(s)
	}
	a.db.Type.AddTypeDecl(a.file, &index.TypeDecl{
		Id:            id,
		Kind:          index.TypeClass,
		GenericParams: tpls,
		Supers:        supers,
	})

	for _, f := range tag.Fields {
		a.db.Member.Add(&index.Member{
			Id: ids.MemberId{File: a.file, Node: ids.SyntaxId{
				Kind:  syntax.KindDocTagField,
				Range: ids.Range{Start: f.Pos, End: f.Pos + ids.Position(len(f.Name))},
			}},
			Key:   types.NameKey(f.Name),
			Type:  tb.Convert(f.Type),
			Owner: index.TypeMemberOwner(id),
		})
	}

	// `---@class M` above `local M = ...` types the local as the
	// class's defining site
	if ls, ok := attached.(*syntax.LocalStat); ok && len(ls.Names) == 1 {
		decl := ids.DeclId{File: a.file, Pos: ls.Names[0].Pos}
		a.db.Type.SetCache(index.DeclOwner(decl), types.Def{Decl: id}, index.CacheDoc)
	}
}

func (a *docAnalyzer) declareAlias(tag *syntax.DocTagAlias) {
	id := a.qualify(tag.Name)
	tpls := classTpls(tag.GenericParams)
	a.db.Type.AddTypeDecl(a.file, &index.TypeDecl{
		Id:            id,
		Kind:          index.TypeAlias,
		GenericParams: tpls,
		AliasOrigin:   a.tb.WithTpls(tpls).Convert(tag.Value),
	})
}

func (a *docAnalyzer) declareEnum(attached syntax.Statement, tag *syntax.DocTagEnum) {
	id := a.qualify(tag.Name)
	a.db.Type.AddTypeDecl(a.file, &index.TypeDecl{Id: id, Kind: index.TypeEnum})
	for i, f := range tag.Fields {
		var ft types.Type = types.IntegerConst{Value: int64(i), Origin: types.OriginDoc}
		if f.Value != nil {
			ft = a.tb.Convert(f.Value)
		}
		a.db.Member.Add(&index.Member{
			Id: ids.MemberId{File: a.file, Node: ids.SyntaxId{
				Kind:  syntax.KindDocTagEnum,
				Range: ids.Range{Start: tag.SyntaxId().Range.Start + ids.Position(i), End: tag.SyntaxId().Range.Start + ids.Position(i) + 1},
			}},
			Key:   types.NameKey(f.Name),
			Type:  ft,
			Owner: index.TypeMemberOwner(id),
		})
	}
	if ls, ok := attached.(*syntax.LocalStat); ok && len(ls.Names) == 1 {
		decl := ids.DeclId{File: a.file, Pos: ls.Names[0].Pos}
		a.db.Type.SetCache(index.DeclOwner(decl), types.Def{Decl: id}, index.CacheDoc)
	}
}

// auxTags processes the documentation-metadata tags of one doc block:
// visibility/deprecation/see into the property index, and @operator
// declarations onto the class declared in the same block.
func (a *docAnalyzer) auxTags(s syntax.Statement) {
	docs := docsOf(s)
	if len(docs) == 0 {
		return
	}
	var classId *ids.TypeDeclId
	for _, tag := range docs {
		if c, ok := tag.(*syntax.DocTagClass); ok {
			id := a.qualify(c.Name)
			classId = &id
		}
	}

	var prop *index.Property
	ensure := func() *index.Property {
		if prop == nil {
			prop = &index.Property{}
		}
		return prop
	}
	for _, tag := range docs {
		switch t := tag.(type) {
		case *syntax.DocTagVisibility:
			switch t.Level {
			case "protected":
				ensure().Visibility = index.VisibilityProtected
			case "private":
				ensure().Visibility = index.VisibilityPrivate
			case "package":
				ensure().Visibility = index.VisibilityPackage
			default:
				ensure().Visibility = index.VisibilityPublic
			}
		case *syntax.DocTagDeprecated:
			ensure().Deprecated = &index.DeprecatedInfo{Message: t.Message}
		case *syntax.DocTagSee:
			ensure().See = append(ensure().See, t.Target)
		case *syntax.DocTagOperator:
			if classId != nil && t.Func != nil {
				a.db.Operator.Add(&index.Operator{
					Id:         ids.OperatorId{File: a.file, Pos: t.SyntaxId().Range.Start},
					Owner:      index.TypeMemberOwner(*classId),
					Metamethod: "__" + t.Name,
					Func:       index.OperatorFunc{Kind: index.OperatorFuncInline, Inline: a.tb.ConvertFunc(t.Func)},
				})
			}
		}
	}
	if prop == nil {
		return
	}
	if owner, ok := a.propertyOwner(s, classId); ok {
		a.db.Property.Set(owner, a.file, prop)
	}
}

func (a *docAnalyzer) propertyOwner(s syntax.Statement, classId *ids.TypeDeclId) (ids.SemanticDeclId, bool) {
	if classId != nil {
		return ids.NewTypeDecl(*classId), true
	}
	switch st := s.(type) {
	case *syntax.LocalStat:
		if len(st.Names) > 0 {
			return ids.NewLuaDecl(ids.DeclId{File: a.file, Pos: st.Names[0].Pos}), true
		}
	case *syntax.FuncStat:
		return ids.NewSignatureDecl(ids.SignatureId{File: a.file, Pos: st.SigPos}), true
	case *syntax.LocalFuncStat:
		return ids.NewSignatureDecl(ids.SignatureId{File: a.file, Pos: st.SigPos}), true
	}
	return ids.SemanticDeclId{}, false
}

// --- statements with attached docs ---

func (a *docAnalyzer) localStatDocs(st *syntax.LocalStat) {
	// `local f = function() end` with docs: the docs describe the
	// closure's signature
	if len(st.Names) == 1 && len(st.Exprs) == 1 && len(st.Docs) > 0 {
		if cl, ok := st.Exprs[0].(*syntax.ClosureExpr); ok {
			a.buildSignature(ids.SignatureId{File: a.file, Pos: cl.SigPos}, cl.Params, cl.IsVararg, false, st.Docs)
		}
	}
	for _, tag := range st.Docs {
		switch t := tag.(type) {
		case *syntax.DocTagType:
			if len(st.Names) > 0 {
				decl := ids.DeclId{File: a.file, Pos: st.Names[0].Pos}
				a.db.Type.SetCache(index.DeclOwner(decl), a.tb.Convert(t.Type), index.CacheDoc)
			}
		case *syntax.DocTagClass, *syntax.DocTagAlias, *syntax.DocTagEnum:
			// handled in the collect pass
		}
	}
}

// funcStatMember registers `function M.foo()` as a member once M's
// annotated class (or bound table literal) is known; the decl analyzer
// already covered the literal-table case it could see.
func (a *docAnalyzer) funcStatMember(st *syntax.FuncStat) {
	ix, ok := st.Target.(*syntax.IndexExpr)
	if !ok || ix.KeyKind == syntax.IndexKeyBracket {
		return
	}
	name, ok := ix.Prefix.(*syntax.NameExpr)
	if !ok {
		return
	}
	tree, ok := a.db.Decl.Get(a.file)
	if !ok {
		return
	}
	d, ok := tree.FindLocalDecl(name.Name, name.SyntaxId().Range.Start)
	if !ok {
		return
	}
	entry, ok := a.db.Type.Cache(index.DeclOwner(d.Id()))
	if !ok {
		return
	}
	var owner index.MemberOwner
	switch t := entry.Type.(type) {
	case types.Def:
		owner = index.TypeMemberOwner(t.Decl)
	case types.Ref:
		owner = index.TypeMemberOwner(t.Decl)
	default:
		return
	}
	sigId := ids.SignatureId{File: a.file, Pos: st.SigPos}
	for _, existing := range a.db.Member.Members(owner, types.NameKey(ix.Name)) {
		if existing.Id.File == a.file && existing.Id.Node == ix.SyntaxId() {
			return
		}
	}
	a.db.Member.Add(&index.Member{
		Id:            ids.MemberId{File: a.file, Node: ix.SyntaxId()},
		Key:           types.NameKey(ix.Name),
		Type:          types.Signature{Id: sigId},
		Owner:         owner,
		IsFunctionDef: true,
	})
}

// tableMembers emits Element-owner members for a table literal's
// named and integer-keyed fields.
func (a *docAnalyzer) tableMembers(t *syntax.TableExpr) {
	owner := index.ElementMemberOwner(a.file, t.SyntaxId().Range)
	arrayIdx := int64(0)
	for _, f := range t.Fields {
		var key types.MemberKey
		switch f.Kind {
		case syntax.TableFieldNamed:
			key = types.NameKey(f.Name)
		case syntax.TableFieldPositional:
			arrayIdx++
			key = types.IntegerKey(arrayIdx)
		case syntax.TableFieldIndexed:
			lit, ok := f.Key.(*syntax.LiteralExpr)
			if !ok {
				continue
			}
			switch lit.Kind {
			case syntax.LiteralString:
				key = types.NameKey(lit.Str)
			case syntax.LiteralInt:
				key = types.IntegerKey(lit.Int)
			default:
				continue
			}
		}
		ft := fieldLiteralType(f.Value)
		for _, tag := range f.Doc {
			if tt, ok := tag.(*syntax.DocTagType); ok {
				ft = a.tb.Convert(tt.Type)
			}
		}
		var node ids.SyntaxId
		if f.Value != nil {
			node = f.Value.SyntaxId()
		} else {
			node = t.SyntaxId()
		}
		a.db.Member.Add(&index.Member{
			Id:    ids.MemberId{File: a.file, Node: node},
			Key:   key,
			Type:  ft,
			Owner: owner,
		})
	}
}

// fieldLiteralType types a table field's value shallowly; non-literal
// values resolve at query time through the semantic model instead.
func fieldLiteralType(e syntax.Expression) types.Type {
	lit, ok := e.(*syntax.LiteralExpr)
	if !ok {
		if _, isClosure := e.(*syntax.ClosureExpr); isClosure {
			return types.P(types.Function)
		}
		return types.P(types.Unknown)
	}
	switch lit.Kind {
	case syntax.LiteralNil:
		return types.P(types.Nil)
	case syntax.LiteralTrue:
		return types.BooleanConst{Value: true}
	case syntax.LiteralFalse:
		return types.BooleanConst{Value: false}
	case syntax.LiteralInt:
		return types.IntegerConst{Value: lit.Int}
	case syntax.LiteralFloat:
		return types.FloatConst{Value: lit.Flt}
	case syntax.LiteralString:
		return types.StringConst{Value: lit.Str}
	}
	return types.P(types.Unknown)
}

// --- signatures ---

func (a *docAnalyzer) buildSignature(sigId ids.SignatureId, params []syntax.LocalName, isVararg, isMethod bool, docs []syntax.DocTag) {
	if _, exists := a.db.Signature.Get(sigId); exists {
		return
	}
	sig := &index.Signature{
		Id:            sigId,
		ParamDocs:     map[int]index.ParamInfo{},
		IsColonDefine: isMethod,
		IsVararg:      isVararg,
	}
	for _, p := range params {
		sig.Params = append(sig.Params, p.Name)
	}

	var tpls []types.GenericTpl
	for _, tag := range docs {
		if g, ok := tag.(*syntax.DocTagGeneric); ok {
			for _, p := range g.Params {
				tpl := types.GenericTpl{
					Id:   ids.GenericTplId{Kind: ids.GenericTplFunc, Index: uint32(len(tpls))},
					Name: p.Name,
				}
				if p.Constraint != nil {
					tpl.Constraint = a.tb.Convert(p.Constraint)
				}
				tpls = append(tpls, tpl)
			}
		}
	}
	sig.GenericParams = tpls
	tb := a.tb.WithTpls(tpls)

	paramTypes := map[string]types.Type{}
	for _, tag := range docs {
		switch t := tag.(type) {
		case *syntax.DocTagParam:
			pt := tb.Convert(t.Type)
			if t.Optional {
				pt = types.TypeOpsUnion(pt, types.P(types.Nil))
			}
			paramTypes[t.Name] = pt
			idx := paramIndex(sig.Params, t.Name, isVararg)
			sig.ParamDocs[idx] = index.ParamInfo{Name: t.Name, Type: pt, Optional: t.Optional}
		case *syntax.DocTagReturn:
			sig.ReturnDocs = append(sig.ReturnDocs, index.ReturnInfo{Type: tb.Convert(t.Type), Name: t.Name})
		}
	}

	primary := &types.FunctionType{IsColonDefine: isMethod, IsVariadic: isVararg}
	for _, name := range sig.Params {
		primary.Params = append(primary.Params, types.Param{Name: name, Type: paramTypes[name]})
	}
	if isVararg {
		if vt, ok := paramTypes["..."]; ok {
			primary.Params = append(primary.Params, types.Param{Name: "...", Type: types.Variadic{Variadic: &types.VariadicType{Base: vt}}})
		}
	}
	switch len(sig.ReturnDocs) {
	case 0:
		sig.ResolveReturn = index.ResolveUnresolved
	case 1:
		primary.Ret = sig.ReturnDocs[0].Type
		sig.ResolveReturn = index.ResolveFromDoc
	default:
		multi := make([]types.Type, len(sig.ReturnDocs))
		for i, r := range sig.ReturnDocs {
			multi[i] = r.Type
		}
		primary.Ret = types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: multi}}
		sig.ResolveReturn = index.ResolveFromDoc
	}
	sig.Overloads = append(sig.Overloads, primary)

	for _, tag := range docs {
		switch t := tag.(type) {
		case *syntax.DocTagOverload:
			sig.Overloads = append(sig.Overloads, tb.ConvertFunc(t.Func))
		case *syntax.DocTagCast:
			// a cast declared on the function itself targets a parameter
			// (or self); callers of the function apply it to their
			// argument at the call site
			if len(t.Ops) == 1 && t.Ops[0].Op == "" && t.Ops[0].Type != nil {
				a.db.Flow.SetSignatureCast(sigId, t.Var, tb.Convert(t.Ops[0].Type))
			}
		}
	}

	a.db.Signature.Add(sig)
}

// paramIndex maps a @param name to its positional index; `...` docs
// attach past the named parameters.
func paramIndex(params []string, name string, isVararg bool) int {
	for i, p := range params {
		if p == name {
			return i
		}
	}
	if name == "..." && isVararg {
		return len(params)
	}
	return -1
}
