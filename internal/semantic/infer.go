package semantic

import (
	"github.com/emmylua-go/semacore/internal/analyze"
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/narrow"
	"github.com/emmylua-go/semacore/internal/syntax"
	"github.com/emmylua-go/semacore/internal/types"
)

// InferExpr is the main inference entry point: the type of
// expr at its program point, flow-narrowed for variable references.
func (m *SemanticModel) InferExpr(expr syntax.Expression) (types.Type, error) {
	if expr == nil {
		return nil, ids.FailNone()
	}
	sid := expr.SyntaxId()
	if t, ok := m.cache.exprTypes[sid]; ok {
		return t, nil
	}
	if m.cache.exprActive[sid] {
		return types.P(types.Unknown), nil
	}
	m.cache.exprActive[sid] = true
	t, err := m.inferExprUncached(expr)
	delete(m.cache.exprActive, sid)
	if err != nil {
		return nil, err
	}
	m.cache.exprTypes[sid] = t
	return t, nil
}

func (m *SemanticModel) inferExprUncached(expr syntax.Expression) (types.Type, error) {
	switch e := expr.(type) {
	case *syntax.LiteralExpr:
		return m.inferLiteral(e)
	case *syntax.NameExpr:
		return m.inferName(e)
	case *syntax.IndexExpr:
		return m.inferIndex(e)
	case *syntax.CallExpr:
		return m.inferCall(e)
	case *syntax.BinaryExpr:
		return m.inferBinary(e)
	case *syntax.UnaryExpr:
		return m.inferUnary(e)
	case *syntax.ParenExpr:
		t, err := m.InferExpr(e.Inner)
		if err != nil {
			return nil, err
		}
		// parentheses truncate a multi-value to its first value
		return narrow.FirstValue(t), nil
	case *syntax.ClosureExpr:
		return types.Signature{Id: ids.SignatureId{File: m.File, Pos: e.SigPos}}, nil
	case *syntax.TableExpr:
		return types.Instance{Base: types.P(types.Table), File: m.File, Range: e.SyntaxId().Range}, nil
	}
	return nil, ids.FailNone()
}

func (m *SemanticModel) inferLiteral(e *syntax.LiteralExpr) (types.Type, error) {
	switch e.Kind {
	case syntax.LiteralNil:
		return types.P(types.Nil), nil
	case syntax.LiteralTrue:
		return types.BooleanConst{Value: true}, nil
	case syntax.LiteralFalse:
		return types.BooleanConst{Value: false}, nil
	case syntax.LiteralInt:
		return types.IntegerConst{Value: e.Int}, nil
	case syntax.LiteralFloat:
		return types.FloatConst{Value: e.Flt}, nil
	case syntax.LiteralString:
		return types.StringConst{Value: e.Str}, nil
	case syntax.LiteralVararg:
		return m.inferVararg(e)
	}
	return nil, ids.FailNone()
}

// inferVararg types a `...` expression from the enclosing closure's
// declared vararg annotation.
func (m *SemanticModel) inferVararg(e *syntax.LiteralExpr) (types.Type, error) {
	ref, _, _, ok := m.flowBindingFor(e)
	if !ok || ref.IsChunk {
		return types.Variadic{Variadic: &types.VariadicType{Base: types.P(types.Any)}}, nil
	}
	sig, ok := m.Db.Signature.Get(ref.Sig)
	if !ok {
		return types.Variadic{Variadic: &types.VariadicType{Base: types.P(types.Any)}}, nil
	}
	if info, ok := sig.ParamDocs[len(sig.Params)]; ok && info.Name == "..." {
		return types.Variadic{Variadic: &types.VariadicType{Base: info.Type}}, nil
	}
	return types.Variadic{Variadic: &types.VariadicType{Base: types.P(types.Any)}}, nil
}

func (m *SemanticModel) inferName(e *syntax.NameExpr) (types.Type, error) {
	if ref, ok := m.exprVarRef(e); ok {
		if cref, tree, fid, found := m.flowBindingFor(e); found {
			engine := m.engineFor(cref, tree)
			return engine.TypeAt(ref, fid)
		}
		return m.baseVarType(ref)
	}
	if d, ok := m.resolveGlobal(e.Name, nil); ok {
		return m.declType(d)
	}
	if isBuiltinName(e.Name) {
		return types.P(types.Function), nil
	}
	return nil, ids.FailNone()
}

func (m *SemanticModel) inferIndex(e *syntax.IndexExpr) (types.Type, error) {
	// a fixed dotted chain narrows as a unit when flow has seen it
	if ref, ok := m.exprVarRef(e); ok && ref.Kind == narrow.VarRefIndex {
		if cref, tree, fid, found := m.flowBindingFor(e); found {
			engine := m.engineFor(cref, tree)
			if t, err := engine.TypeAt(ref, fid); err == nil {
				return t, nil
			}
		}
	}

	prefixType, err := m.InferExpr(e.Prefix)
	if err != nil {
		return nil, err
	}
	key, ok := indexMemberKey(e)
	if !ok {
		// dynamic key: resolve through index-access entries by key type
		if e.Key != nil {
			if keyType, kerr := m.InferExpr(e.Key); kerr == nil {
				if res, found := m.Members.ResolveOnPrefix(m.Gen.UnfoldAlias(prefixType, nil), types.ExprKey(keyType), nil); found {
					return res.Type, nil
				}
			}
		}
		return nil, ids.FailFieldNotFound()
	}

	if mod, isMod := prefixType.(types.ModuleRef); isMod {
		return m.moduleMemberType(mod, key)
	}

	t, err := m.InferMemberByMemberKey(prefixType, key)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (m *SemanticModel) inferBinary(e *syntax.BinaryExpr) (types.Type, error) {
	switch e.Op {
	case syntax.OpAnd:
		l, err := m.InferExpr(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := m.InferExpr(e.Right)
		if err != nil {
			return nil, err
		}
		return types.TypeOpsUnion(narrow.NarrowFalseOrNil(l), r), nil
	case syntax.OpOr:
		l, err := m.InferExpr(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := m.InferExpr(e.Right)
		if err != nil {
			return nil, err
		}
		return types.TypeOpsUnion(narrow.RemoveFalseOrNil(l), r), nil
	case syntax.OpEq, syntax.OpNe, syntax.OpLt, syntax.OpLe, syntax.OpGt, syntax.OpGe:
		return types.P(types.Boolean), nil
	case "..":
		return types.P(types.String), nil
	default:
		return m.inferArithmetic(e)
	}
}

func (m *SemanticModel) inferArithmetic(e *syntax.BinaryExpr) (types.Type, error) {
	l, err := m.InferExpr(e.Left)
	if err != nil {
		return nil, err
	}
	r, err := m.InferExpr(e.Right)
	if err != nil {
		return nil, err
	}
	if e.Op == "/" || e.Op == "^" {
		return types.P(types.Number), nil
	}
	if isIntegral(l) && isIntegral(r) {
		return types.P(types.Integer), nil
	}
	return types.P(types.Number), nil
}

func isIntegral(t types.Type) bool {
	switch v := t.(type) {
	case types.Primitive:
		return v.Kind == types.Integer
	case types.IntegerConst:
		return true
	}
	return false
}

func (m *SemanticModel) inferUnary(e *syntax.UnaryExpr) (types.Type, error) {
	switch e.Op {
	case syntax.OpNot:
		return types.P(types.Boolean), nil
	case syntax.OpHash:
		return types.P(types.Integer), nil
	case syntax.OpNeg:
		t, err := m.InferExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		if isIntegral(t) {
			return types.P(types.Integer), nil
		}
		return types.P(types.Number), nil
	}
	return nil, ids.FailNone()
}

// --- variable resolution ---

// exprVarRef resolves an expression to the variable it tracks,
// composing fixed dotted/bracketed chains into index references.
func (m *SemanticModel) exprVarRef(e syntax.Expression) (narrow.VarRefId, bool) {
	sid := e.SyntaxId()
	if entry, ok := m.cache.varRefs[sid]; ok {
		return entry.ref, entry.ok
	}
	ref, ok := m.buildVarRef(e)
	m.cache.varRefs[sid] = varRefEntry{ref: ref, ok: ok}
	return ref, ok
}

func (m *SemanticModel) buildVarRef(e syntax.Expression) (narrow.VarRefId, bool) {
	switch ex := e.(type) {
	case *syntax.NameExpr:
		tree, ok := m.Db.Decl.Get(m.File)
		if !ok {
			return narrow.VarRefId{}, false
		}
		d, found := tree.FindLocalDecl(ex.Name, ex.SyntaxId().Range.Start)
		if !found {
			if g, ok := m.resolveGlobal(ex.Name, nil); ok {
				return narrow.VarRef(g.Id()), true
			}
			return narrow.VarRefId{}, false
		}
		if d.Kind == index.DeclImplicitSelf {
			return narrow.SelfRef(narrow.FromDecl(d.Id())), true
		}
		return narrow.VarRef(d.Id()), true

	case *syntax.IndexExpr:
		var path []narrow.PathSegment
		cur := e
		for {
			ix, ok := cur.(*syntax.IndexExpr)
			if !ok {
				break
			}
			seg, ok := pathSegment(ix)
			if !ok {
				return narrow.VarRefId{}, false
			}
			path = append([]narrow.PathSegment{seg}, path...)
			cur = ix.Prefix
		}
		root, ok := m.buildVarRef(cur)
		if !ok || root.Kind == narrow.VarRefIndex {
			return narrow.VarRefId{}, false
		}
		owner := root.Owner
		if root.Kind == narrow.VarRefPlain {
			owner = narrow.FromDecl(root.Decl)
		}
		return narrow.IndexRef(owner, path), true
	}
	return narrow.VarRefId{}, false
}

func pathSegment(ix *syntax.IndexExpr) (narrow.PathSegment, bool) {
	switch ix.KeyKind {
	case syntax.IndexKeyDot:
		return narrow.PathSegment{Name: ix.Name}, true
	case syntax.IndexKeyBracket:
		if lit, ok := ix.Key.(*syntax.LiteralExpr); ok {
			switch lit.Kind {
			case syntax.LiteralString:
				return narrow.PathSegment{Name: lit.Str}, true
			case syntax.LiteralInt:
				return narrow.PathSegment{IsInteger: true, Integer: lit.Int}, true
			}
		}
	}
	return narrow.PathSegment{}, false
}

// baseVarType is the unnarrowed type of a variable.
func (m *SemanticModel) baseVarType(v narrow.VarRefId) (types.Type, error) {
	switch v.Kind {
	case narrow.VarRefPlain:
		d, ok := m.Db.Decl.Decl(v.Decl)
		if !ok {
			return nil, ids.FailDecl(v.Decl)
		}
		return m.declType(d)

	case narrow.VarRefSelf:
		if v.Owner.Decl != nil {
			d, ok := m.Db.Decl.Decl(*v.Owner.Decl)
			if !ok {
				return nil, ids.FailDecl(*v.Owner.Decl)
			}
			return m.declType(d)
		}
		if v.Owner.Member != nil {
			mem, ok := m.Db.Member.Get(*v.Owner.Member)
			if !ok {
				return nil, ids.FailMember(*v.Owner.Member)
			}
			return mem.Type, nil
		}
		return types.P(types.SelfInfer), nil

	case narrow.VarRefIndex:
		var base types.Type
		switch {
		case v.Owner.Decl != nil:
			t, err := m.baseVarType(narrow.VarRef(*v.Owner.Decl))
			if err != nil {
				return nil, err
			}
			base = t
		case v.Owner.Member != nil:
			mem, ok := m.Db.Member.Get(*v.Owner.Member)
			if !ok {
				return nil, ids.FailMember(*v.Owner.Member)
			}
			base = mem.Type
		default:
			return nil, ids.FailNone()
		}
		cur := base
		for _, seg := range v.Path {
			var key types.MemberKey
			if seg.IsInteger {
				key = types.IntegerKey(seg.Integer)
			} else {
				key = types.NameKey(seg.Name)
			}
			next, err := m.InferMemberByMemberKey(cur, key)
			if err != nil {
				return nil, err
			}
			cur = next
		}
		return cur, nil
	}
	return nil, ids.FailNone()
}

// declType resolves one declaration's type: the cache, a parameter's
// doc annotation, an iterator binding, or the bound value expression.
func (m *SemanticModel) declType(d *index.Decl) (types.Type, error) {
	if entry, ok := m.Db.Type.Cache(index.DeclOwner(d.Id())); ok {
		return entry.Type, nil
	}

	switch d.Kind {
	case index.DeclParam:
		sig, ok := m.Db.Signature.Get(d.SignatureId)
		if !ok {
			return nil, ids.FailDecl(d.Id())
		}
		if info, ok := sig.ParamDocs[d.ParamIdx]; ok {
			return info.Type, nil
		}
		return types.P(types.Any), nil

	case index.DeclImplicitSelf:
		return m.implicitSelfType(d)

	case index.DeclGlobal:
		return nil, ids.FailDecl(d.Id())
	}

	if d.LocalAttrib == index.AttribIterConst && d.ExprId != nil {
		return m.iterBindingType(d)
	}

	// the flow tree records the binding expression of plain locals
	for _, tree := range m.Db.Flow.Trees(m.File) {
		if expr, ok := tree.DeclBindExprRef[d.Id()]; ok {
			t, err := m.InferExpr(expr)
			if err != nil {
				return nil, err
			}
			return narrow.NthValue(t, tree.DeclBindMultiIndex[d.Id()]), nil
		}
	}
	if d.LocalAttrib == index.AttribIterConst {
		// numeric-for iterator with no binding expression
		return types.P(types.Integer), nil
	}
	return nil, ids.FailDecl(d.Id())
}

// implicitSelfType walks to the method's owner: the class the
// enclosing `function X:M` / `function X.Y:M` target resolves to.
func (m *SemanticModel) implicitSelfType(d *index.Decl) (types.Type, error) {
	// the signature's closure is keyed by position; find the FuncStat
	// carrying it and type self from its target's prefix
	for _, node := range m.Tree.Nodes {
		fs, ok := node.(*syntax.FuncStat)
		if !ok || fs.SigPos != d.SignatureId.Pos {
			continue
		}
		var prefix syntax.Expression
		if ix, ok := fs.Target.(*syntax.IndexExpr); ok {
			prefix = ix.Prefix
		} else {
			prefix = fs.Target
		}
		t, err := m.InferExpr(prefix)
		if err != nil {
			return nil, err
		}
		if def, ok := t.(types.Def); ok {
			return types.Ref{Decl: def.Decl}, nil
		}
		return t, nil
	}
	return types.P(types.SelfInfer), nil
}

// iterBindingType types one generic-for name from its iterator call.
func (m *SemanticModel) iterBindingType(d *index.Decl) (types.Type, error) {
	node := m.Tree.Resolve(m.File, *d.ExprId)
	call, ok := node.(*syntax.CallExpr)
	if !ok {
		if expr, isExpr := node.(syntax.Expression); isExpr {
			t, err := m.InferExpr(expr)
			if err != nil {
				return nil, err
			}
			return narrow.NthValue(t, d.ParamIdx), nil
		}
		return nil, ids.FailDecl(d.Id())
	}
	t, err := m.InferExpr(call)
	if err != nil {
		return nil, err
	}
	// the iterator triple's function yields the loop values
	iterFn := narrow.FirstValue(t)
	if fn, ok := m.funcTypeOf(iterFn); ok && fn.Ret != nil {
		return narrow.NthValue(fn.Ret, d.ParamIdx), nil
	}
	return narrow.NthValue(t, d.ParamIdx), nil
}

func (m *SemanticModel) funcTypeOf(t types.Type) (*types.FunctionType, bool) {
	switch v := t.(type) {
	case types.DocFunction:
		return v.Func, true
	case types.Signature:
		if sig, ok := m.Db.Signature.Get(v.Id); ok && len(sig.Overloads) > 0 {
			return sig.Overloads[0], true
		}
	}
	return nil, false
}

// --- provider: the narrower's callback surface ---

type provider struct{ m *SemanticModel }

func (p *provider) BaseVarType(v narrow.VarRefId) (types.Type, error) { return p.m.baseVarType(v) }

func (p *provider) DocDeclType(v narrow.VarRefId) (types.Type, bool) {
	if v.Kind != narrow.VarRefPlain {
		return nil, false
	}
	entry, ok := p.m.Db.Type.Cache(index.DeclOwner(v.Decl))
	if !ok || entry.Origin != index.CacheDoc {
		return nil, false
	}
	return entry.Type, true
}

func (p *provider) InferExpr(e syntax.Expression) (types.Type, error) { return p.m.InferExpr(e) }

func (p *provider) ExprVarRef(e syntax.Expression) (narrow.VarRefId, bool) {
	return p.m.exprVarRef(e)
}

func (p *provider) ConvertDocType(d syntax.DocType) types.Type {
	return analyze.NewTypeBuilder(p.m.Db.Type, p.m.File).Convert(d)
}

func (p *provider) CalleeSignature(call *syntax.CallExpr) (*index.Signature, bool) {
	t, err := p.m.InferExpr(call.Callee)
	if err != nil {
		return nil, false
	}
	s, ok := t.(types.Signature)
	if !ok {
		return nil, false
	}
	return p.m.Db.Signature.Get(s.Id)
}

func (p *provider) CallReturn(call *syntax.CallExpr) (types.Type, bool) {
	t, err := p.m.InferExpr(call)
	if err != nil {
		return nil, false
	}
	return t, true
}

func (p *provider) IsTypeBuiltin(callee syntax.Expression) bool {
	name, ok := callee.(*syntax.NameExpr)
	if !ok || name.Name != "type" {
		return false
	}
	if tree, ok := p.m.Db.Decl.Get(p.m.File); ok {
		if _, shadowed := tree.FindLocalDecl("type", name.SyntaxId().Range.Start); shadowed {
			return false
		}
	}
	return true
}

func (p *provider) ResolveToUnion(t types.Type) types.Type {
	return p.m.Gen.UnfoldAlias(t, nil)
}

func (p *provider) MemberTypeOf(t types.Type, key types.MemberKey) (types.Type, bool) {
	res, ok := p.m.Members.ResolveOnPrefix(p.m.Gen.UnfoldAlias(t, nil), key, nil)
	if !ok {
		return nil, false
	}
	return res.Type, true
}

// typeBuilderFacade adapts the analyze-package converter for FindDecl.
type typeBuilderFacade struct{ m *SemanticModel }

func (tb *typeBuilderFacade) Convert(d syntax.DocType) types.Type {
	return analyze.NewTypeBuilder(tb.m.Db.Type, tb.m.File).Convert(d)
}
