package analyze

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/syntax"
	"github.com/emmylua-go/semacore/internal/types"
)

// declAnalyzer builds the scope tree, emits decls, marks parameters,
// threads implicit self, registers globals and records references.
type declAnalyzer struct {
	db   *index.DbIndex
	file ids.FileId
	tree *index.DeclarationTree
}

func analyzeDeclarations(db *index.DbIndex, file ids.FileId, chunk *syntax.Chunk) {
	a := &declAnalyzer{db: db, file: file, tree: db.Decl.Tree(file)}
	a.walkBlock(a.tree.RootScope(), chunk.Body)
}

func (a *declAnalyzer) walkBlock(scope ids.ScopeId, blk *syntax.Block) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stats {
		a.walkStat(scope, s)
	}
}

func (a *declAnalyzer) walkStat(scope ids.ScopeId, s syntax.Statement) {
	switch st := s.(type) {
	case *syntax.LocalStat:
		stScope := a.tree.NewScope(scope, st.SyntaxId().Range, index.ScopeLocalOrAssignStat)
		for _, e := range st.Exprs {
			a.walkExpr(stScope, e)
		}
		for i, nm := range st.Names {
			d := &index.Decl{
				Name:  nm.Name,
				File:  a.file,
				Range: nameRange(nm),
				Kind:  index.DeclLocal,
			}
			switch nm.Attrib {
			case "const":
				d.LocalAttrib = index.AttribConst
			case "close":
				d.LocalAttrib = index.AttribClose
			}
			if i < len(st.Exprs) {
				sid := st.Exprs[i].SyntaxId()
				d.ExprId = &sid
			} else if len(st.Exprs) > 0 {
				sid := st.Exprs[len(st.Exprs)-1].SyntaxId()
				d.ExprId = &sid
				d.ParamIdx = i - (len(st.Exprs) - 1)
			}
			a.tree.AddDecl(stScope, d)
		}

	case *syntax.AssignStat:
		for _, e := range st.Exprs {
			a.walkExpr(scope, e)
		}
		for _, target := range st.Targets {
			a.walkAssignTarget(scope, target)
		}

	case *syntax.IfStat:
		a.walkExpr(scope, st.Cond)
		a.walkBlockScoped(scope, st.Then)
		for _, ei := range st.ElseIfs {
			a.walkExpr(scope, ei.Cond)
			a.walkBlockScoped(scope, ei.Body)
		}
		a.walkBlockScoped(scope, st.Else)

	case *syntax.WhileStat:
		a.walkExpr(scope, st.Cond)
		a.walkBlockScoped(scope, st.Body)

	case *syntax.RepeatStat:
		// body decls live directly in the Repeat scope so the until
		// condition sees them
		rep := a.tree.NewScope(scope, st.SyntaxId().Range, index.ScopeRepeat)
		a.walkBlock(rep, st.Body)
		a.walkExpr(rep, st.Until)

	case *syntax.NumericForStat:
		a.walkExpr(scope, st.Start)
		a.walkExpr(scope, st.Stop)
		if st.Step != nil {
			a.walkExpr(scope, st.Step)
		}
		fr := a.tree.NewScope(scope, st.SyntaxId().Range, index.ScopeForRange)
		a.tree.AddDecl(fr, &index.Decl{
			Name:        st.Var.Name,
			File:        a.file,
			Range:       nameRange(st.Var),
			Kind:        index.DeclLocal,
			LocalAttrib: index.AttribIterConst,
		})
		a.walkBlockScoped(fr, st.Body)

	case *syntax.GenericForStat:
		fr := a.tree.NewScope(scope, st.SyntaxId().Range, index.ScopeForRange)
		for _, e := range st.Exprs {
			a.walkExpr(scope, e)
		}
		for i, nm := range st.Names {
			d := &index.Decl{
				Name:        nm.Name,
				File:        a.file,
				Range:       nameRange(nm),
				Kind:        index.DeclLocal,
				LocalAttrib: index.AttribIterConst,
				ParamIdx:    i,
			}
			if len(st.Exprs) > 0 {
				sid := st.Exprs[0].SyntaxId()
				d.ExprId = &sid
			}
			a.tree.AddDecl(fr, d)
		}
		a.walkBlockScoped(fr, st.Body)

	case *syntax.FuncStat:
		a.walkFuncTarget(scope, st)
		kind := index.ScopeFuncStat
		if st.IsMethod {
			kind = index.ScopeMethodStat
		}
		fs := a.tree.NewScope(scope, st.SyntaxId().Range, kind)
		sigId := ids.SignatureId{File: a.file, Pos: st.SigPos}
		if st.IsMethod {
			a.tree.AddDecl(fs, &index.Decl{
				Name:        "self",
				File:        a.file,
				Range:       ids.Range{Start: st.SigPos, End: st.SigPos + 1},
				Kind:        index.DeclImplicitSelf,
				SignatureId: sigId,
				SelfKind:    "instance-method",
			})
		}
		a.addParams(fs, st.Params, sigId)
		a.walkBlock(fs, st.Body)

	case *syntax.LocalFuncStat:
		d := &index.Decl{
			Name:  st.Name.Name,
			File:  a.file,
			Range: nameRange(st.Name),
			Kind:  index.DeclLocal,
		}
		a.tree.AddDecl(scope, d)
		sigId := ids.SignatureId{File: a.file, Pos: st.SigPos}
		a.db.Type.SetCache(index.DeclOwner(d.Id()), types.Signature{Id: sigId}, index.CacheInferred)
		fs := a.tree.NewScope(scope, st.SyntaxId().Range, index.ScopeFuncStat)
		a.addParams(fs, st.Params, sigId)
		a.walkBlock(fs, st.Body)

	case *syntax.ReturnStat:
		for _, e := range st.Exprs {
			a.walkExpr(scope, e)
		}

	case *syntax.GotoStat, *syntax.LabelStat, *syntax.BreakStat, *syntax.DocStat:
		// nothing declares or references here

	case *syntax.CallStat:
		a.walkExpr(scope, st.Call)

	case *syntax.DoStat:
		a.walkBlockScoped(scope, st.Body)
	}
}

func (a *declAnalyzer) walkBlockScoped(scope ids.ScopeId, blk *syntax.Block) {
	if blk == nil {
		return
	}
	inner := a.tree.NewScope(scope, blk.SyntaxId().Range, index.ScopeNormal)
	a.walkBlock(inner, blk)
}

func (a *declAnalyzer) addParams(scope ids.ScopeId, params []syntax.LocalName, sig ids.SignatureId) {
	for i, p := range params {
		a.tree.AddDecl(scope, &index.Decl{
			Name:        p.Name,
			File:        a.file,
			Range:       nameRange(p),
			Kind:        index.DeclParam,
			ParamIdx:    i,
			SignatureId: sig,
		})
	}
}

// walkAssignTarget handles the write side of an assignment: a bare
// name with no local decl in scope becomes (or references) a global.
func (a *declAnalyzer) walkAssignTarget(scope ids.ScopeId, target syntax.Expression) {
	switch t := target.(type) {
	case *syntax.NameExpr:
		rng := t.SyntaxId().Range
		if d, ok := a.tree.FindLocalDecl(t.Name, rng.Start); ok {
			a.db.Reference.AddDeclRef(d.Id(), rng, true)
			return
		}
		existing := a.db.Global.Get(t.Name)
		if len(existing) == 0 {
			g := &index.Decl{
				Name:       t.Name,
				File:       a.file,
				Range:      rng,
				Kind:       index.DeclGlobal,
				GlobalKind: index.GlobalAssign,
			}
			a.tree.AddDecl(a.tree.RootScope(), g)
			a.db.Global.Add(t.Name, g.Id())
		}
		a.db.Reference.AddGlobalRef(t.Name, rng, true)
	case *syntax.IndexExpr:
		a.walkExpr(scope, t.Prefix)
		if t.KeyKind == syntax.IndexKeyDot {
			a.db.Reference.AddIndexRef(t.Name, t.SyntaxId().Range, true)
		} else if t.Key != nil {
			a.walkExpr(scope, t.Key)
		}
	default:
		a.walkExpr(scope, target)
	}
}

// walkFuncTarget registers `function M.foo()` / `function G()` shapes:
// a member on M's table for the former, a global for the latter.
func (a *declAnalyzer) walkFuncTarget(scope ids.ScopeId, st *syntax.FuncStat) {
	sigId := ids.SignatureId{File: a.file, Pos: st.SigPos}
	switch t := st.Target.(type) {
	case *syntax.NameExpr:
		rng := t.SyntaxId().Range
		if d, ok := a.tree.FindLocalDecl(t.Name, rng.Start); ok {
			a.db.Reference.AddDeclRef(d.Id(), rng, true)
			return
		}
		g := &index.Decl{
			Name:       t.Name,
			File:       a.file,
			Range:      rng,
			Kind:       index.DeclGlobal,
			GlobalKind: index.GlobalAssign,
		}
		a.tree.AddDecl(a.tree.RootScope(), g)
		a.db.Global.Add(t.Name, g.Id())
		a.db.Type.SetCache(index.DeclOwner(g.Id()), types.Signature{Id: sigId}, index.CacheInferred)
	case *syntax.IndexExpr:
		a.walkExpr(scope, t.Prefix)
		if owner, ok := a.elementOwnerOf(t.Prefix); ok && t.KeyKind != syntax.IndexKeyBracket {
			a.db.Member.Add(&index.Member{
				Id:            ids.MemberId{File: a.file, Node: t.SyntaxId()},
				Key:           types.NameKey(t.Name),
				Type:          types.Signature{Id: sigId},
				Owner:         owner,
				IsFunctionDef: true,
			})
		}
	}
}

// elementOwnerOf resolves a function-statement prefix to the member
// owner it addresses: the literal table bound to a local, or the class
// a decl is annotated as.
func (a *declAnalyzer) elementOwnerOf(prefix syntax.Expression) (index.MemberOwner, bool) {
	name, ok := prefix.(*syntax.NameExpr)
	if !ok {
		return index.MemberOwner{}, false
	}
	d, ok := a.tree.FindLocalDecl(name.Name, name.SyntaxId().Range.Start)
	if !ok {
		return index.MemberOwner{}, false
	}
	if entry, ok := a.db.Type.Cache(index.DeclOwner(d.Id())); ok {
		switch t := entry.Type.(type) {
		case types.Def:
			return index.TypeMemberOwner(t.Decl), true
		case types.Ref:
			return index.TypeMemberOwner(t.Decl), true
		}
	}
	if d.ExprId != nil && d.ExprId.Kind == syntax.KindTableExpr {
		return index.ElementMemberOwner(a.file, d.ExprId.Range), true
	}
	return index.MemberOwner{}, false
}

// walkExpr records references and recurses into nested closures.
func (a *declAnalyzer) walkExpr(scope ids.ScopeId, e syntax.Expression) {
	switch ex := e.(type) {
	case *syntax.NameExpr:
		rng := ex.SyntaxId().Range
		if d, ok := a.tree.FindLocalDecl(ex.Name, rng.Start); ok {
			a.db.Reference.AddDeclRef(d.Id(), rng, false)
		} else {
			a.db.Reference.AddGlobalRef(ex.Name, rng, false)
		}
	case *syntax.IndexExpr:
		a.walkExpr(scope, ex.Prefix)
		if ex.KeyKind == syntax.IndexKeyDot || ex.KeyKind == syntax.IndexKeyColon {
			a.db.Reference.AddIndexRef(ex.Name, ex.SyntaxId().Range, false)
		} else if ex.Key != nil {
			a.walkExpr(scope, ex.Key)
		}
	case *syntax.CallExpr:
		a.walkExpr(scope, ex.Callee)
		for _, arg := range ex.Args {
			a.walkExpr(scope, arg)
		}
	case *syntax.BinaryExpr:
		a.walkExpr(scope, ex.Left)
		a.walkExpr(scope, ex.Right)
	case *syntax.UnaryExpr:
		a.walkExpr(scope, ex.Operand)
	case *syntax.ParenExpr:
		a.walkExpr(scope, ex.Inner)
	case *syntax.ClosureExpr:
		fs := a.tree.NewScope(scope, ex.SyntaxId().Range, index.ScopeFuncStat)
		a.addParams(fs, ex.Params, ids.SignatureId{File: a.file, Pos: ex.SigPos})
		a.walkBlock(fs, ex.Body)
	case *syntax.TableExpr:
		for _, f := range ex.Fields {
			if f.Key != nil {
				a.walkExpr(scope, f.Key)
			}
			if f.Value != nil {
				a.walkExpr(scope, f.Value)
			}
		}
	case *syntax.LiteralExpr:
		if ex.Kind == syntax.LiteralString {
			a.db.Reference.AddStringRef(ex.Str, ex.SyntaxId().Range)
		}
	}
}

func nameRange(n syntax.LocalName) ids.Range {
	return ids.Range{Start: n.Pos, End: n.Pos + ids.Position(len(n.Name))}
}
