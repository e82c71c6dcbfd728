package semantic

import (
	"github.com/emmylua-go/semacore/internal/analyze"
	"github.com/emmylua-go/semacore/internal/generic"
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/narrow"
	"github.com/emmylua-go/semacore/internal/overload"
	"github.com/emmylua-go/semacore/internal/syntax"
	"github.com/emmylua-go/semacore/internal/types"
)

var builtinNames = map[string]bool{
	"type": true, "select": true, "pairs": true, "ipairs": true,
	"require": true, "setmetatable": true, "rawget": true, "rawset": true,
	"print": true, "tostring": true, "tonumber": true, "error": true,
	"assert": true, "next": true, "unpack": true, "pcall": true,
}

func isBuiltinName(name string) bool { return builtinNames[name] }

func (m *SemanticModel) inferCall(call *syntax.CallExpr) (types.Type, error) {
	if name, ok := call.Callee.(*syntax.NameExpr); ok && !m.localShadows(name) {
		if t, handled, err := m.inferBuiltinCall(name.Name, call); handled {
			return t, err
		}
	}

	calleeType, err := m.InferExpr(call.Callee)
	if err != nil {
		return nil, err
	}
	return m.resolveCall(calleeType, call)
}

func (m *SemanticModel) localShadows(name *syntax.NameExpr) bool {
	tree, ok := m.Db.Decl.Get(m.File)
	if !ok {
		return false
	}
	_, shadowed := tree.FindLocalDecl(name.Name, name.SyntaxId().Range.Start)
	return shadowed
}

// inferBuiltinCall covers the standard-library functions whose return
// types the core computes structurally: require, type, select, pairs,
// ipairs, rawget, unpack, setmetatable, tostring, tonumber.
func (m *SemanticModel) inferBuiltinCall(name string, call *syntax.CallExpr) (types.Type, bool, error) {
	// only a local binding of the same name (checked by the caller)
	// bypasses this structural shortcut; a declared global does not
	switch name {
	case "require":
		if len(call.Args) == 0 {
			return nil, true, ids.FailNone()
		}
		lit, ok := call.Args[0].(*syntax.LiteralExpr)
		if !ok || lit.Kind != syntax.LiteralString {
			return nil, true, ids.FailNone()
		}
		info, ok := m.Db.Module.FindModule(lit.Str)
		if !ok {
			return nil, true, ids.FailNone()
		}
		t, err := m.moduleExportType(info)
		return t, true, err

	case "type":
		return types.P(types.String), true, nil

	case "select":
		return m.inferSelect(call)

	case "pairs":
		return m.inferPairs(call, false)

	case "ipairs":
		return m.inferPairs(call, true)

	case "rawget":
		if len(call.Args) != 2 {
			return nil, false, nil
		}
		obj, err := m.InferExpr(call.Args[0])
		if err != nil {
			return nil, true, err
		}
		key, err := m.InferExpr(call.Args[1])
		if err != nil {
			return nil, true, err
		}
		if t, ok := m.Gen.EvalAliasCall(types.Call{Kind: types.CallRawGet, Operands: []types.Type{obj, key}}); ok {
			return t, true, nil
		}
		return types.P(types.Unknown), true, nil

	case "unpack":
		if len(call.Args) == 0 {
			return nil, false, nil
		}
		ops := make([]types.Type, 0, len(call.Args))
		for _, a := range call.Args {
			t, err := m.InferExpr(a)
			if err != nil {
				return nil, true, err
			}
			ops = append(ops, t)
		}
		if t, ok := m.Gen.EvalAliasCall(types.Call{Kind: types.CallUnpack, Operands: ops}); ok {
			return t, true, nil
		}
		return nil, true, ids.FailNone()

	case "setmetatable":
		if len(call.Args) >= 1 {
			t, err := m.InferExpr(call.Args[0])
			return t, true, err
		}
		return nil, true, ids.FailNone()

	case "tostring":
		return types.P(types.String), true, nil
	case "tonumber":
		return types.NewUnion([]types.Type{types.P(types.Number), types.P(types.Nil)}), true, nil
	}
	return nil, false, nil
}

// inferSelect computes select(n, ...) / select('#', ...): '#' yields the argument count (a constant when the
// source is a fixed sequence), a numeric index yields the tail.
func (m *SemanticModel) inferSelect(call *syntax.CallExpr) (types.Type, bool, error) {
	if len(call.Args) < 2 {
		return nil, true, ids.FailNone()
	}
	src, err := m.InferExpr(call.Args[1])
	if err != nil {
		return nil, true, err
	}
	idx, err := m.InferExpr(call.Args[0])
	if err != nil {
		return nil, true, err
	}
	if t, ok := m.Gen.EvalAliasCall(types.Call{Kind: types.CallSelect, Operands: []types.Type{src, idx}}); ok {
		return t, true, nil
	}
	return src, true, nil
}

// inferPairs yields the iterator triple (iterator fn, state, control)
// for pairs/ipairs, with key/value types derived from the iterated
// table.
func (m *SemanticModel) inferPairs(call *syntax.CallExpr, integerKeys bool) (types.Type, bool, error) {
	if len(call.Args) == 0 {
		return nil, true, ids.FailNone()
	}
	src, err := m.InferExpr(call.Args[0])
	if err != nil {
		return nil, true, err
	}
	k, v, ok := m.Gen.TableKeyValue(m.Gen.UnfoldAlias(src, nil))
	if !ok {
		k, v = types.P(types.Any), types.P(types.Any)
	}
	if integerKeys {
		k = types.P(types.Integer)
	}
	iter := types.DocFunction{Func: &types.FunctionType{
		Params: []types.Param{{Name: "t", Type: src}, {Name: "k", Type: k}},
		Ret:    types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: []types.Type{k, v}}},
	}}
	return types.Variadic{Variadic: &types.VariadicType{
		IsMulti: true,
		Multi:   []types.Type{iter, src, types.P(types.Nil)},
	}}, true, nil
}

// resolveCall resolves the callee type to a concrete function, picks
// an overload, instantiates generics, and
// returns the call's value type.
func (m *SemanticModel) resolveCall(calleeType types.Type, call *syntax.CallExpr) (types.Type, error) {
	switch ct := calleeType.(type) {
	case types.Signature:
		sig, ok := m.Db.Signature.Get(ct.Id)
		if !ok {
			return nil, ids.FailSignatureReturn(ct.Id)
		}
		return m.callSignature(sig, call)

	case types.DocFunction:
		return m.callFunc(nil, ct.Func, call)

	case types.Union:
		args := m.evalArgs(call)
		cands := overload.CollectCandidates(ct, func(s types.Signature) []*types.FunctionType {
			if sig, ok := m.Db.Signature.Get(s.Id); ok {
				return sig.Overloads
			}
			return nil
		})
		best := overload.Resolve(m.Gen, cands, args)
		if best == nil {
			return nil, ids.FailNone()
		}
		return m.callFunc(nil, best, call)

	case types.Ref, types.Def:
		// a class value is callable through its __call metamethod
		if fn, ok := m.classCallOperator(calleeType); ok {
			return m.resolveCall(fn, call)
		}
		unfolded := m.Gen.UnfoldAlias(calleeType, nil)
		if !types.StructurallyEqual(unfolded, calleeType) {
			return m.resolveCall(unfolded, call)
		}
	}
	return nil, ids.FailNone()
}

func (m *SemanticModel) classCallOperator(t types.Type) (types.Type, bool) {
	var id ids.TypeDeclId
	switch v := t.(type) {
	case types.Ref:
		id = v.Decl
	case types.Def:
		id = v.Decl
	default:
		return nil, false
	}
	ops := m.Db.Operator.Get(index.TypeMemberOwner(id), "__call")
	if len(ops) == 0 {
		return nil, false
	}
	switch ops[0].Func.Kind {
	case index.OperatorFuncInline:
		return types.DocFunction{Func: ops[0].Func.Inline}, true
	case index.OperatorFuncSignature:
		return types.Signature{Id: ops[0].Func.Signature}, true
	}
	return nil, false
}

func (m *SemanticModel) callSignature(sig *index.Signature, call *syntax.CallExpr) (types.Type, error) {
	if len(sig.Overloads) == 0 {
		return nil, ids.FailSignatureReturn(sig.Id)
	}
	args := m.evalArgs(call)
	chosen := sig.Overloads[0]
	if len(sig.Overloads) > 1 {
		chosen = overload.Resolve(m.Gen, sig.Overloads, args)
	}
	if chosen == nil {
		return nil, ids.FailSignatureReturn(sig.Id)
	}
	if chosen.Ret == nil && sig.ResolveReturn == index.ResolveUnresolved {
		if ret, ok := m.inferSignatureReturn(sig); ok {
			withRet := *chosen
			withRet.Ret = ret
			chosen = &withRet
		}
	}
	return m.callFunc(sig, chosen, call)
}

func (m *SemanticModel) callFunc(sig *index.Signature, fn *types.FunctionType, call *syntax.CallExpr) (types.Type, error) {
	needsGenerics := (sig != nil && len(sig.GenericParams) > 0) || funcHasTpl(fn)
	if !needsGenerics {
		if fn.Ret == nil {
			if sig != nil {
				return nil, ids.FailSignatureReturn(sig.Id)
			}
			return types.P(types.Nil), nil
		}
		return fn.Ret, nil
	}

	ctx := generic.CallCtx{
		Args:     m.evalArgs(call),
		StdPairs: m.isStdPairsCall(call),
	}
	if ix, ok := call.Callee.(*syntax.IndexExpr); ok {
		ctx.IsColonCall = ix.KeyKind == syntax.IndexKeyColon
		if pt, err := m.InferExpr(ix.Prefix); err == nil {
			ctx.PrefixType = pt
		}
	}
	if len(call.GenericArgs) > 0 {
		tb := analyze.NewTypeBuilder(m.Db.Type, m.File)
		for _, ga := range call.GenericArgs {
			ctx.ExplicitArgs = append(ctx.ExplicitArgs, tb.Convert(ga))
		}
	}

	inst := m.Gen.InstantiateFuncGeneric(sig, fn, ctx)
	if inst.Ret == nil {
		if sig != nil {
			return nil, ids.FailSignatureReturn(sig.Id)
		}
		return types.P(types.Nil), nil
	}
	return inst.Ret, nil
}

func funcHasTpl(fn *types.FunctionType) bool {
	for _, p := range fn.Params {
		if p.Type != nil && types.ContainsTpl(p.Type) {
			return true
		}
	}
	return fn.Ret != nil && (types.ContainsTpl(fn.Ret) || types.ContainsSelf(fn.Ret))
}

// evalArgs evaluates argument types once per call;
// a trailing multi-value spreads.
func (m *SemanticModel) evalArgs(call *syntax.CallExpr) []types.Type {
	var out []types.Type
	for i, a := range call.Args {
		t, err := m.InferExpr(a)
		if err != nil {
			out = append(out, types.P(types.Unknown))
			continue
		}
		if i == len(call.Args)-1 {
			if vr, ok := t.(types.Variadic); ok && vr.Variadic.IsMulti {
				out = append(out, vr.Variadic.Multi...)
				continue
			}
		} else {
			t = narrow.FirstValue(t)
		}
		out = append(out, t)
	}
	return out
}

// overloadScore exposes the overload ranking for global-name
// disambiguation.
func (m *SemanticModel) overloadScore(cand *types.FunctionType, args []types.Type) int {
	if overload.Resolve(m.Gen, []*types.FunctionType{cand}, args) == nil {
		return -1 << 30
	}
	// rank by the same criteria Resolve uses, reduced to a coarse
	// compatibility count
	score := 0
	for i, a := range args {
		if i >= len(cand.Params) {
			break
		}
		if cand.Params[i].Type == nil || m.Gen.CheckTypeCompact(a, cand.Params[i].Type) {
			score++
		}
	}
	if len(args) == len(cand.Params) {
		score += 10
	}
	return score
}

// isStdPairsCall recognizes the standard library's pairs function:
// the callee must be named pairs and resolve into the std workspace,
// or be the unshadowed builtin itself. Other functions named pairs
// get no special treatment.
func (m *SemanticModel) isStdPairsCall(call *syntax.CallExpr) bool {
	name, ok := call.Callee.(*syntax.NameExpr)
	if !ok || name.Name != "pairs" {
		return false
	}
	if m.localShadows(name) {
		return false
	}
	if d, ok := m.resolveGlobal("pairs", nil); ok {
		if info, found := m.Db.Module.ModuleOf(d.File); found {
			return info.WorkspaceId == index.WorkspaceStd
		}
		return false
	}
	return true
}

// inferSignatureReturn derives a signature's return type from its
// closure body when no @return doc exists. Only same-file closures are reachable here.
func (m *SemanticModel) inferSignatureReturn(sig *index.Signature) (types.Type, bool) {
	body, ok := m.closureBodyOf(sig.Id)
	if !ok {
		return nil, false
	}
	var returns []types.Type
	collectReturnStats(body, func(rs *syntax.ReturnStat) {
		switch len(rs.Exprs) {
		case 0:
			returns = append(returns, types.P(types.Nil))
		case 1:
			if t, err := m.InferExpr(rs.Exprs[0]); err == nil {
				returns = append(returns, t)
			}
		default:
			multi := make([]types.Type, 0, len(rs.Exprs))
			for _, e := range rs.Exprs {
				if t, err := m.InferExpr(e); err == nil {
					multi = append(multi, narrow.FirstValue(t))
				} else {
					multi = append(multi, types.P(types.Unknown))
				}
			}
			returns = append(returns, types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: multi}})
		}
	})
	if len(returns) == 0 {
		return types.P(types.Nil), true
	}
	if len(returns) == 1 {
		return returns[0], true
	}
	return types.NewUnion(returns), true
}

func (m *SemanticModel) closureBodyOf(sig ids.SignatureId) (*syntax.Block, bool) {
	if sig.File != m.File {
		return nil, false
	}
	for _, node := range m.Tree.Nodes {
		switch n := node.(type) {
		case *syntax.FuncStat:
			if n.SigPos == sig.Pos {
				return n.Body, true
			}
		case *syntax.LocalFuncStat:
			if n.SigPos == sig.Pos {
				return n.Body, true
			}
		case *syntax.ClosureExpr:
			if n.SigPos == sig.Pos {
				return n.Body, true
			}
		}
	}
	return nil, false
}

// collectReturnStats visits return statements of one closure body
// without descending into nested closures.
func collectReturnStats(blk *syntax.Block, visit func(*syntax.ReturnStat)) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stats {
		switch st := s.(type) {
		case *syntax.ReturnStat:
			visit(st)
		case *syntax.IfStat:
			collectReturnStats(st.Then, visit)
			for _, ei := range st.ElseIfs {
				collectReturnStats(ei.Body, visit)
			}
			collectReturnStats(st.Else, visit)
		case *syntax.WhileStat:
			collectReturnStats(st.Body, visit)
		case *syntax.RepeatStat:
			collectReturnStats(st.Body, visit)
		case *syntax.NumericForStat:
			collectReturnStats(st.Body, visit)
		case *syntax.GenericForStat:
			collectReturnStats(st.Body, visit)
		case *syntax.DoStat:
			collectReturnStats(st.Body, visit)
		}
	}
}

// moduleExportType resolves (and memoizes) a module's export type:
// the inferred type of its chunk's trailing return expression.
func (m *SemanticModel) moduleExportType(info *index.ModuleInfo) (types.Type, error) {
	if info.ExportType != nil {
		if t, ok := info.ExportType.(types.Type); ok {
			return t, nil
		}
	}
	if m.cache.exportActive[info.File] {
		return types.ModuleRef{File: info.File}, nil
	}
	m.cache.exportActive[info.File] = true
	defer delete(m.cache.exportActive, info.File)
	// require cycles across files terminate through this in-progress
	// marker; the real export overwrites it below
	info.ExportType = types.Type(types.ModuleRef{File: info.File})
	defer func() {
		if mr, ok := info.ExportType.(types.ModuleRef); ok && mr.File == info.File {
			info.ExportType = nil
		}
	}()

	other := m
	if info.File != m.File {
		var ok bool
		other, ok = NewSemanticModel(m.Db, info.File)
		if !ok {
			return types.ModuleRef{File: info.File}, nil
		}
	}
	expr, ok := chunkReturnExpr(other.Tree.Root)
	if !ok {
		return types.ModuleRef{File: info.File}, nil
	}
	t, err := other.InferExpr(expr)
	if err != nil {
		return nil, err
	}
	t = narrow.FirstValue(t)
	info.ExportType = t
	return t, nil
}

// moduleMemberType resolves a member access on a ModuleRef via its
// export type.
func (m *SemanticModel) moduleMemberType(mod types.ModuleRef, key types.MemberKey) (types.Type, error) {
	info, ok := m.Db.Module.ModuleOf(mod.File)
	if !ok {
		return nil, ids.FailFieldNotFound()
	}
	export, err := m.moduleExportType(info)
	if err != nil {
		return nil, err
	}
	if _, isRef := export.(types.ModuleRef); isRef {
		return nil, ids.FailFieldNotFound()
	}
	return m.InferMemberByMemberKey(export, key)
}

func chunkReturnExpr(chunk *syntax.Chunk) (syntax.Expression, bool) {
	if chunk == nil || chunk.Body == nil || len(chunk.Body.Stats) == 0 {
		return nil, false
	}
	last := chunk.Body.Stats[len(chunk.Body.Stats)-1]
	rs, ok := last.(*syntax.ReturnStat)
	if !ok || len(rs.Exprs) == 0 {
		return nil, false
	}
	return rs.Exprs[0], true
}
