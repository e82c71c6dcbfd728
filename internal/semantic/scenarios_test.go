package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmylua-go/semacore/internal/analyze"
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/luaconfig"
	"github.com/emmylua-go/semacore/internal/semantic"
	"github.com/emmylua-go/semacore/internal/synbuild"
	"github.com/emmylua-go/semacore/internal/syntax"
	"github.com/emmylua-go/semacore/internal/types"
	"github.com/emmylua-go/semacore/internal/vfs"
)

func analyzed(t *testing.T, tree *vfs.SyntaxTree) (*index.DbIndex, ids.FileId, *semantic.SemanticModel) {
	t.Helper()
	v := vfs.NewMemVFS()
	cfg := luaconfig.Default()
	v.UpdateConfig(cfg)
	db := index.NewDbIndex(v, cfg)
	file := v.Load("/ws/main.lua", "", tree)
	analyze.RegisterModule(db, file, "/ws", index.WorkspaceMain, false)
	require.True(t, analyze.AnalyzeFile(db, file))
	m, ok := semantic.NewSemanticModel(db, file)
	require.True(t, ok)
	return db, file, m
}

// Flow narrowing through a type() guard: inside the guarded branch x
// is string, past it x is number.
func TestScenarioTypeGuardNarrowing(t *testing.T) {
	b := synbuild.New()

	lfStart := b.Mark()
	doc := b.TagParam("x", b.DocUnion(b.DocNamed("number"), b.DocNamed("string")))
	fname := b.LocalName("f")
	sigPos := b.SigPos()
	xp := b.LocalName("x")

	bodyStart := b.Mark()
	ifStart := b.Mark()
	cond := b.Binary(syntax.OpEq, b.Call(b.Name("type"), b.Name("x")), b.Str("string"))
	thenStart := b.Mark()
	x1 := b.Name("x")
	ret1 := b.Return(thenStart, x1)
	then := b.Block(thenStart, ret1)
	ifStat := b.If(ifStart, cond, then, nil)

	ret2Start := b.Mark()
	x2 := b.Name("x")
	ret2 := b.Return(ret2Start, x2)

	body := b.Block(bodyStart, ifStat, ret2)
	f := b.LocalFunc(lfStart, fname, []syntax.LocalName{xp}, false, body, sigPos, doc)

	_, _, m := analyzed(t, b.Tree(f))

	t1, err := m.InferExpr(x1)
	require.NoError(t, err)
	assert.Equal(t, "string", t1.String())

	t2, err := m.InferExpr(x2)
	require.NoError(t, err)
	assert.Equal(t, "number", t2.String())
}

// Generic inference from a variadic function parameter: the wrapper
// reproduces the wrapped function's full parameter list and returns.
func TestScenarioGenericVariadicInference(t *testing.T) {
	b := synbuild.New()

	acStart := b.Mark()
	gen := b.TagGeneric("T", "R")
	acFun := func() *syntax.DocFuncTypeNode {
		return b.DocFun([]string{"..."},
			[]syntax.DocType{b.DocVariadic(b.DocNamed("T"))},
			true,
			b.DocVariadic(b.DocNamed("R")))
	}
	pCall := b.TagParam("call", acFun())
	rCall := b.TagReturn(acFun())
	acName := b.LocalName("async_create")
	acSig := b.SigPos()
	callP := b.LocalName("call")
	acBody := b.Block(b.Mark())
	ac := b.LocalFunc(acStart, acName, []syntax.LocalName{callP}, false, acBody, acSig, gen, pCall, rCall)

	loStart := b.Mark()
	pa := b.TagParam("a", b.DocNamed("number"))
	pb := b.TagParam("b", b.DocNamed("string"))
	pc := b.TagParam("c", b.DocNamed("boolean"))
	rr := b.TagReturn(b.DocNamed("number"))
	loName := b.LocalName("locaf")
	loSig := b.SigPos()
	ap, bp, cp := b.LocalName("a"), b.LocalName("b"), b.LocalName("c")
	loBody := b.Block(b.Mark())
	locaf := b.LocalFunc(loStart, loName, []syntax.LocalName{ap, bp, cp}, false, loBody, loSig, pa, pb, pc, rr)

	hStart := b.Mark()
	hName := b.LocalName("h")
	callExpr := b.Call(b.Name("async_create"), b.Name("locaf"))
	hStat := b.Local(hStart, []syntax.LocalName{hName}, []syntax.Expression{callExpr})

	retStart := b.Mark()
	hRef := b.Name("h")
	ret := b.Return(retStart, hRef)

	_, _, m := analyzed(t, b.Tree(ac, locaf, hStat, ret))

	ht, err := m.InferExpr(hRef)
	require.NoError(t, err)
	assert.Equal(t, "fun(a: number, b: string, c: boolean): number...", m.HumanizeTypeDetailed(ht))
}

// select() on a declared vararg: the tail keeps the vararg's base
// type, and '#' on a fixed sequence counts it.
func TestScenarioSelectOnVararg(t *testing.T) {
	b := synbuild.New()

	fStart := b.Mark()
	pv := b.TagParam("...", b.DocNamed("string"))
	fName := b.LocalName("ffff")
	fSig := b.SigPos()

	bodyStart := b.Mark()
	lStart := b.Mark()
	an, bn, cn := b.LocalName("a"), b.LocalName("b"), b.LocalName("c")
	sel := b.Call(b.Name("select"), b.Int(2), b.Vararg())
	lStat := b.Local(lStart, []syntax.LocalName{an, bn, cn}, []syntax.Expression{sel})

	rStart := b.Mark()
	ra, rb, rc := b.Name("a"), b.Name("b"), b.Name("c")
	ret := b.Return(rStart, ra, rb, rc)

	body := b.Block(bodyStart, lStat, ret)
	f := b.LocalFunc(fStart, fName, nil, true, body, fSig, pv)

	_, _, m := analyzed(t, b.Tree(f))

	for _, ref := range []*syntax.NameExpr{ra, rb, rc} {
		got, err := m.InferExpr(ref)
		require.NoError(t, err)
		assert.Equal(t, "string", got.String())
	}
}

// Field-equality discrimination of a union alias: e.kind == "a" picks
// the arm whose kind member carries that constant.
func TestScenarioFieldEqualityDiscrimination(t *testing.T) {
	b := synbuild.New()

	kindA := b.DocLitStr("a")
	valA := b.DocNamed("number")
	armA := b.DocObject(
		syntax.DocObjectField{Name: "kind", Type: kindA},
		syntax.DocObjectField{Name: "val", Type: valA},
	)
	kindB := b.DocLitStr("b")
	valB := b.DocNamed("string")
	armB := b.DocObject(
		syntax.DocObjectField{Name: "kind", Type: kindB},
		syntax.DocObjectField{Name: "val", Type: valB},
	)
	aliasTag := b.TagAlias("E", nil, b.DocUnion(armA, armB))
	aliasStat := b.DocStat(aliasTag)

	gStart := b.Mark()
	pe := b.TagParam("e", b.DocNamed("E"))
	gName := b.LocalName("g")
	gSig := b.SigPos()
	ep := b.LocalName("e")

	bodyStart := b.Mark()
	ifStart := b.Mark()
	cond := b.Binary(syntax.OpEq, b.Dot(b.Name("e"), "kind"), b.Str("a"))

	thenStart := b.Mark()
	v1Start := b.Mark()
	v1 := b.LocalName("v")
	e1 := b.Dot(b.Name("e"), "val")
	v1Stat := b.Local(v1Start, []syntax.LocalName{v1}, []syntax.Expression{e1})
	then := b.Block(thenStart, v1Stat)

	elseStart := b.Mark()
	v2Start := b.Mark()
	v2 := b.LocalName("v")
	e2 := b.Dot(b.Name("e"), "val")
	v2Stat := b.Local(v2Start, []syntax.LocalName{v2}, []syntax.Expression{e2})
	elseBlk := b.Block(elseStart, v2Stat)

	ifStat := b.If(ifStart, cond, then, elseBlk)
	body := b.Block(bodyStart, ifStat)
	g := b.LocalFunc(gStart, gName, []syntax.LocalName{ep}, false, body, gSig, pe)

	_, _, m := analyzed(t, b.Tree(aliasStat, g))

	t1, err := m.InferExpr(e1)
	require.NoError(t, err)
	assert.Equal(t, "number", t1.String())

	t2, err := m.InferExpr(e2)
	require.NoError(t, err)
	assert.Equal(t, "string", t2.String())
}

// Generic alias instantiation at a call site: Arrayable<T> matched
// against Arrayable<Suite> binds T and the return becomes Suite[].
func TestScenarioAliasGenericInstantiation(t *testing.T) {
	b := synbuild.New()

	suiteTag := b.TagClass("Suite", nil, nil)
	tArg := b.DocNamed("T")
	tArr := b.DocArray(b.DocNamed("T"))
	aliasTag := b.TagAlias("Arrayable", []string{"T"}, b.DocUnion(tArg, tArr))
	decls := b.DocStat(suiteTag, aliasTag)

	taStart := b.Mark()
	gen := b.TagGeneric("T")
	pv := b.TagParam("value", b.DocNamed("Arrayable", b.DocNamed("T")))
	rt := b.TagReturn(b.DocArray(b.DocNamed("T")))
	taName := b.LocalName("toArray")
	taSig := b.SigPos()
	valueP := b.LocalName("value")
	taBody := b.Block(b.Mark())
	toArray := b.LocalFunc(taStart, taName, []syntax.LocalName{valueP}, false, taBody, taSig, gen, pv, rt)

	sStart := b.Mark()
	st := b.TagType(b.DocNamed("Arrayable", b.DocNamed("Suite")))
	sName := b.LocalName("suite")
	sStat := b.Local(sStart, []syntax.LocalName{sName}, nil, st)

	oStart := b.Mark()
	oName := b.LocalName("out")
	callE := b.Call(b.Name("toArray"), b.Name("suite"))
	oStat := b.Local(oStart, []syntax.LocalName{oName}, []syntax.Expression{callE})

	retStart := b.Mark()
	outRef := b.Name("out")
	ret := b.Return(retStart, outRef)

	_, _, m := analyzed(t, b.Tree(decls, toArray, sStat, oStat, ret))

	got, err := m.InferExpr(outRef)
	require.NoError(t, err)
	assert.Equal(t, "Suite[]", got.String())
}

// Bare-reference truthiness: the guarded branch strips nil/false, the
// fall-through keeps only the falsy remainder.
func TestTruthinessNarrowing(t *testing.T) {
	b := synbuild.New()

	fStart := b.Mark()
	doc := b.TagParam("x", b.DocUnion(b.DocNamed("number"), b.DocNamed("string"), b.DocNamed("nil")))
	fName := b.LocalName("f")
	fSig := b.SigPos()
	xp := b.LocalName("x")

	bodyStart := b.Mark()
	ifStart := b.Mark()
	cond := b.Name("x")
	thenStart := b.Mark()
	xInBranch := b.Name("x")
	retThen := b.Return(thenStart, xInBranch)
	then := b.Block(thenStart, retThen)
	ifStat := b.If(ifStart, cond, then, nil)

	botStart := b.Mark()
	xBottom := b.Name("x")
	retBot := b.Return(botStart, xBottom)

	body := b.Block(bodyStart, ifStat, retBot)
	f := b.LocalFunc(fStart, fName, []syntax.LocalName{xp}, false, body, fSig, doc)

	_, _, m := analyzed(t, b.Tree(f))

	// truthy branch strips nil
	t1, err := m.InferExpr(xInBranch)
	require.NoError(t, err)
	want := types.NewUnion([]types.Type{types.P(types.Number), types.P(types.String)})
	assert.True(t, types.StructurallyEqual(want, t1), "got %s", t1)

	// past the if (then returned), only the falsy path remains
	t2, err := m.InferExpr(xBottom)
	require.NoError(t, err)
	assert.Equal(t, "nil", t2.String())
}

// A ---@cast statement rewrites the variable's type from that point.
func TestCastNarrowing(t *testing.T) {
	b := synbuild.New()

	lStart := b.Mark()
	doc := b.TagType(b.DocUnion(b.DocNamed("string"), b.DocNamed("nil")))
	xName := b.LocalName("x")
	xStat := b.Local(lStart, []syntax.LocalName{xName}, nil, doc)

	castTag := b.TagCast("x", syntax.DocCastOp{Op: "-", Type: b.DocNamed("nil")})
	castStat := b.DocStat(castTag)

	retStart := b.Mark()
	xRef := b.Name("x")
	ret := b.Return(retStart, xRef)

	_, _, m := analyzed(t, b.Tree(xStat, castStat, ret))

	got, err := m.InferExpr(xRef)
	require.NoError(t, err)
	assert.Equal(t, "string", got.String())
}

// Module export round trip: require() yields the required file's
// returned table, member access included.
func TestRequireExportType(t *testing.T) {
	// module file: local M = { answer = 42 } ; return M
	mb := synbuild.New()
	mStart := mb.Mark()
	mName := mb.LocalName("M")
	tStart := mb.Mark()
	fv := mb.Int(42)
	tbl := mb.Table(tStart, syntax.TableField{Kind: syntax.TableFieldNamed, Name: "answer", Value: fv})
	mStat := mb.Local(mStart, []syntax.LocalName{mName}, []syntax.Expression{tbl})
	mRetStart := mb.Mark()
	mRef := mb.Name("M")
	mRet := mb.Return(mRetStart, mRef)
	modTree := mb.Tree(mStat, mRet)

	// main file: local lib = require("lib") ; return lib.answer
	b := synbuild.New()
	lStart := b.Mark()
	libName := b.LocalName("lib")
	reqCall := b.Call(b.Name("require"), b.Str("lib"))
	libStat := b.Local(lStart, []syntax.LocalName{libName}, []syntax.Expression{reqCall})
	retStart := b.Mark()
	access := b.Dot(b.Name("lib"), "answer")
	ret := b.Return(retStart, access)
	mainTree := b.Tree(libStat, ret)

	v := vfs.NewMemVFS()
	cfg := luaconfig.Default()
	v.UpdateConfig(cfg)
	db := index.NewDbIndex(v, cfg)

	libFile := v.Load("/ws/lib.lua", "", modTree)
	analyze.RegisterModule(db, libFile, "/ws", index.WorkspaceMain, false)
	mainFile := v.Load("/ws/main.lua", "", mainTree)
	analyze.RegisterModule(db, mainFile, "/ws", index.WorkspaceMain, false)

	analyze.AnalyzeAll(db, []ids.FileId{libFile, mainFile})

	// the dependency edge was recorded, so lib analyzes first
	order := db.GetBestAnalysisOrder([]ids.FileId{libFile, mainFile})
	require.Equal(t, []ids.FileId{libFile, mainFile}, order)

	m, ok := semantic.NewSemanticModel(db, mainFile)
	require.True(t, ok)
	got, err := m.InferExpr(access)
	require.NoError(t, err)
	assert.Equal(t, "42", got.String())
}

// Removing a file and reanalyzing yields the same observable answers
// (checked through the query surface).
func TestRemoveThenReanalyzeIsEquivalent(t *testing.T) {
	b := synbuild.New()
	lStart := b.Mark()
	doc := b.TagType(b.DocNamed("string"))
	xName := b.LocalName("x")
	xStat := b.Local(lStart, []syntax.LocalName{xName}, nil, doc)
	retStart := b.Mark()
	xRef := b.Name("x")
	ret := b.Return(retStart, xRef)
	tree := b.Tree(xStat, ret)

	db, file, m := analyzed(t, tree)
	before, err := m.InferExpr(xRef)
	require.NoError(t, err)

	db.Remove(file)
	require.True(t, analyze.AnalyzeFile(db, file))

	m2, ok := semantic.NewSemanticModel(db, file)
	require.True(t, ok)
	after, err := m2.InferExpr(xRef)
	require.NoError(t, err)
	assert.True(t, types.StructurallyEqual(before, after))
}
