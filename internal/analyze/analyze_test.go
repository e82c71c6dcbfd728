package analyze_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmylua-go/semacore/internal/analyze"
	"github.com/emmylua-go/semacore/internal/flow"
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/luaconfig"
	"github.com/emmylua-go/semacore/internal/synbuild"
	"github.com/emmylua-go/semacore/internal/syntax"
	"github.com/emmylua-go/semacore/internal/types"
	"github.com/emmylua-go/semacore/internal/vfs"
)

func analyzeTree(t *testing.T, tree *vfs.SyntaxTree) (*index.DbIndex, ids.FileId) {
	t.Helper()
	v := vfs.NewMemVFS()
	cfg := luaconfig.Default()
	v.UpdateConfig(cfg)
	db := index.NewDbIndex(v, cfg)
	file := v.Load("/ws/main.lua", "", tree)
	require.True(t, analyze.AnalyzeFile(db, file))
	return db, file
}

func TestLocalDeclCannotSeeItself(t *testing.T) {
	// local x = 1 ; local x = x  -- the rhs x refers to the first x
	b := synbuild.New()
	s1 := b.Mark()
	x1 := b.LocalName("x")
	one := b.Int(1)
	stat1 := b.Local(s1, []syntax.LocalName{x1}, []syntax.Expression{one})

	s2 := b.Mark()
	x2 := b.LocalName("x")
	rhs := b.Name("x")
	stat2 := b.Local(s2, []syntax.LocalName{x2}, []syntax.Expression{rhs})

	db, file := analyzeTree(t, b.Tree(stat1, stat2))
	tree, ok := db.Decl.Get(file)
	require.True(t, ok)

	d, found := tree.FindLocalDecl("x", rhs.SyntaxId().Range.Start)
	require.True(t, found)
	assert.Equal(t, x1.Pos, d.Range.Start, "rhs of a local stat must resolve to the earlier binding")
}

func TestRepeatUntilSeesBodyLocals(t *testing.T) {
	// repeat local done = true until done
	b := synbuild.New()
	repStart := b.Mark()
	ls := b.Mark()
	doneName := b.LocalName("done")
	tv := b.Bool(true)
	doneStat := b.Local(ls, []syntax.LocalName{doneName}, []syntax.Expression{tv})
	bodyBlk := b.Block(ls, doneStat)
	until := b.Name("done")
	rep := b.Repeat(repStart, bodyBlk, until)

	db, file := analyzeTree(t, b.Tree(rep))
	tree, ok := db.Decl.Get(file)
	require.True(t, ok)

	d, found := tree.FindLocalDecl("done", until.SyntaxId().Range.Start)
	require.True(t, found)
	assert.Equal(t, doneName.Pos, d.Range.Start)
}

func TestForRangeHeaderCannotSeeIterators(t *testing.T) {
	// for k in k do end  -- the header k must not resolve to the iterator
	b := synbuild.New()
	frStart := b.Mark()
	kName := b.LocalName("k")
	headerRef := b.Name("k")
	bodyBlk := b.Block(b.Mark())
	fr := b.GenericFor(frStart, []syntax.LocalName{kName}, []syntax.Expression{headerRef}, bodyBlk)

	db, file := analyzeTree(t, b.Tree(fr))
	tree, ok := db.Decl.Get(file)
	require.True(t, ok)

	_, found := tree.FindLocalDecl("k", headerRef.SyntaxId().Range.Start)
	assert.False(t, found, "iterator variables are invisible to the header expressions")
}

func TestForRangeBodySeesIterators(t *testing.T) {
	b := synbuild.New()
	frStart := b.Mark()
	kName := b.LocalName("k")
	src := b.Name("t")
	bodyStart := b.Mark()
	bodyRef := b.Name("k")
	cs := b.CallStat(b.Call(b.Name("print"), bodyRef))
	bodyBlk := b.Block(bodyStart, cs)
	fr := b.GenericFor(frStart, []syntax.LocalName{kName}, []syntax.Expression{src}, bodyBlk)

	db, file := analyzeTree(t, b.Tree(fr))
	tree, ok := db.Decl.Get(file)
	require.True(t, ok)

	d, found := tree.FindLocalDecl("k", bodyRef.SyntaxId().Range.Start)
	require.True(t, found)
	assert.Equal(t, kName.Pos, d.Range.Start)
}

func TestGlobalAssignRegisters(t *testing.T) {
	// G = 1
	b := synbuild.New()
	target := b.Name("G")
	one := b.Int(1)
	as := b.Assign([]syntax.Expression{target}, []syntax.Expression{one})

	db, _ := analyzeTree(t, b.Tree(as))
	declIds := db.Global.Get("G")
	require.Len(t, declIds, 1)

	refs := db.Reference.GlobalRefs("G")
	require.Len(t, refs, 1)
	assert.True(t, refs[0].IsWrite)
}

func TestClassDocRegistersTypeAndMembers(t *testing.T) {
	// ---@class Point @field x number @field y number attached to
	// local Point = {}
	b := synbuild.New()
	fx := b.ClassField("x", b.DocNamed("number"))
	fy := b.ClassField("y", b.DocNamed("number"))
	classTag := b.TagClass("Point", nil, nil, fx, fy)
	s := b.Mark()
	pName := b.LocalName("Point")
	tStart := b.Mark()
	tbl := b.Table(tStart)
	stat := b.Local(s, []syntax.LocalName{pName}, []syntax.Expression{tbl}, classTag)

	db, _ := analyzeTree(t, b.Tree(stat))

	id := ids.NewTypeDeclId("", "Point")
	decl, ok := db.Type.TypeDeclOf(id)
	require.True(t, ok)
	assert.Equal(t, index.TypeClass, decl.Kind)

	got, ok := db.Member.Resolved(index.TypeMemberOwner(id), types.NameKey("x"))
	require.True(t, ok)
	assert.True(t, types.StructurallyEqual(types.P(types.Number), got))
}

func TestFuncStatOnClassLocalAddsMember(t *testing.T) {
	b := synbuild.New()
	classTag := b.TagClass("M", nil, nil)
	s := b.Mark()
	mName := b.LocalName("M")
	tStart := b.Mark()
	tbl := b.Table(tStart)
	stat := b.Local(s, []syntax.LocalName{mName}, []syntax.Expression{tbl}, classTag)

	fStart := b.Mark()
	target := b.Dot(b.Name("M"), "foo")
	fSig := b.SigPos()
	fBody := b.Block(b.Mark())
	fn := b.FuncStat(fStart, target, false, nil, false, fBody, fSig)

	db, file := analyzeTree(t, b.Tree(stat, fn))

	id := ids.NewTypeDeclId("", "M")
	got, ok := db.Member.Resolved(index.TypeMemberOwner(id), types.NameKey("foo"))
	require.True(t, ok)
	sig, isSig := got.(types.Signature)
	require.True(t, isSig)
	assert.Equal(t, ids.SignatureId{File: file, Pos: fSig}, sig.Id)
}

func TestFlowTreesBuiltPerClosure(t *testing.T) {
	b := synbuild.New()
	fStart := b.Mark()
	fName := b.LocalName("f")
	fSig := b.SigPos()
	inner := b.Block(b.Mark())
	fn := b.LocalFunc(fStart, fName, nil, false, inner, fSig)

	db, file := analyzeTree(t, b.Tree(fn))

	_, ok := db.Flow.Tree(file, flow.ClosureRef{IsChunk: true})
	assert.True(t, ok)
	_, ok = db.Flow.Tree(file, flow.ClosureRef{Sig: ids.SignatureId{File: file, Pos: fSig}})
	assert.True(t, ok)
}

func TestRemovePurgesAllIndexes(t *testing.T) {
	b := synbuild.New()
	classTag := b.TagClass("Gone", nil, nil)
	ds := b.DocStat(classTag)
	s := b.Mark()
	xName := b.LocalName("x")
	one := b.Int(1)
	stat := b.Local(s, []syntax.LocalName{xName}, []syntax.Expression{one})

	db, file := analyzeTree(t, b.Tree(ds, stat))
	_, ok := db.Type.TypeDeclOf(ids.NewTypeDeclId("", "Gone"))
	require.True(t, ok)

	db.Remove(file)

	_, ok = db.Type.TypeDeclOf(ids.NewTypeDeclId("", "Gone"))
	assert.False(t, ok, "a type declared only by the removed file is purged")
	_, ok = db.Decl.Get(file)
	assert.False(t, ok)
	assert.Nil(t, db.Flow.Trees(file))
}

func TestTypeDeclSurvivesWhileOtherFileDeclares(t *testing.T) {
	mk := func() *vfs.SyntaxTree {
		b := synbuild.New()
		return b.Tree(b.DocStat(b.TagClass("Shared", nil, nil)))
	}
	v := vfs.NewMemVFS()
	cfg := luaconfig.Default()
	db := index.NewDbIndex(v, cfg)
	f1 := v.Load("/ws/a.lua", "", mk())
	f2 := v.Load("/ws/b.lua", "", mk())
	require.True(t, analyze.AnalyzeFile(db, f1))
	require.True(t, analyze.AnalyzeFile(db, f2))

	db.Remove(f1)
	_, ok := db.Type.TypeDeclOf(ids.NewTypeDeclId("", "Shared"))
	assert.True(t, ok, "the class is purged only when no file still declares it")

	db.Remove(f2)
	_, ok = db.Type.TypeDeclOf(ids.NewTypeDeclId("", "Shared"))
	assert.False(t, ok)
}

func TestSignatureFromDocs(t *testing.T) {
	b := synbuild.New()
	fStart := b.Mark()
	p1 := b.TagParam("n", b.DocNamed("integer"))
	r1 := b.TagReturn(b.DocNamed("string"))
	ov := b.TagOverload(b.DocFun([]string{"s"}, []syntax.DocType{b.DocNamed("string")}, false, b.DocNamed("string")))
	fName := b.LocalName("fmt")
	fSig := b.SigPos()
	np := b.LocalName("n")
	body := b.Block(b.Mark())
	fn := b.LocalFunc(fStart, fName, []syntax.LocalName{np}, false, body, fSig, p1, r1, ov)

	db, file := analyzeTree(t, b.Tree(fn))

	sig, ok := db.Signature.Get(ids.SignatureId{File: file, Pos: fSig})
	require.True(t, ok)
	assert.Equal(t, []string{"n"}, sig.Params)
	require.Len(t, sig.Overloads, 2)
	assert.True(t, types.StructurallyEqual(types.P(types.String), sig.ReturnType()))
	assert.Equal(t, index.ResolveFromDoc, sig.ResolveReturn)
}

func TestPropertyTagsRecorded(t *testing.T) {
	b := synbuild.New()
	fStart := b.Mark()
	dep := b.TagDeprecated("use fmt2")
	vis := b.TagVisibility("private")
	see := b.TagSee("fmt2")
	fName := b.LocalName("fmt")
	fSig := b.SigPos()
	body := b.Block(b.Mark())
	fn := b.LocalFunc(fStart, fName, nil, false, body, fSig, dep, vis, see)

	db, file := analyzeTree(t, b.Tree(fn))

	prop, ok := db.Property.Get(ids.NewSignatureDecl(ids.SignatureId{File: file, Pos: fSig}))
	require.True(t, ok)
	require.NotNil(t, prop.Deprecated)
	assert.Equal(t, "use fmt2", prop.Deprecated.Message)
	assert.Equal(t, index.VisibilityPrivate, prop.Visibility)
	assert.Equal(t, []string{"fmt2"}, prop.See)
}

func TestOperatorTagRegistersMetamethod(t *testing.T) {
	b := synbuild.New()
	classTag := b.TagClass("Vec", nil, nil)
	opFn := b.DocFun([]string{"other"}, []syntax.DocType{b.DocNamed("Vec")}, false, b.DocNamed("Vec"))
	opTag := b.TagOperator("add", opFn)
	ds := b.DocStat(classTag, opTag)

	db, _ := analyzeTree(t, b.Tree(ds))

	ops := db.Operator.Get(index.TypeMemberOwner(ids.NewTypeDeclId("", "Vec")), "__add")
	require.Len(t, ops, 1)
	assert.Equal(t, index.OperatorFuncInline, ops[0].Func.Kind)
	require.NotNil(t, ops[0].Func.Inline)
	assert.Equal(t, "Vec", ops[0].Func.Inline.Ret.String())
}

func TestSetmetatableRecordsPairing(t *testing.T) {
	b := synbuild.New()
	t1Start := b.Mark()
	tbl := b.Table(t1Start)
	t2Start := b.Mark()
	meta := b.Table(t2Start)
	call := b.Call(b.Name("setmetatable"), tbl, meta)
	cs := b.CallStat(call)

	db, file := analyzeTree(t, b.Tree(cs))

	got, ok := db.Metatable.Get(file, tbl.SyntaxId().Range)
	require.True(t, ok)
	assert.Equal(t, meta.SyntaxId().Range, got)
}

func TestSignatureCastCached(t *testing.T) {
	b := synbuild.New()
	fStart := b.Mark()
	p1 := b.TagParam("x", b.DocNamed("any"))
	cast := b.TagCast("x", syntax.DocCastOp{Op: "", Type: b.DocNamed("string")})
	fName := b.LocalName("is_str")
	fSig := b.SigPos()
	xp := b.LocalName("x")
	body := b.Block(b.Mark())
	fn := b.LocalFunc(fStart, fName, []syntax.LocalName{xp}, false, body, fSig, p1, cast)

	db, file := analyzeTree(t, b.Tree(fn))

	got, ok := db.Flow.SignatureCast(ids.SignatureId{File: file, Pos: fSig}, "x")
	require.True(t, ok)
	assert.Equal(t, "string", got.String())
}
