// Package analyze populates the code database from parsed sources:
// the declaration analyzer builds scope trees and decls, the doc
// analyzer processes ---@ annotations, the flow analyzer emits
// per-closure flow graphs, and the type analyzer fills the shallow
// type caches. Analyzers never resolve inference queries; that is the
// semantic model's job at query time.
package analyze

import (
	"github.com/emmylua-go/semacore/internal/flow"
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/syntax"
	"github.com/emmylua-go/semacore/internal/types"
)

// AnalyzeFile runs all four analyzer stages over one file, in order.
// The file must already be loaded in the db's Vfs. Reanalysis of a
// previously analyzed file must be preceded by db.Remove(file).
func AnalyzeFile(db *index.DbIndex, file ids.FileId) bool {
	tree, ok := db.Vfs.GetSyntaxTree(file)
	if !ok || tree.Root == nil {
		return false
	}
	analyzeDeclarations(db, file, tree.Root)
	analyzeDocs(db, file, tree.Root)
	analyzeFlow(db, file, tree.Root)
	analyzeTypes(db, file, tree.Root)
	return true
}

// AnalyzeAll analyzes files in the database's best analysis order
// (meta files first, then dependency-topological.
func AnalyzeAll(db *index.DbIndex, files []ids.FileId) {
	for _, f := range db.GetBestAnalysisOrder(files) {
		AnalyzeFile(db, f)
	}
}

// analyzeFlow builds the per-closure flow graphs and records the
// call-site facts a single expression sweep can see: require edges
// into the dependency index and setmetatable pairings into the
// metatable index.
func analyzeFlow(db *index.DbIndex, file ids.FileId, chunk *syntax.Chunk) {
	db.Flow.SetTrees(file, flow.Build(file, chunk))
	collectCallFacts(db, file, chunk.Body)
}

func collectCallFacts(db *index.DbIndex, file ids.FileId, blk *syntax.Block) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stats {
		walkStatExprs(s, func(e syntax.Expression) {
			call, ok := e.(*syntax.CallExpr)
			if !ok {
				return
			}
			name, ok := call.Callee.(*syntax.NameExpr)
			if !ok {
				return
			}
			switch name.Name {
			case "require":
				if len(call.Args) == 0 {
					return
				}
				lit, ok := call.Args[0].(*syntax.LiteralExpr)
				if !ok || lit.Kind != syntax.LiteralString {
					return
				}
				if info, ok := db.Module.FindModule(lit.Str); ok {
					db.Dependency.AddEdge(file, info.File)
				}
			case "setmetatable":
				if len(call.Args) != 2 {
					return
				}
				tbl, ok1 := call.Args[0].(*syntax.TableExpr)
				meta, ok2 := call.Args[1].(*syntax.TableExpr)
				if ok1 && ok2 {
					db.Metatable.Set(file, tbl.SyntaxId().Range, meta.SyntaxId().Range)
				}
			}
		})
	}
}

// walkStatExprs visits every expression under s, recursing into
// nested blocks.
func walkStatExprs(s syntax.Statement, visit func(syntax.Expression)) {
	var walkExpr func(e syntax.Expression)
	walkExpr = func(e syntax.Expression) {
		if e == nil {
			return
		}
		visit(e)
		switch ex := e.(type) {
		case *syntax.CallExpr:
			walkExpr(ex.Callee)
			for _, a := range ex.Args {
				walkExpr(a)
			}
		case *syntax.IndexExpr:
			walkExpr(ex.Prefix)
			walkExpr(ex.Key)
		case *syntax.BinaryExpr:
			walkExpr(ex.Left)
			walkExpr(ex.Right)
		case *syntax.UnaryExpr:
			walkExpr(ex.Operand)
		case *syntax.ParenExpr:
			walkExpr(ex.Inner)
		case *syntax.TableExpr:
			for _, f := range ex.Fields {
				walkExpr(f.Key)
				walkExpr(f.Value)
			}
		case *syntax.ClosureExpr:
			walkBlockExprs(ex.Body, visit)
		}
	}
	switch st := s.(type) {
	case *syntax.LocalStat:
		for _, e := range st.Exprs {
			walkExpr(e)
		}
	case *syntax.AssignStat:
		for _, e := range st.Exprs {
			walkExpr(e)
		}
		for _, t := range st.Targets {
			walkExpr(t)
		}
	case *syntax.CallStat:
		walkExpr(st.Call)
	case *syntax.ReturnStat:
		for _, e := range st.Exprs {
			walkExpr(e)
		}
	case *syntax.IfStat:
		walkExpr(st.Cond)
		walkBlockExprs(st.Then, visit)
		for _, ei := range st.ElseIfs {
			walkExpr(ei.Cond)
			walkBlockExprs(ei.Body, visit)
		}
		walkBlockExprs(st.Else, visit)
	case *syntax.WhileStat:
		walkExpr(st.Cond)
		walkBlockExprs(st.Body, visit)
	case *syntax.RepeatStat:
		walkBlockExprs(st.Body, visit)
		walkExpr(st.Until)
	case *syntax.NumericForStat:
		walkExpr(st.Start)
		walkExpr(st.Stop)
		walkExpr(st.Step)
		walkBlockExprs(st.Body, visit)
	case *syntax.GenericForStat:
		for _, e := range st.Exprs {
			walkExpr(e)
		}
		walkBlockExprs(st.Body, visit)
	case *syntax.FuncStat:
		walkBlockExprs(st.Body, visit)
	case *syntax.LocalFuncStat:
		walkBlockExprs(st.Body, visit)
	case *syntax.DoStat:
		walkBlockExprs(st.Body, visit)
	}
}

func walkBlockExprs(blk *syntax.Block, visit func(syntax.Expression)) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stats {
		walkStatExprs(s, visit)
	}
}

// analyzeTypes fills shallow type caches: literal-bound locals get
// their constant types so later queries and removal/reanalysis
// equality checks see identical databases.
func analyzeTypes(db *index.DbIndex, file ids.FileId, chunk *syntax.Chunk) {
	tree, ok := db.Flow.Tree(file, flow.ClosureRef{IsChunk: true})
	if !ok {
		return
	}
	declTree, ok := db.Decl.Get(file)
	if !ok {
		return
	}
	for declId, expr := range tree.DeclBindExprRef {
		if _, cached := db.Type.Cache(index.DeclOwner(declId)); cached {
			continue
		}
		if _, isMulti := tree.DeclBindMultiIndex[declId]; isMulti {
			continue
		}
		lit, ok := expr.(*syntax.LiteralExpr)
		if !ok {
			continue
		}
		if _, exists := declTree.Decls[declId]; !exists {
			continue
		}
		db.Type.SetCache(index.DeclOwner(declId), literalConstType(lit), index.CacheInferred)
	}
}

func literalConstType(lit *syntax.LiteralExpr) types.Type {
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

// RegisterModule records file in the module index under the module
// path derived from its Vfs path, returning the
// ModuleInfo. workspaceRoot strips the leading path segment; ws
// assigns the workspace.
func RegisterModule(db *index.DbIndex, file ids.FileId, workspaceRoot string, ws index.WorkspaceId, isMeta bool) *index.ModuleInfo {
	path, _ := db.Vfs.Path(file)
	full := index.ExtractModulePath(db.Config, workspaceRoot, path)
	name := full
	if i := lastDot(full); i >= 0 {
		name = full[i+1:]
	}
	info := &index.ModuleInfo{
		File:           file,
		FullModuleName: full,
		Name:           name,
		Visible:        true,
		WorkspaceId:    ws,
		IsMeta:         isMeta,
	}
	db.Module.Insert(info)
	db.MarkMeta(file, isMeta)
	return info
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
