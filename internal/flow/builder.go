package flow

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/syntax"
)

// ClosureRef identifies one closure/chunk within a file: either the
// top-level chunk (IsChunk true) or the closure starting at Sig.
type ClosureRef struct {
	IsChunk bool
	Sig     ids.SignatureId
}

// Build constructs a FlowTree for every closure (and the top-level
// chunk) found in file, pre-order.
func Build(file ids.FileId, chunk *syntax.Chunk) map[ClosureRef]*FlowTree {
	out := map[ClosureRef]*FlowTree{}
	b := &builder{file: file, out: out}
	b.buildClosure(ClosureRef{IsChunk: true}, chunk.Body, nil, false)
	return out
}

type loopCtx struct {
	loopLabel  ids.FlowId
	breakExits *[]ids.FlowId
}

type pendingGoto struct {
	label string
	from  ids.FlowId
}

type builder struct {
	file ids.FileId
	out  map[ClosureRef]*FlowTree

	tree    *FlowTree
	loops   []loopCtx
	labels  map[string]ids.FlowId
	pending []pendingGoto
}

// buildClosure builds one closure's flow graph and recurses into any
// nested closures it contains. isMethod does not affect the flow
// shape; an ImplFunc node is recorded at entry when named is given.
func (b *builder) buildClosure(ref ClosureRef, body *syntax.Block, named syntax.Node, isMethod bool) {
	parentTree, parentLoops, parentLabels, parentPending := b.tree, b.loops, b.labels, b.pending
	b.tree = newTree()
	b.loops = nil
	b.labels = map[string]ids.FlowId{}
	b.pending = nil

	cur := ids.FlowId(0)
	if named != nil {
		cur = b.tree.single(ImplFunc, cur, named)
	}
	cur = b.buildBlock(body, cur)
	b.resolvePending()

	b.out[ref] = b.tree
	b.tree, b.loops, b.labels, b.pending = parentTree, parentLoops, parentLabels, parentPending
}

func (b *builder) resolvePending() {
	for _, p := range b.pending {
		if target, ok := b.labels[p.label]; ok {
			n := b.tree.Node(target)
			if n.Antecedent.Kind == AntecedentMultiple {
				b.tree.MultipleAntecedents[n.Antecedent.Multi] = append(b.tree.MultipleAntecedents[n.Antecedent.Multi], p.from)
			}
		}
		// unresolved goto (no matching label reachable): dropped, the
		// flow graph simply treats the goto as a dead end, matching the
		// narrower's tolerance for malformed control flow.
	}
}

// buildBlock threads cur through every statement in blk, returning the
// flow id live at the block's end (Unreachable-tainted if terminated).
func (b *builder) buildBlock(blk *syntax.Block, cur ids.FlowId) ids.FlowId {
	if blk == nil {
		return cur
	}
	for _, s := range blk.Stats {
		cur = b.buildStat(s, cur)
	}
	return cur
}

func (b *builder) buildStat(s syntax.Statement, cur ids.FlowId) ids.FlowId {
	switch st := s.(type) {
	case *syntax.LocalStat:
		entryCur := cur
		for _, e := range st.Exprs {
			b.bindExpr(e, entryCur)
		}
		cur = b.tree.single(Assignment, cur, st)
		for i, nm := range st.Names {
			decl := ids.DeclId{File: b.file, Pos: nm.Pos}
			if i < len(st.Exprs) {
				b.tree.DeclBindExprRef[decl] = st.Exprs[i]
			} else if len(st.Exprs) > 0 {
				// trailing names destructure the last expression's
				// multi-return; record which value position each takes
				b.tree.DeclBindExprRef[decl] = st.Exprs[len(st.Exprs)-1]
				b.tree.DeclBindMultiIndex[decl] = i - (len(st.Exprs) - 1)
			}
			cur = b.tree.emit(FlowNode{Kind: DeclPosition, Antecedent: Antecedent{Kind: AntecedentSingle, Single: cur}, DeclAt: nm.Pos})
		}
		return cur

	case *syntax.AssignStat:
		entryCur := cur
		for _, e := range st.Exprs {
			b.bindExpr(e, entryCur)
		}
		for _, t := range st.Targets {
			b.bindExpr(t, entryCur)
		}
		cur = b.tree.single(Assignment, cur, st)
		return cur

	case *syntax.DocStat:
		for _, tag := range st.Tags {
			if cast, ok := tag.(*syntax.DocTagCast); ok {
				cur = b.tree.single(TagCast, cur, cast)
			}
		}
		return cur

	case *syntax.IfStat:
		return b.buildIf(st, cur)

	case *syntax.WhileStat:
		return b.buildWhile(st, cur)

	case *syntax.RepeatStat:
		return b.buildRepeat(st, cur)

	case *syntax.NumericForStat:
		return b.buildNumericFor(st, cur)

	case *syntax.GenericForStat:
		return b.buildGenericFor(st, cur)

	case *syntax.FuncStat:
		cur = b.tree.single(ImplFunc, cur, st)
		b.buildClosure(ClosureRef{Sig: ids.SignatureId{File: b.file, Pos: st.SigPos}}, st.Body, nil, st.IsMethod)
		return cur

	case *syntax.LocalFuncStat:
		cur = b.tree.emit(FlowNode{Kind: DeclPosition, Antecedent: Antecedent{Kind: AntecedentSingle, Single: cur}, DeclAt: st.Name.Pos})
		cur = b.tree.single(ImplFunc, cur, st)
		b.buildClosure(ClosureRef{Sig: ids.SignatureId{File: b.file, Pos: st.SigPos}}, st.Body, nil, false)
		return cur

	case *syntax.ReturnStat:
		for _, e := range st.Exprs {
			b.bindExpr(e, cur)
		}
		rid := b.tree.single(Return, cur, st)
		return b.tree.emit(FlowNode{Kind: Unreachable, Antecedent: Antecedent{Kind: AntecedentSingle, Single: rid}})

	case *syntax.BreakStat:
		bid := b.tree.single(Break, cur, st)
		if n := len(b.loops); n > 0 {
			*b.loops[n-1].breakExits = append(*b.loops[n-1].breakExits, bid)
		}
		return b.tree.emit(FlowNode{Kind: Unreachable, Antecedent: Antecedent{Kind: AntecedentSingle, Single: bid}})

	case *syntax.GotoStat:
		gid := b.tree.single(Unreachable, cur, st)
		if target, ok := b.labels[st.Label]; ok {
			n := b.tree.Node(target)
			if n.Antecedent.Kind == AntecedentMultiple {
				b.tree.MultipleAntecedents[n.Antecedent.Multi] = append(b.tree.MultipleAntecedents[n.Antecedent.Multi], cur)
			}
		} else {
			b.pending = append(b.pending, pendingGoto{label: st.Label, from: cur})
		}
		return gid

	case *syntax.LabelStat:
		lbl := b.tree.merge(NamedLabel, []ids.FlowId{cur}, st.Name)
		b.labels[st.Name] = lbl
		return lbl

	case *syntax.CallStat:
		b.bindExpr(st.Call, cur)
		return b.tree.single(Assignment, cur, st)

	case *syntax.DoStat:
		return b.buildBlock(st.Body, cur)

	default:
		return cur
	}
}

// bindExpr walks e, binding every expression node to the flow state
// live at its evaluation and
// building any nested ClosureExpr (e.g. `f(function() ... end)`) as its
// own independent closure; only the closure's definition site matters
// to the parent's flow.
func (b *builder) bindExpr(e syntax.Expression, cur ids.FlowId) {
	if e == nil {
		return
	}
	b.tree.bindAt(e, cur)
	switch ex := e.(type) {
	case *syntax.ClosureExpr:
		b.buildClosure(ClosureRef{Sig: ids.SignatureId{File: b.file, Pos: ex.SigPos}}, ex.Body, nil, false)
	case *syntax.CallExpr:
		b.bindExpr(ex.Callee, cur)
		for _, a := range ex.Args {
			b.bindExpr(a, cur)
		}
	case *syntax.IndexExpr:
		b.bindExpr(ex.Prefix, cur)
		if ex.Key != nil {
			b.bindExpr(ex.Key, cur)
		}
	case *syntax.BinaryExpr:
		b.bindExpr(ex.Left, cur)
		b.bindExpr(ex.Right, cur)
	case *syntax.UnaryExpr:
		b.bindExpr(ex.Operand, cur)
	case *syntax.ParenExpr:
		b.bindExpr(ex.Inner, cur)
	case *syntax.TableExpr:
		for _, f := range ex.Fields {
			if f.Key != nil {
				b.bindExpr(f.Key, cur)
			}
			if f.Value != nil {
				b.bindExpr(f.Value, cur)
			}
		}
	}
}

func (b *builder) buildIf(st *syntax.IfStat, cur ids.FlowId) ids.FlowId {
	b.bindExpr(st.Cond, cur)
	trueId := b.tree.single(TrueCondition, cur, st.Cond)
	falseId := b.tree.single(FalseCondition, cur, st.Cond)

	var exits []ids.FlowId
	thenExit := b.buildBlock(st.Then, trueId)
	if !b.isUnreachable(thenExit) {
		exits = append(exits, thenExit)
	}

	branchCur := falseId
	for _, ei := range st.ElseIfs {
		b.bindExpr(ei.Cond, branchCur)
		t2 := b.tree.single(TrueCondition, branchCur, ei.Cond)
		f2 := b.tree.single(FalseCondition, branchCur, ei.Cond)
		exit := b.buildBlock(ei.Body, t2)
		if !b.isUnreachable(exit) {
			exits = append(exits, exit)
		}
		branchCur = f2
	}

	if st.Else != nil {
		elseExit := b.buildBlock(st.Else, branchCur)
		if !b.isUnreachable(elseExit) {
			exits = append(exits, elseExit)
		}
	} else {
		exits = append(exits, branchCur)
	}

	if len(exits) == 0 {
		return b.tree.emit(FlowNode{Kind: Unreachable, Antecedent: Antecedent{Kind: AntecedentSingle, Single: cur}})
	}
	if len(exits) == 1 {
		return exits[0]
	}
	return b.tree.merge(BranchLabel, exits, "")
}

func (b *builder) isUnreachable(id ids.FlowId) bool {
	return b.tree.Node(id).Kind == Unreachable
}

func (b *builder) buildWhile(st *syntax.WhileStat, cur ids.FlowId) ids.FlowId {
	var breakExits []ids.FlowId
	loop := b.tree.merge(LoopLabel, []ids.FlowId{cur}, "")
	b.bindExpr(st.Cond, loop)
	trueId := b.tree.single(TrueCondition, loop, st.Cond)
	falseId := b.tree.single(FalseCondition, loop, st.Cond)

	b.loops = append(b.loops, loopCtx{loopLabel: loop, breakExits: &breakExits})
	bodyExit := b.buildBlock(st.Body, trueId)
	b.loops = b.loops[:len(b.loops)-1]

	if !b.isUnreachable(bodyExit) {
		n := b.tree.Node(loop)
		b.tree.MultipleAntecedents[n.Antecedent.Multi] = append(b.tree.MultipleAntecedents[n.Antecedent.Multi], bodyExit)
	}

	exits := append([]ids.FlowId{falseId}, breakExits...)
	if len(exits) == 1 {
		return exits[0]
	}
	return b.tree.merge(BranchLabel, exits, "")
}

func (b *builder) buildRepeat(st *syntax.RepeatStat, cur ids.FlowId) ids.FlowId {
	var breakExits []ids.FlowId
	loop := b.tree.merge(LoopLabel, []ids.FlowId{cur}, "")

	b.loops = append(b.loops, loopCtx{loopLabel: loop, breakExits: &breakExits})
	bodyExit := b.buildBlock(st.Body, loop)
	b.loops = b.loops[:len(b.loops)-1]

	var falseId ids.FlowId
	if !b.isUnreachable(bodyExit) {
		b.bindExpr(st.Until, bodyExit)
		trueId := b.tree.single(TrueCondition, bodyExit, st.Until)
		falseId = b.tree.single(FalseCondition, bodyExit, st.Until)
		n := b.tree.Node(loop)
		b.tree.MultipleAntecedents[n.Antecedent.Multi] = append(b.tree.MultipleAntecedents[n.Antecedent.Multi], trueId)
		exits := append([]ids.FlowId{falseId}, breakExits...)
		if len(exits) == 1 {
			return exits[0]
		}
		return b.tree.merge(BranchLabel, exits, "")
	}
	if len(breakExits) == 0 {
		return bodyExit
	}
	if len(breakExits) == 1 {
		return breakExits[0]
	}
	return b.tree.merge(BranchLabel, breakExits, "")
}

func (b *builder) buildNumericFor(st *syntax.NumericForStat, cur ids.FlowId) ids.FlowId {
	b.bindExpr(st.Start, cur)
	b.bindExpr(st.Stop, cur)
	if st.Step != nil {
		b.bindExpr(st.Step, cur)
	}
	var breakExits []ids.FlowId
	loop := b.tree.merge(LoopLabel, []ids.FlowId{cur}, "")
	iter := b.tree.single(ForIStat, loop, st)
	iter = b.tree.emit(FlowNode{Kind: DeclPosition, Antecedent: Antecedent{Kind: AntecedentSingle, Single: iter}, DeclAt: st.Var.Pos})

	b.loops = append(b.loops, loopCtx{loopLabel: loop, breakExits: &breakExits})
	bodyExit := b.buildBlock(st.Body, iter)
	b.loops = b.loops[:len(b.loops)-1]

	if !b.isUnreachable(bodyExit) {
		n := b.tree.Node(loop)
		b.tree.MultipleAntecedents[n.Antecedent.Multi] = append(b.tree.MultipleAntecedents[n.Antecedent.Multi], bodyExit)
	}
	exits := append([]ids.FlowId{loop}, breakExits...)
	return b.tree.merge(BranchLabel, exits, "")
}

func (b *builder) buildGenericFor(st *syntax.GenericForStat, cur ids.FlowId) ids.FlowId {
	for _, e := range st.Exprs {
		b.bindExpr(e, cur)
	}
	var breakExits []ids.FlowId
	loop := b.tree.merge(LoopLabel, []ids.FlowId{cur}, "")
	iter := loop
	for _, nm := range st.Names {
		iter = b.tree.emit(FlowNode{Kind: DeclPosition, Antecedent: Antecedent{Kind: AntecedentSingle, Single: iter}, DeclAt: nm.Pos})
	}

	b.loops = append(b.loops, loopCtx{loopLabel: loop, breakExits: &breakExits})
	bodyExit := b.buildBlock(st.Body, iter)
	b.loops = b.loops[:len(b.loops)-1]

	if !b.isUnreachable(bodyExit) {
		n := b.tree.Node(loop)
		b.tree.MultipleAntecedents[n.Antecedent.Multi] = append(b.tree.MultipleAntecedents[n.Antecedent.Multi], bodyExit)
	}
	exits := append([]ids.FlowId{loop}, breakExits...)
	return b.tree.merge(BranchLabel, exits, "")
}
