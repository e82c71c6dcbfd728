package narrow

import (
	"github.com/emmylua-go/semacore/internal/flow"
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/syntax"
	"github.com/emmylua-go/semacore/internal/types"
)

// Provider is the callback surface the narrower needs from its caller
// (the semantic model): base types, expression inference, var-ref
// resolution, doc-type conversion, and call-site resolution. Keeping
// these behind an interface keeps this package free of the inference
// loop while still letting the walk re-enter it.
type Provider interface {
	// BaseVarType is the unnarrowed type of v: its annotation, its
	// declaration-site inference, or its global/member type.
	BaseVarType(v VarRefId) (types.Type, error)
	// DocDeclType is v's explicitly annotated type, when one exists.
	DocDeclType(v VarRefId) (types.Type, bool)
	InferExpr(e syntax.Expression) (types.Type, error)
	// ExprVarRef resolves an expression to the variable it references,
	// if it is a plain name, self, or fixed index chain.
	ExprVarRef(e syntax.Expression) (VarRefId, bool)
	ConvertDocType(d syntax.DocType) types.Type
	// CalleeSignature resolves a call's callee to its signature.
	CalleeSignature(call *syntax.CallExpr) (*index.Signature, bool)
	// CallReturn is the call's resolved return type, with generics
	// instantiated and computed forms evaluated.
	CallReturn(call *syntax.CallExpr) (types.Type, bool)
	// IsTypeBuiltin reports whether callee is the global `type`
	// function rather than a shadowing local.
	IsTypeBuiltin(callee syntax.Expression) bool
	// ResolveToUnion unfolds aliases so union-arm filtering rules see
	// the arms.
	ResolveToUnion(t types.Type) types.Type
	// MemberTypeOf resolves a member on a prefix type.
	MemberTypeOf(t types.Type, key types.MemberKey) (types.Type, bool)
}

// Engine walks one closure's flow tree backward to answer "what is the
// type of this variable at this flow node". One Engine is
// scoped to one query session; its cache is the (VarRefId, FlowId)
// memo that bounds the walk.
type Engine struct {
	Tree  *flow.FlowTree
	File  ids.FileId
	Decls TypeDeclLookup
	P     Provider

	cache    map[cacheEntry]types.Type
	active   map[cacheEntry]bool
	names    map[ids.DeclId]string
	sigCasts func(ids.SignatureId, int) (types.Type, bool)
}

type cacheEntry struct {
	v interface{}
	f ids.FlowId
}

func NewEngine(tree *flow.FlowTree, file ids.FileId, decls TypeDeclLookup, p Provider) *Engine {
	return &Engine{
		Tree:   tree,
		File:   file,
		Decls:  decls,
		P:      p,
		cache:  map[cacheEntry]types.Type{},
		active: map[cacheEntry]bool{},
	}
}

// TypeAt computes the refined type of v at flow node f, memoized per
// (v, f). A cycle through a loop back-edge resolves to the base type.
func (e *Engine) TypeAt(v VarRefId, f ids.FlowId) (types.Type, error) {
	k := cacheEntry{v: v.cacheKey(), f: f}
	if t, ok := e.cache[k]; ok {
		return t, nil
	}
	if e.active[k] {
		return e.P.BaseVarType(v)
	}
	e.active[k] = true
	t, err := e.compute(v, f)
	delete(e.active, k)
	if err == nil {
		e.cache[k] = t
	}
	return t, err
}

func (e *Engine) compute(v VarRefId, f ids.FlowId) (types.Type, error) {
	for {
		n := e.Tree.Node(f)
		switch n.Kind {
		case flow.Start, flow.Unreachable:
			return e.P.BaseVarType(v)

		case flow.LoopLabel:
			ants := e.Tree.Antecedents(n)
			if len(ants) == 0 {
				return e.P.BaseVarType(v)
			}
			f = ants[0]

		case flow.Break, flow.Return:
			next, ok := e.follow(n)
			if !ok {
				return e.P.BaseVarType(v)
			}
			f = next

		case flow.BranchLabel, flow.NamedLabel:
			return e.mergeAntecedents(v, n)

		case flow.DeclPosition:
			if n.DeclAt <= v.Position() {
				return e.P.BaseVarType(v)
			}
			next, ok := e.follow(n)
			if !ok {
				return e.P.BaseVarType(v)
			}
			f = next

		case flow.Assignment:
			if t, handled, err := e.assignmentType(v, n); handled {
				return t, err
			}
			next, ok := e.follow(n)
			if !ok {
				return e.P.BaseVarType(v)
			}
			f = next

		case flow.ImplFunc:
			if t, handled := e.implFuncType(v, n); handled {
				return t, nil
			}
			next, ok := e.follow(n)
			if !ok {
				return e.P.BaseVarType(v)
			}
			f = next

		case flow.TrueCondition, flow.FalseCondition:
			cond, _ := n.Ptr.(syntax.Expression)
			ant, ok := e.follow(n)
			if !ok {
				return e.P.BaseVarType(v)
			}
			if cond != nil {
				truthy := n.Kind == flow.TrueCondition
				if t, handled, err := e.conditionApply(v, cond, truthy, ant); handled {
					return t, err
				}
				// a condition refining the chain's owner re-resolves the
				// member on the refined owner type
				if t, handled, err := e.ownerRefinedMember(v, cond, truthy, ant); handled {
					return t, err
				}
			}
			f = ant

		case flow.TagCast:
			cast, _ := n.Ptr.(*syntax.DocTagCast)
			ant, ok := e.follow(n)
			if !ok {
				return e.P.BaseVarType(v)
			}
			if cast != nil && e.castTargets(v, cast) {
				base, err := e.TypeAt(v, ant)
				if err != nil {
					return nil, err
				}
				return e.applyCastOps(base, cast.Ops, false), nil
			}
			f = ant

		default: // ForIStat and anything unmodeled falls through
			next, ok := e.follow(n)
			if !ok {
				return e.P.BaseVarType(v)
			}
			f = next
		}
	}
}

func (e *Engine) follow(n flow.FlowNode) (ids.FlowId, bool) {
	ants := e.Tree.Antecedents(n)
	if len(ants) == 0 {
		return 0, false
	}
	return ants[0], true
}

// mergeAntecedents unions the type over every incoming edge of a
// branch merge.
func (e *Engine) mergeAntecedents(v VarRefId, n flow.FlowNode) (types.Type, error) {
	ants := e.Tree.Antecedents(n)
	if len(ants) == 0 {
		return e.P.BaseVarType(v)
	}
	var arms []types.Type
	var firstErr error
	for _, a := range ants {
		t, err := e.TypeAt(v, a)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		arms = append(arms, t)
	}
	if len(arms) == 0 {
		return nil, firstErr
	}
	return types.NewUnion(arms), nil
}

// assignmentType handles an Assignment node: when one of the
// statement's (lhs, rhs) pairs writes v, the result is the annotated
// type if one exists, else the antecedent type narrowed down to the
// rhs type.
func (e *Engine) assignmentType(v VarRefId, n flow.FlowNode) (types.Type, bool, error) {
	switch st := n.Ptr.(type) {
	case *syntax.LocalStat:
		for i, nm := range st.Names {
			decl := ids.DeclId{File: e.File, Pos: nm.Pos}
			if !(v.Kind == VarRefPlain && v.Decl == decl) {
				continue
			}
			if doc, ok := e.P.DocDeclType(v); ok {
				return doc, true, nil
			}
			rhs, err := e.localRhsType(st, i)
			if err != nil {
				return nil, true, err
			}
			return e.narrowAssigned(v, n, rhs)
		}
	case *syntax.AssignStat:
		for i, target := range st.Targets {
			ref, ok := e.P.ExprVarRef(target)
			if !ok || !ref.Equal(v) {
				continue
			}
			if doc, ok := e.P.DocDeclType(v); ok {
				return doc, true, nil
			}
			rhs, err := e.assignRhsType(st, i)
			if err != nil {
				return nil, true, err
			}
			return e.narrowAssigned(v, n, rhs)
		}
	}
	return nil, false, nil
}

func (e *Engine) narrowAssigned(v VarRefId, n flow.FlowNode, rhs types.Type) (types.Type, bool, error) {
	ant, ok := e.follow(n)
	if !ok {
		return rhs, true, nil
	}
	prev, err := e.TypeAt(v, ant)
	if err != nil {
		// no prior type: the assignment alone decides
		return rhs, true, nil
	}
	if narrowed, ok := NarrowDownType(prev, rhs, e.Decls); ok {
		return narrowed, true, nil
	}
	return rhs, true, nil
}

// localRhsType evaluates the i-th binding's value: its paired
// expression, or the i-th value of a trailing multi-return.
func (e *Engine) localRhsType(st *syntax.LocalStat, i int) (types.Type, error) {
	if i < len(st.Exprs) {
		t, err := e.P.InferExpr(st.Exprs[i])
		if err != nil {
			return nil, err
		}
		return FirstValue(t), nil
	}
	if len(st.Exprs) == 0 {
		return types.P(types.Nil), nil
	}
	last := st.Exprs[len(st.Exprs)-1]
	t, err := e.P.InferExpr(last)
	if err != nil {
		return nil, err
	}
	return NthValue(t, i-(len(st.Exprs)-1)), nil
}

func (e *Engine) assignRhsType(st *syntax.AssignStat, i int) (types.Type, error) {
	if i < len(st.Exprs) {
		t, err := e.P.InferExpr(st.Exprs[i])
		if err != nil {
			return nil, err
		}
		return FirstValue(t), nil
	}
	if len(st.Exprs) == 0 {
		return types.P(types.Nil), nil
	}
	last := st.Exprs[len(st.Exprs)-1]
	t, err := e.P.InferExpr(last)
	if err != nil {
		return nil, err
	}
	return NthValue(t, i-(len(st.Exprs)-1)), nil
}

// implFuncType handles `function f() ... end` style statements that
// (re)bind v to the defined closure.
func (e *Engine) implFuncType(v VarRefId, n flow.FlowNode) (types.Type, bool) {
	switch st := n.Ptr.(type) {
	case *syntax.LocalFuncStat:
		decl := ids.DeclId{File: e.File, Pos: st.Name.Pos}
		if v.Kind == VarRefPlain && v.Decl == decl {
			return types.Signature{Id: ids.SignatureId{File: e.File, Pos: st.SigPos}}, true
		}
	case *syntax.FuncStat:
		if ref, ok := e.P.ExprVarRef(st.Target); ok && ref.Equal(v) {
			return types.Signature{Id: ids.SignatureId{File: e.File, Pos: st.SigPos}}, true
		}
	}
	return nil, false
}

// castTargets reports whether the cast's variable text addresses v.
func (e *Engine) castTargets(v VarRefId, cast *syntax.DocTagCast) bool {
	switch v.Kind {
	case VarRefPlain:
		// the cast names the variable by source text; decl name lookup
		// happens through the provider's var-ref resolution, so here a
		// name comparison against the decl is enough
		return e.varRefName(v) == cast.Var
	case VarRefSelf:
		return cast.Var == "self"
	case VarRefIndex:
		return e.varRefName(v)+renderPath(v.Path) == cast.Var
	}
	return false
}

func (e *Engine) varRefName(v VarRefId) string {
	if v.Kind == VarRefPlain {
		if name, ok := e.declName(v.Decl); ok {
			return name
		}
	}
	if v.Kind == VarRefIndex && v.Owner.Decl != nil {
		if name, ok := e.declName(*v.Owner.Decl); ok {
			return name
		}
	}
	return ""
}

func (e *Engine) declName(d ids.DeclId) (string, bool) {
	if e.names == nil {
		return "", false
	}
	n, ok := e.names[d]
	return n, ok
}

// SetDeclNames supplies the decl-position to name mapping used for
// ---@cast variable matching.
func (e *Engine) SetDeclNames(names map[ids.DeclId]string) { e.names = names }

func renderPath(path []PathSegment) string {
	s := ""
	for _, seg := range path {
		if seg.IsInteger {
			s += "[" + itoa(seg.Integer) + "]"
		} else {
			s += "." + seg.Name
		}
	}
	return s
}

// ownerRefinedMember handles an IndexRef variable whose condition
// refines the owning variable instead: re-resolve the access path
// against the refined owner type.
func (e *Engine) ownerRefinedMember(v VarRefId, cond syntax.Expression, truthy bool, ant ids.FlowId) (types.Type, bool, error) {
	if v.Kind != VarRefIndex {
		return nil, false, nil
	}
	var ownerRef VarRefId
	switch {
	case v.Owner.Decl != nil:
		ownerRef = VarRef(*v.Owner.Decl)
	case v.Owner.Member != nil:
		ownerRef = SelfRef(v.Owner)
	default:
		return nil, false, nil
	}
	ot, handled, err := e.conditionApply(ownerRef, cond, truthy, ant)
	if !handled {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	cur := ot
	for _, seg := range v.Path {
		var key types.MemberKey
		if seg.IsInteger {
			key = types.IntegerKey(seg.Integer)
		} else {
			key = types.NameKey(seg.Name)
		}
		next, ok := e.P.MemberTypeOf(cur, key)
		if !ok {
			return nil, false, nil
		}
		cur = next
	}
	return cur, true, nil
}

// FirstValue collapses a multi-value type to its first value.
func FirstValue(t types.Type) types.Type {
	switch v := t.(type) {
	case types.Variadic:
		if v.Variadic.IsMulti {
			if len(v.Variadic.Multi) == 0 {
				return types.P(types.Nil)
			}
			return v.Variadic.Multi[0]
		}
		return v.Variadic.Base
	case types.Tuple:
		if len(v.Items) == 0 {
			return types.P(types.Nil)
		}
		return v.Items[0]
	}
	return t
}

// NthValue picks the n-th (0-based) value of a multi-value type; a
// homogeneous variadic yields its base at every position, and a
// single value pads with nil past position zero.
func NthValue(t types.Type, n int) types.Type {
	switch v := t.(type) {
	case types.Variadic:
		if v.Variadic.IsMulti {
			if n < len(v.Variadic.Multi) {
				return v.Variadic.Multi[n]
			}
			return types.P(types.Nil)
		}
		return v.Variadic.Base
	case types.Tuple:
		if n < len(v.Items) {
			return v.Items[n]
		}
		return types.P(types.Nil)
	}
	if n == 0 {
		return t
	}
	return types.P(types.Nil)
}
