package generic

import (
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/types"
)

// evalConditional evaluates `L extends R and Tb or Fb` at
// instantiation time. When L or R still carry live
// templates the conditional is left unevaluated, rebuilt with its
// partially-substituted children.
func (e *Engine) evalConditional(c types.Conditional, sub *Substitutor) types.Type {
	cond, ok := c.Condition.(types.Call)
	if !ok || cond.Kind != types.CallExtends || len(cond.Operands) != 2 {
		return e.rebuildConditional(c, sub)
	}

	left := e.Instantiate(cond.Operands[0], sub)
	if c.HasNew {
		left = e.ctorFuncType(left)
	}
	right := e.Instantiate(cond.Operands[1], sub)

	if containsLiveTpl(left) || types.ContainsTpl(right) {
		return e.rebuildConditional(c, sub)
	}

	if types.ContainsConditionalInfer(right) {
		bindings := map[string]types.Type{}
		if collectInfer(right, left, bindings) {
			branch := sub.child()
			for name, t := range bindings {
				branch.BindName(name, t)
			}
			return e.Instantiate(c.True, branch)
		}
		return e.Instantiate(c.False, sub)
	}

	if e.CheckTypeCompact(left, right) {
		return e.Instantiate(c.True, sub)
	}
	return e.Instantiate(c.False, sub)
}

func (e *Engine) rebuildConditional(c types.Conditional, sub *Substitutor) types.Type {
	return types.Conditional{
		Condition:   e.Instantiate(c.Condition, sub),
		True:        e.Instantiate(c.True, sub),
		False:       e.Instantiate(c.False, sub),
		InferParams: c.InferParams,
		HasNew:      c.HasNew,
	}
}

// ctorFuncType replaces a class type with its default constructor's
// function type, for `new`-flagged conditionals.
func (e *Engine) ctorFuncType(t types.Type) types.Type {
	var declId *index.TypeDecl
	switch v := t.(type) {
	case types.Ref:
		declId, _ = e.typeDeclOf(v.Decl)
	case types.Def:
		declId, _ = e.typeDeclOf(v.Decl)
	}
	if declId == nil || declId.Kind != index.TypeClass {
		return t
	}
	ops := e.Db.Operator.Get(index.TypeMemberOwner(declId.Id), "__call")
	if len(ops) > 0 {
		op := ops[0]
		switch op.Func.Kind {
		case index.OperatorFuncInline:
			return types.DocFunction{Func: op.Func.Inline}
		case index.OperatorFuncSignature:
			return types.Signature{Id: op.Func.Signature}
		}
	}
	// no explicit constructor: a default one takes nothing and returns
	// the class itself
	return types.DocFunction{Func: &types.FunctionType{Ret: types.Ref{Decl: declId.Id}}}
}

// collectInfer matches target structurally against pattern, binding
// every ConditionalInfer(name) occurrence to the corresponding
// sub-type of target. Repeated occurrences of one name must unify.
func collectInfer(pattern, target types.Type, bindings map[string]types.Type) bool {
	switch p := pattern.(type) {
	case types.ConditionalInfer:
		if prev, ok := bindings[p.Name]; ok {
			return types.StructurallyEqual(prev, target)
		}
		bindings[p.Name] = target
		return true

	case types.Generic:
		t, ok := target.(types.Generic)
		if !ok || t.Base != p.Base || len(t.Params) != len(p.Params) {
			return false
		}
		for i := range p.Params {
			if !collectInfer(p.Params[i], t.Params[i], bindings) {
				return false
			}
		}
		return true

	case types.Array:
		t, ok := target.(types.Array)
		if !ok {
			return false
		}
		return collectInfer(p.Base, t.Base, bindings)

	case types.DocFunction:
		tf, ok := target.(types.DocFunction)
		if !ok {
			return false
		}
		for i, pp := range p.Func.Params {
			if i >= len(tf.Func.Params) {
				break
			}
			tp := tf.Func.Params[i]
			if pp.Type != nil && tp.Type != nil {
				if !collectInfer(pp.Type, tp.Type, bindings) {
					return false
				}
			}
		}
		if p.Func.Ret != nil && tf.Func.Ret != nil {
			return collectInfer(p.Func.Ret, tf.Func.Ret, bindings)
		}
		return true

	case types.Tuple:
		t, ok := target.(types.Tuple)
		if !ok || len(t.Items) != len(p.Items) {
			return false
		}
		for i := range p.Items {
			if !collectInfer(p.Items[i], t.Items[i], bindings) {
				return false
			}
		}
		return true

	default:
		if !types.ContainsConditionalInfer(pattern) {
			return types.StructurallyEqual(pattern, target)
		}
		return false
	}
}
