package generic

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/types"
)

// CallCtx is the call-site information function-generic instantiation
// consumes: evaluated argument types, explicit generic
// arguments if written, colon-call shape, and the callee's prefix type
// for SelfInfer.
type CallCtx struct {
	Args         []types.Type
	ExplicitArgs []types.Type
	IsColonCall  bool
	PrefixType   types.Type
	StdPairs     bool
}

// InstantiateFuncGeneric resolves a generic function against one call
// site and returns the concrete FunctionType. sig may be
// nil when f is a bare DocFunction with templates baked into its
// parameter types.
func (e *Engine) InstantiateFuncGeneric(sig *index.Signature, f *types.FunctionType, ctx CallCtx) *types.FunctionType {
	sub := NewSubstitutor()
	mctx := &MatchCtx{StdPairs: ctx.StdPairs}

	hasSelf := fnContainsSelf(f)
	if hasSelf && ctx.PrefixType != nil {
		sub.SelfType = e.selfTypeFromPrefix(ctx.PrefixType)
	}

	params := normalizeCallParams(f, ctx.IsColonCall)

	if sig != nil && len(ctx.ExplicitArgs) > 0 {
		for i, tpl := range sig.GenericParams {
			if i < len(ctx.ExplicitArgs) {
				sub.BindRaw(tpl.Id, TypeValue(ctx.ExplicitArgs[i]))
			}
		}
	} else {
		e.matchCallArgs(params, ctx.Args, sub, mctx)
	}

	return e.instantiateFunc(&types.FunctionType{
		Async:         f.Async,
		IsColonDefine: f.IsColonDefine,
		IsVariadic:    f.IsVariadic,
		Params:        params,
		Ret:           f.Ret,
	}, sub)
}

// matchCallArgs walks params and args in order:
// closure arguments against multi-variadic closure params are deferred
// until everything else has bound; a variadic param consumes the
// remaining args; a variadic arg spreads across the remaining params.
func (e *Engine) matchCallArgs(params []types.Param, args []types.Type, sub *Substitutor, mctx *MatchCtx) {
	type deferred struct {
		param types.Param
		arg   types.Type
	}
	var later []deferred

	ai := 0
	for pi := 0; pi < len(params) && ai < len(args); pi++ {
		p := params[pi]
		if p.Type == nil {
			ai++
			continue
		}
		if vr, ok := p.Type.(types.Variadic); ok && !vr.Variadic.IsMulti {
			if tpl, ok := vr.Variadic.Base.(types.TplRef); ok {
				rest := make([]types.Param, 0, len(args)-ai)
				for _, a := range args[ai:] {
					rest = append(rest, types.Param{Type: a})
				}
				sub.Bind(tpl.Tpl.Id, paramsOrMulti(rest))
				ai = len(args)
				break
			}
			for ; ai < len(args); ai++ {
				e.PatternMatch(vr.Variadic.Base, args[ai], sub, mctx)
			}
			break
		}

		arg := args[ai]
		if av, ok := arg.(types.Variadic); ok && av.Variadic.IsMulti {
			// variadic arg spreads over the remaining params
			spread := av.Variadic.Multi
			for si := 0; pi < len(params) && si < len(spread); pi, si = pi+1, si+1 {
				if params[pi].Type != nil {
					e.PatternMatch(params[pi].Type, spread[si], sub, mctx)
				}
			}
			ai = len(args)
			break
		}

		if isMultiVariadicClosureParam(p.Type) && isFunctionShaped(arg) {
			later = append(later, deferred{param: p, arg: arg})
			ai++
			continue
		}

		e.PatternMatch(p.Type, arg, sub, mctx)
		ai++
	}

	for _, d := range later {
		e.PatternMatch(d.param.Type, d.arg, sub, mctx)
	}
}

// paramsOrMulti packages a consumed argument tail as a parameter
// sequence binding (ValueParams).
func paramsOrMulti(rest []types.Param) Value {
	return ParamsValue(rest)
}

// isMultiVariadicClosureParam reports whether a parameter's declared
// function type carries more than one variadic position (params and
// return), the shape whose matching is deferred until every other
// argument has bound.
func isMultiVariadicClosureParam(t types.Type) bool {
	fn, ok := t.(types.DocFunction)
	if !ok {
		return false
	}
	variadics := 0
	for _, p := range fn.Func.Params {
		if vr, ok := p.Type.(types.Variadic); ok && !vr.Variadic.IsMulti {
			variadics++
		}
	}
	if vr, ok := fn.Func.Ret.(types.Variadic); ok && !vr.Variadic.IsMulti {
		variadics++
	}
	return variadics > 1
}

// normalizeCallParams reconciles colon-call vs colon-define mismatch:
// a colon call against a dot-defined function
// skips the explicit self slot; a dot call against a colon-defined
// function sees a synthetic self parameter first.
func normalizeCallParams(f *types.FunctionType, isColonCall bool) []types.Param {
	switch {
	case isColonCall && !f.IsColonDefine:
		if len(f.Params) > 0 && f.Params[0].Name == "self" {
			return f.Params[1:]
		}
		return f.Params
	case !isColonCall && f.IsColonDefine:
		return append([]types.Param{{Name: "self", Type: types.P(types.SelfInfer)}}, f.Params...)
	default:
		return f.Params
	}
}

func fnContainsSelf(f *types.FunctionType) bool {
	for _, p := range f.Params {
		if p.Type != nil && types.ContainsSelf(p.Type) {
			return true
		}
	}
	return f.Ret != nil && types.ContainsSelf(f.Ret)
}

// selfTypeFromPrefix derives the SelfInfer binding from the call's
// prefix expression type: for a method reference on a class, the
// owning class reconstructed as a Generic over its declared default
// template parameters.
func (e *Engine) selfTypeFromPrefix(prefix types.Type) types.Type {
	switch p := prefix.(type) {
	case types.Ref:
		return e.classAsGeneric(p.Decl, prefix)
	case types.Def:
		return e.classAsGeneric(p.Decl, prefix)
	default:
		return prefix
	}
}

func (e *Engine) classAsGeneric(id ids.TypeDeclId, orig types.Type) types.Type {
	decl, ok := e.typeDeclOf(id)
	if !ok || len(decl.GenericParams) == 0 {
		return orig
	}
	params := make([]types.Type, len(decl.GenericParams))
	for i, tpl := range decl.GenericParams {
		params[i] = types.TplRef{Tpl: tpl}
	}
	return types.Generic{Base: id, Params: params}
}
