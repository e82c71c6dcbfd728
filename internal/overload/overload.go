// Package overload picks the best function type for a call site out
// of a candidate overload set.
package overload

import (
	"github.com/emmylua-go/semacore/internal/generic"
	"github.com/emmylua-go/semacore/internal/types"
)

// Resolve scores every candidate against the evaluated argument types
// and returns the best match; ties keep the first candidate in source
// order. Args must already be spread (no embedded
// multi-variadics).
func Resolve(e *generic.Engine, candidates []*types.FunctionType, args []types.Type) *types.FunctionType {
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	best := candidates[0]
	bestScore := score(e, candidates[0], args)
	for _, cand := range candidates[1:] {
		if s := score(e, cand, args); s > bestScore {
			best, bestScore = cand, s
		}
	}
	return best
}

// score ranks a candidate: exact-arity matches beat vararg matches,
// stricter parameter matches beat looser, and fewer generic template
// bindings required beat more.
func score(e *generic.Engine, cand *types.FunctionType, args []types.Type) int {
	s := 0

	fixed := 0
	variadic := cand.IsVariadic
	for _, p := range cand.Params {
		if vr, ok := p.Type.(types.Variadic); ok && !vr.Variadic.IsMulti {
			variadic = true
			continue
		}
		if p.Name == "..." {
			variadic = true
			continue
		}
		fixed++
	}

	switch {
	case len(args) == fixed:
		s += 1000
	case variadic && len(args) >= fixed:
		s += 500
	case len(args) < fixed:
		// missing trailing args are tolerated (they read as nil), but
		// rank below both exact and vararg fits
		s += 100
	}

	pi := 0
	for _, arg := range args {
		if pi >= len(cand.Params) {
			break
		}
		pt := cand.Params[pi].Type
		if pt == nil {
			pi++
			continue
		}
		if vr, ok := pt.(types.Variadic); ok && !vr.Variadic.IsMulti {
			pt = vr.Variadic.Base
		} else {
			pi++
		}
		switch {
		case types.StructurallyEqual(types.Decay(arg), types.Decay(pt)):
			s += 10
		case e.CheckTypeCompact(arg, pt):
			s += 5
		default:
			s -= 20
		}
		if types.ContainsTpl(pt) {
			// a parameter that needs a template binding is a looser fit
			// than one that matches concretely
			s--
		}
	}
	return s
}

// CollectCandidates flattens an overload set: a signature's declared
// overloads, or the DocFunction arms of a union-typed callee.
func CollectCandidates(t types.Type, sigFuncs func(types.Signature) []*types.FunctionType) []*types.FunctionType {
	switch v := t.(type) {
	case types.DocFunction:
		return []*types.FunctionType{v.Func}
	case types.Signature:
		return sigFuncs(v)
	case types.Union:
		var out []*types.FunctionType
		for _, arm := range v.Types {
			out = append(out, CollectCandidates(arm, sigFuncs)...)
		}
		return out
	}
	return nil
}
