// Package generic implements the generic engine: the substitutor,
// the structural pattern matcher that learns template bindings from
// argument types, the alias-call evaluator, and the conditional and
// mapped type expanders.
package generic

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/member"
	"github.com/emmylua-go/semacore/internal/types"
)

// Engine evaluates generic instantiation against one database
// snapshot. It is stateless between calls; all per-call state lives in
// the Substitutor and the InferGuard.
type Engine struct {
	Db      *index.DbIndex
	Members *member.Resolver
}

func NewEngine(db *index.DbIndex) *Engine {
	return &Engine{
		Db:      db,
		Members: member.New(db.Type, db.Member, db.Global, db.Decl),
	}
}

// typeDeclOf resolves a named type's declaration, if indexed.
func (e *Engine) typeDeclOf(id ids.TypeDeclId) (*index.TypeDecl, bool) {
	return e.Db.Type.TypeDeclOf(id)
}

// UnfoldAlias resolves Ref/Def/Generic aliases to their origin, with
// generic aliases instantiated by their use-site arguments. Non-alias
// types are returned unchanged.
func (e *Engine) UnfoldAlias(t types.Type, guard member.InferGuard) types.Type {
	if guard == nil {
		guard = member.NewInferGuard()
	}
	switch v := t.(type) {
	case types.Ref:
		return e.unfoldNamed(v.Decl, nil, guard, t)
	case types.Def:
		return e.unfoldNamed(v.Decl, nil, guard, t)
	case types.Generic:
		return e.unfoldNamed(v.Base, v.Params, guard, t)
	}
	return t
}

func (e *Engine) unfoldNamed(id ids.TypeDeclId, args []types.Type, guard member.InferGuard, orig types.Type) types.Type {
	decl, ok := e.typeDeclOf(id)
	if !ok || decl.Kind != index.TypeAlias || decl.AliasOrigin == nil {
		return orig
	}
	if guard[id] {
		return orig
	}
	guard[id] = true
	sub := NewSubstitutor()
	sub.AliasTypeId = &id
	for i, tpl := range decl.GenericParams {
		if i < len(args) {
			sub.BindRaw(tpl.Id, TypeValue(args[i]))
		}
	}
	unfolded := e.Instantiate(decl.AliasOrigin, sub)
	return e.UnfoldAlias(unfolded, guard)
}

// funcTypeOf extracts a concrete FunctionType from a function-shaped
// type: a DocFunction directly, or a Signature's primary overload.
func (e *Engine) funcTypeOf(t types.Type) (*types.FunctionType, bool) {
	switch v := t.(type) {
	case types.DocFunction:
		return v.Func, true
	case types.Signature:
		sig, ok := e.Db.Signature.Get(v.Id)
		if !ok || len(sig.Overloads) == 0 {
			return nil, false
		}
		return sig.Overloads[0], true
	}
	return nil, false
}

// signatureOf returns the indexed Signature behind t, if any.
func (e *Engine) signatureOf(t types.Type) (*index.Signature, bool) {
	s, ok := t.(types.Signature)
	if !ok {
		return nil, false
	}
	return e.Db.Signature.Get(s.Id)
}
