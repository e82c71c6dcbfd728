// Package resolve implements the scope/decl resolver: disambiguating
// a global name with multiple candidate decls, and walking outward
// from a `self` reference to the enclosing method's implicit-self
// decl or owning member.
package resolve

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/types"
)

// CallShape describes the call site a disambiguated global name sits
// in, when any: just enough for the signature-subset overload check
// without this package depending on internal/overload.
type CallShape struct {
	IsCall bool
	Args   []types.Type
}

// OverloadPicker resolves a call against candidate signature-typed
// decls, implemented by internal/overload and injected by callers so
// this package stays a leaf.
type OverloadPicker func(call CallShape, candidates []*index.Decl) (*index.Decl, bool)

// ResolveGlobalDeclId picks one declaration for a global name: a
// single candidate wins outright, a call site resolves function-typed
// candidates as an overload set, and otherwise decls with a concrete
// named/function/table type beat untyped ones.
func ResolveGlobalDeclId(decls []*index.Decl, call CallShape, declType func(*index.Decl) types.Type, pick OverloadPicker) (*index.Decl, bool) {
	if len(decls) == 0 {
		return nil, false
	}
	if len(decls) == 1 {
		return decls[0], true
	}

	if call.IsCall {
		var sigCandidates []*index.Decl
		for _, d := range decls {
			if _, ok := declType(d).(types.DocFunction); ok {
				sigCandidates = append(sigCandidates, d)
			}
		}
		if len(sigCandidates) > 0 && pick != nil {
			if d, ok := pick(call, sigCandidates); ok {
				return d, true
			}
		}
	}

	for _, d := range decls {
		switch declType(d).(type) {
		case types.Ref, types.Def, types.DocFunction, types.Object:
			return d, true
		}
	}
	return decls[0], true
}

// EnclosingMethod is the syntactic context find_self_decl_or_member_id
// needs: the signature of the innermost enclosing function, and,
// for the `function X.Y:M` colon-define shape, the member id `Y`
// names, when the enclosing function has no implicit-self parameter
// decl of its own.
type EnclosingMethod struct {
	Signature     ids.SignatureId
	ImplicitSelf  *index.Decl // non-nil when the signature has a bound self param
	OwnerMemberId *ids.MemberId
}

// SelfResolution is find_self_decl_or_member_id's result: exactly one
// of Decl or Member is set.
type SelfResolution struct {
	Decl   *index.Decl
	Member *ids.MemberId
}

// FindSelfDeclOrMemberId walks the chain of enclosing methods from
// innermost to outermost (closures nested inside a method do not
// carry their own `self`, so a bare `self` reference inside one
// resolves to the nearest ancestor that declares it) and returns the
// first implicit-self decl found, or (for `function X.Y:M`, which
// has no implicit-self decl, only a bound owner member) that owner's
// member id.
func FindSelfDeclOrMemberId(chain []EnclosingMethod) (SelfResolution, bool) {
	for _, m := range chain {
		if m.ImplicitSelf != nil {
			return SelfResolution{Decl: m.ImplicitSelf}, true
		}
		if m.OwnerMemberId != nil {
			return SelfResolution{Member: m.OwnerMemberId}, true
		}
	}
	return SelfResolution{}, false
}
