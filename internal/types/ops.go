package types

// NewUnion builds a Union from ts, flattening nested unions,
// deduplicating by structural equality, absorbing Never, and
// collapsing to Any/Unknown if either is present.
func NewUnion(ts []Type) Type {
	flat := flattenUnion(ts)
	for _, t := range flat {
		if isAnyOrUnknown(t) {
			return t
		}
	}
	deduped := dedupe(flat)
	deduped = removeNever(deduped)
	switch len(deduped) {
	case 0:
		return P(Never)
	case 1:
		return deduped[0]
	default:
		return Union{Types: deduped}
	}
}

func flattenUnion(ts []Type) []Type {
	out := make([]Type, 0, len(ts))
	for _, t := range ts {
		if u, ok := t.(Union); ok {
			out = append(out, flattenUnion(u.Types)...)
		} else if m, ok := t.(MultiLineUnion); ok {
			out = append(out, flattenUnion([]Type{m.ToUnion()})...)
		} else {
			out = append(out, t)
		}
	}
	return out
}

func removeNever(ts []Type) []Type {
	out := ts[:0:0]
	for _, t := range ts {
		if p, ok := t.(Primitive); ok && p.Kind == Never {
			continue
		}
		out = append(out, t)
	}
	return out
}

func dedupe(ts []Type) []Type {
	out := make([]Type, 0, len(ts))
	for _, t := range ts {
		dup := false
		for _, seen := range out {
			if StructurallyEqual(seen, t) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}

func isAnyOrUnknown(t Type) bool {
	p, ok := t.(Primitive)
	return ok && (p.Kind == Any || p.Kind == Unknown)
}

// TypeOpsUnion implements TypeOps::Union(a, b).
func TypeOpsUnion(a, b Type) Type {
	return NewUnion([]Type{a, b})
}

// TypeOpsIntersect implements TypeOps::Intersect(a, b): literals versus
// their base types yield the literal; disjoint atoms yield Never.
func TypeOpsIntersect(a, b Type) Type {
	if StructurallyEqual(a, b) {
		return a
	}
	if isAnyOrUnknown(a) {
		return b
	}
	if isAnyOrUnknown(b) {
		return a
	}
	if ua, ok := a.(Union); ok {
		var parts []Type
		for _, arm := range ua.Types {
			r := TypeOpsIntersect(arm, b)
			if !IsNever(r) {
				parts = append(parts, r)
			}
		}
		return NewUnion(parts)
	}
	if _, ok := b.(Union); ok {
		return TypeOpsIntersect(b, a)
	}
	if isConstOf(a, b) {
		return a
	}
	if isConstOf(b, a) {
		return b
	}
	return P(Never)
}

// isConstOf reports whether lit is a literal-constant whose base
// primitive type equals base.
func isConstOf(lit, base Type) bool {
	p, ok := base.(Primitive)
	if !ok {
		return false
	}
	switch lit.(type) {
	case BooleanConst:
		return p.Kind == Boolean
	case IntegerConst:
		return p.Kind == Integer || p.Kind == Number
	case FloatConst:
		return p.Kind == Number
	case StringConst:
		return p.Kind == String
	}
	return false
}

// TypeOpsRemove implements TypeOps::Remove(a, b): subtract b from a;
// unions filter member-wise; the complement of a constant from its
// base is the base (string minus "x" is still string).
func TypeOpsRemove(a, b Type) Type {
	if ua, ok := a.(Union); ok {
		var kept []Type
		for _, arm := range ua.Types {
			r := TypeOpsRemove(arm, b)
			if !IsNever(r) {
				kept = append(kept, r)
			}
		}
		return NewUnion(kept)
	}
	if StructurallyEqual(a, b) {
		return P(Never)
	}
	if constBase(a) != nil && StructurallyEqual(constBase(a), b) {
		// removing a constant's own base from itself does subtract it.
		return P(Never)
	}
	if isConstOf(b, a) {
		// a is the base primitive, b is one of its literals: the
		// complement of a constant from its base is still the base.
		return a
	}
	return a
}

// constBase returns the base primitive a literal constant decays to,
// or nil if t is not a literal constant.
func constBase(t Type) Type {
	switch t.(type) {
	case BooleanConst:
		return P(Boolean)
	case IntegerConst:
		return P(Integer)
	case FloatConst:
		return P(Number)
	case StringConst:
		return P(String)
	}
	return nil
}

// IsNever reports whether t is exactly the Never primitive.
func IsNever(t Type) bool {
	p, ok := t.(Primitive)
	return ok && p.Kind == Never
}

// Decay demotes a literal-constant type to its base primitive,
// dropping doc/inferred origin distinctions.
func Decay(t Type) Type {
	if b := constBase(t); b != nil {
		return b
	}
	return t
}
