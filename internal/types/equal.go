package types

// StructurallyEqual reports whether a and b represent the same type,
// comparing by shape rather than by identity. It backs Union
// deduplication and is also exposed for callers (e.g. the
// narrower's literal-equality rules) that need the same notion of
// "the same type".
func StructurallyEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Primitive:
		y, ok := b.(Primitive)
		return ok && x.Kind == y.Kind
	case BooleanConst:
		y, ok := b.(BooleanConst)
		return ok && x.Value == y.Value
	case IntegerConst:
		y, ok := b.(IntegerConst)
		return ok && x.Value == y.Value
	case FloatConst:
		y, ok := b.(FloatConst)
		return ok && x.Value == y.Value
	case StringConst:
		y, ok := b.(StringConst)
		return ok && x.Value == y.Value
	case Ref:
		y, ok := b.(Ref)
		return ok && x.Decl == y.Decl
	case Def:
		y, ok := b.(Def)
		return ok && x.Decl == y.Decl
	case ModuleRef:
		y, ok := b.(ModuleRef)
		return ok && x.File == y.File
	case Array:
		y, ok := b.(Array)
		return ok && x.Len == y.Len && StructurallyEqual(x.Base, y.Base)
	case Tuple:
		y, ok := b.(Tuple)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !StructurallyEqual(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case TableGeneric:
		y, ok := b.(TableGeneric)
		if !ok || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if !StructurallyEqual(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return true
	case Union:
		y, ok := b.(Union)
		if !ok || len(x.Types) != len(y.Types) {
			return false
		}
		used := make([]bool, len(y.Types))
		for _, xt := range x.Types {
			found := false
			for i, yt := range y.Types {
				if !used[i] && StructurallyEqual(xt, yt) {
					used[i] = true
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case Intersection:
		y, ok := b.(Intersection)
		if !ok || len(x.Types) != len(y.Types) {
			return false
		}
		for i := range x.Types {
			if !StructurallyEqual(x.Types[i], y.Types[i]) {
				return false
			}
		}
		return true
	case Generic:
		y, ok := b.(Generic)
		if !ok || x.Base != y.Base || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if !StructurallyEqual(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return true
	case Signature:
		y, ok := b.(Signature)
		return ok && x.Id == y.Id
	case TplRef:
		y, ok := b.(TplRef)
		return ok && x.Tpl.Id == y.Tpl.Id
	case ConstTplRef:
		y, ok := b.(ConstTplRef)
		return ok && x.Tpl.Id == y.Tpl.Id
	case DocFunction:
		y, ok := b.(DocFunction)
		if !ok || len(x.Func.Params) != len(y.Func.Params) || x.Func.IsVariadic != y.Func.IsVariadic {
			return false
		}
		for i := range x.Func.Params {
			if !StructurallyEqual(x.Func.Params[i].Type, y.Func.Params[i].Type) {
				return false
			}
		}
		return StructurallyEqual(x.Func.Ret, y.Func.Ret)
	case Object:
		y, ok := b.(Object)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for k, v := range x.Fields {
			yv, ok := y.Fields[k]
			if !ok || !StructurallyEqual(v, yv) {
				return false
			}
		}
		return true
	case IndexAccess:
		y, ok := b.(IndexAccess)
		return ok && StructurallyEqual(x.Base, y.Base) && StructurallyEqual(x.Key, y.Key)
	case TypeGuard:
		y, ok := b.(TypeGuard)
		return ok && StructurallyEqual(x.Inner, y.Inner)
	case ConditionalInfer:
		y, ok := b.(ConditionalInfer)
		return ok && x.Name == y.Name
	case Instance:
		y, ok := b.(Instance)
		return ok && x.File == y.File && x.Range == y.Range && StructurallyEqual(x.Base, y.Base)
	default:
		// Fallback for variants without a dedicated comparison
		// (Variadic, Call, Conditional, Mapped, Attributed,
		// MultiLineUnion): compare by rendered form, which is stable
		// and adequate for deduplication purposes.
		return a.String() == b.String()
	}
}
