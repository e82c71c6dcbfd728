package ids

// InferFailKind enumerates the recoverable inference-failure reasons.
// Failure is expected and does not log; callers substitute Unknown,
// requeue, or surface the failure as their own.
type InferFailKind uint8

const (
	InferFailNone InferFailKind = iota
	InferFailUnresolvedDeclType
	InferFailUnresolvedMemberType
	InferFailUnresolvedSignatureReturn
	InferFailFieldNotFound
)

// InferFail is the error type every inference query returns on
// failure. It carries the unresolved id so callers can requeue the
// exact item for a later pass.
type InferFail struct {
	Kind      InferFailKind
	Decl      DeclId
	Member    MemberId
	Signature SignatureId
}

func (f *InferFail) Error() string {
	switch f.Kind {
	case InferFailUnresolvedDeclType:
		return "unresolved decl type " + f.Decl.String()
	case InferFailUnresolvedMemberType:
		return "unresolved member type"
	case InferFailUnresolvedSignatureReturn:
		return "unresolved signature return " + f.Signature.String()
	case InferFailFieldNotFound:
		return "field not found"
	default:
		return "no type inferable"
	}
}

// Is makes errors.Is match any two InferFail values of the same kind,
// so callers can test for a failure class without the payload.
func (f *InferFail) Is(target error) bool {
	t, ok := target.(*InferFail)
	return ok && t.Kind == f.Kind
}

func FailNone() *InferFail { return &InferFail{Kind: InferFailNone} }

func FailDecl(d DeclId) *InferFail {
	return &InferFail{Kind: InferFailUnresolvedDeclType, Decl: d}
}

func FailMember(m MemberId) *InferFail {
	return &InferFail{Kind: InferFailUnresolvedMemberType, Member: m}
}

func FailSignatureReturn(s SignatureId) *InferFail {
	return &InferFail{Kind: InferFailUnresolvedSignatureReturn, Signature: s}
}

func FailFieldNotFound() *InferFail { return &InferFail{Kind: InferFailFieldNotFound} }
