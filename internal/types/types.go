// Package types implements the Type term: a discriminated union
// representing every Lua/annotated type form the semantic core
// reasons about: one small struct per variant behind a shared
// interface, with a structural pre-order visitor underneath the
// contain-template/contain-self predicates.
package types

import (
	"sort"
	"strings"

	"github.com/emmylua-go/semacore/internal/ids"
)

// Type is the interface every type-term variant implements.
type Type interface {
	String() string
	isType()
}

// Visit walks t and every sub-type reachable from it in pre-order,
// calling f for each. f may return false to stop descending into the
// current node's children (but visiting continues at the next
// sibling). This is the basis of ContainsTpl, ContainsSelf, and
// ContainsConditionalInfer.
func Visit(t Type, f func(Type) bool) {
	if t == nil || !f(t) {
		return
	}
	switch v := t.(type) {
	case Array:
		Visit(v.Base, f)
	case Tuple:
		for _, it := range v.Items {
			Visit(it, f)
		}
	case Object:
		for _, val := range v.Fields {
			Visit(val, f)
		}
		for _, e := range v.IndexAccess {
			Visit(e.Key, f)
			Visit(e.Value, f)
		}
	case TableGeneric:
		for _, it := range v.Params {
			Visit(it, f)
		}
	case Union:
		for _, it := range v.Types {
			Visit(it, f)
		}
	case Intersection:
		for _, it := range v.Types {
			Visit(it, f)
		}
	case MultiLineUnion:
		for _, arm := range v.Arms {
			Visit(arm.Type, f)
		}
	case DocFunction:
		for _, p := range v.Func.Params {
			if p.Type != nil {
				Visit(p.Type, f)
			}
		}
		Visit(v.Func.Ret, f)
	case Generic:
		for _, p := range v.Params {
			Visit(p, f)
		}
	case Variadic:
		if v.Variadic.IsMulti {
			for _, it := range v.Variadic.Multi {
				Visit(it, f)
			}
		} else {
			Visit(v.Variadic.Base, f)
		}
	case Call:
		for _, op := range v.Operands {
			Visit(op, f)
		}
	case Conditional:
		Visit(v.Condition, f)
		Visit(v.True, f)
		Visit(v.False, f)
	case Mapped:
		Visit(v.Param.Constraint, f)
		Visit(v.Value, f)
	case IndexAccess:
		Visit(v.Base, f)
		Visit(v.Key, f)
	case TypeGuard:
		Visit(v.Inner, f)
	case Attributed:
		Visit(v.Base, f)
	case Instance:
		Visit(v.Base, f)
	}
}

// ContainsTpl reports whether t contains a TplRef/ConstTplRef/StrTplRef
// anywhere in its tree.
func ContainsTpl(t Type) bool {
	found := false
	Visit(t, func(x Type) bool {
		switch x.(type) {
		case TplRef, ConstTplRef, StrTplRef:
			found = true
		}
		return !found
	})
	return found
}

// ContainsSelf reports whether t references the SelfInfer primitive.
func ContainsSelf(t Type) bool {
	found := false
	Visit(t, func(x Type) bool {
		if p, ok := x.(Primitive); ok && p.Kind == SelfInfer {
			found = true
		}
		return !found
	})
	return found
}

// ContainsConditionalInfer reports whether t contains a
// ConditionalInfer(name) placeholder anywhere in its tree.
func ContainsConditionalInfer(t Type) bool {
	found := false
	Visit(t, func(x Type) bool {
		if _, ok := x.(ConditionalInfer); ok {
			found = true
		}
		return !found
	})
	return found
}

// --- Primitive ---

type PrimitiveKind uint8

const (
	Unknown PrimitiveKind = iota
	Any
	Nil
	Never
	Boolean
	Integer
	Number
	String
	Table
	Function
	Thread
	Userdata
	Io
	Global
	SelfInfer
)

var primitiveNames = [...]string{
	"unknown", "any", "nil", "never", "boolean", "integer", "number",
	"string", "table", "function", "thread", "userdata", "io", "global", "self",
}

func (k PrimitiveKind) String() string {
	if int(k) < len(primitiveNames) {
		return primitiveNames[k]
	}
	return "unknown"
}

type Primitive struct{ Kind PrimitiveKind }

func (p Primitive) String() string { return p.Kind.String() }
func (Primitive) isType()          {}

func P(k PrimitiveKind) Type { return Primitive{Kind: k} }

// --- Literal constants ---

// ConstOrigin distinguishes a literal constant written in an
// annotation (Doc…Const) from one inferred from code (…Const);
// the distinction affects display and narrowing.
type ConstOrigin uint8

const (
	OriginInferred ConstOrigin = iota
	OriginDoc
)

type BooleanConst struct {
	Value  bool
	Origin ConstOrigin
}

func (b BooleanConst) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (BooleanConst) isType() {}

type IntegerConst struct {
	Value  int64
	Origin ConstOrigin
}

func (i IntegerConst) String() string { return itoa(i.Value) }
func (IntegerConst) isType()          {}

type FloatConst struct {
	Value  float64
	Origin ConstOrigin
}

func (f FloatConst) String() string { return ftoa(f.Value) }
func (FloatConst) isType()          {}

type StringConst struct {
	Value  string
	Origin ConstOrigin
}

func (s StringConst) String() string { return "\"" + s.Value + "\"" }
func (StringConst) isType()          {}

// --- Named ---

// Ref is a use-site reference to a named type.
type Ref struct{ Decl ids.TypeDeclId }

func (r Ref) String() string { return r.Decl.String() }
func (Ref) isType()          {}

// Def is the defining site of a named type.
type Def struct{ Decl ids.TypeDeclId }

func (d Def) String() string { return d.Decl.String() }
func (Def) isType()          {}

// ModuleRef references the export table of a whole file-as-module.
type ModuleRef struct{ File ids.FileId }

func (m ModuleRef) String() string { return "module#" + itoa(int64(m.File)) }
func (ModuleRef) isType()          {}

// --- Aggregate ---

type ArrayLenKind uint8

const (
	ArrayLenUnknown ArrayLenKind = iota
	ArrayLenMax
)

type ArrayLen struct {
	Kind ArrayLenKind
	Max  int64 // valid iff Kind == ArrayLenMax; invariant: Max > 0
}

type Array struct {
	Base Type
	Len  ArrayLen
}

func (a Array) String() string {
	if a.Len.Kind == ArrayLenMax {
		return a.Base.String() + "[" + itoa(a.Len.Max) + "]"
	}
	return a.Base.String() + "[]"
}
func (Array) isType() {}

type TupleStatus uint8

const (
	TupleNormal TupleStatus = iota
	TupleInferResolve
)

type Tuple struct {
	Items  []Type
	Status TupleStatus
}

func (t Tuple) String() string {
	parts := make([]string, len(t.Items))
	for i, it := range t.Items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (Tuple) isType() {}

// MemberKey discriminates how a member of Object/table is addressed.
type MemberKeyKind uint8

const (
	MemberKeyNone MemberKeyKind = iota
	MemberKeyName
	MemberKeyInteger
	MemberKeyExprType
)

type MemberKey struct {
	Kind    MemberKeyKind
	Name    string
	Integer int64
	Expr    Type
}

func NameKey(n string) MemberKey   { return MemberKey{Kind: MemberKeyName, Name: n} }
func IntegerKey(i int64) MemberKey { return MemberKey{Kind: MemberKeyInteger, Integer: i} }
func ExprKey(t Type) MemberKey     { return MemberKey{Kind: MemberKeyExprType, Expr: t} }
func (k MemberKey) String() string {
	switch k.Kind {
	case MemberKeyName:
		return k.Name
	case MemberKeyInteger:
		return itoa(k.Integer)
	case MemberKeyExprType:
		return "[" + k.Expr.String() + "]"
	default:
		return "?"
	}
}

type IndexAccessEntry struct {
	Key   Type
	Value Type
}

type Object struct {
	Fields      map[MemberKey]Type
	IndexAccess []IndexAccessEntry
}

func (o Object) String() string {
	keys := make([]string, 0, len(o.Fields))
	for k := range o.Fields {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	byStr := map[string]Type{}
	for k, v := range o.Fields {
		byStr[k.String()] = v
	}
	for _, k := range keys {
		parts = append(parts, k+": "+byStr[k].String())
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
func (Object) isType() {}

// TableGeneric is table<K, V>-style doc sugar.
type TableGeneric struct{ Params []Type }

func (t TableGeneric) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return "table<" + strings.Join(parts, ", ") + ">"
}
func (TableGeneric) isType() {}

// Union is flat and deduplicated when built via NewUnion or
// TypeOpsUnion. Its field is exported, so a struct literal built
// elsewhere is not normalized.
type Union struct{ Types []Type }

func (u Union) String() string {
	parts := make([]string, len(u.Types))
	for i, t := range u.Types {
		parts[i] = t.String()
	}
	return strings.Join(parts, " | ")
}
func (Union) isType() {}

type Intersection struct{ Types []Type }

func (i Intersection) String() string {
	parts := make([]string, len(i.Types))
	for idx, t := range i.Types {
		parts[idx] = t.String()
	}
	return strings.Join(parts, " & ")
}
func (Intersection) isType() {}

type MultiLineArm struct {
	Type Type
	Doc  *string
}

// MultiLineUnion is kept distinct from Union only for rendering
// ; semantically it is equivalent to Union.
type MultiLineUnion struct{ Arms []MultiLineArm }

func (m MultiLineUnion) String() string {
	parts := make([]string, len(m.Arms))
	for i, a := range m.Arms {
		parts[i] = a.Type.String()
	}
	return strings.Join(parts, "\n| ")
}
func (MultiLineUnion) isType() {}

// ToUnion converts a MultiLineUnion to its semantically-equivalent
// Union, normalizing in the process.
func (m MultiLineUnion) ToUnion() Type {
	ts := make([]Type, len(m.Arms))
	for i, a := range m.Arms {
		ts[i] = a.Type
	}
	return NewUnion(ts)
}

// --- Function ---

type AsyncState uint8

const (
	AsyncUnknown AsyncState = iota
	AsyncSync
	AsyncAsync
)

type Param struct {
	Name string
	Type Type // nil means untyped/any
}

type FunctionType struct {
	Async         AsyncState
	IsColonDefine bool
	IsVariadic    bool
	Params        []Param
	Ret           Type
}

type DocFunction struct{ Func *FunctionType }

func (d DocFunction) String() string {
	parts := make([]string, len(d.Func.Params))
	for i, p := range d.Func.Params {
		t := "any"
		if p.Type != nil {
			t = p.Type.String()
		}
		parts[i] = p.Name + ": " + t
	}
	ret := "nil"
	if d.Func.Ret != nil {
		ret = d.Func.Ret.String()
	}
	return "fun(" + strings.Join(parts, ", ") + "): " + ret
}
func (DocFunction) isType() {}

// Signature references a signature stored in the signature index by
// id, rather than embedding a FunctionType directly, so overload sets
// and recursive signatures don't require owning pointers.
type Signature struct{ Id ids.SignatureId }

func (s Signature) String() string { return "sig#" + s.Id.String() }
func (Signature) isType()          {}

// --- Generic ---

type GenericTpl struct {
	Id         ids.GenericTplId
	Name       string
	Constraint Type // nil if unconstrained
}

type Generic struct {
	Base   ids.TypeDeclId
	Params []Type
}

func (g Generic) String() string {
	parts := make([]string, len(g.Params))
	for i, p := range g.Params {
		parts[i] = p.String()
	}
	return g.Base.String() + "<" + strings.Join(parts, ", ") + ">"
}
func (Generic) isType() {}

type TplRef struct{ Tpl GenericTpl }

func (t TplRef) String() string { return t.Tpl.Name }
func (TplRef) isType()          {}

// ConstTplRef is a template reference that does not decay literal
// constants on substitution.
type ConstTplRef struct{ Tpl GenericTpl }

func (c ConstTplRef) String() string { return "const " + c.Tpl.Name }
func (ConstTplRef) isType()          {}

type StrTplRef struct {
	TplId      ids.GenericTplId
	Prefix     string
	Suffix     string
	Constraint Type
}

func (s StrTplRef) String() string { return s.Prefix + "`T`" + s.Suffix }
func (StrTplRef) isType()          {}

// --- Variadic ---

type VariadicType struct {
	IsMulti bool
	Base    Type   // valid iff !IsMulti
	Multi   []Type // valid iff IsMulti
}

type Variadic struct{ Variadic *VariadicType }

func (v Variadic) String() string {
	if v.Variadic.IsMulti {
		parts := make([]string, len(v.Variadic.Multi))
		for i, t := range v.Variadic.Multi {
			parts[i] = t.String()
		}
		return strings.Join(parts, ", ") + "..."
	}
	return v.Variadic.Base.String() + "..."
}
func (Variadic) isType() {}

// --- Computed ---

type AliasCallKind uint8

const (
	CallSub AliasCallKind = iota
	CallAdd
	CallKeyOf
	CallExtends
	CallSelect
	CallUnpack
	CallRawGet
	CallIndex
)

type Call struct {
	Kind     AliasCallKind
	Operands []Type
}

func (c Call) String() string {
	parts := make([]string, len(c.Operands))
	for i, o := range c.Operands {
		parts[i] = o.String()
	}
	return "$call(" + strings.Join(parts, ", ") + ")"
}
func (Call) isType() {}

type Conditional struct {
	Condition   Type
	True        Type
	False       Type
	InferParams []string
	HasNew      bool
}

func (c Conditional) String() string {
	return c.Condition.String() + " and " + c.True.String() + " or " + c.False.String()
}
func (Conditional) isType() {}

type MappedParam struct {
	Name       string
	Constraint Type
}

type Mapped struct {
	Param      MappedParam
	Value      Type
	IsOptional bool
	IsReadonly bool
}

func (m Mapped) String() string {
	return "{ [" + m.Param.Name + " in " + m.Param.Constraint.String() + "]: " + m.Value.String() + " }"
}
func (Mapped) isType() {}

type IndexAccess struct {
	Base Type
	Key  Type
}

func (i IndexAccess) String() string { return i.Base.String() + "[" + i.Key.String() + "]" }
func (IndexAccess) isType()          {}

// TypeGuard is the return type of a predicate function: truthy result
// narrows its guarded argument to Inner.
type TypeGuard struct{ Inner Type }

func (t TypeGuard) String() string { return "is " + t.Inner.String() }
func (TypeGuard) isType()          {}

// ConditionalInfer is an `infer name` placeholder inside a conditional
// type's false-position operand.
type ConditionalInfer struct{ Name string }

func (c ConditionalInfer) String() string { return "infer " + c.Name }
func (ConditionalInfer) isType()          {}

// --- Attribute-decorated ---

type AttributeUse struct {
	Name string
	Args []string
}

type Attributed struct {
	Base       Type
	Attributes []AttributeUse
}

func (a Attributed) String() string {
	parts := make([]string, len(a.Attributes))
	for i, at := range a.Attributes {
		parts[i] = at.Name
	}
	return "[" + strings.Join(parts, ", ") + "] " + a.Base.String()
}
func (Attributed) isType() {}

// --- Instance ---

// Instance is a TableConst-like singleton keyed by a literal table
// expression's source range.
type Instance struct {
	Base  Type
	File  ids.FileId
	Range ids.Range
}

func (i Instance) String() string { return i.Base.String() + "@" + itoa(int64(i.Range.Start)) }
func (Instance) isType()          {}
