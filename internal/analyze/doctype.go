package analyze

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/index"
	"github.com/emmylua-go/semacore/internal/syntax"
	"github.com/emmylua-go/semacore/internal/types"
)

// TypeBuilder converts doc-comment type expressions into Type terms,
// resolving names against the file's namespace and the template
// parameters currently in scope.
type TypeBuilder struct {
	Types *index.TypeIndex
	File  ids.FileId
	// TplScope maps a template name to its declaration, for @generic
	// and class-parameter references inside the annotation.
	TplScope map[string]types.GenericTpl
}

func NewTypeBuilder(ti *index.TypeIndex, file ids.FileId) *TypeBuilder {
	return &TypeBuilder{Types: ti, File: file, TplScope: map[string]types.GenericTpl{}}
}

// WithTpls returns a copy of tb with the given templates added to
// scope.
func (tb *TypeBuilder) WithTpls(tpls []types.GenericTpl) *TypeBuilder {
	scope := make(map[string]types.GenericTpl, len(tb.TplScope)+len(tpls))
	for k, v := range tb.TplScope {
		scope[k] = v
	}
	for _, t := range tpls {
		scope[t.Name] = t
	}
	return &TypeBuilder{Types: tb.Types, File: tb.File, TplScope: scope}
}

// Convert maps one DocType node to its Type term. Unrecognized node
// kinds degrade to Unknown rather than failing; an undeclared name
// becomes a Ref to its written form.
func (tb *TypeBuilder) Convert(d syntax.DocType) types.Type {
	switch n := d.(type) {
	case *syntax.DocNamedType:
		return tb.convertNamed(n)
	case *syntax.DocOpType:
		arms := make([]types.Type, len(n.Types))
		for i, t := range n.Types {
			arms[i] = tb.Convert(t)
		}
		if n.Op == "&" {
			return types.Intersection{Types: arms}
		}
		return types.NewUnion(arms)
	case *syntax.DocArrayType:
		return types.Array{Base: tb.Convert(n.Elem)}
	case *syntax.DocTableType:
		return types.TableGeneric{Params: []types.Type{tb.Convert(n.Key), tb.Convert(n.Value)}}
	case *syntax.DocFuncTypeNode:
		return types.DocFunction{Func: tb.ConvertFunc(n)}
	case *syntax.DocLiteralType:
		return tb.convertLiteral(n)
	case *syntax.DocObjectType:
		fields := make(map[types.MemberKey]types.Type, len(n.Fields))
		for _, f := range n.Fields {
			fields[types.NameKey(f.Name)] = tb.Convert(f.Type)
		}
		return types.Object{Fields: fields}
	case *syntax.DocVariadicType:
		return types.Variadic{Variadic: &types.VariadicType{Base: tb.Convert(n.Elem)}}
	case *syntax.DocTypeList:
		items := make([]types.Type, len(n.Types))
		for i, t := range n.Types {
			items[i] = tb.Convert(t)
		}
		return types.Tuple{Items: items}
	}
	return types.P(types.Unknown)
}

var primitiveNames = map[string]types.PrimitiveKind{
	"unknown":  types.Unknown,
	"any":      types.Any,
	"nil":      types.Nil,
	"never":    types.Never,
	"boolean":  types.Boolean,
	"integer":  types.Integer,
	"number":   types.Number,
	"string":   types.String,
	"table":    types.Table,
	"function": types.Function,
	"thread":   types.Thread,
	"userdata": types.Userdata,
	"io":       types.Io,
	"self":     types.SelfInfer,
}

// aliasCallNames are the computed-type operators expressible as named
// generics in annotations, e.g. `keyof<T>`.
var aliasCallNames = map[string]types.AliasCallKind{
	"sub":     types.CallSub,
	"add":     types.CallAdd,
	"keyof":   types.CallKeyOf,
	"extends": types.CallExtends,
	"select":  types.CallSelect,
	"unpack":  types.CallUnpack,
	"rawget":  types.CallRawGet,
	"index":   types.CallIndex,
}

func (tb *TypeBuilder) convertNamed(n *syntax.DocNamedType) types.Type {
	if len(n.Args) == 0 {
		if kind, ok := primitiveNames[n.Name]; ok {
			return types.P(kind)
		}
		if tpl, ok := tb.TplScope[n.Name]; ok {
			return types.TplRef{Tpl: tpl}
		}
		return types.Ref{Decl: tb.resolveTypeName(n.Name)}
	}

	args := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		args[i] = tb.Convert(a)
	}
	if n.Name == "table" && len(args) == 2 {
		return types.TableGeneric{Params: args}
	}
	if kind, ok := aliasCallNames[n.Name]; ok {
		return types.Call{Kind: kind, Operands: args}
	}
	return types.Generic{Base: tb.resolveTypeName(n.Name), Params: args}
}

// resolveTypeName finds the TypeDeclId a dotted name refers to:
// already-declared names win as written, then under the file's own
// namespace, then under each using-namespace; an undeclared name keeps
// its written form so a later file can still declare it.
func (tb *TypeBuilder) resolveTypeName(name string) ids.TypeDeclId {
	direct := ids.ParseTypeDeclId(name)
	if _, ok := tb.Types.TypeDeclOf(direct); ok {
		return direct
	}
	if ns := tb.Types.Namespace(tb.File); ns != "" {
		qualified := ids.ParseTypeDeclId(ns + "." + name)
		if _, ok := tb.Types.TypeDeclOf(qualified); ok {
			return qualified
		}
	}
	for _, ns := range tb.Types.UsingNamespaces(tb.File) {
		qualified := ids.ParseTypeDeclId(ns + "." + name)
		if _, ok := tb.Types.TypeDeclOf(qualified); ok {
			return qualified
		}
	}
	return direct
}

func (tb *TypeBuilder) convertLiteral(n *syntax.DocLiteralType) types.Type {
	switch n.Prim {
	case "nil":
		return types.P(types.Nil)
	case "int":
		return types.IntegerConst{Value: n.Int, Origin: types.OriginDoc}
	case "float":
		return types.FloatConst{Value: n.Flt, Origin: types.OriginDoc}
	case "string":
		return types.StringConst{Value: n.Str, Origin: types.OriginDoc}
	case "bool":
		return types.BooleanConst{Value: n.Bool, Origin: types.OriginDoc}
	}
	return types.P(types.Unknown)
}

// ConvertFunc converts a `fun(...)` doc node into a FunctionType.
func (tb *TypeBuilder) ConvertFunc(n *syntax.DocFuncTypeNode) *types.FunctionType {
	f := &types.FunctionType{IsVariadic: n.IsVariadic}
	for i, name := range n.ParamNames {
		var pt types.Type
		if i < len(n.ParamTypes) && n.ParamTypes[i] != nil {
			pt = tb.Convert(n.ParamTypes[i])
		}
		if name == "..." {
			f.IsVariadic = true
		}
		f.Params = append(f.Params, types.Param{Name: name, Type: pt})
	}
	switch len(n.Rets) {
	case 0:
		f.Ret = nil
	case 1:
		f.Ret = tb.Convert(n.Rets[0])
	default:
		multi := make([]types.Type, len(n.Rets))
		for i, r := range n.Rets {
			multi[i] = tb.Convert(r)
		}
		f.Ret = types.Variadic{Variadic: &types.VariadicType{IsMulti: true, Multi: multi}}
	}
	return f
}
