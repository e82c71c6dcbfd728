package index

import "github.com/emmylua-go/semacore/internal/ids"

// Visibility mirrors the `@public`/`@protected`/`@private`/`@package`
// doc tags.
type Visibility uint8

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
	VisibilityPrivate
	VisibilityPackage
)

// DeprecatedInfo is an `@deprecated` tag's payload.
type DeprecatedInfo struct {
	Message string
}

// VersionCond is one `@version` constraint, e.g. ">=5.1".
type VersionCond struct {
	Expr string
}

// Property is documentation-level metadata attached to a declaration:
// docs, deprecation, visibility, export markers and version
// constraints.
type Property struct {
	Doc        string
	Deprecated *DeprecatedInfo
	Visibility Visibility
	Exported   bool
	Versions   []VersionCond
	See        []string
}

// PropertyIndex keys Property by ids.SemanticDeclId.
type PropertyIndex struct {
	props map[string]*Property
	file  map[ids.FileId][]string
}

func NewPropertyIndex() *PropertyIndex {
	return &PropertyIndex{props: map[string]*Property{}, file: map[ids.FileId][]string{}}
}

func (idx *PropertyIndex) Set(decl ids.SemanticDeclId, file ids.FileId, p *Property) {
	key := decl.String()
	idx.props[key] = p
	idx.file[file] = append(idx.file[file], key)
}

func (idx *PropertyIndex) Get(decl ids.SemanticDeclId) (*Property, bool) {
	p, ok := idx.props[decl.String()]
	return p, ok
}

func (idx *PropertyIndex) Remove(file ids.FileId) {
	for _, key := range idx.file[file] {
		delete(idx.props, key)
	}
	delete(idx.file, file)
}

func (idx *PropertyIndex) Clear() {
	idx.props = map[string]*Property{}
	idx.file = map[ids.FileId][]string{}
}
