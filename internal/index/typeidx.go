package index

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/types"
)

// TypeDeclKind discriminates a class/enum/alias named type.
type TypeDeclKind uint8

const (
	TypeClass TypeDeclKind = iota
	TypeEnum
	TypeAlias
)

// TypeDeclFlags are bit flags recorded on a TypeDecl (partial-class
// update, is-meta-table shape, etc.).
type TypeDeclFlags uint32

const (
	FlagPartial TypeDeclFlags = 1 << iota
	FlagExact
)

// TypeDecl is one named type's declaration-site metadata.
type TypeDecl struct {
	Id            ids.TypeDeclId
	Kind          TypeDeclKind
	Flags         TypeDeclFlags
	GenericParams []types.GenericTpl
	Supers        []types.Type // Ref(...) to declared supers, resolved lazily
	AliasOrigin   types.Type   // valid iff Kind == TypeAlias
	File          ids.FileId   // declaring file, for removal bookkeeping
}

// TypeOwnerKind discriminates what a cached inferred/annotated type is
// attached to.
type TypeOwnerKind uint8

const (
	OwnerDecl TypeOwnerKind = iota
	OwnerMember
	OwnerSyntax
)

// TypeOwner is the key of the type cache: a decl, a member, or an
// arbitrary syntax node.
type TypeOwner struct {
	Kind   TypeOwnerKind
	Decl   ids.DeclId
	Member ids.MemberId
	Syntax ids.SyntaxId
	File   ids.FileId // valid when Kind == OwnerSyntax
}

func DeclOwner(d ids.DeclId) TypeOwner { return TypeOwner{Kind: OwnerDecl, Decl: d} }

// MemberTypeOwner keys the type cache by member; named distinctly from
// the MemberOwner struct (member.go) which keys the member index
// itself by declaring type/table-literal.
func MemberTypeOwner(m ids.MemberId) TypeOwner { return TypeOwner{Kind: OwnerMember, Member: m} }
func SyntaxOwner(file ids.FileId, s ids.SyntaxId) TypeOwner {
	return TypeOwner{Kind: OwnerSyntax, Syntax: s, File: file}
}

// CacheOrigin distinguishes an inferred cache entry from one carried
// verbatim from an annotation.
type CacheOrigin uint8

const (
	CacheInferred CacheOrigin = iota
	CacheDoc
)

// TypeCacheEntry is one memoized type for a TypeOwner.
type TypeCacheEntry struct {
	Type   types.Type
	Origin CacheOrigin
}

// TypeIndex stores named type declarations, per-file namespaces, and
// the type cache.
type TypeIndex struct {
	decls map[ids.TypeDeclId]*TypeDecl
	// declFiles tracks which files contributed to a (possibly partial)
	// class declaration, so Remove(file) only purges a TypeDecl when no
	// other file still declares it.
	declFiles map[ids.TypeDeclId]map[ids.FileId]bool

	namespace      map[ids.FileId]string
	usingNamespace map[ids.FileId][]string

	cache map[TypeOwner]TypeCacheEntry
}

func NewTypeIndex() *TypeIndex {
	return &TypeIndex{
		decls:          map[ids.TypeDeclId]*TypeDecl{},
		declFiles:      map[ids.TypeDeclId]map[ids.FileId]bool{},
		namespace:      map[ids.FileId]string{},
		usingNamespace: map[ids.FileId][]string{},
		cache:          map[TypeOwner]TypeCacheEntry{},
	}
}

// AddTypeDecl registers (or merges into, for a partial class) a named
// type declared by file.
func (idx *TypeIndex) AddTypeDecl(file ids.FileId, td *TypeDecl) {
	td.File = file
	if existing, ok := idx.decls[td.Id]; ok && existing.Kind == TypeClass && td.Kind == TypeClass {
		existing.GenericParams = append(existing.GenericParams, td.GenericParams...)
		existing.Supers = append(existing.Supers, td.Supers...)
		existing.Flags |= td.Flags
	} else {
		idx.decls[td.Id] = td
	}
	files, ok := idx.declFiles[td.Id]
	if !ok {
		files = map[ids.FileId]bool{}
		idx.declFiles[td.Id] = files
	}
	files[file] = true
}

func (idx *TypeIndex) TypeDeclOf(id ids.TypeDeclId) (*TypeDecl, bool) {
	d, ok := idx.decls[id]
	return d, ok
}

func (idx *TypeIndex) SetNamespace(file ids.FileId, ns string) { idx.namespace[file] = ns }
func (idx *TypeIndex) Namespace(file ids.FileId) string        { return idx.namespace[file] }

func (idx *TypeIndex) AddUsingNamespace(file ids.FileId, ns string) {
	idx.usingNamespace[file] = append(idx.usingNamespace[file], ns)
}
func (idx *TypeIndex) UsingNamespaces(file ids.FileId) []string { return idx.usingNamespace[file] }

// SetCache memoizes ty for owner, as an inferred or doc-origin entry.
func (idx *TypeIndex) SetCache(owner TypeOwner, ty types.Type, origin CacheOrigin) {
	idx.cache[owner] = TypeCacheEntry{Type: ty, Origin: origin}
}

func (idx *TypeIndex) Cache(owner TypeOwner) (TypeCacheEntry, bool) {
	e, ok := idx.cache[owner]
	return e, ok
}

// Remove purges file's namespace/using bookkeeping, its cache entries,
// and any TypeDecl no other file still declares.
func (idx *TypeIndex) Remove(file ids.FileId) {
	delete(idx.namespace, file)
	delete(idx.usingNamespace, file)

	for owner := range idx.cache {
		if owner.Kind == OwnerDecl && owner.Decl.File == file {
			delete(idx.cache, owner)
		} else if owner.Kind == OwnerMember && owner.Member.File == file {
			delete(idx.cache, owner)
		} else if owner.Kind == OwnerSyntax && owner.File == file {
			delete(idx.cache, owner)
		}
	}

	for tid, files := range idx.declFiles {
		if files[file] {
			delete(files, file)
			if len(files) == 0 {
				delete(idx.decls, tid)
				delete(idx.declFiles, tid)
			}
		}
	}
}

func (idx *TypeIndex) Clear() {
	idx.decls = map[ids.TypeDeclId]*TypeDecl{}
	idx.declFiles = map[ids.TypeDeclId]map[ids.FileId]bool{}
	idx.namespace = map[ids.FileId]string{}
	idx.usingNamespace = map[ids.FileId][]string{}
	idx.cache = map[TypeOwner]TypeCacheEntry{}
}
