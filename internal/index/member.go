package index

import (
	"github.com/emmylua-go/semacore/internal/ids"
	"github.com/emmylua-go/semacore/internal/types"
)

// MemberOwnerKind discriminates what a Member belongs to.
type MemberOwnerKind uint8

const (
	MemberOwnerType MemberOwnerKind = iota
	MemberOwnerElement
	MemberOwnerNone
)

// MemberOwner is what a member belongs to: a named type, a literal
// table expression (identified by file+range), or none.
type MemberOwner struct {
	Kind  MemberOwnerKind
	Type  ids.TypeDeclId
	File  ids.FileId
	Range ids.Range
}

func TypeMemberOwner(t ids.TypeDeclId) MemberOwner {
	return MemberOwner{Kind: MemberOwnerType, Type: t}
}
func ElementMemberOwner(file ids.FileId, r ids.Range) MemberOwner {
	return MemberOwner{Kind: MemberOwnerElement, File: file, Range: r}
}

func (o MemberOwner) key() interface{} {
	switch o.Kind {
	case MemberOwnerType:
		return "T:" + o.Type.String()
	case MemberOwnerElement:
		return o.File.String() + "#" + o.Range.String()
	default:
		return "none"
	}
}

// Member is a table field, doc field, or class field.
type Member struct {
	Id            ids.MemberId
	Key           types.MemberKey
	Type          types.Type
	Owner         MemberOwner
	IsFunctionDef bool // true when Type originates from a function overload
}

// MemberIndex groups declarations by (owner, key) into member-items
// whose resolved type is the union of all declared types for that key,
// or, for repeated function declarations, a set treated as an
// overload group by internal/overload.
type MemberIndex struct {
	byOwner map[interface{}]map[string][]*Member
	file    map[ids.FileId][]*Member
}

func NewMemberIndex() *MemberIndex {
	return &MemberIndex{byOwner: map[interface{}]map[string][]*Member{}, file: map[ids.FileId][]*Member{}}
}

func (idx *MemberIndex) Add(m *Member) {
	ok := m.Owner.key()
	byKey, exists := idx.byOwner[ok]
	if !exists {
		byKey = map[string][]*Member{}
		idx.byOwner[ok] = byKey
	}
	byKey[m.Key.String()] = append(byKey[m.Key.String()], m)
	idx.file[m.Id.File] = append(idx.file[m.Id.File], m)
}

// Get finds a member by id.
func (idx *MemberIndex) Get(id ids.MemberId) (*Member, bool) {
	for _, m := range idx.file[id.File] {
		if m.Id == id {
			return m, true
		}
	}
	return nil, false
}

// Members returns every member declared for owner under key.
func (idx *MemberIndex) Members(owner MemberOwner, key types.MemberKey) []*Member {
	byKey, ok := idx.byOwner[owner.key()]
	if !ok {
		return nil
	}
	return byKey[key.String()]
}

// AllMembers returns every declared member (across all keys) for
// owner, used by keyof and mapped-type key enumeration.
func (idx *MemberIndex) AllMembers(owner MemberOwner) []*Member {
	byKey, ok := idx.byOwner[owner.key()]
	if !ok {
		return nil
	}
	var out []*Member
	for _, ms := range byKey {
		out = append(out, ms...)
	}
	return out
}

// Resolved returns the member-item's resolved type: the union of every
// declared type for (owner, key). Function overloads merge into a
// union here; internal/overload picks among them at call sites.
func (idx *MemberIndex) Resolved(owner MemberOwner, key types.MemberKey) (types.Type, bool) {
	ms := idx.Members(owner, key)
	if len(ms) == 0 {
		return nil, false
	}
	if len(ms) == 1 {
		return ms[0].Type, true
	}
	ts := make([]types.Type, len(ms))
	for i, m := range ms {
		ts[i] = m.Type
	}
	return types.NewUnion(ts), true
}

func (idx *MemberIndex) Remove(file ids.FileId) {
	for _, m := range idx.file[file] {
		byKey, ok := idx.byOwner[m.Owner.key()]
		if !ok {
			continue
		}
		ks := m.Key.String()
		filtered := byKey[ks][:0:0]
		for _, cand := range byKey[ks] {
			if cand.Id.File != file {
				filtered = append(filtered, cand)
			}
		}
		if len(filtered) == 0 {
			delete(byKey, ks)
		} else {
			byKey[ks] = filtered
		}
	}
	delete(idx.file, file)
}

func (idx *MemberIndex) Clear() {
	idx.byOwner = map[interface{}]map[string][]*Member{}
	idx.file = map[ids.FileId][]*Member{}
}
