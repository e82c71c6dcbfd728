package persist

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmylua-go/semacore/internal/ids"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDeclRoundTrip(t *testing.T) {
	s := openTemp(t)
	id := ids.DeclId{File: 3, Pos: 42}
	require.NoError(t, s.PutDecl(id, []byte("string|nil")))

	got, ok, err := s.GetDecl(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("string|nil"), got)

	_, ok, err = s.GetDecl(ids.DeclId{File: 3, Pos: 43})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutOverwrites(t *testing.T) {
	s := openTemp(t)
	id := ids.TypeDeclId{Namespace: "net", Name: "Socket"}
	require.NoError(t, s.PutTypeDecl(id, []byte("v1")))
	require.NoError(t, s.PutTypeDecl(id, []byte("v2")))

	got, ok, err := s.GetTypeDecl(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), got)
}

func TestSignatureAndDeclKeysDoNotCollide(t *testing.T) {
	s := openTemp(t)
	d := ids.DeclId{File: 1, Pos: 5}
	sig := ids.SignatureId{File: 1, Pos: 5}
	require.NoError(t, s.PutDecl(d, []byte("decl")))
	require.NoError(t, s.PutSignature(sig, []byte("sig")))

	got, ok, err := s.GetDecl(d)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("decl"), got)

	got, ok, err = s.GetSignature(sig)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("sig"), got)
}

func TestStatsAndPurge(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.PutDecl(ids.DeclId{File: 1, Pos: 1}, []byte("a")))
	require.NoError(t, s.PutDecl(ids.DeclId{File: 2, Pos: 1}, []byte("b")))
	require.NoError(t, s.PutSignature(ids.SignatureId{File: 1, Pos: 9}, []byte("c")))

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats["decl"])
	assert.Equal(t, 1, stats["signature"])

	require.NoError(t, s.Purge(1))
	_, ok, err := s.GetDecl(ids.DeclId{File: 1, Pos: 1})
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.GetDecl(ids.DeclId{File: 2, Pos: 1})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSemanticDeclRoundTrip(t *testing.T) {
	s := openTemp(t)
	id := ids.NewTypeDecl(ids.TypeDeclId{Name: "Widget"})
	require.NoError(t, s.PutSemanticDecl(id, []byte("blob")))
	got, ok, err := s.GetSemanticDecl(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("blob"), got)
}
