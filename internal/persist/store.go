// Package persist is the on-disk analysis cache: a
// key-value store whose keys are the stable string serializations of
// DeclId, SignatureId, TypeDeclId and SemanticDeclId, so a host
// process can carry analysis results across restarts. Backed by
// modernc.org/sqlite: pure Go, so a language-server host needs no C
// toolchain.
package persist

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/emmylua-go/semacore/internal/ids"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_cache (
	key   TEXT PRIMARY KEY,
	kind  TEXT NOT NULL,
	value BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_kind ON analysis_cache(kind);
`

// Store is one open cache database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the cache at path (":memory:" works for
// tests).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persist: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) put(key, kind string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO analysis_cache(key, kind, value) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET kind=excluded.kind, value=excluded.value`,
		key, kind, value)
	if err != nil {
		return fmt.Errorf("persist: put %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM analysis_cache WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("persist: get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM analysis_cache WHERE key = ?`, key)
	return err
}

// PutDecl stores a blob under a DeclId's stable serialization.
func (s *Store) PutDecl(id ids.DeclId, value []byte) error {
	return s.put(id.String(), "decl", value)
}

func (s *Store) GetDecl(id ids.DeclId) ([]byte, bool, error) {
	return s.get(id.String())
}

func (s *Store) DeleteDecl(id ids.DeclId) error { return s.delete(id.String()) }

// PutSignature stores a blob under a SignatureId's serialization.
// Decl and signature keys share the "<file>|<pos>" space, so kinds
// disambiguate listings.
func (s *Store) PutSignature(id ids.SignatureId, value []byte) error {
	return s.put("sig:"+id.String(), "signature", value)
}

func (s *Store) GetSignature(id ids.SignatureId) ([]byte, bool, error) {
	return s.get("sig:" + id.String())
}

// PutTypeDecl stores a blob under a TypeDeclId's dotted-name
// serialization.
func (s *Store) PutTypeDecl(id ids.TypeDeclId, value []byte) error {
	return s.put("type:"+id.String(), "typedecl", value)
}

func (s *Store) GetTypeDecl(id ids.TypeDeclId) ([]byte, bool, error) {
	return s.get("type:" + id.String())
}

// PutSemanticDecl stores a blob under a SemanticDeclId's
// "<kind>:<payload>" serialization.
func (s *Store) PutSemanticDecl(id ids.SemanticDeclId, value []byte) error {
	return s.put(id.String(), "semantic", value)
}

func (s *Store) GetSemanticDecl(id ids.SemanticDeclId) ([]byte, bool, error) {
	return s.get(id.String())
}

// Stats summarizes the cache contents by kind.
func (s *Store) Stats() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT kind, COUNT(*) FROM analysis_cache GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("persist: stats: %w", err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

// Purge drops every entry whose key starts with the given file id
// prefix, mirroring DbIndex.Remove's per-file invalidation.
func (s *Store) Purge(file ids.FileId) error {
	prefix := file.String() + "|%"
	_, err := s.db.Exec(
		`DELETE FROM analysis_cache WHERE key LIKE ? OR key LIKE ?`,
		prefix, "sig:"+prefix)
	return err
}
