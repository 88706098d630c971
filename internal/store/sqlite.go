package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobdigest/internal/model"
)

// SQLiteCache stores embeddings in a SQLite database keyed by model+text hash.
// It caches model outputs only; no run results are stored.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens (or creates) a SQLite database at dbPath and ensures the
// embeddings table exists.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS embeddings (
		cache_key  TEXT PRIMARY KEY,
		model      TEXT NOT NULL,
		dim        INTEGER NOT NULL,
		vector     BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating embeddings table: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

// Get returns the cached vector for key, if present.
func (s *SQLiteCache) Get(key string) (model.Vector, bool, error) {
	var dim int
	var blob []byte
	err := s.db.QueryRow("SELECT dim, vector FROM embeddings WHERE cache_key = ?", key).Scan(&dim, &blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading embedding %s: %w", key, err)
	}

	v, err := decodeVector(blob, dim)
	if err != nil {
		return nil, false, fmt.Errorf("reading embedding %s: %w", key, err)
	}
	return v, true, nil
}

// Put stores v under key. Existing entries are replaced.
func (s *SQLiteCache) Put(key string, modelName string, v model.Vector) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO embeddings (cache_key, model, dim, vector) VALUES (?, ?, ?, ?)",
		key, modelName, len(v), encodeVector(v),
	)
	if err != nil {
		return fmt.Errorf("writing embedding %s: %w", key, err)
	}
	return nil
}

// Cleanup deletes cache entries older than the given duration.
func (s *SQLiteCache) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan)
	_, err := s.db.Exec("DELETE FROM embeddings WHERE created_at < ?", cutoff.Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("cleaning up embeddings older than %v: %w", olderThan, err)
	}
	return nil
}

// Count returns the number of cached embeddings.
func (s *SQLiteCache) Count() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM embeddings").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *SQLiteCache) Close() error {
	return s.db.Close()
}

// encodeVector packs v as little-endian float32 values.
func encodeVector(v model.Vector) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte, dim int) (model.Vector, error) {
	if len(buf) != 4*dim {
		return nil, fmt.Errorf("vector blob has %d bytes, want %d", len(buf), 4*dim)
	}
	v := make(model.Vector, dim)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v, nil
}
