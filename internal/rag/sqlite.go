// ABOUTME: SQLite-backed vector index: chunks and little-endian float32 blobs in one table
// ABOUTME: Similarity is computed in process over all rows; fine for manual-sized corpora

package rag

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const chunkSchema = `
CREATE TABLE IF NOT EXISTS doc_chunks (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	chunk INTEGER NOT NULL,
	content TEXT NOT NULL,
	embedding BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_doc_chunks_source ON doc_chunks(source);
`

// SQLiteIndex persists chunks in a SQLite database.
type SQLiteIndex struct {
	db *sql.DB
}

// OpenSQLiteIndex opens (creating if needed) the index at path. The parent
// directory must exist.
func OpenSQLiteIndex(ctx context.Context, path string) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, chunkSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing index schema: %w", err)
	}
	return &SQLiteIndex{db: db}, nil
}

// ReplaceSource swaps the chunks for source inside one transaction.
func (s *SQLiteIndex) ReplaceSource(ctx context.Context, source string, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM doc_chunks WHERE source = ?", source); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}
	for _, e := range entries {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO doc_chunks (id, source, chunk, content, embedding) VALUES (?, ?, ?, ?, ?)",
			e.ID, e.Source, e.Chunk, e.Text, encodeVector(e.Vector))
		if err != nil {
			return fmt.Errorf("inserting chunk %d of %s: %w", e.Chunk, source, err)
		}
	}
	return tx.Commit()
}

// DeleteSource drops the chunks for source.
func (s *SQLiteIndex) DeleteSource(ctx context.Context, source string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM doc_chunks WHERE source = ?", source); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// Search scores every stored chunk against vec.
func (s *SQLiteIndex) Search(ctx context.Context, vec []float32, k int) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, source, chunk, content, embedding FROM doc_chunks")
	if err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}
	defer rows.Close()

	var all []Document
	for rows.Next() {
		var d Document
		var blob []byte
		if err := rows.Scan(&d.ID, &d.Source, &d.Chunk, &d.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		stored := decodeVector(blob)
		if len(stored) != len(vec) {
			return nil, mismatch(len(stored), len(vec))
		}
		d.Score = cosine(vec, stored)
		all = append(all, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	if len(all) == 0 {
		return nil, ErrEmptyIndex
	}
	return topK(all, k), nil
}

// Dimension reads the vector length from one stored blob.
func (s *SQLiteIndex) Dimension(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT LENGTH(embedding) FROM doc_chunks LIMIT 1").Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading vector dimension: %w", err)
	}
	return n / 4, nil
}

// Count returns the number of stored chunks.
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM doc_chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func encodeVector(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(x))
	}
	return b
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}
