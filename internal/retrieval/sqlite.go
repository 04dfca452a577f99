package retrieval

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"math"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// SQLiteStore persists documents and their embeddings in a local SQLite
// database. Search decodes every embedding and scans brute-force, which
// is adequate for this pipeline's corpus sizes while surviving restarts.
type SQLiteStore struct {
	db        *sql.DB
	dims      int
	fixedDims int
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	content     TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	doc_type    TEXT NOT NULL DEFAULT '',
	ingested_at INTEGER NOT NULL DEFAULT 0,
	extra       TEXT NOT NULL DEFAULT '{}',
	embedding   BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_doc_type ON documents(doc_type);
`

// NewSQLiteStore opens (creating if needed) the document database at path.
func NewSQLiteStore(path string, dims int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, types.WrapError(types.STORE_FAILED, "failed to open document database", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, types.WrapError(types.STORE_FAILED, "failed to initialize document schema", err)
	}
	return &SQLiteStore{db: db, dims: dims, fixedDims: dims}, nil
}

// Store implements DocumentStore.
func (s *SQLiteStore) Store(ctx context.Context, doc Document, embedding []float64) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if len(embedding) == 0 {
		return types.NewError(types.STORE_FAILED, "embedding cannot be empty")
	}
	if s.dims == 0 {
		s.dims = len(embedding)
	}
	if len(embedding) != s.dims {
		return types.NewErrorf(types.STORE_FAILED,
			"embedding dimensions mismatch: expected %d, got %d", s.dims, len(embedding))
	}

	extra, err := json.Marshal(doc.Metadata.Extra)
	if err != nil {
		return types.WrapError(types.STORE_FAILED, "failed to encode metadata", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, content, source, doc_type, ingested_at, extra, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			source = excluded.source,
			doc_type = excluded.doc_type,
			ingested_at = excluded.ingested_at,
			extra = excluded.extra,
			embedding = excluded.embedding`,
		doc.ID, doc.Content, doc.Metadata.Source, doc.Metadata.DocType,
		doc.Metadata.IngestedAt.Unix(), string(extra), encodeVector(embedding))
	if err != nil {
		return types.WrapError(types.STORE_FAILED, "failed to store document", err)
	}
	return nil
}

// StoreBatch implements DocumentStore. The batch runs in one transaction.
func (s *SQLiteStore) StoreBatch(ctx context.Context, docs []Document, embeddings [][]float64) error {
	if len(docs) != len(embeddings) {
		return types.NewError(types.STORE_FAILED, "documents and embeddings length mismatch")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.WrapError(types.STORE_FAILED, "failed to begin batch", err)
	}
	defer tx.Rollback()

	for i := range docs {
		if err := s.storeTx(ctx, tx, docs[i], embeddings[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return types.WrapError(types.STORE_FAILED, "failed to commit batch", err)
	}
	return nil
}

func (s *SQLiteStore) storeTx(ctx context.Context, tx *sql.Tx, doc Document, embedding []float64) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if s.dims == 0 {
		s.dims = len(embedding)
	}
	if len(embedding) != s.dims {
		return types.NewErrorf(types.STORE_FAILED,
			"embedding dimensions mismatch: expected %d, got %d", s.dims, len(embedding))
	}
	extra, err := json.Marshal(doc.Metadata.Extra)
	if err != nil {
		return types.WrapError(types.STORE_FAILED, "failed to encode metadata", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, content, source, doc_type, ingested_at, extra, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			source = excluded.source,
			doc_type = excluded.doc_type,
			ingested_at = excluded.ingested_at,
			extra = excluded.extra,
			embedding = excluded.embedding`,
		doc.ID, doc.Content, doc.Metadata.Source, doc.Metadata.DocType,
		doc.Metadata.IngestedAt.Unix(), string(extra), encodeVector(embedding))
	if err != nil {
		return types.WrapError(types.STORE_FAILED, "failed to store document", err)
	}
	return nil
}

// Search implements DocumentStore.
func (s *SQLiteStore) Search(ctx context.Context, query SearchQuery) ([]ScoredDocument, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, source, doc_type, ingested_at, extra, embedding FROM documents`)
	if err != nil {
		return nil, types.WrapError(types.SEARCH_FAILED, "document scan failed", err)
	}
	defer rows.Close()

	var results []ScoredDocument
	for rows.Next() {
		doc, embedding, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		if !matchesFilters(doc, query.Filters) {
			continue
		}
		score := cosineSimilarity(query.Embedding, embedding)
		if score < query.MinScore {
			continue
		}
		results = append(results, ScoredDocument{Document: doc, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.SEARCH_FAILED, "document scan failed", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})
	if len(results) > query.TopK {
		results = results[:query.TopK]
	}
	return results, nil
}

func scanDocument(rows *sql.Rows) (Document, []float64, error) {
	var (
		doc        Document
		ingestedAt int64
		extra      string
		blob       []byte
	)
	if err := rows.Scan(&doc.ID, &doc.Content, &doc.Metadata.Source,
		&doc.Metadata.DocType, &ingestedAt, &extra, &blob); err != nil {
		return Document{}, nil, types.WrapError(types.SEARCH_FAILED, "failed to scan document row", err)
	}
	if ingestedAt > 0 {
		doc.Metadata.IngestedAt = time.Unix(ingestedAt, 0).UTC()
	}
	if extra != "" && extra != "{}" && extra != "null" {
		if err := json.Unmarshal([]byte(extra), &doc.Metadata.Extra); err != nil {
			return Document{}, nil, types.WrapError(types.SEARCH_FAILED, "failed to decode metadata", err)
		}
	}
	return doc, decodeVector(blob), nil
}

// Get implements DocumentStore.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, source, doc_type, ingested_at, extra, embedding FROM documents WHERE id = ?`, id)
	if err != nil {
		return nil, types.WrapError(types.SEARCH_FAILED, "document lookup failed", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	doc, _, err := scanDocument(rows)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete implements DocumentStore.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return types.WrapError(types.STORE_FAILED, "failed to delete document", err)
	}
	return nil
}

// Reset implements DocumentStore. Adopted dimensions are forgotten along
// with the documents, so the next stored vector may have a new size.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return types.WrapError(types.STORE_FAILED, "failed to reset document store", err)
	}
	s.dims = s.fixedDims
	return nil
}

// Count implements DocumentStore.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, types.WrapError(types.SEARCH_FAILED, "failed to count documents", err)
	}
	return count, nil
}

// Health implements DocumentStore.
func (s *SQLiteStore) Health(ctx context.Context) types.HealthStatus {
	if err := s.db.PingContext(ctx); err != nil {
		return types.Unhealthy("document database unreachable: " + err.Error())
	}
	return types.Healthy("sqlite document store operational")
}

// Close implements DocumentStore.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// encodeVector packs a float64 slice as little-endian bytes.
func encodeVector(v []float64) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, len(v)*8))
	for _, f := range v {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
		buf.Write(b[:])
	}
	return buf.Bytes()
}

func decodeVector(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}
