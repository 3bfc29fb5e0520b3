package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	rperrors "github.com/repocks/repocks/internal/errors"
)

// Session is an exclusive handle on a collection file. Opening a session
// acquires the sidecar lock; closing it releases the lock. All reads and
// writes within one sync pass or query go through a single session.
type Session struct {
	mu     sync.Mutex
	db     *sql.DB
	lock   *FileLock
	path   string
	dims   int
	closed bool
}

// Open acquires the collection lock, opens the collection file (creating it
// if absent), and ensures the schema exists. The lock is released if any
// later step fails, so a failed Open never leaves the collection locked.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Path == "" {
		return nil, rperrors.ValidationError("collection path is required", nil)
	}
	if opts.Dimensions <= 0 {
		return nil, rperrors.ValidationError("collection dimensions must be positive", nil)
	}

	lockPath := opts.LockPath
	if lockPath == "" {
		lockPath = opts.Path + ".lock"
	}

	lock := NewFileLock(lockPath)
	if err := lock.Acquire(ctx); err != nil {
		return nil, err
	}

	dir := filepath.Dir(opts.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = lock.Release()
		return nil, rperrors.StorageError(fmt.Sprintf("failed to create collection directory %s", dir), err)
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		_ = lock.Release()
		return nil, rperrors.StorageError("failed to open collection file", err)
	}

	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// WAL mode must be set via PRAGMA for modernc.org/sqlite
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			_ = lock.Release()
			return nil, rperrors.StorageError("failed to set pragma", err)
		}
	}

	s := &Session{
		db:   db,
		lock: lock,
		path: opts.Path,
		dims: opts.Dimensions,
	}

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		_ = lock.Release()
		return nil, rperrors.StorageError("failed to initialize collection schema", err)
	}

	slog.Debug("collection_opened",
		slog.String("path", opts.Path),
		slog.Int("dimensions", opts.Dimensions))

	return s, nil
}

// initSchema creates the documents table. Safe to run on every open.
func (s *Session) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		embedding BLOB,
		metadata TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Upsert inserts or replaces documents by id. Content, embedding, and
// metadata are overwritten; created_at is preserved for existing rows.
// Every embedding must match the collection dimension.
func (s *Session) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return rperrors.StorageError("session is closed", nil)
	}

	// Validate all dimensions before touching the collection
	for _, doc := range docs {
		if doc.Embedding != nil && len(doc.Embedding) != s.dims {
			return rperrors.DimensionMismatchError(s.dims, len(doc.Embedding)).
				WithDetail("id", doc.ID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rperrors.StorageError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, content, embedding, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			embedding = excluded.embedding,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`)
	if err != nil {
		return rperrors.StorageError("failed to prepare upsert", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, doc := range docs {
		var blob []byte
		if doc.Embedding != nil {
			blob = encodeVector(doc.Embedding)
		}

		var meta any
		if doc.Metadata != nil {
			raw, err := json.Marshal(doc.Metadata)
			if err != nil {
				return rperrors.StorageError(fmt.Sprintf("failed to encode metadata for %s", doc.ID), err)
			}
			meta = string(raw)
		}

		if _, err := stmt.ExecContext(ctx, doc.ID, doc.Content, blob, meta, now, now); err != nil {
			return rperrors.StorageError(fmt.Sprintf("failed to upsert document %s", doc.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return rperrors.StorageError("failed to commit upsert", err)
	}

	return nil
}

// Delete removes documents by id. Unknown ids are ignored. An empty id set
// is a no-op and succeeds without touching the collection.
func (s *Session) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return rperrors.StorageError("session is closed", nil)
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf("DELETE FROM documents WHERE id IN (%s)",
		strings.Join(placeholders, ","))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return rperrors.StorageError("failed to delete documents", err)
	}

	return nil
}

// ListIDs returns all stored document ids, sorted ascending.
func (s *Session) ListIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, rperrors.StorageError("session is closed", nil)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM documents ORDER BY id")
	if err != nil {
		return nil, rperrors.StorageError("failed to list document ids", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, rperrors.StorageError("failed to scan document id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, rperrors.StorageError("failed to iterate document ids", err)
	}

	return ids, nil
}

// Get returns a single document by id, or (nil, nil) if absent.
func (s *Session) Get(ctx context.Context, id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, rperrors.StorageError("session is closed", nil)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, content, embedding, metadata, created_at, updated_at
		FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, rperrors.StorageError(fmt.Sprintf("failed to read document %s", id), err)
	}
	return doc, nil
}

// Query runs a brute-force cosine similarity search over all embedded
// documents and returns the top-K results ordered by descending score,
// with ties broken by ascending id. topK <= 0 yields an empty result.
func (s *Session) Query(ctx context.Context, vector []float32, topK int) ([]QueryResult, error) {
	if topK <= 0 {
		return []QueryResult{}, nil
	}
	if len(vector) != s.dims {
		return nil, rperrors.DimensionMismatchError(s.dims, len(vector))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, rperrors.StorageError("session is closed", nil)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, embedding, metadata
		FROM documents WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, rperrors.StorageError("failed to query documents", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			id      string
			content string
			blob    []byte
			meta    sql.NullString
		)
		if err := rows.Scan(&id, &content, &blob, &meta); err != nil {
			return nil, rperrors.StorageError("failed to scan document", err)
		}

		embedding, err := decodeVector(blob)
		if err != nil {
			return nil, rperrors.StorageError(fmt.Sprintf("corrupt embedding for document %s", id), err)
		}
		if len(embedding) != s.dims {
			return nil, rperrors.DimensionMismatchError(s.dims, len(embedding)).
				WithDetail("id", id)
		}

		metadata, err := decodeMetadata(meta)
		if err != nil {
			return nil, rperrors.StorageError(fmt.Sprintf("corrupt metadata for document %s", id), err)
		}

		results = append(results, QueryResult{
			ID:       id,
			Score:    cosineSimilarity(vector, embedding),
			Content:  content,
			Metadata: metadata,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, rperrors.StorageError("failed to iterate documents", err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	if results == nil {
		results = []QueryResult{}
	}

	return results, nil
}

// Count returns the total number of stored documents.
func (s *Session) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, rperrors.StorageError("session is closed", nil)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return 0, rperrors.StorageError("failed to count documents", err)
	}
	return count, nil
}

// Stats returns collection statistics.
func (s *Session) Stats(ctx context.Context) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, rperrors.StorageError("session is closed", nil)
	}

	stats := &Stats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(embedding) FROM documents`).
		Scan(&stats.DocumentCount, &stats.EmbeddedCount)
	if err != nil {
		return nil, rperrors.StorageError("failed to read collection stats", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
	}

	return stats, nil
}

// Dimensions returns the collection's fixed embedding dimension.
func (s *Session) Dimensions() int {
	return s.dims
}

// Close closes the collection and releases the sidecar lock.
// Safe to call multiple times.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	dbErr := s.db.Close()
	lockErr := s.lock.Release()

	if dbErr != nil {
		return rperrors.StorageError("failed to close collection", dbErr)
	}
	return lockErr
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var (
		doc       Document
		blob      []byte
		meta      sql.NullString
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&doc.ID, &doc.Content, &blob, &meta, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if blob != nil {
		embedding, err := decodeVector(blob)
		if err != nil {
			return nil, err
		}
		doc.Embedding = embedding
	}

	metadata, err := decodeMetadata(meta)
	if err != nil {
		return nil, err
	}
	doc.Metadata = metadata

	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		doc.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		doc.UpdatedAt = t
	}

	return &doc, nil
}

func decodeMetadata(meta sql.NullString) (map[string]any, error) {
	if !meta.Valid || meta.String == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(meta.String), &m); err != nil {
		return nil, err
	}
	return m, nil
}
