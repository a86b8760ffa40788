package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/chatdocs/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
)

// DBFile is the database file name inside the persist directory.
const DBFile = "chatdocs.db"

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Index metadata keys.
const (
	metaModel     = "embedding_model"
	metaDims      = "dimensions"
	metaUpdatedAt = "updated_at"
)

// Ensure Store implements the interface.
var _ driven.VectorIndex = (*Store)(nil)

// Store is a SQLite-backed vector index.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the index in persistDir.
func NewStore(persistDir string) (*Store, error) {
	if persistDir == "" {
		persistDir = domain.DefaultPersistDir
	}

	if err := os.MkdirAll(persistDir, 0700); err != nil {
		return nil, fmt.Errorf("creating persist directory: %w", err)
	}

	dbPath := filepath.Join(persistDir, DBFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
// Each migration records its own version in schema_migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Records ====================

// Add appends chunks in one transaction. Chunks whose ID already exists are skipped.
// The whole batch is rejected if any embedding is missing or of the wrong size.
func (s *Store) Add(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	_, dims, err := s.model(ctx)
	if err != nil {
		return 0, err
	}
	if err := checkEmbeddings(chunks, dims); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	added, err := insertChunks(ctx, tx, chunks)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return added, nil
}

// Replace clears the index, records the model and inserts chunks in one
// transaction. On any failure the previous records and model are kept.
// An empty model leaves the cleared index without one.
func (s *Store) Replace(ctx context.Context, model string, dims int, chunks []domain.Chunk) (int, error) {
	if err := checkEmbeddings(chunks, dims); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta"); err != nil {
		return 0, fmt.Errorf("deleting index metadata: %w", err)
	}
	if model != "" {
		if err := setMeta(ctx, tx, metaModel, model); err != nil {
			return 0, err
		}
		if err := setMeta(ctx, tx, metaDims, strconv.Itoa(dims)); err != nil {
			return 0, err
		}
	}

	added, err := insertChunks(ctx, tx, chunks)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return added, nil
}

// checkEmbeddings rejects chunks without an embedding or, when dims > 0,
// with an embedding of another size.
func checkEmbeddings(chunks []domain.Chunk, dims int) error {
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunks[i].ID)
		}
		if dims > 0 && len(chunks[i].Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, index has %d",
				domain.ErrIndexMismatch, chunks[i].ID, len(chunks[i].Embedding), dims)
		}
	}
	return nil
}

// insertChunks writes chunks within tx and bumps updated_at when any row is new.
func insertChunks(ctx context.Context, tx *sql.Tx, chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, source, content, position, char_offset, metadata, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	added := 0
	for i := range chunks {
		c := &chunks[i]
		metadataJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return 0, fmt.Errorf("marshalling metadata: %w", err)
		}

		res, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.Source(), c.Content,
			c.Position, c.Offset, string(metadataJSON), float32SliceToBytes(c.Embedding), now)
		if err != nil {
			return 0, fmt.Errorf("saving chunk: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("saving chunk: %w", err)
		}
		added += int(n)
	}

	if added > 0 {
		if err := setMeta(ctx, tx, metaUpdatedAt, now.Format(time.RFC3339Nano)); err != nil {
			return 0, err
		}
	}
	return added, nil
}

// Search scores every record by cosine similarity and returns the best k.
// Rows are scanned in insertion order so ties keep that order.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error) {
	_, dims, err := s.model(ctx)
	if err != nil {
		return nil, err
	}
	if dims > 0 && len(query) != dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrIndexMismatch, len(query), dims)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, source, content, position, char_offset, metadata, embedding
		FROM chunks ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	hits := make([]domain.RetrievedChunk, 0)
	for rows.Next() {
		c, err := scanChunk(rows, true)
		if err != nil {
			return nil, err
		}
		score := domain.CosineSimilarity(query, c.Embedding)
		c.Embedding = nil
		hits = append(hits, domain.RetrievedChunk{Chunk: *c, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return domain.TopK(hits, k), nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Peek returns up to limit records in insertion order, without embeddings.
func (s *Store) Peek(ctx context.Context, limit int) ([]domain.Chunk, error) {
	if limit < 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, source, content, position, char_offset, metadata, embedding
		FROM chunks ORDER BY seq LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks := make([]domain.Chunk, 0)
	for rows.Next() {
		c, err := scanChunk(rows, false)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// ==================== Metadata ====================

// EnsureModel records the model on first use and rejects a different one later.
func (s *Store) EnsureModel(ctx context.Context, model string, dims int) error {
	current, currentDims, err := s.model(ctx)
	if err != nil {
		return err
	}

	if current == "" {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := setMeta(ctx, tx, metaModel, model); err != nil {
			return err
		}
		if err := setMeta(ctx, tx, metaDims, strconv.Itoa(dims)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing transaction: %w", err)
		}
		return nil
	}

	if current != model || currentDims != dims {
		return fmt.Errorf("%w: index uses %s (%d), configured %s (%d). Re-run ingest with --rebuild",
			domain.ErrIndexMismatch, current, currentDims, model, dims)
	}
	return nil
}

// Stats summarises the index.
func (s *Store) Stats(ctx context.Context) (*domain.IndexStats, error) {
	stats := &domain.IndexStats{Location: s.path}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT source) FROM chunks").Scan(&stats.Count, &stats.Sources)
	if err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}

	stats.EmbeddingModel, stats.Dimensions, err = s.model(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := s.meta(ctx, metaUpdatedAt)
	if err != nil {
		return nil, err
	}
	if updated != "" {
		if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			stats.UpdatedAt = t
		}
	}

	return stats, nil
}

// model returns the recorded embedding model and dimension, or zero values.
func (s *Store) model(ctx context.Context) (string, int, error) {
	model, err := s.meta(ctx, metaModel)
	if err != nil {
		return "", 0, err
	}
	dimsStr, err := s.meta(ctx, metaDims)
	if err != nil {
		return "", 0, err
	}
	dims := 0
	if dimsStr != "" {
		if dims, err = strconv.Atoi(dimsStr); err != nil {
			return "", 0, fmt.Errorf("parsing dimensions %q: %w", dimsStr, err)
		}
	}
	return model, dims, nil
}

func (s *Store) meta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM index_meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading index metadata %s: %w", key, err)
	}
	return value, nil
}

func setMeta(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("saving index metadata %s: %w", key, err)
	}
	return nil
}

// ==================== Helpers ====================

// scanChunk scans a chunk row. The embedding is decoded only when withEmbedding is set.
func scanChunk(rows *sql.Rows, withEmbedding bool) (*domain.Chunk, error) {
	var c domain.Chunk
	var metadataJSON sql.NullString
	var embeddingBlob []byte

	if err := rows.Scan(&c.ID, &c.DocumentID, &c.SourceID, &c.Content,
		&c.Position, &c.Offset, &metadataJSON, &embeddingBlob); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	if withEmbedding {
		c.Embedding = bytesToFloat32Slice(embeddingBlob)
	}

	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON.String), &c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}

	return &c, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
