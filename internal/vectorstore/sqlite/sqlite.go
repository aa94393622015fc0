// Package sqlite is a persistent vector index backed by a single SQLite
// file. Vectors are stored as little-endian float32 blobs and searched by
// brute force, which is adequate for corpora of a few thousand chunks.
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
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"heritage-rag/internal/domain"
	"heritage-rag/internal/vectorstore"
	"heritage-rag/internal/vectorstore/sqlite/migrations"
)

// FileName is the database file created inside the index directory.
const FileName = "index.db"

// Index is a SQLite-backed vectorstore.Index.
type Index struct {
	db   *sql.DB
	path string
}

var _ vectorstore.Index = (*Index)(nil)

// NewIndex opens (or creates) the index in dir.
func NewIndex(dir string) (*Index, error) {
	if dir == "" {
		return nil, errors.New("empty index directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	dbPath := filepath.Join(dir, FileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	x := &Index{db: db, path: dbPath}
	if err := x.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return x, nil
}

// Path returns the database file path.
func (x *Index) Path() string { return x.path }

func (x *Index) Close() error { return x.db.Close() }

func (x *Index) migrate(fsys embed.FS) error {
	_, err := x.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := x.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
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
		if _, err := x.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := x.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

func (x *Index) CreateCollection(ctx context.Context, name string, opts vectorstore.CollectionOptions) (vectorstore.Collection, error) {
	if name == "" {
		return nil, errors.New("empty collection name")
	}
	meta := opts.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshalling collection metadata: %w", err)
	}
	_, err = x.db.ExecContext(ctx,
		"INSERT INTO collections (name, dimension, metadata) VALUES (?, ?, ?)",
		name, opts.Dimension, string(metaJSON))
	if err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", name, err)
	}
	return &Collection{db: x.db, name: name, dimension: opts.Dimension}, nil
}

func (x *Index) DeleteCollection(ctx context.Context, name string) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE collection = ?", name); err != nil {
		return fmt.Errorf("deleting entries of %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting collection %s: %w", name, err)
	}
	return tx.Commit()
}

func (x *Index) GetCollection(ctx context.Context, name string) (vectorstore.Collection, error) {
	var dimension int
	err := x.db.QueryRowContext(ctx, "SELECT dimension FROM collections WHERE name = ?", name).Scan(&dimension)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, vectorstore.ErrCollectionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting collection %s: %w", name, err)
	}
	return &Collection{db: x.db, name: name, dimension: dimension}, nil
}

// Collection is a handle on one named collection.
type Collection struct {
	db        *sql.DB
	name      string
	dimension int
}

func (c *Collection) Name() string { return c.name }

// Add inserts entries in one transaction; entries keep insertion order for
// tie-breaking in Query.
func (c *Collection) Add(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), -1) + 1 FROM entries WHERE collection = ?", c.name).Scan(&seq); err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO entries (collection, id, seq, document, metadata, embedding) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if c.dimension > 0 && len(e.Embedding) != c.dimension {
			return fmt.Errorf("entry %s: vector dimension %d, want %d", e.ID, len(e.Embedding), c.dimension)
		}
		metaJSON, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for %s: %w", e.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, c.name, e.ID, seq+i, e.Document, string(metaJSON), float32SliceToBytes(e.Embedding)); err != nil {
			return fmt.Errorf("inserting %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

func (c *Collection) Query(ctx context.Context, embedding []float32, n int) ([]vectorstore.Neighbor, error) {
	if c.dimension > 0 && len(embedding) != c.dimension {
		return nil, fmt.Errorf("query has %d dimensions, want %d: %w", len(embedding), c.dimension, vectorstore.ErrDimensionMismatch)
	}
	if n <= 0 {
		return nil, nil
	}
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, document, metadata, embedding FROM entries WHERE collection = ? ORDER BY seq", c.name)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", c.name, err)
	}
	defer rows.Close()

	var out []vectorstore.Neighbor
	for rows.Next() {
		var (
			nb       vectorstore.Neighbor
			metaJSON string
			blob     []byte
		)
		if err := rows.Scan(&nb.ID, &nb.Document, &metaJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &nb.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata of %s: %w", nb.ID, err)
		}
		nb.Distance = vectorstore.SquaredL2(bytesToFloat32Slice(blob), embedding)
		out = append(out, nb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if n < len(out) {
		out = out[:n]
	}
	return out, nil
}

func (c *Collection) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE collection = ?", c.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", c.name, err)
	}
	return n, nil
}

// float32SliceToBytes converts []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
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
