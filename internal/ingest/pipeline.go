// Package ingest rebuilds the vector index from a corpus of text files.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"heritage-rag/internal/domain"
	"heritage-rag/internal/embedding"
	"heritage-rag/internal/logger"
	"heritage-rag/internal/metadata"
	"heritage-rag/internal/vectorstore"
)

// DefaultBatchSize is the number of entries inserted per Add call.
const DefaultBatchSize = 50

// Chunker splits a document into chunks that inherit its metadata.
type Chunker interface {
	Chunk(text string, meta domain.Metadata) []domain.Chunk
}

type Config struct {
	Collection string
	BatchSize  int
}

// Report summarises one rebuild.
type Report struct {
	Documents int
	Skipped   []string
	Chunks    int
	Batches   int
}

// Pipeline performs full reingestion. Incremental updates are not supported.
type Pipeline struct {
	extractor *metadata.Extractor
	chunker   Chunker
	embedder  embedding.Embedder
	index     vectorstore.Index
	cfg       Config
	now       func() time.Time
}

func New(extractor *metadata.Extractor, chunker Chunker, embedder embedding.Embedder, index vectorstore.Index, cfg Config) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Pipeline{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for chunk IDs.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Rebuild reads every *.txt file at the root of corpus, chunks and embeds
// them, then replaces the collection. When no chunk is produced the index
// is left untouched. A failed insert removes the collection rather than
// leaving it half filled.
func (p *Pipeline) Rebuild(ctx context.Context, corpus fs.FS) (Report, error) {
	logger.Section("Ingestion")
	var report Report

	files, err := listText(corpus)
	if err != nil {
		return report, fmt.Errorf("listing corpus: %w", err)
	}
	logger.Info("%d fichiers trouvés", len(files))

	var chunks []domain.Chunk
	for _, name := range files {
		data, err := fs.ReadFile(corpus, name)
		if err != nil {
			logger.Warn("lecture impossible de %s: %v", name, err)
			report.Skipped = append(report.Skipped, name)
			continue
		}
		content := string(data)
		if !utf8.Valid(data) {
			logger.Debug("octets non UTF-8 supprimés dans %s", name)
			content = strings.ToValidUTF8(content, "")
		}
		doc := domain.Document{ID: name, Content: content}
		doc.Metadata = p.extractor.Extract(doc.Content, name)
		docChunks := p.chunker.Chunk(doc.Content, doc.Metadata)
		logger.Debug("%s: %d chunks (site=%s, période=%s)", name, len(docChunks),
			domain.Value(doc.Metadata.Site, "N/A"), domain.Value(doc.Metadata.Period, "N/A"))
		chunks = append(chunks, docChunks...)
		report.Documents++
	}

	if len(chunks) == 0 {
		logger.Warn("aucun chunk à indexer, index inchangé")
		return report, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	logger.Info("Création des embeddings pour %d chunks avec %s", len(chunks), p.embedder.Name())
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return report, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return report, fmt.Errorf("embedding chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	ts := strconv.FormatInt(p.now().Unix(), 10)
	entries := make([]domain.IndexEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = domain.IndexEntry{
			ID:        "chunk_" + ts + "_" + strconv.Itoa(i),
			Embedding: vectors[i],
			Document:  c.Text,
			Metadata:  c.Metadata,
		}
	}

	if err := p.index.DeleteCollection(ctx, p.cfg.Collection); err != nil {
		return report, fmt.Errorf("deleting collection: %w", err)
	}
	coll, err := p.index.CreateCollection(ctx, p.cfg.Collection, vectorstore.CollectionOptions{
		Dimension: len(vectors[0]),
		Metadata: map[string]string{
			"embedder":   p.embedder.Name(),
			"created_at": ts,
		},
	})
	if err != nil {
		return report, fmt.Errorf("creating collection: %w", err)
	}

	for start := 0; start < len(entries); start += p.cfg.BatchSize {
		end := min(start+p.cfg.BatchSize, len(entries))
		if err := coll.Add(ctx, entries[start:end]); err != nil {
			logger.Error("lot %d en échec après %d/%d chunks, suppression de l'index partiel", report.Batches+1, start, len(entries))
			if derr := p.index.DeleteCollection(ctx, p.cfg.Collection); derr != nil {
				logger.Error("suppression de %s impossible: %v", p.cfg.Collection, derr)
			}
			return report, fmt.Errorf("inserting batch %d: %w", report.Batches, err)
		}
		report.Batches++
		logger.Debug("lot %d inséré (%d/%d)", report.Batches, end, len(entries))
	}

	report.Chunks = len(entries)
	logger.Info("%d chunks indexés dans %s", report.Chunks, p.cfg.Collection)
	return report, nil
}

func listText(corpus fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(corpus, ".")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}
