package cli

import (
	"fmt"
	"io/fs"
	"os"

	"heritage-rag/internal/chunker"
	"heritage-rag/internal/config"
	"heritage-rag/internal/embedding"
	"heritage-rag/internal/embedding/hashing"
	embedollama "heritage-rag/internal/embedding/ollama"
	embedopenai "heritage-rag/internal/embedding/openai"
	"heritage-rag/internal/generator"
	genollama "heritage-rag/internal/generator/ollama"
	genopenai "heritage-rag/internal/generator/openai"
	"heritage-rag/internal/ingest"
	"heritage-rag/internal/metadata"
	"heritage-rag/internal/retriever"
	"heritage-rag/internal/scope"
	"heritage-rag/internal/service"
	"heritage-rag/internal/summarizer"
	"heritage-rag/internal/vectorstore"
	"heritage-rag/internal/vectorstore/memory"
	"heritage-rag/internal/vectorstore/qdrant"
	"heritage-rag/internal/vectorstore/sqlite"
)

// App holds the components assembled from one configuration.
type App struct {
	Config     *config.AppConfig
	Service    *service.RAGService
	Embedder   embedding.Embedder
	Index      vectorstore.Index
	Generator  generator.Generator
	Summarizer *summarizer.FrequencySummarizer
}

// Close releases the index.
func (a *App) Close() error {
	return a.Index.Close()
}

// Corpus opens the configured corpus directory.
func (a *App) Corpus() (fs.FS, error) {
	path := a.Config.Corpus.Path
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus %s is not a directory", path)
	}
	return os.DirFS(path), nil
}

// Build wires every component named by cfg.
func Build(cfg *config.AppConfig) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	gen, err := newGenerator(cfg)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	index, err := newIndex(cfg)
	if err != nil {
		return nil, fmt.Errorf("vector store: %w", err)
	}

	collection := cfg.VectorStore.Collection
	pipeline := ingest.New(
		metadata.New(),
		chunker.NewCharChunker(cfg.Chunker.Size, cfg.Chunker.Overlap, cfg.Chunker.MinLength),
		emb,
		index,
		ingest.Config{Collection: collection, BatchSize: cfg.VectorStore.BatchSize},
	)
	ret := retriever.New(emb, index, retriever.Config{
		Collection: collection,
		TopK:       cfg.Retrieval.TopK,
		FetchK:     cfg.Retrieval.FetchK,
		Threshold:  cfg.Retrieval.Threshold,
	})
	svc := service.NewRAGService(scope.NewClassifier(), ret, gen, pipeline, index, service.Config{
		Collection: collection,
		Generation: generator.Options{
			Temperature: cfg.Generator.Temperature,
			MaxTokens:   cfg.Generator.MaxTokens,
			TopK:        cfg.Generator.TopK,
			TopP:        cfg.Generator.TopP,
		},
	})
	return &App{
		Config:     cfg,
		Service:    svc,
		Embedder:   emb,
		Index:      index,
		Generator:  gen,
		Summarizer: summarizer.NewFrequencySummarizer(),
	}, nil
}

func newEmbedder(cfg *config.AppConfig) (embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case config.EmbedderHashing:
		return hashing.NewEmbedder(cfg.Embedder.Dimension), nil
	case config.EmbedderOpenAI:
		oc := cfg.Embedder.OpenAI
		if oc == nil {
			return nil, errMissing("embedder.openai")
		}
		return embedopenai.NewClient(embedopenai.Config{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Model:     cfg.Embedder.Model,
			BatchSize: cfg.Embedder.BatchSize,
			Timeout:   config.Seconds(oc.TimeoutSecs),
		})
	default:
		return embedollama.NewClient(embedollama.Config{
			Host:      cfg.Ollama.Host,
			Model:     cfg.Embedder.Model,
			BatchSize: cfg.Embedder.BatchSize,
			Timeout:   config.Seconds(cfg.Ollama.TimeoutSecs),
		})
	}
}

func newGenerator(cfg *config.AppConfig) (generator.Generator, error) {
	if cfg.Generator.Type == config.GeneratorOpenAI {
		oc := cfg.Generator.OpenAI
		if oc == nil {
			return nil, errMissing("generator.openai")
		}
		return genopenai.New(genopenai.Config{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Model:     cfg.Generator.Model,
			Timeout:   config.Seconds(oc.TimeoutSecs),
		})
	}
	return genollama.New(genollama.Config{
		Host:    cfg.Ollama.Host,
		Model:   cfg.Generator.Model,
		Timeout: config.Seconds(cfg.Ollama.TimeoutSecs),
	})
}

func newIndex(cfg *config.AppConfig) (vectorstore.Index, error) {
	switch cfg.VectorStore.Type {
	case config.StoreMemory:
		return memory.NewIndex(), nil
	case config.StoreQdrant:
		qc := cfg.VectorStore.Qdrant
		if qc == nil {
			return nil, errMissing("vector_store.qdrant")
		}
		return qdrant.NewIndex(qdrant.Config{
			Addr:    qc.Addr,
			APIKey:  qc.APIKey,
			Timeout: config.Seconds(qc.TimeoutSecs),
		})
	default:
		return sqlite.NewIndex(cfg.VectorStore.Path)
	}
}

func errMissing(section string) error {
	return fmt.Errorf("%w: section %s missing", config.ErrInvalid, section)
}
