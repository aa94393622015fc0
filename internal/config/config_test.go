package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvOllamaHost, EnvCorpusPath, EnvIndexPath} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, filepath.Join("data", "corpus_txt"), cfg.Corpus.Path)
	assert.Equal(t, "tunisian_archaeology", cfg.VectorStore.Collection)
	assert.Equal(t, 600, cfg.Chunker.Size)
	assert.Equal(t, 150, cfg.Chunker.Overlap)
	assert.Equal(t, 100, cfg.Chunker.MinLength)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 10, cfg.Retrieval.FetchK)
	assert.InDelta(t, 0.35, cfg.Retrieval.Threshold, 1e-9)
	assert.Equal(t, "llama3", cfg.Generator.Model)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLKeepsUnsetDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
retrieval:
  top_k: 3
generator:
  model: mistral
  temperature: 0.1
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 10, cfg.Retrieval.FetchK)
	assert.Equal(t, "mistral", cfg.Generator.Model)
	assert.InDelta(t, 0.1, cfg.Generator.Temperature, 1e-9)
	assert.Equal(t, 512, cfg.Generator.MaxTokens)
	assert.Equal(t, StoreSQLite, cfg.VectorStore.Type)
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[vector_store]
type = "qdrant"

[embedder]
type = "openai"

[chunker]
size = 400
overlap = 0
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Chunker.Size)
	assert.Zero(t, cfg.Chunker.Overlap)
	assert.Equal(t, StoreQdrant, cfg.VectorStore.Type)
	require.NotNil(t, cfg.VectorStore.Qdrant)
	assert.Equal(t, "localhost:6334", cfg.VectorStore.Qdrant.Addr)
	require.NotNil(t, cfg.Embedder.OpenAI)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
}

func TestLoad_BadSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvOllamaHost, "10.0.0.5:11434")
	t.Setenv(EnvCorpusPath, "/srv/corpus")
	t.Setenv(EnvIndexPath, "/srv/index")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:11434", cfg.Ollama.Host)
	assert.Equal(t, "/srv/corpus", cfg.Corpus.Path)
	assert.Equal(t, "/srv/index", cfg.VectorStore.Path)
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := Default()
			cfg.Retrieval.Threshold = 0.5
			cfg.Corpus.Path = "corpus"
			require.NoError(t, Save(path, cfg))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"zero chunk size", func(c *AppConfig) { c.Chunker.Size = 0 }},
		{"negative overlap", func(c *AppConfig) { c.Chunker.Overlap = -1 }},
		{"negative min length", func(c *AppConfig) { c.Chunker.MinLength = -5 }},
		{"top_k below one", func(c *AppConfig) { c.Retrieval.TopK = 0 }},
		{"threshold above one", func(c *AppConfig) { c.Retrieval.Threshold = 1.5 }},
		{"negative threshold", func(c *AppConfig) { c.Retrieval.Threshold = -0.1 }},
		{"empty collection", func(c *AppConfig) { c.VectorStore.Collection = "" }},
		{"unknown embedder", func(c *AppConfig) { c.Embedder.Type = "tfidf" }},
		{"unknown store", func(c *AppConfig) { c.VectorStore.Type = "chroma" }},
		{"unknown generator", func(c *AppConfig) { c.Generator.Type = "claude" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	edge := Default()
	edge.Retrieval.Threshold = 1
	edge.Chunker.Overlap = 0
	assert.NoError(t, edge.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("HERITAGE_DOTENV_PROBE=from-file\n"), 0o644))
	t.Setenv("HERITAGE_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("HERITAGE_DOTENV_PROBE"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("HERITAGE_DOTENV_PROBE"))
}
