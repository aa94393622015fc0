package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Backend names accepted in the type fields.
const (
	EmbedderOllama  = "ollama"
	EmbedderOpenAI  = "openai"
	EmbedderHashing = "hashing"

	StoreSQLite = "sqlite"
	StoreMemory = "memory"
	StoreQdrant = "qdrant"

	GeneratorOllama = "ollama"
	GeneratorOpenAI = "openai"
)

// Environment variables that override file values.
const (
	EnvOllamaHost = "OLLAMA_HOST"
	EnvCorpusPath = "HERITAGE_CORPUS_PATH"
	EnvIndexPath  = "HERITAGE_INDEX_PATH"
)

// OpenAIConfig holds connection details for an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url" toml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env" toml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs"`
}

// OllamaConfig is shared by the Ollama embedder and generator.
type OllamaConfig struct {
	Host        string `yaml:"host" toml:"host"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs"`
}

// CorpusConfig points at the directory of .txt documents.
type CorpusConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string `yaml:"type" toml:"type"`
	Model     string `yaml:"model" toml:"model"`
	BatchSize int    `yaml:"batch_size" toml:"batch_size"`
	// Dimension is only read by the hashing embedder.
	Dimension int           `yaml:"dimension" toml:"dimension"`
	OpenAI    *OpenAIConfig `yaml:"openai,omitempty" toml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Size      int `yaml:"size" toml:"size"`
	Overlap   int `yaml:"overlap" toml:"overlap"`
	MinLength int `yaml:"min_length" toml:"min_length"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type       string        `yaml:"type" toml:"type"`
	Path       string        `yaml:"path" toml:"path"`
	Collection string        `yaml:"collection" toml:"collection"`
	BatchSize  int           `yaml:"batch_size" toml:"batch_size"`
	Qdrant     *QdrantConfig `yaml:"qdrant,omitempty" toml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	Addr        string `yaml:"addr" toml:"addr"`
	APIKey      string `yaml:"api_key" toml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs"`
}

// RetrievalConfig controls how many neighbours are kept and how similar
// they must be.
type RetrievalConfig struct {
	TopK      int     `yaml:"top_k" toml:"top_k"`
	FetchK    int     `yaml:"fetch_k" toml:"fetch_k"`
	Threshold float64 `yaml:"threshold" toml:"threshold"`
}

// GeneratorConfig selects the answer model and its sampling options.
type GeneratorConfig struct {
	Type        string        `yaml:"type" toml:"type"`
	Model       string        `yaml:"model" toml:"model"`
	Temperature float64       `yaml:"temperature" toml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" toml:"max_tokens"`
	TopK        int           `yaml:"top_k" toml:"top_k"`
	TopP        float64       `yaml:"top_p" toml:"top_p"`
	OpenAI      *OpenAIConfig `yaml:"openai,omitempty" toml:"openai,omitempty"`
}

// SummarizerConfig sizes the excerpts shown on source cards.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences" toml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus      CorpusConfig      `yaml:"corpus" toml:"corpus"`
	Ollama      OllamaConfig      `yaml:"ollama" toml:"ollama"`
	Embedder    EmbedderConfig    `yaml:"embedder" toml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker" toml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store" toml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" toml:"retrieval"`
	Generator   GeneratorConfig   `yaml:"generator" toml:"generator"`
	Summarizer  SummarizerConfig  `yaml:"summarizer" toml:"summarizer"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Values absent from the file keep their defaults; environment overrides are
// applied last.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	applyConfigDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/heritage-rag/config.yaml.
// If neither exists, it writes defaults to ~/.config/heritage-rag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, Default()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
// A .toml extension selects TOML, anything else YAML.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadDotEnv loads KEY=value pairs from the given files (./.env when none
// are given) without overriding variables already set. Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Validate reports the first inconsistent setting.
func (c *AppConfig) Validate() error {
	switch {
	case c.Chunker.Size <= 0:
		return fmt.Errorf("%w: chunker.size must be positive, got %d", ErrInvalid, c.Chunker.Size)
	case c.Chunker.Overlap < 0:
		return fmt.Errorf("%w: chunker.overlap must not be negative, got %d", ErrInvalid, c.Chunker.Overlap)
	case c.Chunker.MinLength < 0:
		return fmt.Errorf("%w: chunker.min_length must not be negative, got %d", ErrInvalid, c.Chunker.MinLength)
	case c.Retrieval.TopK < 1:
		return fmt.Errorf("%w: retrieval.top_k must be at least 1, got %d", ErrInvalid, c.Retrieval.TopK)
	case c.Retrieval.Threshold < 0 || c.Retrieval.Threshold > 1:
		return fmt.Errorf("%w: retrieval.threshold must be within [0, 1], got %g", ErrInvalid, c.Retrieval.Threshold)
	case c.VectorStore.Collection == "":
		return fmt.Errorf("%w: vector_store.collection is empty", ErrInvalid)
	}
	if !oneOf(c.Embedder.Type, EmbedderOllama, EmbedderOpenAI, EmbedderHashing) {
		return fmt.Errorf("%w: unknown embedder type %q", ErrInvalid, c.Embedder.Type)
	}
	if !oneOf(c.VectorStore.Type, StoreSQLite, StoreMemory, StoreQdrant) {
		return fmt.Errorf("%w: unknown vector store type %q", ErrInvalid, c.VectorStore.Type)
	}
	if !oneOf(c.Generator.Type, GeneratorOllama, GeneratorOpenAI) {
		return fmt.Errorf("%w: unknown generator type %q", ErrInvalid, c.Generator.Type)
	}
	return nil
}

// Seconds converts a *_secs field to a duration; zero stays zero so the
// client applies its own default.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Corpus:      CorpusConfig{Path: filepath.Join("data", "corpus_txt")},
		Ollama:      OllamaConfig{Host: "http://localhost:11434", TimeoutSecs: 120},
		Embedder:    EmbedderConfig{Type: EmbedderOllama, Model: "all-minilm", BatchSize: 16, Dimension: 384},
		Chunker:     ChunkerConfig{Size: 600, Overlap: 150, MinLength: 100},
		VectorStore: VectorStoreConfig{Type: StoreSQLite, Path: "index", Collection: "tunisian_archaeology", BatchSize: 50},
		Retrieval:   RetrievalConfig{TopK: 5, FetchK: 10, Threshold: 0.35},
		Generator: GeneratorConfig{
			Type:        GeneratorOllama,
			Model:       "llama3",
			Temperature: 0.3,
			MaxTokens:   512,
			TopK:        40,
			TopP:        0.9,
		},
		Summarizer: SummarizerConfig{MaxSentences: 2},
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "heritage-rag", "config.yaml"), nil
}

func unmarshal(path string, data []byte, cfg *AppConfig) error {
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == EmbedderOpenAI {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		openAIDefaults(cfg.Embedder.OpenAI)
		if cfg.Embedder.Model == "" || cfg.Embedder.Model == "all-minilm" {
			cfg.Embedder.Model = "text-embedding-3-small"
		}
	}
	if cfg.Generator.Type == GeneratorOpenAI {
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &OpenAIConfig{}
		}
		openAIDefaults(cfg.Generator.OpenAI)
		if cfg.Generator.Model == "" || cfg.Generator.Model == "llama3" {
			cfg.Generator.Model = "gpt-4o-mini"
		}
	}
	if cfg.VectorStore.Type == StoreQdrant && cfg.VectorStore.Qdrant == nil {
		cfg.VectorStore.Qdrant = &QdrantConfig{Addr: "localhost:6334", TimeoutSecs: 15}
	}
}

func openAIDefaults(c *OpenAIConfig) {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.TimeoutSecs == 0 {
		c.TimeoutSecs = 30
	}
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv(EnvOllamaHost); v != "" {
		if !strings.Contains(v, "://") {
			v = "http://" + v
		}
		cfg.Ollama.Host = v
	}
	if v := os.Getenv(EnvCorpusPath); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv(EnvIndexPath); v != "" {
		cfg.VectorStore.Path = v
	}
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
