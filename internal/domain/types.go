package domain

// Document represents a single corpus file loaded into the system.
// The file name doubles as the identifier.
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// Metadata is the attribution attached to a document and inherited by its chunks.
// Site, Period and Source are nil when they could not be determined.
type Metadata struct {
	Site     *string `json:"site"`
	Period   *string `json:"period"`
	Source   *string `json:"source"`
	Filename string  `json:"filename"`

	ChunkID   int `json:"chunk_id"`
	StartChar int `json:"start_char"`
	EndChar   int `json:"end_char"`
}

// Chunk is a contiguous span of a document prepared for embedding.
// Offsets in Metadata are character (rune) positions in the source document.
type Chunk struct {
	Text     string
	Metadata Metadata
}

// IndexEntry is what the vector index stores for a single chunk.
type IndexEntry struct {
	ID        string
	Embedding []float32
	Document  string
	Metadata  Metadata
}

// RetrievalResult represents a retrieved chunk with its relevance.
type RetrievalResult struct {
	Text       string   `json:"text"`
	Metadata   Metadata `json:"metadata"`
	Similarity float64  `json:"similarity"`
	Distance   float64  `json:"distance"`
}

// QueryResult is the outcome of a single question-answer cycle.
type QueryResult struct {
	Answer     string            `json:"answer"`
	Sources    []RetrievalResult `json:"sources"`
	HasSources bool              `json:"has_sources"`
	Question   string            `json:"question"`
}

// Str returns a pointer to s, for populating optional metadata fields.
func Str(s string) *string { return &s }

// Value returns the optional string or fallback when it is unset.
func Value(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
