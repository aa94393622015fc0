package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"heritage-rag/internal/domain"
)

// Roles of a transcript message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the conversation.
type Message struct {
	Role    string                   `json:"role"`
	Content string                   `json:"content"`
	Sources []domain.RetrievalResult `json:"sources,omitempty"`
}

// Transcript is the saved form of a chat session.
type Transcript struct {
	Session    string    `json:"session"`
	Timestamp  string    `json:"timestamp"`
	QueryCount int       `json:"query_count"`
	Messages   []Message `json:"messages"`
}

const stampLayout = "20060102_150405"

// Export writes the transcript to dir/conversation_<stamp>.json and returns
// the file path. Timestamp is filled from now.
func Export(dir string, t Transcript, now time.Time) (string, error) {
	stamp := now.Format(stampLayout)
	t.Timestamp = stamp
	if t.Messages == nil {
		t.Messages = []Message{}
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, "conversation_"+stamp+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, f.Close()
}
