package memory

import (
	"testing"

	"heritage-rag/internal/vectorstore"
	"heritage-rag/internal/vectorstore/vectorstoretest"
)

func TestIndex(t *testing.T) {
	vectorstoretest.Run(t, func(t *testing.T) vectorstore.Index { return NewIndex() })
}
