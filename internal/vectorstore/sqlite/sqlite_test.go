package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage-rag/internal/domain"
	"heritage-rag/internal/vectorstore"
	"heritage-rag/internal/vectorstore/vectorstoretest"
)

// setupTestIndex creates a temporary SQLite index for testing.
func setupTestIndex(t *testing.T) *Index {
	t.Helper()
	x, err := NewIndex(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, x.Close()) })
	return x
}

func TestIndex(t *testing.T) {
	vectorstoretest.Run(t, func(t *testing.T) vectorstore.Index { return setupTestIndex(t) })
}

func TestIndex_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	x, err := NewIndex(dir)
	require.NoError(t, err)
	c, err := x.CreateCollection(ctx, "tunisian_archaeology", vectorstore.CollectionOptions{
		Dimension: 2,
		Metadata:  map[string]string{"embedder": "hashing"},
	})
	require.NoError(t, err)
	require.NoError(t, c.Add(ctx, []domain.IndexEntry{vectorstoretest.Entry("a", 0.5, -1.25)}))
	require.NoError(t, x.Close())

	x, err = NewIndex(dir)
	require.NoError(t, err)
	defer x.Close()

	c, err = x.GetCollection(ctx, "tunisian_archaeology")
	require.NoError(t, err)
	res, err := c.Query(ctx, []float32{0.5, -1.25}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "a", res[0].ID)
	assert.Zero(t, res[0].Distance)
}

func TestCreateCollection_Duplicate(t *testing.T) {
	ctx := context.Background()
	x := setupTestIndex(t)
	_, err := x.CreateCollection(ctx, "c", vectorstore.CollectionOptions{})
	require.NoError(t, err)
	_, err = x.CreateCollection(ctx, "c", vectorstore.CollectionOptions{})
	assert.Error(t, err)
}

func TestFloat32Blob(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
