// Package vectorstoretest holds behaviour tests shared by every
// vectorstore.Index implementation.
package vectorstoretest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage-rag/internal/domain"
	"heritage-rag/internal/vectorstore"
)

// Entry builds an index entry with a two-dimensional vector.
func Entry(id string, x, y float32) domain.IndexEntry {
	return domain.IndexEntry{
		ID:        id,
		Embedding: []float32{x, y},
		Document:  "doc " + id,
		Metadata:  domain.Metadata{Site: domain.Str("Dougga"), Filename: id + ".txt", ChunkID: 1, StartChar: 10, EndChar: 20},
	}
}

// Run exercises the Index contract against indexes produced by newIndex.
func Run(t *testing.T, newIndex func(t *testing.T) vectorstore.Index) {
	ctx := context.Background()

	t.Run("missing collection", func(t *testing.T) {
		x := newIndex(t)
		_, err := x.GetCollection(ctx, "nope")
		assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		x := newIndex(t)
		require.NoError(t, x.DeleteCollection(ctx, "nope"))
		_, err := x.CreateCollection(ctx, "c", vectorstore.CollectionOptions{Dimension: 2})
		require.NoError(t, err)
		require.NoError(t, x.DeleteCollection(ctx, "c"))
		require.NoError(t, x.DeleteCollection(ctx, "c"))
		_, err = x.GetCollection(ctx, "c")
		assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
	})

	t.Run("add count query", func(t *testing.T) {
		x := newIndex(t)
		c, err := x.CreateCollection(ctx, "c", vectorstore.CollectionOptions{Dimension: 2})
		require.NoError(t, err)
		require.NoError(t, c.Add(ctx, []domain.IndexEntry{
			Entry("far", 3, 0),
			Entry("near", 1, 0),
			Entry("mid", 0, 1),
		}))

		got, err := x.GetCollection(ctx, "c")
		require.NoError(t, err)
		n, err := got.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		res, err := got.Query(ctx, []float32{1, 0}, 2)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, "near", res[0].ID)
		assert.Equal(t, "doc near", res[0].Document)
		assert.InDelta(t, 0.0, res[0].Distance, 1e-6)
		assert.Equal(t, "mid", res[1].ID)
		assert.InDelta(t, 2.0, res[1].Distance, 1e-6)

		require.NotNil(t, res[0].Metadata.Site)
		assert.Equal(t, "Dougga", *res[0].Metadata.Site)
		assert.Nil(t, res[0].Metadata.Period)
		assert.Equal(t, "near.txt", res[0].Metadata.Filename)
		assert.Equal(t, 20, res[0].Metadata.EndChar)
	})

	t.Run("query more than stored", func(t *testing.T) {
		x := newIndex(t)
		c, err := x.CreateCollection(ctx, "c", vectorstore.CollectionOptions{Dimension: 2})
		require.NoError(t, err)
		require.NoError(t, c.Add(ctx, []domain.IndexEntry{Entry("a", 0, 0)}))
		res, err := c.Query(ctx, []float32{0, 0}, 10)
		require.NoError(t, err)
		assert.Len(t, res, 1)
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		x := newIndex(t)
		c, err := x.CreateCollection(ctx, "c", vectorstore.CollectionOptions{Dimension: 2})
		require.NoError(t, err)
		require.NoError(t, c.Add(ctx, []domain.IndexEntry{Entry("first", 1, 0)}))
		require.NoError(t, c.Add(ctx, []domain.IndexEntry{Entry("second", 0, 1)}))
		res, err := c.Query(ctx, []float32{0, 0}, 2)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, "first", res[0].ID)
		assert.Equal(t, "second", res[1].ID)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		x := newIndex(t)
		c, err := x.CreateCollection(ctx, "c", vectorstore.CollectionOptions{Dimension: 3})
		require.NoError(t, err)
		assert.Error(t, c.Add(ctx, []domain.IndexEntry{Entry("a", 1, 1)}))
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		x := newIndex(t)
		c, err := x.CreateCollection(ctx, "c", vectorstore.CollectionOptions{Dimension: 2})
		require.NoError(t, err)
		require.NoError(t, c.Add(ctx, []domain.IndexEntry{Entry("a", 1, 1)}))
		_, err = c.Query(ctx, []float32{1, 1, 1}, 1)
		assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
	})

	t.Run("duplicate id", func(t *testing.T) {
		x := newIndex(t)
		c, err := x.CreateCollection(ctx, "c", vectorstore.CollectionOptions{Dimension: 2})
		require.NoError(t, err)
		require.NoError(t, c.Add(ctx, []domain.IndexEntry{Entry("a", 1, 1)}))
		assert.Error(t, c.Add(ctx, []domain.IndexEntry{Entry("a", 2, 2)}))
	})

	t.Run("recreate after delete starts empty", func(t *testing.T) {
		x := newIndex(t)
		c, err := x.CreateCollection(ctx, "c", vectorstore.CollectionOptions{Dimension: 2})
		require.NoError(t, err)
		require.NoError(t, c.Add(ctx, []domain.IndexEntry{Entry("a", 1, 1)}))
		require.NoError(t, x.DeleteCollection(ctx, "c"))
		c, err = x.CreateCollection(ctx, "c", vectorstore.CollectionOptions{Dimension: 2})
		require.NoError(t, err)
		n, err := c.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("concurrent queries", func(t *testing.T) {
		x := newIndex(t)
		c, err := x.CreateCollection(ctx, "c", vectorstore.CollectionOptions{Dimension: 2})
		require.NoError(t, err)
		entries := make([]domain.IndexEntry, 20)
		for i := range entries {
			entries[i] = Entry(fmt.Sprintf("e%02d", i), float32(i), 0)
		}
		require.NoError(t, c.Add(ctx, entries))

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(q float32) {
				defer wg.Done()
				res, err := c.Query(ctx, []float32{q, 0}, 3)
				if err == nil && (len(res) != 3 || res[0].Distance != 0) {
					err = fmt.Errorf("unexpected result for %v: %+v", q, res)
				}
				errs <- err
			}(float32(i))
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
	})
}
