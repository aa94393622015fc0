package hashing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestEmbed_DimensionAndNorm(t *testing.T) {
	e := NewEmbedder(64)
	assert.Equal(t, 64, e.Dimension())
	assert.Equal(t, "hashing", e.Name())

	v, err := e.Embed(context.Background(), "Le théâtre romain de Dougga")
	require.NoError(t, err)
	require.Len(t, v, 64)
	assert.InDelta(t, 1.0, dot(v, v), 1e-5)
}

func TestEmbed_DefaultDimension(t *testing.T) {
	assert.Equal(t, DefaultDimension, NewEmbedder(0).Dimension())
}

func TestEmbed_Deterministic(t *testing.T) {
	e := NewEmbedder(128)
	a, err := e.Embed(context.Background(), "Carthage punique")
	require.NoError(t, err)
	b, err := NewEmbedder(128).Embed(context.Background(), "Carthage punique")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbed_StopwordsOnlyGivesZeroVector(t *testing.T) {
	v, err := NewEmbedder(32).Embed(context.Background(), "le la les et de")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 32), v)
}

func TestEmbed_SimilarTextsAreCloser(t *testing.T) {
	e := NewEmbedder(512)
	ctx := context.Background()
	q, _ := e.Embed(ctx, "amphithéâtre El Jem")
	near, _ := e.Embed(ctx, "L'amphithéâtre d'El Jem est immense.")
	far, _ := e.Embed(ctx, "Les mosaïques de Bardo représentent Neptune.")
	assert.Greater(t, dot(q, near), dot(q, far))
}

func TestEmbed_StripsElision(t *testing.T) {
	e := NewEmbedder(256)
	assert.Equal(t, []string{"amphithéâtre", "jem"}, e.tokenize("L'amphithéâtre d’Jem"))
}

func TestEmbedBatch(t *testing.T) {
	e := NewEmbedder(16)
	vecs, err := e.EmbedBatch(context.Background(), []string{"dougga", "carthage", "dougga"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, vecs[0], vecs[2])
}

func TestEmbed_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEmbedder(8).Embed(ctx, "dougga")
	assert.ErrorIs(t, err, context.Canceled)
}
