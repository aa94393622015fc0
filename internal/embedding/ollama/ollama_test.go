package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOllama(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embed", r.URL.Path)
		calls.Add(1)
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req.Model)

		embeddings := make([][]float32, len(req.Input))
		for i, in := range req.Input {
			embeddings[i] = []float32{float32(len(in)), 1, 0}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"model": req.Model, "embeddings": embeddings})
	}))
}

func TestEmbedBatch_SplitsIntoSubBatches(t *testing.T) {
	var calls atomic.Int32
	srv := fakeOllama(t, &calls)
	defer srv.Close()

	c, err := NewClient(Config{Host: srv.URL, BatchSize: 2})
	require.NoError(t, err)

	vecs, err := c.EmbedBatch(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	require.NoError(t, err)
	require.Len(t, vecs, 5)
	for i, v := range vecs {
		assert.Equal(t, float32(i+1), v[0])
	}
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, c.Dimension())
}

func TestEmbed_Single(t *testing.T) {
	var calls atomic.Int32
	srv := fakeOllama(t, &calls)
	defer srv.Close()

	c, err := NewClient(Config{Host: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Dimension())

	v, err := c.Embed(context.Background(), "Dougga")
	require.NoError(t, err)
	assert.Equal(t, []float32{6, 1, 0}, v)
	assert.Equal(t, "ollama:all-minilm", c.Name())
}

func TestEmbed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{Host: srv.URL})
	require.NoError(t, err)
	_, err = c.Embed(context.Background(), "x")
	assert.Error(t, err)
}

func TestNewClient_BadHost(t *testing.T) {
	_, err := NewClient(Config{Host: "://nope"})
	assert.Error(t, err)
}
