package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quercia-ai/docpilot/internal/domain"
)

func retrievedChunk(content string, similarity float64, embedding []float32) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		Chunk:      domain.DocumentChunk{Content: content, TenantID: "acme"},
		Embedding:  embedding,
		Similarity: similarity,
	}
}

func TestRetrieverSimilarityUsesK(t *testing.T) {
	store := new(MockChunkStore)
	embedder := new(MockEmbeddingClient)
	ix := NewIndex(store, embedder)

	want := []domain.RetrievedChunk{retrievedChunk("a", 0.9, nil)}
	embedder.On("GenerateEmbedding", mock.Anything, "q").Return([]float32{1, 0}, nil)
	store.On("SearchNearest", mock.Anything, mock.Anything, domain.SearchFilter{TenantID: "acme"}, 4).Return(want, nil)

	r := NewRetriever(ix, "acme", DefaultSearchPolicy())
	got, err := r.Retrieve(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, want, got)
	store.AssertExpectations(t)
}

func TestRetrieverZeroPolicyFallsBackToDefaults(t *testing.T) {
	store := new(MockChunkStore)
	embedder := new(MockEmbeddingClient)
	ix := NewIndex(store, embedder)

	embedder.On("GenerateEmbedding", mock.Anything, "q").Return([]float32{1, 0}, nil)
	// The default policy is similarity with k=4.
	store.On("SearchNearest", mock.Anything, mock.Anything, mock.Anything, 4).Return([]domain.RetrievedChunk{}, nil)

	r := NewRetriever(ix, "acme", SearchPolicy{})
	_, err := r.Retrieve(context.Background(), "q")

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestRetrieverMMRFetchesWiderPool(t *testing.T) {
	store := new(MockChunkStore)
	embedder := new(MockEmbeddingClient)
	ix := NewIndex(store, embedder)

	pool := []domain.RetrievedChunk{
		retrievedChunk("a", 0.95, []float32{1, 0}),
		retrievedChunk("b", 0.94, []float32{1, 0.01}),
		retrievedChunk("c", 0.60, []float32{0, 1}),
	}
	embedder.On("GenerateEmbedding", mock.Anything, "q").Return([]float32{1, 0}, nil)
	store.On("SearchNearest", mock.Anything, mock.Anything, mock.Anything, 8).Return(pool, nil)

	policy := SearchPolicy{Strategy: StrategyMMR, K: 2, FetchK: 8, Lambda: 0.5}
	got, err := NewRetriever(ix, "acme", policy).Retrieve(context.Background(), "q")

	require.NoError(t, err)
	require.Len(t, got, 2)
	// The top hit always wins; the second pick prefers the diverse chunk
	// over the near-duplicate despite its lower similarity.
	assert.Equal(t, "a", got[0].Chunk.Content)
	assert.Equal(t, "c", got[1].Chunk.Content)
}

func TestRetrieverMMRSmallPoolReturnedAsIs(t *testing.T) {
	pool := []domain.RetrievedChunk{
		retrievedChunk("a", 0.9, []float32{1, 0}),
		retrievedChunk("b", 0.8, []float32{0, 1}),
	}

	got := selectMMR(pool, 4, 0.5)

	assert.Equal(t, pool, got)
}

func TestRetrieverFetchKNeverBelowK(t *testing.T) {
	store := new(MockChunkStore)
	embedder := new(MockEmbeddingClient)
	ix := NewIndex(store, embedder)

	embedder.On("GenerateEmbedding", mock.Anything, "q").Return([]float32{1, 0}, nil)
	store.On("SearchNearest", mock.Anything, mock.Anything, mock.Anything, 6).Return([]domain.RetrievedChunk{}, nil)

	policy := SearchPolicy{Strategy: StrategyMMR, K: 6, FetchK: 2, Lambda: 0.5}
	_, err := NewRetriever(ix, "acme", policy).Retrieve(context.Background(), "q")

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestRetrieverFilterNarrowsCandidates(t *testing.T) {
	store := new(MockChunkStore)
	embedder := new(MockEmbeddingClient)
	ix := NewIndex(store, embedder)

	filter := domain.SearchFilter{
		TenantID:  "acme",
		FileTypes: []domain.FileType{domain.FileTypePDF},
		FileIDs:   []string{"f-1"},
	}
	embedder.On("GenerateEmbedding", mock.Anything, "q").Return([]float32{1, 0}, nil)
	store.On("SearchNearest", mock.Anything, mock.Anything, filter, 4).Return([]domain.RetrievedChunk{}, nil)

	_, err := NewFilteredRetriever(ix, filter, DefaultSearchPolicy()).Retrieve(context.Background(), "q")

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}
