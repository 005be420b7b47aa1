package service

import (
	"context"
	"fmt"

	"github.com/quercia-ai/docpilot/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ChatClient defines the interface for language-model completions
type ChatClient interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ChunkStore defines the persistence interface for the vector index
type ChunkStore interface {
	InsertChunks(ctx context.Context, chunks []domain.EmbeddedChunk) error
	DeleteByFileID(ctx context.Context, tenantID, fileID string) (int, string, error)
	DeleteByFilename(ctx context.Context, tenantID, filename string) (int, error)
	ListFiles(ctx context.Context, tenantID string) ([]domain.FileRecord, error)
	SearchNearest(ctx context.Context, embedding []float32, filter domain.SearchFilter, k int) ([]domain.RetrievedChunk, error)
	CountByTenant(ctx context.Context, tenantID string) (int, error)
}

// Index is the tenant-scoped vector index: it embeds chunks and queries and
// delegates persistence and nearest-neighbor ordering to the store. A tenant
// with no rows is an empty, immediately usable index, never an error.
type Index struct {
	store      ChunkStore
	embeddings EmbeddingClient
}

// NewIndex creates an Index over the given store and embedding provider.
func NewIndex(store ChunkStore, embeddings EmbeddingClient) *Index {
	return &Index{store: store, embeddings: embeddings}
}

// AddChunks embeds every chunk and appends the results to the store. All
// embeddings are computed before anything is written, and the store insert
// is transactional, so a provider failure leaves the index untouched.
// Re-adding identical content produces duplicate entries.
func (ix *Index) AddChunks(ctx context.Context, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	embedded := make([]domain.EmbeddedChunk, 0, len(chunks))
	for _, c := range chunks {
		vector, err := ix.embeddings.GenerateEmbedding(ctx, c.Content)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d of %s: %w", c.ChunkIndex, c.Filename, err)
		}
		embedded = append(embedded, domain.EmbeddedChunk{Chunk: c, Embedding: vector})
	}

	if err := ix.store.InsertChunks(ctx, embedded); err != nil {
		return fmt.Errorf("failed to persist chunks: %w", err)
	}
	return nil
}

// Search embeds the query and returns the k nearest chunks under the given
// filter. The tenant constraint always applies; file-type and file-id
// constraints narrow further (logical AND).
func (ix *Index) Search(ctx context.Context, query string, filter domain.SearchFilter, k int) ([]domain.RetrievedChunk, error) {
	if filter.TenantID == "" {
		return nil, fmt.Errorf("search requires a tenant filter")
	}

	vector, err := ix.embeddings.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return ix.store.SearchNearest(ctx, vector, filter, k)
}

// DeleteByFileID removes all chunks of the tenant's file, returning the
// removed count and the filename seen before removal.
func (ix *Index) DeleteByFileID(ctx context.Context, tenantID, fileID string) (int, string, error) {
	return ix.store.DeleteByFileID(ctx, tenantID, fileID)
}

// DeleteByFilename removes all chunks matching the tenant's filename.
func (ix *Index) DeleteByFilename(ctx context.Context, tenantID, filename string) (int, error) {
	return ix.store.DeleteByFilename(ctx, tenantID, filename)
}

// ListFiles aggregates the tenant's chunks into file records.
func (ix *Index) ListFiles(ctx context.Context, tenantID string) ([]domain.FileRecord, error) {
	return ix.store.ListFiles(ctx, tenantID)
}

// HasDocuments reports whether the tenant has anything indexed.
func (ix *Index) HasDocuments(ctx context.Context, tenantID string) (bool, error) {
	count, err := ix.store.CountByTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
