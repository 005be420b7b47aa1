package service

import (
	"context"
	"math"

	"github.com/quercia-ai/docpilot/internal/domain"
)

// SearchStrategy selects how a candidate pool is ranked into results.
type SearchStrategy string

const (
	// StrategySimilarity returns the plain top-k nearest chunks.
	StrategySimilarity SearchStrategy = "similarity"
	// StrategyMMR fetches a larger pool and greedily picks k results
	// balancing relevance against redundancy with already-picked ones.
	StrategyMMR SearchStrategy = "mmr"
)

// SearchPolicy carries the caller-supplied retrieval parameters.
type SearchPolicy struct {
	Strategy SearchStrategy
	K        int
	FetchK   int
	// Lambda weighs relevance against diversity for MMR; 1 is pure
	// relevance, 0 pure diversity.
	Lambda float64
}

// DefaultSearchPolicy is the one canonical default used everywhere a caller
// does not supply its own policy.
func DefaultSearchPolicy() SearchPolicy {
	return SearchPolicy{
		Strategy: StrategySimilarity,
		K:        4,
		FetchK:   12,
		Lambda:   0.5,
	}
}

// Retriever produces a ranked candidate set for a query. Both the plain and
// the filtered variant satisfy it.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.RetrievedChunk, error)
}

// IndexRetriever wraps the vector index with a search policy and a metadata
// filter. The filter always carries the tenant; file-type and file-id
// constraints are optional narrowing.
type IndexRetriever struct {
	index  *Index
	filter domain.SearchFilter
	policy SearchPolicy
}

// NewRetriever creates a tenant-scoped retriever without extra filters.
func NewRetriever(index *Index, tenantID string, policy SearchPolicy) *IndexRetriever {
	return NewFilteredRetriever(index, domain.SearchFilter{TenantID: tenantID}, policy)
}

// NewFilteredRetriever creates a retriever whose candidate pool is narrowed
// by the given metadata filter before ranking.
func NewFilteredRetriever(index *Index, filter domain.SearchFilter, policy SearchPolicy) *IndexRetriever {
	if policy.K <= 0 {
		policy = DefaultSearchPolicy()
	}
	if policy.FetchK < policy.K {
		policy.FetchK = policy.K
	}
	return &IndexRetriever{index: index, filter: filter, policy: policy}
}

// Retrieve runs the configured strategy against the index.
func (r *IndexRetriever) Retrieve(ctx context.Context, query string) ([]domain.RetrievedChunk, error) {
	switch r.policy.Strategy {
	case StrategyMMR:
		pool, err := r.index.Search(ctx, query, r.filter, r.policy.FetchK)
		if err != nil {
			return nil, err
		}
		return selectMMR(pool, r.policy.K, r.policy.Lambda), nil
	default:
		return r.index.Search(ctx, query, r.filter, r.policy.K)
	}
}

// selectMMR greedily picks k results from the pool, each step taking the
// candidate with the best balance of query similarity and distance from the
// already-selected set. The pool arrives ordered by descending similarity,
// so the first pick is always the nearest chunk.
func selectMMR(pool []domain.RetrievedChunk, k int, lambda float64) []domain.RetrievedChunk {
	if len(pool) <= k {
		return pool
	}
	if lambda < 0 || lambda > 1 {
		lambda = 0.5
	}

	selected := make([]domain.RetrievedChunk, 0, k)
	remaining := make([]domain.RetrievedChunk, len(pool))
	copy(remaining, pool)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)
		for i, candidate := range remaining {
			redundancy := 0.0
			for _, s := range selected {
				if sim := cosineSimilarity(candidate.Embedding, s.Embedding); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*candidate.Similarity - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
