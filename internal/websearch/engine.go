// Package websearch provides live web search, the last fallback in the
// escalation chain. Two interchangeable providers exist: Serper (paid,
// structured Google results) and the free DuckDuckGo instant-answer API.
package websearch

import (
	"context"
	"log"

	"github.com/quercia-ai/docpilot/internal/domain"
)

// Provider is a single web search backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, numResults int) (domain.WebSearchOutcome, error)
}

// Engine tries providers in order and returns the first success. With a
// Serper key configured the order is Serper then DuckDuckGo, otherwise
// DuckDuckGo alone.
type Engine struct {
	providers []Provider
}

// NewEngine builds the provider chain from the given providers, in order.
func NewEngine(providers ...Provider) *Engine {
	return &Engine{providers: providers}
}

// Search runs the query through the provider chain. It fails with the
// unavailable sentinel only when every provider fails.
func (e *Engine) Search(ctx context.Context, query string, numResults int) (domain.WebSearchOutcome, error) {
	var lastErr error
	for _, p := range e.providers {
		outcome, err := p.Search(ctx, query, numResults)
		if err == nil {
			return outcome, nil
		}
		log.Printf("websearch: provider %s failed: %v", p.Name(), err)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = domain.ErrWebSearchUnavailable
	}
	return domain.WebSearchOutcome{}, domain.ErrWebSearchUnavailable.WithCause(lastErr)
}
