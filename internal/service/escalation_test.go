package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quercia-ai/docpilot/internal/cache"
	"github.com/quercia-ai/docpilot/internal/domain"
)

// MockAssistantClient is a mock implementation of AssistantClient
type MockAssistantClient struct {
	mock.Mock
}

func (m *MockAssistantClient) Ask(ctx context.Context, question string) (domain.Answer, error) {
	args := m.Called(ctx, question)
	return args.Get(0).(domain.Answer), args.Error(1)
}

// MockWebSearcher is a mock implementation of WebSearcher
type MockWebSearcher struct {
	mock.Mock
}

func (m *MockWebSearcher) Search(ctx context.Context, query string, numResults int) (domain.WebSearchOutcome, error) {
	args := m.Called(ctx, query, numResults)
	return args.Get(0).(domain.WebSearchOutcome), args.Error(1)
}

type controllerFixture struct {
	controller *Controller
	cache      *cache.Store
	store      *MockChunkStore
	embedder   *MockEmbeddingClient
	chat       *MockChatClient
	assistant  *MockAssistantClient
	web        *MockWebSearcher
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	answerCache, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)

	f := &controllerFixture{
		cache:     answerCache,
		store:     new(MockChunkStore),
		embedder:  new(MockEmbeddingClient),
		chat:      new(MockChatClient),
		assistant: new(MockAssistantClient),
		web:       new(MockWebSearcher),
	}
	index := NewIndex(f.store, f.embedder)
	registry := NewRegistry(index, DefaultSearchPolicy())
	f.controller = NewController(answerCache, registry, NewSynthesizer(f.chat), f.assistant, f.web)
	return f
}

func (f *controllerFixture) givenRetrieval(chunks []domain.RetrievedChunk) {
	f.store.On("CountByTenant", mock.Anything, mock.Anything).Return(1, nil)
	f.embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return([]float32{1, 0}, nil)
	f.store.On("SearchNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(chunks, nil)
}

func manualChunks() []domain.RetrievedChunk {
	return []domain.RetrievedChunk{
		{Chunk: domain.DocumentChunk{Content: "Hold reset for ten seconds.", FileID: "f-1", Filename: "manual.pdf"}, Similarity: 0.9},
	}
}

const substantiveAnswer = "Hold the reset button on the back of the device for ten full seconds."

func TestControllerAnswersFromDocuments(t *testing.T) {
	f := newControllerFixture(t)
	f.givenRetrieval(manualChunks())
	f.chat.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(substantiveAnswer, nil)

	answer, err := f.controller.Answer(context.Background(), "acme", "How do I reset?")

	require.NoError(t, err)
	assert.Equal(t, domain.OriginDocuments, answer.Origin)
	assert.Equal(t, substantiveAnswer, answer.Text)
	assert.Equal(t, []string{"manual.pdf (f-1)"}, answer.Sources)
	f.assistant.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
	f.web.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestControllerCacheHitShortCircuits(t *testing.T) {
	f := newControllerFixture(t)
	require.NoError(t, f.cache.Put("acme", domain.CacheEntry{
		Question: "How do I reset?",
		Answer:   "Cached answer text.",
		Sources:  []string{"manual.pdf (f-1)"},
	}))

	// Normalized variants of the question hit the same entry; no stage runs.
	answer, err := f.controller.Answer(context.Background(), "acme", "  how do i RESET?  ")

	require.NoError(t, err)
	assert.Equal(t, domain.OriginCache, answer.Origin)
	assert.Equal(t, "Cached answer text.", answer.Text)
	f.store.AssertNotCalled(t, "SearchNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.chat.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestControllerSecondAskServedFromCache(t *testing.T) {
	f := newControllerFixture(t)
	f.givenRetrieval(manualChunks())
	f.chat.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(substantiveAnswer, nil).Once()

	first, err := f.controller.Answer(context.Background(), "acme", "How do I reset?")
	require.NoError(t, err)
	require.Equal(t, domain.OriginDocuments, first.Origin)

	second, err := f.controller.Answer(context.Background(), "acme", "how do i reset?")
	require.NoError(t, err)
	assert.Equal(t, domain.OriginCache, second.Origin)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Sources, second.Sources)
	f.chat.AssertNumberOfCalls(t, "Complete", 1)
}

func TestControllerRefusalEscalatesToAssistant(t *testing.T) {
	f := newControllerFixture(t)
	f.givenRetrieval(manualChunks())
	f.chat.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(RefusalPhrase, nil)
	f.assistant.On("Ask", mock.Anything, "How do I reset?").Return(domain.Answer{
		Text:    substantiveAnswer,
		Sources: []string{"kb://reset"},
		Origin:  domain.OriginAssistant,
	}, nil)

	answer, err := f.controller.Answer(context.Background(), "acme", "How do I reset?")

	require.NoError(t, err)
	assert.Equal(t, domain.OriginAssistant, answer.Origin)
	assert.Equal(t, substantiveAnswer, answer.Text)
	f.web.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestControllerNoChunksSkipsSynthesis(t *testing.T) {
	f := newControllerFixture(t)
	f.givenRetrieval([]domain.RetrievedChunk{})
	f.assistant.On("Ask", mock.Anything, mock.Anything).Return(domain.Answer{
		Text:   substantiveAnswer,
		Origin: domain.OriginAssistant,
	}, nil)

	answer, err := f.controller.Answer(context.Background(), "acme", "Anything indexed?")

	require.NoError(t, err)
	assert.Equal(t, domain.OriginAssistant, answer.Origin)
	f.chat.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestControllerShortAnswerIsNotAccepted(t *testing.T) {
	f := newControllerFixture(t)
	f.givenRetrieval(manualChunks())
	// Under the length threshold, so the documents stage is rejected even
	// though it is not a refusal.
	f.chat.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("Ten seconds.", nil)
	f.assistant.On("Ask", mock.Anything, mock.Anything).Return(domain.Answer{
		Text:   substantiveAnswer,
		Origin: domain.OriginAssistant,
	}, nil)

	answer, err := f.controller.Answer(context.Background(), "acme", "How long?")

	require.NoError(t, err)
	assert.Equal(t, domain.OriginAssistant, answer.Origin)
}

func TestControllerAssistantAnswerIsFinalRegardlessOfLength(t *testing.T) {
	f := newControllerFixture(t)
	f.givenRetrieval([]domain.RetrievedChunk{})
	// A successful assistant response ends the chain even when the answer is
	// shorter than the documents-stage threshold.
	f.assistant.On("Ask", mock.Anything, "Which port?").Return(domain.Answer{
		Text:   "Yes, on port 8080.",
		Origin: domain.OriginAssistant,
	}, nil)

	answer, err := f.controller.Answer(context.Background(), "acme", "Which port?")

	require.NoError(t, err)
	assert.Equal(t, domain.OriginAssistant, answer.Origin)
	assert.Equal(t, "Yes, on port 8080.", answer.Text)
	f.web.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestControllerAssistantRefusalEscalatesToWeb(t *testing.T) {
	f := newControllerFixture(t)
	f.givenRetrieval([]domain.RetrievedChunk{})
	f.assistant.On("Ask", mock.Anything, mock.Anything).Return(domain.Answer{
		Text:   RefusalPhrase,
		Origin: domain.OriginAssistant,
	}, nil)
	f.web.On("Search", mock.Anything, mock.Anything, webSearchResultCount).Return(domain.WebSearchOutcome{
		Results: []domain.WebResult{{Title: "Docs", Snippet: "Hold reset 10s.", Link: "https://example.com"}},
		Engine:  "serper",
	}, nil)
	f.chat.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(substantiveAnswer, nil)

	answer, err := f.controller.Answer(context.Background(), "acme", "How do I reset?")

	require.NoError(t, err)
	assert.Equal(t, domain.OriginWebSearch, answer.Origin)
}

func TestControllerEmptyTenantSkipsRetrieval(t *testing.T) {
	f := newControllerFixture(t)
	f.store.On("CountByTenant", mock.Anything, "fresh-tenant").Return(0, nil)
	f.assistant.On("Ask", mock.Anything, mock.Anything).Return(domain.Answer{
		Text:   substantiveAnswer,
		Origin: domain.OriginAssistant,
	}, nil)

	answer, err := f.controller.Answer(context.Background(), "fresh-tenant", "Anything indexed?")

	require.NoError(t, err)
	assert.Equal(t, domain.OriginAssistant, answer.Origin)
	f.embedder.AssertNotCalled(t, "GenerateEmbedding", mock.Anything, mock.Anything)
	f.store.AssertNotCalled(t, "SearchNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestControllerAssistantFailureFallsToWeb(t *testing.T) {
	f := newControllerFixture(t)
	f.givenRetrieval([]domain.RetrievedChunk{})
	f.assistant.On("Ask", mock.Anything, mock.Anything).Return(domain.Answer{}, domain.ErrAssistantUnavailable)
	f.web.On("Search", mock.Anything, "How do I reset?", webSearchResultCount).Return(domain.WebSearchOutcome{
		Results: []domain.WebResult{{Title: "Docs", Snippet: "Hold reset 10s.", Link: "https://example.com"}},
		Engine:  "serper",
	}, nil)
	f.chat.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(substantiveAnswer, nil)

	answer, err := f.controller.Answer(context.Background(), "acme", "How do I reset?")

	require.NoError(t, err)
	assert.Equal(t, domain.OriginWebSearch, answer.Origin)
	assert.True(t, strings.HasPrefix(answer.Text, "Answer not found in the provided documents, searching the web:"))
	assert.Equal(t, []string{"https://example.com"}, answer.Sources)
}

func TestControllerAllStagesFailReturnsApology(t *testing.T) {
	f := newControllerFixture(t)
	f.store.On("CountByTenant", mock.Anything, mock.Anything).Return(1, nil)
	f.embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(nil, domain.ErrEmbeddingProviderUnavailable)
	f.assistant.On("Ask", mock.Anything, mock.Anything).Return(domain.Answer{}, domain.ErrAssistantUnavailable)
	f.web.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(domain.WebSearchOutcome{}, domain.ErrWebSearchUnavailable)

	answer, err := f.controller.Answer(context.Background(), "acme", "Is anyone there?")

	require.NoError(t, err)
	assert.Equal(t, ApologyAnswer, answer.Text)
	assert.Equal(t, domain.OriginNone, answer.Origin)
	assert.Empty(t, answer.Sources)

	// The failure outcome is cached like any other.
	entry, ok := f.cache.Get("acme", "Is anyone there?")
	require.True(t, ok)
	assert.Equal(t, ApologyAnswer, entry.Answer)
}

func TestControllerUnconfiguredStagesSkipped(t *testing.T) {
	answerCache, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)

	store := new(MockChunkStore)
	embedder := new(MockEmbeddingClient)
	chat := new(MockChatClient)
	store.On("CountByTenant", mock.Anything, mock.Anything).Return(1, nil)
	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return([]float32{1, 0}, nil)
	store.On("SearchNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]domain.RetrievedChunk{}, nil)

	registry := NewRegistry(NewIndex(store, embedder), DefaultSearchPolicy())
	controller := NewController(answerCache, registry, NewSynthesizer(chat), nil, nil)

	answer, err := controller.Answer(context.Background(), "acme", "Anything at all?")

	require.NoError(t, err)
	assert.Equal(t, ApologyAnswer, answer.Text)
	assert.Equal(t, domain.OriginNone, answer.Origin)
}

func TestControllerRejectsEmptyQuestion(t *testing.T) {
	f := newControllerFixture(t)

	_, err := f.controller.Answer(context.Background(), "acme", "   ")

	require.Error(t, err)
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrCodeValidation, derr.Code)
}
