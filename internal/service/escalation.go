package service

import (
	"context"
	"log"
	"strings"

	"github.com/quercia-ai/docpilot/internal/domain"
)

// AnswerCache remembers finished answers per tenant.
type AnswerCache interface {
	Get(tenantID, question string) (domain.CacheEntry, bool)
	Put(tenantID string, entry domain.CacheEntry) error
}

// AssistantClient asks an external assistant service.
type AssistantClient interface {
	Ask(ctx context.Context, question string) (domain.Answer, error)
}

// WebSearcher runs a web search across the configured providers.
type WebSearcher interface {
	Search(ctx context.Context, query string, numResults int) (domain.WebSearchOutcome, error)
}

// minAnswerLength is the shortest synthesized document answer accepted as
// substantive. Anything at or below it escalates to the next stage.
const minAnswerLength = 50

// ApologyAnswer is returned when every stage has been exhausted without an
// acceptable answer.
const ApologyAnswer = "I'm sorry, I couldn't find an answer to your question right now. Please try again later."

const webSearchResultCount = 10

// Controller runs a question through the escalation chain: cached answers,
// the tenant's own documents, the external assistant, then web search. Each
// stage runs only when the previous one failed to produce an acceptable
// answer; a stage that errors is logged and skipped, never surfaced.
type Controller struct {
	cache     AnswerCache
	registry  *Registry
	synth     *Synthesizer
	assistant AssistantClient
	web       WebSearcher
}

// NewController wires the escalation chain. assistant and web may be nil
// when the corresponding stage is not configured; it is then skipped as
// unavailable.
func NewController(cache AnswerCache, registry *Registry, synth *Synthesizer, assistant AssistantClient, web WebSearcher) *Controller {
	return &Controller{
		cache:     cache,
		registry:  registry,
		synth:     synth,
		assistant: assistant,
		web:       web,
	}
}

// Answer resolves a question for a tenant. It always returns an answer; when
// every stage fails the apology answer is returned with no sources. Every
// freshly produced answer, including the apology, is written to the cache.
func (c *Controller) Answer(ctx context.Context, tenantID, question string) (domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, domain.NewDomainError(domain.ErrCodeValidation, "question must not be empty")
	}

	if entry, ok := c.cache.Get(tenantID, question); ok {
		return domain.Answer{
			Text:    entry.Answer,
			Sources: entry.Sources,
			Origin:  domain.OriginCache,
		}, nil
	}

	answer, ok := c.askDocuments(ctx, tenantID, question)
	if !ok {
		answer, ok = c.askAssistant(ctx, question)
	}
	if !ok {
		answer, ok = c.askWeb(ctx, question)
	}
	if !ok {
		answer = domain.Answer{Text: ApologyAnswer, Sources: []string{}, Origin: domain.OriginNone}
	}

	if err := c.cache.Put(tenantID, domain.CacheEntry{
		Question: question,
		Answer:   answer.Text,
		Sources:  answer.Sources,
	}); err != nil {
		log.Printf("escalation: failed to cache answer for tenant %s: %v", tenantID, err)
	}
	return answer, nil
}

// askDocuments runs retrieval and grounded synthesis over the tenant's own
// documents. A tenant with nothing indexed skips retrieval entirely; the
// answer is accepted only when at least one chunk was retrieved and the
// synthesized text is a substantive non-refusal.
func (c *Controller) askDocuments(ctx context.Context, tenantID, question string) (domain.Answer, bool) {
	indexed, err := c.registry.HasDocuments(ctx, tenantID)
	if err != nil {
		log.Printf("escalation: document count unavailable for tenant %s: %v", tenantID, err)
		return domain.Answer{}, false
	}
	if !indexed {
		return domain.Answer{}, false
	}

	chunks, err := c.registry.Retriever(tenantID).Retrieve(ctx, question)
	if err != nil {
		log.Printf("escalation: document retrieval unavailable for tenant %s: %v", tenantID, err)
		return domain.Answer{}, false
	}
	if len(chunks) == 0 {
		return domain.Answer{}, false
	}

	answer, err := c.synth.Synthesize(ctx, question, chunks)
	if err != nil {
		log.Printf("escalation: document synthesis unavailable for tenant %s: %v", tenantID, err)
		return domain.Answer{}, false
	}
	if !acceptable(answer.Text) {
		return domain.Answer{}, false
	}
	return answer, true
}

// askAssistant forwards the question to the external assistant. A successful
// response is final regardless of length; only transport failures and
// refusal placeholders escalate further.
func (c *Controller) askAssistant(ctx context.Context, question string) (domain.Answer, bool) {
	if c.assistant == nil {
		return domain.Answer{}, false
	}
	answer, err := c.assistant.Ask(ctx, question)
	if err != nil {
		log.Printf("escalation: assistant unavailable: %v", err)
		return domain.Answer{}, false
	}
	if strings.TrimSpace(answer.Text) == "" || IsRefusal(answer.Text) {
		return domain.Answer{}, false
	}
	return answer, true
}

func (c *Controller) askWeb(ctx context.Context, question string) (domain.Answer, bool) {
	if c.web == nil {
		return domain.Answer{}, false
	}
	outcome, err := c.web.Search(ctx, question, webSearchResultCount)
	if err != nil {
		log.Printf("escalation: web search unavailable: %v", err)
		return domain.Answer{}, false
	}
	return c.synth.SynthesizeWeb(ctx, question, outcome), true
}

// acceptable reports whether a synthesized document answer rejects the
// question or is too short to be substantive.
func acceptable(text string) bool {
	return len(text) > minAnswerLength && !IsRefusal(text)
}
