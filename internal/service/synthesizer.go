package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/quercia-ai/docpilot/internal/domain"
)

// RefusalPhrase is the fixed sentence the model is instructed to emit when
// the supplied context cannot answer the question. Escalation detects it.
const RefusalPhrase = "Based on the documentation provided, I couldn't find a direct answer. Please refer to the relevant section or try rephrasing."

// refusalIndicators is the closed set of phrases marking a refusal or
// low-confidence answer. Matching is case-insensitive substring search.
var refusalIndicators = []string{
	"i don't know",
	"i cannot",
	"no information",
	"not mentioned",
	"unclear",
	"insufficient information",
	"not enough context",
	"couldn't find a direct answer",
	"don't have enough information",
}

// IsRefusal reports whether an answer matches any refusal indicator.
func IsRefusal(answer string) bool {
	lower := strings.ToLower(answer)
	for _, indicator := range refusalIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

const groundedSystemInstruction = `You are a professional support assistant helping customers using only the provided documentation.
Answer the question based strictly on the documentation supplied by the user.
- ONLY use information from the documentation to answer.
- Be clear, concise, and professional.
- Do not provide any extra info outside the documentation.
- If the documentation does NOT contain the answer explicitly, say:
"` + RefusalPhrase + `"`

// maxContextChars bounds the prompt context assembled from retrieved chunks.
const maxContextChars = 12000

// Synthesizer turns a question plus retrieved chunks into a grounded answer
// via the chat backend.
type Synthesizer struct {
	chat ChatClient
}

// NewSynthesizer creates a Synthesizer using the given chat backend.
func NewSynthesizer(chat ChatClient) *Synthesizer {
	return &Synthesizer{chat: chat}
}

// Synthesize builds a bounded prompt from the chunks in retrieval order and
// asks the backend for a grounded answer. Sources are the distinct files the
// context came from, in rank order.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, contextChunks []domain.RetrievedChunk) (domain.Answer, error) {
	var sb strings.Builder
	seen := make(map[string]struct{})
	var sources []string

	for _, rc := range contextChunks {
		if sb.Len()+len(rc.Chunk.Content) > maxContextChars {
			break
		}
		sb.WriteString(rc.Chunk.Content)
		sb.WriteString("\n\n")

		if _, ok := seen[rc.Chunk.FileID]; !ok {
			seen[rc.Chunk.FileID] = struct{}{}
			sources = append(sources, fmt.Sprintf("%s (%s)", rc.Chunk.Filename, rc.Chunk.FileID))
		}
	}

	prompt := fmt.Sprintf(`=========
Documentation:
%s=========

User's Question:
%s`, sb.String(), question)

	text, err := s.chat.Complete(ctx, groundedSystemInstruction, prompt)
	if err != nil {
		return domain.Answer{}, err
	}

	return domain.Answer{
		Text:    strings.TrimSpace(text),
		Sources: sources,
		Origin:  domain.OriginDocuments,
	}, nil
}

// webDisclosurePrefix opens every answer that came from the web instead of
// the tenant's documents.
const webDisclosurePrefix = "Answer not found in the provided documents, searching the web:"

const webSystemInstruction = "You synthesize web search results into clear, helpful answers. Do not mention source numbers or URLs in your response."

// SynthesizeWeb composes a coherent answer from web search results via the
// chat backend, falling back to plain formatting when the backend is down.
// The returned text always carries the web disclosure prefix.
func (s *Synthesizer) SynthesizeWeb(ctx context.Context, question string, outcome domain.WebSearchOutcome) domain.Answer {
	answer := domain.Answer{Origin: domain.OriginWebSearch}
	for _, r := range outcome.Results {
		if r.Link != "" {
			answer.Sources = append(answer.Sources, r.Link)
		}
	}

	var resultBlock strings.Builder
	for i, r := range outcome.Results {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&resultBlock, "Source %d: %s\nContent: %s\nURL: %s\n\n", i+1, r.Title, r.Snippet, r.Link)
	}

	prompt := fmt.Sprintf(`Based on the following web search results, provide a comprehensive and well-structured answer to the user's question: %q

Web Search Results:
%s
Synthesize the information into a coherent answer focused on the question. Mention conflicting information briefly if present.`, question, resultBlock.String())

	text, err := s.chat.Complete(ctx, webSystemInstruction, prompt)
	if err != nil {
		text = formatBasicWebResults(outcome)
	}

	answer.Text = fmt.Sprintf("%s\n\n%s\n\nInformation synthesized from web search via %s.",
		webDisclosurePrefix, strings.TrimSpace(text), outcome.Engine)
	return answer
}

// formatBasicWebResults renders results without LLM help: the instant
// answer when present, then the top snippets.
func formatBasicWebResults(outcome domain.WebSearchOutcome) string {
	var sb strings.Builder

	if outcome.Answer != "" {
		fmt.Fprintf(&sb, "Quick answer: %s\n\n", outcome.Answer)
	}
	for i, r := range outcome.Results {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, r.Title, r.Snippet)
	}
	if sb.Len() == 0 {
		sb.WriteString("No relevant web information found for your query.")
	}

	return strings.TrimSpace(sb.String())
}
