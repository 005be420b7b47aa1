package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quercia-ai/docpilot/internal/domain"
)

const serperEndpoint = "https://google.serper.dev/search"

// Serper queries the Serper.dev API for structured Google results.
type Serper struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewSerper creates a Serper provider with the given API key.
func NewSerper(apiKey string, timeout time.Duration) *Serper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Serper{
		apiKey:     apiKey,
		endpoint:   serperEndpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *Serper) Name() string { return "Google (via Serper)" }

type serperRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic"`
	AnswerBox struct {
		Answer string `json:"answer"`
	} `json:"answerBox"`
}

func (s *Serper) Search(ctx context.Context, query string, numResults int) (domain.WebSearchOutcome, error) {
	payload, err := json.Marshal(serperRequest{Query: query, Num: numResults})
	if err != nil {
		return domain.WebSearchOutcome{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.WebSearchOutcome{}, err
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.WebSearchOutcome{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return domain.WebSearchOutcome{}, fmt.Errorf("serper returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed serperResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.WebSearchOutcome{}, err
	}

	outcome := domain.WebSearchOutcome{
		Answer: parsed.AnswerBox.Answer,
		Engine: s.Name(),
	}
	for _, item := range parsed.Organic {
		outcome.Results = append(outcome.Results, domain.WebResult{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}

	return outcome, nil
}
