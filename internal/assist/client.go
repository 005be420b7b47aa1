// Package assist calls the external knowledge-assistant service, the second
// fallback in the escalation chain. The service is opaque: it takes a raw
// question and returns an answer with optional sources.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quercia-ai/docpilot/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Client talks to the knowledge assistant over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a Client for the given endpoint URL.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Ask sends the question and returns the assistant's answer. Timeouts,
// connection errors, and non-2xx statuses all map onto the unavailable
// sentinel so the caller can fall through to the next stage.
func (c *Client) Ask(ctx context.Context, question string) (domain.Answer, error) {
	payload, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return domain.Answer{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return domain.Answer{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Answer{}, domain.ErrProviderTimeout.WithCause(err)
		}
		return domain.Answer{}, domain.ErrAssistantUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Answer{}, domain.ErrAssistantUnavailable.WithCause(
			fmt.Errorf("assistant returned status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed askResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.Answer{}, domain.ErrAssistantUnavailable.WithCause(err)
	}
	if parsed.Answer == "" {
		return domain.Answer{}, domain.ErrAssistantUnavailable.WithCause(errors.New("assistant returned empty answer"))
	}

	return domain.Answer{
		Text:    parsed.Answer,
		Sources: parsed.Sources,
		Origin:  domain.OriginAssistant,
	}, nil
}
