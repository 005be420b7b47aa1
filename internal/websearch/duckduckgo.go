package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quercia-ai/docpilot/internal/domain"
)

const duckDuckGoEndpoint = "https://api.duckduckgo.com/"

// maxRelatedTopics limits how many related topics are mined into results;
// the instant-answer API returns no real organic results.
const maxRelatedTopics = 3

// DuckDuckGo queries the free instant-answer API. Limited but keyless.
type DuckDuckGo struct {
	endpoint   string
	httpClient *http.Client
}

// NewDuckDuckGo creates the free fallback provider.
func NewDuckDuckGo(timeout time.Duration) *DuckDuckGo {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DuckDuckGo{
		endpoint:   duckDuckGoEndpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (d *DuckDuckGo) Name() string { return "DuckDuckGo" }

type duckDuckGoResponse struct {
	Answer        string `json:"Answer"`
	AbstractText  string `json:"AbstractText"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, numResults int) (domain.WebSearchOutcome, error) {
	params := url.Values{
		"q":             {query},
		"format":        {"json"},
		"no_html":       {"1"},
		"skip_disambig": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return domain.WebSearchOutcome{}, err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return domain.WebSearchOutcome{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return domain.WebSearchOutcome{}, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	var parsed duckDuckGoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.WebSearchOutcome{}, err
	}

	outcome := domain.WebSearchOutcome{Engine: d.Name()}
	if parsed.Answer != "" {
		outcome.Answer = parsed.Answer
	} else if parsed.AbstractText != "" {
		outcome.Answer = parsed.AbstractText
	}

	for _, topic := range parsed.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		outcome.Results = append(outcome.Results, domain.WebResult{
			Title:   topicTitle(topic.FirstURL),
			Snippet: topic.Text,
			Link:    topic.FirstURL,
		})
		if len(outcome.Results) >= maxRelatedTopics {
			break
		}
	}

	return outcome, nil
}

// topicTitle derives a readable title from the topic URL's last path
// segment, e.g. ".../Go_(programming_language)" becomes "Go (programming language)".
func topicTitle(firstURL string) string {
	if firstURL == "" {
		return ""
	}
	parts := strings.Split(firstURL, "/")
	last := parts[len(parts)-1]
	return strings.TrimSpace(strings.ReplaceAll(last, "_", " "))
}
