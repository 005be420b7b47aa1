package domain

import "time"

// AnswerOrigin records which escalation stage produced an answer.
type AnswerOrigin string

const (
	OriginCache     AnswerOrigin = "cache"
	OriginDocuments AnswerOrigin = "documents"
	OriginAssistant AnswerOrigin = "assistant"
	OriginWebSearch AnswerOrigin = "web_search"
	OriginNone      AnswerOrigin = "none"
)

// Answer is the final result of one question, regardless of which stage
// produced it.
type Answer struct {
	Text    string
	Sources []string
	Origin  AnswerOrigin
}

// CacheEntry is one remembered question/answer pair for a tenant.
type CacheEntry struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
}

// WebResult is a single result returned by a web search provider.
type WebResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// WebSearchOutcome bundles the results of one web search call together with
// the provider that served it and any instant answer it supplied.
type WebSearchOutcome struct {
	Results []WebResult
	Answer  string
	Engine  string
}
