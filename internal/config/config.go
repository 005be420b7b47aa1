package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// OpenAI-compatible provider used for embeddings and chat completions.
	// BaseURL may point at a local runtime (Ollama, vLLM) exposing the same API.
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `envconfig:"OPENAI_BASE_URL"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL"`
	ChatModel      string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`

	// External knowledge assistant, second fallback after local retrieval.
	AssistantURL     string        `envconfig:"ASSISTANT_URL"`
	AssistantTimeout time.Duration `envconfig:"ASSISTANT_TIMEOUT" default:"15s"`

	// Web search, last fallback. Serper is used when the key is set,
	// otherwise the free DuckDuckGo instant-answer API.
	SerperAPIKey     string        `envconfig:"SERPER_API_KEY"`
	WebSearchTimeout time.Duration `envconfig:"WEB_SEARCH_TIMEOUT" default:"10s"`

	// Optional S3-compatible store for the raw uploaded documents.
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"docpilot-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1500"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"500"`

	CacheDir string `envconfig:"CACHE_DIR" default:"cache"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCPILOT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != "" || c.OpenAIBaseURL != ""
}

func (c *Config) HasAssistant() bool {
	return c.AssistantURL != ""
}

func (c *Config) HasSerper() bool {
	return c.SerperAPIKey != ""
}
