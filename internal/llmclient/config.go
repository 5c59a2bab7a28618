package llmclient

import "strings"

// Config selects and authenticates a single provider. One Config backs one
// Client; the orchestrator and enricher may each hold a different Config
// (e.g. a cheaper model for enrichment, a stronger one for reranking).
type Config struct {
	Provider string // "anthropic" | "openai" | "google"
	APIKey   string
	Model    string
	BaseURL  string
}

func (c Config) trimmed() Config {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Model = strings.TrimSpace(c.Model)
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	return c
}
