package llmclient

import (
	"context"
	"fmt"
	"net/http"
)

// New builds a Client for the configured provider, mirroring the
// provider-switch shape used throughout this codebase's other factories.
func New(ctx context.Context, cfg Config, httpClient *http.Client) (Client, error) {
	cfg = cfg.trimmed()
	switch cfg.Provider {
	case "", "anthropic":
		return newAnthropicClient(cfg, httpClient), nil
	case "openai", "local":
		return newOpenAIClient(cfg, httpClient), nil
	case "google", "gemini":
		return newGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("llmclient: unsupported provider %q", cfg.Provider)
	}
}
