// Package llmclient wraps the provider SDKs behind one narrow contract so
// every component that needs a model call (enricher, interpreter, reranker,
// hypothesis layer) depends on an interface, not a vendor.
package llmclient

import "context"

// Options configures a single generation call.
type Options struct {
	Temperature      float64
	MaxTokens        int64
	// ResponseMIMEType, when "application/json", asks the provider for a
	// JSON-only response where the provider supports that mode natively.
	ResponseMIMEType string
}

// Client generates text from a system/user prompt pair.
type Client interface {
	Generate(ctx context.Context, system, user string, opts Options) (string, error)
	// Name identifies the backing provider for logging.
	Name() string
}

// DefaultOptions returns the options used when a caller has no special
// requirements.
func DefaultOptions() Options {
	return Options{Temperature: 0.2, MaxTokens: 1024}
}
