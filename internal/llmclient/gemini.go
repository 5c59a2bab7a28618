package llmclient

import (
	"context"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

type geminiClient struct {
	sdk   *genai.Client
	model string
}

func newGeminiClient(ctx context.Context, cfg Config) (*geminiClient, error) {
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	sdk, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiClient{sdk: sdk, model: model}, nil
}

func (c *geminiClient) Name() string { return "google:" + c.model }

func (c *geminiClient) Generate(ctx context.Context, system, user string, opts Options) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(opts.Temperature)),
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	if opts.ResponseMIMEType != "" {
		cfg.ResponseMIMEType = opts.ResponseMIMEType
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	resp, err := c.sdk.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
