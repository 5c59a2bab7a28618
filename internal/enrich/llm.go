package enrich

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"manifold/internal/chunk"
	"manifold/internal/llmclient"
)

// LLM enriches a chunk via a language model and validates its output
// against fixed vocabularies, falling back to RuleBased on parse failure
// or terminal upstream error (spec.md §4.3).
type LLM struct {
	client   llmclient.Client
	fallback RuleBased
	sleep    func(time.Duration)
}

func NewLLM(client llmclient.Client) *LLM {
	return &LLM{client: client, fallback: NewRuleBased(), sleep: time.Sleep}
}

const maxEnrichAttempts = 3

type llmEnrichment struct {
	AppliesTo        []string `json:"applies_to"`
	Topics           []string `json:"topics"`
	CrossReferences  []string `json:"cross_references"`
	Summary          string   `json:"summary"`
	IsDefinition     bool     `json:"is_definition"`
	IsException      bool     `json:"is_exception"`
	HireDateSensitive bool    `json:"hire_date_sensitive"`
	IsHighStakes     bool     `json:"is_high_stakes"`
	WorkerQuestions  []string `json:"worker_questions"`
	AlternativeNames []string `json:"alternative_names"`
}

const enrichSystemPrompt = `You annotate one provision of a union contract with structured metadata.
Return JSON only, matching this schema exactly:
{"applies_to": [string], "topics": [string], "cross_references": [string],
 "summary": string, "is_definition": bool, "is_exception": bool,
 "hire_date_sensitive": bool, "is_high_stakes": bool,
 "worker_questions": [string], "alternative_names": [string]}
Summary must be a single sentence of 150 characters or fewer.`

func (e *LLM) Enrich(ctx context.Context, c chunk.Chunk, taxonomy chunk.Taxonomy) chunk.Chunk {
	user := "parent_context: " + c.ParentContext + "\n\ncontent:\n" + c.Content

	raw, err := e.callWithRetry(ctx, user)
	if err != nil {
		return e.fallback.Enrich(ctx, c, taxonomy)
	}

	var parsed llmEnrichment
	if jerr := json.Unmarshal([]byte(extractJSON(raw)), &parsed); jerr != nil {
		return e.fallback.Enrich(ctx, c, taxonomy)
	}

	f := flags{
		isDefinition:      parsed.IsDefinition,
		isException:       parsed.IsException,
		hireDateSensitive: parsed.HireDateSensitive,
		isHighStakes:      parsed.IsHighStakes,
	}
	topics := taxonomy.FilterTopics(parsed.Topics)
	applies := taxonomy.FilterClassifications(parsed.AppliesTo)

	return apply(c, applies, topics, parsed.CrossReferences, parsed.Summary, f,
		parsed.WorkerQuestions, parsed.AlternativeNames)
}

// callWithRetry retries on rate-limit errors with exponential backoff
// (2^n * 2 seconds), up to maxEnrichAttempts, per spec.md §4.3.
func (e *LLM) callWithRetry(ctx context.Context, user string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxEnrichAttempts; attempt++ {
		out, err := e.client.Generate(ctx, enrichSystemPrompt, user, llmclient.Options{
			Temperature:      0,
			MaxTokens:        800,
			ResponseMIMEType: "application/json",
		})
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !isRateLimitErr(err) {
			return "", err
		}
		if attempt < maxEnrichAttempts-1 {
			e.sleep(time.Duration(1<<uint(attempt)) * 2 * time.Second)
		}
	}
	return "", lastErr
}

func isRateLimitErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests")
}

// extractJSON trims any prose wrapper around the first {...} block, since
// some providers ignore the JSON-only instruction under load.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
