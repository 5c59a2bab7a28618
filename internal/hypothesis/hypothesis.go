// Package hypothesis predicts section-title candidates for a worker's
// question and boosts chunks whose article_title word-set matches one of
// them, per spec.md §4.9.
package hypothesis

import (
	"context"
	"strings"
	"time"

	"manifold/internal/llmclient"
)

// DefaultTitleBoost is the fixed additive boost applied to a chunk whose
// article_title matches a hypothesized title.
const DefaultTitleBoost = 0.5

// Result carries the predicted titles plus observability metadata.
type Result struct {
	Titles  []string
	Latency time.Duration
	Success bool
	Error   string
}

// Layer predicts likely section titles via an LLM.
type Layer struct {
	client  llmclient.Client
	timeout time.Duration
	now     func() time.Time
}

func New(client llmclient.Client) *Layer {
	return &Layer{client: client, timeout: 2 * time.Second, now: time.Now}
}

const hypothesisSystemPrompt = `Given a union member's question, predict up to 3 section titles from a
collective bargaining agreement that would most likely answer it. Reply with
one title per line, in ALL CAPS as a contract section heading would read,
nothing else.`

// Predict returns candidate titles, or a failed Result (Success false, with
// Error and Latency set) on any upstream error — callers proceed with the
// unexpanded query in that case.
func (l *Layer) Predict(ctx context.Context, query string) Result {
	start := l.now()
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	raw, err := l.client.Generate(ctx, hypothesisSystemPrompt, query, llmclient.Options{
		Temperature: 0.3,
		MaxTokens:   100,
	})
	if err != nil {
		return Result{Success: false, Error: err.Error(), Latency: l.now().Sub(start)}
	}

	var titles []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.Trim(line, "-*. "))
		if line != "" {
			titles = append(titles, line)
		}
	}
	return Result{Titles: titles, Success: true, Latency: l.now().Sub(start)}
}

// ExpandQuery appends hypothesized titles to the query for the hybrid
// searcher (query expansion).
func ExpandQuery(query string, titles []string) string {
	if len(titles) == 0 {
		return query
	}
	return query + " " + strings.Join(titles, " ")
}

// MatchesTitle reports whether articleTitle is a word-set match with any
// hypothesized title (order-independent, case-insensitive).
func MatchesTitle(articleTitle string, titles []string) bool {
	articleWords := wordSet(articleTitle)
	if len(articleWords) == 0 {
		return false
	}
	for _, t := range titles {
		if wordSetsEqual(articleWords, wordSet(t)) {
			return true
		}
	}
	return false
}

func wordSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}

func wordSetsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for w := range a {
		if !b[w] {
			return false
		}
	}
	return true
}
