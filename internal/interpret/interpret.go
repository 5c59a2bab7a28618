// Package interpret produces multi-angle search inputs from a worker's raw
// query via an LLM call, with deterministic regex-based explicit-article
// extraction merged in and a minimal fallback on any upstream failure
// (spec.md §4.7).
package interpret

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"manifold/internal/llmclient"
)

// Interpretation is the immutable record from spec.md §3.
type Interpretation struct {
	OriginalQuery       string
	IntentLabel         string
	KeyConcepts         []string
	Entities            []string
	HypotheticalAnswers []string
	SearchQueries       []string
	LikelySections      []string
	ExplicitArticles    []int
	Latency             time.Duration
	Success             bool
	Error               string
}

// MaxAngles bounds get_all_search_queries's output.
const MaxAngles = 6

// GetAllSearchQueries returns original query + hypothetical answers +
// alternative queries, in that priority order, capped and deduplicated.
func (i Interpretation) GetAllSearchQueries() []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] || len(out) >= MaxAngles {
			return
		}
		seen[key] = true
		out = append(out, s)
	}
	add(i.OriginalQuery)
	for _, h := range i.HypotheticalAnswers {
		add(h)
	}
	for _, q := range i.SearchQueries {
		add(q)
	}
	return out
}

var explicitArticleRe = regexp.MustCompile(`(?i)article\s+(\d+)`)

// ExtractExplicitArticles finds every "Article N" reference in the raw
// query, deduplicated and in first-seen order.
func ExtractExplicitArticles(query string) []int {
	var out []int
	seen := map[int]bool{}
	for _, m := range explicitArticleRe.FindAllStringSubmatch(query, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Interpreter calls an LLM to produce a full Interpretation.
type Interpreter struct {
	client  llmclient.Client
	timeout time.Duration
	now     func() time.Time
}

func New(client llmclient.Client) *Interpreter {
	return &Interpreter{client: client, timeout: 15 * time.Second, now: time.Now}
}

const interpretSystemPrompt = `You interpret a union member's question about their collective bargaining
agreement. Return JSON only, matching this schema exactly:
{"intent": string, "key_concepts": [string], "entities": [string],
 "hypothetical_answers": [string], "search_queries": [string],
 "likely_sections": [string], "explicit_articles": [int]}
hypothetical_answers must be phrased as if excerpted from the contract itself
(formal, legal register), answering the question directly, for use as dense
retrieval queries (HyDE). search_queries must contain 2-3 alternative
phrasings of the question using formal contract terminology.`

type llmInterpretation struct {
	Intent               string   `json:"intent"`
	KeyConcepts          []string `json:"key_concepts"`
	Entities             []string `json:"entities"`
	HypotheticalAnswers  []string `json:"hypothetical_answers"`
	SearchQueries        []string `json:"search_queries"`
	LikelySections       []string `json:"likely_sections"`
	ExplicitArticles     []int    `json:"explicit_articles"`
}

// Interpret calls the LLM and merges its output with deterministic
// explicit-article extraction. On any parse or upstream failure it returns
// a minimal interpretation instead of propagating the error.
func (p *Interpreter) Interpret(ctx context.Context, query string) Interpretation {
	start := p.now()
	regexArticles := ExtractExplicitArticles(query)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.client.Generate(ctx, interpretSystemPrompt, query, llmclient.Options{
		Temperature:      0.2,
		MaxTokens:        1200,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return minimal(query, regexArticles, p.now().Sub(start), err.Error())
	}

	var parsed llmInterpretation
	if jerr := json.Unmarshal([]byte(extractJSON(raw)), &parsed); jerr != nil {
		return minimal(query, regexArticles, p.now().Sub(start), jerr.Error())
	}

	return Interpretation{
		OriginalQuery:       query,
		IntentLabel:         parsed.Intent,
		KeyConcepts:         parsed.KeyConcepts,
		Entities:            parsed.Entities,
		HypotheticalAnswers: parsed.HypotheticalAnswers,
		SearchQueries:       parsed.SearchQueries,
		LikelySections:      parsed.LikelySections,
		ExplicitArticles:    mergeArticles(regexArticles, parsed.ExplicitArticles),
		Latency:             p.now().Sub(start),
		Success:             true,
	}
}

func minimal(query string, regexArticles []int, latency time.Duration, errMsg string) Interpretation {
	return Interpretation{
		OriginalQuery:    query,
		SearchQueries:    []string{query},
		ExplicitArticles: regexArticles,
		Latency:          latency,
		Success:          false,
		Error:            errMsg,
	}
}

func mergeArticles(a, b []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, n := range append(append([]int{}, a...), b...) {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
