// Package rerank rescores retrieved chunks by direct semantic relevance
// via an LLM, blended with the original fused similarity, per spec.md
// §4.10.
package rerank

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"manifold/internal/hybrid"
	"manifold/internal/llmclient"
)

const (
	// MaxChunks bounds how many of the top chunks get reranked; the rest
	// are appended unchanged at the end, in their pre-rerank order.
	MaxChunks = 15
	// TruncateContent bounds how much of each chunk's content the reranker
	// prompt includes.
	TruncateContent = 500

	defaultWeightOriginal = 0.3
	defaultWeightLLM      = 0.7

	defaultScore = 5
)

// Result carries the reranked chunks plus observability metadata.
type Result struct {
	Chunks          []hybrid.Result
	Scores          map[string]float64
	PositionChanges int
	Latency         time.Duration
	Success         bool
	Error           string
}

// Reranker scores chunks against a query via an LLM.
type Reranker struct {
	client        llmclient.Client
	timeout       time.Duration
	weightOrig    float64
	weightLLM     float64
	now           func() time.Time
}

func New(client llmclient.Client) *Reranker {
	return &Reranker{
		client:     client,
		timeout:    10 * time.Second,
		weightOrig: defaultWeightOriginal,
		weightLLM:  defaultWeightLLM,
		now:        time.Now,
	}
}

const rerankSystemPrompt = `You score how directly each numbered excerpt answers the worker's question.
Return JSON only: an object mapping each excerpt's index (as a string) to an
integer from 1 (irrelevant) to 10 (directly answers the question). Score
every index you are given.`

// Rerank scores up to MaxChunks of the input, blends with original
// similarity, and re-sorts. On any failure it returns the chunks unchanged
// with success=false; it never fails the caller's request.
func (r *Reranker) Rerank(ctx context.Context, query string, chunks []hybrid.Result) Result {
	start := r.now()
	if len(chunks) == 0 {
		return Result{Chunks: chunks, Success: true, Latency: r.now().Sub(start)}
	}

	head := chunks
	tail := []hybrid.Result(nil)
	if len(chunks) > MaxChunks {
		head = chunks[:MaxChunks]
		tail = chunks[MaxChunks:]
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.client.Generate(ctx, rerankSystemPrompt, buildPrompt(query, head), llmclient.Options{
		Temperature:      0,
		MaxTokens:        600,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return Result{Chunks: chunks, Success: false, Error: err.Error(), Latency: r.now().Sub(start)}
	}

	scores, perr := parseScores(raw, len(head))
	if perr != nil {
		return Result{Chunks: chunks, Success: false, Error: perr.Error(), Latency: r.now().Sub(start)}
	}

	type blended struct {
		result hybrid.Result
		score  float64
	}
	reordered := make([]blended, len(head))
	byChunk := map[string]float64{}
	for i, c := range head {
		llmScore := normalizeScore(scores[i])
		blend := r.weightOrig*originalSimilarity(c) + r.weightLLM*llmScore
		reordered[i] = blended{result: c, score: blend}
		byChunk[c.ChunkID] = llmScore
	}
	sort.SliceStable(reordered, func(i, j int) bool {
		if reordered[i].score != reordered[j].score {
			return reordered[i].score > reordered[j].score
		}
		return reordered[i].result.ChunkID < reordered[j].result.ChunkID
	})

	changes := 0
	final := make([]hybrid.Result, 0, len(chunks))
	for i, b := range reordered {
		if head[i].ChunkID != b.result.ChunkID {
			changes++
		}
		final = append(final, b.result)
	}
	final = append(final, tail...)

	return Result{
		Chunks:          final,
		Scores:          byChunk,
		PositionChanges: changes,
		Success:         true,
		Latency:         r.now().Sub(start),
	}
}

func originalSimilarity(c hybrid.Result) float64 {
	if c.VectorScore > 0 {
		return c.VectorScore
	}
	return c.RRFScore
}

func buildPrompt(query string, chunks []hybrid.Result) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n\n")
	for i, c := range chunks {
		b.WriteString(strconv.Itoa(i))
		b.WriteString(". [")
		b.WriteString(c.Chunk.Citation)
		b.WriteString("] ")
		b.WriteString(truncate(c.Chunk.Content, TruncateContent))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// parseScores decodes an index->score JSON map. Missing or unparseable
// entries default to 5; out-of-range values are clamped to [1,10].
func parseScores(raw string, n int) (map[int]int, error) {
	body := extractJSON(raw)
	var parsed map[string]json.Number
	scores := map[int]int{}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		for i := 0; i < n; i++ {
			scores[i] = defaultScore
		}
		return scores, nil
	}
	for i := 0; i < n; i++ {
		v, ok := parsed[strconv.Itoa(i)]
		if !ok {
			scores[i] = defaultScore
			continue
		}
		f, ferr := v.Float64()
		if ferr != nil {
			scores[i] = defaultScore
			continue
		}
		scores[i] = clamp(int(f), 1, 10)
	}
	return scores, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func normalizeScore(s int) float64 { return float64(s-1) / 9.0 }

func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
