// Command query runs one retrieval request against a stored contract and
// prints the response as JSON. Flag-based CLI shape grounded on the
// teacher's root main.go.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"manifold/internal/bm25"
	"manifold/internal/cache"
	"manifold/internal/concept"
	"manifold/internal/config"
	"manifold/internal/embedding"
	"manifold/internal/hybrid"
	"manifold/internal/hypothesis"
	"manifold/internal/intent"
	"manifold/internal/interpret"
	"manifold/internal/llmclient"
	"manifold/internal/observability"
	"manifold/internal/orchestrate"
	"manifold/internal/rerank"
	"manifold/internal/store"
	"manifold/internal/vectorindex"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	contractID := flag.String("contract-id", "", "contract ID to query (required)")
	query := flag.String("q", "", "worker's question (required)")
	classification := flag.String("classification", "", "worker's job classification, for wage lookups")
	hoursWorked := flag.Float64("hours", 0, "hours worked, for wage lookups")
	monthsEmployed := flag.Float64("months", 0, "months employed, for wage lookups")
	effectiveDate := flag.String("effective-date", "", "RFC3339 date to evaluate wage rates as of")
	flag.Parse()

	if *contractID == "" || *query == "" {
		fmt.Fprintln(os.Stderr, "usage: query -contract-id ID -q \"question\" [-classification C] [-hours H] [-months M]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	observability.InitLogger(cfg.LogPath, cfg.LogLevel)

	ctx := context.Background()

	shutdown, err := observability.InitOTel(ctx, cfg.OTel)
	if err != nil {
		log.Warn().Err(err).Msg("otel init failed, continuing without observability")
		shutdown = nil
	}
	if shutdown != nil {
		defer func() { _ = shutdown(context.Background()) }()
	}

	backends, err := store.NewBackends(ctx, store.Config{Backend: cfg.Database.Backend, DSN: cfg.Database.ConnectionString})
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}

	m, ok, err := backends.Manifests.Get(ctx, *contractID)
	if err != nil {
		log.Fatal().Err(err).Msg("load manifest")
	}
	if !ok {
		log.Fatal().Str("contract_id", *contractID).Msg("no manifest found; ingest it first")
	}

	wageTable, _, err := backends.Wages.Get(ctx, *contractID)
	if err != nil {
		log.Fatal().Err(err).Msg("load wage table")
	}

	chunkCount, err := backends.Chunks.Count(ctx, *contractID)
	if err != nil {
		log.Fatal().Err(err).Msg("count chunks")
	}
	if chunkCount == 0 {
		log.Fatal().Str("contract_id", *contractID).Msg("no chunks found; ingest it first")
	}

	redisCache, err := cache.New(cache.Config{Enabled: cfg.Cache.Enabled, Addr: cfg.Cache.Addr})
	if err != nil {
		log.Fatal().Err(err).Msg("build cache")
	}
	defer redisCache.Close()

	c, err := buildContractIndexes(ctx, cfg, *contractID, backends, redisCache)
	if err != nil {
		log.Fatal().Err(err).Msg("build indexes")
	}
	c.hybridSearcher.SlangExpand = func(q string) []string { return bm25.Tokenize(intent.Expand(q, m)) }

	llmCfg := llmclient.Config{Provider: cfg.LLMProvider, APIKey: providerKey(cfg)}
	client, err := llmclient.New(ctx, llmCfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("build llm client")
	}

	interpreter := interpret.New(client)
	hypothesisLayer := hypothesis.New(client)
	reranker := rerank.New(client)

	orch := orchestrate.New(c.hybridSearcher, c.vectorIndex, interpreter, m,
		orchestrate.WithHypothesis(hypothesisLayer),
		orchestrate.WithReranker(reranker),
		orchestrate.WithConcepts(c.conceptIndex),
		orchestrate.WithChunks(backends.Chunks),
		orchestrate.WithWageTable(wageTable),
		orchestrate.WithTunables(cfg.Retrieval.Tunables()),
		orchestrate.WithLogger(observability.ZerologAdapter{}),
		orchestrate.WithMetrics(observability.NewOTelMetrics()),
	)

	log.Info().Str("contract_id", *contractID).Str("query", *query).Msg("starting retrieval")

	resp, err := orch.Retrieve(ctx, orchestrate.Request{
		Query:          *query,
		ContractID:     *contractID,
		Classification: *classification,
		HoursWorked:    *hoursWorked,
		MonthsEmployed: *monthsEmployed,
		EffectiveDate:  *effectiveDate,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("retrieve")
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("marshal response")
	}
	fmt.Println(string(out))
}

func providerKey(cfg *config.Config) string {
	switch cfg.LLMProvider {
	case "openai":
		return cfg.OpenAIAPIKey
	case "google", "gemini":
		return cfg.GoogleGeminiKey
	default:
		return cfg.AnthropicKey
	}
}

type contractIndexes struct {
	hybridSearcher *hybrid.Searcher
	vectorIndex    *vectorindex.Index
	conceptIndex   *concept.Index
}

// buildContractIndexes loads a contract's full chunk set and builds the
// in-process BM25/vector/concept indexes the query-side pipeline searches
// against. A production deployment would keep these warm across requests;
// this CLI rebuilds them per invocation for simplicity.
func buildContractIndexes(ctx context.Context, cfg *config.Config, contractID string, backends store.Backends, c *cache.Cache) (*contractIndexes, error) {
	chunks, err := backends.Chunks.All(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("load all chunks: %w", err)
	}

	embedFn := cachedEmbedder(cfg, c)

	vecStore := vectorindex.NewMemory()
	items := make([]vectorindex.Item, 0, len(chunks))
	for _, ch := range chunks {
		vec, err := embedFn(ctx, ch.Content)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %s: %w", ch.ChunkID, err)
		}
		items = append(items, vectorindex.Item{Chunk: ch, Vector: vec})
	}
	if err := vecStore.Add(ctx, items); err != nil {
		return nil, fmt.Errorf("index vectors: %w", err)
	}
	vecIndex := &vectorindex.Index{Store: vecStore, Embed: embedFn, SimilarityFloor: cfg.Retrieval.SimilarityFloor}

	keywordIndex := bm25.Build(chunks)
	conceptIndex := concept.Build(chunks)

	searcher := &hybrid.Searcher{
		Vector:       vecIndex,
		Keyword:      keywordIndex,
		ConceptIndex: conceptIndex,
	}

	return &contractIndexes{hybridSearcher: searcher, vectorIndex: vecIndex, conceptIndex: conceptIndex}, nil
}

// cachedEmbedder wraps the embeddings endpoint with the Redis-backed
// embedding cache, so re-indexing a contract across process restarts
// doesn't re-embed chunks whose content hasn't changed.
func cachedEmbedder(cfg *config.Config, c *cache.Cache) func(context.Context, string) ([]float32, error) {
	return func(ctx context.Context, text string) ([]float32, error) {
		if vec, ok := c.GetEmbedding(ctx, text); ok {
			return vec, nil
		}
		vecs, err := embedding.EmbedText(ctx, cfg.Embeddings, []string{text})
		if err != nil {
			return nil, err
		}
		c.SetEmbedding(ctx, text, vecs[0])
		return vecs[0], nil
	}
}
