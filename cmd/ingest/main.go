// Command ingest parses a union contract document, extracts its wage
// table, enriches and embeds its chunks, and writes the result to the
// configured store. Flag-based CLI shape grounded on the teacher's root
// main.go (flag.String/flag.Bool, .env loading via godotenv, fail-fast on
// required flags).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"manifold/internal/bm25"
	"manifold/internal/chunk"
	"manifold/internal/concept"
	"manifold/internal/config"
	"manifold/internal/embedding"
	"manifold/internal/enrich"
	"manifold/internal/ingestpub"
	"manifold/internal/llmclient"
	"manifold/internal/manifest"
	"manifold/internal/observability"
	"manifold/internal/parser"
	"manifold/internal/store"
	"manifold/internal/vectorindex"
	"manifold/internal/wage"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	contractID := flag.String("contract-id", "", "contract ID to ingest under (required)")
	documentPath := flag.String("document", "", "path to the contract body text (required)")
	appendixPath := flag.String("appendix", "", "path to appendix A wage-table text (optional)")
	manifestPath := flag.String("manifest", "", "path to the contract's manifest JSON (required)")
	useLLM := flag.Bool("llm-enrich", true, "use the LLM enricher instead of the rule-based fallback")
	flag.Parse()

	if *contractID == "" || *documentPath == "" || *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -contract-id ID -document FILE -manifest FILE [-appendix FILE]")
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

	manifestData, err := os.ReadFile(*manifestPath)
	if err != nil {
		log.Fatal().Err(err).Msg("read manifest")
	}
	m, err := manifest.Parse(manifestData)
	if err != nil {
		log.Fatal().Err(err).Msg("parse manifest")
	}
	m.ContractID = *contractID

	docData, err := os.ReadFile(*documentPath)
	if err != nil {
		log.Fatal().Err(err).Msg("read document")
	}

	log.Debug().Str("contract_id", *contractID).Msg("parsing document")
	chunks, err := parser.Parse(string(docData), *contractID)
	if err != nil {
		log.Fatal().Err(err).Msg("parse document")
	}
	log.Info().Int("chunks", len(chunks)).Str("contract_id", *contractID).Msg("parsed document")

	log.Debug().Bool("llm_enrich", *useLLM).Msg("enriching chunks")
	enricher, err := buildEnricher(ctx, cfg, *useLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("build enricher")
	}
	taxonomy := chunk.Taxonomy{Topics: chunk.DefaultTopics, Classifications: m.Classifications}
	for i, c := range chunks {
		chunks[i] = enricher.Enrich(ctx, c, taxonomy)
	}

	var wageTable wage.Table
	if *appendixPath != "" {
		log.Debug().Str("appendix", *appendixPath).Msg("extracting wage table")
		appendixData, err := os.ReadFile(*appendixPath)
		if err != nil {
			log.Fatal().Err(err).Msg("read appendix")
		}
		wageTable = wage.Extract(string(appendixData), *contractID)
		log.Info().Int("classifications", len(wageTable.Classifications)).Msg("extracted wage table")
	} else {
		wageTable = wage.NewTable(*contractID)
	}

	log.Debug().Msg("building concept and keyword indexes")
	conceptIndex := concept.Build(chunks)
	_ = bm25.Build(chunks) // result is discarded; the query side rebuilds the keyword index from the stored chunks at load

	backends, err := store.NewBackends(ctx, store.Config{Backend: cfg.Database.Backend, DSN: cfg.Database.ConnectionString})
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}

	oldGeneration, _ := backends.Chunks.Count(ctx, *contractID)

	log.Debug().Int("chunks", len(chunks)).Msg("embedding chunks")
	embedder := buildEmbedder(cfg)
	vecIndex := &vectorindex.Index{Store: vectorindex.NewMemory(), Embed: embedder, SimilarityFloor: cfg.Retrieval.SimilarityFloor}
	items := make([]vectorindex.Item, 0, len(chunks))
	for _, c := range chunks {
		vec, err := embedder(ctx, c.Content)
		if err != nil {
			log.Fatal().Err(err).Str("chunk_id", c.ChunkID).Msg("embed chunk")
		}
		items = append(items, vectorindex.Item{Chunk: c, Vector: vec})
		if err := backends.Chunks.Put(ctx, c); err != nil {
			log.Fatal().Err(err).Str("chunk_id", c.ChunkID).Msg("store chunk")
		}
	}
	if err := vecIndex.Store.Add(ctx, items); err != nil {
		log.Fatal().Err(err).Msg("index embeddings")
	}

	if err := backends.Manifests.Put(ctx, m); err != nil {
		log.Fatal().Err(err).Msg("store manifest")
	}
	if err := backends.Wages.Put(ctx, *contractID, wageTable); err != nil {
		log.Fatal().Err(err).Msg("store wage table")
	}

	_ = conceptIndex // result is discarded; the query side builds the concept index fresh from the stored chunk set

	log.Debug().Str("contract_id", *contractID).Msg("publishing reingested event")
	publisher, err := ingestpub.New(ingestpub.Config{Enabled: cfg.IngestPub.Enabled, Brokers: cfg.IngestPub.Brokers, Topic: cfg.IngestPub.Topic})
	if err != nil {
		log.Fatal().Err(err).Msg("build ingest publisher")
	}
	defer publisher.Close()
	if err := publisher.Publish(ctx, ingestpub.ReingestedEvent{
		ContractID:    *contractID,
		OldGeneration: oldGeneration,
		NewGeneration: oldGeneration + 1,
		ChunkCount:    len(chunks),
	}); err != nil {
		log.Error().Err(err).Msg("publish reingested event")
	}

	log.Info().
		Str("contract_id", *contractID).
		Int("chunks", len(chunks)).
		Int("classifications", len(wageTable.Classifications)).
		Msg("ingested contract")
}

func buildEnricher(ctx context.Context, cfg *config.Config, useLLM bool) (enrich.Enricher, error) {
	if !useLLM {
		return enrich.NewRuleBased(), nil
	}
	client, err := llmclient.New(ctx, llmclient.Config{Provider: cfg.LLMProvider, APIKey: providerKey(cfg)}, nil)
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}
	return enrich.NewLLM(client), nil
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

func buildEmbedder(cfg *config.Config) func(context.Context, string) ([]float32, error) {
	return func(ctx context.Context, text string) ([]float32, error) {
		vecs, err := embedding.EmbedText(ctx, cfg.Embeddings, []string{text})
		if err != nil {
			return nil, err
		}
		return vecs[0], nil
	}
}
