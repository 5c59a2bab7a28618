// manifold/internal/config/config.go

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"manifold/internal/orchestrate"
)

// DatabaseConfig points at the Postgres instance backing chunk, manifest,
// and wage-table storage.
type DatabaseConfig struct {
	Backend          string `yaml:"backend"` // "memory" or "postgres"
	ConnectionString string `yaml:"connection_string"`
}

// QdrantConfig points at the vector store collection for a deployment.
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// EmbeddingsConfig points at an OpenAI-compatible embeddings endpoint.
// Provider/Dimensions describe the model for logging and vector-index
// sizing; BaseURL/Path/APIHeader/APIKey/Timeout configure the HTTP call
// itself, so a deployment can point at OpenAI, a self-hosted endpoint, or
// any other OpenAI-wire-compatible embeddings service.
type EmbeddingsConfig struct {
	Provider   string `yaml:"provider"` // "anthropic", "openai", "google"
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BaseURL    string `yaml:"base_url"`
	Path       string `yaml:"path"`
	APIHeader  string `yaml:"api_header"`
	APIKey     string `yaml:"api_key,omitempty"`
	Timeout    int    `yaml:"timeout_seconds"`
}

// RetrievalConfig holds the retrieval tunables spec.md §4.5/§4.8/§4.9/
// §4.10/§4.11 pins, read from YAML and defaulted by applyDefaults. Only
// some of them reach the pipeline: Tunables() passes the total cap, angle
// concurrency and expansion caps to the orchestrator, and SimilarityFloor
// is read where the vector index is built. The RRF k, fusion weights,
// boost magnitudes, reranker, hypothesis and interpreter fields are not
// read by any stage; those stages use their own package constants.
type RetrievalConfig struct {
	RRFK              int     `yaml:"rrf_k"`
	VectorWeight      float64 `yaml:"vector_weight"`
	KeywordWeight     float64 `yaml:"keyword_weight"`
	SimilarityFloor   float64 `yaml:"similarity_floor"`
	ConceptBoost      float64 `yaml:"concept_boost"`

	ArticleBoost                 float64 `yaml:"article_boost"`
	SectionBoost                 float64 `yaml:"section_boost"`
	BoostArticleListBoost        float64 `yaml:"boost_article_list_boost"`
	ClassificationMatchBoost     float64 `yaml:"classification_match_boost"`
	ClassificationMismatchPenalty float64 `yaml:"classification_mismatch_penalty"`
	TopicBoost                   float64 `yaml:"topic_boost"`
	HighStakesBoost              float64 `yaml:"high_stakes_boost"`

	RerankerEnabled      bool    `yaml:"reranker_enabled"`
	RerankerMaxChunks    int     `yaml:"reranker_max_chunks"`
	RerankerWeightOrig   float64 `yaml:"reranker_weight_original"`
	RerankerWeightLLM    float64 `yaml:"reranker_weight_llm"`
	RerankerTimeoutMS    int     `yaml:"reranker_timeout_ms"`

	HypothesisEnabled  bool `yaml:"hypothesis_enabled"`
	HypothesisTitleBoost float64 `yaml:"hypothesis_title_boost"`
	HypothesisTimeoutMS int `yaml:"hypothesis_timeout_ms"`

	InterpreterTimeoutMS int `yaml:"interpreter_timeout_ms"`

	TotalCap                  int `yaml:"total_cap"`
	MaxConcurrentAngles       int `yaml:"max_concurrent_angles"`
	FullArticleThreshold      int `yaml:"full_article_threshold"`
	FullArticleCap            int `yaml:"full_article_cap"`
	SiblingSectionCap         int `yaml:"sibling_section_cap"`
	SiblingSectionsPerArticle int `yaml:"sibling_sections_per_article"`
	DominantWindow            int `yaml:"dominant_window"`
}

// Tunables converts the YAML-facing config into orchestrate.Tunables.
func (r RetrievalConfig) Tunables() orchestrate.Tunables {
	return orchestrate.Tunables{
		TotalCap:                  r.TotalCap,
		MaxConcurrentAngles:       r.MaxConcurrentAngles,
		FullArticleThreshold:      r.FullArticleThreshold,
		FullArticleCap:            r.FullArticleCap,
		SiblingSectionCap:         r.SiblingSectionCap,
		SiblingSectionsPerArticle: r.SiblingSectionsPerArticle,
		DominantWindow:            r.DominantWindow,
	}
}

func (r RetrievalConfig) RerankerTimeout() time.Duration {
	return time.Duration(r.RerankerTimeoutMS) * time.Millisecond
}

func (r RetrievalConfig) HypothesisTimeout() time.Duration {
	return time.Duration(r.HypothesisTimeoutMS) * time.Millisecond
}

func (r RetrievalConfig) InterpreterTimeout() time.Duration {
	return time.Duration(r.InterpreterTimeoutMS) * time.Millisecond
}

// IngestionConfig controls the offline ingestion pipeline's concurrency.
type IngestionConfig struct {
	MaxWorkers int `yaml:"max_workers"`
}

// TelemetryConfig controls OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// CacheConfig points at the Redis instance backing the interpretation and
// embedding caches.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// IngestPubConfig controls publication of contract.reingested events.
type IngestPubConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DataPath string `yaml:"data_path"`

	LogPath  string `yaml:"log_path"`
	LogLevel string `yaml:"log_level"`

	AnthropicKey    string `yaml:"anthropic_key,omitempty"`
	OpenAIAPIKey    string `yaml:"openai_api_key,omitempty"`
	GoogleGeminiKey string `yaml:"google_gemini_key,omitempty"`
	LLMProvider     string `yaml:"llm_provider"` // "anthropic", "openai", "google"

	Database   DatabaseConfig   `yaml:"database"`
	DBPool     *pgxpool.Pool    `yaml:"-"`
	Qdrant     QdrantConfig     `yaml:"qdrant"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Ingestion  IngestionConfig  `yaml:"ingestion"`
	Cache      CacheConfig      `yaml:"cache"`
	IngestPub  IngestPubConfig  `yaml:"ingest_pub"`
	OTel       TelemetryConfig  `yaml:"otel"`
}

// LoadConfig reads the configuration from a YAML file and fills in every
// tunable spec.md leaves unset with its documented default.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		pterm.Error.Printf("Error reading config file: %v\n", err)
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		pterm.Error.Printf("Error unmarshaling config: %v\n", err)
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyDefaults(&config)

	pterm.Success.Println("Configuration loaded successfully.")
	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Database.Backend == "" {
		c.Database.Backend = "memory"
		pterm.Info.Println("No database backend specified, defaulting to in-memory store.")
	}
	if c.Ingestion.MaxWorkers <= 0 {
		c.Ingestion.MaxWorkers = 4
		pterm.Info.Println("No max_workers specified for ingestion, using default (4).")
	}
	if c.OTel.ServiceName == "" {
		c.OTel.ServiceName = "cba-retrieval"
	}
	if c.LLMProvider == "" {
		c.LLMProvider = "anthropic"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	r := &c.Retrieval
	setDefaultInt(&r.RRFK, 60)
	setDefaultFloat(&r.VectorWeight, 1.0)
	setDefaultFloat(&r.KeywordWeight, 1.0)
	setDefaultFloat(&r.SimilarityFloor, 0.2)
	setDefaultFloat(&r.ConceptBoost, 0.03)
	setDefaultFloat(&r.ArticleBoost, 0.30)
	setDefaultFloat(&r.SectionBoost, 0.10)
	setDefaultFloat(&r.BoostArticleListBoost, 0.20)
	setDefaultFloat(&r.ClassificationMatchBoost, 0.15)
	setDefaultFloat(&r.ClassificationMismatchPenalty, -0.05)
	setDefaultFloat(&r.TopicBoost, 0.15)
	setDefaultFloat(&r.HighStakesBoost, 0.10)
	setDefaultInt(&r.RerankerMaxChunks, 15)
	setDefaultFloat(&r.RerankerWeightOrig, 0.3)
	setDefaultFloat(&r.RerankerWeightLLM, 0.7)
	setDefaultInt(&r.RerankerTimeoutMS, 10000)
	setDefaultFloat(&r.HypothesisTitleBoost, 0.5)
	setDefaultInt(&r.HypothesisTimeoutMS, 2000)
	setDefaultInt(&r.InterpreterTimeoutMS, 15000)
	setDefaultInt(&r.TotalCap, 20)
	setDefaultInt(&r.MaxConcurrentAngles, 3)
	setDefaultInt(&r.FullArticleThreshold, 2)
	setDefaultInt(&r.FullArticleCap, 15)
	setDefaultInt(&r.SiblingSectionCap, 10)
	setDefaultInt(&r.SiblingSectionsPerArticle, 2)
	setDefaultInt(&r.DominantWindow, 10)
}

func setDefaultInt(field *int, def int) {
	if *field == 0 {
		*field = def
	}
}

func setDefaultFloat(field *float64, def float64) {
	if *field == 0 {
		*field = def
	}
}
