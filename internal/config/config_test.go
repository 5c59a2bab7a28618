package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigSuccess(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "cfgtest")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cfgContent := `host: "localhost"
port: 8080
database:
  backend: postgres
  connection_string: "user:pass@/dbname"
qdrant:
  host: "qdrant.internal"
  port: 6334
  collection: "cba_chunks"
embeddings:
  provider: "anthropic"
  dimensions: 1024
`
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfgContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Host != "localhost" || cfg.Port != 8080 {
		t.Errorf("unexpected host/port: %v:%v", cfg.Host, cfg.Port)
	}
	if cfg.Database.ConnectionString != "user:pass@/dbname" {
		t.Errorf("database connection incorrect: %v", cfg.Database.ConnectionString)
	}
	if cfg.Qdrant.Host != "qdrant.internal" {
		t.Errorf("qdrant host incorrect: %v", cfg.Qdrant.Host)
	}
}

func TestLoadConfigAppliesRetrievalDefaults(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "cfgtest")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(`host: "localhost"`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Retrieval.RRFK != 60 {
		t.Errorf("expected default rrf_k 60, got %d", cfg.Retrieval.RRFK)
	}
	if cfg.Retrieval.ArticleBoost != 0.30 {
		t.Errorf("expected default article_boost 0.30, got %v", cfg.Retrieval.ArticleBoost)
	}
	if cfg.Retrieval.ClassificationMismatchPenalty != -0.05 {
		t.Errorf("expected default classification_mismatch_penalty -0.05, got %v", cfg.Retrieval.ClassificationMismatchPenalty)
	}
	if cfg.Retrieval.RerankerMaxChunks != 15 {
		t.Errorf("expected default reranker_max_chunks 15, got %d", cfg.Retrieval.RerankerMaxChunks)
	}
	if cfg.Database.Backend != "memory" {
		t.Errorf("expected default database backend memory, got %s", cfg.Database.Backend)
	}
	if cfg.Ingestion.MaxWorkers != 4 {
		t.Errorf("expected default max_workers 4, got %d", cfg.Ingestion.MaxWorkers)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log_level info, got %s", cfg.LogLevel)
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "bad.*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	if _, err := tmpFile.WriteString("not: [invalid yaml"); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}
	tmpFile.Close()

	_, err = LoadConfig(tmpFile.Name())
	if err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}
