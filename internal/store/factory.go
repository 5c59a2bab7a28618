package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Backends bundles the three store interfaces the rest of the service
// depends on, the way the teacher's databases.Manager bundles
// Search/Vector/Graph.
type Backends struct {
	Chunks    ChunkStore
	Manifests ManifestStore
	Wages     WageStore
}

// Config selects a backend per spec.md §6's persistence requirements.
// Backend is "memory" or "postgres"; DSN is required for postgres.
type Config struct {
	Backend string
	DSN     string
}

// NewBackends constructs store backends from Config, the way the teacher's
// NewManager resolves search/vector/graph backends from DBConfig.
func NewBackends(ctx context.Context, cfg Config) (Backends, error) {
	switch cfg.Backend {
	case "", "memory":
		return Backends{
			Chunks:    NewMemoryChunkStore(),
			Manifests: NewMemoryManifestStore(),
			Wages:     NewMemoryWageStore(),
		}, nil
	case "postgres", "pg":
		if cfg.DSN == "" {
			return Backends{}, fmt.Errorf("store: postgres backend requires a DSN")
		}
		pool, err := newPool(ctx, cfg.DSN)
		if err != nil {
			return Backends{}, fmt.Errorf("store: connect postgres: %w", err)
		}
		chunks, err := NewPostgresChunkStore(ctx, pool)
		if err != nil {
			return Backends{}, err
		}
		manifests, err := NewPostgresManifestStore(ctx, pool)
		if err != nil {
			return Backends{}, err
		}
		wages, err := NewPostgresWageStore(ctx, pool)
		if err != nil {
			return Backends{}, err
		}
		return Backends{Chunks: chunks, Manifests: manifests, Wages: wages}, nil
	default:
		return Backends{}, fmt.Errorf("store: unsupported backend %q", cfg.Backend)
	}
}

func newPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return pgxpool.New(ctx, dsn)
}
