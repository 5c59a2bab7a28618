package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"manifold/internal/chunk"
	"manifold/internal/manifest"
	"manifold/internal/wage"
)

// PostgresChunkStore persists chunks to a single JSONB-backed table,
// mirroring the teacher's pgSearch best-effort-bootstrap shape
// (internal/persistence/databases/postgres_search.go) rather than a
// normalized per-field schema, since the chunk shape evolves with the
// enrichment pipeline.
type PostgresChunkStore struct {
	pool *pgxpool.Pool
}

func NewPostgresChunkStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresChunkStore, error) {
	if _, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS cba_chunks (
  chunk_id TEXT PRIMARY KEY,
  contract_id TEXT NOT NULL,
  article_num INT NOT NULL DEFAULT 0,
  section_num TEXT NOT NULL DEFAULT '',
  data JSONB NOT NULL
);
`); err != nil {
		return nil, fmt.Errorf("store: bootstrap cba_chunks: %w", err)
	}
	if _, err := pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS cba_chunks_article_idx ON cba_chunks (contract_id, article_num)`); err != nil {
		return nil, fmt.Errorf("store: bootstrap cba_chunks index: %w", err)
	}
	return &PostgresChunkStore{pool: pool}, nil
}

func (p *PostgresChunkStore) Put(ctx context.Context, c chunk.Chunk) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("store: marshal chunk: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO cba_chunks(chunk_id, contract_id, article_num, section_num, data)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (chunk_id) DO UPDATE SET data=EXCLUDED.data, article_num=EXCLUDED.article_num, section_num=EXCLUDED.section_num
`, c.ChunkID, c.ContractID, c.ArticleNum, c.SectionNum, data)
	return err
}

func (p *PostgresChunkStore) ByArticle(ctx context.Context, contractID string, articleNum int) ([]chunk.Chunk, error) {
	rows, err := p.pool.Query(ctx, `
SELECT data FROM cba_chunks WHERE contract_id=$1 AND article_num=$2
`, contractID, articleNum)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out, err := scanChunks(rows)
	if err != nil {
		return nil, err
	}
	sortBySection(out)
	return out, nil
}

func (p *PostgresChunkStore) BySectionBefore(ctx context.Context, contractID string, articleNum int, sectionNum string, limit int) ([]chunk.Chunk, error) {
	rows, err := p.pool.Query(ctx, `
SELECT data FROM cba_chunks
WHERE contract_id=$1 AND article_num=$2
`, contractID, articleNum)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out, err := scanChunks(rows)
	if err != nil {
		return nil, err
	}
	var filtered []chunk.Chunk
	for _, c := range out {
		if sectionLess(c.SectionNum, sectionNum) {
			filtered = append(filtered, c)
		}
	}
	sortBySection(filtered)
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered, nil
}

func (p *PostgresChunkStore) Count(ctx context.Context, contractID string) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx, `SELECT count(*) FROM cba_chunks WHERE contract_id=$1`, contractID).Scan(&n)
	return n, err
}

func (p *PostgresChunkStore) All(ctx context.Context, contractID string) ([]chunk.Chunk, error) {
	rows, err := p.pool.Query(ctx, `SELECT data FROM cba_chunks WHERE contract_id=$1`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out, err := scanChunks(rows)
	if err != nil {
		return nil, err
	}
	sortBySection(out)
	return out, nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanChunks(rows pgxRows) ([]chunk.Chunk, error) {
	var out []chunk.Chunk
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var c chunk.Chunk
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PostgresManifestStore persists one manifest document per contract.
type PostgresManifestStore struct {
	pool *pgxpool.Pool
}

func NewPostgresManifestStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresManifestStore, error) {
	if _, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS cba_manifests (
  contract_id TEXT PRIMARY KEY,
  data JSONB NOT NULL
);
`); err != nil {
		return nil, fmt.Errorf("store: bootstrap cba_manifests: %w", err)
	}
	return &PostgresManifestStore{pool: pool}, nil
}

func (p *PostgresManifestStore) Put(ctx context.Context, m *manifest.Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("store: marshal manifest: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO cba_manifests(contract_id, data) VALUES ($1,$2)
ON CONFLICT (contract_id) DO UPDATE SET data=EXCLUDED.data
`, m.ContractID, data)
	return err
}

func (p *PostgresManifestStore) Get(ctx context.Context, contractID string) (*manifest.Manifest, bool, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM cba_manifests WHERE contract_id=$1`, contractID).Scan(&data)
	if err != nil {
		return nil, false, nil
	}
	m, perr := manifest.Parse(data)
	if perr != nil {
		return nil, false, perr
	}
	return m, true, nil
}

// PostgresWageStore persists one wage table per contract.
type PostgresWageStore struct {
	pool *pgxpool.Pool
}

func NewPostgresWageStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresWageStore, error) {
	if _, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS cba_wage_tables (
  contract_id TEXT PRIMARY KEY,
  data JSONB NOT NULL
);
`); err != nil {
		return nil, fmt.Errorf("store: bootstrap cba_wage_tables: %w", err)
	}
	return &PostgresWageStore{pool: pool}, nil
}

func (p *PostgresWageStore) Put(ctx context.Context, contractID string, t wage.Table) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("store: marshal wage table: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO cba_wage_tables(contract_id, data) VALUES ($1,$2)
ON CONFLICT (contract_id) DO UPDATE SET data=EXCLUDED.data
`, contractID, data)
	return err
}

func (p *PostgresWageStore) Get(ctx context.Context, contractID string) (wage.Table, bool, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM cba_wage_tables WHERE contract_id=$1`, contractID).Scan(&data)
	if err != nil {
		return wage.Table{}, false, nil
	}
	var t wage.Table
	if uerr := json.Unmarshal(data, &t); uerr != nil {
		return wage.Table{}, false, uerr
	}
	return t, true, nil
}
