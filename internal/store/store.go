// Package store is the persistence boundary for chunks, wage tables, and
// manifests: a Postgres-backed implementation for production and an
// in-memory implementation for tests and small deployments, selected by a
// factory the way the teacher's databases.NewManager selects search/vector
// backends.
package store

import (
	"context"
	"sort"

	"manifold/internal/chunk"
	"manifold/internal/manifest"
	"manifold/internal/wage"
)

// ChunkStore is the contract lookup surface the retrieval orchestrator
// needs beyond the vector index: fetching a contract's full chunk set for
// full-article and sibling-section expansion (spec.md §4.11).
type ChunkStore interface {
	Put(ctx context.Context, c chunk.Chunk) error
	ByArticle(ctx context.Context, contractID string, articleNum int) ([]chunk.Chunk, error)
	BySectionBefore(ctx context.Context, contractID string, articleNum int, sectionNum string, limit int) ([]chunk.Chunk, error)
	Count(ctx context.Context, contractID string) (int, error)
	// All returns every chunk stored for contractID, for rebuilding the
	// BM25/vector/concept indexes the query-side pipeline searches.
	All(ctx context.Context, contractID string) ([]chunk.Chunk, error)
}

// ManifestStore resolves a contract's routing manifest.
type ManifestStore interface {
	Put(ctx context.Context, m *manifest.Manifest) error
	Get(ctx context.Context, contractID string) (*manifest.Manifest, bool, error)
}

// WageStore resolves a contract's wage table.
type WageStore interface {
	Put(ctx context.Context, contractID string, t wage.Table) error
	Get(ctx context.Context, contractID string) (wage.Table, bool, error)
}

// sortBySection orders chunks by (section_num numeric-aware, subsection)
// the way appendix/article rendering expects them to read.
func sortBySection(chunks []chunk.Chunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].SectionNum != chunks[j].SectionNum {
			return sectionLess(chunks[i].SectionNum, chunks[j].SectionNum)
		}
		return chunks[i].Subsection < chunks[j].Subsection
	})
}

// sectionLess compares dotted/alpha section numbers ("9", "10", "10a")
// numerically where possible, falling back to lexical order.
func sectionLess(a, b string) bool {
	an, aok := leadingInt(a)
	bn, bok := leadingInt(b)
	if aok && bok && an != bn {
		return an < bn
	}
	return a < b
}

func leadingInt(s string) (int, bool) {
	n := 0
	any := false
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		any = true
	}
	return n, any
}
