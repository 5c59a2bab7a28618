package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"
)

// Memory is an in-process Store backed by a slice of vectors, suitable for
// tests and small single-contract deployments. Cosine similarity per
// spec.md §4.5 ("a single embedding model ... cosine distance").
type Memory struct {
	mu    sync.RWMutex
	items []Item
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Add(_ context.Context, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, items...)
	return nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items), nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return nil
}

func (m *Memory) RawSearch(_ context.Context, vector []float32, k int, filter Filter) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		item Item
		sim  float64
	}
	var candidates []scored
	for _, it := range m.items {
		if !filter.matches(it.Chunk) {
			continue
		}
		candidates = append(candidates, scored{item: it, sim: cosineSimilarity(vector, it.Vector)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].sim > candidates[j].sim })
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Result{ChunkID: c.item.Chunk.ChunkID, Similarity: c.sim, Metadata: c.item.Chunk})
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
