package hybrid

import (
	"context"
	"testing"

	"manifold/internal/bm25"
	"manifold/internal/chunk"
	"manifold/internal/concept"
	"manifold/internal/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSearcher(t *testing.T) *Searcher {
	t.Helper()
	chunks := []chunk.Chunk{
		{ChunkID: "c1", ArticleNum: 5, Content: "Overtime shall be paid at one and one-half times the regular rate.", Citation: "Article 5, Section 1", ArticleTitle: "HOURS OF WORK"},
		{ChunkID: "c2", ArticleNum: 16, Content: "Employees shall receive two personal holidays per contract year.", Citation: "Article 16, Section 1", ArticleTitle: "PERSONAL HOLIDAYS"},
	}
	mem := vectorindex.NewMemory()
	require.NoError(t, mem.Add(context.Background(), []vectorindex.Item{
		{Chunk: chunks[0], Vector: []float32{1, 0}},
		{Chunk: chunks[1], Vector: []float32{0, 1}},
	}))
	embed := func(ctx context.Context, text string) ([]float32, error) { return []float32{1, 0}, nil }

	return &Searcher{
		Vector:       &vectorindex.Index{Store: mem, Embed: embed, SimilarityFloor: -1},
		Keyword:      bm25.Build(chunks),
		ConceptIndex: concept.Build(chunks),
	}
}

func TestSearchFusesVectorAndKeywordRankings(t *testing.T) {
	s := buildSearcher(t)
	results, err := s.Search(context.Background(), "overtime pay rate", SearchOptions{K: 5})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "c1", results[0].ChunkID)
	assert.Greater(t, results[0].RRFScore, 0.0)
}

func TestSearchConceptBoostPromotesArticle(t *testing.T) {
	s := buildSearcher(t)
	results, err := s.Search(context.Background(), "generic query text", SearchOptions{
		K: 5, BoostArticles: []int{16},
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	var boosted Result
	for _, r := range results {
		if r.ChunkID == "c2" {
			boosted = r
		}
	}
	require.NotEmpty(t, boosted.ChunkID)
	assert.GreaterOrEqual(t, boosted.RRFScore, conceptBoost)
}

func TestFuseRRFDeterministicGivenIdenticalInputs(t *testing.T) {
	s := buildSearcher(t)
	r1, err := s.Search(context.Background(), "overtime", SearchOptions{K: 5})
	require.NoError(t, err)
	r2, err := s.Search(context.Background(), "overtime", SearchOptions{K: 5})
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
