package vectorindex

import (
	"context"
	"testing"

	"manifold/internal/chunk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEmbed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func TestSearchAppliesArticleAndClassificationBoosts(t *testing.T) {
	mem := NewMemory()
	require.NoError(t, mem.Add(context.Background(), []Item{
		{
			Chunk:  chunk.Chunk{ChunkID: "c1", ArticleNum: 12, SectionNum: "28", AppliesTo: []string{"clerk"}},
			Vector: []float32{1, 0, 0},
		},
		{
			Chunk:  chunk.Chunk{ChunkID: "c2", ArticleNum: 99, AppliesTo: []string{chunk.AllClassifications}},
			Vector: []float32{1, 0, 0},
		},
	}))
	idx := &Index{Store: mem, Embed: fakeEmbed, SimilarityFloor: -1}

	got, err := idx.Search(context.Background(), "what does Article 12, Section 28 say", SearchOptions{
		K: 5, RequestedClass: "clerk",
	})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "c1", got[0].ChunkID)
	assert.InDelta(t, 1.0+0.30+0.10+0.15, got[0].AdjustedSimilarity, 1e-9)
}

func TestSearchDropsBelowSimilarityFloor(t *testing.T) {
	mem := NewMemory()
	require.NoError(t, mem.Add(context.Background(), []Item{
		{Chunk: chunk.Chunk{ChunkID: "c1", AppliesTo: []string{chunk.AllClassifications}}, Vector: []float32{0, 1, 0}},
	}))
	idx := &Index{Store: mem, Embed: fakeEmbed, SimilarityFloor: 0.5}

	got, err := idx.Search(context.Background(), "irrelevant", SearchOptions{K: 5})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAppliesToAllNeverPenalized(t *testing.T) {
	mem := NewMemory()
	require.NoError(t, mem.Add(context.Background(), []Item{
		{Chunk: chunk.Chunk{ChunkID: "c1", AppliesTo: []string{chunk.AllClassifications}}, Vector: []float32{1, 0, 0}},
	}))
	idx := &Index{Store: mem, Embed: fakeEmbed, SimilarityFloor: -1}

	got, err := idx.Search(context.Background(), "q", SearchOptions{K: 5, RequestedClass: "driver"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 1.0, got[0].AdjustedSimilarity, 1e-9)
}
