package rerank

import (
	"context"
	"testing"

	"manifold/internal/chunk"
	"manifold/internal/hybrid"
	"manifold/internal/llmclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []hybrid.Result {
	return []hybrid.Result{
		{ChunkID: "c1", Chunk: chunk.Chunk{ChunkID: "c1", Citation: "Article 5, Section 1"}, RRFScore: 0.5, VectorScore: 0.4},
		{ChunkID: "c2", Chunk: chunk.Chunk{ChunkID: "c2", Citation: "Article 16, Section 1"}, RRFScore: 0.3, VectorScore: 0.2},
	}
}

func TestRerankReordersByBlendedScore(t *testing.T) {
	fake := &llmclient.Fake{Responses: []string{`{"0": 2, "1": 9}`}}
	r := New(fake)
	got := r.Rerank(context.Background(), "q", sampleResults())
	require.True(t, got.Success)
	assert.Equal(t, "c2", got.Chunks[0].ChunkID)
	assert.Equal(t, 2, got.PositionChanges)
}

func TestRerankMissingEntriesDefaultToFive(t *testing.T) {
	fake := &llmclient.Fake{Responses: []string{`{"0": 8}`}}
	r := New(fake)
	got := r.Rerank(context.Background(), "q", sampleResults())
	require.True(t, got.Success)
	assert.InDelta(t, normalizeScore(5), got.Scores["c2"], 1e-9)
}

func TestRerankUnchangedOnUpstreamFailure(t *testing.T) {
	fake := &llmclient.Fake{Err: failErr{}}
	r := New(fake)
	input := sampleResults()
	got := r.Rerank(context.Background(), "q", input)
	assert.False(t, got.Success)
	assert.Equal(t, input, got.Chunks)
}

func TestRerankChunksBeyondMaxAppendedUnchanged(t *testing.T) {
	var many []hybrid.Result
	for i := 0; i < MaxChunks+3; i++ {
		many = append(many, hybrid.Result{ChunkID: "c" + string(rune('a'+i)), Chunk: chunk.Chunk{ChunkID: "c" + string(rune('a'+i))}})
	}
	fake := &llmclient.Fake{Responses: []string{"{}"}}
	r := New(fake)
	got := r.Rerank(context.Background(), "q", many)
	require.True(t, got.Success)
	require.Len(t, got.Chunks, len(many))
	for i := MaxChunks; i < len(many); i++ {
		assert.Equal(t, many[i].ChunkID, got.Chunks[i].ChunkID)
	}
}

func TestRerankEmptyInput(t *testing.T) {
	r := New(&llmclient.Fake{})
	got := r.Rerank(context.Background(), "q", nil)
	assert.True(t, got.Success)
	assert.Empty(t, got.Chunks)
}

type failErr struct{}

func (failErr) Error() string { return "reranker unavailable" }
