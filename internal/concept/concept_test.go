package concept

import (
	"testing"

	"manifold/internal/chunk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChunks() []chunk.Chunk {
	return []chunk.Chunk{
		{
			ChunkID: "c1", ArticleNum: 16, ArticleTitle: "PERSONAL HOLIDAYS",
			WorkerQuestions:  []string{"Do I get float days?"},
			AlternativeNames: []string{"floater", "float day"},
		},
		{
			ChunkID: "c2", ArticleNum: 43, ArticleTitle: "DISCIPLINE AND DISCHARGE",
			WorkerQuestions:  []string{"Can I be fired without warning?"},
			AlternativeNames: []string{"just cause"},
		},
		{
			// No article_num: an appendix chunk, must be skipped.
			ChunkID: "c3", ArticleNum: 0,
			AlternativeNames: []string{"pay scale"},
		},
	}
}

func TestBuildAggregatesPerArticleAndSkipsArticlelessChunks(t *testing.T) {
	idx := Build(sampleChunks())
	require.Contains(t, idx.Articles, 16)
	require.Contains(t, idx.Articles, 43)
	assert.NotContains(t, idx.Articles, 0)

	a16 := idx.Articles[16]
	assert.Contains(t, a16.AlternativeNames, "floater")
	assert.Contains(t, a16.WorkerQuestions, "do i get float days?")
	assert.Equal(t, []string{"c1"}, a16.ChunkIDs)
}

func TestFindArticlesByConceptSubstringMatch(t *testing.T) {
	idx := Build(sampleChunks())
	articles := idx.FindArticlesByConcept("do I qualify for a floater day")
	require.NotEmpty(t, articles)
	assert.Equal(t, 16, articles[0])
}

func TestFindArticlesByQuestionJaccard(t *testing.T) {
	idx := Build(sampleChunks())
	articles := idx.FindArticlesByQuestion("can I get fired without any warning at all")
	require.NotEmpty(t, articles)
	assert.Equal(t, 43, articles[0])
}

func TestFindArticlesByQuestionBelowThresholdReturnsNothing(t *testing.T) {
	idx := Build(sampleChunks())
	articles := idx.FindArticlesByQuestion("what is the weather today")
	assert.Empty(t, articles)
}
