package bm25

import (
	"testing"

	"manifold/internal/chunk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCorpus() []chunk.Chunk {
	return []chunk.Chunk{
		{ChunkID: "c1", Content: "Overtime shall be paid at one and one-half times the regular rate after forty hours.", Citation: "Article 5, Section 1", ArticleTitle: "HOURS OF WORK"},
		{ChunkID: "c2", Content: "Employees shall receive two personal holidays per contract year.", Citation: "Article 16, Section 1", ArticleTitle: "PERSONAL HOLIDAYS"},
		{ChunkID: "c3", Content: "No employee shall be disciplined or discharged except for just cause.", Citation: "Article 43, Section 1", ArticleTitle: "DISCIPLINE AND DISCHARGE"},
	}
}

func TestSearchRanksRelevantDocumentFirst(t *testing.T) {
	idx := Build(sampleCorpus())
	results := idx.Search("overtime pay rate", 5, nil)
	require.NotEmpty(t, results)
	assert.Equal(t, "c1", results[0].ChunkID)
}

func TestSearchMatchesCitationText(t *testing.T) {
	idx := Build(sampleCorpus())
	results := idx.Search("article 16", 5, nil)
	require.NotEmpty(t, results)
	assert.Equal(t, "c2", results[0].ChunkID)
}

func TestSearchWithExpandedTermsFindsAdditionalMatches(t *testing.T) {
	idx := Build(sampleCorpus())
	withoutExpansion := idx.Search("just cause discipline", 5, nil)
	withExpansion := idx.Search("zzz", 5, []string{"discharged"})
	require.NotEmpty(t, withoutExpansion)
	require.NotEmpty(t, withExpansion)
	assert.Equal(t, "c3", withExpansion[0].ChunkID)
}

func TestSearchNoMatchReturnsEmpty(t *testing.T) {
	idx := Build(sampleCorpus())
	results := idx.Search("xyzzy nonexistent term", 5, nil)
	assert.Empty(t, results)
}

func TestTokenizeLowercasesAndDropsShortRuns(t *testing.T) {
	got := Tokenize("Article 5, a 12-month probationary period!")
	assert.Contains(t, got, "article")
	assert.NotContains(t, got, "a")
}
