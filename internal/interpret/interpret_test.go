package interpret

import (
	"context"
	"testing"

	"manifold/internal/llmclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractExplicitArticlesDeduplicatesAndOrders(t *testing.T) {
	got := ExtractExplicitArticles("Does Article 12 conflict with Article 5, or Article 12 again?")
	assert.Equal(t, []int{12, 5}, got)
}

func TestInterpretMergesLLMAndRegexArticles(t *testing.T) {
	fake := &llmclient.Fake{Responses: []string{
		`{"intent":"contract","key_concepts":["overtime"],"entities":[],"hypothetical_answers":["Overtime shall be paid at 1.5x the regular rate after 40 hours."],"search_queries":["What is the overtime pay rate?","How is overtime compensation calculated?"],"likely_sections":[],"explicit_articles":[6]}`,
	}}
	p := New(fake)
	got := p.Interpret(context.Background(), "Is overtime covered under Article 5?")
	require.True(t, got.Success)
	assert.ElementsMatch(t, []int{5, 6}, got.ExplicitArticles)
	assert.Len(t, got.HypotheticalAnswers, 1)
}

func TestInterpretFallsBackOnUpstreamError(t *testing.T) {
	fake := &llmclient.Fake{Err: assertErr{}}
	p := New(fake)
	got := p.Interpret(context.Background(), "What is Article 9 about?")
	assert.False(t, got.Success)
	assert.NotEmpty(t, got.Error)
	assert.Equal(t, []int{9}, got.ExplicitArticles)
	assert.Equal(t, []string{"What is Article 9 about?"}, got.SearchQueries)
}

func TestInterpretFallsBackOnInvalidJSON(t *testing.T) {
	fake := &llmclient.Fake{Responses: []string{"this is not json"}}
	p := New(fake)
	got := p.Interpret(context.Background(), "plain question")
	assert.False(t, got.Success)
}

func TestGetAllSearchQueriesPriorityOrderAndCap(t *testing.T) {
	i := Interpretation{
		OriginalQuery:       "q0",
		HypotheticalAnswers: []string{"h1", "h2"},
		SearchQueries:       []string{"a1", "a2", "a3", "a4", "a5"},
	}
	got := i.GetAllSearchQueries()
	assert.LessOrEqual(t, len(got), MaxAngles)
	assert.Equal(t, "q0", got[0])
	assert.Equal(t, "h1", got[1])
	assert.Equal(t, "h2", got[2])
}

type assertErr struct{}

func (assertErr) Error() string { return "upstream unavailable" }
