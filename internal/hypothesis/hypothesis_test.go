package hypothesis

import (
	"context"
	"testing"

	"manifold/internal/llmclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictParsesLineDelimitedTitles(t *testing.T) {
	fake := &llmclient.Fake{Responses: []string{"PERSONAL HOLIDAYS\nVACATION\n"}}
	l := New(fake)
	got := l.Predict(context.Background(), "do I get float days?")
	require.True(t, got.Success)
	assert.Equal(t, []string{"PERSONAL HOLIDAYS", "VACATION"}, got.Titles)
}

func TestPredictFailsOpenOnUpstreamError(t *testing.T) {
	fake := &llmclient.Fake{Err: assertErr{}}
	l := New(fake)
	got := l.Predict(context.Background(), "q")
	assert.False(t, got.Success)
	assert.Empty(t, got.Titles)
}

func TestExpandQueryAppendsTitles(t *testing.T) {
	out := ExpandQuery("do I get float days?", []string{"PERSONAL HOLIDAYS"})
	assert.Contains(t, out, "do I get float days?")
	assert.Contains(t, out, "PERSONAL HOLIDAYS")
}

func TestMatchesTitleWordSetOrderIndependent(t *testing.T) {
	assert.True(t, MatchesTitle("HOLIDAYS PERSONAL", []string{"PERSONAL HOLIDAYS"}))
	assert.False(t, MatchesTitle("VACATION", []string{"PERSONAL HOLIDAYS"}))
}

type assertErr struct{}

func (assertErr) Error() string { return "hypothesis upstream unavailable" }
