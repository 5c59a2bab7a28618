package enrich

import (
	"context"
	"testing"
	"time"

	"manifold/internal/chunk"
	"manifold/internal/llmclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTaxonomy = chunk.Taxonomy{Topics: chunk.DefaultTopics, Classifications: []string{"clerk"}}

func TestRuleBasedDetectsTopicFromArticleNumber(t *testing.T) {
	c := chunk.Chunk{ArticleNum: 16, Content: "Each employee shall receive personal holidays."}
	out := NewRuleBased().Enrich(context.Background(), c, testTaxonomy)
	assert.Contains(t, out.Topics, "personal_holiday")
	assert.Equal(t, []string{chunk.AllClassifications}, out.AppliesTo)
}

func TestRuleBasedFlagsHighStakesContent(t *testing.T) {
	c := chunk.Chunk{ArticleNum: 43, Content: "No employee shall be discharged except for just cause."}
	out := NewRuleBased().Enrich(context.Background(), c, testTaxonomy)
	assert.True(t, out.IsHighStakes)
	assert.Contains(t, out.Topics, "discharge")
}

func TestRuleBasedExtractsCrossReferences(t *testing.T) {
	c := chunk.Chunk{Content: "See Article 12, Section 3 for the grievance procedure."}
	out := NewRuleBased().Enrich(context.Background(), c, testTaxonomy)
	require.NotEmpty(t, out.CrossReferences)
	assert.Contains(t, out.CrossReferences, "article 12, section 3")
}

func TestLLMEnricherParsesValidJSON(t *testing.T) {
	fake := &llmclient.Fake{Responses: []string{
		`{"applies_to":["clerk"],"topics":["overtime"],"cross_references":[],"summary":"Overtime is paid at 1.5x.","is_definition":false,"is_exception":false,"hire_date_sensitive":false,"is_high_stakes":false,"worker_questions":["do I get overtime?"],"alternative_names":["OT"]}`,
	}}
	e := NewLLM(fake)
	c := chunk.Chunk{Content: "Overtime shall be paid at one and one-half times the regular rate."}
	out := e.Enrich(context.Background(), c, testTaxonomy)
	assert.Equal(t, []string{"clerk"}, out.AppliesTo)
	assert.Contains(t, out.Topics, "overtime")
	assert.Equal(t, []string{"ot"}, out.AlternativeNames)
}

func TestLLMEnricherFallsBackOnParseFailure(t *testing.T) {
	fake := &llmclient.Fake{Responses: []string{"not json at all"}}
	e := NewLLM(fake)
	c := chunk.Chunk{ArticleNum: 16, Content: "Each employee shall receive personal holidays."}
	out := e.Enrich(context.Background(), c, testTaxonomy)
	assert.Contains(t, out.Topics, "personal_holiday")
}

func TestLLMEnricherRetriesOnRateLimitThenSucceeds(t *testing.T) {
	fake := &llmclient.Fake{}
	calls := 0
	fake.Err = nil
	// Wrap Generate via a small adapter since Fake doesn't vary errors per call.
	e := NewLLM(&sequencedClient{
		fns: []func() (string, error){
			func() (string, error) { calls++; return "", rateLimitErr{} },
			func() (string, error) {
				calls++
				return `{"applies_to":["all"],"topics":[],"cross_references":[],"summary":"ok","is_definition":false,"is_exception":false,"hire_date_sensitive":false,"is_high_stakes":false,"worker_questions":[],"alternative_names":[]}`, nil
			},
		},
	})
	e.sleep = func(time.Duration) {} // don't actually sleep in tests
	out := e.Enrich(context.Background(), chunk.Chunk{Content: "x"}, testTaxonomy)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{chunk.AllClassifications}, out.AppliesTo)
}

type rateLimitErr struct{}

func (rateLimitErr) Error() string { return "429 rate limit exceeded" }

type sequencedClient struct {
	fns []func() (string, error)
	i   int
}

func (s *sequencedClient) Name() string { return "sequenced" }

func (s *sequencedClient) Generate(ctx context.Context, system, user string, opts llmclient.Options) (string, error) {
	fn := s.fns[s.i]
	if s.i < len(s.fns)-1 {
		s.i++
	}
	return fn()
}
