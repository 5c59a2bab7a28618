package intent

import (
	"testing"

	"manifold/internal/manifest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(`{
		"contract_id": "local-42",
		"query_routing": {
			"slang_to_contract": {"floater": "personal holiday"},
			"topic_to_articles": {"personal_holiday": [16], "overtime": [5], "wage_appendix": [50]}
		}
	}`))
	require.NoError(t, err)
	return m
}

func TestClassifyWageIntent(t *testing.T) {
	it := Classify("what is my hourly rate", sampleManifest(t))
	assert.Equal(t, Wage, it.Type)
}

func TestClassifyWageExclusionsNotTreatedAsWage(t *testing.T) {
	it := Classify("when do I get my vacation pay", sampleManifest(t))
	assert.NotEqual(t, Wage, it.Type)
}

func TestClassifyHighStakesActiveSetsEscalation(t *testing.T) {
	it := Classify("I am being fired right now", sampleManifest(t))
	assert.Equal(t, HighStakes, it.Type)
	assert.True(t, it.RequiresEscalation)
}

func TestClassifyHighStakesGeneralDoesNotEscalate(t *testing.T) {
	it := Classify("what are my rights during an investigation", sampleManifest(t))
	assert.Equal(t, HighStakes, it.Type)
	assert.False(t, it.RequiresEscalation)
}

func TestClassifyTopicPriorityPersonalHolidayBeforeVacation(t *testing.T) {
	it := Classify("can I use a float day instead of vacation", sampleManifest(t))
	assert.Equal(t, "personal_holiday", it.Topic)
	assert.Equal(t, []int{16}, it.RelevantArticles)
}

func TestExpandAppendsLegalTermPreservingOriginal(t *testing.T) {
	out := Expand("do i get a floater?", sampleManifest(t))
	assert.True(t, len(out) > len("do i get a floater?"))
	assert.Contains(t, out, "do i get a floater?")
	assert.Contains(t, out, "personal holiday")
}

func TestExpandNoMatchReturnsOriginal(t *testing.T) {
	out := Expand("where is the bathroom", sampleManifest(t))
	assert.Equal(t, "where is the bathroom", out)
}

func TestExpandMatchesPluralSlang(t *testing.T) {
	out := Expand("do i get float days?", sampleManifest(t))
	assert.Equal(t, "do i get float days? (personal holiday)", out)
}
