package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `{
  "contract_id": "local-42",
  "employer": "Acme Distribution",
  "union_local": "Local 42",
  "classifications": ["all_purpose_clerk", "senior_clerk"],
  "query_routing": {
    "slang_to_contract": {"floater": "personal holiday", "ot": "overtime"},
    "topic_to_articles": {"overtime": [5, 6], "personal_holiday": [16]},
    "classification_to_articles": {"clerk": [10, 11]},
    "topic_patterns": {"overtime": "(?i)overtime|time and a half"}
  }
}`

func TestParseAndRoutingLookups(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)
	assert.Equal(t, "local-42", m.ContractID)
	assert.Equal(t, []int{16}, m.ArticlesForTopic("personal_holiday"))
	assert.Equal(t, []int{10, 11}, m.ArticlesForClassification("clerk"))

	phrase, ok := m.SlangPhrase("floater")
	require.True(t, ok)
	assert.Equal(t, "personal holiday", phrase)

	re, ok := m.TopicPattern("overtime")
	require.True(t, ok)
	assert.True(t, re.MatchString("time and a half after 40 hours"))
}

func TestParseWithoutQueryRoutingIsSafe(t *testing.T) {
	m, err := Parse([]byte(`{"contract_id": "local-7"}`))
	require.NoError(t, err)
	assert.Nil(t, m.ArticlesForTopic("overtime"))
	_, ok := m.SlangPhrase("ot")
	assert.False(t, ok)
}

func TestParseInvalidJSONErrors(t *testing.T) {
	_, err := Parse([]byte(`not json`))
	assert.Error(t, err)
}
