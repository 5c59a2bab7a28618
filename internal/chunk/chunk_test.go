package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCitationRoundTrip(t *testing.T) {
	cases := []struct {
		article    int
		section    string
		subsection string
		want       string
	}{
		{12, "28", "", "Article 12, Section 28"},
		{12, "28", "a", "Article 12, Section 28(a)"},
		{43, "", "", "Article 43"},
		{0, "1", "", ""},
	}
	for _, c := range cases {
		got := Citation(c.article, c.section, c.subsection)
		assert.Equal(t, c.want, got)
	}
}

func TestWithCitationDerivesFromHierarchy(t *testing.T) {
	c := Chunk{ArticleNum: 16, SectionNum: "2", Content: "Employees may take personal holidays."}
	out := c.WithCitation()
	require.Equal(t, "Article 16, Section 2", out.Citation)
	require.Equal(t, len(out.Content), out.CharCount)
}

func TestAppliesToAllNeverDownweighted(t *testing.T) {
	c := Chunk{AppliesTo: []string{AllClassifications}}
	assert.True(t, c.AppliesToAll())
	assert.False(t, c.HasClassification("clerk"))

	c2 := Chunk{AppliesTo: []string{"clerk"}}
	assert.False(t, c2.AppliesToAll())
	assert.True(t, c2.HasClassification("clerk"))
}

func TestTaxonomyFiltersUnknownValues(t *testing.T) {
	tax := Taxonomy{Topics: []string{"wages", "overtime"}, Classifications: []string{"clerk"}}
	got := tax.FilterTopics([]string{"wages", "bogus", "overtime", "wages"})
	assert.Equal(t, []string{"wages", "overtime"}, got)

	clsGot := tax.FilterClassifications([]string{"clerk", "made_up", AllClassifications})
	assert.Equal(t, []string{"clerk", AllClassifications}, clsGot)
}
