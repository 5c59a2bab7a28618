package parser

import (
	"strings"
	"testing"

	"manifold/internal/chunk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `# ARTICLE 16 PERSONAL HOLIDAYS

Section 1. Eligibility

Each full-time employee shall be entitled to two personal holidays per
contract year, to be scheduled at the employee's discretion subject to
operational needs.

Section 2. Scheduling

Requests for personal holidays must be submitted at least 48 hours in
advance except in cases of emergency.

# ARTICLE 43 DISCIPLINE AND DISCHARGE

Section 1. Just Cause

No employee shall be disciplined or discharged except for just cause.

(a) VERBAL WARNING

A verbal warning shall be documented in writing and placed in the
employee's file for a period not to exceed twelve months.

(b) WRITTEN WARNING

A written warning is the second step of progressive discipline and
remains active for eighteen months.

LETTER OF UNDERSTANDING REGARDING TELEWORK

The parties agree that telework arrangements are governed by a separate
memorandum executed on the date below.
`

func TestParseProducesArticlesAndSections(t *testing.T) {
	chunks, err := Parse(sampleDoc, "local-42")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	var found16, found43, foundLOU bool
	for _, c := range chunks {
		if c.ArticleNum == 16 {
			found16 = true
			assert.Equal(t, "PERSONAL HOLIDAYS", c.ArticleTitle)
		}
		if c.ArticleNum == 43 {
			found43 = true
		}
		if c.DocType == "lou" {
			foundLOU = true
		}
	}
	assert.True(t, found16, "expected a chunk from article 16")
	assert.True(t, found43, "expected a chunk from article 43")
	assert.True(t, foundLOU, "expected a letter-of-understanding chunk")
}

func TestParseCitationsAreDeterministic(t *testing.T) {
	chunks, err := Parse(sampleDoc, "local-42")
	require.NoError(t, err)
	for _, c := range chunks {
		if c.ArticleNum == 0 {
			continue
		}
		want := chunk.Citation(c.ArticleNum, c.SectionNum, c.Subsection)
		assert.Equal(t, want, c.Citation, "citation must match its own hierarchy fields")
	}
}

func TestParseLetteredSubsectionsSplit(t *testing.T) {
	chunks, err := Parse(sampleDoc, "local-42")
	require.NoError(t, err)
	var sawA, sawB bool
	for _, c := range chunks {
		if c.ArticleNum == 43 && c.Subsection == "a" {
			sawA = true
			assert.Contains(t, strings.ToLower(c.Content), "verbal warning")
		}
		if c.ArticleNum == 43 && c.Subsection == "b" {
			sawB = true
		}
	}
	assert.True(t, sawA)
	assert.True(t, sawB)
}

func TestParseEmptyDocumentErrors(t *testing.T) {
	_, err := Parse("   \n\n  ", "local-42")
	assert.Error(t, err)
}

func TestParseMissingArticleBoundaryIsNonFatal(t *testing.T) {
	doc := "Some preamble text without any article heading at all, long enough to " +
		"exceed the minimum substantive chunk size so it survives as its own chunk."
	chunks, err := Parse(doc, "local-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].ArticleNum)
}

func TestCleanTextFlattensHTMLTable(t *testing.T) {
	html := `<table><tr><td>Classification</td><td>Step 1</td></tr><tr><td>Clerk</td><td>$18.50</td></tr></table>`
	out := CleanText(html)
	assert.Contains(t, out, "Clerk")
	assert.Contains(t, out, "18.50")
	assert.NotContains(t, out, "<table")
}

func TestCleanTextStripsPageMarkersAndEditTags(t *testing.T) {
	in := "Line one\nPage 3 of 10\n<ins>inserted</ins> text <del>removed</del>\n"
	out := CleanText(in)
	assert.NotContains(t, out, "Page 3")
	assert.NotContains(t, out, "<ins>")
	assert.Contains(t, out, "inserted")
}
