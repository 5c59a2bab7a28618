package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// articleRe matches both the single-line "ARTICLE N TITLE" heading and the
// split "ARTICLE N" / "TITLE" form, per spec.md §6. The title capture group
// is optional in either position; resolveArticleTitle reconciles the two.
var articleRe = regexp.MustCompile(`(?mi)^#{1,2}\s*ARTICLE\s+(\d+)(?:\s+([A-Za-z][^\n]*))?\s*$`)

// lonelyTitleRe matches a heading line immediately following a bare
// "ARTICLE N" line, covering the split-heading variant.
var lonelyTitleRe = regexp.MustCompile(`(?m)^#{1,2}\s*([A-Z][A-Z0-9 &,'./-]{2,})\s*$`)

// sectionRe matches "Section N. TITLE" style headers, tolerating markdown
// bold markers around the number.
var sectionRe = regexp.MustCompile(`(?mi)^\s*Section\s+\*{0,2}(\d+[A-Za-z]?)\*{0,2}[.\s]+(.*)$`)

// letteredSubsectionRe matches a lettered subsection header such as
// "(a) LEAVE OF ABSENCE" or "a. LEAVE OF ABSENCE".
var letteredSubsectionRe = regexp.MustCompile(`(?m)^\s*\*{0,2}\(?([a-z])[.)]\*{0,2}\s*([A-Z][A-Z\s&]+)`)

// numberedSubsectionRe matches a numbered sub-item such as "(1) ..." within
// a section, used for the ≥3-numbered-subsections grouping rule.
var numberedSubsectionRe = regexp.MustCompile(`(?m)^\s*\(?(\d+)\)\s+`)

// louHeaderRe detects a Letter of Understanding heading.
var louHeaderRe = regexp.MustCompile(`(?mi)^#{0,2}\s*LETTER\s+OF\s+UNDERSTANDING\b.*$`)

type articleBoundary struct {
	num   int
	title string
	start int // byte offset of the boundary's first matching line
	body  int // byte offset where the article's body text begins
}

// findArticleBoundaries scans doc for article headings, tolerant of the
// split-heading variant (spec.md §4.1: "tolerant of variant headings").
func findArticleBoundaries(doc string) []articleBoundary {
	var out []articleBoundary
	idxs := articleRe.FindAllStringSubmatchIndex(doc, -1)
	for _, m := range idxs {
		num, _ := strconv.Atoi(doc[m[2]:m[3]])
		title := ""
		bodyStart := m[1]
		if m[4] != -1 {
			title = strings.TrimSpace(doc[m[4]:m[5]])
		} else {
			// Split form: look for a lone all-caps title line immediately after.
			rest := doc[m[1]:]
			if tm := lonelyTitleRe.FindStringSubmatchIndex(rest); tm != nil && tm[0] < 4 {
				title = strings.TrimSpace(rest[tm[2]:tm[3]])
				bodyStart = m[1] + tm[1]
			}
		}
		out = append(out, articleBoundary{num: num, title: title, start: m[0], body: bodyStart})
	}
	return out
}

type sectionBoundary struct {
	num   string
	title string
	start int
	body  int
}

func findSectionBoundaries(body string) []sectionBoundary {
	var out []sectionBoundary
	for _, m := range sectionRe.FindAllStringSubmatchIndex(body, -1) {
		out = append(out, sectionBoundary{
			num:   body[m[2]:m[3]],
			title: strings.TrimSpace(body[m[4]:m[5]]),
			start: m[0],
			body:  m[1],
		})
	}
	return out
}

type subsectionBoundary struct {
	letter string
	title  string
	start  int
	body   int
}

func findLetteredSubsections(body string) []subsectionBoundary {
	var out []subsectionBoundary
	for _, m := range letteredSubsectionRe.FindAllStringSubmatchIndex(body, -1) {
		out = append(out, subsectionBoundary{
			letter: body[m[2]:m[3]],
			title:  strings.TrimSpace(body[m[4]:m[5]]),
			start:  m[0],
			body:   m[1],
		})
	}
	return out
}

func countNumberedSubsections(body string) int {
	return len(numberedSubsectionRe.FindAllStringIndex(body, -1))
}

// sliceRange returns doc[from:to], clamping to doc bounds and tolerating
// to < from (empty slice) so callers needn't guard every computed range.
func sliceRange(doc string, from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(doc) {
		to = len(doc)
	}
	if to < from {
		return ""
	}
	return doc[from:to]
}
