package parser

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
)

var (
	pageMarkerRe = regexp.MustCompile(`(?mi)^\s*(page\s+\d+(\s+of\s+\d+)?|-\s*\d+\s*-)\s*$`)
	editMarkRe   = regexp.MustCompile(`</?(ins|del)[^>]*>`)
	multiBlankRe = regexp.MustCompile(`\n{3,}`)
	multiSpaceRe = regexp.MustCompile(`[ \t]{2,}`)
	htmlTableRe  = regexp.MustCompile(`(?is)<table[^>]*>.*?</table>`)
)

// CleanText performs the text-cleaning step described in spec.md §4.1:
// strip page markers, collapse whitespace, flatten HTML tables to
// pipe-delimited rows, and remove edit-mark tags left by redline tooling.
func CleanText(raw string) string {
	s := raw
	s = flattenHTMLTables(s)
	s = editMarkRe.ReplaceAllString(s, "")
	s = pageMarkerRe.ReplaceAllString(s, "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = multiBlankRe.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// flattenHTMLTables converts any embedded HTML table to pipe-delimited rows
// using html-to-markdown, the same library the teacher uses for richtext
// ingestion. Appendix wage tables are frequently authored as raw HTML
// <table> blocks interleaved with CBA prose; converting them up front lets
// the section/subsection regexes in boundaries.go operate on plain text.
func flattenHTMLTables(s string) string {
	if !strings.Contains(s, "<table") && !strings.Contains(s, "<TABLE") {
		return s
	}
	return htmlTableRe.ReplaceAllStringFunc(s, func(table string) string {
		out, err := htmltomarkdown.ConvertString(table, converter.WithDomain(""))
		if err != nil || strings.TrimSpace(out) == "" {
			return flattenTableFallback(table)
		}
		return pipeifyMarkdownTable(out)
	})
}

// pipeifyMarkdownTable normalizes a converted markdown table's separator
// rows into simple "|"-delimited text rows, since downstream chunking only
// needs cell boundaries preserved, not GFM table syntax.
func pipeifyMarkdownTable(mdTable string) string {
	lines := strings.Split(strings.TrimSpace(mdTable), "\n")
	out := make([]string, 0, len(lines))
	sepRe := regexp.MustCompile(`^\s*\|?[\s:|-]+\|?\s*$`)
	for _, l := range lines {
		if sepRe.MatchString(l) {
			continue
		}
		row := strings.Trim(strings.TrimSpace(l), "|")
		cells := strings.Split(row, "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		out = append(out, strings.Join(cells, " | "))
	}
	return strings.Join(out, "\n")
}

var tdRe = regexp.MustCompile(`(?is)<t[dh][^>]*>(.*?)</t[dh]>`)
var trRe = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
var tagRe = regexp.MustCompile(`(?s)<[^>]+>`)

// flattenTableFallback is a last-resort regex-based flattener used when the
// markdown converter fails on malformed HTML (the appendix is often hand
// edited and not well-formed).
func flattenTableFallback(table string) string {
	rows := trRe.FindAllStringSubmatch(table, -1)
	var b strings.Builder
	for _, r := range rows {
		cells := tdRe.FindAllStringSubmatch(r[1], -1)
		vals := make([]string, 0, len(cells))
		for _, c := range cells {
			v := tagRe.ReplaceAllString(c[1], "")
			v = strings.TrimSpace(v)
			if v != "" {
				vals = append(vals, v)
			}
		}
		if len(vals) > 0 {
			b.WriteString(strings.Join(vals, " | "))
			b.WriteString("\n")
		}
	}
	return b.String()
}
