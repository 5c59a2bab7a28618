// Package parser converts a contract document into an ordered list of
// hierarchically-cited chunks, per spec.md §4.1.
package parser

import (
	"strings"

	"manifold/internal/chunk"
)

const (
	// TargetChunkSize is the size the splitter aims for when grouping
	// numbered subsections or paragraphs.
	TargetChunkSize = 800
	// MaxChunkSize is the hard ceiling before a section is force-split.
	MaxChunkSize = 2000
	// MinSubstantiveSize is the minimum length for an article's preamble
	// (text before its first section header) to become a chunk; a shorter
	// preamble is dropped. A section shorter than this is still emitted as
	// its own chunk; it is not merged into a neighbor.
	MinSubstantiveSize = 100
	// minLetteredSubsections is the count of lettered subsections a
	// section needs before the letter-split rule applies.
	minLetteredSubsections = 2
	// letteredSplitThreshold is the "size threshold" spec.md §4.1 refers
	// to for the lettered-subsection rule: lower than MaxChunkSize, since
	// enumerated provisions are worth their own citation once the section
	// stops being trivial, well before it would otherwise be force-split.
	letteredSplitThreshold = 300
	// minNumberedSubsections is the count of numbered sub-items a section
	// needs before the group-to-target-size rule applies.
	minNumberedSubsections = 3
)

// Parse scans document and emits chunks tagged with Article/Section/
// Subsection hierarchy. It never fails except on a structurally empty
// document; unparseable segments are preserved verbatim rather than
// dropped (spec.md §4.1 "Error conditions").
func Parse(document, contractID string) ([]chunk.Chunk, error) {
	doc := strings.ReplaceAll(document, "\r\n", "\n")
	if strings.TrimSpace(doc) == "" {
		return nil, errEmptyDocument
	}

	lous := extractLOUs(&doc)

	var out []chunk.Chunk
	boundaries := findArticleBoundaries(doc)
	if len(boundaries) == 0 {
		// Missing article boundary is non-fatal: the whole document is
		// treated as the continuation of an untitled article so its
		// content is still preserved as chunks (spec.md §4.1).
		out = append(out, chunkSection(contractID, 0, "", doc, chunk.DocTypeCBA)...)
	}
	for i, b := range boundaries {
		end := len(doc)
		if i+1 < len(boundaries) {
			end = boundaries[i+1].start
		}
		body := sliceRange(doc, b.body, end)
		out = append(out, chunkArticle(contractID, b.num, b.title, body)...)
	}

	for _, l := range lous {
		out = append(out, chunkLOU(contractID, l)...)
	}

	return assignOrdinalsAndCitations(out), nil
}

type parseError string

func (e parseError) Error() string { return string(e) }

const errEmptyDocument = parseError("parser: empty document")

// chunkArticle splits one article's body into sections, falling back to
// whole-article emission when no section headers are found within it
// (the "unparseable segment preserved verbatim" rule).
func chunkArticle(contractID string, articleNum int, articleTitle, body string) []chunk.Chunk {
	sections := findSectionBoundaries(body)
	if len(sections) == 0 {
		return chunkSection(contractID, articleNum, articleTitle, body, chunk.DocTypeCBA)
	}
	var out []chunk.Chunk
	// Preamble text before the first section header still belongs to this
	// article; keep it rather than discarding it.
	if pre := strings.TrimSpace(body[:sections[0].start]); len(pre) >= MinSubstantiveSize {
		c := chunk.Chunk{
			ContractID:   contractID,
			ArticleNum:   articleNum,
			ArticleTitle: articleTitle,
			Content:      CleanText(pre),
			DocType:      chunk.DocTypeCBA,
		}
		out = append(out, c)
	}
	for i, s := range sections {
		end := len(body)
		if i+1 < len(sections) {
			end = sections[i+1].start
		}
		secBody := sliceRange(body, s.body, end)
		out = append(out, chunkOneSection(contractID, articleNum, articleTitle, s.num, s.title, secBody)...)
	}
	return out
}

// chunkOneSection applies the subsection-splitting cascade from spec.md
// §4.1: lettered subsections first, then numbered-subsection grouping,
// then plain paragraph splitting, else a single chunk.
func chunkOneSection(contractID string, articleNum int, articleTitle, sectionNum, sectionTitle, body string) []chunk.Chunk {
	cleaned := CleanText(body)
	if len(cleaned) < MinSubstantiveSize {
		if cleaned == "" {
			return nil
		}
		return []chunk.Chunk{{
			ContractID: contractID, ArticleNum: articleNum, ArticleTitle: articleTitle,
			SectionNum: sectionNum, SubsectionTitle: sectionTitle, Content: cleaned,
			DocType: chunk.DocTypeCBA,
		}}
	}

	lettered := findLetteredSubsections(body)
	if len(lettered) >= minLetteredSubsections && len(cleaned) > letteredSplitThreshold {
		return chunkByLetter(contractID, articleNum, articleTitle, sectionNum, sectionTitle, body, lettered)
	}

	numbered := countNumberedSubsections(body)
	if numbered >= minNumberedSubsections && len(cleaned) > MaxChunkSize {
		return groupToTarget(contractID, articleNum, articleTitle, sectionNum, sectionTitle, cleaned)
	}

	if len(cleaned) > MaxChunkSize {
		return groupToTarget(contractID, articleNum, articleTitle, sectionNum, sectionTitle, cleaned)
	}

	return []chunk.Chunk{{
		ContractID: contractID, ArticleNum: articleNum, ArticleTitle: articleTitle,
		SectionNum: sectionNum, Content: cleaned, DocType: chunk.DocTypeCBA,
	}}
}

func chunkByLetter(contractID string, articleNum int, articleTitle, sectionNum, sectionTitle, body string, subs []subsectionBoundary) []chunk.Chunk {
	out := make([]chunk.Chunk, 0, len(subs))
	for i, s := range subs {
		end := len(body)
		if i+1 < len(subs) {
			end = subs[i+1].start
		}
		content := CleanText(sliceRange(body, s.body, end))
		if content == "" {
			continue
		}
		out = append(out, chunk.Chunk{
			ContractID: contractID, ArticleNum: articleNum, ArticleTitle: articleTitle,
			SectionNum: sectionNum, Subsection: s.letter, SubsectionTitle: s.title,
			Content: content, DocType: chunk.DocTypeCBA,
		})
	}
	return out
}

// groupToTarget packs a section's paragraphs into chunks that each target
// ~TargetChunkSize characters, labeling them "part1", "part2", ... It backs
// both the numbered-subsection grouping rule and the plain paragraph-split
// fallback in spec.md §4.1, which use the same packing algorithm.
func groupToTarget(contractID string, articleNum int, articleTitle, sectionNum, sectionTitle, cleaned string) []chunk.Chunk {
	groups := groupByTargetSize(cleaned, TargetChunkSize)
	out := make([]chunk.Chunk, 0, len(groups))
	for i, g := range groups {
		out = append(out, chunk.Chunk{
			ContractID: contractID, ArticleNum: articleNum, ArticleTitle: articleTitle,
			SectionNum: sectionNum, Subsection: partLabel(i, len(groups)),
			Content: g, DocType: chunk.DocTypeCBA,
		})
	}
	return out
}

// partLabel renders "part1", "part2", ... when a section was split, and ""
// when it wasn't (single group).
func partLabel(i, n int) string {
	if n <= 1 {
		return ""
	}
	return "part" + itoa1(i + 1)
}

func itoa1(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	// Sections rarely split into 10+ parts; fall back to a simple loop for
	// the general case.
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// chunkSection handles the no-section-headers-found fallback: the whole
// article (or whole document, if no article boundary exists either) is
// emitted as one chunk, or packed into paragraph groups when it exceeds
// MaxChunkSize. The lettered/numbered subsection rules are not applied.
func chunkSection(contractID string, articleNum int, articleTitle, body string, dt chunk.DocType) []chunk.Chunk {
	cleaned := CleanText(body)
	if cleaned == "" {
		return nil
	}
	if len(cleaned) <= MaxChunkSize {
		return []chunk.Chunk{{
			ContractID: contractID, ArticleNum: articleNum, ArticleTitle: articleTitle,
			Content: cleaned, DocType: dt,
		}}
	}
	groups := groupByTargetSize(cleaned, TargetChunkSize)
	out := make([]chunk.Chunk, 0, len(groups))
	for i, g := range groups {
		out = append(out, chunk.Chunk{
			ContractID: contractID, ArticleNum: articleNum, ArticleTitle: articleTitle,
			Subsection: partLabel(i, len(groups)), Content: g, DocType: dt,
		})
	}
	return out
}

func assignOrdinalsAndCitations(chunks []chunk.Chunk) []chunk.Chunk {
	seen := map[string]int{}
	for i, c := range chunks {
		c = c.WithCitation()
		ord := seen[c.Citation]
		seen[c.Citation] = ord + 1
		c.ChunkID = chunk.NewID(c.ContractID, c.Citation, ord)
		chunks[i] = c
	}
	return chunks
}
