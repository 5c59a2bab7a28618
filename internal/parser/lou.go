package parser

import (
	"strings"

	"manifold/internal/chunk"
)

// extractLOUs removes Letter-of-Understanding sections from doc (so article
// chunking doesn't see them) and returns their bodies for separate,
// doc_type=lou chunk emission, per spec.md §4.1.
func extractLOUs(doc *string) []string {
	text := *doc
	matches := louHeaderRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	var bodies []string
	var kept strings.Builder
	last := 0
	for i, m := range matches {
		kept.WriteString(text[last:m[0]])
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		bodies = append(bodies, text[m[0]:end])
		last = end
	}
	kept.WriteString(text[last:])
	*doc = kept.String()
	return bodies
}

// chunkLOU emits one or more doc_type=lou chunks for a single Letter of
// Understanding body, split the same way a section without article
// hierarchy would be.
func chunkLOU(contractID string, body string) []chunk.Chunk {
	title := strings.TrimSpace(strings.SplitN(body, "\n", 2)[0])
	title = strings.TrimLeft(title, "# ")
	rest := body
	if idx := strings.IndexByte(body, '\n'); idx != -1 {
		rest = body[idx+1:]
	} else {
		rest = ""
	}
	chunks := chunkSection(contractID, 0, title, rest, chunk.DocTypeLOU)
	for i := range chunks {
		chunks[i].ArticleTitle = title
	}
	return chunks
}
