// Package enrich attaches semantic metadata to chunks: applies_to, topics,
// cross_references, summary, flags, worker_questions, alternative_names.
package enrich

import (
	"context"
	"strings"

	"manifold/internal/chunk"
)

// Enricher produces enrichment fields for a single chunk.
type Enricher interface {
	Enrich(ctx context.Context, c chunk.Chunk, taxonomy chunk.Taxonomy) chunk.Chunk
}

// apply sets the enrichment fields on a copy of c and returns it; it never
// mutates c itself.
func apply(c chunk.Chunk, applies []string, topics []string, crossRefs []string, summary string,
	flags flags, questions []string, alternatives []string) chunk.Chunk {
	c.AppliesTo = dedupLower(applies)
	if len(c.AppliesTo) == 0 {
		c.AppliesTo = []string{chunk.AllClassifications}
	}
	c.Topics = topics
	c.CrossReferences = dedupLower(crossRefs)
	c.Summary = truncate(summary, 150)
	c.IsDefinition = flags.isDefinition
	c.IsException = flags.isException
	c.HireDateSensitive = flags.hireDateSensitive
	c.IsHighStakes = flags.isHighStakes
	c.WorkerQuestions = dedupLower(questions)
	c.AlternativeNames = dedupLower(alternatives)
	return c
}

type flags struct {
	isDefinition      bool
	isException       bool
	hireDateSensitive bool
	isHighStakes      bool
}

func dedupLower(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n])
}
