package concept

import (
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`[a-z0-9]{2,}`)

func tokenize(s string) []string {
	return tokenRe.FindAllString(strings.ToLower(s), -1)
}

// FindArticlesByConcept scores every concept key against the query:
// +3 if the concept is a substring of the query, +2 if it matches a query
// token exactly, +1 if it partially overlaps any query token. Results are
// ordered by total score descending (spec.md §4.4).
func (idx *Index) FindArticlesByConcept(query string) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	tokens := tokenize(q)
	tokenSet := map[string]bool{}
	for _, t := range tokens {
		tokenSet[t] = true
	}

	scores := map[int]float64{}
	for concept, articles := range idx.ConceptToArticles {
		score := 0.0
		switch {
		case q != "" && strings.Contains(q, concept):
			score = 3
		case tokenSet[concept]:
			score = 2
		default:
			for _, t := range tokens {
				if t != "" && (strings.Contains(concept, t) || strings.Contains(t, concept)) {
					score = 1
					break
				}
			}
		}
		if score == 0 {
			continue
		}
		for a := range articles {
			scores[a] += score
		}
	}
	return sortedArticles(scores)
}

// FindArticlesByQuestion computes Jaccard token similarity between query
// and every indexed question, keeping articles whose best match exceeds
// 0.1, ordered by that best similarity (spec.md §4.4).
func (idx *Index) FindArticlesByQuestion(query string) []int {
	qTokens := tokenSetOf(query)
	if len(qTokens) == 0 {
		return nil
	}

	best := map[int]float64{}
	for question, articles := range idx.QuestionToArticles {
		sim := jaccard(qTokens, tokenSetOf(question))
		if sim <= 0.1 {
			continue
		}
		for a := range articles {
			if sim > best[a] {
				best[a] = sim
			}
		}
	}
	return sortedArticles(best)
}

func tokenSetOf(s string) map[string]bool {
	set := map[string]bool{}
	for _, t := range tokenize(s) {
		set[t] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
