// Package concept builds and queries the ConceptIndex: per-article
// aggregation of worker questions and alternative names, plus reverse
// lookup maps for concept- and question-based article discovery.
package concept

import (
	"sort"
	"strings"

	"manifold/internal/chunk"
)

// ArticleEntry aggregates one article's concept surface.
type ArticleEntry struct {
	ArticleNum       int
	Title            string
	WorkerQuestions  []string
	AlternativeNames []string
	ChunkIDs         []string
}

// Index is the ConceptIndex from spec.md §3.
type Index struct {
	Articles          map[int]*ArticleEntry
	ConceptToArticles map[string]map[int]bool
	QuestionToArticles map[string]map[int]bool
}

func newIndex() *Index {
	return &Index{
		Articles:           map[int]*ArticleEntry{},
		ConceptToArticles:  map[string]map[int]bool{},
		QuestionToArticles: map[string]map[int]bool{},
	}
}

// Build aggregates enriched chunks into a ConceptIndex, per spec.md §4.4.
// Chunks without an article_num (e.g. doc_type=appendix) are skipped.
func Build(chunks []chunk.Chunk) *Index {
	idx := newIndex()
	for _, c := range chunks {
		if c.ArticleNum == 0 {
			continue
		}
		entry, ok := idx.Articles[c.ArticleNum]
		if !ok {
			entry = &ArticleEntry{ArticleNum: c.ArticleNum, Title: c.ArticleTitle}
			idx.Articles[c.ArticleNum] = entry
		}
		if entry.Title == "" {
			entry.Title = c.ArticleTitle
		}
		entry.ChunkIDs = append(entry.ChunkIDs, c.ChunkID)

		for _, q := range c.WorkerQuestions {
			q = normalize(q)
			if q == "" {
				continue
			}
			entry.WorkerQuestions = appendUnique(entry.WorkerQuestions, q)
			addReverse(idx.QuestionToArticles, q, c.ArticleNum)
		}
		for _, a := range c.AlternativeNames {
			a = normalize(a)
			if a == "" {
				continue
			}
			entry.AlternativeNames = appendUnique(entry.AlternativeNames, a)
			addReverse(idx.ConceptToArticles, a, c.ArticleNum)
		}
	}
	return idx
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func addReverse(m map[string]map[int]bool, key string, articleNum int) {
	set, ok := m[key]
	if !ok {
		set = map[int]bool{}
		m[key] = set
	}
	set[articleNum] = true
}

// sortedArticles returns keys in descending score order, with article_num
// as a deterministic tie-break.
func sortedArticles(scores map[int]float64) []int {
	articles := make([]int, 0, len(scores))
	for a := range scores {
		articles = append(articles, a)
	}
	sort.Slice(articles, func(i, j int) bool {
		si, sj := scores[articles[i]], scores[articles[j]]
		if si != sj {
			return si > sj
		}
		return articles[i] < articles[j]
	})
	return articles
}
