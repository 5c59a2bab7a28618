// Package bm25 implements a first-principles BM25 keyword index over the
// chunk corpus, per spec.md §4.8.
package bm25

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"manifold/internal/chunk"
)

var tokenRe = regexp.MustCompile(`[a-z0-9]{2,}`)

// Tokenize lowercases and extracts alphanumeric runs of length >= 2.
func Tokenize(s string) []string {
	return tokenRe.FindAllString(strings.ToLower(s), -1)
}

// Index is a BM25 posting-list index over a fixed chunk corpus.
type Index struct {
	K1 float64
	B  float64

	docs    []doc
	avgLen  float64
	df      map[string]int
	docFreq map[string]map[int]int // term -> docIdx -> term frequency
}

type doc struct {
	chunk  chunk.Chunk
	length int
}

// DefaultK1 and DefaultB match spec.md §4.8: k1 higher than typical to
// reward repeated legal terms.
const (
	DefaultK1 = 1.8
	DefaultB  = 0.75
)

// Build indexes chunks. Searchable text per document is content ⊕
// citation ⊕ article_title.
func Build(chunks []chunk.Chunk) *Index {
	idx := &Index{
		K1:      DefaultK1,
		B:       DefaultB,
		df:      map[string]int{},
		docFreq: map[string]map[int]int{},
	}
	var totalLen int
	for i, c := range chunks {
		text := c.Content + " " + c.Citation + " " + c.ArticleTitle
		tokens := Tokenize(text)
		idx.docs = append(idx.docs, doc{chunk: c, length: len(tokens)})
		totalLen += len(tokens)

		seen := map[string]bool{}
		tf := map[string]int{}
		for _, t := range tokens {
			tf[t]++
		}
		for t, f := range tf {
			if idx.docFreq[t] == nil {
				idx.docFreq[t] = map[int]int{}
			}
			idx.docFreq[t][i] = f
			if !seen[t] {
				idx.df[t]++
				seen[t] = true
			}
		}
	}
	if len(idx.docs) > 0 {
		idx.avgLen = float64(totalLen) / float64(len(idx.docs))
	}
	return idx
}

// Result is one BM25 hit.
type Result struct {
	ChunkID string
	Score   float64
	Chunk   chunk.Chunk
}

// Search tokenizes query (optionally expanding with extraTerms, e.g. slang
// expansion) and scores every document whose term frequencies include any
// query term, returning the top k by score.
func (idx *Index) Search(query string, k int, extraTerms []string) []Result {
	terms := Tokenize(query)
	terms = append(terms, extraTerms...)
	if len(terms) == 0 || len(idx.docs) == 0 {
		return nil
	}

	n := float64(len(idx.docs))
	scores := map[int]float64{}
	for _, term := range uniq(terms) {
		postings := idx.docFreq[term]
		if len(postings) == 0 {
			continue
		}
		idf := math.Log(1 + (n-float64(idx.df[term])+0.5)/(float64(idx.df[term])+0.5))
		for docIdx, tf := range postings {
			length := float64(idx.docs[docIdx].length)
			denom := float64(tf) + idx.K1*(1-idx.B+idx.B*length/idx.avgLenOrOne())
			scores[docIdx] += idf * (float64(tf) * (idx.K1 + 1)) / denom
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	var ranked []scored
	for i, s := range scores {
		ranked = append(ranked, scored{i, s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return idx.docs[ranked[i].idx].chunk.ChunkID < idx.docs[ranked[j].idx].chunk.ChunkID
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}

	out := make([]Result, 0, len(ranked))
	for _, r := range ranked {
		d := idx.docs[r.idx]
		out = append(out, Result{ChunkID: d.chunk.ChunkID, Score: r.score, Chunk: d.chunk})
	}
	return out
}

func (idx *Index) avgLenOrOne() float64 {
	if idx.avgLen == 0 {
		return 1
	}
	return idx.avgLen
}

func uniq(terms []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Count returns the corpus size.
func (idx *Index) Count() int { return len(idx.docs) }
