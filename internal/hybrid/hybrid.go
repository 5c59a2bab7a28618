// Package hybrid fuses vector and BM25 rankings via Reciprocal Rank
// Fusion and applies post-fusion concept boosts, per spec.md §4.8.
package hybrid

import (
	"context"
	"sort"

	"manifold/internal/bm25"
	"manifold/internal/chunk"
	"manifold/internal/concept"
	"manifold/internal/vectorindex"
)

// Weights controls the RRF blend; defaults to 1.0/1.0 per spec.md §4.8.
type Weights struct {
	Vector  float64
	Keyword float64
}

func DefaultWeights() Weights { return Weights{Vector: 1, Keyword: 1} }

const rrfK = 60.0

// Result is one fused hit, carrying both source scores for observability.
type Result struct {
	ChunkID      string
	Chunk        chunk.Chunk
	VectorScore  float64
	KeywordScore float64
	RRFScore     float64
	VectorRank   int // 1-based; 0 if absent
	KeywordRank  int // 1-based; 0 if absent
}

// Searcher runs the hybrid vector+BM25+RRF search described in spec.md
// §4.8, including the post-fusion concept-index boost from spec.md §4.8.
type Searcher struct {
	Vector       *vectorindex.Index
	Keyword      *bm25.Index
	ConceptIndex *concept.Index
	SlangExpand  func(query string) []string
}

// SearchOptions carries the hybrid search's inputs.
type SearchOptions struct {
	K             int
	Filter        vectorindex.Filter
	BoostArticles []int
	ConceptQuery  string
	Weights       Weights
	ExpandSlang   bool
	VectorOpts    vectorindex.SearchOptions
}

const conceptBoost = 0.03

// Search requests 2k from each ranking, fuses by RRF, then applies the
// concept-index boost and re-sorts.
func (s *Searcher) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	k := opts.K
	if k <= 0 {
		k = 10
	}
	weights := opts.Weights
	if weights.Vector == 0 && weights.Keyword == 0 {
		weights = DefaultWeights()
	}

	vecOpts := opts.VectorOpts
	vecOpts.K = 2 * k
	vecOpts.Filter = opts.Filter
	vecOpts.BoostArticles = opts.BoostArticles
	vecResults, err := s.Vector.Search(ctx, query, vecOpts)
	if err != nil {
		return nil, err
	}

	var extraTerms []string
	if opts.ExpandSlang && s.SlangExpand != nil {
		extraTerms = s.SlangExpand(query)
	}
	kwResults := s.Keyword.Search(query, 2*k, extraTerms)

	boostSet := map[int]bool{}
	for _, a := range opts.BoostArticles {
		boostSet[a] = true
	}
	if s.ConceptIndex != nil && opts.ConceptQuery != "" {
		for _, a := range s.ConceptIndex.FindArticlesByConcept(opts.ConceptQuery) {
			boostSet[a] = true
		}
	}

	fused := fuseRRF(vecResults, kwResults, weights)
	for i, f := range fused {
		if boostSet[f.Chunk.ArticleNum] {
			fused[i].RRFScore += conceptBoost
		}
	}
	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].RRFScore != fused[j].RRFScore {
			return fused[i].RRFScore > fused[j].RRFScore
		}
		return fused[i].ChunkID < fused[j].ChunkID
	})
	if len(fused) > k {
		fused = fused[:k]
	}
	return fused, nil
}

func fuseRRF(vec []vectorindex.BoostedResult, kw []bm25.Result, w Weights) []Result {
	vecRank := map[string]int{}
	vecScore := map[string]float64{}
	vecChunk := map[string]chunk.Chunk{}
	for i, r := range vec {
		vecRank[r.ChunkID] = i + 1
		vecScore[r.ChunkID] = r.AdjustedSimilarity
		vecChunk[r.ChunkID] = r.Metadata
	}
	kwRank := map[string]int{}
	kwScore := map[string]float64{}
	kwChunk := map[string]chunk.Chunk{}
	for i, r := range kw {
		kwRank[r.ChunkID] = i + 1
		kwScore[r.ChunkID] = r.Score
		kwChunk[r.ChunkID] = r.Chunk
	}

	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, r := range vec {
		add(r.ChunkID)
	}
	for _, r := range kw {
		add(r.ChunkID)
	}

	out := make([]Result, 0, len(ids))
	for _, id := range ids {
		vr, kr := vecRank[id], kwRank[id]
		var vContrib, kContrib float64
		if vr > 0 {
			vContrib = 1.0 / (rrfK + float64(vr))
		}
		if kr > 0 {
			kContrib = 1.0 / (rrfK + float64(kr))
		}
		c := vecChunk[id]
		if c.ChunkID == "" {
			c = kwChunk[id]
		}
		out = append(out, Result{
			ChunkID:      id,
			Chunk:        c,
			VectorScore:  vecScore[id],
			KeywordScore: kwScore[id],
			RRFScore:     w.Vector*vContrib + w.Keyword*kContrib,
			VectorRank:   vr,
			KeywordRank:  kr,
		})
	}
	return out
}
