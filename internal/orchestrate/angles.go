package orchestrate

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"manifold/internal/hybrid"
	"manifold/internal/hypothesis"
	"manifold/internal/intent"
	"manifold/internal/interpret"
	"manifold/internal/vectorindex"
)

// fetchExplicitArticles directly fetches every chunk of every explicitly
// referenced article, seeded at a fixed high similarity and ordered by
// section, per spec.md §4.11.
func (o *Orchestrator) fetchExplicitArticles(ctx context.Context, contractID string, articles []int) ([]hybrid.Result, map[string]string) {
	angleOf := map[string]string{}
	if o.Chunks == nil || len(articles) == 0 {
		return nil, angleOf
	}
	var out []hybrid.Result
	for _, a := range articles {
		chunks, err := o.Chunks.ByArticle(ctx, contractID, a)
		if err != nil {
			continue
		}
		for _, c := range chunks {
			out = append(out, hybrid.Result{
				ChunkID:     c.ChunkID,
				Chunk:       c,
				RRFScore:    explicitArticleSimilarity,
				VectorScore: explicitArticleSimilarity,
			})
			angleOf[c.ChunkID] = "explicit_article"
		}
	}
	return out, angleOf
}

// fanOutAngles runs each search angle's sub-pipeline concurrently, bounded
// by Tunables.MaxConcurrentAngles. Hypothetical-answer angles (HyDE) search
// the vector index directly; the original query and alternative phrasings
// run the full hybrid pipeline with slang expansion and title boosting.
func (o *Orchestrator) fanOutAngles(ctx context.Context, req Request, it intent.Intent, interp interpret.Interpretation, hyp hypothesis.Result, angles []string, angleOf map[string]string) []hybrid.Result {
	isHypothetical := map[string]bool{}
	for _, h := range interp.HypotheticalAnswers {
		isHypothetical[h] = true
	}

	var mu sync.Mutex
	var all []hybrid.Result
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.tunables.MaxConcurrentAngles)

	for _, angle := range angles {
		angle := angle
		g.Go(func() error {
			var results []hybrid.Result
			if isHypothetical[angle] {
				results = o.searchVectorOnly(gctx, angle, req, it)
			} else {
				results = o.searchHybrid(gctx, angle, req, it, hyp)
			}
			mu.Lock()
			for _, r := range results {
				if _, ok := angleOf[r.ChunkID]; !ok {
					angleOf[r.ChunkID] = angle
				}
			}
			all = append(all, results...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return all
}

func (o *Orchestrator) searchVectorOnly(ctx context.Context, angle string, req Request, it intent.Intent) []hybrid.Result {
	if o.Vector == nil {
		return nil
	}
	boosted, err := o.Vector.Search(ctx, angle, vectorindex.SearchOptions{
		K:                 o.tunables.TotalCap,
		Filter:            vectorindex.Filter{ContractID: req.ContractID},
		BoostArticles:     it.RelevantArticles,
		RequestedClass:    req.Classification,
		Topic:             it.Topic,
		HighStakesRequest: it.Type == intent.HighStakes,
	})
	if err != nil {
		return nil
	}
	out := make([]hybrid.Result, 0, len(boosted))
	for _, b := range boosted {
		out = append(out, hybrid.Result{
			ChunkID:     b.ChunkID,
			Chunk:       b.Metadata,
			RRFScore:    b.AdjustedSimilarity,
			VectorScore: b.AdjustedSimilarity,
		})
	}
	return out
}

func (o *Orchestrator) searchHybrid(ctx context.Context, angle string, req Request, it intent.Intent, hyp hypothesis.Result) []hybrid.Result {
	if o.Hybrid == nil {
		return nil
	}
	query := angle
	if hyp.Success {
		query = hypothesis.ExpandQuery(angle, hyp.Titles)
	}
	results, err := o.Hybrid.Search(ctx, query, hybrid.SearchOptions{
		K:             o.tunables.TotalCap,
		Filter:        vectorindex.Filter{ContractID: req.ContractID},
		BoostArticles: it.RelevantArticles,
		ConceptQuery:  angle,
		ExpandSlang:   true,
		VectorOpts: vectorindex.SearchOptions{
			RequestedClass:    req.Classification,
			Topic:             it.Topic,
			HighStakesRequest: it.Type == intent.HighStakes,
		},
	})
	if err != nil {
		return nil
	}
	if hyp.Success {
		for i := range results {
			if hypothesis.MatchesTitle(results[i].Chunk.ArticleTitle, hyp.Titles) {
				results[i].RRFScore += hypothesis.DefaultTitleBoost
			}
		}
	}
	return results
}

// mergeByChunkID fuses duplicate hits across angles by keeping the
// highest-scoring occurrence of each chunk_id; commutative and associative
// in the angle processing order, per spec.md §4.11.
func mergeByChunkID(results []hybrid.Result) []hybrid.Result {
	best := map[string]hybrid.Result{}
	var order []string
	for _, r := range results {
		existing, ok := best[r.ChunkID]
		if !ok {
			order = append(order, r.ChunkID)
			best[r.ChunkID] = r
			continue
		}
		if r.RRFScore > existing.RRFScore {
			best[r.ChunkID] = r
		}
	}
	sort.Strings(order)
	out := make([]hybrid.Result, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}

func toResultChunks(results []hybrid.Result, angleOf map[string]string, supplemental map[string]string) []ResultChunk {
	out := make([]ResultChunk, 0, len(results))
	for _, r := range results {
		out = append(out, ResultChunk{
			Chunk:              r.Chunk,
			Score:              r.RRFScore,
			SearchAngle:        angleOf[r.ChunkID],
			IsSupplemental:     supplemental[r.ChunkID] != "",
			SupplementalReason: supplemental[r.ChunkID],
		})
	}
	return out
}
