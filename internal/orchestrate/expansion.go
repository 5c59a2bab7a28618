package orchestrate

import (
	"context"
	"sort"

	"manifold/internal/hybrid"
)

const (
	fullArticleSimilarity    = 0.4
	siblingSectionSimilarity = 0.5

	reasonFullArticle     = "full_article_expansion"
	reasonSiblingSection  = "sibling_section_expansion"
)

// expandFullArticles fetches the remaining chunks of any article that
// dominates the top of the ranked list (spec.md §4.11's "full-article
// expansion"): an article appearing at least Tunables.FullArticleThreshold
// times within the top Tunables.DominantWindow results is assumed to be
// the one the worker actually needs in full.
func (o *Orchestrator) expandFullArticles(ctx context.Context, contractID string, ranked []hybrid.Result, angleOf, supplemental map[string]string) []hybrid.Result {
	if o.Chunks == nil || len(ranked) == 0 {
		return ranked
	}

	window := ranked
	if len(window) > o.tunables.DominantWindow {
		window = window[:o.tunables.DominantWindow]
	}
	counts := map[int]int{}
	for _, r := range window {
		if r.Chunk.ArticleNum != 0 {
			counts[r.Chunk.ArticleNum]++
		}
	}

	var dominant []int
	for a, n := range counts {
		if n >= o.tunables.FullArticleThreshold {
			dominant = append(dominant, a)
		}
	}
	sort.Ints(dominant)
	if len(dominant) == 0 {
		return ranked
	}

	present := map[string]bool{}
	for _, r := range ranked {
		present[r.ChunkID] = true
	}

	out := append([]hybrid.Result(nil), ranked...)
	added := 0
	for _, a := range dominant {
		if added >= o.tunables.FullArticleCap {
			break
		}
		chunks, err := o.Chunks.ByArticle(ctx, contractID, a)
		if err != nil {
			continue
		}
		for _, c := range chunks {
			if added >= o.tunables.FullArticleCap {
				break
			}
			if present[c.ChunkID] {
				continue
			}
			present[c.ChunkID] = true
			out = append(out, hybrid.Result{
				ChunkID:     c.ChunkID,
				Chunk:       c,
				RRFScore:    fullArticleSimilarity,
				VectorScore: fullArticleSimilarity,
			})
			angleOf[c.ChunkID] = reasonFullArticle
			supplemental[c.ChunkID] = reasonFullArticle
			added++
		}
	}
	return out
}

// expandSiblingSections fetches up to SiblingSectionsPerArticle earlier
// sections per distinct article already present, so a chunk answering
// "section 5" arrives with the sections immediately preceding it for
// context (spec.md §4.11).
func (o *Orchestrator) expandSiblingSections(ctx context.Context, contractID string, ranked []hybrid.Result, angleOf, supplemental map[string]string) []hybrid.Result {
	if o.Chunks == nil || len(ranked) == 0 {
		return ranked
	}

	present := map[string]bool{}
	minSection := map[int]string{}
	for _, r := range ranked {
		present[r.ChunkID] = true
		a := r.Chunk.ArticleNum
		if a == 0 {
			continue
		}
		if cur, ok := minSection[a]; !ok || r.Chunk.SectionNum < cur {
			minSection[a] = r.Chunk.SectionNum
		}
	}

	var articles []int
	for a := range minSection {
		articles = append(articles, a)
	}
	sort.Ints(articles)

	out := append([]hybrid.Result(nil), ranked...)
	added := 0
	for _, a := range articles {
		if added >= o.tunables.SiblingSectionCap {
			break
		}
		siblings, err := o.Chunks.BySectionBefore(ctx, contractID, a, minSection[a], o.tunables.SiblingSectionsPerArticle)
		if err != nil {
			continue
		}
		for _, c := range siblings {
			if added >= o.tunables.SiblingSectionCap {
				break
			}
			if present[c.ChunkID] {
				continue
			}
			present[c.ChunkID] = true
			out = append(out, hybrid.Result{
				ChunkID:     c.ChunkID,
				Chunk:       c,
				RRFScore:    siblingSectionSimilarity,
				VectorScore: siblingSectionSimilarity,
			})
			angleOf[c.ChunkID] = reasonSiblingSection
			supplemental[c.ChunkID] = reasonSiblingSection
			added++
		}
	}
	return out
}
