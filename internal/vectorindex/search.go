package vectorindex

import (
	"context"
	"regexp"
	"sort"
	"strconv"
)

// Index wraps a Store with the embedding call and the boost/filter/floor
// logic from spec.md §4.5. Embed is the single shared embedding function
// used for both corpus and queries.
type Index struct {
	Store Store
	Embed func(ctx context.Context, text string) ([]float32, error)

	// SimilarityFloor drops results below this adjusted similarity.
	SimilarityFloor float64
}

// SearchOptions carries the boost inputs for one query.
type SearchOptions struct {
	K                 int
	Filter            Filter
	BoostArticles     []int
	RequestedClass    string
	Topic             string
	HighStakesRequest bool
}

// BoostedResult is a Result with its post-boost adjusted score.
type BoostedResult struct {
	Result
	AdjustedSimilarity float64
}

var articleRefRe = regexp.MustCompile(`(?i)article\s+(\d+)`)
var sectionRefRe = regexp.MustCompile(`(?i)section\s+(\d+)`)

// Search embeds query, requests max(k*2, 15) neighbors, applies additive
// boosts, drops results under the similarity floor, and truncates to k.
func (idx *Index) Search(ctx context.Context, query string, opts SearchOptions) ([]BoostedResult, error) {
	vec, err := idx.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	k := opts.K
	if k <= 0 {
		k = 10
	}
	rawK := k * 2
	if rawK < 15 {
		rawK = 15
	}

	raw, err := idx.Store.RawSearch(ctx, vec, rawK, opts.Filter)
	if err != nil {
		return nil, err
	}

	explicitArticles := matchInts(articleRefRe, query)
	explicitSections := matchInts(sectionRefRe, query)
	boostSet := map[int]bool{}
	for _, a := range opts.BoostArticles {
		boostSet[a] = true
	}

	out := make([]BoostedResult, 0, len(raw))
	for _, r := range raw {
		adj := r.Similarity
		c := r.Metadata

		if explicitArticles[c.ArticleNum] {
			adj += 0.30
		}
		if sec, err := strconv.Atoi(c.SectionNum); err == nil && explicitSections[sec] {
			adj += 0.10
		}
		if boostSet[c.ArticleNum] {
			adj += 0.20
		}
		switch {
		case opts.RequestedClass != "":
			if hasClass(c.AppliesTo, opts.RequestedClass) {
				adj += 0.15
			} else if !c.AppliesToAll() {
				adj -= 0.05
			}
		}
		if opts.Topic != "" && c.HasTopic(opts.Topic) {
			adj += 0.15
		}
		if opts.HighStakesRequest && c.IsHighStakes {
			adj += 0.10
		}

		if adj < idx.SimilarityFloor {
			continue
		}
		out = append(out, BoostedResult{Result: r, AdjustedSimilarity: adj})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].AdjustedSimilarity > out[j].AdjustedSimilarity })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func hasClass(applies []string, class string) bool {
	for _, a := range applies {
		if a == class {
			return true
		}
	}
	return false
}

func matchInts(re *regexp.Regexp, s string) map[int]bool {
	out := map[int]bool{}
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			out[n] = true
		}
	}
	return out
}
