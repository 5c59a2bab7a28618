package intent

import (
	"regexp"
	"sort"
	"strings"

	"manifold/internal/manifest"
)

// universalSlang is the domain-standard synonym layer, overlaid by a
// manifest's contract-specific layer (spec.md §4.6).
var universalSlang = map[string]string{
	"ot":          "overtime",
	"floater":     "personal holiday",
	"float day":   "personal holiday",
	"comp time":   "compensatory time",
	"pto":         "paid time off",
	"write-up":    "written warning",
	"write up":    "written warning",
	"walked out":  "constructive discharge",
	"steward":     "union representative",
	"the company": "the employer",
	"bid job":     "job bid",
}

// Expand appends (never replaces) legal terminology found via longest-match
// first slang substitution, so the original wording survives unmodified as
// a prefix of the result.
func Expand(query string, m *manifest.Manifest) string {
	terms := mergedSlangTerms(m)

	q := strings.ToLower(query)
	var appended []string
	seen := map[string]bool{}
	for _, term := range terms {
		if seen[term.phrase] {
			continue
		}
		if wordBoundaryMatch(q, term.slang) {
			if !seen[term.phrase] {
				appended = append(appended, term.phrase)
				seen[term.phrase] = true
			}
		}
	}
	if len(appended) == 0 {
		return query
	}
	return query + " (" + strings.Join(appended, ", ") + ")"
}

type slangTerm struct {
	slang  string
	phrase string
}

// mergedSlangTerms overlays the manifest's contract-specific map on top of
// the universal layer and sorts longest-slang-first so multi-word slang
// ("float day") is tried before its single-word substrings ("float").
func mergedSlangTerms(m *manifest.Manifest) []slangTerm {
	merged := map[string]string{}
	for k, v := range universalSlang {
		merged[k] = v
	}
	if m != nil && m.QueryRouting != nil {
		for k, v := range m.QueryRouting.SlangToContract {
			merged[k] = v
		}
	}
	terms := make([]slangTerm, 0, len(merged))
	for k, v := range merged {
		terms = append(terms, slangTerm{slang: k, phrase: v})
	}
	sort.Slice(terms, func(i, j int) bool {
		return len(terms[i].slang) > len(terms[j].slang)
	})
	return terms
}

// wordBoundaryMatch matches slang at a word boundary, tolerating a trailing
// "s" so plurals ("float days") match the singular slang entry ("float day")
// per spec.md §4.6's worked example.
func wordBoundaryMatch(q, slang string) bool {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(slang) + `s?\b`)
	if err != nil {
		return false
	}
	return re.MatchString(q)
}
