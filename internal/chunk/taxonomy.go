package chunk

// Taxonomy is the fixed vocabulary a chunk's Topics and AppliesTo fields
// must draw from (spec.md §3's "applies_to and topics draw from fixed
// vocabularies" invariant). It is loaded once per deployment (typically
// from the manifest's detected classifications plus a standard topic list)
// and handed to the enricher and its validators.
type Taxonomy struct {
	Topics          []string
	Classifications []string
}

// DefaultTopics is the standard CBA topic vocabulary. A manifest may narrow
// this list to the topics it actually covers, but never widen it silently —
// unknown topics are filtered by the enricher's validator, never invented.
var DefaultTopics = []string{
	"wages", "overtime", "personal_holiday", "vacation", "sick_leave",
	"bereavement", "jury_duty", "seniority", "layoff", "recall",
	"grievance", "discipline", "discharge", "harassment", "discrimination",
	"health_insurance", "pension", "retirement", "hours_of_work",
	"scheduling", "shift_differential", "overtime_distribution",
	"union_rights", "management_rights", "probationary_period",
	"classification", "promotion", "transfer", "leave_of_absence",
	"fmla", "military_leave", "safety", "uniforms", "tools_equipment",
	"subcontracting", "no_strike", "definitions", "wage_appendix",
}

func (t Taxonomy) validTopic(topic string) bool {
	for _, v := range t.Topics {
		if v == topic {
			return true
		}
	}
	return false
}

func (t Taxonomy) validClassification(cls string) bool {
	if cls == AllClassifications {
		return true
	}
	for _, v := range t.Classifications {
		if v == cls {
			return true
		}
	}
	return false
}

// FilterTopics keeps only topics present in the taxonomy, preserving order
// and dropping duplicates. Invalid values are silently dropped per the
// enricher's validation contract (spec.md §4.3): the LLM's output is
// filtered against the vocabulary, with empty fallback, never trusted
// verbatim.
func (t Taxonomy) FilterTopics(candidates []string) []string {
	return filterUnique(candidates, t.validTopic)
}

// FilterClassifications keeps only classifications present in the taxonomy
// (plus the "all" sentinel).
func (t Taxonomy) FilterClassifications(candidates []string) []string {
	return filterUnique(candidates, t.validClassification)
}

func filterUnique(candidates []string, valid func(string) bool) []string {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || !valid(c) {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
