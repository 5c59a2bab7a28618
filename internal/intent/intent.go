// Package intent classifies a worker's query (wage, high-stakes, contract)
// and expands slang before it reaches the retrieval pipeline, per
// spec.md §4.6.
package intent

import (
	"regexp"
	"sort"
	"strings"

	"manifold/internal/manifest"
)

// Type is one of the recognized intent categories.
type Type string

const (
	Wage      Type = "wage"
	HighStakes Type = "high_stakes"
	Contract  Type = "contract"
)

// Intent is the tagged record from spec.md §3.
type Intent struct {
	Type               Type
	Confidence         float64
	Classification     string
	Topic              string
	RequiresEscalation bool
	MatchedKeywords    []string
	RelevantArticles   []int
}

var wagePhrases = []string{
	`how much (do|will) i (make|earn|get paid)`,
	`what('s| is) my (pay|wage|rate)`,
	`pay rate`,
	`hourly rate`,
	`wage (rate|schedule|step)`,
	`step increase`,
	`pay increase`,
}

var wageExclusions = regexp.MustCompile(`(?i)vacation pay|holiday pay|pay stub|pay period`)

var wageRe = compileAny(wagePhrases)

var highStakesActivePhrases = []string{
	`i am being fired`,
	`i('m| am) getting fired`,
	`i just got (fired|terminated)`,
	`just got terminated`,
	`my manager is harassing me`,
	`i('m| am) being harassed`,
	`i('m| am) being disciplined`,
	`i('m| am) being investigated`,
}

var highStakesGeneralPhrases = []string{
	`discriminat\w*`,
	`harassment`,
	`investigation`,
	`weingarten`,
	`rights during (discipline|an? investigation)`,
	`union representative present`,
}

var highStakesActiveRe = compileAny(highStakesActivePhrases)
var highStakesGeneralRe = compileAny(highStakesGeneralPhrases)

func compileAny(phrases []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + strings.Join(phrases, "|"))
}

// topicPattern is one entry of the priority-ordered topic cascade; more
// specific topics are listed before the generic ones they could otherwise
// be absorbed by (spec.md §4.6: "personal_holiday" before "vacation",
// "scheduling" last because it also matches "hours").
type topicPattern struct {
	topic   string
	pattern *regexp.Regexp
}

var topicCascade = []topicPattern{
	{"personal_holiday", regexp.MustCompile(`(?i)personal holiday|floater|float day`)},
	{"sick_leave", regexp.MustCompile(`(?i)sick (leave|day|time)`)},
	{"bereavement", regexp.MustCompile(`(?i)bereavement|funeral leave`)},
	{"jury_duty", regexp.MustCompile(`(?i)jury duty`)},
	{"fmla", regexp.MustCompile(`(?i)\bfmla\b|family and medical leave`)},
	{"military_leave", regexp.MustCompile(`(?i)military leave`)},
	{"leave_of_absence", regexp.MustCompile(`(?i)leave of absence`)},
	{"vacation", regexp.MustCompile(`(?i)\bvacation\b`)},
	{"overtime", regexp.MustCompile(`(?i)overtime|time and a half`)},
	{"shift_differential", regexp.MustCompile(`(?i)shift differential`)},
	{"seniority", regexp.MustCompile(`(?i)seniority`)},
	{"layoff", regexp.MustCompile(`(?i)\blayoff`)},
	{"recall", regexp.MustCompile(`(?i)\brecall\b`)},
	{"grievance", regexp.MustCompile(`(?i)grievance`)},
	{"discipline", regexp.MustCompile(`(?i)discipline|just cause`)},
	{"discharge", regexp.MustCompile(`(?i)discharge|terminated|fired`)},
	{"harassment", regexp.MustCompile(`(?i)harassment`)},
	{"discrimination", regexp.MustCompile(`(?i)discriminat`)},
	{"health_insurance", regexp.MustCompile(`(?i)health insurance|medical plan`)},
	{"pension", regexp.MustCompile(`(?i)\bpension\b`)},
	{"retirement", regexp.MustCompile(`(?i)retirement`)},
	{"union_rights", regexp.MustCompile(`(?i)union (dues|rights|representative)`)},
	{"probationary_period", regexp.MustCompile(`(?i)probationary`)},
	{"promotion", regexp.MustCompile(`(?i)promotion`)},
	{"transfer", regexp.MustCompile(`(?i)\btransfer\b`)},
	{"safety", regexp.MustCompile(`(?i)\bsafety\b`)},
	{"uniforms", regexp.MustCompile(`(?i)uniform`)},
	{"hours_of_work", regexp.MustCompile(`(?i)hours of work|work week`)},
	{"scheduling", regexp.MustCompile(`(?i)schedul|\bhours\b`)},
}

// Classify categorizes query against wage/high-stakes/topic patterns and
// resolves relevant articles via the manifest's routing maps.
func Classify(query string, m *manifest.Manifest) Intent {
	q := strings.ToLower(query)

	if wageRe.MatchString(q) && !wageExclusions.MatchString(q) {
		it := Intent{Type: Wage, Confidence: 0.9, MatchedKeywords: matchedKeywords(wageRe, q)}
		it.RelevantArticles = articlesForTopic(m, "wage_appendix")
		return it
	}

	if highStakesActiveRe.MatchString(q) {
		it := Intent{
			Type: HighStakes, Confidence: 0.95, RequiresEscalation: true,
			MatchedKeywords: matchedKeywords(highStakesActiveRe, q),
		}
		it.Topic, it.RelevantArticles = resolveTopic(q, m)
		return it
	}
	if highStakesGeneralRe.MatchString(q) {
		it := Intent{
			Type: HighStakes, Confidence: 0.7,
			MatchedKeywords: matchedKeywords(highStakesGeneralRe, q),
		}
		it.Topic, it.RelevantArticles = resolveTopic(q, m)
		return it
	}

	topic, articles := resolveTopic(q, m)
	return Intent{Type: Contract, Confidence: 0.5, Topic: topic, RelevantArticles: articles}
}

func resolveTopic(q string, m *manifest.Manifest) (string, []int) {
	for _, tp := range topicCascade {
		if tp.pattern.MatchString(q) {
			return tp.topic, articlesForTopic(m, tp.topic)
		}
	}
	return "", nil
}

func articlesForTopic(m *manifest.Manifest, topic string) []int {
	if m == nil {
		return nil
	}
	articles := m.ArticlesForTopic(topic)
	sorted := append([]int{}, articles...)
	sort.Ints(sorted)
	return sorted
}

func matchedKeywords(re *regexp.Regexp, q string) []string {
	m := re.FindString(q)
	if m == "" {
		return nil
	}
	return []string{m}
}
