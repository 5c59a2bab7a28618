package enrich

import (
	"context"
	"regexp"
	"strings"

	"manifold/internal/chunk"
)

// RuleBased is the deterministic enricher: regex tables map article
// number to topics, and content patterns to topics, classifications, and
// flags. It never errors and never calls out, so it is both the default
// enricher and the fallback target for LLM.
type RuleBased struct{}

func NewRuleBased() RuleBased { return RuleBased{} }

// articleTopics maps well-known article numbers straight to topics; many
// CBAs number their articles consistently enough that this alone resolves
// the common case before any content pattern is consulted.
var articleTopics = map[int][]string{
	16: {"personal_holiday"},
	17: {"vacation"},
	18: {"sick_leave"},
	28: {"seniority"},
	29: {"layoff", "recall"},
	43: {"discipline", "discharge"},
}

type contentRule struct {
	pattern *regexp.Regexp
	topics  []string
}

var contentTopicRules = []contentRule{
	{regexp.MustCompile(`(?i)personal holiday`), []string{"personal_holiday"}},
	{regexp.MustCompile(`(?i)\bvacation\b`), []string{"vacation"}},
	{regexp.MustCompile(`(?i)overtime`), []string{"overtime"}},
	{regexp.MustCompile(`(?i)sick leave`), []string{"sick_leave"}},
	{regexp.MustCompile(`(?i)bereavement`), []string{"bereavement"}},
	{regexp.MustCompile(`(?i)jury duty`), []string{"jury_duty"}},
	{regexp.MustCompile(`(?i)seniority`), []string{"seniority"}},
	{regexp.MustCompile(`(?i)\blayoff`), []string{"layoff"}},
	{regexp.MustCompile(`(?i)\brecall\b`), []string{"recall"}},
	{regexp.MustCompile(`(?i)grievance`), []string{"grievance"}},
	{regexp.MustCompile(`(?i)just cause|discipline`), []string{"discipline"}},
	{regexp.MustCompile(`(?i)discharge|termination|terminated`), []string{"discharge"}},
	{regexp.MustCompile(`(?i)harassment`), []string{"harassment"}},
	{regexp.MustCompile(`(?i)discriminat`), []string{"discrimination"}},
	{regexp.MustCompile(`(?i)health insurance|medical plan`), []string{"health_insurance"}},
	{regexp.MustCompile(`(?i)\bpension\b`), []string{"pension"}},
	{regexp.MustCompile(`(?i)retirement`), []string{"retirement"}},
	{regexp.MustCompile(`(?i)hours of work|work week`), []string{"hours_of_work"}},
	{regexp.MustCompile(`(?i)shift differential`), []string{"shift_differential"}},
	{regexp.MustCompile(`(?i)union (dues|rights|representative)`), []string{"union_rights"}},
	{regexp.MustCompile(`(?i)management rights`), []string{"management_rights"}},
	{regexp.MustCompile(`(?i)probationary`), []string{"probationary_period"}},
	{regexp.MustCompile(`(?i)promotion`), []string{"promotion"}},
	{regexp.MustCompile(`(?i)\btransfer\b`), []string{"transfer"}},
	{regexp.MustCompile(`(?i)leave of absence`), []string{"leave_of_absence"}},
	{regexp.MustCompile(`(?i)\bfmla\b|family and medical leave`), []string{"fmla"}},
	{regexp.MustCompile(`(?i)military leave`), []string{"military_leave"}},
	{regexp.MustCompile(`(?i)\bsafety\b`), []string{"safety"}},
	{regexp.MustCompile(`(?i)uniform`), []string{"uniforms"}},
	{regexp.MustCompile(`(?i)tools? (and|&) equipment`), []string{"tools_equipment"}},
	{regexp.MustCompile(`(?i)subcontract`), []string{"subcontracting"}},
	{regexp.MustCompile(`(?i)no.strike|work stoppage`), []string{"no_strike"}},
	{regexp.MustCompile(`(?i)\bdefinitions?\b`), []string{"definitions"}},
	{regexp.MustCompile(`(?i)wage (rate|schedule|appendix)`), []string{"wage_appendix"}},
}

var classificationRules = []contentRule{
	{regexp.MustCompile(`(?i)all (full[- ]time )?employees`), []string{chunk.AllClassifications}},
	{regexp.MustCompile(`(?i)part[- ]time employees?`), []string{"part_time"}},
	{regexp.MustCompile(`(?i)clerk(s)?\b`), []string{"clerk"}},
	{regexp.MustCompile(`(?i)driver(s)?\b`), []string{"driver"}},
	{regexp.MustCompile(`(?i)mechanic(s)?\b`), []string{"mechanic"}},
	{regexp.MustCompile(`(?i)supervisor(s)?\b`), []string{"supervisor"}},
}

var definitionRule = regexp.MustCompile(`(?i)^\s*["“]?[A-Za-z][\w\s]*["”]?\s+(shall mean|means|is defined as)`)
var exceptionRule = regexp.MustCompile(`(?i)\bexcept\b|\bprovided, however\b|\bunless\b`)
var hireDateRule = regexp.MustCompile(`(?i)hired (before|on or after|prior to)|date of hire`)
var highStakesRule = regexp.MustCompile(`(?i)discharge|termination|just cause|discrimination|harassment`)

var crossRefRule = regexp.MustCompile(`(?i)Article\s+(\d+)(?:,?\s*Section\s+(\d+))?`)

func (RuleBased) Enrich(_ context.Context, c chunk.Chunk, taxonomy chunk.Taxonomy) chunk.Chunk {
	topics := map[string]bool{}
	for _, t := range articleTopics[c.ArticleNum] {
		topics[t] = true
	}
	for _, r := range contentTopicRules {
		if r.pattern.MatchString(c.Content) {
			for _, t := range r.topics {
				topics[t] = true
			}
		}
	}
	var topicList []string
	for t := range topics {
		topicList = append(topicList, t)
	}

	var applies []string
	for _, r := range classificationRules {
		if r.pattern.MatchString(c.Content) {
			applies = append(applies, r.topics...)
		}
	}

	var crossRefs []string
	for _, m := range crossRefRule.FindAllStringSubmatch(c.Content, -1) {
		ref := "Article " + m[1]
		if len(m) > 2 && m[2] != "" {
			ref += ", Section " + m[2]
		}
		crossRefs = append(crossRefs, ref)
	}

	f := flags{
		isDefinition:      definitionRule.MatchString(c.Content),
		isException:       exceptionRule.MatchString(c.Content),
		hireDateSensitive: hireDateRule.MatchString(c.Content),
		isHighStakes:      highStakesRule.MatchString(c.Content),
	}

	summary := firstSentence(c.Content)

	return apply(c, applies, taxonomy.FilterTopics(topicList), crossRefs, summary, f, nil, nil)
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexAny(s, ".\n"); idx > 0 {
		return strings.TrimSpace(s[:idx+1])
	}
	return s
}
