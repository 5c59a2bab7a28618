// Package manifest loads per-contract routing configuration: slang maps,
// topic/classification→article maps, and topic regex patterns, derived
// from the contract once and cached (spec.md §3, §6).
package manifest

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// QueryRouting holds the manifest's retrieval-routing tables.
type QueryRouting struct {
	SlangToContract           map[string]string `json:"slang_to_contract"`
	TopicToArticles           map[string][]int  `json:"topic_to_articles"`
	ClassificationToArticles  map[string][]int  `json:"classification_to_articles"`
	TopicPatterns             map[string]string `json:"topic_patterns"`
}

// Manifest is the per-contract configuration record from spec.md §6.
type Manifest struct {
	ContractID     string            `json:"contract_id"`
	Employer       string            `json:"employer"`
	UnionLocal     string            `json:"union_local"`
	BargainingUnit string            `json:"bargaining_unit"`
	TermStart      string            `json:"term_start"`
	TermEnd        string            `json:"term_end"`
	ArticleTitles  map[string]string `json:"article_titles"`
	TotalArticles  int               `json:"total_articles"`
	TotalSections  int               `json:"total_sections"`
	HasAppendixA   bool              `json:"has_appendix_a"`
	HasLOUs        bool              `json:"has_lous"`
	Classifications []string         `json:"classifications"`
	KeyDates       map[string]string `json:"key_dates"`
	TopicsCovered  []string          `json:"topics_covered"`
	QueryRouting   *QueryRouting     `json:"query_routing,omitempty"`

	compiledPatterns map[string]*regexp.Regexp
}

// Parse decodes a manifest JSON document and compiles its topic patterns
// once so repeated classification calls don't re-parse regexes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse: %w", err)
	}
	m.compiledPatterns = map[string]*regexp.Regexp{}
	if m.QueryRouting != nil {
		for topic, pattern := range m.QueryRouting.TopicPatterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				continue
			}
			m.compiledPatterns[topic] = re
		}
	}
	return &m, nil
}

// ArticlesForTopic returns the manifest's known article numbers for topic.
func (m *Manifest) ArticlesForTopic(topic string) []int {
	if m == nil || m.QueryRouting == nil {
		return nil
	}
	return m.QueryRouting.TopicToArticles[topic]
}

// ArticlesForClassification returns the manifest's known article numbers
// for classification.
func (m *Manifest) ArticlesForClassification(classification string) []int {
	if m == nil || m.QueryRouting == nil {
		return nil
	}
	return m.QueryRouting.ClassificationToArticles[classification]
}

// SlangPhrase returns the contract-specific legal phrase for a slang term,
// if the manifest maps it.
func (m *Manifest) SlangPhrase(term string) (string, bool) {
	if m == nil || m.QueryRouting == nil {
		return "", false
	}
	phrase, ok := m.QueryRouting.SlangToContract[term]
	return phrase, ok
}

// TopicPattern returns the manifest's compiled regex for topic, if present.
func (m *Manifest) TopicPattern(topic string) (*regexp.Regexp, bool) {
	if m == nil {
		return nil, false
	}
	re, ok := m.compiledPatterns[topic]
	return re, ok
}
