package wage

import (
	"regexp"
	"strconv"
	"strings"

	"manifold/internal/parser"
)

var (
	dollarRe    = regexp.MustCompile(`^\$?\s*([0-9]+(?:\.[0-9]{1,2})?)\s*$`)
	afterHourRe = regexp.MustCompile(`(?i)after\s+([0-9,]+(?:\.[0-9]+)?)\s*hours?`)
	afterMonRe  = regexp.MustCompile(`(?i)after\s+([0-9,]+(?:\.[0-9]+)?)\s*months?`)
	startRe     = regexp.MustCompile(`(?i)^\s*start(ing)?\s*$`)
	dateHdrRe   = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$|^\d{4}-\d{2}-\d{2}$`)
)

// Extract parses the appendix text (already flattened by parser.CleanText,
// so HTML table rows appear as pipe-delimited lines) into a WageTable.
// Per spec.md §4.2: a row with a single cell spanning columns introduces a
// new classification; a row whose other columns all parse as dollar
// amounts is a step row.
func Extract(appendixText, contractID string) Table {
	cleaned := parser.CleanText(appendixText)
	t := NewTable(contractID)

	var current string
	var effectiveDates []string

	for _, raw := range strings.Split(cleaned, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		cells := splitCells(line)
		if len(cells) == 0 {
			continue
		}

		if len(cells) == 1 {
			// Single cell spanning columns: new classification header,
			// unless it's the table's "Step" header repeated mid-document.
			if strings.EqualFold(cells[0], "step") {
				continue
			}
			current = cells[0]
			t.Classifications[normalize(current)] = Classification{Name: current}
			continue
		}

		if isDateHeaderRow(cells) {
			effectiveDates = cells[1:]
			t.EffectiveDates = append([]string{}, effectiveDates...)
			continue
		}

		rates, ok := parseStepRates(cells[1:], effectiveDates)
		if !ok || current == "" {
			continue
		}
		step := Step{StepName: cells[0], Rates: rates}
		switch {
		case startRe.MatchString(cells[0]):
			// Both fields stay nil; Threshold() defaults to zero.
		default:
			if h, isHour := parseAfterHours(cells[0]); isHour {
				step.HoursRequired = &h
			} else if m, isMonth := parseAfterMonths(cells[0]); isMonth {
				step.MonthsRequired = &m
			}
		}
		key := normalize(current)
		cls := t.Classifications[key]
		cls.Name = current
		cls.Steps = append(cls.Steps, step)
		t.Classifications[key] = cls
	}

	for k, cls := range t.Classifications {
		sortSteps(cls.Steps)
		t.Classifications[k] = cls
	}
	return t
}

func splitCells(line string) []string {
	parts := strings.Split(line, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isDateHeaderRow(cells []string) bool {
	if len(cells) < 2 {
		return false
	}
	for _, c := range cells[1:] {
		if !dateHdrRe.MatchString(c) {
			return false
		}
	}
	return true
}

// parseStepRates parses the remaining cells as dollar amounts, keyed by the
// column's effective date when known, else by a positional fallback so
// rates are never silently dropped.
func parseStepRates(cells, dates []string) (map[string]float64, bool) {
	rates := map[string]float64{}
	any := false
	for i, c := range cells {
		m := dollarRe.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v < 0 {
			continue
		}
		key := ""
		if i < len(dates) {
			key = dates[i]
		} else {
			key = "col" + strconv.Itoa(i)
		}
		rates[key] = v
		any = true
	}
	return rates, any
}

func parseAfterHours(stepText string) (float64, bool) {
	m := afterHourRe.FindStringSubmatch(stepText)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseAfterMonths(stepText string) (float64, bool) {
	m := afterMonRe.FindStringSubmatch(stepText)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// normalize lowercases and collapses non-alphanumerics to underscores, the
// canonical key form used across extraction, lookup, and persistence.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnumRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
