package wage

import (
	"sort"
	"strings"
)

// Result is the outcome of a wage lookup, ready for response assembly.
type Result struct {
	Classification string
	StepName       string
	Rate           float64
	EffectiveDate  string
	Citation       string
}

// Lookup resolves a rate for classification at hoursWorked/monthsEmployed
// as of effectiveDate, per spec.md §4.2. Classification is matched exactly
// first, then by substring fallback in either direction. The effective
// date used is the latest one on the table that is <= effectiveDate (or
// the table's latest date if effectiveDate is empty). The step chosen is
// the highest-threshold step the worker satisfies.
func Lookup(table Table, classification string, hoursWorked, monthsEmployed float64, effectiveDate string) (Result, bool) {
	cls, ok := matchClassification(table, classification)
	if !ok || len(cls.Steps) == 0 {
		return Result{}, false
	}

	date := selectEffectiveDate(table.EffectiveDates, effectiveDate)

	var best *Step
	for i := range cls.Steps {
		s := &cls.Steps[i]
		var satisfied bool
		switch {
		case s.HoursRequired != nil:
			satisfied = hoursWorked >= *s.HoursRequired
		case s.MonthsRequired != nil:
			satisfied = monthsEmployed >= *s.MonthsRequired
		default:
			satisfied = true
		}
		if satisfied {
			best = s
		}
	}
	if best == nil {
		// Nobody qualifies for anything but the bottom rung yet.
		best = &cls.Steps[0]
	}

	rate, ok := best.Rates[date]
	if !ok {
		rate, date, ok = latestAvailableRate(best.Rates, effectiveDate)
		if !ok {
			return Result{}, false
		}
	}

	return Result{
		Classification: cls.Name,
		StepName:       best.StepName,
		Rate:           rate,
		EffectiveDate:  date,
		Citation:       "Appendix A",
	}, true
}

func matchClassification(table Table, classification string) (Classification, bool) {
	key := normalize(classification)
	if cls, ok := table.Classifications[key]; ok {
		return cls, true
	}
	for k, cls := range table.Classifications {
		if k != "" && key != "" && (strings.Contains(k, key) || strings.Contains(key, k)) {
			return cls, true
		}
	}
	return Classification{}, false
}

// selectEffectiveDate picks the latest table date <= requested, falling
// back to the table's latest date when requested is empty or precedes
// every known date.
func selectEffectiveDate(dates []string, requested string) string {
	if len(dates) == 0 {
		return requested
	}
	sorted := append([]string{}, dates...)
	sort.Strings(sorted)

	if requested == "" {
		return sorted[len(sorted)-1]
	}
	chosen := sorted[0]
	for _, d := range sorted {
		if d <= requested {
			chosen = d
		}
	}
	return chosen
}

func latestAvailableRate(rates map[string]float64, requested string) (float64, string, bool) {
	var dates []string
	for d := range rates {
		dates = append(dates, d)
	}
	if len(dates) == 0 {
		return 0, "", false
	}
	sort.Strings(dates)
	chosen := dates[len(dates)-1]
	if requested != "" {
		for _, d := range dates {
			if d <= requested {
				chosen = d
			}
		}
	}
	return rates[chosen], chosen, true
}
