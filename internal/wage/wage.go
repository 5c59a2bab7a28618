// Package wage extracts and looks up the wage-progression table from a
// contract's appendix, per spec.md §3 (WageTable) and §4.2.
package wage

import "sort"

// Step is one rung of a classification's wage ladder.
type Step struct {
	StepName string
	// Exactly one of HoursRequired/MonthsRequired is non-nil, or both are
	// nil for a single-rate classification (spec.md §3 invariant).
	HoursRequired  *float64
	MonthsRequired *float64
	// Rates maps an effective date, as written in the appendix's date
	// header ("7/1/2024" or "2024-07-01"), to a dollar rate.
	Rates map[string]float64
}

// Threshold returns the step's ordering key: hours if set, else months, else
// zero (for a "Start"/single-rate step).
func (s Step) Threshold() float64 {
	switch {
	case s.HoursRequired != nil:
		return *s.HoursRequired
	case s.MonthsRequired != nil:
		return *s.MonthsRequired
	default:
		return 0
	}
}

// Classification is one job title's ordered wage ladder.
type Classification struct {
	Name  string
	Steps []Step
}

// Table is keyed by contract_id and holds every classification's ladder.
// Invariants (spec.md §3): steps sorted ascending by threshold; every step
// carries the same set of effective dates; rates are non-negative.
type Table struct {
	ContractID      string
	EffectiveDates  []string
	Classifications map[string]Classification // keyed by normalized name
}

// NewTable returns an empty table ready for population by Extract.
func NewTable(contractID string) Table {
	return Table{ContractID: contractID, Classifications: map[string]Classification{}}
}

// sortSteps orders a classification's steps ascending by threshold,
// enforcing the invariant so lookup's "highest satisfied step" walk is
// correct regardless of appendix row order.
func sortSteps(steps []Step) {
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Threshold() < steps[j].Threshold()
	})
}
