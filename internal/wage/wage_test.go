package wage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAppendix = `APPENDIX A WAGE RATES

Step | 7/1/2023 | 7/1/2024

ALL PURPOSE CLERK

Start | $18.50 | $19.00
After 1000 hours | $19.25 | $19.75
After 3000 hours | $20.00 | $20.60
After 6000 hours | $21.00 | $21.65

SENIOR CLERK

Start | $22.00 | $22.75
After 6 months | $23.00 | $23.80
`

func TestExtractParsesClassificationsAndSteps(t *testing.T) {
	table := Extract(sampleAppendix, "local-42")

	require.Contains(t, table.Classifications, "all_purpose_clerk")
	acp := table.Classifications["all_purpose_clerk"]
	require.Len(t, acp.Steps, 4)

	assert.Nil(t, acp.Steps[0].HoursRequired)
	assert.Equal(t, 0.0, acp.Steps[0].Threshold())

	require.NotNil(t, acp.Steps[1].HoursRequired)
	assert.Equal(t, 1000.0, *acp.Steps[1].HoursRequired)

	require.Contains(t, table.Classifications, "senior_clerk")
	sc := table.Classifications["senior_clerk"]
	require.Len(t, sc.Steps, 2)
	require.NotNil(t, sc.Steps[1].MonthsRequired)
	assert.Equal(t, 6.0, *sc.Steps[1].MonthsRequired)
}

func TestExtractStepsSortedAscending(t *testing.T) {
	table := Extract(sampleAppendix, "local-42")
	acp := table.Classifications["all_purpose_clerk"]
	for i := 1; i < len(acp.Steps); i++ {
		assert.GreaterOrEqual(t, acp.Steps[i].Threshold(), acp.Steps[i-1].Threshold())
	}
}

func TestLookupSelectsHighestSatisfiedStep(t *testing.T) {
	table := Extract(sampleAppendix, "local-42")

	result, ok := Lookup(table, "all_purpose_clerk", 5000, 0, "7/1/2024")
	require.True(t, ok)
	assert.Equal(t, "After 3000 hours", result.StepName)
	assert.Equal(t, 20.60, result.Rate)
	assert.Equal(t, "Appendix A", result.Citation)
}

func TestLookupClassificationSubstringFallback(t *testing.T) {
	table := Extract(sampleAppendix, "local-42")

	result, ok := Lookup(table, "Senior Clerk (Bargaining Unit)", 0, 8, "7/1/2024")
	require.True(t, ok)
	assert.Equal(t, "SENIOR CLERK", result.Classification)
	assert.Equal(t, 23.80, result.Rate)
}

func TestLookupFallsBackToFirstStepWhenNoneSatisfied(t *testing.T) {
	table := Extract(sampleAppendix, "local-42")

	result, ok := Lookup(table, "all_purpose_clerk", 0, 0, "7/1/2023")
	require.True(t, ok)
	assert.Equal(t, "Start", result.StepName)
	assert.Equal(t, 18.50, result.Rate)
}

func TestLookupUnknownClassificationFails(t *testing.T) {
	table := Extract(sampleAppendix, "local-42")
	_, ok := Lookup(table, "nonexistent_title", 100, 0, "7/1/2024")
	assert.False(t, ok)
}

func TestLookupSelectsLatestEffectiveDateWhenUnspecified(t *testing.T) {
	table := Extract(sampleAppendix, "local-42")
	result, ok := Lookup(table, "all_purpose_clerk", 6000, 0, "")
	require.True(t, ok)
	assert.Equal(t, "7/1/2024", result.EffectiveDate)
	assert.Equal(t, 21.65, result.Rate)
}
