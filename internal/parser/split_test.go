package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupByTargetSizeKeepsParagraphsIntact(t *testing.T) {
	text := "First paragraph stays short.\n\nSecond paragraph also stays short.\n\nThird paragraph is short too."
	groups := groupByTargetSize(text, 1000)
	assert.Len(t, groups, 1)
	assert.Contains(t, groups[0], "First paragraph")
	assert.Contains(t, groups[0], "Third paragraph")
}

func TestGroupByTargetSizeSplitsOnOversize(t *testing.T) {
	para := strings.Repeat("word ", 60)
	text := para + "\n\n" + para + "\n\n" + para
	groups := groupByTargetSize(text, 120)
	assert.Greater(t, len(groups), 1)
	for _, g := range groups {
		assert.NotEmpty(t, g)
	}
}

func TestGroupByTargetSizeDefaultsWhenSizeNonPositive(t *testing.T) {
	groups := groupByTargetSize("some short text", 0)
	assert.Len(t, groups, 1)
	assert.Equal(t, "some short text", groups[0])
}
