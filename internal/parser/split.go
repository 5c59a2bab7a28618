package parser

import "manifold/internal/textsplitters"

// groupByTargetSize packs a section's text into chunks that each target
// roughly size characters, preferring to break on paragraph boundaries.
// Delegates to the teacher's textsplitters package (paragraph-boundary
// strategy, char-counted) rather than hand-rolling the grouping logic.
func groupByTargetSize(text string, size int) []string {
	if size <= 0 {
		size = TargetChunkSize
	}
	splitter, err := textsplitters.NewFromConfig(textsplitters.Config{
		Kind: textsplitters.KindParagraphs,
		Boundary: textsplitters.BoundaryConfig{
			Unit: textsplitters.UnitChars,
			Size: size,
		},
	})
	if err != nil {
		// KindParagraphs is a constant of our own choosing; NewFromConfig
		// only fails on an unrecognized Kind, so this is unreachable.
		panic(err)
	}
	return splitter.Split(text)
}
