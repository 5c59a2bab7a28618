package textsplitters

import "testing"

func TestParagraphSplitterKeepsParagraphsIntact(t *testing.T) {
	s, err := NewFromConfig(Config{Kind: KindParagraphs, Boundary: BoundaryConfig{Unit: UnitChars, Size: 1000}})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	got := s.Split("first paragraph.\n\nsecond paragraph.\n\nthird paragraph.")
	if len(got) != 1 {
		t.Fatalf("want 1 group, got %d: %v", len(got), got)
	}
}

func TestParagraphSplitterSplitsOnOversize(t *testing.T) {
	s, err := NewFromConfig(Config{Kind: KindParagraphs, Boundary: BoundaryConfig{Unit: UnitChars, Size: 20}})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	got := s.Split("a paragraph that is long enough.\n\nanother paragraph that is also long.")
	if len(got) < 2 {
		t.Fatalf("want at least 2 groups, got %d: %v", len(got), got)
	}
}

func TestParagraphSplitterEmptyInput(t *testing.T) {
	s, err := NewFromConfig(Config{Kind: KindParagraphs, Boundary: BoundaryConfig{Unit: UnitChars, Size: 100}})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got := s.Split("   "); got != nil {
		t.Fatalf("want nil, got %v", got)
	}
}

func TestNewFromConfigUnknownKind(t *testing.T) {
	if _, err := NewFromConfig(Config{Kind: "bogus"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
