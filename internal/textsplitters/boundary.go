package textsplitters

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// BoundaryConfig controls the paragraph splitter.
type BoundaryConfig struct {
	Unit Unit // chars or tokens for target size
	Size int  // target size; if <=0 default to 500
}

func paragraphsOf(text string) []string {
	raw := regexp.MustCompile(`\n\s*\n+`).Split(strings.TrimSpace(text), -1)
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func measure(text string, unit Unit, tok Tokenizer) int {
	if unit == UnitTokens {
		if tok == nil {
			tok = WhitespaceTokenizer{}
		}
		return len(tok.Tokenize(text))
	}
	return utf8.RuneCountInString(text)
}

// groupByTarget packs paragraph-sized units into chunks that each target
// roughly cfg.Size, never splitting a unit itself.
func groupByTarget(units []string, cfg BoundaryConfig) []string {
	size := cfg.Size
	if size <= 0 {
		size = 500
	}
	var tok Tokenizer
	if cfg.Unit == UnitTokens {
		tok = WhitespaceTokenizer{}
	}

	var chunks []string
	var cur strings.Builder
	for i, u := range units {
		if u == "" {
			continue
		}
		candidate := u
		if cur.Len() > 0 {
			candidate = cur.String() + "\n" + u
		}
		m := measure(candidate, cfg.Unit, tok)
		if m <= size || cur.Len() == 0 {
			if cur.Len() > 0 {
				cur.WriteString("\n")
			}
			cur.WriteString(u)
			if i == len(units)-1 {
				if s := cur.String(); s != "" {
					chunks = append(chunks, s)
				}
			}
			continue
		}
		if s := cur.String(); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
		cur.WriteString(u)
		if i == len(units)-1 {
			if s := cur.String(); s != "" {
				chunks = append(chunks, s)
			}
		}
	}
	if len(units) == 0 {
		return nil
	}
	return chunks
}

// boundarySplitter groups paragraphs up to a target size, never splitting a
// paragraph itself.
type boundarySplitter struct {
	cfg BoundaryConfig
}

func newParagraphSplitter(cfg BoundaryConfig) (Splitter, error) {
	return &boundarySplitter{cfg: cfg}, nil
}

func (s *boundarySplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return groupByTarget(paragraphsOf(text), s.cfg)
}
