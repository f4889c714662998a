package diff

import (
	"strings"
	"unicode"
)

// Options control how lines are normalized before comparison. Reported line
// numbers always refer to the original lines.
type Options struct {
	TrimWhitespace     bool `mapstructure:"trim_whitespace"`
	CollapseWhitespace bool `mapstructure:"collapse_whitespace"`
	IgnoreCase         bool `mapstructure:"ignore_case"`
}

func (o Options) normalize(line string) string {
	if o.TrimWhitespace {
		line = strings.TrimSpace(line)
	}
	if o.CollapseWhitespace {
		line = collapseSpace(line)
	}
	if o.IgnoreCase {
		line = strings.ToLower(line)
	}
	return line
}

// collapseSpace replaces every run of whitespace with a single space.
func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		sb.WriteRune(r)
	}

	return sb.String()
}

// interner maps normalized lines to small integers so that all sequences of
// one comparison share the same token space.
type interner struct {
	opts   Options
	tokens map[string]int
}

func newInterner(opts Options) *interner {
	return &interner{opts: opts, tokens: make(map[string]int)}
}

func (in *interner) tokenize(lines []string) []int {
	out := make([]int, len(lines))
	for i, line := range lines {
		key := in.opts.normalize(line)
		tok, ok := in.tokens[key]
		if !ok {
			tok = len(in.tokens)
			in.tokens[key] = tok
		}
		out[i] = tok
	}
	return out
}
