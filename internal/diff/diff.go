package diff

import (
	"bytes"
	"strings"
)

// SplitLines splits content into lines and reports whether it ends with a
// newline. Empty content has no lines.
func SplitLines(data []byte) ([]string, bool) {
	if len(data) == 0 {
		return nil, false
	}

	eol := bytes.HasSuffix(data, []byte("\n"))
	s := string(data)
	if eol {
		s = s[:len(s)-1]
	}

	return strings.Split(s, "\n"), eol
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string, eol bool) []byte {
	if len(lines) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for i, line := range lines {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
	}
	if eol {
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

// Lines returns the minimal edit script turning local into remote.
func Lines(local, remote []string, opts Options) []Item {
	in := newInterner(opts)
	hunks := diffTokens(in.tokenize(local), in.tokenize(remote))

	items := make([]Item, len(hunks))
	for i, h := range hunks {
		items[i] = Item{
			LocalStart:  h.aStart,
			LocalCount:  h.aCount,
			RemoteStart: h.bStart,
			RemoteCount: h.bCount,
			Action:      ActionDefault,
		}
	}

	return items
}

// Compare diffs two file contents.
func Compare(local, remote []byte, opts Options) *Result {
	l, leol := SplitLines(local)
	r, reol := SplitLines(remote)

	return &Result{
		Items:     Lines(l, r, opts),
		LocalEOL:  leol,
		RemoteEOL: reol,
	}
}

// Compare3 diffs three file contents against their common base.
func Compare3(base, local, remote []byte, opts Options) *Result3 {
	b, beol := SplitLines(base)
	l, leol := SplitLines(local)
	r, reol := SplitLines(remote)

	return &Result3{
		Items:     Lines3(b, l, r, opts),
		BaseEOL:   beol,
		LocalEOL:  leol,
		RemoteEOL: reol,
	}
}
