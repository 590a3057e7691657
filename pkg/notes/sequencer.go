package notes

import (
	"strconv"
	"strings"
)

// NoteHeadingSequencer numbers note headings within one document. Level 1
// counts 1, 2, 3; level 2 counts a, b, c; deeper levels count i, ii, iii.
// It is not safe for concurrent use.
type NoteHeadingSequencer struct {
	counters []int
}

func NewNoteHeadingSequencer() *NoteHeadingSequencer {
	return &NoteHeadingSequencer{}
}

// Next advances level and returns its label. Deeper levels restart.
func (s *NoteHeadingSequencer) Next(level int) string {
	if level < 1 {
		level = 1
	}
	for len(s.counters) < level {
		s.counters = append(s.counters, 0)
	}
	s.counters[level-1]++
	s.counters = s.counters[:level]
	return label(level, s.counters[level-1])
}

// Reset clears every counter, ready for the next document
func (s *NoteHeadingSequencer) Reset() {
	s.counters = s.counters[:0]
}

func label(level, n int) string {
	switch level {
	case 1:
		return strconv.Itoa(n)
	case 2:
		return alpha(n)
	default:
		return roman(n)
	}
}

// alpha gives a..z then aa, ab
func alpha(n int) string {
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('a' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

var numerals = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

func roman(n int) string {
	var sb strings.Builder
	for _, r := range numerals {
		for n >= r.value {
			sb.WriteString(r.symbol)
			n -= r.value
		}
	}
	return sb.String()
}
