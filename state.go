package pegparse

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/slices"
)

// state is the per-parse mutable record. A new one is made for every call
// to Parse so Parsers can be shared.
type state struct {
	p         *Parser
	input     string
	inputSize int

	// wsMode is set while the whitespace rule is being matched so that
	// it doesn't try to skip whitespace before itself.
	wsMode bool

	maxPos   int
	expected []string

	memos   map[memoKey]memoResult
	linePos []int

	debug    bool
	refStack []string
}

func newState(p *Parser, input string) *state {
	s := &state{
		p:         p,
		input:     input,
		inputSize: len(input),
		maxPos:    -1,
		debug:     p.debug,
	}

	if p.memo {
		s.memos = make(map[memoKey]memoResult)
	}

	return s
}

// match is the shared pre/post logic wrapped around every rule: skip
// whitespace, run the rule, remember the furthest failure.
func (s *state) match(r Rule, pos int) (int, Node, bool) {
	if !s.wsMode && s.p.ws != nil {
		pos = s.skipWhitespace(pos)
	}

	next, val, ok := r.match(s, pos)
	if !ok && !s.wsMode {
		s.fail(r, pos)
	}

	return next, val, ok
}

func (s *state) skipWhitespace(pos int) int {
	s.wsMode = true

	for pos < s.inputSize {
		next, _, ok := s.match(s.p.ws, pos)
		if !ok || next <= pos {
			break
		}

		pos = next
	}

	s.wsMode = false

	return pos
}

func (s *state) fail(r Rule, pos int) {
	if pos < s.maxPos {
		return
	}

	if pos > s.maxPos {
		s.maxPos = pos
		s.expected = s.expected[:0]
	}

	switch r.(type) {
	case *stringRule, *regexRule, *eosRule, *notRule:
		s.expected = append(s.expected, r.print())
	}
}

// candidates returns the de-duplicated descriptions of the rules that
// failed at the furthest position, in a stable order.
func (s *state) candidates() []string {
	exp := slices.Clone(s.expected)
	slices.Sort(exp)
	return slices.Compact(exp)
}

func computeLines(input string) []int {
	lines := []int{0}

	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			lines = append(lines, i+1)
		}
	}

	return lines
}

// line returns the 1-based line number that contains pos.
func (s *state) line(pos int) int {
	return sort.Search(len(s.linePos), func(i int) bool {
		return s.linePos[i] > pos
	})
}

// column returns the 0-based byte offset of pos within its line.
func (s *state) column(pos int) int {
	return pos - s.linePos[s.line(pos)-1]
}

// lineText returns the text of the line containing pos, without the
// newline.
func (s *state) lineText(pos int) string {
	start := s.linePos[s.line(pos)-1]

	end := strings.IndexByte(s.input[start:], '\n')
	if end == -1 {
		return s.input[start:]
	}

	return s.input[start : start+end]
}

func (s *state) runeAt(pos int) string {
	if pos >= s.inputSize {
		return "EOF"
	}

	_, sz := utf8.DecodeRuneInString(s.input[pos:])
	return s.input[pos : pos+sz]
}
