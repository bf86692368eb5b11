package pegparse

import "strings"

// Packrat memoization of function rules. Results only depend on the
// rule, the position and whether whitespace is being skipped, so a cached
// result is indistinguishable from re-running the rule. Failures seen the
// first time were already folded into the furthest-failure record.

type memoKey struct {
	rule   *funcRule
	pos    int
	wsMode bool
}

type memoResult struct {
	end     int
	value   Node
	matched bool
}

func (s *state) memo(r *funcRule, pos int) (memoResult, bool) {
	res, ok := s.memos[memoKey{rule: r, pos: pos, wsMode: s.wsMode}]
	return res, ok
}

func (s *state) saveMemo(r *funcRule, pos int, res memoResult) {
	s.memos[memoKey{rule: r, pos: pos, wsMode: s.wsMode}] = res
}

func (s *state) trace(r *funcRule, pos, end int, matched bool) {
	stack := strings.Join(s.refStack, ", ")

	if matched {
		s.p.log.Trace("rule matched", "rule", r.fn.name, "pos", pos, "end", end, "stack", stack)
	} else {
		s.p.log.Trace("rule failed", "rule", r.fn.name, "pos", pos, "stack", stack)
	}
}
