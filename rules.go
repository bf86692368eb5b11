package pegparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Node is a value produced by matching a Rule. It is one of nil (the rule
// matched but produced nothing), a string (matched text), a Labeled value,
// or a []Node.
type Node = interface{}

// Labeled is the value produced by a Def function rule or a Label rule.
type Labeled struct {
	Label string
	Value Node
}

func (l Labeled) String() string {
	return fmt.Sprintf("(%s %v)", l.Label, l.Value)
}

type ruleSet map[Rule]struct{}

func (rs ruleSet) Add(r Rule) bool {
	if _, ok := rs[r]; ok {
		return false
	}

	rs[r] = struct{}{}

	return true
}

// Rule is a compiled grammar primitive. Rules are produced by a Compiler
// from grammar fragments; the set of rule kinds is closed to this package.
type Rule interface {
	match(s *state, pos int) (int, Node, bool)
	detectLeftRec(r Rule, rs ruleSet) bool
	print() string
}

// These are the rules!

type stringRule struct {
	str string
}

func (m *stringRule) match(s *state, pos int) (int, Node, bool) {
	if !strings.HasPrefix(s.input[pos:], m.str) {
		return 0, nil, false
	}

	if s.p.stringTokens {
		return pos + len(m.str), nil, true
	}

	return pos + len(m.str), m.str, true
}

func (m *stringRule) detectLeftRec(r Rule, rs ruleSet) bool {
	return false
}

func (m *stringRule) print() string {
	return strconv.Quote(m.str)
}

// S returns a compiled Rule that matches a literal string exactly. It is
// equivalent to passing the string itself as a grammar fragment.
//
// The value of the match is the string, or nil when the parser treats
// strings as tokens.
func S(str string) Rule {
	return &stringRule{str: str}
}

type regexRule struct {
	re  *regexp.Regexp
	str string
}

func (m *regexRule) match(s *state, pos int) (int, Node, bool) {
	loc := m.re.FindStringIndex(s.input[pos:])
	if loc == nil {
		return 0, nil, false
	}

	return pos + loc[1], s.input[pos : pos+loc[1]], true
}

func (m *regexRule) detectLeftRec(r Rule, rs ruleSet) bool {
	return false
}

func (m *regexRule) print() string {
	return "/" + m.str + "/"
}

func newRegexRule(re *regexp.Regexp) (*regexRule, error) {
	anchored, err := regexp.Compile(`\A(?:` + re.String() + `)`)
	if err != nil {
		return nil, err
	}

	return &regexRule{re: anchored, str: re.String()}, nil
}

// Re returns a Rule that will match a regexp at the current input
// position. This regexp can only match at the beginning of the input,
// it does not search the input for a match. Re panics if the pattern
// does not compile.
//
// The value of the match is the matched text.
func Re(pattern string) Rule {
	r, err := newRegexRule(regexp.MustCompile(pattern))
	if err != nil {
		panic(err)
	}
	return r
}

type seqRule struct {
	rules []Rule
}

func (m *seqRule) match(s *state, pos int) (int, Node, bool) {
	var values []Node

	for _, r := range m.rules {
		next, val, ok := s.match(r, pos)
		if !ok {
			return 0, nil, false
		}

		pos = next

		switch sv := val.(type) {
		case nil:
		case []Node:
			values = append(values, sv...)
		default:
			values = append(values, sv)
		}
	}

	if len(values) == 0 {
		return pos, nil, true
	}

	return pos, values, true
}

func (m *seqRule) detectLeftRec(r Rule, rs ruleSet) bool {
	for _, sub := range m.rules {
		if sub == r {
			return true
		}

		if rs.Add(sub) && sub.detectLeftRec(r, rs) {
			return true
		}

		if !zeroWidth(sub) {
			return false
		}
	}

	return false
}

func (m *seqRule) print() string {
	var subs []string

	for _, r := range m.rules {
		subs = append(subs, addParens(r))
	}
	return strings.Join(subs, " ")
}

type choiceRule struct {
	rules []Rule
}

func (m *choiceRule) match(s *state, pos int) (int, Node, bool) {
	for _, r := range m.rules {
		next, val, ok := s.match(r, pos)
		if ok {
			return next, val, true
		}
	}

	return 0, nil, false
}

func (m *choiceRule) detectLeftRec(r Rule, rs ruleSet) bool {
	for _, sub := range m.rules {
		if r == sub {
			return true
		}

		if rs.Add(sub) && sub.detectLeftRec(r, rs) {
			return true
		}
	}

	return false
}

func (m *choiceRule) print() string {
	var subs []string

	for _, r := range m.rules {
		subs = append(subs, addParens(r))
	}
	return strings.Join(subs, " | ")
}

type optionalRule struct {
	rule Rule
}

func (m *optionalRule) match(s *state, pos int) (int, Node, bool) {
	next, val, ok := s.match(m.rule, pos)
	if !ok {
		return pos, nil, true
	}

	return next, val, true
}

func (m *optionalRule) detectLeftRec(r Rule, rs ruleSet) bool {
	return m.rule == r || (rs.Add(m.rule) && m.rule.detectLeftRec(r, rs))
}

func (m *optionalRule) print() string {
	return addParens(m.rule) + "?"
}

type repeatRule struct {
	rule Rule
	sep  Rule
}

func (m *repeatRule) match(s *state, pos int) (int, Node, bool) {
	var values []Node

	for {
		at := pos

		var sepVal Node

		if len(values) > 0 && m.sep != nil {
			next, val, ok := s.match(m.sep, at)
			if !ok {
				break
			}

			at, sepVal = next, val
		}

		next, val, ok := s.match(m.rule, at)
		if !ok {
			break
		}

		// A zero-width item would repeat forever, so only the first one
		// counts.
		if next == pos && values != nil {
			break
		}

		if sepVal != nil {
			values = append(values, sepVal)
		}

		values = append(values, val)

		if next == pos {
			break
		}

		pos = next
	}

	if values == nil {
		return 0, nil, false
	}

	return pos, values, true
}

func (m *repeatRule) detectLeftRec(r Rule, rs ruleSet) bool {
	return m.rule == r || (rs.Add(m.rule) && m.rule.detectLeftRec(r, rs))
}

func (m *repeatRule) print() string {
	if m.sep == nil {
		return addParens(m.rule) + "+"
	}

	return fmt.Sprintf("%s (%s %s)*", addParens(m.rule), addParens(m.sep), addParens(m.rule))
}

type tokenRule struct {
	rule Rule
}

func (m *tokenRule) match(s *state, pos int) (int, Node, bool) {
	next, _, ok := s.match(m.rule, pos)
	if !ok {
		return 0, nil, false
	}

	return next, nil, true
}

func (m *tokenRule) detectLeftRec(r Rule, rs ruleSet) bool {
	return m.rule == r || (rs.Add(m.rule) && m.rule.detectLeftRec(r, rs))
}

func (m *tokenRule) print() string {
	return "~" + addParens(m.rule)
}

type labelRule struct {
	label string
	rule  Rule
}

func (m *labelRule) match(s *state, pos int) (int, Node, bool) {
	next, val, ok := s.match(m.rule, pos)
	if !ok {
		return 0, nil, false
	}

	return next, Labeled{Label: m.label, Value: val}, true
}

func (m *labelRule) detectLeftRec(r Rule, rs ruleSet) bool {
	return m.rule == r || (rs.Add(m.rule) && m.rule.detectLeftRec(r, rs))
}

func (m *labelRule) print() string {
	return fmt.Sprintf("%s:%s", addParens(m.rule), m.label)
}

type raiseRule struct {
	msg string
}

func (m *raiseRule) match(s *state, pos int) (int, Node, bool) {
	panic(&RaiseError{Message: m.msg, Pos: pos})
}

func (m *raiseRule) detectLeftRec(r Rule, rs ruleSet) bool {
	return false
}

func (m *raiseRule) print() string {
	return fmt.Sprintf("raise(%q)", m.msg)
}

type notRule struct {
	rule Rule
}

func (m *notRule) match(s *state, pos int) (int, Node, bool) {
	if _, _, ok := s.match(m.rule, pos); ok {
		return 0, nil, false
	}

	return pos, nil, true
}

func (m *notRule) detectLeftRec(r Rule, rs ruleSet) bool {
	return m.rule == r || (rs.Add(m.rule) && m.rule.detectLeftRec(r, rs))
}

func (m *notRule) print() string {
	return "!" + addParens(m.rule)
}

type checkRule struct {
	rule Rule
}

func (m *checkRule) match(s *state, pos int) (int, Node, bool) {
	if _, _, ok := s.match(m.rule, pos); !ok {
		return 0, nil, false
	}

	return pos, nil, true
}

func (m *checkRule) detectLeftRec(r Rule, rs ruleSet) bool {
	return m.rule == r || (rs.Add(m.rule) && m.rule.detectLeftRec(r, rs))
}

func (m *checkRule) print() string {
	return "&" + addParens(m.rule)
}

type captureRule struct {
	rule Rule
}

func (m *captureRule) match(s *state, pos int) (int, Node, bool) {
	next, _, ok := s.match(m.rule, pos)
	if !ok {
		return 0, nil, false
	}

	return next, s.input[pos:next], true
}

func (m *captureRule) detectLeftRec(r Rule, rs ruleSet) bool {
	return m.rule == r || (rs.Add(m.rule) && m.rule.detectLeftRec(r, rs))
}

func (m *captureRule) print() string {
	return fmt.Sprintf("< %s >", Print(m.rule))
}

type eosRule struct{}

func (m *eosRule) match(s *state, pos int) (int, Node, bool) {
	return pos, nil, pos >= s.inputSize
}

func (m *eosRule) detectLeftRec(Rule, ruleSet) bool {
	return false
}

func (m *eosRule) print() string {
	return "EOF"
}

// That's all the rules!

// zeroWidth reports whether r can succeed without consuming input, as far
// as left recursion detection is concerned.
func zeroWidth(r Rule) bool {
	switch sr := r.(type) {
	case *optionalRule, *notRule, *checkRule, *eosRule:
		return true
	case *tokenRule:
		return zeroWidth(sr.rule)
	case *labelRule:
		return zeroWidth(sr.rule)
	case *captureRule:
		return zeroWidth(sr.rule)
	default:
		return false
	}
}

func addParens(r Rule) string {
	switch r.(type) {
	case *choiceRule, *seqRule, *repeatRule:
		return "(" + Print(r) + ")"
	default:
		return Print(r)
	}
}

// Print outputs a description of the rule's operations. Function rules are
// printed by name.
func Print(r Rule) string {
	return r.print()
}
