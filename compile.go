package pegparse

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// ErrNilRule is returned when a grammar contains a nil fragment.
var ErrNilRule = errors.New("nil is not a valid rule")

// CompileError is returned when a grammar fragment has a type the compiler
// does not understand.
type CompileError struct {
	Fragment interface{}
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid rule type %T: %v", e.Fragment, e.Fragment)
}

type exprKind int

const (
	seqExpr exprKind = iota
	orExpr
	maybeExpr
	manyExpr
	tokenExpr
	labelExpr
	raiseExpr
	notExpr
	checkExpr
	captureExpr
	eosExpr
)

// Expr is an uncompiled combinator. Exprs are created with the functions
// in this package, like Seq and Or, and are turned into Rules by a
// Compiler. An Expr may be compiled any number of times.
type Expr struct {
	kind  exprKind
	items []interface{}
	text  string
}

// Seq matches each of the given fragments in order. It only matches if
// every fragment matches. A []interface{} fragment means the same thing.
//
// The value of the match is the list of non-nil values of the fragments,
// with list values spliced in, or nil when there are none.
func Seq(items ...interface{}) *Expr {
	return &Expr{kind: seqExpr, items: items}
}

// Or tries each of the given fragments from the same position, completing
// when the first one matches. This corresponds with a PEG's "ordered
// choice" operation.
//
// The value of the match is the value of the fragment that matched.
func Or(alts ...interface{}) *Expr {
	return &Expr{kind: orExpr, items: alts}
}

// Maybe allows its fragment to match, but always succeeds. This corresponds
// with the question mark rule ("e?") in most PEGs.
//
// The value of the match is the value of the fragment, or nil.
func Maybe(rule interface{}) *Expr {
	return &Expr{kind: maybeExpr, items: []interface{}{rule}}
}

// Many matches its fragment one or more times.
//
// The value of the match is the list of non-nil values of each iteration.
func Many(rule interface{}) *Expr {
	return &Expr{kind: manyExpr, items: []interface{}{rule}}
}

// ManySep matches its fragment one or more times, requiring sep to match
// between iterations. A trailing separator is not consumed.
//
// The value of the match is the list of non-nil values of each iteration,
// with non-nil separator values kept in input order.
func ManySep(rule, sep interface{}) *Expr {
	return &Expr{kind: manyExpr, items: []interface{}{rule, sep}}
}

// Token matches its fragment and discards the value.
//
// The value of the match is nil.
func Token(rule interface{}) *Expr {
	return &Expr{kind: tokenExpr, items: []interface{}{rule}}
}

// Label matches its fragment and tags the value with name.
//
// The value of the match is Labeled{name, value}.
func Label(name string, rule interface{}) *Expr {
	return &Expr{kind: labelExpr, items: []interface{}{rule}, text: name}
}

// Raise never matches. Reaching it aborts the parse with a RaiseError
// carrying msg. It marks branches of a grammar that should be unreachable
// or that deserve a better error than the furthest failure.
func Raise(msg string) *Expr {
	return &Expr{kind: raiseExpr, text: msg}
}

// Not succeeds without consuming input only when its fragment fails. This
// corresponds with the not-predicate ("!e") in most PEGs.
//
// The value of the match is nil.
func Not(rule interface{}) *Expr {
	return &Expr{kind: notExpr, items: []interface{}{rule}}
}

// Check succeeds without consuming input only when its fragment matches.
// This corresponds with the and-predicate ("&e") in most PEGs.
//
// The value of the match is nil.
func Check(rule interface{}) *Expr {
	return &Expr{kind: checkExpr, items: []interface{}{rule}}
}

// Capture matches its fragment and pulls the matched input up as the value,
// discarding whatever value the fragment produced.
func Capture(rule interface{}) *Expr {
	return &Expr{kind: captureExpr, items: []interface{}{rule}}
}

// EOS only matches when the input has been exhausted.
func EOS() *Expr {
	return &Expr{kind: eosExpr}
}

// Func is a named grammar-producing function. Its body is called once per
// Compiler, the first time the Func is compiled, and may refer to other
// Funcs including itself. This is how recursive grammars are written:
//
//	var list *pegparse.Func
//	list = pegparse.Def("list", func() interface{} {
//		return []interface{}{"(", pegparse.Maybe(pegparse.Many(pegparse.Or(atom, list))), ")"}
//	})
//
// The body runs with the Compiler locked. It must not call methods of that
// same Compiler or pass it to New, which would deadlock. Other Compilers
// may be used freely.
type Func struct {
	name   string
	inline bool
	body   func() interface{}
}

// Def creates a Func whose match value is Labeled{name, value}.
func Def(name string, body func() interface{}) *Func {
	return &Func{name: name, body: body}
}

// Inline creates a Func whose match value is spliced in unlabeled.
func Inline(name string, body func() interface{}) *Func {
	return &Func{name: name, inline: true, body: body}
}

// Name returns the name of the function.
func (f *Func) Name() string {
	return f.name
}

type funcRule struct {
	fn      *Func
	rule    Rule
	leftRec bool
}

func (m *funcRule) match(s *state, pos int) (int, Node, bool) {
	if m.rule == nil {
		panic(fmt.Sprintf("unset function rule detected: %s", m.fn.name))
	}

	if s.memos != nil {
		if res, ok := s.memo(m, pos); ok {
			return res.end, res.value, res.matched
		}
	}

	if s.debug {
		rs := s.refStack
		s.refStack = append(s.refStack, m.fn.name)
		defer func() {
			s.refStack = rs
		}()
	}

	next, val, ok := s.match(m.rule, pos)

	if ok && !m.fn.inline {
		val = Labeled{Label: m.fn.name, Value: val}
	}

	if s.debug {
		s.trace(m, pos, next, ok)
	}

	if s.memos != nil {
		s.saveMemo(m, pos, memoResult{end: next, value: val, matched: ok})
	}

	return next, val, ok
}

func (m *funcRule) detectLeftRec(r Rule, rs ruleSet) bool {
	if m.rule == nil {
		return false
	}

	return m.rule == r || (rs.Add(m.rule) && m.rule.detectLeftRec(r, rs))
}

func (m *funcRule) print() string {
	return m.fn.name
}

// Compiler turns grammar fragments into Rules. It remembers every Func it
// has compiled, so a Func always compiles to the same Rule and recursive
// grammars terminate. A Compiler is safe for concurrent use, but is not
// reentrant: see Func.
type Compiler struct {
	log hclog.Logger

	mu      sync.Mutex
	funcs   map[*Func]*funcRule
	pending []*funcRule
}

// CompilerOption configures a Compiler.
type CompilerOption func(c *Compiler)

// WithCompilerLogger sets the logger used to report grammar problems.
func WithCompilerLogger(log hclog.Logger) CompilerOption {
	return func(c *Compiler) {
		c.log = log
	}
}

// NewCompiler creates an empty Compiler.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		log:   hclog.L(),
		funcs: make(map[*Func]*funcRule),
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// Compile turns a grammar fragment into a Rule. Fragments are:
//
//   - string: match the literal
//   - *regexp.Regexp: match the regexp at the current position
//   - []interface{}: same as Seq
//   - *Func: the function's grammar, compiled at most once per Compiler
//   - *Expr: a combinator such as Or or Many
//   - Rule: returned unchanged
func (c *Compiler) Compile(fragment interface{}) (Rule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.compile(fragment)

	pending := c.pending
	c.pending = nil

	if err != nil {
		for _, fr := range pending {
			delete(c.funcs, fr.fn)
		}
		return nil, err
	}

	for _, fr := range pending {
		if fr.detectLeftRec(fr, make(ruleSet)) {
			fr.leftRec = true
			c.log.Warn("left recursive rule, matching may not terminate", "rule", fr.fn.name)
		}
	}

	return r, nil
}

// MustCompile is like Compile but panics on error.
func (c *Compiler) MustCompile(fragment interface{}) Rule {
	r, err := c.Compile(fragment)
	if err != nil {
		panic(err)
	}
	return r
}

// LeftRecursive reports whether fn, as compiled by c, can reach itself
// without consuming input.
func (c *Compiler) LeftRecursive(fn *Func) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	fr, ok := c.funcs[fn]
	return ok && fr.leftRec
}

func (c *Compiler) compile(fragment interface{}) (Rule, error) {
	switch sv := fragment.(type) {
	case nil:
		return nil, ErrNilRule
	case string:
		return &stringRule{str: sv}, nil
	case *regexp.Regexp:
		if sv == nil {
			return nil, ErrNilRule
		}
		return newRegexRule(sv)
	case []interface{}:
		return c.compileExpr(Seq(sv...))
	case *Func:
		if sv == nil {
			return nil, ErrNilRule
		}
		return c.compileFunc(sv)
	case *Expr:
		if sv == nil {
			return nil, ErrNilRule
		}
		return c.compileExpr(sv)
	case Rule:
		return sv, nil
	default:
		return nil, &CompileError{Fragment: fragment}
	}
}

func (c *Compiler) compileFunc(fn *Func) (Rule, error) {
	if fr, ok := c.funcs[fn]; ok {
		return fr, nil
	}

	// The rule goes into the cache before the body is compiled so that
	// references back to fn resolve to this same rule.
	fr := &funcRule{fn: fn}
	c.funcs[fn] = fr

	r, err := c.compile(fn.body())
	if err != nil {
		delete(c.funcs, fn)
		return nil, fmt.Errorf("compiling %s: %w", fn.name, err)
	}

	fr.rule = r
	c.pending = append(c.pending, fr)

	return fr, nil
}

func (c *Compiler) compileAll(items []interface{}) ([]Rule, error) {
	rules := make([]Rule, 0, len(items))

	for _, item := range items {
		r, err := c.compile(item)
		if err != nil {
			return nil, err
		}

		rules = append(rules, r)
	}

	return rules, nil
}

func (c *Compiler) compileExpr(e *Expr) (Rule, error) {
	switch e.kind {
	case raiseExpr:
		return &raiseRule{msg: e.text}, nil
	case eosExpr:
		return &eosRule{}, nil
	case manyExpr:
		if len(e.items) == 2 {
			rule, err := c.compile(e.items[0])
			if err != nil {
				return nil, err
			}

			sep, err := c.compile(e.items[1])
			if err != nil {
				return nil, err
			}

			return &repeatRule{rule: rule, sep: sep}, nil
		}
	}

	rules, err := c.compileAll(e.items)
	if err != nil {
		return nil, err
	}

	switch e.kind {
	case seqExpr:
		return &seqRule{rules: rules}, nil
	case orExpr:
		return &choiceRule{rules: rules}, nil
	case maybeExpr:
		return &optionalRule{rule: rules[0]}, nil
	case manyExpr:
		return &repeatRule{rule: rules[0]}, nil
	case tokenExpr:
		return &tokenRule{rule: rules[0]}, nil
	case labelExpr:
		return &labelRule{label: e.text, rule: rules[0]}, nil
	case notExpr:
		return &notRule{rule: rules[0]}, nil
	case checkExpr:
		return &checkRule{rule: rules[0]}, nil
	case captureExpr:
		return &captureRule{rule: rules[0]}, nil
	default:
		panic(fmt.Sprintf("unknown expression kind %d", e.kind))
	}
}
