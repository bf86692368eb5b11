package pegparse

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// SyntaxError is returned by Parse when the input does not match the
// grammar, or matches only a prefix of it. The position is the furthest
// point any rule reached before failing.
type SyntaxError struct {
	// Pos is the byte offset into the input.
	Pos int
	// Line is 1-based, Offset is the 0-based byte offset within the line.
	Line, Offset int

	Expected []string
	Found    string
	Text     string

	// EndOfInput is set when the grammar matched a prefix of the input
	// and the parse stopped at the end of that prefix.
	EndOfInput bool
}

func (e *SyntaxError) Error() string {
	var expected string

	switch {
	case len(e.Expected) > 0:
		expected = strings.Join(e.Expected, " or ")
	case e.EndOfInput:
		expected = "end of input"
	default:
		return fmt.Sprintf("At line %d offset %d: Unexpected %q found: %q",
			e.Line, e.Offset, e.Found, e.Text)
	}

	return fmt.Sprintf("At line %d offset %d: Expected %s but %q found: %q",
		e.Line, e.Offset, expected, e.Found, e.Text)
}

// RaiseError is returned by Parse when matching reaches a Raise rule.
type RaiseError struct {
	Message string
	Pos     int
}

func (e *RaiseError) Error() string {
	return fmt.Sprintf("%s (at offset %d)", e.Message, e.Pos)
}

// Parser matches a compiled grammar against input text. A Parser holds
// no per-parse state and is safe for concurrent use.
type Parser struct {
	log      hclog.Logger
	compiler *Compiler

	root Rule
	ws   Rule

	wsFragment   interface{}
	stringTokens bool
	memo         bool
	debug        bool
}

type Option func(p *Parser)

// WithWhitespace sets the rule skipped before every rule is matched.
func WithWhitespace(fragment interface{}) Option {
	return func(p *Parser) {
		p.wsFragment = fragment
	}
}

// WithStringTokens makes literal string rules match without producing a
// value.
func WithStringTokens(on bool) Option {
	return func(p *Parser) {
		p.stringTokens = on
	}
}

// WithMemo turns on packrat memoization of function rules.
func WithMemo(on bool) Option {
	return func(p *Parser) {
		p.memo = on
	}
}

// WithDebug traces every function rule at Trace level on the parser's logger.
func WithDebug(on bool) Option {
	return func(p *Parser) {
		p.debug = on
	}
}

func WithLogger(log hclog.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

// WithCompiler compiles the grammar with c instead of a fresh Compiler,
// sharing its function cache.
func WithCompiler(c *Compiler) Option {
	return func(p *Parser) {
		p.compiler = c
	}
}

// New compiles root, and the whitespace rule if one was given, and returns
// a Parser for it.
func New(root interface{}, opts ...Option) (*Parser, error) {
	p := &Parser{
		log: hclog.L(),
	}

	for _, o := range opts {
		o(p)
	}

	if p.compiler == nil {
		p.compiler = NewCompiler(WithCompilerLogger(p.log))
	}

	r, err := p.compiler.Compile(root)
	if err != nil {
		return nil, fmt.Errorf("compiling grammar: %w", err)
	}

	p.root = r

	if p.wsFragment != nil {
		ws, err := p.compiler.Compile(p.wsFragment)
		if err != nil {
			return nil, fmt.Errorf("compiling whitespace rule: %w", err)
		}

		p.ws = ws
	}

	return p, nil
}

// MustNew is like New but panics if the grammar does not compile.
func MustNew(root interface{}, opts ...Option) *Parser {
	p, err := New(root, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse matches the whole input against the grammar and returns the
// resulting AST.
func (p *Parser) Parse(input string) (Node, error) {
	return p.ParseAt(input, 0)
}

// ParseAt is like Parse but starts matching at byte offset start.
func (p *Parser) ParseAt(input string, start int) (val Node, err error) {
	if start < 0 || start > len(input) {
		return nil, fmt.Errorf("start offset %d out of range", start)
	}

	s := newState(p, input)

	defer func() {
		if rv := recover(); rv != nil {
			re, ok := rv.(*RaiseError)
			if !ok {
				panic(rv)
			}

			val, err = nil, re
		}
	}()

	end, val, ok := s.match(p.root, start)
	if ok {
		if p.ws != nil {
			end = s.skipWhitespace(end)
		}

		if end == s.inputSize {
			return val, nil
		}

		if end >= s.maxPos {
			if end > s.maxPos {
				s.maxPos = end
				s.expected = nil
			}

			se := s.syntaxError(start)
			se.EndOfInput = true

			return nil, se
		}
	}

	return nil, s.syntaxError(start)
}

func (s *state) syntaxError(start int) *SyntaxError {
	pos := s.maxPos
	if pos < start {
		pos = start
	}

	s.linePos = computeLines(s.input)

	return &SyntaxError{
		Pos:      pos,
		Line:     s.line(pos),
		Offset:   s.column(pos),
		Expected: s.candidates(),
		Found:    s.runeAt(pos),
		Text:     s.lineText(pos),
	}
}

// Compiler returns the compiler the parser's grammar was compiled with.
func (p *Parser) Compiler() *Compiler {
	return p.compiler
}
