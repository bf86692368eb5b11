package emitter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lab47/pegparse"
	"golang.org/x/exp/slices"
)

var (
	// ErrDuplicateHole is returned when a template declares the same hole
	// twice.
	ErrDuplicateHole = errors.New("duplicate hole")

	// ErrUnbalanced is returned when a $#NAME( gate has no closing paren.
	ErrUnbalanced = errors.New("unbalanced parentheses in conditional")

	// ErrNestedHole is returned when the body of a $#NAME(...) gate declares
	// a hole.
	ErrNestedHole = errors.New("holes are not allowed in a conditional body")
)

// markerKind describes which marker form produced a lookup.
type markerKind int

const (
	plainMarker markerKind = iota
	holeMarker
	optMarker
	gateMarker
)

// lookup is a reference to a name that is resolved when the output is
// flattened.
type lookup struct {
	name string
	kind markerKind

	// fallback is emitted when the name is unbound or names a hole that was
	// never filled.
	fallback string

	// sub and raw are only set for gates. raw is the text of the whole
	// gate, emitted as-is when the gate's name is missing.
	sub *Template
	raw string
}

// Template is a compiled template: literal text interleaved with lookups.
// Templates are immutable and may be shared.
type Template struct {
	src   string
	items []interface{}
	holes []string
}

// Source returns the text the template was compiled from.
func (t *Template) Source() string {
	return t.src
}

// Holes returns the names of the holes the template declares, in the
// order they appear.
func (t *Template) Holes() []string {
	return slices.Clone(t.holes)
}

var markerParser = pegparse.MustNew(markerGrammar())

func markerGrammar() interface{} {
	name := regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

	var balanced *pegparse.Func
	balanced = pegparse.Inline("balanced", func() interface{} {
		return pegparse.Maybe(pegparse.Many(pegparse.Or(
			regexp.MustCompile(`[^()]+`),
			[]interface{}{"(", balanced, ")"},
		)))
	})

	gate := pegparse.Label("cond", pegparse.Seq(
		pegparse.Token("$#"), name, pegparse.Token("("),
		pegparse.Capture(balanced),
		pegparse.Or(pegparse.Token(")"), pegparse.Raise("unterminated conditional")),
	))

	piece := pegparse.Or(
		gate,
		pegparse.Label("hole()", pegparse.Seq(pegparse.Token("$(!"), name, pegparse.Token(")"))),
		pegparse.Label("opt()", pegparse.Seq(pegparse.Token("$(?"), name, pegparse.Token(")"))),
		pegparse.Label("plain()", pegparse.Seq(pegparse.Token("$("), name, pegparse.Token(")"))),
		pegparse.Label("hole", pegparse.Seq(pegparse.Token("$!"), name)),
		pegparse.Label("opt", pegparse.Seq(pegparse.Token("$?"), name)),
		pegparse.Label("plain", pegparse.Seq(pegparse.Token("$"), name)),
		regexp.MustCompile(`[^$]+`),
		"$",
	)

	return pegparse.Seq(pegparse.Maybe(pegparse.Many(piece)), pegparse.EOS())
}

// Compile parses a template. The recognized markers are:
//
//	$NAME $(NAME)      substitute NAME, or the marker itself if unbound
//	$!NAME $(!NAME)    declare a hole named NAME
//	$?NAME $(?NAME)    declare a hole that is empty when never filled
//	$#NAME(...)        include the body only when NAME is true
//
// Any other $ is literal text.
func Compile(src string) (*Template, error) {
	node, err := markerParser.Parse(src)
	if err != nil {
		var re *pegparse.RaiseError
		if errors.As(err, &re) {
			return nil, fmt.Errorf("%w at offset %d", ErrUnbalanced, re.Pos)
		}

		return nil, err
	}

	t := &Template{src: src}

	pieces, _ := node.([]pegparse.Node)

	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			t.items = append(t.items, text.String())
			text.Reset()
		}
	}

	for _, piece := range pieces {
		switch v := piece.(type) {
		case string:
			text.WriteString(v)
		case pegparse.Labeled:
			l, err := newLookup(v)
			if err != nil {
				return nil, err
			}

			if l.kind == holeMarker || l.kind == optMarker {
				if slices.Contains(t.holes, l.name) {
					return nil, fmt.Errorf("%w: %s", ErrDuplicateHole, l.name)
				}

				t.holes = append(t.holes, l.name)
			}

			flush()
			t.items = append(t.items, l)
		}
	}

	flush()

	return t, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Template {
	t, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return t
}

func newLookup(v pegparse.Labeled) (*lookup, error) {
	parts := v.Value.([]pegparse.Node)
	name := parts[0].(string)

	switch v.Label {
	case "plain":
		return &lookup{name: name, kind: plainMarker, fallback: "$" + name}, nil
	case "plain()":
		return &lookup{name: name, kind: plainMarker, fallback: "$(" + name + ")"}, nil
	case "hole":
		return &lookup{name: name, kind: holeMarker, fallback: "$!" + name}, nil
	case "hole()":
		return &lookup{name: name, kind: holeMarker, fallback: "$(!" + name + ")"}, nil
	case "opt", "opt()":
		return &lookup{name: name, kind: optMarker}, nil
	case "cond":
		body := parts[1].(string)

		sub, err := Compile(body)
		if err != nil {
			return nil, fmt.Errorf("conditional %s: %w", name, err)
		}

		if len(sub.holes) > 0 {
			return nil, fmt.Errorf("%w: %s declares %s", ErrNestedHole, name, strings.Join(sub.holes, ", "))
		}

		return &lookup{
			name: name,
			kind: gateMarker,
			sub:  sub,
			raw:  "$#" + name + "(" + body + ")",
		}, nil
	default:
		return nil, fmt.Errorf("unknown marker %s", v.Label)
	}
}
