package toolkit

import (
	"regexp"

	p "github.com/lab47/pegparse"
)

// Ident matches an identifier.
var Ident = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// TypeName matches a type reference: an identifier, optionally marked as
// an array with [] and as nullable with ?.
var TypeName = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*(?:\[\])?\??`)

// IDL returns a grammar for a compact interface definition language:
//
//	// comments
//	interface Point : Shape {
//	  const long DIMS = 2;
//	  readonly attribute double x;
//	  attribute string name;
//	  double distance(Point other, boolean squared);
//	};
//
// The grammar expects string tokens and the Whitespace rule. Every
// interface is a Labeled "Interface" node whose children are labeled
// "name", "extends", "Const", "Attribute" and "Operation".
func IDL() interface{} {
	argument := p.Def("Argument", func() interface{} {
		return []interface{}{p.Label("type", TypeName), p.Label("name", Ident)}
	})

	constant := p.Def("Const", func() interface{} {
		return []interface{}{
			Keyword("const"),
			p.Label("type", TypeName),
			p.Label("name", Ident),
			"=",
			p.Label("value", p.Or(Number, String, Ident)),
			";",
		}
	})

	attribute := p.Def("Attribute", func() interface{} {
		return []interface{}{
			p.Maybe(p.Label("readonly", Keyword("readonly"))),
			Keyword("attribute"),
			p.Label("type", TypeName),
			p.Label("name", Ident),
			";",
		}
	})

	operation := p.Def("Operation", func() interface{} {
		return []interface{}{
			p.Label("type", TypeName),
			p.Label("name", Ident),
			"(",
			p.Maybe(p.Label("args", List(argument, ","))),
			")",
			";",
		}
	})

	member := p.Or(
		constant, attribute, operation,
		p.Seq(p.Not("}"), p.Raise("expected a constant, attribute or operation")),
	)

	iface := p.Def("Interface", func() interface{} {
		return []interface{}{
			Keyword("interface"),
			p.Label("name", Ident),
			p.Maybe([]interface{}{":", p.Label("extends", Ident)}),
			"{",
			p.Maybe(p.Many(member)),
			"}",
			p.Maybe(";"),
		}
	})

	return p.Seq(p.Maybe(p.Many(iface)), p.EOS())
}

// NewIDLParser returns a parser for the IDL grammar. opts are applied
// after the whitespace and string token settings the grammar needs.
func NewIDLParser(opts ...p.Option) (*p.Parser, error) {
	base := []p.Option{p.WithWhitespace(Whitespace), p.WithStringTokens(true)}
	return p.New(IDL(), append(base, opts...)...)
}

var idlParser = mustIDLParser()

func mustIDLParser() *p.Parser {
	parser, err := NewIDLParser()
	if err != nil {
		panic(err)
	}
	return parser
}

// ParseIDL parses interface definitions. The result is a list of
// Interface nodes, or nil for an input with none.
func ParseIDL(src string) (p.Node, error) {
	return idlParser.Parse(src)
}
