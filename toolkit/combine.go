package toolkit

import (
	"regexp"

	"github.com/lab47/pegparse"
)

// After returns a function that when called, returns a new rule
// that will match the rule passed to the function, then the
// rule passed to After, discarding the latter's value.
// For example:
//
//	semi := After(";")
//	stmt := semi(Ident)
//
// The rule stmt will match an identifier followed by a semicolon.
func After(after interface{}) func(r interface{}) *pegparse.Expr {
	return func(r interface{}) *pegparse.Expr {
		return pegparse.Seq(r, pegparse.Token(after))
	}
}

// List matches one or more of rule separated by sep. The separators are
// dropped from the value.
func List(rule, sep interface{}) *pegparse.Expr {
	return pegparse.ManySep(rule, pegparse.Token(sep))
}

// Wrapped matches rule between open and close, keeping only rule's value.
func Wrapped(open, rule, close interface{}) *pegparse.Expr {
	return pegparse.Seq(pegparse.Token(open), rule, pegparse.Token(close))
}

// Keyword matches word only when it is not the prefix of a longer
// identifier. The value is nil.
func Keyword(word string) *pegparse.Expr {
	return pegparse.Token(regexp.MustCompile(regexp.QuoteMeta(word) + `\b`))
}

// Get returns the value of the first child of n labeled label, or nil.
// n is a Labeled node whose value is a list, as produced by a Def.
func Get(n pegparse.Node, label string) pegparse.Node {
	for _, c := range Children(n, label) {
		return c.Value
	}

	return nil
}

// Has reports whether n has a child labeled label.
func Has(n pegparse.Node, label string) bool {
	return len(Children(n, label)) > 0
}

// Children returns the children of n labeled label, in order.
func Children(n pegparse.Node, label string) []pegparse.Labeled {
	var items []pegparse.Node

	switch v := n.(type) {
	case pegparse.Labeled:
		switch iv := v.Value.(type) {
		case []pegparse.Node:
			items = iv
		case pegparse.Labeled:
			items = []pegparse.Node{iv}
		}
	case []pegparse.Node:
		items = v
	}

	var out []pegparse.Labeled

	for _, item := range items {
		if l, ok := item.(pegparse.Labeled); ok && l.Label == label {
			out = append(out, l)
		}
	}

	return out
}
