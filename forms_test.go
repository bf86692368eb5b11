package pegparse

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForms(t *testing.T) {
	// The classic precedence layering: a sum is products joined by + or -,
	// a product is atoms joined by * or /. Repetition instead of left
	// recursion keeps the grammar terminating.
	var sum, product, atom *Func

	atom = Inline("atom", func() interface{} {
		return Or(
			regexp.MustCompile(`[0-9]+`),
			[]interface{}{Token("("), sum, Token(")")},
		)
	})

	product = Def("product", func() interface{} {
		return []interface{}{atom, Maybe(Many(Label("op", []interface{}{Or("*", "/"), atom})))}
	})

	sum = Def("sum", func() interface{} {
		return []interface{}{product, Maybe(Many(Label("op", []interface{}{Or("+", "-"), product})))}
	})

	p, err := New(sum, WithWhitespace(regexp.MustCompile(`\s+`)))
	require.NoError(t, err)

	t.Run("builds a labeled tree", func(t *testing.T) {
		v, err := p.Parse("1+2")
		require.NoError(t, err)
		require.Equal(t, Labeled{Label: "sum", Value: []Node{
			Labeled{Label: "product", Value: []Node{"1"}},
			Labeled{Label: "op", Value: []Node{"+", Labeled{Label: "product", Value: []Node{"2"}}}},
		}}, v)
	})

	t.Run("precedence", func(t *testing.T) {
		tests := []struct {
			in  string
			val int
		}{
			{"1+2*3", 7},
			{"1 + 2 * 3 - 4", 3},
			{"8/2/2", 2},
			{"2*(3+4)", 14},
			{"((5))", 5},
		}

		for _, rt := range tests {
			v, err := p.Parse(rt.in)
			require.NoError(t, err, "parsing << %s >>", rt.in)
			require.Equal(t, rt.val, evalForm(t, v), "parsing << %s >>", rt.in)
		}
	})

	t.Run("reports an unclosed paren", func(t *testing.T) {
		_, err := p.Parse("2*(3+4")

		var se *SyntaxError
		require.ErrorAs(t, err, &se)
		require.Equal(t, 6, se.Pos)
		require.Contains(t, se.Expected, `")"`)
	})
}

func evalForm(t *testing.T, n Node) int {
	switch v := n.(type) {
	case string:
		i, err := strconv.Atoi(v)
		require.NoError(t, err)
		return i
	case Labeled:
		items := v.Value.([]Node)
		acc := evalForm(t, items[0])

		for _, item := range items[1:] {
			op := item.(Labeled).Value.([]Node)
			rhs := evalForm(t, op[1])

			switch op[0].(string) {
			case "+":
				acc += rhs
			case "-":
				acc -= rhs
			case "*":
				acc *= rhs
			case "/":
				acc /= rhs
			}
		}

		return acc
	default:
		t.Fatalf("unexpected node %#v", n)
		return 0
	}
}
