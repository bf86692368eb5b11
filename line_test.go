package pegparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositions(t *testing.T) {
	t.Run("maps byte offsets to line, column and text", func(t *testing.T) {
		s := state{input: "foo\nbar\n\nbaz", inputSize: 12}
		s.linePos = computeLines(s.input)

		r := assert.New(t)

		r.Equal([]int{0, 4, 8, 9}, s.linePos)

		tests := []struct {
			pos, line, column int
			text              string
		}{
			{0, 1, 0, "foo"},
			{3, 1, 3, "foo"},
			{6, 2, 2, "bar"},
			{8, 3, 0, ""},
			{10, 4, 1, "baz"},
			{12, 4, 3, "baz"},
		}

		for _, tt := range tests {
			r.Equal(tt.line, s.line(tt.pos), "line at %d", tt.pos)
			r.Equal(tt.column, s.column(tt.pos), "column at %d", tt.pos)
			r.Equal(tt.text, s.lineText(tt.pos), "text at %d", tt.pos)
		}

		r.Equal("a", s.runeAt(10))
		r.Equal("EOF", s.runeAt(12))
	})

	t.Run("reports positions of a syntax error on a later line", func(t *testing.T) {
		r := assert.New(t)

		p := MustNew(Seq("foo\n", "bar"))

		_, err := p.Parse("foo\nbaz")

		se, ok := err.(*SyntaxError)
		if r.True(ok) {
			r.Equal(2, se.Line)
			r.Equal(0, se.Offset)
			r.Equal("baz", se.Text)
		}
	})
}
