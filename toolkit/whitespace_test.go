package toolkit

import (
	"testing"

	"github.com/lab47/pegparse"
	"github.com/stretchr/testify/require"
)

func TestWhitespace(t *testing.T) {
	t.Run("matches unicode's definition of whitespace", func(t *testing.T) {
		p, err := pegparse.New(Blank)
		require.NoError(t, err)

		_, err = p.Parse(" \t\n\v ")
		require.NoError(t, err)
	})

	t.Run("skips comments between tokens", func(t *testing.T) {
		r := require.New(t)

		p, err := pegparse.New(
			[]interface{}{"a", "b", "c", "d"},
			pegparse.WithWhitespace(Whitespace),
		)
		r.NoError(err)

		val, err := p.Parse("a // one\nb # two\n /* three\n four */ c/**/d  ")
		r.NoError(err)
		r.Equal([]pegparse.Node{"a", "b", "c", "d"}, val)
	})

	t.Run("does not treat a lone slash as a comment", func(t *testing.T) {
		p, err := pegparse.New([]interface{}{"a", "b"}, pegparse.WithWhitespace(Whitespace))
		require.NoError(t, err)

		_, err = p.Parse("a / b")
		require.Error(t, err)
	})
}
