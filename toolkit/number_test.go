package toolkit

import (
	"math"
	"math/big"
	"testing"

	"github.com/lab47/pegparse"
	"github.com/stretchr/testify/require"
)

func TestNumbers(t *testing.T) {
	p := pegparse.MustNew(Number)

	parseInt := func(t *testing.T, in string) int {
		val, err := p.Parse(in)
		require.NoError(t, err, "parsing << %s >>", in)

		i, err := ParseInt(val)
		require.NoError(t, err, "parsing << %s >>", in)

		return i
	}

	parseFloat := func(t *testing.T, in string) float64 {
		val, err := p.Parse(in)
		require.NoError(t, err, "parsing << %s >>", in)

		f, err := ParseFloat(val)
		require.NoError(t, err, "parsing << %s >>", in)

		return f
	}

	t.Run("matches a base 10 string", func(t *testing.T) {
		require.Equal(t, 10, parseInt(t, "10"))
		require.Equal(t, 0, parseInt(t, "0"))
	})

	t.Run("matches a base 16 string", func(t *testing.T) {
		tests := []struct {
			in  string
			val int
		}{
			{"0x10", 0x10},
			{"0xaf", 0xaf},
			{"0xAD", 0xAD},
			{"0x1aD", 0x1aD},
		}

		for _, rt := range tests {
			require.Equal(t, rt.val, parseInt(t, rt.in))
		}
	})

	t.Run("matches a base 8 string", func(t *testing.T) {
		tests := []struct {
			in  string
			val int
		}{
			{"0644", 0644},
			{"0100", 0100},
			{"0o644", 0644},
		}

		for _, rt := range tests {
			require.Equal(t, rt.val, parseInt(t, rt.in))
		}
	})

	t.Run("matches a base 2 string", func(t *testing.T) {
		tests := []struct {
			in  string
			val int
		}{
			{"0b1", 1},
			{"0b0", 0},
			{"0b11", 3},
			{"0b0011", 3},
			{"0b101", 5},
		}

		for _, rt := range tests {
			require.Equal(t, rt.val, parseInt(t, rt.in))
		}
	})

	t.Run("matches a minus before a number", func(t *testing.T) {
		tests := []struct {
			in  string
			val int
		}{
			{"-1", -1},
			{"-0b1", -1},
			{"-0x1", -1},
			{"-01", -1},
			{"-0o1", -1},
			{"+7", 7},
		}

		for _, rt := range tests {
			require.Equal(t, rt.val, parseInt(t, rt.in))
		}
	})

	t.Run("allows underscores in numbers", func(t *testing.T) {
		tests := []struct {
			in  string
			val int
		}{
			{"1_0", 10},
			{"0xabc_def", 0xabcdef},
			{"1_000_000", 1000000},
		}

		for _, rt := range tests {
			require.Equal(t, rt.val, parseInt(t, rt.in))
		}
	})

	t.Run("requires a number before an underscores", func(t *testing.T) {
		for _, in := range []string{"_1_0", "0x_abc_def", "_1_000_000", "1__0"} {
			_, err := p.Parse(in)
			require.Error(t, err, "parsing << %s >>", in)
		}
	})

	t.Run("parses a rational number using a decimal", func(t *testing.T) {
		tests := []struct {
			in  string
			val float64
		}{
			{"1.0", 1.0},
			{"3.14", 3.14},
			{"100.1", 100.1},
			{"-100.1", -100.1},
		}

		for _, rt := range tests {
			require.Equal(t, rt.val, parseFloat(t, rt.in), "parsing << %s >>", rt.in)
		}
	})

	t.Run("parses a scientific notation float", func(t *testing.T) {
		tests := []struct {
			in  string
			val float64
		}{
			{"1e1", 1e1},
			{"3.14e19", 3.14e19},
			{"1e-9", 1e-9},
		}

		for _, rt := range tests {
			require.Equal(t, rt.val, parseFloat(t, rt.in), "parsing << %s >>", rt.in)
		}
	})

	t.Run("parses hexadecimal floating points", func(t *testing.T) {
		tests := []struct {
			in  string
			val float64
		}{
			{"0x1.921fb54442d18p1", math.Pi},
			{"0x12.p7", 0x12.p7},
		}

		for _, rt := range tests {
			require.Equal(t, rt.val, parseFloat(t, rt.in), "parsing << %s >>", rt.in)
		}
	})

	t.Run("converts integers to floats", func(t *testing.T) {
		require.Equal(t, 255.0, parseFloat(t, "0xff"))
	})

	t.Run("refuses to truncate floats", func(t *testing.T) {
		val, err := p.Parse("1.5")
		require.NoError(t, err)

		_, err = ParseInt(val)
		require.Error(t, err)
	})

	t.Run("reports integers that overflow an int", func(t *testing.T) {
		val, err := p.Parse("0xffff_ffff_ffff_ffff_ff")
		require.NoError(t, err)

		_, err = ParseInt(val)
		require.ErrorIs(t, err, ErrRangeError)

		nv, err := ParseNumber(val)
		require.NoError(t, err)

		b, err := nv.AsBig()
		require.NoError(t, err)

		bi, ok := b.(*big.Int)
		require.True(t, ok)
		require.Equal(t, "ffffffffffffffffff", bi.Text(16))
	})

	t.Run("rejects values of other rules", func(t *testing.T) {
		_, err := ParseNumber("12")
		require.Error(t, err)

		_, err = ParseNumber(pegparse.Labeled{Label: "name", Value: "x"})
		require.Error(t, err)
	})
}
