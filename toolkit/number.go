package toolkit

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/lab47/pegparse"
)

// NumberValue is a number read from the input. Str holds the digits with
// the base prefix kept and underscores removed, in the form accepted by
// strconv with base 0.
type NumberValue struct {
	Kind     string
	Base     int
	Str      string
	Negative bool
}

// Float reports whether the number has a fraction or an exponent.
func (n *NumberValue) Float() bool {
	return n.Kind == "float" || n.Kind == "hex-float"
}

var ErrRangeError = errors.New("range error")

// AsBig returns either a big.Int or a big.Float, depending on
// the kind of number that was parsed.
func (n *NumberValue) AsBig() (interface{}, error) {
	if !n.Float() {
		return n.AsBigInt()
	}

	f, _, err := big.ParseFloat(n.Str, 0, 53, big.ToNearestEven)
	if err != nil {
		return nil, err
	}

	if n.Negative {
		f.Neg(f)
	}

	return f, nil
}

// AsBigInt returns a big.Int representation of the number.
// big.Int can integers of infinite bit length.
func (n *NumberValue) AsBigInt() (*big.Int, error) {
	if n.Float() {
		return nil, fmt.Errorf("%s is not an integer", n.Str)
	}

	bi, ok := new(big.Int).SetString(n.Str, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", n.Str)
	}

	if n.Negative {
		bi.Neg(bi)
	}

	return bi, nil
}

// AsInt returns the number value as a Go int.
func (n *NumberValue) AsInt() (int, error) {
	bi, err := n.AsBigInt()
	if err != nil {
		return 0, err
	}

	if !bi.IsInt64() {
		return 0, ErrRangeError
	}

	return int(bi.Int64()), nil
}

// AsFloat64 returns the number value as a Go float64.
func (n *NumberValue) AsFloat64() (float64, error) {
	if !n.Float() {
		bi, err := n.AsBigInt()
		if err != nil {
			return 0, err
		}

		f, _ := new(big.Float).SetInt(bi).Float64()
		return f, nil
	}

	f, err := strconv.ParseFloat(n.Str, 64)
	if err != nil {
		return 0, err
	}

	if n.Negative {
		f = -f
	}

	return f, nil
}

var (
	// HexInt matches a hexadecimal integer, such as 0x1d.
	HexInt = pegparse.Label("hex-int", regexp.MustCompile(`[-+]?0[xX][0-9a-fA-F]+(?:_[0-9a-fA-F]+)*`))

	// BinaryInt matches a base 2 (ie binary) number, such as 0b1101.
	BinaryInt = pegparse.Label("binary-int", regexp.MustCompile(`[-+]?0[bB][01]+(?:_[01]+)*`))

	// OctalInt matches a base 8 (ie octal) number, such as 0644 and 0o644.
	OctalInt = pegparse.Label("octal-int", regexp.MustCompile(`[-+]?0[oO]?[0-7]+(?:_[0-7]+)*`))

	// DecimalInt matches a base 10 (ie decimal) number, such as 42.
	DecimalInt = pegparse.Label("decimal-int", regexp.MustCompile(`[-+]?[0-9]+(?:_[0-9]+)*`))

	// Int matches signed and unsigned base 2, base 8, base 10, and base 16 numbers.
	Int = pegparse.Or(HexInt, BinaryInt, OctalInt, DecimalInt)

	// DecimalFloat matches a floating point number, such as 1.42, -3.14 or
	// 1e-9.
	DecimalFloat = pegparse.Label("float", regexp.MustCompile(
		`[-+]?[0-9]+(?:_[0-9]+)*(?:\.[0-9]+(?:_[0-9]+)*(?:[eE][-+]?[0-9]+)?|[eE][-+]?[0-9]+)`))

	// HexFloat matches a hex floating point number, such as 0x123.fffp5.
	HexFloat = pegparse.Label("hex-float", regexp.MustCompile(`[-+]?0[xX][0-9a-fA-F]+\.[0-9a-fA-F]*[pP][-+]?[0-9]+`))

	// Float matches decimal and hexadecimal floating point numbers.
	Float = pegparse.Or(HexFloat, DecimalFloat)

	// Number matches any number Float or Int does.
	Number = pegparse.Or(Float, Int)
)

var numberBases = map[string]int{
	"hex-int":     16,
	"binary-int":  2,
	"octal-int":   8,
	"decimal-int": 10,
	"float":       10,
	"hex-float":   16,
}

// ParseNumber converts the value of a number rule to a NumberValue.
func ParseNumber(n pegparse.Node) (*NumberValue, error) {
	l, ok := n.(pegparse.Labeled)
	if !ok {
		return nil, fmt.Errorf("not a number: %v", n)
	}

	base, ok := numberBases[l.Label]
	if !ok {
		return nil, fmt.Errorf("not a number: %s", l.Label)
	}

	str, ok := l.Value.(string)
	if !ok {
		return nil, fmt.Errorf("not a number: %v", l.Value)
	}

	nv := &NumberValue{Kind: l.Label, Base: base}

	switch str[0] {
	case '-':
		nv.Negative = true
		str = str[1:]
	case '+':
		str = str[1:]
	}

	nv.Str = strings.ReplaceAll(str, "_", "")

	return nv, nil
}

// ParseInt converts the value of an Int rule to an int.
func ParseInt(n pegparse.Node) (int, error) {
	nv, err := ParseNumber(n)
	if err != nil {
		return 0, err
	}

	return nv.AsInt()
}

// ParseFloat converts the value of a Number rule to a float64.
func ParseFloat(n pegparse.Node) (float64, error) {
	nv, err := ParseNumber(n)
	if err != nil {
		return 0, err
	}

	return nv.AsFloat64()
}
