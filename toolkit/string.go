package toolkit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lab47/pegparse"
)

var (
	TripleDoubleQuoted = regexp.MustCompile(`(?s)""".*?"""`)

	DoubleQuoted = regexp.MustCompile(`"(?:[^"\\\n]|\\.)*"`)

	TripleSingleQuoted = regexp.MustCompile(`(?s)'''.*?'''`)

	SingleQuoted = regexp.MustCompile(`'(?:[^'\\\n]|\\.)*'`)

	// String matches any of the quoted string forms. The value is the
	// quoted text as written, see Unquote.
	String = pegparse.Label("string", pegparse.Or(
		TripleSingleQuoted, SingleQuoted, TripleDoubleQuoted, DoubleQuoted,
	))
)

// Unquote returns the contents of a quoted string. Double quoted strings
// interpret the Go escape sequences. Single quoted strings only interpret
// \' and keep every other backslash.
func Unquote(quoted string) (string, error) {
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(quoted) >= 2*len(q) && strings.HasPrefix(quoted, q) && strings.HasSuffix(quoted, q) {
			body := quoted[len(q) : len(quoted)-len(q)]

			if q[0] == '\'' {
				return strings.ReplaceAll(body, `\'`, `'`), nil
			}

			return unescape(body)
		}
	}

	return "", fmt.Errorf("not a quoted string: %s", quoted)
}

func unescape(body string) (string, error) {
	var sb strings.Builder

	for len(body) > 0 {
		if body[0] == '"' {
			sb.WriteByte('"')
			body = body[1:]
			continue
		}

		r, multibyte, tail, err := strconv.UnquoteChar(body, '"')
		if err != nil {
			return "", fmt.Errorf("invalid escape in %q: %w", body, err)
		}

		if r < 0x80 || multibyte {
			sb.WriteRune(r)
		} else {
			sb.WriteByte(byte(r))
		}

		body = tail
	}

	return sb.String(), nil
}

// StringValue converts the value of the String rule to its contents.
func StringValue(n pegparse.Node) (string, error) {
	l, ok := n.(pegparse.Labeled)
	if !ok || l.Label != "string" {
		return "", fmt.Errorf("not a string: %v", n)
	}

	quoted, ok := l.Value.(string)
	if !ok {
		return "", fmt.Errorf("not a string: %v", l.Value)
	}

	return Unquote(quoted)
}
