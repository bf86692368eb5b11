package toolkit

import (
	"regexp"

	"github.com/lab47/pegparse"
)

var (
	// Blank matches one or more unicode whitespace characters.
	Blank = regexp.MustCompile(`[\s\v\x{85}\pZ]+`)

	// LineComment matches a // or # comment up to the end of the line.
	LineComment = regexp.MustCompile(`(?://|#)[^\n]*`)

	// BlockComment matches a /* */ comment, which may span lines.
	BlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)

	// Whitespace is the usual whitespace rule for a parser: blanks and
	// comments.
	Whitespace = pegparse.Or(Blank, LineComment, BlockComment)
)
