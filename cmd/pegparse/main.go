package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/lab47/pegparse"
)

var (
	version string = "dev"
	cli     struct {
		Version kong.VersionFlag
		Debug   bool `help:"Log at debug level."`
		Trace   bool `help:"Trace every grammar rule as it is matched."`

		Parse  parseCmd  `cmd:"" help:"Parse an interface definition file and dump the AST."`
		Render renderCmd `cmd:"" help:"Render a template file."`
		Gen    genCmd    `cmd:"" help:"Generate Go source from an interface definition file."`
	}
)

// Globals is passed to every command's Run method.
type Globals struct {
	Log    hclog.Logger
	Trace  bool
	Stdout io.Writer
}

// parserOptions returns the options a command should parse input with.
func (g *Globals) parserOptions() []pegparse.Option {
	return []pegparse.Option{
		pegparse.WithLogger(g.Log),
		pegparse.WithDebug(g.Trace),
		pegparse.WithMemo(true),
	}
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("pegparse"),
		kong.Description(`Parse interface definitions and render templates.`),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	level := hclog.Warn
	switch {
	case cli.Trace:
		level = hclog.Trace
	case cli.Debug:
		level = hclog.Debug
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:   "pegparse",
		Level:  level,
		Output: os.Stderr,
	})

	err := kctx.Run(&Globals{
		Log:    log,
		Trace:  cli.Trace,
		Stdout: os.Stdout,
	})
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err, and for syntax errors the offending line with a
// caret under the failure.
func reportError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)

	red.Fprint(w, "error: ")
	fmt.Fprintln(w, err)

	var se *pegparse.SyntaxError
	if errors.As(err, &se) {
		fmt.Fprintf(w, "  %s\n", se.Text)
		fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", se.Offset), color.YellowString("^"))
	}
}
