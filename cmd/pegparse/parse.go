package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/repr"
	"github.com/fatih/color"
	"github.com/lab47/pegparse/toolkit"
)

type parseCmd struct {
	File string `arg:"" type:"existingfile" help:"Interface definition file."`
}

func (c *parseCmd) Run(g *Globals) error {
	src, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}

	p, err := toolkit.NewIDLParser(g.parserOptions()...)
	if err != nil {
		return err
	}

	ast, err := p.Parse(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", c.File, err)
	}

	g.Log.Debug("parsed file", "file", c.File, "bytes", len(src))

	color.New(color.FgCyan).Fprintf(g.Stdout, "# %s\n", c.File)
	fmt.Fprintln(g.Stdout, repr.String(ast, repr.Indent("  ")))

	return nil
}
