package main

import (
	"fmt"
	"os"

	"github.com/lab47/pegparse/codegen"
	"github.com/lab47/pegparse/toolkit"
)

type genCmd struct {
	File    string `arg:"" type:"existingfile" help:"Interface definition file."`
	Package string `short:"p" default:"idl" help:"Package name of the generated code."`
	Output  string `short:"o" type:"path" help:"Write to this file instead of stdout."`
}

func (c *genCmd) Run(g *Globals) error {
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

	out, err := codegen.Generate(ast, codegen.WithPackage(c.Package), codegen.WithLogger(g.Log))
	if err != nil {
		return fmt.Errorf("%s: %w", c.File, err)
	}

	if c.Output == "" {
		_, err = fmt.Fprint(g.Stdout, out)
		return err
	}

	g.Log.Info("writing output", "path", c.Output)

	return os.WriteFile(c.Output, []byte(out), 0644)
}
