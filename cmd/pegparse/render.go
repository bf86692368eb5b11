package main

import (
	"fmt"
	"os"

	"github.com/lab47/pegparse/emitter"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type renderCmd struct {
	Template string            `arg:"" type:"existingfile" help:"Template file."`
	Set      map[string]string `short:"s" help:"Bind a name, as NAME=VALUE. true and false are bound as booleans."`
}

func (c *renderCmd) Run(g *Globals) error {
	src, err := os.ReadFile(c.Template)
	if err != nil {
		return err
	}

	params := make(emitter.Params, len(c.Set))

	keys := maps.Keys(c.Set)
	slices.Sort(keys)

	for _, k := range keys {
		v := c.Set[k]

		switch v {
		case "true":
			params[k] = true
		case "false":
			params[k] = false
		default:
			params[k] = v
		}

		g.Log.Debug("binding", "name", k, "value", v)
	}

	e := emitter.New(emitter.WithLogger(g.Log), emitter.WithCache(nil))

	if _, err := e.Emit(string(src), params); err != nil {
		return fmt.Errorf("%s: %w", c.Template, err)
	}

	out, err := e.String()
	if err != nil {
		return fmt.Errorf("%s: %w", c.Template, err)
	}

	_, err = fmt.Fprint(g.Stdout, out)
	return err
}
