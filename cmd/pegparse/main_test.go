package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/lab47/pegparse"
	"github.com/stretchr/testify/require"
)

func testGlobals(out *bytes.Buffer) *Globals {
	color.NoColor = true

	return &Globals{
		Log:    hclog.NewNullLogger(),
		Stdout: out,
	}
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCommands(t *testing.T) {
	t.Run("parse dumps the AST", func(t *testing.T) {
		r := require.New(t)

		var out bytes.Buffer

		path := writeFile(t, "a.idl", "interface A { attribute long x; }")

		cmd := &parseCmd{File: path}
		r.NoError(cmd.Run(testGlobals(&out)))

		r.Contains(out.String(), "# "+path)
		r.Contains(out.String(), `"Interface"`)
		r.Contains(out.String(), `"Attribute"`)
	})

	t.Run("parse reports syntax errors", func(t *testing.T) {
		var out bytes.Buffer

		path := writeFile(t, "bad.idl", "interface {}")

		cmd := &parseCmd{File: path}
		err := cmd.Run(testGlobals(&out))

		var se *pegparse.SyntaxError
		require.ErrorAs(t, err, &se)
		require.Equal(t, 10, se.Offset)
	})

	t.Run("render binds values", func(t *testing.T) {
		r := require.New(t)

		var out bytes.Buffer

		path := writeFile(t, "t.tmpl", "Hello $NAME$#LOUD(!)$?REST")

		cmd := &renderCmd{Template: path, Set: map[string]string{"NAME": "Ann", "LOUD": "true"}}
		r.NoError(cmd.Run(testGlobals(&out)))
		r.Equal("Hello Ann!", out.String())
	})

	t.Run("render reports gate errors", func(t *testing.T) {
		var out bytes.Buffer

		path := writeFile(t, "t.tmpl", "$#LOUD(!)")

		cmd := &renderCmd{Template: path, Set: map[string]string{"LOUD": "yes"}}
		require.Error(t, cmd.Run(testGlobals(&out)))
	})

	t.Run("gen writes Go source", func(t *testing.T) {
		r := require.New(t)

		var out bytes.Buffer

		path := writeFile(t, "a.idl", "interface A { void run(); }")
		dest := filepath.Join(t.TempDir(), "a.go")

		cmd := &genCmd{File: path, Package: "demo", Output: dest}
		r.NoError(cmd.Run(testGlobals(&out)))
		r.Empty(out.String())

		data, err := os.ReadFile(dest)
		r.NoError(err)
		r.Contains(string(data), "package demo")
		r.Contains(string(data), "func (a *A) Run() {")
	})
}

func TestReportError(t *testing.T) {
	color.NoColor = true

	p := pegparse.MustNew([]interface{}{"a", "b"})

	_, err := p.Parse("ac")
	require.Error(t, err)

	var buf bytes.Buffer
	reportError(&buf, err)

	require.Equal(t,
		"error: At line 1 offset 1: Expected \"b\" but \"c\" found: \"ac\"\n  ac\n   ^\n",
		buf.String())
}
