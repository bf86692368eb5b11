// Package codegen renders interface definitions parsed by toolkit.ParseIDL
// as Go source.
package codegen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/hashicorp/go-hclog"
	"github.com/lab47/pegparse"
	"github.com/lab47/pegparse/emitter"
	"github.com/lab47/pegparse/toolkit"
)

const fileTemplate = `// Code generated by pegparse gen. DO NOT EDIT.

package $PACKAGE
$?DECLS`

const interfaceTemplate = `
// $NAME is generated from interface $NAME.
type $NAME struct {
$?EMBED$?FIELDS}
$?CONSTS$?METHODS`

const (
	embedTemplate  = "\t$PARENT\n"
	fieldTemplate  = "\t$FIELD $TYPE$#RO( // read only)\n"
	constTemplate  = "\n// $(NAME)$CONST is a constant of $NAME.\nconst $(NAME)$CONST $TYPE = $VALUE\n"
	recvTemplate   = "($SELF *$NAME)"
	getterTemplate = "\nfunc $RECV $METHOD() $TYPE { return $SELF.$FIELD }\n" +
		"$#WRITABLE(\nfunc $RECV Set$(METHOD)(v $TYPE) { $SELF.$FIELD = v }\n)"
	methodTemplate = "\nfunc $RECV $METHOD($ARGS)$RESULT {\n\tpanic(\"not implemented\")\n}\n"
)

var builtinTypes = map[string]string{
	"boolean": "bool",
	"byte":    "int8",
	"octet":   "uint8",
	"short":   "int16",
	"long":    "int64",
	"float":   "float32",
	"double":  "float64",
	"string":  "string",
	"any":     "interface{}",
	"void":    "",
}

type generator struct {
	log hclog.Logger
	pkg string
}

type Option func(g *generator)

// WithPackage sets the package clause of the output. The default is idl.
func WithPackage(name string) Option {
	return func(g *generator) {
		g.pkg = name
	}
}

func WithLogger(log hclog.Logger) Option {
	return func(g *generator) {
		g.log = log
	}
}

// Generate renders the interfaces in ast, as returned by
// toolkit.ParseIDL, as Go structs with accessors and method stubs.
func Generate(ast pegparse.Node, opts ...Option) (string, error) {
	g := &generator{
		log: hclog.L(),
		pkg: "idl",
	}

	for _, o := range opts {
		o(g)
	}

	e := emitter.New(emitter.WithLogger(g.log))

	decls, err := e.Emit1(fileTemplate, emitter.Params{"PACKAGE": g.pkg})
	if err != nil {
		return "", err
	}

	nodes, _ := ast.([]pegparse.Node)

	for _, n := range nodes {
		iface, ok := n.(pegparse.Labeled)
		if !ok || iface.Label != "Interface" {
			return "", fmt.Errorf("expected an Interface node, got %v", n)
		}

		if err := g.genInterface(decls, iface); err != nil {
			return "", fmt.Errorf("interface %v: %w", toolkit.Get(iface, "name"), err)
		}
	}

	return e.String()
}

func (g *generator) genInterface(decls *emitter.Emitter, iface pegparse.Labeled) error {
	name, _ := toolkit.Get(iface, "name").(string)

	g.log.Debug("generating interface", "name", name)

	holes, err := decls.Emit(interfaceTemplate, emitter.Params{
		"NAME": name,
		"SELF": receiverName(name),
	})
	if err != nil {
		return err
	}

	embed, fields, consts, methods := holes[0], holes[1], holes[2], holes[3]

	if parent, ok := toolkit.Get(iface, "extends").(string); ok {
		if _, err := embed.Emit(embedTemplate, emitter.Params{"PARENT": parent}); err != nil {
			return err
		}
	}

	if _, err := methods.Bind("RECV", recvTemplate, nil); err != nil {
		return err
	}

	for _, c := range toolkit.Children(iface, "Const") {
		value, err := constValue(toolkit.Get(c, "value"))
		if err != nil {
			return err
		}

		_, err = consts.Emit(constTemplate, emitter.Params{
			"CONST": toolkit.Get(c, "name"),
			"TYPE":  goType(toolkit.Get(c, "type").(string)),
			"VALUE": value,
		})
		if err != nil {
			return err
		}
	}

	for _, a := range toolkit.Children(iface, "Attribute") {
		field := toolkit.Get(a, "name").(string)
		typ := goType(toolkit.Get(a, "type").(string))
		readonly := toolkit.Has(a, "readonly")

		_, err := fields.Emit(fieldTemplate, emitter.Params{
			"FIELD": field,
			"TYPE":  typ,
			"RO":    readonly,
		})
		if err != nil {
			return err
		}

		_, err = methods.Emit(getterTemplate, emitter.Params{
			"FIELD":    field,
			"METHOD":   exported(field),
			"TYPE":     typ,
			"WRITABLE": !readonly,
		})
		if err != nil {
			return err
		}
	}

	for _, op := range toolkit.Children(iface, "Operation") {
		var args []string

		list, _ := toolkit.Get(op, "args").([]pegparse.Node)
		for _, arg := range list {
			args = append(args, fmt.Sprintf("%s %s",
				toolkit.Get(arg, "name"), goType(toolkit.Get(arg, "type").(string))))
		}

		result := goType(toolkit.Get(op, "type").(string))
		if result != "" {
			result = " " + result
		}

		_, err := methods.Emit(methodTemplate, emitter.Params{
			"METHOD": exported(toolkit.Get(op, "name").(string)),
			"ARGS":   strings.Join(args, ", "),
			"RESULT": result,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func goType(idl string) string {
	var nullable, array bool

	if strings.HasSuffix(idl, "?") {
		nullable = true
		idl = strings.TrimSuffix(idl, "?")
	}

	if strings.HasSuffix(idl, "[]") {
		array = true
		idl = strings.TrimSuffix(idl, "[]")
	}

	typ, builtin := builtinTypes[idl]
	if !builtin {
		typ = "*" + idl
	} else if nullable && typ != "" && typ != "interface{}" {
		typ = "*" + typ
	}

	if array {
		typ = "[]" + typ
	}

	return typ
}

func constValue(n pegparse.Node) (string, error) {
	switch v := n.(type) {
	case string:
		return v, nil
	case pegparse.Labeled:
		if v.Label == "string" {
			s, err := toolkit.StringValue(v)
			if err != nil {
				return "", err
			}

			return strconv.Quote(s), nil
		}

		nv, err := toolkit.ParseNumber(v)
		if err != nil {
			return "", err
		}

		if nv.Negative {
			return "-" + nv.Str, nil
		}

		return nv.Str, nil
	default:
		return "", fmt.Errorf("unsupported constant value %v", n)
	}
}

func exported(name string) string {
	if name == "" {
		return name
	}

	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])

	return string(r)
}

func receiverName(name string) string {
	for _, r := range name {
		return string(unicode.ToLower(r))
	}

	return "x"
}
