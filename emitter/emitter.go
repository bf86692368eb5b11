package emitter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/edwingeng/deque"
	"github.com/hashicorp/go-hclog"
)

// ErrHoleCount is returned by Emit1 and Bind when the template declares a
// different number of holes than the call allows.
var ErrHoleCount = errors.New("unexpected number of holes")

type missing struct{}

// Missing is the value lookups see for an unbound name. Binding a gate's
// name to Missing has the same effect as leaving it unbound: the raw
// $#NAME(...) text is emitted.
var Missing interface{} = missing{}

// GateError is returned when flattening a $#NAME(...) gate whose value is
// not a bool.
type GateError struct {
	Name  string
	Value interface{}
}

func (e *GateError) Error() string {
	return fmt.Sprintf("value for %q must be a boolean, got %T: %v", e.Name, e.Value, e.Value)
}

// itemList is an Emitter's output. Holes share theirs by pointer with the
// frame that resolves the hole's name.
type itemList struct {
	items []interface{}

	// filled is set by the first Emit or EmitRaw, even when it adds
	// nothing.
	filled bool
}

// deferred is a lookup bound to the frame it was applied in.
type deferred struct {
	lookup *lookup
	frame  *Frame

	// content is the gate body applied against frame.
	content []interface{}
}

// Emitter accumulates template output. Holes declared by a template are
// returned as child Emitters that can be filled in any order. Nothing is
// converted to text until Fragments is called.
//
// An Emitter is not safe for concurrent use.
type Emitter struct {
	log   hclog.Logger
	frame *Frame
	cache *TemplateCache
	list  *itemList
}

type Option func(e *Emitter)

// WithFrame sets the frame names are resolved in.
func WithFrame(f *Frame) Option {
	return func(e *Emitter) {
		e.frame = f
	}
}

// WithCache sets the template cache. A nil cache compiles templates on
// every call.
func WithCache(c *TemplateCache) Option {
	return func(e *Emitter) {
		e.cache = c
	}
}

func WithLogger(log hclog.Logger) Option {
	return func(e *Emitter) {
		e.log = log
	}
}

// New creates an empty Emitter.
func New(opts ...Option) *Emitter {
	e := &Emitter{
		log:   hclog.L(),
		frame: NewFrame(nil),
		cache: DefaultCache,
		list:  &itemList{},
	}

	for _, o := range opts {
		o(e)
	}

	return e
}

func (e *Emitter) child(f *Frame) *Emitter {
	return &Emitter{
		log:   e.log,
		frame: f,
		cache: e.cache,
		list:  &itemList{},
	}
}

func (e *Emitter) template(src string) (*Template, error) {
	if e.cache == nil {
		return Compile(src)
	}

	return e.cache.Get(src)
}

// Frame returns the frame the Emitter resolves names in.
func (e *Emitter) Frame() *Frame {
	return e.frame
}

// Emit applies the template src with params bound on top of the Emitter's
// frame and appends the result. It returns an Emitter for each hole the
// template declares, in declaration order.
//
// A hole's name also resolves to the hole's content, so a template can
// repeat it with $NAME.
func (e *Emitter) Emit(src string, params Params) ([]*Emitter, error) {
	t, err := e.template(src)
	if err != nil {
		return nil, err
	}

	f := e.frame.Extend(params)

	var holes []*Emitter

	if len(t.holes) > 0 {
		bindings := make(Params, len(t.holes))

		for _, name := range t.holes {
			h := e.child(f)
			holes = append(holes, h)
			bindings[name] = h.list
		}

		f = f.Extend(bindings)
	}

	e.list.items = append(e.list.items, apply(t, f)...)
	e.list.filled = true

	return holes, nil
}

// Emit1 is like Emit for templates that declare exactly one hole.
func (e *Emitter) Emit1(src string, params Params) (*Emitter, error) {
	t, err := e.template(src)
	if err != nil {
		return nil, err
	}

	if len(t.holes) != 1 {
		return nil, fmt.Errorf("%w: expected 1, template declares %d", ErrHoleCount, len(t.holes))
	}

	holes, err := e.Emit(src, params)
	if err != nil {
		return nil, err
	}

	return holes[0], nil
}

// EmitRaw appends text as-is, without looking for markers.
func (e *Emitter) EmitRaw(text string) {
	e.list.items = append(e.list.items, text)
	e.list.filled = true
}

// Bind renders src, which must not declare holes, and binds the result to
// name for everything this Emitter emits afterwards. The returned Emitter
// holds the rendered output.
func (e *Emitter) Bind(name, src string, params Params) (*Emitter, error) {
	b := e.child(e.frame)

	holes, err := b.Emit(src, params)
	if err != nil {
		return nil, err
	}

	if len(holes) > 0 {
		return nil, fmt.Errorf("%w: binding %s, template declares %d", ErrHoleCount, name, len(holes))
	}

	text, err := b.String()
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", name, err)
	}

	e.frame = e.frame.Extend(Params{name: text})

	return b, nil
}

func apply(t *Template, f *Frame) []interface{} {
	out := make([]interface{}, 0, len(t.items))

	for _, it := range t.items {
		switch v := it.(type) {
		case string:
			out = append(out, v)
		case *lookup:
			d := &deferred{lookup: v, frame: f}
			if v.sub != nil {
				d.content = apply(v.sub, f)
			}

			out = append(out, d)
		}
	}

	return out
}

// Fragments resolves every lookup and returns the output as a list of
// strings. It does not change the Emitter and may be called repeatedly.
func (e *Emitter) Fragments() ([]string, error) {
	var out []string

	stack := deque.NewDeque()
	pushItems(stack, e.list.items)

	for stack.Len() > 0 {
		switch v := stack.PopBack().(type) {
		case string:
			out = append(out, v)
		case []interface{}:
			pushItems(stack, v)
		case []string:
			for i := len(v) - 1; i >= 0; i-- {
				stack.PushBack(v[i])
			}
		case *itemList:
			pushItems(stack, v.items)
		case *Emitter:
			pushItems(stack, v.list.items)
		case *deferred:
			val, err := e.resolve(v)
			if err != nil {
				return nil, err
			}

			stack.PushBack(val)
		default:
			out = append(out, fmt.Sprint(v))
		}
	}

	return out, nil
}

func pushItems(stack deque.Deque, items []interface{}) {
	for i := len(items) - 1; i >= 0; i-- {
		stack.PushBack(items[i])
	}
}

func (e *Emitter) resolve(d *deferred) (interface{}, error) {
	l := d.lookup
	val := d.frame.Lookup(l.name, Missing)

	if l.kind == gateMarker {
		switch v := val.(type) {
		case bool:
			if v {
				return d.content, nil
			}
			return []interface{}{}, nil
		case missing:
			return l.raw, nil
		default:
			return nil, &GateError{Name: l.name, Value: val}
		}
	}

	switch v := val.(type) {
	case missing:
		e.log.Trace("unbound name in template", "name", l.name)
		return l.fallback, nil
	case *itemList:
		if !v.filled {
			return l.fallback, nil
		}
	}

	return val, nil
}

// String returns the flattened output as one string.
func (e *Emitter) String() (string, error) {
	frags, err := e.Fragments()
	if err != nil {
		return "", err
	}

	return strings.Join(frags, ""), nil
}

// Format renders src with params using a fresh Emitter.
func Format(src string, params Params) (string, error) {
	e := New()

	if _, err := e.Emit(src, params); err != nil {
		return "", err
	}

	return e.String()
}
