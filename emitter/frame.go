package emitter

import "golang.org/x/exp/maps"

// Params are the name bindings passed to Emit, Bind and Format. Values
// are converted to text only when the output is flattened, so any value
// fmt can print may be bound.
type Params map[string]interface{}

// Frame is an immutable scope of bindings. Names not bound in a frame are
// looked up in its parent.
type Frame struct {
	parent   *Frame
	bindings Params
}

// NewFrame creates a root frame holding a copy of bindings.
func NewFrame(bindings Params) *Frame {
	return &Frame{bindings: maps.Clone(bindings)}
}

// Extend returns a new frame whose parent is f. f is not changed, so any
// number of frames may extend the same parent.
func (f *Frame) Extend(bindings Params) *Frame {
	return &Frame{parent: f, bindings: maps.Clone(bindings)}
}

// Parent returns the frame f extends, or nil for a root frame.
func (f *Frame) Parent() *Frame {
	if f == nil {
		return nil
	}
	return f.parent
}

// Lookup returns the value bound to name in the nearest frame that binds
// it, or def if none does.
func (f *Frame) Lookup(name string, def interface{}) interface{} {
	for cur := f; cur != nil; cur = cur.parent {
		if v, ok := cur.bindings[name]; ok {
			return v
		}
	}

	return def
}
