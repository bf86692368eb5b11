package emitter

import "sync"

// TemplateCache holds compiled templates keyed by their source text.
// Templates are usually loaded from static files and emitted many times,
// so compiling each one once pays off. A TemplateCache is safe for
// concurrent use.
type TemplateCache struct {
	templates sync.Map
}

// DefaultCache is the cache Emitters use unless configured otherwise.
var DefaultCache = NewTemplateCache()

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{}
}

// Get returns the compiled template for src, compiling it on first use.
// Templates that fail to compile are not cached.
func (c *TemplateCache) Get(src string) (*Template, error) {
	if t, ok := c.templates.Load(src); ok {
		return t.(*Template), nil
	}

	t, err := Compile(src)
	if err != nil {
		return nil, err
	}

	actual, _ := c.templates.LoadOrStore(src, t)

	return actual.(*Template), nil
}

// Len returns the number of cached templates.
func (c *TemplateCache) Len() int {
	var n int

	c.templates.Range(func(_, _ interface{}) bool {
		n++
		return true
	})

	return n
}
