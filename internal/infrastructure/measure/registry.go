// Package measure provides Measurer implementations for hosts.
package measure

import (
	"fmt"
	"sync"

	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	"github.com/alexisbeaulieu97/floatkit/internal/ports"
)

// Handle is a named element handle.
type Handle string

// Name implements ports.Handle.
func (h Handle) Name() string {
	return string(h)
}

// Source reports an element's current rect. ok is false while the element
// has no layout.
type Source func() (rect geometry.Rect, ok bool)

// Registry answers Measure synchronously from a table of rect sources keyed
// by handle name. Unknown handles measure as the zero rect.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
	strict  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// NewStrictRegistry creates a registry that reports unknown handles as
// errors instead of unmeasured.
func NewStrictRegistry() *Registry {
	r := NewRegistry()
	r.strict = true
	return r
}

// Set installs the rect source for a handle.
func (r *Registry) Set(h ports.Handle, src Source) {
	r.mu.Lock()
	r.sources[h.Name()] = src
	r.mu.Unlock()
}

// SetRect records a fixed rect for a handle.
func (r *Registry) SetRect(h ports.Handle, rect geometry.Rect) {
	r.Set(h, func() (geometry.Rect, bool) { return rect, true })
}

// Remove forgets a handle.
func (r *Registry) Remove(h ports.Handle) {
	r.mu.Lock()
	delete(r.sources, h.Name())
	r.mu.Unlock()
}

// Lookup returns the handle's current rect.
func (r *Registry) Lookup(h ports.Handle) (geometry.Rect, bool) {
	r.mu.RLock()
	src, ok := r.sources[h.Name()]
	r.mu.RUnlock()
	if !ok || src == nil {
		return geometry.Rect{}, false
	}
	return src()
}

// Measure implements ports.Measurer.
func (r *Registry) Measure(h ports.Handle, done ports.MeasureCallback) {
	if h == nil {
		done(geometry.Rect{}, fmt.Errorf("measure: nil handle"))
		return
	}
	r.mu.RLock()
	_, known := r.sources[h.Name()]
	r.mu.RUnlock()
	if !known && r.strict {
		done(geometry.Rect{}, fmt.Errorf("measure: unknown handle %q", h.Name()))
		return
	}

	rect, ok := r.Lookup(h)
	if !ok {
		rect = geometry.Rect{}
	}
	done(rect, nil)
}
