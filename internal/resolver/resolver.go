// Package resolver maps a (target, member name) pair to a field value or a
// bound method, using the member tables held by a registry.
//
// Fields are always consulted before methods: if a type exposes both a field
// and a method called x, resolving x yields the field.
package resolver

import (
	"fmt"
	"reflect"

	"github.com/funvibe/dynrt/internal/diagnostics"
	"github.com/funvibe/dynrt/internal/dispatch"
	"github.com/funvibe/dynrt/internal/registry"
)

// Lookup distinguishes an unresolved name from a member whose value is nil.
type Lookup struct {
	Found bool
	Value any
}

// NotFound is the Lookup of an unresolved name.
var NotFound = Lookup{}

// Found wraps a resolved value.
func Found(v any) Lookup {
	return Lookup{Found: true, Value: v}
}

func (l Lookup) String() string {
	if !l.Found {
		return "<not found>"
	}
	return fmt.Sprintf("<found %v>", l.Value)
}

// Resolver looks members up in a registry. Bound methods it creates report
// dispatch diagnostics to its sink.
type Resolver struct {
	registry *registry.Registry
	sink     diagnostics.Sink
}

func New(reg *registry.Registry, sink diagnostics.Sink) *Resolver {
	if reg == nil {
		reg = registry.New()
	}
	if sink == nil {
		sink = diagnostics.Discard
	}
	return &Resolver{registry: reg, sink: sink}
}

// Registry returns the registry the resolver reads.
func (r *Resolver) Registry() *registry.Registry {
	return r.registry
}

// ResolveField returns the value of the field called name on target.
func (r *Resolver) ResolveField(target any, name string) Lookup {
	ti, scope, ok := r.registry.Members(target)
	if !ok {
		return NotFound
	}
	f, ok := ti.Field(scope, name)
	if !ok || f.Get == nil {
		return NotFound
	}
	v, ok := f.Get(target)
	if !ok {
		return NotFound
	}
	return Found(v)
}

// ResolveMethod binds every candidate called name on target. Instances get
// instance methods, type values get static members. Nil pointers bind nothing.
func (r *Resolver) ResolveMethod(target any, name string) (*dispatch.BoundMethod, bool) {
	if isNil(target) {
		return nil, false
	}
	ti, scope, ok := r.registry.Members(target)
	if !ok {
		return nil, false
	}
	bm := dispatch.NewBoundMethod(name, target, ti.Candidates(scope, name), r.sink)
	return bm, bm != nil
}

// Resolve tries the field first, then the methods.
func (r *Resolver) Resolve(target any, name string) Lookup {
	if isNil(target) {
		return NotFound
	}
	if l := r.ResolveField(target, name); l.Found {
		return l
	}
	if bm, ok := r.ResolveMethod(target, name); ok {
		return Found(bm)
	}
	return NotFound
}

func isNil(target any) bool {
	if target == nil {
		return true
	}
	rv := reflect.ValueOf(target)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
