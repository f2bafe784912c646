// Package registry holds the member tables the resolver consults.
//
// Every host type is registered once, either by generated code, by reflecting
// on it the first time a value of that type is resolved, or by a Provider for
// values whose members are not described by their Go type (protobuf messages).
// Lookups after registration never scan methods or fields.
package registry

import (
	"fmt"
	"reflect"
	"sync"
)

// TypeRef is a type used as a value, so generated code can reach static members.
type TypeRef struct {
	Type reflect.Type
}

// TypeOf returns the TypeRef for T.
func TypeOf[T any]() TypeRef {
	return TypeRef{Type: reflect.TypeFor[T]()}
}

func (r TypeRef) String() string {
	if r.Type == nil {
		return "<type nil>"
	}
	return fmt.Sprintf("<type %s>", r.Type)
}

// Provider supplies member tables for targets it recognises.
type Provider interface {
	Members(target any) (*TypeInfo, Scope, bool)
}

// Option configures a Registry.
type Option func(*Registry)

// WithoutReflection disables registering unknown types by reflection; only
// explicitly registered types and providers resolve.
func WithoutReflection() Option {
	return func(r *Registry) {
		r.autoReflect = false
	}
}

// WithProvider adds a provider consulted before the type table.
func WithProvider(p Provider) Option {
	return func(r *Registry) {
		r.providers = append(r.providers, p)
	}
}

// Registry maps Go types to their registered members.
type Registry struct {
	mu          sync.RWMutex
	types       map[reflect.Type]*TypeInfo
	providers   []Provider
	autoReflect bool
}

func New(opts ...Option) *Registry {
	r := &Registry{
		types:       make(map[reflect.Type]*TypeInfo),
		autoReflect: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register publishes ti, replacing an earlier registration of the same type.
func (r *Registry) Register(ti *TypeInfo) {
	if r == nil || ti == nil || ti.Type == nil {
		return
	}
	r.mu.Lock()
	r.types[ti.Type] = ti
	r.mu.Unlock()
}

// AddProvider appends p to the providers consulted by Members.
func (r *Registry) AddProvider(p Provider) {
	if r == nil || p == nil {
		return
	}
	r.mu.Lock()
	r.providers = append(r.providers, p)
	r.mu.Unlock()
}

// Lookup returns the registration of t, reflecting on t first if needed and allowed.
func (r *Registry) Lookup(t reflect.Type) (*TypeInfo, bool) {
	if r == nil || t == nil {
		return nil, false
	}
	r.mu.RLock()
	ti, ok := r.types[t]
	auto := r.autoReflect
	r.mu.RUnlock()
	if ok {
		return ti, true
	}
	if !auto {
		return nil, false
	}

	built := Reflect(t)
	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have registered t in the meantime; keep the first one.
	if existing, ok := r.types[t]; ok {
		return existing, true
	}
	r.types[t] = built
	return built, true
}

// Registered reports whether t has a registration, without reflecting.
func (r *Registry) Registered(t reflect.Type) bool {
	_, ok := r.registered(t)
	return ok
}

func (r *Registry) registered(t reflect.Type) (*TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ti, ok := r.types[t]
	return ti, ok
}

// Members returns the member table for target and whether instance or static
// members apply to it.
func (r *Registry) Members(target any) (*TypeInfo, Scope, bool) {
	if r == nil || target == nil {
		return nil, ScopeInstance, false
	}

	r.mu.RLock()
	providers := r.providers
	r.mu.RUnlock()
	for _, p := range providers {
		if ti, scope, ok := p.Members(target); ok {
			return ti, scope, true
		}
	}

	switch ref := target.(type) {
	case TypeRef:
		return r.static(ref)
	case *TypeRef:
		if ref == nil {
			return nil, ScopeStatic, false
		}
		return r.static(*ref)
	}

	ti, ok := r.Lookup(reflect.TypeOf(target))
	return ti, ScopeInstance, ok
}

func (r *Registry) static(ref TypeRef) (*TypeInfo, Scope, bool) {
	t := ref.Type
	if t == nil {
		return nil, ScopeStatic, false
	}
	// Statics of *T usually live on the T registration; reflection never adds statics.
	if t.Kind() == reflect.Pointer {
		if ti, ok := r.registered(t); ok && ti.hasStatics() {
			return ti, ScopeStatic, true
		}
		if ti, ok := r.registered(t.Elem()); ok {
			return ti, ScopeStatic, true
		}
	}
	if ti, ok := r.Lookup(t); ok {
		return ti, ScopeStatic, true
	}
	return nil, ScopeStatic, false
}
