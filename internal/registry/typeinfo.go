package registry

import (
	"reflect"
	"sort"
)

// Invoker calls one overload on target with already-evaluated arguments.
type Invoker func(target any, args []any) (any, error)

// Getter reads a field from target. ok is false when target cannot supply the field.
type Getter func(target any) (value any, ok bool)

// Candidate is one overload of a named member.
type Candidate struct {
	Name   string
	Arity  int
	Invoke Invoker
}

// Field is a readable data member.
type Field struct {
	Name string
	Get  Getter
}

// Scope selects between the members of instances and the members of the type itself.
type Scope int

const (
	ScopeInstance Scope = iota
	ScopeStatic
)

func (s Scope) String() string {
	if s == ScopeStatic {
		return "static"
	}
	return "instance"
}

// TypeInfo is the registration of one host type: every member name mapped to
// a field accessor or an ordered list of candidates.
// A TypeInfo must not be modified once it has been registered.
type TypeInfo struct {
	Name string
	Type reflect.Type

	fields       map[string]Field
	methods      map[string][]Candidate
	staticFields map[string]Field
	statics      map[string][]Candidate
}

// NewTypeInfo starts a registration for t. t may be nil for types that only
// exist through a Provider.
func NewTypeInfo(t reflect.Type) *TypeInfo {
	name := "<dynamic>"
	if t != nil {
		name = t.String()
	}
	return NewNamedTypeInfo(name, t)
}

// NewNamedTypeInfo is NewTypeInfo with an explicit display name.
func NewNamedTypeInfo(name string, t reflect.Type) *TypeInfo {
	return &TypeInfo{
		Name:         name,
		Type:         t,
		fields:       make(map[string]Field),
		methods:      make(map[string][]Candidate),
		staticFields: make(map[string]Field),
		statics:      make(map[string][]Candidate),
	}
}

// AddField registers an instance field. A later call with the same name replaces it.
func (ti *TypeInfo) AddField(name string, get Getter) *TypeInfo {
	ti.fields[name] = Field{Name: name, Get: get}
	return ti
}

// AddMethod appends an instance overload of name.
func (ti *TypeInfo) AddMethod(name string, arity int, fn Invoker) *TypeInfo {
	ti.methods[name] = append(ti.methods[name], Candidate{Name: name, Arity: arity, Invoke: fn})
	return ti
}

// AddStaticField registers a field read from the type value.
func (ti *TypeInfo) AddStaticField(name string, get Getter) *TypeInfo {
	ti.staticFields[name] = Field{Name: name, Get: get}
	return ti
}

// AddStatic appends a static overload of name.
func (ti *TypeInfo) AddStatic(name string, arity int, fn Invoker) *TypeInfo {
	ti.statics[name] = append(ti.statics[name], Candidate{Name: name, Arity: arity, Invoke: fn})
	return ti
}

func (ti *TypeInfo) hasStatics() bool {
	return len(ti.statics) > 0 || len(ti.staticFields) > 0
}

// Field returns the field called name in scope.
func (ti *TypeInfo) Field(scope Scope, name string) (Field, bool) {
	fields := ti.fields
	if scope == ScopeStatic {
		fields = ti.staticFields
	}
	f, ok := fields[name]
	return f, ok
}

// Candidates returns a copy of the overloads called name in scope, in registration order.
func (ti *TypeInfo) Candidates(scope Scope, name string) []Candidate {
	methods := ti.methods
	if scope == ScopeStatic {
		methods = ti.statics
	}
	list := methods[name]
	if len(list) == 0 {
		return nil
	}
	out := make([]Candidate, len(list))
	copy(out, list)
	return out
}

// MemberNames lists field and method names in scope, sorted.
func (ti *TypeInfo) MemberNames(scope Scope) []string {
	fields, methods := ti.fields, ti.methods
	if scope == ScopeStatic {
		fields, methods = ti.staticFields, ti.statics
	}
	seen := make(map[string]bool, len(fields)+len(methods))
	var names []string
	for name := range fields {
		seen[name] = true
		names = append(names, name)
	}
	for name := range methods {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
