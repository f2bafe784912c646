// Package dynrt is the runtime imported by generated code.
//
// Generated code resolves members by name, invokes what it resolved, and
// evaluates lowered operators through this package:
//
//	m := dynrt.Resolve(obj, "greet")
//	out := dynrt.Invoke(m, "world")
//	sum := dynrt.Add(out, 1)
//
// None of these calls fail: an unresolved name, an undispatchable call or an
// unsupported operand yields NoResult and a diagnostic line on the runtime's sink.
// Callers that need to tell a nil result from a failure use Lookup and Call.
package dynrt

import (
	"sync/atomic"

	"github.com/funvibe/dynrt/internal/coercion"
	"github.com/funvibe/dynrt/internal/diagnostics"
	"github.com/funvibe/dynrt/internal/dispatch"
	"github.com/funvibe/dynrt/internal/registry"
	"github.com/funvibe/dynrt/internal/resolver"
	"github.com/funvibe/dynrt/internal/slots"
	"github.com/funvibe/dynrt/internal/value"
)

// Runtime bundles a registry, a diagnostics sink, and the components using them.
type Runtime struct {
	registry *registry.Registry
	sink     diagnostics.Sink
	resolver *resolver.Resolver
	coercer  *coercion.Coercer
}

type options struct {
	sink         diagnostics.Sink
	registry     *registry.Registry
	providers    []registry.Provider
	noReflection bool
}

// Option configures a Runtime.
type Option func(*options)

// WithSink sends diagnostics to s instead of standard output.
func WithSink(s Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// WithRegistry shares an existing registry.
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithProvider adds a member provider to the runtime's registry.
func WithProvider(p Provider) Option {
	return func(o *options) {
		o.providers = append(o.providers, p)
	}
}

// WithoutReflection restricts resolution to registered types and providers.
// It has no effect together with WithRegistry.
func WithoutReflection() Option {
	return func(o *options) {
		o.noReflection = true
	}
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.sink == nil {
		o.sink = diagnostics.Stdout()
	}
	if o.registry == nil {
		var regOpts []registry.Option
		if o.noReflection {
			regOpts = append(regOpts, registry.WithoutReflection())
		}
		o.registry = registry.New(regOpts...)
	}
	for _, p := range o.providers {
		o.registry.AddProvider(p)
	}
	return &Runtime{
		registry: o.registry,
		sink:     o.sink,
		resolver: resolver.New(o.registry, o.sink),
		coercer:  coercion.New(o.sink),
	}
}

func (rt *Runtime) Registry() *registry.Registry { return rt.registry }

func (rt *Runtime) Sink() Sink { return rt.sink }

// Register publishes the members of one type.
func (rt *Runtime) Register(ti *TypeInfo) {
	rt.registry.Register(ti)
}

// Resolve returns the field value, a *BoundMethod, or NoResult.
func (rt *Runtime) Resolve(target any, name string) any {
	l := rt.resolver.Resolve(target, name)
	if !l.Found {
		return NoResult
	}
	return l.Value
}

// Lookup is Resolve with an explicit found flag, so a nil field value is
// distinguishable from an unresolved name.
func (rt *Runtime) Lookup(target any, name string) Lookup {
	return rt.resolver.Resolve(target, name)
}

func (rt *Runtime) ResolveField(target any, name string) Lookup {
	return rt.resolver.ResolveField(target, name)
}

func (rt *Runtime) ResolveMethod(target any, name string) (*BoundMethod, bool) {
	return rt.resolver.ResolveMethod(target, name)
}

// Invoke calls callable and returns its result, or NoResult if the call
// could not be dispatched or faulted.
func (rt *Runtime) Invoke(callable any, args ...any) any {
	res := rt.Call(callable, args...)
	if !res.OK() {
		return NoResult
	}
	return res.Value
}

// Call is Invoke with the full dispatch outcome.
func (rt *Runtime) Call(callable any, args ...any) Result {
	return dispatch.Invoke(rt.sink, callable, args...)
}

func (rt *Runtime) Add(a, b any) any {
	return orNoResult(rt.coercer.Add(a, b))
}

func (rt *Runtime) Subtract(a, b any) any {
	return orNoResult(rt.coercer.Subtract(a, b))
}

func (rt *Runtime) Multiply(a, b any) any {
	return orNoResult(rt.coercer.Multiply(a, b))
}

func (rt *Runtime) Divide(a, b any) any {
	return orNoResult(rt.coercer.Divide(a, b))
}

func orNoResult(v any, ok bool) any {
	if !ok {
		return NoResult
	}
	return v
}

// Print writes one diagnostic line.
func (rt *Runtime) Print(items ...any) {
	rt.sink.Print(items...)
}

// Box turns a Go integer into a boxed int and passes anything else through.
func (rt *Runtime) Box(v any) any {
	return value.Box(v)
}

// Slot protocol. Reserved; every operation reports Unimplemented.

func (rt *Runtime) Import(context any, name string) SlotResult {
	return slots.Import(context, name)
}

func (rt *Runtime) Access(v any) SlotResult {
	return slots.Access(v)
}

func (rt *Runtime) GetSlot(target any, name string) SlotResult {
	return slots.GetSlot(target, name)
}

func (rt *Runtime) SetSlot(target any, name string) SlotResult {
	return slots.SetSlot(target, name)
}

func (rt *Runtime) RespondsTo(target any, name string) SlotResult {
	return slots.RespondsTo(target, name)
}

func (rt *Runtime) Respond(target any, name string, args ...any) SlotResult {
	return slots.Respond(target, name, args)
}

var defaultRuntime atomic.Pointer[Runtime]

func init() {
	defaultRuntime.Store(New())
}

// Default returns the runtime behind the package-level functions.
func Default() *Runtime {
	return defaultRuntime.Load()
}

// SetDefault replaces the runtime behind the package-level functions.
// Generated init functions register into the default runtime's registry, so
// replacing it after they ran drops those registrations unless rt shares the
// registry (WithRegistry(Default().Registry())).
func SetDefault(rt *Runtime) {
	if rt != nil {
		defaultRuntime.Store(rt)
	}
}
