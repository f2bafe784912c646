package dynrt

import (
	"github.com/funvibe/dynrt/internal/diagnostics"
	"github.com/funvibe/dynrt/internal/dispatch"
	"github.com/funvibe/dynrt/internal/registry"
	"github.com/funvibe/dynrt/internal/resolver"
	"github.com/funvibe/dynrt/internal/slots"
)

// Type aliases for generated code
type BoundMethod = dispatch.BoundMethod
type Result = dispatch.Result
type State = dispatch.State
type HostFault = dispatch.HostFault
type Lookup = resolver.Lookup
type TypeInfo = registry.TypeInfo
type TypeRef = registry.TypeRef
type Candidate = registry.Candidate
type Invoker = registry.Invoker
type Getter = registry.Getter
type Provider = registry.Provider
type Scope = registry.Scope
type Sink = diagnostics.Sink
type SlotResult = slots.Result

// Re-export constants
const (
	Invoked      = dispatch.Invoked
	NoCandidate  = dispatch.NoCandidate
	Ambiguous    = dispatch.Ambiguous
	Fault        = dispatch.Fault
	NotInvocable = dispatch.NotInvocable

	ScopeInstance = registry.ScopeInstance
	ScopeStatic   = registry.ScopeStatic
)

// Argument binding faults
var (
	ErrArgCount = registry.ErrArgCount
	ErrArgType  = registry.ErrArgType
	ErrReceiver = registry.ErrReceiver
)

// Absent is the type of NoResult.
type Absent struct{}

func (Absent) String() string { return "<no result>" }

// NoResult is what generated code sees when a name does not resolve, a call
// cannot be dispatched or faults, or an operator gets unsupported operands.
var NoResult = Absent{}

// IsNoResult reports whether v is the NoResult sentinel.
func IsNoResult(v any) bool {
	_, ok := v.(Absent)
	return ok
}

// NewTypeInfo starts a registration for the type t of generated or bound code.
var NewTypeInfo = registry.NewTypeInfo

// NewNamedTypeInfo is NewTypeInfo with an explicit display name.
var NewNamedTypeInfo = registry.NewNamedTypeInfo

// Reflect builds a registration from t's exported fields and methods.
var Reflect = registry.Reflect

// CheckArity fails unless exactly n arguments were passed.
var CheckArity = registry.CheckArity

// TypeOf returns the type value of T, through which static members resolve.
func TypeOf[T any]() TypeRef {
	return registry.TypeOf[T]()
}

// Arg binds args[i] to T.
func Arg[T any](args []any, i int) (T, error) {
	return registry.Arg[T](args, i)
}

// Receiver asserts the type of an invocation target.
func Receiver[T any](target any) (T, error) {
	return registry.Receiver[T](target)
}
