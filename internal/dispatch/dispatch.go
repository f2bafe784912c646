// Package dispatch selects and calls one overload out of a resolved candidate set.
//
// Selection is by arity only. When the arity does not narrow the set to a
// single candidate the outcome is Ambiguous; there is no type-based fallback.
package dispatch

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"

	"github.com/funvibe/dynrt/internal/config"
	"github.com/funvibe/dynrt/internal/diagnostics"
	"github.com/funvibe/dynrt/internal/registry"
)

// State is the outcome of an invocation.
type State int

const (
	Invoked State = iota
	NoCandidate
	Ambiguous
	Fault
	NotInvocable
)

func (s State) String() string {
	switch s {
	case Invoked:
		return "invoked"
	case NoCandidate:
		return "no-candidate"
	case Ambiguous:
		return "ambiguous"
	case Fault:
		return "fault"
	case NotInvocable:
		return "not-invocable"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result carries the value of a successful call, or why there is none.
// A successful call may legitimately produce a nil Value.
type Result struct {
	Value any
	State State
	Err   error
}

// OK reports whether a candidate was called and returned normally.
func (r Result) OK() bool {
	return r.State == Invoked
}

// HostFault wraps an error returned by, or a panic raised in, the called candidate.
type HostFault struct {
	Method string
	Arity  int
	Err    error
	// Stack is set when the fault was a panic.
	Stack []byte
}

func (f *HostFault) Error() string {
	return fmt.Sprintf("%s/%d: %v", f.Method, f.Arity, f.Err)
}

func (f *HostFault) Unwrap() error {
	return f.Err
}

// BoundMethod is a member name bound to a target and the candidates found for it.
// It is immutable; every resolution builds a new one.
type BoundMethod struct {
	name       string
	target     any
	candidates []registry.Candidate
	sink       diagnostics.Sink
}

// NewBoundMethod binds candidates to target. It returns nil when candidates is
// empty: an empty set means the member was not found.
func NewBoundMethod(name string, target any, candidates []registry.Candidate, sink diagnostics.Sink) *BoundMethod {
	if len(candidates) == 0 {
		return nil
	}
	if sink == nil {
		sink = diagnostics.Discard
	}
	cands := make([]registry.Candidate, len(candidates))
	copy(cands, candidates)
	return &BoundMethod{name: name, target: target, candidates: cands, sink: sink}
}

func (b *BoundMethod) Name() string { return b.name }

func (b *BoundMethod) Target() any { return b.target }

// Candidates returns a copy of the candidate set.
func (b *BoundMethod) Candidates() []registry.Candidate {
	out := make([]registry.Candidate, len(b.candidates))
	copy(out, b.candidates)
	return out
}

func (b *BoundMethod) String() string {
	return fmt.Sprintf("<bound method %s of %T (%d candidates)>", b.name, b.target, len(b.candidates))
}

// WithArity returns the candidates declaring exactly n parameters, in their original order.
func (b *BoundMethod) WithArity(n int) []registry.Candidate {
	var out []registry.Candidate
	for _, c := range b.candidates {
		if c.Arity == n {
			out = append(out, c)
		}
	}
	return out
}

// Invoke selects a candidate and calls it:
//
//	0 candidates              NoCandidate
//	1 candidate               called with args whatever its arity
//	n candidates, 1 of arity  that one is called
//	otherwise                 Ambiguous
//
// Faults raised by the callee are logged and reported in the Result; they never propagate.
func (b *BoundMethod) Invoke(args ...any) Result {
	if b == nil || len(b.candidates) == 0 {
		sink := diagnostics.Discard
		if b != nil {
			sink = b.sink
		}
		sink.Print(config.MsgNoMethod)
		return Result{State: NoCandidate}
	}
	if len(b.candidates) == 1 {
		return b.call(b.candidates[0], args)
	}
	sameArity := b.WithArity(len(args))
	if len(sameArity) == 1 {
		return b.call(sameArity[0], args)
	}
	b.sink.Print(config.MsgPolymorphicDispatch)
	return Result{State: Ambiguous}
}

func (b *BoundMethod) call(c registry.Candidate, args []any) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", r)
			}
			res = b.fault(&HostFault{Method: c.Name, Arity: c.Arity, Err: err, Stack: debug.Stack()})
		}
	}()
	if c.Invoke == nil {
		return b.fault(&HostFault{Method: c.Name, Arity: c.Arity, Err: fmt.Errorf("candidate has no invoker")})
	}
	v, err := c.Invoke(b.target, args)
	if err != nil {
		return b.fault(&HostFault{Method: c.Name, Arity: c.Arity, Err: err})
	}
	return Result{Value: v, State: Invoked}
}

func (b *BoundMethod) fault(f *HostFault) Result {
	b.sink.Print(config.MsgInvocationError, f)
	for _, line := range strings.Split(strings.TrimRight(string(f.Stack), "\n"), "\n") {
		if line != "" {
			b.sink.Print(line)
		}
	}
	return Result{State: Fault, Err: f}
}

// Equal reports whether two bound methods have the same name, the same target
// and the same candidates in the same order.
func (b *BoundMethod) Equal(other *BoundMethod) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.name != other.name || !sameTarget(b.target, other.target) || len(b.candidates) != len(other.candidates) {
		return false
	}
	for i, c := range b.candidates {
		o := other.candidates[i]
		if c.Name != o.Name || c.Arity != o.Arity || funcPointer(c.Invoke) != funcPointer(o.Invoke) {
			return false
		}
	}
	return true
}

func sameTarget(a, b any) (same bool) {
	// Structs holding incomparable values panic on ==.
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	return reflect.DeepEqual(a, b)
}

func funcPointer(fn registry.Invoker) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

// Invoke calls callable with args. Bound methods dispatch as above, plain Go
// functions are called as a single candidate, anything else is not invocable.
func Invoke(sink diagnostics.Sink, callable any, args ...any) Result {
	if sink == nil {
		sink = diagnostics.Discard
	}
	switch c := callable.(type) {
	case *BoundMethod:
		if c != nil {
			return c.Invoke(args...)
		}
	case registry.Candidate:
		return NewBoundMethod(c.Name, nil, []registry.Candidate{c}, sink).Invoke(args...)
	}
	if rv := reflect.ValueOf(callable); rv.Kind() == reflect.Func && !rv.IsNil() {
		cand, err := registry.FuncCandidate(rv.Type().String(), callable)
		if err == nil {
			return NewBoundMethod(cand.Name, nil, []registry.Candidate{cand}, sink).Invoke(args...)
		}
	}
	sink.Print(config.MsgUnknownInvocable, callable)
	return Result{State: NotInvocable}
}
