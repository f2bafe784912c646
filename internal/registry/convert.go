package registry

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/funvibe/dynrt/internal/value"
)

// Argument binding faults. Invokers wrap these; dispatch reports them as host faults.
var (
	ErrArgCount = errors.New("wrong number of arguments")
	ErrArgType  = errors.New("argument type mismatch")
	ErrReceiver = errors.New("receiver type mismatch")
)

// CheckArity fails unless exactly n arguments were passed.
func CheckArity(args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: want %d, got %d", ErrArgCount, n, len(args))
	}
	return nil
}

// Arg binds args[i] to T.
func Arg[T any](args []any, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(args) {
		return zero, fmt.Errorf("%w: no argument %d", ErrArgCount, i)
	}
	if v, ok := args[i].(T); ok {
		return v, nil
	}
	rv, err := ConvertTo(args[i], reflect.TypeFor[T]())
	if err != nil {
		return zero, fmt.Errorf("argument %d: %w", i, err)
	}
	// nil bound to an interface type asserts to the zero value.
	out, _ := rv.Interface().(T)
	return out, nil
}

// Receiver asserts the dynamic type of a target.
func Receiver[T any](target any) (T, error) {
	recv, ok := target.(T)
	if !ok {
		return recv, fmt.Errorf("%w: want %s, got %T", ErrReceiver, reflect.TypeFor[T](), target)
	}
	return recv, nil
}

// ConvertTo produces a value of type t from v. Assignable values pass through,
// integers widen to any integer or float type, floats to any float type, and
// strings convert between string types. nil binds to nillable types.
func ConvertTo(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: cannot use nil as %s", ErrArgType, t)
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	src := value.KindOf(v)
	switch {
	case src == value.KindInteger && (isIntegerKind(t.Kind()) || isFloatKind(t.Kind())),
		(src == value.KindFloat || src == value.KindDouble) && isFloatKind(t.Kind()),
		src == value.KindString && t.Kind() == reflect.String:
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %T as %s", ErrArgType, v, t)
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
