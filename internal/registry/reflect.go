package registry

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// Reflect builds the registration of t from its exported fields and method set.
// Fields of pointer-to-struct types are read through the pointer; promoted
// fields are included. A method's arity is its parameter count.
func Reflect(t reflect.Type) *TypeInfo {
	ti := NewTypeInfo(t)
	reflectFields(ti, t)

	offset := 1
	if t.Kind() == reflect.Interface {
		offset = 0
	}
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		ti.AddMethod(m.Name, m.Type.NumIn()-offset, methodInvoker(t, i))
	}
	return ti
}

func reflectFields(ti *TypeInfo, t reflect.Type) {
	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return
	}
	for _, f := range reflect.VisibleFields(st) {
		if !f.IsExported() {
			continue
		}
		ti.AddField(f.Name, fieldGetter(st, f.Index))
	}
}

func fieldGetter(st reflect.Type, index []int) Getter {
	return func(target any) (any, bool) {
		v := reflect.ValueOf(target)
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}
		if !v.IsValid() || v.Type() != st {
			return nil, false
		}
		fv, err := v.FieldByIndexErr(index)
		if err != nil || !fv.CanInterface() {
			return nil, false
		}
		return fv.Interface(), true
	}
}

func methodInvoker(t reflect.Type, index int) Invoker {
	return func(target any, args []any) (any, error) {
		recv := reflect.ValueOf(target)
		if !recv.IsValid() || recv.Type() != t {
			return nil, fmt.Errorf("%w: want %s, got %T", ErrReceiver, t, target)
		}
		return CallFunc(recv.Method(index), args)
	}
}

// FuncCandidate wraps a Go func value as a candidate. The target is ignored on invocation.
func FuncCandidate(name string, fn any) (Candidate, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return Candidate{}, fmt.Errorf("%s: expected a function, got %T", name, fn)
	}
	return Candidate{
		Name:  name,
		Arity: rv.Type().NumIn(),
		Invoke: func(_ any, args []any) (any, error) {
			return CallFunc(rv, args)
		},
	}, nil
}

// AddStaticFunc registers fn as a static overload of name.
func (ti *TypeInfo) AddStaticFunc(name string, fn any) error {
	c, err := FuncCandidate(name, fn)
	if err != nil {
		return err
	}
	ti.AddStatic(name, c.Arity, c.Invoke)
	return nil
}

// CallFunc binds args to fn's parameters and calls it. A trailing non-nil
// error result is returned as the error; multiple remaining results come back
// as []any.
func CallFunc(fn reflect.Value, args []any) (any, error) {
	ft := fn.Type()
	in, err := bindArgs(ft, args)
	if err != nil {
		return nil, err
	}
	return unpackResults(ft, fn.Call(in))
}

func bindArgs(ft reflect.Type, args []any) ([]reflect.Value, error) {
	n := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("%w: want at least %d, got %d", ErrArgCount, n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrArgCount, n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		pt := paramType(ft, i)
		v, err := ConvertTo(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

func paramType(ft reflect.Type, i int) reflect.Type {
	last := ft.NumIn() - 1
	if ft.IsVariadic() && i >= last {
		return ft.In(last).Elem()
	}
	return ft.In(i)
}

func unpackResults(ft reflect.Type, out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && ft.Out(n-1) == errorType {
		if errv := out[n-1]; !errv.IsNil() {
			return nil, errv.Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = v.Interface()
	}
	return vals, nil
}
