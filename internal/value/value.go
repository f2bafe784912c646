// Package value classifies the Go values that flow through generated code.
package value

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Kind is the dynamic category of a value as seen by operators.
type Kind int

const (
	KindNil Kind = iota
	KindString
	KindInteger
	KindFloat
	KindDouble
	KindBool
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindString:
		return "String"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindBool:
		return "Boolean"
	case KindOther:
		return "Object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsNumeric reports whether k takes part in numeric widening.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat || k == KindDouble
}

// Widest returns the wider of two numeric kinds (Double > Float > Integer).
func Widest(a, b Kind) Kind {
	if a == KindDouble || b == KindDouble {
		return KindDouble
	}
	if a == KindFloat || b == KindFloat {
		return KindFloat
	}
	return KindInteger
}

// KindOf classifies v. Named types are classified by their underlying kind.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNil
	case string:
		return KindString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr:
		return KindInteger
	case float32:
		return KindFloat
	case float64:
		return KindDouble
	case bool:
		return KindBool
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindInteger
	case reflect.Float32:
		return KindFloat
	case reflect.Float64:
		return KindDouble
	case reflect.Bool:
		return KindBool
	default:
		return KindOther
	}
}

// AsInt converts a numeric value to int, truncating like a host narrowing cast.
func AsInt(v any) int {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return int(rv.Float())
	default:
		return 0
	}
}

// AsFloat32 converts a numeric value to float32.
func AsFloat32(v any) float32 {
	return float32(AsFloat64(v))
}

// AsFloat64 converts a numeric value to float64.
func AsFloat64(v any) float64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return 0
	}
}

// String renders v the way the source language's toString does:
// floats always carry a fractional part ("3.0"), nil is "nil".
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	}
	switch KindOf(v) {
	case KindString:
		return reflect.ValueOf(v).String()
	case KindFloat:
		return formatFloat(AsFloat64(v), 32)
	case KindDouble:
		return formatFloat(AsFloat64(v), 64)
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			return s
		}
	}
	return s + ".0"
}

// Box turns any Go integer into a boxed int. Every other value is returned unchanged.
func Box(v any) any {
	if KindOf(v) == KindInteger {
		return AsInt(v)
	}
	return v
}
