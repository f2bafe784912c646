// Package coercion implements the operand-driven semantics of the arithmetic
// operators used in generated expressions.
//
// Numeric operands widen to the widest kind present (Double > Float > Integer).
// Integer results use Go int arithmetic and wrap on overflow.
package coercion

import (
	"github.com/funvibe/dynrt/internal/config"
	"github.com/funvibe/dynrt/internal/diagnostics"
	"github.com/funvibe/dynrt/internal/value"
)

// Coercer evaluates operators and reports unsupported operands to its sink.
type Coercer struct {
	sink diagnostics.Sink
}

func New(sink diagnostics.Sink) *Coercer {
	if sink == nil {
		sink = diagnostics.Discard
	}
	return &Coercer{sink: sink}
}

type numericOp struct {
	ints    func(a, b int) int
	floats  func(a, b float32) float32
	doubles func(a, b float64) float64
}

var (
	addOp = numericOp{
		ints:    func(a, b int) int { return a + b },
		floats:  func(a, b float32) float32 { return a + b },
		doubles: func(a, b float64) float64 { return a + b },
	}
	subOp = numericOp{
		ints:    func(a, b int) int { return a - b },
		floats:  func(a, b float32) float32 { return a - b },
		doubles: func(a, b float64) float64 { return a - b },
	}
	mulOp = numericOp{
		ints:    func(a, b int) int { return a * b },
		floats:  func(a, b float32) float32 { return a * b },
		doubles: func(a, b float64) float64 { return a * b },
	}
	divOp = numericOp{
		ints:    func(a, b int) int { return a / b },
		floats:  func(a, b float32) float32 { return a / b },
		doubles: func(a, b float64) float64 { return a / b },
	}
)

// Add concatenates when either operand is a string, otherwise adds numerically.
// The boolean result is false when the operands are unsupported.
func (c *Coercer) Add(a, b any) (any, bool) {
	ka, kb := value.KindOf(a), value.KindOf(b)
	if ka == value.KindString || kb == value.KindString {
		return value.String(a) + value.String(b), true
	}
	return c.numeric(addOp, a, b, ka, kb)
}

// Subtract has no string form.
func (c *Coercer) Subtract(a, b any) (any, bool) {
	return c.numeric(subOp, a, b, value.KindOf(a), value.KindOf(b))
}

// Multiply has no string repetition form.
func (c *Coercer) Multiply(a, b any) (any, bool) {
	return c.numeric(mulOp, a, b, value.KindOf(a), value.KindOf(b))
}

// Divide refuses an integer division by zero; float kinds follow IEEE 754.
func (c *Coercer) Divide(a, b any) (any, bool) {
	ka, kb := value.KindOf(a), value.KindOf(b)
	if ka.IsNumeric() && kb.IsNumeric() && value.Widest(ka, kb) == value.KindInteger && value.AsInt(b) == 0 {
		c.sink.Print(config.MsgDivisionByZero, value.String(a), value.String(b))
		return nil, false
	}
	return c.numeric(divOp, a, b, ka, kb)
}

func (c *Coercer) numeric(op numericOp, a, b any, ka, kb value.Kind) (any, bool) {
	if !ka.IsNumeric() || !kb.IsNumeric() {
		c.sink.Print(config.MsgUnsupportedOperands, value.String(a), value.String(b))
		return nil, false
	}
	switch value.Widest(ka, kb) {
	case value.KindDouble:
		return op.doubles(value.AsFloat64(a), value.AsFloat64(b)), true
	case value.KindFloat:
		return op.floats(value.AsFloat32(a), value.AsFloat32(b)), true
	default:
		return op.ints(value.AsInt(a), value.AsInt(b)), true
	}
}
