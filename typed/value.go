package typed

import (
	"math"
	"strconv"

	"github.com/wippyai/wasm-heap/kind"
)

// Value is a single element widened to its numeric domain.
// Signed integers are sign-extended, unsigned integers zero-extended and
// floats widened to float64.
type Value struct {
	bits uint64
	kind kind.Kind
}

// IntValue returns a signed 64-bit value.
func IntValue(v int64) Value {
	return Value{bits: uint64(v), kind: kind.BigInt64}
}

// UintValue returns an unsigned 64-bit value.
func UintValue(v uint64) Value {
	return Value{bits: v, kind: kind.BigUint64}
}

// FloatValue returns a 64-bit floating-point value.
func FloatValue(v float64) Value {
	return Value{bits: math.Float64bits(v), kind: kind.Float64}
}

// ValueOf converts a Go scalar to a Value. Booleans become 0 or 1.
func ValueOf(x any) (Value, bool) {
	switch v := x.(type) {
	case Value:
		return v, true
	case uint8:
		return Value{bits: uint64(v), kind: kind.Uint8}, true
	case int8:
		return Value{bits: uint64(int64(v)), kind: kind.Int8}, true
	case uint16:
		return Value{bits: uint64(v), kind: kind.Uint16}, true
	case int16:
		return Value{bits: uint64(int64(v)), kind: kind.Int16}, true
	case uint32:
		return Value{bits: uint64(v), kind: kind.Uint32}, true
	case int32:
		return Value{bits: uint64(int64(v)), kind: kind.Int32}, true
	case uint64:
		return UintValue(v), true
	case int64:
		return IntValue(v), true
	case uint:
		return UintValue(uint64(v)), true
	case int:
		return IntValue(int64(v)), true
	case uintptr:
		return UintValue(uint64(v)), true
	case float32:
		return Value{bits: math.Float64bits(float64(v)), kind: kind.Float32}, true
	case float64:
		return FloatValue(v), true
	case bool:
		if v {
			return Value{bits: 1, kind: kind.Uint8}, true
		}
		return Value{kind: kind.Uint8}, true
	}
	return Value{}, false
}

// Kind returns the kind the value was read from.
func (v Value) Kind() kind.Kind { return v.kind }

// Int returns the value as int64. Floats are truncated toward zero.
func (v Value) Int() int64 {
	if v.kind.Float() {
		return int64(v.Float())
	}
	return int64(v.bits)
}

// Uint returns the value as uint64. Negative values wrap.
func (v Value) Uint() uint64 {
	if v.kind.Float() {
		f := v.Float()
		if f < 0 {
			return uint64(int64(f))
		}
		return uint64(f)
	}
	return v.bits
}

// Float returns the value as float64.
func (v Value) Float() float64 {
	switch v.kind.Domain() {
	case kind.DomainFloat:
		return math.Float64frombits(v.bits)
	case kind.DomainSigned:
		return float64(int64(v.bits))
	}
	return float64(v.bits)
}

// Finite reports whether the value is neither infinite nor NaN.
func (v Value) Finite() bool {
	if !v.kind.Float() {
		return true
	}
	f := v.Float()
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Equal reports whether v and o hold the same number.
func (v Value) Equal(o Value) bool {
	vd, od := v.kind.Domain(), o.kind.Domain()
	switch {
	case vd == kind.DomainFloat || od == kind.DomainFloat:
		return v.Float() == o.Float()
	case vd == od:
		return v.bits == o.bits
	case vd == kind.DomainSigned:
		return int64(v.bits) >= 0 && v.bits == o.bits
	default:
		return int64(o.bits) >= 0 && v.bits == o.bits
	}
}

func (v Value) String() string {
	switch v.kind.Domain() {
	case kind.DomainFloat:
		f := v.Float()
		if f == math.Trunc(f) && math.Abs(f) < 1e21 {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	case kind.DomainSigned:
		return strconv.FormatInt(int64(v.bits), 10)
	}
	return strconv.FormatUint(v.bits, 10)
}

// Convert narrows v to kind k with plain Go conversion rules: integers wrap
// modulo the width and floats are truncated.
func Convert(v Value, k kind.Kind) Value {
	switch k {
	case kind.Uint8:
		return Value{bits: uint64(uint8(v.Uint())), kind: k}
	case kind.Int8:
		return Value{bits: uint64(int64(int8(v.Int()))), kind: k}
	case kind.Uint16:
		return Value{bits: uint64(uint16(v.Uint())), kind: k}
	case kind.Int16:
		return Value{bits: uint64(int64(int16(v.Int()))), kind: k}
	case kind.Uint32:
		return Value{bits: uint64(uint32(v.Uint())), kind: k}
	case kind.Int32:
		return Value{bits: uint64(int64(int32(v.Int()))), kind: k}
	case kind.BigUint64:
		return Value{bits: v.Uint(), kind: k}
	case kind.BigInt64:
		return Value{bits: uint64(v.Int()), kind: k}
	case kind.Float32:
		return Value{bits: math.Float64bits(float64(float32(v.Float()))), kind: k}
	case kind.Float64:
		return Value{bits: math.Float64bits(v.Float()), kind: k}
	}
	return v
}
