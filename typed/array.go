package typed

import (
	"github.com/wippyai/wasm-heap/kind"
)

// Array is a fixed-width numeric array tagged with its element kind.
type Array interface {
	Kind() kind.Kind
	Len() int
	// At returns element i widened to its domain.
	At(i int) Value
	// Put stores v at i, converting it to the array's kind with Convert.
	Put(i int, v Value)
}

// Slice adapts a Go slice to Array. Writes go to the slice itself.
type Slice[T kind.Number] []T

// Of wraps a Go slice.
func Of[T kind.Number](s []T) Slice[T] { return Slice[T](s) }

func (s Slice[T]) Kind() kind.Kind { return kind.Of[T]() }

func (s Slice[T]) Len() int { return len(s) }

func (s Slice[T]) At(i int) Value {
	k := kind.Of[T]()
	switch k.Domain() {
	case kind.DomainSigned:
		return Value{bits: uint64(int64(s[i])), kind: k}
	case kind.DomainUnsigned:
		return Value{bits: uint64(s[i]), kind: k}
	}
	return Convert(FloatValue(float64(s[i])), k)
}

func (s Slice[T]) Put(i int, v Value) {
	switch kind.Of[T]().Domain() {
	case kind.DomainSigned:
		s[i] = T(v.Int())
	case kind.DomainUnsigned:
		s[i] = T(v.Uint())
	default:
		s[i] = T(v.Float())
	}
}

// copyFrom bulk-copies src when it is a slice of the same element type.
func (s Slice[T]) copyFrom(src Array, off int) bool {
	o, ok := src.(Slice[T])
	if !ok {
		return false
	}
	copy(s[off:], o)
	return true
}

// Wrap converts Go numeric slices and existing Arrays to an Array.
// The mapping from Go element type to kind is fixed: []uint64 and []int64
// map to the 64-bit integer kinds.
func Wrap(x any) (Array, bool) {
	switch v := x.(type) {
	case Array:
		return v, true
	case []uint8:
		return Slice[uint8](v), true
	case []int8:
		return Slice[int8](v), true
	case []uint16:
		return Slice[uint16](v), true
	case []int16:
		return Slice[int16](v), true
	case []uint32:
		return Slice[uint32](v), true
	case []int32:
		return Slice[int32](v), true
	case []uint64:
		return Slice[uint64](v), true
	case []int64:
		return Slice[int64](v), true
	case []float32:
		return Slice[float32](v), true
	case []float64:
		return Slice[float64](v), true
	}
	return nil, false
}

// New allocates a Go-backed array of kind k.
func New(k kind.Kind, n int) Array {
	switch k {
	case kind.Uint8:
		return make(Slice[uint8], n)
	case kind.Int8:
		return make(Slice[int8], n)
	case kind.Uint16:
		return make(Slice[uint16], n)
	case kind.Int16:
		return make(Slice[int16], n)
	case kind.Uint32:
		return make(Slice[uint32], n)
	case kind.Int32:
		return make(Slice[int32], n)
	case kind.BigUint64:
		return make(Slice[uint64], n)
	case kind.BigInt64:
		return make(Slice[int64], n)
	case kind.Float32:
		return make(Slice[float32], n)
	case kind.Float64:
		return make(Slice[float64], n)
	}
	return nil
}

// ToSlice copies a into a new Go slice of T using Convert semantics.
func ToSlice[T kind.Number](a Array) []T {
	out := make(Slice[T], a.Len())
	for i := range out {
		out.Put(i, a.At(i))
	}
	return out
}
