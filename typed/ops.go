package typed

import (
	"iter"
	"math"
	"sort"
)

type copier interface {
	copyFrom(src Array, off int) bool
}

// Copy writes src into dst starting at element off using Convert semantics.
// Same-kind byte views and same-type slices are copied in bulk.
// The caller guarantees dst.Len() >= off+src.Len().
func Copy(dst, src Array, off int) {
	if c, ok := dst.(copier); ok && c.copyFrom(src, off) {
		return
	}
	for i := range src.Len() {
		dst.Put(off+i, src.At(i))
	}
}

// Fill stores v into elements [start, end).
func Fill(a Array, v Value, start, end int) {
	v = Convert(v, a.Kind())
	for i := start; i < end; i++ {
		a.Put(i, v)
	}
}

// All iterates index/value pairs.
func All(a Array) iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i := range a.Len() {
			if !yield(i, a.At(i)) {
				return
			}
		}
	}
}

// Values iterates element values.
func Values(a Array) iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for i := range a.Len() {
			if !yield(a.At(i)) {
				return
			}
		}
	}
}

// Keys iterates element indices.
func Keys(a Array) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range a.Len() {
			if !yield(i) {
				return
			}
		}
	}
}

func ForEach(a Array, fn func(i int, v Value)) {
	for i := range a.Len() {
		fn(i, a.At(i))
	}
}

// Map applies fn to each element and returns a detached array of the same kind.
func Map(a Array, fn func(i int, v Value) Value) Bytes {
	out := MakeBytes(a.Kind(), a.Len())
	for i := range a.Len() {
		out.Put(i, fn(i, a.At(i)))
	}
	return out
}

// Filter returns a detached array holding the elements fn accepts.
func Filter(a Array, fn func(i int, v Value) bool) Bytes {
	keep := make([]int, 0, a.Len())
	for i := range a.Len() {
		if fn(i, a.At(i)) {
			keep = append(keep, i)
		}
	}
	out := MakeBytes(a.Kind(), len(keep))
	for j, i := range keep {
		out.Put(j, a.At(i))
	}
	return out
}

func Every(a Array, fn func(i int, v Value) bool) bool {
	for i := range a.Len() {
		if !fn(i, a.At(i)) {
			return false
		}
	}
	return true
}

func Some(a Array, fn func(i int, v Value) bool) bool {
	for i := range a.Len() {
		if fn(i, a.At(i)) {
			return true
		}
	}
	return false
}

// Reduce folds elements from the left.
func Reduce(a Array, fn func(acc, v Value) Value, init Value) Value {
	acc := init
	for i := range a.Len() {
		acc = fn(acc, a.At(i))
	}
	return acc
}

// ReduceRight folds elements from the right.
func ReduceRight(a Array, fn func(acc, v Value) Value, init Value) Value {
	acc := init
	for i := a.Len() - 1; i >= 0; i-- {
		acc = fn(acc, a.At(i))
	}
	return acc
}

// IndexOf returns the first index holding v, or -1.
func IndexOf(a Array, v Value) int {
	for i := range a.Len() {
		if a.At(i).Equal(v) {
			return i
		}
	}
	return -1
}

// At returns element i, counting from the end when i is negative.
func At(a Array, i int) (Value, bool) {
	if i < 0 {
		i += a.Len()
	}
	if i < 0 || i >= a.Len() {
		return Value{}, false
	}
	return a.At(i), true
}

type sorter struct{ Array }

func (s sorter) Less(i, j int) bool { return less(s.At(i), s.At(j)) }

func (s sorter) Swap(i, j int) {
	x, y := s.At(i), s.At(j)
	s.Put(i, y)
	s.Put(j, x)
}

// Sort orders a in place numerically, NaN last.
func Sort(a Array) {
	if si, ok := a.(sort.Interface); ok {
		sort.Sort(si)
		return
	}
	sort.Sort(sorter{a})
}

// Reverse reverses a in place.
func Reverse(a Array) {
	for i, j := 0, a.Len()-1; i < j; i, j = i+1, j-1 {
		x, y := a.At(i), a.At(j)
		a.Put(i, y)
		a.Put(j, x)
	}
}

// Equal reports whether a and b have the same length and numerically equal
// elements. Kinds may differ.
func Equal(a, b Array) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Len() {
		if !a.At(i).Equal(b.At(i)) {
			return false
		}
	}
	return true
}

func less(a, b Value) bool {
	if a.kind.Domain() == b.kind.Domain() && !a.kind.Float() {
		if a.kind.Signed() {
			return int64(a.bits) < int64(b.bits)
		}
		return a.bits < b.bits
	}
	x, y := a.Float(), b.Float()
	if math.IsNaN(x) {
		return false
	}
	return x < y || math.IsNaN(y)
}
