package heap

import (
	"fmt"
	"iter"
	"runtime"

	"github.com/wippyai/wasm-heap/coerce"
	"github.com/wippyai/wasm-heap/errors"
	"github.com/wippyai/wasm-heap/kind"
	"github.com/wippyai/wasm-heap/typed"
)

// NoID is the allocation id of views.
const NoID = -1

// Freed is the offset reported by a released owner.
const Freed = -1

// Array is a typed handle over a byte range in a space. It is either the
// owner of an allocation or a view that shares bytes with one.
//
// Element access always goes through the space's current buffer, so a handle
// stays valid across buffer growth. The typed.Bytes returned by Elements and
// Subarray do not.
type Array struct {
	reg     *Registry
	space   *Space
	owner   Owner
	cleanup runtime.Cleanup
	id      int
	length  int
	offset  uint32
	kind    kind.Kind
	freed   bool
	tracked bool
}

// Kind returns the element kind.
func (a *Array) Kind() kind.Kind { return a.kind }

// Len returns the element count.
func (a *Array) Len() int { return a.length }

// Space returns the id of the space holding the bytes.
func (a *Array) Space() SpaceID { return a.space.id }

// ID returns the allocation id, or NoID for views.
func (a *Array) ID() int { return a.id }

// Offset returns the byte offset, or Freed after the owner released it.
func (a *Array) Offset() int {
	if a.freed {
		return Freed
	}
	return int(a.offset)
}

// ByteLen returns the size of the range in bytes.
func (a *Array) ByteLen() int { return a.length * int(a.kind.Size()) }

// Owner returns who owns the bytes.
func (a *Array) Owner() Owner { return a.owner }

// Freed reports whether the bytes have been released, either by this handle
// or by the owner it views.
func (a *Array) Freed() bool {
	return a.freed || (a.owner.ref != nil && a.owner.ref.freed)
}

func (a *Array) String() string {
	if a.Freed() {
		return fmt.Sprintf("%sArray(space=%d id=%d freed)", a.kind, a.space.id, a.id)
	}
	return fmt.Sprintf("%sArray(space=%d id=%d offset=%d len=%d owner=%s)",
		a.kind, a.space.id, a.id, a.offset, a.length, a.owner)
}

// Elements returns a little-endian view over the handle's bytes in the
// current buffer. The view is empty once the bytes are freed or when the
// range lies outside the buffer. Fetch it again after any allocation in the
// same space.
func (a *Array) Elements() typed.Bytes {
	b, err := a.elements(errors.PhaseAccess)
	if err != nil {
		return typed.NewBytes(a.kind, nil)
	}
	return b
}

func (a *Array) elements(phase errors.Phase) (typed.Bytes, error) {
	if a.Freed() {
		return typed.Bytes{}, errors.Freed(phase)
	}
	buf := a.space.module.Buffer()
	end := uint64(a.offset) + uint64(a.ByteLen())
	if end > uint64(len(buf)) {
		return typed.Bytes{}, errors.New(phase, errors.KindOutOfBounds).
			To(a.kind.String()).
			Value(a.offset).
			Detail("range [%d, %d) outside buffer of %d bytes", a.offset, end, len(buf)).
			Build()
	}
	return typed.NewBytes(a.kind, buf[a.offset:end]), nil
}

func (a *Array) checkRange(phase errors.Phase, start, end int) error {
	if start < 0 || end < start || end > a.length {
		return errors.RangeOutOfBounds(phase, start, end, a.length)
	}
	return nil
}

// Fill stores v into elements [start, end) with plain conversion.
func (a *Array) Fill(v any, start, end int) error {
	val, ok := typed.ValueOf(v)
	if !ok {
		return errors.TypeMismatch(errors.PhaseAccess, v, a.kind.String())
	}
	if err := a.checkRange(errors.PhaseAccess, start, end); err != nil {
		return err
	}
	dst, err := a.elements(errors.PhaseAccess)
	if err != nil {
		return err
	}
	typed.Fill(dst, val, start, end)
	return nil
}

// Set writes src starting at element offset with plain conversion. src may
// be a handle, a typed.Array, a Go numeric slice or a []any of Go numbers.
// Nothing is written when src does not fit.
func (a *Array) Set(src any, offset int) error {
	if items, ok := src.([]any); ok {
		return a.setValues(items, offset)
	}
	arr, err := asArray(src, errors.PhaseAccess)
	if err != nil {
		return err
	}
	if err := a.checkRange(errors.PhaseAccess, offset, offset+arr.Len()); err != nil {
		return err
	}
	dst, err := a.elements(errors.PhaseAccess)
	if err != nil {
		return err
	}
	typed.Copy(dst, arr, offset)
	return nil
}

func (a *Array) setValues(items []any, offset int) error {
	vals := make([]typed.Value, len(items))
	for i, item := range items {
		v, ok := typed.ValueOf(item)
		if !ok {
			return errors.TypeMismatch(errors.PhaseAccess, item, a.kind.String())
		}
		vals[i] = v
	}
	if err := a.checkRange(errors.PhaseAccess, offset, offset+len(vals)); err != nil {
		return err
	}
	dst, err := a.elements(errors.PhaseAccess)
	if err != nil {
		return err
	}
	for i, v := range vals {
		dst.Put(offset+i, v)
	}
	return nil
}

// SafeSet copies src into the handle through the coercion engine.
func (a *Array) SafeSet(src any, opts coerce.Options) (coerce.Result, error) {
	if h, ok := src.(*Array); ok {
		b, err := h.elements(errors.PhaseCopy)
		if err != nil {
			return coerce.Result{}, err
		}
		src = b
	}
	dst, err := a.elements(errors.PhaseCopy)
	if err != nil {
		return coerce.Result{}, err
	}
	return coerce.Copy(src, dst, opts)
}

// Slice returns a detached copy of elements [start, end).
func (a *Array) Slice(start, end int) (typed.Bytes, error) {
	if err := a.checkRange(errors.PhaseAccess, start, end); err != nil {
		return typed.Bytes{}, err
	}
	b, err := a.elements(errors.PhaseAccess)
	if err != nil {
		return typed.Bytes{}, err
	}
	return b.Sub(start, end).Clone(), nil
}

// Subarray returns a live view of elements [start, end) in the current
// buffer.
func (a *Array) Subarray(start, end int) (typed.Bytes, error) {
	if err := a.checkRange(errors.PhaseAccess, start, end); err != nil {
		return typed.Bytes{}, err
	}
	b, err := a.elements(errors.PhaseAccess)
	if err != nil {
		return typed.Bytes{}, err
	}
	return b.Sub(start, end), nil
}

// Clone allocates a new owner in the same space with the same contents.
func (a *Array) Clone() (*Array, error) {
	return a.CloneTo(a.space.id)
}

// CloneTo allocates a new owner in space with the same contents.
func (a *Array) CloneTo(space SpaceID) (*Array, error) {
	if a.Freed() {
		return nil, errors.Freed(errors.PhaseAllocate)
	}
	c, err := a.reg.Allocate(space, a.length, a.kind)
	if err != nil {
		return nil, err
	}
	// Both views are fetched after allocating: the allocation may have
	// replaced the buffer.
	src, err := a.elements(errors.PhaseAccess)
	if err != nil {
		c.Free()
		return nil, err
	}
	typed.Copy(c.Elements(), src, 0)
	return c, nil
}

// View returns a non-owning handle over elements [start, end). Views of
// views point at the same owner as their parent.
func (a *Array) View(start, end int) (*Array, error) {
	if err := a.checkRange(errors.PhaseView, start, end); err != nil {
		return nil, err
	}
	if a.Freed() {
		return nil, errors.Freed(errors.PhaseView)
	}
	owner := a.owner
	if owner.Self() {
		owner = Owner{tag: OwnerHandle, ref: a}
	}
	return &Array{
		reg:    a.reg,
		space:  a.space,
		owner:  owner,
		id:     NoID,
		offset: a.offset + uint32(start)*a.kind.Size(),
		length: end - start,
		kind:   a.kind,
	}, nil
}

// Free releases the allocation when a owns it. It is a no-op for views and
// for owners already freed.
func (a *Array) Free() {
	if !a.owner.Self() || a.freed {
		return
	}
	if a.tracked {
		a.cleanup.Stop()
		a.tracked = false
	}
	a.reg.sweep(a.space)
	a.reg.release(a.space, a.id, EventReleased)
	a.freed = true
}

// At returns element i, counting from the end when i is negative.
func (a *Array) At(i int) (typed.Value, bool) {
	return typed.At(a.Elements(), i)
}

// Values iterates element values.
func (a *Array) Values() iter.Seq[typed.Value] {
	return func(yield func(typed.Value) bool) {
		for v := range typed.Values(a.Elements()) {
			if !yield(v) {
				return
			}
		}
	}
}

// Keys iterates element indices.
func (a *Array) Keys() iter.Seq[int] {
	return typed.Keys(a.Elements())
}

// All iterates index/value pairs.
func (a *Array) All() iter.Seq2[int, typed.Value] {
	return func(yield func(int, typed.Value) bool) {
		for i, v := range typed.All(a.Elements()) {
			if !yield(i, v) {
				return
			}
		}
	}
}

// ForEach calls fn for every element in order.
func (a *Array) ForEach(fn func(i int, v typed.Value)) {
	typed.ForEach(a.Elements(), fn)
}

// Map returns a detached array of fn applied to every element.
func (a *Array) Map(fn func(i int, v typed.Value) typed.Value) typed.Bytes {
	return typed.Map(a.Elements(), fn)
}

// Filter returns a detached array of the elements fn accepts.
func (a *Array) Filter(fn func(i int, v typed.Value) bool) typed.Bytes {
	return typed.Filter(a.Elements(), fn)
}

// Every reports whether fn accepts every element.
func (a *Array) Every(fn func(i int, v typed.Value) bool) bool {
	return typed.Every(a.Elements(), fn)
}

// Some reports whether fn accepts any element.
func (a *Array) Some(fn func(i int, v typed.Value) bool) bool {
	return typed.Some(a.Elements(), fn)
}

// Reduce folds the elements from first to last, starting from init.
func (a *Array) Reduce(fn func(acc, v typed.Value) typed.Value, init typed.Value) typed.Value {
	return typed.Reduce(a.Elements(), fn, init)
}

// ReduceRight folds the elements from last to first, starting from init.
func (a *Array) ReduceRight(fn func(acc, v typed.Value) typed.Value, init typed.Value) typed.Value {
	return typed.ReduceRight(a.Elements(), fn, init)
}

// IndexOf returns the first index holding a value equal to v, or -1.
func (a *Array) IndexOf(v typed.Value) int {
	return typed.IndexOf(a.Elements(), v)
}

// Sort orders the elements in place, NaN last.
func (a *Array) Sort() {
	typed.Sort(a.Elements())
}

// Reverse reverses the elements in place.
func (a *Array) Reverse() {
	typed.Reverse(a.Elements())
}

// asArray resolves the array-like sources accepted by handle methods.
func asArray(src any, phase errors.Phase) (typed.Array, error) {
	if h, ok := src.(*Array); ok {
		return h.elements(phase)
	}
	if arr, ok := typed.Wrap(src); ok {
		return arr, nil
	}
	return nil, errors.TypeMismatch(phase, src, "typed array")
}
