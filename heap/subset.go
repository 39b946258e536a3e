package heap

import (
	"math"

	"github.com/wippyai/wasm-heap/errors"
	"github.com/wippyai/wasm-heap/typed"
)

// Selection picks source elements for Subset.
type Selection struct {
	indices []int
	mask    []bool
	remove  bool
	masked  bool
}

// Indices selects the given positions in order. Positions may repeat.
func Indices(idx ...int) Selection {
	return Selection{indices: idx}
}

// Remove drops the positions where mask is true and keeps the rest in
// source order.
func Remove(mask []bool) Selection {
	return Selection{mask: mask, remove: true, masked: true}
}

// Keep retains the positions where mask is true in source order.
func Keep(mask []bool) Selection {
	return Selection{mask: mask, masked: true}
}

// MaskOf turns numeric truthiness into a mask: zero and NaN are false.
func MaskOf(a typed.Array) []bool {
	mask := make([]bool, a.Len())
	for i := range mask {
		v := a.At(i)
		if v.Kind().Float() {
			f := v.Float()
			mask[i] = f != 0 && !math.IsNaN(f)
		} else {
			mask[i] = v.Uint() != 0
		}
	}
	return mask
}

// positions resolves sel against a source of length n.
func (sel Selection) positions(n int) ([]int, error) {
	if !sel.masked {
		for _, i := range sel.indices {
			if i < 0 || i >= n {
				return nil, errors.OutOfBounds(errors.PhaseSubset, i, n)
			}
		}
		return sel.indices, nil
	}

	if len(sel.mask) != n {
		return nil, errors.New(errors.PhaseSubset, errors.KindLengthMismatch).
			Value(len(sel.mask)).
			Detail("mask and source should have the same length: expected %d, got %d", n, len(sel.mask)).
			Build()
	}
	picks := make([]int, 0, n)
	for i, set := range sel.mask {
		if set != sel.remove {
			picks = append(picks, i)
		}
	}
	return picks, nil
}

// Subset copies the selected elements of src into buf, or into a new owner
// in src's space when buf is nil, and returns the destination. Selections
// and buf are validated before anything is allocated or written.
func Subset(src *Array, sel Selection, buf *Array) (*Array, error) {
	if src.Freed() {
		return nil, errors.Freed(errors.PhaseSubset)
	}
	picks, err := sel.positions(src.Len())
	if err != nil {
		return nil, err
	}

	dst := buf
	if dst == nil {
		dst, err = src.reg.Allocate(src.space.id, len(picks), src.kind)
		if err != nil {
			return nil, err
		}
	} else if dst.Len() != len(picks) {
		return nil, errors.LengthMismatch(errors.PhaseSubset, "output buffer", len(picks), dst.Len())
	}

	if err := copyPicks(src, dst, picks); err != nil {
		if buf == nil {
			dst.Free()
		}
		return nil, err
	}
	return dst, nil
}

// copyPicks fetches both element views after any allocation has happened.
func copyPicks(src, dst *Array, picks []int) error {
	in, err := src.elements(errors.PhaseSubset)
	if err != nil {
		return err
	}
	out, err := dst.elements(errors.PhaseSubset)
	if err != nil {
		return err
	}
	for j, i := range picks {
		out.Put(j, in.At(i))
	}
	return nil
}

// Subset is Subset(a, sel, buf).
func (a *Array) Subset(sel Selection, buf *Array) (*Array, error) {
	return Subset(a, sel, buf)
}
