package heap

import (
	"github.com/wippyai/wasm-heap/coerce"
	"github.com/wippyai/wasm-heap/errors"
	"github.com/wippyai/wasm-heap/kind"
	"github.com/wippyai/wasm-heap/typed"
)

// Convert allocates a new owner in space and copies src into it through the
// coercion engine. With k == kind.Invalid the kind is taken from a typed
// source and defaults to Float64 for a []any. opts.Offset leaves that many
// leading zero elements. The allocation is freed when the copy fails.
func (r *Registry) Convert(space SpaceID, src any, k kind.Kind, opts coerce.Options) (*Array, error) {
	var n int
	srcKind := kind.Float64
	switch s := src.(type) {
	case *Array:
		if s.Freed() {
			return nil, errors.Freed(errors.PhaseConvert)
		}
		n, srcKind = s.Len(), s.Kind()
	case []any:
		n = len(s)
	default:
		arr, ok := typed.Wrap(src)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseConvert, src, "typed array")
		}
		n, srcKind = arr.Len(), arr.Kind()
	}
	if k == kind.Invalid {
		k = srcKind
	}
	if opts.Offset < 0 {
		return nil, errors.InvalidInput(errors.PhaseConvert, "negative destination offset")
	}

	dst, err := r.Allocate(space, n+opts.Offset, k)
	if err != nil {
		return nil, err
	}
	if _, err := dst.SafeSet(src, opts); err != nil {
		dst.Free()
		return nil, err
	}
	return dst, nil
}

// Convert converts through the default registry.
func Convert(space SpaceID, src any, k kind.Kind, opts coerce.Options) (*Array, error) {
	return Default().Convert(space, src, k, opts)
}
