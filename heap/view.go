package heap

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-heap/errors"
	"github.com/wippyai/wasm-heap/kind"
)

// CreateView wraps length elements of kind k at byte offset in space. The
// memory belongs to someone else: the handle never frees it and the range is
// not validated until elements are accessed.
func (r *Registry) CreateView(space SpaceID, length int, offset uint32, k kind.Kind) (*Array, error) {
	if !k.Valid() {
		return nil, errors.UnknownKind(k.String())
	}
	if length < 0 {
		return nil, errors.New(errors.PhaseView, errors.KindInvalidInput).
			To(k.String()).
			Value(length).
			Detail("negative length %d", length).
			Build()
	}
	sp, err := r.Space(space)
	if err != nil {
		return nil, err
	}
	return &Array{
		reg:    r,
		space:  sp,
		owner:  Owner{tag: OwnerExternal},
		id:     NoID,
		offset: offset,
		length: length,
		kind:   k,
	}, nil
}

// CreateListView wraps a component-model list<T> that guest bindings
// returned as a (ptr, length) pair. elem must be a fixed-width numeric WIT
// type.
func (r *Registry) CreateListView(space SpaceID, elem wit.Type, ptr, length uint32) (*Array, error) {
	k, err := kind.FromWIT(elem)
	if err != nil {
		return nil, err
	}
	return r.CreateView(space, int(length), ptr, k)
}
