package kind

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-heap/errors"
)

// FromWIT maps a WIT primitive (or an alias of one) to its element kind.
// Component bindings describe list element types this way.
func FromWIT(t wit.Type) (Kind, error) {
	switch typ := t.(type) {
	case wit.U8:
		return Uint8, nil
	case wit.S8:
		return Int8, nil
	case wit.U16:
		return Uint16, nil
	case wit.S16:
		return Int16, nil
	case wit.U32:
		return Uint32, nil
	case wit.S32:
		return Int32, nil
	case wit.U64:
		return BigUint64, nil
	case wit.S64:
		return BigInt64, nil
	case wit.F32:
		return Float32, nil
	case wit.F64:
		return Float64, nil
	case *wit.TypeDef:
		if inner, ok := typ.Kind.(wit.Type); ok {
			return FromWIT(inner)
		}
	}
	return Invalid, errors.New(errors.PhaseLookup, errors.KindUnknownKind).
		Detail("WIT type %T has no fixed-width element kind", t).
		Value(t).
		Build()
}

// WIT returns the WIT primitive for k, or nil for an invalid kind.
func (k Kind) WIT() wit.Type {
	switch k {
	case Uint8:
		return wit.U8{}
	case Int8:
		return wit.S8{}
	case Uint16:
		return wit.U16{}
	case Int16:
		return wit.S16{}
	case Uint32:
		return wit.U32{}
	case Int32:
		return wit.S32{}
	case BigUint64:
		return wit.U64{}
	case BigInt64:
		return wit.S64{}
	case Float32:
		return wit.F32{}
	case Float64:
		return wit.F64{}
	}
	return nil
}
