package kind

import (
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-heap/errors"
)

// Kind identifies the fixed-width element type of an array.
type Kind uint8

const (
	Invalid Kind = iota
	Uint8
	Int8
	Uint16
	Int16
	Uint32
	Int32
	BigUint64
	BigInt64
	Float32
	Float64
)

// Number is the set of Go element types with a matching Kind.
type Number interface {
	uint8 | int8 | uint16 | int16 | uint32 | int32 | uint64 | int64 | float32 | float64
}

// Domain is the numeric domain a kind's values live in.
type Domain uint8

const (
	DomainNone Domain = iota
	DomainUnsigned
	DomainSigned
	DomainFloat
)

var names = [...]string{
	Invalid:   "Invalid",
	Uint8:     "Uint8",
	Int8:      "Int8",
	Uint16:    "Uint16",
	Int16:     "Int16",
	Uint32:    "Uint32",
	Int32:     "Int32",
	BigUint64: "BigUint64",
	BigInt64:  "BigInt64",
	Float32:   "Float32",
	Float64:   "Float64",
}

var sizes = [...]uint32{
	Uint8: 1, Int8: 1,
	Uint16: 2, Int16: 2,
	Uint32: 4, Int32: 4, Float32: 4,
	BigUint64: 8, BigInt64: 8, Float64: 8,
}

// All returns every valid kind in declaration order.
func All() []Kind {
	return []Kind{Uint8, Int8, Uint16, Int16, Uint32, Int32, BigUint64, BigInt64, Float32, Float64}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k > Invalid && k <= Float64
}

// Size returns the element width in bytes, or 0 for an invalid kind.
func (k Kind) Size() uint32 {
	if !k.Valid() {
		return 0
	}
	return sizes[k]
}

func (k Kind) String() string {
	if int(k) >= len(names) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return names[k]
}

// Domain returns the numeric domain of k.
func (k Kind) Domain() Domain {
	switch k {
	case Uint8, Uint16, Uint32, BigUint64:
		return DomainUnsigned
	case Int8, Int16, Int32, BigInt64:
		return DomainSigned
	case Float32, Float64:
		return DomainFloat
	}
	return DomainNone
}

// Signed reports whether k is a signed integer kind.
func (k Kind) Signed() bool { return k.Domain() == DomainSigned }

// Float reports whether k is a floating-point kind.
func (k Kind) Float() bool { return k.Domain() == DomainFloat }

// Big reports whether k is a 64-bit integer kind whose values exceed the
// exactly representable float64 range.
func (k Kind) Big() bool { return k == BigUint64 || k == BigInt64 }

// MinInt returns the smallest value of an integer kind.
func (k Kind) MinInt() int64 {
	switch k {
	case Int8:
		return math.MinInt8
	case Int16:
		return math.MinInt16
	case Int32:
		return math.MinInt32
	case BigInt64:
		return math.MinInt64
	}
	return 0
}

// MaxUint returns the largest value of an integer kind as uint64.
func (k Kind) MaxUint() uint64 {
	switch k {
	case Uint8:
		return math.MaxUint8
	case Int8:
		return math.MaxInt8
	case Uint16:
		return math.MaxUint16
	case Int16:
		return math.MaxInt16
	case Uint32:
		return math.MaxUint32
	case Int32:
		return math.MaxInt32
	case BigUint64:
		return math.MaxUint64
	case BigInt64:
		return math.MaxInt64
	}
	return 0
}

// Traits describes the values a kind can represent.
type Traits struct {
	Lower   float64 // smallest representable value
	Upper   float64 // largest representable value
	Big     bool    // 64-bit integer kind
	Special bool    // holds fractions, infinities and NaN
}

// Traits returns the representable range of k. Floating-point kinds are
// unbounded and support special values.
func (k Kind) Traits() Traits {
	if k.Float() {
		return Traits{Lower: math.Inf(-1), Upper: math.Inf(1), Special: true}
	}
	return Traits{
		Lower: float64(k.MinInt()),
		Upper: float64(k.MaxUint()),
		Big:   k.Big(),
	}
}

// Of returns the kind matching the Go element type T.
func Of[T Number]() Kind {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return Uint8
	case int8:
		return Int8
	case uint16:
		return Uint16
	case int16:
		return Int16
	case uint32:
		return Uint32
	case int32:
		return Int32
	case uint64:
		return BigUint64
	case int64:
		return BigInt64
	case float32:
		return Float32
	case float64:
		return Float64
	}
	return Invalid
}

var aliases = map[string]Kind{
	"u8": Uint8, "s8": Int8, "i8": Int8,
	"u16": Uint16, "s16": Int16, "i16": Int16,
	"u32": Uint32, "s32": Int32, "i32": Int32,
	"u64": BigUint64, "s64": BigInt64, "i64": BigInt64,
	"uint64": BigUint64, "int64": BigInt64,
	"f32": Float32, "f64": Float64,
}

// Parse resolves a kind by name. It accepts the canonical names ("Float64"),
// lower-case forms ("float64"), WIT primitive names ("f64") and the
// "<Kind>WasmArray" and "<Kind>Array" class names.
func Parse(name string) (Kind, error) {
	n := strings.TrimSpace(name)
	n = strings.TrimSuffix(n, "WasmArray")
	n = strings.TrimSuffix(n, "Array")
	lower := strings.ToLower(n)
	if k, ok := aliases[lower]; ok {
		return k, nil
	}
	for _, k := range All() {
		if strings.ToLower(names[k]) == lower {
			return k, nil
		}
	}
	return Invalid, errors.UnknownKind(name)
}

// MustParse is like Parse but panics on unknown names.
func MustParse(name string) Kind {
	k, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return k
}
