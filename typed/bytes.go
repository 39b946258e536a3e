package typed

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/wasm-heap/kind"
)

// Bytes is an Array over a little-endian byte region, typically a window
// into linear memory. It does not own the region; writes are visible to
// every other view of the same bytes.
type Bytes struct {
	buf  []byte
	kind kind.Kind
}

// NewBytes views buf as elements of kind k. Trailing bytes that do not
// form a whole element are ignored.
func NewBytes(k kind.Kind, buf []byte) Bytes {
	size := int(k.Size())
	if size == 0 {
		return Bytes{kind: k}
	}
	n := len(buf) / size
	return Bytes{buf: buf[:n*size : n*size], kind: k}
}

// MakeBytes allocates a zeroed Go-heap array of n elements.
func MakeBytes(k kind.Kind, n int) Bytes {
	return NewBytes(k, make([]byte, n*int(k.Size())))
}

func (b Bytes) Kind() kind.Kind { return b.kind }

func (b Bytes) Len() int {
	size := int(b.kind.Size())
	if size == 0 {
		return 0
	}
	return len(b.buf) / size
}

// Raw returns the underlying bytes.
func (b Bytes) Raw() []byte { return b.buf }

// Clone returns a copy backed by fresh Go memory.
func (b Bytes) Clone() Bytes {
	buf := make([]byte, len(b.buf))
	copy(buf, b.buf)
	return Bytes{buf: buf, kind: b.kind}
}

// Sub returns elements [start, end) sharing the same bytes.
func (b Bytes) Sub(start, end int) Bytes {
	size := int(b.kind.Size())
	return Bytes{buf: b.buf[start*size : end*size : end*size], kind: b.kind}
}

func (b Bytes) At(i int) Value {
	switch b.kind {
	case kind.Uint8:
		return Value{bits: uint64(b.buf[i]), kind: b.kind}
	case kind.Int8:
		return Value{bits: uint64(int64(int8(b.buf[i]))), kind: b.kind}
	case kind.Uint16:
		return Value{bits: uint64(binary.LittleEndian.Uint16(b.buf[i*2:])), kind: b.kind}
	case kind.Int16:
		return Value{bits: uint64(int64(int16(binary.LittleEndian.Uint16(b.buf[i*2:])))), kind: b.kind}
	case kind.Uint32:
		return Value{bits: uint64(binary.LittleEndian.Uint32(b.buf[i*4:])), kind: b.kind}
	case kind.Int32:
		return Value{bits: uint64(int64(int32(binary.LittleEndian.Uint32(b.buf[i*4:])))), kind: b.kind}
	case kind.BigUint64, kind.BigInt64, kind.Float64:
		return Value{bits: binary.LittleEndian.Uint64(b.buf[i*8:]), kind: b.kind}
	case kind.Float32:
		f := math.Float32frombits(binary.LittleEndian.Uint32(b.buf[i*4:]))
		return Value{bits: math.Float64bits(float64(f)), kind: b.kind}
	}
	panic("typed: invalid kind " + b.kind.String())
}

func (b Bytes) Put(i int, v Value) {
	switch b.kind {
	case kind.Uint8:
		b.buf[i] = byte(v.Uint())
	case kind.Int8:
		b.buf[i] = byte(v.Int())
	case kind.Uint16:
		binary.LittleEndian.PutUint16(b.buf[i*2:], uint16(v.Uint()))
	case kind.Int16:
		binary.LittleEndian.PutUint16(b.buf[i*2:], uint16(v.Int()))
	case kind.Uint32:
		binary.LittleEndian.PutUint32(b.buf[i*4:], uint32(v.Uint()))
	case kind.Int32:
		binary.LittleEndian.PutUint32(b.buf[i*4:], uint32(v.Int()))
	case kind.BigUint64:
		binary.LittleEndian.PutUint64(b.buf[i*8:], v.Uint())
	case kind.BigInt64:
		binary.LittleEndian.PutUint64(b.buf[i*8:], uint64(v.Int()))
	case kind.Float32:
		binary.LittleEndian.PutUint32(b.buf[i*4:], math.Float32bits(float32(v.Float())))
	case kind.Float64:
		binary.LittleEndian.PutUint64(b.buf[i*8:], math.Float64bits(v.Float()))
	default:
		panic("typed: invalid kind " + b.kind.String())
	}
}

// copyFrom bulk-copies src when it is a byte view of the same kind.
func (b Bytes) copyFrom(src Array, off int) bool {
	o, ok := src.(Bytes)
	if !ok || o.kind != b.kind {
		return false
	}
	copy(b.buf[off*int(b.kind.Size()):], o.buf)
	return true
}

// Less orders elements numerically with NaN last.
func (b Bytes) Less(i, j int) bool { return less(b.At(i), b.At(j)) }

// Swap exchanges elements i and j in place.
func (b Bytes) Swap(i, j int) {
	size := int(b.kind.Size())
	x, y := b.buf[i*size:(i+1)*size], b.buf[j*size:(j+1)*size]
	for k := range x {
		x[k], y[k] = y[k], x[k]
	}
}
