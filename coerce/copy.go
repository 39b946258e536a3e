package coerce

import (
	"fmt"
	"math"
	"math/big"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-heap/errors"
	"github.com/wippyai/wasm-heap/kind"
	"github.com/wippyai/wasm-heap/typed"
)

// genericName is the source name reported for heterogeneous collections.
const genericName = "Array"

// Path records how Copy moved the data.
type Path uint8

const (
	// PathSameKind is a bulk copy between identical kinds.
	PathSameKind Path = iota
	// PathContained is a bulk copy where every source value fits the
	// destination.
	PathContained
	// PathChecked validated every element individually.
	PathChecked
)

func (p Path) String() string {
	switch p {
	case PathSameKind:
		return "same-kind"
	case PathContained:
		return "contained"
	case PathChecked:
		return "checked"
	}
	return "unknown"
}

// Result describes a completed copy.
type Result struct {
	Path     Path
	Replaced int // elements replaced by the placeholder
}

// Copy writes src into dst starting at opts.Offset, checking that every value
// is representable in dst's kind. src may be a typed.Array, a Go numeric
// slice or a []any whose elements are Go numbers, bools, *big.Int or
// typed.Value; other elements are invalid values handled per opts.Action.
//
// A float with a fractional part is not representable in an integer kind,
// even inside its range: 2.5 into Int32 is replaced or rejected per
// opts.Action rather than truncated to 2. Plain typed.Copy truncates.
func Copy(src any, dst typed.Array, opts Options) (Result, error) {
	s, err := sourceOf(src)
	if err != nil {
		return Result{}, err
	}
	if opts.Offset < 0 {
		return Result{}, errors.InvalidInput(errors.PhaseCopy,
			fmt.Sprintf("negative destination offset %d", opts.Offset))
	}
	if need := s.len() + opts.Offset; dst.Len() < need {
		return Result{}, errors.New(errors.PhaseCopy, errors.KindLengthMismatch).
			From(s.name()).
			To(dst.Kind().String()).
			Value(need).
			Detail("source of length %d at offset %d does not fit destination of length %d",
				s.len(), opts.Offset, dst.Len()).
			Build()
	}

	if s.arr != nil {
		if s.arr.Kind() == dst.Kind() {
			typed.Copy(dst, s.arr, opts.Offset)
			return Result{Path: PathSameKind}, nil
		}
		if Contained(s.arr.Kind(), dst.Kind()) {
			typed.Copy(dst, s.arr, opts.Offset)
			return Result{Path: PathContained}, nil
		}
	}

	return checked(s, dst, opts)
}

// Contained reports whether every value of kind from is representable in
// kind to. Floating-point sources never fit integer destinations.
func Contained(from, to kind.Kind) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from.Float() && !to.Float() {
		return false
	}
	ft, tt := from.Traits(), to.Traits()
	return ft.Lower >= tt.Lower &&
		ft.Upper <= tt.Upper &&
		ft.Big == tt.Big &&
		(!ft.Special || tt.Special)
}

func checked(s source, dst typed.Array, opts Options) (Result, error) {
	res := Result{Path: PathChecked}
	to := dst.Kind()
	placeholder := replacement(opts.Placeholder, to)
	warned := false

	for i := range s.len() {
		n, raw := s.at(i)
		if v, ok := n.fit(to); ok {
			dst.Put(opts.Offset+i, v)
			continue
		}

		switch opts.Action {
		case ActionError:
			return res, errors.Unrepresentable(raw, s.name(), to.String())
		case ActionWarn:
			if !warned {
				warned = true
				opts.logger().Warn("replacing unrepresentable value",
					zap.String("value", fmt.Sprint(raw)),
					zap.String("from", s.name()),
					zap.Stringer("to", to),
					zap.Int("index", i),
					zap.Float64("placeholder", opts.Placeholder))
			}
		}
		dst.Put(opts.Offset+i, placeholder)
		res.Replaced++
	}
	return res, nil
}

func replacement(p float64, to kind.Kind) typed.Value {
	if to.Float() {
		return typed.FloatValue(p)
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return typed.IntValue(0)
	}
	p = math.Trunc(p)
	switch {
	case p >= 0 && p < 1<<64:
		return typed.UintValue(uint64(p))
	case p < 0 && p >= math.MinInt64:
		return typed.IntValue(int64(p))
	}
	// Out of 64-bit range: keep the low 64 bits.
	i, _ := big.NewFloat(p).Int(nil)
	return typed.UintValue(i.And(i, maxUint64).Uint64())
}

var maxUint64 = new(big.Int).SetUint64(math.MaxUint64)

type source struct {
	arr   typed.Array
	items []any
}

func sourceOf(src any) (source, error) {
	if items, ok := src.([]any); ok {
		return source{items: items}, nil
	}
	if arr, ok := typed.Wrap(src); ok {
		return source{arr: arr}, nil
	}
	return source{}, errors.TypeMismatch(errors.PhaseCopy, src, "typed array")
}

func (s source) len() int {
	if s.arr != nil {
		return s.arr.Len()
	}
	return len(s.items)
}

func (s source) name() string {
	if s.arr != nil {
		return s.arr.Kind().String()
	}
	return genericName
}

// at returns element i as a number together with the raw value used in
// diagnostics.
func (s source) at(i int) (number, any) {
	if s.arr != nil {
		v := s.arr.At(i)
		return numberOfValue(v), v
	}
	return numberOf(s.items[i]), s.items[i]
}

// number is a source element normalized to one of three domains. An invalid
// number holds no value at all. wide marks an integer beyond both int64 and
// uint64, kept only as an approximate float.
type number struct {
	i    int64
	u    uint64
	f    float64
	dom  kind.Domain
	wide bool
}

func numberOfValue(v typed.Value) number {
	switch v.Kind().Domain() {
	case kind.DomainSigned:
		return number{dom: kind.DomainSigned, i: v.Int()}
	case kind.DomainUnsigned:
		return number{dom: kind.DomainUnsigned, u: v.Uint()}
	case kind.DomainFloat:
		return number{dom: kind.DomainFloat, f: v.Float()}
	}
	return number{}
}

func numberOf(x any) number {
	switch v := x.(type) {
	case *big.Int:
		if v == nil {
			return number{}
		}
		if v.IsInt64() {
			return number{dom: kind.DomainSigned, i: v.Int64()}
		}
		if v.IsUint64() {
			return number{dom: kind.DomainUnsigned, u: v.Uint64()}
		}
		f, _ := new(big.Float).SetInt(v).Float64()
		return number{dom: kind.DomainFloat, f: f, wide: true}
	}
	if v, ok := typed.ValueOf(x); ok {
		return numberOfValue(v)
	}
	return number{}
}

// fit converts n to a value of kind to, reporting false when n is invalid or
// does not fit.
func (n number) fit(to kind.Kind) (typed.Value, bool) {
	if n.wide && !to.Float() {
		return typed.Value{}, false
	}
	switch to.Domain() {
	case kind.DomainFloat:
		switch n.dom {
		case kind.DomainSigned:
			return typed.FloatValue(float64(n.i)), true
		case kind.DomainUnsigned:
			return typed.FloatValue(float64(n.u)), true
		case kind.DomainFloat:
			return typed.FloatValue(n.f), true
		}
	case kind.DomainSigned:
		lo, hi := to.MinInt(), int64(to.MaxUint())
		switch n.dom {
		case kind.DomainSigned:
			return typed.IntValue(n.i), n.i >= lo && n.i <= hi
		case kind.DomainUnsigned:
			return typed.IntValue(int64(n.u)), n.u <= uint64(hi)
		case kind.DomainFloat:
			if !integral(n.f) || n.f < float64(lo) || !belowMax(n.f, to) {
				return typed.Value{}, false
			}
			return typed.IntValue(int64(n.f)), true
		}
	case kind.DomainUnsigned:
		hi := to.MaxUint()
		switch n.dom {
		case kind.DomainSigned:
			return typed.UintValue(uint64(n.i)), n.i >= 0 && uint64(n.i) <= hi
		case kind.DomainUnsigned:
			return typed.UintValue(n.u), n.u <= hi
		case kind.DomainFloat:
			if !integral(n.f) || n.f < 0 || !belowMax(n.f, to) {
				return typed.Value{}, false
			}
			return typed.UintValue(uint64(n.f)), true
		}
	}
	return typed.Value{}, false
}

func integral(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)
}

// belowMax compares against the kind's upper bound. The 64-bit bounds are not
// exact in float64 and round up to a power of two, which is itself out of
// range.
func belowMax(f float64, to kind.Kind) bool {
	hi := float64(to.MaxUint())
	if to.Size() == 8 {
		return f < hi
	}
	return f <= hi
}
