package heap

import (
	"errors"
	"math"
	"slices"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-heap/coerce"
	werrors "github.com/wippyai/wasm-heap/errors"
	"github.com/wippyai/wasm-heap/kind"
	"github.com/wippyai/wasm-heap/module"
	"github.com/wippyai/wasm-heap/typed"
)

func TestArray_ViewNonOwnership(t *testing.T) {
	reg, space, b := newTestSpace(t)
	sp, _ := reg.Space(space)

	x, _ := reg.Allocate(space, 10, kind.Int32)
	v, err := x.View(2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if v.ID() != NoID || v.Owner().Ownership() != OwnerHandle || v.Owner().Handle() != x {
		t.Errorf("view id=%d owner=%v", v.ID(), v.Owner())
	}

	v.Free()
	if sp.LiveCount() != 1 || len(b.Freed()) != 0 {
		t.Error("freeing a view released memory")
	}
	if v.Freed() {
		t.Error("view reports freed while owner is live")
	}

	x.Free()
	if sp.LiveCount() != 0 {
		t.Error("owner Free did not release")
	}
	if !v.Freed() || v.Elements().Len() != 0 {
		t.Error("view of a freed owner still exposes elements")
	}
	if err := v.Fill(1, 0, 1); !errors.Is(err, &werrors.Error{Phase: werrors.PhaseAccess, Kind: werrors.KindFreed}) {
		t.Errorf("Fill on view of freed owner: err = %v", err)
	}
}

func TestArray_ViewFlattensOwner(t *testing.T) {
	reg, space, _ := newTestSpace(t)
	x, _ := reg.Allocate(space, 10, kind.Uint16)

	v1, _ := x.View(2, 8)
	v2, _ := v1.View(1, 3)
	if v2.Owner().Handle() != x {
		t.Error("view of a view does not point at the original owner")
	}
	if v2.Offset() != x.Offset()+3*2 || v2.Len() != 2 {
		t.Errorf("v2 offset=%d len=%d", v2.Offset(), v2.Len())
	}
}

func TestArray_ViewContentIdentity(t *testing.T) {
	reg, space, _ := newTestSpace(t)
	for _, k := range kind.All() {
		x, err := reg.Allocate(space, 8, k)
		if err != nil {
			t.Fatal(err)
		}
		for i := range 8 {
			x.Elements().Put(i, typed.IntValue(int64(i*3+1)))
		}

		for _, r := range [][2]int{{0, 8}, {2, 5}, {7, 8}, {4, 4}} {
			v, err := x.View(r[0], r[1])
			if err != nil {
				t.Fatal(err)
			}
			ve, xe := v.Elements(), x.Elements()
			for i := range v.Len() {
				if !ve.At(i).Equal(xe.At(i + r[0])) {
					t.Errorf("%v view[%d:%d][%d] = %v, want %v", k, r[0], r[1], i, ve.At(i), xe.At(i+r[0]))
				}
			}
		}

		v, _ := x.View(1, 3)
		v.Elements().Put(0, typed.IntValue(100))
		if x.Elements().At(1).Int() != 100 {
			t.Errorf("%v: write through view not visible in owner", k)
		}
	}
}

func TestArray_ViewRange(t *testing.T) {
	reg, space, _ := newTestSpace(t)
	x, _ := reg.Allocate(space, 4, kind.Uint8)

	for _, r := range [][2]int{{-1, 2}, {3, 2}, {0, 5}} {
		_, err := x.View(r[0], r[1])
		if !errors.Is(err, &werrors.Error{Phase: werrors.PhaseView, Kind: werrors.KindOutOfBounds}) {
			t.Errorf("View(%d, %d): err = %v", r[0], r[1], err)
		}
	}
}

func TestArray_CloneIndependence(t *testing.T) {
	reg, space, b := newTestSpace(t)
	sp, _ := reg.Space(space)

	x, _ := reg.Allocate(space, 4, kind.Float32)
	_ = x.Set([]float32{1, 2.5, -3, 4}, 0)

	c, err := x.Clone()
	if err != nil {
		t.Fatal(err)
	}
	if c.Offset() == x.Offset() || c.Len() != x.Len() || c.Kind() != x.Kind() {
		t.Errorf("clone offset=%d len=%d kind=%v", c.Offset(), c.Len(), c.Kind())
	}
	if !typed.Equal(c.Elements(), x.Elements()) {
		t.Error("clone contents differ")
	}
	if !c.Owner().Self() || c.ID() == x.ID() {
		t.Error("clone is not an independent owner")
	}

	c.Elements().Put(0, typed.FloatValue(9))
	if x.Elements().At(0).Float() != 1 {
		t.Error("write to clone visible in original")
	}

	c.Free()
	if x.Freed() || sp.LiveCount() != 1 || len(b.Freed()) != 1 {
		t.Error("freeing the clone affected the original")
	}
}

func TestArray_CloneTo(t *testing.T) {
	reg, space, _ := newTestSpace(t)
	dst := reg.Register(module.NewBump(module.BumpOptions{Initial: 64, Max: 64, Align: 1}))
	x, _ := reg.Allocate(space, 3, kind.BigInt64)
	_ = x.Set([]int64{math.MinInt64, 0, math.MaxInt64}, 0)

	c, err := x.CloneTo(dst)
	if err != nil {
		t.Fatal(err)
	}
	if c.Space() != dst {
		t.Errorf("clone space = %d, want %d", c.Space(), dst)
	}
	if got := typed.ToSlice[int64](c.Elements()); !slices.Equal(got, []int64{math.MinInt64, 0, math.MaxInt64}) {
		t.Errorf("clone = %v", got)
	}
}

func TestArray_SetAndFill(t *testing.T) {
	reg, space, _ := newTestSpace(t)
	x, _ := reg.Allocate(space, 5, kind.Int16)

	if err := x.Fill(int16(7), 1, 4); err != nil {
		t.Fatal(err)
	}
	if got := typed.ToSlice[int16](x.Elements()); !slices.Equal(got, []int16{0, 7, 7, 7, 0}) {
		t.Errorf("after Fill = %v", got)
	}

	if err := x.Set([]any{1, 2}, 3); err != nil {
		t.Fatal(err)
	}
	if got := typed.ToSlice[int16](x.Elements()); !slices.Equal(got, []int16{0, 7, 7, 1, 2}) {
		t.Errorf("after Set = %v", got)
	}

	err := x.Set([]int16{1, 2, 3}, 3)
	if !errors.Is(err, &werrors.Error{Phase: werrors.PhaseAccess, Kind: werrors.KindOutOfBounds}) {
		t.Errorf("oversized Set: err = %v", err)
	}
	if got := typed.ToSlice[int16](x.Elements()); !slices.Equal(got, []int16{0, 7, 7, 1, 2}) {
		t.Errorf("oversized Set wrote: %v", got)
	}

	if err := x.Set([]any{1, "x"}, 0); !errors.Is(err, &werrors.Error{Phase: werrors.PhaseAccess, Kind: werrors.KindTypeMismatch}) {
		t.Errorf("Set with string: err = %v", err)
	}
	if err := x.Fill("x", 0, 1); err == nil {
		t.Error("Fill with string should fail")
	}
	if err := x.Fill(1, 0, 6); err == nil {
		t.Error("Fill past the end should fail")
	}

	y, _ := reg.Allocate(space, 2, kind.Uint8)
	_ = y.Set([]uint8{200, 9}, 0)
	if err := x.Set(y, 0); err != nil {
		t.Fatal(err)
	}
	if got := typed.ToSlice[int16](x.Elements()); got[0] != 200 || got[1] != 9 {
		t.Errorf("Set from handle = %v", got)
	}
}

func TestArray_SafeSet(t *testing.T) {
	reg, space, _ := newTestSpace(t)
	x, _ := reg.Allocate(space, 3, kind.Uint8)

	res, err := x.SafeSet([]any{1, 2, -50}, coerce.Options{Action: coerce.ActionNone, Placeholder: 123})
	if err != nil {
		t.Fatal(err)
	}
	if res.Replaced != 1 {
		t.Errorf("Replaced = %d", res.Replaced)
	}
	if got := typed.ToSlice[uint8](x.Elements()); !slices.Equal(got, []uint8{1, 2, 123}) {
		t.Errorf("x = %v", got)
	}

	src, _ := reg.Allocate(space, 3, kind.Uint8)
	_ = src.Set([]uint8{4, 5, 6}, 0)
	res, err = x.SafeSet(src, coerce.Options{Action: coerce.ActionError})
	if err != nil || res.Path != coerce.PathSameKind {
		t.Errorf("SafeSet from handle: res=%+v err=%v", res, err)
	}
}

func TestArray_SliceIsDetached(t *testing.T) {
	reg, space, _ := newTestSpace(t)
	x, _ := reg.Allocate(space, 4, kind.Uint32)
	_ = x.Set([]uint32{10, 20, 30, 40}, 0)

	s, err := x.Slice(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	x.Elements().Put(1, typed.UintValue(0))
	if got := typed.ToSlice[uint32](s); !slices.Equal(got, []uint32{20, 30}) {
		t.Errorf("slice = %v, want [20 30]", got)
	}

	sub, _ := x.Subarray(1, 3)
	x.Elements().Put(2, typed.UintValue(7))
	if sub.At(1).Uint() != 7 {
		t.Error("Subarray is not live")
	}
}

func TestArray_Iteration(t *testing.T) {
	reg, space, _ := newTestSpace(t)
	x, _ := reg.Allocate(space, 4, kind.Float64)
	_ = x.Set([]float64{3, 1, math.NaN(), 2}, 0)

	var n int
	for range x.Values() {
		n++
	}
	for range x.Keys() {
		n++
	}
	for range x.All() {
		n++
	}
	if n != 12 {
		t.Errorf("iterated %d times, want 12", n)
	}

	if v, ok := x.At(-1); !ok || v.Float() != 2 {
		t.Errorf("At(-1) = %v %v", v, ok)
	}
	if x.IndexOf(typed.FloatValue(1)) != 1 {
		t.Error("IndexOf(1) != 1")
	}
	if !x.Some(func(_ int, v typed.Value) bool { return math.IsNaN(v.Float()) }) {
		t.Error("Some NaN = false")
	}
	if x.Every(func(_ int, v typed.Value) bool { return v.Float() > 0 }) {
		t.Error("Every > 0 should be false with NaN")
	}

	x.Sort()
	got := typed.ToSlice[float64](x.Elements())
	if !slices.Equal(got[:3], []float64{1, 2, 3}) || !math.IsNaN(got[3]) {
		t.Errorf("sorted = %v", got)
	}
	x.Reverse()
	if v, _ := x.At(0); !math.IsNaN(v.Float()) {
		t.Errorf("reversed[0] = %v", v)
	}

	sum := x.Filter(func(_ int, v typed.Value) bool { return !math.IsNaN(v.Float()) }).Len()
	if sum != 3 {
		t.Errorf("Filter kept %d", sum)
	}
	doubled := x.Map(func(_ int, v typed.Value) typed.Value { return typed.FloatValue(v.Float() * 2) })
	if doubled.At(1).Float() != 6 {
		t.Errorf("Map[1] = %v", doubled.At(1))
	}
	total := x.Reduce(func(acc, v typed.Value) typed.Value {
		if math.IsNaN(v.Float()) {
			return acc
		}
		return typed.FloatValue(acc.Float() + v.Float())
	}, typed.FloatValue(0))
	if total.Float() != 6 {
		t.Errorf("Reduce = %v", total)
	}
	var order []float64
	x.ReduceRight(func(acc, v typed.Value) typed.Value {
		order = append(order, v.Float())
		return acc
	}, typed.FloatValue(0))
	if order[0] != 1 {
		t.Errorf("ReduceRight started at %v", order[0])
	}
	var seen int
	x.ForEach(func(int, typed.Value) { seen++ })
	if seen != 4 {
		t.Errorf("ForEach visited %d", seen)
	}
}

func TestCreateView(t *testing.T) {
	reg, space, b := newTestSpace(t)
	sp, _ := reg.Space(space)

	buf, _ := reg.Buffer(space)
	buf[100], buf[101] = 0x34, 0x12

	v, err := reg.CreateView(space, 1, 100, kind.Uint16)
	if err != nil {
		t.Fatal(err)
	}
	if v.Owner().Ownership() != OwnerExternal || v.ID() != NoID {
		t.Errorf("owner=%v id=%d", v.Owner(), v.ID())
	}
	if got := v.Elements().At(0).Uint(); got != 0x1234 {
		t.Errorf("At(0) = %#x", got)
	}

	sub, _ := v.View(0, 1)
	if sub.Owner().Ownership() != OwnerExternal {
		t.Error("view of an external view lost external ownership")
	}

	v.Free()
	sub.Free()
	if sp.LiveCount() != 0 || len(b.Freed()) != 0 {
		t.Error("external view released memory")
	}

	far, err := reg.CreateView(space, 10, 995, kind.Uint8)
	if err != nil {
		t.Fatal(err)
	}
	if far.Elements().Len() != 0 {
		t.Error("out-of-buffer view exposed elements")
	}
	if err := far.Fill(1, 0, 1); !errors.Is(err, &werrors.Error{Phase: werrors.PhaseAccess, Kind: werrors.KindOutOfBounds}) {
		t.Errorf("err = %v", err)
	}
}

func TestCreateListView(t *testing.T) {
	reg, space, _ := newTestSpace(t)
	x, _ := reg.Allocate(space, 3, kind.Float32)
	_ = x.Set([]float32{0.5, 1.5, 2.5}, 0)

	v, err := reg.CreateListView(space, wit.F32{}, uint32(x.Offset()), 3)
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != kind.Float32 || !typed.Equal(v.Elements(), x.Elements()) {
		t.Errorf("list view = %v", typed.ToSlice[float32](v.Elements()))
	}

	if _, err := reg.CreateListView(space, wit.String{}, 0, 1); err == nil {
		t.Error("list<string> should not map to a kind")
	}
}

func TestArray_String(t *testing.T) {
	reg, space, _ := newTestSpace(t)
	x, _ := reg.Allocate(space, 2, kind.Int8)
	if got := x.String(); got != "Int8Array(space=0 id=0 offset=0 len=2 owner=self)" {
		t.Errorf("String = %q", got)
	}
	x.Free()
	if got := x.String(); got != "Int8Array(space=0 id=0 freed)" {
		t.Errorf("String = %q", got)
	}
}
