package heap

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/wippyai/wasm-heap/coerce"
	werrors "github.com/wippyai/wasm-heap/errors"
	"github.com/wippyai/wasm-heap/kind"
	"github.com/wippyai/wasm-heap/typed"
)

func TestConvert_KindInference(t *testing.T) {
	reg, space, _ := newTestSpace(t)

	a, err := reg.Convert(space, []any{1, 2.5}, kind.Invalid, coerce.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Kind() != kind.Float64 {
		t.Errorf("[]any kind = %v, want Float64", a.Kind())
	}

	b, err := reg.Convert(space, []int16{-1, 4}, kind.Invalid, coerce.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if b.Kind() != kind.Int16 {
		t.Errorf("[]int16 kind = %v", b.Kind())
	}

	c, err := reg.Convert(space, b, kind.Invalid, coerce.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind() != kind.Int16 || c.ID() == b.ID() || !typed.Equal(c.Elements(), b.Elements()) {
		t.Errorf("handle convert = %v", c)
	}
}

func TestConvert_Coercion(t *testing.T) {
	reg, space, _ := newTestSpace(t)

	a, err := reg.Convert(space, []float64{1, math.NaN(), 70000}, kind.Uint16, coerce.Options{Action: coerce.ActionNone})
	if err != nil {
		t.Fatal(err)
	}
	if got := typed.ToSlice[uint16](a.Elements()); !slices.Equal(got, []uint16{1, 0, 0}) {
		t.Errorf("got %v", got)
	}

	b, err := reg.Convert(space, []any{7, 8}, kind.Int8, coerce.Options{Offset: 2, Action: coerce.ActionError})
	if err != nil {
		t.Fatal(err)
	}
	if got := typed.ToSlice[int8](b.Elements()); !slices.Equal(got, []int8{0, 0, 7, 8}) {
		t.Errorf("with offset = %v", got)
	}
}

func TestConvert_FreesOnFailure(t *testing.T) {
	reg, space, bump := newTestSpace(t)
	sp, _ := reg.Space(space)

	_, err := reg.Convert(space, []any{1, 300}, kind.Uint8, coerce.Options{Action: coerce.ActionError})
	if !errors.Is(err, &werrors.Error{Phase: werrors.PhaseCopy, Kind: werrors.KindUnrepresentable}) {
		t.Fatalf("err = %v", err)
	}
	if sp.LiveCount() != 0 || len(bump.Freed()) != 1 {
		t.Errorf("live=%d freed=%v", sp.LiveCount(), bump.Freed())
	}
}

func TestConvert_Errors(t *testing.T) {
	reg, space, _ := newTestSpace(t)

	if _, err := reg.Convert(space, "abc", kind.Uint8, coerce.Options{}); !errors.Is(err, &werrors.Error{Phase: werrors.PhaseConvert, Kind: werrors.KindTypeMismatch}) {
		t.Errorf("string source: err = %v", err)
	}
	if _, err := reg.Convert(space, []uint8{1}, kind.Uint8, coerce.Options{Offset: -1}); !errors.Is(err, &werrors.Error{Phase: werrors.PhaseConvert, Kind: werrors.KindInvalidInput}) {
		t.Errorf("negative offset: err = %v", err)
	}

	x, _ := reg.Allocate(space, 1, kind.Uint8)
	x.Free()
	if _, err := reg.Convert(space, x, kind.Invalid, coerce.Options{}); !errors.Is(err, &werrors.Error{Phase: werrors.PhaseConvert, Kind: werrors.KindFreed}) {
		t.Errorf("freed source: err = %v", err)
	}
}
