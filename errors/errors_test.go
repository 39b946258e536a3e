package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseCopy,
				Kind:   KindUnrepresentable,
				From:   "Float64",
				To:     "Int32",
				Detail: "cannot convert",
			},
			contains: []string{"[copy]", "unrepresentable", "from Float64 to Int32", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseSubset,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[subset]", "out_of_bounds"},
		},
		{
			name: "destination only",
			err: &Error{
				Phase: PhaseAccess,
				Kind:  KindTypeMismatch,
				To:    "Uint8",
			},
			contains: []string{"[access]", "to Uint8"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseAllocate,
				Kind:   KindAllocation,
				Detail: "memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[allocate]", "allocation", "memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseAllocate,
		Kind:  KindAllocation,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseSubset,
		Kind:  KindLengthMismatch,
		Value: 3,
	}

	if !err.Is(&Error{Phase: PhaseSubset, Kind: KindLengthMismatch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseCopy, Kind: KindLengthMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseSubset, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseSubset, Kind: KindLengthMismatch}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseCopy, KindUnrepresentable).
		From("BigInt64").
		To("Uint32").
		Value(int64(1) << 32).
		Cause(cause).
		Detail("expected at most %d", uint32(1<<32-1)).
		Build()

	if err.Phase != PhaseCopy {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseCopy)
	}
	if err.Kind != KindUnrepresentable {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnrepresentable)
	}
	if err.From != "BigInt64" || err.To != "Uint32" {
		t.Errorf("From=%v To=%v", err.From, err.To)
	}
	if err.Value != int64(1)<<32 {
		t.Errorf("Value = %v, want 2^32", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected at most 4294967295" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseSubset, 10000, 6)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10000 {
			t.Errorf("Value = %v, want 10000", err.Value)
		}
		if !strings.Contains(err.Error(), "out-of-range") {
			t.Errorf("message %q should mention out-of-range", err.Error())
		}
	})

	t.Run("RangeOutOfBounds", func(t *testing.T) {
		err := RangeOutOfBounds(PhaseView, 3, 12, 10)
		if !strings.Contains(err.Detail, "[3, 12)") {
			t.Errorf("Detail = %v", err.Detail)
		}
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		err := LengthMismatch(PhaseSubset, "mask", 6, 0)
		if err.Kind != KindLengthMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindLengthMismatch)
		}
		if !strings.Contains(err.Detail, "6") || !strings.Contains(err.Detail, "0") {
			t.Errorf("Detail = %v, should contain both lengths", err.Detail)
		}
	})

	t.Run("Unrepresentable", func(t *testing.T) {
		err := Unrepresentable(300, "Int16", "Uint8")
		if err.Phase != PhaseCopy || err.Kind != KindUnrepresentable {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
		msg := err.Error()
		for _, s := range []string{"cannot safely insert", "'300'", "Int16", "Uint8"} {
			if !strings.Contains(msg, s) {
				t.Errorf("message %q does not contain %q", msg, s)
			}
		}
	})

	t.Run("UnknownKind", func(t *testing.T) {
		err := UnknownKind("Complex128")
		if err.Kind != KindUnknownKind || err.Phase != PhaseLookup {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(1024, errors.New("oom"))
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !strings.Contains(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})

	t.Run("MissingExport", func(t *testing.T) {
		err := MissingExport("malloc", "cabi_realloc")
		if !strings.Contains(err.Detail, "malloc, cabi_realloc") {
			t.Errorf("Detail = %v", err.Detail)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseLookup, "space", 7)
		if err.Value != 7 {
			t.Errorf("Value = %v, want 7", err.Value)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseAccess, "foo", "Float64")
		if !strings.Contains(err.Detail, "string") {
			t.Errorf("Detail = %v, should name the Go type", err.Detail)
		}
	})

	t.Run("Freed", func(t *testing.T) {
		err := Freed(PhaseAccess)
		if !errors.Is(err, &Error{Phase: PhaseAccess, Kind: KindFreed}) {
			t.Error("expected freed error to match")
		}
	})
}
