package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which operation produced the error
type Phase string

const (
	PhaseRegister Phase = "register" // space registration
	PhaseAllocate Phase = "allocate" // raw allocation and handle creation
	PhaseRelease  Phase = "release"  // raw free
	PhaseAccess   Phase = "access"   // element reads and writes
	PhaseView     Phase = "view"     // view construction
	PhaseCopy     Phase = "copy"     // value coercion
	PhaseSubset   Phase = "subset"   // subset and filter
	PhaseConvert  Phase = "convert"  // conversion of foreign arrays
	PhaseLookup   Phase = "lookup"   // kind and space lookup
	PhaseLoad     Phase = "load"     // module loading
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfBounds     Kind = "out_of_bounds"
	KindLengthMismatch  Kind = "length_mismatch"
	KindUnrepresentable Kind = "unrepresentable"
	KindTypeMismatch    Kind = "type_mismatch"
	KindAllocation      Kind = "allocation"
	KindNotFound        Kind = "not_found"
	KindUnknownKind     Kind = "unknown_kind"
	KindFreed           Kind = "freed"
	KindInvalidInput    Kind = "invalid_input"
	KindMissingExport   Kind = "missing_export"
	KindInvalidAction   Kind = "invalid_action"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	From   string
	To     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.From != "" || e.To != "" {
		b.WriteString(": ")
		switch {
		case e.From != "" && e.To != "":
			b.WriteString("from ")
			b.WriteString(e.From)
			b.WriteString(" to ")
			b.WriteString(e.To)
		case e.From != "":
			b.WriteString("from ")
			b.WriteString(e.From)
		default:
			b.WriteString("to ")
			b.WriteString(e.To)
		}
	}

	if e.Detail != "" {
		if e.From != "" || e.To != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// From sets the source kind name
func (b *Builder) From(k string) *Builder {
	b.err.From = k
	return b
}

// To sets the destination kind name
func (b *Builder) To(k string) *Builder {
	b.err.To = k
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// OutOfBounds creates an index out of range error
func OutOfBounds(phase Phase, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("index %d out-of-range (length %d)", index, length),
		Value:  index,
	}
}

// RangeOutOfBounds creates an error for a [start, end) range outside [0, length]
func RangeOutOfBounds(phase Phase, start, end, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("range [%d, %d) out-of-range (length %d)", start, end, length),
		Value:  start,
	}
}

// LengthMismatch creates an error for two lengths that must agree
func LengthMismatch(phase Phase, what string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLengthMismatch,
		Detail: fmt.Sprintf("%s: expected length %d, got %d", what, want, got),
		Value:  got,
	}
}

// Unrepresentable creates an error for a value the destination kind cannot hold
func Unrepresentable(value any, from, to string) *Error {
	return &Error{
		Phase:  PhaseCopy,
		Kind:   KindUnrepresentable,
		From:   from,
		To:     to,
		Detail: fmt.Sprintf("cannot safely insert '%v' from a %s to a %s", value, from, to),
		Value:  value,
	}
}

// UnknownKind creates an error for an unrecognized element kind name
func UnknownKind(name string) *Error {
	return &Error{
		Phase:  PhaseLookup,
		Kind:   KindUnknownKind,
		Detail: fmt.Sprintf("unknown element kind %q", name),
		Value:  name,
	}
}

// Freed creates a use-after-free error
func Freed(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFreed,
		Detail: "allocation has been freed",
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string, name any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %v not found", what, name),
		Value:  name,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(size uint64, cause error) *Error {
	return &Error{
		Phase:  PhaseAllocate,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Value:  size,
		Cause:  cause,
	}
}

// MissingExport creates an error for a guest lacking every candidate export
func MissingExport(candidates ...string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindMissingExport,
		Detail: fmt.Sprintf("none of the exports %s found", strings.Join(candidates, ", ")),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// TypeMismatch creates an error for a value of an unsupported Go type
func TypeMismatch(phase Phase, value any, to string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		To:     to,
		Detail: fmt.Sprintf("unsupported value %v (%T)", value, value),
		Value:  value,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}
