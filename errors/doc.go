// Package errors provides structured error types for the wasm-heap library.
//
// Errors are categorized by Phase (which operation failed) and Kind (error category).
// The Error type carries the offending value, source and destination kind names,
// and an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCopy, errors.KindUnrepresentable).
//		From("Float64").
//		To("Int32").
//		Value(4294967296.0).
//		Detail("value exceeds destination range").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseSubset, 10000, 6)
//	err := errors.LengthMismatch(errors.PhaseSubset, "mask", 6, 0)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
