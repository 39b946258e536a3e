// Package coerce copies values between numeric arrays of different kinds
// without silently corrupting them.
//
// Copy picks the cheapest safe path. Identical kinds are copied in bulk, as
// are kinds whose whole range fits the destination (Uint8 into Int16, Int32
// into Float64). Everything else is checked element by element: a value that
// is out of range, non-finite for an integer destination, fractional for an
// integer destination, or not a number at all is handled by the call's
// Action.
//
//	res, err := coerce.Copy([]float64{1, 2, 1 << 32}, dst, coerce.Options{
//	    Action:      coerce.ActionNone,
//	    Placeholder: -1,
//	})
//
// Narrowing into a floating-point destination loses precision but is never
// treated as invalid.
package coerce
