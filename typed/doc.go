// Package typed provides kind-tagged numeric arrays.
//
// An Array is either a Bytes view over a little-endian byte region (the
// representation used for linear memory) or a Slice wrapping an ordinary Go
// slice. Elements cross the interface as Value, a number widened to its
// domain. Writes through Put follow plain Go conversion rules; range-checked
// writes live in package coerce.
//
//	buf := make([]byte, 16)
//	a := typed.NewBytes(kind.Int32, buf)
//	a.Put(0, typed.IntValue(-7))
//	typed.Sort(a)
package typed
