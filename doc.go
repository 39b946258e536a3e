// Package wasmheap manages typed arrays inside externally owned linear memory.
//
// A WebAssembly module owns its linear memory and its allocator. This library
// does not replace either; it keeps the bookkeeping of allocations made
// through the module's allocator and wraps them in typed handles that can be
// read, written, viewed, cloned, filtered and released from Go.
//
// # Architecture Overview
//
//	wasmheap/         Root package with the Module interface
//	├── kind/         Element kinds (u8..f64, 64-bit big integers) and their traits
//	├── typed/        Kind-tagged arrays over raw little-endian memory or Go slices
//	├── coerce/       Overflow-aware copying between differently typed arrays
//	├── heap/         Memory spaces, allocation handles, views and subsets
//	├── module/       Module implementations: wazero guests and an in-process bump heap
//	├── errors/       Structured error types
//	└── cmd/heapview/ Inspector for allocation sessions
//
// # Quick Start
//
//	reg := heap.Default()
//	space := reg.Register(module.NewBump(module.DefaultBumpOptions()))
//
//	arr, err := reg.Allocate(space, 10, kind.Float64)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer arr.Free()
//
//	arr.Fill(1.5, 0, arr.Len())
//	v, _ := arr.View(2, 5) // shares bytes, never frees them
//
// # Ownership
//
// A handle either owns its byte range, views a range owned by another handle,
// or views memory owned by something this library does not track (for
// example a list returned by component bindings). Only owners release memory;
// Free on a view is a no-op and Free on an owner is idempotent.
//
// # Memory Model
//
// The owning module may grow its memory on any allocation, which replaces
// the backing buffer. Element views returned by Elements are therefore
// transient: fetch them again after any allocation in the same space. Slice
// returns a detached copy that stays valid.
//
// # Thread Safety
//
// A space's allocation table is guarded so that best-effort reclamation can
// queue work from the garbage collector. Reads and writes through handles are
// not synchronized; concurrent access to the same bytes must be serialized by
// the caller. Parallel workers should register independent spaces.
package wasmheap
