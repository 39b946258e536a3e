// Package heap tracks typed allocations inside module-owned linear memory.
//
// A Registry holds one Space per registered wasmheap.Module. Each space keeps
// a table of live allocation ids and their byte offsets; ids increase
// monotonically from 0 and are never reused.
//
// # Handles
//
// Allocate returns an owning *Array. View derives non-owning handles that
// share its bytes; a view of a view points straight at the original owner.
// CreateView and CreateListView wrap memory owned by something else, such as
// a list returned by component bindings. Only owners release memory:
//
//	arr, err := reg.Allocate(space, 6, kind.Int32)
//	if err != nil {
//	    return err
//	}
//	defer arr.Free()
//
//	v, _ := arr.View(2, 4)
//	v.Free() // no-op
//
// # Reclamation
//
// With Options.Reclaim, an owner that becomes unreachable without Free is
// queued by the garbage collector and released by the next Allocate, Release
// or Sweep. This is best effort; explicit Free is the contract.
//
// # Subsets
//
// Subset copies a reordered or filtered selection into a new owner or a
// caller-supplied buffer:
//
//	out, err := heap.Subset(arr, heap.Indices(5, 3, 1), nil)
//	kept, err := heap.Subset(arr, heap.Keep(mask), nil)
package heap
