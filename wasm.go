package wasmheap

// Module is the external owner of a linear memory.
//
// Implementations expose the module's own byte allocator and its current
// backing buffer. The buffer may be replaced (grown) by any Malloc call, so
// callers must re-fetch it after allocating before dereferencing offsets.
type Module interface {
	// Malloc reserves size bytes and returns their byte offset.
	Malloc(size uint32) (uint32, error)
	// Free releases a range previously returned by Malloc.
	Free(offset uint32)
	// Buffer returns the current backing memory.
	Buffer() []byte
}

// PageSize is the WebAssembly linear memory page size.
const PageSize = 65536
