// Package module provides wasmheap.Module implementations.
//
// # Wazero
//
// Wazero drives a guest's own allocator exports over wazero. The allocator is
// looked up as malloc, cabi_realloc, canonical_abi_realloc, allocate, then
// alloc; the deallocator as cabi_free, deallocate, then free. A guest with
// cabi_realloc but no free export is freed by reallocating to zero bytes.
//
//	w, err := module.Instantiate(ctx, guest, module.WazeroOptions{})
//	if err != nil {
//	    return err
//	}
//	defer w.Close(ctx)
//	space := reg.Register(w)
//
// # Bump
//
// Bump is an in-process heap over a Go byte slice. It never reuses freed
// memory, grows by replacing its buffer, and records every free, which makes
// it the deterministic heap for tests and tooling.
package module
