package module

import (
	"slices"
	"sync"

	wasmheap "github.com/wippyai/wasm-heap"
	"github.com/wippyai/wasm-heap/errors"
)

// BumpOptions configures an in-process bump heap.
type BumpOptions struct {
	// Initial is the starting buffer size in bytes.
	Initial uint32
	// Max caps the buffer size. Allocations past it fail.
	Max uint32
	// Align rounds every returned offset up to a multiple of Align.
	// Zero or one disables alignment.
	Align uint32
}

// DefaultBumpOptions returns a one-page heap that grows up to 16 MiB with
// 8-byte alignment.
func DefaultBumpOptions() BumpOptions {
	return BumpOptions{
		Initial: wasmheap.PageSize,
		Max:     256 * wasmheap.PageSize,
		Align:   8,
	}
}

// Bump is a wasmheap.Module backed by a Go byte slice. It never reuses
// memory: Free only records the offset. Growing replaces the buffer, so
// slices returned by earlier Buffer calls stop observing writes.
type Bump struct {
	buf   []byte
	freed []uint32
	mu    sync.Mutex
	next  uint32
	max   uint32
	align uint32
}

var _ wasmheap.Module = (*Bump)(nil)

// NewBump creates a bump heap.
func NewBump(opts BumpOptions) *Bump {
	if opts.Max < opts.Initial {
		opts.Max = opts.Initial
	}
	if opts.Align == 0 {
		opts.Align = 1
	}
	return &Bump{
		buf:   make([]byte, opts.Initial),
		max:   opts.Max,
		align: opts.Align,
	}
}

// Malloc reserves size bytes after the previous allocation.
func (b *Bump) Malloc(size uint32) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := (uint64(b.next) + uint64(b.align) - 1) / uint64(b.align) * uint64(b.align)
	end := start + uint64(size)
	if end > uint64(b.max) {
		return 0, errors.New(errors.PhaseAllocate, errors.KindAllocation).
			Value(size).
			Detail("bump heap exhausted: %d bytes requested at offset %d, capacity %d", size, start, b.max).
			Build()
	}
	if end > uint64(len(b.buf)) {
		b.grow(end)
	}
	b.next = uint32(end)
	return uint32(start), nil
}

// grow replaces the buffer with one at least need bytes long.
func (b *Bump) grow(need uint64) {
	size := max(uint64(len(b.buf))*2, need, wasmheap.PageSize)
	size = min(size, uint64(b.max))
	buf := make([]byte, size)
	copy(buf, b.buf)
	b.buf = buf
}

// Free records offset. The bytes are not reused.
func (b *Bump) Free(offset uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.freed = append(b.freed, offset)
}

// Buffer returns the current backing slice.
func (b *Bump) Buffer() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf
}

// Freed returns every offset passed to Free, in call order.
func (b *Bump) Freed() []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.freed)
}

// Used returns the high-water mark in bytes.
func (b *Bump) Used() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.next
}
