package module

import (
	"context"
	"slices"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	wasmheap "github.com/wippyai/wasm-heap"
	"github.com/wippyai/wasm-heap/errors"
)

// Guest allocator export names, tried in order.
const (
	Malloc        = "malloc"
	CabiRealloc   = "cabi_realloc"
	legacyRealloc = "canonical_abi_realloc"
	legacyAlloc   = "allocate"
	simpleAlloc   = "alloc"

	CabiFree      = "cabi_free"
	legacyDealloc = "deallocate"
	simpleFree    = "free"
)

// allocAlign is passed to allocators that take an alignment. It covers the
// widest element kind.
const allocAlign = 8

// WazeroOptions overrides export lookup.
type WazeroOptions struct {
	// Memory names the memory export. Empty selects the module's default
	// memory.
	Memory string
	// Alloc lists allocator export names to try before the built-in ones.
	Alloc []string
	// Free lists deallocator export names to try before the built-in ones.
	Free []string
}

// Wazero is a wasmheap.Module over a wazero guest instance. Allocation calls
// the guest's own allocator; the buffer is the guest's linear memory.
type Wazero struct {
	ctx      context.Context
	mod      api.Module
	mem      api.Memory
	allocFn  api.Function
	freeFn   api.Function
	runtime  wazero.Runtime
	sizes    map[uint32]uint32
	stackBuf []uint64
	mu       sync.Mutex

	allocParams int
}

var _ wasmheap.Module = (*Wazero)(nil)

// Wrap resolves the memory and allocator exports of an instantiated guest.
// ctx is used for every later guest call.
func Wrap(ctx context.Context, mod api.Module, opts WazeroOptions) (*Wazero, error) {
	if mod == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad, "nil module")
	}

	w := &Wazero{
		ctx:      ctx,
		mod:      mod,
		sizes:    make(map[uint32]uint32),
		stackBuf: make([]uint64, 8),
	}

	if opts.Memory != "" {
		w.mem = mod.ExportedMemory(opts.Memory)
	} else {
		w.mem = mod.Memory()
	}
	if w.mem == nil {
		name := opts.Memory
		if name == "" {
			name = "memory"
		}
		return nil, errors.MissingExport(name)
	}

	defs := mod.ExportedFunctionDefinitions()
	allocNames := append(slices.Clone(opts.Alloc), Malloc, CabiRealloc, legacyRealloc, legacyAlloc, simpleAlloc)
	for _, name := range allocNames {
		def, ok := defs[name]
		if !ok {
			continue
		}
		switch n := len(def.ParamTypes()); n {
		case 1, 2, 4:
			w.allocFn = mod.ExportedFunction(name)
			w.allocParams = n
		}
		if w.allocFn != nil {
			break
		}
	}
	if w.allocFn == nil {
		return nil, errors.MissingExport(allocNames...)
	}

	freeNames := append(slices.Clone(opts.Free), CabiFree, legacyDealloc, simpleFree)
	for _, name := range freeNames {
		if fn := mod.ExportedFunction(name); fn != nil {
			w.freeFn = fn
			break
		}
	}
	if w.freeFn == nil && w.allocParams == 4 {
		// Shrinking to zero through the realloc export frees.
		w.freeFn = w.allocFn
	}
	if w.freeFn == nil {
		Logger().Warn("guest exports no free function, memory will not be returned",
			zap.String("module", mod.Name()))
	}

	return w, nil
}

// Instantiate compiles and instantiates guest in a fresh runtime and wraps
// it. Close releases both the instance and the runtime.
func Instantiate(ctx context.Context, guest []byte, opts WazeroOptions) (*Wazero, error) {
	rt := wazero.NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, guest)
	if err != nil {
		return nil, multierr.Append(errors.Load("failed to compile guest", err), rt.Close(ctx))
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		return nil, multierr.Append(errors.Load("failed to instantiate guest", err), rt.Close(ctx))
	}

	w, err := Wrap(ctx, mod, opts)
	if err != nil {
		return nil, multierr.Append(err, rt.Close(ctx))
	}
	w.runtime = rt
	return w, nil
}

// Malloc calls the guest allocator. A zero return for a non-empty request is
// treated as out of memory.
func (w *Wazero) Malloc(size uint32) (uint32, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var stack []uint64
	switch w.allocParams {
	case 1:
		w.stackBuf[0] = uint64(size)
		stack = w.stackBuf[:1]
	case 2:
		w.stackBuf[0] = uint64(size)
		w.stackBuf[1] = allocAlign
		stack = w.stackBuf[:2]
	default:
		w.stackBuf[0] = 0
		w.stackBuf[1] = 0
		w.stackBuf[2] = allocAlign
		w.stackBuf[3] = uint64(size)
		stack = w.stackBuf[:4]
	}

	if err := w.allocFn.CallWithStack(w.ctx, stack); err != nil {
		return 0, errors.AllocationFailed(uint64(size), err)
	}
	ptr := uint32(stack[0])
	if ptr == 0 && size > 0 {
		return 0, errors.AllocationFailed(uint64(size), nil)
	}
	w.sizes[ptr] = size
	return ptr, nil
}

// Free returns offset to the guest allocator. Guest traps are logged, not
// returned.
func (w *Wazero) Free(offset uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()

	size := w.sizes[offset]
	delete(w.sizes, offset)
	if w.freeFn == nil || offset == 0 {
		return
	}

	def := w.freeFn.Definition()
	n := max(len(def.ParamTypes()), len(def.ResultTypes()))
	if n > len(w.stackBuf) {
		Logger().Warn("guest free has an unsupported signature", zap.String("name", def.Name()))
		return
	}
	// cabi_realloc(ptr, size, align, 0) and free(ptr[, size[, align]]) share
	// the leading arguments.
	w.stackBuf[0] = uint64(offset)
	w.stackBuf[1] = uint64(size)
	w.stackBuf[2] = allocAlign
	w.stackBuf[3] = 0
	if err := w.freeFn.CallWithStack(w.ctx, w.stackBuf[:n]); err != nil {
		Logger().Warn("guest free failed",
			zap.Uint32("offset", offset),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

// Buffer returns the guest's linear memory. The slice is detached when the
// guest grows its memory.
func (w *Wazero) Buffer() []byte {
	buf, _ := w.mem.Read(0, w.mem.Size())
	return buf
}

// Memory returns the wrapped memory export.
func (w *Wazero) Memory() api.Memory { return w.mem }

// Module returns the wrapped guest instance.
func (w *Wazero) Module() api.Module { return w.mod }

// Close closes the guest and, when created by Instantiate, its runtime.
func (w *Wazero) Close(ctx context.Context) error {
	err := w.mod.Close(ctx)
	if w.runtime != nil {
		err = multierr.Append(err, w.runtime.Close(ctx))
		w.runtime = nil
	}
	return err
}
