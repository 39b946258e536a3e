package heap

import (
	"math"
	"runtime"
	"sync"

	"go.uber.org/zap"

	wasmheap "github.com/wippyai/wasm-heap"
	"github.com/wippyai/wasm-heap/errors"
	"github.com/wippyai/wasm-heap/kind"
)

// Options configures a Registry.
type Options struct {
	// Logger overrides the package logger.
	Logger *zap.Logger
	// Reclaim releases allocations whose owning handle became unreachable.
	// Reclamation is queued by the garbage collector and performed by the
	// next Allocate, Release or Sweep on the same registry.
	Reclaim bool
}

// DefaultOptions enables best-effort reclamation.
func DefaultOptions() Options {
	return Options{Reclaim: true}
}

// Registry tracks memory spaces and their live allocations.
type Registry struct {
	opts      Options
	spaces    []*Space
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
}

// New creates a registry. Space ids start at 0.
func New(opts Options) *Registry {
	return &Registry{opts: opts}
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New(DefaultOptions())
	})
	return defaultRegistry
}

func (r *Registry) log() *zap.Logger {
	if r.opts.Logger != nil {
		return r.opts.Logger
	}
	return Logger()
}

// Register adds a module's address space and returns its id.
func (r *Registry) Register(m wasmheap.Module) SpaceID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := SpaceID(len(r.spaces))
	r.spaces = append(r.spaces, newSpace(id, m))
	r.log().Debug("space registered", zap.Int("space", int(id)))
	return id
}

// Space returns a registered space.
func (r *Registry) Space(id SpaceID) (*Space, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || int(id) >= len(r.spaces) {
		return nil, errors.NotFound(errors.PhaseLookup, "space", int(id))
	}
	return r.spaces[id], nil
}

// Spaces returns the number of registered spaces.
func (r *Registry) Spaces() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.spaces)
}

// Allocate reserves length elements of kind k in space and returns the
// owning handle. A failed allocation leaves no table entry and no reserved
// bytes behind.
func (r *Registry) Allocate(space SpaceID, length int, k kind.Kind) (*Array, error) {
	if !k.Valid() {
		return nil, errors.UnknownKind(k.String())
	}
	if length < 0 {
		return nil, errors.New(errors.PhaseAllocate, errors.KindInvalidInput).
			To(k.String()).
			Value(length).
			Detail("negative length %d", length).
			Build()
	}
	sp, err := r.Space(space)
	if err != nil {
		return nil, err
	}
	r.sweep(sp)

	size := uint64(length) * uint64(k.Size())
	if size > math.MaxUint32 {
		return nil, errors.New(errors.PhaseAllocate, errors.KindAllocation).
			To(k.String()).
			Value(size).
			Detail("%d elements of %d bytes exceed the 32-bit address space", length, k.Size()).
			Build()
	}

	offset, err := sp.module.Malloc(uint32(size))
	if err != nil {
		return nil, errors.AllocationFailed(size, err)
	}
	if end := uint64(offset) + size; end > uint64(len(sp.module.Buffer())) {
		sp.module.Free(offset)
		r.log().Warn("module returned a range outside its buffer, rolled back",
			zap.Int("space", int(space)),
			zap.Uint32("offset", offset),
			zap.Uint64("size", size))
		return nil, errors.New(errors.PhaseAllocate, errors.KindOutOfBounds).
			To(k.String()).
			Value(offset).
			Detail("range [%d, %d) outside buffer of %d bytes", offset, end, len(sp.module.Buffer())).
			Build()
	}

	id := sp.record(offset, uint32(size), k)
	a := &Array{
		reg:    r,
		space:  sp,
		id:     id,
		offset: offset,
		length: length,
		kind:   k,
	}
	if r.opts.Reclaim {
		a.cleanup = runtime.AddCleanup(a, sp.enqueue, id)
		a.tracked = true
	}

	r.log().Debug("allocated",
		zap.Int("space", int(space)),
		zap.Int("id", id),
		zap.Uint32("offset", offset),
		zap.Uint64("size", size),
		zap.Stringer("kind", k))
	r.notify(Event{
		Type:   EventAllocated,
		Space:  space,
		ID:     id,
		Offset: offset,
		Size:   uint32(size),
		Kind:   k,
	})
	return a, nil
}

// Release frees allocation id in space. Unknown spaces and ids are ignored;
// the result reports whether memory was freed.
func (r *Registry) Release(space SpaceID, id int) bool {
	sp, err := r.Space(space)
	if err != nil {
		return false
	}
	r.sweep(sp)
	return r.release(sp, id, EventReleased)
}

func (r *Registry) release(sp *Space, id int, typ EventType) bool {
	a, ok := sp.remove(id)
	if !ok {
		return false
	}
	sp.module.Free(a.offset)

	r.log().Debug(typ.String(),
		zap.Int("space", int(sp.id)),
		zap.Int("id", id),
		zap.Uint32("offset", a.offset),
		zap.Uint32("size", a.size))
	r.notify(Event{
		Type:   typ,
		Space:  sp.id,
		ID:     id,
		Offset: a.offset,
		Size:   a.size,
		Kind:   a.kind,
	})
	return true
}

// Buffer returns the current backing buffer of space. Any later allocation
// in the space may replace it.
func (r *Registry) Buffer(space SpaceID) ([]byte, error) {
	sp, err := r.Space(space)
	if err != nil {
		return nil, err
	}
	return sp.module.Buffer(), nil
}

// Sweep releases allocations queued by the garbage collector and returns how
// many were freed.
func (r *Registry) Sweep() int {
	r.mu.RLock()
	spaces := append([]*Space(nil), r.spaces...)
	r.mu.RUnlock()

	n := 0
	for _, sp := range spaces {
		n += r.sweep(sp)
	}
	return n
}

func (r *Registry) sweep(sp *Space) int {
	n := 0
	for _, id := range sp.takePending() {
		if r.release(sp, id, EventReclaimed) {
			n++
		}
	}
	return n
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Registry) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnHeapEvent(e)
	}
}

// Register adds m to the default registry.
func Register(m wasmheap.Module) SpaceID { return Default().Register(m) }

// Allocate allocates from the default registry.
func Allocate(space SpaceID, length int, k kind.Kind) (*Array, error) {
	return Default().Allocate(space, length, k)
}

// Release releases through the default registry.
func Release(space SpaceID, id int) bool { return Default().Release(space, id) }

// Buffer returns a space buffer from the default registry.
func Buffer(space SpaceID) ([]byte, error) { return Default().Buffer(space) }

// CreateView wraps untracked memory through the default registry.
func CreateView(space SpaceID, length int, offset uint32, k kind.Kind) (*Array, error) {
	return Default().CreateView(space, length, offset, k)
}
