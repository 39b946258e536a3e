package heap

import (
	"sync"

	wasmheap "github.com/wippyai/wasm-heap"
	"github.com/wippyai/wasm-heap/kind"
)

// SpaceID identifies a registered module's address space.
type SpaceID int

// allocation is one live entry of a space's table.
type allocation struct {
	offset uint32
	size   uint32
	kind   kind.Kind
}

// Space is the allocation table of one module.
type Space struct {
	module  wasmheap.Module
	live    map[int]allocation
	pending []int
	mu      sync.Mutex
	id      SpaceID
	nextID  int
}

func newSpace(id SpaceID, m wasmheap.Module) *Space {
	return &Space{
		id:     id,
		module: m,
		live:   make(map[int]allocation),
	}
}

// ID returns the space identifier.
func (s *Space) ID() SpaceID { return s.id }

// Module returns the module that owns the space's memory.
func (s *Space) Module() wasmheap.Module { return s.module }

// Live returns a snapshot of live allocation ids and their byte offsets.
func (s *Space) Live() map[int]uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]uint32, len(s.live))
	for id, a := range s.live {
		out[id] = a.offset
	}
	return out
}

// LiveCount returns the number of live allocations.
func (s *Space) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// NextID returns the id the next allocation will receive.
func (s *Space) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID
}

func (s *Space) record(offset, size uint32, k kind.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.live[id] = allocation{offset: offset, size: size, kind: k}
	return id
}

func (s *Space) remove(id int) (allocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.live[id]
	if ok {
		delete(s.live, id)
	}
	return a, ok
}

// enqueue queues id for release by the next sweep. It runs on the cleanup
// goroutine.
func (s *Space) enqueue(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, id)
}

func (s *Space) takePending() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pending
	s.pending = nil
	return p
}
