package heap

import "github.com/wippyai/wasm-heap/kind"

// EventType identifies an allocation lifecycle transition.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventReleased
	EventReclaimed // released after the owning handle became unreachable
)

func (t EventType) String() string {
	switch t {
	case EventAllocated:
		return "allocated"
	case EventReleased:
		return "released"
	case EventReclaimed:
		return "reclaimed"
	}
	return "unknown"
}

// Event describes one allocation or release.
type Event struct {
	Space  SpaceID
	ID     int
	Offset uint32
	Size   uint32
	Kind   kind.Kind
	Type   EventType
}

// Observer receives allocation lifecycle events. Observers run synchronously
// on the goroutine performing the operation and must not call back into the
// registry.
type Observer interface {
	OnHeapEvent(Event)
}
