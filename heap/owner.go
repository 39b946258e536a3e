package heap

// Ownership says who releases a handle's byte range.
type Ownership uint8

const (
	// OwnerSelf marks the handle that owns its allocation.
	OwnerSelf Ownership = iota
	// OwnerHandle marks a view onto another handle's allocation.
	OwnerHandle
	// OwnerExternal marks a view onto memory this library does not track.
	OwnerExternal
)

func (o Ownership) String() string {
	switch o {
	case OwnerSelf:
		return "self"
	case OwnerHandle:
		return "handle"
	case OwnerExternal:
		return "external"
	}
	return "unknown"
}

// Owner identifies who owns a handle's bytes. A view holds a reference to
// its owning handle, which keeps the owner reachable for as long as the view
// is.
type Owner struct {
	ref *Array
	tag Ownership
}

// Ownership returns the owner variant.
func (o Owner) Ownership() Ownership { return o.tag }

// Handle returns the owning handle for OwnerHandle, or nil.
func (o Owner) Handle() *Array { return o.ref }

// Self reports whether the handle owns its allocation.
func (o Owner) Self() bool { return o.tag == OwnerSelf }

func (o Owner) String() string { return o.tag.String() }
