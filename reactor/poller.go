// File: reactor/poller.go
// Author: momentics <momentics@gmail.com>

package reactor

// EventType is a bitmask of readiness conditions a caller asks the Poller
// to report on a descriptor.
type EventType uint32

const (
	EventRead  EventType = 1 << 0
	EventWrite EventType = 1 << 1
	EventError EventType = 1 << 2
)

// Desc is one descriptor to watch and the events requested for it, indexed
// positionally: Poll's result slice mirrors the order of the input slice.
type Desc struct {
	FD    uintptr
	Want  EventType
	Ready EventType
}

// Poller is the platform-neutral suspension point used by the engine's I/O
// pump. Unlike a persistent-registration reactor, a Poller rebuilds its
// watch set on every call: the pump owns the descriptor list and passes the
// whole thing in each turn, since which channels want which events changes
// turn to turn as windows and EOF state evolve.
type Poller interface {
	// Poll blocks until at least one descriptor in descs is ready, the
	// timeout elapses (timeoutMs < 0 blocks indefinitely), or a signal
	// outside the poller's blocked set arrives. It fills in each Desc's
	// Ready field in place and returns the count of ready descriptors.
	Poll(descs []Desc, timeoutMs int) (int, error)

	// Close releases any OS resources held by the poller.
	Close() error
}
