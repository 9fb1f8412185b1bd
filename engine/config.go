// File: engine/config.go
// Author: momentics <momentics@gmail.com>
//
// Config mirrors the teacher's single plain-struct-plus-DefaultConfig
// pattern (facade/hioload.go): no flag/env parsing inside the library, a
// caller-supplied struct with sane zero-value-safe defaults.

package engine

import (
	"log"

	"golang.org/x/sys/unix"
)

// ChannelSpec describes one user channel at construction time. The engine
// allocates channels strictly in the order given, starting at index
// wire.NRSpecialCh+1; dynamic channel creation after construction is not
// supported.
type ChannelSpec struct {
	Dir          int // channel.ToFD or channel.FromFD
	RingCapacity int
	InitialWindow uint32 // meaningful only for FromFD channels
}

// Config carries everything the engine needs at construction. There is no
// parsing layer here by design — argument parsing and transport setup are
// the surrounding driver's job.
type Config struct {
	// MaxOutgoingMsg caps any single emitted message, header included.
	MaxOutgoingMsg uint32

	// PeerInboundRingCapacity sizes ch[FROM_PEER]'s ring. Must be at least
	// MaxOutgoingMsg, or the two peers can deadlock on framing.
	PeerInboundRingCapacity int

	// PeerOutboundRingCapacity sizes ch[TO_PEER]'s ring.
	PeerOutboundRingCapacity int

	// Channels lists the user channels beyond the two special indices, in
	// allocation order.
	Channels []ChannelSpec

	// PollMask is blocked atomically for the duration of each poll
	// syscall; nil polls with the caller's current signal mask unchanged.
	PollMask *unix.Sigset_t

	// Logger receives the dispatcher's and scheduler's debug lines when
	// Verbose is set. Protocol violations and fatal errors are returned to
	// the caller, not logged. Defaults to log.Default() when nil.
	Logger *log.Logger

	// Verbose gates the per-message debug lines (data received or emitted,
	// window credited or acked, close received or sent).
	Verbose bool
}

// DefaultConfig returns a Config sized for a small interactive session:
// a 65535-byte max message (the largest size the u16 header field can
// declare), 64KiB ring capacities, and no user channels (callers append
// their own).
func DefaultConfig() Config {
	return Config{
		MaxOutgoingMsg:           65535,
		PeerInboundRingCapacity:  65536,
		PeerOutboundRingCapacity: 65536,
		Channels:                 nil,
		PollMask:                 nil,
		Logger:                   log.Default(),
		Verbose:                  false,
	}
}
