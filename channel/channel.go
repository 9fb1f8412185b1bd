// File: channel/channel.go
// Author: momentics <momentics@gmail.com>
//
// Channel is the named endpoint binding one ring buffer and optionally one
// non-blocking file descriptor. Grounded on the teacher's raw-fd service
// style in examples/reactor_echo/socket_unix.go: non-blocking
// unix.Readv/unix.Writev against a RawFD, EAGAIN swallowed as "not ready",
// a zero-length read treated as benign EOF.

package channel

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tunnel/api"
	"github.com/momentics/hioload-tunnel/core/buffer"
	"github.com/momentics/hioload-tunnel/reactor"
)

// Direction is immutable after a Channel is constructed.
type Direction int

const (
	// ToFD sinks bytes from the ring to the channel's fd.
	ToFD Direction = iota
	// FromFD sources bytes from the channel's fd into the ring.
	FromFD
)

// Channel is one multiplexed endpoint: a ring buffer, an optional
// non-blocking fd handle, and the flow-control/close bookkeeping the
// dispatcher and scheduler mutate each pump turn.
type Channel struct {
	Dir Direction

	fdh api.NetConn // nil once locally closed
	rb  *buffer.Ring

	// Window is FROM_FD-only: credit granted by the peer, in bytes we may
	// still send. Saturating add; overflow is a protocol error.
	Window uint32

	// BytesWritten is TO_FD-only: bytes delivered to the local fd since the
	// last CHANNEL_WINDOW we emitted. Reset to 0 after emission.
	BytesWritten uint32

	// SentEOF records whether we have emitted CHANNEL_CLOSE for this
	// channel. Monotonic: once true, never false again.
	SentEOF bool

	// PendingClose is set by the upper layer to request a graceful close;
	// effected only once rb is fully drained.
	PendingClose bool
}

// New constructs a Channel bound to fdh with a ring of the given capacity.
// A nil fdh gives a channel that is locally closed from the start.
func New(dir Direction, fdh api.NetConn, ringCapacity int) *Channel {
	return &Channel{
		Dir: dir,
		fdh: fdh,
		rb:  buffer.NewRing(ringCapacity),
	}
}

// Ring exposes the channel's backing ring buffer.
func (c *Channel) Ring() *buffer.Ring { return c.rb }

// Open reports whether the channel still owns a live fd handle.
func (c *Channel) Open() bool { return c.fdh != nil }

// Want reports the poll events this channel currently needs serviced: a
// FromFD channel with an open fd and ring room wants readability; a ToFD
// channel with an open fd and buffered bytes wants writability.
func (c *Channel) Want() reactor.EventType {
	if c.fdh == nil {
		return 0
	}
	switch c.Dir {
	case FromFD:
		if c.rb.Room() > 0 {
			return reactor.EventRead
		}
	case ToFD:
		if c.rb.Size() > 0 {
			return reactor.EventWrite
		}
	}
	return 0
}

// RawFD returns the underlying fd, or ^uintptr(0) if the channel has no
// live handle (callers must check Open first; this exists for building
// poll descriptor arrays without a second branch).
func (c *Channel) RawFD() uintptr {
	if c.fdh == nil {
		return ^uintptr(0)
	}
	return c.fdh.RawFD()
}

// Service performs the non-blocking read or write indicated by ready
// against this channel's fd, updating its ring and bookkeeping. Called once
// per pump turn for each channel the poller reported ready.
func (c *Channel) Service(ready reactor.EventType) error {
	if c.fdh == nil {
		return nil
	}
	switch c.Dir {
	case FromFD:
		if ready&reactor.EventRead != 0 {
			return c.serviceRead()
		}
	case ToFD:
		if ready&reactor.EventWrite != 0 {
			return c.serviceWrite()
		}
	}
	return nil
}

func (c *Channel) serviceRead() error {
	room := c.rb.Room()
	if room == 0 {
		return nil
	}
	var iov [2]buffer.IOVec
	segs := c.rb.WritableIOV(iov[:], room)

	// unix.Readv spans the wraparound boundary in one syscall, so a
	// channel whose free space wraps still drains fully in a single
	// service call rather than waiting a second pump turn.
	n, err := unix.Readv(int(c.fdh.RawFD()), toRawIOV(iov[:segs]))
	if err != nil {
		if err == unix.EAGAIN {
			return nil
		}
		return fmt.Errorf("channel read: %w", err)
	}
	if n == 0 {
		// benign EOF: peer-local source is done.
		c.closeLocal()
		return nil
	}
	c.rb.NoteAdded(n)
	return nil
}

func (c *Channel) serviceWrite() error {
	size := c.rb.Size()
	if size == 0 {
		return nil
	}
	var iov [2]buffer.IOVec
	segs := c.rb.ReadableIOV(iov[:], size)

	n, err := unix.Writev(int(c.fdh.RawFD()), toRawIOV(iov[:segs]))
	if err != nil {
		if err == unix.EAGAIN {
			return nil
		}
		return fmt.Errorf("channel write: %w", err)
	}
	c.rb.NoteRemoved(n)
	c.BytesWritten += uint32(n)
	return nil
}

// toRawIOV converts buffer.IOVec segments to the [][]byte shape
// unix.Readv/Writev expect.
func toRawIOV(iov []buffer.IOVec) [][]byte {
	raw := make([][]byte, len(iov))
	for i, v := range iov {
		raw[i] = v.Base
	}
	return raw
}

// closeLocal releases fdh, transitioning the channel toward drained. Does
// not touch SentEOF: that is set by the outbound scheduler once it observes
// fdh == nil, rb empty, and !SentEOF (xmit_eof), or by the dispatcher when a
// CHANNEL_CLOSE arrives.
func (c *Channel) closeLocal() {
	if c.fdh == nil {
		return
	}
	_ = c.fdh.Close()
	c.fdh = nil
}

// Close is the dispatcher-driven counterpart of closeLocal, invoked when a
// CHANNEL_CLOSE arrives for this channel. Idempotent.
func (c *Channel) Close() {
	c.closeLocal()
}

// SaturatingAddU32 adds b to a, returning (result, overflowed). Window
// credit accumulation uses this rather than a bare +=, since a peer
// granting enough cumulative credit to overflow u32 is a protocol
// violation, not a silent wraparound.
func SaturatingAddU32(a, b uint32) (uint32, bool) {
	sum := a + b
	if sum < a {
		return ^uint32(0), true
	}
	return sum, false
}
