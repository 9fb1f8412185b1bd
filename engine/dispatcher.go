// File: engine/dispatcher.go
// Author: momentics <momentics@gmail.com>
//
// The inbound dispatcher: decodes message bodies off ch[FROM_PEER]'s ring
// and mutates channel state accordingly. DefaultProcessMsg implements the
// three core message kinds; side-specific engines install their own
// ProcessMsgFunc via SetDispatcher and delegate here for anything they
// don't recognize themselves.

package engine

import (
	"github.com/momentics/hioload-tunnel/channel"
	"github.com/momentics/hioload-tunnel/core/buffer"
	"github.com/momentics/hioload-tunnel/wire"
)

func (e *Engine) validUserChannel(chno uint32) bool {
	return chno > wire.NRSpecialCh && int(chno) < e.nrch
}

// DefaultProcessMsg is the core dispatcher installed by New. It is also the
// delegation target for side-specific ProcessMsgFunc implementations.
func (e *Engine) DefaultProcessMsg(h wire.Header) error {
	switch h.Type {
	case wire.MsgChannelData:
		return e.processChannelData(h)
	case wire.MsgChannelWindow:
		return e.processChannelWindow(h)
	case wire.MsgChannelClose:
		return e.processChannelClose(h)
	default:
		rb := e.channels[wire.FromPeer].Ring()
		rb.NoteRemoved(int(h.Size))
		return errUnknownMessageType(byte(h.Type), h.Size)
	}
}

// readFixedBody validates that h.Size matches the fixed size expected for a
// CHANNEL_WINDOW/CHANNEL_CLOSE message, then copies the full message (header
// included) out of rb into dst and removes it from the ring. A declared size
// that doesn't match the fixed size is a protocol violation; the ring is
// still drained by h.Size bytes first, matching the unknown-message-type
// drain-before-die ordering, so a diagnostic dump taken during unwind sees a
// consistent ring.
func (e *Engine) readFixedBody(rb *buffer.Ring, h wire.Header, dst []byte) error {
	if int(h.Size) != len(dst) {
		rb.NoteRemoved(int(h.Size))
		return errMalformedMessage(h.Type, h.Size, len(dst))
	}
	rb.CopyOut(dst, len(dst))
	rb.NoteRemoved(len(dst))
	return nil
}

func (e *Engine) processChannelData(h wire.Header) error {
	rb := e.channels[wire.FromPeer].Ring()

	if int(h.Size) < wire.ChannelDataPrefixSize {
		rb.NoteRemoved(int(h.Size))
		return errMalformedMessage(h.Type, h.Size, wire.ChannelDataPrefixSize)
	}

	var prefix [wire.ChannelDataPrefixSize]byte
	rb.CopyOut(prefix[:], wire.ChannelDataPrefixSize)
	rb.NoteRemoved(wire.ChannelDataPrefixSize)

	chno := wire.DecodeChannelDataPrefix(prefix[wire.HeaderSize:])
	payloadsz := int(h.Size) - wire.ChannelDataPrefixSize

	if !e.validUserChannel(chno) {
		rb.NoteRemoved(payloadsz)
		return errInvalidChannel(chno)
	}

	target := e.channels[chno]
	if target.Dir != channel.ToFD {
		rb.NoteRemoved(payloadsz)
		return errWrongDirection(chno, "TO_FD")
	}

	if !target.Open() {
		// closed locally already; the close may have raced with this send
		// in flight — tolerate it, discard the payload.
		rb.NoteRemoved(payloadsz)
		return nil
	}

	if payloadsz > target.Ring().Room() {
		rb.NoteRemoved(payloadsz)
		return errWindowDesync(chno, payloadsz, target.Ring().Room())
	}

	buffer.CopySegments(target.Ring(), rb, payloadsz)
	e.debugf("dispatch: channel %d received %d bytes", chno, payloadsz)
	return nil
}

func (e *Engine) processChannelWindow(h wire.Header) error {
	rb := e.channels[wire.FromPeer].Ring()

	var msg [wire.ChannelWindowSize]byte
	if err := e.readFixedBody(rb, h, msg[:]); err != nil {
		return err
	}

	w := wire.DecodeChannelWindow(msg[wire.HeaderSize:])
	if !e.validUserChannel(w.Channel) {
		return errInvalidChannel(w.Channel)
	}

	target := e.channels[w.Channel]
	if target.Dir != channel.FromFD {
		return errWrongDirection(w.Channel, "FROM_FD")
	}
	if !target.Open() {
		return nil
	}

	sum, overflow := channel.SaturatingAddU32(target.Window, w.WindowDelta)
	if overflow {
		return errWindowOverflow(w.Channel)
	}
	target.Window = sum
	e.debugf("dispatch: channel %d window credited +%d -> %d", w.Channel, w.WindowDelta, target.Window)
	return nil
}

func (e *Engine) processChannelClose(h wire.Header) error {
	rb := e.channels[wire.FromPeer].Ring()

	var msg [wire.ChannelCloseSize]byte
	if err := e.readFixedBody(rb, h, msg[:]); err != nil {
		return err
	}

	c := wire.DecodeChannelClose(msg[wire.HeaderSize:])
	if !e.validUserChannel(c.Channel) {
		// tolerate late closes for channels we no longer track.
		return nil
	}

	target := e.channels[c.Channel]
	target.SentEOF = true
	target.Close()
	e.debugf("dispatch: channel %d closed by peer", c.Channel)
	return nil
}
