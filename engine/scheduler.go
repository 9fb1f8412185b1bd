// File: engine/scheduler.go
// Author: momentics <momentics@gmail.com>
//
// The outbound scheduler: for every user channel, in index order, emit
// owed window credit, then data, then effect a pending close, then EOF —
// each gated by the outbound room remaining in ch[TO_PEER]'s ring after
// everything emitted earlier in the same turn.

package engine

import (
	"github.com/momentics/hioload-tunnel/channel"
	"github.com/momentics/hioload-tunnel/core/buffer"
	"github.com/momentics/hioload-tunnel/wire"
)

// ScheduleOutbound runs one outbound scheduling pass over every user
// channel: xmit_acks, xmit_data, do_pending_close, xmit_eof, in that order
// per channel, matching the "acks precede data" ordering guarantee.
func (e *Engine) ScheduleOutbound() error {
	for chno := wire.NRSpecialCh + 1; chno < e.nrch; chno++ {
		ch := e.channels[chno]
		if ch == nil {
			continue
		}
		if err := e.xmitAcks(ch, uint32(chno)); err != nil {
			return err
		}
		if err := e.xmitData(ch, uint32(chno)); err != nil {
			return err
		}
		e.doPendingClose(ch)
		if err := e.xmitEOF(ch, uint32(chno)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) toPeerRing() *buffer.Ring {
	return e.channels[wire.ToPeer].Ring()
}

// xmitAcks emits a CHANNEL_WINDOW crediting back bytes already delivered to
// the local fd since the last ack, if any are owed and room admits a full
// message.
func (e *Engine) xmitAcks(ch *channel.Channel, chno uint32) error {
	if ch.BytesWritten == 0 {
		return nil
	}
	if e.maxEmit() < wire.ChannelWindowSize {
		return nil
	}
	var buf [wire.ChannelWindowSize]byte
	wire.ChannelWindow{Channel: chno, WindowDelta: ch.BytesWritten}.Encode(buf[:])
	if _, err := e.toPeerRing().Write(buf[:]); err != nil {
		return err
	}
	e.debugf("schedule: channel %d acked %d bytes", chno, ch.BytesWritten)
	ch.BytesWritten = 0
	return nil
}

// xmitData emits at most one CHANNEL_DATA message carrying as much of the
// channel's buffered bytes as room, the outgoing-message cap, and the
// channel's remaining window credit allow. Window is debited here,
// immediately after a successful emission — the chosen resolution to the
// window-accounting Open Question the source material leaves implicit.
// Nothing is emitted once the channel's SentEOF is set.
func (e *Engine) xmitData(ch *channel.Channel, chno uint32) error {
	if ch.Dir != channel.FromFD || ch.SentEOF {
		return nil
	}
	payloadsz := ch.Ring().Size()
	if room := e.maxEmit() - wire.ChannelDataPrefixSize; room < payloadsz {
		payloadsz = room
	}
	if int(ch.Window) < payloadsz {
		payloadsz = int(ch.Window)
	}
	if payloadsz <= 0 {
		return nil
	}

	var prefix [wire.ChannelDataPrefixSize]byte
	wire.EncodeChannelDataHeader(prefix[:], chno, payloadsz)
	if _, err := e.toPeerRing().Write(prefix[:]); err != nil {
		return err
	}
	buffer.CopySegments(e.toPeerRing(), ch.Ring(), payloadsz)
	ch.Window -= uint32(payloadsz)

	e.debugf("schedule: channel %d emitted %d bytes, window now %d", chno, payloadsz, ch.Window)
	return nil
}

// doPendingClose effects a caller-requested graceful close once the
// channel's ring has fully drained to its fd.
func (e *Engine) doPendingClose(ch *channel.Channel) {
	if ch.Dir != channel.ToFD {
		return
	}
	if !ch.Open() || ch.Ring().Size() != 0 || !ch.PendingClose {
		return
	}
	ch.Close()
}

// xmitEOF emits CHANNEL_CLOSE once a channel's fd has been released and
// its ring has drained, announcing to the peer that no more traffic will
// arrive or be accepted on this channel.
func (e *Engine) xmitEOF(ch *channel.Channel, chno uint32) error {
	if ch.Open() || ch.SentEOF || ch.Ring().Size() != 0 {
		return nil
	}
	if e.maxEmit() < wire.ChannelCloseSize {
		return nil
	}
	var buf [wire.ChannelCloseSize]byte
	wire.ChannelClose{Channel: chno}.Encode(buf[:])
	if _, err := e.toPeerRing().Write(buf[:]); err != nil {
		return err
	}
	ch.SentEOF = true
	e.debugf("schedule: channel %d sent EOF", chno)
	return nil
}
