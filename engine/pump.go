// File: engine/pump.go
// Author: momentics <momentics@gmail.com>
//
// The I/O pump: IOLoopInit sets channel fds non-blocking once at startup;
// IOLoopDoIO is the single suspension point (one poll call, then service
// every ready channel); IOLoopPump drains the inbound queue and refills the
// outbound one. Composing these into a run loop and deciding when to stop
// is the surrounding driver's job, not the core's.

package engine

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tunnel/api"
	"github.com/momentics/hioload-tunnel/reactor"
	"github.com/momentics/hioload-tunnel/wire"
)

// IOLoopInit places every channel's fd in non-blocking mode. Must be called
// once before the first IOLoopDoIO.
func (e *Engine) IOLoopInit() error {
	for _, ch := range e.channels {
		if ch == nil || !ch.Open() {
			continue
		}
		if err := unix.SetNonblock(int(ch.RawFD()), true); err != nil {
			return api.NewSystemError("set nonblock", err)
		}
	}
	return nil
}

// IOLoopDoIO builds a poll descriptor per open channel, blocks on the
// engine's single suspension point if any channel wants service, and
// services every descriptor the poller reports ready.
func (e *Engine) IOLoopDoIO() error {
	descs := make([]reactor.Desc, 0, len(e.channels))
	owners := make([]int, 0, len(e.channels))
	anyWant := false

	for i, ch := range e.channels {
		if ch == nil || !ch.Open() {
			continue
		}
		want := ch.Want()
		descs = append(descs, reactor.Desc{FD: ch.RawFD(), Want: want})
		owners = append(owners, i)
		if want != 0 {
			anyWant = true
		}
	}
	if !anyWant {
		return nil
	}

	if _, err := e.poller.Poll(descs, -1); err != nil {
		return api.NewSystemError("poll", err)
	}

	for i, d := range descs {
		if d.Ready != 0 {
			// pack channel index and ready-event bits into one int: the
			// ready queue only carries scalars, and events fit in 3 bits.
			e.readyQueue.Enqueue(owners[i]<<3 | int(d.Ready))
		}
	}
	for {
		packed, ok := e.readyQueue.Dequeue()
		if !ok {
			break
		}
		idx := packed >> 3
		ready := reactor.EventType(packed & 0x7)
		if err := e.channels[idx].Service(ready); err != nil {
			return api.NewSystemError("channel service", err)
		}
	}
	return nil
}

// IOLoopPump drains every complete message currently sitting on the
// peer-inbound ring, then runs one outbound scheduling pass over every
// user channel.
func (e *Engine) IOLoopPump() error {
	inRing := e.channels[wire.FromPeer].Ring()
	for {
		h, ok, err := wire.DetectMessage(inRing)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := e.processMsg(e, h); err != nil {
			return err
		}
	}
	return e.ScheduleOutbound()
}

// Done reports the default termination predicate: every user channel has
// sent its EOF, the peer-outbound ring is fully drained, and the
// peer-inbound ring holds no partial message. Drivers are free to use a
// different predicate; this one matches the canonical composition rule.
func (e *Engine) Done() bool {
	for chno := wire.NRSpecialCh + 1; chno < e.nrch; chno++ {
		if !e.channels[chno].SentEOF {
			return false
		}
	}
	if e.channels[wire.ToPeer].Ring().Size() != 0 {
		return false
	}
	if e.channels[wire.FromPeer].Ring().Size() != 0 {
		return false
	}
	return true
}
