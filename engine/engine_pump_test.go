// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

package engine

import (
	"os"
	"testing"

	"github.com/momentics/hioload-tunnel/api"
	"github.com/momentics/hioload-tunnel/channel"
	"github.com/momentics/hioload-tunnel/wire"
)

type pipeConn struct{ f *os.File }

func (c *pipeConn) Read(p []byte) (int, error)  { return c.f.Read(p) }
func (c *pipeConn) Write(p []byte) (int, error) { return c.f.Write(p) }
func (c *pipeConn) Close() error                { return c.f.Close() }
func (c *pipeConn) RawFD() uintptr              { return c.f.Fd() }

// TestIOLoopDoIOThenPumpDeliversToOutboundRing exercises the real
// suspension point end to end: bytes sitting in a FromFD channel's fd are
// read into its ring by IOLoopDoIO, then emitted into the peer-outbound
// ring as a CHANNEL_DATA message by IOLoopPump's scheduling pass.
func TestIOLoopDoIOThenPumpDeliversToOutboundRing(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	cfg := DefaultConfig()
	cfg.MaxOutgoingMsg = 64
	cfg.Channels = []ChannelSpec{{Dir: int(channel.FromFD), RingCapacity: 64, InitialWindow: 100}}

	// Peer transport fds must be real, distinct descriptors: IOLoopInit
	// calls unix.SetNonblock on every open channel's fd, and a fakeConn
	// with a made-up fd number would mutate whatever real fd that number
	// happens to name in this process (e.g. stdout/stderr).
	peerInR, peerInW, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer peerInR.Close()
	defer peerInW.Close()
	peerOutR, peerOutW, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer peerOutR.Close()
	defer peerOutW.Close()

	peerR, peerW := &pipeConn{f: peerInR}, &pipeConn{f: peerOutW}
	e, err := New(cfg, peerR, peerW, []api.NetConn{&pipeConn{f: r}})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.IOLoopInit(); err != nil {
		t.Fatal(err)
	}

	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}

	if err := e.IOLoopDoIO(); err != nil {
		t.Fatal(err)
	}
	if err := e.IOLoopPump(); err != nil {
		t.Fatal(err)
	}

	out := e.Channel(wire.ToPeer).Ring()
	h, ok, err := wire.DetectMessage(out)
	if err != nil || !ok {
		t.Fatalf("expected a CHANNEL_DATA message, got ok=%v err=%v", ok, err)
	}
	if h.Type != wire.MsgChannelData || int(h.Size) != wire.ChannelDataPrefixSize+5 {
		t.Fatalf("unexpected header %+v", h)
	}
}

func TestDoneReflectsTerminationPredicate(t *testing.T) {
	e, _ := newTestEngine(2, 64)
	if e.Done() {
		t.Fatal("fresh engine with open channels must not be Done")
	}
	for chno := wire.NRSpecialCh + 1; chno < e.NumChannels(); chno++ {
		ch := e.Channel(uint32(chno))
		ch.Close()
		ch.SentEOF = true
	}
	if !e.Done() {
		t.Fatal("expected Done once every user channel has sent EOF and rings are drained")
	}
}
