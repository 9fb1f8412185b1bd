// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

package engine

import (
	"io"

	"github.com/momentics/hioload-tunnel/api"
	"github.com/momentics/hioload-tunnel/channel"
	"github.com/momentics/hioload-tunnel/wire"
)

// fakeConn is a no-op api.NetConn for tests that exercise dispatch/schedule
// logic directly against rings without driving real fd I/O.
type fakeConn struct {
	closed bool
	fd     uintptr
}

func (f *fakeConn) Read(p []byte) (int, error)  { return 0, io.EOF }
func (f *fakeConn) Write(p []byte) (int, error) { return len(p), nil }
func (f *fakeConn) Close() error                { f.closed = true; return nil }
func (f *fakeConn) RawFD() uintptr              { return f.fd }

// newTestEngine builds an Engine with n user channels, alternating
// direction starting with ToFD, fakeConn-backed so no real fd I/O occurs
// unless a test explicitly calls IOLoopDoIO.
func newTestEngine(n int, ringCap int) (*Engine, []*fakeConn) {
	cfg := DefaultConfig()
	cfg.PeerInboundRingCapacity = 4096
	cfg.PeerOutboundRingCapacity = 4096
	cfg.MaxOutgoingMsg = 64

	specs := make([]ChannelSpec, n)
	conns := make([]*fakeConn, n)
	userFDs := make([]api.NetConn, n)
	for i := 0; i < n; i++ {
		dir := int(channel.ToFD)
		if i%2 == 1 {
			dir = int(channel.FromFD)
		}
		specs[i] = ChannelSpec{Dir: dir, RingCapacity: ringCap, InitialWindow: 1000}
		conns[i] = &fakeConn{fd: uintptr(100 + i)}
		userFDs[i] = conns[i]
	}
	cfg.Channels = specs

	e, err := New(cfg, &fakeConn{fd: 1}, &fakeConn{fd: 2}, userFDs)
	if err != nil {
		panic(err)
	}
	return e, conns
}

func encodeChannelData(channelNo uint32, payload []byte) []byte {
	buf := make([]byte, wire.ChannelDataPrefixSize+len(payload))
	wire.EncodeChannelDataHeader(buf, channelNo, len(payload))
	copy(buf[wire.ChannelDataPrefixSize:], payload)
	return buf
}
