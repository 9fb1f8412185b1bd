// File: engine/reader.go
// Author: momentics <momentics@gmail.com>
//
// ReadMsg performs two blocking reads via an injected reader functor —
// header, then body — for use during engine setup before the pump is
// live. It is the only place in the core that blocks deliberately.

package engine

import "github.com/momentics/hioload-tunnel/wire"

// Reader reads exactly len(p) bytes into p or returns an error, the
// injected blocking-read functor ReadMsg uses for both the header and body
// phases.
type Reader func(p []byte) error

// Msg is a freshly allocated, fully decoded message returned by ReadMsg.
// Body is the raw bytes following the header, owned by the caller.
type Msg struct {
	Header wire.Header
	Body   []byte
}

// ReadMsg reads one complete framed message synchronously via rdr. Short
// reads and size violations surface as protocol errors: a header short
// read means the peer disconnected; a header declaring a size smaller than
// the header itself is an impossible message; a short body read means the
// message was truncated in flight.
func ReadMsg(rdr Reader) (*Msg, error) {
	var hdr [wire.HeaderSize]byte
	if err := rdr(hdr[:]); err != nil {
		return nil, errPeerDisconnected()
	}
	h := wire.DecodeHeader(hdr[:])
	if int(h.Size) < wire.HeaderSize {
		return nil, errImpossibleMessage(h.Size)
	}

	bodyLen := int(h.Size) - wire.HeaderSize
	body := make([]byte, bodyLen)
	if bodyLen > 0 {
		if err := rdr(body); err != nil {
			return nil, errTruncatedMessage()
		}
	}
	return &Msg{Header: h, Body: body}, nil
}
