// File: wire/framer.go
// Author: momentics <momentics@gmail.com>
//
// The framer is a pure function over ring occupancy and header contents: it
// never allocates and never blocks, deciding solely from size(rb)/room(rb)
// and the candidate header it copies out (without consuming).

package wire

import "github.com/momentics/hioload-tunnel/core/buffer"

// DetectMessage inspects rb for a complete message. It returns (header,
// true, nil) when a full message is present and the caller is responsible
// for consuming exactly header.Size bytes. It returns (_, false, nil) when
// more bytes are needed. It returns a non-nil error only when the declared
// size can never fit — a fatal, unrecoverable condition for the channel.
//
// Repeated calls against unchanged ring state return the same result: this
// function reads but never mutates rb.
func DetectMessage(rb *buffer.Ring) (Header, bool, error) {
	if rb.Size() < HeaderSize {
		return Header{}, false, nil
	}

	var hdr [HeaderSize]byte
	rb.CopyOut(hdr[:], HeaderSize)
	h := DecodeHeader(hdr[:])

	if int(h.Size) > rb.Size()+rb.Room() {
		return Header{}, false, errImpossiblyLargeMessage(h.Size)
	}

	if rb.Size() < int(h.Size) {
		return Header{}, false, nil
	}

	return h, true, nil
}
