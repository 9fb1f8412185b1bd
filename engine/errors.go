// File: engine/errors.go
// Author: momentics <momentics@gmail.com>

package engine

import (
	"github.com/momentics/hioload-tunnel/api"
	"github.com/momentics/hioload-tunnel/wire"
)

func errInvalidChannel(chno uint32) error {
	return api.NewProtocolError("channel %d out of range", chno)
}

func errWrongDirection(chno uint32, want string) error {
	return api.NewProtocolError("channel %d is not %s", chno, want)
}

func errWindowDesync(chno uint32, payloadsz, room int) error {
	return api.NewProtocolError("window desync on channel %d: payload %d exceeds room %d", chno, payloadsz, room)
}

func errWindowOverflow(chno uint32) error {
	return api.NewProtocolError("window credit overflow on channel %d", chno)
}

func errUnknownMessageType(t byte, size uint16) error {
	return api.NewProtocolError("unknown message type %d, size %d", t, size)
}

func errMalformedMessage(t wire.MsgType, got uint16, want int) error {
	return api.NewProtocolError("malformed %s: declared size %d, want %d", t, got, want)
}

func errPeerDisconnected() error {
	return api.NewProtocolError("peer disconnected")
}

func errImpossibleMessage(size uint16) error {
	return api.NewProtocolError("impossible message: declared size %d", size)
}

func errTruncatedMessage() error {
	return api.NewProtocolError("truncated message")
}
