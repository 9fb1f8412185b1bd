// File: wire/messages.go
// Author: momentics <momentics@gmail.com>

package wire

import "encoding/binary"

// ChannelData is the decoded fixed prefix of a CHANNEL_DATA message. The
// payload itself is not copied into this struct — callers read it straight
// out of the ring via scatter/gather, per the zero-copy transit contract.
type ChannelData struct {
	Channel    uint32
	PayloadLen int
}

// EncodeChannelDataHeader writes the header + channel-field prefix for a
// CHANNEL_DATA message of the given payload length into dst, which must be
// at least ChannelDataPrefixSize bytes. The payload itself is written
// separately (it streams from a ring via scatter/gather).
func EncodeChannelDataHeader(dst []byte, channel uint32, payloadLen int) {
	Header{Type: MsgChannelData, Size: uint16(ChannelDataPrefixSize + payloadLen)}.Encode(dst)
	binary.LittleEndian.PutUint32(dst[HeaderSize:ChannelDataPrefixSize], channel)
}

// DecodeChannelDataPrefix reads the channel field following the header. src
// must start at the byte after the header and be at least 4 bytes.
func DecodeChannelDataPrefix(src []byte) uint32 {
	return binary.LittleEndian.Uint32(src[0:4])
}

// ChannelWindow is the decoded body of a CHANNEL_WINDOW message.
type ChannelWindow struct {
	Channel     uint32
	WindowDelta uint32
}

// Encode writes the full CHANNEL_WINDOW message (header + body) into dst,
// which must be at least ChannelWindowSize bytes.
func (m ChannelWindow) Encode(dst []byte) {
	Header{Type: MsgChannelWindow, Size: ChannelWindowSize}.Encode(dst)
	binary.LittleEndian.PutUint32(dst[HeaderSize:HeaderSize+4], m.Channel)
	binary.LittleEndian.PutUint32(dst[HeaderSize+4:HeaderSize+8], m.WindowDelta)
}

// DecodeChannelWindow reads a CHANNEL_WINDOW body. src must start at the
// byte after the header and be at least 8 bytes.
func DecodeChannelWindow(src []byte) ChannelWindow {
	return ChannelWindow{
		Channel:     binary.LittleEndian.Uint32(src[0:4]),
		WindowDelta: binary.LittleEndian.Uint32(src[4:8]),
	}
}

// ChannelClose is the decoded body of a CHANNEL_CLOSE message.
type ChannelClose struct {
	Channel uint32
}

// Encode writes the full CHANNEL_CLOSE message (header + body) into dst,
// which must be at least ChannelCloseSize bytes.
func (m ChannelClose) Encode(dst []byte) {
	Header{Type: MsgChannelClose, Size: ChannelCloseSize}.Encode(dst)
	binary.LittleEndian.PutUint32(dst[HeaderSize:HeaderSize+4], m.Channel)
}

// DecodeChannelClose reads a CHANNEL_CLOSE body. src must start at the byte
// after the header and be at least 4 bytes.
func DecodeChannelClose(src []byte) ChannelClose {
	return ChannelClose{Channel: binary.LittleEndian.Uint32(src[0:4])}
}
