// File: wire/header.go
// Author: momentics <momentics@gmail.com>

package wire

import "encoding/binary"

// Header is the fixed message header present on every wire message: a
// one-byte type tag followed by a little-endian total message size
// (including the header itself).
type Header struct {
	Type MsgType
	Size uint16
}

// Encode writes the header into dst, which must be at least HeaderSize
// bytes.
func (h Header) Encode(dst []byte) {
	dst[0] = byte(h.Type)
	binary.LittleEndian.PutUint16(dst[1:3], h.Size)
}

// DecodeHeader reads a Header from the front of src, which must be at least
// HeaderSize bytes.
func DecodeHeader(src []byte) Header {
	return Header{
		Type: MsgType(src[0]),
		Size: binary.LittleEndian.Uint16(src[1:3]),
	}
}
