// File: wire/errors.go
// Author: momentics <momentics@gmail.com>

package wire

import "github.com/momentics/hioload-tunnel/api"

// errImpossiblyLargeMessage builds the error DetectMessage returns when a
// header declares a size that can never fit in the ring even once fully
// drained.
func errImpossiblyLargeMessage(size uint16) *api.ProtocolError {
	return api.NewProtocolError("impossibly large message: declared size %d", size)
}
