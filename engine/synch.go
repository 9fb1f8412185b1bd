// File: engine/synch.go
// Author: momentics <momentics@gmail.com>
//
// QueueMessageSynch serializes control messages that must not be split and
// must not race with ordinary data ordering. Concurrent callers (setup code
// may invoke this from more than one goroutine before the pump goroutine is
// live) are serialized through pendingSynch, an eapache/queue.Queue FIFO,
// drained in arrival order ahead of each caller's own message.

package engine

// pendingMsg is one control message awaiting emission, queued while an
// earlier caller is still pumping for room. ticket identifies the caller's
// own entry so it knows when its turn, not someone else's, has drained.
type pendingMsg struct {
	payload []byte
	ticket  *struct{}
}

// QueueMessageSynch pumps the engine (alternating IOLoopDoIO/IOLoopPump)
// until maxEmit() admits the full message, drains any other pending
// synchronous sends queued ahead of this one in arrival order, then emits
// the message with a single write into the peer-outbound ring.
func (e *Engine) QueueMessageSynch(payload []byte) error {
	mine := &pendingMsg{payload: payload, ticket: new(struct{})}

	e.synchMu.Lock()
	e.pendingSynch.Add(mine)
	e.synchMu.Unlock()

	for {
		e.synchMu.Lock()
		var front *pendingMsg
		if e.pendingSynch.Length() > 0 {
			front, _ = e.pendingSynch.Peek().(*pendingMsg)
		}
		e.synchMu.Unlock()
		if front == nil {
			return nil // queue emptied by a concurrent drainer; ours already went out
		}

		if e.maxEmit() < len(front.payload) {
			if err := e.IOLoopDoIO(); err != nil {
				return err
			}
			if err := e.IOLoopPump(); err != nil {
				return err
			}
			continue
		}

		if _, err := e.toPeerRing().Write(front.payload); err != nil {
			return err
		}

		e.synchMu.Lock()
		e.pendingSynch.Remove()
		e.synchMu.Unlock()

		if front.ticket == mine.ticket {
			return nil
		}
	}
}
