// File: engine/engine.go
// Author: momentics <momentics@gmail.com>
//
// Engine is the sh-equivalent of the source material: the fixed channel
// table, the peer transport's two special channels, and the dispatcher/
// scheduler/pump that drive them. Grounded in shape on the teacher's
// facade/hioload.go construction style (Config in, single struct out) and
// in substance on the component design split across wire/channel/reactor.

package engine

import (
	"log"
	"sync"

	eapachequeue "github.com/eapache/queue"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tunnel/api"
	"github.com/momentics/hioload-tunnel/channel"
	"github.com/momentics/hioload-tunnel/pool"
	"github.com/momentics/hioload-tunnel/reactor"
	"github.com/momentics/hioload-tunnel/wire"
)

// ProcessMsgFunc is the polymorphic dispatcher hook: side-specific engines
// may wrap the default core dispatcher to recognize additional message
// kinds, delegating the three core kinds to DefaultProcessMsg.
type ProcessMsgFunc func(e *Engine, h wire.Header) error

// Engine owns every channel, the peer transport's two special channels
// among them, and drives the single-threaded cooperative pump.
type Engine struct {
	channels []*channel.Channel // index 0..nrch-1; FromPeer/ToPeer are 0/1
	nrch     int

	maxOutgoingMsg uint32

	poller   reactor.Poller
	pollMask *unix.Sigset_t

	processMsg ProcessMsgFunc
	logger     *log.Logger
	verbose    bool

	synchMu      sync.Mutex
	pendingSynch *eapachequeue.Queue // queued synchronous sends, FIFO
	readyQueue   api.Ring[int]       // ready channel indices this poll turn
}

// New constructs an Engine from cfg. peerIn is the fd the peer transport is
// read from (bound to ch[FROM_PEER], dir FromFD); peerOut is the fd bytes
// are written to (bound to ch[TO_PEER], dir ToFD). userFDs gives the
// non-blocking fd handle for each entry in cfg.Channels, in order.
func New(cfg Config, peerIn, peerOut api.NetConn, userFDs []api.NetConn) (*Engine, error) {
	if len(userFDs) != len(cfg.Channels) {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "userFDs count must match cfg.Channels count")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	nrch := wire.NRSpecialCh + 1 + len(cfg.Channels)
	channels := make([]*channel.Channel, nrch)
	channels[wire.FromPeer] = channel.New(channel.FromFD, peerIn, cfg.PeerInboundRingCapacity)
	channels[wire.ToPeer] = channel.New(channel.ToFD, peerOut, cfg.PeerOutboundRingCapacity)

	for i, spec := range cfg.Channels {
		idx := wire.NRSpecialCh + 1 + i
		dir := channel.ToFD
		if spec.Dir == int(channel.FromFD) {
			dir = channel.FromFD
		}
		ch := channel.New(dir, userFDs[i], spec.RingCapacity)
		if dir == channel.FromFD {
			ch.Window = spec.InitialWindow
		}
		channels[idx] = ch
	}

	e := &Engine{
		channels:       channels,
		nrch:           nrch,
		maxOutgoingMsg: cfg.MaxOutgoingMsg,
		poller:         reactor.NewPoller(cfg.PollMask),
		pollMask:       cfg.PollMask,
		logger:         logger,
		verbose:        cfg.Verbose,
		pendingSynch:   eapachequeue.New(),
		readyQueue:     pool.NewRingBuffer[int](nextPow2(nrch)),
	}
	e.processMsg = func(eng *Engine, h wire.Header) error { return eng.DefaultProcessMsg(h) }
	return e, nil
}

func nextPow2(n int) uint64 {
	p := uint64(1)
	for p < uint64(n) {
		p <<= 1
	}
	if p == 0 {
		p = 1
	}
	return p
}

// SetDispatcher installs a side-specific dispatcher, which should delegate
// the three core message kinds to DefaultProcessMsg.
func (e *Engine) SetDispatcher(f ProcessMsgFunc) { e.processMsg = f }

// Channel returns the channel at chno, or nil if out of range.
func (e *Engine) Channel(chno uint32) *channel.Channel {
	if int(chno) >= len(e.channels) {
		return nil
	}
	return e.channels[chno]
}

// NumChannels returns the total channel count, special channels included.
func (e *Engine) NumChannels() int { return e.nrch }

func (e *Engine) debugf(format string, args ...any) {
	if e.verbose {
		e.logger.Printf(format, args...)
	}
}

// maxEmit recomputes the outbound room cap: the smaller of the configured
// max outgoing message size and the current room in the peer-outbound
// ring. Recomputed before every single emission, since earlier emissions
// in the same turn consume that room.
func (e *Engine) maxEmit() int {
	room := e.channels[wire.ToPeer].Ring().Room()
	if int(e.maxOutgoingMsg) < room {
		return int(e.maxOutgoingMsg)
	}
	return room
}
