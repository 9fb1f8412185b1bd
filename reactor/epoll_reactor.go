//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor - Linux ppoll(2) implementation of Poller.

package reactor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ppollPoller implements Poller with a single unix.Ppoll call per Poll,
// rebuilding the unix.PollFd array from descs each turn. A non-nil sigmask
// is blocked atomically for the duration of the syscall and restored on
// return, closing the signal-delivery race a separate sigprocmask/poll pair
// would leave open.
type ppollPoller struct {
	sigmask *unix.Sigset_t
	pfds    []unix.PollFd // reused across calls to avoid per-turn allocation
}

// NewPoller constructs the Linux ppoll-based Poller. sigmask may be nil to
// poll with the caller's current signal mask unchanged.
func NewPoller(sigmask *unix.Sigset_t) Poller {
	return &ppollPoller{sigmask: sigmask}
}

func toPollEvents(want EventType) int16 {
	var ev int16
	if want&EventRead != 0 {
		ev |= unix.POLLIN
	}
	if want&EventWrite != 0 {
		ev |= unix.POLLOUT
	}
	return ev
}

func fromPollEvents(revents int16) EventType {
	var ev EventType
	if revents&unix.POLLIN != 0 {
		ev |= EventRead
	}
	if revents&unix.POLLOUT != 0 {
		ev |= EventWrite
	}
	if revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		ev |= EventError
	}
	return ev
}

func (p *ppollPoller) Poll(descs []Desc, timeoutMs int) (int, error) {
	if cap(p.pfds) < len(descs) {
		p.pfds = make([]unix.PollFd, len(descs))
	}
	p.pfds = p.pfds[:len(descs)]
	for i, d := range descs {
		p.pfds[i] = unix.PollFd{Fd: int32(d.FD), Events: toPollEvents(d.Want)}
	}

	var ts *unix.Timespec
	if timeoutMs >= 0 {
		t := unix.NsecToTimespec(int64(timeoutMs) * int64(1e6))
		ts = &t
	}

	n, err := unix.Ppoll(p.pfds, ts, p.sigmask)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("ppoll: %w", err)
	}

	ready := 0
	for i := range descs {
		descs[i].Ready = fromPollEvents(p.pfds[i].Revents)
		if descs[i].Ready != 0 {
			ready++
		}
	}
	return n, nil
}

func (p *ppollPoller) Close() error {
	return nil
}
