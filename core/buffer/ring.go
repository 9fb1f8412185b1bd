// File: core/buffer/ring.go
// Author: momentics <momentics@gmail.com>
//
// Fixed-capacity byte FIFO with scatter/gather views, the substrate shared
// between the framer and every channel's payload storage. Single-producer,
// single-consumer by contract (each ring is owned by exactly one channel or
// by the engine, never shared across goroutines), so no locking.

package buffer

import "fmt"

// IOVec is one contiguous segment of a scatter/gather view into a Ring's
// backing array.
type IOVec struct {
	Base []byte
}

// Ring is a fixed-capacity byte ring buffer. The backing array is allocated
// once at construction and never resized; callers size it to the largest
// message payload they are contractually obligated to accept.
type Ring struct {
	buf  []byte
	head int // next byte to read
	tail int // next byte to write
	n    int // bytes currently readable
}

// NewRing allocates a ring of the given capacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		panic("buffer: ring capacity must be positive")
	}
	return &Ring{buf: make([]byte, capacity)}
}

// Cap returns the ring's fixed capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Size returns the number of bytes currently readable.
func (r *Ring) Size() int { return r.n }

// Room returns the number of bytes currently writable.
func (r *Ring) Room() int { return len(r.buf) - r.n }

// CopyOut copies the first n readable bytes into dst without consuming
// them. Panics if n exceeds Size or dst is too small — both are caller
// bugs, not recoverable protocol conditions.
func (r *Ring) CopyOut(dst []byte, n int) {
	if n > r.n {
		panic(fmt.Sprintf("buffer: CopyOut(%d) exceeds readable size %d", n, r.n))
	}
	if len(dst) < n {
		panic("buffer: CopyOut dst too small")
	}
	cap := len(r.buf)
	first := cap - r.head
	if first >= n {
		copy(dst, r.buf[r.head:r.head+n])
		return
	}
	copy(dst, r.buf[r.head:cap])
	copy(dst[first:], r.buf[0:n-first])
}

// ReadableIOV fills iov with scatter/gather segments covering the first n
// readable bytes without consuming them. Returns the segment count, which
// is 1 unless the requested span wraps the end of the backing array, in
// which case it is 2. iov must have capacity for at least 2 entries.
func (r *Ring) ReadableIOV(iov []IOVec, n int) int {
	if n > r.n {
		panic(fmt.Sprintf("buffer: ReadableIOV(%d) exceeds readable size %d", n, r.n))
	}
	cap := len(r.buf)
	first := cap - r.head
	if first >= n {
		iov[0] = IOVec{Base: r.buf[r.head : r.head+n]}
		return 1
	}
	iov[0] = IOVec{Base: r.buf[r.head:cap]}
	iov[1] = IOVec{Base: r.buf[0 : n-first]}
	return 2
}

// NoteRemoved advances the read cursor by n bytes, as if n bytes had been
// copied out and consumed. Panics if n exceeds Size.
func (r *Ring) NoteRemoved(n int) {
	if n > r.n {
		panic(fmt.Sprintf("buffer: NoteRemoved(%d) exceeds readable size %d", n, r.n))
	}
	r.head = (r.head + n) % len(r.buf)
	r.n -= n
}

// WritableIOV fills iov with scatter/gather segments covering the first n
// writable bytes. Returns the segment count (1 or 2, by the same wraparound
// rule as ReadableIOV). Callers write into the returned segments, then call
// NoteAdded with the number of bytes actually written.
func (r *Ring) WritableIOV(iov []IOVec, n int) int {
	if n > r.Room() {
		panic(fmt.Sprintf("buffer: WritableIOV(%d) exceeds room %d", n, r.Room()))
	}
	cap := len(r.buf)
	first := cap - r.tail
	if first >= n {
		iov[0] = IOVec{Base: r.buf[r.tail : r.tail+n]}
		return 1
	}
	iov[0] = IOVec{Base: r.buf[r.tail:cap]}
	iov[1] = IOVec{Base: r.buf[0 : n-first]}
	return 2
}

// NoteAdded advances the write cursor by n bytes. Panics if n exceeds Room.
func (r *Ring) NoteAdded(n int) {
	if n > r.Room() {
		panic(fmt.Sprintf("buffer: NoteAdded(%d) exceeds room %d", n, r.Room()))
	}
	r.tail = (r.tail + n) % len(r.buf)
	r.n += n
}

// Write copies p into the ring and commits it in one step, for callers that
// don't need the scatter/gather view. Returns an error if p does not fit.
func (r *Ring) Write(p []byte) (int, error) {
	if len(p) > r.Room() {
		return 0, fmt.Errorf("buffer: write of %d bytes exceeds room %d", len(p), r.Room())
	}
	var iov [2]IOVec
	segs := r.WritableIOV(iov[:], len(p))
	off := 0
	for i := 0; i < segs; i++ {
		off += copy(iov[i].Base, p[off:])
	}
	r.NoteAdded(len(p))
	return len(p), nil
}

// Read copies up to len(p) readable bytes into p and consumes them,
// satisfying io.Reader's contract for the portion it reads.
func (r *Ring) Read(p []byte) (int, error) {
	n := len(p)
	if n > r.n {
		n = r.n
	}
	if n == 0 {
		return 0, nil
	}
	r.CopyOut(p[:n], n)
	r.NoteRemoved(n)
	return n, nil
}

// CopySegments copies n bytes directly from src's readable view into dst's
// writable view, without an intermediate buffer, then commits the write on
// dst and advances the read cursor on src. This is the zero-copy path used
// to move an inbound CHANNEL_DATA payload straight into its target
// channel's ring.
func CopySegments(dst, src *Ring, n int) {
	if n > src.Size() {
		panic(fmt.Sprintf("buffer: CopySegments(%d) exceeds source size %d", n, src.Size()))
	}
	if n > dst.Room() {
		panic(fmt.Sprintf("buffer: CopySegments(%d) exceeds dest room %d", n, dst.Room()))
	}
	var srcIov, dstIov [2]IOVec
	srcSegs := src.ReadableIOV(srcIov[:], n)
	dstSegs := dst.WritableIOV(dstIov[:], n)

	si, di := 0, 0
	soff, doff := 0, 0
	for si < srcSegs && di < dstSegs {
		s := srcIov[si].Base[soff:]
		d := dstIov[di].Base[doff:]
		c := copy(d, s)
		soff += c
		doff += c
		if soff == len(srcIov[si].Base) {
			si++
			soff = 0
		}
		if doff == len(dstIov[di].Base) {
			di++
			doff = 0
		}
	}
	src.NoteRemoved(n)
	dst.NoteAdded(n)
}
