// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

package buffer_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/momentics/hioload-tunnel/core/buffer"
)

// TestRingPropertyBased performs randomized write/consume operations and
// checks Size/Room/Cap invariants, mirroring the teacher's randomized
// enqueue/dequeue loop but over byte payloads instead of scalar items.
func TestRingPropertyBased(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		r := buffer.NewRing(64)

		readable := 0
		for i := 0; i < 5000; i++ {
			op := rng.Intn(2)
			switch op {
			case 0: // write
				n := rng.Intn(r.Room() + 1)
				p := make([]byte, n)
				rng.Read(p)
				if n, err := r.Write(p); err == nil {
					readable += n
				}
			case 1: // consume
				n := rng.Intn(readable + 1)
				if n > 0 {
					dst := make([]byte, n)
					r.CopyOut(dst, n)
					r.NoteRemoved(n)
					readable -= n
				}
			}
			if readable != r.Size() {
				t.Fatalf("invariant failed: expected size %d, got %d", readable, r.Size())
			}
			if r.Size() < 0 || r.Size() > r.Cap() {
				t.Fatalf("ring size out of bounds: %d", r.Size())
			}
			if r.Size()+r.Room() != r.Cap() {
				t.Fatalf("size+room != cap: %d+%d != %d", r.Size(), r.Room(), r.Cap())
			}
		}
	}
}

func TestRingWraparoundScatterGather(t *testing.T) {
	r := buffer.NewRing(8)
	if _, err := r.Write([]byte("abcdef")); err != nil {
		t.Fatal(err)
	}
	r.NoteRemoved(4) // head now at 4, tail at 6

	if _, err := r.Write([]byte("ghij")); err != nil { // wraps: tail 6->2
		t.Fatal(err)
	}
	if r.Size() != 6 {
		t.Fatalf("expected size 6, got %d", r.Size())
	}

	var iov [2]buffer.IOVec
	segs := r.ReadableIOV(iov[:], r.Size())
	if segs != 2 {
		t.Fatalf("expected wraparound to produce 2 segments, got %d", segs)
	}

	var got bytes.Buffer
	got.Write(iov[0].Base)
	got.Write(iov[1].Base)
	if got.String() != "efghij" {
		t.Fatalf("expected %q, got %q", "efghij", got.String())
	}
}

func TestCopySegmentsZeroCopy(t *testing.T) {
	src := buffer.NewRing(16)
	dst := buffer.NewRing(16)
	src.Write([]byte("payload!"))
	src.NoteRemoved(2) // force a non-zero head offset

	src.Write([]byte("XY"))
	buffer.CopySegments(dst, src, src.Size())

	out := make([]byte, dst.Size())
	dst.CopyOut(out, len(out))
	if string(out) != "yload!XY" {
		t.Fatalf("unexpected CopySegments result: %q", string(out))
	}
	if src.Size() != 0 {
		t.Fatalf("expected source fully drained, got size %d", src.Size())
	}
}

func TestCopyOutPanicsOnOverrun(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on CopyOut overrun")
		}
	}()
	r := buffer.NewRing(8)
	r.Write([]byte("ab"))
	dst := make([]byte, 4)
	r.CopyOut(dst, 4)
}
