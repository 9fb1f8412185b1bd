// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

package pool_test

import (
	"math/rand"
	"testing"

	"github.com/momentics/hioload-tunnel/pool"
)

func TestRingBufferPropertyBased(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		ring := pool.NewRingBuffer[int](64)

		size := 0
		for i := 0; i < 5000; i++ {
			op := rng.Intn(2)
			val := rng.Intn(100000)
			switch op {
			case 0:
				if ring.Enqueue(val) {
					size++
				}
			case 1:
				if _, ok := ring.Dequeue(); ok {
					size--
				}
			}
			if size != ring.Len() {
				t.Fatalf("invariant failed: expected %d, got %d", size, ring.Len())
			}
			if ring.Len() < 0 || ring.Len() > 64 {
				t.Fatalf("ring length out of bounds: %d", ring.Len())
			}
		}
	}
}

func TestRingBufferFIFOOrder(t *testing.T) {
	ring := pool.NewRingBuffer[int](8)
	for i := 0; i < 8; i++ {
		if !ring.Enqueue(i) {
			t.Fatalf("enqueue %d unexpectedly failed", i)
		}
	}
	if ring.Enqueue(99) {
		t.Fatal("expected enqueue to fail when full")
	}
	for i := 0; i < 8; i++ {
		v, ok := ring.Dequeue()
		if !ok || v != i {
			t.Fatalf("expected %d, got %d (ok=%v)", i, v, ok)
		}
	}
	if _, ok := ring.Dequeue(); ok {
		t.Fatal("expected dequeue to fail when empty")
	}
}
