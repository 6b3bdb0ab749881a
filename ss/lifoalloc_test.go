package ss

import "testing"

// TestLIFOAllocatorScenario resets a capacity-4 set to identity, acquires
// all four indices in order, releases 1 and then 3, and checks the next two
// acquires come back 3 then 1 — stack order, most-recently-released first.
func TestLIFOAllocatorScenario(t *testing.T) {
	s := newTestSet(t, 4)
	a := NewLIFOAllocator(s)

	var got [4]uint32
	for i := range got {
		h, ok := a.Acquire()
		if !ok {
			t.Fatalf("Acquire #%d should succeed", i)
		}
		got[i] = h
	}
	if got != [4]uint32{0, 1, 2, 3} {
		t.Fatalf("initial acquires = %v, want [0 1 2 3]", got)
	}

	if !a.Release(1) {
		t.Fatal("Release(1) should succeed")
	}
	if !a.Release(3) {
		t.Fatal("Release(3) should succeed")
	}

	h1, ok := a.Acquire()
	if !ok || h1 != 3 {
		t.Fatalf("first reacquire = %d, ok=%v, want 3, true", h1, ok)
	}
	h2, ok := a.Acquire()
	if !ok || h2 != 1 {
		t.Fatalf("second reacquire = %d, ok=%v, want 1, true", h2, ok)
	}

	if _, ok := a.Acquire(); ok {
		t.Fatal("allocator should be full")
	}
}

func TestLIFOAllocatorValidAndDoubleRelease(t *testing.T) {
	s := newTestSet(t, 2)
	a := NewLIFOAllocator(s)

	h, _ := a.Acquire()
	if !a.Valid(h) {
		t.Fatal("freshly acquired handle should be valid")
	}
	if !a.Release(h) {
		t.Fatal("Release should succeed once")
	}
	if a.Valid(h) {
		t.Fatal("released handle should no longer be valid")
	}
	if a.Release(h) {
		t.Fatal("double release should fail")
	}
}
