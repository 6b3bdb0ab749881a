package ds

import (
	"testing"

	"github.com/llxisdsh/handlepool/h32"
)

func newDS(t *testing.T, maxHandles uint32) *Allocator {
	t.Helper()
	cfg := h32.Config{MaxHandles: maxHandles}.WithNonInlinePayload(0)
	mem := make([]byte, cfg.MemorySizeNeeded())
	a, err := h32.New(cfg, mem)
	if err != nil {
		t.Fatalf("h32.New: %v", err)
	}
	return New(a)
}

// TestSwapToBack acquires 4 handles (dense indices 0..3) and releases the
// one at dense index 1: the back element (dense index 3) should swap into
// the hole, and the released handle should no longer validate.
func TestSwapToBack(t *testing.T) {
	d := newDS(t, 4)

	var handles [4]uint32
	for i := range handles {
		h, dense, ok := d.Acquire(0)
		if !ok {
			t.Fatalf("acquire %d should succeed", i)
		}
		if dense != uint32(i) {
			t.Fatalf("acquire %d: dense index = %d, want %d", i, dense, i)
		}
		handles[i] = h
	}

	movedFrom, movedTo, isBack, ok := d.Release(handles[1])
	if !ok {
		t.Fatal("release should succeed")
	}
	if isBack {
		t.Fatal("releasing a non-back element should not report isBackIndex")
	}
	if movedFrom != 3 || movedTo != 1 {
		t.Fatalf("movedFrom=%d movedTo=%d, want movedFrom=3 movedTo=1", movedFrom, movedTo)
	}
	if d.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", d.Size())
	}
	if d.Valid(handles[1]) {
		t.Fatal("released handle should no longer be valid")
	}
	if got := d.DenseIndex(handles[3]); got != 1 {
		t.Fatalf("handle previously at dense index 3 should now be at 1, got %d", got)
	}
}

func TestReleaseBackNoSwap(t *testing.T) {
	d := newDS(t, 4)

	var handles [4]uint32
	for i := range handles {
		h, _, _ := d.Acquire(0)
		handles[i] = h
	}

	movedFrom, movedTo, isBack, ok := d.Release(handles[3])
	if !ok {
		t.Fatal("release should succeed")
	}
	if !isBack {
		t.Fatal("releasing the back element should report isBackIndex")
	}
	if movedFrom != movedTo {
		t.Fatalf("movedFrom=%d movedTo=%d should be equal when isBackIndex", movedFrom, movedTo)
	}
}

func TestAcquireReleaseFullCycle(t *testing.T) {
	d := newDS(t, 3)

	h0, _, _ := d.Acquire(0)
	h1, _, _ := d.Acquire(0)
	h2, _, _ := d.Acquire(0)
	if _, _, ok := d.Acquire(0); ok {
		t.Fatal("allocator should be full")
	}

	if _, _, _, ok := d.Release(h1); !ok {
		t.Fatal("release should succeed")
	}
	h3, dense, ok := d.Acquire(0)
	if !ok {
		t.Fatal("reacquire after release should succeed")
	}
	if dense != 2 {
		t.Fatalf("reacquired dense index = %d, want 2 (appended at the new back)", dense)
	}

	for _, h := range []uint32{h0, h2, h3} {
		if !d.Valid(h) {
			t.Fatalf("handle %#x should be valid", h)
		}
	}
}
