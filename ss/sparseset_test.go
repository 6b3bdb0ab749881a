package ss

import "testing"

func newTestSet(t *testing.T, capacity uint32) *Set {
	t.Helper()
	dense := make([]byte, 4*capacity)
	sparse := make([]byte, 4*capacity)
	return New(dense, 4, sparse, 4, Width4, capacity)
}

func TestAddHasRemove(t *testing.T) {
	s := newTestSet(t, 8)

	for i := uint32(0); i < 8; i++ {
		if s.Has(i) {
			t.Fatalf("index %d should not be present before Add", i)
		}
	}

	for i := uint32(0); i < 8; i++ {
		d := s.Add(i)
		if d != i {
			t.Fatalf("Add(%d) = %d, want %d (append order)", i, d, i)
		}
		if !s.Has(i) {
			t.Fatalf("index %d should be present after Add", i)
		}
	}

	if s.Size() != 8 {
		t.Fatalf("Size() = %d, want 8", s.Size())
	}
}

func TestRemoveSwapToBack(t *testing.T) {
	s := newTestSet(t, 4)
	for i := uint32(0); i < 4; i++ {
		s.Add(i)
	}

	// Removing index 1 (dense position 1) swaps the back (dense position 3,
	// sparse index 3) into its place.
	moveTo, moveFrom, swapped, ok := s.Remove(1)
	if !ok {
		t.Fatal("Remove(1) should succeed")
	}
	if !swapped {
		t.Fatal("expected a swap when removing a non-back element")
	}
	if moveTo != 1 || moveFrom != 3 {
		t.Fatalf("moveTo=%d moveFrom=%d, want moveTo=1 moveFrom=3", moveTo, moveFrom)
	}
	if s.Has(1) {
		t.Fatal("index 1 should no longer be present")
	}
	if s.DenseIndex(3) != 1 {
		t.Fatalf("sparse index 3 should now live at dense position 1, got %d", s.DenseIndex(3))
	}
	if s.SparseIndex(1) != 3 {
		t.Fatalf("dense position 1 should hold sparse index 3, got %d", s.SparseIndex(1))
	}
}

func TestRemoveBackNoSwap(t *testing.T) {
	s := newTestSet(t, 4)
	for i := uint32(0); i < 4; i++ {
		s.Add(i)
	}

	_, _, swapped, ok := s.Remove(3)
	if !ok {
		t.Fatal("Remove(3) should succeed")
	}
	if swapped {
		t.Fatal("removing the back element should not report a swap")
	}
}

func TestRemoveAbsent(t *testing.T) {
	s := newTestSet(t, 4)
	s.Add(0)

	if _, _, _, ok := s.Remove(2); ok {
		t.Fatal("Remove of a never-added index should fail")
	}
	if _, _, _, ok := s.Remove(0); !ok {
		t.Fatal("Remove(0) should succeed")
	}
	if _, _, _, ok := s.Remove(0); ok {
		t.Fatal("double Remove should fail the second time")
	}
}

func TestHasOutOfRange(t *testing.T) {
	s := newTestSet(t, 4)
	if s.Has(100) {
		t.Fatal("Has should reject out-of-range sparse indices")
	}
}

func TestResetIdentity(t *testing.T) {
	s := newTestSet(t, 4)
	s.ResetIdentity()
	for i := uint32(0); i != 4; i++ {
		if s.SparseIndex(i) != i {
			t.Fatalf("ResetIdentity: dense[%d] = %d, want %d", i, s.SparseIndex(i), i)
		}
	}
}

func TestNarrowWidths(t *testing.T) {
	for _, w := range []Width{Width1, Width2, Width4} {
		dense := make([]byte, int(w)*8)
		sparse := make([]byte, int(w)*8)
		s := New(dense, uint32(w), sparse, uint32(w), w, 8)
		for i := uint32(0); i < 8; i++ {
			s.Add(i)
		}
		for i := uint32(0); i < 8; i++ {
			if !s.Has(i) {
				t.Fatalf("width %d: index %d should be present", w, i)
			}
		}
	}
}
