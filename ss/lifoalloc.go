package ss

// LIFOAllocator adapts a Set into a minimal LIFO handle allocator: removed
// sparse indices re-enter the pool LIFO-style because Remove leaves
// dense[size-1] load-bearing (it writes dense[size-1] = sparseIndex to keep
// the permutation consistent even though that slot is otherwise unused), so
// the sparse index Acquire hands out right after a Release is exactly the
// one just freed — acquisitions and releases behave like a stack of sparse
// indices.
type LIFOAllocator struct {
	set *Set
}

// NewLIFOAllocator wraps set, resetting it to identity (dense[i] = i) so it
// can be used purely as an allocator of opaque indices in [0, set.Capacity()).
func NewLIFOAllocator(set *Set) *LIFOAllocator {
	set.ResetIdentity()
	return &LIFOAllocator{set: set}
}

// Acquire hands out the next free index, LIFO order among released indices.
// ok is false if the allocator is full.
func (a *LIFOAllocator) Acquire() (index uint32, ok bool) {
	s := a.set
	if s.size == s.capacity {
		return 0, false
	}
	// ResetIdentity and Remove keep every free sparse index in
	// dense[size:], with the most recently removed one at dense[size], so
	// the next free sparse index is always SparseIndex(size).
	h := s.SparseIndex(s.size)
	d := s.Add(h)
	_ = d
	return h, true
}

// Release frees index, making it eligible for reuse by a future Acquire.
// ok is false if index was not currently acquired.
func (a *LIFOAllocator) Release(index uint32) bool {
	_, _, _, ok := a.set.Remove(index)
	return ok
}

// Valid reports whether index is currently acquired.
func (a *LIFOAllocator) Valid(index uint32) bool {
	return a.set.Has(index)
}

// Size returns the number of currently acquired indices.
func (a *LIFOAllocator) Size() uint32 { return a.set.Size() }

// Capacity returns the total number of indices the allocator can hand out.
func (a *LIFOAllocator) Capacity() uint32 { return a.set.Capacity() }
