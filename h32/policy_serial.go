package h32

// acquireSerial implements the shared pop-from-head path for both LIFO and
// FIFO: both policies hand out the slot at the freelist head and advance
// its generation there. They differ only in where Release puts the slot
// back (releaseLIFO prepends, releaseFIFO appends), which is why one
// acquire function serves both.
func acquireSerial(a *Allocator, userflags uint32) (index, handle uint32, ok bool) {
	if a.size.Load() >= a.Capacity() {
		return 0, 0, false
	}

	index = a.dequeue
	word := a.loadHandleWord(index)
	next := word & a.capacityMask
	newGeneration := a.nextGeneration(word)

	handle = index | newGeneration | a.inUseBit | a.UserflagsToBits(userflags, a.numUserflagBits)
	a.storeHandleWord(index, handle)
	a.dequeue = next
	a.size.Add(1)
	return index, handle, true
}

// releaseLIFO pushes the released slot onto the freelist head, so the very
// next acquire reuses it. The generation and userflag bits already in
// handle are left untouched — only the in-use bit is cleared and the index
// sub-field is overwritten with the current freelist head (the new
// free-link). The next acquire of this slot is what advances the
// generation.
func releaseLIFO(a *Allocator, handle uint32) (index uint32, ok bool) {
	if !a.Valid(handle) {
		return 0, false
	}
	index = handle & a.capacityMask
	next := a.dequeue

	a.storeHandleWord(index, (handle&^(a.inUseBit|a.capacityMask))|next)
	a.dequeue = index
	a.size.Add(^uint32(0))
	return index, true
}

// releaseFIFO appends the released slot at the freelist tail, so it is
// reused only after every slot freed before it.
func releaseFIFO(a *Allocator, handle uint32) (index uint32, ok bool) {
	if !a.Valid(handle) {
		return 0, false
	}
	index = handle & a.capacityMask

	// The released slot becomes the new tail; its own free-link is stale
	// until some future release splices a successor into it.
	a.storeHandleWord(index, handle&^a.inUseBit)

	// Link the old tail to the new one, preserving the old tail's own
	// generation (it is still a free slot, just no longer the tail).
	oldTail := a.enqueue
	oldTailWord := a.loadHandleWord(oldTail)
	a.storeHandleWord(oldTail, (oldTailWord&^a.capacityMask)|index)

	a.enqueue = index
	a.size.Add(^uint32(0))
	return index, true
}
