package h32

// The thread-safe LIFO freelist packs a monotonically increasing serial
// number into the upper 32 bits of tsFreelist alongside the free-list head
// index in the lower 32 bits. Every successful CAS bumps the serial, so two
// racing releases that happen to leave the head pointing at the same index
// (the classic ABA case for a lock-free stack) never fool a concurrent
// CompareAndSwap: the full 64-bit word has changed even when the head
// hasn't. Index 0 is reserved and never handed out; a head of 0 means the
// freelist is empty.

func packFreelist(serial, head uint32) uint64 {
	return uint64(serial)<<32 | uint64(head)
}

func unpackFreelist(w uint64) (serial, head uint32) {
	return uint32(w >> 32), uint32(w)
}

func acquireThreadSafeLIFO(a *Allocator, userflags uint32) (index, handle uint32, ok bool) {
	for {
		old := a.tsFreelist.Load()
		serial, head := unpackFreelist(old)
		if head == 0 {
			return 0, 0, false
		}

		word := a.loadHandleWord(head)
		next := word & a.capacityMask
		if !a.tsFreelist.CompareAndSwap(old, packFreelist(serial+1, next)) {
			continue
		}

		newGeneration := a.nextGeneration(word)
		handle = head | newGeneration | a.inUseBit | a.UserflagsToBits(userflags, a.numUserflagBits)
		a.storeHandleWord(head, handle)
		a.size.Add(1)
		return head, handle, true
	}
}

func releaseThreadSafeLIFO(a *Allocator, handle uint32) (index uint32, ok bool) {
	if !a.Valid(handle) {
		return 0, false
	}
	index = handle & a.capacityMask
	// Generation and userflags carry over untouched; only the in-use bit
	// and index sub-field (which becomes the free-link) change.
	preserved := handle &^ (a.capacityMask | a.inUseBit)

	for {
		old := a.tsFreelist.Load()
		serial, head := unpackFreelist(old)

		// index is not yet reachable from tsFreelist, so writing its word is
		// safe to repeat across CAS retries.
		a.storeHandleWord(index, preserved|head)

		if a.tsFreelist.CompareAndSwap(old, packFreelist(serial+1, index)) {
			a.size.Add(^uint32(0))
			return index, true
		}
	}
}
