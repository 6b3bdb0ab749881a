// Package ss implements a sparse set: the minimal dense<->sparse index
// mapping data structure used by package ds, and usable standalone as a
// LIFO handle allocator (see NewLIFOAllocator).
//
// A sparse set keeps two parallel index arrays, dense and sparse, each of
// caller-chosen per-element width and caller-chosen stride so they can be
// interleaved with other payload. The invariant dense[sparse[i]] == i holds
// for every live index i.
package ss

import "encoding/binary"

// Width is the per-element byte width of a dense/sparse index slot: 1, 2, or
// 4 bytes. Pick the narrowest width whose maximum value is at least
// Capacity; New rejects a capacity that does not fit.
type Width uint8

const (
	Width1 Width = 1
	Width2 Width = 2
	Width4 Width = 4
)

func (w Width) max() uint64 {
	switch w {
	case Width1:
		return 1<<8 - 1
	case Width2:
		return 1<<16 - 1
	default:
		return 1<<32 - 1
	}
}

// Set is a sparse set over caller-owned dense/sparse index arrays.
type Set struct {
	dense        []byte
	denseStride  uint32
	sparse       []byte
	sparseStride uint32
	elementSize  Width
	capacity     uint32
	size         uint32
}

// New constructs a Set over the given dense/sparse backing arrays.
//
// dense/denseStride and sparse/sparseStride describe two (possibly
// interleaved with other caller data) arrays of capacity elements each,
// elementSize bytes apart by stride. Both buffers must be at least
// int(denseStride)*capacity / int(sparseStride)*capacity bytes long
// respectively.
//
// New calls Reset, leaving the set empty.
func New(dense []byte, denseStride uint32, sparse []byte, sparseStride uint32, elementSize Width, capacity uint32) *Set {
	if elementSize != Width1 && elementSize != Width2 && elementSize != Width4 {
		panic("ss: elementSize must be 1, 2, or 4")
	}
	if uint64(capacity) > elementSize.max() {
		panic("ss: capacity does not fit in elementSize")
	}
	if uint64(denseStride)*uint64(capacity) > uint64(len(dense)) {
		panic("ss: dense buffer too small")
	}
	if uint64(sparseStride)*uint64(capacity) > uint64(len(sparse)) {
		panic("ss: sparse buffer too small")
	}
	s := &Set{
		dense:        dense,
		denseStride:  denseStride,
		sparse:       sparse,
		sparseStride: sparseStride,
		elementSize:  elementSize,
		capacity:     capacity,
	}
	s.Reset()
	return s
}

func load(buf []byte, stride uint32, w Width, idx uint32) uint32 {
	off := stride * idx
	switch w {
	case Width1:
		return uint32(buf[off])
	case Width2:
		return uint32(binary.NativeEndian.Uint16(buf[off : off+2]))
	default:
		return binary.NativeEndian.Uint32(buf[off : off+4])
	}
}

func store(buf []byte, stride uint32, w Width, idx uint32, v uint32) {
	off := stride * idx
	switch w {
	case Width1:
		buf[off] = byte(v)
	case Width2:
		binary.NativeEndian.PutUint16(buf[off:off+2], uint16(v))
	default:
		binary.NativeEndian.PutUint32(buf[off:off+4], v)
	}
}

func (s *Set) loadDense(idx uint32) uint32  { return load(s.dense, s.denseStride, s.elementSize, idx) }
func (s *Set) storeDense(idx, v uint32)     { store(s.dense, s.denseStride, s.elementSize, idx, v) }
func (s *Set) loadSparse(idx uint32) uint32 { return load(s.sparse, s.sparseStride, s.elementSize, idx) }
func (s *Set) storeSparse(idx, v uint32)    { store(s.sparse, s.sparseStride, s.elementSize, idx, v) }

// Capacity returns the number of sparse indices the set can manage.
func (s *Set) Capacity() uint32 { return s.capacity }

// Size returns the number of currently live (added, not yet removed) indices.
func (s *Set) Size() uint32 { return s.size }

// Reset empties the set without touching the dense array's contents.
func (s *Set) Reset() { s.size = 0 }

// ResetIdentity empties the set and sets dense[i] = i for all i in
// [0, capacity). This is what lets a Set double as a LIFO handle allocator:
// see NewLIFOAllocator.
func (s *Set) ResetIdentity() {
	s.size = 0
	for i := uint32(0); i != s.capacity; i++ {
		s.storeDense(i, i)
	}
}

// Add inserts sparseIndex into the set and returns its new dense index.
func (s *Set) Add(sparseIndex uint32) uint32 {
	denseIndex := s.size
	s.size++
	s.storeDense(denseIndex, sparseIndex)
	s.storeSparse(sparseIndex, denseIndex)
	return denseIndex
}

// Remove removes sparseIndex from the set, swapping the back of the dense
// region into the vacated slot. ok is false if sparseIndex was not present,
// in which case moveTo/moveFrom/swapped are zero values.
//
// When ok is true, swapped reports whether a swap actually happened (false
// only when sparseIndex was already the back of the dense region). The
// caller should mirror dense[moveTo] = dense[moveFrom] in any external
// parallel array when swapped is true.
func (s *Set) Remove(sparseIndex uint32) (moveTo, moveFrom uint32, swapped, ok bool) {
	if !s.Has(sparseIndex) {
		return 0, 0, false, false
	}

	sizeNow := s.size - 1
	denseIndexOfRemoved := s.loadSparse(sparseIndex)
	sparseIndexOfBack := s.loadDense(sizeNow)

	// Writing dense[sizeNow] = sparseIndex is not needed for pure membership
	// bookkeeping, but it is what lets ResetIdentity-based LIFO allocation
	// (NewLIFOAllocator) recycle freed sparse indices in stack order.
	s.storeDense(sizeNow, sparseIndex)
	s.storeDense(denseIndexOfRemoved, sparseIndexOfBack)
	s.storeSparse(sparseIndexOfBack, denseIndexOfRemoved)

	s.size = sizeNow

	return denseIndexOfRemoved, sizeNow, denseIndexOfRemoved != sizeNow, true
}

// Has reports whether sparseIndex is currently a member of the set.
func (s *Set) Has(sparseIndex uint32) bool {
	if sparseIndex >= s.capacity {
		return false
	}
	denseIndex := s.loadSparse(sparseIndex)
	return denseIndex < s.size && s.loadDense(denseIndex) == sparseIndex
}

// DenseIndex returns the dense index currently stored for sparseIndex,
// regardless of whether sparseIndex is a live member. Use Has first if
// membership matters.
func (s *Set) DenseIndex(sparseIndex uint32) uint32 {
	return s.loadSparse(sparseIndex)
}

// SparseIndex returns the sparse index stored at denseIndex, regardless of
// whether denseIndex < Size().
func (s *Set) SparseIndex(denseIndex uint32) uint32 {
	return s.loadDense(denseIndex)
}
