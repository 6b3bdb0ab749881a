// Package ds layers dense/sparse bookkeeping on top of an h32.Allocator so
// that live payload data can be kept fully packed and contiguous while
// handles remain stable across removals.
//
// Without this layer, an array indexed directly by an h32 sparse index
// accumulates holes as handles are released — iterating it means skipping
// dead slots, and the live/dead ratio only gets worse as churn increases.
// ds instead hands out a dense index alongside every handle. The caller
// keeps its payload in a plain slice indexed by dense index; on release, ds
// reports which dense slot moved to fill the hole (a classic swap-remove),
// and the caller mirrors that single move in its own slice. The live
// portion of the array is always exactly [0, Size()).
package ds

import "github.com/llxisdsh/handlepool/h32"

// Allocator wraps an *h32.Allocator with a sparse-index <-> dense-index
// mapping. The zero value is not usable; construct with New.
type Allocator struct {
	h32 *h32.Allocator

	// denseOfSparse[sparseIndex] is the dense index currently holding the
	// payload for that sparse index, or invalidDense if the sparse index is
	// not currently live.
	denseOfSparse []uint32
	// sparseOfDense[denseIndex] is the sparse index whose payload lives at
	// that dense position, valid for indices < size.
	sparseOfDense []uint32

	size uint32
}

const invalidDense = h32.InvalidIndex

// New wraps alloc with dense/sparse bookkeeping. alloc must already be
// initialized (via h32.New) and must not be shared with any other ds.Allocator.
func New(alloc *h32.Allocator) *Allocator {
	capacity := alloc.RawCapacity()
	d := &Allocator{
		h32:           alloc,
		denseOfSparse: make([]uint32, capacity),
		sparseOfDense: make([]uint32, capacity),
	}
	d.Reset()
	return d
}

// Reset clears the dense/sparse bookkeeping and resets the underlying
// h32.Allocator, returning both to their freshly-initialized state.
func (d *Allocator) Reset() {
	d.h32.Reset()
	d.size = 0
	for i := range d.denseOfSparse {
		d.denseOfSparse[i] = invalidDense
	}
}

// Size returns the number of currently live (dense) entries.
func (d *Allocator) Size() uint32 { return d.size }

// Capacity returns the underlying allocator's usable capacity.
func (d *Allocator) Capacity() uint32 { return d.h32.Capacity() }

// Acquire reserves a new slot and returns its handle plus the dense index
// its payload should be written to. ok is false if the allocator is full.
func (d *Allocator) Acquire(userflags uint32) (handle uint32, denseIndex uint32, ok bool) {
	sparseIndex, handle, ok := d.h32.Acquire(userflags)
	if !ok {
		return 0, 0, false
	}
	denseIndex = d.size
	d.denseOfSparse[sparseIndex] = denseIndex
	d.sparseOfDense[denseIndex] = sparseIndex
	d.size++
	return handle, denseIndex, true
}

// Release releases handle. If ok, movedFrom/movedTo describe the
// swap-to-back the caller must mirror in its own dense payload array: copy
// element movedFrom on top of element movedTo, then discard movedFrom
// (i.e. reduce your live length by one). isBackIndex reports whether the
// released entry was already the last dense element, in which case
// movedFrom == movedTo and no data actually needs to move.
func (d *Allocator) Release(handle uint32) (movedFrom, movedTo uint32, isBackIndex, ok bool) {
	sparseIndex, ok := d.h32.Release(handle)
	if !ok {
		return 0, 0, false, false
	}

	removedDense := d.denseOfSparse[sparseIndex]
	lastDense := d.size - 1
	isBackIndex = removedDense == lastDense

	if !isBackIndex {
		backSparse := d.sparseOfDense[lastDense]
		d.denseOfSparse[backSparse] = removedDense
		d.sparseOfDense[removedDense] = backSparse
	}

	d.denseOfSparse[sparseIndex] = invalidDense
	d.size--

	return lastDense, removedDense, isBackIndex, true
}

// DenseIndex returns the dense index currently backing handle's payload, or
// h32.InvalidIndex if handle is not valid.
func (d *Allocator) DenseIndex(handle uint32) uint32 {
	if !d.h32.Valid(handle) {
		return invalidDense
	}
	return d.denseOfSparse[d.h32.Index(handle)]
}

// Valid reports whether handle is currently live.
func (d *Allocator) Valid(handle uint32) bool { return d.h32.Valid(handle) }

// H32 exposes the underlying allocator for callers that need direct access
// to userflags, userdata, or introspection methods.
func (d *Allocator) H32() *h32.Allocator { return d.h32 }
