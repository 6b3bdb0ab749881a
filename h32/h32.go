// Package h32 implements the 32-bit handle allocator core: a fixed-capacity
// pool of slots, each identified by a handle that packs a stable sparse
// index, a generation counter, and optional caller userflags into one
// 32-bit word. Acquire/Release policy (LIFO, FIFO, or lock-free
// thread-safe LIFO) is selected once at New and dispatched through a pair
// of function-pointer fields so the hot path stays a single indirect call.
package h32

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"

	"github.com/llxisdsh/handlepool/internal/bits"
	"github.com/llxisdsh/handlepool/internal/opt"
)

// InvalidIndex stands in for a valid index where one cannot be given; it is
// returned by ds.Allocator.DenseIndex for an invalid handle. Acquire and
// Release do not return it: they report failure through ok, with index 0.
const InvalidIndex uint32 = 0xffffffff

// Allocator is a fixed-capacity 32-bit handle allocator. The zero value is
// not usable; construct with New.
type Allocator struct {
	handles []byte

	// descriptor packs stride/handleOffset/userdataOffset into one word via
	// internal/bits.PackDescriptor; Stride/HandleOffset/UserdataOffset and
	// the internal offset arithmetic all unpack it on demand rather than
	// each keeping their own copy.
	descriptor uint32

	capacity       uint32
	capacityMask   uint32
	generationMask uint32
	userflagsMask  uint32
	inUseBit       uint32
	numUserflagBits uint32
	layout         Layout
	policy         Policy

	size atomic.Uint32

	// serial freelist, used by LIFO and FIFO policies only.
	dequeue uint32
	enqueue uint32

	// thread-safe LIFO freelist: (serial << 32) | head, mutated only via
	// CAS. Followed by opt.PadAfterUint64 so the fields after it do not
	// share its cache line on architectures where that padding is non-zero.
	tsFreelist atomic.Uint64
	_          opt.PadAfterUint64

	acquireFn func(a *Allocator, userflags uint32) (index, handle uint32, ok bool)
	releaseFn func(a *Allocator, handle uint32) (index uint32, ok bool)
}

// New allocates no memory of its own; memory must be at least
// cfg.MemorySizeNeeded() bytes and must outlive the Allocator.
func New(cfg Config, memory []byte) (*Allocator, error) {
	var initErr InitFlags

	if cfg.PayloadSize&0xffff0000 != 0 {
		initErr |= UserdataTooBig
	}
	if cfg.NonInlineHandleSize&0xffffff00 != 0 {
		initErr |= HandleNonInlineSizeTooBig
	}
	if cfg.HandleOffset&0xffffff00 != 0 {
		initErr |= HandleOffsetTooBig
	}

	a := &Allocator{
		handles:         memory,
		numUserflagBits: cfg.UserflagBits,
		layout:          cfg.Layout,
		policy:          cfg.Policy,
	}

	stride := cfg.NonInlineHandleSize + cfg.PayloadSize
	a.descriptor = bits.PackDescriptor(stride, cfg.HandleOffset, cfg.NonInlineHandleSize)

	a.capacity = cfg.MaxHandles
	capacityRounded := bits.RoundUpPow2(cfg.MaxHandles)
	a.capacityMask = capacityRounded - 1

	var userflagsMask uint32
	if cfg.UserflagBits != 0 {
		userflagsMask = 0xffffffff << (32 - cfg.UserflagBits)
	}
	generationMask := ^(a.capacityMask | userflagsMask)

	if cfg.Layout == LayoutDefault {
		a.inUseBit = 0x80000000
		a.generationMask = (generationMask >> 1) & ^a.capacityMask
		a.userflagsMask = userflagsMask >> 1
	} else {
		a.inUseBit = a.capacityMask + 1
		a.generationMask = generationMask & (generationMask << 1)
		a.userflagsMask = userflagsMask
	}

	if bits.NumBits(capacityRounded)+cfg.UserflagBits >= 32 {
		initErr |= ConfigurationUnsupported
	}

	switch cfg.Policy {
	case ThreadSafeLIFO:
		a.acquireFn = acquireThreadSafeLIFO
		a.releaseFn = releaseThreadSafeLIFO
	case FIFO:
		a.acquireFn = acquireSerial
		a.releaseFn = releaseFIFO
	default:
		a.acquireFn = acquireSerial
		a.releaseFn = releaseLIFO
	}

	if initErr != 0 {
		return nil, &ConfigError{Flags: initErr}
	}

	a.Reset()
	return a, nil
}

// Reset returns the allocator to its freshly-initialized state: every slot
// is free and size is 0.
//
// Every slot's free-link word is seeded with the all-ones generation mask.
// The first acquire of any slot adds generationAdd() to that word, which
// carries through the all-ones run and rolls the generation field over to
// exactly 0 — so, barring any releases, the handles acquired after a Reset
// are deterministic and independent of capacity: (0x80000000|0),
// (0x80000000|1), ... for the default layout with no userflags. See
// ConstantHandle.
func (a *Allocator) Reset() {
	a.size.Store(0)
	a.dequeue = 0
	a.enqueue = a.capacity - 1

	for i := uint32(0); i != a.capacity; i++ {
		a.storeHandleWord(i, (i+1)|a.generationMask)
	}
	a.storeHandleWord(a.capacity-1, 0|a.generationMask)

	if a.policy == ThreadSafeLIFO {
		// slot 0 is reserved as the end-of-list sentinel.
		a.tsFreelist.Store(1)
	}
}

// Capacity returns the number of handles usable in practice: MaxHandles
// minus one for FIFO or ThreadSafeLIFO (the freelist needs a permanently
// reserved slot to distinguish "full" from "exactly one free").
func (a *Allocator) Capacity() uint32 {
	if a.policy == FIFO || a.policy == ThreadSafeLIFO {
		return a.capacity - 1
	}
	return a.capacity
}

// Size returns the current number of acquired handles.
func (a *Allocator) Size() uint32 { return a.size.Load() }

// RawCapacity returns the raw slot count backing this allocator (MaxHandles
// as configured, not rounded up), before the FIFO/ThreadSafeLIFO one-slot
// reservation Capacity() accounts for. Intended for composing layers (such
// as ds.Allocator) that need to size their own per-slot bookkeeping arrays.
func (a *Allocator) RawCapacity() uint32 { return a.capacity }

// MemorySizeAllocated returns the number of bytes actually backing this
// allocator (capacity * stride), the inverse of Config.MemorySizeNeeded.
func (a *Allocator) MemorySizeAllocated() uint32 {
	stride, _, _ := bits.UnpackDescriptor(a.descriptor)
	return a.capacity * stride
}

// Stride returns the byte distance between consecutive records.
func (a *Allocator) Stride() uint32 {
	stride, _, _ := bits.UnpackDescriptor(a.descriptor)
	return stride
}

// HandleOffset returns the byte offset of the handle word within a record.
func (a *Allocator) HandleOffset() uint32 {
	_, handleOffset, _ := bits.UnpackDescriptor(a.descriptor)
	return handleOffset
}

// UserdataOffset returns the byte offset of the payload within a record (==
// NonInlineHandleSize; 0 when handles are inline).
func (a *Allocator) UserdataOffset() uint32 {
	_, _, userdataOffset := bits.UnpackDescriptor(a.descriptor)
	return userdataOffset
}

func (a *Allocator) recordOffset(index uint32) uint32 {
	stride, _, _ := bits.UnpackDescriptor(a.descriptor)
	return stride * index
}

func (a *Allocator) handleWordOffset(index uint32) uint32 {
	_, handleOffset, _ := bits.UnpackDescriptor(a.descriptor)
	return a.recordOffset(index) + handleOffset
}

func (a *Allocator) loadHandleWord(index uint32) uint32 {
	off := a.handleWordOffset(index)
	if a.policy == ThreadSafeLIFO {
		return atomic.LoadUint32((*uint32)(unsafe.Pointer(&a.handles[off])))
	}
	return binary.NativeEndian.Uint32(a.handles[off : off+4])
}

func (a *Allocator) storeHandleWord(index, v uint32) {
	off := a.handleWordOffset(index)
	if a.policy == ThreadSafeLIFO {
		atomic.StoreUint32((*uint32)(unsafe.Pointer(&a.handles[off])), v)
		return
	}
	binary.NativeEndian.PutUint32(a.handles[off:off+4], v)
}

// Acquire reserves a free slot and returns its sparse index and full handle
// word. ok is false if the allocator is full.
func (a *Allocator) Acquire(userflags uint32) (index, handle uint32, ok bool) {
	return a.acquireFn(a, userflags)
}

// Release returns handle's slot to the freelist. ok is false if handle is
// not currently valid (already released, stale generation, or userflags
// mismatch under ValidMask semantics are not checked here — only exact
// validity is).
func (a *Allocator) Release(handle uint32) (index uint32, ok bool) {
	return a.releaseFn(a, handle)
}

// nextGeneration computes the generation field a slot is given on its next
// acquire, based on the word currently stored in that (free) slot. Called
// only from the acquire paths — release leaves the generation field
// untouched, matching the original allocator's split of responsibility.
//
// Reset seeds every free slot's generation sub-field at the all-ones
// generationMask. Adding generationAdd() to an all-ones run of bits
// carries all the way through the field and rolls it over to exactly zero,
// which is why the very first acquire of any slot always produces
// generation 0 — deterministic and identical across slots, independent of
// capacity (see ConstantHandle).
func (a *Allocator) nextGeneration(word uint32) uint32 {
	return (word + a.generationAdd()) & a.generationMask
}

// generationAdd returns the increment applied to a slot's generation field
// on every reuse: capacityRounded for LayoutDefault (the in-use bit is the
// MSB, so the first generation bit is capacityMask+1), or
// capacityRounded<<1 for LayoutInUseBelow (the in-use bit itself occupies
// that position).
func (a *Allocator) generationAdd() uint32 {
	if a.layout == LayoutInUseBelow {
		return (a.capacityMask + 1) << 1
	}
	return a.capacityMask + 1
}

// Userdata returns a slice over the payload bytes of handleOrIndex, which
// must be valid (or its raw index if payload-less safety isn't needed).
// Use UserdataChecked if validity is not already established.
func (a *Allocator) Userdata(handleOrIndex uint32) []byte {
	stride, _, userdataOffset := bits.UnpackDescriptor(a.descriptor)
	idx := a.Index(handleOrIndex)
	off := a.recordOffset(idx) + userdataOffset
	return a.handles[off : off+stride-userdataOffset]
}

// UserdataChecked is Userdata, but returns (nil, false) if handle is not
// currently valid.
func (a *Allocator) UserdataChecked(handle uint32) ([]byte, bool) {
	if !a.Valid(handle) {
		return nil, false
	}
	return a.Userdata(handle), true
}

// Index extracts the stable sparse index from a handle (or index; it's a
// no-op on a bare index smaller than capacityMask+1).
func (a *Allocator) Index(handleOrIndex uint32) uint32 {
	return handleOrIndex & a.capacityMask
}

// InUseBit returns the single bit distinguishing a live handle word from a
// freelist-link word.
func (a *Allocator) InUseBit() uint32 { return a.inUseBit }

// InUse reports whether handle (the value itself, not the stored slot
// word) has its in-use bit set.
func (a *Allocator) InUse(handle uint32) bool { return handle&a.inUseBit != 0 }

// InUseIndex reports whether the word currently stored at index has its
// in-use bit set, i.e. whether that slot is presently occupied — as
// opposed to InUse, which tests the bits of a handle value the caller
// already holds.
func (a *Allocator) InUseIndex(index uint32) bool {
	return a.InUse(a.loadHandleWord(index))
}

// Valid reports whether handle is currently live against this allocator:
// its index is in range, its in-use bit is set, and the word stored at its
// slot equals it bit-for-bit (which also catches generation mismatch and
// userflag mismatch in the same check).
func (a *Allocator) Valid(handle uint32) bool {
	return a.ValidMask(handle, 0xffffffff)
}

// ValidMask is Valid, but only compares the bits selected by mask against
// the stored word. Valid is ValidMask with an all-ones mask.
func (a *Allocator) ValidMask(handle, mask uint32) bool {
	idx := handle & a.capacityMask
	if idx >= a.capacity {
		return false
	}
	if handle&a.inUseBit == 0 {
		return false
	}
	return a.loadHandleWord(idx)&mask == handle&mask
}

// Userflags returns the userflags currently stored for handleOrIndex's
// slot, which may differ from the bits in a stale handle value if
// UserflagsSet has been called since. Assumes the handle/index is valid.
func (a *Allocator) Userflags(handleOrIndex uint32) uint32 {
	return a.loadHandleWord(a.Index(handleOrIndex)) & a.userflagsMask
}

// UserflagsSet overwrites the userflag bits of handle's slot in place and
// returns the previous userflags. Undefined if handle is stale.
func (a *Allocator) UserflagsSet(handle, userflags uint32) uint32 {
	idx := handle & a.capacityMask
	old := a.loadHandleWord(idx)
	a.storeHandleWord(idx, (old & ^a.userflagsMask)|userflags)
	return old & a.userflagsMask
}

// UserflagsNumBits returns the number of userflag bits this allocator was
// configured with.
func (a *Allocator) UserflagsNumBits() uint32 { return a.numUserflagBits }

// UserflagsToBits shifts a 0-based userflags value into its in-handle
// position for a handle with numBits userflag bits under this allocator's
// layout. Equivalent to the free function UserflagsToBits with this
// allocator's Layout.
func (a *Allocator) UserflagsToBits(userflags, numBits uint32) uint32 {
	return UserflagsToBits(userflags, numBits, a.layout)
}

// UserflagsFromBits is the inverse of UserflagsToBits.
func (a *Allocator) UserflagsFromBits(handle, numBits uint32) uint32 {
	return UserflagsFromBits(handle, numBits, a.layout)
}

// UserflagsToBits is the free-function form of (*Allocator).UserflagsToBits,
// for callers that know numBits and layout at the call site without keeping
// an *Allocator around.
func UserflagsToBits(userflags, numBits uint32, layout Layout) uint32 {
	shift := uint32(31)
	if layout != LayoutDefault {
		shift = 32
	}
	return userflags << (shift - numBits)
}

// UserflagsFromBits is the free-function form of
// (*Allocator).UserflagsFromBits.
func UserflagsFromBits(handle, numBits uint32, layout Layout) uint32 {
	// LayoutDefault reserves bit31 for the in-use bit, so the userflags
	// field sits just below it and must have that bit masked off before
	// shifting; LayoutInUseBelow keeps bit31 as part of the userflags
	// field itself (the in-use bit lives near the sparse index instead).
	mask := uint32(0xffffffff)
	shift := uint32(32)
	if layout == LayoutDefault {
		mask = 0x7fffffff
		shift = 31
	}
	return (handle & mask) >> (shift - numBits)
}

// ConstantHandle returns the handle that a fresh Reset hands out for sparse
// index idx on its first acquire, without requiring an actual Acquire call.
// The generation field of a first-ever acquire is always 0 (see
// nextGeneration), regardless of index or capacity, which is what makes
// this value reproducible across repeated Reset calls. Only accurate for a
// slot that has not yet been released since the last Reset.
func (a *Allocator) ConstantHandle(index, userflags uint32) uint32 {
	return index | a.inUseBit | a.UserflagsToBits(userflags, a.numUserflagBits)
}
