package h32

// Layout selects where the in-use bit sits within a 32-bit handle.
type Layout uint8

const (
	// LayoutDefault stores the in-use bit in the MSB:
	//
	//	| in_use | userflags | generation | sparse index |
	LayoutDefault Layout = iota

	// LayoutInUseBelow stores the in-use bit just above the sparse index
	// instead of in the MSB:
	//
	//	| userflags | generation | in_use | sparse index |
	LayoutInUseBelow
)

// Policy selects the freelist reuse discipline.
type Policy uint8

const (
	// LIFO reuses the most-recently-freed slot first. Best cache locality
	// and fewest distinct generations consumed per slot.
	LIFO Policy = iota
	// FIFO reuses slots in the order they were freed. Costs one usable slot
	// (the freelist must always stay non-empty to distinguish "full" from
	// "exactly one free").
	FIFO
	// ThreadSafeLIFO is a lock-free LIFO variant safe for concurrent Acquire
	// and Release from any number of goroutines. Not supported with FIFO.
	ThreadSafeLIFO
)

// Config describes how to initialize an Allocator. Every field is
// load-bearing — there is no meaningful zero-value default for most of
// them — so New takes a Config value rather than functional options. The
// With* methods exist purely so call sites stay readable:
//
//	cfg := h32.Config{MaxHandles: 1024}.WithUserflagBits(2).WithPolicy(h32.ThreadSafeLIFO)
type Config struct {
	// MaxHandles is the requested handle capacity. Need not be a power of
	// two; it is rounded up internally.
	MaxHandles uint32

	// UserflagBits is the number of caller-opaque bits reserved per handle.
	UserflagBits uint32

	// NonInlineHandleSize is the byte size of the handle word when handles
	// are stored separately from payload (typically 4, i.e. sizeof(uint32)).
	// Set to 0 when using inline handles (HandleOffset then indexes into the
	// payload struct itself).
	NonInlineHandleSize uint32

	// HandleOffset is the byte offset of the handle word within each
	// record. 0 for non-inline handles (handle comes first in the record).
	HandleOffset uint32

	// PayloadSize is the per-record payload size in bytes. 0 for a pure
	// handle pool with no interleaved payload.
	PayloadSize uint32

	// Layout selects the in-use bit position. Zero value is LayoutDefault.
	Layout Layout

	// Policy selects the freelist discipline. Zero value is LIFO.
	Policy Policy
}

// WithUserflagBits returns a copy of cfg with UserflagBits set.
func (cfg Config) WithUserflagBits(n uint32) Config { cfg.UserflagBits = n; return cfg }

// WithPolicy returns a copy of cfg with Policy set.
func (cfg Config) WithPolicy(p Policy) Config { cfg.Policy = p; return cfg }

// WithThreadSafeLIFO returns a copy of cfg configured for the lock-free LIFO
// policy.
func (cfg Config) WithThreadSafeLIFO() Config { cfg.Policy = ThreadSafeLIFO; return cfg }

// WithLayout returns a copy of cfg with Layout set.
func (cfg Config) WithLayout(l Layout) Config { cfg.Layout = l; return cfg }

// WithInlineHandle returns a copy of cfg configured for an inline handle at
// byteOffset within a payloadSize-byte record.
func (cfg Config) WithInlineHandle(payloadSize, byteOffset uint32) Config {
	cfg.NonInlineHandleSize = 0
	cfg.PayloadSize = payloadSize
	cfg.HandleOffset = byteOffset
	return cfg
}

// WithNonInlinePayload returns a copy of cfg configured for a non-inline
// handle (4 bytes, at offset 0) followed by payloadSize bytes of userdata.
func (cfg Config) WithNonInlinePayload(payloadSize uint32) Config {
	cfg.NonInlineHandleSize = 4
	cfg.PayloadSize = payloadSize
	cfg.HandleOffset = 0
	return cfg
}

// MemorySizeNeeded returns the number of bytes of backing memory New
// requires for this Config.
func (cfg Config) MemorySizeNeeded() uint32 {
	handleBytes := cfg.NonInlineHandleSize
	return cfg.MaxHandles * (handleBytes + cfg.PayloadSize)
}
