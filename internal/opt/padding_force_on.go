//go:build handlepool_enable_padding

package opt

import "unsafe"

// PadAfterUint64 with padding force-enabled via -tags=handlepool_enable_padding,
// overriding the architecture default.
type PadAfterUint64 [(CacheLineSize - unsafe.Sizeof(uint64(0))%CacheLineSize) % CacheLineSize]byte
