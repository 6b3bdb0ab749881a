package opt

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used to pad hot atomic words so they don't share a
// cache line with neighboring fields. Detected via golang.org/x/sys/cpu.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})
