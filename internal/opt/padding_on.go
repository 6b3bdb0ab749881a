//go:build !(amd64 || 386 || arm || mips || mipsle || wasm) && !handlepool_disable_padding && !handlepool_enable_padding

package opt

import "unsafe"

// PadAfterUint64 is trailing padding sized to fill out the remainder of a
// cache line after one uint64 field. Embed it directly after the hot atomic
// word in a struct so the word does not share a cache line with whatever
// follows it.
//
// Enabled by default for architectures with larger or less forgiving cache
// hierarchies (arm64, s390x, ppc64, ppc64le, riscv64, loong64, mips64,
// mips64le, ...). Disable explicitly with -tags=handlepool_disable_padding.
type PadAfterUint64 [(CacheLineSize - unsafe.Sizeof(uint64(0))%CacheLineSize) % CacheLineSize]byte
