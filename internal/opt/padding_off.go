//go:build (amd64 || 386 || arm || mips || mipsle || wasm) && !handlepool_enable_padding && !handlepool_disable_padding

package opt

// PadAfterUint64 is a zero-size no-op on architectures whose cache lines are
// forgiving enough (or small enough) that the extra padding costs more in
// memory than it saves in avoided false sharing.
//
// Force it on with -tags=handlepool_enable_padding.
type PadAfterUint64 [0]byte
