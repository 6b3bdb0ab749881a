//go:build handlepool_disable_padding

package opt

// PadAfterUint64 with padding force-disabled via -tags=handlepool_disable_padding,
// overriding the architecture default.
type PadAfterUint64 [0]byte
