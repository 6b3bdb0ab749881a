package h32

import (
	"errors"
	"fmt"
)

// InitFlags is a bitmask of configuration problems detected by New. Config
// carries Policy and Layout as distinct enum fields rather than an ORed
// flags word, which makes the originating bitmask's THREADSAFE_UNSUPPORTED
// (FIFO requested together with ThreadSafeLIFO) and INVALID_INPUT_FLAGS
// (garbage bits in a raw flags word) bits structurally unreachable here —
// there is no flags word for them to apply to, and Policy's enum type
// already rules out requesting two policies at once. Both bits are dropped
// rather than kept as permanently-dead reservations; see DESIGN.md.
type InitFlags uint32

const (
	// ConfigurationUnsupported means the requested userflag bits plus the
	// bits needed to represent MaxHandles could not fit into a 32-bit handle.
	ConfigurationUnsupported InitFlags = 1 << 0
	// UserdataTooBig means PayloadSize exceeds 65535 bytes.
	UserdataTooBig InitFlags = 1 << 1
	// HandleOffsetTooBig means HandleOffset exceeds 255 bytes.
	HandleOffsetTooBig InitFlags = 1 << 2
	// HandleNonInlineSizeTooBig means NonInlineHandleSize exceeds 255 bytes.
	HandleNonInlineSizeTooBig InitFlags = 1 << 3
)

var (
	ErrConfigurationUnsupported  = errors.New("h32: userflag bits + index bits must total less than 32")
	ErrUserdataTooBig            = errors.New("h32: payload size exceeds 65535 bytes")
	ErrHandleOffsetTooBig        = errors.New("h32: handle offset exceeds 255 bytes")
	ErrHandleNonInlineSizeTooBig = errors.New("h32: non-inline handle size exceeds 255 bytes")
)

var flagErrors = []struct {
	flag InitFlags
	err  error
}{
	{ConfigurationUnsupported, ErrConfigurationUnsupported},
	{UserdataTooBig, ErrUserdataTooBig},
	{HandleOffsetTooBig, ErrHandleOffsetTooBig},
	{HandleNonInlineSizeTooBig, ErrHandleNonInlineSizeTooBig},
}

// ConfigError reports one or more configuration problems detected by New.
// Use errors.Is(err, h32.ErrUserdataTooBig) (etc.) to test for a specific
// problem, or inspect Flags directly for the raw bitmask.
type ConfigError struct {
	Flags InitFlags
}

func (e *ConfigError) Error() string {
	var matched []error
	for _, fe := range flagErrors {
		if e.Flags&fe.flag != 0 {
			matched = append(matched, fe.err)
		}
	}
	if len(matched) == 1 {
		return matched[0].Error()
	}
	return fmt.Sprintf("h32: invalid configuration (flags=%#x)", uint32(e.Flags))
}

// Unwrap exposes each individual sentinel error set in Flags so errors.Is
// works against any of them.
func (e *ConfigError) Unwrap() []error {
	var matched []error
	for _, fe := range flagErrors {
		if e.Flags&fe.flag != 0 {
			matched = append(matched, fe.err)
		}
	}
	return matched
}
