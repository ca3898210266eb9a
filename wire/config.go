package wire

import (
	"os"
	"strconv"
	"sync/atomic"
)

// DefaultMaxDepth is the nesting limit used when Config.MaxDepth is unset
const DefaultMaxDepth = 1000

// Config controls optional decoding behaviors for compatibility.
// Defaults preserve strict behavior.
type Config struct {
	// ValidateEnumsOnSkip: when true (default), skipping an enum value that
	// is not defined in its enum fails with ErrUndefinedEnumValue. Turning
	// it off lets old readers skip past enum values added by newer writers.
	// Full decodes always validate.
	ValidateEnumsOnSkip bool

	// LossyStrings: when true, dynamic decoding replaces invalid UTF-8 in
	// strings with U+FFFD instead of failing with ErrInvalidUTF8.
	LossyStrings bool

	// MaxDepth bounds how deeply structs and messages may nest while
	// decoding or skipping. Each level of a recursive message costs one
	// input byte, so without a bound a small input can exhaust the stack.
	// Zero means DefaultMaxDepth.
	MaxDepth int
}

// DepthLimit returns MaxDepth, or DefaultMaxDepth when it is not positive.
func (c Config) DepthLimit() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

var config atomic.Pointer[Config]

// SetConfig sets the global wire configuration. It is meant to be called
// during start-up; decodes already in flight keep the config they started
// with.
func SetConfig(c Config) { config.Store(&c) }

// GetConfig returns the current global wire configuration.
func GetConfig() Config { return *config.Load() }

func init() {
	c := Config{ValidateEnumsOnSkip: true}

	// Optional env toggles for test harnesses; defaults remain unchanged if unset.
	if v := os.Getenv("KIWILITE_SKIP_UNKNOWN_ENUMS"); v == "1" || v == "true" {
		c.ValidateEnumsOnSkip = false
	}
	if v := os.Getenv("KIWILITE_LOSSY_STRINGS"); v == "1" || v == "true" {
		c.LossyStrings = true
	}
	if n, err := strconv.Atoi(os.Getenv("KIWILITE_MAX_DEPTH")); err == nil && n > 0 {
		c.MaxDepth = n
	}
	SetConfig(c)
}
