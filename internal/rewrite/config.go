package rewrite

import (
	"crypto/sha256"
	"strings"
)

// DefaultTargetName is the identifier recognized as the rewrite target.
const DefaultTargetName = "tw"

// DefaultVariants is the conventional responsive breakpoint set.
var DefaultVariants = []string{"sm", "md", "lg", "xl", "2xl"}

// Config parameterizes one engine invocation. It is threaded explicitly
// into every call, never read from process-wide state, so concurrent
// invocations with different configs cannot interfere.
type Config struct {
	// TargetName is the bare identifier whose calls are folded.
	TargetName string
	// AllowedVariants is the ordered set of recognized variant names.
	// Output order follows the mapping's declaration order, not this set.
	AllowedVariants []string
}

// DefaultConfig returns the stock configuration: target "tw" and the five
// conventional breakpoints.
func DefaultConfig() Config {
	return Config{
		TargetName:      DefaultTargetName,
		AllowedVariants: append([]string(nil), DefaultVariants...),
	}
}

// WithDefaults fills the zero values: an empty TargetName means "tw", a nil
// variant set means the conventional breakpoints. An explicit empty slice
// stays empty, allowing a caller to reject every variant on purpose.
func (c Config) WithDefaults() Config {
	if c.TargetName == "" {
		c.TargetName = DefaultTargetName
	}
	if c.AllowedVariants == nil {
		c.AllowedVariants = append([]string(nil), DefaultVariants...)
	}
	return c
}

func (c Config) allowed() map[string]bool {
	set := make(map[string]bool, len(c.AllowedVariants))
	for _, v := range c.AllowedVariants {
		set[v] = true
	}
	return set
}

// Hash returns a digest of the configuration, used by the driver to key
// cached results.
func (c Config) Hash() [32]byte {
	var b strings.Builder
	b.WriteString(c.TargetName)
	for _, v := range c.AllowedVariants {
		b.WriteByte(0)
		b.WriteString(v)
	}
	return sha256.Sum256([]byte(b.String()))
}
