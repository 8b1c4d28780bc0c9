package pushdown

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize bounds inputs accepted from remote callers, in bytes.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable that overrides the default.
	EnvMaxInputSize = "PUSHDOWN_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// CheckInput validates an input received over the network before it is
// run. Oversized inputs are rejected rather than truncated, and nothing is
// stripped: every character of an input is a symbol, so control characters
// are left for the automaton to reject.
func CheckInput(input string) error {
	if limit := MaxInputSize(); len(input) > limit {
		return fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return ErrInvalidUTF8
	}
	return nil
}

// MaxInputSize returns the limit applied by CheckInput.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
