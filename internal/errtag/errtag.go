// Package errtag attaches structured context to the fatal logic errors this
// module panics with (stray completions, double-set async results, and the
// like) and to the per-operation kernel errors the ring core surfaces. It
// replaces the teacher's bespoke error_tagging.go with a single helper built
// on github.com/ygrebnov/errorc, the structured-error dependency the teacher
// already declares in go.mod.
package errtag

import (
	"errors"

	"github.com/ygrebnov/errorc"
)

// Wrap builds an error reporting base plus the given key/value context
// pairs (kv must have even length, following the same convention as this
// module's slog calls), joined with base via errors.Join so errors.Is(result,
// base) keeps working for callers that only care about the sentinel. The
// key/value pairs are handed to errorc.New as structured fields rather than
// folded into the message text, so callers that log or report the resulting
// error can still pull out, say, the op name or submission id individually.
func Wrap(base error, kv ...any) error {
	return errors.Join(base, errorc.New(base.Error(), kv...))
}
