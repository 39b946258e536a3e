package coerce

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-heap/errors"
)

// Action selects what happens when a value cannot be represented in the
// destination kind.
type Action uint8

const (
	// ActionWarn logs once per call, then replaces every invalid value.
	ActionWarn Action = iota
	// ActionNone replaces invalid values silently.
	ActionNone
	// ActionError aborts on the first invalid value. Elements already
	// written stay written.
	ActionError
)

func (a Action) String() string {
	switch a {
	case ActionWarn:
		return "warn"
	case ActionNone:
		return "none"
	case ActionError:
		return "error"
	}
	return "unknown"
}

// ParseAction resolves "none", "warn" or "error".
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warn", "":
		return ActionWarn, nil
	case "none":
		return ActionNone, nil
	case "error":
		return ActionError, nil
	}
	return ActionWarn, errors.New(errors.PhaseCopy, errors.KindInvalidAction).
		Value(s).
		Detail("unknown action %q (want none, warn or error)", s).
		Build()
}

// Options configures a single Copy call.
type Options struct {
	// Logger overrides the package logger for this call.
	Logger *zap.Logger

	// Placeholder replaces invalid values. Integer destinations receive
	// it truncated and wrapped to their width; NaN and infinities become 0.
	// Fractional floats bound for integer kinds count as invalid values.
	Placeholder float64

	// Offset is the first destination element written.
	Offset int

	Action Action
}

// DefaultOptions warns and replaces with 0 at offset 0.
func DefaultOptions() Options {
	return Options{Action: ActionWarn}
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return Logger()
}
