package spaceutils

import (
	"context"

	"golang.org/x/exp/slog"
)

type Number interface {
	~int | ~uint | ~int32 | ~uint32 | ~int64 | ~uint64
}

// Clamp constrains value to the inclusive range [lo, hi]. If the bounds arrive reversed, a warning
// is logged to the provided logger (which may be nil) and the bounds are swapped before clamping.
func Clamp[T Number](logger *slog.Logger, lo, value, hi T) T {
	if lo > hi {
		if logger != nil {
			logger.LogAttrs(context.Background(), slog.LevelWarn, "reversed clamp bounds",
				slog.Any("min", lo),
				slog.Any("value", value),
				slog.Any("max", hi),
			)
		}
		lo, hi = hi, lo
	}

	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
