// Package obslog provides the one structured logger the scheduler core
// threads through the pool. It deliberately logs very little: the pool
// logs recovered kernel panics and failed CPU pinning, never per-chunk
// or per-block events, since that would dominate the runtime the rest
// of this repo exists to measure.
package obslog

import (
	"log/slog"
	"os"
)

// New returns the default logger: text handler on stderr, info level.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
