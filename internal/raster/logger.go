package raster

import (
	"log/slog"
	"sync/atomic"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger sets the logger for draw failures, which are reported at debug
// level and otherwise skipped. Pass nil to silence it again.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
}

func Logger() *slog.Logger { return loggerPtr.Load() }

// check reports a failed draw op. A single bad shape only loses itself, so
// the frame carries on.
func check(op string, err error) {
	if err != nil {
		Logger().Debug("draw failed", "op", op, "error", err)
	}
}
