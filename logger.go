package lightcookie

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for lightcookie and its internal packages.
// By default lightcookie produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior. Pipelines and lights created earlier keep the overlay
// logger they were created with; the default pipeline used by Process is
// updated.
//
// Log levels used by lightcookie:
//   - [slog.LevelDebug]: stage timings, buffer sizes, mask resampling
//   - [slog.LevelInfo]: cookie installs and clears
//   - [slog.LevelWarn]: skipped overlays, superseded runs, failed produces
//
// Example:
//
//	lightcookie.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// The shared default pipeline logs through its compositor.
	if defaultPipelineCreated.Load() {
		defaultPipeline().compositor.SetLogger(l)
	}
}

// Logger returns the current logger used by lightcookie.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
