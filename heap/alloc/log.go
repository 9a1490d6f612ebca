package alloc

import (
	"log/slog"
	"os"
)

// logAlloc enables debug logging to stderr for allocators built without an
// explicit logger. Controlled by the HEAP_LOG_ALLOC environment variable.
var logAlloc = os.Getenv("HEAP_LOG_ALLOC") != ""

func defaultLogger() *slog.Logger {
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.DiscardHandler)
}
