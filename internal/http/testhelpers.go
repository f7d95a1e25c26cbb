package httpx

import (
	"io"
	"log/slog"
)

// newDiscardLogger returns a logger whose output is thrown away, for tests
// that only care about handler behavior.
func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
