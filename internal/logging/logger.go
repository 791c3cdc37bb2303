package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a JSON logger on stdout at the given level and returns its handler so
// callers can fan it out to more sinks later.
func Setup(level slog.Level) slog.Handler {
	return setup(os.Stdout, level)
}

func setup(w io.Writer, level slog.Level) slog.Handler {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return handler
}

// Attach adds extra handlers next to base and makes the result the default logger.
func Attach(base slog.Handler, extra ...slog.Handler) {
	handlers := append([]slog.Handler{base}, extra...)
	slog.SetDefault(slog.New(NewMultiHandler(handlers...)))
}
