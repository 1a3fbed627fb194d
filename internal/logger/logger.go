package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the application logger, structured JSON on stdout.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing JSON records to w.
func New(w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return &Logger{Logger: slog.New(handler)}
}

// Fatal is equivalent to Error followed by os.Exit(1).
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
