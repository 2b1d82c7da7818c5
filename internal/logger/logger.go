package logger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger covers the service binary's bootstrap phase, before the injected
// application logger exists. It writes JSON to stdout and to a log file.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logLevel string) *Logger {
	level := parseLevel(logLevel)
	logPath := createLogFile("bootstrap.log")

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		slog.Error("failed to open log file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	consoleHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})

	l := slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}})
	slog.SetDefault(l)

	return &Logger{logger: l}
}

func (l *Logger) Info(msg string, args ...slog.Attr) {
	l.logger.Info(msg, attrsToAny(args)...)
}

func (l *Logger) Warn(msg string, args ...slog.Attr) {
	l.logger.Warn(msg, attrsToAny(args)...)
}

func (l *Logger) Error(msg string, err error, args ...slog.Attr) {
	converted := append(attrsToAny(args), slog.String("error", err.Error()))
	l.logger.Error(msg, converted...)
}

func (l *Logger) Fatal(msg string, err error, args ...slog.Attr) {
	l.Error(msg, err, args...)
	os.Exit(1)
}

func attrsToAny(attrs []slog.Attr) []any {
	converted := make([]any, len(attrs))
	for i, attr := range attrs {
		converted[i] = attr
	}
	return converted
}

func parseLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

func createLogFile(logFile string) string {
	logDir := filepath.Join(".", "logs")
	if err := os.MkdirAll(logDir, 0750); err != nil {
		slog.Error("failed to create logs directory", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logPath := filepath.Join(logDir, logFile)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		slog.Error("failed to open log file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	_ = file.Close()
	return logPath
}

// multiHandler fans every record out to all wrapped handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range m.handlers {
		if err := handler.Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range m.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}
