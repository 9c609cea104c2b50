package types

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR", "CRITICAL":
		return slog.LevelError, nil
	}

	return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", level)
}

func NewLogger(config *LovebugConfig, w io.Writer) *slog.Logger {
	level, _ := ParseLogLevel(config.LogLevel)

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).
		With("environment", config.Environment)
}
