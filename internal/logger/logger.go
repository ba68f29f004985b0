package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// L - глобальный логгер; до InitLogger пишет через slog.Default()
var L = slog.Default()

// ParseLevel переводит LOG_LEVEL в уровень slog (по умолчанию INFO)
func ParseLevel(levelStr string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// InitLogger инициализирует глобальный логгер с JSON-выводом в stdout.
// Вызывается один раз при старте, после загрузки конфигурации.
func InitLogger(levelStr string) {
	InitLoggerTo(os.Stdout, levelStr)
}

// InitLoggerTo инициализирует глобальный логгер с выводом в w
func InitLoggerTo(w io.Writer, levelStr string) {
	level, ok := ParseLevel(levelStr)

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}

	L = slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(L)

	if !ok {
		L.Warn("неизвестный LOG_LEVEL, используется INFO", "configuredLevel", levelStr)
	}
	L.Debug("логгер инициализирован", "level", level.String())
}
