package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"hermannm.dev/devlog"
	"hermannm.dev/wrap"
)

// Init installs the default slog handler: human-readable devlog output in development,
// JSON in production.
func Init(output io.Writer, level slog.Level, production bool) {
	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
	} else {
		handler = devlog.NewHandler(output, &devlog.Options{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func Debug(msg string, attrs ...any) {
	log(slog.LevelDebug, msg, attrs)
}

func Info(msg string, attrs ...any) {
	log(slog.LevelInfo, msg, attrs)
}

func Infof(format string, args ...any) {
	log(slog.LevelInfo, fmt.Sprintf(format, args...), nil)
}

func Warn(msg string, attrs ...any) {
	log(slog.LevelWarn, msg, attrs)
}

func Error(err error, msg string, attrs ...any) {
	if err == nil {
		log(slog.LevelError, msg, attrs)
	} else {
		if msg != "" {
			err = wrap.Error(err, msg)
		}

		log(slog.LevelError, err.Error(), attrs)
	}
}

func log(level slog.Level, msg string, attrs []any) {
	logger := slog.Default()
	if !logger.Enabled(context.Background(), level) {
		return
	}

	// Follows the example from the slog package of how to properly wrap its functions:
	// https://pkg.go.dev/golang.org/x/exp/slog#hdr-Wrapping_output_methods
	var callers [1]uintptr
	// Skips 3, because we want to skip:
	// - the call to Callers
	// - the call to log (this function)
	// - the call to the public log function that uses this function
	runtime.Callers(3, callers[:])

	record := slog.NewRecord(time.Now(), level, msg, callers[0])
	record.Add(attrs...)
	_ = logger.Handler().Handle(context.Background(), record)
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return parsed
}
