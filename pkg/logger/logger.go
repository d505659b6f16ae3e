package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Leveled logger used across the service.
// - Debug/Info/Warn/Error/Fatal variants and Init(level)
// - backed by log/slog; text output by default, JSON with SetFormat("json")

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// slog has no fatal level; use a value above Error so it always passes the filter.
const slogFatal = slog.Level(12)

var (
	mu     sync.RWMutex
	level            = LevelInfo
	lv               = new(slog.LevelVar)
	format           = "text"
	out    io.Writer = os.Stdout
	base             = build()
)

func build() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: lv,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l >= slogFatal {
					a.Value = slog.StringValue("FATAL")
				}
			}
			return a
		},
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level = LevelDebug
		lv.Set(slog.LevelDebug)
	case "warn", "warning":
		level = LevelWarn
		lv.Set(slog.LevelWarn)
	case "error":
		level = LevelError
		lv.Set(slog.LevelError)
	case "fatal":
		level = LevelFatal
		lv.Set(slogFatal)
	default:
		level = LevelInfo
		lv.Set(slog.LevelInfo)
	}
}

// SetFormat switches between "text" and "json" output.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.EqualFold(strings.TrimSpace(f), "json") {
		format = "json"
	} else {
		format = "text"
	}
	base = build()
}

// SetOutput redirects log output; tests use it to capture lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	base = build()
}

// L returns the underlying structured logger for key/value logging.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func Debugf(format string, v ...interface{}) { L().Debug(fmt.Sprintf(format, v...)) }
func Infof(format string, v ...interface{})  { L().Info(fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...interface{})  { L().Warn(fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...interface{}) { L().Error(fmt.Sprintf(format, v...)) }

func Fatalf(format string, v ...interface{}) {
	L().Log(context.Background(), slogFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Println kept for brief messages (maps to Info)
func Println(v ...interface{}) {
	L().Info(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}
