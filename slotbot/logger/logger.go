// Package logger holds the console slog handler and the typed logging helpers.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeCommand LogType = "CMD"
	TypeDB      LogType = "DB"
	TypeSystem  LogType = "SYS"
	TypeError   LogType = "ERR"
)

// disgo logs these on every gateway and REST round trip.
var skippedMessages = []string{
	"locking buckets",
	"unlocking buckets",
	"gateway event",
	"cleaning up bucket",
	"cleaned up rate limit buckets",
	"binary message received",
	"received gateway message",
	"locking gateway rate limiter",
	"unlocking gateway rate limiter",
	"sending gateway command",
	"new request",
	"new response",
	"locking rest bucket",
	"unlocking rest bucket",
	"rate limit response headers",
	"sending heartbeat",
}

var internalAttrs = []string{"type", "name", "user_name", "status", "error", "error_location"}

type CustomHandler struct {
	out       io.Writer
	mu        *sync.Mutex
	level     slog.Leveler
	addSource bool
	attrs     []slog.Attr
	groups    []string
}

// New builds the process logger from the [log] config section. Format "json" switches to the
// standard JSON handler; anything else uses the colored console handler.
func New(level slog.Level, format string, addSource bool) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level, AddSource: addSource}))
	}
	return slog.New(NewHandler(os.Stdout, level, addSource))
}

func NewHandler(out io.Writer, level slog.Leveler, addSource bool) *CustomHandler {
	return &CustomHandler{
		out:       out,
		mu:        &sync.Mutex{},
		level:     level,
		addSource: addSource,
	}
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(slices.Clip(h.attrs), attrs...)
	return &clone
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(slices.Clip(h.groups), name)
	return &clone
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	if shouldSkipLog(&r) {
		return nil
	}

	var levelColor, levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case r.Level >= slog.LevelInfo:
		levelColor, levelText = colorGreen, "INFO"
	default:
		levelColor, levelText = colorPurple, "DEBUG"
	}

	all := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	all = append(all, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		all = append(all, a)
		return true
	})

	message := r.Message
	if r.Level >= slog.LevelError {
		if location := errorLocation(all, r, h.addSource); location != "" {
			message = fmt.Sprintf("%s (%s)", message, location)
		}
		if details := attrValue(all, "error"); details != "" {
			message = fmt.Sprintf("%s: %s", message, details)
		}
	} else if details := attrValue(all, "error"); details != "" {
		message = fmt.Sprintf("%s: %s", message, details)
	}

	if cmd, user := attrValue(all, "name"), attrValue(all, "user_name"); cmd != "" && user != "" {
		message = fmt.Sprintf("%s [%s by %s]", message, cmd, user)
	}
	if status := attrValue(all, "status"); status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, status)
	}

	var attrsStr strings.Builder
	prefix := strings.Join(h.groups, ".")
	for _, a := range all {
		if slices.Contains(internalAttrs, a.Key) {
			continue
		}
		key := a.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		fmt.Fprintf(&attrsStr, " %s=%v", key, a.Value)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s[SlotBot] [%s] [%s%s%s] [%s] %s%s%s\n",
		colorWhite,
		r.Time.Format("15:04:05"),
		levelColor,
		levelText,
		colorWhite,
		logType(all),
		message,
		attrsStr.String(),
		colorReset,
	)
	return err
}

func shouldSkipLog(r *slog.Record) bool {
	msg := strings.ToLower(r.Message)
	for _, skip := range skippedMessages {
		if strings.Contains(msg, skip) {
			return true
		}
	}
	return false
}

func logType(attrs []slog.Attr) LogType {
	switch attrValue(attrs, "type") {
	case "cmd":
		return TypeCommand
	case "db":
		return TypeDB
	case "error":
		return TypeError
	default:
		return TypeSystem
	}
}

func attrValue(attrs []slog.Attr, key string) string {
	for i := len(attrs) - 1; i >= 0; i-- {
		if attrs[i].Key == key {
			return attrs[i].Value.String()
		}
	}
	return ""
}

func errorLocation(attrs []slog.Attr, r slog.Record, addSource bool) string {
	if location := attrValue(attrs, "error_location"); location != "" {
		return location
	}
	if !addSource || r.PC == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}
