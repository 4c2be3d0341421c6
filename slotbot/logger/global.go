package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// LogCommand records a finished slash command. cid ties the line to the matching
// "Command started" entry written by the command wrapper.
func LogCommand(cid, name string, channelID snowflake.ID, took time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "cmd"),
		slog.String("cid", cid),
		slog.String("name", name),
		slog.String("channel_id", channelID.String()),
		slog.Duration("took", took),
	}
	if err != nil {
		emit(slog.LevelError, "Command failed", append(attrs, slog.String("status", "failed"), slog.Any("error", err)))
		return
	}
	emit(slog.LevelInfo, "Command executed", append(attrs, slog.String("status", "success")))
}

// LogSystem writes a lifecycle event of the bot process itself.
func LogSystem(msg string, attrs ...slog.Attr) {
	emit(slog.LevelInfo, msg, append([]slog.Attr{slog.String("type", "sys")}, attrs...))
}

// LogError writes a failure that is not tied to a single command.
func LogError(msg string, err error, attrs ...slog.Attr) {
	emit(slog.LevelError, msg, append([]slog.Attr{slog.String("type", "error"), slog.Any("error", err)}, attrs...))
}

func emit(level slog.Level, msg string, attrs []slog.Attr) {
	slog.Default().LogAttrs(context.Background(), level, msg, attrs...)
}
