package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/google/uuid"

	"github.com/disgoorg/slotbot/slotbot/logger"
	"github.com/disgoorg/slotbot/slotbot/utils"
)

// CommandTimeout is how long the wrapper waits for a handler. It must outlast the context
// deadline the admin commands give their lifecycle calls.
const CommandTimeout = 45 * time.Second

const slowCommand = 2 * time.Second

// WrapWithLogging logs the start and end of a command under one correlation id and gives up
// waiting after CommandTimeout.
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		start := time.Now()
		cid := uuid.NewString()
		log := slog.Default().With(slog.String("cid", cid))

		log.Info("Command started",
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("user_id", e.User().ID.String()),
			slog.String("user_name", e.User().Username),
			slog.String("channel_id", e.ChannelID().String()),
		)

		done := make(chan error, 1)
		go func() {
			done <- h(e)
		}()

		select {
		case err := <-done:
			duration := time.Since(start)
			if err != nil {
				logger.LogCommand(cid, name, e.ChannelID(), duration, err)
				return err
			}

			attrs := []any{
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.String("user_name", e.User().Username),
				slog.Duration("took", duration),
			}
			if duration > slowCommand {
				log.Warn("Command executed slowly", append(attrs, slog.String("status", "slow"))...)
			} else {
				log.Info("Command completed", append(attrs, slog.String("status", "success"))...)
			}
			return nil

		case <-time.After(CommandTimeout):
			log.Error("Command timed out",
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.String("user_name", e.User().Username),
				slog.String("status", "timeout"),
				slog.Duration("timeout", CommandTimeout),
			)
			return fmt.Errorf("command %s timed out after %s", name, CommandTimeout)
		}
	}
}

// RequireAdmin rejects invokers without the Administrator permission before h runs.
func RequireAdmin(action string, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		member := e.Member()
		if member == nil || !member.Permissions.Has(discord.PermissionAdministrator) {
			slog.Info("Rejected non-admin command",
				slog.String("type", "cmd"),
				slog.String("user_id", e.User().ID.String()),
				slog.String("action", action))
			return utils.EH.CreatePermissionError(e, action)
		}
		return h(e)
	}
}
