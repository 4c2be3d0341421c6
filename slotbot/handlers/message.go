package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/disgoorg/slotbot/internal/domain/mentions"
	"github.com/disgoorg/slotbot/slotbot"
)

const messageTimeout = 15 * time.Second

// MessageHandler feeds guild messages posted in the slot category to the moderator.
func MessageHandler(b *slotbot.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildMessageCreate) {
		if e.Message.Author.Bot {
			return
		}
		categoryID := parentCategory(e.Client(), e.ChannelID)
		if categoryID != b.Cfg.Bot.CategoryID {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), messageTimeout)
		defer cancel()

		action, err := b.Moderator.HandleMessage(ctx, mentions.Message{
			ID:            e.Message.ID,
			ChannelID:     e.ChannelID,
			CategoryID:    categoryID,
			AuthorID:      e.Message.Author.ID,
			AuthorIsAdmin: isAdministrator(e.Client(), e.GuildID, e.Message.Author.ID, e.Message.Member),
			Content:       e.Message.Content,
		})
		if err != nil {
			slog.Error("Failed to moderate message",
				slog.String("type", "error"),
				slog.String("channel_id", e.ChannelID.String()),
				slog.String("user_id", e.Message.Author.ID.String()),
				slog.String("action", action.String()),
				slog.Any("error", err))
			return
		}
		if action != mentions.ActionNone {
			slog.Debug("Moderated message",
				slog.String("type", "sys"),
				slog.String("channel_id", e.ChannelID.String()),
				slog.String("action", action.String()))
		}
	})
}

func parentCategory(client bot.Client, channelID snowflake.ID) snowflake.ID {
	ch, ok := client.Caches().Channel(channelID)
	if !ok {
		got, err := client.Rest().GetChannel(channelID)
		if err != nil {
			return 0
		}
		gc, ok := got.(discord.GuildChannel)
		if !ok {
			return 0
		}
		ch = gc
	}
	if parent := ch.ParentID(); parent != nil {
		return *parent
	}
	return 0
}

// isAdministrator resolves the author's guild-level permissions from the role cache. The guild
// owner is always an administrator.
func isAdministrator(client bot.Client, guildID, userID snowflake.ID, member *discord.Member) bool {
	if guild, ok := client.Caches().Guild(guildID); ok && guild.OwnerID == userID {
		return true
	}
	if member == nil {
		m, err := client.Rest().GetMember(guildID, userID)
		if err != nil {
			return false
		}
		member = m
	}

	roleIDs := append([]snowflake.ID{guildID}, member.RoleIDs...)
	for _, roleID := range roleIDs {
		if role, ok := client.Caches().Role(guildID, roleID); ok && role.Permissions.Has(discord.PermissionAdministrator) {
			return true
		}
	}
	return false
}
