package mentions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/disgoorg/slotbot/internal/domain/slots"
)

const (
	everyoneToken = "@everyone"
	hereToken     = "@here"
)

// Lockdown is the overwrite applied to a non-admin who pings @everyone in a slot.
const (
	LockdownAllow = discord.PermissionViewChannel
	LockdownDeny  = discord.PermissionSendMessages | discord.PermissionReadMessageHistory | discord.PermissionMentionEveryone
)

//go:generate mockgen -destination=mock/platform.go -package=mock . Platform

// Platform is what moderation needs from the chat platform.
type Platform interface {
	SetMemberPermissions(ctx context.Context, channelID snowflake.ID, userID snowflake.ID, allow discord.Permissions, deny discord.Permissions) error
	SendEmbeds(ctx context.Context, channelID snowflake.ID, embeds ...discord.Embed) (snowflake.ID, error)
	DeleteMessage(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID) error
}

// Message is an inbound guild message.
type Message struct {
	ID            snowflake.ID
	ChannelID     snowflake.ID
	CategoryID    snowflake.ID
	AuthorID      snowflake.ID
	AuthorIsBot   bool
	AuthorIsAdmin bool
	Content       string
}

type Action int

const (
	ActionNone Action = iota
	ActionLockdown
	ActionAdminExempt
	ActionCounted
	ActionLimitExceeded
)

func (a Action) String() string {
	switch a {
	case ActionLockdown:
		return "lockdown"
	case ActionAdminExempt:
		return "admin_exempt"
	case ActionCounted:
		return "counted"
	case ActionLimitExceeded:
		return "limit_exceeded"
	default:
		return "none"
	}
}

type Moderator struct {
	platform   Platform
	limiter    *Limiter
	categoryID snowflake.ID
}

func NewModerator(platform Platform, limiter *Limiter, categoryID snowflake.ID) *Moderator {
	return &Moderator{
		platform:   platform,
		limiter:    limiter,
		categoryID: categoryID,
	}
}

// HandleMessage applies the slot mention rules to one message. An @everyone from a non-admin
// locks the author out at once; @here pings are counted and the author loses send access on the
// first ping over the daily limit.
func (m *Moderator) HandleMessage(ctx context.Context, msg Message) (Action, error) {
	if msg.AuthorIsBot || msg.CategoryID == 0 || msg.CategoryID != m.categoryID {
		return ActionNone, nil
	}

	if strings.Contains(msg.Content, everyoneToken) {
		if msg.AuthorIsAdmin {
			m.send(ctx, msg.ChannelID, discord.NewEmbedBuilder().
				SetTitle("Permission Denied").
				SetDescription("Failed to revoke slot because slot owner is an Administrator").
				SetColor(slots.ColorGold).
				Build())
			return ActionAdminExempt, nil
		}

		if err := m.platform.SetMemberPermissions(ctx, msg.ChannelID, msg.AuthorID, LockdownAllow, LockdownDeny); err != nil {
			return ActionLockdown, fmt.Errorf("lock down %s: %w", msg.AuthorID, err)
		}
		slog.Info("Slot locked down for everyone ping",
			slog.String("type", "sys"),
			slog.String("channel_id", msg.ChannelID.String()),
			slog.String("user_id", msg.AuthorID.String()))
		m.send(ctx, msg.ChannelID, slots.RevokedEmbed(msg.ChannelID, "Everyone Ping"))
		return ActionLockdown, nil
	}

	if !strings.Contains(msg.Content, hereToken) {
		return ActionNone, nil
	}

	count := m.limiter.Increment(msg.AuthorID)
	noticeID := m.send(ctx, msg.ChannelID, discord.NewEmbedBuilder().
		SetDescription(fmt.Sprintf("**%s, YOU USED** __**%d/%d**__ **PINGS**. | __**USE MM TO BE SAFE!**__",
			discord.UserMention(msg.AuthorID), count, m.limiter.Limit())).
		SetColor(slots.ColorDark).
		Build())

	if !m.limiter.Exceeded(count) {
		return ActionCounted, nil
	}

	if err := m.platform.SetMemberPermissions(ctx, msg.ChannelID, msg.AuthorID, slots.OwnerAllowLocked, slots.OwnerDenyLocked); err != nil {
		return ActionLimitExceeded, fmt.Errorf("revoke send for %s: %w", msg.AuthorID, err)
	}
	slog.Info("Ping limit exceeded",
		slog.String("type", "sys"),
		slog.String("channel_id", msg.ChannelID.String()),
		slog.String("user_id", msg.AuthorID.String()),
		slog.Int("count", count))

	if noticeID != 0 {
		if err := m.platform.DeleteMessage(ctx, msg.ChannelID, noticeID); err != nil {
			slog.Warn("Failed to delete ping counter",
				slog.String("type", "sys"),
				slog.String("channel_id", msg.ChannelID.String()),
				slog.Any("error", err))
		}
	}
	m.send(ctx, msg.ChannelID, discord.NewEmbedBuilder().
		SetDescription(fmt.Sprintf("**%s, your slot has been revoked because you exceeded the allowed limit of `@here` pings today.**",
			discord.UserMention(msg.AuthorID))).
		SetColor(0xFF0000).
		Build())
	return ActionLimitExceeded, nil
}

func (m *Moderator) send(ctx context.Context, channelID snowflake.ID, embed discord.Embed) snowflake.ID {
	id, err := m.platform.SendEmbeds(ctx, channelID, embed)
	if err != nil {
		slog.Warn("Failed to post moderation notice",
			slog.String("type", "sys"),
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
		return 0
	}
	return id
}
