package slots

import (
	"context"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

//go:generate mockgen -destination=mock/platform.go -package=mock . Platform

// Platform is the chat platform as the slot lifecycle sees it.
type Platform interface {
	// CreateChannel creates a text channel under the slot category. Returns ErrCategoryNotFound
	// when the category cannot be resolved.
	CreateChannel(ctx context.Context, name string) (snowflake.ID, error)
	// GrantSlot makes the channel read-only for everyone and writable for the owner.
	GrantSlot(ctx context.Context, channelID snowflake.ID, ownerID snowflake.ID) error
	SetMemberPermissions(ctx context.Context, channelID snowflake.ID, userID snowflake.ID, allow discord.Permissions, deny discord.Permissions) error
	SendEmbeds(ctx context.Context, channelID snowflake.ID, embeds ...discord.Embed) (snowflake.ID, error)
	SendDM(ctx context.Context, userID snowflake.ID, content string) error
	// FetchMember returns ErrUserNotFound when the user is not a member of the guild.
	FetchMember(ctx context.Context, userID snowflake.ID) (*discord.Member, error)
}

// Owner overwrites for each lifecycle state.
const (
	OwnerAllowActive = discord.PermissionViewChannel | discord.PermissionSendMessages | discord.PermissionMentionEveryone
	OwnerAllowLocked = discord.PermissionViewChannel
	OwnerDenyLocked  = discord.PermissionSendMessages
)
