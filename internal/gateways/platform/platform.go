// Package platform implements the chat collaborator used by the slot and mention domains on top
// of the disgo REST client.
package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"

	"github.com/disgoorg/slotbot/internal/domain/mentions"
	"github.com/disgoorg/slotbot/internal/domain/schedule"
	"github.com/disgoorg/slotbot/internal/domain/slots"
)

const dmCacheSize = 512

var (
	_ slots.Platform    = (*Platform)(nil)
	_ mentions.Platform = (*Platform)(nil)
	_ schedule.Platform = (*Platform)(nil)
)

// RestAPI is the part of rest.Rest the platform calls.
type RestAPI interface {
	GetChannel(channelID snowflake.ID, opts ...rest.RequestOpt) (discord.Channel, error)
	CreateGuildChannel(guildID snowflake.ID, guildChannelCreate discord.GuildChannelCreate, opts ...rest.RequestOpt) (discord.GuildChannel, error)
	UpdatePermissionOverwrite(channelID snowflake.ID, overwriteID snowflake.ID, permissionOverwrite discord.PermissionOverwriteUpdate, opts ...rest.RequestOpt) error
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
	DeleteMessage(channelID snowflake.ID, messageID snowflake.ID, opts ...rest.RequestOpt) error
	CreateDMChannel(userID snowflake.ID, opts ...rest.RequestOpt) (*discord.DMChannel, error)
	GetMember(guildID snowflake.ID, userID snowflake.ID, opts ...rest.RequestOpt) (*discord.Member, error)
}

// PresenceSetter is satisfied by bot.Client.
type PresenceSetter interface {
	SetPresence(ctx context.Context, opts ...gateway.PresenceOpt) error
}

type Platform struct {
	rest       RestAPI
	presence   PresenceSetter
	categoryID snowflake.ID
	dmChannels *lru.Cache

	mu      sync.Mutex
	guildID snowflake.ID
}

// New returns a platform bound to one slot category. guildID may be zero, in which case it is
// resolved from the category on first use.
func New(api RestAPI, presence PresenceSetter, guildID, categoryID snowflake.ID) (*Platform, error) {
	cache, err := lru.New(dmCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create DM channel cache: %w", err)
	}
	return &Platform{
		rest:       api,
		presence:   presence,
		categoryID: categoryID,
		dmChannels: cache,
		guildID:    guildID,
	}, nil
}

// GuildID returns the guild that owns the slot category.
func (p *Platform) GuildID(ctx context.Context) (snowflake.ID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.guildID != 0 {
		return p.guildID, nil
	}

	ch, err := p.rest.GetChannel(p.categoryID, rest.WithCtx(ctx))
	if err != nil {
		if IsNotFound(err) {
			return 0, slots.ErrCategoryNotFound
		}
		return 0, fmt.Errorf("failed to fetch category %s: %w", p.categoryID, err)
	}
	category, ok := ch.(discord.GuildCategoryChannel)
	if !ok {
		return 0, slots.ErrCategoryNotFound
	}
	p.guildID = category.GuildID()
	return p.guildID, nil
}

func (p *Platform) CreateChannel(ctx context.Context, name string) (snowflake.ID, error) {
	guildID, err := p.GuildID(ctx)
	if err != nil {
		return 0, err
	}
	ch, err := p.rest.CreateGuildChannel(guildID, discord.GuildTextChannelCreate{
		Name:     name,
		ParentID: p.categoryID,
	}, rest.WithCtx(ctx))
	if err != nil {
		if IsNotFound(err) {
			return 0, slots.ErrCategoryNotFound
		}
		return 0, fmt.Errorf("failed to create channel %q: %w", name, err)
	}
	return ch.ID(), nil
}

// GrantSlot makes the channel visible but read-only for @everyone and gives the owner send and
// mention rights.
func (p *Platform) GrantSlot(ctx context.Context, channelID, ownerID snowflake.ID) error {
	guildID, err := p.GuildID(ctx)
	if err != nil {
		return err
	}
	if err = p.rest.UpdatePermissionOverwrite(channelID, guildID, discord.RolePermissionOverwriteUpdate{
		Allow: permissionsPtr(discord.PermissionViewChannel),
		Deny:  permissionsPtr(discord.PermissionSendMessages),
	}, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to restrict @everyone in %s: %w", channelID, err)
	}
	return p.SetMemberPermissions(ctx, channelID, ownerID, slots.OwnerAllowActive, 0)
}

func (p *Platform) SetMemberPermissions(ctx context.Context, channelID, userID snowflake.ID, allow, deny discord.Permissions) error {
	err := p.rest.UpdatePermissionOverwrite(channelID, userID, discord.MemberPermissionOverwriteUpdate{
		Allow: permissionsPtr(allow),
		Deny:  permissionsPtr(deny),
	}, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to update overwrite for %s in %s: %w", userID, channelID, err)
	}
	return nil
}

// permissionsPtr adapts a permission set to disgo's optional overwrite fields, leaving an empty set
// unset.
func permissionsPtr(perms discord.Permissions) *discord.Permissions {
	if perms == 0 {
		return nil
	}
	return &perms
}

func (p *Platform) SendEmbeds(ctx context.Context, channelID snowflake.ID, embeds ...discord.Embed) (snowflake.ID, error) {
	msg, err := p.rest.CreateMessage(channelID, discord.MessageCreate{Embeds: embeds}, rest.WithCtx(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to send message to %s: %w", channelID, err)
	}
	return msg.ID, nil
}

func (p *Platform) DeleteMessage(ctx context.Context, channelID, messageID snowflake.ID) error {
	if err := p.rest.DeleteMessage(channelID, messageID, rest.WithCtx(ctx)); err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to delete message %s: %w", messageID, err)
	}
	return nil
}

func (p *Platform) SendDM(ctx context.Context, userID snowflake.ID, content string) error {
	channelID, err := p.dmChannel(ctx, userID)
	if err != nil {
		return err
	}
	if _, err = p.rest.CreateMessage(channelID, discord.MessageCreate{Content: content}, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to DM %s: %w", userID, err)
	}
	return nil
}

func (p *Platform) dmChannel(ctx context.Context, userID snowflake.ID) (snowflake.ID, error) {
	if v, ok := p.dmChannels.Get(userID); ok {
		return v.(snowflake.ID), nil
	}
	ch, err := p.rest.CreateDMChannel(userID, rest.WithCtx(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to open DM channel with %s: %w", userID, err)
	}
	p.dmChannels.Add(userID, ch.ID())
	return ch.ID(), nil
}

// FetchMember returns slots.ErrUserNotFound when the user is not in the guild.
func (p *Platform) FetchMember(ctx context.Context, userID snowflake.ID) (*discord.Member, error) {
	guildID, err := p.GuildID(ctx)
	if err != nil {
		return nil, err
	}
	member, err := p.rest.GetMember(guildID, userID, rest.WithCtx(ctx))
	if err != nil {
		if IsNotFound(err) {
			return nil, slots.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch member %s: %w", userID, err)
	}
	return member, nil
}

func (p *Platform) SetPresence(ctx context.Context, text string) error {
	return p.presence.SetPresence(ctx,
		gateway.WithWatchingActivity(text),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline))
}

// IsNotFound reports whether err is a 404 from the Discord API.
func IsNotFound(err error) bool {
	var restErr *rest.Error
	if !errors.As(err, &restErr) {
		return false
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
