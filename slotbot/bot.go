// Package slotbot wires the slot rental domain to a disgo client.
package slotbot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"

	"github.com/disgoorg/slotbot/internal/domain/mentions"
	"github.com/disgoorg/slotbot/internal/domain/schedule"
	"github.com/disgoorg/slotbot/internal/domain/slots"
	"github.com/disgoorg/slotbot/internal/gateways/platform"
	"github.com/disgoorg/slotbot/internal/gateways/store"
	"github.com/disgoorg/slotbot/slotbot/utils"
)

const ShutdownTimeout = 10 * time.Second

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Location:  cfg.Location(),
		Paginator: paginator.New(),
		Processes: utils.NewBackgroundProcessManager(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Location  *time.Location
	Client    bot.Client
	Paginator *paginator.Manager
	Processes *utils.BackgroundProcessManager
	Version   string
	Commit    string

	Store     *store.Store
	Platform  *platform.Platform
	Slots     *slots.Service
	Limiter   *mentions.Limiter
	Moderator *mentions.Moderator
	Scheduler *schedule.Scheduler

	readyOnce sync.Once
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMembers,
			gateway.IntentGuildMessages,
			gateway.IntentMessageContent,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds, cache.FlagRoles, cache.FlagChannels, cache.FlagMembers)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

// SetupDomain builds the slot services on top of the client created by SetupBot.
func (b *Bot) SetupDomain(st *store.Store) error {
	p, err := platform.New(b.Client.Rest(), b.Client, b.Cfg.Bot.GuildID, b.Cfg.Bot.CategoryID)
	if err != nil {
		return err
	}

	b.Store = st
	b.Platform = p
	b.Slots = slots.NewService(st, p, b.Location, slots.WithMentionLimit(b.Cfg.Bot.MentionLimit))
	b.Limiter = mentions.NewLimiter(b.Location, b.Cfg.Bot.MentionLimit, time.Now())
	b.Moderator = mentions.NewModerator(p, b.Limiter, b.Cfg.Bot.CategoryID)
	b.Scheduler = schedule.New(p, b.Slots, b.Limiter, b.Cfg.Bot.Statuses)
	return nil
}

// OnReady starts the background loops the first time the gateway is ready. Ready events after a
// reconnect are only logged.
func (b *Bot) OnReady(_ *events.Ready) {
	started := false
	b.readyOnce.Do(func() {
		started = true
		b.Scheduler.Start(b.Processes)
	})

	slog.Info("SlotBot is now ready",
		slog.String("type", "sys"),
		slog.String("version", b.Version),
		slog.String("commit", b.Commit),
		slog.Bool("loops_started", started))
}

// Close stops the loops and then the gateway.
func (b *Bot) Close() {
	if err := b.Processes.Shutdown(ShutdownTimeout); err != nil {
		slog.Warn("Background processes did not stop in time",
			slog.String("type", "sys"),
			slog.Any("error", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	b.Client.Close(ctx)
}
